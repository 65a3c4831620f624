package fsm

import "fmt"

// Args holds action or guard parameters decoded from a graph file
type Args map[string]any

// Has reports whether key is present
func (a Args) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// String returns a string argument or empty
func (a Args) String(key string) string {
	s, _ := a[key].(string)
	return s
}

// Bool returns a boolean argument or false
func (a Args) Bool(key string) bool {
	b, _ := a[key].(bool)
	return b
}

// Float returns a numeric argument as float64
func (a Args) Float(key string) float64 {
	switch v := a[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

// Int returns a numeric argument as int
func (a Args) Int(key string) int {
	return int(a.Float(key))
}

// require checks presence of keys
func (a Args) require(keys []string) error {
	for _, k := range keys {
		if !a.Has(k) {
			return fmt.Errorf("missing argument '%s'", k)
		}
	}
	return nil
}
