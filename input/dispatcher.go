package input

import (
	"sync"
	"time"
)

// Handler receives discrete events on the loop goroutine
type Handler func(ev Event)

// Source is the input collaborator consumed by a session
type Source interface {
	// Subscribe registers a handler and returns its deregistration func
	Subscribe(h Handler) (unsubscribe func())

	// Frame returns the continuous input for this tick and resets the drag accumulator
	Frame(dt time.Duration) Frame

	// ActiveTool returns the current tool selection
	ActiveTool() Tool
}

// Dispatcher is a queued Source
// Producers (terminal, network, tests) may call Push, SetTool, AddDrag and SetPointer from any goroutine
// Update delivers queued events to subscribers and must run on the loop goroutine
type Dispatcher struct {
	queue *Queue

	mu       sync.Mutex
	tool     Tool
	drag     float64
	pointer  Vec2
	handlers map[uint64]Handler
	order    []uint64
	nextID   uint64
}

// NewDispatcher creates a dispatcher with no tool selected
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		queue:    NewQueue(),
		handlers: make(map[uint64]Handler),
	}
}

// Subscribe registers h; handlers run in registration order
func (d *Dispatcher) Subscribe(h Handler) func() {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.handlers[id] = h
	d.order = append(d.order, id)
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			delete(d.handlers, id)
			for i, v := range d.order {
				if v == id {
					d.order = append(d.order[:i], d.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Push stamps the event with the active tool and enqueues it for the next Update
func (d *Dispatcher) Push(ev Event) {
	d.mu.Lock()
	ev.Tool = d.tool
	d.mu.Unlock()
	d.queue.Push(ev)
}

// SetTool changes the process-wide tool selection
func (d *Dispatcher) SetTool(t Tool) {
	d.mu.Lock()
	d.tool = t
	d.mu.Unlock()
}

// ActiveTool returns the current tool selection
func (d *Dispatcher) ActiveTool() Tool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tool
}

// AddDrag accumulates horizontal drag until the next Frame
func (d *Dispatcher) AddDrag(delta float64) {
	d.mu.Lock()
	d.drag += delta
	d.mu.Unlock()
}

// SetPointer records the latest pointer position
func (d *Dispatcher) SetPointer(p Vec2) {
	d.mu.Lock()
	d.pointer = p
	d.mu.Unlock()
}

// Frame samples continuous input and resets the drag accumulator
func (d *Dispatcher) Frame(dt time.Duration) Frame {
	d.mu.Lock()
	defer d.mu.Unlock()
	f := Frame{
		DT:        dt,
		DragDelta: d.drag,
		Pointer:   d.pointer,
		Tool:      d.tool,
	}
	d.drag = 0
	return f
}

// Pending returns the number of queued events
func (d *Dispatcher) Pending() int {
	return d.queue.Len()
}

// Update delivers queued events FIFO with the tool stamped at push time
func (d *Dispatcher) Update(dt time.Duration) {
	events := d.queue.Drain()
	if len(events) == 0 {
		return
	}

	d.mu.Lock()
	handlers := make([]Handler, 0, len(d.order))
	for _, id := range d.order {
		handlers = append(handlers, d.handlers[id])
	}
	d.mu.Unlock()

	for _, ev := range events {
		for _, h := range handlers {
			h(ev)
		}
	}
}
