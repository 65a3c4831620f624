package input

import (
	"sync"
	"testing"
	"time"
)

func TestDispatcher_DeliversFIFOWithActiveTool(t *testing.T) {
	d := NewDispatcher()
	var got []Event
	d.Subscribe(func(ev Event) { got = append(got, ev) })

	d.SetTool(ToolHand)
	d.Push(Event{Kind: KindClickDown, Target: "arm/upper"})
	d.Push(Event{Kind: KindClickUp, Target: "arm/upper"})

	if len(got) != 0 {
		t.Fatalf("events delivered before Update: %v", got)
	}

	d.Update(16 * time.Millisecond)

	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Kind != KindClickDown || got[1].Kind != KindClickUp {
		t.Errorf("wrong order: %v", got)
	}
	for _, ev := range got {
		if ev.Tool != ToolHand {
			t.Errorf("event %v not stamped with active tool", ev)
		}
	}
}

func TestDispatcher_StampsToolAtPush(t *testing.T) {
	d := NewDispatcher()
	var got []Event
	d.Subscribe(func(ev Event) { got = append(got, ev) })

	d.SetTool(ToolHand)
	d.Push(Event{Kind: KindClickDown, Target: "arm/upper"})
	d.SetTool(ToolSplint)
	d.Push(Event{Kind: KindClickDown, Target: "arm/splint"})
	d.Update(0)

	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Tool != ToolHand {
		t.Errorf("first event tool: got %v, want %v", got[0].Tool, ToolHand)
	}
	if got[1].Tool != ToolSplint {
		t.Errorf("second event tool: got %v, want %v", got[1].Tool, ToolSplint)
	}
}

func TestDispatcher_UnsubscribeIdempotent(t *testing.T) {
	d := NewDispatcher()
	calls := 0
	unsub := d.Subscribe(func(Event) { calls++ })
	other := 0
	d.Subscribe(func(Event) { other++ })

	unsub()
	unsub()

	d.Push(Event{Kind: KindHoverEnter, Target: "a/b"})
	d.Update(0)

	if calls != 0 {
		t.Errorf("unsubscribed handler called %d times", calls)
	}
	if other != 1 {
		t.Errorf("remaining handler called %d times, want 1", other)
	}
}

func TestDispatcher_FrameResetsDrag(t *testing.T) {
	d := NewDispatcher()
	d.AddDrag(-0.5)
	d.AddDrag(-0.25)
	d.SetPointer(Vec2{X: 1, Y: 2})
	d.SetTool(ToolForceps)

	f := d.Frame(time.Second)
	if f.DragDelta != -0.75 {
		t.Errorf("drag: got %v, want -0.75", f.DragDelta)
	}
	if f.Pointer != (Vec2{X: 1, Y: 2}) || f.Tool != ToolForceps || f.DT != time.Second {
		t.Errorf("unexpected frame %+v", f)
	}

	if f2 := d.Frame(time.Second); f2.DragDelta != 0 {
		t.Errorf("drag not reset: %v", f2.DragDelta)
	}
}

func TestDispatcher_ConcurrentPush(t *testing.T) {
	d := NewDispatcher()
	count := 0
	d.Subscribe(func(Event) { count++ })

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				d.Push(Event{Kind: KindClickDown, Target: "x/y"})
				d.AddDrag(1)
			}
		}()
	}
	wg.Wait()

	d.Update(0)
	if count != 100 {
		t.Errorf("delivered %d events, want 100", count)
	}
}

func TestQueue_OverflowDropsOldest(t *testing.T) {
	q := NewQueue()
	for i := 0; i < queueSize+10; i++ {
		q.Push(Event{Kind: KindClickDown, Target: string(rune('a' + i%26))})
	}
	events := q.Drain()
	if len(events) != queueSize {
		t.Fatalf("drained %d, want %d", len(events), queueSize)
	}
	if q.Len() != 0 {
		t.Errorf("queue not empty after drain")
	}
}

func TestEvent_Split(t *testing.T) {
	tests := []struct {
		target string
		injury string
		object string
	}{
		{"arm-1/upper", "arm-1", "upper"},
		{"upper", "", "upper"},
		{"wp/burn/x", "wp", "burn/x"},
	}
	for _, tt := range tests {
		inj, obj := Event{Target: tt.target}.Split()
		if inj != tt.injury || obj != tt.object {
			t.Errorf("Split(%q) = (%q, %q), want (%q, %q)", tt.target, inj, obj, tt.injury, tt.object)
		}
	}
	if q := Qualify("arm-1", "splint"); q != "arm-1/splint" {
		t.Errorf("Qualify: %q", q)
	}
}

func TestParseToolAndKind(t *testing.T) {
	tool, err := ParseTool("thermal_ointment")
	if err != nil || tool != ToolThermalOintment {
		t.Errorf("ParseTool: %v %v", tool, err)
	}
	if tool, _ := ParseTool(""); tool != ToolAny {
		t.Errorf("empty tool should be ANY, got %v", tool)
	}
	if _, err := ParseTool("hammer"); err == nil {
		t.Error("expected error for unknown tool")
	}
	if !ToolAny.Matches(ToolTape) || ToolSplint.Matches(ToolTape) {
		t.Error("Matches mismatch")
	}

	k, err := ParseKind("clickdown")
	if err != nil || k != KindClickDown {
		t.Errorf("ParseKind: %v %v", k, err)
	}
	if _, err := ParseKind("None"); err == nil {
		t.Error("None must not parse")
	}
	if !KindHoverExit.Player() || KindTimer.Player() {
		t.Error("Player classification wrong")
	}
}
