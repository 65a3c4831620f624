package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/lixenwraith/field-medic/clothing"
	"github.com/lixenwraith/field-medic/engine"
	"github.com/lixenwraith/field-medic/injury"
	"github.com/lixenwraith/field-medic/input"
	"github.com/lixenwraith/field-medic/render"
	"github.com/lixenwraith/field-medic/session"
)

var errUnknownMessage = errors.New("unknown message type")

// conn is one websocket peer driving one session
// The read pump feeds the dispatcher, the scheduler loop owns the session, the write pump owns the socket writes
type conn struct {
	srv   *Server
	ws    *websocket.Conn
	log   *slog.Logger
	send  chan []byte
	drops atomic.Uint64

	sess      *session.Session
	dispatch  *input.Dispatcher
	sched     *engine.Scheduler
	disposals map[string]*injury.DisposalFlag
}

func newConn(srv *Server, ws *websocket.Conn) (*conn, error) {
	c := &conn{
		srv:       srv,
		ws:        ws,
		send:      make(chan []byte, sendBuffer),
		dispatch:  input.NewDispatcher(),
		disposals: make(map[string]*injury.DisposalFlag),
	}
	id := session.NewID()
	c.log = srv.log.With("session", id, "remote", ws.RemoteAddr().String())

	injuries, err := injury.BuildScenario(srv.opts.Scenario, srv.opts.Graphs, injury.Collaborators{
		Disposal: func(injuryID string) injury.Disposal {
			flag := &injury.DisposalFlag{}
			c.disposals[injuryID] = flag
			return flag
		},
		Logger: c.log,
	})
	if err != nil {
		return nil, err
	}
	outfit, err := srv.opts.Scenario.Patient.Outfit.Build()
	if err != nil {
		return nil, err
	}

	// Announced before Init commands reach the sink
	c.enqueue(Outbound{Type: MsgSession, Session: id})

	observers := []session.Observer{session.ObserverFuncs{
		Healed: func(_, injuryID string) {
			c.enqueue(Outbound{Type: MsgHealed, Injury: injuryID})
		},
		AllHealed: func(string) {
			c.enqueue(Outbound{Type: MsgAllHealed})
		},
	}}
	if j := srv.opts.Journal; j != nil {
		if err := j.BeginSession(context.Background(), id, srv.opts.Scenario.Name); err != nil {
			return nil, err
		}
		observers = append(observers, j.Observer())
	}

	c.sess, err = session.New(session.Options{
		ID:        id,
		Injuries:  injuries,
		Wardrobe:  outfit,
		Sink:      render.SinkFunc(c.applyCommands),
		Source:    c.dispatch,
		Observers: observers,
		Logger:    c.log,
	})
	if err != nil {
		return nil, err
	}

	c.sched = engine.NewScheduler(srv.opts.Interval, nil)
	c.sched.Add(c.dispatch)
	c.sched.Add(c.sess)
	return c, nil
}

// run blocks until the peer disconnects, then stops the loop and flushes the journal
func (c *conn) run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = c.sched.Run(ctx)
	}()

	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		c.writePump()
	}()

	c.log.Info("bridge session connected")
	c.readPump(ctx)

	cancel()
	wg.Wait()
	c.sess.Close()
	close(c.send)
	<-writeDone

	if j := c.srv.opts.Journal; j != nil {
		// Queued transitions land before the session is stamped finished
		if err := j.Flush(context.Background()); err != nil {
			c.log.Warn("journal flush failed", "error", err)
		}
		if err := j.FinishSession(context.Background(), c.sess.ID()); err != nil {
			c.log.Warn("journal finish failed", "error", err)
		}
	}
	c.log.Info("bridge session disconnected", "ticks", c.sched.Ticks(), "dropped", c.drops.Load())
}

func (c *conn) readPump(ctx context.Context) {
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("websocket read failed", "error", err)
			}
			return
		}

		var msg Inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError(fmt.Errorf("decode: %w", err))
			continue
		}
		c.handle(ctx, msg)
	}
}

// handle applies one inbound message under a trace span
func (c *conn) handle(ctx context.Context, msg Inbound) {
	_, span := c.srv.tracer.Start(ctx, "bridge."+msg.Type)
	defer span.End()
	span.SetAttributes(attribute.String("session.id", c.sess.ID()))

	if err := c.apply(msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.sendError(err)
	}
}

func (c *conn) apply(msg Inbound) error {
	switch msg.Type {
	case MsgEvent:
		kind, err := input.ParseKind(msg.Kind)
		if err != nil {
			return err
		}
		if !kind.Player() {
			return fmt.Errorf("event kind %s is internal", kind)
		}
		if msg.Target == "" {
			return errors.New("event target required")
		}
		c.dispatch.Push(input.Event{Kind: kind, Target: msg.Target})

	case MsgTool:
		tool, err := input.ParseTool(msg.Tool)
		if err != nil {
			return err
		}
		if tool == input.ToolAny {
			return errors.New("tool required")
		}
		c.dispatch.SetTool(tool)

	case MsgDrag:
		c.dispatch.AddDrag(msg.Delta)

	case MsgPointer:
		c.dispatch.SetPointer(input.Vec2{X: msg.X, Y: msg.Y})

	case MsgClothing:
		region, err := clothing.ParseRegion(msg.Region)
		if err != nil {
			return err
		}
		switch msg.Action {
		case "cut":
			c.sched.Post(func() { c.sess.CutClothing(region) })
		case "remove":
			c.sched.Post(func() { c.sess.RemoveClothing(region) })
		default:
			return fmt.Errorf("unknown clothing action %q", msg.Action)
		}

	case MsgDispose:
		flag, ok := c.disposals[msg.Injury]
		if !ok {
			return fmt.Errorf("injury %q has no disposal", msg.Injury)
		}
		flag.Drop()

	case MsgSnapshot:
		c.sched.Post(func() {
			c.enqueue(Outbound{Type: MsgSnapshot, Session: c.sess.ID(), Injuries: snapshotMsgs(c.sess.Snapshot())})
		})

	case MsgPause:
		c.sched.Pause()

	case MsgResume:
		c.sched.Resume()

	default:
		return fmt.Errorf("%w %q", errUnknownMessage, msg.Type)
	}
	return nil
}

// applyCommands is the session sink, runs on the loop goroutine
func (c *conn) applyCommands(cmds ...render.Command) {
	for _, cmd := range cmds {
		c.enqueue(Outbound{Type: MsgCommand, Command: commandMsg(cmd)})
	}
}

func (c *conn) sendError(err error) {
	c.enqueue(Outbound{Type: MsgError, Message: err.Error()})
}

// enqueue never blocks the loop; a slow peer loses messages
func (c *conn) enqueue(msg Outbound) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.Error("encode outbound", "type", msg.Type, "error", err)
		return
	}
	select {
	case c.send <- data:
	default:
		if c.drops.Add(1) == 1 {
			c.log.Warn("send buffer full, dropping messages")
		}
	}
}

func (c *conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
