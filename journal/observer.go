package journal

import (
	"context"
	"time"
)

type recordKind uint8

const (
	recordTransition recordKind = iota
	recordHealed
	recordAllHealed
	recordFlush
)

type record struct {
	kind      recordKind
	sessionID string
	injuryID  string
	from, to  string
	trigger   string
	at        time.Time
	done      chan struct{} // Closed by the writer for recordFlush
}

// Observer queues session notifications for the journal writer
// Notifications never block the loop; records are dropped when the queue is full
type Observer struct {
	store *Store
}

// Observer returns the asynchronous session observer backed by this store
func (s *Store) Observer() *Observer {
	return &Observer{store: s}
}

func (o *Observer) OnTransition(sessionID, injuryID, from, to, trigger string) {
	o.store.enqueue(record{kind: recordTransition, sessionID: sessionID, injuryID: injuryID, from: from, to: to, trigger: trigger})
}

func (o *Observer) OnHealed(sessionID, injuryID string) {
	o.store.enqueue(record{kind: recordHealed, sessionID: sessionID, injuryID: injuryID})
}

func (o *Observer) OnAllHealed(sessionID string) {
	o.store.enqueue(record{kind: recordAllHealed, sessionID: sessionID})
}

func (s *Store) enqueue(r record) {
	r.at = s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.records <- r:
	default:
		s.dropped++
	}
}

// Flush blocks until every record queued before the call is written
func (s *Store) Flush(ctx context.Context) error {
	done := make(chan struct{})

	// Barriers are never dropped; the lock keeps Close from closing the queue mid-send
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	select {
	case s.records <- record{kind: recordFlush, done: done}:
		s.mu.Unlock()
	case <-ctx.Done():
		s.mu.Unlock()
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// writer persists queued records until the queue is closed
func (s *Store) writer() {
	defer s.wg.Done()
	ctx := context.Background()
	for r := range s.records {
		if r.kind == recordFlush {
			close(r.done)
			continue
		}
		if err := s.write(ctx, r); err != nil {
			s.log.Error("journal write failed", "session", r.sessionID, "injury", r.injuryID, "error", err)
		}
	}
}

func (s *Store) write(ctx context.Context, r record) error {
	var err error
	switch r.kind {
	case recordTransition:
		_, err = s.sqlDB.ExecContext(ctx,
			`INSERT INTO transitions (session_id, injury_id, from_state, to_state, cause, recorded_at) VALUES (?, ?, ?, ?, ?, ?)`,
			r.sessionID, r.injuryID, r.from, r.to, r.trigger, toMillis(r.at),
		)
	case recordHealed:
		_, err = s.sqlDB.ExecContext(ctx,
			`INSERT OR IGNORE INTO healed (session_id, injury_id, recorded_at) VALUES (?, ?, ?)`,
			r.sessionID, r.injuryID, toMillis(r.at),
		)
	case recordAllHealed:
		_, err = s.sqlDB.ExecContext(ctx,
			`UPDATE sessions SET all_healed_at = ? WHERE id = ? AND all_healed_at IS NULL`,
			toMillis(r.at), r.sessionID,
		)
	}
	return err
}
