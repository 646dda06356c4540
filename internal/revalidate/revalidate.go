// Package revalidate coalesces rapid edits into one outstanding
// authoritative check and drops confirmations that arrive for superseded
// edits. The locally computed result stays displayed while a check is in
// flight; a failed check leaves it standing, just unconfirmed.
package revalidate

import (
	"Trestle/internal/geometry"
	"context"
	"sync"
	"time"
)

// Outcome delivers one confirmation. Seq identifies the edit it answers; Err
// is set when the authoritative call failed and the local result should
// stand unconfirmed.
type Outcome struct {
	Seq      uint64
	Response geometry.ValidateResponse
	Err      error
}

// Revalidator debounces authoritative checks. Each queued edit gets a
// monotonically increasing sequence number; only the response matching the
// newest sequence is ever delivered, so stale confirmations cannot clobber
// a newer field state.
type Revalidator struct {
	checker Checker
	delay   time.Duration
	deliver func(Outcome)

	mu      sync.Mutex
	seq     uint64
	pending geometry.ValidateRequest
	timer   *time.Timer
	stopped bool
}

func NewRevalidator(checker Checker, delay time.Duration, deliver func(Outcome)) *Revalidator {
	return &Revalidator{checker: checker, delay: delay, deliver: deliver}
}

// Queue registers an edit for confirmation and returns its sequence number.
// A queued edit that has not fired yet is superseded in place; an in-flight
// check for an older edit is discarded when it responds.
func (rv *Revalidator) Queue(req geometry.ValidateRequest) uint64 {
	rv.mu.Lock()
	defer rv.mu.Unlock()
	if rv.stopped {
		return rv.seq
	}

	rv.seq++
	rv.pending = req
	seq := rv.seq

	if rv.timer != nil {
		rv.timer.Stop()
	}
	rv.timer = time.AfterFunc(rv.delay, func() { rv.fire(seq) })
	return seq
}

// Flush fires the pending check immediately instead of waiting out the
// debounce delay.
func (rv *Revalidator) Flush() {
	rv.mu.Lock()
	if rv.stopped || rv.timer == nil {
		rv.mu.Unlock()
		return
	}
	rv.timer.Stop()
	seq := rv.seq
	rv.mu.Unlock()

	rv.fire(seq)
}

// Stop cancels the pending check and discards any in-flight confirmation.
func (rv *Revalidator) Stop() {
	rv.mu.Lock()
	defer rv.mu.Unlock()
	rv.stopped = true
	if rv.timer != nil {
		rv.timer.Stop()
	}
}

func (rv *Revalidator) fire(seq uint64) {
	rv.mu.Lock()
	if rv.stopped || seq != rv.seq {
		rv.mu.Unlock()
		return
	}
	req := rv.pending
	rv.timer = nil
	rv.mu.Unlock()

	resp, err := rv.checker.Check(context.Background(), req)

	rv.mu.Lock()
	stale := rv.stopped || seq != rv.seq
	rv.mu.Unlock()
	if stale {
		return
	}
	rv.deliver(Outcome{Seq: seq, Response: resp, Err: err})
}
