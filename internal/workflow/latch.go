package workflow

import "sync/atomic"

// ReplyFunc delivers one outbound chat message.
type ReplyFunc func(text string) error

// Latch makes a [ReplyFunc] one-shot. Every branch of message handling sends
// its reply through the same latch, so whatever path wins, the user gets
// exactly one message per inbound event. Extra sends are dropped, not queued.
type Latch struct {
	fired atomic.Bool
	send  ReplyFunc
}

// NewLatch wraps send in a [Latch].
func NewLatch(send ReplyFunc) *Latch {
	return &Latch{send: send}
}

// Reply sends text if the latch has not fired yet. It reports whether this
// call was the one that fired.
func (l *Latch) Reply(text string) (bool, error) {
	if !l.fired.CompareAndSwap(false, true) {
		return false, nil
	}
	return true, l.send(text)
}

// Fired reports whether a reply has been sent.
func (l *Latch) Fired() bool {
	return l.fired.Load()
}
