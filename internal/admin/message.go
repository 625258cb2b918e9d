package admin

import (
	"time"
)

// DefaultMessageTTL is how long a message stays visible unless superseded
const DefaultMessageTTL = 3 * time.Second

// MessageKind tells success and error messages apart
type MessageKind int

const (
	MessageSuccess MessageKind = iota
	MessageError
)

func (k MessageKind) String() string {
	switch k {
	case MessageSuccess:
		return "success"
	case MessageError:
		return "error"
	default:
		return "unknown"
	}
}

// Message is a transient notice shown to the operator
type Message struct {
	Text string
	Kind MessageKind
}

const (
	msgLoadFailed   = "failed to load data"
	msgSaveFailed   = "failed to save item"
	msgDeleteFailed = "failed to delete item"
	msgCreated      = "item created"
	msgUpdated      = "item updated"
	msgDeleted      = "item deleted"
)

// afterFunc schedules f after d and returns a function cancelling it
type afterFunc func(d time.Duration, f func()) (stop func() bool)

func timeAfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// showLocked replaces the current message and arms its expiry. Callers hold o.mu.
func (o *Orchestrator) showLocked(text string, kind MessageKind) {
	if o.stopExpiry != nil {
		o.stopExpiry()
		o.stopExpiry = nil
	}
	o.message = &Message{Text: text, Kind: kind}
	o.messageSeq++
	seq := o.messageSeq

	if o.ttl <= 0 {
		return
	}
	o.stopExpiry = o.after(o.ttl, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if o.messageSeq == seq {
			o.message = nil
			o.stopExpiry = nil
		}
	})
}

// Message returns the visible message, if any
func (o *Orchestrator) Message() (Message, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.message == nil {
		return Message{}, false
	}
	return *o.message, true
}
