// Package store keeps chat transcripts by session.
package store

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/modelfactory/pkg/llms"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/modelfactory", "store")

// ErrInvalidSession is returned when the session ID is empty
var ErrInvalidSession = errors.New("invalid session")

// DefaultMaxMessages is the number of messages kept per session
const DefaultMaxMessages = 50

// MessageStore keeps the messages of chat sessions
type MessageStore interface {
	// Messages returns the session messages, oldest first
	Messages(ctx context.Context, sessionID string) ([]llms.Message, error)
	// Add appends messages to the session
	Add(ctx context.Context, sessionID string, msgs ...llms.Message) error
	// Reset removes the session
	Reset(ctx context.Context, sessionID string) error
	// Sessions returns the sorted session IDs
	Sessions(ctx context.Context) ([]string, error)
}

// Option configures the store
type Option func(*options)

type options struct {
	maxMessages int
}

// WithMaxMessages specifies the number of most recent messages kept per session,
// zero or negative keeps all messages.
func WithMaxMessages(n int) Option {
	return func(o *options) {
		o.maxMessages = n
	}
}

func newOptions(opts []Option) options {
	o := options{maxMessages: DefaultMaxMessages}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// record is the persisted form of a message
type record struct {
	Role    llms.Role `json:"role"`
	Content string    `json:"content"`
}

func toRecord(msg llms.Message) record {
	return record{Role: msg.Role, Content: msg.GetContent()}
}

func (r record) message() llms.Message {
	return llms.MessageFromTextParts(r.Role, r.Content)
}
