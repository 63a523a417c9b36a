// Package store defines persistence interfaces for the knowledge base
// backing the information tools. Conversation state is never persisted
// here; agents own their history in memory.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// Document is a stored knowledge-base entry, keyed by topic.
type Document struct {
	Topic     string    `json:"topic"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentStore manages knowledge-base documents looked up by the
// get_information tool and administered over HTTP.
type DocumentStore interface {
	// Put creates or replaces the document for a topic.
	Put(ctx context.Context, doc *Document) error

	// Get retrieves a document by topic. Returns ErrNotFound when the
	// topic is unknown.
	Get(ctx context.Context, topic string) (*Document, error)

	// List returns all documents ordered by topic.
	List(ctx context.Context) ([]Document, error)

	// Delete removes a document by topic. Returns ErrNotFound when the
	// topic is unknown.
	Delete(ctx context.Context, topic string) error
}
