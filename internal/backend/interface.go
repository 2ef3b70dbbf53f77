package backend

import (
	"context"

	"masjid/internal/records"
	"masjid/internal/services"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the record store and the optional pieces that come
// with it.
type BackendResult struct {
	Store records.Store
	// Publisher is nil unless the backend announces writes over AMQP.
	Publisher services.Publisher
	// Ping reports readiness. Nil means always ready.
	Ping    func(ctx context.Context) error
	Cleanup CleanupFunc
}

// Close runs Cleanup when set.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Memory backend specific
	DataDirectory string

	// SQLite specific
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// GraphQL specific
	GraphQLURL string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend  BackendType = "memory"
	SQLiteBackend  BackendType = "sqlite"
	GraphQLBackend BackendType = "graphql"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, GraphQLBackend:
		return true
	default:
		return false
	}
}
