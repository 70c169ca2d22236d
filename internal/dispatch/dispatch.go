// Where: internal/dispatch/dispatch.go
// What: Invocation contracts for deployed capability handles.
// Why: Sync handles wait for the response; async handles only for dispatch acknowledgment.
package dispatch

import (
	"context"

	"github.com/amberflo/sbt-aws-amberflo/internal/adapter"
)

// Result of an invocation. Payload is empty for async dispatch, where the
// caller is decoupled from completion.
type Result struct {
	StatusCode int32
	Payload    []byte
	Async      bool
}

// Invoker calls a capability handle.
type Invoker interface {
	Invoke(ctx context.Context, handle adapter.Handle, payload []byte) (Result, error)
}

// IngestPublisher hands a usage event to the event bus; the metering
// service picks it up without the caller waiting on it.
type IngestPublisher interface {
	PublishIngest(ctx context.Context, busName string, detail []byte) error
}
