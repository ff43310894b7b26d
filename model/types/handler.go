package types

import (
	"context"

	"github.com/Deepesh-vendoti/LMW-KG-sub000/runtime/execution"
)

// Handler is the opaque behavior of one pipeline service. It receives a copy
// of the current shared workflow state and returns the state it wants merged
// back, or an error. Returning nil state with a nil error keeps the input
// state as-is.
type Handler interface {
	Invoke(ctx context.Context, state *execution.State) (*execution.State, error)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, state *execution.State) (*execution.State, error)

func (f HandlerFunc) Invoke(ctx context.Context, state *execution.State) (*execution.State, error) {
	return f(ctx, state)
}
