package execution

import (
	"github.com/Deepesh-vendoti/LMW-KG-sub000/extension"
	"github.com/viant/structology/conv"
)

type Option func(state *State)

// WithTypes sets the payload type registry used by TypedValue.
func WithTypes(types *extension.Types) Option {
	return func(state *State) {
		state.types = types
	}
}

// WithConverter sets the converter used by TypedValue.
func WithConverter(converter *conv.Converter) Option {
	return func(state *State) {
		state.converter = converter
	}
}

// WithLearner sets the learner the state is scoped to.
func WithLearner(learnerID string) Option {
	return func(state *State) {
		state.LearnerID = learnerID
	}
}

// WithValues seeds the state with initial values.
func WithValues(values map[string]interface{}) Option {
	return func(state *State) {
		for k, v := range values {
			state.Values[k] = v
		}
	}
}

// WithStateListeners attaches listeners invoked on every Set. The call is
// made synchronously; listeners must return quickly and must not call back
// into the state to avoid deadlocks.
func WithStateListeners(listeners ...StateListener) Option {
	return func(state *State) {
		if len(listeners) == 0 {
			return
		}
		state.listeners = append(state.listeners, listeners...)
	}
}

// NewConverter returns a converter configured the way the engine expects:
// pointer data cloned, unmapped fields ignored.
func NewConverter() *conv.Converter {
	options := conv.DefaultOptions()
	options.ClonePointerData = true
	options.IgnoreUnmapped = true
	options.AccessUnexported = true
	return conv.NewConverter(options)
}
