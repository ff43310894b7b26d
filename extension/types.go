package extension

import (
	"reflect"
	"strings"

	"github.com/viant/x"
)

// Types keeps the Go types of service-produced payloads so that state loaded
// back from a JSON snapshot can be rehydrated into its original form.
type Types struct {
	x.Registry
}

// Register adds a payload type to the registry.
func (t *Types) Register(dataType *x.Type) {
	t.Registry.Register(dataType)
}

// Lookup returns a payload type from the registry. The name accepts an
// optional collection modifier prefix, i.e. "[]content.Chunk" or
// "map[string]learner.Profile".
func (t *Types) Lookup(dataType string) *x.Type {
	typeModifier := ""
	if idx := strings.LastIndex(dataType, "]"); idx != -1 {
		typeModifier = dataType[:idx+1]
		dataType = dataType[idx+1:]
	}
	ret := t.Registry.Lookup(dataType)
	if ret == nil {
		return nil
	}
	rType := ret.Type
	switch strings.TrimSpace(typeModifier) {
	case "[]":
		rType = reflect.SliceOf(rType)
	case "[][]":
		rType = reflect.SliceOf(reflect.SliceOf(rType))
	case "map[string]":
		rType = reflect.MapOf(reflect.TypeOf(""), rType)
	case "map[string][]":
		rType = reflect.MapOf(reflect.TypeOf(""), reflect.SliceOf(rType))
	}
	if rType != ret.Type {
		return x.NewType(rType)
	}
	return ret
}

// NewTypes creates a new payload type registry.
func NewTypes(types ...*x.Type) *Types {
	ret := &Types{Registry: *x.NewRegistry()}
	for _, t := range types {
		if t != nil {
			ret.Register(t)
		}
	}
	return ret
}
