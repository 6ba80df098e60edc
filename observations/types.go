package observations

import (
	"encoding/json"

	"github.com/corpusvault/snapshot/codec"
)

// TypeDef registers one observation type's validator: content put under
// this type name is parsed against its schema before being persisted.
// Generic instantiation is erased into a closure so heterogeneous
// observation types can share one Client.
type TypeDef struct {
	Name     string
	validate func(json.RawMessage) (any, error)
}

// NewTypeDef builds a TypeDef from a codec.Schema[T], the same structural
// "fallible parse" shape JSONCodec uses for decode-time validation.
func NewTypeDef[T any](name string, schema codec.Schema[T]) TypeDef {
	return TypeDef{
		Name: name,
		validate: func(raw json.RawMessage) (any, error) {
			return schema.Parse(raw)
		},
	}
}
