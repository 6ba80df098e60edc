package codec

import (
	"encoding/json"

	"github.com/corpusvault/snapshot/corpus"
)

// JSONContentType is the content type declared by JSONCodec.
const JSONContentType = "application/json"

// JSONCodec encodes via canonical encoding/json and decodes through an
// optional Schema for validation, mirroring the teacher's JSON-as-TEXT
// persistence idiom (horos47/storage/documents.go's json.Marshal(metadata))
// but generic over the decoded type.
type JSONCodec[T any] struct {
	// Schema validates the parsed value. If nil, Decode just unmarshals.
	Schema Schema[T]
}

// NewJSONCodec creates a JSONCodec with no schema validation.
func NewJSONCodec[T any]() *JSONCodec[T] { return &JSONCodec[T]{} }

// NewJSONCodecWithSchema creates a JSONCodec whose Decode validates through schema.
func NewJSONCodecWithSchema[T any](schema Schema[T]) *JSONCodec[T] {
	return &JSONCodec[T]{Schema: schema}
}

func (c *JSONCodec[T]) ContentType() string { return JSONContentType }

func (c *JSONCodec[T]) Encode(value T) ([]byte, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return nil, corpus.NewError(corpus.KindEncodeError, "json_codec.encode", err, "marshal")
	}
	return b, nil
}

func (c *JSONCodec[T]) Decode(data []byte) (T, error) {
	if c.Schema != nil {
		v, err := c.Schema.Parse(data)
		if err != nil {
			var zero T
			return zero, corpus.NewError(corpus.KindValidationError, "json_codec.decode", err, "schema validation failed")
		}
		return v, nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		var zero T
		return zero, corpus.NewError(corpus.KindDecodeError, "json_codec.decode", err, "unmarshal")
	}
	return v, nil
}
