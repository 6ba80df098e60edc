package observations

import "github.com/corpusvault/snapshot/corpus"

// DecodeContent re-parses an Observation's generic Content through schema,
// giving callers typed access without the Client itself being generic.
func DecodeContent[T any](obs corpus.Observation, schema interface {
	Parse([]byte) (T, error)
}) (T, error) {
	var zero T
	raw, err := marshalContent(obs.Content)
	if err != nil {
		return zero, err
	}
	return schema.Parse(raw)
}
