// Package codec provides the bidirectional value<->bytes encoders the
// snapshot engine hashes and stores, plus the structural validator
// interface that substitutes for a shared base type.
package codec

// Schema is the structural "has a parse method" validator interface:
// any type offering a fallible Parse(bytes) -> (T, error) can back a
// Codec's decode-time validation, without a shared base interface.
type Schema[T any] interface {
	Parse(data []byte) (T, error)
}

// Codec is bidirectional value<->bytes encoding with a declared content
// type. Encode is not required to validate; a caller may
// legally encode data whose Decode later fails.
type Codec[T any] interface {
	ContentType() string
	Encode(value T) ([]byte, error)
	Decode(data []byte) (T, error)
}
