package codec

// BinaryContentType is the content type declared by BinaryCodec.
const BinaryContentType = "application/octet-stream"

// BinaryCodec is the identity codec over raw bytes.
type BinaryCodec struct{}

func (BinaryCodec) ContentType() string { return BinaryContentType }

func (BinaryCodec) Encode(value []byte) ([]byte, error) {
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (BinaryCodec) Decode(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}
