package codec

// TextContentType is the content type declared by TextCodec.
const TextContentType = "text/plain; charset=utf-8"

// TextCodec is a UTF-8 pass-through codec.
type TextCodec struct{}

func (TextCodec) ContentType() string { return TextContentType }

func (TextCodec) Encode(value string) ([]byte, error) { return []byte(value), nil }

func (TextCodec) Decode(data []byte) (string, error) { return string(data), nil }
