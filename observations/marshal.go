package observations

import (
	"encoding/json"

	"github.com/corpusvault/snapshot/corpus"
)

func marshalContent(content any) ([]byte, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, corpus.NewError(corpus.KindEncodeError, "observations.decode_content", err, "marshal")
	}
	return raw, nil
}
