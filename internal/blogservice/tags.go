package blogservice

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/sushihentaime/blogcms/internal/common"
)

// parseTags accepts a JSON array of strings or a JSON string whose contents are such an
// array. A string that is not valid JSON is reported as an unexpected error; any other
// shape is invalid input.
func parseTags(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []string{}, nil
	}

	switch raw[0] {
	case '"':
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return nil, common.InvalidFields(map[string]string{"tags": "must be an array of strings"})
		}

		var tags []string
		if err := json.Unmarshal([]byte(encoded), &tags); err != nil {
			return nil, common.Unexpected("could not parse tags", fmt.Errorf("tags %q: %w", encoded, err))
		}
		return nonNil(tags), nil

	case '[':
		var tags []string
		if err := json.Unmarshal(raw, &tags); err != nil {
			return nil, common.InvalidFields(map[string]string{"tags": "must be an array of strings"})
		}
		return nonNil(tags), nil

	default:
		return nil, common.InvalidFields(map[string]string{"tags": "must be an array of strings"})
	}
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
