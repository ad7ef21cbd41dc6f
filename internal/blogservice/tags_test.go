package blogservice

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sushihentaime/blogcms/internal/common"
)

func TestParseTags(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		want     []string
		wantKind common.Kind
	}{
		{name: "absent", raw: "", want: []string{}},
		{name: "null", raw: "null", want: []string{}},
		{name: "native array", raw: `["a","b"]`, want: []string{"a", "b"}},
		{name: "json string", raw: `"[\"a\",\"b\"]"`, want: []string{"a", "b"}},
		{name: "empty array string", raw: `"[]"`, want: []string{}},
		{name: "malformed json string", raw: `"[\"a\","`, wantKind: common.KindUnexpected},
		{name: "array of numbers", raw: `[1,2]`, wantKind: common.KindInvalidInput},
		{name: "number", raw: `42`, wantKind: common.KindInvalidInput},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseTags(json.RawMessage(tc.raw))
			if tc.wantKind != "" {
				assert.Error(t, err)
				assert.Equal(t, tc.wantKind, common.AsError(err).Kind)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
