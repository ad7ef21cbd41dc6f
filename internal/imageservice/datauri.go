package imageservice

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"net/url"
	"strings"
)

const dataImagePrefix = "data:image"

// IsDataURI reports whether s is an inline image rather than a URL.
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, dataImagePrefix)
}

// decodeDataURI returns the media type and payload of a data URI such as
// "data:image/png;base64,iVBOR...".
func decodeDataURI(s string) (string, io.Reader, error) {
	if !IsDataURI(s) {
		return "", nil, ErrInvalidDataURI
	}

	header, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return "", nil, ErrInvalidDataURI
	}

	mediaType, params, _ := strings.Cut(header, ";")

	if params == "base64" || strings.HasSuffix(params, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
		}
		return mediaType, bytes.NewReader(data), nil
	}

	data, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}

	return mediaType, strings.NewReader(data), nil
}
