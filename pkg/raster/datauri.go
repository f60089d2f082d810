package raster

import (
	"encoding/base64"
	"net/url"
	"strings"

	"github.com/matzehuels/pngexport/pkg/errors"
)

// EncodeDataURI returns a base64 data URI for data.
func EncodeDataURI(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI splits a data URI into its media type and payload.
// Both base64 and percent-encoded payloads are accepted. A missing media
// type defaults to text/plain.
func DecodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, errors.New(errors.ErrCodeInvalidInput, "not a data URI")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, errors.New(errors.ErrCodeInvalidInput, "data URI has no payload separator")
	}

	mediaType, isBase64 := header, false
	if mt, found := strings.CutSuffix(header, ";base64"); found {
		mediaType, isBase64 = mt, true
	}
	if mediaType == "" {
		mediaType = "text/plain"
	}

	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode base64 payload")
		}
		return mediaType, data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode percent-encoded payload")
	}
	return mediaType, []byte(s), nil
}
