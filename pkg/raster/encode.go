package raster

import (
	"bytes"
	"image/png"

	"github.com/h2non/filetype"

	"github.com/matzehuels/pngexport/pkg/errors"
)

// MediaTypePNG is the media type of encoded surfaces.
const MediaTypePNG = "image/png"

// EncodePNG encodes the surface as a PNG image.
// Empty and released surfaces fail with ENCODE_FAILURE.
func EncodePNG(s *Surface) ([]byte, error) {
	if s.img == nil {
		return nil, errors.New(errors.ErrCodeEncodeFailure, "surface was released")
	}
	if s.Empty() {
		return nil, errors.New(errors.ErrCodeEncodeFailure, "surface is %dx%d", s.width, s.height)
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(&buf, s.img); err != nil {
		return nil, errors.Wrap(errors.ErrCodeEncodeFailure, err, "encode png")
	}
	if !filetype.Is(buf.Bytes(), "png") {
		return nil, errors.New(errors.ErrCodeEncodeFailure, "encoder produced a non-png payload")
	}
	return buf.Bytes(), nil
}

// EncodePNGDataURI encodes the surface as a PNG data URI.
func EncodePNGDataURI(s *Surface) (string, error) {
	data, err := EncodePNG(s)
	if err != nil {
		return "", err
	}
	return EncodeDataURI(MediaTypePNG, data), nil
}
