// Package encoder turns raw image blobs into the transport-safe text
// encoding embedded in vision requests.
package encoder

import (
	"encoding/base64"
	"fmt"
	"io"

	"go-shipment-verifier/internal/workpool"
)

// DefaultMimeType is declared for every encoded image regardless of
// the source format; the vision endpoint resolves the actual codec
// from the payload itself.
const DefaultMimeType = "image/jpeg"

// EncodedImage is the base64 form of one image blob. Derived and
// disposable; never persisted.
type EncodedImage struct {
	MimeType string
	Data     string
}

// EncodeBytes encodes one image blob.
func EncodeBytes(data []byte) EncodedImage {
	return EncodedImage{
		MimeType: DefaultMimeType,
		Data:     base64.StdEncoding.EncodeToString(data),
	}
}

// Encode reads and encodes one image blob. A read failure surfaces to
// the caller and is not retried.
func Encode(r io.Reader) (EncodedImage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return EncodedImage{}, fmt.Errorf("failed to read image: %w", err)
	}
	return EncodeBytes(data), nil
}

// Decode recovers the original bytes from an encoded image.
func Decode(img EncodedImage) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(img.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image data: %w", err)
	}
	return data, nil
}

// EncodeAll encodes a batch of blobs, preserving input order. The
// encodings are independent, so they run through the shared worker
// pool when one is supplied.
func EncodeAll(pool *workpool.WorkerPool, blobs [][]byte) []EncodedImage {
	encoded := make([]EncodedImage, len(blobs))
	if pool == nil {
		for i, b := range blobs {
			encoded[i] = EncodeBytes(b)
		}
		return encoded
	}

	jobs := make([]func(), len(blobs))
	for i, b := range blobs {
		i, b := i, b
		jobs[i] = func() {
			encoded[i] = EncodeBytes(b)
		}
	}
	pool.Do(jobs...)
	return encoded
}
