package analyzer

import (
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// tesseractExtractor implements TextExtractor on a gosseract client.
// gosseract clients are not safe for concurrent use, so calls are
// serialized here.
type tesseractExtractor struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseractExtractor creates a label text extractor backed by the
// local tesseract installation.
func NewTesseractExtractor() TextExtractor {
	return &tesseractExtractor{client: gosseract.NewClient()}
}

func (e *tesseractExtractor) ExtractText(data []byte) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.client.SetImageFromBytes(data); err != nil {
		return "", err
	}
	return e.client.Text()
}

func (e *tesseractExtractor) Close() error {
	return e.client.Close()
}
