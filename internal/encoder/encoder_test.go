package encoder

import (
	"bytes"
	"errors"
	"testing"

	"go-shipment-verifier/internal/workpool"
)

func TestEncodeBytes_RoundTrip(t *testing.T) {
	original := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46}

	encoded := EncodeBytes(original)
	if encoded.MimeType != DefaultMimeType {
		t.Errorf("Expected mime type %q, got %q", DefaultMimeType, encoded.MimeType)
	}
	if encoded.Data == "" {
		t.Fatal("Expected non-empty encoded data")
	}

	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(decoded, original) {
		t.Errorf("Round trip mismatch: got %v, want %v", decoded, original)
	}
}

func TestEncode_Reader(t *testing.T) {
	original := []byte("synthetic image payload")

	encoded, err := Encode(bytes.NewReader(original))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(decoded, original) {
		t.Error("Round trip mismatch for reader-based encoding")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk unplugged")
}

func TestEncode_ReadFailure(t *testing.T) {
	_, err := Encode(failingReader{})
	if err == nil {
		t.Fatal("Expected error for failing reader")
	}
}

func TestEncodeAll_PreservesOrder(t *testing.T) {
	blobs := [][]byte{
		[]byte("first"),
		[]byte("second"),
		[]byte("third"),
	}

	pool := workpool.NewWorkerPool(2)
	pool.Start()
	defer pool.Close()

	for name, p := range map[string]*workpool.WorkerPool{"with pool": pool, "without pool": nil} {
		encoded := EncodeAll(p, blobs)
		if len(encoded) != len(blobs) {
			t.Fatalf("%s: expected %d encodings, got %d", name, len(blobs), len(encoded))
		}
		for i, e := range encoded {
			decoded, err := Decode(e)
			if err != nil {
				t.Fatalf("%s: decode %d failed: %v", name, i, err)
			}
			if !bytes.Equal(decoded, blobs[i]) {
				t.Errorf("%s: encoding %d out of order", name, i)
			}
		}
	}
}
