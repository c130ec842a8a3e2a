package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// a 1x1 transparent PNG
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func TestDecode_PNGRoundTrip(t *testing.T) {
	uri := fmt.Sprintf("data:image/png;base64,%s", base64.StdEncoding.EncodeToString(pngBytes))

	data, fileName, err := Decode(uri)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if fileName != "file.png" {
		t.Errorf("file name: expected file.png, got %s", fileName)
	}
	if !bytes.Equal(data, pngBytes) {
		t.Errorf("decoded bytes differ from original")
	}
}

func TestDecode_SubtypeVariants(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("hello"))

	tests := []struct {
		descriptor string
		fileName   string
	}{
		{"data:image/jpeg", "file.jpeg"},
		{"data:application/pdf", "file.pdf"},
		{"image/gif", "file.gif"},
	}
	for _, tt := range tests {
		_, fileName, err := Decode(tt.descriptor + ";base64," + payload)
		if err != nil {
			t.Errorf("Decode(%s) failed: %v", tt.descriptor, err)
			continue
		}
		if fileName != tt.fileName {
			t.Errorf("Decode(%s): expected %s, got %s", tt.descriptor, tt.fileName, fileName)
		}
	}
}

func TestDecode_MissingSeparator(t *testing.T) {
	_, _, err := Decode("data:image/png,notbase64encoded")
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestDecode_MalformedPayload(t *testing.T) {
	_, _, err := Decode("data:image/png;base64,!!!not-base64!!!")
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestDecode_NoSubtype(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("hello"))
	for _, descriptor := range []string{"data:imagepng", "data:image/"} {
		_, _, err := Decode(descriptor + ";base64," + payload)
		var decodeErr *DecodeError
		if !errors.As(err, &decodeErr) {
			t.Errorf("Decode(%s): expected DecodeError, got %v", descriptor, err)
		}
	}
}

func TestDiskStore_StoreServesUniqueURLs(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := NewDiskStore(dir, "http://localhost:8080", logger)

	url1, err := store.Store([]byte("first"), "file.png")
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	url2, err := store.Store([]byte("second"), "file.png")
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	if url1 == url2 {
		t.Errorf("two stored blobs with the same name share a URL: %s", url1)
	}

	for _, url := range []string{url1, url2} {
		if !strings.HasPrefix(url, "http://localhost:8080/media_files/") {
			t.Errorf("unexpected URL shape: %s", url)
		}
	}

	// the first blob should be on disk, byte for byte
	rel := strings.TrimPrefix(url1, "http://localhost:8080/")
	content, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("reading stored blob: %v", err)
	}
	if string(content) != "first" {
		t.Errorf("stored blob content: expected %q, got %q", "first", content)
	}
}
