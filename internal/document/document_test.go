package document

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const fixtureHTML = `<html><head><title>Fixture</title></head>
<body><h1>Hello</h1><a href="#">link</a><div id="content"></div></body></html>`

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("parses and records source", func(t *testing.T) {
		t.Parallel()

		doc, err := Parse("inline", strings.NewReader(fixtureHTML))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if doc.Source != "inline" {
			t.Errorf("expected source 'inline', got %q", doc.Source)
		}
		if doc.Find("h1").Length() != 1 {
			t.Error("expected one h1 element")
		}
		if doc.Size != len(fixtureHTML) {
			t.Errorf("expected size %d, got %d", len(fixtureHTML), doc.Size)
		}
	})

	t.Run("hash is a 64 character hex digest", func(t *testing.T) {
		t.Parallel()

		doc, err := Parse("inline", strings.NewReader(fixtureHTML))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(doc.Hash) != 64 {
			t.Errorf("expected 64 hex characters, got %d", len(doc.Hash))
		}
	})

	t.Run("same content yields same hash", func(t *testing.T) {
		t.Parallel()

		a, err := Parse("a", strings.NewReader(fixtureHTML))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		b, err := Parse("b", strings.NewReader(fixtureHTML))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.Hash != b.Hash {
			t.Error("expected equal hashes for equal content")
		}
	})

	t.Run("malformed markup still parses", func(t *testing.T) {
		t.Parallel()

		doc, err := Parse("broken", strings.NewReader("<div><p>unclosed"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if doc.Find("p").Length() != 1 {
			t.Error("expected parser to recover the p element")
		}
	})

	t.Run("read failure is a ParseError", func(t *testing.T) {
		t.Parallel()

		_, err := Parse("failing", failingReader{})
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("expected *ParseError, got %v", err)
		}
		if !errors.Is(err, ErrParse) {
			t.Error("expected error to match ErrParse")
		}
	})
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("read failed")
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	t.Run("loads existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "index.html")
		if err := os.WriteFile(path, []byte(fixtureHTML), 0600); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}

		doc, err := LoadFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if doc.Source != path {
			t.Errorf("expected source %q, got %q", path, doc.Source)
		}
		if doc.Find("#content").Length() != 1 {
			t.Error("expected #content element")
		}
	})

	t.Run("missing file returns MissingFileError", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "missing.html")
		_, err := LoadFile(path)

		var missing *MissingFileError
		if !errors.As(err, &missing) {
			t.Fatalf("expected *MissingFileError, got %v", err)
		}
		if missing.Path != path {
			t.Errorf("expected path %q, got %q", path, missing.Path)
		}
		if !errors.Is(err, ErrFileNotFound) {
			t.Error("expected error to match ErrFileNotFound")
		}
		if !strings.Contains(err.Error(), "does not exist") {
			t.Errorf("expected 'does not exist' in message, got %q", err.Error())
		}
	})
}

func TestRequireFile(t *testing.T) {
	t.Parallel()

	t.Run("existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "checks.json")
		if err := os.WriteFile(path, []byte("[]"), 0600); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		if err := RequireFile(path); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		err := RequireFile(filepath.Join(t.TempDir(), "nope.json"))
		if !errors.Is(err, ErrFileNotFound) {
			t.Errorf("expected ErrFileNotFound, got %v", err)
		}
	})
}
