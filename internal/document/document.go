package document

import (
	"bytes"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/crypto/sha3"
	"golang.org/x/net/html"
)

// Document is a parsed, read-only HTML document.
// It embeds *goquery.Document, so selector queries (Find, FindMatcher)
// are available directly on it.
type Document struct {
	*goquery.Document

	// Source is the file path or URL the document was read from.
	Source string

	// Hash is the hex SHA3-256 digest of the raw document bytes.
	// It identifies the exact content that was graded.
	Hash string

	// Size is the number of raw bytes parsed.
	Size int
}

// Parse reads all of r and parses it as HTML.
// The source is recorded on the Document and used in error messages.
func Parse(source string, r io.Reader) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	return parseBytes(source, raw)
}

// parseBytes parses raw HTML bytes that have already been read.
func parseBytes(source string, raw []byte) (*Document, error) {
	root, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}

	sum := sha3.Sum256(raw)
	return &Document{
		Document: goquery.NewDocumentFromNode(root),
		Source:   source,
		Hash:     hex.EncodeToString(sum[:]),
		Size:     len(raw),
	}, nil
}

// LoadFile reads and parses the HTML file at path.
// It returns a *MissingFileError when the file does not exist.
func LoadFile(path string) (*Document, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // User-provided path is intentional
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MissingFileError{Path: path}
		}
		return nil, err
	}
	return parseBytes(path, raw)
}

// RequireFile returns a *MissingFileError when path does not exist.
// It is used to validate file arguments before any work starts.
func RequireFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &MissingFileError{Path: path}
		}
		return err
	}
	return nil
}
