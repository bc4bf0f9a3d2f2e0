package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/grader/internal/document"
)

const testPage = "<html><body><h1>Hello</h1></body></html>"

func writePage(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "index.html")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write page: %v", err)
	}
	return path
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "index.html")
		_, err := New(path)
		var missing *document.MissingFileError
		if !errors.As(err, &missing) {
			t.Fatalf("expected MissingFileError, got %v", err)
		}
		if !strings.Contains(err.Error(), "does not exist") {
			t.Errorf("unexpected message %q", err.Error())
		}
	})

	t.Run("page is read once", func(t *testing.T) {
		t.Parallel()

		path := writePage(t, testPage)
		s, err := New(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := os.WriteFile(path, []byte("changed"), 0o600); err != nil {
			t.Fatalf("failed to rewrite page: %v", err)
		}

		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Body.String() != testPage {
			t.Errorf("expected original page, got %q", rec.Body.String())
		}
	})
}

func TestHandler(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	s, err := New(writePage(t, testPage), WithLogger(logger))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testCases := []struct {
		name        string
		method      string
		path        string
		status      int
		body        string
		contentType string
	}{
		{"index", http.MethodGet, "/", http.StatusOK, testPage, "text/html; charset=utf-8"},
		{"health", http.MethodGet, "/health", http.StatusOK, "OK", "text/plain; charset=utf-8"},
		{"unknown path", http.MethodGet, "/missing", http.StatusNotFound, "", ""},
		{"wrong method", http.MethodPost, "/", http.StatusMethodNotAllowed, "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))

			if rec.Code != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, rec.Code)
			}
			if tc.body != "" && rec.Body.String() != tc.body {
				t.Errorf("expected body %q, got %q", tc.body, rec.Body.String())
			}
			if tc.contentType != "" && rec.Header().Get("Content-Type") != tc.contentType {
				t.Errorf("expected content type %q, got %q", tc.contentType, rec.Header().Get("Content-Type"))
			}
		})
	}

	if !strings.Contains(logs.String(), "path=/health") {
		t.Errorf("expected request to be logged, got %q", logs.String())
	}
}

func TestServe(t *testing.T) {
	t.Parallel()

	s, err := New(writePage(t, testPage), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ctx, ln)
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	if err != nil {
		cancel()
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != testPage {
		t.Errorf("unexpected body %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestPort(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		t.Setenv(PortEnv, "")
		if got := Port(); got != DefaultPort {
			t.Errorf("expected %s, got %s", DefaultPort, got)
		}
	})

	t.Run("from environment", func(t *testing.T) {
		t.Setenv(PortEnv, "8080")
		if got := Port(); got != "8080" {
			t.Errorf("expected 8080, got %s", got)
		}
	})
}
