package document

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetcherFetch(t *testing.T) {
	t.Parallel()

	t.Run("fetches and parses HTML", func(t *testing.T) {
		t.Parallel()

		uaCh := make(chan string, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uaCh <- r.Header.Get("User-Agent")
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(fixtureHTML))
		}))
		defer server.Close()

		f, err := NewFetcher(WithUserAgent("grader-test"))
		if err != nil {
			t.Fatalf("failed to create fetcher: %v", err)
		}

		doc, err := f.Fetch(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if doc.Source != server.URL {
			t.Errorf("expected source %q, got %q", server.URL, doc.Source)
		}
		if doc.Find("h1").Length() != 1 {
			t.Error("expected h1 element")
		}
		if gotUA := <-uaCh; gotUA != "grader-test" {
			t.Errorf("expected user agent 'grader-test', got %q", gotUA)
		}
	})

	t.Run("non-2xx status is a FetchError", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		defer server.Close()

		f, err := NewFetcher()
		if err != nil {
			t.Fatalf("failed to create fetcher: %v", err)
		}

		doc, err := f.Fetch(context.Background(), server.URL)
		if doc != nil {
			t.Error("expected no document on failure")
		}
		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) {
			t.Fatalf("expected *FetchError, got %v", err)
		}
		if !errors.Is(err, ErrUnexpectedStatus) {
			t.Errorf("expected ErrUnexpectedStatus, got %v", err)
		}
		if !errors.Is(err, ErrFetch) {
			t.Error("expected error to match ErrFetch")
		}
	})

	t.Run("connection failure is a FetchError", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		url := server.URL
		server.Close()

		f, err := NewFetcher(WithTimeout(2 * time.Second))
		if err != nil {
			t.Fatalf("failed to create fetcher: %v", err)
		}

		_, err = f.Fetch(context.Background(), url)
		if !errors.Is(err, ErrFetch) {
			t.Errorf("expected ErrFetch, got %v", err)
		}
	})

	t.Run("invalid URL is a FetchError", func(t *testing.T) {
		t.Parallel()

		f, err := NewFetcher()
		if err != nil {
			t.Fatalf("failed to create fetcher: %v", err)
		}

		_, err = f.Fetch(context.Background(), "://bad")
		if !errors.Is(err, ErrFetch) {
			t.Errorf("expected ErrFetch, got %v", err)
		}
	})

	t.Run("oversized body is rejected", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(strings.Repeat("a", 64)))
		}))
		defer server.Close()

		f, err := NewFetcher(WithMaxBodySize(16))
		if err != nil {
			t.Fatalf("failed to create fetcher: %v", err)
		}

		_, err = f.Fetch(context.Background(), server.URL)
		if !errors.Is(err, ErrBodyTooLarge) {
			t.Errorf("expected ErrBodyTooLarge, got %v", err)
		}
	})

	t.Run("timeout is a FetchError", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		f, err := NewFetcher(WithTimeout(50 * time.Millisecond))
		if err != nil {
			t.Fatalf("failed to create fetcher: %v", err)
		}

		_, err = f.Fetch(context.Background(), server.URL)
		if !errors.Is(err, ErrFetch) {
			t.Errorf("expected ErrFetch, got %v", err)
		}
	})

	t.Run("custom client is used", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(fixtureHTML))
		}))
		defer server.Close()

		f, err := NewFetcher(WithHTTPClient(server.Client()))
		if err != nil {
			t.Fatalf("failed to create fetcher: %v", err)
		}
		if _, err := f.Fetch(context.Background(), server.URL); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestNewFetcherProxy(t *testing.T) {
	t.Parallel()

	t.Run("valid proxy address", func(t *testing.T) {
		t.Parallel()

		if _, err := NewFetcher(WithSOCKS5Proxy("127.0.0.1:9050")); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("invalid proxy address", func(t *testing.T) {
		t.Parallel()

		_, err := NewFetcher(WithSOCKS5Proxy("localhost"))
		if !errors.Is(err, ErrInvalidProxyAddress) {
			t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
		}
	})
}

func TestIsValidProxyAddress(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		address string
		valid   bool
	}{
		{"127.0.0.1:9050", true},
		{"localhost:9150", true},
		{"[::1]:9050", true},
		{"127.0.0.1", false},
		{":9050", false},
		{"127.0.0.1:", false},
		{"127.0.0.1:0", false},
		{"127.0.0.1:65536", false},
		{"127.0.0.1:+80", false},
		{"127.0.0.1:abc", false},
	}

	for _, tc := range testCases {
		t.Run(tc.address, func(t *testing.T) {
			t.Parallel()
			if got := IsValidProxyAddress(tc.address); got != tc.valid {
				t.Errorf("IsValidProxyAddress(%q) = %v, expected %v", tc.address, got, tc.valid)
			}
		})
	}
}
