package document

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// Fetcher defaults.
const (
	// DefaultTimeout bounds a whole fetch, including reading the body.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "grader/1.0 (+https://github.com/nao1215/grader)"

	// DefaultMaxBodySize is the largest response body that will be parsed.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// maxRedirects stops redirect loops.
	maxRedirects = 10
)

// Fetcher retrieves remote HTML documents over HTTP.
// A Fetcher is safe for concurrent use.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*fetcherConfig)

type fetcherConfig struct {
	timeout      time.Duration
	userAgent    string
	maxBodySize  int64
	proxyAddress string
	client       *http.Client
}

// WithTimeout sets the overall timeout of a fetch.
func WithTimeout(d time.Duration) FetcherOption {
	return func(c *fetcherConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(c *fetcherConfig) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithMaxBodySize sets the largest accepted response body in bytes.
func WithMaxBodySize(size int64) FetcherOption {
	return func(c *fetcherConfig) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// WithSOCKS5Proxy routes requests through a SOCKS5 proxy at host:port,
// for example a local Tor daemon at 127.0.0.1:9050.
func WithSOCKS5Proxy(address string) FetcherOption {
	return func(c *fetcherConfig) {
		c.proxyAddress = address
	}
}

// WithHTTPClient uses the given client as is. Timeout and proxy options
// are ignored when a client is supplied.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(c *fetcherConfig) {
		c.client = client
	}
}

// NewFetcher creates a Fetcher. It fails only when a proxy address is
// configured and is not in host:port form.
func NewFetcher(opts ...FetcherOption) (*Fetcher, error) {
	cfg := &fetcherConfig{
		timeout:     DefaultTimeout,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	client := cfg.client
	if client == nil {
		transport, err := newTransport(cfg.proxyAddress)
		if err != nil {
			return nil, err
		}
		client = &http.Client{
			Transport: transport,
			Timeout:   cfg.timeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}

	return &Fetcher{
		client:      client,
		userAgent:   cfg.userAgent,
		maxBodySize: cfg.maxBodySize,
	}, nil
}

// newTransport builds the HTTP transport, dialing through a SOCKS5 proxy
// when proxyAddress is set.
func newTransport(proxyAddress string) (*http.Transport, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // DefaultTransport is always *http.Transport
	if proxyAddress == "" {
		return transport, nil
	}

	if !IsValidProxyAddress(proxyAddress) {
		return nil, ErrInvalidProxyAddress
	}

	dialer, err := proxy.SOCKS5("tcp", proxyAddress, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	transport.Proxy = nil
	if cd, ok := dialer.(proxy.ContextDialer); ok {
		transport.DialContext = cd.DialContext
	} else {
		transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		}
	}
	return transport, nil
}

// IsValidProxyAddress reports whether address is in "host:port" form with a
// port between 1 and 65535.
func IsValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" || strings.ContainsAny(port, "+-") {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}

// Fetch downloads rawURL and parses the body.
// Transport errors, non-2xx responses and oversized bodies are returned as
// *FetchError; unparseable bodies as *ParseError. No Document is returned
// with an error.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &FetchError{
			URL: rawURL,
			Err: fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status),
		}
	}

	// Read one byte past the limit to tell "exactly at limit" from "too large".
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	if int64(len(body)) > f.maxBodySize {
		return nil, &FetchError{URL: rawURL, Err: ErrBodyTooLarge}
	}

	return parseBytes(rawURL, body)
}
