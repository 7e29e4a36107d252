// Package transport provides the HTTP primitive that provider adapters
// wrap with provider.Execute: TLS configuration, response-body replay,
// rate-limit header parsing, and status-code classification into
// retryable errors. It does not loop or sleep itself — retry scheduling
// is the RetryExecutor's job, this package only classifies each attempt.
package transport

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitInfo holds rate-limit accounting parsed from a provider's
// response headers.
type RateLimitInfo struct {
	RetryAfter            time.Duration
	ResetTime             int64
	RequestsRemaining     int
	InputTokensRemaining  int
	OutputTokensRemaining int
	TokensRemaining       int
}

// HeaderParser extracts RateLimitInfo from a provider's response headers.
// Each built-in adapter supplies its own, since header names differ.
type HeaderParser func(http.Header) RateLimitInfo

// TLSConfig configures outbound TLS for corporate proxies or self-signed
// internal endpoints.
type TLSConfig struct {
	InsecureSkipVerify bool
	CACertificate      string
}

// ConfigureTLS builds an http.Transport from config. A nil config yields
// a transport with Go's default TLS behavior.
func ConfigureTLS(config *TLSConfig) (*http.Transport, error) {
	t := &http.Transport{TLSClientConfig: &tls.Config{}}
	if config == nil {
		return t, nil
	}
	if config.CACertificate != "" {
		caCert, err := os.ReadFile(config.CACertificate)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate from %s: %w", config.CACertificate, err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate from %s", config.CACertificate)
		}
		t.TLSClientConfig.RootCAs = pool
	}
	if config.InsecureSkipVerify {
		t.TLSClientConfig.InsecureSkipVerify = true
	}
	return t, nil
}

// Client sends HTTP requests, replaying the body on caller-driven retry
// and classifying non-2xx responses into a *Error carrying whatever the
// HeaderParser extracted.
type Client struct {
	HTTP         *http.Client
	HeaderParser HeaderParser
	limiter      *rate.Limiter
}

// New builds a Client with the given timeout and optional TLS config.
// A nil tlsConfig uses the default transport. requestsPerSecond throttles
// outbound requests client-side before they ever reach the wire; zero or
// negative disables throttling, since most providers are only bound by
// their own server-side limits, surfaced reactively through Error's
// RateLimit headers instead.
func New(timeout time.Duration, tlsConfig *TLSConfig, headerParser HeaderParser, requestsPerSecond ...float64) (*Client, error) {
	httpClient := &http.Client{Timeout: timeout}
	if tlsConfig != nil {
		transport, err := ConfigureTLS(tlsConfig)
		if err != nil {
			return nil, err
		}
		httpClient.Transport = transport
	}
	c := &Client{HTTP: httpClient, HeaderParser: headerParser}
	if len(requestsPerSecond) > 0 && requestsPerSecond[0] > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond[0]), 1)
	}
	return c, nil
}

// Do sends req once. On a non-2xx response it drains and restores the
// body, classifies the status code, and returns a *Error wrapping the
// response so callers can inspect StatusCode/Body while the caller's
// RetryExecutor decides whether to retry via Error.Retryable().
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, &Error{Message: err.Error(), Err: err, retryable: false}
		}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &Error{Message: err.Error(), Err: err, retryable: true}
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))

	var info RateLimitInfo
	if c.HeaderParser != nil {
		info = c.HeaderParser(resp.Header)
	}

	return resp, &Error{
		StatusCode: resp.StatusCode,
		Message:    extractErrorDetails(body),
		RateLimit:  info,
		retryable:  isRetryableStatus(resp.StatusCode),
	}
}

// ReplayableBody wraps body so req can be replayed across retry attempts
// without re-reading the original reader.
func ReplayableBody(req *http.Request) error {
	if req.Body == nil {
		return nil
	}
	bodyBytes, err := io.ReadAll(req.Body)
	if err != nil {
		return fmt.Errorf("failed to buffer request body: %w", err)
	}
	req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(bodyBytes)), nil
	}
	return nil
}

func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable,
		http.StatusRequestTimeout, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func extractErrorDetails(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}
	s := string(body)
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

// Error is the failure a Client.Do returns for a non-2xx response or a
// transport-level send failure. It implements the Retryable() and
// RetryAfter() hooks provider.Execute looks for.
type Error struct {
	StatusCode int
	Message    string
	RateLimit  RateLimitInfo
	Err        error
	retryable  bool
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error   { return e.Err }
func (e *Error) Retryable() bool { return e.retryable }

// RetryAfter implements provider.RetryAfterHint: prefer an explicit
// Retry-After header, fall back to the rate-limit reset timestamp.
func (e *Error) RetryAfter() (time.Duration, bool) {
	if e.RateLimit.RetryAfter > 0 {
		return e.RateLimit.RetryAfter, true
	}
	if e.RateLimit.ResetTime > 0 {
		if d := time.Until(time.Unix(e.RateLimit.ResetTime, 0)); d > 0 {
			return d, true
		}
	}
	return 0, false
}
