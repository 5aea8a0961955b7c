// Package mma is a client for the Military Manpower Administration's
// designated-company search (병역일터). The upstream has no API: code
// tables come back as loosely-shaped JSON and the search itself returns a
// rendered HTML page, so this package owns every markup and field-name
// assumption in one place.
package mma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	infrahttp "github.com/jiwonMe/work-mma-sdk/pkg/http"
	"github.com/jiwonMe/work-mma-sdk/pkg/logger"
)

// DefaultBaseURL is the upstream origin.
const DefaultBaseURL = "https://work.mma.go.kr"

// RelayPath is the same-origin relay endpoint used when requests cannot be
// made directly (browser context, cross-origin).
const RelayPath = "/api/mma-proxy"

// DefaultTimeout bounds outbound calls; the upstream is an uncontrolled
// third-party site.
const DefaultTimeout = 15 * time.Second

// TransportConfig configures the upstream transport.
type TransportConfig struct {
	// BaseURL is the upstream origin. Defaults to DefaultBaseURL.
	BaseURL string
	// RelayURL, when set, routes every request through the same-origin
	// relay at RelayURL+RelayPath instead of calling upstream directly.
	RelayURL string
	// Timeout bounds each outbound request. Defaults to DefaultTimeout.
	Timeout time.Duration
}

// Transport issues requests to the upstream, either directly or through
// the relay, and unwraps the relay's response envelope.
type Transport struct {
	baseURL    string
	relayURL   string
	httpClient *http.Client
	logger     logger.Logger
}

// relayRequest is the envelope posted to the same-origin relay.
type relayRequest struct {
	Endpoint string         `json:"endpoint"`
	Params   map[string]any `json:"params"`
	Method   string         `json:"method"`
}

// NewTransport creates a Transport. Certificate verification against the
// upstream is disabled: work.mma.go.kr serves a certificate chain Go's
// default roots reject. The exception is scoped to this client only.
func NewTransport(cfg TransportConfig, log logger.Logger) *Transport {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Transport{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		relayURL:   strings.TrimSuffix(cfg.RelayURL, "/"),
		httpClient: infrahttp.NewClientWithTLS(timeout, true),
		logger:     log,
	}
}

// PostJSON posts form-encoded params to a JSON endpoint and decodes the
// response into out. checkKey names the field a well-formed response is
// expected to carry; in relayed mode it disambiguates an already-unwrapped
// payload from the relay's {data: ...} envelope.
func (t *Transport) PostJSON(ctx context.Context, endpoint string, params url.Values, checkKey string, out any) error {
	var (
		body []byte
		err  error
	)

	if t.relayURL != "" {
		body, err = t.postViaRelay(ctx, endpoint, params)
		if err != nil {
			return err
		}
		body = unwrapRelayPayload(body, checkKey)
	} else {
		body, err = t.postDirect(ctx, endpoint, params)
		if err != nil {
			return err
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// PostHTML posts form-encoded params to an HTML-rendering endpoint and
// returns the document as raw bytes. The relay wraps HTML responses as
// {data: "<html>"}; direct responses are the document itself.
func (t *Transport) PostHTML(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if t.relayURL == "" {
		return t.postDirect(ctx, endpoint, params)
	}

	body, err := t.postViaRelay(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data string `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		// Not the wrapped form; treat the payload as the document.
		return body, nil
	}
	return []byte(envelope.Data), nil
}

// postDirect form-encodes params and posts them straight to the upstream.
func (t *Transport) postDirect(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.baseURL+endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return t.do(req, endpoint)
}

// postViaRelay posts the relay envelope to the same-origin relay, which
// performs the upstream request server-side.
func (t *Transport) postViaRelay(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	payload := relayRequest{
		Endpoint: endpoint,
		Params:   relayParams(params),
		Method:   http.MethodPost,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode relay request for %s: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.relayURL+RelayPath, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("build relay request for %s: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return t.do(req, endpoint)
}

// do executes the request and reads the full response body.
func (t *Transport) do(req *http.Request, endpoint string) ([]byte, error) {
	start := time.Now()
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", endpoint, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", endpoint, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("post %s: unexpected status %d", endpoint, resp.StatusCode)
	}

	t.logger.Debug("Upstream request completed",
		logger.String("endpoint", endpoint),
		logger.Int("status", resp.StatusCode),
		logger.Duration("duration", time.Since(start)),
	)

	return body, nil
}

// relayParams converts form values into the relay's JSON params shape:
// single values as strings, multi-values as arrays.
func relayParams(params url.Values) map[string]any {
	out := make(map[string]any, len(params))
	for key, vals := range params {
		switch len(vals) {
		case 0:
		case 1:
			out[key] = vals[0]
		default:
			out[key] = vals
		}
	}
	return out
}

// unwrapRelayPayload normalizes a relayed JSON response. The relay either
// passes the upstream JSON through as-is or wraps it as {data: <string>}.
// Any shape that cannot be made sense of degrades to an empty object so
// callers see "no data" rather than an error.
func unwrapRelayPayload(body []byte, checkKey string) []byte {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return []byte("{}")
	}

	if checkKey != "" {
		if _, ok := probe[checkKey]; ok {
			return body
		}
	}

	raw, ok := probe["data"]
	if !ok {
		return body
	}

	// data may be a JSON-encoded string holding the real payload.
	var inner string
	if err := json.Unmarshal(raw, &inner); err == nil {
		if json.Valid([]byte(inner)) {
			return []byte(inner)
		}
		return []byte("{}")
	}
	return raw
}
