package api

import (
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jiwonMe/work-mma-sdk/pkg/logger"
)

// RelayHandler is the same-origin relay: it performs the upstream request
// server-side on behalf of callers that cannot reach the upstream
// directly. JSON responses pass through untouched; HTML pages are wrapped
// as {data: html} so the payload stays a single JSON document.
type RelayHandler struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
}

// NewRelayHandler creates a RelayHandler posting to the given upstream
// origin with the given client.
func NewRelayHandler(baseURL string, httpClient *http.Client, log logger.Logger) *RelayHandler {
	return &RelayHandler{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		logger:     log,
	}
}

// relayRequest is the relay request body. Params values are either a
// string or an array of strings.
type relayRequest struct {
	Endpoint string         `json:"endpoint"`
	Params   map[string]any `json:"params"`
	Method   string         `json:"method"`
}

// Relay handles POST /api/mma-proxy.
func (h *RelayHandler) Relay(c *gin.Context) {
	var req relayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:     "Invalid relay request: " + err.Error(),
			Code:      "INVALID_REQUEST",
			Timestamp: time.Now(),
		})
		return
	}
	if req.Endpoint == "" || !strings.HasPrefix(req.Endpoint, "/") {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:     "endpoint must be an absolute upstream path",
			Code:      "INVALID_REQUEST",
			Timestamp: time.Now(),
		})
		return
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodPost
	}
	if method != http.MethodGet && method != http.MethodPost {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:     "method must be GET or POST",
			Code:      "INVALID_REQUEST",
			Timestamp: time.Now(),
		})
		return
	}

	body, contentType, err := h.forward(c, method, req.Endpoint, formValues(req.Params))
	if err != nil {
		h.logger.Error("Relay request failed",
			logger.Error(err),
			logger.String("endpoint", req.Endpoint),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:     "Upstream request failed",
			Code:      "UPSTREAM_ERROR",
			Timestamp: time.Now(),
		})
		return
	}

	if strings.Contains(contentType, "application/json") {
		c.Data(http.StatusOK, "application/json", body)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": string(body)})
}

// forward performs the upstream request and returns the body and content
// type.
func (h *RelayHandler) forward(c *gin.Context, method, endpoint string, params url.Values) ([]byte, string, error) {
	var req *http.Request
	var err error

	switch method {
	case http.MethodGet:
		target := h.baseURL + endpoint
		if encoded := params.Encode(); encoded != "" {
			target += "?" + encoded
		}
		req, err = http.NewRequestWithContext(c.Request.Context(), http.MethodGet, target, nil)
	default:
		req, err = http.NewRequestWithContext(c.Request.Context(), http.MethodPost,
			h.baseURL+endpoint, strings.NewReader(params.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return nil, "", err
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// formValues flattens the relay params shape into form values.
func formValues(params map[string]any) url.Values {
	values := url.Values{}
	for key, raw := range params {
		switch v := raw.(type) {
		case string:
			values.Add(key, v)
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok {
					values.Add(key, s)
				}
			}
		case float64:
			// JSON numbers, e.g. pageIndex.
			values.Add(key, strconv.FormatFloat(v, 'f', -1, 64))
		}
	}
	return values
}
