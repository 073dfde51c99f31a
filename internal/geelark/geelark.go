// Package geelark implements the client for the GeeLark cloud-phone
// automation open API. It signs every outbound request with a single-use
// trace envelope, exposes typed operations for cloud-phone inventory,
// proxy inventory, and asynchronous task management, and maps the
// platform's response envelope into typed results or errors.
//
// The client is stateless: the only shared state is the immutable
// credential configuration read at construction, so a single instance is
// safe for concurrent use.
package geelark

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/clipfleet/clipfleet/internal/config"
	"github.com/clipfleet/clipfleet/internal/util"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// maxBatchSize is the hard limit the GeeLark open API places on bulk
// operations (task ids, proxy records, page sizes). It is a protocol
// limit, validated locally before any request is issued.
const maxBatchSize = 100

// Client is the GeeLark open API client. Construct it once with NewClient
// and reuse it; all methods are safe for concurrent use.
type Client struct {
	appID      string
	apiKey     string
	baseURL    string
	requestLog bool
	httpClient *http.Client
}

// NewClient creates a GeeLark client from the application configuration.
// The HTTP client is routed through the configured proxy when one is set.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		appID:      cfg.GeeLark.AppID,
		apiKey:     cfg.GeeLark.APIKey,
		baseURL:    strings.TrimRight(cfg.GeeLark.BaseURL, "/"),
		requestLog: cfg.RequestLog,
		httpClient: util.SetProxy(cfg, &http.Client{Timeout: 30 * time.Second}),
	}
}

// envelope is the response wrapper every GeeLark endpoint returns.
// A non-zero code means failure regardless of HTTP status.
type envelope struct {
	TraceID string          `json:"traceId"`
	Code    int             `json:"code"`
	Msg     string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

// do marshals body, posts it to path with a fresh signature envelope, and
// decodes the response data into out when out is non-nil.
func (c *Client) do(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("geelark: marshal request failed: %w", err)
	}
	return c.post(ctx, path, payload, out)
}

// post sends a pre-marshaled JSON payload. Split from do so callers that
// build payloads conditionally (sparse optional fields) can reuse the
// signing and envelope handling.
func (c *Client) post(ctx context.Context, path string, payload []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("geelark: create request failed: %w", err)
	}

	sig, err := c.newSignature()
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("appId", c.appID)
	req.Header.Set("traceId", sig.TraceID)
	req.Header.Set("ts", sig.Timestamp)
	req.Header.Set("nonce", sig.Nonce)
	req.Header.Set("sign", sig.Sign)

	if c.requestLog {
		// Request bodies may reference creator content; log the envelope
		// only, never the signing key.
		log.WithFields(log.Fields{"operation": path, "trace_id": sig.TraceID}).Debug("geelark request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("geelark: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("geelark: read response failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// Some failures still carry a well-formed envelope; prefer its
		// code and message over the bare HTTP status.
		if probe := gjson.GetBytes(respBody, "code"); probe.Exists() && probe.Int() != 0 {
			return &APIError{
				Code:    int(probe.Int()),
				Msg:     gjson.GetBytes(respBody, "msg").String(),
				TraceID: sig.TraceID,
			}
		}
		log.Debugf("geelark request failed: path=%s status=%d", path, resp.StatusCode)
		return fmt.Errorf("geelark: %s: %s", path, resp.Status)
	}

	var env envelope
	if err = json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("geelark: decode response failed: %w", err)
	}
	if env.Code != 0 {
		return &APIError{Code: env.Code, Msg: env.Msg, TraceID: env.TraceID}
	}

	if out != nil && len(env.Data) > 0 {
		if err = json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("geelark: decode response data failed: %w", err)
		}
	}
	return nil
}

// checkBatch validates a bulk operation against the protocol cap before
// any network call is made.
func checkBatch(op string, count int) error {
	if count == 0 {
		return &ValidationError{Op: op, Limit: maxBatchSize, Count: 0}
	}
	if count > maxBatchSize {
		return &ValidationError{Op: op, Limit: maxBatchSize, Count: count}
	}
	return nil
}
