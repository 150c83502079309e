package eshop

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Request is any typed query or command understood by the eShop API.
// RequestName is the DTO type name used in the reply route.
type Request interface {
	RequestName() string
}

// Dispatcher defines the three request shapes of the eShop protocol.
// This interface is implemented by *Client and can be faked in tests.
type Dispatcher interface {
	Query(ctx context.Context, req Request, payload any) error
	Command(ctx context.Context, req Request) error
	Paged(ctx context.Context, req Request, records any) (PageInfo, error)
}

// Ensure Client implements Dispatcher at compile time.
var _ Dispatcher = (*Client)(nil)

// Client talks to the eShop HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultBaseURL   = "127.0.0.1:5000"
	defaultUserAgent = "shopsync/0.1"
	defaultTimeout   = 10 * time.Second
	replyRoute       = "/json/reply/"
)

// NewClient builds a Client for the API at baseURL. A zero timeout uses the
// default.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: timeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// Query reads a single aggregate and decodes the response payload into payload.
func (c *Client) Query(ctx context.Context, req Request, payload any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	var resp QueryResponse
	if err := c.do(ctx, req, &resp); err != nil {
		return err
	}
	if payload == nil || len(resp.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Payload, payload); err != nil {
		return &TransportError{Op: req.RequestName(), Err: fmt.Errorf("decode payload: %w", err)}
	}
	return nil
}

// Command performs a state-changing request. Any 2xx response is an
// acknowledgment; the body is discarded.
func (c *Client) Command(ctx context.Context, req Request) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.do(ctx, req, nil)
}

// Paged reads one page of a collection, decoding the records into records.
func (c *Client) Paged(ctx context.Context, req Request, records any) (PageInfo, error) {
	if c == nil {
		return PageInfo{}, fmt.Errorf("client is nil")
	}
	var resp PagedResponse
	if err := c.do(ctx, req, &resp); err != nil {
		return PageInfo{}, err
	}
	if records != nil && len(resp.Records) > 0 {
		if err := json.Unmarshal(resp.Records, records); err != nil {
			return PageInfo{}, &TransportError{Op: req.RequestName(), Err: fmt.Errorf("decode records: %w", err)}
		}
	}
	return resp.PageInfo(), nil
}

func (c *Client) do(ctx context.Context, req Request, dest any) error {
	if req == nil {
		return fmt.Errorf("request is nil")
	}
	op := req.RequestName()
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode %s: %w", op, err)
	}

	rel := &url.URL{Path: replyRoute + op}
	reqURL := c.baseURL.ResolveReference(rel)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 500:
		return &TransportError{Op: op, Status: resp.StatusCode}
	case resp.StatusCode >= 400:
		return rejection(op, resp)
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// rejection builds a RejectedError, reading the ServiceStack responseStatus
// when the body carries one.
func rejection(op string, resp *http.Response) error {
	rejected := &RejectedError{Op: op, Status: resp.StatusCode}
	var payload struct {
		ResponseStatus *ResponseStatus `json:"responseStatus"`
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err == nil && json.Unmarshal(raw, &payload) == nil && payload.ResponseStatus != nil {
		rejected.Code = payload.ResponseStatus.ErrorCode
		rejected.Message = payload.ResponseStatus.Message
	}
	if rejected.Message == "" {
		rejected.Message = strings.TrimSpace(string(raw))
	}
	return rejected
}

func parseBaseURL(baseURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_base %q: %w", baseURL, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
