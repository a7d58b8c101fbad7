package bluesky

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// chatProxy routes chat.bsky.* calls to the Bluesky chat service.
const chatProxy = "did:web:api.bsky.chat#bsky_chat"

// xrpcError is the wire shape of an AT Protocol error response.
type xrpcError struct {
	ErrorKind string `json:"error"`
	Message   string `json:"message"`
}

// requestError carries the upstream failure before classification.
type requestError struct {
	Message string
	Status  int
}

func (e *requestError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("bluesky request failed (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("bluesky request failed: %s", e.Message)
}

type xrpcClient struct {
	serviceURL string
	http       *http.Client
}

type callOpts struct {
	accessJwt string
	proxy     string
}

func (c *xrpcClient) procedure(ctx context.Context, method string, input, output any, opts callOpts) error {
	var body io.Reader
	if input != nil {
		data, err := json.Marshal(input)
		if err != nil {
			return fmt.Errorf("encode %s input: %w", method, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serviceURL+"/xrpc/"+method, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, method, output, opts)
}

func (c *xrpcClient) query(ctx context.Context, method string, params url.Values, output any, opts callOpts) error {
	endpoint := c.serviceURL + "/xrpc/" + method
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	return c.do(req, method, output, opts)
}

func (c *xrpcClient) do(req *http.Request, method string, output any, opts callOpts) error {
	if opts.accessJwt != "" {
		req.Header.Set("Authorization", "Bearer "+opts.accessJwt)
	}
	if opts.proxy != "" {
		req.Header.Set("Atproto-Proxy", opts.proxy)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &requestError{Message: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &requestError{Message: fmt.Sprintf("read %s response: %v", method, err), Status: resp.StatusCode}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var xe xrpcError
		if json.Unmarshal(data, &xe) == nil && xe.ErrorKind != "" {
			msg := xe.ErrorKind
			if xe.Message != "" {
				msg = xe.ErrorKind + ": " + xe.Message
			}
			return &requestError{Message: msg, Status: resp.StatusCode}
		}
		return &requestError{Message: fmt.Sprintf("%s returned %s", method, resp.Status), Status: resp.StatusCode}
	}

	if output == nil {
		return nil
	}
	if err := json.Unmarshal(data, output); err != nil {
		return &requestError{Message: fmt.Sprintf("decode %s response: %v", method, err), Status: resp.StatusCode}
	}
	return nil
}
