package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// httpClient is shared by every Client: one package-level http.Client
// with a fixed timeout rather than one client per request.
var httpClient = &http.Client{Timeout: 5 * time.Second}

// Client forwards GET/PUT/DELETE calls to one cache-node address over
// HTTP+JSON.
type Client struct {
	addr string
}

// NewClient returns a client targeting addr (e.g. "http://10.0.0.5:8081").
func NewClient(addr string) *Client {
	return &Client{addr: addr}
}

// Get forwards a GET call.
func (c *Client) Get(ctx context.Context, bucket string, key []byte) (*GetResponse, error) {
	var resp GetResponse
	if err := postJSON(ctx, c.addr+"/v1/get", GetRequest{Bucket: bucket, Key: key}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Put forwards a PUT call.
func (c *Client) Put(ctx context.Context, bucket string, key, value []byte) (*PutResponse, error) {
	var resp PutResponse
	if err := postJSON(ctx, c.addr+"/v1/put", PutRequest{Bucket: bucket, Key: key, Value: value}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Delete forwards a DELETE call.
func (c *Client) Delete(ctx context.Context, bucket string, key []byte) (*DeleteResponse, error) {
	var resp DeleteResponse
	if err := postJSON(ctx, c.addr+"/v1/delete", DeleteRequest{Bucket: bucket, Key: key}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Join sends a JOIN administrative call to a router.
func Join(ctx context.Context, routerAddr, listenAddr string) (*JoinResponse, error) {
	var resp JoinResponse
	if err := postJSON(ctx, routerAddr+"/v1/join", JoinRequest{Address: listenAddr}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// postJSON POSTs body as JSON to url and decodes the response into out,
// translating a non-2xx reply into a structured *Error.
func postJSON(ctx context.Context, url string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return &Error{Kind: KindInternal, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var wireErr Error
		if decErr := json.NewDecoder(resp.Body).Decode(&wireErr); decErr == nil && wireErr.Kind != "" {
			return &wireErr
		}
		return &Error{Kind: KindInternal, Message: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
