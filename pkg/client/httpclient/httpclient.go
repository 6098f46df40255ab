// Package httpclient is a network convenience wrapper speaking to
// internal/httpsurface, offering pkg/client's Alloc, Free, Write and Read
// (plus Params; there is no WriteN) for callers that run out-of-process
// from the device.
package httpclient

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"buddyd/pkg/device"
)

// Client talks HTTP to one buddyd device.
type Client struct {
	baseURL string
	hc      *http.Client
}

// New returns a Client targeting baseURL, e.g. "http://localhost:8080".
func New(baseURL string) *Client {
	return &Client{baseURL: baseURL, hc: http.DefaultClient}
}

type wireRequest struct {
	Size int    `json:"size,omitempty"`
	Ref  int    `json:"ref,omitempty"`
	Buf  string `json:"buf,omitempty"`
}

type wireResponse struct {
	ReturnVal int    `json:"return_val"`
	Data      string `json:"data,omitempty"`
}

func (c *Client) post(path string, req wireRequest) (wireResponse, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return wireResponse{}, err
	}
	resp, err := c.hc.Post(c.baseURL+path, "application/json", bytes.NewReader(b))
	if err != nil {
		return wireResponse{}, err
	}
	defer resp.Body.Close()
	var out wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return wireResponse{}, err
	}
	return out, nil
}

// Params fetches the device's pool parameters.
func (c *Client) Params() (device.Params, error) {
	resp, err := c.hc.Get(c.baseURL + "/v1/params")
	if err != nil {
		return device.Params{}, err
	}
	defer resp.Body.Close()
	var p device.Params
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return device.Params{}, err
	}
	return p, nil
}

// Alloc requests a block of at least size bytes.
func (c *Client) Alloc(size int) (int, error) {
	resp, err := c.post("/v1/alloc", wireRequest{Size: size})
	if err != nil {
		return -1, err
	}
	return checkRef(resp.ReturnVal, "alloc")
}

// Free releases the block at ref.
func (c *Client) Free(ref int) error {
	resp, err := c.post("/v1/free", wireRequest{Ref: ref})
	if err != nil {
		return err
	}
	if resp.ReturnVal != 0 {
		return fmt.Errorf("httpclient: free(%d) failed", ref)
	}
	return nil
}

// Write writes the zero-terminated contents of p at ref.
func (c *Client) Write(ref int, p []byte) (int, error) {
	resp, err := c.post("/v1/write", wireRequest{Ref: ref, Buf: base64.StdEncoding.EncodeToString(p)})
	if err != nil {
		return -1, err
	}
	return checkRef(resp.ReturnVal, "write")
}

// Read returns size bytes from the block at ref.
func (c *Client) Read(ref, size int) ([]byte, error) {
	resp, err := c.post("/v1/read", wireRequest{Ref: ref, Size: size})
	if err != nil {
		return nil, err
	}
	if resp.ReturnVal < 0 {
		return nil, fmt.Errorf("httpclient: read(%d,%d) failed", ref, size)
	}
	data, err := base64.StdEncoding.DecodeString(resp.Data)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func checkRef(v int, op string) (int, error) {
	if v < 0 {
		return -1, fmt.Errorf("httpclient: %s failed", op)
	}
	return v, nil
}
