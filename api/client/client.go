package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/vocdoni/note-selector/api"
	"github.com/vocdoni/note-selector/log"
	"github.com/vocdoni/note-selector/storage"
)

const (
	// HTTPGET is the method string used for calling Request()
	HTTPGET = http.MethodGet
	// HTTPPOST is the method string used for calling Request()
	HTTPPOST = http.MethodPost

	errCodeNot200 = "API error"

	// DefaultRetries this enables Request() to handle the situation where the server connection fails
	DefaultRetries = 3
	// DefaultTimeout is the default timeout for the HTTP client
	DefaultTimeout = 10 * time.Second
	// retryDelay is the time waited between failed attempts
	retryDelay = 500 * time.Millisecond
)

// HTTPclient is the note selector API HTTP client.
type HTTPclient struct {
	c       *http.Client
	host    *url.URL
	retries int
}

// New returns a client for the API host. It fails if the host does not
// answer the ping endpoint.
func New(host string) (*HTTPclient, error) {
	hostURL, err := url.Parse(host)
	if err != nil {
		return nil, err
	}
	tr := &http.Transport{
		IdleConnTimeout:    DefaultTimeout,
		DisableCompression: false,
	}
	c := &HTTPclient{
		c:       &http.Client{Transport: tr, Timeout: DefaultTimeout},
		host:    hostURL,
		retries: DefaultRetries,
	}
	log.Debugw("http client created", "host", hostURL.String())
	if err := c.Ping(); err != nil {
		return nil, err
	}
	return c, nil
}

// SetRetries configures the number of retries for the HTTP client.
func (c *HTTPclient) SetRetries(n int) {
	c.retries = max(1, n)
}

// SetTimeout configures the timeout for the HTTP client.
func (c *HTTPclient) SetTimeout(d time.Duration) {
	c.c.Timeout = d
	if tr, ok := c.c.Transport.(*http.Transport); ok {
		tr.ResponseHeaderTimeout = d
	}
}

// Ping checks the API is up.
func (c *HTTPclient) Ping() error {
	data, status, err := c.Request(HTTPGET, nil, nil, api.PingEndpoint)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%s: %d (%s)", errCodeNot200, status, data)
	}
	return nil
}

// Select runs a selection on the server.
func (c *HTTPclient) Select(req *api.SelectionRequest) (*api.SelectionResponse, error) {
	resp := &api.SelectionResponse{}
	if err := c.call(HTTPPOST, req, resp, api.SelectionsEndpoint); err != nil {
		return nil, err
	}
	return resp, nil
}

// Selection returns a stored selection report.
func (c *HTTPclient) Selection(id uuid.UUID) (*storage.SelectionReport, error) {
	report := &storage.SelectionReport{}
	if err := c.call(HTTPGET, nil, report, api.SelectionsEndpoint, id.String()); err != nil {
		return nil, err
	}
	return report, nil
}

// SetDistribution stores the anonymity distribution of a pool.
func (c *HTTPclient) SetDistribution(req *api.DistributionRequest) (*api.DistributionResponse, error) {
	resp := &api.DistributionResponse{}
	if err := c.call(HTTPPOST, req, resp, api.DistributionsEndpoint); err != nil {
		return nil, err
	}
	return resp, nil
}

// call performs the request and decodes the response into out. Responses
// other than 200 are decoded as an api.Error.
func (c *HTTPclient) call(method string, body, out any, urlPath ...string) error {
	data, status, err := c.Request(method, body, nil, urlPath...)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		apiErr := &struct {
			Err  string `json:"error"`
			Code int    `json:"code"`
		}{}
		if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Code == 0 {
			return fmt.Errorf("%s: %d (%s)", errCodeNot200, status, bytes.TrimSpace(data))
		}
		return fmt.Errorf("%s %d: %s", errCodeNot200, apiErr.Code, apiErr.Err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("could not decode response: %w", err)
	}
	return nil
}

// Request performs a `method` type raw request to the endpoint specified in urlPath parameter.
// Method is either GET or POST. If POST, a JSON struct should be attached. Returns the response,
// the status code and an error.
//
// Supports query parameters via `params` slice. If the slice is not empty, it should contain pairs of strings;
// the first element of each pair is the key, and the second element is the value.
func (c *HTTPclient) Request(method string, jsonBody any, params []string, urlPath ...string) ([]byte, int, error) {
	var (
		body []byte
		err  error
	)
	if jsonBody != nil {
		body, err = json.Marshal(jsonBody)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal JSON: %w", err)
		}
	}

	u := *c.host
	u.Path = path.Join(u.Path, path.Join(urlPath...))

	// Expecting even-length slice: [key1, val1, key2, val2, ...]
	if len(params) > 0 {
		values := url.Values{}
		for i := 0; i < len(params)-1; i += 2 {
			values.Set(params[i], params[i+1])
		}
		u.RawQuery = values.Encode()
	}

	headers := http.Header{}
	if jsonBody != nil {
		headers.Set("Content-Type", "application/json")
		headers.Set("Accept", "application/json")
	}

	log.Debugw("http client request",
		"type", method,
		"url", u.String(),
		"body", func() string {
			if len(body) > 512 {
				return string(body[:512]) + "..."
			}
			return string(body)
		}(),
	)

	var resp *http.Response
	for i := 1; i <= c.retries; i++ {
		// Create a fresh request each attempt
		var reqBody io.Reader
		if body != nil {
			reqBody = bytes.NewReader(body)
		}
		req, rerr := http.NewRequest(method, u.String(), reqBody)
		if rerr != nil {
			return nil, 0, fmt.Errorf("failed to create request: %w", rerr)
		}
		req.Header = headers

		resp, err = c.c.Do(req)
		if err == nil {
			break
		}
		log.Warnw("http request failed", "error", err.Error(), "attempt", i, "retries", c.retries)
		if i < c.retries {
			time.Sleep(retryDelay)
		}
	}
	if err != nil {
		return nil, 0, fmt.Errorf("http request ultimately failed after retries: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, resp.StatusCode, nil
}
