package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	defaults "github.com/mcuadros/go-defaults"

	"github.com/chimbuka/mabuku/utils"
)

// HTTPAuthConfig configures outbound request authentication.
type HTTPAuthConfig struct {
	Type string `mapstructure:"type" json:"type" yaml:"type" validate:"required,oneof=basic api_key bearer"`

	// basic auth
	Username string `mapstructure:"username,omitempty" json:"username,omitempty" yaml:"username,omitempty" validate:"required_if=Type basic"`
	Password string `mapstructure:"password,omitempty" json:"password,omitempty" yaml:"password,omitempty" validate:"required_if=Type basic"`

	// api key
	In    string `mapstructure:"in,omitempty" json:"in,omitempty" yaml:"in,omitempty" validate:"required_if=Type api_key,omitempty,oneof=query header"`
	Key   string `mapstructure:"key,omitempty" json:"key,omitempty" yaml:"key,omitempty" validate:"required_if=Type api_key"`
	Value string `mapstructure:"value,omitempty" json:"value,omitempty" yaml:"value,omitempty" validate:"required_if=Type api_key"`

	// bearer
	Token string `mapstructure:"token,omitempty" json:"token,omitempty" yaml:"token,omitempty" validate:"required_if=Type bearer"`
}

// HTTPClientConfig is the configuration for a JSON API client.
type HTTPClientConfig struct {
	URL            string            `mapstructure:"url" json:"url" yaml:"url" validate:"required,url"`
	Headers        map[string]string `mapstructure:"headers,omitempty" json:"headers,omitempty" yaml:"headers,omitempty"`
	Auth           *HTTPAuthConfig   `mapstructure:"auth,omitempty" json:"auth,omitempty" yaml:"auth,omitempty" validate:"omitempty,dive"`
	TimeoutSeconds int               `mapstructure:"timeout_seconds,omitempty" json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" default:"10"`
	RetryCount     int               `mapstructure:"retry_count,omitempty" json:"retry_count,omitempty" yaml:"retry_count,omitempty" default:"3"`
	HTTPClient     *http.Client      `mapstructure:"-" json:"-" yaml:"-"`
}

// HTTPClient is a small JSON-in/JSON-out client used for outbound
// integrations (ZRA, notification webhooks).
type HTTPClient struct {
	httpClient *http.Client
	config     *HTTPClientConfig
}

func NewHTTPClient(config *HTTPClientConfig) (*HTTPClient, error) {
	defaults.SetDefaults(config)
	if err := utils.ValidateStruct(config); err != nil {
		return nil, err
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
			Transport: &RetryableTransport{
				RetryCount: config.RetryCount,
			},
		}
	}

	return &HTTPClient{
		httpClient: httpClient,
		config:     config,
	}, nil
}

// Do sends a JSON request to path (relative to the configured base URL)
// and decodes the JSON response into out when out is non-nil.
func (c *HTTPClient) Do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.URL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range c.config.Headers {
		req.Header.Set(k, v)
	}
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		return fmt.Errorf("%s %s: unexpected status %d: %s", method, path, resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response body: %w", err)
		}
	}

	return nil
}

func (c *HTTPClient) setAuth(req *http.Request) {
	if c.config.Auth == nil {
		return
	}

	switch c.config.Auth.Type {
	case "basic":
		req.SetBasicAuth(c.config.Auth.Username, c.config.Auth.Password)
	case "api_key":
		if c.config.Auth.In == "query" {
			q := req.URL.Query()
			q.Set(c.config.Auth.Key, c.config.Auth.Value)
			req.URL.RawQuery = q.Encode()
		} else {
			req.Header.Set(c.config.Auth.Key, c.config.Auth.Value)
		}
	case "bearer":
		req.Header.Set("Authorization", "Bearer "+c.config.Auth.Token)
	}
}
