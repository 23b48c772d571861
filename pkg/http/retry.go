package http

import (
	"bytes"
	"io"
	"math"
	"net/http"
	"time"
)

// RetryableTransport retries idempotent-safe upstream failures (5xx
// gateway errors and transport errors) with exponential backoff.
type RetryableTransport struct {
	Transport  http.RoundTripper
	RetryCount int
}

func (t *RetryableTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var bodyBytes []byte
	if req.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
	}

	transport := t.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	var resp *http.Response
	var err error
	retries := -1
	for {
		if retries > -1 {
			time.Sleep(backoff(retries))
			// consume any response to reuse the connection.
			drainBody(resp)
		}

		if bodyBytes != nil {
			req.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}
		resp, err = transport.RoundTrip(req)

		retries++
		if !shouldRetry(err, resp) || retries >= t.RetryCount {
			break
		}
	}

	return resp, err
}

func backoff(retries int) time.Duration {
	return time.Duration(math.Pow(2, float64(retries))) * time.Second
}

func shouldRetry(err error, resp *http.Response) bool {
	if err != nil {
		return true
	}

	return resp.StatusCode == http.StatusBadGateway ||
		resp.StatusCode == http.StatusServiceUnavailable ||
		resp.StatusCode == http.StatusGatewayTimeout
}

func drainBody(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
}
