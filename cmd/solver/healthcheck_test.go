package main

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type trackedBody struct {
	io.Reader
	closed bool
}

func (b *trackedBody) Close() error {
	b.closed = true
	return nil
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestProbeHealth(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"healthy", http.StatusOK, false},
		{"unhealthy", http.StatusServiceUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := &trackedBody{Reader: strings.NewReader(`{"status":"ok"}`)}
			client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
				assert.Equal(t, "/health", r.URL.Path)
				return &http.Response{StatusCode: tt.status, Body: body, Header: make(http.Header), Request: r}, nil
			})}

			err := probeHealth(context.Background(), client, "http://localhost:9090/health")
			if tt.wantErr {
				assert.ErrorContains(t, err, "HTTP 503")
			} else {
				assert.NoError(t, err)
			}
			assert.True(t, body.closed, "response body left open")
		})
	}
}
