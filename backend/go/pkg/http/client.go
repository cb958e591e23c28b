package http

import (
	"net/http"
	"time"

	"Profile_1.0/backend/go/internal/models"
	"Profile_1.0/backend/go/pkg/logger"

	"golang.org/x/net/http2"
)

// NewClient returns an http.Client for outbound calls bounded by timeout.
// The transport is cloned from the default one and negotiates HTTP/2 over TLS;
// plain http:// targets keep using HTTP/1.1.
func NewClient(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout

	if err := http2.ConfigureTransport(transport); err != nil {
		// the transport still works over HTTP/1.1
		logger.New("http_client", "").
			WithError(models.ErrorInfo{Message: err.Error(), Type: "http2_configure"}).
			Warn("HTTP/2 not enabled for outbound client")
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
