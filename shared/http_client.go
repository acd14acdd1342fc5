package shared

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// MaxResponseBodyBytes caps how much of an upstream body is read
const MaxResponseBodyBytes = 4 << 20

// HTTPClientFactory creates HTTP clients with standardized configuration
type HTTPClientFactory struct {
	defaultTimeout time.Duration
	mutex          sync.RWMutex
	clients        map[string]*http.Client
}

// NewHTTPClientFactory creates a new HTTP client factory
func NewHTTPClientFactory(defaultTimeout time.Duration) *HTTPClientFactory {
	return &HTTPClientFactory{
		defaultTimeout: defaultTimeout,
		clients:        make(map[string]*http.Client),
	}
}

// CreateOptimizedHTTPClient returns a pooled client for the given timeout, reusing one per timeout value
func (f *HTTPClientFactory) CreateOptimizedHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = f.defaultTimeout
	}

	clientKey := fmt.Sprintf("timeout_%d", timeout.Milliseconds())

	f.mutex.RLock()
	if client, exists := f.clients[clientKey]; exists {
		f.mutex.RUnlock()
		return client
	}
	f.mutex.RUnlock()

	f.mutex.Lock()
	defer f.mutex.Unlock()

	// another goroutine may have won the race
	if client, exists := f.clients[clientKey]; exists {
		return client
	}

	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: timeout,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
	f.clients[clientKey] = client

	logrus.WithFields(logrus.Fields{
		"component":  "HTTPClientFactory",
		"timeout":    timeout,
		"client_key": clientKey,
	}).Debug("Created new optimized HTTP client")

	return client
}

// ExecuteHTTPRequest performs a single attempt and records it. Any response
// status is returned to the caller; only transport failures produce an error.
func ExecuteHTTPRequest(client *http.Client, request *http.Request, metrics *HTTPMetrics) (*http.Response, error) {
	logger := logrus.WithFields(logrus.Fields{
		"component": "HTTPClientFactory",
		"method":    request.Method,
		"host":      request.URL.Host,
		"path":      request.URL.Path,
	})

	start := time.Now()
	response, err := client.Do(request)
	elapsed := time.Since(start)

	if err != nil {
		if metrics != nil {
			metrics.RecordHTTPRequest(false, 0, elapsed, "network", isTimeout(err))
		}
		logger.WithError(err).WithField("elapsed", elapsed).Warn("HTTP request failed with network error")
		return nil, err
	}

	success := response.StatusCode >= 200 && response.StatusCode < 300
	if metrics != nil {
		errorType := ""
		if !success {
			errorType = http.StatusText(response.StatusCode)
		}
		metrics.RecordHTTPRequest(success, response.StatusCode, elapsed, errorType, false)
	}

	logger.WithFields(logrus.Fields{
		"status_code": response.StatusCode,
		"elapsed":     elapsed,
	}).Debug("HTTP request completed")

	return response, nil
}

// ReadResponseBody reads at most MaxResponseBodyBytes and closes the body
func ReadResponseBody(response *http.Response) ([]byte, error) {
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, MaxResponseBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > MaxResponseBodyBytes {
		return nil, errors.New("response body exceeds size limit")
	}
	return body, nil
}

func closeIdleConnections(client *http.Client) {
	if transport, ok := client.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}

// CleanupAllClients cleans up all cached HTTP clients
func (f *HTTPClientFactory) CleanupAllClients() {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	for key, client := range f.clients {
		closeIdleConnections(client)
		delete(f.clients, key)
	}

	logrus.WithField("component", "HTTPClientFactory").Debug("Cleaned up all cached HTTP clients")
}
