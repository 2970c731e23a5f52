// Package testutil provides testing utilities for the substack client.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/Sternrassler/substack-client/pkg/client"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode  int
	Body        string
	ContentType string
}

// MockSubstack is a configurable mock of the platform API and newsletter
// pages. Newsletter URLs are served path-style: /{subdomain}/api/v1/...
type MockSubstack struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	// Tracking
	RequestCount      int
	RequestURIs       []string
	LastRequestHeader http.Header
}

// NewMockSubstack creates and starts a new mock server.
func NewMockSubstack() *MockSubstack {
	mock := &MockSubstack{
		handlers: make(map[string]http.HandlerFunc),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.RequestURIs = append(mock.RequestURIs, r.URL.RequestURI())
		mock.LastRequestHeader = r.Header.Clone()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}
		http.NotFound(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockSubstack) URL() string {
	return m.server.URL
}

// Endpoints returns client endpoints pointing at the mock server.
func (m *MockSubstack) Endpoints() client.Endpoints {
	return client.Endpoints{
		Root:             m.server.URL,
		NewsletterFormat: m.server.URL + "/%s",
	}
}

// HTTPClient returns an HTTP client for the mock server.
func (m *MockSubstack) HTTPClient() *http.Client {
	return m.server.Client()
}

// Close shuts down the mock server.
func (m *MockSubstack) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockSubstack) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.RequestURIs = nil
	m.LastRequestHeader = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockSubstack) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockSubstack) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, resp)
	})
}

// SetJSON configures a 200 JSON response for a path.
func (m *MockSubstack) SetJSON(path, body string) {
	m.SetResponse(path, JSONResponse(body))
}

// SetPagedJSON serves a different JSON body per value of the query parameter
// param. Values without a page get fallback.
func (m *MockSubstack) SetPagedJSON(path, param string, pages map[string]string, fallback string) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Query().Get(param)]
		if !ok {
			body = fallback
		}
		writeResponse(w, JSONResponse(body))
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockSubstack) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetRequestURIs returns the request URIs received, in order.
func (m *MockSubstack) GetRequestURIs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.RequestURIs...)
}

// JSONResponse creates a 200 OK JSON response.
func JSONResponse(body string) MockResponse {
	return MockResponse{
		StatusCode:  http.StatusOK,
		Body:        body,
		ContentType: "application/json; charset=utf-8",
	}
}

// HTMLResponse creates a 200 OK HTML response.
func HTMLResponse(body string) MockResponse {
	return MockResponse{
		StatusCode:  http.StatusOK,
		Body:        body,
		ContentType: "text/html; charset=utf-8",
	}
}

func writeResponse(w http.ResponseWriter, resp MockResponse) {
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}
