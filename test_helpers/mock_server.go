package test_helpers

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockServer is a configurable stand-in for the Reddit API. It answers each
// path with a fixed response and records every request it sees.
type MockServer struct {
	server *httptest.Server

	mu          sync.RWMutex
	responses   map[string]*MockResponse
	defaultResp *MockResponse
	requestLog  []RequestEntry
	callCount   map[string]int
}

// RequestEntry is one recorded request.
type RequestEntry struct {
	Method       string
	Path         string
	RawQuery     string
	Headers      http.Header
	Body         string
	Timestamp    time.Time
	ResponseCode int
}

// MockResponse defines a mock API response
type MockResponse struct {
	Status  int
	Body    string
	Headers map[string]string
	Delay   time.Duration
	// MaxCalls answers 404 once the path was hit more often. 0 is unlimited.
	MaxCalls int
}

// NewMockServer starts a server that answers unknown paths with 404.
func NewMockServer() *MockServer {
	ms := &MockServer{
		responses: make(map[string]*MockResponse),
		callCount: make(map[string]int),
		defaultResp: &MockResponse{
			Status: http.StatusNotFound,
			Body:   `{"message": "Not Found", "error": 404}`,
		},
	}
	ms.server = httptest.NewServer(ms)
	return ms
}

// URL returns the base URL of the mock server
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Client returns an http.Client wired to the server.
func (ms *MockServer) Client() *http.Client {
	return ms.server.Client()
}

// Close shuts down the mock server
func (ms *MockServer) Close() {
	ms.server.Close()
}

// SetResponse configures the response for an exact path such as
// "/r/golang/hot.json".
func (ms *MockServer) SetResponse(path string, response *MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.responses[path] = response
}

// SetJSON is SetResponse for a JSON body.
func (ms *MockServer) SetJSON(path string, status int, body string) {
	ms.SetResponse(path, &MockResponse{
		Status:  status,
		Body:    body,
		Headers: map[string]string{"Content-Type": "application/json"},
	})
}

// SetDefaultResponse configures the response for unknown paths.
func (ms *MockServer) SetDefaultResponse(response *MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.defaultResp = response
}

// GetRequestLog returns a copy of the request log
func (ms *MockServer) GetRequestLog() []RequestEntry {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return append([]RequestEntry{}, ms.requestLog...)
}

// GetCallCount returns the call count for a path
func (ms *MockServer) GetCallCount(path string) int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.callCount[path]
}

// TotalCalls returns the number of requests served.
func (ms *MockServer) TotalCalls() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.requestLog)
}

// ClearLog clears the request log and call counts.
func (ms *MockServer) ClearLog() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.requestLog = ms.requestLog[:0]
	ms.callCount = make(map[string]int)
}

// GetLastRequest returns the last request made to a specific path
func (ms *MockServer) GetLastRequest(path string) (*RequestEntry, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	for i := len(ms.requestLog) - 1; i >= 0; i-- {
		if ms.requestLog[i].Path == path {
			entry := ms.requestLog[i]
			return &entry, nil
		}
	}
	return nil, fmt.Errorf("no requests found for path: %s", path)
}

// AssertRequestCount asserts that a specific number of requests were made to a path
func (ms *MockServer) AssertRequestCount(path string, expectedCount int) error {
	actualCount := ms.GetCallCount(path)
	if actualCount != expectedCount {
		return fmt.Errorf("expected %d requests to %s, got %d", expectedCount, path, actualCount)
	}
	return nil
}

// ServeHTTP implements http.Handler
func (ms *MockServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	ms.mu.Lock()
	ms.callCount[r.URL.Path]++
	calls := ms.callCount[r.URL.Path]
	response, ok := ms.responses[r.URL.Path]
	if !ok {
		response = ms.defaultResp
	}
	ms.mu.Unlock()

	status := response.Status
	if response.MaxCalls > 0 && calls > response.MaxCalls {
		status = http.StatusNotFound
	}

	if response.Delay > 0 {
		time.Sleep(response.Delay)
	}

	ms.mu.Lock()
	ms.requestLog = append(ms.requestLog, RequestEntry{
		Method:       r.Method,
		Path:         r.URL.Path,
		RawQuery:     r.URL.RawQuery,
		Headers:      r.Header.Clone(),
		Body:         string(body),
		Timestamp:    time.Now(),
		ResponseCode: status,
	})
	ms.mu.Unlock()

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(status)
	if status != http.StatusNoContent {
		_, _ = w.Write([]byte(response.Body))
	}
}

// RedditMockServer is a MockServer pre-loaded with the token endpoints and
// a small r/test subreddit.
type RedditMockServer struct {
	*MockServer
}

// MockToken is the bearer token the token endpoint hands out.
const MockToken = "mock_token"

// NewRedditMockServer creates a mock server pre-configured for Reddit API responses
func NewRedditMockServer() *RedditMockServer {
	rms := &RedditMockServer{MockServer: NewMockServer()}
	rms.setupDefaultResponses()
	return rms
}

func (rms *RedditMockServer) setupDefaultResponses() {
	rms.SetJSON("/api/v1/access_token", http.StatusOK,
		`{"access_token":"`+MockToken+`","token_type":"bearer","expires_in":3600,"scope":"*"}`)
	rms.SetResponse("/api/v1/revoke_token", &MockResponse{Status: http.StatusNoContent})

	rms.SetJSON("/r/test/about.json", http.StatusOK,
		`{"kind":"t5","data":{"display_name":"test","title":"Test Subreddit","subscribers":1000,"public_description":"A test subreddit"}}`)

	rms.SetJSON("/r/test/hot.json", http.StatusOK,
		`{"kind":"Listing","data":{"after":"t3_2","before":null,"children":[
			{"kind":"t3","data":{"id":"1","name":"t3_1","title":"Test Post","author":"testuser","score":100,"num_comments":50,"edited":false}}
		]}}`)

	rms.SetJSON("/r/test/comments.json", http.StatusOK, TestCommentListing)
	rms.SetJSON("/r/test/comments/1.json", http.StatusOK,
		`[{"kind":"Listing","data":{"children":[{"kind":"t3","data":{"id":"1","name":"t3_1","title":"Test Post"}}]}},`+TestCommentListing+`]`)
}

// TestCommentListing is a two-level comment tree with a "more" stub.
const TestCommentListing = `{"kind":"Listing","data":{"after":null,"before":null,"children":[
	{"kind":"t1","data":{"id":"c1","name":"t1_c1","author":"commenter","body":"Test comment","score":10,"parent_id":"t3_1","replies":{
		"kind":"Listing","data":{"children":[
			{"kind":"t1","data":{"id":"c2","name":"t1_c2","author":"replier","body":"Test reply","score":3,"parent_id":"t1_c1","replies":""}},
			{"kind":"more","data":{"id":"c9","name":"t1_c9","count":1,"depth":1,"parent_id":"t1_c1","children":["c9"]}}
		]}}}}
]}}`

// SetupError answers every unknown path with statusCode.
func (rms *RedditMockServer) SetupError(statusCode int, message string) {
	rms.SetDefaultResponse(&MockResponse{
		Status:  statusCode,
		Body:    fmt.Sprintf(`{"error": %q}`, message),
		Headers: map[string]string{"Content-Type": "application/json"},
	})
}
