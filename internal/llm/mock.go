package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider is a deterministic Provider for testing.
// It returns canned responses in FIFO order and records all requests.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Generate returns the next canned response or ErrProviderUnavailable if
// the queue is empty. Canned content is validated against req.Schema like a
// real provider would.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	if len(m.responses) == 0 {
		m.mu.Unlock()
		return nil, &ErrProviderUnavailable{}
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	m.mu.Unlock()

	return mockResult(req, resp)
}

func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// FuncProvider answers each request with a function of the request. It
// suits concurrent tests where FIFO order is not deterministic.
type FuncProvider struct {
	fn    func(ctx context.Context, req Request) MockResponse
	mu    sync.Mutex
	calls int
}

// NewFuncProvider creates a FuncProvider.
func NewFuncProvider(fn func(ctx context.Context, req Request) MockResponse) *FuncProvider {
	return &FuncProvider{fn: fn}
}

func (f *FuncProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	return mockResult(req, f.fn(ctx, req))
}

func (f *FuncProvider) ModelID() string {
	return "mock"
}

// CallCount returns the number of Generate calls made.
func (f *FuncProvider) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func mockResult(req Request, resp MockResponse) (*Response, error) {
	if resp.Err != nil {
		return nil, resp.Err
	}
	if err := ValidateJSON(req.Schema, resp.Content); err != nil {
		return nil, err
	}
	return &Response{
		Content:    resp.Content,
		Usage:      resp.Usage,
		Model:      "mock",
		StopReason: stopEnd,
	}, nil
}
