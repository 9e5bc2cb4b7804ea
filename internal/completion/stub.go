package completion

import (
	"context"
	"sync"
)

const defaultStubContent = `{
  "idea": {"score": 8, "strengths": ["clear problem framing"], "areas_of_improvement": ["sharpen the differentiator"]},
  "technical_implementation": {"score": 7, "strengths": ["working end-to-end demo"], "areas_of_improvement": ["discuss scaling limits"]},
  "tool_use": {"score": 8, "strengths": ["agent tools used effectively"], "areas_of_improvement": ["show error handling"]},
  "presentation_delivery": {"score": 7, "strengths": ["confident pacing"], "areas_of_improvement": ["tighten the close"]},
  "judge_recommendation": "Solid pitch with a working demo; refine the differentiation story."
}`

// StubClient returns canned responses. Used by tests and the "stub"
// provider profile so the service runs without upstream credentials.
type StubClient struct {
	mu        sync.Mutex
	responses []string
	err       error
	requests  []Request
}

// NewStubClient creates a stub that always returns a valid rubric document
func NewStubClient() *StubClient {
	return &StubClient{}
}

// Name returns the provider name
func (c *StubClient) Name() string { return "stub" }

// QueueResponse appends a canned response; responses are consumed in order,
// after which the default document is returned.
func (c *StubClient) QueueResponse(content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses = append(c.responses, content)
}

// Fail makes every subsequent Complete call return err
func (c *StubClient) Fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// Requests returns the requests seen so far
func (c *StubClient) Requests() []Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Request, len(c.requests))
	copy(out, c.requests)
	return out
}

// Complete returns the next canned response
func (c *StubClient) Complete(_ context.Context, req Request) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requests = append(c.requests, req)

	if c.err != nil {
		return nil, c.err
	}

	content := defaultStubContent
	if len(c.responses) > 0 {
		content = c.responses[0]
		c.responses = c.responses[1:]
	}

	return &Response{Content: content, Model: "stub"}, nil
}
