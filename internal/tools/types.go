// Package tools defines the callable operations the support agent can
// invoke, and the Tool type both the agent loop and the HTTP handlers
// dispatch on.
package tools

import "context"

// Tool represents a callable function the LLM can invoke
type Tool struct {
	Name        string
	Description string
	InputSchema map[string]interface{}
	Execute     func(ctx context.Context, input map[string]interface{}) (string, error)
}
