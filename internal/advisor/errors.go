// Package advisor is the content-service adapter: it turns résumé operations into
// prompts for the LLM client and turns the JSON replies back into domain values.
package advisor

import "fmt"

// ResponseError represents a reply that does not match the expected schema.
type ResponseError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *ResponseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: invalid response: %s: %v", e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: invalid response: %s", e.Operation, e.Message)
}

func (e *ResponseError) Unwrap() error {
	return e.Cause
}
