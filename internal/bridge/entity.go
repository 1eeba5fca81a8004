package bridge

import (
	"encoding/json"

	"github.com/google/uuid"
)

// CallEntity carries one logical gateway call through the engine: the
// serialized request on the way in, the raw and parsed response on the way
// out. Entities are pooled; see Pool.
type CallEntity struct {
	// ID correlates log lines and debug captures for a single call.
	ID string

	// Operation is the logical gateway operation name.
	Operation string

	// RequestPayload is the serialized request body.
	RequestPayload string

	// ResponseText is the raw response as returned by the binding.
	ResponseText string

	// ResponseObject is the parsed response, when ResponseText was valid JSON.
	ResponseObject map[string]any

	// HasResult is set once the binding delivered any response.
	HasResult bool

	// HasError is set when the binding reported a failure. HasResult and
	// HasError are independent: an error response still has a result.
	HasError bool
}

// NewCallEntity creates an unpooled entity. Prefer Pool.Obtain on hot paths.
func NewCallEntity(operation, payload string) *CallEntity {
	return &CallEntity{
		ID:             uuid.New().String(),
		Operation:      operation,
		RequestPayload: payload,
	}
}

// SetRequest prepares a recycled entity for a new call.
func (e *CallEntity) SetRequest(operation, payload string) *CallEntity {
	e.Operation = operation
	e.RequestPayload = payload
	return e
}

// SetResponse records the binding's response and attempts to parse it as a
// JSON object. A response that fails to parse is still a result; the raw text
// is kept and ResponseObject stays nil.
func (e *CallEntity) SetResponse(text string) {
	e.ResponseText = text
	e.HasResult = true

	if text == "" {
		return
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err == nil {
		e.ResponseObject = obj
	}
}

// SetError marks the call as failed. The response fields are left as they
// are so the classifier can inspect whatever the binding delivered.
func (e *CallEntity) SetError() {
	e.HasError = true
}

// reset returns the entity to its blank state for reuse.
func (e *CallEntity) reset() {
	e.ID = ""
	e.Operation = ""
	e.RequestPayload = ""
	e.ResponseText = ""
	e.ResponseObject = nil
	e.HasResult = false
	e.HasError = false
}
