package bridge

import (
	"fmt"
	"strings"
)

// Category is the classifier's verdict on one call attempt.
type Category int

const (
	// CategorySuccess: a response arrived and carries no recognized error.
	CategorySuccess Category = iota

	// CategoryBusinessRetryable: the gateway answered with a throttling or
	// contention error. Not retried in-loop; feeds the failure counter.
	CategoryBusinessRetryable

	// CategoryAuthRequired: the session is gone. Not retried; enters
	// offline immediately and may trigger re-auth.
	CategoryAuthRequired

	// CategoryTransport: the binding failed below the gateway (symbol
	// missing, host exception). Retried with backoff.
	CategoryTransport

	// CategoryNoResponse: the binding returned without delivering anything.
	// Not retried.
	CategoryNoResponse

	// CategoryDomainError: the gateway answered with an error outside the
	// known busy and auth signatures. The response belongs to the caller;
	// it never feeds the failure counter or the breaker.
	CategoryDomainError
)

func (c Category) String() string {
	switch c {
	case CategorySuccess:
		return "success"
	case CategoryBusinessRetryable:
		return "business_retryable"
	case CategoryAuthRequired:
		return "auth_required"
	case CategoryTransport:
		return "transport"
	case CategoryNoResponse:
		return "no_response"
	case CategoryDomainError:
		return "domain_error"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Gateway error codes that indicate transient contention or throttling.
var retryableCodes = map[string]struct{}{
	"1004": {},
	"1009": {},
	"2000": {},
	"46":   {},
	"48":   {},
}

// Message fragments that mark a response as transiently failed even when the
// code is not one of the known retryable codes. Matched case-insensitively.
var retryableMarks = []string{
	"busy",
	"rejected",
	"unreachable",
	"try again",
}

// Message fragments that mark a dead session.
var authMarks = []string{
	"login timeout",
	"session invalid",
	"verification required",
}

// OperationSuspendedCode is the gateway code that additionally suspends the
// operation; see requests.Manager.
const OperationSuspendedCode = "1009"

// ClassifiedError is the typed failure attached to engine log lines and
// debug captures.
type ClassifiedError struct {
	Category  Category
	Code      string
	Message   string
	Operation string
}

func (e *ClassifiedError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: op=%s code=%s %s", e.Category, e.Operation, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: op=%s %s", e.Category, e.Operation, e.Message)
}

// Classify inspects the outcome of a single binding attempt. invokeErr is
// the error returned by Binding.Invoke; the entity holds whatever response
// was delivered.
func Classify(e *CallEntity, invokeErr error) *ClassifiedError {
	if invokeErr != nil {
		return &ClassifiedError{
			Category:  CategoryTransport,
			Message:   invokeErr.Error(),
			Operation: e.Operation,
		}
	}
	if !e.HasResult {
		return &ClassifiedError{
			Category:  CategoryNoResponse,
			Message:   "binding returned without a response",
			Operation: e.Operation,
		}
	}

	code := responseCode(e.ResponseObject)
	msg := responseMessage(e.ResponseObject)

	if !e.HasError && code == "" {
		return &ClassifiedError{Category: CategorySuccess, Operation: e.Operation}
	}

	lower := strings.ToLower(msg)
	for _, mark := range authMarks {
		if strings.Contains(lower, mark) {
			return &ClassifiedError{Category: CategoryAuthRequired, Code: code, Message: msg, Operation: e.Operation}
		}
	}

	if _, ok := retryableCodes[code]; ok {
		return &ClassifiedError{Category: CategoryBusinessRetryable, Code: code, Message: msg, Operation: e.Operation}
	}
	for _, mark := range retryableMarks {
		if strings.Contains(lower, mark) {
			return &ClassifiedError{Category: CategoryBusinessRetryable, Code: code, Message: msg, Operation: e.Operation}
		}
	}

	// An unrecognized code or message is the gateway rejecting this request
	// on its own terms, not a sign of contention or a dead transport. The
	// caller gets the response back and decides what the code means.
	return &ClassifiedError{Category: CategoryDomainError, Code: code, Message: msg, Operation: e.Operation}
}

// responseCode extracts the gateway error code, tolerating both string and
// numeric encodings.
func responseCode(obj map[string]any) string {
	if obj == nil {
		return ""
	}
	for _, key := range []string{"error", "resultCode"} {
		v, ok := obj[key]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" && !strings.EqualFold(s, "success") {
				return s
			}
		case float64:
			if t != 0 {
				return strings.TrimSuffix(fmt.Sprintf("%v", t), ".0")
			}
		}
	}
	return ""
}

func responseMessage(obj map[string]any) string {
	if obj == nil {
		return ""
	}
	for _, key := range []string{"errorMessage", "resultDesc", "memo"} {
		if v, ok := obj[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// SilentOperations is the allow-list of operations whose failures are
// expected during normal operation. Calls on these operations skip error
// notifications and do not feed the offline failure counter.
type SilentOperations map[string]struct{}

// NewSilentOperations builds the allow-list from operation names.
func NewSilentOperations(ops ...string) SilentOperations {
	s := make(SilentOperations, len(ops))
	for _, op := range ops {
		op = strings.TrimSpace(op)
		if op != "" {
			s[op] = struct{}{}
		}
	}
	return s
}

// Contains reports whether failures of op should stay silent.
func (s SilentOperations) Contains(op string) bool {
	_, ok := s[op]
	return ok
}
