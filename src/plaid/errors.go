package plaid

import (
	"fmt"

	"github.com/plaid/plaid-go/v41/plaid"
)

// FeedError wraps a Plaid API failure with a transient/fatal
// classification so the sync loop knows whether a retry can help.
type FeedError struct {
	Op        string
	ErrorType string
	ErrorCode string
	transient bool
	err       error
}

func (e *FeedError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Op, e.ErrorCode, e.ErrorType)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.err)
}

func (e *FeedError) Unwrap() error {
	return e.err
}

// Transient reports whether the failure is worth retrying. Credential
// errors (revoked or expired access) are not.
func (e *FeedError) Transient() bool {
	return e.transient
}

func classify(op string, err error) error {
	plaidErr, convErr := plaid.ToPlaidError(err)
	if convErr != nil {
		// Not a structured Plaid error: network failure, timeout, or a
		// 5xx without a parseable body. All retryable.
		return &FeedError{Op: op, transient: true, err: err}
	}

	errorType := string(plaidErr.GetErrorType())
	errorCode := string(plaidErr.GetErrorCode())

	transient := true
	switch errorType {
	case "ITEM_ERROR", "INVALID_INPUT":
		// ITEM_LOGIN_REQUIRED, INVALID_ACCESS_TOKEN and friends need the
		// user to re-link; retrying only burns the rate limit.
		transient = false
	case "RATE_LIMIT_EXCEEDED", "API_ERROR", "INSTITUTION_ERROR":
		transient = true
	}

	return &FeedError{
		Op:        op,
		ErrorType: errorType,
		ErrorCode: errorCode,
		transient: transient,
		err:       err,
	}
}
