package errors

import (
	"errors"
	"fmt"
)

var (
	ErrorCommitFailed    = errors.New("transaction commit failed")     // Static error for a rejected transaction commit.
	ErrorGatewayDispatch = errors.New("messaging gateway call failed") // Static error for a failed platform send/forward/copy.
)

// WrapCommitFailed wraps the underlying store error of a rejected commit.
func WrapCommitFailed(cause error) error {
	return fmt.Errorf("%w: %v", ErrorCommitFailed, cause)
}

// WrapGatewayDispatch wraps the underlying platform error of a failed dispatch.
func WrapGatewayDispatch(op string, cause error) error {
	return fmt.Errorf("%w: %s: %v", ErrorGatewayDispatch, op, cause)
}
