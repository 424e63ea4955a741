package renewal

import (
	"fmt"
	"time"
)

// ConcurrentRenewalError rejects a trigger for an account that
// already has an attempt in flight. The caller retries after the
// in-flight attempt completes; triggers are never queued.
type ConcurrentRenewalError struct {
	AccountID int64
}

func (e *ConcurrentRenewalError) Error() string {
	return fmt.Sprintf("a renewal is already in flight for account %d", e.AccountID)
}

// StepTimeoutError marks an attempt that exceeded the wall-clock
// budget. It records the state the machine was in when time ran out.
type StepTimeoutError struct {
	State   State
	Timeout time.Duration
}

func (e *StepTimeoutError) Error() string {
	return fmt.Sprintf("renewal timed out after %s in state %s", e.Timeout, e.State)
}
