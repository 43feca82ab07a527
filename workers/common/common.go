// Package common holds the helpers shared by the tick workers.
package common

import (
	"time"
)

// WaitTimeout reports whether the previous run is still holding the
// done channel after the timeout, in which case this round is skipped.
func WaitTimeout(done chan struct{}, timeout time.Duration) bool {
	select {
	case <-done:
		return false // completed normally
	case <-time.After(timeout):
		return true // timed out
	}
}
