package ports

import (
	"context"
	"time"
)

// JobLocker grants a named lease so that one instance runs a scheduled job
// at a time.
type JobLocker interface {
	// TryLock acquires the lease for ttl. It returns a release function when
	// acquired, or false when another holder owns it.
	TryLock(ctx context.Context, name string, ttl time.Duration) (release func(context.Context) error, acquired bool, err error)
}
