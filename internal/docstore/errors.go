package docstore

import (
	"context"
	"errors"
	"net"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// IsTransient reports whether a remote failure is worth retrying on the next
// reconnect/interval trigger. Permission-denied is included: the backend
// returns it while a refreshed auth token is still propagating, and the
// membership documents it guards become readable moments later.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded,
		codes.Aborted, codes.PermissionDenied:
		return true
	}
	return false
}
