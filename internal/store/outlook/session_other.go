//go:build !windows

package outlook

import (
	"context"
	"errors"
	"runtime"

	"github.com/cpuguy83/dayplan/internal/store"
)

// Open always fails off Windows: COM automation of the desktop calendar
// application is not available. Configure the ICS or CalDAV store instead.
func (s *Store) Open(ctx context.Context) (store.Session, error) {
	return nil, errors.New("outlook store requires Windows, not " + runtime.GOOS)
}

var _ store.Store = (*Store)(nil)
