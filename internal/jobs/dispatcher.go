package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// refreshTimeout bounds a single background refresh
const refreshTimeout = 30 * time.Second

// RefreshFunc recomputes derived analytics for one user
type RefreshFunc func(ctx context.Context, userID uuid.UUID) error

// Refresher is the part of the analytics service a refresh needs
type Refresher interface {
	RefreshCache(ctx context.Context, userID uuid.UUID) error
}

// Notifier is told when a user's cached analytics changed
type Notifier interface {
	NotifyRefreshed(userID uuid.UUID)
}

// NewRefreshFunc recomputes the cache and then notifies listeners.
// notifier may be nil.
func NewRefreshFunc(refresher Refresher, notifier Notifier) RefreshFunc {
	return func(ctx context.Context, userID uuid.UUID) error {
		if err := refresher.RefreshCache(ctx, userID); err != nil {
			return err
		}
		if notifier != nil {
			notifier.NotifyRefreshed(userID)
		}
		return nil
	}
}

// InProcessDispatcher runs each refresh on its own goroutine, detached from
// the request that triggered it. Failures are logged and dropped.
type InProcessDispatcher struct {
	refresh RefreshFunc
	log     *zap.Logger
	wg      sync.WaitGroup
}

func NewInProcessDispatcher(refresh RefreshFunc, log *zap.Logger) *InProcessDispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &InProcessDispatcher{refresh: refresh, log: log}
}

func (d *InProcessDispatcher) Dispatch(userID uuid.UUID) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.log.Error("analytics refresh panicked", zap.String("user_id", userID.String()), zap.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		if err := d.refresh(ctx, userID); err != nil {
			d.log.Warn("analytics refresh failed", zap.String("user_id", userID.String()), zap.Error(err))
			return
		}
		d.log.Debug("analytics refreshed", zap.String("user_id", userID.String()))
	}()
}

// Wait blocks until all dispatched refreshes have finished
func (d *InProcessDispatcher) Wait() {
	d.wg.Wait()
}
