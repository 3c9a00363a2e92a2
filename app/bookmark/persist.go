package bookmark

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/exp/slog"
)

// Run writes changes of the set to the storage slot until context is dead.
// There must be only one Run per Store. Each write serializes the latest
// version of the set, a failed write is retried after RetryInterval unless
// a newer version arrives earlier. On stop, the store is closed for toggles
// and unsaved changes are written once more, limited by FlushTimeout.
// Run must be stopped only after all the callers of Toggle are done.
func (s *Store) Run(ctx context.Context) error {
	s.Logger.InfoCtx(ctx, "starting bookmarks writer")

	var retry <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			s.close(ctx)

			s.Logger.InfoCtx(ctx, "bookmarks writer stopped")
			return ctx.Err()
		case <-s.dirty:
		case <-retry:
		}

		retry = nil
		if err := s.persist(ctx); err != nil {
			s.Logger.ErrorCtx(ctx, "failed to save bookmarks, will retry",
				slog.Any("err", err), slog.Duration("retry_in", s.RetryInterval))
			retry = time.After(s.RetryInterval)
		}
	}
}

// close rejects further toggles and makes the last write attempt.
func (s *Store) close(ctx context.Context) {
	s.mu.Lock()
	s.state = Closed
	s.mu.Unlock()

	fctx, cancel := context.WithTimeout(context.Background(), s.FlushTimeout)
	defer cancel()

	err := s.persist(fctx)
	if err != nil {
		s.Logger.ErrorCtx(ctx, "failed to save bookmarks on stop", slog.Any("err", err))
	}

	// wake up Flush callers, so they don't wait for writes that never happen
	s.mu.Lock()
	s.stopped = true
	close(s.written)
	s.written = make(chan struct{})
	s.mu.Unlock()
}

// persist writes the current set if it has unsaved changes.
func (s *Store) persist(ctx context.Context) error {
	s.mu.Lock()
	if s.version == s.persisted {
		s.mu.Unlock()
		return nil
	}
	version, set := s.version, s.set
	s.mu.Unlock()

	bts, err := json.Marshal(set)
	if err == nil {
		err = s.kv.Put(ctx, s.Key, bts)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	defer func() {
		close(s.written)
		s.written = make(chan struct{})
	}()

	if err != nil {
		s.writeErr = fmt.Errorf("write version %d: %w", version, err)
		return s.writeErr
	}

	if version > s.persisted {
		s.persisted = version
	}
	s.writeErr = nil

	s.Logger.DebugCtx(ctx, "bookmarks saved", slog.Uint64("version", version), slog.Int("count", len(set)))
	return nil
}

// Flush waits until all toggles made before the call are written to the
// storage slot. It returns the error of the write attempt if the attempt
// failed, the context error, or ErrClosed if the changes are never
// going to be written as the writer is stopped.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	target := s.version

	for s.persisted < target {
		if s.stopped {
			err := s.writeErr
			s.mu.Unlock()
			if err != nil {
				return fmt.Errorf("%w: %v", ErrClosed, err)
			}
			return ErrClosed
		}

		written := s.written
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-written:
		}

		s.mu.Lock()
		if s.persisted < target && s.writeErr != nil {
			err := s.writeErr
			s.mu.Unlock()
			return err
		}
	}

	s.mu.Unlock()
	return nil
}
