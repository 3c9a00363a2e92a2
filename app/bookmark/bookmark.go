// Package bookmark keeps the set of bookmarked articles in memory and
// persists it to a single durable storage slot.
//
// The set is loaded once, mutated only by Toggle and written back by a single
// writer goroutine (see Store.Run), so the stored value always converges to
// the result of the last Toggle.
package bookmark

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Semior001/newsreader/app/store"
	"github.com/Semior001/newsreader/pkg/logx"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

// DefaultKey is the name of the storage slot with bookmarks.
const DefaultKey = "@bookmarks"

// corruptSuffix is appended to the slot key to keep a payload that failed to decode.
const corruptSuffix = ".corrupt"

var (
	// ErrNotLoaded is returned by Toggle when Load has not been called.
	ErrNotLoaded = errors.New("bookmarks are not loaded")
	// ErrAlreadyLoaded is returned by repeated Load calls.
	ErrAlreadyLoaded = errors.New("bookmarks are already loaded")
	// ErrCorrupted is returned by Load when the stored payload can't be decoded.
	ErrCorrupted = errors.New("stored bookmarks are corrupted")
	// ErrClosed is returned when the writer has been stopped and changes
	// can't be persisted anymore.
	ErrClosed = errors.New("bookmarks are closed")
)

// State is a lifecycle state of the Store.
type State int

// Possible states of the Store.
const (
	Uninitialized State = iota
	Loading
	Ready
	Closed
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Store is a canonical holder of the bookmark set.
type Store struct {
	kv store.Interface
	Options

	mu    sync.Mutex
	state State
	ready chan struct{} // closed once the store is Ready
	set   []store.Article

	// version is bumped on every toggle, persisted is the last version
	// written to the slot, writeErr is the error of the last failed attempt
	version   uint64
	persisted uint64
	writeErr  error
	written   chan struct{} // closed and replaced after every write attempt
	stopped   bool          // the writer has made its last attempt

	dirty chan struct{}
}

// NewStore makes a new Store over the given storage.
// Load must be called before the store accepts toggles.
func NewStore(kv store.Interface, opts ...Option) *Store {
	options := Options{
		Key:           DefaultKey,
		RetryInterval: time.Second,
		FlushTimeout:  5 * time.Second,
		Logger:        slog.New(logx.NoOp()),
	}

	for _, opt := range opts {
		opt(&options)
	}

	return &Store{
		kv:      kv,
		Options: options,
		ready:   make(chan struct{}),
		set:     []store.Article{},
		written: make(chan struct{}),
		dirty:   make(chan struct{}, 1),
	}
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Load reads the bookmark set from the storage slot.
// The store that is already loaded or closed returns ErrAlreadyLoaded.
// Missing slot results in an empty set. If the slot can't be read or decoded,
// the store starts with an empty set and the error is returned, the store
// is Ready in any case. A payload that fails to decode is kept under
// the "<key>.corrupt" slot, so it isn't lost on the next write.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.state != Uninitialized {
		s.mu.Unlock()
		return ErrAlreadyLoaded
	}
	s.state = Loading
	s.mu.Unlock()

	set, err := s.read(ctx)

	s.mu.Lock()
	s.set = set
	if s.state == Loading {
		s.state = Ready
	}
	close(s.ready)
	s.mu.Unlock()

	if err != nil {
		return err
	}

	s.Logger.InfoCtx(ctx, "bookmarks loaded", slog.Int("count", len(set)))
	return nil
}

func (s *Store) read(ctx context.Context) ([]store.Article, error) {
	bts, err := s.kv.Get(ctx, s.Key)
	if errors.Is(err, store.ErrNotFound) {
		return []store.Article{}, nil
	}
	if err != nil {
		s.Logger.WarnCtx(ctx, "failed to read bookmarks, starting with an empty set", slog.Any("err", err))
		return []store.Article{}, fmt.Errorf("read slot %s: %w", s.Key, err)
	}

	var set []store.Article
	if err = json.Unmarshal(bts, &set); err != nil {
		s.Logger.WarnCtx(ctx, "failed to decode bookmarks, starting with an empty set",
			slog.Any("err", err), slog.String("backup", s.Key+corruptSuffix))

		if bErr := s.kv.Put(ctx, s.Key+corruptSuffix, bts); bErr != nil {
			s.Logger.ErrorCtx(ctx, "failed to back up corrupted bookmarks", slog.Any("err", bErr))
		}

		return []store.Article{}, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}

	uniq := lo.UniqBy(set, func(a store.Article) string { return a.URL })
	if len(uniq) != len(set) {
		s.Logger.WarnCtx(ctx, "dropped duplicated bookmarks", slog.Int("dropped", len(set)-len(uniq)))
	}

	if uniq == nil {
		uniq = []store.Article{}
	}

	return uniq, nil
}

// Toggle adds the article to the set if there is no article with
// the same URL, otherwise removes it. It returns whether the article
// is bookmarked after the call. The in-memory set is updated
// immediately, persistence happens in background, see Run.
// If the store is still loading, Toggle waits for it.
// Once the writer is stopped, Toggle returns ErrClosed and leaves the set as is.
func (s *Store) Toggle(ctx context.Context, a store.Article) (bookmarked bool, err error) {
	if err := s.waitReady(ctx); err != nil {
		return false, err
	}

	s.mu.Lock()
	// the writer might have been stopped while waiting
	if s.state == Closed {
		s.mu.Unlock()
		return false, ErrClosed
	}

	idx := slices.IndexFunc(s.set, a.SameAs)

	// the slice is never modified in place, as the writer may hold the previous one
	var next []store.Article
	if idx < 0 {
		next = make([]store.Article, len(s.set), len(s.set)+1)
		copy(next, s.set)
		next = append(next, a)
	} else {
		next = make([]store.Article, 0, len(s.set)-1)
		next = append(next, s.set[:idx]...)
		next = append(next, s.set[idx+1:]...)
	}

	s.set = next
	s.version++
	version := s.version
	s.mu.Unlock()

	select {
	case s.dirty <- struct{}{}:
	default:
	}

	bookmarked = idx < 0
	s.Logger.DebugCtx(ctx, "bookmark toggled",
		slog.String("url", a.URL),
		slog.Bool("bookmarked", bookmarked),
		slog.Uint64("version", version),
	)

	return bookmarked, nil
}

func (s *Store) waitReady(ctx context.Context) error {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()

	switch state {
	case Ready:
		return nil
	case Uninitialized:
		return ErrNotLoaded
	case Closed:
		return ErrClosed
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ready:
		return nil
	}
}

// IsBookmarked reports whether an article with the given URL is in the set.
func (s *Store) IsBookmarked(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.ContainsBy(s.set, func(a store.Article) bool { return a.URL == url })
}

// Bookmarks returns a copy of the current set, in insertion order.
func (s *Store) Bookmarks() []store.Article {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.set)
}
