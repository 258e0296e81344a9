package uicode

import (
	"context"
	"sync"
	"time"
)

// DefaultDebounce is how long a Searcher waits after the last keystroke
// before hitting the API.
const DefaultDebounce = 500 * time.Millisecond

// SearchResult is one delivered listing. Query echoes the filters the
// result answers, so a consumer can bind it to the right UI state.
type SearchResult struct {
	Query SearchQuery
	Items []Component
	Total int64
	Err   error
}

// SearchQuery is the live filter state of a gallery view.
type SearchQuery struct {
	Category string
	Search   string
	Limit    int
	Skip     int
}

// Searcher turns a stream of filter updates into at most one API call
// per quiescent period. Every Update resets the debounce timer; when it
// fires, any in-flight request is cancelled and a new one starts.
// Results are tagged with a generation counter and a result whose
// generation is no longer current is dropped, so the consumer never
// sees a slow early response overwrite a newer one.
type Searcher struct {
	client   *Client
	delay    time.Duration
	onResult func(SearchResult)

	mu      sync.Mutex
	timer   *time.Timer
	cancel  context.CancelFunc
	pending SearchQuery
	gen     uint64
	closed  bool

	wg sync.WaitGroup
}

// SearchOption customises a Searcher.
type SearchOption func(*Searcher)

// WithDebounce overrides the quiescence window.
func WithDebounce(d time.Duration) SearchOption {
	return func(s *Searcher) { s.delay = d }
}

// NewSearcher builds a Searcher delivering results through onResult.
// The callback runs on an internal goroutine and must not block for
// long.
func NewSearcher(c *Client, onResult func(SearchResult), opts ...SearchOption) *Searcher {
	s := &Searcher{
		client:   c,
		delay:    DefaultDebounce,
		onResult: onResult,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Update records the latest filter state and (re)arms the debounce
// timer. Rapid successive calls collapse into one request for the final
// state.
func (s *Searcher) Update(q SearchQuery) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pending = q
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.fire)
}

// fire runs when the debounce window closes: cancel whatever is in
// flight, bump the generation and launch the request for the pending
// query.
func (s *Searcher) fire() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.gen++
	gen := s.gen
	q := s.pending
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		items, total, err := s.client.Components(ctx, ListQuery{
			Category: q.Category,
			Search:   q.Search,
			Limit:    q.Limit,
			Skip:     q.Skip,
		})
		if ctx.Err() != nil {
			return // superseded while in flight
		}

		s.mu.Lock()
		stale := s.closed || gen != s.gen
		s.mu.Unlock()
		if stale {
			return
		}
		s.onResult(SearchResult{Query: q, Items: items, Total: total, Err: err})
	}()
}

// Close stops the timer, cancels any in-flight request and waits for
// the worker goroutine to drain. No callback runs after Close returns.
func (s *Searcher) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}
