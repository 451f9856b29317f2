// Package screen implements the notes screen: debounced search, pagination,
// keep-previous-data fetching, the empty-result notification and the note
// form's modal state.
package screen

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/starford/notehub/internal/models"
	"github.com/starford/notehub/internal/query"
)

// DefaultDebounce is the quiet period before typed text becomes the search.
const DefaultDebounce = time.Second

// ErrClosed is returned by operations on a closed screen.
var ErrClosed = errors.New("screen closed")

// Querier is the cached page source the screen reads from.
type Querier interface {
	Peek(k query.Key) (*models.PageResult, bool)
	Fetch(ctx context.Context, k query.Key) (*models.PageResult, error)
	Invalidate(p query.Prefix) int
}

// NoteCreator creates notes submitted through the form.
type NoteCreator interface {
	CreateNote(ctx context.Context, d models.NoteDraft) (*models.Note, error)
}

// Options configures a Screen. Zero values select the defaults.
type Options struct {
	Debounce time.Duration
	Clock    Clock
	Notifier Notifier
	Creator  NoteCreator
	Logger   *slog.Logger
}

// Screen owns the state of the notes screen.
//
// Concurrency model: one goroutine (the loop) owns every field below the
// loop-owned marker. Public methods post closures to the loop and wait for
// them; debounce timers and fetch completions post without waiting.
type Screen struct {
	q        Querier
	creator  NoteCreator
	debounce time.Duration
	clock    Clock
	notifier Notifier
	logger   *slog.Logger

	ops     chan func()
	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc

	// loop-owned
	search    Search
	pages     Pagination
	modalOpen bool

	data    *models.PageResult
	dataKey query.Key

	fetching bool
	fetchKey query.Key
	seq      uint64
	err      error

	notified    bool
	notifiedKey query.Key

	subs map[chan View]struct{}
}

// New starts the screen and its first fetch for the empty search on page 1.
func New(q Querier, opts Options) *Screen {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Screen{
		q:        q,
		creator:  opts.Creator,
		debounce: opts.Debounce,
		clock:    opts.Clock,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		ops:      make(chan func(), 64),
		stopCh:   make(chan struct{}),
		stopped:  make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
		pages:    newPagination(),
		subs:     make(map[chan View]struct{}),
	}

	go s.run()
	s.do(s.load)
	return s
}

func (s *Screen) run() {
	defer close(s.stopped)

	for {
		select {
		case <-s.stopCh:
			s.search.stop()
			for ch := range s.subs {
				close(ch)
			}
			return
		case op := <-s.ops:
			op()
			s.publish()
		}
	}
}

// do runs fn on the loop and waits for it. It reports false if the screen
// is closed.
func (s *Screen) do(fn func()) bool {
	if s.closed.Load() {
		return false
	}
	done := make(chan struct{})
	select {
	case s.ops <- func() { fn(); close(done) }:
	case <-s.stopped:
		return false
	}
	select {
	case <-done:
		return true
	case <-s.stopped:
		return false
	}
}

// post queues fn on the loop without waiting.
func (s *Screen) post(fn func()) {
	select {
	case s.ops <- fn:
	case <-s.stopped:
	}
}

// SetSearchText updates the raw text, resets the page to 1 and schedules the
// debounced commit, superseding any pending one.
func (s *Screen) SetSearchText(text string) {
	s.do(func() {
		gen := s.search.Set(text)
		s.search.arm(s.clock.AfterFunc(s.debounce, func() {
			s.post(func() { s.commit(gen) })
		}))

		before := s.key()
		s.pages.Reset()
		if s.key() != before {
			s.load()
		}
	})
}

func (s *Screen) commit(gen uint64) {
	if s.search.Commit(gen) {
		s.logger.Debug("search committed", slog.String("search", s.search.Debounced()))
		s.load()
	}
}

// SetPage moves to page n. Out-of-range pages return ErrPageOutOfRange and
// leave the page unchanged.
func (s *Screen) SetPage(n int) error {
	var err error
	ok := s.do(func() {
		before := s.pages.Page()
		if err = s.pages.Set(n); err != nil {
			return
		}
		if n != before {
			s.load()
		}
	})
	if !ok {
		return ErrClosed
	}
	return err
}

// OpenModal shows the note form.
func (s *Screen) OpenModal() {
	s.do(func() { s.modalOpen = true })
}

// CloseModal hides the note form.
func (s *Screen) CloseModal() {
	s.do(func() { s.modalOpen = false })
}

// SubmitNote validates and creates a note, then closes the form and
// refreshes every cached page. On error the form stays open.
func (s *Screen) SubmitNote(ctx context.Context, d models.NoteDraft) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if s.creator == nil {
		return errors.New("screen: no note creator configured")
	}
	n, err := s.creator.CreateNote(ctx, d)
	if err != nil {
		s.logger.Warn("create note failed", slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("note created", slog.String("id", n.ID))

	if !s.do(func() {
		s.modalOpen = false
		s.invalidate()
	}) {
		return ErrClosed
	}
	return nil
}

// Reload drops the cached pages of the current search and refetches the
// current page. Other searches stay cached.
func (s *Screen) Reload() {
	s.do(func() {
		n := s.q.Invalidate(query.ForSearch(s.search.Debounced()))
		s.logger.Debug("search reloaded", slog.Int("dropped", n))
		s.fetching = false
		s.load()
	})
}

// Invalidate drops every cached page and refetches the current one while
// keeping the current data on screen.
func (s *Screen) Invalidate() {
	s.do(s.invalidate)
}

func (s *Screen) invalidate() {
	n := s.q.Invalidate(query.All)
	s.logger.Debug("cache invalidated", slog.Int("dropped", n))
	s.fetching = false
	s.load()
}

// Snapshot returns the current state.
func (s *Screen) Snapshot() Snapshot {
	var snap Snapshot
	s.do(func() { snap = s.snapshot() })
	return snap
}

// Subscribe returns a channel carrying the latest view after every change.
// Slow readers only miss intermediate views. The channel is closed by
// cancel or Close.
func (s *Screen) Subscribe() (<-chan View, func()) {
	ch := make(chan View, 1)
	if !s.do(func() {
		s.subs[ch] = struct{}{}
		ch <- Render(s.snapshot())
	}) {
		close(ch)
		return ch, func() {}
	}
	cancel := func() {
		s.do(func() {
			if _, ok := s.subs[ch]; ok {
				delete(s.subs, ch)
				close(ch)
			}
		})
	}
	return ch, cancel
}

// Close stops the loop and abandons in-flight fetches.
func (s *Screen) Close() {
	if s.closed.CompareAndSwap(false, true) {
		s.cancel()
		close(s.stopCh)
	}
	<-s.stopped
}

func (s *Screen) key() query.Key {
	return query.Key{Search: s.search.Debounced(), Page: s.pages.Page()}
}

func (s *Screen) snapshot() Snapshot {
	return Snapshot{
		RawSearch:  s.search.Raw(),
		Search:     s.search.Debounced(),
		Page:       s.pages.Page(),
		ModalOpen:  s.modalOpen,
		Data:       s.data,
		DataKey:    s.dataKey,
		IsLoading:  s.fetching && s.data == nil,
		IsFetching: s.fetching,
		IsError:    s.err != nil,
		Err:        s.err,
	}
}

func (s *Screen) publish() {
	if len(s.subs) == 0 {
		return
	}
	v := Render(s.snapshot())
	for ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- v:
		default:
		}
	}
}

// load shows the current key from cache or starts fetching it. The previous
// data stays visible until the fetch completes.
func (s *Screen) load() {
	k := s.key()
	// Moving to another key ends the settled empty state, even if that key
	// never settles.
	if k != s.notifiedKey {
		s.notified = false
	}
	if res, ok := s.q.Peek(k); ok {
		s.seq++
		s.fetching = false
		s.settle(k, res)
		return
	}
	if s.fetching && s.fetchKey == k {
		return
	}

	s.seq++
	seq := s.seq
	s.fetching, s.fetchKey, s.err = true, k, nil

	go func() {
		res, err := s.q.Fetch(s.ctx, k)
		s.post(func() { s.complete(seq, k, res, err) })
	}()
}

// complete applies a fetch result unless the key moved on or the fetch was
// superseded.
func (s *Screen) complete(seq uint64, k query.Key, res *models.PageResult, err error) {
	if seq != s.seq || k != s.key() {
		return
	}
	s.fetching = false
	if err != nil {
		s.err = err
		s.logger.Warn("load notes failed",
			slog.String("key", k.String()),
			slog.String("error", err.Error()),
		)
		return
	}
	s.settle(k, res)
}

func (s *Screen) settle(k query.Key, res *models.PageResult) {
	s.data, s.dataKey, s.err = res, k, nil
	s.pages.setTotal(res.TotalPages)

	// The page count shrank under us; fall back to the last page.
	if last := max(res.TotalPages, 1); k.Page > last {
		s.pages.page = last
		s.load()
		return
	}
	s.watchEmpty(k, res)
}

// watchEmpty notifies once per settling on a non-blank search with no notes.
func (s *Screen) watchEmpty(k query.Key, res *models.PageResult) {
	if strings.TrimSpace(k.Search) == "" || len(res.Notes) > 0 {
		s.notified = false
		return
	}
	if s.notified && s.notifiedKey == k {
		return
	}
	s.notified, s.notifiedKey = true, k
	s.notifier.Error(NoResultsMessage)
}
