package view

import (
	"context"
	"errors"
	"sync"

	"rickmorty/viewer/internal/domain"
	"rickmorty/viewer/internal/metrics"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNoMorePages  = errors.New("no more pages to load")
	ErrLoadInFlight = errors.New("a page load is already in flight")
	ErrClosed       = errors.New("view controller is closed")
	ErrUnknownItem  = errors.New("character is not in the loaded list")
	ErrStale        = errors.New("response discarded, session was reset or closed")
)

// Fetcher retrieves one catalog page from the address named by the cursor.
type Fetcher interface {
	FetchPage(ctx context.Context, cursor domain.Cursor) (*domain.CatalogPage, error)
}

// ticket describes one issued fetch.
type ticket struct {
	ctx        context.Context
	cursor     domain.Cursor
	generation uint64
	done       chan struct{}
}

// Controller owns the list/detail view state of one browsing session. All
// mutations go through LoadMore, Trigger, Select, Deselect, Reset and Close.
type Controller struct {
	fetcher Fetcher
	metrics *metrics.Metrics
	initial domain.Cursor

	mu         sync.Mutex
	session    string
	ctx        context.Context
	cancel     context.CancelFunc
	items      []domain.Character
	selected   *domain.Character
	cursor     domain.Cursor
	loading    bool
	generation uint64
	closed     bool
	done       chan struct{} // non-nil while a fetch of the current generation is in flight
}

func NewController(fetcher Fetcher, initial domain.Cursor, m *metrics.Metrics) *Controller {
	c := &Controller{
		fetcher: fetcher,
		metrics: m,
		initial: initial,
	}
	c.resetLocked()
	return c
}

func (c *Controller) resetLocked() {
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.session = uuid.NewString()
	c.items = make([]domain.Character, 0)
	c.selected = nil
	c.cursor = c.initial
	c.loading = false
	c.done = nil
	c.metrics.SetItemsLoaded(0)
}

// logger must be called with mu held.
func (c *Controller) logger() *log.Entry {
	return log.WithField("session", c.session)
}

// Mount issues the initial load in the background.
func (c *Controller) Mount() error {
	c.mu.Lock()
	logger := c.logger()
	c.mu.Unlock()

	if c.initial.IsNone() {
		logger.Info("No initial page configured, nothing to load")
		return ErrNoMorePages
	}

	logger.Infof("🚀 Loading first page from %s", c.initial)
	if err := c.Trigger(); err != nil {
		logger.Warnf("⚠️ Initial load not started: %v", err)
		return err
	}
	return nil
}

// LoadMore fetches the page under the current cursor and appends it. It blocks
// until the fetch completes and returns the fetch error, if any. Items and cursor
// are untouched on failure.
func (c *Controller) LoadMore(ctx context.Context) error {
	t, err := c.begin()
	if err != nil {
		return err
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(t.ctx, cancel)
	defer stop()

	page, err := c.fetcher.FetchPage(fetchCtx, t.cursor)
	return c.finish(t, page, err)
}

// Trigger starts a load in the background. Guard rejections are reported
// synchronously; the fetch outcome is only logged.
func (c *Controller) Trigger() error {
	t, err := c.begin()
	if err != nil {
		return err
	}

	go func() {
		page, err := c.fetcher.FetchPage(t.ctx, t.cursor)
		_ = c.finish(t, page, err)
	}()

	return nil
}

// Wait blocks until the in-flight fetch of the current session, if any, completes.
func (c *Controller) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (c *Controller) begin() (*ticket, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.closed:
		c.metrics.LoadRejected("closed")
		return nil, ErrClosed
	case c.loading:
		c.metrics.LoadRejected("in_flight")
		return nil, ErrLoadInFlight
	case c.cursor.IsNone():
		c.metrics.LoadRejected("no_more_pages")
		return nil, ErrNoMorePages
	}

	c.loading = true
	c.done = make(chan struct{})

	return &ticket{
		ctx:        c.ctx,
		cursor:     c.cursor,
		generation: c.generation,
		done:       c.done,
	}, nil
}

func (c *Controller) finish(t *ticket, page *domain.CatalogPage, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer close(t.done)

	if c.done == t.done {
		c.loading = false
		c.done = nil
	}

	if t.generation != c.generation {
		c.logger().Debugf("Discarding response for %s from generation %d", t.cursor, t.generation)
		return ErrStale
	}

	if err != nil {
		c.logger().WithError(err).Errorf("❌ Failed to fetch characters from %s", t.cursor)
		return err
	}

	c.items = append(c.items, page.Items...)
	c.cursor = page.Next
	c.metrics.SetItemsLoaded(len(c.items))

	if c.cursor.IsNone() {
		c.logger().Infof("✅ Loaded %d characters, catalog exhausted", len(c.items))
	} else {
		c.logger().Debugf("Loaded %d characters, next page %s", len(c.items), c.cursor)
	}

	return nil
}

// Select switches to the detail screen for the loaded character with the given id.
func (c *Controller) Select(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID == id {
			selected := c.items[i]
			c.selected = &selected
			return nil
		}
	}

	return ErrUnknownItem
}

// Deselect returns to the list screen. Nothing is fetched.
func (c *Controller) Deselect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.selected = nil
}

func (c *Controller) Snapshot() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := ViewState{
		Session: c.session,
		Items:   make([]domain.Character, len(c.items)),
		Cursor:  c.cursor,
		Loading: c.loading,
	}
	copy(state.Items, c.items)

	if c.selected != nil {
		selected := *c.selected
		state.Selected = &selected
	}

	return state
}

// Reset starts a new session from the initial cursor. A fetch still in flight
// for the previous session is cancelled and its response discarded.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	c.cancel()
	c.generation++
	c.resetLocked()
	c.logger().Info("🔄 Session reset")

	return nil
}

// Close tears the session down. Later loads are rejected and any in-flight
// response is discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	c.generation++
	c.cancel()
	c.logger().Info("🛑 View controller closed")
}
