package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rickmorty/viewer/internal/domain"
	"rickmorty/viewer/internal/httpserver/deps"
	"rickmorty/viewer/internal/metrics"
	"rickmorty/viewer/internal/view"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const firstPage domain.Cursor = "https://catalog.test/api/character"

type pageFetcher struct {
	pages   map[domain.Cursor]*domain.CatalogPage
	started chan struct{}
	release chan struct{}
}

func (f *pageFetcher) FetchPage(_ context.Context, cursor domain.Cursor) (*domain.CatalogPage, error) {
	if f.started != nil {
		f.started <- struct{}{}
		<-f.release
	}
	page, ok := f.pages[cursor]
	if !ok {
		return nil, fmt.Errorf("no page at %s", cursor)
	}
	return page, nil
}

func twoPages() map[domain.Cursor]*domain.CatalogPage {
	return map[domain.Cursor]*domain.CatalogPage{
		firstPage: {Next: "page2", Items: []domain.Character{
			{ID: 1, Name: "Rick Sanchez", Status: "Alive", Species: "Human", Gender: "Male",
				Origin: &domain.Place{Name: "Earth (C-137)"}, Location: &domain.Place{Name: "Citadel of Ricks"},
				Image: "https://catalog.test/avatar/1.jpeg"},
			{ID: 2, Name: "Morty Smith", Status: "Alive", Species: "Human", Gender: "Male",
				Image: "https://catalog.test/avatar/2.jpeg"},
		}},
		"page2": {Next: domain.NoCursor, Items: []domain.Character{
			{ID: 3, Name: "Summer Smith", Status: "Alive", Species: "Human", Gender: "Female",
				Origin: &domain.Place{Name: ""}, Image: "https://catalog.test/avatar/3.jpeg"},
		}},
	}
}

type harness struct {
	ctrl   *view.Controller
	srv    *httptest.Server
	client *http.Client
}

func newHarness(t *testing.T, f view.Fetcher, limiter *rate.Limiter) *harness {
	t.Helper()

	m := metrics.New()
	ctrl := view.NewController(f, firstPage, m)
	t.Cleanup(ctrl.Close)

	srv := httptest.NewServer(NewRouter(deps.Deps{
		View:            ctrl,
		Metrics:         m,
		LoadMoreLimiter: limiter,
		RefreshSeconds:  2,
		StartTime:       time.Now(),
		Version:         "test",
		BuildDate:       "2025-08-11T18:42:00Z",
	}))
	t.Cleanup(srv.Close)

	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}

	return &harness{ctrl: ctrl, srv: srv, client: client}
}

func (h *harness) page(t *testing.T) *goquery.Document {
	t.Helper()
	resp, err := h.client.Get(h.srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	return doc
}

func (h *harness) post(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := h.client.Post(h.srv.URL+path, "application/x-www-form-urlencoded", nil)
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func TestListScreen(t *testing.T) {
	h := newHarness(t, &pageFetcher{pages: twoPages()}, nil)
	require.NoError(t, h.ctrl.LoadMore(context.Background()))

	doc := h.page(t)

	assert.Equal(t, 1, doc.Find("main#list").Length())
	assert.Equal(t, "Rick and Morty Characters", strings.TrimSpace(doc.Find("main#list h1").Text()))

	cards := doc.Find(".character-card")
	require.Equal(t, 2, cards.Length())
	assert.Equal(t, "Rick Sanchez", cards.Eq(0).Find("h3").Text())
	assert.Equal(t, "Status: Alive", cards.Eq(0).Find("p").Text())
	action, _ := cards.Eq(1).Attr("action")
	assert.Equal(t, "/characters/2/select", action)
	src, _ := cards.Eq(1).Find("img").Attr("src")
	assert.Equal(t, "https://catalog.test/avatar/2.jpeg", src)

	assert.Equal(t, 1, doc.Find("#load-more").Length())
	assert.Equal(t, 0, doc.Find("#loading").Length())
	assert.Equal(t, 0, doc.Find(`meta[http-equiv="refresh"]`).Length())
}

func TestLoadMoreHiddenWhileLoading(t *testing.T) {
	f := &pageFetcher{pages: twoPages(), started: make(chan struct{}, 1), release: make(chan struct{})}
	h := newHarness(t, f, nil)

	require.NoError(t, h.ctrl.Mount())
	<-f.started

	doc := h.page(t)
	assert.Equal(t, 0, doc.Find("#load-more").Length())
	assert.Equal(t, "Loading...", doc.Find("#loading").Text())
	refresh, ok := doc.Find(`meta[http-equiv="refresh"]`).Attr("content")
	assert.True(t, ok)
	assert.Equal(t, "2", refresh)

	// a second trigger while loading is ignored
	resp := h.post(t, "/load-more")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	close(f.release)
	h.ctrl.Wait()

	doc = h.page(t)
	assert.Equal(t, 2, doc.Find(".character-card").Length())
	assert.Equal(t, 1, doc.Find("#load-more").Length())
	assert.Equal(t, 0, doc.Find("#loading").Length())
}

func TestLoadMoreUntilExhausted(t *testing.T) {
	h := newHarness(t, &pageFetcher{pages: twoPages()}, nil)
	require.NoError(t, h.ctrl.LoadMore(context.Background()))

	resp := h.post(t, "/load-more")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	h.ctrl.Wait()

	doc := h.page(t)
	assert.Equal(t, 3, doc.Find(".character-card").Length())
	assert.Equal(t, 0, doc.Find("#load-more").Length())

	// nothing left to load: still a redirect, state unchanged
	resp = h.post(t, "/load-more")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Len(t, h.ctrl.Snapshot().Items, 3)
}

func TestDetailScreenAndBack(t *testing.T) {
	h := newHarness(t, &pageFetcher{pages: twoPages()}, nil)
	require.NoError(t, h.ctrl.LoadMore(context.Background()))

	resp := h.post(t, "/characters/1/select")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	doc := h.page(t)
	require.Equal(t, 1, doc.Find("main#detail").Length())
	assert.Equal(t, 0, doc.Find(".character-card").Length())
	assert.Equal(t, "Rick Sanchez", doc.Find("main#detail h1").Text())
	assert.Equal(t, "Status: Alive", doc.Find(`[data-field="status"]`).Text())
	assert.Equal(t, "Origin: Earth (C-137)", doc.Find(`[data-field="origin"]`).Text())
	assert.Equal(t, "Last Location: Citadel of Ricks", doc.Find(`[data-field="location"]`).Text())

	resp = h.post(t, "/characters/2/select")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	doc = h.page(t)
	assert.Equal(t, "Morty Smith", doc.Find("main#detail h1").Text())
	assert.Equal(t, "Origin: N/A", doc.Find(`[data-field="origin"]`).Text())
	assert.Equal(t, "Last Location: N/A", doc.Find(`[data-field="location"]`).Text())
	assert.Equal(t, "Back to Characters", doc.Find("#back").Text())

	resp = h.post(t, "/back")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	doc = h.page(t)
	assert.Equal(t, 1, doc.Find("main#list").Length())
	assert.Equal(t, 2, doc.Find(".character-card").Length())
	assert.Equal(t, domain.Cursor("page2"), h.ctrl.Snapshot().Cursor)
}

func TestSelectNotFound(t *testing.T) {
	h := newHarness(t, &pageFetcher{pages: twoPages()}, nil)
	require.NoError(t, h.ctrl.LoadMore(context.Background()))

	tests := []struct {
		name string
		path string
	}{
		{name: "unknown id", path: "/characters/999/select"},
		{name: "malformed id", path: "/characters/rick/select"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := h.post(t, tt.path)
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
			assert.Nil(t, h.ctrl.Snapshot().Selected)
		})
	}
}

func TestLoadMoreRateLimited(t *testing.T) {
	h := newHarness(t, &pageFetcher{pages: twoPages()}, rate.NewLimiter(rate.Every(time.Hour), 1))

	resp := h.post(t, "/load-more")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	h.ctrl.Wait()

	resp = h.post(t, "/load-more")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	assert.Len(t, h.ctrl.Snapshot().Items, 2)
}

func TestStateEndpoint(t *testing.T) {
	h := newHarness(t, &pageFetcher{pages: twoPages()}, nil)
	require.NoError(t, h.ctrl.LoadMore(context.Background()))
	require.NoError(t, h.ctrl.Select(2))

	resp, err := h.client.Get(h.srv.URL + "/api/state")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Items       []domain.Character `json:"items"`
		Selected    *domain.Character  `json:"selected"`
		Cursor      string             `json:"cursor"`
		Loading     bool               `json:"loading"`
		Screen      string             `json:"screen"`
		CanLoadMore bool               `json:"can_load_more"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Len(t, body.Items, 2)
	require.NotNil(t, body.Selected)
	assert.Equal(t, 2, body.Selected.ID)
	assert.Equal(t, "page2", body.Cursor)
	assert.Equal(t, "detail", body.Screen)
	assert.True(t, body.CanLoadMore)
	assert.False(t, body.Loading)
}

func TestHealthzAndMetrics(t *testing.T) {
	h := newHarness(t, &pageFetcher{pages: twoPages()}, nil)

	resp, err := h.client.Get(h.srv.URL + "/healthz")
	require.NoError(t, err)
	var health map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "test", health["version"])
	assert.Equal(t, "2025-08-11T18:42:00Z", health["build_date"])

	resp, err = h.client.Get(h.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `viewer_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}

func TestResetStartsNewSession(t *testing.T) {
	h := newHarness(t, &pageFetcher{pages: twoPages()}, nil)
	require.NoError(t, h.ctrl.LoadMore(context.Background()))
	require.NoError(t, h.ctrl.LoadMore(context.Background()))
	require.NoError(t, h.ctrl.Select(3))
	before := h.ctrl.Snapshot()

	resp := h.post(t, "/reset")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	h.ctrl.Wait()

	after := h.ctrl.Snapshot()
	assert.NotEqual(t, before.Session, after.Session)
	assert.Nil(t, after.Selected)
	assert.Len(t, after.Items, 2)
	assert.Equal(t, domain.Cursor("page2"), after.Cursor)
}
