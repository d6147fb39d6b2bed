package listview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID string
}

func itemID(it item) string { return it.ID }

func items(ids ...string) []item {
	out := make([]item, len(ids))
	for i, id := range ids {
		out[i] = item{ID: id}
	}
	return out
}

func ids(its []item) []string {
	out := make([]string, len(its))
	for i, it := range its {
		out[i] = it.ID
	}
	return out
}

// fakeSource serves scripted pages keyed by filter and cursor.
type fakeSource struct {
	mu    sync.Mutex
	pages map[string]map[string]Page[item]
	fail  map[string]error
	calls []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		pages: map[string]map[string]Page[item]{},
		fail:  map[string]error{},
	}
}

func (s *fakeSource) add(filter, cursor string, next string, itemIDs ...string) {
	if s.pages[filter] == nil {
		s.pages[filter] = map[string]Page[item]{}
	}
	s.pages[filter][cursor] = Page[item]{Items: items(itemIDs...), NextCursor: next}
}

func (s *fakeSource) failOnce(filter, cursor string, err error) {
	s.mu.Lock()
	s.fail[filter+"|"+cursor] = err
	s.mu.Unlock()
}

func (s *fakeSource) fetch(_ context.Context, filter string, cursor string) (Page[item], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := filter + "|" + cursor
	s.calls = append(s.calls, key)
	if err, ok := s.fail[key]; ok {
		delete(s.fail, key)
		return Page[item]{}, err
	}
	page, ok := s.pages[filter][cursor]
	if !ok {
		return Page[item]{}, fmt.Errorf("no page for %s", key)
	}
	return page, nil
}

func newTestController(src *fakeSource, filter string) *Controller[item, string] {
	return New("test", src.fetch, itemID, filter)
}

func TestInitialState(t *testing.T) {
	c := newTestController(newFakeSource(), "all")
	snap := c.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.Empty(t, snap.Items)
	assert.False(t, snap.HasMore())
	assert.Nil(t, c.LoadMore(), "LoadMore before anything loaded")
}

func TestLoadThenLoadMoreScenario(t *testing.T) {
	src := newFakeSource()
	src.add("unread", "", "c1", "e1", "e2")
	src.add("unread", "c1", "", "e3")
	c := newTestController(src, "unread")
	ctx := context.Background()

	req := c.Load()
	require.NotNil(t, req)
	assert.Equal(t, Loading, c.State())
	require.True(t, c.Do(ctx, req))

	snap := c.Snapshot()
	assert.Equal(t, Loaded, snap.State)
	assert.Equal(t, []string{"e1", "e2"}, ids(snap.Items))
	assert.Equal(t, "c1", snap.Cursor)

	require.True(t, c.Do(ctx, c.LoadMore()))
	snap = c.Snapshot()
	assert.Equal(t, []string{"e1", "e2", "e3"}, ids(snap.Items))
	assert.Empty(t, snap.Cursor)
	assert.False(t, snap.HasMore())

	assert.Nil(t, c.LoadMore(), "exhausted cursor makes LoadMore a no-op")
	assert.Equal(t, []string{"unread|", "unread|c1"}, src.calls)
}

func TestLoadMoreConcatenatesPagesInOrder(t *testing.T) {
	src := newFakeSource()
	src.add("all", "", "p1", "a", "b")
	src.add("all", "p1", "p2", "c")
	src.add("all", "p2", "p3", "d", "e")
	src.add("all", "p3", "p4", "f")
	src.add("all", "p4", "", "g", "h")
	c := newTestController(src, "all")
	ctx := context.Background()

	require.True(t, c.Do(ctx, c.Load()))
	for c.Snapshot().HasMore() {
		require.True(t, c.Do(ctx, c.LoadMore()))
		require.Equal(t, Loaded, c.State())
	}

	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f", "g", "h"}, ids(c.Items()))
	assert.Empty(t, c.Snapshot().Cursor)
}

func TestSetFilterResetsToFirstPage(t *testing.T) {
	src := newFakeSource()
	src.add("all", "", "p1", "a1", "a2")
	src.add("all", "p1", "p2", "a3", "a4")
	src.add("all", "p2", "", "a5")
	src.add("unread", "", "u1", "u1-a")
	c := newTestController(src, "all")
	ctx := context.Background()

	require.True(t, c.Do(ctx, c.Load()))
	require.True(t, c.Do(ctx, c.LoadMore()))
	require.True(t, c.Do(ctx, c.LoadMore()))
	require.Len(t, c.Items(), 5)

	req := c.SetFilter("unread")
	require.NotNil(t, req)
	snap := c.Snapshot()
	assert.Equal(t, Loading, snap.State)
	assert.Empty(t, snap.Items, "filter change clears items immediately")
	assert.Empty(t, snap.Cursor)

	require.True(t, c.Do(ctx, req))
	snap = c.Snapshot()
	assert.Equal(t, "unread", snap.Filter)
	assert.Equal(t, []string{"u1-a"}, ids(snap.Items))
	assert.Equal(t, "u1", snap.Cursor)
}

func TestSetFilterSameValueIsNoop(t *testing.T) {
	src := newFakeSource()
	src.add("all", "", "", "a")
	c := newTestController(src, "all")
	require.True(t, c.Do(context.Background(), c.Load()))

	gen := c.Snapshot().Generation
	assert.Nil(t, c.SetFilter("all"))
	assert.Equal(t, gen, c.Snapshot().Generation)
	assert.Equal(t, Loaded, c.State())
}

func TestStaleFilterResultIsDiscarded(t *testing.T) {
	src := newFakeSource()
	src.add("all", "", "a-next", "a1", "a2")
	src.add("unread", "", "", "u1")
	c := newTestController(src, "all")
	ctx := context.Background()

	oldReq := c.Load()
	newReq := c.SetFilter("unread")
	require.NotNil(t, newReq)

	// The new filter's page arrives first, then the old one.
	require.True(t, c.Apply(newReq.Run(ctx)))
	assert.False(t, c.Apply(oldReq.Run(ctx)), "stale result must be dropped")

	snap := c.Snapshot()
	assert.Equal(t, []string{"u1"}, ids(snap.Items))
	assert.Empty(t, snap.Cursor)
	assert.Equal(t, Loaded, snap.State)
}

func TestStaleResultArrivingBeforeCurrentIsDiscarded(t *testing.T) {
	src := newFakeSource()
	src.add("all", "", "", "a1")
	src.add("unread", "", "", "u1")
	c := newTestController(src, "all")
	ctx := context.Background()

	oldReq := c.Load()
	newReq := c.SetFilter("unread")

	assert.False(t, c.Apply(oldReq.Run(ctx)))
	snap := c.Snapshot()
	assert.Equal(t, Loading, snap.State, "a stale result must not end the current load")
	assert.Empty(t, snap.Items)

	require.True(t, c.Apply(newReq.Run(ctx)))
	assert.Equal(t, []string{"u1"}, ids(c.Items()))
}

func TestLoadMoreSupersededByFilterChange(t *testing.T) {
	src := newFakeSource()
	src.add("all", "", "p1", "a1")
	src.add("all", "p1", "", "a2")
	src.add("unread", "", "", "u1")
	c := newTestController(src, "all")
	ctx := context.Background()

	require.True(t, c.Do(ctx, c.Load()))
	more := c.LoadMore()
	require.NotNil(t, more)
	reset := c.SetFilter("unread")

	moreResult := more.Run(ctx)
	require.True(t, c.Apply(reset.Run(ctx)))
	assert.False(t, c.Apply(moreResult))
	assert.Equal(t, []string{"u1"}, ids(c.Items()))
}

func TestLoadMoreWhileInflightIsNoop(t *testing.T) {
	src := newFakeSource()
	src.add("all", "", "p1", "a1")
	src.add("all", "p1", "p2", "a2")
	c := newTestController(src, "all")
	ctx := context.Background()

	require.True(t, c.Do(ctx, c.Load()))
	first := c.LoadMore()
	require.NotNil(t, first)
	assert.Nil(t, c.LoadMore(), "second LoadMore while the first is live")

	require.True(t, c.Do(ctx, first))
	assert.Equal(t, []string{"a1", "a2"}, ids(c.Items()))
}

func TestFailedLoadMoreKeepsItemsThenRecovers(t *testing.T) {
	src := newFakeSource()
	src.add("all", "", "c1", "e1", "e2")
	src.add("all", "c1", "", "e3")
	c := newTestController(src, "all")
	ctx := context.Background()

	require.True(t, c.Do(ctx, c.Load()))

	boom := errors.New("HTTP 502 Bad Gateway")
	src.failOnce("all", "c1", boom)
	require.True(t, c.Do(ctx, c.LoadMore()))

	snap := c.Snapshot()
	assert.Equal(t, Errored, snap.State)
	assert.Equal(t, "HTTP 502 Bad Gateway", snap.Error)
	assert.Equal(t, []string{"e1", "e2"}, ids(snap.Items))
	assert.Equal(t, "c1", snap.Cursor)
	assert.ErrorIs(t, c.Err(), boom)

	req := c.LoadMore()
	require.NotNil(t, req, "retry after failure is allowed")
	require.True(t, c.Do(ctx, req))

	snap = c.Snapshot()
	assert.Equal(t, Loaded, snap.State)
	assert.Empty(t, snap.Error)
	assert.NoError(t, c.Err())
	assert.Equal(t, []string{"e1", "e2", "e3"}, ids(snap.Items))
}

func TestFailedInitialLoad(t *testing.T) {
	src := newFakeSource()
	src.failOnce("all", "", errors.New("connection refused"))
	src.add("all", "", "", "a")
	c := newTestController(src, "all")
	ctx := context.Background()

	require.True(t, c.Do(ctx, c.Load()))
	assert.Equal(t, Errored, c.State())
	assert.Nil(t, c.LoadMore(), "nothing to continue from")

	require.True(t, c.Do(ctx, c.Refresh()))
	assert.Equal(t, Loaded, c.State())
	assert.Equal(t, []string{"a"}, ids(c.Items()))
}

func TestRefreshKeepsItemsUntilSuccess(t *testing.T) {
	src := newFakeSource()
	src.add("all", "", "p1", "a1")
	src.add("all", "p1", "", "a2")
	c := newTestController(src, "all")
	ctx := context.Background()

	require.True(t, c.Do(ctx, c.Load()))
	require.True(t, c.Do(ctx, c.LoadMore()))

	src.add("all", "", "p1b", "new1", "new2")
	req := c.Refresh()
	snap := c.Snapshot()
	assert.Equal(t, Loading, snap.State)
	assert.Equal(t, []string{"a1", "a2"}, ids(snap.Items), "items stay visible during refresh")

	require.True(t, c.Do(ctx, req))
	snap = c.Snapshot()
	assert.Equal(t, []string{"new1", "new2"}, ids(snap.Items))
	assert.Equal(t, "p1b", snap.Cursor)
}

func TestFailedRefreshKeepsItems(t *testing.T) {
	src := newFakeSource()
	src.add("all", "", "p1", "a1")
	c := newTestController(src, "all")
	ctx := context.Background()

	require.True(t, c.Do(ctx, c.Load()))
	src.failOnce("all", "", errors.New("timeout"))
	require.True(t, c.Do(ctx, c.Refresh()))

	snap := c.Snapshot()
	assert.Equal(t, Errored, snap.State)
	assert.Equal(t, []string{"a1"}, ids(snap.Items))
	assert.Equal(t, "p1", snap.Cursor)
}

func TestRefreshSupersedesLoadMore(t *testing.T) {
	src := newFakeSource()
	src.add("all", "", "p1", "a1")
	src.add("all", "p1", "", "a2")
	c := newTestController(src, "all")
	ctx := context.Background()

	require.True(t, c.Do(ctx, c.Load()))
	more := c.LoadMore()
	refresh := c.Refresh()

	require.True(t, c.Do(ctx, refresh))
	assert.False(t, c.Do(ctx, more))
	assert.Equal(t, []string{"a1"}, ids(c.Items()))
	assert.Equal(t, "p1", c.Snapshot().Cursor)
}

func TestResultAppliedOnlyOnce(t *testing.T) {
	src := newFakeSource()
	src.add("all", "", "p1", "a1")
	src.add("all", "p1", "", "a2")
	c := newTestController(src, "all")
	ctx := context.Background()

	require.True(t, c.Do(ctx, c.Load()))
	res := c.LoadMore().Run(ctx)
	require.True(t, c.Apply(res))
	assert.False(t, c.Apply(res), "replaying a result must not duplicate a page")
	assert.Equal(t, []string{"a1", "a2"}, ids(c.Items()))
}

func TestSelection(t *testing.T) {
	src := newFakeSource()
	src.add("all", "", "", "a", "b")
	c := newTestController(src, "all")
	require.True(t, c.Do(context.Background(), c.Load()))

	_, ok := c.SelectedID()
	assert.False(t, ok)

	c.Select("b")
	c.Select("b")
	id, ok := c.SelectedID()
	assert.True(t, ok)
	assert.Equal(t, "b", id)
	sel, ok := c.Selected()
	require.True(t, ok)
	assert.Equal(t, "b", sel.ID)

	c.ClearSelection()
	_, ok = c.SelectedID()
	assert.False(t, ok)
	_, ok = c.Selected()
	assert.False(t, ok)
}

func TestSelectUnknownID(t *testing.T) {
	c := newTestController(newFakeSource(), "all")

	assert.NotPanics(t, func() { c.Select("missing") })
	id, ok := c.SelectedID()
	assert.True(t, ok)
	assert.Equal(t, "missing", id)

	_, found := c.Selected()
	assert.False(t, found)
}

func TestSnapshotIsACopy(t *testing.T) {
	src := newFakeSource()
	src.add("all", "", "", "a")
	c := newTestController(src, "all")
	require.True(t, c.Do(context.Background(), c.Load()))

	snap := c.Snapshot()
	snap.Items[0].ID = "mutated"
	assert.Equal(t, []string{"a"}, ids(c.Items()))
}

func TestDoNilRequest(t *testing.T) {
	c := newTestController(newFakeSource(), "all")
	assert.False(t, c.Do(context.Background(), nil))
}

func TestConcurrentRequestsOnlyLatestWins(t *testing.T) {
	src := newFakeSource()
	filters := []string{"f0", "f1", "f2", "f3", "f4", "f5", "f6", "f7"}
	for _, f := range filters {
		src.add(f, "", "", f+"-item")
	}
	c := newTestController(src, "none")
	ctx := context.Background()

	var reqs []*Request[item, string]
	for _, f := range filters {
		reqs = append(reqs, c.SetFilter(f))
	}

	var wg sync.WaitGroup
	applied := make(chan string, len(reqs))
	for _, r := range reqs {
		wg.Add(1)
		go func(r *Request[item, string]) {
			defer wg.Done()
			if c.Apply(r.Run(ctx)) {
				applied <- r.Filter
			}
		}(r)
	}
	wg.Wait()
	close(applied)

	var winners []string
	for f := range applied {
		winners = append(winners, f)
	}
	assert.Equal(t, []string{"f7"}, winners)
	assert.Equal(t, []string{"f7-item"}, ids(c.Items()))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "loaded", Loaded.String())
	assert.Equal(t, "errored", Errored.String())
	assert.Equal(t, "more", More.String())
}
