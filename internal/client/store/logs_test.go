package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/job-tracker/internal/client/logapi"
	"github.com/cuongbtq/job-tracker/internal/tracker/activity"
)

var errOffline = errors.New("connection refused")

type fakeAPI struct {
	nextID  int64
	created []activity.Entry
	pages   []*logapi.Page
	filters []logapi.Filter
	err     error
}

func (f *fakeAPI) CreateLog(_ context.Context, e activity.Entry) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.nextID++
	f.created = append(f.created, e)
	return f.nextID, nil
}

func (f *fakeAPI) ListLogs(_ context.Context, filter logapi.Filter) (*logapi.Page, error) {
	f.filters = append(f.filters, filter)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.pages) == 0 {
		return &logapi.Page{}, nil
	}
	page := f.pages[0]
	f.pages = f.pages[1:]
	return page, nil
}

func at(day int) time.Time {
	return time.Date(2026, 3, day, 12, 0, 0, 0, time.UTC)
}

func newFallback(t *testing.T, api *fakeAPI) (*FallbackLogs, *CachedLogs) {
	t.Helper()

	s, _ := newTestStorage(t)
	cache := NewCachedLogs(s)
	f, err := NewFallbackLogs(&FallbackConfig{
		Remote: NewRemoteLogs(api),
		Cache:  cache,
		Now:    func() time.Time { return at(10) },
	})
	require.NoError(t, err)
	return f, cache
}

func TestRemoteLogs_ListFollowsCursor(t *testing.T) {
	api := &fakeAPI{pages: []*logapi.Page{
		{Entries: []activity.Entry{{ID: 3}, {ID: 2}}, NextCursor: "c1"},
		{Entries: []activity.Entry{{ID: 1}}},
	}}

	got, err := NewRemoteLogs(api).List(context.Background(), logapi.Filter{Company: "Acme"})

	require.NoError(t, err)
	assert.Len(t, got, 3)
	require.Len(t, api.filters, 2)
	assert.Equal(t, "c1", api.filters[1].Cursor)
	assert.Equal(t, "Acme", api.filters[1].Company)
}

func TestRemoteLogs_ListWithLimitReadsOnePage(t *testing.T) {
	api := &fakeAPI{pages: []*logapi.Page{
		{Entries: []activity.Entry{{ID: 3}}, NextCursor: "c1"},
	}}

	got, err := NewRemoteLogs(api).List(context.Background(), logapi.Filter{Limit: 1})

	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Len(t, api.filters, 1)
}

func TestFallbackLogs_CreateRemote(t *testing.T) {
	api := &fakeAPI{nextID: 40}
	f, cache := newFallback(t, api)

	e, err := f.Create(context.Background(), activity.Entry{Action: activity.ActionCreated, Company: "Acme"})

	require.NoError(t, err)
	assert.Equal(t, int64(41), e.ID)
	assert.Equal(t, at(10), e.Timestamp, "missing timestamp is stamped")

	cached, err := cache.All()
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, int64(41), cached[0].ID)
}

func TestFallbackLogs_CreateOffline(t *testing.T) {
	f, cache := newFallback(t, &fakeAPI{err: errOffline})

	first, err := f.Create(context.Background(), activity.Entry{Action: activity.ActionCreated, Timestamp: at(1)})
	require.NoError(t, err, "network errors are never surfaced")
	second, err := f.Create(context.Background(), activity.Entry{Action: activity.ActionUpdated, Timestamp: at(2)})
	require.NoError(t, err)

	assert.NotZero(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, at(1), first.Timestamp)

	cached, err := cache.All()
	require.NoError(t, err)
	assert.Len(t, cached, 2)
}

func TestFallbackLogs_ListRemoteReplacesCache(t *testing.T) {
	api := &fakeAPI{pages: []*logapi.Page{{Entries: []activity.Entry{
		{ID: 1, Timestamp: at(1)},
		{ID: 2, Timestamp: at(3)},
		{ID: 3, Timestamp: at(2)},
	}}}}
	f, cache := newFallback(t, api)
	_, err := cache.Create(context.Background(), activity.Entry{ID: 99, Timestamp: at(9)})
	require.NoError(t, err)

	got, err := f.List(context.Background(), logapi.Filter{})

	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 1}, ids(got), "newest first")

	cached, err := cache.All()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids(cached), "cache holds the remote list as received")
}

func TestFallbackLogs_ListAfterReconnectReplaysOfflineEntries(t *testing.T) {
	api := &fakeAPI{nextID: 10, err: errOffline}
	f, cache := newFallback(t, api)

	offline, err := f.Create(context.Background(), activity.Entry{Action: activity.ActionCreated, Company: "Acme", Timestamp: at(4)})
	require.NoError(t, err)

	pending, err := cache.Pending()
	require.NoError(t, err)
	assert.Equal(t, []int64{offline.ID}, ids(pending))

	api.err = nil
	api.pages = []*logapi.Page{{Entries: []activity.Entry{{ID: 5, Timestamp: at(1)}}}}

	got, err := f.List(context.Background(), logapi.Filter{})

	require.NoError(t, err)
	assert.Equal(t, []int64{11, 5}, ids(got), "replayed entry carries the server id")
	require.Len(t, api.created, 1)
	assert.Equal(t, "Acme", api.created[0].Company)

	cached, err := cache.All()
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 11}, ids(cached))

	pending, err = cache.Pending()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

type flakyCreate struct {
	*RemoteLogs
	failCreate bool
}

func (r *flakyCreate) Create(ctx context.Context, e activity.Entry) (activity.Entry, error) {
	if r.failCreate {
		return activity.Entry{}, errOffline
	}
	return r.RemoteLogs.Create(ctx, e)
}

func TestFallbackLogs_ListKeepsEntriesThatFailReplay(t *testing.T) {
	api := &fakeAPI{pages: []*logapi.Page{{Entries: []activity.Entry{{ID: 5, Timestamp: at(1)}}}}}
	remote := &flakyCreate{RemoteLogs: NewRemoteLogs(api), failCreate: true}

	s, _ := newTestStorage(t)
	cache := NewCachedLogs(s)
	f, err := NewFallbackLogs(&FallbackConfig{Remote: remote, Cache: cache})
	require.NoError(t, err)

	offline, err := f.Create(context.Background(), activity.Entry{Action: activity.ActionUpdated, Timestamp: at(6)})
	require.NoError(t, err)

	got, err := f.List(context.Background(), logapi.Filter{})

	require.NoError(t, err)
	assert.Equal(t, []int64{offline.ID, 5}, ids(got))

	cached, err := cache.All()
	require.NoError(t, err)
	assert.Equal(t, []int64{5, offline.ID}, ids(cached), "offline entry survives the refresh")

	pending, err := cache.Pending()
	require.NoError(t, err)
	assert.Equal(t, []int64{offline.ID}, ids(pending))
}

func TestFallbackLogs_ListFilteredKeepsCache(t *testing.T) {
	api := &fakeAPI{pages: []*logapi.Page{{Entries: []activity.Entry{{ID: 1, Company: "Acme"}}}}}
	f, cache := newFallback(t, api)
	_, err := cache.Create(context.Background(), activity.Entry{ID: 7, Company: "Beta"})
	require.NoError(t, err)

	_, err = f.List(context.Background(), logapi.Filter{Company: "Acme"})
	require.NoError(t, err)

	cached, err := cache.All()
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, ids(cached))
}

func TestFallbackLogs_ListOfflineUsesCache(t *testing.T) {
	f, cache := newFallback(t, &fakeAPI{err: errOffline})
	for _, e := range []activity.Entry{
		{ID: 1, Company: "Acme", Timestamp: at(1)},
		{ID: 2, Company: "Beta", Timestamp: at(2)},
		{ID: 3, Company: "acme", Timestamp: at(3)},
	} {
		_, err := cache.Create(context.Background(), e)
		require.NoError(t, err)
	}

	all, err := f.List(context.Background(), logapi.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2, 1}, ids(all))

	acme, err := f.List(context.Background(), logapi.Filter{Company: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, ids(acme))

	limited, err := f.List(context.Background(), logapi.Filter{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids(limited))
}

func TestFallbackLogs_ListOfflineEmptyCache(t *testing.T) {
	f, _ := newFallback(t, &fakeAPI{err: errOffline})

	got, err := f.List(context.Background(), logapi.Filter{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func ids(entries []activity.Entry) []int64 {
	out := make([]int64, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}
