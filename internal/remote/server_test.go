package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/quoter/internal/quote"
)

func newSimulated(t *testing.T) (*Server, *Client) {
	t.Helper()
	srv := NewServer(DefaultSeed(), nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	c, err := NewClient(ts.URL)
	require.NoError(t, err)
	return srv, c
}

func TestServer_ListHonoursLimit(t *testing.T) {
	_, c := newSimulated(t)

	records, err := c.FetchRecords(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, int64(1), records[0].ID)

	all, err := c.FetchRecords(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, len(DefaultSeed()))
}

func TestServer_CreateAssignsIDs(t *testing.T) {
	srv, c := newSimulated(t)
	ctx := context.Background()

	first, err := c.PushQuote(ctx, quote.Quote{Text: "Pushed", Category: "local"})
	require.NoError(t, err)
	second, err := c.PushQuote(ctx, quote.Quote{Text: "Pushed again", Category: "local"})
	require.NoError(t, err)

	assert.Equal(t, int64(len(DefaultSeed())+1), first.ID)
	assert.Equal(t, first.ID+1, second.ID)
	assert.Equal(t, "local", second.Category)
	assert.Len(t, srv.Records(), len(DefaultSeed())+2)
}

func TestServer_RejectsEmptyAndBadInput(t *testing.T) {
	srv := NewServer(nil, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	resp, err := http.Post(ts.URL+"/posts", "application/json", strings.NewReader(`{"title":"  "}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/posts?_limit=abc")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/posts/99")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_OfflineAndPut(t *testing.T) {
	srv, c := newSimulated(t)
	ctx := context.Background()

	srv.SetOffline(true)
	_, err := c.FetchRecords(ctx, 10)
	assert.ErrorContains(t, err, "returned status 503")
	assert.Error(t, c.Ping(ctx))

	srv.SetOffline(false)
	require.NoError(t, c.Ping(ctx))

	srv.Put(Record{ID: 2, Title: "Replaced", Category: "wisdom"})
	srv.Put(Record{Title: "Appended"})
	records := srv.Records()
	assert.Equal(t, "Replaced", records[1].Title)
	assert.Equal(t, "Appended", records[len(records)-1].Title)
	assert.Equal(t, int64(len(DefaultSeed())+1), records[len(records)-1].ID)
}
