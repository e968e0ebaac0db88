package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"dms-service/config"
	"dms-service/internal/models"
	"dms-service/internal/syncer"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testConfig(endpoint string, enabled bool) *config.Config {
	return &config.Config{
		Sync: config.SyncConfig{
			Enabled:  enabled,
			Endpoint: endpoint,
			Debounce: time.Hour,
			Timeout:  time.Second,
		},
		Session:  config.SessionConfig{ID: "test-session"},
		Business: config.BusinessConfig{TaxRate: decimal.NewFromFloat(0.18)},
	}
}

// remote serves one stored document the way /api/data does: GET returns it, POST replaces it.
type remote struct {
	server *httptest.Server
	gets   atomic.Int32
	posts  atomic.Int32

	mu       sync.Mutex
	doc      string
	failGets bool
}

func newRemote(t *testing.T, doc string) *remote {
	r := &remote{doc: doc}
	r.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.mu.Lock()
		defer r.mu.Unlock()
		if req.Method == http.MethodGet {
			r.gets.Add(1)
			if r.failGets {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = io.WriteString(w, r.doc)
			return
		}
		r.posts.Add(1)
		body, _ := io.ReadAll(req.Body)
		r.doc = string(body)
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	t.Cleanup(r.server.Close)
	return r
}

func (r *remote) snapshot(t *testing.T) models.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	var snap models.Snapshot
	require.NoError(t, json.Unmarshal([]byte(r.doc), &snap))
	return snap
}

const remoteDoc = `{
	"users": [{"id":"u7","username":"boss","password":"secret","role":"Admin"}],
	"customers": [{"id":"c1","name":"Ali"}],
	"salesOrders": [{"id":"o1","orderNumber":"ORD-1"}],
	"products": [{"id":"p9","name":"Remote","price":10,"stock":5}]
}`

func TestListProductsFromSeed(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), testConfig("", false), []string{"list", "products"}, &out, zaptest.NewLogger(t))
	require.NoError(t, err)

	var products []map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &products))
	assert.Len(t, products, 10)
}

func TestListUnknownCollection(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), testConfig("", false), []string{"list", "invoices"}, &out, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), testConfig("", false), []string{"stats"}, &out, zaptest.NewLogger(t)))
	assert.Contains(t, out.String(), "10")
}

func TestPullReportsChange(t *testing.T) {
	r := newRemote(t, remoteDoc)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), testConfig(r.server.URL, true), []string{"pull"}, &out, zaptest.NewLogger(t)))
	assert.Contains(t, out.String(), "changed=true")
	assert.Equal(t, int32(1), r.gets.Load())
	assert.Zero(t, r.posts.Load())
}

func TestPushKeepsRemoteCollections(t *testing.T) {
	r := newRemote(t, remoteDoc)
	logger := zaptest.NewLogger(t)

	require.NoError(t, run(context.Background(), testConfig(r.server.URL, true), []string{"pull"}, &bytes.Buffer{}, logger))
	require.NoError(t, run(context.Background(), testConfig(r.server.URL, true), []string{"push"}, &bytes.Buffer{}, logger))
	require.Equal(t, int32(1), r.posts.Load())

	snap := r.snapshot(t)
	require.Len(t, snap.Users, 1)
	assert.Equal(t, "boss", snap.Users[0].Username)
	require.Len(t, snap.Customers, 1)
	assert.Equal(t, "c1", snap.Customers[0].ID)
	assert.Len(t, snap.SalesOrders, 1)
	require.Len(t, snap.Products, 1)
	assert.Equal(t, "Remote", snap.Products[0].Name)
}

func TestPushRefusesWithoutPull(t *testing.T) {
	r := newRemote(t, remoteDoc)
	r.mu.Lock()
	r.failGets = true
	r.mu.Unlock()

	err := run(context.Background(), testConfig(r.server.URL, true), []string{"push"}, &bytes.Buffer{}, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, syncer.ErrNotPulled)
	assert.Zero(t, r.posts.Load())
}

func TestCheckoutPushesOnTopOfRemote(t *testing.T) {
	r := newRemote(t, `{"customers":[{"id":"c1","name":"Ali"}],"products":[{"id":"p9","name":"Remote","price":10,"stock":5}]}`)

	var out bytes.Buffer
	err := run(context.Background(), testConfig(r.server.URL, true),
		[]string{"checkout", "-user", "admin", "-password", "admin123", "-customer", "c1", "-received", "50", "p9:2"},
		&out, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "REC-")
	require.Equal(t, int32(1), r.posts.Load(), "pending push flushed on exit")

	snap := r.snapshot(t)
	require.Len(t, snap.Products, 1)
	assert.Equal(t, 3, snap.Products[0].Stock)
	require.Len(t, snap.Customers, 1)
	assert.InDelta(t, 23.6, snap.Customers[0].OutstandingBalance, 0.001)
	assert.Len(t, snap.POSTransactions, 1)
	assert.Len(t, snap.Receipts, 1)
	assert.Len(t, snap.InventoryTransactions, 1)
}

func TestCheckoutRefusedWhenRemoteUnreachable(t *testing.T) {
	r := newRemote(t, remoteDoc)
	r.mu.Lock()
	r.failGets = true
	r.mu.Unlock()

	err := run(context.Background(), testConfig(r.server.URL, true),
		[]string{"checkout", "-user", "admin", "-password", "admin123", "1:1"},
		&bytes.Buffer{}, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, syncer.ErrNotPulled)
	assert.Zero(t, r.posts.Load())
}

func TestCheckoutRequiresSignIn(t *testing.T) {
	err := run(context.Background(), testConfig("", false), []string{"checkout", "1:1"}, &bytes.Buffer{}, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestAdjustReducesStock(t *testing.T) {
	r := newRemote(t, `{"products":[{"id":"p9","name":"Remote","price":10,"stock":5}]}`)

	var out bytes.Buffer
	err := run(context.Background(), testConfig(r.server.URL, true),
		[]string{"adjust", "-user", "admin", "-password", "admin123", "-reduce", "p9", "2"},
		&out, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, "Remote: stock 3\n", out.String())

	snap := r.snapshot(t)
	require.Len(t, snap.Products, 1)
	assert.Equal(t, 3, snap.Products[0].Stock)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), testConfig("", false), []string{"login", "admin", "admin123"}, &out, zaptest.NewLogger(t)))
	assert.Contains(t, out.String(), "signed in as admin")

	err := run(context.Background(), testConfig("", false), []string{"login", "admin", "nope"}, &bytes.Buffer{}, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestParseLines(t *testing.T) {
	lines, err := parseLines([]string{"p1:2", "p2:1"})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "p1", lines[0].ProductID)
	assert.Equal(t, 2, lines[0].Quantity)

	for _, bad := range []string{"p1", ":2", "p1:x"} {
		_, err := parseLines([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestUnknownCommand(t *testing.T) {
	err := run(context.Background(), testConfig("", false), []string{"frobnicate"}, &bytes.Buffer{}, zaptest.NewLogger(t))
	assert.Error(t, err)
}
