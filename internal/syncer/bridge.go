// Package syncer replicates the local data set to a remote document endpoint.
//
// Pushes are debounced and fire-and-forget: every mutation reschedules a single pending timer
// and only the last one within the quiet period sends the current snapshot. Pulls happen at most
// once per session; a failed pull leaves the session eligible for another attempt.
//
// Two processes pushing to the same endpoint overwrite each other; the last push wins.
package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"dms-service/internal/cache"
	"dms-service/internal/models"
	"dms-service/internal/util"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// PulledFlagKey marks the session as already seeded from the remote snapshot.
const PulledFlagKey = "dms_server_sync_done"

// ErrDisabled is returned by explicit pushes when replication is not configured.
var ErrDisabled = errors.New("remote sync disabled")

// ErrNotPulled is returned by PushPulled when the session could not be seeded from the remote
// snapshot.
var ErrNotPulled = errors.New("remote snapshot not pulled")

// Dataset is the local data the bridge replicates.
type Dataset interface {
	Export(ctx context.Context) models.Snapshot
	Import(ctx context.Context, doc models.SnapshotDocument) int
}

// Config controls replication
type Config struct {
	Endpoint string
	Enabled  bool
	Debounce time.Duration
	// Timeout bounds each network call; zero means no timeout.
	Timeout time.Duration
}

// State is the per-session pull state
type State int

const (
	NotPulled State = iota
	Pulling
	Pulled
)

func (s State) String() string {
	switch s {
	case Pulling:
		return "pulling"
	case Pulled:
		return "pulled"
	default:
		return "not_pulled"
	}
}

// Bridge pushes and pulls snapshots
type Bridge struct {
	cfg    Config
	data   Dataset
	cache  *cache.Cache
	client *http.Client
	logger *zap.Logger

	mu       sync.Mutex
	timer    *time.Timer
	gen      uint64
	closed   bool
	inflight sync.WaitGroup

	pullMu  sync.Mutex
	pulling bool
}

// NewBridge creates a bridge. The session-scoped pulled flag lives in c.
func NewBridge(cfg Config, data Dataset, c *cache.Cache, client *http.Client, logger *zap.Logger) *Bridge {
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = time.Second
	}
	return &Bridge{
		cfg:    cfg,
		data:   data,
		cache:  c,
		client: client,
		logger: util.LoggerOr(logger),
	}
}

// Active reports whether replication is configured
func (b *Bridge) Active() bool {
	return b.cfg.Enabled && b.cfg.Endpoint != "" && b.data != nil
}

// SchedulePush (re)starts the debounce timer. The push fires once the timer survives a full
// quiet period.
func (b *Bridge) SchedulePush() {
	if !b.Active() {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	if b.timer != nil {
		b.timer.Stop()
	}
	b.gen++
	gen := b.gen
	b.timer = time.AfterFunc(b.cfg.Debounce, func() { b.fire(gen) })
}

// Pending reports whether a push is scheduled
func (b *Bridge) Pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.timer != nil
}

// fire runs the push of timer generation gen. A superseded timer does nothing; its successor
// pushes instead.
func (b *Bridge) fire(gen uint64) {
	b.mu.Lock()
	if b.closed || gen != b.gen {
		b.mu.Unlock()
		return
	}
	b.timer = nil
	b.inflight.Add(1)
	b.mu.Unlock()
	defer b.inflight.Done()

	if err := b.Push(context.Background()); err != nil {
		b.logger.Debug("Background push failed", zap.Error(err))
	}
}

// Flush cancels a pending timer and pushes immediately if one was scheduled.
func (b *Bridge) Flush(ctx context.Context) error {
	b.mu.Lock()
	pending := b.timer != nil && b.timer.Stop()
	b.timer = nil
	b.mu.Unlock()

	if !pending {
		return nil
	}
	return b.Push(ctx)
}

// Close cancels any pending push and waits for in-flight pushes to finish.
func (b *Bridge) Close() {
	b.mu.Lock()
	b.closed = true
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.mu.Unlock()

	b.inflight.Wait()
}

// Push sends the full snapshot to the endpoint
func (b *Bridge) Push(ctx context.Context) error {
	if !b.Active() {
		return ErrDisabled
	}

	ctx, span := util.StartSpan(ctx, "Bridge.Push")
	defer span.End()

	start := time.Now()
	defer func() {
		util.SyncPushLatency.Observe(time.Since(start).Seconds())
	}()

	snapshot := b.data.Export(ctx)
	body, err := json.Marshal(snapshot)
	if err != nil {
		util.SyncPushTotal.WithLabelValues("encode_error").Inc()
		return fmt.Errorf("encode snapshot: %w", err)
	}

	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		util.SyncPushTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		util.SyncPushTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("push snapshot: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		util.SyncPushTotal.WithLabelValues("http_error").Inc()
		return fmt.Errorf("push snapshot: unexpected status %d", resp.StatusCode)
	}

	util.SyncPushTotal.WithLabelValues("ok").Inc()
	b.logger.Debug("Snapshot pushed", zap.Int("bytes", len(body)))
	return nil
}

// PushPulled pulls the remote snapshot first when this session has not done so yet, then
// pushes. It refuses with ErrNotPulled when the pull cannot complete.
func (b *Bridge) PushPulled(ctx context.Context) error {
	if !b.Active() {
		return ErrDisabled
	}
	if b.State(ctx) != Pulled {
		b.PullOnce(ctx)
		if b.State(ctx) != Pulled {
			return ErrNotPulled
		}
	}
	return b.Push(ctx)
}

// State returns the pull state of the current session
func (b *Bridge) State(ctx context.Context) State {
	b.pullMu.Lock()
	pulling := b.pulling
	b.pullMu.Unlock()

	if pulling {
		return Pulling
	}
	if b.pulledFlag(ctx) {
		return Pulled
	}
	return NotPulled
}

// PullOnce seeds local collections from the remote snapshot, at most once per session.
// It returns true when at least one local collection was overwritten; callers should then
// reload whatever they derived from the store. Failures return false and leave the session
// eligible for another pull.
func (b *Bridge) PullOnce(ctx context.Context) bool {
	if !b.Active() || b.pulledFlag(ctx) {
		util.SyncPullTotal.WithLabelValues("skipped").Inc()
		return false
	}

	b.pullMu.Lock()
	if b.pulling || b.pulledFlag(ctx) {
		b.pullMu.Unlock()
		util.SyncPullTotal.WithLabelValues("skipped").Inc()
		return false
	}
	b.pulling = true
	b.pullMu.Unlock()

	defer func() {
		b.pullMu.Lock()
		b.pulling = false
		b.pullMu.Unlock()
	}()

	doc, err := b.fetch(ctx)
	if err != nil {
		util.SyncPullTotal.WithLabelValues("error").Inc()
		b.logger.Warn("Snapshot pull failed", zap.Error(err))
		return false
	}

	applied := b.data.Import(ctx, doc)
	b.cache.Write(ctx, cache.Session, PulledFlagKey, "true")

	util.SyncPullTotal.WithLabelValues("ok").Inc()
	b.logger.Info("Snapshot pulled", zap.Int("collections", applied))
	return applied > 0
}

func (b *Bridge) pulledFlag(ctx context.Context) bool {
	v, ok := b.cache.Read(ctx, cache.Session, PulledFlagKey)
	return ok && v == "true"
}

func (b *Bridge) fetch(ctx context.Context) (models.SnapshotDocument, error) {
	ctx, span := util.StartSpan(ctx, "Bridge.Pull")
	defer span.End()

	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.cfg.Endpoint, nil)
	if err != nil {
		return models.SnapshotDocument{}, fmt.Errorf("build pull request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return models.SnapshotDocument{}, fmt.Errorf("pull snapshot: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.SnapshotDocument{}, fmt.Errorf("pull snapshot: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.SnapshotDocument{}, fmt.Errorf("read snapshot: %w", err)
	}
	return DecodeDocument(body, b.logger)
}

func (b *Bridge) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, b.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}
