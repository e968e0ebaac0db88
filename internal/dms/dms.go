// Package dms assembles the local-first data store: cache, collections, repositories, the
// remote sync bridge and the session holder.
package dms

import (
	"context"
	"errors"
	"net/http"
	"time"

	"dms-service/internal/cache"
	"dms-service/internal/collection"
	"dms-service/internal/repository"
	"dms-service/internal/session"
	"dms-service/internal/syncer"
	"dms-service/internal/util"

	"go.uber.org/zap"
)

// Options configures a Store. Nil facilities make their scope in-memory only.
type Options struct {
	Durable    cache.Facility
	Session    cache.Facility
	Sync       syncer.Config
	HTTPClient *http.Client
	Clock      func() time.Time
	Logger     *zap.Logger
}

// Store is the assembled data store. Construct one per process and pass it to its users.
type Store struct {
	Cache       *cache.Cache
	Collections *collection.Store
	Data        *repository.Dataset
	Repos       *repository.Set
	Sync        *syncer.Bridge
	Session     *session.Holder

	clock  func() time.Time
	logger *zap.Logger
}

// New wires the store and seeds empty user and product collections.
func New(ctx context.Context, opts Options) (*Store, error) {
	logger := util.LoggerOr(opts.Logger)
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	c := cache.New(opts.Durable, opts.Session, logger)
	coll := collection.NewStore(c, logger)
	data := repository.NewDataset(coll, clock, logger)
	bridge := syncer.NewBridge(opts.Sync, data, c, opts.HTTPClient, logger)

	s := &Store{
		Cache:       c,
		Collections: coll,
		Data:        data,
		Repos:       repository.NewSet(data, bridge, clock),
		Sync:        bridge,
		Session:     session.NewHolder(coll),
		clock:       clock,
		logger:      logger,
	}

	if err := seed(ctx, repository.NewSet(data, nil, clock), clock(), logger); err != nil {
		return nil, err
	}

	logger.Info("Data store ready",
		zap.Bool("durable_facility", c.HasFacility(cache.Durable)),
		zap.Bool("session_facility", c.HasFacility(cache.Session)),
		zap.Bool("sync", bridge.Active()))
	return s, nil
}

// Now returns the store clock
func (s *Store) Now() time.Time {
	return s.clock()
}

// Close sends any pending push and waits for background pushes to finish.
func (s *Store) Close(ctx context.Context) {
	if err := s.Sync.Flush(ctx); err != nil && !errors.Is(err, syncer.ErrDisabled) {
		s.logger.Warn("Final push failed", zap.Error(err))
	}
	s.Sync.Close()
}
