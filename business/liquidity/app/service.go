// Package app contains application services and port definitions for the liquidity context.
package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/routefi/trade-router/business/liquidity/domain"
	"github.com/routefi/trade-router/internal/apperror"
	"github.com/routefi/trade-router/internal/logger"
)

// SnapshotStore holds the latest pool snapshot per pair.
// Writers replace whole snapshots; readers get defensive copies. The store
// never mutates a snapshot it received.
type SnapshotStore struct {
	mu    sync.RWMutex
	snaps map[string]domain.Snapshot
}

// Ensure SnapshotStore implements SnapshotSource.
var _ SnapshotSource = (*SnapshotStore)(nil)

// NewSnapshotStore creates an empty store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		snaps: make(map[string]domain.Snapshot),
	}
}

// Put validates and stores a snapshot, replacing any previous one for the
// same pair. Invalid snapshots are rejected.
func (s *SnapshotStore) Put(snap domain.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	if snap.Timestamp.IsZero() {
		snap.Timestamp = time.Now()
	}

	s.mu.Lock()
	s.snaps[snap.Pair.String()] = snap.Clone()
	s.mu.Unlock()

	return nil
}

// Snapshot returns a copy of the latest snapshot for the pair symbol.
func (s *SnapshotStore) Snapshot(pair string) (domain.Snapshot, error) {
	s.mu.RLock()
	snap, ok := s.snaps[pair]
	s.mu.RUnlock()

	if !ok {
		return domain.Snapshot{}, apperror.NotFound(apperror.CodePairNotFound, pair)
	}
	return snap.Clone(), nil
}

// Pairs lists the pair symbols with at least one snapshot, sorted.
func (s *SnapshotStore) Pairs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pairs := make([]string, 0, len(s.snaps))
	for pair := range s.snaps {
		pairs = append(pairs, pair)
	}
	sort.Strings(pairs)
	return pairs
}

// LastUpdate returns the timestamp of the latest snapshot for the pair,
// or the zero time when the pair is unknown.
func (s *SnapshotStore) LastUpdate(pair string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snaps[pair].Timestamp
}

// LiquidityService runs the configured feed and keeps the store fresh.
type LiquidityService struct {
	store        *SnapshotStore
	feed         Feed
	staleTimeout time.Duration
	logger       logger.LoggerInterface
}

// NewLiquidityService creates a new LiquidityService.
func NewLiquidityService(store *SnapshotStore, feed Feed, staleTimeout time.Duration, log logger.LoggerInterface) *LiquidityService {
	return &LiquidityService{
		store:        store,
		feed:         feed,
		staleTimeout: staleTimeout,
		logger:       log,
	}
}

// Store exposes the snapshot store for consumers.
func (s *LiquidityService) Store() *SnapshotStore {
	return s.store
}

// Start launches the feed in the background.
func (s *LiquidityService) Start(ctx context.Context) error {
	go func() {
		if err := s.feed.Run(ctx, func(snap domain.Snapshot) {
			if err := s.store.Put(snap); err != nil {
				s.logger.Warn(ctx, "rejected pool snapshot", "pair", snap.Pair.String(), "error", err)
			}
		}); err != nil && ctx.Err() == nil {
			s.logger.Error(ctx, "liquidity feed stopped", "error", err)
		}
	}()

	s.logger.Info(ctx, "liquidity feed started")
	return nil
}

// Healthy reports whether every tracked pair has a fresh snapshot.
// Used as a health server check.
func (s *LiquidityService) Healthy(_ context.Context) (bool, string) {
	pairs := s.store.Pairs()
	if len(pairs) == 0 {
		return false, "no snapshots yet"
	}

	for _, pair := range pairs {
		age := time.Since(s.store.LastUpdate(pair))
		if s.staleTimeout > 0 && age > s.staleTimeout {
			return false, fmt.Sprintf("%s stale for %s", pair, age.Round(time.Second))
		}
	}
	return true, ""
}
