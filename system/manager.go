// Package system is the composition root for the consensus queues of one
// process: it owns the memory tracker registry, the single process-wide
// parent tracker, and a registry of per-tablet queues.
package system

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tabletsql/consensusqueue/consensus"
	"github.com/tabletsql/consensusqueue/memtracker"
	"github.com/tabletsql/consensusqueue/qerrors"
)

// Manager creates and tracks the consensus queue of every tablet this
// process leads. All queues created through one Manager share its tracker
// registry and therefore the one process-wide parent memory tracker.
type Manager struct {
	logger   *zap.Logger
	registry *memtracker.Registry

	mu              sync.RWMutex
	queues          map[string]*consensus.Queue
	parentTrackerID string
}

// NewManager returns a Manager with an empty queue set and a fresh
// tracker registry.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		logger:   logger,
		registry: memtracker.NewRegistry(),
		queues:   make(map[string]*consensus.Queue),
	}
}

// OpenQueue creates and registers the queue for tabletID. The config's
// MetricPrefix is set to the tablet ID so gauges and the child tracker
// are scoped per tablet. Opening a tablet that already has a queue fails.
func (m *Manager) OpenQueue(tabletID string, cfg consensus.Config) (*consensus.Queue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.queues[tabletID]; ok {
		return nil, qerrors.New(
			qerrors.WithCode(qerrors.EConflict),
			qerrors.WithOp("system.OpenQueue"),
			qerrors.WithMsgf("consensus queue already exists for tablet %q", tabletID),
		)
	}

	cfg.MetricPrefix = tabletID
	if cfg.ParentTrackerID == "" {
		cfg.ParentTrackerID = consensus.DefaultParentTrackerID
	}
	m.parentTrackerID = cfg.ParentTrackerID

	q := consensus.NewQueue(m.logger.With(zap.String("tablet", tabletID)), m.registry, cfg)
	m.queues[tabletID] = q

	m.logger.Debug("Created consensus queue for tablet", zap.String("tablet", tabletID))
	return q, nil
}

// Queue returns the queue registered for tabletID, if any.
func (m *Manager) Queue(tabletID string) (*consensus.Queue, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.queues[tabletID]
	return q, ok
}

// CloseQueue closes and unregisters the queue for tabletID.
func (m *Manager) CloseQueue(tabletID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	q, ok := m.queues[tabletID]
	if !ok {
		return qerrors.New(
			qerrors.WithCode(qerrors.ENotFound),
			qerrors.WithOp("system.CloseQueue"),
			qerrors.WithMsgf("consensus queue not found for tablet %q", tabletID),
		)
	}
	q.Close()
	delete(m.queues, tabletID)

	m.logger.Debug("Closed consensus queue for tablet", zap.String("tablet", tabletID))
	return nil
}

// CloseAll closes every registered queue concurrently and empties the
// registry. It stops early if ctx is cancelled; queues not yet closed
// stay registered.
func (m *Manager) CloseAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var egroup errgroup.Group
	closed := make(chan string, len(m.queues))

	for id, q := range m.queues {
		id, q := id, q
		egroup.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			q.Close()
			closed <- id
			return nil
		})
	}
	err := egroup.Wait()
	close(closed)

	for id := range closed {
		delete(m.queues, id)
	}
	return err
}

// TotalConsumption returns the parent tracker's consumption: the bytes
// buffered by every consensus queue in the process. Zero before the
// first queue is opened.
func (m *Manager) TotalConsumption() int64 {
	m.mu.RLock()
	id := m.parentTrackerID
	m.mu.RUnlock()
	if id == "" {
		return 0
	}
	parent, ok := m.registry.Lookup(id)
	if !ok {
		return 0
	}
	return parent.Consumption()
}

// Registry returns the manager's tracker registry, for callers that need
// to introspect individual trackers.
func (m *Manager) Registry() *memtracker.Registry {
	return m.registry
}
