// Package health tracks per-process service degradation state and exposes
// it over HTTP for monitoring.
package health

import (
	"sync"
	"time"

	"github.com/mharte/caseflow/internal/pkg/metrics"
)

// DegradationLevel is a three-valued severity describing component health.
type DegradationLevel string

// Degradation levels, ordered from healthy to broken.
const (
	DegradationNone    DegradationLevel = "none"
	DegradationPartial DegradationLevel = "partial"
	DegradationFull    DegradationLevel = "fully_degraded"
)

// State is the operational state of one service process: health of the
// service itself, health of its database (when it has one), version,
// startup time and the maintenance flag.
//
// One State is constructed at startup and shared by reference with every
// component that needs it. All access goes through the mutex: concurrent
// requests can fail simultaneously and race on the transition otherwise.
//
// Invariant: inMaintenance implies serviceHealth == DegradationFull.
// Entering maintenance always forces serviceHealth to DegradationFull;
// exiting resets it to DegradationNone.
type State struct {
	mu sync.Mutex

	serviceHealth DegradationLevel
	serviceDetail string

	databaseEnabled bool
	databaseHealth  DegradationLevel
	databaseDetail  string

	version     string
	startupTime time.Time

	inMaintenance bool
}

// NewState creates the state record for a service. databaseEnabled is false
// for services without a database (their snapshots omit database health and
// MarkDatabaseFailed is a no-op).
func NewState(version string, databaseEnabled bool) *State {
	return &State{
		serviceHealth:   DegradationNone,
		databaseEnabled: databaseEnabled,
		databaseHealth:  DegradationNone,
		version:         version,
		startupTime:     time.Now(),
	}
}

// MarkDatabaseFailed marks the database as fully degraded and enters
// maintenance mode. Ignored when the service has no database.
func (s *State) MarkDatabaseFailed(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.databaseEnabled {
		return
	}
	s.databaseHealth = DegradationFull
	s.databaseDetail = reason
	s.enterMaintenanceLocked("Database failure: " + reason)
}

// MarkServiceFailed marks the service as fully degraded and enters
// maintenance mode.
func (s *State) MarkServiceFailed(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enterMaintenanceLocked(reason)
}

// EnterMaintenance enables maintenance mode. Idempotent.
func (s *State) EnterMaintenance(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enterMaintenanceLocked(reason)
}

// ExitMaintenance disables maintenance mode and returns the service to
// normal operation. This is the only way out of a degraded state: the gate
// never recovers on its own.
func (s *State) ExitMaintenance() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inMaintenance = false
	s.serviceHealth = DegradationNone
	s.serviceDetail = "Normal operation"
	s.databaseHealth = DegradationNone
	s.databaseDetail = ""
	metrics.MaintenanceMode.Set(0)
}

// IsOperational reports whether the service accepts gated operations.
func (s *State) IsOperational() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return !s.inMaintenance
}

func (s *State) enterMaintenanceLocked(reason string) {
	s.inMaintenance = true
	s.serviceHealth = DegradationFull
	s.serviceDetail = reason
	metrics.MaintenanceMode.Set(1)
}

// Snapshot is a point-in-time, serializable view of a State.
type Snapshot struct {
	ServiceHealth DegradationLevel
	ServiceDetail string

	DatabaseEnabled bool
	DatabaseHealth  DegradationLevel
	DatabaseDetail  string

	Version       string
	StartupTime   time.Time
	InMaintenance bool
}

// Snapshot returns a consistent copy of the state for reporting.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		ServiceHealth:   s.serviceHealth,
		ServiceDetail:   s.serviceDetail,
		DatabaseEnabled: s.databaseEnabled,
		DatabaseHealth:  s.databaseHealth,
		DatabaseDetail:  s.databaseDetail,
		Version:         s.version,
		StartupTime:     s.startupTime,
		InMaintenance:   s.inMaintenance,
	}
}
