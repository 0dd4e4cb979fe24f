/*
Package session carries computation defaults across recomputation passes.

PURPOSE:
  A later computation may reuse an earlier one's outputs as its defaults:
  the unit rate derived last pass pre-fills the next pass, the adjusted
  schedule percentages survive a preset reload, and so on. That carry-over
  is an explicit, caller-owned context object - the engine itself stays
  pure and reads nothing ambient.

SEMANTICS:
  One Defaults record per session id, single writer and single reader per
  session. The in-memory store here covers a single process; store/sqlite
  provides the durable implementation behind the same interface.

SEE ALSO:
  - store/sqlite: Durable Store implementation
  - api/handlers.go: Reads defaults before a run, writes them back after
*/
package session

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DEFAULTS - Prior outputs reusable as next inputs
// =============================================================================

// StagePercent is one remembered schedule override.
type StagePercent struct {
	Stage      string          `json:"stage"`
	Percentage decimal.Decimal `json:"percentage"`
}

// Defaults is what one session remembers between passes. All value fields
// are pointers: nil means "nothing remembered", which callers must not
// confuse with a remembered zero.
type Defaults struct {
	UnitRate *decimal.Decimal `json:"unit_rate,omitempty"` // last BH, manual or derived
	Factor   *decimal.Decimal `json:"factor,omitempty"`    // last fp, manual or interpolated
	R        *decimal.Decimal `json:"r,omitempty"`         // last repetition coefficient
	Preset   string           `json:"preset,omitempty"`    // last schedule preset name
	Shares   []StagePercent   `json:"shares,omitempty"`    // last stage percentages

	UpdatedAt time.Time `json:"updated_at"`
}

// =============================================================================
// STORE INTERFACE
// =============================================================================

// Store persists per-session defaults. Get returns nil when the session has
// no remembered defaults yet; that is not an error.
type Store interface {
	Get(ctx context.Context, sessionID string) (*Defaults, error)
	Put(ctx context.Context, sessionID string, d Defaults) error
}

// =============================================================================
// MEMORY STORE - In-process implementation (tests, single-node dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	sessions map[string]Defaults
}

func NewMemory() *Memory {
	return &Memory{sessions: make(map[string]Defaults)}
}

func (m *Memory) Get(_ context.Context, sessionID string) (*Defaults, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	out := d
	out.Shares = append([]StagePercent(nil), d.Shares...)
	return &out, nil
}

func (m *Memory) Put(_ context.Context, sessionID string, d Defaults) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.Shares = append([]StagePercent(nil), d.Shares...)
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = time.Now().UTC()
	}
	m.sessions[sessionID] = d
	return nil
}
