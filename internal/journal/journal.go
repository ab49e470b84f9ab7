// Package journal records the append-only audit trail of ledger mutations.
//
// Every applied balance or allowance change produces exactly one record;
// external systems replay the trail to reconstruct ledger history.
package journal

import (
	"errors"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
)

// Record kinds.
const (
	KindTransfer       = "transfer"
	KindApproval       = "approval"
	KindPermitAccepted = "permit-accepted"
)

// ErrClosed is returned when appending to a closed journal.
var ErrClosed = errors.New("journal closed")

// Record is one immutable entry in the audit trail.
//
// Transfer records use From/To (the zero address is the mint/burn
// sentinel); Approval and PermitAccepted records use Owner/Spender.
type Record struct {
	ID    string
	Seq   uint64 // assigned by the sink, starts at 1
	Time  time.Time
	Kind  string
	From  common.Address
	To    common.Address
	Value *uint256.Int
}

// NewTransfer builds an unsequenced transfer record.
func NewTransfer(from, to common.Address, value *uint256.Int) Record {
	return Record{
		ID:    uuid.NewString(),
		Time:  time.Now().UTC(),
		Kind:  KindTransfer,
		From:  from,
		To:    to,
		Value: value.Clone(),
	}
}

// NewApproval builds an unsequenced approval record.
func NewApproval(owner, spender common.Address, value *uint256.Int) Record {
	return Record{
		ID:    uuid.NewString(),
		Time:  time.Now().UTC(),
		Kind:  KindApproval,
		From:  owner,
		To:    spender,
		Value: value.Clone(),
	}
}

// NewPermitAccepted builds an unsequenced permit-accepted record.
func NewPermitAccepted(owner, spender common.Address, value *uint256.Int) Record {
	r := NewApproval(owner, spender, value)
	r.Kind = KindPermitAccepted
	return r
}

// Sink receives records as they are produced. Implementations must
// assign Seq, preserve append order, and persist a multi-record call
// atomically (all records or none).
type Sink interface {
	Append(recs ...Record) error
}

// Memory is an in-process journal, used when embedding the ledger
// without persistence and in tests.
type Memory struct {
	mu      sync.Mutex
	records []Record
}

// NewMemory creates an empty in-memory journal.
func NewMemory() *Memory {
	return &Memory{}
}

// Append adds records and assigns consecutive sequence numbers.
func (m *Memory) Append(recs ...Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range recs {
		r.Seq = uint64(len(m.records)) + 1
		m.records = append(m.records, r)
	}
	return nil
}

// Records returns a copy of all records in append order.
func (m *Memory) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out
}

// Len returns the number of records.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
