// Package gate holds the collaborators a ledger consults before
// privileged or state-changing operations.
package gate

import (
	"errors"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
)

// Errors.
var (
	ErrUnauthorized = errors.New("caller not authorized")
	ErrPaused       = errors.New("ledger is paused")
)

// Ownership answers whether a caller may perform privileged operations
// such as minting.
type Ownership interface {
	IsAuthorized(caller common.Address) bool
}

// Pause answers whether state-changing operations are currently allowed.
type Pause interface {
	IsActive() bool
}

// StaticOwner authorizes exactly one address.
type StaticOwner struct {
	owner common.Address
}

// NewStaticOwner creates an ownership gate for a single owner address.
func NewStaticOwner(owner common.Address) *StaticOwner {
	return &StaticOwner{owner: owner}
}

// IsAuthorized reports whether caller is the owner.
func (s *StaticOwner) IsAuthorized(caller common.Address) bool {
	return caller == s.owner
}

// Switch is a pause gate backed by an atomic flag. The zero value is
// active (not paused).
type Switch struct {
	paused atomic.Bool
}

// NewSwitch creates an active (unpaused) switch.
func NewSwitch() *Switch {
	return &Switch{}
}

// IsActive reports whether operations may proceed.
func (s *Switch) IsActive() bool {
	return !s.paused.Load()
}

// Pause blocks subsequent state-changing operations.
func (s *Switch) Pause() { s.paused.Store(true) }

// Resume re-enables state-changing operations.
func (s *Switch) Resume() { s.paused.Store(false) }
