// Package ledger implements the authoritative token ledger: balances,
// allowances, per-owner permit nonces, and total supply.
//
// All mutators are atomic — an operation is either fully applied, with
// its audit records emitted, or rejected with state untouched. A single
// lock serializes every mutation, so no caller can observe a
// partially-applied operation.
package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/Mohsinsiddi/w3ledger/internal/gate"
	"github.com/Mohsinsiddi/w3ledger/internal/journal"
)

// Errors.
var (
	ErrInvalidRecipient      = errors.New("invalid recipient: zero address")
	ErrInvalidOwner          = errors.New("invalid owner: zero address")
	ErrInvalidSpender        = errors.New("invalid spender: zero address")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrOverflow              = errors.New("value overflows 256 bits")
	ErrStaleNonce            = errors.New("permit nonce no longer current")
)

type allowanceKey struct {
	owner   common.Address
	spender common.Address
}

// Ledger owns balances, allowances, nonces, and total supply. The zero
// address is the null identifier: it can never hold a balance and acts
// as the mint/burn sentinel in transfer records.
type Ledger struct {
	mu         sync.RWMutex
	balances   map[common.Address]*uint256.Int
	allowances map[allowanceKey]*uint256.Int
	nonces     map[common.Address]*uint256.Int
	supply     *uint256.Int

	sink  journal.Sink
	pause gate.Pause
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithSink routes audit records to s. Without a sink, records are
// discarded.
func WithSink(s journal.Sink) Option {
	return func(l *Ledger) { l.sink = s }
}

// WithPause makes every mutator consult p before touching state.
func WithPause(p gate.Pause) Option {
	return func(l *Ledger) { l.pause = p }
}

// New creates an empty ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		balances:   make(map[common.Address]*uint256.Int),
		allowances: make(map[allowanceKey]*uint256.Int),
		nonces:     make(map[common.Address]*uint256.Int),
		supply:     uint256.NewInt(0),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// BalanceOf returns the balance of addr, zero for unknown accounts.
func (l *Ledger) BalanceOf(addr common.Address) *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if b, ok := l.balances[addr]; ok {
		return b.Clone()
	}
	return uint256.NewInt(0)
}

// TotalSupply returns the sum of all balances.
func (l *Ledger) TotalSupply() *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.supply.Clone()
}

// Allowance returns what spender may still spend on owner's behalf.
func (l *Ledger) Allowance(owner, spender common.Address) *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if a, ok := l.allowances[allowanceKey{owner, spender}]; ok {
		return a.Clone()
	}
	return uint256.NewInt(0)
}

// Nonce returns the current permit nonce for owner.
func (l *Ledger) Nonce(owner common.Address) *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n, ok := l.nonces[owner]; ok {
		return n.Clone()
	}
	return uint256.NewInt(0)
}

// Credit mints value to to, growing the total supply.
func (l *Ledger) Credit(to common.Address, value *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.checkActive(); err != nil {
		return err
	}
	if to == (common.Address{}) {
		return ErrInvalidRecipient
	}

	newSupply := new(uint256.Int)
	if _, overflow := newSupply.AddOverflow(l.supply, value); overflow {
		return ErrOverflow
	}
	newBalance := new(uint256.Int)
	if _, overflow := newBalance.AddOverflow(l.balance(to), value); overflow {
		return ErrOverflow
	}

	if err := l.emit(journal.NewTransfer(common.Address{}, to, value)); err != nil {
		return err
	}
	l.supply = newSupply
	l.balances[to] = newBalance
	return nil
}

// Debit burns value from from, shrinking the total supply.
func (l *Ledger) Debit(from common.Address, value *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.checkActive(); err != nil {
		return err
	}
	if from == (common.Address{}) {
		return ErrInvalidOwner
	}
	bal := l.balance(from)
	if value.Gt(bal) {
		return fmt.Errorf("debit %s from %s: %w", value, from.Hex(), ErrInsufficientBalance)
	}

	if err := l.emit(journal.NewTransfer(from, common.Address{}, value)); err != nil {
		return err
	}
	l.balances[from] = new(uint256.Int).Sub(bal, value)
	l.supply = new(uint256.Int).Sub(l.supply, value)
	return nil
}

// Move transfers value from from to to. Exactly one transfer record is
// emitted; supply is unchanged.
func (l *Ledger) Move(from, to common.Address, value *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.checkActive(); err != nil {
		return err
	}
	return l.move(from, to, value)
}

// move requires l.mu held.
func (l *Ledger) move(from, to common.Address, value *uint256.Int) error {
	if from == (common.Address{}) {
		return ErrInvalidOwner
	}
	if to == (common.Address{}) {
		return ErrInvalidRecipient
	}
	fromBal := l.balance(from)
	if value.Gt(fromBal) {
		return fmt.Errorf("move %s from %s: %w", value, from.Hex(), ErrInsufficientBalance)
	}

	if err := l.emit(journal.NewTransfer(from, to, value)); err != nil {
		return err
	}
	l.balances[from] = new(uint256.Int).Sub(fromBal, value)
	// Sum of balances never exceeds supply, so this cannot overflow.
	l.balances[to] = new(uint256.Int).Add(l.balance(to), value)
	return nil
}

// SetAllowance overwrites the allowance for (owner, spender) with value.
func (l *Ledger) SetAllowance(owner, spender common.Address, value *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.checkActive(); err != nil {
		return err
	}
	if owner == (common.Address{}) {
		return ErrInvalidOwner
	}
	if spender == (common.Address{}) {
		return ErrInvalidSpender
	}

	if err := l.emit(journal.NewApproval(owner, spender, value)); err != nil {
		return err
	}
	l.setAllowance(owner, spender, value)
	return nil
}

// SpendAllowance reduces the allowance for (owner, spender) by value.
// Balances are untouched.
func (l *Ledger) SpendAllowance(owner, spender common.Address, value *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.checkActive(); err != nil {
		return err
	}
	remaining, err := l.spentAllowance(owner, spender, value)
	if err != nil {
		return err
	}

	if err := l.emit(journal.NewApproval(owner, spender, remaining)); err != nil {
		return err
	}
	l.setAllowance(owner, spender, remaining)
	return nil
}

// MoveFrom spends spender's allowance from owner and moves value from
// owner to to, atomically. Used for delegated transfers.
func (l *Ledger) MoveFrom(owner, spender, to common.Address, value *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.checkActive(); err != nil {
		return err
	}
	if owner == (common.Address{}) {
		return ErrInvalidOwner
	}
	if to == (common.Address{}) {
		return ErrInvalidRecipient
	}
	remaining, err := l.spentAllowance(owner, spender, value)
	if err != nil {
		return err
	}
	if value.Gt(l.balance(owner)) {
		return fmt.Errorf("move %s from %s: %w", value, owner.Hex(), ErrInsufficientBalance)
	}

	if err := l.emit(
		journal.NewApproval(owner, spender, remaining),
		journal.NewTransfer(owner, to, value),
	); err != nil {
		return err
	}
	l.setAllowance(owner, spender, remaining)
	fromBal := l.balance(owner)
	l.balances[owner] = new(uint256.Int).Sub(fromBal, value)
	l.balances[to] = new(uint256.Int).Add(l.balance(to), value)
	return nil
}

// ApplyPermit commits a verified permit: it checks that nonce is still
// owner's current nonce, advances it by one, overwrites the allowance,
// and emits the approval and permit records together. The caller
// (the permit authorizer) has already verified the signature over
// exactly this nonce, so a stale nonce means the permit was consumed.
func (l *Ledger) ApplyPermit(owner, spender common.Address, value, nonce *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.checkActive(); err != nil {
		return err
	}
	if owner == (common.Address{}) {
		return ErrInvalidOwner
	}
	if spender == (common.Address{}) {
		return ErrInvalidSpender
	}
	current := l.nonce(owner)
	if !nonce.Eq(current) {
		return ErrStaleNonce
	}

	if err := l.emit(
		journal.NewApproval(owner, spender, value),
		journal.NewPermitAccepted(owner, spender, value),
	); err != nil {
		return err
	}
	l.nonces[owner] = new(uint256.Int).AddUint64(current, 1)
	l.setAllowance(owner, spender, value)
	return nil
}

// Restore rebuilds ledger state by replaying audit records, without
// re-emitting them. Approval records carry the resulting allowance, so
// replay applies them with overwrite semantics; permit records advance
// the owner's nonce.
func (l *Ledger) Restore(recs []journal.Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range recs {
		switch r.Kind {
		case journal.KindTransfer:
			if err := l.restoreTransfer(r); err != nil {
				return err
			}
		case journal.KindApproval:
			l.setAllowance(r.From, r.To, r.Value)
		case journal.KindPermitAccepted:
			l.nonces[r.From] = new(uint256.Int).AddUint64(l.nonce(r.From), 1)
		default:
			return fmt.Errorf("restore: unknown record kind %q (seq %d)", r.Kind, r.Seq)
		}
	}
	return nil
}

func (l *Ledger) restoreTransfer(r journal.Record) error {
	zero := common.Address{}
	switch {
	case r.From == zero:
		newSupply := new(uint256.Int)
		if _, overflow := newSupply.AddOverflow(l.supply, r.Value); overflow {
			return fmt.Errorf("restore seq %d: %w", r.Seq, ErrOverflow)
		}
		l.supply = newSupply
		l.balances[r.To] = new(uint256.Int).Add(l.balance(r.To), r.Value)
	case r.To == zero:
		bal := l.balance(r.From)
		if r.Value.Gt(bal) {
			return fmt.Errorf("restore seq %d: %w", r.Seq, ErrInsufficientBalance)
		}
		l.balances[r.From] = new(uint256.Int).Sub(bal, r.Value)
		l.supply = new(uint256.Int).Sub(l.supply, r.Value)
	default:
		fromBal := l.balance(r.From)
		if r.Value.Gt(fromBal) {
			return fmt.Errorf("restore seq %d: %w", r.Seq, ErrInsufficientBalance)
		}
		l.balances[r.From] = new(uint256.Int).Sub(fromBal, r.Value)
		l.balances[r.To] = new(uint256.Int).Add(l.balance(r.To), r.Value)
	}
	return nil
}

// balance requires l.mu held (read or write).
func (l *Ledger) balance(addr common.Address) *uint256.Int {
	if b, ok := l.balances[addr]; ok {
		return b
	}
	return uint256.NewInt(0)
}

// nonce requires l.mu held.
func (l *Ledger) nonce(owner common.Address) *uint256.Int {
	if n, ok := l.nonces[owner]; ok {
		return n
	}
	return uint256.NewInt(0)
}

// spentAllowance validates a spend and returns the remaining allowance.
// Requires l.mu held.
func (l *Ledger) spentAllowance(owner, spender common.Address, value *uint256.Int) (*uint256.Int, error) {
	key := allowanceKey{owner, spender}
	current, ok := l.allowances[key]
	if !ok {
		current = uint256.NewInt(0)
	}
	if value.Gt(current) {
		return nil, fmt.Errorf("spend %s of allowance %s: %w", value, current, ErrInsufficientAllowance)
	}
	return new(uint256.Int).Sub(current, value), nil
}

// setAllowance requires l.mu held. A zero allowance is removed, which
// is observably identical to an explicit zero entry.
func (l *Ledger) setAllowance(owner, spender common.Address, value *uint256.Int) {
	key := allowanceKey{owner, spender}
	if value.IsZero() {
		delete(l.allowances, key)
		return
	}
	l.allowances[key] = value.Clone()
}

func (l *Ledger) checkActive() error {
	if l.pause != nil && !l.pause.IsActive() {
		return gate.ErrPaused
	}
	return nil
}

// emit appends records to the sink, if any. Mutators call emit before
// touching state so a failed append rejects the whole operation.
func (l *Ledger) emit(recs ...journal.Record) error {
	if l.sink == nil {
		return nil
	}
	if err := l.sink.Append(recs...); err != nil {
		return fmt.Errorf("journal append: %w", err)
	}
	return nil
}
