// Package token composes the ledger, gates, and permit authorizer into
// the ERC-20-shaped surface an embedding host or the CLI talks to.
package token

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/Mohsinsiddi/w3ledger/internal/gate"
	"github.com/Mohsinsiddi/w3ledger/internal/ledger"
	"github.com/Mohsinsiddi/w3ledger/internal/permit"
)

// Metadata describes the token.
type Metadata struct {
	Name     string
	Symbol   string
	Decimals uint8
	Version  string
}

// Token is one token instance: a ledger plus the capability modules
// consulted around it. Gates are optional; a nil gate never blocks.
type Token struct {
	meta       Metadata
	ledger     *ledger.Ledger
	authorizer *permit.Authorizer
	ownership  gate.Ownership
}

// Option configures a Token.
type Option func(*Token)

// WithOwnership guards Mint and Burn behind o.
func WithOwnership(o gate.Ownership) Option {
	return func(t *Token) { t.ownership = o }
}

// New creates a token over an existing ledger and authorizer.
func New(meta Metadata, l *ledger.Ledger, a *permit.Authorizer, opts ...Option) *Token {
	t := &Token{meta: meta, ledger: l, authorizer: a}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Meta returns the token metadata.
func (t *Token) Meta() Metadata { return t.meta }

// Ledger exposes the underlying ledger for read access.
func (t *Token) Ledger() *ledger.Ledger { return t.ledger }

// Authorizer exposes the permit authorizer.
func (t *Token) Authorizer() *permit.Authorizer { return t.authorizer }

// BalanceOf returns from's balance.
func (t *Token) BalanceOf(addr common.Address) *uint256.Int {
	return t.ledger.BalanceOf(addr)
}

// TotalSupply returns the total supply.
func (t *Token) TotalSupply() *uint256.Int {
	return t.ledger.TotalSupply()
}

// Allowance returns the remaining (owner, spender) allowance.
func (t *Token) Allowance(owner, spender common.Address) *uint256.Int {
	return t.ledger.Allowance(owner, spender)
}

// Nonce returns owner's current permit nonce.
func (t *Token) Nonce(owner common.Address) *uint256.Int {
	return t.ledger.Nonce(owner)
}

// Transfer moves value from from to to.
func (t *Token) Transfer(from, to common.Address, value *uint256.Int) error {
	return t.ledger.Move(from, to, value)
}

// Approve overwrites the allowance spender may spend on owner's behalf.
func (t *Token) Approve(owner, spender common.Address, value *uint256.Int) error {
	return t.ledger.SetAllowance(owner, spender, value)
}

// TransferFrom lets spender move value from owner to to, consuming
// allowance. The allowance spend and the balance move commit together.
func (t *Token) TransferFrom(spender, owner, to common.Address, value *uint256.Int) error {
	return t.ledger.MoveFrom(owner, spender, to, value)
}

// Mint credits value to to. Privileged: the caller must pass the
// ownership gate.
func (t *Token) Mint(caller, to common.Address, value *uint256.Int) error {
	if err := t.authorize(caller); err != nil {
		return err
	}
	return t.ledger.Credit(to, value)
}

// Burn debits value from from. The owner may burn anywhere; anyone may
// burn their own balance.
func (t *Token) Burn(caller, from common.Address, value *uint256.Int) error {
	if caller != from {
		if err := t.authorize(caller); err != nil {
			return err
		}
	}
	return t.ledger.Debit(from, value)
}

// Permit applies an owner-signed allowance authorization.
func (t *Token) Permit(owner, spender common.Address, value, deadline *uint256.Int, sig permit.Signature) error {
	return t.authorizer.Permit(owner, spender, value, deadline, sig)
}

func (t *Token) authorize(caller common.Address) error {
	if t.ownership == nil {
		return nil
	}
	if !t.ownership.IsAuthorized(caller) {
		return fmt.Errorf("caller %s: %w", caller.Hex(), gate.ErrUnauthorized)
	}
	return nil
}
