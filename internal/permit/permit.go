// Package permit verifies off-chain-signed allowance authorizations
// (EIP-2612) and installs them into the ledger.
//
// The owner signs a typed, domain-bound digest over (owner, spender,
// value, nonce, deadline); anyone may then submit the signature to set
// the allowance on the owner's behalf. The per-owner nonce makes every
// signature single-use, and the domain separator pins it to one ledger
// instance on one chain.
package permit

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/Mohsinsiddi/w3ledger/internal/ledger"
)

// Errors.
var (
	ErrExpired          = errors.New("permit deadline has passed")
	ErrInvalidSignature = errors.New("invalid permit signature")
)

// EIP-712 type descriptors. These strings are part of the wire format:
// changing field order, names, or types breaks signature portability.
var (
	domainTypehash = crypto.Keccak256Hash(
		[]byte("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"))
	permitTypehash = crypto.Keccak256Hash(
		[]byte("Permit(address owner,address spender,uint256 value,uint256 nonce,uint256 deadline)"))
)

// Signature holds the three canonical secp256k1 signature components.
// V uses the Ethereum convention (27 or 28).
type Signature struct {
	V uint8
	R [32]byte
	S [32]byte
}

// Recoverer recovers a signer identifier from a digest and signature.
// The default implementation is secp256k1 ECDSA; embedding hosts may
// substitute another curve behind this interface.
type Recoverer interface {
	Recover(digest common.Hash, sig Signature) (common.Address, error)
}

// ECDSARecoverer recovers secp256k1 signers via go-ethereum's ecrecover.
type ECDSARecoverer struct{}

// Recover returns the address whose key produced sig over digest.
func (ECDSARecoverer) Recover(digest common.Hash, sig Signature) (common.Address, error) {
	if sig.V != 27 && sig.V != 28 {
		return common.Address{}, fmt.Errorf("invalid recovery id %d", sig.V)
	}
	raw := make([]byte, 65)
	copy(raw[0:32], sig.R[:])
	copy(raw[32:64], sig.S[:])
	raw[64] = sig.V - 27
	pubKey, err := crypto.SigToPub(digest.Bytes(), raw)
	if err != nil {
		return common.Address{}, fmt.Errorf("recovering signer: %w", err)
	}
	return crypto.PubkeyToAddress(*pubKey), nil
}

// Domain identifies one ledger instance on one chain. Signatures are
// only valid for the exact domain they were produced against.
type Domain struct {
	Name              string
	Version           string
	ChainID           uint64
	VerifyingContract common.Address
}

// Separator returns the EIP-712 domain separator: the hash of the
// domain typehash and the four domain fields, each as a 32-byte word
// (strings enter as their Keccak-256 hash).
func (d Domain) Separator() common.Hash {
	chainID := uint256.NewInt(d.ChainID).Bytes32()
	return crypto.Keccak256Hash(
		domainTypehash.Bytes(),
		crypto.Keccak256([]byte(d.Name)),
		crypto.Keccak256([]byte(d.Version)),
		chainID[:],
		common.LeftPadBytes(d.VerifyingContract.Bytes(), 32),
	)
}

// Authorizer validates permits against one ledger instance.
type Authorizer struct {
	ledger    *ledger.Ledger
	domain    Domain
	separator common.Hash
	recoverer Recoverer
	now       func() uint64
}

// Option configures an Authorizer.
type Option func(*Authorizer)

// WithRecoverer substitutes the signature recovery backend.
func WithRecoverer(r Recoverer) Option {
	return func(a *Authorizer) { a.recoverer = r }
}

// WithClock substitutes the time source used for deadline checks.
// The clock returns a Unix timestamp in seconds.
func WithClock(now func() uint64) Option {
	return func(a *Authorizer) { a.now = now }
}

// New creates an authorizer bound to l and d. The domain separator is
// computed once and never changes.
func New(l *ledger.Ledger, d Domain, opts ...Option) *Authorizer {
	a := &Authorizer{
		ledger:    l,
		domain:    d,
		separator: d.Separator(),
		recoverer: ECDSARecoverer{},
		now:       func() uint64 { return uint64(time.Now().Unix()) },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// DomainSeparator returns the separator this authorizer verifies
// against.
func (a *Authorizer) DomainSeparator() common.Hash {
	return a.separator
}

// StructHash returns the hash of the typed permit fields, prior to
// domain binding: typehash then owner, spender, value, nonce, deadline
// as 32-byte words.
func (a *Authorizer) StructHash(owner, spender common.Address, value, nonce, deadline *uint256.Int) common.Hash {
	v := value.Bytes32()
	n := nonce.Bytes32()
	dl := deadline.Bytes32()
	return crypto.Keccak256Hash(
		permitTypehash.Bytes(),
		common.LeftPadBytes(owner.Bytes(), 32),
		common.LeftPadBytes(spender.Bytes(), 32),
		v[:],
		n[:],
		dl[:],
	)
}

// Digest returns the exact 32 bytes the owner's key signs: the struct
// hash bound to this instance's domain under the "\x19\x01" prefix.
func (a *Authorizer) Digest(owner, spender common.Address, value, nonce, deadline *uint256.Int) common.Hash {
	structHash := a.StructHash(owner, spender, value, nonce, deadline)
	return crypto.Keccak256Hash(
		[]byte{0x19, 0x01},
		a.separator.Bytes(),
		structHash.Bytes(),
	)
}

// Permit verifies an owner-signed authorization and, on success,
// advances the owner's nonce and overwrites the (owner, spender)
// allowance with value — atomically, so a failure at any step leaves
// the nonce and allowance untouched.
//
// A deadline of 2^256-1 never expires. A value of zero is valid and
// clears the allowance.
func (a *Authorizer) Permit(owner, spender common.Address, value, deadline *uint256.Int, sig Signature) error {
	if owner == (common.Address{}) {
		return ledger.ErrInvalidOwner
	}
	if spender == (common.Address{}) {
		return ledger.ErrInvalidSpender
	}
	if uint256.NewInt(a.now()).Gt(deadline) {
		return fmt.Errorf("deadline %s: %w", deadline, ErrExpired)
	}

	nonce := a.ledger.Nonce(owner)
	digest := a.Digest(owner, spender, value, nonce, deadline)

	recovered, err := a.recoverer.Recover(digest, sig)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if recovered != owner {
		return fmt.Errorf("%w: signed by %s, expected %s", ErrInvalidSignature, recovered.Hex(), owner.Hex())
	}

	if err := a.ledger.ApplyPermit(owner, spender, value, nonce); err != nil {
		// The nonce moved between verification and commit, so the
		// signature no longer covers the current nonce.
		if errors.Is(err, ledger.ErrStaleNonce) {
			return fmt.Errorf("%w: nonce already consumed", ErrInvalidSignature)
		}
		return err
	}
	return nil
}

// Sign produces the three signature components for a permit request
// using the owner's private key and the owner's current nonce. Signing
// and verification share one digest construction, so a signature
// produced here is valid for exactly one Permit call.
func (a *Authorizer) Sign(key *ecdsa.PrivateKey, spender common.Address, value, deadline *uint256.Int) (Signature, error) {
	owner := crypto.PubkeyToAddress(key.PublicKey)
	nonce := a.ledger.Nonce(owner)
	digest := a.Digest(owner, spender, value, nonce, deadline)

	raw, err := crypto.Sign(digest.Bytes(), key)
	if err != nil {
		return Signature{}, fmt.Errorf("signing permit digest: %w", err)
	}

	var sig Signature
	copy(sig.R[:], raw[0:32])
	copy(sig.S[:], raw[32:64])
	sig.V = raw[64] + 27
	return sig, nil
}
