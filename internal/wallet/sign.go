package wallet

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/Mohsinsiddi/w3ledger/internal/permit"
)

// LoadKey retrieves and parses the private key of a signing wallet.
func LoadKey(w *Wallet, ks KeystoreBackend) (*ecdsa.PrivateKey, error) {
	if w.Type != TypeSigning {
		return nil, fmt.Errorf("wallet %q is watch-only and cannot sign", w.Name)
	}

	hexKey, err := ks.Retrieve(w.KeyRef)
	if err != nil {
		return nil, fmt.Errorf("retrieving key: %w", err)
	}

	privKey, err := crypto.HexToECDSA(stripHexPrefix(hexKey))
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	return privKey, nil
}

// SignPermit signs an allowance authorization with the wallet's key.
// The digest covers the wallet's current nonce, so the signature is
// single-use and must be submitted before any other permit from this
// wallet is accepted.
func SignPermit(w *Wallet, ks KeystoreBackend, a *permit.Authorizer, spender common.Address, value, deadline *uint256.Int) (permit.Signature, error) {
	privKey, err := LoadKey(w, ks)
	if err != nil {
		return permit.Signature{}, err
	}

	ownerAddr := crypto.PubkeyToAddress(privKey.PublicKey)
	if common.HexToAddress(w.Address) != ownerAddr {
		return permit.Signature{}, fmt.Errorf("stored key does not match wallet address %s", w.Address)
	}

	sig, err := a.Sign(privKey, spender, value, deadline)
	if err != nil {
		return permit.Signature{}, fmt.Errorf("signing permit: %w", err)
	}
	return sig, nil
}
