package wallet

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/w3ledger/internal/ledger"
	"github.com/Mohsinsiddi/w3ledger/internal/permit"
)

func testAuthorizer(t *testing.T) (*ledger.Ledger, *permit.Authorizer) {
	t.Helper()
	l := ledger.New()
	d := permit.Domain{
		Name:              "Wrapped Demo Token",
		Version:           "1",
		ChainID:           1,
		VerifyingContract: common.HexToAddress("0x00000000000000000000000000000000000000ff"),
	}
	a := permit.New(l, d, permit.WithClock(func() uint64 { return 1_000_000 }))
	return l, a
}

func TestSignPermitRoundTrip(t *testing.T) {
	m := testManager()
	require.NoError(t, m.AddWithKey("alice", testPrivKeyHex))

	w, err := m.Get("alice")
	require.NoError(t, err)

	l, a := testAuthorizer(t)
	spender := common.HexToAddress("0x00000000000000000000000000000000000000bb")
	value := uint256.NewInt(400)
	deadline := uint256.NewInt(2_000_000)

	sig, err := SignPermit(w, m.Keystore(), a, spender, value, deadline)
	require.NoError(t, err)

	owner := common.HexToAddress(w.Address)
	require.NoError(t, a.Permit(owner, spender, value, deadline, sig))
	assert.Equal(t, uint256.NewInt(400), l.Allowance(owner, spender))
	assert.Equal(t, uint256.NewInt(1), l.Nonce(owner))
}

func TestSignPermitWatchOnlyRejected(t *testing.T) {
	m := testManager()
	require.NoError(t, m.Add("watcher", &Wallet{
		Name:    "watcher",
		Address: "0x00000000000000000000000000000000000000aa",
		Type:    TypeWatchOnly,
	}))

	w, err := m.Get("watcher")
	require.NoError(t, err)

	_, a := testAuthorizer(t)
	_, err = SignPermit(w, m.Keystore(), a,
		common.HexToAddress("0x00000000000000000000000000000000000000bb"),
		uint256.NewInt(1), uint256.NewInt(2_000_000))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch-only")
}

func TestSignPermitMismatchedKey(t *testing.T) {
	ks := NewInMemoryKeystore()
	m := NewManager(WithInMemoryStore(), WithKeystore(ks))
	require.NoError(t, m.AddWithKey("alice", testPrivKeyHex))

	w, err := m.Get("alice")
	require.NoError(t, err)

	// Overwrite the stored key with a different one; the wallet address
	// no longer matches.
	other, err := crypto.GenerateKey()
	require.NoError(t, err)
	_, err = ks.Store("alice", hexKey(other))
	require.NoError(t, err)

	_, a := testAuthorizer(t)
	_, err = SignPermit(w, ks, a,
		common.HexToAddress("0x00000000000000000000000000000000000000bb"),
		uint256.NewInt(1), uint256.NewInt(2_000_000))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestLoadKey(t *testing.T) {
	m := testManager()
	require.NoError(t, m.AddWithKey("alice", testPrivKeyHex))

	w, err := m.Get("alice")
	require.NoError(t, err)

	key, err := LoadKey(w, m.Keystore())
	require.NoError(t, err)
	assert.Equal(t, w.Address, crypto.PubkeyToAddress(key.PublicKey).Hex())
}
