package ledger

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/w3ledger/internal/gate"
	"github.com/Mohsinsiddi/w3ledger/internal/journal"
)

var (
	addrA = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	addrB = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	addrC = common.HexToAddress("0x00000000000000000000000000000000000000cc")
)

func u(n uint64) *uint256.Int { return uint256.NewInt(n) }

// supplyEquals asserts the conservation invariant over the touched
// accounts.
func supplyEquals(t *testing.T, l *Ledger, accounts ...common.Address) {
	t.Helper()
	sum := uint256.NewInt(0)
	for _, a := range accounts {
		sum = new(uint256.Int).Add(sum, l.BalanceOf(a))
	}
	assert.Equal(t, l.TotalSupply(), sum, "total supply must equal sum of balances")
}

// ---------------------------------------------------------------------------
// Credit / Debit
// ---------------------------------------------------------------------------

func TestCreditIncreasesBalanceAndSupply(t *testing.T) {
	l := New()
	require.NoError(t, l.Credit(addrA, u(1000)))

	assert.Equal(t, u(1000), l.BalanceOf(addrA))
	assert.Equal(t, u(1000), l.TotalSupply())
	supplyEquals(t, l, addrA)
}

func TestCreditZeroAddressFails(t *testing.T) {
	l := New()
	err := l.Credit(common.Address{}, u(500))
	require.ErrorIs(t, err, ErrInvalidRecipient)
	assert.True(t, l.TotalSupply().IsZero(), "failed credit must not change supply")
}

func TestCreditSupplyOverflow(t *testing.T) {
	l := New()
	max := new(uint256.Int)
	max.Not(max)
	require.NoError(t, l.Credit(addrA, max))

	err := l.Credit(addrB, u(1))
	require.ErrorIs(t, err, ErrOverflow)
	assert.True(t, l.BalanceOf(addrB).IsZero())
	assert.Equal(t, max, l.TotalSupply())
}

func TestDebitDecreasesBalanceAndSupply(t *testing.T) {
	l := New()
	require.NoError(t, l.Credit(addrA, u(1000)))
	require.NoError(t, l.Debit(addrA, u(400)))

	assert.Equal(t, u(600), l.BalanceOf(addrA))
	assert.Equal(t, u(600), l.TotalSupply())
	supplyEquals(t, l, addrA)
}

func TestDebitInsufficientBalance(t *testing.T) {
	l := New()
	require.NoError(t, l.Credit(addrA, u(100)))

	err := l.Debit(addrA, u(101))
	require.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, u(100), l.BalanceOf(addrA), "failed debit must leave balance unchanged")
	assert.Equal(t, u(100), l.TotalSupply())
}

func TestDebitUnknownAccount(t *testing.T) {
	l := New()
	err := l.Debit(addrA, u(1))
	require.ErrorIs(t, err, ErrInsufficientBalance)
}

// ---------------------------------------------------------------------------
// Move
// ---------------------------------------------------------------------------

func TestMove(t *testing.T) {
	l := New()
	require.NoError(t, l.Credit(addrA, u(1000)))
	require.NoError(t, l.Move(addrA, addrB, u(300)))

	assert.Equal(t, u(700), l.BalanceOf(addrA))
	assert.Equal(t, u(300), l.BalanceOf(addrB))
	assert.Equal(t, u(1000), l.TotalSupply())
	supplyEquals(t, l, addrA, addrB)
}

func TestMoveInsufficientBalanceLeavesStateUnchanged(t *testing.T) {
	l := New()
	require.NoError(t, l.Credit(addrA, u(100)))

	err := l.Move(addrA, addrB, u(101))
	require.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, u(100), l.BalanceOf(addrA))
	assert.True(t, l.BalanceOf(addrB).IsZero())
	assert.Equal(t, u(100), l.TotalSupply())
}

func TestMoveToZeroAddressFails(t *testing.T) {
	l := New()
	require.NoError(t, l.Credit(addrA, u(100)))

	err := l.Move(addrA, common.Address{}, u(10))
	require.ErrorIs(t, err, ErrInvalidRecipient)
	assert.Equal(t, u(100), l.BalanceOf(addrA))
}

func TestMoveSelf(t *testing.T) {
	l := New()
	require.NoError(t, l.Credit(addrA, u(100)))
	require.NoError(t, l.Move(addrA, addrA, u(40)))
	assert.Equal(t, u(100), l.BalanceOf(addrA))
	assert.Equal(t, u(100), l.TotalSupply())
}

func TestConservationOverOperationSequence(t *testing.T) {
	l := New()
	require.NoError(t, l.Credit(addrA, u(1000)))
	require.NoError(t, l.Credit(addrB, u(500)))
	supplyEquals(t, l, addrA, addrB, addrC)

	require.NoError(t, l.Move(addrA, addrC, u(250)))
	supplyEquals(t, l, addrA, addrB, addrC)

	require.NoError(t, l.Debit(addrB, u(100)))
	supplyEquals(t, l, addrA, addrB, addrC)

	require.NoError(t, l.Move(addrC, addrB, u(250)))
	supplyEquals(t, l, addrA, addrB, addrC)

	assert.Equal(t, u(1400), l.TotalSupply())
}

// ---------------------------------------------------------------------------
// Allowances
// ---------------------------------------------------------------------------

func TestSetAllowanceOverwrites(t *testing.T) {
	l := New()
	require.NoError(t, l.SetAllowance(addrA, addrB, u(100)))
	require.NoError(t, l.SetAllowance(addrA, addrB, u(40)))

	assert.Equal(t, u(40), l.Allowance(addrA, addrB), "second approval overwrites, not adds")
}

func TestSetAllowanceZeroSpenderFails(t *testing.T) {
	l := New()
	err := l.SetAllowance(addrA, common.Address{}, u(100))
	require.ErrorIs(t, err, ErrInvalidSpender)
}

func TestSetAllowanceZeroValueClears(t *testing.T) {
	l := New()
	require.NoError(t, l.SetAllowance(addrA, addrB, u(100)))
	require.NoError(t, l.SetAllowance(addrA, addrB, u(0)))
	assert.True(t, l.Allowance(addrA, addrB).IsZero())
}

func TestSpendAllowance(t *testing.T) {
	l := New()
	require.NoError(t, l.Credit(addrA, u(1000)))
	require.NoError(t, l.SetAllowance(addrA, addrB, u(400)))

	require.NoError(t, l.SpendAllowance(addrA, addrB, u(150)))
	assert.Equal(t, u(250), l.Allowance(addrA, addrB))
	assert.Equal(t, u(1000), l.BalanceOf(addrA), "spending allowance must not touch balances")
}

func TestSpendAllowanceInsufficient(t *testing.T) {
	l := New()
	require.NoError(t, l.SetAllowance(addrA, addrB, u(100)))

	err := l.SpendAllowance(addrA, addrB, u(101))
	require.ErrorIs(t, err, ErrInsufficientAllowance)
	assert.Equal(t, u(100), l.Allowance(addrA, addrB))
}

func TestSpendAllowanceAbsentEntry(t *testing.T) {
	l := New()
	err := l.SpendAllowance(addrA, addrB, u(1))
	require.ErrorIs(t, err, ErrInsufficientAllowance)
}

// ---------------------------------------------------------------------------
// MoveFrom
// ---------------------------------------------------------------------------

func TestMoveFrom(t *testing.T) {
	l := New()
	require.NoError(t, l.Credit(addrA, u(1000)))
	require.NoError(t, l.SetAllowance(addrA, addrB, u(400)))

	require.NoError(t, l.MoveFrom(addrA, addrB, addrB, u(300)))
	assert.Equal(t, u(700), l.BalanceOf(addrA))
	assert.Equal(t, u(300), l.BalanceOf(addrB))
	assert.Equal(t, u(100), l.Allowance(addrA, addrB))
	supplyEquals(t, l, addrA, addrB)
}

func TestMoveFromInsufficientBalanceKeepsAllowance(t *testing.T) {
	l := New()
	require.NoError(t, l.Credit(addrA, u(100)))
	require.NoError(t, l.SetAllowance(addrA, addrB, u(500)))

	err := l.MoveFrom(addrA, addrB, addrC, u(200))
	require.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, u(500), l.Allowance(addrA, addrB), "allowance spend must roll back with the move")
	assert.Equal(t, u(100), l.BalanceOf(addrA))
}

func TestMoveFromInsufficientAllowance(t *testing.T) {
	l := New()
	require.NoError(t, l.Credit(addrA, u(1000)))
	require.NoError(t, l.SetAllowance(addrA, addrB, u(100)))

	err := l.MoveFrom(addrA, addrB, addrC, u(200))
	require.ErrorIs(t, err, ErrInsufficientAllowance)
	assert.Equal(t, u(1000), l.BalanceOf(addrA))
}

// ---------------------------------------------------------------------------
// ApplyPermit
// ---------------------------------------------------------------------------

func TestApplyPermit(t *testing.T) {
	l := New()
	require.NoError(t, l.ApplyPermit(addrA, addrB, u(400), u(0)))

	assert.Equal(t, u(400), l.Allowance(addrA, addrB))
	assert.Equal(t, u(1), l.Nonce(addrA))
}

func TestApplyPermitStaleNonce(t *testing.T) {
	l := New()
	require.NoError(t, l.ApplyPermit(addrA, addrB, u(400), u(0)))

	err := l.ApplyPermit(addrA, addrB, u(400), u(0))
	require.ErrorIs(t, err, ErrStaleNonce)
	assert.Equal(t, u(1), l.Nonce(addrA), "failed permit must not advance the nonce")
	assert.Equal(t, u(400), l.Allowance(addrA, addrB))
}

func TestApplyPermitNullIdentifiers(t *testing.T) {
	l := New()
	require.ErrorIs(t, l.ApplyPermit(common.Address{}, addrB, u(1), u(0)), ErrInvalidOwner)
	require.ErrorIs(t, l.ApplyPermit(addrA, common.Address{}, u(1), u(0)), ErrInvalidSpender)
}

// ---------------------------------------------------------------------------
// Journal records
// ---------------------------------------------------------------------------

func TestRecordsEmittedInOrder(t *testing.T) {
	j := journal.NewMemory()
	l := New(WithSink(j))

	require.NoError(t, l.Credit(addrA, u(1000)))
	require.NoError(t, l.Move(addrA, addrB, u(300)))
	require.NoError(t, l.SetAllowance(addrA, addrB, u(400)))

	recs := j.Records()
	require.Len(t, recs, 3)

	assert.Equal(t, journal.KindTransfer, recs[0].Kind)
	assert.Equal(t, common.Address{}, recs[0].From, "mint records use the zero-address sentinel")
	assert.Equal(t, addrA, recs[0].To)

	assert.Equal(t, journal.KindTransfer, recs[1].Kind)
	assert.Equal(t, addrA, recs[1].From)
	assert.Equal(t, addrB, recs[1].To)

	assert.Equal(t, journal.KindApproval, recs[2].Kind)
	assert.Equal(t, u(400), recs[2].Value)

	for i, r := range recs {
		assert.Equal(t, uint64(i)+1, r.Seq)
	}
}

func TestMoveFromEmitsOneTransfer(t *testing.T) {
	j := journal.NewMemory()
	l := New(WithSink(j))

	require.NoError(t, l.Credit(addrA, u(1000)))
	require.NoError(t, l.SetAllowance(addrA, addrB, u(400)))
	require.NoError(t, l.MoveFrom(addrA, addrB, addrB, u(300)))

	recs := j.Records()
	require.Len(t, recs, 4)
	// Allowance update first, then exactly one transfer.
	assert.Equal(t, journal.KindApproval, recs[2].Kind)
	assert.Equal(t, u(100), recs[2].Value, "approval record carries the remaining allowance")
	assert.Equal(t, journal.KindTransfer, recs[3].Kind)
}

func TestApplyPermitEmitsApprovalThenPermit(t *testing.T) {
	j := journal.NewMemory()
	l := New(WithSink(j))

	require.NoError(t, l.ApplyPermit(addrA, addrB, u(400), u(0)))

	recs := j.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, journal.KindApproval, recs[0].Kind)
	assert.Equal(t, journal.KindPermitAccepted, recs[1].Kind)
}

func TestFailedOperationEmitsNothing(t *testing.T) {
	j := journal.NewMemory()
	l := New(WithSink(j))

	require.Error(t, l.Credit(common.Address{}, u(1)))
	require.Error(t, l.Debit(addrA, u(1)))
	assert.Zero(t, j.Len())
}

// ---------------------------------------------------------------------------
// Restore
// ---------------------------------------------------------------------------

func TestRestoreRebuildsState(t *testing.T) {
	j := journal.NewMemory()
	l := New(WithSink(j))

	require.NoError(t, l.Credit(addrA, u(1000)))
	require.NoError(t, l.Move(addrA, addrB, u(300)))
	require.NoError(t, l.SetAllowance(addrA, addrC, u(50)))
	require.NoError(t, l.ApplyPermit(addrA, addrB, u(400), u(0)))
	require.NoError(t, l.MoveFrom(addrA, addrB, addrB, u(100)))
	require.NoError(t, l.Debit(addrB, u(150)))

	restored := New()
	require.NoError(t, restored.Restore(j.Records()))

	assert.Equal(t, l.TotalSupply(), restored.TotalSupply())
	assert.Equal(t, l.BalanceOf(addrA), restored.BalanceOf(addrA))
	assert.Equal(t, l.BalanceOf(addrB), restored.BalanceOf(addrB))
	assert.Equal(t, l.Allowance(addrA, addrB), restored.Allowance(addrA, addrB))
	assert.Equal(t, l.Allowance(addrA, addrC), restored.Allowance(addrA, addrC))
	assert.Equal(t, l.Nonce(addrA), restored.Nonce(addrA))
}

func TestRestoreDoesNotReEmit(t *testing.T) {
	j := journal.NewMemory()
	l := New(WithSink(j))
	require.NoError(t, l.Credit(addrA, u(10)))

	j2 := journal.NewMemory()
	restored := New(WithSink(j2))
	require.NoError(t, restored.Restore(j.Records()))
	assert.Zero(t, j2.Len(), "replay must not produce new records")
}

func TestRestoreUnknownKind(t *testing.T) {
	l := New()
	err := l.Restore([]journal.Record{{Kind: "bogus", Value: u(1)}})
	require.Error(t, err)
}

// ---------------------------------------------------------------------------
// Pause gate
// ---------------------------------------------------------------------------

func TestPausedLedgerRejectsMutations(t *testing.T) {
	sw := gate.NewSwitch()
	l := New(WithPause(sw))
	require.NoError(t, l.Credit(addrA, u(100)))

	sw.Pause()
	require.ErrorIs(t, l.Credit(addrA, u(1)), gate.ErrPaused)
	require.ErrorIs(t, l.Move(addrA, addrB, u(1)), gate.ErrPaused)
	require.ErrorIs(t, l.SetAllowance(addrA, addrB, u(1)), gate.ErrPaused)
	require.ErrorIs(t, l.ApplyPermit(addrA, addrB, u(1), u(0)), gate.ErrPaused)

	// Reads still work.
	assert.Equal(t, u(100), l.BalanceOf(addrA))

	sw.Resume()
	require.NoError(t, l.Credit(addrA, u(1)))
}
