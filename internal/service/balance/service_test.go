package balance

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/leavedesk/leave-backend-go/internal/domain/leave"
	"github.com/leavedesk/leave-backend-go/internal/domain/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func days(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

func TestInitBalance_SeedsAllotments(t *testing.T) {
	svc := New()
	svc.InitBalance("u1")

	view := svc.ViewBalances("u1")
	require.Len(t, view.Balances, len(leave.AllTypes()))
	assert.True(t, view.Balances[leave.TypeAnnual].Equal(days(10)))
	assert.True(t, view.Balances[leave.TypePTO].Equal(days(20)))
	assert.True(t, view.Balances[leave.TypeSick].Equal(days(10)))
	assert.True(t, view.Balances[leave.TypeCompassionate].Equal(days(5)))
	assert.True(t, view.Balances[leave.TypeMaternity].Equal(days(90)))
	assert.True(t, view.Balances[leave.TypePaternity].Equal(days(10)))
	assert.True(t, view.Balances[leave.TypeUnpaid].Equal(days(0)))
	assert.True(t, view.Balances[leave.TypeOther].Equal(days(5)))
	assert.True(t, view.Carryover.IsZero())
}

func TestInitBalance_Idempotent(t *testing.T) {
	svc := New()
	svc.InitBalance("u1")

	require.NoError(t, svc.Deduct("u1", leave.TypeSick, days(4)))

	// A second init must not reset the table.
	svc.InitBalance("u1")
	view := svc.ViewBalances("u1")
	assert.True(t, view.Balances[leave.TypeSick].Equal(days(6)))
}

func TestDeduct_ThenRefund_RestoresBalance(t *testing.T) {
	svc := New()

	require.NoError(t, svc.Deduct("u1", leave.TypePTO, days(7)))
	svc.Refund("u1", leave.TypePTO, days(7))

	view := svc.ViewBalances("u1")
	assert.True(t, view.Balances[leave.TypePTO].Equal(days(20)))
}

func TestDeduct_InsufficientBalance(t *testing.T) {
	svc := New()

	err := svc.Deduct("u1", leave.TypeSick, days(11))
	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)

	// Balance untouched after a failed deduction.
	view := svc.ViewBalances("u1")
	assert.True(t, view.Balances[leave.TypeSick].Equal(days(10)))
}

func TestDeduct_ExactBalanceSucceeds(t *testing.T) {
	svc := New()

	require.NoError(t, svc.Deduct("u1", leave.TypeOther, days(5)))
	view := svc.ViewBalances("u1")
	assert.True(t, view.Balances[leave.TypeOther].IsZero())
}

func TestAdjustBalance_AdminOnly(t *testing.T) {
	svc := New()

	for _, role := range []user.Role{user.RoleStaff, user.RoleManager} {
		err := svc.AdjustBalance(leave.AdjustBalanceRequest{
			UserID:     "u1",
			Type:       string(leave.TypeAnnual),
			NewBalance: days(99),
			ActorRole:  role,
		})
		assert.ErrorIs(t, err, user.ErrPermissionDenied)
	}

	view := svc.ViewBalances("u1")
	assert.True(t, view.Balances[leave.TypeAnnual].Equal(days(10)))

	err := svc.AdjustBalance(leave.AdjustBalanceRequest{
		UserID:     "u1",
		Type:       string(leave.TypeAnnual),
		NewBalance: days(99),
		ActorRole:  user.RoleAdmin,
	})
	require.NoError(t, err)

	view = svc.ViewBalances("u1")
	assert.True(t, view.Balances[leave.TypeAnnual].Equal(days(99)))
}

func TestAdjustBalance_UnknownType(t *testing.T) {
	svc := New()

	err := svc.AdjustBalance(leave.AdjustBalanceRequest{
		UserID:     "u1",
		Type:       "SABBATICAL",
		NewBalance: days(1),
		ActorRole:  user.RoleAdmin,
	})
	assert.ErrorIs(t, err, leave.ErrUnknownLeaveType)
}

func TestAdjustBalance_NegativeOverrideAllowed(t *testing.T) {
	svc := New()

	err := svc.AdjustBalance(leave.AdjustBalanceRequest{
		UserID:     "u1",
		Type:       string(leave.TypePTO),
		NewBalance: days(-3),
		ActorRole:  user.RoleAdmin,
	})
	require.NoError(t, err)

	view := svc.ViewBalances("u1")
	assert.True(t, view.Balances[leave.TypePTO].Equal(days(-3)))
}

func TestProcessCarryover(t *testing.T) {
	svc := New()
	svc.InitBalance("u1")

	carried := svc.ProcessCarryover("u1")
	assert.True(t, carried.Equal(decimal.RequireFromString("1")))

	view := svc.ViewBalances("u1")
	assert.True(t, view.Balances[leave.TypeAnnual].IsZero())
	assert.True(t, view.Carryover.Equal(decimal.RequireFromString("1")))
}

func TestProcessCarryover_OverwritesPriorCarryover(t *testing.T) {
	svc := New()
	svc.InitBalance("u1")

	first := svc.ProcessCarryover("u1")
	assert.True(t, first.Equal(decimal.RequireFromString("1")))

	// ANNUAL is now zero, so a second run banks zero and the first banked
	// amount is gone. Observed overwrite semantics.
	second := svc.ProcessCarryover("u1")
	assert.True(t, second.IsZero())
	assert.True(t, svc.ViewBalances("u1").Carryover.IsZero())
}

func TestViewBalances_ReturnsDefensiveCopy(t *testing.T) {
	svc := New()

	view := svc.ViewBalances("u1")
	view.Balances[leave.TypeSick] = days(12345)

	assert.True(t, svc.ViewBalances("u1").Balances[leave.TypeSick].Equal(days(10)))
}

func TestDeduct_ConcurrentCallersNeverOverdraw(t *testing.T) {
	svc := New()
	svc.InitBalance("u1")

	// PTO starts at 20; 50 goroutines each try to take 1 day.
	const callers = 50
	var succeeded int64
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			if err := svc.Deduct("u1", leave.TypePTO, days(1)); err == nil {
				atomic.AddInt64(&succeeded, 1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 20, succeeded)
	assert.True(t, svc.ViewBalances("u1").Balances[leave.TypePTO].IsZero())
}
