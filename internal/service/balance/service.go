package balance

import (
	"sync"

	"github.com/leavedesk/leave-backend-go/internal/domain/leave"
	"github.com/leavedesk/leave-backend-go/internal/domain/user"
	"github.com/shopspring/decimal"
)

// Starting allotments seeded on first access, in days.
var seedAllotments = map[leave.LeaveType]int64{
	leave.TypeAnnual:        10,
	leave.TypePTO:           20,
	leave.TypeSick:          10,
	leave.TypeCompassionate: 5,
	leave.TypeMaternity:     90,
	leave.TypePaternity:     10,
	leave.TypeUnpaid:        0,
	leave.TypeOther:         5,
}

var carryoverRate = decimal.RequireFromString("0.1")

// table holds one user's balances. Its mutex serializes every
// read-modify-write on that user without blocking other users.
type table struct {
	mu        sync.Mutex
	balances  map[leave.LeaveType]decimal.Decimal
	carryover decimal.Decimal
}

type Service struct {
	mu     sync.Mutex
	tables map[string]*table
}

var _ leave.BalanceService = (*Service)(nil)

func New() *Service {
	return &Service{tables: make(map[string]*table)}
}

// tableFor returns the user's table, seeding it on first access. Only the
// registry lookup holds the service-wide lock; entry mutations take the
// returned table's own lock.
func (s *Service) tableFor(userID string) *table {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[userID]
	if !ok {
		t = &table{
			balances:  make(map[leave.LeaveType]decimal.Decimal, len(seedAllotments)),
			carryover: decimal.Zero,
		}
		for leaveType, days := range seedAllotments {
			t.balances[leaveType] = decimal.NewFromInt(days)
		}
		s.tables[userID] = t
	}
	return t
}

func (s *Service) InitBalance(userID string) {
	s.tableFor(userID)
}

func (s *Service) AdjustBalance(req leave.AdjustBalanceRequest) error {
	if !req.ActorRole.CanAdjustBalance() {
		return user.ErrPermissionDenied
	}

	leaveType, err := leave.ParseLeaveType(req.Type)
	if err != nil {
		return err
	}

	t := s.tableFor(req.UserID)
	t.mu.Lock()
	defer t.mu.Unlock()

	// Admin override is unconstrained: no floor, no ceiling.
	t.balances[leaveType] = req.NewBalance
	return nil
}

func (s *Service) Deduct(userID string, leaveType leave.LeaveType, days decimal.Decimal) error {
	t := s.tableFor(userID)
	t.mu.Lock()
	defer t.mu.Unlock()

	current := t.balances[leaveType]
	if current.LessThan(days) {
		return leave.ErrInsufficientBalance
	}
	t.balances[leaveType] = current.Sub(days)
	return nil
}

func (s *Service) Refund(userID string, leaveType leave.LeaveType, days decimal.Decimal) {
	t := s.tableFor(userID)
	t.mu.Lock()
	defer t.mu.Unlock()

	t.balances[leaveType] = t.balances[leaveType].Add(days)
}

// ProcessCarryover overwrites any previously banked carryover rather than
// accumulating it.
func (s *Service) ProcessCarryover(userID string) decimal.Decimal {
	t := s.tableFor(userID)
	t.mu.Lock()
	defer t.mu.Unlock()

	t.carryover = t.balances[leave.TypeAnnual].Mul(carryoverRate)
	t.balances[leave.TypeAnnual] = decimal.Zero
	return t.carryover
}

func (s *Service) ViewBalances(userID string) leave.BalancesResponse {
	t := s.tableFor(userID)
	t.mu.Lock()
	defer t.mu.Unlock()

	copied := make(map[leave.LeaveType]decimal.Decimal, len(t.balances))
	for leaveType, balance := range t.balances {
		copied[leaveType] = balance
	}
	return leave.BalancesResponse{
		Balances:  copied,
		Carryover: t.carryover,
	}
}
