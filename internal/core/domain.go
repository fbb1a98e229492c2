package core

import (
	"errors"
	"strings"
	"time"
)

// Status and method strings are the wire contract shared with previously
// stored group documents. Do not rename them.
const (
	StatusPaid    PaymentStatus = "PAID"
	StatusPending PaymentStatus = "PENDING"
	StatusOverdue PaymentStatus = "OVERDUE"
)

const (
	MethodGPay    PaymentMethod = "GPay"
	MethodPhonePe PaymentMethod = "PhonePe"
	MethodPaytm   PaymentMethod = "Paytm"
	MethodCash    PaymentMethod = "CASH"
	MethodOther   PaymentMethod = "Other"
)

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

type (
	PaymentStatus string

	PaymentMethod string

	// Role is the capability level of the caller invoking a mutation.
	// Only RoleAdmin may mutate the snapshot.
	Role string

	// GroupConfig holds the group's fixed parameters. StartDate is a
	// "2006-01-02" string; its day-of-month is ignored by round math.
	GroupConfig struct {
		ID                     string `json:"id"`
		Name                   string `json:"name"`
		TotalChitValue         int64  `json:"totalChitValue"`
		FixedMonthlyCollection int64  `json:"fixedMonthlyCollection"`
		MonthlyPayoutBase      int64  `json:"monthlyPayoutBase"`
		DurationMonths         int    `json:"durationMonths"`
		StartDate              string `json:"startDate"`
		AdminPhone             string `json:"adminPhone"`
	}

	Member struct {
		ID               string `json:"id"`
		Name             string `json:"name"`
		Phone            string `json:"phone"`
		JoinDate         string `json:"joinDate"`
		IsSideFundMember bool   `json:"isSideFundMember"`
	}

	// PaymentRecord is keyed by (MemberID, MonthIndex); at most one record
	// exists per pair. PaymentDate is set only while Status is PAID.
	PaymentRecord struct {
		MemberID    string        `json:"memberId"`
		MonthIndex  int           `json:"monthIndex"`
		Amount      int64         `json:"amount"`
		ExtraAmount int64         `json:"extraAmount"`
		Status      PaymentStatus `json:"status"`
		Method      PaymentMethod `json:"method,omitempty"`
		PaymentDate string        `json:"paymentDate,omitempty"`
	}

	// MonthlyAuction records the discount the round's winner forgoes from
	// the base payout. One record per round at most.
	MonthlyAuction struct {
		MonthIndex    int   `json:"monthIndex"`
		AuctionAmount int64 `json:"auctionAmount"`
	}

	// Snapshot is the aggregate root: the unit of persistence and of cloud
	// synchronization. Snapshots are immutable; mutators return a new one.
	Snapshot struct {
		Config   GroupConfig      `json:"config"`
		Members  []Member         `json:"members"`
		Payments []PaymentRecord  `json:"payments"`
		Auctions []MonthlyAuction `json:"auctions"`
	}
)

var (
	ErrInvalidDuration = errors.New("duration must be positive")
	ErrNegativeAmount  = errors.New("amount cannot be negative")
	ErrEmptyName       = errors.New("empty name")
	ErrInvalidDate     = errors.New("invalid date")
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case StatusPaid, StatusPending, StatusOverdue:
		return true
	}
	return false
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodGPay, MethodPhonePe, MethodPaytm, MethodCash, MethodOther:
		return true
	}
	return false
}

// CanMutate reports whether the role may invoke mutating operations.
func (r Role) CanMutate() bool {
	return r == RoleAdmin
}

func (c GroupConfig) Validate() error {
	if c.DurationMonths <= 0 {
		return ErrInvalidDuration
	}
	if c.FixedMonthlyCollection < 0 || c.MonthlyPayoutBase < 0 || c.TotalChitValue < 0 {
		return ErrNegativeAmount
	}
	if _, err := ParseDate(c.StartDate); err != nil {
		return ErrInvalidDate
	}
	return nil
}

func (m Member) Validate() error {
	if len(strings.TrimSpace(m.Name)) == 0 {
		return ErrEmptyName
	}
	return nil
}

// DefaultSnapshot is the state of a freshly created group, used when neither
// the local cache nor the cloud holds a document yet.
func DefaultSnapshot(now time.Time) Snapshot {
	return Snapshot{
		Config: GroupConfig{
			ID:                     "chit-1",
			Name:                   "Shared Group",
			TotalChitValue:         500000,
			FixedMonthlyCollection: 2000,
			MonthlyPayoutBase:      25000,
			DurationMonths:         20,
			StartDate:              now.Format(DateLayout),
			AdminPhone:             "9876543210",
		},
		Members:  []Member{},
		Payments: []PaymentRecord{},
		Auctions: []MonthlyAuction{},
	}
}

// Clone returns a deep copy so callers can hand snapshots across goroutines
// without sharing backing arrays.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Members = append([]Member(nil), s.Members...)
	out.Payments = append([]PaymentRecord(nil), s.Payments...)
	out.Auctions = append([]MonthlyAuction(nil), s.Auctions...)
	return out
}

// Normalized replaces nil collections with empty slices so the snapshot
// serializes with "[]" rather than "null", matching documents written by
// earlier clients.
func (s Snapshot) Normalized() Snapshot {
	if s.Members == nil {
		s.Members = []Member{}
	}
	if s.Payments == nil {
		s.Payments = []PaymentRecord{}
	}
	if s.Auctions == nil {
		s.Auctions = []MonthlyAuction{}
	}
	return s
}

// FindMember returns the member with the given id, if present.
func (s Snapshot) FindMember(id string) (Member, bool) {
	for _, m := range s.Members {
		if m.ID == id {
			return m, true
		}
	}
	return Member{}, false
}

// FindPayment returns the payment record for the (member, round) pair.
func (s Snapshot) FindPayment(memberID string, round int) (PaymentRecord, bool) {
	for _, p := range s.Payments {
		if p.MemberID == memberID && p.MonthIndex == round {
			return p, true
		}
	}
	return PaymentRecord{}, false
}

// AuctionAmount returns the auction discount recorded for the round, or 0.
func (s Snapshot) AuctionAmount(round int) int64 {
	for _, a := range s.Auctions {
		if a.MonthIndex == round {
			return a.AuctionAmount
		}
	}
	return 0
}
