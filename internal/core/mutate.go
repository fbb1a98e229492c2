package core

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrPermissionDenied is returned by every mutator invoked without an
	// admin role. The input snapshot is returned unchanged alongside it, so
	// callers can tell "denied" apart from "applied with no visible change".
	// This is a UI-level guard, not a security boundary.
	ErrPermissionDenied = errors.New("permission denied")

	ErrMemberNotFound = errors.New("member not found")
)

type (
	// ConfigPatch shallow-merges into GroupConfig; nil fields are left
	// untouched.
	ConfigPatch struct {
		Name                   *string
		TotalChitValue         *int64
		FixedMonthlyCollection *int64
		MonthlyPayoutBase      *int64
		DurationMonths         *int
		StartDate              *string
		AdminPhone             *string
	}

	// MemberDraft is a member without an identifier; AddMember assigns one.
	MemberDraft struct {
		Name             string
		Phone            string
		JoinDate         string
		IsSideFundMember bool
	}

	// MemberPatch shallow-merges into a Member; nil fields are left
	// untouched.
	MemberPatch struct {
		Name             *string
		Phone            *string
		JoinDate         *string
		IsSideFundMember *bool
	}
)

// authorize is the single gate in front of every mutating entry point.
func authorize(role Role) error {
	if !role.CanMutate() {
		return ErrPermissionDenied
	}
	return nil
}

// RecordPayment upserts the payment record for (memberID, round). The fixed
// amount always tracks the configured monthly collection. On a transition to
// PAID the settlement date is explicitDate when supplied, else the round's
// canonical settlement date; any non-PAID status clears it. Negative extras
// and rounds are coerced to zero rather than rejected.
func RecordPayment(s Snapshot, role Role, memberID string, round int, status PaymentStatus, method PaymentMethod, extra int64, explicitDate string) (Snapshot, error) {
	if err := authorize(role); err != nil {
		return s, err
	}
	if round < 0 {
		round = 0
	}
	if extra < 0 {
		extra = 0
	}
	if !status.Valid() {
		status = StatusPending
	}
	if method != "" && !method.Valid() {
		method = MethodOther
	}

	paymentDate := ""
	if status == StatusPaid {
		paymentDate = explicitDate
		if paymentDate == "" {
			start, err := ParseDate(s.Config.StartDate)
			if err != nil {
				start = time.Now().UTC()
			}
			paymentDate = SettlementDate(start, round).Format(DateLayout)
		}
	}

	record := PaymentRecord{
		MemberID:    memberID,
		MonthIndex:  round,
		Amount:      s.Config.FixedMonthlyCollection,
		ExtraAmount: extra,
		Status:      status,
		Method:      method,
		PaymentDate: paymentDate,
	}

	next := s.Clone()
	for i, p := range next.Payments {
		if p.MemberID == memberID && p.MonthIndex == round {
			next.Payments[i] = record
			return next, nil
		}
	}
	next.Payments = append(next.Payments, record)
	return next, nil
}

// RecordAuction upserts the auction discount for the round.
func RecordAuction(s Snapshot, role Role, round int, amount int64) (Snapshot, error) {
	if err := authorize(role); err != nil {
		return s, err
	}
	if round < 0 {
		round = 0
	}
	if amount < 0 {
		amount = 0
	}

	next := s.Clone()
	for i, a := range next.Auctions {
		if a.MonthIndex == round {
			next.Auctions[i].AuctionAmount = amount
			return next, nil
		}
	}
	next.Auctions = append(next.Auctions, MonthlyAuction{MonthIndex: round, AuctionAmount: amount})
	return next, nil
}

// UpsertConfig shallow-merges the patch into the group configuration.
func UpsertConfig(s Snapshot, role Role, patch ConfigPatch) (Snapshot, error) {
	if err := authorize(role); err != nil {
		return s, err
	}

	next := s.Clone()
	c := &next.Config
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.TotalChitValue != nil {
		c.TotalChitValue = *patch.TotalChitValue
	}
	if patch.FixedMonthlyCollection != nil {
		c.FixedMonthlyCollection = *patch.FixedMonthlyCollection
	}
	if patch.MonthlyPayoutBase != nil {
		c.MonthlyPayoutBase = *patch.MonthlyPayoutBase
	}
	if patch.DurationMonths != nil {
		c.DurationMonths = *patch.DurationMonths
	}
	if patch.StartDate != nil {
		c.StartDate = *patch.StartDate
	}
	if patch.AdminPhone != nil {
		c.AdminPhone = *patch.AdminPhone
	}
	return next, nil
}

// AddMember appends a new member with a freshly generated identifier and
// returns it alongside the new snapshot.
func AddMember(s Snapshot, role Role, draft MemberDraft) (Snapshot, Member, error) {
	if err := authorize(role); err != nil {
		return s, Member{}, err
	}

	member := Member{
		ID:               uuid.NewString(),
		Name:             draft.Name,
		Phone:            draft.Phone,
		JoinDate:         draft.JoinDate,
		IsSideFundMember: draft.IsSideFundMember,
	}
	if member.JoinDate == "" {
		member.JoinDate = time.Now().UTC().Format(DateLayout)
	}

	next := s.Clone()
	next.Members = append(next.Members, member)
	return next, member, nil
}

// UpdateMember shallow-merges the patch into the matching member.
func UpdateMember(s Snapshot, role Role, id string, patch MemberPatch) (Snapshot, error) {
	if err := authorize(role); err != nil {
		return s, err
	}

	next := s.Clone()
	for i := range next.Members {
		if next.Members[i].ID != id {
			continue
		}
		m := &next.Members[i]
		if patch.Name != nil {
			m.Name = *patch.Name
		}
		if patch.Phone != nil {
			m.Phone = *patch.Phone
		}
		if patch.JoinDate != nil {
			m.JoinDate = *patch.JoinDate
		}
		if patch.IsSideFundMember != nil {
			m.IsSideFundMember = *patch.IsSideFundMember
		}
		return next, nil
	}
	return s, ErrMemberNotFound
}

// RemoveMember deletes the member and cascades to every payment record that
// references it. Auction records are round-scoped and stay untouched.
func RemoveMember(s Snapshot, role Role, id string) (Snapshot, error) {
	if err := authorize(role); err != nil {
		return s, err
	}
	if _, ok := s.FindMember(id); !ok {
		return s, ErrMemberNotFound
	}

	next := s.Clone()
	members := next.Members[:0]
	for _, m := range next.Members {
		if m.ID != id {
			members = append(members, m)
		}
	}
	next.Members = members

	payments := next.Payments[:0]
	for _, p := range next.Payments {
		if p.MemberID != id {
			payments = append(payments, p)
		}
	}
	next.Payments = payments
	return next, nil
}

// SweepOverdue flips PENDING records whose round settlement date has passed
// to OVERDUE and reports how many records changed. It runs with system
// capability (no role gate): the scheduled worker invokes it, not a user.
func SweepOverdue(s Snapshot, now time.Time) (Snapshot, int) {
	start, err := ParseDate(s.Config.StartDate)
	if err != nil {
		return s, 0
	}

	next := s.Clone()
	changed := 0
	for i, p := range next.Payments {
		if p.Status != StatusPending {
			continue
		}
		due := SettlementDate(start, p.MonthIndex)
		if now.After(due.AddDate(0, 0, 1)) {
			next.Payments[i].Status = StatusOverdue
			changed++
		}
	}
	if changed == 0 {
		return s, 0
	}
	return next, changed
}
