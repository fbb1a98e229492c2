package core

import (
	"testing"
	"time"
)

func testSnapshot() Snapshot {
	return Snapshot{
		Config: GroupConfig{
			ID:                     "chit-1",
			Name:                   "Test Group",
			TotalChitValue:         500000,
			FixedMonthlyCollection: 2000,
			MonthlyPayoutBase:      25000,
			DurationMonths:         20,
			StartDate:              "2024-01-01",
			AdminPhone:             "9876543210",
		},
		Members: []Member{
			{ID: "m1", Name: "Asha", Phone: "9000000001", JoinDate: "2024-01-01"},
			{ID: "m2", Name: "Ravi", Phone: "9000000002", JoinDate: "2024-01-01"},
			{ID: "m3", Name: "Kiran", Phone: "9000000003", JoinDate: "2024-01-01"},
		},
	}
}

func TestBuildLedgerFundedRound(t *testing.T) {
	snap := testSnapshot()
	snap.Payments = []PaymentRecord{
		{MemberID: "m1", MonthIndex: 0, Amount: 2000, Status: StatusPaid, PaymentDate: "2024-01-10"},
		{MemberID: "m2", MonthIndex: 0, Amount: 2000, Status: StatusPaid, PaymentDate: "2024-01-10"},
		{MemberID: "m3", MonthIndex: 0, Amount: 2000, Status: StatusPending},
	}
	snap.Auctions = []MonthlyAuction{{MonthIndex: 0, AuctionAmount: 3000}}

	now := time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC)
	ledger := BuildLedger(snap, now)

	if len(ledger.Rounds) != 1 {
		t.Fatalf("expected 1 round, got %d", len(ledger.Rounds))
	}
	r := ledger.Rounds[0]
	if r.Collected != 4000 || r.Payout != 22000 || r.AuctionGain != 3000 || r.CashSurplus != -18000 {
		t.Fatalf("round 0 = %+v, want collected=4000 payout=22000 gain=3000 surplus=-18000", r)
	}
	if r.MonthName != "Jan-2024" {
		t.Errorf("month name = %q, want Jan-2024", r.MonthName)
	}
	if ledger.GrossCollected != 4000 || ledger.TotalPayout != 22000 || ledger.TotalGain != 3000 {
		t.Fatalf("totals = %d/%d/%d, want 4000/22000/3000",
			ledger.GrossCollected, ledger.TotalPayout, ledger.TotalGain)
	}
}

func TestBuildLedgerUnfundedRoundExcludedFromTotals(t *testing.T) {
	snap := testSnapshot()
	snap.Payments = []PaymentRecord{
		{MemberID: "m1", MonthIndex: 0, Amount: 2000, Status: StatusPaid},
		{MemberID: "m2", MonthIndex: 0, Amount: 2000, Status: StatusPaid},
	}
	snap.Auctions = []MonthlyAuction{{MonthIndex: 0, AuctionAmount: 3000}}

	// Round 1 exists (now is in February) but holds no PAID records.
	now := time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC)
	ledger := BuildLedger(snap, now)

	if len(ledger.Rounds) != 2 {
		t.Fatalf("expected 2 rounds, got %d", len(ledger.Rounds))
	}
	r1 := ledger.Rounds[1]
	if r1.Collected != 0 || r1.Payout != 25000 || r1.CashSurplus != 0 {
		t.Fatalf("round 1 = %+v, want collected=0 payout=25000 surplus=0", r1)
	}
	// Totals reflect round 0 only.
	if ledger.GrossCollected != 4000 || ledger.TotalPayout != 22000 || ledger.TotalGain != 3000 {
		t.Fatalf("totals = %d/%d/%d, want round-0-only values",
			ledger.GrossCollected, ledger.TotalPayout, ledger.TotalGain)
	}
}

func TestBuildLedgerExtraAmountsCount(t *testing.T) {
	snap := testSnapshot()
	snap.Payments = []PaymentRecord{
		{MemberID: "m1", MonthIndex: 0, Amount: 2000, ExtraAmount: 500, Status: StatusPaid},
	}

	now := time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC)
	ledger := BuildLedger(snap, now)
	if ledger.Rounds[0].Collected != 2500 {
		t.Fatalf("collected = %d, want 2500 (amount + extra)", ledger.Rounds[0].Collected)
	}
}

func TestBuildLedgerPartialCollectionNotFloored(t *testing.T) {
	snap := testSnapshot()
	snap.Payments = []PaymentRecord{
		{MemberID: "m1", MonthIndex: 0, Amount: 2000, Status: StatusPaid},
	}

	now := time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC)
	ledger := BuildLedger(snap, now)
	if got := ledger.Rounds[0].CashSurplus; got != 2000-25000 {
		t.Fatalf("partial round surplus = %d, want %d", got, 2000-25000)
	}
}

func TestBuildLedgerCumulativeInvariant(t *testing.T) {
	snap := testSnapshot()
	snap.Payments = []PaymentRecord{
		{MemberID: "m1", MonthIndex: 0, Amount: 2000, Status: StatusPaid},
		{MemberID: "m2", MonthIndex: 0, Amount: 2000, Status: StatusPaid},
		{MemberID: "m1", MonthIndex: 2, Amount: 2000, ExtraAmount: 100, Status: StatusPaid},
		{MemberID: "m3", MonthIndex: 3, Amount: 2000, Status: StatusPaid},
	}
	snap.Auctions = []MonthlyAuction{
		{MonthIndex: 0, AuctionAmount: 3000},
		{MonthIndex: 2, AuctionAmount: 4000},
	}

	// netSurplus == gross - payout for every prefix of rounds.
	for months := 0; months <= 5; months++ {
		now := time.Date(2024, time.Month(1+months), 15, 0, 0, 0, 0, time.UTC)
		ledger := BuildLedger(snap, now)

		var gross, payout int64
		for _, r := range ledger.Rounds {
			if r.Collected > 0 {
				gross += r.Collected
				payout += r.Payout
			}
		}
		if gross != ledger.GrossCollected || payout != ledger.TotalPayout {
			t.Fatalf("prefix %d: recomputed %d/%d, ledger %d/%d",
				months, gross, payout, ledger.GrossCollected, ledger.TotalPayout)
		}
	}
}
