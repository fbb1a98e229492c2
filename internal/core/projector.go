package core

import (
	"math"
	"time"
)

type (
	// RoundBreakdown is the live detail panel for the current round.
	// Collected here sums only the fixed amounts; extras count toward the
	// ledger totals but not toward the round's live collection figure.
	RoundBreakdown struct {
		AuctionGain int64 `json:"auctionGain"`
		Payout      int64 `json:"payout"`
		Collected   int64 `json:"collected"`
		Surplus     int64 `json:"surplus"`
	}

	// Overview carries the headline KPIs shown on the dashboard. NetSurplus
	// may be negative; consumers are expected to render the sign, not this
	// package.
	Overview struct {
		CurrentRound   int            `json:"currentRound"`
		CurrentMonth   string         `json:"currentMonth"`
		DurationMonths int            `json:"durationMonths"`
		GrossCollected int64          `json:"totalGrossCollected"`
		TotalPayout    int64          `json:"totalPayout"`
		TotalGain      int64          `json:"totalGain"`
		NetSurplus     int64          `json:"netSurplus"`
		YieldPercent   int            `json:"yieldPercent"`
		Current        RoundBreakdown `json:"currentRoundBreakdown"`
		Outstanding    []Member       `json:"outstandingMembers"`
	}
)

// Project derives the dashboard aggregates from the snapshot at the given
// time. It recomputes from scratch on every call; the data volumes (tens of
// members, tens of rounds) make that cheap.
func Project(s Snapshot, now time.Time) Overview {
	start := s.startDate(now)
	current := CurrentRound(start, now)
	ledger := BuildLedger(s, now)

	net := ledger.GrossCollected - ledger.TotalPayout
	yield := 0
	if ledger.GrossCollected > 0 {
		yield = roundHalfUp(float64(net) / float64(ledger.GrossCollected) * 100)
	}

	discount := s.AuctionAmount(current)
	payout := s.Config.MonthlyPayoutBase - discount
	var collectedNow int64
	for _, p := range s.Payments {
		if p.MonthIndex == current && p.Status == StatusPaid {
			collectedNow += p.Amount
		}
	}
	surplusNow := int64(0)
	if collectedNow > 0 {
		surplusNow = collectedNow - payout
	}

	return Overview{
		CurrentRound:   current,
		CurrentMonth:   MonthLabel(start, current),
		DurationMonths: s.Config.DurationMonths,
		GrossCollected: ledger.GrossCollected,
		TotalPayout:    ledger.TotalPayout,
		TotalGain:      ledger.TotalGain,
		NetSurplus:     net,
		YieldPercent:   yield,
		Current: RoundBreakdown{
			AuctionGain: discount,
			Payout:      payout,
			Collected:   collectedNow,
			Surplus:     surplusNow,
		},
		Outstanding: OutstandingMembers(s, current),
	}
}

// OutstandingMembers returns the members without a PAID record for the round,
// preserving member order. A record with a non-PAID status counts as
// outstanding just like a missing record.
func OutstandingMembers(s Snapshot, round int) []Member {
	out := make([]Member, 0, len(s.Members))
	for _, m := range s.Members {
		p, ok := s.FindPayment(m.ID, round)
		if !ok || p.Status != StatusPaid {
			out = append(out, m)
		}
	}
	return out
}

// roundHalfUp mirrors the rounding the stored dashboards were computed with
// (floor(x+0.5), i.e. halves round toward positive infinity).
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
