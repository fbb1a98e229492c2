package core

import "time"

type (
	// RoundDetail is one row of the group's round-by-round history.
	RoundDetail struct {
		MonthIndex  int    `json:"monthIndex"`
		MonthName   string `json:"monthName"`
		Collected   int64  `json:"collected"`
		Payout      int64  `json:"payout"`
		AuctionGain int64  `json:"auctionGain"`
		CashSurplus int64  `json:"cashSurplus"`
	}

	// Ledger holds the per-round history for rounds 0..current plus the
	// running totals over active rounds. A round is active when it has at
	// least one PAID record; inactive rounds appear in Rounds with zero
	// collection but contribute nothing to the totals, since a round with
	// no recorded payments has not actually happened yet.
	Ledger struct {
		Rounds         []RoundDetail `json:"rounds"`
		GrossCollected int64         `json:"totalGrossCollected"`
		TotalPayout    int64         `json:"totalPayout"`
		TotalGain      int64         `json:"totalGain"`
	}
)

// BuildLedger derives the round history and cumulative totals from the raw
// snapshot at the given time.
func BuildLedger(s Snapshot, now time.Time) Ledger {
	start := s.startDate(now)
	current := CurrentRound(start, now)

	// One pass over payments: PAID collection per round.
	collected := make(map[int]int64)
	for _, p := range s.Payments {
		if p.Status != StatusPaid {
			continue
		}
		collected[p.MonthIndex] += p.Amount + p.ExtraAmount
	}

	discounts := make(map[int]int64, len(s.Auctions))
	for _, a := range s.Auctions {
		discounts[a.MonthIndex] = a.AuctionAmount
	}

	ledger := Ledger{Rounds: make([]RoundDetail, 0, current+1)}
	for m := 0; m <= current; m++ {
		inRound := collected[m]
		discount := discounts[m]
		payout := s.Config.MonthlyPayoutBase - discount

		// Rounds with zero collection report zero surplus rather than a
		// phantom loss of the full payout. Partial collection is not
		// floored: an underfunded round really is in deficit.
		surplus := int64(0)
		if inRound > 0 {
			surplus = inRound - payout

			ledger.GrossCollected += inRound
			ledger.TotalPayout += payout
			ledger.TotalGain += discount
		}

		ledger.Rounds = append(ledger.Rounds, RoundDetail{
			MonthIndex:  m,
			MonthName:   MonthLabel(start, m),
			Collected:   inRound,
			Payout:      payout,
			AuctionGain: discount,
			CashSurplus: surplus,
		})
	}

	return ledger
}
