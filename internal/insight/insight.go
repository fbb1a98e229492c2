// Package insight produces a short financial read on the group's state: a
// summary, risk callouts, and advice for the administrator.
package insight

import (
	"context"
	"fmt"

	"chittrack/internal/core"
)

type Insight struct {
	Summary string   `json:"summary"`
	Risks   []string `json:"risks"`
	Advice  []string `json:"advice"`
}

// Generator turns a group overview into an Insight.
type Generator interface {
	Generate(ctx context.Context, snap core.Snapshot, overview core.Overview) (Insight, error)
}

// Fallback is the static insight served when no generator is configured or
// the generator fails. It keeps the endpoint useful offline.
func Fallback(overview core.Overview) Insight {
	summary := fmt.Sprintf(
		"Round %d of %d. Collections so far total %d with payouts of %d, leaving a net position of %d.",
		overview.CurrentRound+1, overview.DurationMonths,
		overview.GrossCollected, overview.TotalPayout, overview.NetSurplus)

	risks := []string{}
	if len(overview.Outstanding) > 0 {
		risks = append(risks, fmt.Sprintf("%d member(s) have not paid for the current round.", len(overview.Outstanding)))
	}
	if overview.NetSurplus < 0 {
		risks = append(risks, "Payouts have exceeded collections; the fund is running a deficit.")
	}
	if len(risks) == 0 {
		risks = append(risks, "No immediate risks detected.")
	}

	return Insight{
		Summary: summary,
		Risks:   risks,
		Advice: []string{
			"Follow up with members before the settlement date to keep collections on schedule.",
			"Review auction discounts against the payout base before confirming each round.",
		},
	}
}

// GenerateOrFallback asks the generator and falls back to the static insight
// on any failure. A nil generator goes straight to the fallback.
func GenerateOrFallback(ctx context.Context, g Generator, snap core.Snapshot, overview core.Overview) Insight {
	if g == nil {
		return Fallback(overview)
	}
	out, err := g.Generate(ctx, snap, overview)
	if err != nil {
		return Fallback(overview)
	}
	return out
}
