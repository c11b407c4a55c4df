package services

import (
	"cmp"
	"slices"
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/domain"
)

// SuggestDeferrals picks tasks on date to move to the next work day until at
// least requiredMinutes are freed.
//
// Candidates are ranked by category order, then least urgent priority, then
// highest quadrant, then longest duration. Non-deferrable tasks are never
// offered. When the candidates run out first, the plan carries a shortfall
// and lists every candidate.
func (p *Planner) SuggestDeferrals(existing []domain.Task, date time.Time, requiredMinutes int) (DeferralPlan, error) {
	if date.IsZero() {
		return DeferralPlan{}, domain.ErrMissingDate
	}
	if requiredMinutes < 0 {
		return DeferralPlan{}, domain.ErrInvalidDuration
	}

	plan := DeferralPlan{
		RequiredMinutes: requiredMinutes,
		TargetDate:      p.config.NextWorkday(date),
	}
	if requiredMinutes == 0 {
		return plan, nil
	}

	candidates := p.deferralCandidates(existing, date)
	for _, t := range candidates {
		if plan.FreedMinutes >= requiredMinutes {
			break
		}
		plan.Tasks = append(plan.Tasks, t)
		plan.FreedMinutes += t.EstimatedMinutes
	}
	plan.Shortfall = max(0, requiredMinutes-plan.FreedMinutes)
	return plan, nil
}

func (p *Planner) deferralCandidates(existing []domain.Task, date time.Time) []domain.Task {
	var candidates []domain.Task
	for _, t := range existing {
		if t.OnDate(date) && t.EstimatedMinutes > 0 && p.policy.IsDeferrable(t) {
			candidates = append(candidates, t)
		}
	}

	slices.SortStableFunc(candidates, func(a, b domain.Task) int {
		return cmp.Or(
			cmp.Compare(p.policy.CategoryRankOf(a.Category), p.policy.CategoryRankOf(b.Category)),
			cmp.Compare(b.Priority.Rank(), a.Priority.Rank()),
			cmp.Compare(b.Quadrant, a.Quadrant),
			cmp.Compare(b.EstimatedMinutes, a.EstimatedMinutes),
			cmp.Compare(a.ID.String(), b.ID.String()),
		)
	})
	return candidates
}
