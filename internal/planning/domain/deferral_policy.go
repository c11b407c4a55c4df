package domain

import (
	"slices"
	"strings"
)

// DeferralPolicy decides which tasks may be pushed to a later day and in
// which order they are offered.
type DeferralPolicy struct {
	// CategoryRank lists categories deferred first, earliest first.
	// Categories not listed rank after every listed one.
	CategoryRank []string
	// NonDeferrable categories are never offered for deferral.
	NonDeferrable []string
	// ExcludeUrgent keeps urgent tasks out of the candidate set.
	ExcludeUrgent bool
}

// DefaultDeferralPolicy returns the built-in ordering.
func DefaultDeferralPolicy() DeferralPolicy {
	return DeferralPolicy{
		CategoryRank:  []string{"admin", "errand", "personal"},
		NonDeferrable: []string{"meeting", "appointment"},
		ExcludeUrgent: true,
	}
}

// IsDeferrable reports whether t may be offered as a deferral candidate.
func (p DeferralPolicy) IsDeferrable(t Task) bool {
	if t.IsCompleted || t.IsProject || t.IsChild() {
		return false
	}
	if p.ExcludeUrgent && t.Priority == PriorityUrgent {
		return false
	}
	return !slices.Contains(p.NonDeferrable, normalizeCategory(t.Category))
}

// CategoryRankOf returns the deferral rank of a category; lower defers first.
func (p DeferralPolicy) CategoryRankOf(category string) int {
	if i := slices.Index(p.CategoryRank, normalizeCategory(category)); i >= 0 {
		return i
	}
	return len(p.CategoryRank)
}

// Normalize lowercases and trims the category lists.
func (p DeferralPolicy) Normalize() DeferralPolicy {
	out := DeferralPolicy{ExcludeUrgent: p.ExcludeUrgent}
	for _, c := range p.CategoryRank {
		out.CategoryRank = append(out.CategoryRank, normalizeCategory(c))
	}
	for _, c := range p.NonDeferrable {
		out.NonDeferrable = append(out.NonDeferrable, normalizeCategory(c))
	}
	return out
}

func normalizeCategory(c string) string {
	return strings.ToLower(strings.TrimSpace(c))
}
