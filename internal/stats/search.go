package stats

import (
	"strings"

	"github.com/brickgo/crm-bfa-go/internal/domain"
)

// Matches reports whether the prospect matches a free-text query.
// The query is a case-insensitive substring test against the full name,
// company and need fields. An empty query matches everything.
func Matches(p *domain.Prospect, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, field := range []string{p.FullName(), p.Company, p.Need} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Filter returns the prospects matching the query, preserving order.
func Filter(prospects []domain.Prospect, query string) []domain.Prospect {
	if strings.TrimSpace(query) == "" {
		return prospects
	}
	out := make([]domain.Prospect, 0, len(prospects))
	for i := range prospects {
		if Matches(&prospects[i], query) {
			out = append(out, prospects[i])
		}
	}
	return out
}
