// Package stats computes the dashboard and activity aggregations from a
// fetched prospect list. Everything here is a pure function of its input:
// no I/O, no clock reads ("now" is always injected), so both the admin
// dashboard and the per-rep activity view share one code path.
package stats

import (
	"sort"
	"strconv"
	"time"

	"github.com/brickgo/crm-bfa-go/internal/domain"
)

// TrendDays is the width of the daily-volume chart. Index TrendDays-1 is
// the injected "today".
const TrendDays = 10

// TopAssigneeCount is how many reps the ranking returns.
const TopAssigneeCount = 3

// UnknownAssignee is the bucket for prospects with no assignee or a broken
// profile join.
const UnknownAssignee = "unknown"

// Summary is the aggregated view of a prospect list.
type Summary struct {
	TotalCount     int              `json:"total_count"`
	WonCount       int              `json:"won_count"`
	Revenue        float64          `json:"revenue"`
	ConversionRate float64          `json:"conversion_rate"`
	DailyCounts    [TrendDays]int   `json:"daily_counts"`
	TopAssignees   []AssigneeRollup `json:"top_assignees"`
	StatusCounts   map[string]int   `json:"status_counts"`
}

// AssigneeRollup is the per-rep aggregation behind the "Top Commerciaux"
// ranking.
type AssigneeRollup struct {
	AssigneeID   string  `json:"assignee_id"`
	Name         string  `json:"name,omitempty"`
	Leads        int     `json:"leads"`
	Won          int     `json:"won"`
	SalesRevenue float64 `json:"sales_revenue"`
	Conversion   string  `json:"conversion"`
}

// Summarize aggregates prospects into a Summary. Day buckets use the
// calendar of now's location. Empty input yields zeroed outputs, never an
// error: conversion is defined as 0 when there is nothing to convert.
func Summarize(prospects []domain.Prospect, now time.Time) Summary {
	s := Summary{
		TotalCount:   len(prospects),
		StatusCounts: make(map[string]int),
	}

	type bucket struct {
		id      string
		name    string
		leads   int
		won     int
		revenue float64
	}
	buckets := make(map[string]*bucket)
	order := make([]string, 0) // first-seen order, keeps ranking stable for ties

	for i := range prospects {
		p := &prospects[i]
		st := p.NormalizedStatus()
		s.StatusCounts[st.Label()]++

		var deal float64
		if p.DealValue != nil {
			deal = *p.DealValue
		}
		if st.IsWon() {
			s.WonCount++
			s.Revenue += deal
		}

		if d := dayIndex(p.CreatedAt, now); d >= 0 && d < TrendDays {
			s.DailyCounts[d]++
		}

		key := UnknownAssignee
		name := ""
		if p.AssignedTo != nil && *p.AssignedTo != "" {
			key = *p.AssignedTo
			name = p.AssigneeName()
		}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{id: key, name: name}
			buckets[key] = b
			order = append(order, key)
		}
		if b.name == "" && name != "" {
			b.name = name
		}
		b.leads++
		if st.IsWon() {
			b.won++
			b.revenue += deal
		}
	}

	if s.TotalCount > 0 {
		s.ConversionRate = float64(s.WonCount) / float64(s.TotalCount) * 100
	}

	rollups := make([]AssigneeRollup, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		rollups = append(rollups, AssigneeRollup{
			AssigneeID:   b.id,
			Name:         b.name,
			Leads:        b.leads,
			Won:          b.won,
			SalesRevenue: b.revenue,
			Conversion:   conversionLabel(b.won, b.leads),
		})
	}
	sort.SliceStable(rollups, func(i, j int) bool {
		return rollups[i].SalesRevenue > rollups[j].SalesRevenue
	})
	if len(rollups) > TopAssigneeCount {
		rollups = rollups[:TopAssigneeCount]
	}
	s.TopAssignees = rollups

	return s
}

// NewerThan filters prospects created strictly after now minus the given
// number of days. "Exactly days ago" is excluded.
func NewerThan(prospects []domain.Prospect, now time.Time, days int) []domain.Prospect {
	cutoff := now.AddDate(0, 0, -days)
	out := make([]domain.Prospect, 0, len(prospects))
	for _, p := range prospects {
		if p.CreatedAt.After(cutoff) {
			out = append(out, p)
		}
	}
	return out
}

// dayIndex maps a creation time to its trailing-window bucket: TrendDays-1
// for today, TrendDays-2 for yesterday, negative for anything older than
// the window or created "in the future" relative to now.
func dayIndex(created, now time.Time) int {
	loc := now.Location()
	cy, cm, cd := created.In(loc).Date()
	ny, nm, nd := now.In(loc).Date()
	cMid := time.Date(cy, cm, cd, 0, 0, 0, 0, loc)
	nMid := time.Date(ny, nm, nd, 0, 0, 0, 0, loc)
	if cMid.After(nMid) {
		return -1
	}
	// Rounding absorbs DST-shortened days.
	daysAgo := int(nMid.Sub(cMid).Hours()/24 + 0.5)
	return TrendDays - 1 - daysAgo
}

// conversionLabel renders won/leads as a whole percentage with a % suffix.
// A bucket with no leads is "0%", never a division error.
func conversionLabel(won, leads int) string {
	if leads == 0 {
		return "0%"
	}
	pct := int(float64(won)/float64(leads)*100 + 0.5)
	return strconv.Itoa(pct) + "%"
}
