package api

import (
	"sort"
	"sync"
	"time"
)

type reportSample struct {
	at         time.Time
	race       string
	durationMs int64
	findings   int
}

// ReportStatsSnapshot aggregates the report runs inside the window.
type ReportStatsSnapshot struct {
	Runs        int      `json:"runs"`
	Races       []string `json:"races"`
	MinMs       int64    `json:"min_ms"`
	MaxMs       int64    `json:"max_ms"`
	AvgMs       float64  `json:"avg_ms"`
	P50Ms       float64  `json:"p50_ms"`
	P95Ms       float64  `json:"p95_ms"`
	AvgFindings float64  `json:"avg_findings"`
}

// ReportStats keeps recent report runs within a rolling window.
type ReportStats struct {
	mu      sync.Mutex
	samples []reportSample
	maxAge  time.Duration
	now     func() time.Time
}

func NewReportStats(maxAge time.Duration) *ReportStats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &ReportStats{
		samples: make([]reportSample, 0, 64),
		maxAge:  maxAge,
		now:     time.Now,
	}
}

func (s *ReportStats) Record(race string, took time.Duration, findings int) {
	ms := took.Milliseconds()
	if ms < 0 {
		ms = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)
	s.samples = append(s.samples, reportSample{at: now, race: race, durationMs: ms, findings: findings})
}

func (s *ReportStats) Snapshot() ReportStatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(s.now())
	if len(s.samples) == 0 {
		return ReportStatsSnapshot{Races: []string{}}
	}

	values := make([]int64, 0, len(s.samples))
	seen := make(map[string]bool)
	races := []string{}
	var sum int64
	var findings int
	for _, sm := range s.samples {
		values = append(values, sm.durationMs)
		sum += sm.durationMs
		findings += sm.findings
		if !seen[sm.race] {
			seen[sm.race] = true
			races = append(races, sm.race)
		}
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	sort.Strings(races)

	n := float64(len(values))
	return ReportStatsSnapshot{
		Runs:        len(values),
		Races:       races,
		MinMs:       values[0],
		MaxMs:       values[len(values)-1],
		AvgMs:       float64(sum) / n,
		P50Ms:       percentile(values, 50),
		P95Ms:       percentile(values, 95),
		AvgFindings: float64(findings) / n,
	}
}

func (s *ReportStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	keep := s.samples[:0]
	for _, sm := range s.samples {
		if !sm.at.Before(cutoff) {
			keep = append(keep, sm)
		}
	}
	s.samples = keep
}

// percentile interpolates linearly between the closest ranks.
func percentile(sorted []int64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sorted[0])
	}
	if pct >= 100 {
		return float64(sorted[len(sorted)-1])
	}

	index := (float64(len(sorted)-1) * pct) / 100.0
	lower := int(index)
	if lower+1 >= len(sorted) {
		return float64(sorted[lower])
	}
	weight := index - float64(lower)
	lo := float64(sorted[lower])
	hi := float64(sorted[lower+1])
	return lo + (hi-lo)*weight
}
