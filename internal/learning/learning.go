// Package learning derives usage analytics from the tool call-history log.
//
// The whole state is recomputed from the full log on every change. The log
// is capped, so a full recompute is cheap and avoids the numeric drift an
// incremental counter would accumulate.
package learning

import (
	"fmt"
	"sort"
	"time"

	"github.com/solstice-sh/pulse/internal/constants"
	"github.com/solstice-sh/pulse/internal/state"
)

// KnownServers is the fixed catalog of tool servers the platform ships
// with. The recommendation insight suggests the first one never used.
var KnownServers = []string{
	"gemini",
	"memory",
	"filesystem",
	"github",
	"browser",
	"scheduler",
}

// InsightType classifies a derived insight.
type InsightType string

const (
	InsightRecommendation InsightType = "recommendation"
	InsightOptimization   InsightType = "optimization"
	InsightWarning        InsightType = "warning"
	InsightAchievement    InsightType = "achievement"
)

// UsagePattern aggregates call statistics for one server:tool pair.
type UsagePattern struct {
	Key           string    `json:"key"`
	Server        string    `json:"server"`
	Tool          string    `json:"tool"`
	UseCount      int       `json:"useCount"`
	SuccessRate   float64   `json:"successRate"`
	AvgDurationMs float64   `json:"avgDurationMs"`
	LastUsed      time.Time `json:"lastUsed"`
	CommonInputs  []string  `json:"commonInputs"`
}

// Insight is a short observation surfaced from the usage patterns.
type Insight struct {
	ID          string      `json:"id"`
	Type        InsightType `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	ActionTool  string      `json:"actionTool,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// LearningState is the derived analytics root. It is always a pure
// function of the call-history log, never independently persisted state.
type LearningState struct {
	Patterns        []UsagePattern `json:"patterns"`
	TotalCalls      int            `json:"totalCalls"`
	SuccessfulCalls int            `json:"successfulCalls"`
	FavoriteTools   []string       `json:"favoriteTools"`
	LastSession     time.Time      `json:"lastSession"`
	Insights        []Insight      `json:"insights"`
}

// Compute derives the learning state from the call-history log. Records
// arrive newest first, matching the log's order. The result is fully
// deterministic: equal patterns are ordered lexicographically by key.
func Compute(records []state.CallRecord, now time.Time) LearningState {
	groups := make(map[string][]state.CallRecord)
	var keys []string
	for _, r := range records {
		k := r.Key()
		if _, seen := groups[k]; !seen {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], r)
	}

	patterns := make([]UsagePattern, 0, len(keys))
	for _, k := range keys {
		patterns = append(patterns, buildPattern(k, groups[k]))
	}

	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].UseCount != patterns[j].UseCount {
			return patterns[i].UseCount > patterns[j].UseCount
		}
		return patterns[i].Key < patterns[j].Key
	})

	total := len(records)
	successful := 0
	for _, r := range records {
		if r.Status == state.CallSuccess {
			successful++
		}
	}

	favorites := make([]string, 0, constants.MaxFavoriteTools)
	for _, p := range patterns {
		if len(favorites) == constants.MaxFavoriteTools {
			break
		}
		favorites = append(favorites, p.Key)
	}

	return LearningState{
		Patterns:        patterns,
		TotalCalls:      total,
		SuccessfulCalls: successful,
		FavoriteTools:   favorites,
		LastSession:     now,
		Insights:        deriveInsights(patterns, now),
	}
}

// buildPattern aggregates one group. Records are newest first, so the
// first distinct inputs encountered are the most recent ones.
func buildPattern(key string, records []state.CallRecord) UsagePattern {
	p := UsagePattern{
		Key:      key,
		Server:   records[0].Server,
		Tool:     records[0].Tool,
		UseCount: len(records),
	}

	successes := 0
	var durationSum float64
	seen := make(map[string]bool)
	for _, r := range records {
		if r.Status == state.CallSuccess {
			successes++
		}
		durationSum += r.DurationMs
		if r.Timestamp.After(p.LastUsed) {
			p.LastUsed = r.Timestamp
		}
		if r.Input != "" && !seen[r.Input] && len(p.CommonInputs) < constants.MaxCommonInputs {
			seen[r.Input] = true
			p.CommonInputs = append(p.CommonInputs, r.Input)
		}
	}

	p.SuccessRate = float64(successes) / float64(p.UseCount)
	p.AvgDurationMs = durationSum / float64(p.UseCount)
	return p
}

// deriveInsights collects insights in priority order, stopping at the cap.
// Insight ids are derived from their subject so identical logs yield
// identical insights.
func deriveInsights(patterns []UsagePattern, now time.Time) []Insight {
	var insights []Insight

	if len(patterns) > 0 {
		top := patterns[0]
		insights = append(insights, Insight{
			ID:    "achievement:" + top.Key,
			Type:  InsightAchievement,
			Title: "Most used tool",
			Description: fmt.Sprintf("%s has been used %d times with a %.0f%% success rate.",
				top.Key, top.UseCount, top.SuccessRate*100),
			ActionTool: top.Key,
			CreatedAt:  now,
		})
	}

	for _, p := range patterns {
		if len(insights) >= constants.MaxInsights {
			break
		}
		if p.UseCount >= constants.WarningMinUseCount && p.SuccessRate < constants.WarningSuccessRate {
			insights = append(insights, Insight{
				ID:    "warning:" + p.Key,
				Type:  InsightWarning,
				Title: "Low success rate",
				Description: fmt.Sprintf("%s fails more often than it succeeds (%.0f%% over %d calls). Check its inputs.",
					p.Key, p.SuccessRate*100, p.UseCount),
				ActionTool: p.Key,
				CreatedAt:  now,
			})
			break
		}
	}

	used := make(map[string]bool, len(patterns))
	for _, p := range patterns {
		used[p.Server] = true
	}
	for _, server := range KnownServers {
		if len(insights) >= constants.MaxInsights {
			break
		}
		if !used[server] {
			insights = append(insights, Insight{
				ID:    "recommendation:" + server,
				Type:  InsightRecommendation,
				Title: "Unexplored server",
				Description: fmt.Sprintf("The %s server has never been used. Its tools may cover gaps in your current workflow.",
					server),
				CreatedAt: now,
			})
			break
		}
	}

	if len(insights) > constants.MaxInsights {
		insights = insights[:constants.MaxInsights]
	}
	return insights
}
