package learning

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/solstice-sh/pulse/internal/state"
)

var testNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func call(server, tool string, status state.CallStatus, durationMs float64) state.CallRecord {
	return state.CallRecord{
		Server:     server,
		Tool:       tool,
		Status:     status,
		DurationMs: durationMs,
	}
}

func TestComputeSingleGroup(t *testing.T) {
	records := []state.CallRecord{
		call("gemini", "web_search", state.CallSuccess, 100),
		call("gemini", "web_search", state.CallError, 200),
	}

	ls := Compute(records, testNow)

	if len(ls.Patterns) != 1 {
		t.Fatalf("expected 1 pattern, got %d", len(ls.Patterns))
	}
	p := ls.Patterns[0]
	if p.UseCount != 2 {
		t.Errorf("useCount = %d, want 2", p.UseCount)
	}
	if p.SuccessRate != 0.5 {
		t.Errorf("successRate = %v, want 0.5", p.SuccessRate)
	}
	if p.AvgDurationMs != 150 {
		t.Errorf("avgDurationMs = %v, want 150", p.AvgDurationMs)
	}
	if ls.TotalCalls != 2 || ls.SuccessfulCalls != 1 {
		t.Errorf("totals = %d/%d, want 2/1", ls.TotalCalls, ls.SuccessfulCalls)
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	records := []state.CallRecord{
		call("gemini", "web_search", state.CallSuccess, 50),
		call("memory", "recall", state.CallSuccess, 10),
		call("memory", "store", state.CallError, 20),
		call("gemini", "web_search", state.CallPending, 30),
	}

	a := Compute(records, testNow)
	b := Compute(records, testNow)

	if !reflect.DeepEqual(a, b) {
		t.Error("two computations over the same log differ")
	}
}

func TestPatternsSortedByUseCountThenKey(t *testing.T) {
	records := []state.CallRecord{
		call("memory", "store", state.CallSuccess, 1),
		call("memory", "recall", state.CallSuccess, 1),
		call("gemini", "web_search", state.CallSuccess, 1),
		call("gemini", "web_search", state.CallSuccess, 1),
	}

	ls := Compute(records, testNow)

	wantKeys := []string{"gemini:web_search", "memory:recall", "memory:store"}
	if len(ls.Patterns) != len(wantKeys) {
		t.Fatalf("expected %d patterns, got %d", len(wantKeys), len(ls.Patterns))
	}
	for i, want := range wantKeys {
		if ls.Patterns[i].Key != want {
			t.Errorf("patterns[%d] = %s, want %s", i, ls.Patterns[i].Key, want)
		}
	}
	if !reflect.DeepEqual(ls.FavoriteTools, wantKeys) {
		t.Errorf("favoriteTools = %v, want %v", ls.FavoriteTools, wantKeys)
	}
}

func TestLastUsedIsMaxTimestamp(t *testing.T) {
	older := testNow.Add(-time.Hour)
	records := []state.CallRecord{
		{Server: "memory", Tool: "recall", Status: state.CallSuccess, Timestamp: testNow},
		{Server: "memory", Tool: "recall", Status: state.CallSuccess, Timestamp: older},
	}

	ls := Compute(records, testNow)
	if !ls.Patterns[0].LastUsed.Equal(testNow) {
		t.Errorf("lastUsed = %v, want %v", ls.Patterns[0].LastUsed, testNow)
	}
}

func TestCommonInputsKeepsRecentDistinct(t *testing.T) {
	// Newest first, as the call-history log stores them.
	var records []state.CallRecord
	for i := 9; i >= 0; i-- {
		r := call("memory", "recall", state.CallSuccess, 1)
		r.Input = fmt.Sprintf("query-%d", i)
		records = append(records, r)
	}
	// Duplicate the newest input; it must not appear twice.
	dup := call("memory", "recall", state.CallSuccess, 1)
	dup.Input = "query-9"
	records = append([]state.CallRecord{dup}, records...)

	ls := Compute(records, testNow)
	got := ls.Patterns[0].CommonInputs
	want := []string{"query-9", "query-8", "query-7", "query-6", "query-5"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("commonInputs = %v, want %v", got, want)
	}
}

func TestSuccessRateBounds(t *testing.T) {
	records := []state.CallRecord{
		call("memory", "recall", state.CallSuccess, 1),
		call("memory", "recall", state.CallError, 1),
		call("memory", "recall", state.CallPending, 1),
	}

	ls := Compute(records, testNow)
	rate := ls.Patterns[0].SuccessRate
	if rate < 0 || rate > 1 {
		t.Errorf("successRate out of bounds: %v", rate)
	}
}

func TestEmptyLog(t *testing.T) {
	ls := Compute(nil, testNow)
	if len(ls.Patterns) != 0 || ls.TotalCalls != 0 || ls.SuccessfulCalls != 0 {
		t.Errorf("non-empty analytics for empty log: %+v", ls)
	}
	// No achievement without patterns; recommendation still fires.
	for _, ins := range ls.Insights {
		if ins.Type == InsightAchievement {
			t.Error("achievement insight without any pattern")
		}
	}
}

func TestAchievementNamesTopPattern(t *testing.T) {
	records := []state.CallRecord{
		call("gemini", "web_search", state.CallSuccess, 1),
		call("gemini", "web_search", state.CallSuccess, 1),
		call("memory", "recall", state.CallSuccess, 1),
	}

	ls := Compute(records, testNow)
	if len(ls.Insights) == 0 {
		t.Fatal("expected insights")
	}
	top := ls.Insights[0]
	if top.Type != InsightAchievement {
		t.Fatalf("first insight type = %s, want achievement", top.Type)
	}
	if top.ActionTool != "gemini:web_search" {
		t.Errorf("achievement names %s, want gemini:web_search", top.ActionTool)
	}
}

func TestWarningRequiresSampleSizeAndLowRate(t *testing.T) {
	flaky := []state.CallRecord{
		call("github", "create_pr", state.CallError, 1),
		call("github", "create_pr", state.CallError, 1),
		call("github", "create_pr", state.CallSuccess, 1),
	}

	ls := Compute(flaky, testNow)
	var warning *Insight
	for i := range ls.Insights {
		if ls.Insights[i].Type == InsightWarning {
			warning = &ls.Insights[i]
		}
	}
	if warning == nil {
		t.Fatal("expected a warning insight for a 33% success rate over 3 calls")
	}
	if warning.ActionTool != "github:create_pr" {
		t.Errorf("warning names %s, want github:create_pr", warning.ActionTool)
	}

	// Two failures are below the sample-size floor.
	ls = Compute(flaky[:2], testNow)
	for _, ins := range ls.Insights {
		if ins.Type == InsightWarning {
			t.Error("warning insight fired below the minimum sample size")
		}
	}
}

func TestRecommendationNamesFirstUnusedCatalogServer(t *testing.T) {
	records := []state.CallRecord{
		call(KnownServers[0], "anything", state.CallSuccess, 1),
	}

	ls := Compute(records, testNow)
	var rec *Insight
	for i := range ls.Insights {
		if ls.Insights[i].Type == InsightRecommendation {
			rec = &ls.Insights[i]
		}
	}
	if rec == nil {
		t.Fatal("expected a recommendation insight")
	}
	if got := rec.ID; got != "recommendation:"+KnownServers[1] {
		t.Errorf("recommendation id = %s, want the first unused catalog server %s", got, KnownServers[1])
	}
}

func TestInsightCap(t *testing.T) {
	var records []state.CallRecord
	// Several flaky tools across all catalog servers.
	for _, server := range KnownServers {
		for i := 0; i < 4; i++ {
			status := state.CallError
			if i == 3 {
				status = state.CallSuccess
			}
			records = append(records, call(server, "flaky", status, 1))
		}
	}

	ls := Compute(records, testNow)
	if len(ls.Insights) > 4 {
		t.Errorf("insight list exceeds cap: %d", len(ls.Insights))
	}
}
