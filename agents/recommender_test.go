package agents

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"problem-navigator/catalog"
)

func signalPyramid(signals ...string) *PyramidAnalysis {
	p := defaultPyramid()
	p.DetectedSignals = signals
	if len(signals) > 0 {
		p.PrimarySignal = signals[0]
	}
	return p
}

func TestRecommend(t *testing.T) {
	client := &fakeClient{responses: []string{`{
		"recommended_frameworks": [
			{"framework_id": "root_cause_analysis", "title": "Root Cause Analysis", "relevance_score": 0.9, "rationale": "Causal chain unclear", "phase": "discovery", "signals_matched": ["causal_ambiguity"]},
			{"framework_id": "jobs_to_be_done", "title": "Jobs to Be Done", "relevance_score": 0.8, "rationale": "User motivation in question", "phase": "discovery", "signals_matched": ["user_behavior"]},
			{"framework_id": "lean_startup_mvp", "title": "Lean Startup", "relevance_score": 0.7, "rationale": "Validate pricing", "phase": "solution", "signals_matched": ["validation_gap"]}
		],
		"selection_reasoning": "Signals point to causal analysis first",
		"primary_recommendation": "root_cause_analysis"
	}`}}
	r := NewFrameworkRecommender(client, catalog.Default())

	result := r.Recommend(context.Background(), signalPyramid("causal_ambiguity", "user_behavior"), nil)

	if len(result.Frameworks) != 3 {
		t.Fatalf("got %d frameworks, want 3", len(result.Frameworks))
	}
	if result.PrimaryRecommendation != "root_cause_analysis" {
		t.Errorf("PrimaryRecommendation = %q", result.PrimaryRecommendation)
	}
	for _, rec := range result.Frameworks {
		if rec.FullData == nil {
			t.Errorf("framework %s missing full data", rec.FrameworkID)
		}
	}
	if client.models[0] != ModelDeep {
		t.Errorf("model = %q, want %q", client.models[0], ModelDeep)
	}
}

func TestRecommendEnforcesCardinality(t *testing.T) {
	tests := []struct {
		name     string
		response string
		signals  []string
		min, max int
	}{
		{
			name:     "too few topped up from signals",
			response: `{"recommended_frameworks": [{"framework_id": "cynefin", "relevance_score": 0.9, "rationale": "r", "phase": "discovery"}], "primary_recommendation": "cynefin"}`,
			signals:  []string{"causal_ambiguity", "time_pressure"},
			min:      3, max: 7,
		},
		{
			name:     "empty selection topped up from defaults",
			response: `{"recommended_frameworks": []}`,
			signals:  nil,
			min:      3, max: 7,
		},
		{
			name: "too many capped",
			response: func() string {
				body := `{"recommended_frameworks": [`
				ids := []string{"root_cause_analysis", "scenario_planning", "stakeholder_mapping", "six_thinking_hats", "jobs_to_be_done", "cynefin", "decision_trees", "business_model_canvas", "lean_startup_mvp"}
				for i, id := range ids {
					if i > 0 {
						body += ","
					}
					body += fmt.Sprintf(`{"framework_id": %q, "relevance_score": 0.8, "rationale": "r", "phase": "discovery"}`, id)
				}
				return body + `], "primary_recommendation": "root_cause_analysis"}`
			}(),
			signals: nil,
			min:     3, max: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewFrameworkRecommender(&fakeClient{responses: []string{tt.response}}, catalog.Default())
			result := r.Recommend(context.Background(), signalPyramid(tt.signals...), nil)

			if len(result.Frameworks) < tt.min || len(result.Frameworks) > tt.max {
				t.Errorf("got %d frameworks, want between %d and %d", len(result.Frameworks), tt.min, tt.max)
			}
			seen := make(map[string]bool)
			for _, rec := range result.Frameworks {
				if seen[rec.FrameworkID] {
					t.Errorf("duplicate framework %s", rec.FrameworkID)
				}
				seen[rec.FrameworkID] = true
			}
			if result.PrimaryRecommendation == "" || !seen[result.PrimaryRecommendation] {
				t.Errorf("primary %q not in selection", result.PrimaryRecommendation)
			}
		})
	}
}

func TestRecommendDropsUnknownIDs(t *testing.T) {
	client := &fakeClient{responses: []string{`{
		"recommended_frameworks": [
			{"framework_id": "invented_framework", "relevance_score": 0.9, "rationale": "r", "phase": "discovery"},
			{"framework_id": "root_cause_analysis", "relevance_score": 0.8, "rationale": "r", "phase": "discovery"},
			{"framework_id": "root_cause_analysis", "relevance_score": 0.8, "rationale": "dup", "phase": "discovery"}
		],
		"primary_recommendation": "invented_framework"
	}`}}
	r := NewFrameworkRecommender(client, catalog.Default())

	result := r.Recommend(context.Background(), signalPyramid(), nil)

	for _, rec := range result.Frameworks {
		if rec.FrameworkID == "invented_framework" {
			t.Error("unknown framework id kept")
		}
	}
	if result.PrimaryRecommendation == "invented_framework" {
		t.Error("primary recommendation not corrected")
	}
}

func TestRecommendFallback(t *testing.T) {
	r := NewFrameworkRecommender(&fakeClient{err: errors.New("api down")}, catalog.Default())

	result := r.Recommend(context.Background(), signalPyramid("uncertainty_high", "time_pressure"), nil)

	if len(result.Frameworks) < MinRecommendations {
		t.Fatalf("got %d frameworks, want at least %d", len(result.Frameworks), MinRecommendations)
	}
	ids := make(map[string]bool)
	for _, rec := range result.Frameworks {
		ids[rec.FrameworkID] = true
	}
	if !ids["cynefin"] {
		t.Errorf("expected cynefin from uncertainty_high signal, got %v", ids)
	}
	if !ids["pws_triple_validation"] {
		t.Errorf("expected pws_triple_validation from time_pressure signal, got %v", ids)
	}
}

func TestRecommendFallbackNoSignals(t *testing.T) {
	r := NewFrameworkRecommender(&fakeClient{responses: []string{"not json"}}, catalog.Default())

	result := r.Recommend(context.Background(), signalPyramid(), nil)

	if len(result.Frameworks) < MinRecommendations {
		t.Fatalf("got %d frameworks, want at least %d", len(result.Frameworks), MinRecommendations)
	}
	if result.Frameworks[0].FrameworkID != "root_cause_analysis" {
		t.Errorf("first default = %q, want root_cause_analysis", result.Frameworks[0].FrameworkID)
	}
}
