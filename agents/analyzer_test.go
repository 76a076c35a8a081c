package agents

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestNormalizeSignals(t *testing.T) {
	tests := []struct {
		name        string
		detected    []string
		primary     string
		wantSignals []string
		wantPrimary string
	}{
		{
			name:        "valid passthrough",
			detected:    []string{"causal_ambiguity", "time_pressure"},
			primary:     "causal_ambiguity",
			wantSignals: []string{"causal_ambiguity", "time_pressure"},
			wantPrimary: "causal_ambiguity",
		},
		{
			name:        "unknown dropped",
			detected:    []string{"causal_ambiguity", "made_up_signal"},
			primary:     "causal_ambiguity",
			wantSignals: []string{"causal_ambiguity"},
			wantPrimary: "causal_ambiguity",
		},
		{
			name:        "duplicates dropped",
			detected:    []string{"user_behavior", "user_behavior"},
			primary:     "user_behavior",
			wantSignals: []string{"user_behavior"},
			wantPrimary: "user_behavior",
		},
		{
			name:        "primary defaults to first detected",
			detected:    []string{"validation_gap", "time_pressure"},
			primary:     "",
			wantSignals: []string{"validation_gap", "time_pressure"},
			wantPrimary: "validation_gap",
		},
		{
			name:        "unknown primary replaced",
			detected:    []string{"strategic_choice"},
			primary:     "nonsense",
			wantSignals: []string{"strategic_choice"},
			wantPrimary: "strategic_choice",
		},
		{
			name:        "primary appended when missing",
			detected:    []string{"user_behavior"},
			primary:     "time_pressure",
			wantSignals: []string{"user_behavior", "time_pressure"},
			wantPrimary: "time_pressure",
		},
		{
			name:        "empty stays empty",
			detected:    nil,
			primary:     "",
			wantSignals: nil,
			wantPrimary: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals, primary := normalizeSignals(tt.detected, tt.primary)
			if !reflect.DeepEqual(signals, tt.wantSignals) {
				t.Errorf("signals = %v, want %v", signals, tt.wantSignals)
			}
			if primary != tt.wantPrimary {
				t.Errorf("primary = %q, want %q", primary, tt.wantPrimary)
			}
		})
	}
}

func TestMintoAnalyzerEmptyConversation(t *testing.T) {
	client := &fakeClient{}
	a := NewMintoAnalyzer(client)

	result := a.Analyze(context.Background(), nil, nil)
	if result.Pyramid.TopIssue != "Conversation just started - exploring the problem space" {
		t.Errorf("TopIssue = %q", result.Pyramid.TopIssue)
	}
	if client.calls != 0 {
		t.Error("expected no model call for empty conversation")
	}
	if !result.FrameworkSignals.NeedsDiscovery {
		t.Error("default pyramid should signal discovery")
	}
}

func TestMintoAnalyzer(t *testing.T) {
	client := &fakeClient{responses: []string{`{
		"pyramid": {
			"top_issue": "Churn doubled after simultaneous pricing and redesign changes",
			"middle_buckets": [{"label": "Pricing", "summary": "Price increase correlates with cancellations"}],
			"base_evidence": ["churn doubled last quarter"]
		},
		"detected_signals": ["causal_ambiguity", "user_behavior", "bogus"],
		"primary_signal": "causal_ambiguity",
		"scqa": {
			"situation": "SaaS product with rising churn",
			"complication": "Two changes shipped at once",
			"question": "Which change is driving churn?",
			"answer_direction": "Isolate the causes"
		},
		"context_analysis": {"problem_stage": "defining", "user_intent": "Find the cause", "key_entities": [], "assumptions_made": [], "gaps_identified": [], "emotional_tone": "Concerned"},
		"framework_signals": {"needs_discovery": false, "needs_validation": true, "problem_type_fit": "ill-defined", "complexity_fit": "complicated", "suggested_phase": "discovery"}
	}`}}
	a := NewMintoAnalyzer(client)

	result := a.Analyze(context.Background(), sampleConversation(), &UIState{Definition: "ill-defined", Complexity: "complicated"})

	if result.Pyramid.TopIssue != "Churn doubled after simultaneous pricing and redesign changes" {
		t.Errorf("TopIssue = %q", result.Pyramid.TopIssue)
	}
	if !reflect.DeepEqual(result.DetectedSignals, []string{"causal_ambiguity", "user_behavior"}) {
		t.Errorf("DetectedSignals = %v, want out-of-vocabulary entries dropped", result.DetectedSignals)
	}
	if result.PrimarySignal != "causal_ambiguity" {
		t.Errorf("PrimarySignal = %q", result.PrimarySignal)
	}
	if client.models[0] != ModelDeep {
		t.Errorf("model = %q, want %q", client.models[0], ModelDeep)
	}
	if !strings.Contains(client.lastPrompt(), "Definition Level: ill-defined") {
		t.Error("expected diagnosis section in prompt")
	}
}

func TestMintoAnalyzerFallback(t *testing.T) {
	a := NewMintoAnalyzer(&fakeClient{err: errors.New("api down")})

	result := a.Analyze(context.Background(), sampleConversation(), nil)
	if !strings.HasPrefix(result.Pyramid.TopIssue, "User is exploring: We shipped a pricing change") {
		t.Errorf("TopIssue = %q", result.Pyramid.TopIssue)
	}
	if len(result.Pyramid.MiddleBuckets) != 1 || result.Pyramid.MiddleBuckets[0].Summary != "User messages: 2" {
		t.Errorf("MiddleBuckets = %v", result.Pyramid.MiddleBuckets)
	}
	if result.SCQA.Question != "We shipped a pricing change and a redesign in the same week" {
		t.Errorf("Question = %q, want last user message", result.SCQA.Question)
	}
}

func TestFastAnalyzer(t *testing.T) {
	client := &fakeClient{responses: []string{`{
		"scqa": {"situation": "Churn rising", "complication": "Confounded changes", "question": "What is driving churn?", "answer_direction": "Separate the variables"},
		"signals": ["causal_ambiguity", "validation_gap"],
		"primary_signal": "causal_ambiguity",
		"stage": "defining"
	}`}}
	a := NewFastAnalyzer(client)

	result := a.Analyze(context.Background(), sampleConversation(), nil)

	if result.Pyramid.TopIssue != "What is driving churn?" {
		t.Errorf("TopIssue = %q, want the SCQA question", result.Pyramid.TopIssue)
	}
	if result.ContextAnalysis.ProblemStage != "defining" {
		t.Errorf("ProblemStage = %q", result.ContextAnalysis.ProblemStage)
	}
	if !reflect.DeepEqual(result.DetectedSignals, []string{"causal_ambiguity", "validation_gap"}) {
		t.Errorf("DetectedSignals = %v", result.DetectedSignals)
	}
	if client.models[0] != ModelFast {
		t.Errorf("model = %q, want %q", client.models[0], ModelFast)
	}
}

func TestFastAnalyzerFallback(t *testing.T) {
	a := NewFastAnalyzer(&fakeClient{responses: []string{"not json"}})

	result := a.Analyze(context.Background(), sampleConversation(), nil)
	if result.SCQA.Question != "What's the core issue?" {
		t.Errorf("Question = %q", result.SCQA.Question)
	}
	if result.PrimarySignal != "causal_ambiguity" {
		t.Errorf("PrimarySignal = %q", result.PrimarySignal)
	}
	if result.ContextAnalysis.ProblemStage != "exploring" {
		t.Errorf("ProblemStage = %q", result.ContextAnalysis.ProblemStage)
	}
}
