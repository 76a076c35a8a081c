package agents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"problem-navigator/catalog"
	"problem-navigator/llm"
)

const executorResponse = `{
	"framework_analysis": {
		"summary": "Churn is likely driven by the pricing change, not the redesign.",
		"key_questions_answered": [
			{"question": "What is the problem?", "answer": "Churn doubled", "evidence": "User statement"}
		],
		"framework_output": {"problem_statement": "Churn doubled after pricing change"},
		"insights": ["Cancellations cluster around renewal dates"],
		"opportunities": ["Grandfather existing customers"],
		"risks_or_gaps": ["No segment-level data yet"],
		"recommended_next_steps": ["Pull cohort retention data"]
	},
	"methodology_notes": "Worked backwards from the symptom",
	"confidence_level": 0.8,
	"needs_more_info": ["Cohort data"]
}`

func TestExecuteUnknownFramework(t *testing.T) {
	e := NewFrameworkExecutor(&fakeClient{}, catalog.Default())

	result, err := e.Execute(context.Background(), "no_such_framework", defaultPyramid(), sampleConversation(), nil)
	if err == nil {
		t.Fatal("expected error for unknown framework id")
	}
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("error = %v, want wrapped catalog.ErrNotFound", err)
	}
	if result != nil {
		t.Error("expected nil result on unknown id")
	}
}

func TestExecute(t *testing.T) {
	client := &fakeClient{
		responses: []string{executorResponse},
		citations: []llm.Citation{{Title: "Pricing study", Text: "excerpt", Source: "Knowledge Base"}},
	}
	e := NewFrameworkExecutor(client, catalog.Default())

	result, err := e.Execute(context.Background(), "root_cause_analysis", defaultPyramid(), sampleConversation(), &UIState{Definition: "ill-defined"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if result.FrameworkID != "root_cause_analysis" {
		t.Errorf("FrameworkID = %q", result.FrameworkID)
	}
	if result.Analysis == nil || result.Analysis.Summary == "" {
		t.Fatal("expected parsed analysis")
	}
	if result.Confidence != 0.8 {
		t.Errorf("Confidence = %v, want 0.8", result.Confidence)
	}
	if len(result.Citations) != 1 || result.Citations[0].Title != "Pricing study" {
		t.Errorf("Citations = %v, want model citations carried over", result.Citations)
	}
	if result.Error != "" {
		t.Errorf("Error = %q, want empty", result.Error)
	}

	prompt := client.lastPrompt()
	if !strings.Contains(prompt, "Root Cause Analysis") {
		t.Error("expected framework title in prompt")
	}
	if !strings.Contains(prompt, "Definition Level: ill-defined") {
		t.Error("expected diagnostic state in prompt")
	}
	if client.models[0] != ModelSynthesis {
		t.Errorf("model = %q, want %q", client.models[0], ModelSynthesis)
	}
}

func TestExecuteFallback(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeClient
	}{
		{"call error", &fakeClient{err: errors.New("api down")}},
		{"bad json", &fakeClient{responses: []string{"garbage"}}},
		{"missing analysis", &fakeClient{responses: []string{`{"confidence_level": 0.9}`}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewFrameworkExecutor(tt.client, catalog.Default())

			result, err := e.Execute(context.Background(), "root_cause_analysis", defaultPyramid(), sampleConversation(), nil)
			if err != nil {
				t.Fatalf("degraded execution should not fail: %v", err)
			}
			if result.Error == "" {
				t.Error("expected error recorded on fallback result")
			}
			if result.Confidence != 0.4 {
				t.Errorf("Confidence = %v, want 0.4", result.Confidence)
			}
			if result.Analysis == nil {
				t.Fatal("fallback should still carry an analysis")
			}
			if len(result.Analysis.KeyQuestionsAnswered) == 0 || len(result.Analysis.KeyQuestionsAnswered) > 3 {
				t.Errorf("KeyQuestionsAnswered = %d entries, want 1-3", len(result.Analysis.KeyQuestionsAnswered))
			}
			for field, value := range result.Analysis.FrameworkOutput {
				if value != "To be determined" {
					t.Errorf("FrameworkOutput[%s] = %q", field, value)
				}
			}
		})
	}
}
