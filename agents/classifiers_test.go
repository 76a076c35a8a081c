package agents

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestLabelForPosition(t *testing.T) {
	tests := []struct {
		position float64
		want     string
	}{
		{0.0, "risk"},
		{0.19, "risk"},
		{0.2, "mixed-risk"},
		{0.39, "mixed-risk"},
		{0.4, "balanced"},
		{0.59, "balanced"},
		{0.6, "mixed-uncertainty"},
		{0.79, "mixed-uncertainty"},
		{0.8, "uncertainty"},
		{1.0, "uncertainty"},
	}

	for _, tt := range tests {
		if got := LabelForPosition(tt.position); got != tt.want {
			t.Errorf("LabelForPosition(%.2f) = %q, want %q", tt.position, got, tt.want)
		}
	}
}

func TestDefinitionClassifier(t *testing.T) {
	client := &fakeClient{responses: []string{
		`{"definition_level": "ill-defined", "confidence": 0.8, "evidence": ["no clear metric"], "reasoning": "symptoms known, cause unknown"}`,
	}}
	c := NewDefinitionClassifier(client)

	result := c.Classify(context.Background(), sampleConversation(), nil)
	if result.Level != "ill-defined" {
		t.Errorf("Level = %q, want ill-defined", result.Level)
	}
	if result.Confidence != 0.8 {
		t.Errorf("Confidence = %v, want 0.8", result.Confidence)
	}
	if client.models[0] != ModelFast {
		t.Errorf("model = %q, want %q", client.models[0], ModelFast)
	}
}

func TestDefinitionClassifierFallback(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeClient
	}{
		{"call error", &fakeClient{err: errors.New("api down")}},
		{"bad json", &fakeClient{responses: []string{"not json"}}},
		{"missing level", &fakeClient{responses: []string{`{"confidence": 0.9}`}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewDefinitionClassifier(tt.client)
			result := c.Classify(context.Background(), sampleConversation(), nil)
			if result.Level != "undefined" {
				t.Errorf("Level = %q, want undefined", result.Level)
			}
			if result.Confidence != 0.3 {
				t.Errorf("Confidence = %v, want 0.3", result.Confidence)
			}
			if !strings.HasPrefix(result.Reasoning, "Unable to classify:") {
				t.Errorf("Reasoning = %q, want failure reason", result.Reasoning)
			}
		})
	}
}

func TestComplexityAssessorFallback(t *testing.T) {
	c := NewComplexityAssessor(&fakeClient{err: errors.New("api down")})
	result := c.Assess(context.Background(), sampleConversation(), nil)
	if result.Level != "complex" || result.Confidence != 0.3 {
		t.Errorf("fallback = %q/%v, want complex/0.3", result.Level, result.Confidence)
	}
}

func TestRiskEvaluatorRecomputesLabel(t *testing.T) {
	tests := []struct {
		name         string
		response     string
		wantPosition float64
		wantLabel    string
	}{
		{
			name:         "label corrected from position",
			response:     `{"position": 0.85, "label": "risk", "confidence": 0.7}`,
			wantPosition: 0.85,
			wantLabel:    "uncertainty",
		},
		{
			name:         "position clamped high",
			response:     `{"position": 1.4, "confidence": 0.7}`,
			wantPosition: 1.0,
			wantLabel:    "uncertainty",
		},
		{
			name:         "position clamped low",
			response:     `{"position": -0.3, "confidence": 0.7}`,
			wantPosition: 0.0,
			wantLabel:    "risk",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewRiskUncertaintyEvaluator(&fakeClient{responses: []string{tt.response}})
			result := e.Evaluate(context.Background(), sampleConversation(), nil)
			if result.Position != tt.wantPosition {
				t.Errorf("Position = %v, want %v", result.Position, tt.wantPosition)
			}
			if result.Label != tt.wantLabel {
				t.Errorf("Label = %q, want %q", result.Label, tt.wantLabel)
			}
		})
	}
}

func TestRiskEvaluatorFallback(t *testing.T) {
	e := NewRiskUncertaintyEvaluator(&fakeClient{responses: []string{"garbage"}})
	result := e.Evaluate(context.Background(), sampleConversation(), nil)
	if result.Position != 0.5 || result.Label != "balanced" {
		t.Errorf("fallback = %v/%q, want 0.5/balanced", result.Position, result.Label)
	}
}

func TestWickednessClassifier(t *testing.T) {
	client := &fakeClient{responses: []string{
		`{"wickedness_level": "wicked", "confidence": 0.75, "wicked_characteristics": [1, 3, 8], "evidence": [], "reasoning": "stakeholders disagree on the problem itself"}`,
	}}
	c := NewWickednessClassifier(client)

	result := c.Classify(context.Background(), sampleConversation(), nil)
	if result.Level != "wicked" {
		t.Errorf("Level = %q, want wicked", result.Level)
	}
	if len(result.Characteristics) != 3 {
		t.Errorf("Characteristics = %v, want three entries", result.Characteristics)
	}
}

func TestWickednessClassifierFallback(t *testing.T) {
	c := NewWickednessClassifier(&fakeClient{err: errors.New("api down")})
	result := c.Classify(context.Background(), sampleConversation(), nil)
	if result.Level != "messy" {
		t.Errorf("Level = %q, want messy", result.Level)
	}
	if len(result.Characteristics) != 0 {
		t.Errorf("Characteristics = %v, want empty", result.Characteristics)
	}
}

func TestClassifierPromptIncludesCitations(t *testing.T) {
	client := &fakeClient{responses: []string{`{"definition_level": "well-defined", "confidence": 0.9}`}}
	c := NewDefinitionClassifier(client)

	cc := &ConversationContext{
		Citations: []contextCitation{{Title: "Churn benchmarks", Text: "saas churn medians"}},
	}
	c.Classify(context.Background(), sampleConversation(), cc)

	prompt := client.lastPrompt()
	if !strings.Contains(prompt, "KNOWLEDGE BASE CONTEXT") {
		t.Error("expected citation section in prompt")
	}
	if !strings.Contains(prompt, "Churn benchmarks") {
		t.Error("expected citation title in prompt")
	}
}
