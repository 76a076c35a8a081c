package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"problem-navigator/llm"
)

// The four classifiers each read the last 10 messages (500 chars per message)
// plus up to three knowledge-base citations, and degrade to a fixed fallback
// when the model call or parse fails. They never fail the pipeline.

// LabelForPosition maps a knowability position onto its spectrum label.
func LabelForPosition(position float64) string {
	switch {
	case position < 0.2:
		return "risk"
	case position < 0.4:
		return "mixed-risk"
	case position < 0.6:
		return "balanced"
	case position < 0.8:
		return "mixed-uncertainty"
	default:
		return "uncertainty"
	}
}

// classifierContextSection renders up to three citations for a classifier
// prompt, or an empty string when there are none.
func classifierContextSection(cc *ConversationContext) string {
	if cc == nil || len(cc.Citations) == 0 {
		return ""
	}
	citations := cc.Citations
	if len(citations) > 3 {
		citations = citations[:3]
	}
	data, err := json.MarshalIndent(citations, "", "  ")
	if err != nil {
		return ""
	}
	return fmt.Sprintf("\nKNOWLEDGE BASE CONTEXT:\n%s\n", string(data))
}

// buildClassifierPrompt assembles the common classifier prompt layout.
func buildClassifierPrompt(systemPrompt string, conversation []Message, cc *ConversationContext) string {
	return fmt.Sprintf(`
%s
%s
CONVERSATION TO ANALYZE:
%s

Respond with ONLY the JSON object, no markdown formatting.
`, systemPrompt, classifierContextSection(cc), formatWindow(conversation, classifierWindow, classifierCharLimit))
}

// DefinitionClassifier places the problem on the definition spectrum.
type DefinitionClassifier struct {
	client llm.Client
	model  string
}

func NewDefinitionClassifier(client llm.Client) *DefinitionClassifier {
	return &DefinitionClassifier{client: client, model: ModelFast}
}

// Classify analyzes the conversation. On any failure it returns the
// undefined fallback with the error recorded in the reasoning.
func (c *DefinitionClassifier) Classify(ctx context.Context, conversation []Message, cc *ConversationContext) *DefinitionResult {
	prompt := buildClassifierPrompt(definitionClassifierPrompt, conversation, cc)

	resp, err := c.client.Generate(ctx, c.model, prompt)
	if err == nil {
		var result DefinitionResult
		if jsonErr := json.Unmarshal([]byte(cleanJSON(resp.Content)), &result); jsonErr == nil && result.Level != "" {
			return &result
		} else if jsonErr != nil {
			err = jsonErr
		} else {
			err = fmt.Errorf("missing definition_level")
		}
	}

	return &DefinitionResult{
		Level:      "undefined",
		Confidence: 0.3,
		Evidence:   []string{},
		Reasoning:  fmt.Sprintf("Unable to classify: %v", err),
	}
}

// ComplexityAssessor places the problem in a Cynefin domain.
type ComplexityAssessor struct {
	client llm.Client
	model  string
}

func NewComplexityAssessor(client llm.Client) *ComplexityAssessor {
	return &ComplexityAssessor{client: client, model: ModelFast}
}

// Assess analyzes the conversation. Falls back to "complex" on failure.
func (c *ComplexityAssessor) Assess(ctx context.Context, conversation []Message, cc *ConversationContext) *ComplexityResult {
	prompt := buildClassifierPrompt(complexityAssessorPrompt, conversation, cc)

	resp, err := c.client.Generate(ctx, c.model, prompt)
	if err == nil {
		var result ComplexityResult
		if jsonErr := json.Unmarshal([]byte(cleanJSON(resp.Content)), &result); jsonErr == nil && result.Level != "" {
			return &result
		} else if jsonErr != nil {
			err = jsonErr
		} else {
			err = fmt.Errorf("missing complexity_level")
		}
	}

	return &ComplexityResult{
		Level:      "complex",
		Confidence: 0.3,
		Evidence:   []string{},
		Reasoning:  fmt.Sprintf("Unable to classify: %v", err),
	}
}

// RiskUncertaintyEvaluator places the problem on the knowability spectrum.
type RiskUncertaintyEvaluator struct {
	client llm.Client
	model  string
}

func NewRiskUncertaintyEvaluator(client llm.Client) *RiskUncertaintyEvaluator {
	return &RiskUncertaintyEvaluator{client: client, model: ModelFast}
}

// Evaluate analyzes the conversation. Falls back to the balanced midpoint on
// failure. The label is always recomputed from the position so the two never
// disagree.
func (e *RiskUncertaintyEvaluator) Evaluate(ctx context.Context, conversation []Message, cc *ConversationContext) *RiskResult {
	prompt := buildClassifierPrompt(riskUncertaintyPrompt, conversation, cc)

	resp, err := e.client.Generate(ctx, e.model, prompt)
	if err == nil {
		var result RiskResult
		if jsonErr := json.Unmarshal([]byte(cleanJSON(resp.Content)), &result); jsonErr == nil {
			if result.Position < 0 {
				result.Position = 0
			}
			if result.Position > 1 {
				result.Position = 1
			}
			result.Label = LabelForPosition(result.Position)
			return &result
		}
		err = fmt.Errorf("failed to parse response")
	}

	return &RiskResult{
		Position:   0.5,
		Label:      "balanced",
		Confidence: 0.3,
		Evidence:   []string{},
		Reasoning:  fmt.Sprintf("Unable to classify: %v", err),
	}
}

// WickednessClassifier classifies the problem's wickedness level.
type WickednessClassifier struct {
	client llm.Client
	model  string
}

func NewWickednessClassifier(client llm.Client) *WickednessClassifier {
	return &WickednessClassifier{client: client, model: ModelFast}
}

// Classify analyzes the conversation. Falls back to "messy" with no
// characteristics on failure.
func (c *WickednessClassifier) Classify(ctx context.Context, conversation []Message, cc *ConversationContext) *WickednessResult {
	prompt := buildClassifierPrompt(wickednessClassifierPrompt, conversation, cc)

	resp, err := c.client.Generate(ctx, c.model, prompt)
	if err == nil {
		var result WickednessResult
		if jsonErr := json.Unmarshal([]byte(cleanJSON(resp.Content)), &result); jsonErr == nil && result.Level != "" {
			return &result
		} else if jsonErr != nil {
			err = jsonErr
		} else {
			err = fmt.Errorf("missing wickedness_level")
		}
	}

	return &WickednessResult{
		Level:           "messy",
		Confidence:      0.3,
		Characteristics: []int{},
		Evidence:        []string{},
		Reasoning:       fmt.Sprintf("Unable to classify: %v", err),
	}
}
