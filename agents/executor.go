package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"problem-navigator/catalog"
	"problem-navigator/llm"
)

// FrameworkExecutor applies one catalog framework to the conversation and
// produces a structured analysis.
type FrameworkExecutor struct {
	client   llm.Client
	model    string
	registry *catalog.Registry
}

func NewFrameworkExecutor(client llm.Client, registry *catalog.Registry) *FrameworkExecutor {
	return &FrameworkExecutor{client: client, model: ModelSynthesis, registry: registry}
}

// Execute applies the named framework. An unknown id returns an error
// wrapping catalog.ErrNotFound; a model or parse failure degrades to a
// structured fallback result instead.
func (e *FrameworkExecutor) Execute(ctx context.Context, frameworkID string, pyramid *PyramidAnalysis, conversation []Message, ui *UIState) (*FrameworkResult, error) {
	fw, err := e.registry.Get(frameworkID)
	if err != nil {
		return nil, fmt.Errorf("cannot execute framework: %w", err)
	}

	prompt := e.buildPrompt(fw, pyramid, conversation, ui)

	resp, err := e.client.Generate(ctx, e.model, prompt)
	if err != nil {
		return fallbackExecution(fw, err), nil
	}

	var parsed struct {
		Analysis         *FrameworkAnalysis `json:"framework_analysis"`
		MethodologyNotes string             `json:"methodology_notes"`
		Confidence       float64            `json:"confidence_level"`
		NeedsMoreInfo    []string           `json:"needs_more_info"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(resp.Content)), &parsed); err != nil || parsed.Analysis == nil {
		if err == nil {
			err = fmt.Errorf("missing framework_analysis")
		}
		return fallbackExecution(fw, err), nil
	}

	citations := make([]Citation, 0, len(resp.Citations))
	for _, c := range resp.Citations {
		citations = append(citations, Citation{Title: c.Title, Text: c.Text, Source: c.Source})
	}

	return &FrameworkResult{
		FrameworkID:      fw.ID,
		FrameworkTitle:   fw.Title,
		Analysis:         parsed.Analysis,
		MethodologyNotes: parsed.MethodologyNotes,
		Confidence:       parsed.Confidence,
		NeedsMoreInfo:    parsed.NeedsMoreInfo,
		Citations:        citations,
	}, nil
}

func (e *FrameworkExecutor) buildPrompt(fw *catalog.Framework, pyramid *PyramidAnalysis, conversation []Message, ui *UIState) string {
	scqa := pyramid.SCQA
	scqaText := fmt.Sprintf(`
Situation: %s
Complication: %s
Question: %s
Direction: %s
`, scqa.Situation, scqa.Complication, scqa.Question, scqa.AnswerDirection)

	diagText := ""
	if ui != nil {
		diagText = fmt.Sprintf(`
Definition Level: %s
Complexity: %s
Wickedness: %s
`, ui.Definition, ui.Complexity, ui.Wickedness)
	}

	var questions strings.Builder
	for _, q := range fw.KeyQuestions {
		fmt.Fprintf(&questions, "- %s\n", q)
	}

	var outputInstruction strings.Builder
	outputInstruction.WriteString("{\n")
	for _, field := range fw.OutputStructure {
		fmt.Fprintf(&outputInstruction, "  %q: \"...\",  // %s\n", field.Field, field.Description)
	}
	outputInstruction.WriteString("}")

	return fmt.Sprintf(`
# Role
You are a Framework Analyst applying the **%s** framework to analyze a problem.

# Task
Apply the %s framework to the user's current context and produce a structured analysis.

# Framework: %s

**Definition:** %s

**When to use:** %s

**Key Questions to Answer:**
%s
**Required Concepts:**
%s

# Constraints
- Output format: Valid JSON only, no markdown
- Answer ALL key questions from the framework
- Ground analysis in the conversation context
- Include specific evidence from the conversation
- Provide actionable insights, not just observations

# Context (SCQA from pyramid analysis):
%s
# Diagnostic State:
%s
# Conversation:
%s

# Output Instructions
Apply the %s framework step-by-step, then generate this JSON structure:
{
  "framework_analysis": {
    "summary": "2-3 sentence executive summary of the analysis",
    "key_questions_answered": [
      {
        "question": "The framework question",
        "answer": "Your analysis",
        "evidence": "Supporting evidence from conversation"
      }
    ],
    "framework_output": %s,
    "insights": ["Key insight 1", "Key insight 2", "Key insight 3"],
    "opportunities": ["Opportunity 1", "Opportunity 2"],
    "risks_or_gaps": ["Risk or gap 1", "Risk or gap 2"],
    "recommended_next_steps": ["Action 1", "Action 2"]
  },
  "methodology_notes": "How the methodology informs this analysis",
  "confidence_level": 0.0-1.0,
  "needs_more_info": ["What additional information would strengthen this analysis"]
}
`, fw.Title, fw.Title, fw.Title, fw.Definition, fw.WhenToUse,
		questions.String(), strings.Join(fw.RequiredConcepts, ", "),
		scqaText, diagText,
		formatWindow(conversation, executorWindow, executorCharLimit),
		fw.Title, outputInstruction.String())
}

// fallbackExecution produces a low-confidence placeholder built from the
// framework's own metadata when the model call fails.
func fallbackExecution(fw *catalog.Framework, err error) *FrameworkResult {
	questions := fw.KeyQuestions
	answered := make([]QuestionAnswer, 0, 3)
	for i, q := range questions {
		if i >= 3 {
			break
		}
		answered = append(answered, QuestionAnswer{
			Question: q,
			Answer:   "Analysis pending - requires deeper exploration",
			Evidence: "Based on conversation context",
		})
	}

	output := make(map[string]string, len(fw.OutputStructure))
	for _, field := range fw.OutputStructure {
		output[field.Field] = "To be determined"
	}

	nextSteps := questions
	if len(nextSteps) > 2 {
		nextSteps = nextSteps[:2]
	}
	needsMore := fw.RequiredConcepts
	if len(needsMore) > 3 {
		needsMore = needsMore[:3]
	}

	return &FrameworkResult{
		FrameworkID:    fw.ID,
		FrameworkTitle: fw.Title,
		Analysis: &FrameworkAnalysis{
			Summary:              fmt.Sprintf("Applying %s to analyze the problem context.", fw.Title),
			KeyQuestionsAnswered: answered,
			FrameworkOutput:      output,
			Insights: []string{
				fmt.Sprintf("The %s framework suggests examining: %s", fw.Title, fw.WhenToUse),
			},
			Opportunities: []string{"Further analysis recommended"},
			RisksOrGaps:   []string{"Incomplete information for full analysis"},
			NextSteps:     nextSteps,
		},
		MethodologyNotes: "Analysis based on framework first principles",
		Confidence:       0.4,
		NeedsMoreInfo:    needsMore,
		Citations:        []Citation{},
		Error:            err.Error(),
	}
}
