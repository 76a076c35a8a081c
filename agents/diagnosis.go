package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"problem-navigator/llm"
)

// DiagnosisConsolidator runs the four classifiers in parallel and merges
// their outputs into a single problem profile.
type DiagnosisConsolidator struct {
	client     llm.Client
	model      string
	definition *DefinitionClassifier
	complexity *ComplexityAssessor
	risk       *RiskUncertaintyEvaluator
	wickedness *WickednessClassifier
}

func NewDiagnosisConsolidator(client llm.Client) *DiagnosisConsolidator {
	return &DiagnosisConsolidator{
		client:     client,
		model:      ModelSynthesis,
		definition: NewDefinitionClassifier(client),
		complexity: NewComplexityAssessor(client),
		risk:       NewRiskUncertaintyEvaluator(client),
		wickedness: NewWickednessClassifier(client),
	}
}

// Diagnose classifies the conversation across all four dimensions and
// consolidates the results. Conversations under two messages get the default
// "Just Starting" profile without any model calls. Never fails.
func (d *DiagnosisConsolidator) Diagnose(ctx context.Context, conversation []Message, previous *Diagnosis, citations []llm.Citation) *Diagnosis {
	if len(conversation) < 2 {
		return defaultDiagnosis()
	}

	cc := BuildContext(conversation, citations)

	var (
		defResult  *DefinitionResult
		compResult *ComplexityResult
		riskResult *RiskResult
		wickResult *WickednessResult
	)

	// Classifiers degrade internally, so the group never returns an error.
	// The errgroup still gives us the fan-out/fan-in and shared context.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defResult = d.definition.Classify(gctx, conversation, cc)
		return nil
	})
	g.Go(func() error {
		compResult = d.complexity.Assess(gctx, conversation, cc)
		return nil
	})
	g.Go(func() error {
		riskResult = d.risk.Evaluate(gctx, conversation, cc)
		return nil
	})
	g.Go(func() error {
		wickResult = d.wickedness.Classify(gctx, conversation, cc)
		return nil
	})
	g.Wait()

	return d.consolidate(ctx, defResult, compResult, riskResult, wickResult, conversation, cc, previous)
}

func (d *DiagnosisConsolidator) consolidate(
	ctx context.Context,
	definition *DefinitionResult,
	complexity *ComplexityResult,
	risk *RiskResult,
	wickedness *WickednessResult,
	conversation []Message,
	cc *ConversationContext,
	previous *Diagnosis,
) *Diagnosis {
	agentOutputs := map[string]any{
		"definition":       definition,
		"complexity":       complexity,
		"risk_uncertainty": risk,
		"wickedness":       wickedness,
	}
	outputsJSON, _ := json.MarshalIndent(agentOutputs, "", "  ")

	citationsText := "None yet"
	if len(cc.Citations) > 0 {
		if data, err := json.MarshalIndent(cc.Citations, "", "  "); err == nil {
			citationsText = string(data)
		}
	}

	userFocus := cc.UserStatements
	if len(userFocus) > 2 {
		userFocus = userFocus[:2]
	}
	focusText := ""
	for i, s := range userFocus {
		if i > 0 {
			focusText += " | "
		}
		focusText += s
	}

	previousText := "No previous diagnosis."
	if previous != nil {
		if data, err := json.MarshalIndent(previous.UIUpdates, "", "  "); err == nil {
			previousText = "PREVIOUS DIAGNOSIS (for comparison):" + string(data)
		}
	}

	prompt := fmt.Sprintf(`
%s

AGENT DIAGNOSTIC OUTPUTS:
%s

CONVERSATION CONTEXT:
- Messages: %d
- User focus: %s

KNOWLEDGE BASE CITATIONS:
%s

CONVERSATION SUMMARY:
%s

RECENT CONVERSATION:
%s

%s

Based on the conversation context, knowledge base citations, and agent outputs:
1. Determine the appropriate problem profile
2. Recommend the best approach for this type of problem
3. Decide if research would help

Respond with ONLY the JSON object, no markdown formatting.
`, diagnosisConsolidatorPrompt, string(outputsJSON), cc.MessageCount, focusText,
		citationsText, cc.Summary,
		formatWindow(conversation, consolidationWindow, consolidationCharLimit),
		previousText)

	resp, err := d.client.Generate(ctx, d.model, prompt)
	if err != nil {
		return fallbackDiagnosis(definition, complexity, risk, wickedness)
	}

	var parsed struct {
		Profile   Profile        `json:"profile"`
		Research  ResearchAdvice `json:"research"`
		UIUpdates *UIState       `json:"ui_updates"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(resp.Content)), &parsed); err != nil || parsed.Profile.Name == "" {
		return fallbackDiagnosis(definition, complexity, risk, wickedness)
	}

	result := &Diagnosis{
		Profile:  parsed.Profile,
		Research: parsed.Research,
	}
	if parsed.UIUpdates != nil {
		result.UIUpdates = *parsed.UIUpdates
	} else {
		result.UIUpdates = UIState{
			Definition:         definition.Level,
			Complexity:         complexity.Level,
			RiskUncertainty:    risk.Position,
			Wickedness:         wickedness.Level,
			ShowResearchPrompt: true,
			ResearchPromptText: "Research this problem",
		}
	}
	return result
}

// defaultDiagnosis is the fixed profile for conversations that have not
// really begun.
func defaultDiagnosis() *Diagnosis {
	return &Diagnosis{
		Profile: Profile{
			Name:    "Just Starting",
			Summary: "Let's explore your challenge together.",
			Diagnosis: DiagnosisDetail{
				Definition:  DimensionScore{Level: "undefined", Confidence: 0.3},
				Complexity:  DimensionScore{Level: "complex", Confidence: 0.3},
				Knowability: Knowability{Position: 0.5, Label: "balanced"},
				Wickedness:  WickednessScore{Level: "messy", CharacteristicsCount: 0},
			},
			OverallDifficulty:   "medium",
			RecommendedApproach: "Analysis",
			FrameworkMatches:    []string{"Problem Discovery", "Design Thinking"},
		},
		Research: ResearchAdvice{
			Recommended:    false,
			Urgency:        "low",
			Reason:         "Continue the conversation first",
			SuggestedFocus: []string{},
		},
		UIUpdates: UIState{
			Definition:         "undefined",
			Complexity:         "complex",
			RiskUncertainty:    0.5,
			Wickedness:         "messy",
			ShowResearchPrompt: false,
			ResearchPromptText: "",
		},
	}
}

// fallbackDiagnosis builds a deterministic profile straight from the
// classifier outputs when consolidation fails. The decision table checks the
// definition and complexity pairing first, then wickedness.
func fallbackDiagnosis(definition *DefinitionResult, complexity *ComplexityResult, risk *RiskResult, wickedness *WickednessResult) *Diagnosis {
	defLevel := definition.Level
	compLevel := complexity.Level
	wickLevel := wickedness.Level

	var profileName, approach string
	var frameworks []string
	switch {
	case defLevel == "undefined" && (compLevel == "complex" || compLevel == "chaotic"):
		profileName = "Early Exploration"
		approach = "Sense-making"
		frameworks = []string{"Beautiful Questions", "Problem Discovery"}
	case defLevel == "well-defined" && compLevel == "simple":
		profileName = "Ready to Execute"
		approach = "Execution"
		frameworks = []string{"Solution Validation", "MVP Testing"}
	case defLevel == "ill-defined" && compLevel == "complicated":
		profileName = "Needs Analysis"
		approach = "Analysis"
		frameworks = []string{"Root Cause Analysis", "Hypothesis Testing"}
	case wickLevel == "complex" || wickLevel == "wicked":
		profileName = "Systemic Challenge"
		approach = "Experimentation"
		frameworks = []string{"Systems Thinking", "Stakeholder Mapping"}
	default:
		profileName = "Innovation Challenge"
		approach = "Analysis"
		frameworks = []string{"Design Thinking", "Jobs to Be Done"}
	}

	researchRecommended := defLevel == "undefined" || wickLevel == "complex" || wickLevel == "wicked"
	urgency := "low"
	if defLevel == "undefined" {
		urgency = "medium"
	}

	return &Diagnosis{
		Profile: Profile{
			Name:    profileName,
			Summary: "Based on current analysis of your challenge.",
			Diagnosis: DiagnosisDetail{
				Definition:  DimensionScore{Level: defLevel, Confidence: definition.Confidence},
				Complexity:  DimensionScore{Level: compLevel, Confidence: complexity.Confidence},
				Knowability: Knowability{Position: risk.Position, Label: risk.Label},
				Wickedness:  WickednessScore{Level: wickLevel, CharacteristicsCount: len(wickedness.Characteristics)},
			},
			OverallDifficulty:   "medium",
			RecommendedApproach: approach,
			FrameworkMatches:    frameworks,
		},
		Research: ResearchAdvice{
			Recommended:    researchRecommended,
			Urgency:        urgency,
			Reason:         "Additional context would help clarify the problem",
			SuggestedFocus: []string{"Market validation", "Similar cases"},
		},
		UIUpdates: UIState{
			Definition:         defLevel,
			Complexity:         compLevel,
			RiskUncertainty:    risk.Position,
			Wickedness:         wickLevel,
			ShowResearchPrompt: defLevel == "undefined",
			ResearchPromptText: "Research this problem",
		},
	}
}
