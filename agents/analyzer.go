package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"problem-navigator/llm"
)

// SignalVocabulary is the closed set of framework-selection signals. Anything
// a model emits outside this set is dropped during normalization.
var SignalVocabulary = map[string]bool{
	"causal_ambiguity":     true,
	"system_bottleneck":    true,
	"stakeholder_conflict": true,
	"trend_pressure":       true,
	"user_behavior":        true,
	"business_model":       true,
	"validation_gap":       true,
	"execution_focus":      true,
	"ideation_needed":      true,
	"narrative_focus":      true,
	"strategic_choice":     true,
	"uncertainty_high":     true,
	"time_pressure":        true,
}

// normalizeSignals drops out-of-vocabulary signals and duplicates, then makes
// sure the primary signal is a member of the detected set.
func normalizeSignals(detected []string, primary string) ([]string, string) {
	seen := make(map[string]bool)
	var clean []string
	for _, s := range detected {
		s = strings.TrimSpace(s)
		if !SignalVocabulary[s] || seen[s] {
			continue
		}
		seen[s] = true
		clean = append(clean, s)
	}

	if !SignalVocabulary[primary] {
		primary = ""
	}
	if primary == "" && len(clean) > 0 {
		primary = clean[0]
	}
	if primary != "" && !seen[primary] {
		clean = append(clean, primary)
	}
	return clean, primary
}

// defaultFrameworkSignals is attached to default and fallback pyramids.
func defaultFrameworkSignals() FrameworkSignals {
	return FrameworkSignals{
		NeedsDiscovery:  true,
		NeedsValidation: false,
		ProblemTypeFit:  "undefined",
		ComplexityFit:   "complex",
		SuggestedPhase:  "discovery",
	}
}

// MintoAnalyzer builds the full pyramid decomposition of a conversation.
type MintoAnalyzer struct {
	client llm.Client
	model  string
}

func NewMintoAnalyzer(client llm.Client) *MintoAnalyzer {
	return &MintoAnalyzer{client: client, model: ModelDeep}
}

// Analyze decomposes the conversation into a pyramid with signal detection.
// An empty conversation yields the default pyramid; a failed call yields a
// fallback derived from the last user message. Never fails.
func (a *MintoAnalyzer) Analyze(ctx context.Context, conversation []Message, ui *UIState) *PyramidAnalysis {
	if len(conversation) == 0 {
		return defaultPyramid()
	}

	diagText := ""
	if ui != nil {
		diagText = fmt.Sprintf(`
CURRENT DIAGNOSIS:
- Definition Level: %s
- Complexity: %s
- Risk-Uncertainty: %.2f
- Wickedness: %s
`, ui.Definition, ui.Complexity, ui.RiskUncertainty, ui.Wickedness)
	}

	prompt := fmt.Sprintf(`
%s

%s

FULL CONVERSATION TO ANALYZE:
%s

Analyze this conversation and produce the structured pyramid breakdown with signal detection.
The detected_signals array is CRITICAL - it drives which frameworks will be recommended.
Respond with ONLY the JSON object, no markdown formatting.
`, mintoPyramidPrompt, diagText, formatIndexed(conversation, analyzerCharLimit))

	resp, err := a.client.Generate(ctx, a.model, prompt)
	if err != nil {
		return fallbackPyramid(conversation)
	}

	var result PyramidAnalysis
	if err := json.Unmarshal([]byte(cleanJSON(resp.Content)), &result); err != nil {
		return fallbackPyramid(conversation)
	}

	result.DetectedSignals, result.PrimarySignal = normalizeSignals(result.DetectedSignals, result.PrimarySignal)
	return &result
}

// defaultPyramid is returned for brand-new conversations.
func defaultPyramid() *PyramidAnalysis {
	return &PyramidAnalysis{
		Pyramid: Pyramid{
			TopIssue:      "Conversation just started - exploring the problem space",
			MiddleBuckets: []Bucket{},
			BaseEvidence:  []string{},
		},
		DetectedSignals: []string{},
		SCQA: SCQA{
			Situation:       "New conversation initiated",
			Complication:    "Problem not yet articulated",
			Question:        "What problem is the user trying to solve?",
			AnswerDirection: "Need more information",
		},
		ContextAnalysis: ContextMeta{
			ProblemStage:    "exploring",
			UserIntent:      "Unknown - conversation just started",
			KeyEntities:     []string{},
			AssumptionsMade: []string{},
			GapsIdentified:  []string{"Problem definition", "Context", "Constraints"},
			EmotionalTone:   "Neutral",
		},
		FrameworkSignals: defaultFrameworkSignals(),
	}
}

// fallbackPyramid derives a minimal pyramid from the last user message when
// the model call fails.
func fallbackPyramid(conversation []Message) *PyramidAnalysis {
	var userMsgs []string
	for _, msg := range conversation {
		if msg.Role == "user" {
			userMsgs = append(userMsgs, msg.Content)
		}
	}
	latestUser := ""
	if len(userMsgs) > 0 {
		latestUser = userMsgs[len(userMsgs)-1]
	}

	question := "What's the problem?"
	if latestUser != "" {
		question = truncate(latestUser, 200)
	}

	return &PyramidAnalysis{
		Pyramid: Pyramid{
			TopIssue: fmt.Sprintf("User is exploring: %s...", truncate(latestUser, 100)),
			MiddleBuckets: []Bucket{
				{
					Label:   "Conversation in progress",
					Summary: fmt.Sprintf("User messages: %d", len(userMsgs)),
				},
			},
			BaseEvidence: []string{},
		},
		DetectedSignals: []string{},
		SCQA: SCQA{
			Situation:       "Conversation ongoing",
			Complication:    "Analysis needed",
			Question:        question,
			AnswerDirection: "Requires further exploration",
		},
		ContextAnalysis: ContextMeta{
			ProblemStage:    "exploring",
			UserIntent:      "Seeking guidance",
			KeyEntities:     []string{},
			AssumptionsMade: []string{},
			GapsIdentified:  []string{"Full context analysis"},
			EmotionalTone:   "Unknown",
		},
		FrameworkSignals: defaultFrameworkSignals(),
	}
}

// FastAnalyzer is the low-latency variant. It uses a compact prompt, a
// smaller conversation window, and the flash model, but produces the same
// PyramidAnalysis contract as MintoAnalyzer.
type FastAnalyzer struct {
	client llm.Client
	model  string
}

func NewFastAnalyzer(client llm.Client) *FastAnalyzer {
	return &FastAnalyzer{client: client, model: ModelFast}
}

// fastResult is the compact wire schema the fast prompt requests.
type fastResult struct {
	SCQA          SCQA     `json:"scqa"`
	Signals       []string `json:"signals"`
	PrimarySignal string   `json:"primary_signal"`
	Stage         string   `json:"stage"`
}

// Analyze runs the compact analysis. Falls back to a causal-ambiguity default
// on failure.
func (a *FastAnalyzer) Analyze(ctx context.Context, conversation []Message, ui *UIState) *PyramidAnalysis {
	if len(conversation) == 0 {
		return defaultPyramid()
	}

	diagJSON := "{}"
	if ui != nil {
		if data, err := json.Marshal(ui); err == nil {
			diagJSON = string(data)
		}
	}

	prompt := fmt.Sprintf(fastPyramidPrompt,
		formatCompact(conversation, fastWindow, fastCharLimit), diagJSON)

	fast := fastFallback()
	if resp, err := a.client.Generate(ctx, a.model, prompt); err == nil {
		var parsed fastResult
		if err := json.Unmarshal([]byte(cleanJSON(resp.Content)), &parsed); err == nil && parsed.SCQA.Question != "" {
			fast = &parsed
		}
	}

	signals, primary := normalizeSignals(fast.Signals, fast.PrimarySignal)
	stage := fast.Stage
	if stage == "" {
		stage = "exploring"
	}

	return &PyramidAnalysis{
		Pyramid: Pyramid{
			TopIssue:      fast.SCQA.Question,
			MiddleBuckets: []Bucket{},
			BaseEvidence:  []string{},
		},
		DetectedSignals: signals,
		PrimarySignal:   primary,
		SCQA:            fast.SCQA,
		ContextAnalysis: ContextMeta{
			ProblemStage:    stage,
			UserIntent:      "Seeking guidance",
			KeyEntities:     []string{},
			AssumptionsMade: []string{},
			GapsIdentified:  []string{},
			EmotionalTone:   "Unknown",
		},
		FrameworkSignals: defaultFrameworkSignals(),
	}
}

func fastFallback() *fastResult {
	return &fastResult{
		SCQA: SCQA{
			Situation:       "Conversation in progress",
			Complication:    "Problem being explored",
			Question:        "What's the core issue?",
			AnswerDirection: "Needs more exploration",
		},
		Signals:       []string{"causal_ambiguity"},
		PrimarySignal: "causal_ambiguity",
		Stage:         "exploring",
	}
}
