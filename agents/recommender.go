package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"problem-navigator/catalog"
	"problem-navigator/llm"
)

// Recommendation cardinality. Enforced after parsing regardless of what the
// model returned.
const (
	MinRecommendations = 3
	MaxRecommendations = 7
)

// signalFallback maps each signal to the framework used when the model is
// unavailable or the selection needs topping up.
type signalFallback struct {
	frameworkID string
	rationale   string
}

var signalFallbacks = map[string]signalFallback{
	"causal_ambiguity":     {"root_cause_analysis", "Identify root causes"},
	"system_bottleneck":    {"reverse_salience", "Find system bottlenecks"},
	"stakeholder_conflict": {"stakeholder_mapping", "Map stakeholder interests"},
	"trend_pressure":       {"scenario_planning", "Explore future scenarios"},
	"user_behavior":        {"jobs_to_be_done", "Understand user needs"},
	"business_model":       {"business_model_canvas", "Design business model"},
	"validation_gap":       {"lean_startup_mvp", "Validate assumptions"},
	"execution_focus":      {"process_mapping", "Map execution steps"},
	"ideation_needed":      {"six_thinking_hats", "Generate diverse ideas"},
	"narrative_focus":      {"heart_framework", "Craft compelling narrative"},
	"strategic_choice":     {"decision_trees", "Structure key decisions"},
	"uncertainty_high":     {"cynefin", "Navigate uncertainty"},
	"time_pressure":        {"pws_triple_validation", "Quick validation"},
}

// diverseDefaults is the zero-signal selection, in order.
var diverseDefaults = []signalFallback{
	{"root_cause_analysis", "Understand underlying causes"},
	{"scenario_planning", "Explore possible futures"},
	{"stakeholder_mapping", "Map key stakeholders"},
	{"six_thinking_hats", "Multiple perspectives"},
}

// FrameworkRecommender selects 3-7 frameworks from the catalog based on
// detected signals and the current diagnosis.
type FrameworkRecommender struct {
	client   llm.Client
	model    string
	registry *catalog.Registry
}

func NewFrameworkRecommender(client llm.Client, registry *catalog.Registry) *FrameworkRecommender {
	return &FrameworkRecommender{client: client, model: ModelDeep, registry: registry}
}

// Recommend selects frameworks for the current situation. The result always
// holds between MinRecommendations and MaxRecommendations entries, with
// unique ids that resolve against the catalog and full framework data
// attached. Never fails.
func (r *FrameworkRecommender) Recommend(ctx context.Context, pyramid *PyramidAnalysis, diagnosis *Diagnosis) *RecommendationSet {
	prompt := r.buildPrompt(pyramid, diagnosis)

	resp, err := r.client.Generate(ctx, r.model, prompt)
	if err != nil {
		return r.enforce(r.fallback(pyramid), pyramid)
	}

	var result RecommendationSet
	if err := json.Unmarshal([]byte(cleanJSON(resp.Content)), &result); err != nil {
		return r.enforce(r.fallback(pyramid), pyramid)
	}
	return r.enforce(&result, pyramid)
}

func (r *FrameworkRecommender) buildPrompt(pyramid *PyramidAnalysis, diagnosis *Diagnosis) string {
	pyramidJSON, _ := json.MarshalIndent(pyramid, "", "  ")
	diagJSON := "{}"
	if diagnosis != nil {
		if data, err := json.MarshalIndent(diagnosis.UIUpdates, "", "  "); err == nil {
			diagJSON = string(data)
		}
	}

	signalsText := "None detected"
	if len(pyramid.DetectedSignals) > 0 {
		signalsText = strings.Join(pyramid.DetectedSignals, ", ")
	}

	return fmt.Sprintf(`
%s

DETECTED SIGNALS (from pyramid analysis):
Primary Signal: %s
All Signals: %s

AVAILABLE FRAMEWORKS:
%s

CONTEXT ANALYSIS (pyramid):
%s

DIAGNOSTIC STATE:
%s

CONTEXT SUMMARY:
%s

CRITICAL INSTRUCTIONS:
1. Use the DETECTED SIGNALS to drive framework selection - NOT defaults
2. Ensure DIVERSITY - select from different phases and types
3. NO FAVORITES - every selection must be justified by specific signals
4. Select 3-7 frameworks that genuinely fit this specific situation

Respond with ONLY the JSON object, no markdown formatting.
`, frameworkSelectorPrompt, pyramid.PrimarySignal, signalsText,
		r.registry.PromptText(), string(pyramidJSON), diagJSON,
		contextSummary(pyramid, diagnosis))
}

// contextSummary renders the pyramid meta-analysis for the selector prompt.
func contextSummary(pyramid *PyramidAnalysis, diagnosis *Diagnosis) string {
	meta := pyramid.ContextAnalysis
	signals := pyramid.FrameworkSignals
	scqa := pyramid.SCQA

	diagText := "Diagnosis: not yet available"
	if diagnosis != nil {
		ui := diagnosis.UIUpdates
		diagText = fmt.Sprintf(`Diagnosis:
- Definition: %s
- Complexity: %s
- Wickedness: %s`, ui.Definition, ui.Complexity, ui.Wickedness)
	}

	return fmt.Sprintf(`
Problem Stage: %s
User Intent: %s
Emotional Tone: %s

SCQA Summary:
- Situation: %s
- Complication: %s
- Question: %s

Framework Signals:
- Needs Discovery: %v
- Needs Validation: %v
- Problem Type Fit: %s
- Complexity Fit: %s
- Suggested Phase: %s

Gaps Identified: %s
Assumptions Made: %s

%s
`, meta.ProblemStage, meta.UserIntent, meta.EmotionalTone,
		scqa.Situation, scqa.Complication, scqa.Question,
		signals.NeedsDiscovery, signals.NeedsValidation, signals.ProblemTypeFit,
		signals.ComplexityFit, signals.SuggestedPhase,
		strings.Join(meta.GapsIdentified, ", "), strings.Join(meta.AssumptionsMade, ", "),
		diagText)
}

// enforce drops unknown ids and duplicates, tops the selection up to the
// minimum from signal fallbacks and diverse defaults, caps it at the maximum,
// and attaches full framework data.
func (r *FrameworkRecommender) enforce(result *RecommendationSet, pyramid *PyramidAnalysis) *RecommendationSet {
	seen := make(map[string]bool)
	var kept []Recommendation
	for _, rec := range result.Frameworks {
		if seen[rec.FrameworkID] || !r.registry.Has(rec.FrameworkID) {
			continue
		}
		seen[rec.FrameworkID] = true
		kept = append(kept, rec)
	}

	// Top up from detected signals first, then diverse defaults.
	if len(kept) < MinRecommendations {
		for _, signal := range pyramid.DetectedSignals {
			if len(kept) >= MinRecommendations {
				break
			}
			fb, ok := signalFallbacks[signal]
			if !ok || seen[fb.frameworkID] {
				continue
			}
			seen[fb.frameworkID] = true
			kept = append(kept, r.fallbackRecommendation(fb, 0.80,
				fmt.Sprintf("Signal '%s' detected - %s", signal, fb.rationale), []string{signal}))
		}
	}
	if len(kept) < MinRecommendations {
		for _, fb := range diverseDefaults {
			if len(kept) >= MinRecommendations {
				break
			}
			if seen[fb.frameworkID] {
				continue
			}
			seen[fb.frameworkID] = true
			kept = append(kept, r.fallbackRecommendation(fb, 0.70,
				fmt.Sprintf("Diverse exploration - %s", fb.rationale), nil))
		}
	}
	if len(kept) > MaxRecommendations {
		kept = kept[:MaxRecommendations]
	}

	for i := range kept {
		r.enrich(&kept[i])
	}

	result.Frameworks = kept
	if result.PrimaryRecommendation == "" || !seen[result.PrimaryRecommendation] {
		if len(kept) > 0 {
			result.PrimaryRecommendation = kept[0].FrameworkID
		}
	}
	return result
}

// fallbackRecommendation builds one selection from the fallback tables.
func (r *FrameworkRecommender) fallbackRecommendation(fb signalFallback, score float64, rationale string, signals []string) Recommendation {
	rec := Recommendation{
		FrameworkID:    fb.frameworkID,
		RelevanceScore: score,
		Rationale:      rationale,
		Phase:          catalog.PhaseDiscovery,
		SignalsMatched: signals,
	}
	if fw, err := r.registry.Get(fb.frameworkID); err == nil {
		rec.Title = fw.Title
		rec.Phase = fw.Phase
	}
	return rec
}

// enrich attaches the catalog entry's full data and corrects title and phase.
func (r *FrameworkRecommender) enrich(rec *Recommendation) {
	fw, err := r.registry.Get(rec.FrameworkID)
	if err != nil {
		return
	}
	rec.Title = fw.Title
	if rec.Phase == "" {
		rec.Phase = fw.Phase
	}
	rec.FullData = &FrameworkData{
		Title:            fw.Title,
		Definition:       fw.Definition,
		KeyQuestions:     fw.KeyQuestions,
		OutputStructure:  fw.OutputStructure,
		RequiredConcepts: fw.RequiredConcepts,
	}
}

// fallback builds a signal-driven selection without the model: one framework
// per detected signal (first four signals), or the diverse defaults when no
// signals were detected.
func (r *FrameworkRecommender) fallback(pyramid *PyramidAnalysis) *RecommendationSet {
	var recs []Recommendation
	seen := make(map[string]bool)

	signals := pyramid.DetectedSignals
	if len(signals) > 4 {
		signals = signals[:4]
	}
	for _, signal := range signals {
		fb, ok := signalFallbacks[signal]
		if !ok || seen[fb.frameworkID] {
			continue
		}
		seen[fb.frameworkID] = true
		recs = append(recs, r.fallbackRecommendation(fb, 0.80,
			fmt.Sprintf("Signal '%s' detected - %s", signal, fb.rationale), []string{signal}))
	}

	if len(recs) == 0 {
		for _, fb := range diverseDefaults[:3] {
			recs = append(recs, r.fallbackRecommendation(fb, 0.70,
				fmt.Sprintf("Diverse exploration - %s", fb.rationale), nil))
		}
	}

	reasoning := "Signal-driven fallback: diverse exploration"
	if len(pyramid.DetectedSignals) > 0 {
		reasoning = "Signal-driven fallback: " + strings.Join(pyramid.DetectedSignals, ", ")
	}

	set := &RecommendationSet{
		Frameworks:         recs,
		SelectionReasoning: reasoning,
	}
	if len(recs) > 0 {
		set.PrimaryRecommendation = recs[0].FrameworkID
	}
	return set
}
