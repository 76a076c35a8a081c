// Package agents implements the diagnostic pipeline: four parallel
// classifiers, pyramid context analysis, diagnosis consolidation, dynamic
// framework recommendation, parallel framework execution with consolidation,
// and a three-phase research workflow. Every agent degrades to a deterministic
// fallback instead of failing the pipeline.
package agents

import (
	"problem-navigator/catalog"
	"problem-navigator/llm"
)

// Model names per pipeline stage. Classification and the fast analyzer use
// the flash model for latency; recommendation uses the preview model; heavy
// synthesis uses the pro model.
const (
	ModelFast      = "gemini-2.5-flash"
	ModelDeep      = "gemini-3-pro-preview"
	ModelSynthesis = "gemini-2.5-pro"
)

// Message is one turn of a conversation.
type Message struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Citations []llm.Citation `json:"citations,omitempty"`
}

// Citation is a knowledge-base source carried through framework execution and
// consolidation. UsedByFrameworks is populated during citation merging.
type Citation struct {
	Title            string   `json:"title"`
	Text             string   `json:"text"`
	Source           string   `json:"source"`
	UsedByFrameworks []string `json:"used_by_frameworks,omitempty"`
}

// Classifier outputs. Each is one orthogonal dimension of the diagnosis.

// DefinitionResult places the problem on the definition spectrum.
type DefinitionResult struct {
	Level      string   `json:"definition_level"`
	Confidence float64  `json:"confidence"`
	Evidence   []string `json:"evidence"`
	Reasoning  string   `json:"reasoning"`
}

// ComplexityResult places the problem in a Cynefin domain.
type ComplexityResult struct {
	Level      string   `json:"complexity_level"`
	Confidence float64  `json:"confidence"`
	Evidence   []string `json:"evidence"`
	Reasoning  string   `json:"reasoning"`
}

// RiskResult places the problem on the risk-uncertainty spectrum.
type RiskResult struct {
	Position   float64  `json:"position"`
	Label      string   `json:"label"`
	Confidence float64  `json:"confidence"`
	Evidence   []string `json:"evidence"`
	Reasoning  string   `json:"reasoning"`
}

// WickednessResult classifies wickedness and tracks which of the ten wicked
// characteristics apply.
type WickednessResult struct {
	Level           string   `json:"wickedness_level"`
	Confidence      float64  `json:"confidence"`
	Characteristics []int    `json:"wicked_characteristics"`
	Evidence        []string `json:"evidence"`
	Reasoning       string   `json:"reasoning"`
}

// Pyramid analysis types.

// Bucket is one MECE line of reasoning in the pyramid's middle layer.
type Bucket struct {
	Label   string   `json:"label"`
	Summary string   `json:"summary"`
	Signals []string `json:"signals,omitempty"`
}

// Pyramid is the three-layer logical decomposition of a conversation.
type Pyramid struct {
	TopIssue      string   `json:"top_issue"`
	MiddleBuckets []Bucket `json:"middle_buckets"`
	BaseEvidence  []string `json:"base_evidence"`
}

// SCQA is the Situation-Complication-Question-Answer summary.
type SCQA struct {
	Situation       string `json:"situation"`
	Complication    string `json:"complication"`
	Question        string `json:"question"`
	AnswerDirection string `json:"answer_direction"`
}

// ContextMeta captures the conversational meta-analysis attached to a
// pyramid.
type ContextMeta struct {
	ProblemStage    string   `json:"problem_stage"`
	UserIntent      string   `json:"user_intent"`
	KeyEntities     []string `json:"key_entities"`
	AssumptionsMade []string `json:"assumptions_made"`
	GapsIdentified  []string `json:"gaps_identified"`
	EmotionalTone   string   `json:"emotional_tone"`
}

// FrameworkSignals summarizes what kinds of frameworks the analysis calls
// for.
type FrameworkSignals struct {
	NeedsDiscovery  bool   `json:"needs_discovery"`
	NeedsValidation bool   `json:"needs_validation"`
	ProblemTypeFit  string `json:"problem_type_fit"`
	ComplexityFit   string `json:"complexity_fit"`
	SuggestedPhase  string `json:"suggested_phase"`
}

// PyramidAnalysis is the full context-analysis output. DetectedSignals always
// contains PrimarySignal and only entries from the signal vocabulary.
type PyramidAnalysis struct {
	Pyramid          Pyramid          `json:"pyramid"`
	DetectedSignals  []string         `json:"detected_signals"`
	PrimarySignal    string           `json:"primary_signal"`
	SCQA             SCQA             `json:"scqa"`
	ContextAnalysis  ContextMeta      `json:"context_analysis"`
	FrameworkSignals FrameworkSignals `json:"framework_signals"`
}

// Diagnosis types.

// DimensionScore is one classified dimension folded into a profile.
type DimensionScore struct {
	Level      string  `json:"level"`
	Confidence float64 `json:"confidence"`
}

// Knowability is the risk-uncertainty dimension folded into a profile.
type Knowability struct {
	Position float64 `json:"position"`
	Label    string  `json:"label"`
}

// WickednessScore is the wickedness dimension folded into a profile.
type WickednessScore struct {
	Level                string `json:"level"`
	CharacteristicsCount int    `json:"characteristics_count"`
}

// DiagnosisDetail holds the four dimensions in compact form.
type DiagnosisDetail struct {
	Definition  DimensionScore  `json:"definition"`
	Complexity  DimensionScore  `json:"complexity"`
	Knowability Knowability     `json:"knowability"`
	Wickedness  WickednessScore `json:"wickedness"`
}

// Profile names the problem archetype and the recommended approach.
type Profile struct {
	Name                string          `json:"name"`
	Summary             string          `json:"summary"`
	Diagnosis           DiagnosisDetail `json:"diagnosis"`
	OverallDifficulty   string          `json:"overall_difficulty"`
	RecommendedApproach string          `json:"recommended_approach"`
	FrameworkMatches    []string        `json:"framework_matches,omitempty"`
}

// ResearchAdvice says whether external research would help right now.
type ResearchAdvice struct {
	Recommended    bool     `json:"recommended"`
	Urgency        string   `json:"urgency"`
	Reason         string   `json:"reason"`
	SuggestedFocus []string `json:"suggested_focus"`
}

// UIState is the flat projection of the diagnosis that drives dashboards.
type UIState struct {
	Definition         string  `json:"definition"`
	Complexity         string  `json:"complexity"`
	RiskUncertainty    float64 `json:"risk_uncertainty"`
	Wickedness         string  `json:"wickedness"`
	ShowResearchPrompt bool    `json:"show_research_prompt"`
	ResearchPromptText string  `json:"research_prompt_text"`
}

// Diagnosis is the consolidated output of the four classifiers.
type Diagnosis struct {
	Profile   Profile        `json:"profile"`
	Research  ResearchAdvice `json:"research"`
	UIUpdates UIState        `json:"ui_updates"`
}

// Recommendation types.

// FrameworkData is the catalog detail attached to an enriched
// recommendation.
type FrameworkData struct {
	Title            string                `json:"title"`
	Definition       string                `json:"definition"`
	KeyQuestions     []string              `json:"key_questions"`
	OutputStructure  []catalog.OutputField `json:"output_structure"`
	RequiredConcepts []string              `json:"required_concepts,omitempty"`
}

// Recommendation is one suggested framework with its justification.
type Recommendation struct {
	FrameworkID    string         `json:"framework_id"`
	Title          string         `json:"title"`
	RelevanceScore float64        `json:"relevance_score"`
	Rationale      string         `json:"rationale"`
	Phase          string         `json:"phase"`
	SignalsMatched []string       `json:"signals_matched"`
	FullData       *FrameworkData `json:"full_data,omitempty"`
}

// RecommendationSet is the recommender output. Frameworks always holds 3 to 7
// entries with unique ids that resolve against the catalog.
type RecommendationSet struct {
	Frameworks            []Recommendation `json:"recommended_frameworks"`
	SelectionReasoning    string           `json:"selection_reasoning"`
	PrimaryRecommendation string           `json:"primary_recommendation"`
}

// Framework execution types.

// QuestionAnswer is one framework key question with its analysis.
type QuestionAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Evidence string `json:"evidence"`
}

// FrameworkAnalysis is the structured body of a framework execution.
type FrameworkAnalysis struct {
	Summary              string            `json:"summary"`
	KeyQuestionsAnswered []QuestionAnswer  `json:"key_questions_answered"`
	FrameworkOutput      map[string]string `json:"framework_output"`
	Insights             []string          `json:"insights"`
	Opportunities        []string          `json:"opportunities"`
	RisksOrGaps          []string          `json:"risks_or_gaps"`
	NextSteps            []string          `json:"recommended_next_steps"`
}

// FrameworkResult is one framework execution outcome. Error is set when the
// execution degraded or failed; a result with a nil Analysis carries only the
// error.
type FrameworkResult struct {
	FrameworkID      string             `json:"framework_id"`
	FrameworkTitle   string             `json:"framework_title"`
	Analysis         *FrameworkAnalysis `json:"framework_analysis"`
	MethodologyNotes string             `json:"methodology_notes,omitempty"`
	Confidence       float64            `json:"confidence_level"`
	NeedsMoreInfo    []string           `json:"needs_more_info,omitempty"`
	Citations        []Citation         `json:"citations"`
	Error            string             `json:"error,omitempty"`
}

// BatchResult is the output of a parallel execution run. Partial is set when
// the run was cancelled before every framework finished.
type BatchResult struct {
	Results []FrameworkResult `json:"results"`
	Partial bool              `json:"partial"`
}

// Consolidated report types.

// TopInsight is a cross-framework finding ranked into the report.
type TopInsight struct {
	Insight          string   `json:"insight"`
	SourceFrameworks []string `json:"source_frameworks"`
	Confidence       float64  `json:"confidence"`
	Evidence         string   `json:"evidence"`
}

// ConvergencePoint marks agreement across frameworks.
type ConvergencePoint struct {
	Point             string   `json:"point"`
	FrameworksAligned []string `json:"frameworks_aligned"`
	Implication       string   `json:"implication"`
}

// FrameworkView is one side of a divergence.
type FrameworkView struct {
	Name string `json:"name"`
	View string `json:"view"`
}

// DivergencePoint marks tension between two frameworks.
type DivergencePoint struct {
	Point      string        `json:"point"`
	FrameworkA FrameworkView `json:"framework_a"`
	FrameworkB FrameworkView `json:"framework_b"`
	Resolution string        `json:"resolution"`
}

// RankedOpportunity is an opportunity attributed to its source framework.
type RankedOpportunity struct {
	Opportunity   string `json:"opportunity"`
	FromFramework string `json:"from_framework"`
	Priority      string `json:"priority"`
}

// RankedRisk is a risk or gap attributed to its source framework.
type RankedRisk struct {
	RiskOrGap     string `json:"risk_or_gap"`
	FromFramework string `json:"from_framework"`
	Mitigation    string `json:"mitigation"`
}

// NextStep is one recommended action in the consolidated report.
type NextStep struct {
	Action         string `json:"action"`
	Rationale      string `json:"rationale"`
	FrameworkBasis string `json:"framework_basis"`
}

// ReportBody is the narrative core of a consolidated report.
type ReportBody struct {
	ExecutiveSummary      string              `json:"executive_summary"`
	TopInsights           []TopInsight        `json:"top_insights"`
	ConvergencePoints     []ConvergencePoint  `json:"convergence_points"`
	DivergencePoints      []DivergencePoint   `json:"divergence_points"`
	Opportunities         []RankedOpportunity `json:"opportunities"`
	RisksAndGaps          []RankedRisk        `json:"risks_and_gaps"`
	UnifiedRecommendation string              `json:"unified_recommendation"`
	NextSteps             []NextStep          `json:"next_steps"`
}

// FrameworkContribution credits each framework's unique addition.
type FrameworkContribution struct {
	FrameworkID     string `json:"framework_id"`
	FrameworkTitle  string `json:"framework_title"`
	KeyContribution string `json:"key_contribution"`
	BestInsight     string `json:"best_insight"`
}

// AnalysisQuality summarizes how complete the consolidation is.
type AnalysisQuality struct {
	FrameworksUsed      int      `json:"frameworks_used"`
	TotalInsights       int      `json:"total_insights"`
	ConvergenceStrength string   `json:"convergence_strength"`
	GapsRemaining       []string `json:"gaps_remaining"`
}

// ConsolidatedReport merges several framework results into one narrative.
type ConsolidatedReport struct {
	Report            ReportBody              `json:"consolidated_report"`
	Contributions     []FrameworkContribution `json:"framework_contributions"`
	AllCitations      []Citation              `json:"all_citations"`
	OverallConfidence float64                 `json:"overall_confidence"`
	Quality           AnalysisQuality         `json:"analysis_quality"`
}

// Research types.

// ResearchContext is the phase-one framing of what to research.
type ResearchContext struct {
	CoreQuestion        string   `json:"core_question"`
	UserHypothesis      string   `json:"user_hypothesis"`
	NeedsValidation     []string `json:"needs_validation"`
	NeedsChallenging    []string `json:"needs_challenging"`
	PotentialBlindSpots []string `json:"potential_blind_spots"`
	IndustryContext     string   `json:"industry_context"`
	UserStage           string   `json:"user_stage"`
}

// ResearchSource is one indexed source collected during search.
type ResearchSource struct {
	Index   int    `json:"index"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
	Query   string `json:"query"`
}

// ResearchFraming restates the research angle inside the synthesis.
type ResearchFraming struct {
	CoreQuestion   string `json:"core_question"`
	UserHypothesis string `json:"user_hypothesis"`
	ResearchAngle  string `json:"research_angle"`
}

// CitationEntry is one ranked row of the citation table.
type CitationEntry struct {
	Rank             int     `json:"rank"`
	Title            string  `json:"title"`
	URL              string  `json:"url"`
	SourceType       string  `json:"source_type"`
	RelevanceScore   float64 `json:"relevance_score"`
	CredibilityScore float64 `json:"credibility_score"`
	KeyQuote         string  `json:"key_quote"`
	Finding          string  `json:"finding"`
	Reasoning        string  `json:"reasoning"`
	Stance           string  `json:"stance"`
}

// ValidationFinding supports something the user believes.
type ValidationFinding struct {
	Claim       string `json:"claim"`
	Evidence    string `json:"evidence"`
	SourceRefs  []int  `json:"source_refs"`
	Confidence  string `json:"confidence"`
	Implication string `json:"implication"`
}

// ChallengeFinding contradicts something the user believes.
type ChallengeFinding struct {
	Claim           string `json:"claim"`
	CounterEvidence string `json:"counter_evidence"`
	SourceRefs      []int  `json:"source_refs"`
	Severity        string `json:"severity"`
	HowToAddress    string `json:"how_to_address"`
}

// ValidationEvidence groups confirming findings.
type ValidationEvidence struct {
	Summary  string              `json:"summary"`
	Findings []ValidationFinding `json:"findings"`
}

// ChallengeEvidence groups contradicting findings.
type ChallengeEvidence struct {
	Summary  string             `json:"summary"`
	Findings []ChallengeFinding `json:"findings"`
}

// AlternativePerspective offers a different framing surfaced by research.
type AlternativePerspective struct {
	Perspective string `json:"perspective"`
	SourceRefs  []int  `json:"source_refs"`
	Value       string `json:"value"`
	Application string `json:"application"`
}

// BlindSpot is something the user may not be considering.
type BlindSpot struct {
	BlindSpot       string `json:"blind_spot"`
	WhyItMatters    string `json:"why_it_matters"`
	SuggestedAction string `json:"suggested_action"`
}

// SynthesisInsight connects multiple sources into one non-obvious finding.
type SynthesisInsight struct {
	Insight         string `json:"insight"`
	SourcesCombined []int  `json:"sources_combined"`
	Reasoning       string `json:"reasoning"`
}

// ResearchQuality reports coverage and gaps of the research run.
type ResearchQuality struct {
	Coverage            string   `json:"coverage"`
	Gaps                []string `json:"gaps"`
	ConfidenceLevel     string   `json:"confidence_level"`
	RecommendedFollowUp []string `json:"recommended_follow_up"`
}

// ActionableRecommendation is one research-backed action.
type ActionableRecommendation struct {
	Recommendation  string `json:"recommendation"`
	BasedOn         string `json:"based_on"`
	Priority        string `json:"priority"`
	ExpectedOutcome string `json:"expected_outcome"`
}

// ResearchSynthesis is the full three-phase research output.
type ResearchSynthesis struct {
	ResearchContext         ResearchFraming            `json:"research_context"`
	ExecutiveSummary        string                     `json:"executive_summary"`
	CitationTable           []CitationEntry            `json:"citation_table"`
	ValidationEvidence      ValidationEvidence         `json:"validation_evidence"`
	ChallengeEvidence       ChallengeEvidence          `json:"challenge_evidence"`
	AlternativePerspectives []AlternativePerspective   `json:"alternative_perspectives"`
	BlindSpots              []BlindSpot                `json:"blind_spots_identified"`
	SynthesisInsights       []SynthesisInsight         `json:"synthesis_insights"`
	Quality                 ResearchQuality            `json:"research_quality"`
	Recommendations         []ActionableRecommendation `json:"actionable_recommendations"`
	RawSources              []ResearchSource           `json:"raw_sources"`
	Context                 *ResearchContext           `json:"context_analysis,omitempty"`
}
