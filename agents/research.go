package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"problem-navigator/llm"
	"problem-navigator/search"
)

// Research limits. Queries are capped before searching; each source excerpt
// is capped before synthesis.
const (
	maxResearchQueries    = 7
	sourceExcerptLimit    = 800
	fallbackCitationLimit = 8
)

// ResearchAgent runs the three-phase research workflow: context framing,
// query generation, then search and synthesis.
type ResearchAgent struct {
	client  llm.Client
	model   string
	search  *search.Client
	fetcher *search.PageFetcher
}

func NewResearchAgent(client llm.Client, searchClient *search.Client) *ResearchAgent {
	return &ResearchAgent{
		client:  client,
		model:   ModelSynthesis,
		search:  searchClient,
		fetcher: search.NewPageFetcher(),
	}
}

// Research runs all three phases and returns a synthesis. Every phase
// degrades rather than fails, so an unconfigured search provider still yields
// a structured (if empty) result.
func (r *ResearchAgent) Research(ctx context.Context, conversation []Message, diagnosis *Diagnosis) *ResearchSynthesis {
	framing := r.AnalyzeContext(ctx, conversation, diagnosis)
	queries := r.GenerateQueries(ctx, framing)
	searchResults := r.ExecuteSearches(ctx, queries)
	return r.Synthesize(ctx, framing, searchResults)
}

// AnalyzeContext frames what research would be most valuable for this
// conversation. Falls back to a generic exploration framing on failure.
func (r *ResearchAgent) AnalyzeContext(ctx context.Context, conversation []Message, diagnosis *Diagnosis) *ResearchContext {
	profileName := "Unknown"
	definition, complexity, wickedness := "undefined", "complex", "messy"
	if diagnosis != nil {
		profileName = diagnosis.Profile.Name
		definition = diagnosis.UIUpdates.Definition
		complexity = diagnosis.UIUpdates.Complexity
		wickedness = diagnosis.UIUpdates.Wickedness
	}

	prompt := fmt.Sprintf(`
Analyze this conversation to understand what research would be most valuable.

CONVERSATION:
%s

DIAGNOSIS:
- Problem Name: %s
- Definition Level: %s
- Complexity: %s
- Wickedness: %s

Identify:
1. The core question/challenge the user is facing
2. What the user seems to believe or assume
3. What aspects need validation
4. What aspects should be challenged
5. What blind spots might exist

Respond with JSON only:
{
  "core_question": "The central question",
  "user_hypothesis": "What user believes/assumes",
  "needs_validation": ["aspect 1", "aspect 2"],
  "needs_challenging": ["assumption 1", "assumption 2"],
  "potential_blind_spots": ["blind spot 1"],
  "industry_context": "Relevant industry/domain",
  "user_stage": "exploring | defining | validating | implementing"
}
`, formatFull(conversation, researchWindow), profileName, definition, complexity, wickedness)

	resp, err := r.client.Generate(ctx, r.model, prompt)
	if err == nil {
		var framing ResearchContext
		if err := json.Unmarshal([]byte(cleanJSON(resp.Content)), &framing); err == nil && framing.CoreQuestion != "" {
			return &framing
		}
	}

	return &ResearchContext{
		CoreQuestion:        "Understanding the problem space",
		UserHypothesis:      "Initial exploration",
		NeedsValidation:     []string{"Market demand", "Solution feasibility"},
		NeedsChallenging:    []string{"Assumptions about users"},
		PotentialBlindSpots: []string{"Competition", "Alternative solutions"},
		IndustryContext:     "General",
		UserStage:           "exploring",
	}
}

// GenerateQueries produces 5-7 targeted queries split across validation,
// challenge, and blind-spot angles. Falls back to template queries built from
// the framing.
func (r *ResearchAgent) GenerateQueries(ctx context.Context, framing *ResearchContext) []string {
	prompt := fmt.Sprintf(`
Generate 5-7 highly specific search queries to research this challenge.

CORE QUESTION: %s
USER'S HYPOTHESIS: %s
INDUSTRY: %s

NEEDS VALIDATION: %s
NEEDS CHALLENGING: %s
POTENTIAL BLIND SPOTS: %s

Create queries that:
1. Validate the user's direction (2 queries)
2. Challenge assumptions with counter-evidence (2 queries)
3. Explore blind spots and alternatives (2-3 queries)

Be SPECIFIC - include industry terms, specific metrics, case studies.
Avoid generic queries like "how to validate ideas".

Respond with JSON array only: ["query 1", "query 2", ...]
`, framing.CoreQuestion, framing.UserHypothesis, framing.IndustryContext,
		strings.Join(framing.NeedsValidation, ", "),
		strings.Join(framing.NeedsChallenging, ", "),
		strings.Join(framing.PotentialBlindSpots, ", "))

	resp, err := r.client.Generate(ctx, r.model, prompt)
	if err == nil {
		var queries []string
		if err := json.Unmarshal([]byte(cleanJSON(resp.Content)), &queries); err == nil && len(queries) > 0 {
			if len(queries) > maxResearchQueries {
				queries = queries[:maxResearchQueries]
			}
			return queries
		}
	}

	return []string{
		framing.CoreQuestion + " market research",
		framing.CoreQuestion + " case studies",
		framing.CoreQuestion + " challenges failures",
		framing.UserHypothesis + " validation data",
		framing.IndustryContext + " trends 2024 2025",
	}
}

// ExecuteSearches runs every query against the search provider. Each query
// produces a result even on failure; an unconfigured provider marks every
// query accordingly.
func (r *ResearchAgent) ExecuteSearches(ctx context.Context, queries []string) []search.QueryResult {
	results := make([]search.QueryResult, 0, len(queries))

	if r.search == nil || !r.search.Configured() {
		for _, query := range queries {
			results = append(results, search.QueryResult{
				Query:   query,
				Results: []search.Result{},
				Err:     "search API key not configured",
			})
		}
		return results
	}

	for _, query := range queries {
		result, err := r.search.Search(ctx, query)
		if err != nil {
			results = append(results, search.QueryResult{
				Query:   query,
				Results: []search.Result{},
				Err:     err.Error(),
			})
			continue
		}
		r.enrichRawContent(ctx, result)
		results = append(results, *result)
	}
	return results
}

// enrichRawContent fetches page text for hits that came back without raw
// content. Best effort; a failed fetch leaves the snippet in place.
func (r *ResearchAgent) enrichRawContent(ctx context.Context, result *search.QueryResult) {
	if r.fetcher == nil {
		return
	}
	for i := range result.Results {
		hit := &result.Results[i]
		if hit.RawContent != "" || hit.URL == "" {
			continue
		}
		text, err := r.fetcher.FetchPageText(ctx, hit.URL)
		if err != nil {
			continue
		}
		hit.RawContent = text
	}
}

// Synthesize runs the phase-three critical analysis over the collected
// sources. Falls back to a discovery-order citation table on failure.
func (r *ResearchAgent) Synthesize(ctx context.Context, framing *ResearchContext, searchResults []search.QueryResult) *ResearchSynthesis {
	var resultsText strings.Builder
	var sources []ResearchSource

	for _, sr := range searchResults {
		fmt.Fprintf(&resultsText, "\n\n=== QUERY: %s ===\n", sr.Query)
		if sr.Answer != "" {
			fmt.Fprintf(&resultsText, "SEARCH ANSWER: %s\n", sr.Answer)
		}
		if sr.Err != "" {
			fmt.Fprintf(&resultsText, "ERROR: %s\n", sr.Err)
		}

		for _, hit := range sr.Results {
			content := hit.RawContent
			if content == "" {
				content = hit.Content
			}
			content = truncate(content, sourceExcerptLimit)

			index := len(sources) + 1
			fmt.Fprintf(&resultsText, `
[SOURCE %d]
TITLE: %s
URL: %s
CONTENT: %s
---
`, index, hit.Title, hit.URL, content)

			sources = append(sources, ResearchSource{
				Index:   index,
				Title:   hit.Title,
				URL:     hit.URL,
				Content: content,
				Query:   sr.Query,
			})
		}
	}

	prompt := fmt.Sprintf(`
%s

# User Context
CORE QUESTION: %s
USER HYPOTHESIS: %s
NEEDS VALIDATION: %s
NEEDS CHALLENGING: %s
BLIND SPOTS: %s
USER STAGE: %s

# Search Results (%d sources)
%s

Analyze these sources and create a comprehensive research synthesis.
Focus on THIS user's specific situation - not generic advice.
Respond with ONLY the JSON object, no markdown.
`, researchSynthesisPrompt,
		framing.CoreQuestion, framing.UserHypothesis,
		strings.Join(framing.NeedsValidation, ", "),
		strings.Join(framing.NeedsChallenging, ", "),
		strings.Join(framing.PotentialBlindSpots, ", "),
		framing.UserStage, len(sources), resultsText.String())

	resp, err := r.client.Generate(ctx, r.model, prompt)
	if err != nil {
		return fallbackSynthesis(framing, sources)
	}

	var synthesis ResearchSynthesis
	if err := json.Unmarshal([]byte(cleanJSON(resp.Content)), &synthesis); err != nil || synthesis.ExecutiveSummary == "" {
		return fallbackSynthesis(framing, sources)
	}

	synthesis.RawSources = sources
	synthesis.Context = framing
	return &synthesis
}

// fallbackSynthesis ranks the collected sources in discovery order with flat
// scores when the synthesis call fails.
func fallbackSynthesis(framing *ResearchContext, sources []ResearchSource) *ResearchSynthesis {
	table := []CitationEntry{}
	for i, source := range sources {
		if i >= fallbackCitationLimit {
			break
		}
		table = append(table, CitationEntry{
			Rank:             i + 1,
			Title:            source.Title,
			URL:              source.URL,
			SourceType:       "Web Source",
			RelevanceScore:   7.0,
			CredibilityScore: 6.0,
			KeyQuote:         truncate(source.Content, 150) + "...",
			Finding:          fmt.Sprintf("Information related to: %s", source.Query),
			Reasoning:        "Source found during research",
			Stance:           "nuances",
		})
	}

	blindSpots := make([]BlindSpot, 0, len(framing.PotentialBlindSpots))
	for _, spot := range framing.PotentialBlindSpots {
		blindSpots = append(blindSpots, BlindSpot{
			BlindSpot:       spot,
			WhyItMatters:    "Identified during context analysis",
			SuggestedAction: "Investigate in follow-up research",
		})
	}

	return &ResearchSynthesis{
		ResearchContext: ResearchFraming{
			CoreQuestion:   framing.CoreQuestion,
			UserHypothesis: framing.UserHypothesis,
			ResearchAngle:  "General exploration",
		},
		ExecutiveSummary: fmt.Sprintf("Found %d relevant sources. Review the citation table for detailed findings.", len(sources)),
		CitationTable:    table,
		ValidationEvidence: ValidationEvidence{
			Summary:  "Review sources for validation evidence",
			Findings: []ValidationFinding{},
		},
		ChallengeEvidence: ChallengeEvidence{
			Summary:  "Review sources for challenging perspectives",
			Findings: []ChallengeFinding{},
		},
		AlternativePerspectives: []AlternativePerspective{},
		BlindSpots:              blindSpots,
		SynthesisInsights:       []SynthesisInsight{},
		Quality: ResearchQuality{
			Coverage:            "Partial",
			Gaps:                []string{"Full synthesis unavailable"},
			ConfidenceLevel:     "medium",
			RecommendedFollowUp: []string{},
		},
		Recommendations: []ActionableRecommendation{
			{
				Recommendation:  "Review the sources in the citation table",
				BasedOn:         "Research results",
				Priority:        "immediate",
				ExpectedOutcome: "Better understanding of the problem space",
			},
		},
		RawSources: sources,
		Context:    framing,
	}
}
