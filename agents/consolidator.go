package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"problem-navigator/llm"
)

// FrameworkConsolidator merges parallel framework results into one report.
type FrameworkConsolidator struct {
	client llm.Client
	model  string
}

func NewFrameworkConsolidator(client llm.Client) *FrameworkConsolidator {
	return &FrameworkConsolidator{client: client, model: ModelSynthesis}
}

// Consolidate merges the framework results. Zero results yield a fixed empty
// report, a single result passes through without a model call, and multiple
// results are synthesized with a deterministic citation merge and convergence
// check. Never fails.
func (c *FrameworkConsolidator) Consolidate(ctx context.Context, results []FrameworkResult, pyramid *PyramidAnalysis) *ConsolidatedReport {
	if len(results) == 0 {
		return emptyReport()
	}
	if len(results) == 1 {
		return singleFrameworkReport(results[0])
	}

	prompt := c.buildPrompt(results, pyramid)

	resp, err := c.client.Generate(ctx, c.model, prompt)
	if err != nil {
		return fallbackReport(results)
	}

	var report ConsolidatedReport
	if err := json.Unmarshal([]byte(cleanJSON(resp.Content)), &report); err != nil || report.Report.ExecutiveSummary == "" {
		return fallbackReport(results)
	}

	// The citation merge is always deterministic regardless of what the
	// model echoed back.
	report.AllCitations = MergeCitations(results)
	ensureConvergence(&report, results)
	report.Quality.FrameworksUsed = len(results)
	return &report
}

func (c *FrameworkConsolidator) buildPrompt(results []FrameworkResult, pyramid *PyramidAnalysis) string {
	var frameworks strings.Builder
	var names []string
	for _, result := range results {
		names = append(names, result.FrameworkTitle)
		if result.Analysis == nil {
			continue
		}
		analysis := result.Analysis
		insights, _ := json.MarshalIndent(analysis.Insights, "", "  ")
		opportunities, _ := json.MarshalIndent(analysis.Opportunities, "", "  ")
		risks, _ := json.MarshalIndent(analysis.RisksOrGaps, "", "  ")
		steps, _ := json.MarshalIndent(analysis.NextSteps, "", "  ")

		fmt.Fprintf(&frameworks, `
=== %s ===
Summary: %s

Insights:
%s

Opportunities:
%s

Risks/Gaps:
%s

Next Steps:
%s

Confidence: %.2f
---
`, result.FrameworkTitle, analysis.Summary, insights, opportunities, risks, steps, result.Confidence)
	}

	scqa := pyramid.SCQA
	return fmt.Sprintf(`
%s

CONTEXT (SCQA):
- Situation: %s
- Complication: %s
- Question: %s
- Direction: %s

FRAMEWORK ANALYSES TO CONSOLIDATE:
%s

Number of frameworks: %d
Framework names: %s

Consolidate these analyses into a unified report.
Respond with ONLY the JSON object, no markdown formatting.
`, frameworkConsolidatorPrompt,
		scqa.Situation, scqa.Complication, scqa.Question, scqa.AnswerDirection,
		frameworks.String(), len(results), strings.Join(names, ", "))
}

// MergeCitations deduplicates citations by title across framework results,
// recording which frameworks used each source.
func MergeCitations(results []FrameworkResult) []Citation {
	merged := []Citation{}
	byTitle := make(map[string]int)

	for _, result := range results {
		for _, citation := range result.Citations {
			if citation.Title == "" {
				continue
			}
			if idx, ok := byTitle[citation.Title]; ok {
				merged[idx].UsedByFrameworks = append(merged[idx].UsedByFrameworks, result.FrameworkID)
				continue
			}
			citation.UsedByFrameworks = []string{result.FrameworkID}
			byTitle[citation.Title] = len(merged)
			merged = append(merged, citation)
		}
	}
	return merged
}

// ensureConvergence adds convergence points for insights that appear
// verbatim in two or more frameworks when the model reported none.
func ensureConvergence(report *ConsolidatedReport, results []FrameworkResult) {
	if len(report.Report.ConvergencePoints) > 0 {
		return
	}

	frameworksByInsight := make(map[string][]string)
	for _, result := range results {
		if result.Analysis == nil {
			continue
		}
		for _, insight := range result.Analysis.Insights {
			key := strings.ToLower(strings.TrimSpace(insight))
			if key == "" {
				continue
			}
			frameworksByInsight[key] = append(frameworksByInsight[key], result.FrameworkID)
		}
	}

	for _, result := range results {
		if result.Analysis == nil {
			continue
		}
		for _, insight := range result.Analysis.Insights {
			key := strings.ToLower(strings.TrimSpace(insight))
			aligned := frameworksByInsight[key]
			if len(aligned) < 2 {
				continue
			}
			report.Report.ConvergencePoints = append(report.Report.ConvergencePoints, ConvergencePoint{
				Point:             insight,
				FrameworksAligned: aligned,
				Implication:       "Multiple frameworks independently surfaced this finding",
			})
			delete(frameworksByInsight, key)
		}
	}
}

// emptyReport is the fixed response when no frameworks were selected.
func emptyReport() *ConsolidatedReport {
	return &ConsolidatedReport{
		Report: ReportBody{
			ExecutiveSummary:      "No frameworks were selected for analysis.",
			TopInsights:           []TopInsight{},
			ConvergencePoints:     []ConvergencePoint{},
			DivergencePoints:      []DivergencePoint{},
			Opportunities:         []RankedOpportunity{},
			RisksAndGaps:          []RankedRisk{},
			UnifiedRecommendation: "Select one or more frameworks to analyze your problem.",
			NextSteps:             []NextStep{},
		},
		Contributions:     []FrameworkContribution{},
		AllCitations:      []Citation{},
		OverallConfidence: 0.0,
		Quality: AnalysisQuality{
			FrameworksUsed:      0,
			TotalInsights:       0,
			ConvergenceStrength: "low",
			GapsRemaining:       []string{"No analysis performed"},
		},
	}
}

// singleFrameworkReport lifts one result into report shape without a model
// call.
func singleFrameworkReport(result FrameworkResult) *ConsolidatedReport {
	analysis := result.Analysis
	if analysis == nil {
		analysis = &FrameworkAnalysis{}
	}

	confidence := result.Confidence
	if confidence == 0 {
		confidence = 0.7
	}

	insights := analysis.Insights
	if len(insights) > 5 {
		insights = insights[:5]
	}
	topInsights := make([]TopInsight, 0, len(insights))
	for _, insight := range insights {
		topInsights = append(topInsights, TopInsight{
			Insight:          insight,
			SourceFrameworks: []string{result.FrameworkID},
			Confidence:       confidence,
			Evidence:         "From framework analysis",
		})
	}

	opportunities := make([]RankedOpportunity, 0, len(analysis.Opportunities))
	for _, opp := range analysis.Opportunities {
		opportunities = append(opportunities, RankedOpportunity{
			Opportunity:   opp,
			FromFramework: result.FrameworkTitle,
			Priority:      "medium",
		})
	}

	risks := make([]RankedRisk, 0, len(analysis.RisksOrGaps))
	for _, risk := range analysis.RisksOrGaps {
		risks = append(risks, RankedRisk{
			RiskOrGap:     risk,
			FromFramework: result.FrameworkTitle,
			Mitigation:    "Further analysis needed",
		})
	}

	firstStep := "Continue analysis"
	if len(analysis.NextSteps) > 0 {
		firstStep = analysis.NextSteps[0]
	}
	nextSteps := make([]NextStep, 0, len(analysis.NextSteps))
	for _, step := range analysis.NextSteps {
		nextSteps = append(nextSteps, NextStep{
			Action:         step,
			Rationale:      "From framework analysis",
			FrameworkBasis: result.FrameworkTitle,
		})
	}

	summary := analysis.Summary
	if summary == "" {
		summary = "Single framework analysis completed."
	}
	bestInsight := "N/A"
	if len(analysis.Insights) > 0 {
		bestInsight = analysis.Insights[0]
	}

	return &ConsolidatedReport{
		Report: ReportBody{
			ExecutiveSummary:      summary,
			TopInsights:           topInsights,
			ConvergencePoints:     []ConvergencePoint{},
			DivergencePoints:      []DivergencePoint{},
			Opportunities:         opportunities,
			RisksAndGaps:          risks,
			UnifiedRecommendation: fmt.Sprintf("Based on %s analysis: %s", result.FrameworkTitle, firstStep),
			NextSteps:             nextSteps,
		},
		Contributions: []FrameworkContribution{
			{
				FrameworkID:     result.FrameworkID,
				FrameworkTitle:  result.FrameworkTitle,
				KeyContribution: summary,
				BestInsight:     bestInsight,
			},
		},
		AllCitations:      MergeCitations([]FrameworkResult{result}),
		OverallConfidence: confidence,
		Quality: AnalysisQuality{
			FrameworksUsed:      1,
			TotalInsights:       len(analysis.Insights),
			ConvergenceStrength: "low",
			GapsRemaining:       result.NeedsMoreInfo,
		},
	}
}

// fallbackReport concatenates raw findings when the synthesis call fails.
func fallbackReport(results []FrameworkResult) *ConsolidatedReport {
	var allInsights, allOpportunities, allRisks []string
	contributions := make([]FrameworkContribution, 0, len(results))

	for _, result := range results {
		contribution := FrameworkContribution{
			FrameworkID:     result.FrameworkID,
			FrameworkTitle:  result.FrameworkTitle,
			KeyContribution: "Analysis provided",
			BestInsight:     "N/A",
		}
		if result.Analysis != nil {
			allInsights = append(allInsights, result.Analysis.Insights...)
			allOpportunities = append(allOpportunities, result.Analysis.Opportunities...)
			allRisks = append(allRisks, result.Analysis.RisksOrGaps...)
			if result.Analysis.Summary != "" {
				contribution.KeyContribution = result.Analysis.Summary
			}
			if len(result.Analysis.Insights) > 0 {
				contribution.BestInsight = result.Analysis.Insights[0]
			}
		}
		contributions = append(contributions, contribution)
	}

	themes := "Analysis in progress"
	if len(allInsights) > 0 {
		preview := allInsights
		if len(preview) > 3 {
			preview = preview[:3]
		}
		themes = strings.Join(preview, ", ")
	}

	topInsights := []TopInsight{}
	for i, insight := range allInsights {
		if i >= 5 {
			break
		}
		topInsights = append(topInsights, TopInsight{
			Insight:          insight,
			SourceFrameworks: []string{"multiple"},
			Confidence:       0.6,
			Evidence:         "From framework analyses",
		})
	}

	opportunities := []RankedOpportunity{}
	for i, opp := range allOpportunities {
		if i >= 3 {
			break
		}
		opportunities = append(opportunities, RankedOpportunity{
			Opportunity: opp, FromFramework: "Multiple", Priority: "medium",
		})
	}

	risks := []RankedRisk{}
	for i, risk := range allRisks {
		if i >= 3 {
			break
		}
		risks = append(risks, RankedRisk{
			RiskOrGap: risk, FromFramework: "Multiple", Mitigation: "TBD",
		})
	}

	return &ConsolidatedReport{
		Report: ReportBody{
			ExecutiveSummary: fmt.Sprintf("Consolidated analysis from %d frameworks. Key themes: %s",
				len(results), themes),
			TopInsights:           topInsights,
			ConvergencePoints:     []ConvergencePoint{},
			DivergencePoints:      []DivergencePoint{},
			Opportunities:         opportunities,
			RisksAndGaps:          risks,
			UnifiedRecommendation: "Review the individual framework analyses for detailed insights.",
			NextSteps: []NextStep{
				{Action: "Review framework outputs", Rationale: "Consolidation incomplete", FrameworkBasis: "All"},
			},
		},
		Contributions:     contributions,
		AllCitations:      MergeCitations(results),
		OverallConfidence: 0.5,
		Quality: AnalysisQuality{
			FrameworksUsed:      len(results),
			TotalInsights:       len(allInsights),
			ConvergenceStrength: "unknown",
			GapsRemaining:       []string{"Full consolidation incomplete"},
		},
	}
}
