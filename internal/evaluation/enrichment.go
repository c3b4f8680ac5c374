package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/oncodeoperations/artemis-core/internal/domain"
	"github.com/oncodeoperations/artemis-core/internal/ports"
)

const enrichmentTemperature = 0.2

type enrichmentPayload struct {
	RecruiterSummary  *domain.RecruiterSummary  `json:"recruiter_summary"`
	EngineerBreakdown *domain.EngineerBreakdown `json:"engineer_breakdown"`
}

// Enrich runs the single JSON-mode chat completion of spec §4.1 step
// 7, feeding the profile, per-repo metrics, curated code samples and
// pre-computed scores as context. A model response that is partial or
// slightly malformed is defaulted rather than failing the pipeline,
// per the spec's explicit defaulting-rules requirement.
func Enrich(ctx context.Context, llm ports.LLM, profile domain.Profile, analyses []RepoAnalysis, scores domain.Scores) (domain.RecruiterSummary, domain.EngineerBreakdown) {
	prompt := buildEnrichmentPrompt(profile, analyses, scores)

	raw, err := llm.Chat(ctx, []ports.ChatMessage{
		{Role: ports.ChatRoleSystem, Content: enrichmentSystemPrompt},
		{Role: ports.ChatRoleUser, Content: prompt},
	}, ports.ChatOptions{Temperature: enrichmentTemperature, JSONMode: true, MaxTokens: 2000})

	if err != nil {
		return defaultRecruiterSummary(scores), defaultEngineerBreakdown()
	}

	var payload enrichmentPayload
	if jsonErr := json.Unmarshal([]byte(raw), &payload); jsonErr != nil {
		return defaultRecruiterSummary(scores), defaultEngineerBreakdown()
	}

	summary := defaultRecruiterSummary(scores)
	if payload.RecruiterSummary != nil {
		summary = fillRecruiterSummaryDefaults(*payload.RecruiterSummary, scores)
	}

	breakdown := defaultEngineerBreakdown()
	if payload.EngineerBreakdown != nil {
		breakdown = fillEngineerBreakdownDefaults(*payload.EngineerBreakdown)
	}

	return summary, breakdown
}

const enrichmentSystemPrompt = `You are a senior technical recruiter and staff engineer reviewing a candidate's public code portfolio. Respond with a single JSON object with two keys: "recruiter_summary" and "engineer_breakdown", matching the schema you have been given. Be specific and reference actual repository names and patterns you observe. Do not include any text outside the JSON object.`

func buildEnrichmentPrompt(profile domain.Profile, analyses []RepoAnalysis, scores domain.Scores) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Candidate: %s (%s)\n", profile.Name, profile.Username)
	fmt.Fprintf(&b, "Primary languages: %s\n", strings.Join(profile.PrimaryLanguages, ", "))
	fmt.Fprintf(&b, "Activity status: %s\n\n", profile.ActivityStatus)

	fmt.Fprintf(&b, "Pre-computed scores: overall=%.1f level=%s code_sophistication=%.1f engineering_practices=%.1f project_maturity=%.1f contribution_activity=%.1f breadth_and_depth=%.1f\n\n",
		scores.OverallScore, scores.OverallLevel, scores.CodeSophistication, scores.EngineeringPractices,
		scores.ProjectMaturity, scores.ContributionActivity, scores.BreadthAndDepth)

	b.WriteString("Repositories analyzed:\n")
	for _, a := range analyses {
		fmt.Fprintf(&b, "- %s: languages=%v frameworks=%v test_ratio=%.2f readme_quality=%.0f\n",
			a.Repo.Name, a.Aggregate.Languages, a.Aggregate.Frameworks, a.Aggregate.TestFileRatio, a.Aggregate.ReadmeQuality)
		for _, sample := range a.CodeSamples {
			if len(sample) > 800 {
				sample = sample[:800]
			}
			fmt.Fprintf(&b, "  sample:\n%s\n", sample)
		}
	}

	return b.String()
}

func defaultRecruiterSummary(scores domain.Scores) domain.RecruiterSummary {
	return domain.RecruiterSummary{
		TopStrengths:          []string{},
		RisksOrWeaknesses:     []string{},
		RecommendedRoleLevel:  scores.OverallLevel,
		HiringReadiness:       scores.HiringReadiness,
		ProjectMaturityRating: "unknown",
		PortfolioReadiness:    "needs_review",
	}
}

func fillRecruiterSummaryDefaults(s domain.RecruiterSummary, scores domain.Scores) domain.RecruiterSummary {
	if s.TopStrengths == nil {
		s.TopStrengths = []string{}
	}
	if s.RisksOrWeaknesses == nil {
		s.RisksOrWeaknesses = []string{}
	}
	if s.RecommendedRoleLevel == "" {
		s.RecommendedRoleLevel = scores.OverallLevel
	}
	if s.HiringReadiness == "" {
		s.HiringReadiness = scores.HiringReadiness
	}
	if s.ProjectMaturityRating == "" {
		s.ProjectMaturityRating = "unknown"
	}
	if s.PortfolioReadiness == "" {
		s.PortfolioReadiness = "needs_review"
	}
	return s
}

func defaultEngineerBreakdown() domain.EngineerBreakdown {
	return domain.EngineerBreakdown{
		CodePatterns:           []string{},
		ArchitectureAnalysis:   []string{},
		TestingAnalysis:        domain.TestingAnalysis{Maturity: "unknown", Details: "not assessed"},
		ComplexityInsights:     []string{},
		CommitMessageQuality:   "unknown",
		LanguageBreakdown:      map[string]domain.LanguageBreakdownEntry{},
		RepoLevelDetails:       []domain.RepoLevelDetail{},
		NotableImplementations: []string{},
		ImprovementAreas:       []string{},
		InterviewProbes:        []string{},
	}
}

func fillEngineerBreakdownDefaults(b domain.EngineerBreakdown) domain.EngineerBreakdown {
	d := defaultEngineerBreakdown()
	if b.CodePatterns != nil {
		d.CodePatterns = b.CodePatterns
	}
	if b.ArchitectureAnalysis != nil {
		d.ArchitectureAnalysis = b.ArchitectureAnalysis
	}
	if b.TestingAnalysis.Maturity != "" {
		d.TestingAnalysis = b.TestingAnalysis
	}
	if b.ComplexityInsights != nil {
		d.ComplexityInsights = b.ComplexityInsights
	}
	if b.CommitMessageQuality != "" {
		d.CommitMessageQuality = b.CommitMessageQuality
	}
	if b.LanguageBreakdown != nil {
		d.LanguageBreakdown = b.LanguageBreakdown
	}
	if b.RepoLevelDetails != nil {
		d.RepoLevelDetails = b.RepoLevelDetails
	}
	if b.NotableImplementations != nil {
		d.NotableImplementations = b.NotableImplementations
	}
	if b.ImprovementAreas != nil {
		d.ImprovementAreas = b.ImprovementAreas
	}
	if b.InterviewProbes != nil {
		d.InterviewProbes = b.InterviewProbes
	}
	return d
}
