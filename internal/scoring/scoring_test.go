package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleRepos() []RepoAggregate {
	return []RepoAggregate{
		{
			TestFileRatio: 0.3, ErrorHandlingDensity: 0.6, ModernSyntaxRatio: 0.8,
			TypeSafetyRatio: 0.7, DocumentationDensity: 0.5, AvgComplexity: 7,
			ReadmeQuality: 4, CICDMaturity: 2, HasLockfile: true, HasLintConfig: true,
			HasLicense: true, Languages: []string{"Go", "TypeScript"}, Frameworks: []string{"gin"},
			SizeAboveFloor: true,
		},
		{
			TestFileRatio: 0.1, ErrorHandlingDensity: 0.2, ModernSyntaxRatio: 0.4,
			TypeSafetyRatio: 0.3, DocumentationDensity: 0.1, AvgComplexity: 15,
			ReadmeQuality: 1, CICDMaturity: 0, HasLockfile: false, HasLintConfig: false,
			HasLicense: false, Languages: []string{"Python"}, Frameworks: nil,
			SizeAboveFloor: false,
		},
	}
}

func TestScore_Deterministic(t *testing.T) {
	repos := sampleRepos()
	activity := ActivitySummary{CommitsLast30d: 12, CommitsLast90d: 40, WeeksActive: 10}

	first := Score(repos, activity)
	second := Score(repos, activity)

	assert.Equal(t, first, second, "scoring must be deterministic given identical inputs")
}

func TestScore_CategoriesWithinBounds(t *testing.T) {
	repos := sampleRepos()
	activity := ActivitySummary{CommitsLast30d: 12, CommitsLast90d: 40, WeeksActive: 10}

	s := Score(repos, activity)

	assert.GreaterOrEqual(t, s.CodeSophistication, 0.0)
	assert.LessOrEqual(t, s.CodeSophistication, 25.0)
	assert.GreaterOrEqual(t, s.EngineeringPractices, 0.0)
	assert.LessOrEqual(t, s.EngineeringPractices, 25.0)
	assert.GreaterOrEqual(t, s.ProjectMaturity, 0.0)
	assert.LessOrEqual(t, s.ProjectMaturity, 20.0)
	assert.GreaterOrEqual(t, s.ContributionActivity, 0.0)
	assert.LessOrEqual(t, s.ContributionActivity, 15.0)
	assert.GreaterOrEqual(t, s.BreadthAndDepth, 0.0)
	assert.LessOrEqual(t, s.BreadthAndDepth, 15.0)
	assert.GreaterOrEqual(t, s.OverallScore, 0.0)
	assert.LessOrEqual(t, s.OverallScore, 100.0)
}

func TestScore_EmptyReposYieldsZero(t *testing.T) {
	s := Score(nil, ActivitySummary{})
	assert.Equal(t, 0.0, s.OverallScore)
	assert.Equal(t, "Entry", s.OverallLevel)
}

func TestLevelBoundaries(t *testing.T) {
	cases := []struct {
		composite float64
		want      string
	}{
		{0, "Entry"}, {19.99, "Entry"}, {20, "Junior"}, {39.99, "Junior"},
		{40, "Mid-Level"}, {59.99, "Mid-Level"}, {60, "Senior"}, {79.99, "Senior"},
		{80, "Expert"}, {100, "Expert"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, levelFor(c.composite), "composite=%v", c.composite)
	}
}

func TestWeightedViewsAreNormalizedTo100(t *testing.T) {
	categories := map[string]float64{
		"code_sophistication":   25,
		"engineering_practices": 25,
		"project_maturity":      20,
		"contribution_activity": 15,
		"breadth_and_depth":     15,
	}
	assert.InDelta(t, 100.0, weightedView(categories, jobReadinessWeights), 0.01)
	assert.InDelta(t, 100.0, weightedView(categories, techDepthWeights), 0.01)
}

func TestProjectMaturityRating_NoRepos(t *testing.T) {
	assert.Equal(t, "unknown", ProjectMaturityRating(nil))
}
