package domain

// ActivityStatus classifies a profile's recent commit cadence.
type ActivityStatus string

const (
	ActivityActive     ActivityStatus = "Active"
	ActivitySemiActive ActivityStatus = "Semi-active"
	ActivityInactive   ActivityStatus = "Inactive"
)

type Profile struct {
	Username             string         `json:"username"`
	Name                 string         `json:"name"`
	Bio                  string         `json:"bio,omitempty"`
	Avatar               string         `json:"avatar,omitempty"`
	Location             string         `json:"location,omitempty"`
	GitHubURL            string         `json:"github_url"`
	PrimaryLanguages     []string       `json:"primary_languages"`
	TotalRepositories    int            `json:"total_repositories"`
	AnalyzedRepositories int            `json:"analyzed_repositories"`
	ActivityStatus       ActivityStatus `json:"activity_status"`
}

type Scores struct {
	OverallLevel          string  `json:"overall_level"`
	OverallScore          float64 `json:"overall_score"`
	MaxScore              int     `json:"max_score"`
	JobReadinessScore     float64 `json:"job_readiness_score"`
	TechDepthScore        float64 `json:"tech_depth_score"`
	HiringReadiness       string  `json:"hiring_readiness"`
	CodeSophistication    float64 `json:"code_sophistication"`
	EngineeringPractices  float64 `json:"engineering_practices"`
	ProjectMaturity       float64 `json:"project_maturity"`
	ContributionActivity  float64 `json:"contribution_activity"`
	BreadthAndDepth       float64 `json:"breadth_and_depth"`
}

type RecruiterSummary struct {
	TopStrengths          []string `json:"top_strengths"`
	RisksOrWeaknesses     []string `json:"risks_or_weaknesses"`
	RecommendedRoleLevel  string   `json:"recommended_role_level"`
	HiringReadiness       string   `json:"hiring_readiness"`
	ProjectMaturityRating string   `json:"project_maturity_rating"`
	PortfolioReadiness    string   `json:"portfolio_readiness"`
}

type TestingAnalysis struct {
	Maturity       string   `json:"maturity"`
	TestPresence   bool     `json:"test_presence"`
	TestFileRatio  float64  `json:"test_file_ratio"`
	TestLibraries  []string `json:"test_libraries_seen"`
	Details        string   `json:"details"`
}

type LanguageBreakdownEntry struct {
	Percentage float64 `json:"percentage"`
	ReposCount int     `json:"repos_count"`
}

type RepoLevelDetail struct {
	RepoName  string   `json:"repo_name"`
	Score     float64  `json:"score"`
	Notes     string   `json:"notes"`
	Languages []string `json:"languages"`
	Complexity float64 `json:"complexity"`
	Stars     int      `json:"stars"`
	Forks     int      `json:"forks"`
}

type EngineerBreakdown struct {
	CodePatterns           []string                          `json:"code_patterns"`
	ArchitectureAnalysis   []string                          `json:"architecture_analysis"`
	TestingAnalysis        TestingAnalysis                   `json:"testing_analysis"`
	ComplexityInsights     []string                          `json:"complexity_insights"`
	CommitMessageQuality   string                            `json:"commit_message_quality"`
	LanguageBreakdown      map[string]LanguageBreakdownEntry `json:"language_breakdown"`
	RepoLevelDetails       []RepoLevelDetail                 `json:"repo_level_details"`
	NotableImplementations []string                          `json:"notable_implementations"`
	ImprovementAreas       []string                          `json:"improvement_areas"`
	InterviewProbes        []string                          `json:"interview_probes"`
}

type EvaluationReport struct {
	Profile            Profile           `json:"profile"`
	Scores             Scores            `json:"scores"`
	RecruiterSummary   RecruiterSummary  `json:"recruiter_summary"`
	EngineerBreakdown  EngineerBreakdown `json:"engineer_breakdown"`
	LeaderboardSubmitted bool            `json:"leaderboard_submitted"`
}
