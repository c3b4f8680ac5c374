package evaluation

import (
	"context"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/oncodeoperations/artemis-core/internal/apperr"
	"github.com/oncodeoperations/artemis-core/internal/domain"
	"github.com/oncodeoperations/artemis-core/internal/metrics"
	"github.com/oncodeoperations/artemis-core/internal/ports"
	"github.com/oncodeoperations/artemis-core/internal/scoring"
	"github.com/oncodeoperations/artemis-core/internal/store"
)

const (
	maxReposPerUser  = 300
	defaultAnalyzeN  = 30
	reposPerPage     = 100
)

// Pipeline wires CodeHost discovery, filtering, analysis, scoring, and
// LLM enrichment into the single Evaluate entry point of spec §4.1.
type Pipeline struct {
	host        ports.CodeHost
	llm         ports.LLM
	analyzer    *Analyzer
	cache       *Cache
	leaderboard store.LeaderboardStore
	analyzeTopN int
	log         *logrus.Entry
}

func NewPipeline(host ports.CodeHost, llm ports.LLM, cache *Cache, leaderboard store.LeaderboardStore, analyzeTopN int, log *logrus.Entry) *Pipeline {
	if analyzeTopN <= 0 {
		analyzeTopN = defaultAnalyzeN
	}
	return &Pipeline{
		host:        host,
		llm:         llm,
		analyzer:    NewAnalyzer(host),
		cache:       cache,
		leaderboard: leaderboard,
		analyzeTopN: analyzeTopN,
		log:         log,
	}
}

// Evaluate runs the eight-stage pipeline of spec §4.1, returning a
// typed *apperr.Error for every documented failure mode. A cache hit
// within TTL short-circuits the expensive stages but still honors a
// late opt-in to the leaderboard, since submit_to_leaderboard is a
// per-request flag independent of the cached report's age.
func (p *Pipeline) Evaluate(ctx context.Context, username string, submitToLeaderboard bool) (*domain.EvaluationReport, error) {
	if cached, ok := p.cache.Get(ctx, username); ok {
		if submitToLeaderboard && !cached.LeaderboardSubmitted {
			if err := p.submitToLeaderboard(ctx, cached); err != nil {
				p.log.WithError(err).Warn("leaderboard submission failed for cached report")
			} else {
				cached.LeaderboardSubmitted = true
				_ = p.cache.Set(ctx, username, cached)
			}
		}
		return cached, nil
	}

	timer := prometheus.NewTimer(metrics.EvaluationDuration)
	defer timer.ObserveDuration()

	user, err := p.host.GetUser(ctx, username)
	if err != nil {
		return nil, classifyCodeHostErr(err, "fetching profile")
	}

	repos, err := p.fetchAllRepos(ctx, username)
	if err != nil {
		return nil, classifyCodeHostErr(err, "listing repositories")
	}
	if len(repos) == 0 {
		return nil, apperr.New(apperr.KindNotFound, "no_repositories")
	}

	filtered := FilterRepos(repos, time.Now())
	if len(filtered.Kept) == 0 {
		filteredOut := filtered.ForksExcluded + filtered.TinyExcluded + filtered.OtherExcluded
		return nil, apperr.WithDetails(apperr.KindUnprocessable, "No analyzable repositories", map[string]interface{}{
			"total_repos":  len(repos),
			"forks":        filtered.ForksExcluded,
			"filtered_out": filteredOut,
		})
	}

	activity, err := FetchActivity(ctx, p.host, username, filtered.Kept)
	if err != nil {
		return nil, classifyCodeHostErr(err, "fetching commit activity")
	}

	topRepos := selectTopRepos(filtered.Kept, p.analyzeTopN)
	analyses, err := p.analyzer.AnalyzeAll(ctx, topRepos)
	if err != nil {
		return nil, classifyCodeHostErr(err, "analyzing repositories")
	}

	aggregates := make([]scoring.RepoAggregate, 0, len(analyses))
	languages := make(map[string]bool)
	for _, a := range analyses {
		aggregates = append(aggregates, a.Aggregate)
		for _, l := range a.Aggregate.Languages {
			languages[l] = true
		}
	}

	scores := scoring.Score(aggregates, scoring.ActivitySummary{
		CommitsLast30d: activity.CommitsLast30d,
		CommitsLast90d: activity.CommitsLast90d,
		WeeksActive:    activity.WeeksActive,
	})

	profile := domain.Profile{
		Username:             username,
		Name:                 user.Name,
		Bio:                  user.Bio,
		Avatar:               user.Avatar,
		Location:             user.Location,
		GitHubURL:            "https://github.com/" + username,
		PrimaryLanguages:     sortedKeys(languages),
		TotalRepositories:    len(repos),
		AnalyzedRepositories: len(analyses),
		ActivityStatus:       activity.Status,
	}

	recruiterSummary, engineerBreakdown := Enrich(ctx, p.llm, profile, analyses, scores)
	engineerBreakdown.RepoLevelDetails = repoLevelDetails(analyses)

	report := &domain.EvaluationReport{
		Profile:           profile,
		Scores:            scores,
		RecruiterSummary:  recruiterSummary,
		EngineerBreakdown: engineerBreakdown,
	}

	if submitToLeaderboard {
		if err := p.submitToLeaderboard(ctx, report); err != nil {
			p.log.WithError(err).Warn("leaderboard submission failed")
		} else {
			report.LeaderboardSubmitted = true
		}
	}

	if err := p.cache.Set(ctx, username, report); err != nil {
		p.log.WithError(err).Warn("evaluation cache write failed")
	}

	return report, nil
}

func (p *Pipeline) fetchAllRepos(ctx context.Context, username string) ([]ports.Repo, error) {
	var all []ports.Repo
	page := 1
	for len(all) < maxReposPerUser {
		repos, hasMore, err := p.host.ListRepos(ctx, username, page, reposPerPage)
		if err != nil {
			return nil, err
		}
		all = append(all, repos...)
		if !hasMore || len(repos) == 0 {
			break
		}
		page++
	}
	if len(all) > maxReposPerUser {
		all = all[:maxReposPerUser]
	}
	return all, nil
}

func (p *Pipeline) submitToLeaderboard(ctx context.Context, report *domain.EvaluationReport) error {
	entry := &domain.LeaderboardEntry{
		Username:         report.Profile.Username,
		DisplayName:      report.Profile.Name,
		Avatar:           report.Profile.Avatar,
		PrimaryLanguages: report.Profile.PrimaryLanguages,
		OverallScore:     report.Scores.OverallScore,
		OverallLevel:     report.Scores.OverallLevel,
		OptedIn:          true,
		SubmittedAt:      time.Now(),
	}
	return p.leaderboard.Upsert(ctx, entry)
}

// selectTopRepos ranks by stars then recency and caps at n, so the
// deep-analysis stage stays bounded regardless of how many repos
// survive filtering.
func selectTopRepos(repos []ports.Repo, n int) []ports.Repo {
	ranked := make([]ports.Repo, len(repos))
	copy(ranked, repos)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Stars != ranked[j].Stars {
			return ranked[i].Stars > ranked[j].Stars
		}
		return ranked[i].PushedAt.After(ranked[j].PushedAt)
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func repoLevelDetails(analyses []RepoAnalysis) []domain.RepoLevelDetail {
	details := make([]domain.RepoLevelDetail, 0, len(analyses))
	for _, a := range analyses {
		details = append(details, domain.RepoLevelDetail{
			RepoName:   a.Repo.Name,
			Languages:  a.Aggregate.Languages,
			Complexity: a.Aggregate.AvgComplexity,
			Stars:      a.Repo.Stars,
			Forks:      a.Repo.Forks,
		})
	}
	return details
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// classifyCodeHostErr maps a ports.CodeHostError onto the error
// taxonomy spec §4.1 step 1 names explicitly; anything else becomes an
// internal error rather than leaking a transport-level failure.
func classifyCodeHostErr(err error, stage string) error {
	hostErr, ok := err.(*ports.CodeHostError)
	if !ok {
		return apperr.Wrap(apperr.KindInternal, stage, err)
	}
	switch hostErr.Kind {
	case ports.CodeHostNotFound:
		return apperr.New(apperr.KindNotFound, "user_not_found")
	case ports.CodeHostRateLimit:
		return apperr.RateLimited("code_host_rate_limited", hostErr.RetryAfter)
	case ports.CodeHostUnauthorized:
		return apperr.Wrap(apperr.KindInternal, stage, err)
	default:
		return apperr.Wrap(apperr.KindInternal, stage, err)
	}
}
