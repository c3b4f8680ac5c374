package evaluation

import (
	"regexp"
	"time"

	"github.com/oncodeoperations/artemis-core/internal/ports"
)

var (
	courseworkPattern = regexp.MustCompile(`(?i)assignment|lab\d+|project\d+|homework|cs\d+|coursework|bootcamp`)
	boilerplatePattern = regexp.MustCompile(`(?i)generated by|template|boilerplate|starter`)
)

const (
	minRepoSizeKB   = 10
	staleAgeYears   = 5
	idlePeriodYears = 2
)

// FilterResult is the surviving set plus the failure-detail payload
// spec §4.1a requires for error messages when nothing survives.
type FilterResult struct {
	Kept          []ports.Repo
	ForksExcluded int
	TinyExcluded  int
	OtherExcluded int
}

// FilterRepos applies the fork/archived/size/heuristic/staleness
// exclusions of spec §4.1a, returning both the surviving set and
// per-reason counts for diagnosing an empty result.
func FilterRepos(repos []ports.Repo, now time.Time) FilterResult {
	var result FilterResult

	for _, r := range repos {
		switch {
		case r.Fork:
			result.ForksExcluded++
		case r.Archived || r.Disabled:
			result.OtherExcluded++
		case r.SizeKB < minRepoSizeKB:
			result.TinyExcluded++
		case courseworkPattern.MatchString(r.Name) || courseworkPattern.MatchString(r.Description) ||
			boilerplatePattern.MatchString(r.Name) || boilerplatePattern.MatchString(r.Description):
			result.OtherExcluded++
		case isStaleAndIdle(r, now):
			result.OtherExcluded++
		default:
			result.Kept = append(result.Kept, r)
		}
	}

	return result
}

func isStaleAndIdle(r ports.Repo, now time.Time) bool {
	age := now.Sub(r.CreatedAt)
	idle := now.Sub(r.PushedAt)
	return age > staleAgeYears*365*24*time.Hour && idle > idlePeriodYears*365*24*time.Hour
}
