package evaluation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oncodeoperations/artemis-core/internal/domain"
	"github.com/oncodeoperations/artemis-core/internal/ports"
)

const activityWindowDays = 180
const sampledRepoCount = 10

// ActivitySummary is the commit-cadence snapshot of spec §4.1 step 4.
type ActivitySummary struct {
	CommitsLast30d int
	CommitsLast90d int
	WeeksActive    int
	Status         domain.ActivityStatus
}

// FetchActivity samples the ten most recently updated repos and
// buckets commits by ISO week to derive activity_status, exactly as
// spec §4.1 step 4 describes.
func FetchActivity(ctx context.Context, host ports.CodeHost, username string, repos []ports.Repo) (ActivitySummary, error) {
	sorted := make([]ports.Repo, len(repos))
	copy(sorted, repos)
	sortByRecentlyUpdated(sorted)
	if len(sorted) > sampledRepoCount {
		sorted = sorted[:sampledRepoCount]
	}

	now := time.Now()
	since := now.AddDate(0, 0, -activityWindowDays)
	weeksSeen := make(map[string]bool)
	var last30, last90 int

	for _, repo := range sorted {
		parts := strings.SplitN(repo.FullName, "/", 2)
		owner, name := repo.FullName, repo.Name
		if len(parts) == 2 {
			owner, name = parts[0], parts[1]
		}

		commits, err := host.ListCommits(ctx, owner, name, since, username)
		if err != nil {
			continue
		}

		for _, c := range commits {
			age := now.Sub(c.Timestamp)
			if age <= 30*24*time.Hour {
				last30++
			}
			if age <= 90*24*time.Hour {
				last90++
			}
			year, week := c.Timestamp.ISOWeek()
			weeksSeen[isoWeekKey(year, week)] = true
		}
	}

	summary := ActivitySummary{
		CommitsLast30d: last30,
		CommitsLast90d: last90,
		WeeksActive:    len(weeksSeen),
	}
	switch {
	case last30 > 0:
		summary.Status = domain.ActivityActive
	case last90 > 0:
		summary.Status = domain.ActivitySemiActive
	default:
		summary.Status = domain.ActivityInactive
	}
	return summary, nil
}

func sortByRecentlyUpdated(repos []ports.Repo) {
	for i := 1; i < len(repos); i++ {
		for j := i; j > 0 && repos[j].UpdatedAt.After(repos[j-1].UpdatedAt); j-- {
			repos[j], repos[j-1] = repos[j-1], repos[j]
		}
	}
}

func isoWeekKey(year, week int) string {
	return fmt.Sprintf("%d-W%02d", year, week)
}
