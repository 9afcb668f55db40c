package course

import (
	"math"
	"time"

	"github.com/hackerforce/platform/internal/model"
)

// Award is the account-level side effect of a single progress update. XP and
// Keys are lifetime deltas; CourseCompleted marks the once-per-cycle
// completion transition.
type Award struct {
	XP              int
	Keys            int
	CourseCompleted bool
}

// ApplyUpdate advances a progress record for one (module, challenge) update
// and returns what the account is owed. It only mutates the progress record;
// persisting it — and applying the award to the account — is the caller's job.
//
// Module ids are recorded verbatim without checking them against the course's
// module list. An unknown challenge id is silently skipped; the module update
// still applies. Re-completing either is a no-op, so challenge rewards pay
// out exactly once per completion cycle.
func ApplyUpdate(course *model.Course, progress *model.CourseProgress, moduleID, challengeID string, now time.Time) Award {
	award := Award{}

	if moduleID != "" {
		progress.CompletedModules.Add(moduleID)
	}

	if challengeID != "" && !progress.CompletedChallenges.Contains(challengeID) {
		if challenge := course.ChallengeByID(challengeID); challenge != nil {
			progress.CompletedChallenges.Add(challengeID)
			progress.XPEarned += challenge.XPReward
			progress.KeysEarned += challenge.KeyReward
			award.XP = challenge.XPReward
			award.Keys = challenge.KeyReward
		}
	}

	progress.ProgressPercentage = percentage(
		len(progress.CompletedModules)+len(progress.CompletedChallenges),
		len(course.Modules)+len(course.Challenges),
	)

	if progress.ProgressPercentage == 100 && !progress.IsCompleted {
		progress.IsCompleted = true
		ts := now
		progress.CompletedAt = &ts
		award.CourseCompleted = true
	}

	progress.CurrentModule = moduleID
	progress.LastAccessedAt = now

	return award
}

func percentage(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// Reset clears a progress record in place for a retake. Lifetime account
// totals already awarded are deliberately untouched.
func Reset(progress *model.CourseProgress, now time.Time) {
	progress.CompletedModules = model.IDSet{}
	progress.CompletedChallenges = model.IDSet{}
	progress.ProgressPercentage = 0
	progress.XPEarned = 0
	progress.KeysEarned = 0
	progress.IsCompleted = false
	progress.CompletedAt = nil
	progress.LastAccessedAt = now
}
