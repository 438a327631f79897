package application

import (
	"time"
)

// ActivityTier classifies how often a project's metadata is re-read from
// GitHub, based on how recently its repository received a push.
type ActivityTier int

const (
	// TierHot indicates a push within the last day. Refreshes every 30 minutes.
	TierHot ActivityTier = iota
	// TierActive indicates a push within the last 7 days. Refreshes every 2 hours.
	TierActive
	// TierWarm indicates a push within the last 30 days. Refreshes every 12 hours.
	TierWarm
	// TierStale indicates no push for 30+ days, or unknown. Refreshes daily.
	TierStale
)

// Refresh intervals per activity tier.
const (
	intervalHot    = 30 * time.Minute
	intervalActive = 2 * time.Hour
	intervalWarm   = 12 * time.Hour
	intervalStale  = 24 * time.Hour
)

// String returns a human-readable name for the activity tier.
func (t ActivityTier) String() string {
	switch t {
	case TierHot:
		return "hot"
	case TierActive:
		return "active"
	case TierWarm:
		return "warm"
	case TierStale:
		return "stale"
	default:
		return "unknown"
	}
}

// tierInterval returns the refresh interval for the given activity tier.
func tierInterval(tier ActivityTier) time.Duration {
	switch tier {
	case TierHot:
		return intervalHot
	case TierActive:
		return intervalActive
	case TierWarm:
		return intervalWarm
	case TierStale:
		return intervalStale
	default:
		return intervalActive
	}
}

// classifyActivity determines the activity tier from the last push time,
// measured against now. A zero-value time is treated as TierStale.
func classifyActivity(lastPush, now time.Time) ActivityTier {
	if lastPush.IsZero() {
		return TierStale
	}

	elapsed := now.Sub(lastPush)

	switch {
	case elapsed < 24*time.Hour:
		return TierHot
	case elapsed < 7*24*time.Hour:
		return TierActive
	case elapsed < 30*24*time.Hour:
		return TierWarm
	default:
		return TierStale
	}
}

// projectSchedule tracks per-project adaptive refresh state.
type projectSchedule struct {
	tier          ActivityTier
	nextRefreshAt time.Time
	lastRefreshed time.Time
}

// ScheduleInfo is an exported view of a project's refresh schedule,
// used for observability and testing.
type ScheduleInfo struct {
	Tier          ActivityTier
	NextRefreshAt time.Time
	LastRefreshed time.Time
}
