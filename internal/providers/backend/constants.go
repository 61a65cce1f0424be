package backend

import "time"

const (
	providerName       = "backend"
	defaultHTTPTimeout = 10 * time.Second
	maxErrorBodyBytes  = 4096

	networkErrorMessage = "Network error: Unable to connect to server"
	decodeErrorMessage  = "Invalid response from server"
	inProgressText      = "In Progress"
)

// Endpoint names used for attempt metrics.
const (
	EndpointLiveMatches     = "matches.live"
	EndpointUpcomingMatches = "matches.upcoming"
	EndpointMatches         = "matches"
	EndpointSchedules       = "schedules"
	EndpointMatchByID       = "matches.detail"
	EndpointLiveMatch       = "matches.live_detail"
	EndpointCommentary      = "matches.commentary"
	EndpointEvents          = "matches.events"
	EndpointScorecard       = "matches.scorecard"
	EndpointTrendingNews    = "news.trending"
	EndpointWaitlist        = "waitlist.email"
	EndpointHealth          = "health"
)
