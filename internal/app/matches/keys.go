package matches

import (
	"github.com/preston-bernstein/cricket-data-service/internal/providers/backend"
	"github.com/preston-bernstein/cricket-data-service/internal/query"
)

// Query kinds for the match resources.
const (
	KindAll        = "matches"
	KindLive       = "matches.live"
	KindUpcoming   = "matches.upcoming"
	KindDetail     = "matches.detail"
	KindLiveDetail = "matches.live_detail"
	KindCommentary = "matches.commentary"
	KindEvents     = "matches.events"
	KindScorecard  = "matches.scorecard"
	KindSchedules  = "schedules"
)

var (
	AllKey      = query.Key{Kind: KindAll}
	LiveKey     = query.Key{Kind: KindLive}
	UpcomingKey = query.Key{Kind: KindUpcoming}
)

func DetailKey(id string) query.Key     { return query.Key{Kind: KindDetail, ID: id} }
func LiveDetailKey(id string) query.Key { return query.Key{Kind: KindLiveDetail, ID: id} }
func CommentaryKey(id string) query.Key { return query.Key{Kind: KindCommentary, ID: id} }
func EventsKey(id string) query.Key     { return query.Key{Kind: KindEvents, ID: id} }
func ScorecardKey(id string) query.Key  { return query.Key{Kind: KindScorecard, ID: id} }

// SchedulesKey keys a schedule listing by its encoded filter.
func SchedulesKey(filter backend.ScheduleFilter) query.Key {
	return query.Key{Kind: KindSchedules, ID: filter.Values().Encode()}
}
