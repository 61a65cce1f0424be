package commentary

// Ball is a single delivery in ball-by-ball commentary.
// IsBoundary and IsSix are disjoint: a six is never flagged as a boundary four.
type Ball struct {
	ID          string `json:"id"`
	Over        string `json:"over"`
	Ball        int    `json:"ball"`
	Runs        int    `json:"runs"`
	IsWicket    bool   `json:"isWicket"`
	IsBoundary  bool   `json:"isBoundary"`
	IsSix       bool   `json:"isSix"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
}

// Event is a notable match event (wicket, boundary, innings change).
type Event struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	TeamID    string `json:"teamId,omitempty"`
	PlayerID  string `json:"playerId,omitempty"`
	Over      string `json:"over"`
	Timestamp string `json:"timestamp"`
}
