package news

// Category classifies a news item.
type Category string

const (
	CategoryNews     Category = "news"
	CategoryAnalysis Category = "analysis"
	CategoryOpinion  Category = "opinion"
)

// Item is a news article teaser.
type Item struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Source      string   `json:"source"`
	URL         string   `json:"url"`
	PublishedAt string   `json:"publishedAt"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Category    Category `json:"category"`
}

// Author identifies who wrote a discussion post.
type Author struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Discussion is a fan post, optionally attached to a match.
type Discussion struct {
	ID        string `json:"id"`
	MatchID   string `json:"matchId,omitempty"`
	Author    Author `json:"author"`
	Content   string `json:"content"`
	Likes     int    `json:"likes"`
	Replies   int    `json:"replies"`
	CreatedAt string `json:"createdAt"`
}

// FilterDiscussions returns posts attached to matchID; an empty matchID returns all posts.
func FilterDiscussions(posts []Discussion, matchID string) []Discussion {
	if matchID == "" {
		return posts
	}
	out := make([]Discussion, 0, len(posts))
	for _, p := range posts {
		if p.MatchID == matchID {
			out = append(out, p)
		}
	}
	return out
}
