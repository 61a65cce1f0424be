package fixture

import (
	"time"

	"github.com/preston-bernstein/cricket-data-service/internal/domain/commentary"
	"github.com/preston-bernstein/cricket-data-service/internal/domain/news"
	"github.com/preston-bernstein/cricket-data-service/internal/domain/scorecard"
	"github.com/preston-bernstein/cricket-data-service/internal/domain/teams"
)

var (
	thunder   = teams.Team{ID: "54", Name: "Sydney Thunder", ShortName: "SYT"}
	scorchers = teams.Team{ID: "52", Name: "Perth Scorchers", ShortName: "PS"}
)

type newsSeed struct {
	item news.Item
	age  time.Duration
}

var newsSeeds = []newsSeed{
	{
		item: news.Item{
			ID:       "1",
			Title:    "Kohli enters rare club with 50th ODI century",
			Summary:  "Virat Kohli joined Sachin Tendulkar as the only batsmen to score 50 ODI centuries, achieving the milestone against Australia in the World Cup quarter-final.",
			Source:   "ESPNcricinfo",
			URL:      "#",
			Category: news.CategoryNews,
		},
		age: 30 * time.Minute,
	},
	{
		item: news.Item{
			ID:       "2",
			Title:    "Analysis: Why Australia's bowling attack is the most complete in world cricket",
			Summary:  "With Starc, Hazlewood, and Cummins in form, we break down what makes this pace trio so effective in different conditions.",
			Source:   "The Cricket Monthly",
			URL:      "#",
			Category: news.CategoryAnalysis,
		},
		age: 2 * time.Hour,
	},
	{
		item: news.Item{
			ID:       "3",
			Title:    "BCCI announces squad for upcoming New Zealand tour",
			Summary:  "India has named a 16-member squad for the three-match ODI series against New Zealand, with Rohit Sharma returning as captain after missing the Australia tests.",
			Source:   "Cricbuzz",
			URL:      "#",
			Category: news.CategoryNews,
		},
		age: 5 * time.Hour,
	},
	{
		item: news.Item{
			ID:       "4",
			Title:    "Opinion: The case for including impact players in Test cricket",
			Summary:  "As T20 leagues innovate with new rules, should Test cricket adapt to survive? A controversial proposal examined.",
			Source:   "Wisden",
			URL:      "#",
			Category: news.CategoryOpinion,
		},
		age: 8 * time.Hour,
	},
	{
		item: news.Item{
			ID:       "5",
			Title:    "Root surpasses Cook to become England's all-time leading Test run scorer",
			Summary:  "Joe Root reached the milestone during the second Test against Bangladesh, ending the day on 12,473 runs.",
			Source:   "Sky Sports",
			URL:      "#",
			Category: news.CategoryNews,
		},
		age: 12 * time.Hour,
	},
}

type discussionSeed struct {
	post news.Discussion
	age  time.Duration
}

var discussionSeeds = []discussionSeed{
	{
		post: news.Discussion{
			ID:      "1",
			MatchID: "66709",
			Author:  news.Author{Name: "CricketFan_NYC"},
			Content: "Kohli is playing the innings of his life here. The way he's rotating strike and picking gaps is vintage. Reminds me of the 2016 World T20 knock against Australia.",
			Likes:   234,
			Replies: 45,
		},
		age: 5 * time.Minute,
	},
	{
		post: news.Discussion{
			ID:      "2",
			MatchID: "66709",
			Author:  news.Author{Name: "TestCricketPurist"},
			Content: "Starc's slower balls have been incredible this tournament. His variation has evolved so much since 2019.",
			Likes:   89,
			Replies: 12,
		},
		age: 12 * time.Minute,
	},
	{
		post: news.Discussion{
			ID:      "3",
			Author:  news.Author{Name: "BayAreaCricket"},
			Content: "Anyone else watching from California? It's 2 AM but absolutely worth it. This World Cup has been phenomenal.",
			Likes:   156,
			Replies: 67,
		},
		age: 20 * time.Minute,
	},
	{
		post: news.Discussion{
			ID:      "4",
			MatchID: "66710",
			Author:  news.Author{Name: "SydneySider"},
			Content: "The SCG pitch is offering more turn than expected. Day 4 could be decisive if India can't restrict Australia's lead to under 200.",
			Likes:   67,
			Replies: 23,
		},
		age: 45 * time.Minute,
	},
}

var commentarySeeds = []commentary.Ball{
	{ID: "1", Over: "43.6", Ball: 6, Runs: 1, Description: "Kohli works it to deep midwicket for a single. India 241/4"},
	{ID: "2", Over: "43.5", Ball: 5, Runs: 4, IsBoundary: true, Description: "FOUR! Kohli punches it through covers. Exquisite timing. The ball races away to the boundary."},
	{ID: "3", Over: "43.4", Ball: 4, Runs: 0, Description: "Defended back to the bowler. Starc is testing Kohli with good length deliveries."},
	{ID: "4", Over: "43.3", Ball: 3, Runs: 1, Description: "Worked away for a single to fine leg. Rahul on strike now."},
	{ID: "5", Over: "43.2", Ball: 2, Runs: 0, Description: "Good length, angling in. Kohli shoulders arms, the ball goes past off stump."},
	{ID: "6", Over: "43.1", Ball: 1, Runs: 2, Description: "Flicked off the pads to deep square leg. Easy two runs."},
}

var australiaScorecard = scorecard.FullScorecard{
	Innings: 1,
	Team:    teams.Team{ID: "aus", Name: "Australia", ShortName: "AUS"},
	Batting: []scorecard.Entry{
		{Batsman: "D Warner", Dismissal: "c Rahul b Bumrah", Runs: 45, Balls: 52, Fours: 6, Sixes: 1, StrikeRate: 86.54},
		{Batsman: "T Head", Dismissal: "lbw b Shami", Runs: 78, Balls: 89, Fours: 9, Sixes: 2, StrikeRate: 87.64},
		{Batsman: "M Labuschagne", Dismissal: "c Kohli b Jadeja", Runs: 32, Balls: 41, Fours: 3, StrikeRate: 78.05},
		{Batsman: "S Smith", Dismissal: "b Bumrah", Runs: 67, Balls: 78, Fours: 5, Sixes: 1, StrikeRate: 85.90},
		{Batsman: "M Marsh", Dismissal: "c Iyer b Kuldeep", Runs: 23, Balls: 28, Fours: 2, StrikeRate: 82.14},
		{Batsman: "G Maxwell", Dismissal: "c Rahul b Shami", Runs: 18, Balls: 12, Fours: 1, Sixes: 2, StrikeRate: 150.00},
		{Batsman: "A Carey (wk)", Dismissal: "not out", Runs: 12, Balls: 15, Fours: 1, StrikeRate: 80.00},
		{Batsman: "P Cummins (c)", Dismissal: "c Jadeja b Bumrah", Runs: 5, Balls: 8, StrikeRate: 62.50},
		{Batsman: "M Starc", Dismissal: "run out (Jadeja)", Runs: 3, Balls: 5, StrikeRate: 60.00},
		{Batsman: "J Hazlewood", Dismissal: "not out", Runs: 1, Balls: 3, StrikeRate: 33.33},
		{Batsman: "A Zampa", Dismissal: "did not bat"},
	},
	Bowling: []scorecard.BowlingFigures{
		{Bowler: "J Bumrah", Overs: "10.0", Maidens: 2, Runs: 48, Wickets: 3, Economy: 4.80, Wides: 1},
		{Bowler: "M Shami", Overs: "10.0", Maidens: 1, Runs: 56, Wickets: 2, Economy: 5.60, Wides: 2},
		{Bowler: "R Jadeja", Overs: "10.0", Runs: 52, Wickets: 1, Economy: 5.20},
		{Bowler: "K Yadav", Overs: "10.0", Runs: 61, Wickets: 1, Economy: 6.10, Wides: 1, NoBalls: 1},
		{Bowler: "H Pandya", Overs: "10.0", Runs: 64, Economy: 6.40},
	},
	Extras: scorecard.Extras{Byes: 2, LegByes: 4, Wides: 4, NoBalls: 1, Penalties: 0, Total: 11},
	Total:  scorecard.Total{Runs: 287, Wickets: 8, Overs: "50.0"},
	FallOfWickets: []string{
		"1-67 (Warner)", "2-132 (Labuschagne)", "3-178 (Head)", "4-218 (Marsh)",
		"5-245 (Maxwell)", "6-267 (Smith)", "7-278 (Cummins)", "8-284 (Starc)",
	},
}
