package game

import "sort"

// LeaderboardSize is the number of ranked standings kept each tick.
const LeaderboardSize = 10

// LeaderboardEntry is one ranked standing. A pure projection; the
// leaderboard never mutates agent state.
type LeaderboardEntry struct {
	ID      uint32
	Name    string
	Score   int
	IsHuman bool
}

// updateLeaderboard recomputes the ranked standings from the live
// agent population.
func (g *Game) updateLeaderboard() {
	entries := g.leaderboard[:0]
	for _, a := range g.agents {
		if a.eliminated {
			continue
		}
		entries = append(entries, LeaderboardEntry{
			ID:      a.ID,
			Name:    a.Name,
			Score:   a.Score,
			IsHuman: !a.IsAI,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})

	if len(entries) > LeaderboardSize {
		entries = entries[:LeaderboardSize]
	}
	g.leaderboard = entries
}

// Leaderboard returns a copy of the current standings.
func (g *Game) Leaderboard() []LeaderboardEntry {
	out := make([]LeaderboardEntry, len(g.leaderboard))
	copy(out, g.leaderboard)
	return out
}
