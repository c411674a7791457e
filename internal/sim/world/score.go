package world

import (
	"fmt"
	"sort"
)

const (
	StartScore = 25
	KillBonus  = 50
	// LeaderboardSize is how many rows frames carry.
	LeaderboardSize = 25
)

var greekLetters = [...]string{
	"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta", "theta",
	"iota", "kappa", "lambda", "mu", "nu", "xi", "omicron", "pi",
	"rho", "sigma", "tau", "upsilon", "phi", "chi", "psi", "omega",
}

type ScoreEntry struct {
	Name  string
	Score int
	Kills int
}

// ScoreBoard is name-keyed bookkeeping. The core never reads it for decisions.
type ScoreBoard struct {
	scores map[string]int
	kills  map[string]int

	letter int
	number int
}

func NewScoreBoard() *ScoreBoard {
	return &ScoreBoard{scores: map[string]int{}, kills: map[string]int{}, number: 1}
}

func (s *ScoreBoard) nextBotName(id uint64) string {
	name := fmt.Sprintf("%s%d_%d", greekLetters[s.letter], s.number, id)
	s.letter++
	if s.letter >= len(greekLetters) {
		s.letter = 0
		s.number++
	}
	return name
}

// Register names e and seeds its score.
func (s *ScoreBoard) Register(e *Entity) {
	if e.IsHuman() {
		e.Name = fmt.Sprintf("Player_%d", e.ID)
	} else {
		e.Name = s.nextBotName(e.ID)
	}
	s.scores[e.Name] = StartScore
	s.kills[e.Name] = 0
}

func (s *ScoreBoard) AddKill(name string) {
	if _, ok := s.scores[name]; !ok {
		return
	}
	s.scores[name] += KillBonus
	s.kills[name]++
}

func (s *ScoreBoard) Remove(name string) {
	delete(s.scores, name)
	delete(s.kills, name)
}

// Recompute sets every live entity's score to its territory size.
func (s *ScoreBoard) Recompute(reg *Registry) {
	for _, e := range reg.order {
		s.scores[e.Name] = len(e.Territory)
	}
}

func (s *ScoreBoard) Score(name string) (int, bool) {
	v, ok := s.scores[name]
	return v, ok
}

func (s *ScoreBoard) Kills(name string) int { return s.kills[name] }

// Top returns up to n entries sorted by score desc, then name.
func (s *ScoreBoard) Top(n int) []ScoreEntry {
	all := s.Entries()
	sort.Slice(all, func(i, j int) bool {
		if all[i].Score != all[j].Score {
			return all[i].Score > all[j].Score
		}
		return all[i].Name < all[j].Name
	})
	if n >= 0 && len(all) > n {
		all = all[:n]
	}
	return all
}

// Entries returns every row ordered by name.
func (s *ScoreBoard) Entries() []ScoreEntry {
	out := make([]ScoreEntry, 0, len(s.scores))
	for name, v := range s.scores {
		out = append(out, ScoreEntry{Name: name, Score: v, Kills: s.kills[name]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
