package world

import "testing"

func TestScoreBoard_BotNamesCycleGreekLetters(t *testing.T) {
	s := NewScoreBoard()
	var names []string
	for id := uint64(1); id <= 26; id++ {
		e := &Entity{ID: id, Role: RoleBot}
		s.Register(e)
		names = append(names, e.Name)
	}
	if names[0] != "alpha1_1" || names[23] != "omega1_24" {
		t.Fatalf("first cycle: %q .. %q", names[0], names[23])
	}
	if names[24] != "alpha2_25" || names[25] != "beta2_26" {
		t.Fatalf("second cycle: %q %q", names[24], names[25])
	}

	h := &Entity{ID: 99, Role: RoleHuman}
	s.Register(h)
	if h.Name != "Player_99" {
		t.Fatalf("human name %q", h.Name)
	}
	if got, _ := s.Score(h.Name); got != StartScore {
		t.Fatalf("start score %d", got)
	}
}

func TestScoreBoard_TopOrdersByScoreThenName(t *testing.T) {
	s := NewScoreBoard()
	s.scores = map[string]int{"b": 30, "a": 30, "c": 90, "d": 1}
	s.kills = map[string]int{"c": 2}
	top := s.Top(3)
	if len(top) != 3 {
		t.Fatalf("len %d", len(top))
	}
	if top[0].Name != "c" || top[0].Kills != 2 || top[1].Name != "a" || top[2].Name != "b" {
		t.Fatalf("top: %+v", top)
	}
}

func TestScoreBoard_KillBonusAndRemove(t *testing.T) {
	s := NewScoreBoard()
	e := &Entity{ID: 1, Role: RoleBot}
	s.Register(e)
	s.AddKill(e.Name)
	if got, _ := s.Score(e.Name); got != StartScore+KillBonus || s.Kills(e.Name) != 1 {
		t.Fatalf("after kill: score %d kills %d", got, s.Kills(e.Name))
	}
	s.AddKill("nobody")
	if _, ok := s.Score("nobody"); ok {
		t.Fatalf("kill credited to an unknown name")
	}
	s.Remove(e.Name)
	if len(s.Entries()) != 0 {
		t.Fatalf("entries left after remove: %+v", s.Entries())
	}
}

func TestBotPalette_DistinctColours(t *testing.T) {
	p := botPalette(40, 0.3)
	if len(p) != 40 {
		t.Fatalf("palette size %d", len(p))
	}
	seen := map[[3]uint8]bool{}
	for _, c := range p {
		if seen[c] {
			t.Fatalf("duplicate colour %v", c)
		}
		seen[c] = true
		if c == humanColor {
			t.Fatalf("bot palette contains the human colour")
		}
	}
	if got := hsvToRGB(0, 0.8, 0.8); got != [3]uint8{204, 40, 40} {
		t.Fatalf("hsvToRGB(0,.8,.8) = %v", got)
	}
}
