package game

import (
	"errors"
	"sort"
	"testing"
)

func TestInitializeDealsCanonicalRoles(t *testing.T) {
	players, err := NewRoster(WithRand(NewRand(1))).Initialize(DefaultPlayerCount)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if len(players) != 6 {
		t.Fatalf("got %d players, want 6", len(players))
	}

	counts := map[Role]int{}
	humans := 0
	for _, p := range players {
		counts[p.Role]++
		if !p.IsAI {
			humans++
		}
		if !p.IsAlive || p.IsProtected {
			t.Errorf("player %s: alive=%v protected=%v, want alive and unprotected", p.Name, p.IsAlive, p.IsProtected)
		}
	}
	want := map[Role]int{RoleWerewolf: 2, RoleVillager: 1, RoleSeer: 1, RoleKnight: 1, RoleMedium: 1}
	for r, n := range want {
		if counts[r] != n {
			t.Errorf("%s count = %d, want %d", r, counts[r], n)
		}
	}
	if humans != 1 {
		t.Errorf("humans = %d, want 1", humans)
	}
	if players[0].IsAI || players[0].Name != HumanName {
		t.Errorf("seat 0 = %+v, want the human %q", players[0], HumanName)
	}
}

func TestInitializeUsesDistinctAINames(t *testing.T) {
	players, err := NewRoster(WithRand(NewRand(7))).Initialize(DefaultPlayerCount)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	var names []string
	ids := map[int64]bool{}
	for _, p := range players {
		if ids[p.ID] {
			t.Errorf("duplicate id %d", p.ID)
		}
		ids[p.ID] = true
		if p.IsAI {
			names = append(names, p.Name)
		}
	}
	sort.Strings(names)
	want := append([]string(nil), DefaultAINames...)
	sort.Strings(want)
	if len(names) != len(want) {
		t.Fatalf("AI names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("AI names = %v, want %v", names, want)
		}
	}
}

func TestInitializeIsDeterministicForSeed(t *testing.T) {
	a, _ := NewRoster(WithRand(NewRand(99))).Initialize(DefaultPlayerCount)
	b, _ := NewRoster(WithRand(NewRand(99))).Initialize(DefaultPlayerCount)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("seat %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestInitializeRejectsBadCounts(t *testing.T) {
	r := NewRoster()
	if _, err := r.Initialize(0); !errors.Is(err, ErrNoPlayers) {
		t.Errorf("Initialize(0) error = %v, want ErrNoPlayers", err)
	}
	if _, err := r.Initialize(5); !errors.Is(err, ErrRolePoolMismatch) {
		t.Errorf("Initialize(5) error = %v, want ErrRolePoolMismatch", err)
	}

	small := NewRoster(WithAINames([]string{"Alex"}))
	if _, err := small.Initialize(DefaultPlayerCount); !errors.Is(err, ErrNamePoolExhausted) {
		t.Errorf("short name pool error = %v, want ErrNamePoolExhausted", err)
	}
}

func TestInitializeWithoutHuman(t *testing.T) {
	names := append(append([]string(nil), DefaultAINames...), "Frankie")
	players, err := NewRoster(WithoutHuman(), WithAINames(names)).Initialize(DefaultPlayerCount)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if _, ok := HumanPlayer(players); ok {
		t.Fatal("expected no human seat")
	}
}

func TestInitializeCustomRolePool(t *testing.T) {
	pool := []Role{RoleWerewolf, RoleVillager, RoleVillager}
	players, err := NewRoster(WithRolePool(pool)).Initialize(3)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if len(Werewolves(players)) != 1 || len(Villagers(players)) != 2 {
		t.Errorf("players = %+v, want 1 werewolf and 2 others", players)
	}
}
