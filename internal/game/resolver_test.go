package game

import (
	"strings"
	"testing"
)

// seats builds living players with ids 0..n-1. Seat 0 is human.
func seats(roles ...Role) []Player {
	names := []string{HumanName, "Alex", "Billy", "Chris", "Danny", "Emerson"}
	players := make([]Player, len(roles))
	for i, r := range roles {
		players[i] = Player{ID: int64(i), Name: names[i], Role: r, IsAlive: true, IsAI: i != 0}
	}
	return players
}

func TestResolveNightProtectionBlocksKill(t *testing.T) {
	players := seats(standardSeats...)
	actions := []Action{
		Targeting(ActionKill, 1, 3),
		Targeting(ActionProtect, 4, 3),
	}

	out := ResolveNight(actions, players)

	if out.KilledID != nil {
		t.Fatalf("KilledID = %d, want nil", *out.KilledID)
	}
	if !out.WasProtected {
		t.Error("WasProtected = false, want true")
	}
	if !out.Players[3].IsAlive {
		t.Error("protected seer died")
	}
	if len(out.Notices) != 1 || !strings.Contains(out.Notices[0].Content, "was attacked, but was protected") {
		t.Errorf("notices = %+v", out.Notices)
	}
	for _, p := range out.Players {
		if p.IsProtected {
			t.Errorf("%s still protected after resolution", p.Name)
		}
	}
}

func TestResolveNightKillsUnprotectedTarget(t *testing.T) {
	players := seats(standardSeats...)
	out := ResolveNight([]Action{
		Targeting(ActionKill, 1, 0),
		Targeting(ActionKill, 2, 0),
		Targeting(ActionProtect, 4, 3),
	}, players)

	if out.KilledID == nil || *out.KilledID != 0 {
		t.Fatalf("KilledID = %v, want 0", out.KilledID)
	}
	if out.Players[0].IsAlive {
		t.Error("victim still alive")
	}
	if !players[0].IsAlive {
		t.Error("input players were modified")
	}
	if !strings.Contains(out.Notices[0].Content, "Visitor was killed during the night.") {
		t.Errorf("notice = %q", out.Notices[0].Content)
	}
}

func TestResolveNightKillTieGoesToFirstQueued(t *testing.T) {
	players := seats(standardSeats...)
	out := ResolveNight([]Action{
		Targeting(ActionKill, 2, 5),
		Targeting(ActionKill, 1, 3),
	}, players)

	if out.KilledID == nil || *out.KilledID != 5 {
		t.Fatalf("KilledID = %v, want 5", out.KilledID)
	}
}

func TestResolveNightMajorityKill(t *testing.T) {
	players := seats(RoleVillager, RoleWerewolf, RoleWerewolf, RoleWerewolf, RoleSeer, RoleKnight)
	out := ResolveNight([]Action{
		Targeting(ActionKill, 1, 4),
		Targeting(ActionKill, 2, 5),
		Targeting(ActionKill, 3, 5),
	}, players)

	if out.KilledID == nil || *out.KilledID != 5 {
		t.Fatalf("KilledID = %v, want 5", out.KilledID)
	}
}

func TestResolveNightIgnoresDeadActors(t *testing.T) {
	players := seats(standardSeats...)
	players[4].IsAlive = false // knight
	out := ResolveNight([]Action{
		Targeting(ActionKill, 1, 3),
		Targeting(ActionProtect, 4, 3),
	}, players)

	if out.KilledID == nil || *out.KilledID != 3 {
		t.Fatalf("KilledID = %v, want 3", out.KilledID)
	}
}

func TestResolveNightWithoutActions(t *testing.T) {
	players := seats(standardSeats...)
	out := ResolveNight(nil, players)
	if out.KilledID != nil || out.WasProtected || len(out.Notices) != 0 {
		t.Errorf("outcome = %+v, want nothing to happen", out)
	}
}

func TestResolveNightInvestigation(t *testing.T) {
	// AI seer gets a private result
	players := seats(standardSeats...)
	out := ResolveNight([]Action{Targeting(ActionInvestigate, 3, 1)}, players)
	if len(out.Investigations) != 1 || out.Investigations[0].TargetRole != RoleWerewolf {
		t.Fatalf("investigations = %+v", out.Investigations)
	}
	n := out.Notices[0]
	if n.RecipientID == nil || *n.RecipientID != 3 {
		t.Errorf("recipient = %v, want seer 3", n.RecipientID)
	}
	if n.Content != "You investigated Alex and discovered they are a Werewolf." {
		t.Errorf("content = %q", n.Content)
	}

	// Human seer gets it as a system line addressed to them
	players = seats(RoleSeer, RoleWerewolf, RoleWerewolf, RoleVillager, RoleKnight, RoleMedium)
	out = ResolveNight([]Action{Targeting(ActionInvestigate, 0, 3)}, players)
	n = out.Notices[0]
	if n.RecipientID == nil || *n.RecipientID != 0 || !n.AsSystem {
		t.Errorf("notice = %+v, want a system line for the human", n)
	}
	if n.Content != "You investigated Chris and discovered they are not a Werewolf." {
		t.Errorf("content = %q", n.Content)
	}
}

func TestResolveVotesElimination(t *testing.T) {
	players := seats(standardSeats...)
	votes := map[int64]int64{0: 1, 2: 3, 3: 1, 4: 1, 5: 2}

	out := ResolveVotes(votes, players)

	if out.EliminatedID == nil || *out.EliminatedID != 1 {
		t.Fatalf("EliminatedID = %v, want 1", out.EliminatedID)
	}
	if out.MaxVotes != 3 || out.IsTied {
		t.Errorf("MaxVotes = %d IsTied = %v", out.MaxVotes, out.IsTied)
	}
	if out.Players[1].IsAlive {
		t.Error("eliminated player still alive")
	}
	want := []string{HumanName, "Chris", "Danny"}
	got := out.VoteDetails[1]
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("VoteDetails[1] = %v, want %v", got, want)
	}

	// The medium learns the exact role, privately because it is an AI.
	if len(out.Notices) != 1 {
		t.Fatalf("notices = %+v", out.Notices)
	}
	n := out.Notices[0]
	if n.RecipientID == nil || *n.RecipientID != 5 {
		t.Errorf("recipient = %v, want medium 5", n.RecipientID)
	}
	if !strings.Contains(n.Content, "Alex was a Werewolf.") {
		t.Errorf("content = %q", n.Content)
	}
}

func TestResolveVotesTieEliminatesNobody(t *testing.T) {
	players := seats(standardSeats...)
	votes := map[int64]int64{0: 1, 1: 0, 2: 0, 3: 1}

	out := ResolveVotes(votes, players)

	if out.EliminatedID != nil {
		t.Fatalf("EliminatedID = %d, want nil", *out.EliminatedID)
	}
	if !out.IsTied || out.MaxVotes != 2 {
		t.Errorf("IsTied = %v MaxVotes = %d", out.IsTied, out.MaxVotes)
	}
	for _, p := range out.Players {
		if !p.IsAlive {
			t.Errorf("%s died on a tie", p.Name)
		}
	}
}

func TestResolveVotesIgnoresDeadVoters(t *testing.T) {
	players := seats(standardSeats...)
	players[2].IsAlive = false
	players[3].IsAlive = false
	votes := map[int64]int64{0: 1, 2: 4, 3: 4}

	out := ResolveVotes(votes, players)

	if out.EliminatedID == nil || *out.EliminatedID != 1 {
		t.Fatalf("EliminatedID = %v, want 1", out.EliminatedID)
	}
	if out.VoteCounts[4] != 0 {
		t.Errorf("dead votes counted: %v", out.VoteCounts)
	}
}

func TestResolveVotesNoVotes(t *testing.T) {
	out := ResolveVotes(map[int64]int64{}, seats(standardSeats...))
	if out.EliminatedID != nil || out.IsTied || out.MaxVotes != 0 {
		t.Errorf("outcome = %+v", out)
	}
	if got := votingSummary(out, seats(standardSeats...)); !strings.Contains(got, textNoVotes) {
		t.Errorf("summary = %q", got)
	}
}

func TestResolveVotesHumanMediumGetsSystemResult(t *testing.T) {
	players := seats(RoleMedium, RoleWerewolf, RoleWerewolf, RoleSeer, RoleKnight, RoleVillager)
	out := ResolveVotes(map[int64]int64{0: 5, 1: 5, 2: 5}, players)
	if len(out.Notices) != 1 || out.Notices[0].RecipientID == nil || *out.Notices[0].RecipientID != 0 || !out.Notices[0].AsSystem {
		t.Fatalf("notices = %+v, want one system line for the human", out.Notices)
	}
	if !strings.Contains(out.Notices[0].Content, "Emerson was a Villager.") {
		t.Errorf("content = %q", out.Notices[0].Content)
	}
}

func TestVotingSummary(t *testing.T) {
	players := seats(standardSeats...)
	out := ResolveVotes(map[int64]int64{0: 1, 3: 1, 1: 0}, players)
	got := votingSummary(out, players)
	for _, want := range []string{
		"Visitor received votes from: Alex.",
		"Alex received votes from: Visitor, Chris.",
		"Alex has been voted out with 2 votes.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}

	tied := ResolveVotes(map[int64]int64{0: 1, 1: 0}, players)
	if got := votingSummary(tied, players); !strings.Contains(got, textVoteTied) {
		t.Errorf("tied summary = %q", got)
	}
}

func TestResolverQueueReplacesSameActorAndType(t *testing.T) {
	var r Resolver
	r.Queue(Targeting(ActionKill, 1, 3))
	r.Queue(Targeting(ActionKill, 2, 4))
	r.Queue(Targeting(ActionKill, 1, 5))

	pending := r.Pending()
	if len(pending) != 2 {
		t.Fatalf("pending = %+v, want 2 actions", pending)
	}
	if target, _ := pending[0].Target(); target != 5 {
		t.Errorf("first action target = %d, want 5", target)
	}
	if !r.HasQueued(2, ActionKill) || r.HasQueued(2, ActionProtect) {
		t.Error("HasQueued mismatch")
	}

	out := r.ResolveNight(seats(standardSeats...))
	if out.KilledID == nil || *out.KilledID != 5 {
		t.Errorf("KilledID = %v, want 5", out.KilledID)
	}
	if len(r.Pending()) != 0 {
		t.Error("queue not drained")
	}
}
