package game

// DayDuration is the default length of the day discussion, in timer ticks.
const DayDuration = 180

// DiscussionInterval is the default spacing of AI discussion turns, in ticks.
const DiscussionInterval = 15

// CanTransitionTo checks whether the state machine allows moving from p to target.
func (p Phase) CanTransitionTo(target Phase) bool {
	validTransitions := map[Phase][]Phase{
		PhaseSetup:      {PhaseFirstNight},
		PhaseFirstNight: {PhaseDay, PhaseGameOver},
		PhaseDay:        {PhaseVoting, PhaseGameOver},
		PhaseVoting:     {PhaseNight, PhaseGameOver},
		PhaseNight:      {PhaseDay, PhaseGameOver},
		PhaseGameOver:   {PhaseFirstNight},
	}

	for _, phase := range validTransitions[p] {
		if phase == target {
			return true
		}
	}
	return false
}

// HasNightAction reports whether p acts during phase. The Seer acts every
// night; the Werewolf and Knight only from the second night on.
func HasNightAction(p Player, phase Phase) bool {
	if !p.IsAlive {
		return false
	}
	switch p.Role {
	case RoleSeer:
		return phase.IsNight()
	case RoleWerewolf, RoleKnight:
		return phase == PhaseNight
	}
	return false
}

// NightActionFor returns the action type the role performs at night.
func NightActionFor(r Role) (ActionType, bool) {
	switch r {
	case RoleWerewolf:
		return ActionKill, true
	case RoleSeer:
		return ActionInvestigate, true
	case RoleKnight:
		return ActionProtect, true
	}
	return "", false
}

// humanCanAct reports whether a living human exists in players.
func humanCanAct(players []Player) (Player, bool) {
	h, ok := HumanPlayer(players)
	if !ok || !h.IsAlive {
		return Player{}, false
	}
	return h, true
}

// Transition describes the move out of a phase.
type Transition struct {
	From      Phase
	To        Phase
	DayNumber int

	// StartDay is set when entering the day: announce it and start the
	// countdown and the discussion loop.
	StartDay bool
	// GenerateAIVotes is set when nobody human can vote.
	GenerateAIVotes bool
	// ResolveNight is set when the human has nothing to do at night.
	ResolveNight bool
}

// NextPhase computes the transition out of current. It does not evaluate
// the winner; callers check that first.
func NextPhase(current Phase, players []Player, day int) Transition {
	t := Transition{From: current, To: current, DayNumber: day}
	human, humanActs := humanCanAct(players)

	switch current {
	case PhaseFirstNight, PhaseNight:
		if current == PhaseNight {
			t.DayNumber++
		}
		t.To = PhaseDay
		t.StartDay = true
	case PhaseDay:
		t.To = PhaseVoting
		t.GenerateAIVotes = !humanActs
	case PhaseVoting:
		t.To = PhaseNight
		t.ResolveNight = !humanActs || !HasNightAction(human, PhaseNight)
	}
	return t
}

// CanAutoTransition reports whether phase can advance without human input.
// The day is never auto-advanced here; its timer ends it.
func CanAutoTransition(phase Phase, players []Player) bool {
	human, ok := humanCanAct(players)
	if !ok {
		return true
	}
	switch phase {
	case PhaseFirstNight, PhaseNight:
		return !HasNightAction(human, phase)
	}
	return false
}

// PhaseDuration returns the timer length of phase, 0 for untimed phases.
func PhaseDuration(phase Phase) int {
	if phase == PhaseDay {
		return DayDuration
	}
	return 0
}
