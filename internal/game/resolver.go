package game

import "sync"

// Protection records a knight's guard for one night.
type Protection struct {
	KnightID int64
	TargetID int64
}

// Investigation records what a seer learned. TargetRole is known to the
// engine, the seer is only told werewolf or not.
type Investigation struct {
	SeerID     int64
	TargetID   int64
	TargetRole Role
}

// NightOutcome is the result of resolving one night of actions.
type NightOutcome struct {
	Players        []Player
	KilledID       *int64
	AttackedID     *int64
	WasProtected   bool
	Protections    []Protection
	Investigations []Investigation
	Notices        []Notice
}

// ResolveNight applies protections, then kills, then investigations.
// The most-targeted kill wins and ties go to the target queued first.
// A protected target survives. Every IsProtected flag is cleared in the
// returned players. Neither argument is modified.
func ResolveNight(actions []Action, players []Player) NightOutcome {
	out := NightOutcome{Players: clonePlayers(players)}

	actorAlive := func(a Action) bool {
		p, ok := findPlayer(out.Players, a.PlayerID)
		return ok && p.IsAlive
	}

	protected := make(map[int64]bool)
	for _, a := range actions {
		if a.Type != ActionProtect || !actorAlive(a) {
			continue
		}
		target, ok := a.Target()
		if !ok || indexOfPlayer(out.Players, target) < 0 {
			continue
		}
		protected[target] = true
		out.Players[indexOfPlayer(out.Players, target)].IsProtected = true
		out.Protections = append(out.Protections, Protection{KnightID: a.PlayerID, TargetID: target})
	}

	var order []int64
	tally := make(map[int64]int)
	for _, a := range actions {
		if a.Type != ActionKill || !actorAlive(a) {
			continue
		}
		target, ok := a.Target()
		if !ok {
			continue
		}
		if p, ok := findPlayer(out.Players, target); !ok || !p.IsAlive {
			continue
		}
		if _, seen := tally[target]; !seen {
			order = append(order, target)
		}
		tally[target]++
	}
	if len(order) > 0 {
		victim := order[0]
		for _, id := range order[1:] {
			if tally[id] > tally[victim] {
				victim = id
			}
		}
		out.AttackedID = &victim
		i := indexOfPlayer(out.Players, victim)
		if protected[victim] {
			out.WasProtected = true
			out.Notices = append(out.Notices, publicNotice(textPlayerProtected(out.Players[i].Name)))
		} else {
			out.Players[i].IsAlive = false
			out.KilledID = &victim
			out.Notices = append(out.Notices, publicNotice(textPlayerKilled(out.Players[i].Name)))
		}
	}

	for _, a := range actions {
		if a.Type != ActionInvestigate {
			continue
		}
		seer, ok := findPlayer(out.Players, a.PlayerID)
		if !ok {
			continue
		}
		targetID, ok := a.Target()
		if !ok {
			continue
		}
		target, ok := findPlayer(out.Players, targetID)
		if !ok {
			continue
		}
		out.Investigations = append(out.Investigations, Investigation{SeerID: seer.ID, TargetID: target.ID, TargetRole: target.Role})
		out.Notices = append(out.Notices, noticeFor(seer, textSeerResult(target.Name, target.IsWerewolf())))
	}

	for i := range out.Players {
		out.Players[i].IsProtected = false
	}
	return out
}

// VoteOutcome is the result of a day vote.
type VoteOutcome struct {
	Players      []Player
	EliminatedID *int64
	VoteCounts   map[int64]int
	VoteDetails  map[int64][]string // target id -> voter names in seat order
	IsTied       bool
	MaxVotes     int
	Notices      []Notice
}

// ResolveVotes counts votes cast by living players for living targets. A
// strict maximum eliminates its target; a shared maximum eliminates nobody.
// On elimination, the living Medium learns the role of the eliminated player.
func ResolveVotes(votes map[int64]int64, players []Player) VoteOutcome {
	out := VoteOutcome{
		Players:     clonePlayers(players),
		VoteCounts:  make(map[int64]int),
		VoteDetails: make(map[int64][]string),
	}

	for _, voter := range out.Players {
		if !voter.IsAlive {
			continue
		}
		target, ok := votes[voter.ID]
		if !ok {
			continue
		}
		if p, ok := findPlayer(out.Players, target); !ok || !p.IsAlive {
			continue
		}
		out.VoteCounts[target]++
		out.VoteDetails[target] = append(out.VoteDetails[target], voter.Name)
	}

	var leaders []int64
	for _, p := range out.Players {
		n := out.VoteCounts[p.ID]
		switch {
		case n == 0:
		case n > out.MaxVotes:
			out.MaxVotes = n
			leaders = []int64{p.ID}
		case n == out.MaxVotes:
			leaders = append(leaders, p.ID)
		}
	}
	out.IsTied = len(leaders) > 1
	if len(leaders) != 1 {
		return out
	}

	eliminated := leaders[0]
	out.EliminatedID = &eliminated
	i := indexOfPlayer(out.Players, eliminated)
	out.Players[i].IsAlive = false
	for _, p := range out.Players {
		if p.Role == RoleMedium && p.IsAlive {
			out.Notices = append(out.Notices, noticeFor(p, textMediumResult(out.Players[i].Name, out.Players[i].Role)))
			break
		}
	}
	return out
}

// Resolver holds the night actions queued since the last resolution.
type Resolver struct {
	mu      sync.Mutex
	pending []Action
}

// Queue adds a night action. A second action of the same type by the same
// actor replaces the first.
func (r *Resolver) Queue(a Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.pending {
		if p.PlayerID == a.PlayerID && p.Type == a.Type {
			r.pending[i] = a
			return
		}
	}
	r.pending = append(r.pending, a)
}

// Pending returns a copy of the queued actions.
func (r *Resolver) Pending() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Action(nil), r.pending...)
}

// HasQueued reports whether actor already queued an action of type t.
func (r *Resolver) HasQueued(actor int64, t ActionType) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.pending {
		if p.PlayerID == actor && p.Type == t {
			return true
		}
	}
	return false
}

// Drain empties the queue and returns what it held.
func (r *Resolver) Drain() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.pending
	r.pending = nil
	return out
}

// ResolveNight drains the queue and resolves it against players.
func (r *Resolver) ResolveNight(players []Player) NightOutcome {
	return ResolveNight(r.Drain(), players)
}
