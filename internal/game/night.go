package game

import (
	"context"
	"fmt"
	"log"

	"werewolf-solo/internal/applog"
)

func (g *Game) nightActionLocked(ctx context.Context, s State, actor Player, t ActionType, target int64) error {
	if !s.Phase.IsNight() {
		return ErrWrongPhase
	}
	if t == ActionKill && s.Phase == PhaseFirstNight {
		g.say(textWerewolfCantKill)
		return fmt.Errorf("%w: no kills on the first night", ErrWrongPhase)
	}
	if want, ok := NightActionFor(actor.Role); !ok || want != t || !HasNightAction(actor, s.Phase) {
		return ErrNotEligible
	}
	if !isEligibleTarget(actor, t, s.Players, target) {
		return ErrInvalidTarget
	}

	g.resolver.Queue(Targeting(t, actor.ID, target))
	log.Printf("%s queued %s on player %d", actor.Name, t, target)

	if !actor.IsAI {
		g.resolveNightLocked(ctx)
	}
	return nil
}

// queueAIActionsLocked lets every living AI with a night action choose a
// target. Actors that already queued keep their choice.
func (g *Game) queueAIActionsLocked(ctx context.Context) {
	s := g.snapshot()
	for _, p := range s.Players {
		if !p.IsAI || !HasNightAction(p, s.Phase) {
			continue
		}
		t, _ := NightActionFor(p.Role)
		if g.resolver.HasQueued(p.ID, t) {
			continue
		}
		target, ok := g.chooseTarget(ctx, p, t)
		if !ok {
			continue
		}
		g.resolver.Queue(Targeting(t, p.ID, target.ID))
		applog.Debug("AI %s (%s) chose %s on %s", p.Name, p.Role, t, target.Name)
	}
}

// resolveNightLocked gathers AI actions, resolves the whole queue and moves on.
func (g *Game) resolveNightLocked(ctx context.Context) {
	done := g.loadingScope()
	defer done()

	g.queueAIActionsLocked(ctx)

	s := g.snapshot()
	out := g.resolver.ResolveNight(s.Players)
	g.update(func(st *State) {
		st.Players = out.Players
	})
	g.announce(out.Notices)

	switch {
	case out.KilledID != nil:
		log.Printf("Night resolved: player %d killed", *out.KilledID)
	case out.WasProtected:
		log.Printf("Night resolved: player %d attacked but protected", *out.AttackedID)
	default:
		log.Printf("Night resolved: no attack")
	}
	applog.LogState("after night resolution", g.snapshot())

	g.concludeLocked(ctx)
}
