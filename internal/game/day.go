package game

import (
	"context"
	"log"
	"strings"
	"time"

	"werewolf-solo/internal/applog"
)

func (g *Game) voteLocked(ctx context.Context, s State, voter Player, target int64) error {
	if s.Phase != PhaseVoting {
		return ErrWrongPhase
	}
	if !isEligibleTarget(voter, ActionVote, s.Players, target) {
		return ErrInvalidTarget
	}

	g.update(func(st *State) {
		st.Votes[voter.ID] = target
	})
	g.say(textPlayerVoted(voter.Name))
	log.Printf("%s voted for player %d", voter.Name, target)

	g.collectVotesLocked(ctx)
	return nil
}

// collectVotesLocked fills in votes for living AI players that have not
// voted yet, then resolves the vote.
func (g *Game) collectVotesLocked(ctx context.Context) {
	done := g.loadingScope()
	defer done()

	s := g.snapshot()
	for _, p := range s.Players {
		if !p.IsAI || !p.IsAlive {
			continue
		}
		if _, voted := s.Votes[p.ID]; voted {
			continue
		}
		target, ok := g.chooseTarget(ctx, p, ActionVote)
		if !ok {
			continue
		}
		g.update(func(st *State) {
			st.Votes[p.ID] = target.ID
		})
		applog.Debug("AI %s votes for %s", p.Name, target.Name)
	}

	g.resolveVotesLocked(ctx)
}

func (g *Game) resolveVotesLocked(ctx context.Context) {
	s := g.snapshot()
	out := ResolveVotes(s.Votes, s.Players)

	g.say(votingSummary(out, s.Players))
	g.update(func(st *State) {
		st.Players = out.Players
	})
	g.announce(out.Notices)

	if out.EliminatedID != nil {
		log.Printf("Village eliminated player %d with %d votes", *out.EliminatedID, out.MaxVotes)
	} else {
		log.Printf("No elimination (tied: %v, max votes: %d)", out.IsTied, out.MaxVotes)
	}
	applog.LogState("after vote resolution", g.snapshot())

	g.concludeLocked(ctx)
}

// ============================================================================
// Day timer and discussion
// ============================================================================

func (g *Game) stopTimersLocked() {
	g.dayEpoch++
	if c := g.day.Swap(nil); c != nil {
		c.stop()
	}
	if g.discussion != nil {
		g.discussion.Stop()
		g.discussion = nil
	}
}

// startDayLocked starts the countdown and the AI discussion for a new day.
// Any previous timers are cancelled first.
func (g *Game) startDayLocked() {
	g.stopTimersLocked()
	epoch := g.dayEpoch

	c := newCountdown(g.cfg.DayDuration)
	c.task = g.sched.Every(g.cfg.TickUnit, func() bool {
		if !c.tick() {
			return true
		}
		g.dayTimeUp(epoch)
		return false
	})
	g.day.Store(c)

	interval := time.Duration(g.cfg.DiscussionInterval) * g.cfg.TickUnit
	g.discussion = g.sched.Every(interval, func() bool {
		return g.discussionTick(epoch)
	})
}

// dayTimeUp runs on the timer when the countdown reaches zero. It waits for
// any operation in flight and does nothing if that operation already left
// the day.
func (g *Game) dayTimeUp(epoch uint64) {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	if g.dayEpoch != epoch || g.ctx.Err() != nil {
		return
	}
	s := g.snapshot()
	if s.Phase != PhaseDay || s.IsOver() {
		return
	}
	g.say(textTimesUp)
	log.Printf("Day %d timer expired", s.DayNumber)
	g.advanceLocked(g.ctx)
}

// discussionTick gives one AI the floor. Ticks that find an operation in
// flight are skipped; the loop ends once the day is over.
func (g *Game) discussionTick(epoch uint64) bool {
	if g.ctx.Err() != nil {
		return false
	}
	if !g.opMu.TryLock() {
		return true
	}
	defer g.opMu.Unlock()

	if g.dayEpoch != epoch {
		return false
	}
	s := g.snapshot()
	if s.Phase != PhaseDay || s.IsOver() {
		return false
	}
	g.discussionTurnLocked(g.ctx, s)
	return true
}

func (g *Game) discussionTurnLocked(ctx context.Context, s State) {
	speakers := livingAI(s.Players)
	if len(speakers) == 0 {
		return
	}
	done := g.loadingScope()
	defer done()
	speaker := g.nextSpeaker(ctx, s, speakers)
	g.speak(speaker, g.utterance(ctx, speaker))
}

func livingAI(players []Player) []Player {
	var out []Player
	for _, p := range players {
		if p.IsAI && p.IsAlive {
			out = append(out, p)
		}
	}
	return out
}

func (g *Game) nextSpeaker(ctx context.Context, s State, speakers []Player) Player {
	if g.decider == nil {
		return g.pick(speakers)
	}
	callCtx, cancel := context.WithTimeout(ctx, g.cfg.AITimeout)
	defer cancel()

	g.stateMu.RLock()
	chat := publicChat(g.log.messages)
	g.stateMu.RUnlock()

	answer, err := g.decider.ChooseNextSpeaker(callCtx, maskPlayers(nil, s.Players), chat, s.DayNumber)
	applog.LogAI("facilitator", "next_speaker", answer)
	if err != nil {
		if !isContextDone(err) {
			applog.Error("nextSpeaker", err)
		}
		return g.pick(speakers)
	}
	if p, ok := matchPlayer(answer, speakers); ok {
		return p
	}
	return g.pick(speakers)
}

func (g *Game) utterance(ctx context.Context, speaker Player) string {
	if g.decider == nil {
		return UtteranceEmpty
	}
	callCtx, cancel := context.WithTimeout(ctx, g.cfg.AITimeout)
	defer cancel()

	text, err := g.decider.GenerateUtterance(callCtx, speaker, g.viewFor(speaker))
	applog.LogAI(speaker.Name, "utterance", text)
	if err != nil {
		applog.Error("utterance: "+speaker.Name, err)
		return UtteranceError
	}
	if text = strings.TrimSpace(text); text == "" {
		return UtteranceEmpty
	}
	return text
}
