package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"werewolf-solo/internal/game"
	"werewolf-solo/internal/store"
)

// spectatorNames seats six AI players when nobody plays.
var spectatorNames = append(append([]string(nil), game.DefaultAINames...), "Frankie")

const helpText = `Commands:
  say <text>            talk to the village (plain text works too)
  vote <name>           vote during the voting phase
  kill <name>           werewolf night action
  protect <name>        knight night action
  investigate <name>    seer night action
  end                   end the discussion and start voting
  state                 show the players and the phase
  history [session]     list past sessions or replay one
  reset                 deal a new game
  help                  show this text
  quit                  leave`

// console is the terminal front end. As a game.Sink it prints every
// message the human may read; in spectator mode it prints everything.
type console struct {
	out     io.Writer
	outMu   sync.Mutex
	viewer  int64
	observe bool // print private lines too

	game  *game.Game
	store *store.Store
}

func newConsole(out io.Writer, spectate bool) *console {
	return &console{out: out, viewer: 0, observe: spectate}
}

func (c *console) printf(format string, args ...any) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// ============================================================================
// game.Sink
// ============================================================================

func (c *console) MessageAdded(m game.Message) {
	if !c.observe && !m.VisibleTo(c.viewer) {
		return
	}
	c.printf("%s\n", formatMessage(m))
}

func (c *console) LogCleared() {
	c.printf("\n--- new game ---\n")
}

func (c *console) StateChanged(game.State) {}

func formatMessage(m game.Message) string {
	ts := m.Timestamp.Format("15:04:05")
	switch m.Kind {
	case game.KindSystem:
		return fmt.Sprintf("[%s] * %s", ts, m.Content)
	case game.KindPrivate:
		return fmt.Sprintf("[%s] (private) %s", ts, m.Content)
	}
	return fmt.Sprintf("[%s] %s: %s", ts, m.PlayerName, m.Content)
}

// ============================================================================
// Commands
// ============================================================================

// handle runs one input line. It reports false when the user wants to quit.
func (c *console) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	var err error
	switch strings.ToLower(cmd) {
	case "quit", "exit":
		return false
	case "help", "?":
		c.printf("%s\n", helpText)
	case "say":
		err = c.game.AddChatMessage(arg)
	case "vote":
		err = c.act(ctx, game.ActionVote, arg)
	case "kill":
		err = c.act(ctx, game.ActionKill, arg)
	case "protect":
		err = c.act(ctx, game.ActionProtect, arg)
	case "investigate":
		err = c.act(ctx, game.ActionInvestigate, arg)
	case "end":
		err = c.game.EndDiscussion(ctx)
	case "reset":
		err = c.game.ResetGame(ctx)
	case "state":
		c.printState()
	case "history":
		err = c.history(arg)
	default:
		err = c.game.AddChatMessage(line)
	}
	if err != nil {
		c.printf("! %s\n", describeError(err))
	}
	return true
}

func (c *console) act(ctx context.Context, t game.ActionType, name string) error {
	human, ok := c.game.Human()
	if !ok {
		return game.ErrNoHuman
	}
	target, ok := findByName(c.game.State().Players, name)
	if !ok {
		return fmt.Errorf("%w: no player named %q", game.ErrInvalidTarget, name)
	}
	return c.game.SubmitAction(ctx, game.Targeting(t, human.ID, target.ID))
}

func findByName(players []game.Player, name string) (game.Player, bool) {
	name = strings.TrimSpace(name)
	for _, p := range players {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return game.Player{}, false
}

func describeError(err error) string {
	switch {
	case errors.Is(err, game.ErrBusy):
		return "The AI players are thinking, try again in a moment."
	case errors.Is(err, game.ErrGameOver):
		return "The game is over. Type reset to play again."
	case errors.Is(err, game.ErrNoHuman):
		return "You are not in the game anymore; you can only watch."
	case errors.Is(err, game.ErrWrongPhase):
		return "You cannot do that in this phase."
	case errors.Is(err, game.ErrNotEligible):
		return "Your role cannot do that."
	}
	return err.Error()
}

func (c *console) printState() {
	s := c.game.State()
	human, hasHuman := c.game.Human()

	var b strings.Builder
	fmt.Fprintf(&b, "Phase: %s  Day: %d", s.Phase, s.DayNumber)
	if left, ok := c.game.DayTimeRemaining(); ok {
		fmt.Fprintf(&b, "  Time left: %s", game.FormatRemaining(left))
	}
	if s.IsOver() {
		fmt.Fprintf(&b, "  Winner: %s", s.Winner.Title())
	}
	b.WriteString("\n")

	for _, p := range s.Players {
		status := "alive"
		if !p.IsAlive {
			status = "dead"
		}
		role := "?"
		switch {
		case c.observe || s.IsOver():
			role = p.Role.Title()
		case hasHuman && p.ID == human.ID:
			role = p.Role.Title() + " (you)"
		case hasHuman && human.IsWerewolf() && p.IsWerewolf():
			role = p.Role.Title()
		}
		fmt.Fprintf(&b, "  %-8s %-5s %s\n", p.Name, status, role)
	}
	c.printf("%s", b.String())
}

// history lists the recorded sessions, or replays one by its list number.
func (c *console) history(arg string) error {
	if c.store == nil {
		return errors.New("no session store")
	}
	sessions, err := c.store.Sessions()
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}

	if arg == "" {
		for i, s := range sessions {
			marker := ""
			if s.ID == c.store.CurrentSession() {
				marker = " (current)"
			}
			c.printf("%d. %s  %d messages%s\n", i+1, s.StartedAt.Format(time.DateTime), s.Messages, marker)
		}
		return nil
	}

	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(sessions) {
		return fmt.Errorf("history: no session %q", arg)
	}
	session := sessions[n-1].ID

	var msgs []game.Message
	if c.observe {
		msgs, err = c.store.Messages(session)
	} else {
		msgs, err = c.store.MessagesFor(session, c.viewer)
	}
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	for _, m := range msgs {
		c.printf("%s\n", formatMessage(m))
	}
	return nil
}

// clock announces the remaining day time every interval until ctx ends.
func (c *console) clock(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if left, ok := c.game.DayTimeRemaining(); ok && left > 0 {
				c.printf("  ~ %s left in the day\n", game.FormatRemaining(left))
			}
		}
	}
}
