package game

import "context"

// View is what one player is allowed to know when deciding: the messages
// visible to them and the players with every other role hidden, except
// that werewolves see each other.
type View struct {
	Phase     Phase
	DayNumber int
	Players   []Player
	Messages  []Message
}

// Decider picks targets and speech for AI players. Answers are player
// names or free text; the engine validates them and falls back on its own
// when an answer is unusable or an error is returned.
type Decider interface {
	ChooseVoteTarget(ctx context.Context, actor Player, view View) (string, error)
	ChooseNightActionTarget(ctx context.Context, actor Player, action ActionType, view View) (string, error)
	ChooseNextSpeaker(ctx context.Context, players []Player, messages []Message, day int) (string, error)
	GenerateUtterance(ctx context.Context, actor Player, view View) (string, error)
}

// Sink observes the message log and state. Calls are synchronous and made
// while the game holds its state lock, so a Sink must not call back into
// the Game.
type Sink interface {
	MessageAdded(m Message)
	LogCleared()
	StateChanged(s State)
}

// maskPlayers hides roles that actor does not know.
func maskPlayers(actor *Player, players []Player) []Player {
	out := clonePlayers(players)
	for i := range out {
		if actor != nil {
			if out[i].ID == actor.ID {
				continue
			}
			if actor.IsWerewolf() && out[i].IsWerewolf() {
				continue
			}
		}
		out[i].Role = ""
	}
	return out
}

// publicChat returns the player and AI chat lines, the only messages shown
// to the speaker facilitator.
func publicChat(messages []Message) []Message {
	var out []Message
	for _, m := range messages {
		if m.Kind == KindPlayer || m.Kind == KindAI {
			out = append(out, m)
		}
	}
	return out
}
