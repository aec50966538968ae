package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SystemPlayerID is the author id of narrator messages.
const SystemPlayerID int64 = -1

// MessageKind decides how a message is shown and who may see it.
type MessageKind string

const (
	KindSystem  MessageKind = "system"
	KindPlayer  MessageKind = "player"
	KindAI      MessageKind = "ai"
	KindPrivate MessageKind = "private"
)

// Message is one line of the game transcript.
type Message struct {
	ID          string      `json:"id"`
	PlayerID    int64       `json:"player_id"`
	PlayerName  string      `json:"player_name"`
	Content     string      `json:"content"`
	Timestamp   time.Time   `json:"timestamp"`
	Kind        MessageKind `json:"kind"`
	RecipientID *int64      `json:"recipient_id,omitempty"`
}

// VisibleTo reports whether viewer may read m. A message with a recipient,
// private or not, is only visible to that recipient.
func (m Message) VisibleTo(viewer int64) bool {
	if m.RecipientID == nil {
		return m.Kind != KindPrivate
	}
	return *m.RecipientID == viewer
}

// Notice is a narrator line produced by resolution. A nil RecipientID means
// the line is public. AsSystem addresses the line to its recipient but
// renders it as a plain system line.
type Notice struct {
	RecipientID *int64
	Content     string
	AsSystem    bool
}

func publicNotice(content string) Notice {
	return Notice{Content: content}
}

// noticeFor addresses content to recipient alone. The human reads it as a
// system line, an AI player as a private one.
func noticeFor(recipient Player, content string) Notice {
	id := recipient.ID
	return Notice{RecipientID: &id, Content: content, AsSystem: !recipient.IsAI}
}

// messageLog is the append-only game transcript. It is not safe for
// concurrent use; Game guards it.
type messageLog struct {
	messages []Message
	now      func() time.Time
}

func (l *messageLog) add(m Message) Message {
	m.ID = uuid.NewString()
	m.Timestamp = l.now()
	l.messages = append(l.messages, m)
	return m
}

func (l *messageLog) system(content string) Message {
	return l.add(Message{PlayerID: SystemPlayerID, PlayerName: "System", Content: content, Kind: KindSystem})
}

func (l *messageLog) private(recipient int64, content string) Message {
	return l.add(Message{PlayerID: SystemPlayerID, PlayerName: "System", Content: content, Kind: KindPrivate, RecipientID: &recipient})
}

func (l *messageLog) notice(n Notice) Message {
	switch {
	case n.RecipientID == nil:
		return l.system(n.Content)
	case n.AsSystem:
		return l.add(Message{PlayerID: SystemPlayerID, PlayerName: "System", Content: n.Content, Kind: KindSystem, RecipientID: n.RecipientID})
	}
	return l.private(*n.RecipientID, n.Content)
}

func (l *messageLog) chat(p Player, content string) Message {
	kind := KindPlayer
	if p.IsAI {
		kind = KindAI
	}
	return l.add(Message{PlayerID: p.ID, PlayerName: p.Name, Content: content, Kind: kind})
}

func (l *messageLog) clear() {
	l.messages = nil
}

func (l *messageLog) all() []Message {
	return append([]Message(nil), l.messages...)
}

func (l *messageLog) visibleTo(viewer int64) []Message {
	var out []Message
	for _, m := range l.messages {
		if m.VisibleTo(viewer) {
			out = append(out, m)
		}
	}
	return out
}

// Narrator lines.
const (
	textGameInitialized  = "Game initialized! Ready to start."
	textInitializeFirst  = "Please initialize the game first."
	textGameStarted      = "The game has begun! The first night falls..."
	textNightActions     = "All players close their eyes. Special roles, wake up and perform your actions."
	textVotingBegins     = "Voting phase begins. Choose who to eliminate."
	textNightFalls       = "Night falls again. Werewolves, choose your next victim."
	textWerewolfCantKill = "Werewolves cannot kill on the first night."
	textTimesUp          = "Time's up! Moving to voting phase."
	textNoVotes          = "No votes were cast."
	textVoteTied         = "The vote was tied. No one is eliminated."
)

func textDayBegins(day int) string {
	return fmt.Sprintf("Day %d begins. Discuss and vote for who you think is a werewolf.", day)
}

func textPlayerVoted(name string) string {
	return fmt.Sprintf("%s has voted.", name)
}

func textPlayerProtected(name string) string {
	return fmt.Sprintf("%s was attacked, but was protected and survived!", name)
}

func textPlayerKilled(name string) string {
	return fmt.Sprintf("%s was killed during the night.", name)
}

func textSeerResult(target string, isWerewolf bool) string {
	role := "not a Werewolf"
	if isWerewolf {
		role = "a Werewolf"
	}
	return fmt.Sprintf("You investigated %s and discovered they are %s.", target, role)
}

func textMediumResult(target string, role Role) string {
	return fmt.Sprintf("You have channeled the spirit of the eliminated player. %s was a %s.", target, role.Title())
}

func textGameOver(winner Faction) string {
	return fmt.Sprintf("Game Over! %s win!", winner.Title())
}

// votingSummary renders the public tally for a resolved vote.
func votingSummary(out VoteOutcome, players []Player) string {
	var b strings.Builder
	b.WriteString("Voting Results:")
	if len(out.VoteDetails) == 0 {
		b.WriteString("\n" + textNoVotes)
		return b.String()
	}
	for _, p := range players {
		voters, ok := out.VoteDetails[p.ID]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n- %s received votes from: %s.", p.Name, strings.Join(voters, ", "))
	}
	if out.EliminatedID != nil {
		if p, ok := findPlayer(players, *out.EliminatedID); ok {
			fmt.Fprintf(&b, "\n%s has been voted out with %d votes.", p.Name, out.MaxVotes)
		}
	} else {
		b.WriteString("\n" + textVoteTied)
	}
	return b.String()
}
