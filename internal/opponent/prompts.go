package opponent

import (
	"fmt"
	"strings"

	"werewolf-solo/internal/game"
)

var roleDescriptions = map[game.Role]string{
	game.RoleVillager: "You are a villager. Your goal is to identify and vote out the werewolves.",
	game.RoleWerewolf: "You are a werewolf. Your goal is to eliminate all villagers. You can kill one player each night.",
	game.RoleSeer:     "You are the Seer. Each night, you can choose one player to investigate and learn their true role.",
	game.RoleKnight:   "You are the Knight. Each night, you can choose one player to protect from werewolf attacks.",
	game.RoleMedium:   "You are the Medium. After a player is eliminated by vote, you will be told their role.",
}

var actionInstructions = map[game.ActionType]string{
	game.ActionVote:        "You must vote for a player to eliminate. Review the conversation and choose a player who you suspect is a werewolf.",
	game.ActionKill:        "As a werewolf, you must choose a player to kill tonight. Choose a player who seems to be a threat to the werewolves.",
	game.ActionInvestigate: "As the Seer, you must choose a player to investigate to learn their true role.",
	game.ActionProtect:     "As the Knight, you must choose a player to protect from a werewolf attack tonight.",
}

const outputFormat = `IMPORTANT - OUTPUT FORMAT:
- Your response should ONLY contain what you would actually SAY to other players
- Do NOT include internal thought processes (like "because..." or "I should...")
- Respond as if you are actually speaking in the game, with natural dialogue only
- Refer to yourself using first person pronouns ("I", "me", "my"). Do NOT refer to yourself by your character name`

const werewolfDayStrategy = `IMPORTANT: You are a werewolf. During daytime discussion, use these strategies:
- NEVER reveal that you are a werewolf
- Pretend to be a villager or other role (Seer, Knight, etc.)
- Sometimes claim a false role (fake coming out/CO) can be effective
- Direct suspicion toward other players to deflect attention from yourself
- Never say things like "As a werewolf" - this is absolutely forbidden
- Act naturally as if you are on the village team

CONSISTENCY IS CRUCIAL:
- Once you claim a false role, maintain that persona throughout the entire game
- If you report fake investigation results or actions, remember that information and avoid contradictions
- Reference your previous statements in the conversation to maintain a consistent character
- Demonstrate knowledge and behavior patterns appropriate to your claimed role

Example: If you say "I am the Seer and investigated X", continue acting as the Seer and remember that result.

` + outputFormat

const villageDayStrategy = `IMPORTANT: You are on the village team. During daytime discussion, you can:
- Come out (CO) with your real role if strategically beneficial
- Report special ability results (if you're the Seer, etc.)
- However, you may also choose to hide your role strategically
- Your goal is to find the werewolves

Use your judgment to decide whether to reveal or hide your role.

` + outputFormat

func aliveNames(players []game.Player) string {
	var names []string
	for _, p := range game.AlivePlayers(players) {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}

func targetNames(actor game.Player, players []game.Player) string {
	var names []string
	for _, p := range game.AlivePlayers(players) {
		if p.ID != actor.ID {
			names = append(names, p.Name)
		}
	}
	return strings.Join(names, ", ")
}

func transcript(messages []game.Message) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		lines = append(lines, m.PlayerName+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}

// speechSystemPrompt sets up an AI player for a line of discussion.
func speechSystemPrompt(actor game.Player, view game.View) string {
	strategy := "Use your role and abilities to take action."
	if view.Phase == game.PhaseDay {
		strategy = villageDayStrategy
		if actor.IsWerewolf() {
			strategy = werewolfDayStrategy
		}
	}

	return fmt.Sprintf(`You are playing a werewolf game. %s

Current game state:
- Phase: %s
- Day: %d
- You are: %s (%s)
- Alive players: %s

%s

Respond naturally as if you are a real player in this game. Keep your responses concise and in character. Respond in English.`,
		roleDescriptions[actor.Role], view.Phase, view.DayNumber, actor.Name, actor.Role, aliveNames(view.Players), strategy)
}

func speechUserPrompt(view game.View) string {
	return fmt.Sprintf("Recent game messages:\n%s\n\nWhat would you like to do or say in this situation?", transcript(view.Messages))
}

// actionSystemPrompt asks for a single target name.
func actionSystemPrompt(actor game.Player, action game.ActionType, view game.View) string {
	return fmt.Sprintf(`You are %s, a %s in a werewolf game.
You need to make a decision about %s.
%s

Your role is: %s
Alive players: %s

Conversation History:
%s

Based on the conversation and your role, who is the best player to %s?

Respond with ONLY the name of the player you want to target.
Do not target yourself.
Choose from the list of alive players.
Do not add any other text or explanation.
`, actor.Name, actor.Role, action, actionInstructions[action], actor.Role, aliveNames(view.Players),
		transcript(view.Messages), action)
}

func actionUserPrompt(actor game.Player, action game.ActionType, view game.View) string {
	return fmt.Sprintf("Available targets: %s. Your choice for %s:", targetNames(actor, view.Players), action)
}

// facilitatorRecent is how many chat lines the facilitator gets.
const facilitatorRecent = 5

func facilitatorPrompt(players []game.Player, messages []game.Message, day int) string {
	var roster strings.Builder
	for i, p := range players {
		if i > 0 {
			roster.WriteString("\n")
		}
		status := "Dead"
		if p.IsAlive {
			status = "Alive"
		}
		fmt.Fprintf(&roster, "- %s: %s", p.Name, status)
		if p.Role != "" {
			fmt.Fprintf(&roster, " (Role: %s)", p.Role)
		}
	}

	if len(messages) > facilitatorRecent {
		messages = messages[len(messages)-facilitatorRecent:]
	}

	return fmt.Sprintf(`You are a facilitator for a werewolf game, tasked with keeping the discussion active and engaging.
Analyze the current conversation flow and determine which player should speak next to make the discussion most interesting or to get closer to the truth.

# Rules
- Your task is to select one player who should speak next.
- You must choose from the alive players only.
- Your response should contain ONLY the name of the chosen player. No additional explanations or greetings are needed.

# Game Information
## Player List
%s

## Current: Day %d

## Recent Conversation Log
%s

# Instructions
Based on the above information, respond with ONLY the name of the player who should speak next.`,
		roster.String(), day, transcript(messages))
}
