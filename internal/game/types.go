package game

// Role is the secret role dealt to a seat.
type Role string

const (
	RoleWerewolf Role = "werewolf"
	RoleVillager Role = "villager"
	RoleSeer     Role = "seer"
	RoleKnight   Role = "knight"
	RoleMedium   Role = "medium"
)

// Title returns the capitalized role name used in player-facing messages.
func (r Role) Title() string {
	switch r {
	case RoleWerewolf:
		return "Werewolf"
	case RoleVillager:
		return "Villager"
	case RoleSeer:
		return "Seer"
	case RoleKnight:
		return "Knight"
	case RoleMedium:
		return "Medium"
	}
	return string(r)
}

// Phase is a step of the game state machine.
type Phase string

const (
	PhaseSetup      Phase = "setup"
	PhaseFirstNight Phase = "first_night"
	PhaseDay        Phase = "day"
	PhaseVoting     Phase = "voting"
	PhaseNight      Phase = "night"
	PhaseGameOver   Phase = "game_over"
)

// IsNight reports whether night actions may be submitted in p.
func (p Phase) IsNight() bool {
	return p == PhaseFirstNight || p == PhaseNight
}

// Faction identifies a winning side. The zero value means no winner yet.
type Faction string

const (
	FactionNone       Faction = ""
	FactionVillagers  Faction = "villagers"
	FactionWerewolves Faction = "werewolves"
)

// Title returns the display name of the faction.
func (f Faction) Title() string {
	switch f {
	case FactionVillagers:
		return "Villagers"
	case FactionWerewolves:
		return "Werewolves"
	}
	return ""
}

// Player is one seat at the table.
type Player struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Role        Role   `json:"role"`
	IsAlive     bool   `json:"is_alive"`
	IsAI        bool   `json:"is_ai"`
	IsProtected bool   `json:"is_protected"`
}

func (p Player) IsWerewolf() bool {
	return p.Role == RoleWerewolf
}

// State is the full, serializable game state.
type State struct {
	Phase            Phase           `json:"phase"`
	Players          []Player        `json:"players"`
	DayNumber        int             `json:"day_number"`
	Winner           Faction         `json:"winner,omitempty"`
	SelectedPlayerID *int64          `json:"selected_player_id,omitempty"`
	GameStarted      bool            `json:"game_started"`
	Votes            map[int64]int64 `json:"votes"`
}

// Clone returns a deep copy that shares no memory with s.
func (s State) Clone() State {
	out := s
	out.Players = clonePlayers(s.Players)
	if s.SelectedPlayerID != nil {
		id := *s.SelectedPlayerID
		out.SelectedPlayerID = &id
	}
	out.Votes = make(map[int64]int64, len(s.Votes))
	for voter, target := range s.Votes {
		out.Votes[voter] = target
	}
	return out
}

// IsOver reports whether a winner has been decided.
func (s State) IsOver() bool {
	return s.Winner != FactionNone
}

// ActionType is the kind of player action.
type ActionType string

const (
	ActionVote        ActionType = "vote"
	ActionKill        ActionType = "kill"
	ActionProtect     ActionType = "protect"
	ActionInvestigate ActionType = "investigate"
)

// IsNight reports whether the action is resolved at night.
func (t ActionType) IsNight() bool {
	return t == ActionKill || t == ActionProtect || t == ActionInvestigate
}

// Action is an intent by PlayerID, with an optional target.
type Action struct {
	Type           ActionType `json:"type"`
	PlayerID       int64      `json:"player_id"`
	TargetPlayerID *int64     `json:"target_player_id,omitempty"`
}

// Target returns the target id and whether one was given.
func (a Action) Target() (int64, bool) {
	if a.TargetPlayerID == nil {
		return 0, false
	}
	return *a.TargetPlayerID, true
}

// Targeting builds an action of type t from actor to target.
func Targeting(t ActionType, actor, target int64) Action {
	return Action{Type: t, PlayerID: actor, TargetPlayerID: &target}
}

func clonePlayers(players []Player) []Player {
	if players == nil {
		return nil
	}
	out := make([]Player, len(players))
	copy(out, players)
	return out
}

func findPlayer(players []Player, id int64) (Player, bool) {
	for _, p := range players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

func indexOfPlayer(players []Player, id int64) int {
	for i, p := range players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// AlivePlayers returns the living players in seat order.
func AlivePlayers(players []Player) []Player {
	var out []Player
	for _, p := range players {
		if p.IsAlive {
			out = append(out, p)
		}
	}
	return out
}

// DeadPlayers returns the eliminated players in seat order.
func DeadPlayers(players []Player) []Player {
	var out []Player
	for _, p := range players {
		if !p.IsAlive {
			out = append(out, p)
		}
	}
	return out
}

// Werewolves returns the living werewolves.
func Werewolves(players []Player) []Player {
	var out []Player
	for _, p := range players {
		if p.IsAlive && p.IsWerewolf() {
			out = append(out, p)
		}
	}
	return out
}

// Villagers returns the living players that are not werewolves.
func Villagers(players []Player) []Player {
	var out []Player
	for _, p := range players {
		if p.IsAlive && !p.IsWerewolf() {
			out = append(out, p)
		}
	}
	return out
}

// HumanPlayer returns the first non-AI player, if any.
func HumanPlayer(players []Player) (Player, bool) {
	for _, p := range players {
		if !p.IsAI {
			return p, true
		}
	}
	return Player{}, false
}
