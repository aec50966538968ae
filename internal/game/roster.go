package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"time"
)

// HumanName is the display name of the human seat.
const HumanName = "Visitor"

// DefaultPlayerCount matches the size of DefaultRolePool.
const DefaultPlayerCount = 6

// DefaultRolePool is the canonical role distribution for six seats.
var DefaultRolePool = []Role{RoleWerewolf, RoleWerewolf, RoleVillager, RoleSeer, RoleKnight, RoleMedium}

// DefaultAINames are handed out to AI seats without repetition.
var DefaultAINames = []string{"Alex", "Billy", "Chris", "Danny", "Emerson"}

// Roster deals roles and names onto seats.
type Roster struct {
	rolePool []Role
	names    []string
	noHuman  bool
	rng      *rand.Rand
}

// RosterOption configures a Roster.
type RosterOption func(*Roster)

// WithRolePool replaces the canonical role pool.
func WithRolePool(roles []Role) RosterOption {
	return func(r *Roster) {
		r.rolePool = append([]Role(nil), roles...)
	}
}

// WithAINames replaces the AI name pool.
func WithAINames(names []string) RosterOption {
	return func(r *Roster) {
		r.names = append([]string(nil), names...)
	}
}

// WithRand makes dealing deterministic for the given generator.
func WithRand(rng *rand.Rand) RosterOption {
	return func(r *Roster) {
		r.rng = rng
	}
}

// WithoutHuman seats only AI players, for spectated games.
func WithoutHuman() RosterOption {
	return func(r *Roster) {
		r.noHuman = true
	}
}

func NewRoster(opts ...RosterOption) *Roster {
	r := &Roster{
		rolePool: append([]Role(nil), DefaultRolePool...),
		names:    append([]string(nil), DefaultAINames...),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rng == nil {
		r.rng = NewRand(0)
	}
	return r
}

// NewRand returns a generator for seed, drawing a fresh seed when seed is 0.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		var err error
		if seed, err = newSeed(); err != nil {
			seed = time.Now().UnixNano()
		}
	}
	return rand.New(rand.NewSource(seed))
}

func newSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Initialize deals a fresh set of players. Seat 0 is the human unless the
// roster was built WithoutHuman. Every player is alive and unprotected.
func (r *Roster) Initialize(playerCount int) ([]Player, error) {
	if playerCount <= 0 {
		return nil, ErrNoPlayers
	}
	if len(r.rolePool) != playerCount {
		return nil, fmt.Errorf("%w: %d roles for %d players", ErrRolePoolMismatch, len(r.rolePool), playerCount)
	}
	aiSeats := playerCount
	if !r.noHuman {
		aiSeats--
	}
	if aiSeats > len(r.names) {
		return nil, fmt.Errorf("%w: %d names for %d AI seats", ErrNamePoolExhausted, len(r.names), aiSeats)
	}

	roles := append([]Role(nil), r.rolePool...)
	shuffle(r.rng, len(roles), func(i, j int) { roles[i], roles[j] = roles[j], roles[i] })
	names := append([]string(nil), r.names...)
	shuffle(r.rng, len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })

	players := make([]Player, playerCount)
	next := 0
	for i := range players {
		players[i] = Player{
			ID:      int64(i),
			Role:    roles[i],
			IsAlive: true,
			IsAI:    true,
		}
		if i == 0 && !r.noHuman {
			players[i].Name = HumanName
			players[i].IsAI = false
			continue
		}
		players[i].Name = names[next]
		next++
	}
	return players, nil
}

// shuffle is a Fisher-Yates shuffle over n elements.
func shuffle(rng *rand.Rand, n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		swap(i, j)
	}
}
