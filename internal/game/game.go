// Package game is the werewolf engine: seats, phases, night and vote
// resolution, and the orchestration that drives AI opponents through them.
package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"werewolf-solo/internal/applog"
)

// Fallback lines when an AI cannot produce speech.
const (
	UtteranceEmpty = "I have nothing to say."
	UtteranceError = "I am having trouble thinking right now."
)

// Config wires a Game to its collaborators. Zero values select defaults.
type Config struct {
	Decider   Decider // nil: every AI choice is random
	Sinks     []Sink
	Scheduler Scheduler
	Roster    *Roster
	Rand      *rand.Rand

	TickUnit           time.Duration // length of one timer tick, default 1s
	DayDuration        int           // ticks, default DayDuration
	DiscussionInterval int           // ticks, default DiscussionInterval
	AITimeout          time.Duration // per decision, default 30s

	Now func() time.Time
}

// Game owns the state and the message log. All transitions run under
// opMu; human intents that find it held fail with ErrBusy.
type Game struct {
	cfg      Config
	decider  Decider
	sinks    []Sink
	sched    Scheduler
	roster   *Roster
	rng      *rand.Rand
	resolver Resolver

	ctx    context.Context
	cancel context.CancelFunc

	opMu    sync.Mutex
	loading atomic.Int32

	stateMu     sync.RWMutex
	state       State
	log         messageLog
	playerCount int

	// Guarded by opMu.
	dayEpoch   uint64
	discussion Task
	day        atomic.Pointer[countdown]
}

// New builds a game in the Setup phase. Zero Config fields take defaults.
func New(cfg Config) *Game {
	if cfg.Scheduler == nil {
		cfg.Scheduler = TickerScheduler{}
	}
	if cfg.Rand == nil {
		cfg.Rand = NewRand(0)
	}
	if cfg.Roster == nil {
		cfg.Roster = NewRoster(WithRand(cfg.Rand))
	}
	if cfg.TickUnit <= 0 {
		cfg.TickUnit = time.Second
	}
	if cfg.DayDuration <= 0 {
		cfg.DayDuration = DayDuration
	}
	if cfg.DiscussionInterval <= 0 {
		cfg.DiscussionInterval = DiscussionInterval
	}
	if cfg.AITimeout <= 0 {
		cfg.AITimeout = 30 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Game{
		cfg:     cfg,
		decider: cfg.Decider,
		sinks:   cfg.Sinks,
		sched:   cfg.Scheduler,
		roster:  cfg.Roster,
		rng:     cfg.Rand,
		ctx:     ctx,
		cancel:  cancel,
		state:   State{Phase: PhaseSetup, DayNumber: 1, Votes: map[int64]int64{}},
		log:     messageLog{now: cfg.Now},
	}
}

// Close stops the timers and cancels in-flight AI calls started by them.
func (g *Game) Close() {
	g.cancel()
	g.opMu.Lock()
	defer g.opMu.Unlock()
	g.stopTimersLocked()
}

// ============================================================================
// Intents
// ============================================================================

// InitializeGame deals a new set of players and clears the log.
func (g *Game) InitializeGame(playerCount int) error {
	if !g.opMu.TryLock() {
		return ErrBusy
	}
	defer g.opMu.Unlock()
	return g.initializeLocked(playerCount)
}

// StartGame moves a freshly initialized game into the first night.
func (g *Game) StartGame(ctx context.Context) error {
	if !g.opMu.TryLock() {
		return ErrBusy
	}
	defer g.opMu.Unlock()
	return g.startLocked(ctx)
}

// ResetGame deals again with the same player count and starts over.
func (g *Game) ResetGame(ctx context.Context) error {
	if !g.opMu.TryLock() {
		return ErrBusy
	}
	defer g.opMu.Unlock()

	g.stateMu.RLock()
	n := g.playerCount
	g.stateMu.RUnlock()
	if n <= 0 {
		n = DefaultPlayerCount
	}

	if err := g.initializeLocked(n); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return g.startLocked(ctx)
}

// SelectPlayer records a UI selection. It has no effect on rules.
func (g *Game) SelectPlayer(id int64) error {
	g.stateMu.Lock()
	defer g.stateMu.Unlock()
	if indexOfPlayer(g.state.Players, id) < 0 {
		return ErrInvalidTarget
	}
	g.state.SelectedPlayerID = &id
	g.publishLocked()
	return nil
}

// AddChatMessage posts a line from the living human.
func (g *Game) AddChatMessage(content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyMessage
	}

	g.stateMu.Lock()
	defer g.stateMu.Unlock()
	human, ok := humanCanAct(g.state.Players)
	if !ok {
		return ErrNoHuman
	}
	g.sinkMessage(g.log.chat(human, content))
	return nil
}

// SubmitAction applies a vote or queues a night action.
func (g *Game) SubmitAction(ctx context.Context, a Action) error {
	if !g.opMu.TryLock() {
		return ErrBusy
	}
	defer g.opMu.Unlock()

	s := g.snapshot()
	if !s.GameStarted {
		return ErrNotInitialized
	}
	if s.IsOver() {
		return ErrGameOver
	}
	actor, ok := findPlayer(s.Players, a.PlayerID)
	if !ok || !actor.IsAlive {
		return ErrInvalidActor
	}
	target, ok := a.Target()
	if !ok {
		return ErrInvalidTarget
	}

	switch a.Type {
	case ActionVote:
		return g.voteLocked(ctx, s, actor, target)
	case ActionKill, ActionProtect, ActionInvestigate:
		return g.nightActionLocked(ctx, s, actor, a.Type, target)
	}
	return fmt.Errorf("%w: unknown action %q", ErrNotEligible, a.Type)
}

// EndDiscussion ends the day early and opens the vote.
func (g *Game) EndDiscussion(ctx context.Context) error {
	if !g.opMu.TryLock() {
		return ErrBusy
	}
	defer g.opMu.Unlock()

	if g.snapshot().Phase != PhaseDay {
		return ErrWrongPhase
	}
	g.advanceLocked(ctx)
	return nil
}

// ============================================================================
// Accessors
// ============================================================================

// State returns a copy of the current state.
func (g *Game) State() State {
	return g.snapshot()
}

// Messages returns the whole log, private lines included.
func (g *Game) Messages() []Message {
	g.stateMu.RLock()
	defer g.stateMu.RUnlock()
	return g.log.all()
}

// VisibleMessages returns the log as seen by viewer.
func (g *Game) VisibleMessages(viewer int64) []Message {
	g.stateMu.RLock()
	defer g.stateMu.RUnlock()
	return g.log.visibleTo(viewer)
}

func (g *Game) AlivePlayers() []Player { return AlivePlayers(g.snapshot().Players) }
func (g *Game) DeadPlayers() []Player  { return DeadPlayers(g.snapshot().Players) }
func (g *Game) Werewolves() []Player   { return Werewolves(g.snapshot().Players) }
func (g *Game) Villagers() []Player    { return Villagers(g.snapshot().Players) }

func (g *Game) Human() (Player, bool) {
	return HumanPlayer(g.snapshot().Players)
}

// IsLoading reports whether AI decisions are being awaited.
func (g *Game) IsLoading() bool {
	return g.loading.Load() > 0
}

// DayTimeRemaining returns the ticks left in the day, or false when no
// day timer runs.
func (g *Game) DayTimeRemaining() (int, bool) {
	c := g.day.Load()
	if c == nil {
		return 0, false
	}
	return max(0, int(c.remaining.Load())), true
}

// ============================================================================
// Flow
// ============================================================================

func (g *Game) initializeLocked(playerCount int) error {
	players, err := g.roster.Initialize(playerCount)
	if err != nil {
		return err
	}
	g.stopTimersLocked()
	g.resolver.Drain()

	g.stateMu.Lock()
	g.state = State{Phase: PhaseSetup, Players: players, DayNumber: 1, Votes: map[int64]int64{}}
	g.playerCount = playerCount
	g.log.clear()
	for _, s := range g.sinks {
		s.LogCleared()
	}
	g.sinkMessage(g.log.system(textGameInitialized))
	g.publishLocked()
	g.stateMu.Unlock()

	log.Printf("Game initialized with %d players", playerCount)
	applog.LogState("after initialize", g.snapshot())
	return nil
}

func (g *Game) startLocked(ctx context.Context) error {
	s := g.snapshot()
	if len(s.Players) == 0 {
		g.say(textInitializeFirst)
		return ErrNotInitialized
	}
	if s.Phase != PhaseSetup {
		return ErrWrongPhase
	}

	g.update(func(st *State) {
		st.Phase = PhaseFirstNight
		st.GameStarted = true
		st.DayNumber = 1
		st.Winner = FactionNone
		st.Votes = map[int64]int64{}
	})
	g.say(textGameStarted)
	g.say(textNightActions)
	log.Printf("Game started, first night")

	if CanAutoTransition(PhaseFirstNight, g.snapshot().Players) {
		g.resolveNightLocked(ctx)
	}
	return nil
}

// concludeLocked ends the game if a faction has won, otherwise advances.
func (g *Game) concludeLocked(ctx context.Context) {
	s := g.snapshot()
	winner := CheckWinner(s.Players)
	log.Printf("Win check: %d werewolves, %d villagers alive", len(Werewolves(s.Players)), len(Villagers(s.Players)))
	if winner == FactionNone {
		g.advanceLocked(ctx)
		return
	}

	g.stopTimersLocked()
	g.update(func(st *State) {
		st.Winner = winner
		st.Phase = PhaseGameOver
	})
	g.say(textGameOver(winner))
	log.Printf("Game over, winner: %s", winner)
	applog.LogState("after game end", g.snapshot())
}

// advanceLocked performs the transition out of the current phase and any
// automatic work that follows it.
func (g *Game) advanceLocked(ctx context.Context) {
	s := g.snapshot()
	t := NextPhase(s.Phase, s.Players, s.DayNumber)
	if t.To == t.From || !t.From.CanTransitionTo(t.To) {
		return
	}
	applog.Debug("Phase %s -> %s (day %d)", t.From, t.To, t.DayNumber)

	switch t.To {
	case PhaseDay:
		g.update(func(st *State) {
			st.Phase = PhaseDay
			st.DayNumber = t.DayNumber
			st.Votes = map[int64]int64{}
		})
		g.say(textDayBegins(t.DayNumber))
		g.startDayLocked()

	case PhaseVoting:
		g.stopTimersLocked()
		g.update(func(st *State) {
			st.Phase = PhaseVoting
			st.Votes = map[int64]int64{}
		})
		g.say(textVotingBegins)
		if t.GenerateAIVotes {
			g.collectVotesLocked(ctx)
		}

	case PhaseNight:
		g.update(func(st *State) {
			st.Phase = PhaseNight
			st.Votes = map[int64]int64{}
		})
		g.say(textNightFalls)
		if t.ResolveNight {
			g.resolveNightLocked(ctx)
		}
	}
}

// ============================================================================
// Helpers
// ============================================================================

func (g *Game) snapshot() State {
	g.stateMu.RLock()
	defer g.stateMu.RUnlock()
	return g.state.Clone()
}

func (g *Game) update(fn func(*State)) {
	g.stateMu.Lock()
	defer g.stateMu.Unlock()
	fn(&g.state)
	g.publishLocked()
}

func (g *Game) publishLocked() {
	if len(g.sinks) == 0 {
		return
	}
	s := g.state.Clone()
	for _, sink := range g.sinks {
		sink.StateChanged(s)
	}
}

func (g *Game) sinkMessage(m Message) {
	for _, sink := range g.sinks {
		sink.MessageAdded(m)
	}
}

func (g *Game) say(content string) {
	g.stateMu.Lock()
	defer g.stateMu.Unlock()
	g.sinkMessage(g.log.system(content))
}

func (g *Game) announce(notices []Notice) {
	g.stateMu.Lock()
	defer g.stateMu.Unlock()
	for _, n := range notices {
		g.sinkMessage(g.log.notice(n))
	}
}

func (g *Game) speak(p Player, content string) {
	g.stateMu.Lock()
	defer g.stateMu.Unlock()
	g.sinkMessage(g.log.chat(p, content))
}

func (g *Game) viewFor(actor Player) View {
	g.stateMu.RLock()
	defer g.stateMu.RUnlock()
	return View{
		Phase:     g.state.Phase,
		DayNumber: g.state.DayNumber,
		Players:   maskPlayers(&actor, g.state.Players),
		Messages:  g.log.visibleTo(actor.ID),
	}
}

func (g *Game) loadingScope() func() {
	g.loading.Add(1)
	return func() { g.loading.Add(-1) }
}

// eligibleTargets lists who actor may pick for action t.
func eligibleTargets(actor Player, t ActionType, players []Player) []Player {
	var out []Player
	for _, p := range players {
		if !p.IsAlive || p.ID == actor.ID {
			continue
		}
		if t == ActionKill && p.IsWerewolf() {
			continue
		}
		out = append(out, p)
	}
	return out
}

func isEligibleTarget(actor Player, t ActionType, players []Player, target int64) bool {
	for _, p := range eligibleTargets(actor, t, players) {
		if p.ID == target {
			return true
		}
	}
	return false
}

// matchPlayer resolves a free-text answer to one of candidates by name,
// ignoring case and surrounding punctuation.
func matchPlayer(answer string, candidates []Player) (Player, bool) {
	name := strings.Trim(strings.TrimSpace(answer), " \t\r\n\"'`*.,!?:;()[]")
	if name == "" {
		return Player{}, false
	}
	for _, p := range candidates {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Player{}, false
}

func (g *Game) pick(candidates []Player) Player {
	return candidates[g.rng.Intn(len(candidates))]
}

// chooseTarget asks the decider for actor's target and falls back to a
// random eligible player when the answer cannot be used.
func (g *Game) chooseTarget(ctx context.Context, actor Player, t ActionType) (Player, bool) {
	candidates := eligibleTargets(actor, t, g.snapshot().Players)
	if len(candidates) == 0 {
		return Player{}, false
	}
	if g.decider == nil {
		return g.pick(candidates), true
	}

	view := g.viewFor(actor)
	callCtx, cancel := context.WithTimeout(ctx, g.cfg.AITimeout)
	defer cancel()

	var answer string
	var err error
	if t == ActionVote {
		answer, err = g.decider.ChooseVoteTarget(callCtx, actor, view)
	} else {
		answer, err = g.decider.ChooseNightActionTarget(callCtx, actor, t, view)
	}
	applog.LogAI(actor.Name, string(t), answer)
	if err != nil {
		applog.Error(fmt.Sprintf("chooseTarget: %s %s", actor.Name, t), err)
	} else if p, ok := matchPlayer(answer, candidates); ok {
		return p, true
	} else {
		applog.Debug("%s answered %q for %s, picking at random", actor.Name, answer, t)
	}
	return g.pick(candidates), true
}

func isContextDone(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
