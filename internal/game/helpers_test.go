package game

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// ============================================================================
// Test doubles
// ============================================================================

// manualScheduler is a fake clock. Tasks only fire from Advance, on the
// caller's goroutine.
type manualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	tasks []*manualTask
}

type manualTask struct {
	interval time.Duration
	next     time.Duration
	fn       func() bool
	stopped  atomic.Bool
}

func (t *manualTask) Stop()        { t.stopped.Store(true) }
func (t *manualTask) Active() bool { return !t.stopped.Load() }

func (s *manualScheduler) Every(interval time.Duration, fn func() bool) Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTask{interval: interval, next: s.now + interval, fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

// Advance moves the clock forward by d and fires every task that falls due,
// earliest first.
func (s *manualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		var due *manualTask
		for _, t := range s.tasks {
			if t.Active() && t.next <= target && (due == nil || t.next < due.next) {
				due = t
			}
		}
		if due == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		s.now = due.next
		due.next += due.interval
		s.mu.Unlock()

		if !due.fn() {
			due.Stop()
		}
	}
}

func (s *manualScheduler) activeTasks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if t.Active() {
			n++
		}
	}
	return n
}

// fakeDecider answers from scripted functions. A nil function answers "".
type fakeDecider struct {
	vote    func(actor Player, view View) (string, error)
	night   func(actor Player, t ActionType, view View) (string, error)
	speaker func(players []Player, messages []Message) (string, error)
	utter   func(actor Player, view View) (string, error)

	mu    sync.Mutex
	calls []string
	views map[string][]View
}

func (f *fakeDecider) record(call string, actor Player, view *View) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call+":"+actor.Name)
	if view != nil {
		if f.views == nil {
			f.views = make(map[string][]View)
		}
		f.views[actor.Name] = append(f.views[actor.Name], *view)
	}
}

func (f *fakeDecider) ChooseVoteTarget(_ context.Context, actor Player, view View) (string, error) {
	f.record("vote", actor, &view)
	if f.vote == nil {
		return "", nil
	}
	return f.vote(actor, view)
}

func (f *fakeDecider) ChooseNightActionTarget(_ context.Context, actor Player, t ActionType, view View) (string, error) {
	f.record(string(t), actor, &view)
	if f.night == nil {
		return "", nil
	}
	return f.night(actor, t, view)
}

func (f *fakeDecider) ChooseNextSpeaker(_ context.Context, players []Player, messages []Message, _ int) (string, error) {
	f.record("speaker", Player{Name: "facilitator"}, nil)
	if f.speaker == nil {
		return "", nil
	}
	return f.speaker(players, messages)
}

func (f *fakeDecider) GenerateUtterance(_ context.Context, actor Player, view View) (string, error) {
	f.record("utter", actor, &view)
	if f.utter == nil {
		return "", nil
	}
	return f.utter(actor, view)
}

func (f *fakeDecider) callCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

type recordingSink struct {
	mu       sync.Mutex
	messages []Message
	cleared  int
	states   []State
}

func (s *recordingSink) MessageAdded(m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, m)
}

func (s *recordingSink) LogCleared() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared++
	s.messages = nil
}

func (s *recordingSink) StateChanged(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = append(s.states, st)
}

// ============================================================================
// Helpers
// ============================================================================

type testGame struct {
	*Game
	sched   *manualScheduler
	decider *fakeDecider
	sink    *recordingSink
}

// The six-seat layout most tests use. Seat 0 is the human.
var standardSeats = []Role{RoleVillager, RoleWerewolf, RoleWerewolf, RoleSeer, RoleKnight, RoleMedium}

const (
	testDay        = 6
	testDiscussion = 2
)

// newTestGame initializes a game and overrides the dealt roles with seats.
func newTestGame(t *testing.T, seats []Role, opts ...RosterOption) *testGame {
	t.Helper()
	sched := &manualScheduler{}
	decider := &fakeDecider{}
	sink := &recordingSink{}
	rng := NewRand(42)
	g := New(Config{
		Decider:            decider,
		Sinks:              []Sink{sink},
		Scheduler:          sched,
		Rand:               rng,
		Roster:             NewRoster(append([]RosterOption{WithRand(rng)}, opts...)...),
		TickUnit:           time.Second,
		DayDuration:        testDay,
		DiscussionInterval: testDiscussion,
	})
	t.Cleanup(g.Close)

	if err := g.InitializeGame(len(seats)); err != nil {
		t.Fatalf("InitializeGame: %v", err)
	}
	g.stateMu.Lock()
	for i, r := range seats {
		g.state.Players[i].Role = r
	}
	g.stateMu.Unlock()

	return &testGame{Game: g, sched: sched, decider: decider, sink: sink}
}

func (tg *testGame) player(t *testing.T, id int64) Player {
	t.Helper()
	p, ok := findPlayer(tg.State().Players, id)
	if !ok {
		t.Fatalf("no player %d", id)
	}
	return p
}

func (tg *testGame) kill(id int64) {
	tg.stateMu.Lock()
	defer tg.stateMu.Unlock()
	tg.state.Players[indexOfPlayer(tg.state.Players, id)].IsAlive = false
}

func (tg *testGame) advanceTicks(n int) {
	tg.sched.Advance(time.Duration(n) * time.Second)
}

func (tg *testGame) requirePhase(t *testing.T, want Phase) {
	t.Helper()
	if got := tg.State().Phase; got != want {
		t.Fatalf("phase = %s, want %s", got, want)
	}
}

func nameIn(players []Player, id int64) string {
	if p, ok := findPlayer(players, id); ok {
		return p.Name
	}
	return ""
}

func hasContent(messages []Message, substr string) bool {
	for _, m := range messages {
		if strings.Contains(m.Content, substr) {
			return true
		}
	}
	return false
}

func countContent(messages []Message, substr string) int {
	n := 0
	for _, m := range messages {
		if strings.Contains(m.Content, substr) {
			n++
		}
	}
	return n
}

func ptr(id int64) *int64 {
	return &id
}
