package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"werewolf-solo/internal/applog"
	"werewolf-solo/internal/game"
	"werewolf-solo/internal/opponent"
	"werewolf-solo/internal/store"
)

func main() {
	fv := registerFlags(flag.CommandLine)
	flag.Parse()
	cfg := loadConfig(*fv.configPath, *fv.envPath)
	fv.applyTo(&cfg)

	// Log to a file; the terminal belongs to the game.
	logFile, err := os.OpenFile("werewolf.log", os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		log.Fatal("Failed to open log file:", err)
	}
	defer logFile.Close()
	if cfg.Dev {
		log.SetOutput(io.MultiWriter(os.Stderr, logFile))
	} else {
		log.SetOutput(logFile)
	}

	if err := applog.Init(cfg.toLogConfig()); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer applog.Close()
	applog.SetDevMode(cfg.Dev)
	if applog.Get().IsEnabled() {
		log.Println("Extended logging enabled")
	}

	st, err := store.Open(cfg.DB)
	if err != nil {
		log.Fatal("Failed to open session store:", err)
	}
	defer st.Close()
	applog.Get().SetDump(st.Dump)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var decider game.Decider
	if opp, err := opponent.New(ctx, cfg.toOpponentConfig()); err != nil {
		log.Printf("Opponent: %v; AI players will act at random", err)
	} else if opp != nil {
		decider = opp
	}

	if err := run(ctx, cfg, decider, st, os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

// run plays one terminal session until quit, end of input or ctx ends.
func run(ctx context.Context, cfg AppConfig, decider game.Decider, st *store.Store, in io.Reader, out io.Writer) error {
	rng := game.NewRand(cfg.Seed)
	rosterOpts := []game.RosterOption{game.WithRand(rng)}
	if cfg.Spectate {
		rosterOpts = append(rosterOpts, game.WithoutHuman(), game.WithAINames(spectatorNames))
	}

	con := newConsole(out, cfg.Spectate)
	sinks := []game.Sink{con}
	if st != nil {
		sinks = append(sinks, st)
	}
	g := game.New(game.Config{
		Decider:            decider,
		Sinks:              sinks,
		Rand:               rng,
		Roster:             game.NewRoster(rosterOpts...),
		TickUnit:           cfg.Tick,
		DayDuration:        cfg.DayDuration,
		DiscussionInterval: cfg.DiscussionInterval,
		AITimeout:          cfg.AITimeout,
	})
	defer g.Close()
	con.game = g
	con.store = st

	if err := g.InitializeGame(cfg.Players); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	con.printf("%s\n\n", helpText)
	if err := g.StartGame(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	// The input loop ends the group with errQuit so the clock stops too.
	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok || !con.handle(gctx, line) {
					return errQuit
				}
			}
		}
	})
	eg.Go(func() error {
		return con.clock(gctx, 30*tickOrDefault(cfg.Tick))
	})
	if err := eg.Wait(); err != nil && !errors.Is(err, errQuit) {
		return err
	}
	return nil
}

var errQuit = errors.New("quit")

// tickOrDefault keeps a zero tick from config out of time.NewTicker.
func tickOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Second
	}
	return d
}
