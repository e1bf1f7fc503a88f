package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/typeduel/internal/config"
	"github.com/DoyleJ11/typeduel/internal/profile"
	"github.com/DoyleJ11/typeduel/internal/session"
	"github.com/DoyleJ11/typeduel/internal/sound"
	"github.com/DoyleJ11/typeduel/internal/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "duelist:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Username == "" {
		return fmt.Errorf("set DUEL_USERNAME to pick a name")
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := profile.New(cfg.ServerURL)
	player, err := api.CreatePlayer(ctx, cfg.Username)
	if err != nil {
		return err
	}
	fmt.Printf("welcome %s  rank %d (%s)  %dW/%dL\n",
		player.Username, player.Rank, player.RankName, player.Wins, player.Losses)

	conn, err := transport.Dial(ctx, cfg.ServerURL, cfg.Username, log)
	if err != nil {
		return err
	}
	defer conn.Close()

	s := session.New(ctx, conn,
		session.WithLogger(log),
		session.WithSound(sound.NewLogPlayer(log)))

	// Stdin is read on its own goroutine because Scan cannot be cancelled.
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	fmt.Println(helpText)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return conn.ReadPump(ctx, s.Inbox())
	})

	g.Go(func() error {
		r := newRenderer(os.Stdout)
		for v := range s.Updates() {
			r.Render(v)
		}
		return nil
	})

	g.Go(func() error {
		defer func() { s.Inbox() <- session.Shutdown{} }()
		defer conn.Close()
		for {
			select {
			case <-ctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					return nil
				}
				if quit := dispatchLine(ctx, s, api, line); quit {
					return nil
				}
			}
		}
	})

	return g.Wait()
}

// dispatchLine turns one input line into a session message. Slash commands
// drive the lifecycle; any other line replaces the full typing buffer.
func dispatchLine(ctx context.Context, s *session.Session, api *profile.Client, line string) (quit bool) {
	switch strings.TrimSpace(line) {
	case "/join":
		s.Inbox() <- session.JoinQueue{}
	case "/leave":
		s.Inbox() <- session.LeaveQueue{}
	case "/again":
		s.Inbox() <- session.PlayAgain{}
	case "/top":
		printLeaderboard(ctx, api)
	case "/quit":
		return true
	default:
		s.Inbox() <- session.Input{Typed: line}
	}
	return false
}

func printLeaderboard(ctx context.Context, api *profile.Client) {
	players, err := api.Leaderboard(ctx)
	if err != nil {
		fmt.Println("leaderboard unavailable:", err)
		return
	}
	for i, p := range players {
		fmt.Printf("%2d. %-16s %d (%s)\n", i+1, p.Username, p.Rank, p.RankName)
	}
}

const helpText = `commands: /join  /leave  /again  /top  /quit
during a match, type the target text and press enter to submit your buffer`

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	// Keep the rendered arena clean; logs go to a file next to the binary.
	cfg.OutputPaths = []string{"duelist.log"}
	cfg.ErrorOutputPaths = []string{"duelist.log"}
	return cfg.Build()
}
