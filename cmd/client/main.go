package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"captrivia/internal/app"
	"captrivia/internal/config"
	"captrivia/internal/domain"
	"captrivia/internal/transport/rest"
	"captrivia/internal/transport/ws"
)

func main() {
	cfg := config.Load()

	// Set up logger
	var logger *slog.Logger
	logOpts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	if cfg.Logging.Format == "json" {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, logOpts))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stderr, logOpts))
	}

	slog.SetDefault(logger)

	if cfg.Client.PlayerName == "" {
		logger.Error("PLAYER_NAME is required")
		os.Exit(1)
	}

	logger.Info("starting captrivia client",
		"server", cfg.Server.URL,
		"player", cfg.Client.PlayerName,
	)

	api := rest.NewClient(cfg.Server.URL)

	conn, err := ws.Dial(cfg.Server.URL, cfg.Client.PlayerName, cfg.Client.ReconnectDelay, logger)
	if err != nil {
		logger.Error("connect failed", "error", err)
		os.Exit(1)
	}

	engine := app.New(conn, cfg.Client.PlayerName, app.Callbacks{
		OnStateChange:      printState,
		OnServerError:      func(msg string) { fmt.Printf("server error: %s\n", msg) },
		OnAnswerResult:     printAnswerResult,
		OnConnState:        func(s ws.ConnState) { fmt.Printf("[%s]\n", s) },
		RefreshLobby:       func() { fetchGames(api, logger) },
		RefreshLeaderboard: func() { fetchLeaderboard(api, logger) },
	}, logger)
	defer engine.Close()

	fetchGames(api, logger)

	// REPL in the foreground, SIGINT handling behind it
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-quit:
			logger.Info("shutting down")
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if !dispatch(engine, api, logger, line) {
				return
			}
		}
	}
}

// dispatch runs one REPL command. It returns false when the user quits.
func dispatch(engine *app.Engine, api *rest.Client, logger *slog.Logger, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}

	var err error
	switch fields[0] {
	case "quit", "exit":
		return false

	case "help":
		printHelp()

	case "games":
		fetchGames(api, logger)

	case "leaderboard":
		fetchLeaderboard(api, logger)

	case "status":
		printState(engine.State())

	case "create":
		if len(fields) < 3 {
			fmt.Println("usage: create <name> <question-count>")
			return true
		}
		count, convErr := strconv.Atoi(fields[2])
		if convErr != nil {
			fmt.Println("question count must be a number")
			return true
		}
		err = engine.CreateGame(fields[1], count)

	case "join":
		if len(fields) < 2 {
			fmt.Println("usage: join <game-id>")
			return true
		}
		err = engine.JoinGame(fields[1])

	case "ready":
		state := engine.State()
		if state.Game == nil {
			fmt.Println("not in a game")
			return true
		}
		err = engine.ReadyGame(state.Game.ID)

	case "start":
		state := engine.State()
		if state.Game == nil {
			fmt.Println("not in a game")
			return true
		}
		err = engine.StartGame(state.Game.ID)

	case "answer":
		if len(fields) < 2 {
			fmt.Println("usage: answer <option-index>")
			return true
		}
		index, convErr := strconv.Atoi(fields[1])
		if convErr != nil {
			fmt.Println("option index must be a number")
			return true
		}
		state := engine.State()
		if state.Game == nil || state.CurrentQuestion == nil {
			fmt.Println("no question is live")
			return true
		}
		err = engine.AnswerGame(state.Game.ID, index, state.CurrentQuestion.ID)

	default:
		fmt.Printf("unknown command %q, try help\n", fields[0])
	}

	if err != nil {
		fmt.Printf("command failed: %v\n", err)
	}
	return true
}

func printHelp() {
	fmt.Println(`commands:
  games                      list joinable games
  leaderboard                show the leaderboard
  create <name> <questions>  create a game
  join <game-id>             join a game
  ready                      ready up in the current game
  start                      start the current game (creator only)
  answer <option-index>      answer the live question
  status                     print the current session state
  quit                       exit`)
}

func printState(state domain.SessionState) {
	switch state.Phase {
	case domain.PhaseWaiting:
		game := state.Game
		fmt.Printf("waiting in %q (%d questions)\n", game.Name, game.QuestionCount)
		for _, p := range game.Players {
			marker := " "
			if state.IsReady(p) {
				marker = "*"
			}
			fmt.Printf("  %s %s\n", marker, p)
		}
	case domain.PhaseInQuestion:
		q := state.CurrentQuestion
		fmt.Printf("%s (%ds)\n", q.Text, q.Seconds)
		for i, opt := range q.Options {
			fmt.Printf("  %d) %s\n", i, opt)
		}
	default:
		fmt.Printf("phase: %s\n", state.Phase)
	}
}

func printAnswerResult(correct bool) {
	if correct {
		fmt.Println("correct answer!")
	} else {
		fmt.Println("incorrect answer.")
	}
}

func fetchGames(api *rest.Client, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	games, err := api.FetchGames(ctx)
	if err != nil {
		logger.Warn("lobby refresh failed", "error", err)
		return
	}

	if len(games) == 0 {
		fmt.Println("no games available")
		return
	}
	for _, g := range games {
		fmt.Printf("%s  %q  %d questions, %d players, %s\n",
			g.ID, g.Name, g.QuestionCount, g.PlayerCount, g.State)
	}
}

func fetchLeaderboard(api *rest.Client, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	players, err := api.FetchLeaderboard(ctx)
	if err != nil {
		logger.Warn("leaderboard refresh failed", "error", err)
		return
	}

	for i, p := range players {
		fmt.Printf("%2d. %s  %d\n", i+1, p.Name, p.Score)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
