package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"fieldagent/pkg/completion"
	"fieldagent/pkg/completion/gemini"
	"fieldagent/pkg/completion/openai"
	"fieldagent/pkg/config"
	"fieldagent/pkg/domain"
	"fieldagent/pkg/runner"
	"fieldagent/pkg/server"
	"fieldagent/pkg/store/sqlite"
	"fieldagent/pkg/tools"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	flag.Parse()

	// Setup logger.
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
	slog.SetDefault(logger)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			slog.Error("Failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
	}

	ctx := context.Background()

	// Initialize the knowledge-base store.
	os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	docs, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer docs.Close()

	// Initialize the optional remote completion capability.
	var completer completion.Completer
	if key := cfg.APIKey(); key != "" {
		switch cfg.Provider.Kind {
		case "openai":
			completer = openai.New(key)
		case "gemini":
			completer, err = gemini.New(ctx, key)
			if err != nil {
				slog.Error("Failed to initialize Gemini completer", "error", err)
				os.Exit(1)
			}
		}
	}
	if completer == nil {
		slog.Warn("No completion provider configured, running in local reasoning mode")
	}

	registry := tools.NewRegistry(
		tools.NewWeather(),
		tools.NewInformation(docs),
		tools.NewClock(nil),
		tools.NewAnalyst(true),
	)

	run := runner.New(completer, cfg.Provider.Model)
	run.Window = cfg.HistoryWindow

	newAgent := func() *domain.Agent {
		return domain.NewAgent(cfg.Agent.Name, cfg.Agent.Instructions, registry)
	}

	srv := server.New(run, docs, newAgent)
	if err := srv.Start(cfg.ListenAddr); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
