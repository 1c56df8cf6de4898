package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/bytebender77/MindMate/internal"
	"github.com/bytebender77/MindMate/internal/journal"
	"github.com/bytebender77/MindMate/internal/mcpserver"
	"github.com/bytebender77/MindMate/internal/remote"
	"github.com/bytebender77/MindMate/internal/settings"
	pkgconfig "github.com/bytebender77/MindMate/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, string, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	loaded, err := pkgconfig.LoadIfExists(configPath, cfg)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if !loaded {
		configPath = ""
	}
	return cfg, configPath, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, configPath, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}
	if configPath != "" {
		opts = append(opts, internal.WithConfigPath(configPath))
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	loc, err := cfg.Journal.Location()
	if err != nil {
		return fmt.Errorf("resolve timezone: %w", err)
	}

	client := remote.New(cfg.Remote.BaseURL, &http.Client{Timeout: cfg.Remote.Timeout()})
	jsvc := journal.NewService(client, nil, cfg.Journal.AuthorID, loc)
	ssvc := settings.NewService(client)

	return mcpserver.New(jsvc, ssvc, client).ServeStdio()
}

func main() {
	cmd := &cli.Command{
		Name:   "mindmate",
		Usage:  "Personal journal with emotion analysis, mood statistics, and reflections",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "mcp",
				Usage:  "Serve journaling tools over the Model Context Protocol on stdio",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
