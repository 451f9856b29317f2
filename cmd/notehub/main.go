package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/notehub/internal"
	"github.com/starford/notehub/internal/models"
	pkgconfig "github.com/starford/notehub/pkg/config"
)

var version = "dev"

// loadConfig reads the config file. The client commands also work without
// one, using the defaults.
func loadConfig(cmd *cli.Command, optional bool) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	load := pkgconfig.Load[internal.Config]
	if optional {
		load = pkgconfig.LoadOptional[internal.Config]
	}
	if err := load(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd, false)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func browse(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}
	return internal.Browse(ctx, internal.WithConfig(cfg))
}

func list(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}
	return internal.ListNotes(ctx, cmd.String("search"), int(cmd.Int("page")), internal.WithConfig(cfg))
}

func create(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}
	draft := models.NoteDraft{
		Title:   cmd.String("title"),
		Content: cmd.String("content"),
		Tag:     models.Tag(cmd.String("tag")),
	}
	return internal.CreateNote(ctx, draft, internal.WithConfig(cfg))
}

func remove(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("usage: %s delete <id>", cmd.Root().Name)
	}
	cfg, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}
	return internal.DeleteNote(ctx, cmd.Args().First(), internal.WithConfig(cfg))
}

func mcp(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd, false)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version))
}

func main() {
	cmd := &cli.Command{
		Name:    "notehub",
		Usage:   "Paginated, searchable notes with a terminal client",
		Version: version,
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
				Name:   "serve",
				Usage:  "Run the notes API server",
				Action: serve,
			},
			{
				Name:   "browse",
				Usage:  "Open the interactive notes screen",
				Action: browse,
			},
			{
				Name:  "list",
				Usage: "Print one page of notes",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "Substring to search for"},
					&cli.IntFlag{Name: "page", Aliases: []string{"p"}, Value: 1, Usage: "Page number"},
				},
				Action: list,
			},
			{
				Name:  "create",
				Usage: "Create a note",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Required: true},
					&cli.StringFlag{Name: "content"},
					&cli.StringFlag{Name: "tag", Value: string(models.TagTodo), Usage: "Todo, Work, Personal, Meeting or Shopping"},
				},
				Action: create,
			},
			{
				Name:      "delete",
				Usage:     "Delete a note",
				ArgsUsage: "<id>",
				Action:    remove,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: mcp,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
