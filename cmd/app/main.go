package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/notelink/internal"
	"github.com/starford/notelink/internal/apperr"
	"github.com/starford/notelink/internal/notice"
	pkgconfig "github.com/starford/notelink/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// withComponents wires the application for a one-shot command.
func withComponents(cmd *cli.Command, fn func(c *internal.Components, n notice.Notifier) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	n := notice.NewWriter(cmd.Root().ErrWriter)
	c, err := internal.Open(internal.WithConfig(cfg), internal.WithNotifier(n), internal.WithTerminal())
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer c.Close()
	return fn(c, n)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func requireArg(cmd *cli.Command, name string) (string, error) {
	v := cmd.Args().First()
	if v == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return v, nil
}

func followAction(ctx context.Context, cmd *cli.Command) error {
	ref, err := requireArg(cmd, "reference")
	if err != nil {
		return err
	}
	return withComponents(cmd, func(c *internal.Components, _ notice.Notifier) error {
		res, err := c.Service.Follow(ctx, ref, cmd.String("from"))
		if err != nil {
			return err
		}
		return writeJSON(cmd.Root().Writer, res)
	})
}

func classifyAction(_ context.Context, cmd *cli.Command) error {
	ref, err := requireArg(cmd, "reference")
	if err != nil {
		return err
	}
	return withComponents(cmd, func(c *internal.Components, _ notice.Notifier) error {
		_, err := fmt.Fprintln(cmd.Root().Writer, c.Service.Classify(ref))
		return err
	})
}

func linksAction(ctx context.Context, cmd *cli.Command) error {
	note, err := requireArg(cmd, "note")
	if err != nil {
		return err
	}
	return withComponents(cmd, func(c *internal.Components, _ notice.Notifier) error {
		reports, err := c.Service.Links(ctx, note)
		if err != nil {
			return err
		}
		return writeJSON(cmd.Root().Writer, reports)
	})
}

func backAction(ctx context.Context, cmd *cli.Command) error {
	return withComponents(cmd, func(c *internal.Components, n notice.Notifier) error {
		path, err := c.Service.Back(ctx)
		if errors.Is(err, apperr.ErrEmptyHistory) {
			n.Notify(err.Error())
			return nil
		}
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.Root().Writer, path)
		return err
	})
}

func historyAction(_ context.Context, cmd *cli.Command) error {
	return withComponents(cmd, func(c *internal.Components, _ notice.Notifier) error {
		if cmd.Bool("clear") {
			return c.Service.ClearHistory()
		}
		entries, err := c.Service.History(int(cmd.Int("limit")))
		if err != nil {
			return err
		}
		return writeJSON(cmd.Root().Writer, entries)
	})
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func mcpAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunMCP(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "notelink",
		Usage: "Follow links between Markdown notes, files, URLs and bibliography entries",
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
				Name:      "follow",
				Usage:     "Follow a reference",
				ArgsUsage: "REFERENCE",
				Action:    followAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "from",
						Usage: "Document the reference appears in; becomes the active document",
					},
				},
			},
			{
				Name:      "classify",
				Usage:     "Print the kind of a reference",
				ArgsUsage: "REFERENCE",
				Action:    classifyAction,
			},
			{
				Name:      "links",
				Usage:     "List the links of a note and where they lead",
				ArgsUsage: "NOTE",
				Action:    linksAction,
			},
			{
				Name:   "back",
				Usage:  "Return to the previous document",
				Action: backAction,
			},
			{
				Name:   "history",
				Usage:  "Show the navigation history",
				Action: historyAction,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Usage: "Maximum entries", Value: 50},
					&cli.BoolFlag{Name: "clear", Usage: "Clear the history"},
				},
			},
			{
				Name:   "serve",
				Usage:  "Run the REST API with server-sent events",
				Action: serveAction,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: mcpAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
