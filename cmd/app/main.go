package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/nibi/internal"
	"github.com/starford/nibi/internal/ingot"
	"github.com/starford/nibi/internal/ingotservice"
	"github.com/starford/nibi/internal/taxonomy"
	pkgconfig "github.com/starford/nibi/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if root := cmd.String("root"); root != "" {
		cfg.Project.Root = root
	}
	return cfg, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func build(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	stats, err := internal.Build(ctx, internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr))
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	return printJSON(stats)
}

type parseOutput struct {
	*ingot.Ingot
	Unresolved []string `json:"unresolved,omitempty"`
}

func parse(_ context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return errors.New("parse: a file argument is required")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := cfg.Parse.ParseOptions()
	if cmd.Bool("strict") {
		opts = append(opts, ingot.WithStrict(true))
	}
	rec, err := ingot.ParseFile(path, opts...)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	tax, err := taxonomy.LoadFiles(cfg.Project.CategoriesPath(), cfg.Project.TagsPath())
	if err != nil {
		return err
	}
	out := parseOutput{Ingot: rec}
	for _, u := range tax.Resolve(rec) {
		out.Unresolved = append(out.Unresolved, u.String())
	}
	return printJSON(out)
}

func newIngot(_ context.Context, cmd *cli.Command) error {
	title := cmd.Args().First()
	rel := ingotservice.PathFor(title)
	if rel == "" {
		return errors.New("new: a title with at least one letter or digit is required")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	dir := cfg.Project.IngotsPath()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("new: %w", err)
	}
	dst := filepath.Join(dir, rel)
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("new: %w", err)
	}
	if _, err := f.Write(ingotservice.Scaffold(title, time.Now())); err != nil {
		f.Close()
		return fmt.Errorf("new: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("new: %w", err)
	}
	fmt.Println(dst)
	return nil
}

func mcp(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version))
}

func main() {
	cmd := &cli.Command{
		Name:    "nibi",
		Usage:   "Ingot site content: parse, index, search and serve",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (yaml, json or toml)",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "root",
				Usage:   "Project root, overrides project.root",
				Sources: cli.EnvVars("NIBI_ROOT"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Index the project, watch it and serve the HTTP API",
				Action: serve,
			},
			{
				Name:   "build",
				Usage:  "Sync the project into the index once",
				Action: build,
			},
			{
				Name:      "parse",
				Usage:     "Parse one ingot file and print it as JSON",
				ArgsUsage: "FILE",
				Action:    parse,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "strict", Usage: "Fail on any unreadable field"},
				},
			},
			{
				Name:      "new",
				Usage:     "Write a draft ingot for TITLE",
				ArgsUsage: "TITLE",
				Action:    newIngot,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the MCP tools over stdio",
				Action: mcp,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
