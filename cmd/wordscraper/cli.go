package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/wordscraper/internal/config"
	"github.com/hpungsan/wordscraper/internal/errors"
	"github.com/hpungsan/wordscraper/internal/ledger"
	"github.com/hpungsan/wordscraper/internal/sentiment"
	"github.com/hpungsan/wordscraper/internal/state"
	"github.com/hpungsan/wordscraper/internal/tally"
	"github.com/hpungsan/wordscraper/internal/watch"
	"github.com/hpungsan/wordscraper/internal/web"
)

// runtime bundles the wired tally stack for one command invocation.
type runtime struct {
	cfg    *config.Config
	folder string
	writer *ledger.Writer
	eng    *tally.Engine
}

// newRuntime builds the tokenizer, lexicon, ledger writer, and engine from
// config and persisted session state.
func newRuntime(db *sql.DB, cfg *config.Config) (*runtime, error) {
	folder, err := filepath.Abs(cfg.FolderPath)
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid folder_path: %v", err))
	}

	pattern := cfg.WordPattern
	if pattern == "" {
		pattern = tally.DefaultWordPattern
	}
	tok, err := tally.NewTokenizer(pattern, tally.NewStopwords(cfg.Stopwords))
	if err != nil {
		return nil, err
	}

	lex := sentiment.Default()
	if cfg.LexiconPath != "" {
		lex, err = sentiment.Load(cfg.LexiconPath)
		if err != nil {
			return nil, err
		}
	}

	store := state.NewStore(db)
	prior, err := store.Load()
	if err != nil {
		return nil, err
	}

	sessionID := ""
	if prior != nil {
		sessionID = prior.SessionID
	}
	if sessionID == "" {
		sessionID, err = state.NewSessionID()
		if err != nil {
			return nil, err
		}
	}

	writer := &ledger.Writer{
		Dir:       folder,
		ExportDir: cfg.JSONExportPath,
		Score:     lex.Score,
		Session:   sessionID,
	}

	eng := tally.NewEngine(tok, cfg.ExcludedFolders, prior, tally.Options{
		SessionID:  sessionID,
		Sink:       writer,
		Store:      store,
		FlushDelay: time.Duration(cfg.UpdateFrequencyMs) * time.Millisecond,
		AutoExport: cfg.EnableAutomaticJSONExport,
	})

	return &runtime{cfg: cfg, folder: folder, writer: writer, eng: eng}, nil
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "wordscraper",
		Usage:   "Daily word-frequency ledger for a watched notes folder",
		Version: Version,
		Commands: []*cli.Command{
			watchCmd(db, cfg),
			tallyCmd(db, cfg),
			ledgerCmd(db, cfg),
			exportCmd(db, cfg),
			resetCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// watchCmd creates the watch command.
func watchCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Watch the folder and keep today's ledger current",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "http", Usage: "Serve a read-only status page on host:port (e.g. 127.0.0.1:8080)"},
			&cli.StringFlag{Name: "folder", Aliases: []string{"f"}, Usage: "Override the configured folder_path"},
			&cli.StringFlag{Name: "stopwords", Usage: "Extra newline-separated stopwords"},
			&cli.StringFlag{Name: "exclude", Usage: "Extra newline-separated excluded folder prefixes"},
		},
		Action: func(c *cli.Context) error {
			if folder := c.String("folder"); folder != "" {
				cfg.FolderPath = folder
			}
			if s := c.String("stopwords"); s != "" {
				cfg.Stopwords = append(cfg.Stopwords, config.SplitLines(s)...)
			}
			if s := c.String("exclude"); s != "" {
				cfg.ExcludedFolders = append(cfg.ExcludedFolders, config.SplitLines(s)...)
			}

			rt, err := newRuntime(db, cfg)
			if err != nil {
				return outputError(err)
			}
			defer rt.eng.Close()

			tick := time.Duration(cfg.RolloverPollMs) * time.Millisecond
			watcher := watch.New(rt.folder, tick, rt.eng)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if addr := c.String("http"); addr != "" {
				bind, port, err := parseHTTPAddr(addr)
				if err != nil {
					return outputError(err)
				}
				srv := web.NewServer(rt.eng, rt.writer, Version, bind, port)
				go func() {
					if err := web.Run(srv); err != nil && err != http.ErrServerClosed {
						fmt.Fprintf(os.Stderr, "status server: %v\n", err)
					}
				}()
			}

			fmt.Fprintf(os.Stderr, "watching %s\n", rt.folder)
			if err := watcher.Run(ctx); err != nil && err != context.Canceled {
				return outputError(err)
			}
			return nil
		},
	}
}

// tallyCmd creates the tally command.
func tallyCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "tally",
		Usage: "Print today's word frequencies",
		Action: func(c *cli.Context) error {
			rt, err := newRuntime(db, cfg)
			if err != nil {
				return outputError(err)
			}

			day, snap := rt.eng.Snapshot()
			type row struct {
				Word  string `json:"word"`
				Count int    `json:"count"`
			}
			rows := make([]row, 0, len(snap))
			for _, e := range snap.Sorted() {
				rows = append(rows, row{Word: e.Word, Count: e.Count})
			}
			return outputJSON(map[string]any{
				"day":     day,
				"session": rt.eng.SessionID(),
				"words":   rows,
			})
		},
	}
}

// ledgerCmd creates the ledger command.
func ledgerCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "ledger",
		Usage: "Open or create a day's ledger file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "day", Aliases: []string{"d"}, Usage: "Day in YYYY-MM-DD form (defaults to today)"},
		},
		Action: func(c *cli.Context) error {
			rt, err := newRuntime(db, cfg)
			if err != nil {
				return outputError(err)
			}

			day := c.String("day")
			if day == "" {
				day = tally.LocalDay(time.Now())
			} else if _, perr := time.Parse(tally.DayFormat, day); perr != nil {
				return outputError(errors.NewInvalidRequest("day must be YYYY-MM-DD"))
			}

			path, err := rt.writer.OpenOrCreate(day)
			if err != nil {
				return outputError(err)
			}
			snap, err := rt.writer.ReadDay(day)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{
				"day":   day,
				"path":  path,
				"words": len(snap),
			})
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the latest ledger as sentiment-annotated JSON",
		Action: func(c *cli.Context) error {
			if !cfg.EnableJSONExport {
				return outputError(errors.NewInvalidRequest("json export is disabled; set enable_json_export in config.json"))
			}

			rt, err := newRuntime(db, cfg)
			if err != nil {
				return outputError(err)
			}

			day, _ := rt.writer.Latest()
			if day == "" {
				// Nothing to export yet.
				return outputJSON(map[string]any{
					"exported": false,
					"words":    0,
				})
			}
			snap, err := rt.writer.ReadDay(day)
			if err != nil {
				return outputError(err)
			}
			if err := rt.writer.ExportDay(day, snap); err != nil {
				if errors.Is(err, errors.ErrFolderMissing) && rt.writer.ExportDir != "" {
					return outputError(errors.NewInvalidRequest("json_export_path does not exist: " + rt.writer.ExportDir))
				}
				return outputError(err)
			}
			return outputJSON(map[string]any{
				"exported": true,
				"day":      day,
				"path":     rt.writer.ExportPathFor(day),
				"words":    len(snap),
			})
		},
	}
}

// resetCmd creates the reset command.
func resetCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "Clear today's tally and rewrite the ledger empty",
		Action: func(c *cli.Context) error {
			rt, err := newRuntime(db, cfg)
			if err != nil {
				return outputError(err)
			}

			if err := rt.eng.Reset(); err != nil {
				return outputError(err)
			}
			day, _ := rt.eng.Snapshot()
			return outputJSON(map[string]any{
				"day":   day,
				"reset": true,
			})
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if sErr, ok := err.(*errors.ScraperError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", sErr.Code, sErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// parseHTTPAddr splits a host:port flag value.
func parseHTTPAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, errors.NewInvalidRequest(fmt.Sprintf("invalid --http address %q", addr))
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return "", 0, errors.NewInvalidRequest(fmt.Sprintf("invalid --http port %q", portStr))
	}
	if host == "" {
		host = "127.0.0.1"
	}
	return host, port, nil
}
