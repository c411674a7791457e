package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"claimgrid.ai/internal/persistence/indexdb"
)

func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "game id (required unless -db)")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	limit := fs.Int("limit", 20, "result limit")
	killer := fs.String("killer", "", "killer name filter (kills)")
	_ = fs.Parse(args)

	q := "snapshots"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		if strings.TrimSpace(*worldID) == "" {
			fmt.Fprintln(os.Stderr, "missing -world or -db")
			os.Exit(2)
		}
		path = filepath.Join(*dataDir, "games", *worldID, "index", "game.sqlite")
	}

	r, err := indexdb.OpenReader(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := runQuery(ctx, r, q, *limit, *killer, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
}

// runQuery prints the rows of one named query as JSON lines.
func runQuery(ctx context.Context, r *indexdb.Reader, q string, limit int, killer string, out io.Writer) error {
	if limit <= 0 {
		limit = 20
	}
	enc := json.NewEncoder(out)
	switch q {
	case "snapshots":
		rows, err := r.Snapshots(ctx, limit)
		if err != nil {
			return err
		}
		for _, row := range rows {
			_ = enc.Encode(row)
		}
	case "games":
		rows, err := r.Games(ctx, limit)
		if err != nil {
			return err
		}
		for _, row := range rows {
			_ = enc.Encode(row)
		}
	case "leaderboard":
		rows, err := r.Leaderboard(ctx, limit)
		if err != nil {
			return err
		}
		for _, row := range rows {
			_ = enc.Encode(row)
		}
	case "kills":
		rows, err := r.Kills(ctx, killer, limit)
		if err != nil {
			return err
		}
		for _, row := range rows {
			_ = enc.Encode(row)
		}
	default:
		return fmt.Errorf("unknown query %q (snapshots|games|leaderboard|kills)", q)
	}
	return nil
}
