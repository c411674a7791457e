package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"claimgrid.ai/internal/persistence/archive"
	persistlog "claimgrid.ai/internal/persistence/log"
	"claimgrid.ai/internal/persistence/snapshot"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "db":
			dbCmd(os.Args[2:])
			return
		case "state":
			stateCmd(os.Args[2:])
			return
		case "save":
			saveCmd(os.Args[2:])
			return
		case "inspect":
			inspectCmd(os.Args[2:])
			return
		case "kills":
			killsCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	_ = fs.Parse(args)

	if err := listGames(os.Stdout, filepath.Join(*dataDir, "games")); err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
}

// listGames prints one line per game directory: snapshot range and archived results.
func listGames(out io.Writer, base string) error {
	entries, err := os.ReadDir(base)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		gameDir := filepath.Join(base, e.Name())
		snaps, _ := snapshot.List(filepath.Join(gameDir, "snapshots"))
		line := fmt.Sprintf("%s snapshots=%d", e.Name(), len(snaps))
		if len(snaps) > 0 {
			first, _ := snapshot.ParseFileName(snaps[0])
			last, _ := snapshot.ParseFileName(snaps[len(snaps)-1])
			line += fmt.Sprintf(" ticks=%d..%d", first, last)
		}
		archived := archivedGames(gameDir)
		if len(archived) > 0 {
			line += " archived=" + strings.Join(archived, ",")
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

func archivedGames(gameDir string) []string {
	ents, err := os.ReadDir(filepath.Join(gameDir, "archives"))
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range ents {
		if e.IsDir() && strings.HasPrefix(e.Name(), archive.GameDirPrefix) {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out
}

func inspectCmd(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	headerOnly := fs.Bool("header", false, "decode only the header line")
	top := fs.Int("top", 10, "leaderboard rows to print")
	_ = fs.Parse(args)
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: admin inspect [-header] [-top N] <path.snap.zst>")
		os.Exit(2)
	}
	path := fs.Arg(0)

	if *headerOnly {
		h, err := snapshot.ReadHeader(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read header:", err)
			os.Exit(1)
		}
		fmt.Printf("version=%d world=%s tick=%d\n", h.Version, h.WorldID, h.Tick)
		return
	}
	snap, err := snapshot.ReadSnapshot(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read snapshot:", err)
		os.Exit(1)
	}
	printSnapshot(os.Stdout, snap, *top)
}

func printSnapshot(out io.Writer, snap snapshot.SnapshotV1, top int) {
	fmt.Fprintf(out, "world=%s tick=%d seed=%d grid=%d entities=%d started=%v paused=%v over=%v\n",
		snap.Header.WorldID, snap.Header.Tick, snap.Seed, snap.GridSize, len(snap.Entities),
		snap.Started, snap.Paused, snap.Over)
	scores := append([]snapshot.ScoreV1(nil), snap.Scores...)
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Name < scores[j].Name
	})
	if top > 0 && len(scores) > top {
		scores = scores[:top]
	}
	for i, s := range scores {
		fmt.Fprintf(out, "%2d. %-16s score=%d kills=%d\n", i+1, s.Name, s.Score, s.Kills)
	}
}

func killsCmd(args []string) {
	fs := flag.NewFlagSet("kills", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "game id")
	from := fs.Uint64("from_tick", 0, "first tick (inclusive)")
	_ = fs.Parse(args)
	if strings.TrimSpace(*worldID) == "" {
		fmt.Fprintln(os.Stderr, "missing -world")
		os.Exit(2)
	}

	entries, err := persistlog.ReadTicks(filepath.Join(*dataDir, "games", *worldID), *from)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read tick log:", err)
		os.Exit(1)
	}
	for _, e := range entries {
		for _, k := range e.Kills {
			killer := k.KillerName
			if killer == "" {
				killer = "-"
			}
			fmt.Printf("tick=%d reason=%s victim=%s killer=%s cell=%d,%d\n", k.Tick, k.Reason, k.VictimName, killer, k.Cell[0], k.Cell[1])
		}
	}
}
