package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"claimgrid.ai/internal/persistence/snapshot"
	"claimgrid.ai/internal/sim/world"
)

// GameDirPrefix names archive directories: archives/game_<end tick>.
const GameDirPrefix = "game_"

type GameArchiveMeta struct {
	WorldID     string             `json:"world_id"`
	EndTick     uint64             `json:"end_tick"`
	Seed        int64              `json:"seed"`
	GridSize    int                `json:"grid_size"`
	NumBots     int                `json:"num_bots"`
	Human       string             `json:"human"`
	FinalScore  int                `json:"final_score"`
	HumanKills  int                `json:"human_kills"`
	Cause       world.KillEvent    `json:"cause"`
	Leaderboard []world.ScoreEntry `json:"leaderboard"`
	Snapshot    string             `json:"snapshot"`
	CreatedAt   string             `json:"created_at"`
}

// ArchiveGame copies the final snapshot of a finished game into
// `gameDir/archives/game_<tick>/` next to a meta.json summary, and returns the
// archived snapshot path.
func ArchiveGame(gameDir, snapshotPath string, res world.GameResult) (string, error) {
	if snapshotPath == "" {
		return "", fmt.Errorf("archive: empty snapshot path")
	}
	snap := res.Snapshot
	archiveDir := filepath.Join(gameDir, "archives", fmt.Sprintf("%s%d", GameDirPrefix, res.Tick))
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return "", err
	}

	dst := filepath.Join(archiveDir, filepath.Base(snapshotPath))
	if err := copyFile(snapshotPath, dst); err != nil {
		return "", err
	}

	meta := GameArchiveMeta{
		WorldID:     res.WorldID,
		EndTick:     res.Tick,
		Seed:        snap.Seed,
		GridSize:    snap.GridSize,
		NumBots:     snap.NumBots,
		Human:       res.Human,
		FinalScore:  res.FinalScore,
		HumanKills:  res.HumanKills,
		Cause:       res.Cause,
		Leaderboard: res.Leaderboard,
		Snapshot:    filepath.Base(dst),
		CreatedAt:   time.Now().UTC().Format(time.RFC3339Nano),
	}
	b, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return dst, err
	}
	if err := os.WriteFile(filepath.Join(archiveDir, "meta.json"), b, 0o644); err != nil {
		return dst, err
	}
	return dst, nil
}

// WriteAndArchive writes the result's final snapshot into snapDir and then
// archives it.
func WriteAndArchive(gameDir, snapDir string, res world.GameResult) (string, error) {
	path := filepath.Join(snapDir, snapshot.FileName(res.Snapshot.Header.Tick))
	if _, err := os.Stat(path); err != nil {
		if err := snapshot.WriteSnapshot(path, res.Snapshot); err != nil {
			return "", err
		}
	}
	return ArchiveGame(gameDir, path, res)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
