package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const Version = 1

// FileSuffix is appended to the tick number to form a snapshot file name.
const FileSuffix = ".snap.zst"

type Header struct {
	Version int    `json:"version"`
	WorldID string `json:"world_id"`
	Tick    uint64 `json:"tick"`
}

type SnapshotV1 struct {
	Header Header `json:"header"`

	Seed int64 `json:"seed"`
	// RNG is the marshalled PCG state at Header.Tick.
	RNG []byte `json:"rng"`

	TickRate           int          `json:"tick_rate_hz"`
	GridSize           int          `json:"grid_size"`
	NumBots            int          `json:"num_bots"`
	MinSpawnDistance   int          `json:"min_spawn_distance"`
	SnapshotEveryTicks int          `json:"snapshot_every_ticks"`
	Aggression         AggressionV1 `json:"aggression"`

	Entities []EntityV1 `json:"entities"`
	Scores   []ScoreV1  `json:"scores"`
	Counters CountersV1 `json:"counters"`
	Palette  [][3]uint8 `json:"palette"`

	Started bool `json:"started"`
	Paused  bool `json:"paused"`
	Over    bool `json:"over"`
}

type AggressionV1 struct {
	BotVsBot           float64 `json:"bot_vs_bot"`
	BotVsPlayer        float64 `json:"bot_vs_player"`
	PlayerProximity    float64 `json:"player_proximity_factor"`
	ProximityThreshold int     `json:"proximity_threshold"`
}

type EntityV1 struct {
	ID     uint64   `json:"id"`
	Role   string   `json:"role"`
	Name   string   `json:"name"`
	Color  [3]uint8 `json:"color"`
	Pos    [2]int   `json:"pos"`
	Dir    [2]int   `json:"dir"`
	Moving bool     `json:"moving"`

	Trail     [][2]int `json:"trail"`
	Territory [][2]int `json:"territory"`

	Bot *BotV1 `json:"bot,omitempty"`
}

type BotV1 struct {
	BaseAggression      float64 `json:"base_aggression"`
	TrailCheckCounter   int     `json:"trail_check_counter"`
	TrailCheckThreshold int     `json:"trail_check_threshold"`
	TrailCheckRadius    int     `json:"trail_check_radius"`
	DirChangeCounter    int     `json:"dir_change_counter"`
	DirChangeThreshold  int     `json:"dir_change_threshold"`
	MaxTrailLength      int     `json:"max_trail_length"`
}

type ScoreV1 struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Kills int    `json:"kills"`
}

type CountersV1 struct {
	NextEntityID uint64 `json:"next_entity_id"`
	NameLetter   int    `json:"name_letter"`
	NameNumber   int    `json:"name_number"`
	ColorIndex   int    `json:"color_index"`
}

// FileName is the canonical snapshot file name for a tick.
func FileName(tick uint64) string {
	return strconv.FormatUint(tick, 10) + FileSuffix
}

// ParseFileName extracts the tick from a snapshot file name.
func ParseFileName(name string) (uint64, bool) {
	base := filepath.Base(name)
	if !strings.HasSuffix(base, FileSuffix) {
		return 0, false
	}
	tick, err := strconv.ParseUint(strings.TrimSuffix(base, FileSuffix), 10, 64)
	if err != nil {
		return 0, false
	}
	return tick, true
}

// List returns the snapshot paths in dir ordered by ascending tick.
func List(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	type item struct {
		tick uint64
		path string
	}
	var items []item
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		if tick, ok := ParseFileName(e.Name()); ok {
			items = append(items, item{tick: tick, path: filepath.Join(dir, e.Name())})
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].tick < items[j].tick })
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.path)
	}
	return out, nil
}

// WriteSnapshot writes to a temp file and renames it into place so a crash never
// leaves a truncated snapshot under the final name.
func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := encode(f, snap); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func encode(f *os.File, snap SnapshotV1) error {
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		_ = enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		_ = enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		_ = enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// The gob body repeats the header; the JSON line only serves ReadHeader.
	if _, err := br.ReadBytes('\n'); err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	if snap.Header.Version != Version {
		return snap, fmt.Errorf("unsupported snapshot version %d", snap.Header.Version)
	}
	return snap, nil
}

// ReadHeader decodes only the leading JSON line.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("decode header: %w", err)
	}
	return h, nil
}
