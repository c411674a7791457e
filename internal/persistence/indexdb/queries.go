package indexdb

import (
	"context"
	"database/sql"
	"fmt"
)

// Reader runs the operator queries against an index written by SQLiteIndex.
// It may be opened while the server is still writing (WAL); it never writes.
type Reader struct {
	db *sql.DB
}

func OpenReader(path string) (*Reader, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Reader{db: db}, nil
}

func (r *Reader) Close() error { return r.db.Close() }

type GameRow struct {
	WorldID      string `json:"world_id"`
	EndTick      uint64 `json:"end_tick"`
	Human        string `json:"human"`
	FinalScore   int    `json:"final_score"`
	HumanKills   int    `json:"human_kills"`
	Cause        string `json:"cause"`
	Killer       string `json:"killer,omitempty"`
	SnapshotPath string `json:"snapshot_path"`
	RecordedAt   string `json:"recorded_at"`
}

type ScoreRow struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Kills int    `json:"kills"`
	Tick  uint64 `json:"tick"`
}

type KillRow struct {
	Tick   uint64 `json:"tick"`
	Killer string `json:"killer,omitempty"`
	Victim string `json:"victim"`
	Reason string `json:"reason"`
	Pos    [2]int `json:"pos"`
}

type SnapshotRow struct {
	Tick     uint64 `json:"tick"`
	Path     string `json:"path"`
	Seed     int64  `json:"seed"`
	GridSize int    `json:"grid_size"`
	Entities int    `json:"entities"`
	Bots     int    `json:"bots"`
	Paused   bool   `json:"paused"`
	Over     bool   `json:"over"`
}

func (r *Reader) Games(ctx context.Context, limit int) ([]GameRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT world_id,end_tick,human,final_score,human_kills,cause,killer,snapshot_path,recorded_at
		 FROM games ORDER BY recorded_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("games: %w", err)
	}
	defer rows.Close()
	var out []GameRow
	for rows.Next() {
		var g GameRow
		var killer sql.NullString
		var end int64
		if err := rows.Scan(&g.WorldID, &end, &g.Human, &g.FinalScore, &g.HumanKills, &g.Cause, &killer, &g.SnapshotPath, &g.RecordedAt); err != nil {
			return nil, err
		}
		g.EndTick = uint64(end)
		g.Killer = killer.String
		out = append(out, g)
	}
	return out, rows.Err()
}

// Leaderboard returns the latest known score per name, best first.
func (r *Reader) Leaderboard(ctx context.Context, limit int) ([]ScoreRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name,score,kills,tick FROM scores ORDER BY score DESC, name ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()
	var out []ScoreRow
	for rows.Next() {
		var s ScoreRow
		var tick int64
		if err := rows.Scan(&s.Name, &s.Score, &s.Kills, &tick); err != nil {
			return nil, err
		}
		s.Tick = uint64(tick)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Kills returns the most recent kills, optionally only those credited to killer.
func (r *Reader) Kills(ctx context.Context, killer string, limit int) ([]KillRow, error) {
	q := `SELECT tick,killer_name,victim_name,reason,x,y FROM kills`
	args := []any{}
	if killer != "" {
		q += ` WHERE killer_name=?`
		args = append(args, killer)
	}
	q += ` ORDER BY tick DESC, seq ASC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("kills: %w", err)
	}
	defer rows.Close()
	var out []KillRow
	for rows.Next() {
		var k KillRow
		var tick int64
		var name sql.NullString
		if err := rows.Scan(&tick, &name, &k.Victim, &k.Reason, &k.Pos[0], &k.Pos[1]); err != nil {
			return nil, err
		}
		k.Tick = uint64(tick)
		k.Killer = name.String
		out = append(out, k)
	}
	return out, rows.Err()
}

func (r *Reader) Snapshots(ctx context.Context, limit int) ([]SnapshotRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tick,path,seed,grid_size,entities,bots,paused,over FROM snapshots ORDER BY tick DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("snapshots: %w", err)
	}
	defer rows.Close()
	var out []SnapshotRow
	for rows.Next() {
		var s SnapshotRow
		var tick int64
		if err := rows.Scan(&tick, &s.Path, &s.Seed, &s.GridSize, &s.Entities, &s.Bots, &s.Paused, &s.Over); err != nil {
			return nil, err
		}
		s.Tick = uint64(tick)
		out = append(out, s)
	}
	return out, rows.Err()
}
