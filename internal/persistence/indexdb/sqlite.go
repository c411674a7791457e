package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"claimgrid.ai/internal/persistence/snapshot"
	"claimgrid.ai/internal/sim/tuning"
	"claimgrid.ai/internal/sim/world"
)

// SQLiteIndex is a queryable read model of the tick log. A single goroutine
// owns the connection; producers never block and drop on backpressure.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropTick     atomic.Uint64
	dropSnapshot atomic.Uint64
	dropGame     atomic.Uint64
}

type reqKind int

const (
	reqTick reqKind = iota + 1
	reqSnapshot
	reqGame
)

type req struct {
	kind reqKind

	tick     world.TickLogEntry
	snapshot snapshotRow
	game     gameRow
	scores   []world.ScoreEntry
}

type snapshotRow struct {
	Tick     uint64
	Path     string
	Seed     int64
	GridSize int
	Entities int
	Bots     int
	Paused   bool
	Over     bool
}

type gameRow struct {
	WorldID    string
	EndTick    uint64
	Human      string
	FinalScore int
	HumanKills int
	Cause      string
	Killer     string
	Path       string
	RecordedAt string
}

// Stats reports queue pressure for /metrics.
type Stats struct {
	QueueDepth        int
	QueueCapacity     int
	DropTickTotal     uint64
	DropSnapshotTotal uint64
	DropGameTotal     uint64
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		// Every tick of a 30 Hz game can carry kills; a minute of slack is plenty.
		ch: make(chan req, 8192),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tuning (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS ticks (
			tick INTEGER PRIMARY KEY,
			digest TEXT NOT NULL,
			advanced INTEGER NOT NULL,
			inputs INTEGER NOT NULL,
			kills INTEGER NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS inputs (
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			dir TEXT,
			action TEXT,
			PRIMARY KEY (tick, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS kills (
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			killer INTEGER NOT NULL,
			killer_name TEXT,
			victim INTEGER NOT NULL,
			victim_name TEXT NOT NULL,
			reason TEXT NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			PRIMARY KEY (tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_kills_killer_tick ON kills(killer_name, tick);`,
		`CREATE TABLE IF NOT EXISTS scores (
			name TEXT PRIMARY KEY,
			score INTEGER NOT NULL,
			kills INTEGER NOT NULL,
			tick INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			tick INTEGER PRIMARY KEY,
			path TEXT NOT NULL,
			seed INTEGER NOT NULL,
			grid_size INTEGER NOT NULL,
			entities INTEGER NOT NULL,
			bots INTEGER NOT NULL,
			paused INTEGER NOT NULL,
			over INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS games (
			world_id TEXT NOT NULL,
			end_tick INTEGER NOT NULL,
			human TEXT NOT NULL,
			final_score INTEGER NOT NULL,
			human_kills INTEGER NOT NULL,
			cause TEXT NOT NULL,
			killer TEXT,
			snapshot_path TEXT NOT NULL,
			recorded_at TEXT NOT NULL,
			PRIMARY KEY (world_id, end_tick)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:        len(s.ch),
		QueueCapacity:     cap(s.ch),
		DropTickTotal:     s.dropTick.Load(),
		DropSnapshotTotal: s.dropSnapshot.Load(),
		DropGameTotal:     s.dropGame.Load(),
	}
}

func (s *SQLiteIndex) WriteTick(entry world.TickLogEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqTick, tick: entry}:
	default:
		// Drop if the indexer falls behind; JSONL logs remain the source of truth.
		s.dropTick.Add(1)
	}
	return nil
}

// RecordSnapshot indexes a written snapshot file and refreshes the scores table
// from the snapshot's scoreboard.
func (s *SQLiteIndex) RecordSnapshot(path string, snap snapshot.SnapshotV1) {
	if s == nil || s.closed.Load() {
		return
	}
	r := snapshotRow{
		Tick:     snap.Header.Tick,
		Path:     path,
		Seed:     snap.Seed,
		GridSize: snap.GridSize,
		Entities: len(snap.Entities),
		Paused:   snap.Paused,
		Over:     snap.Over,
	}
	for _, e := range snap.Entities {
		if e.Role == world.RoleBot.String() {
			r.Bots++
		}
	}
	scores := make([]world.ScoreEntry, 0, len(snap.Scores))
	for _, sc := range snap.Scores {
		scores = append(scores, world.ScoreEntry{Name: sc.Name, Score: sc.Score, Kills: sc.Kills})
	}
	select {
	case s.ch <- req{kind: reqSnapshot, snapshot: r, scores: scores}:
	default:
		s.dropSnapshot.Add(1)
	}
}

// RecordGame indexes a finished game and its archived snapshot.
func (s *SQLiteIndex) RecordGame(res world.GameResult, archivedSnapshotPath string) {
	if s == nil || s.closed.Load() {
		return
	}
	r := gameRow{
		WorldID:    res.WorldID,
		EndTick:    res.Tick,
		Human:      res.Human,
		FinalScore: res.FinalScore,
		HumanKills: res.HumanKills,
		Cause:      string(res.Cause.Reason),
		Killer:     res.Cause.KillerName,
		Path:       archivedSnapshotPath,
		RecordedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	scores := append([]world.ScoreEntry(nil), res.Leaderboard...)
	if res.Human != "" {
		scores = append(scores, world.ScoreEntry{Name: res.Human, Score: res.FinalScore, Kills: res.HumanKills})
	}
	select {
	case s.ch <- req{kind: reqGame, game: r, scores: scores}:
	default:
		s.dropGame.Add(1)
	}
}

// UpsertTuning stores the tuning values in effect, keyed by a digest of their
// canonical JSON.
func (s *SQLiteIndex) UpsertTuning(tune tuning.Tuning) error {
	if s == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	b, err := json.Marshal(tune)
	if err != nil {
		return err
	}
	sum := sha256.Sum256(b)
	digest := hex.EncodeToString(sum[:])

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('protocol_version',?)`, tune.ProtocolVersion); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO tuning(name,digest,json,updated_at) VALUES('tuning',?,?,?)`, digest, string(b), now); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	// Prepared statements (on db; executed within tx).
	insertTick, _ := s.db.Prepare(`INSERT OR REPLACE INTO ticks(tick,digest,advanced,inputs,kills,raw_json) VALUES(?,?,?,?,?,?)`)
	insertInput, _ := s.db.Prepare(`INSERT OR REPLACE INTO inputs(tick,seq,dir,action) VALUES(?,?,?,?)`)
	insertKill, _ := s.db.Prepare(`INSERT OR REPLACE INTO kills(tick,seq,killer,killer_name,victim,victim_name,reason,x,y) VALUES(?,?,?,?,?,?,?,?,?)`)
	upsertScore, _ := s.db.Prepare(`INSERT OR REPLACE INTO scores(name,score,kills,tick) VALUES(?,?,?,?)`)
	insertSnapshot, _ := s.db.Prepare(`INSERT OR REPLACE INTO snapshots(tick,path,seed,grid_size,entities,bots,paused,over) VALUES(?,?,?,?,?,?,?,?)`)
	insertGame, _ := s.db.Prepare(`INSERT OR REPLACE INTO games(world_id,end_tick,human,final_score,human_kills,cause,killer,snapshot_path,recorded_at) VALUES(?,?,?,?,?,?,?,?,?)`)
	defer func() {
		for _, st := range []*sql.Stmt{insertTick, insertInput, insertKill, upsertScore, insertSnapshot, insertGame} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			// If we can't start a tx, we can't do much; sleep a bit.
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	exec := func(st *sql.Stmt, args ...any) bool {
		if st == nil || tx == nil {
			return false
		}
		if _, err := tx.Stmt(st).Exec(args...); err != nil {
			rollback()
			return false
		}
		opCount++
		return true
	}
	writeScores := func(tick uint64, rows []world.ScoreEntry) {
		for _, sc := range rows {
			if !exec(upsertScore, sc.Name, sc.Score, sc.Kills, int64(tick)) {
				return
			}
		}
	}

	flushIfNeeded := func() {
		if tx == nil {
			return
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqTick:
			t := r.tick
			b, _ := json.Marshal(t)
			if !exec(insertTick, int64(t.Tick), t.Digest, t.Advanced, len(t.Inputs), len(t.Kills), string(b)) {
				continue
			}
			for i, in := range t.Inputs {
				if !exec(insertInput, int64(t.Tick), i, nullString(in.Dir), nullString(in.Action)) {
					break
				}
			}
			for i, k := range t.Kills {
				if !exec(insertKill, int64(t.Tick), i, int64(k.Killer), nullString(k.KillerName),
					int64(k.Victim), k.VictimName, string(k.Reason), k.Cell[0], k.Cell[1]) {
					break
				}
			}

		case reqSnapshot:
			sn := r.snapshot
			if !exec(insertSnapshot, int64(sn.Tick), sn.Path, sn.Seed, sn.GridSize, sn.Entities, sn.Bots, sn.Paused, sn.Over) {
				continue
			}
			writeScores(sn.Tick, r.scores)

		case reqGame:
			g := r.game
			if !exec(insertGame, g.WorldID, int64(g.EndTick), g.Human, g.FinalScore, g.HumanKills,
				g.Cause, nullString(g.Killer), g.Path, g.RecordedAt) {
				continue
			}
			writeScores(g.EndTick, r.scores)
		}
		flushIfNeeded()
	}

	commit()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
