// Package stats queries recorded games with an in-memory DuckDB view over
// the parquet files written by package store.
package stats

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
)

// GameSummary aggregates one recorded game.
type GameSummary struct {
	GameID    string
	Source    string
	Width     int
	Height    int
	Turns     int
	Rounds    int
	MaxLength int
	Eaten     int
	Deaths    int
	File      string
}

// DB is a DuckDB connection exposing a "ticks" view over recordings.
type DB struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates the ticks view over every finished recording below roots.
// Unfinished recordings staged in a root's tmp/ directory are left out.
func Open(roots []string, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()
	files, err := Files(roots)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, err
	}
	// Older engines lack some pragmas; ignore.
	_, _ = db.Exec("PRAGMA threads=4")

	sqlText := emptyTicksView
	if len(files) > 0 {
		quoted := make([]string, len(files))
		for i, f := range files {
			quoted[i] = "'" + escapeSQLString(f) + "'"
		}
		sqlText = `CREATE OR REPLACE VIEW ticks AS
		SELECT * FROM read_parquet([` + strings.Join(quoted, ",") + `], filename=true, union_by_name=true)`
	}
	if _, err := db.Exec(sqlText); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create ticks view: %w", err)
	}
	logger.Debug("duckdb view ready", slog.Int("files", len(files)), slog.Duration("took", time.Since(start)))
	return &DB{db: db, logger: logger}, nil
}

const emptyTicksView = `CREATE OR REPLACE VIEW ticks AS
	SELECT * FROM (
		SELECT
			NULL::VARCHAR AS game_id,
			NULL::INTEGER AS turn,
			NULL::INTEGER AS round,
			NULL::INTEGER AS width,
			NULL::INTEGER AS height,
			NULL::INTEGER[] AS body_x,
			NULL::INTEGER AS eaten,
			NULL::BOOLEAN AS died,
			NULL::VARCHAR AS cause,
			NULL::VARCHAR AS source,
			NULL::VARCHAR AS filename
	) WHERE 1=0`

func (d *DB) Close() error {
	return d.db.Close()
}

// Summaries returns one row per game, longest first.
func (d *DB) Summaries(ctx context.Context) ([]GameSummary, error) {
	query := `SELECT
			game_id,
			MIN(source)::VARCHAR,
			MIN(width)::BIGINT,
			MIN(height)::BIGINT,
			MAX(turn)::BIGINT,
			MAX(round)::BIGINT,
			MAX(len(body_x))::BIGINT,
			MAX(eaten)::BIGINT,
			(COUNT(*) FILTER (WHERE died))::BIGINT,
			MIN(filename)::VARCHAR
		FROM ticks
		GROUP BY game_id
		ORDER BY 5 DESC, game_id`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer rows.Close()

	var out []GameSummary
	for rows.Next() {
		var g GameSummary
		var width, height, turns, rounds, maxLen, eaten, deaths int64
		if err := rows.Scan(&g.GameID, &g.Source, &width, &height, &turns, &rounds, &maxLen, &eaten, &deaths, &g.File); err != nil {
			return nil, err
		}
		g.Width, g.Height = int(width), int(height)
		g.Turns, g.Rounds = int(turns), int(rounds)
		g.MaxLength, g.Eaten, g.Deaths = int(maxLen), int(eaten), int(deaths)
		out = append(out, g)
	}
	return out, rows.Err()
}

// DeathCauses counts deaths by cause across every game.
func (d *DB) DeathCauses(ctx context.Context) (map[string]int, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT cause, COUNT(*)::BIGINT FROM ticks WHERE died GROUP BY cause`)
	if err != nil {
		return nil, fmt.Errorf("query death causes: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var cause string
		var n int64
		if err := rows.Scan(&cause, &n); err != nil {
			return nil, err
		}
		out[cause] = int(n)
	}
	return out, rows.Err()
}

// Files lists the recordings below roots. Directories are walked
// recursively, skipping the tmp/ staging directory a Recorder writes into
// directly below each root. Entries naming a .parquet file or containing a
// glob pattern are expanded with filepath.Glob.
func Files(roots []string) ([]string, error) {
	var out []string
	given := 0
	for _, root := range roots {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		given++
		if strings.HasSuffix(root, ".parquet") || strings.ContainsAny(root, "*?[") {
			matches, err := filepath.Glob(root)
			if err != nil {
				return nil, fmt.Errorf("bad recording pattern %q: %w", root, err)
			}
			out = append(out, matches...)
			continue
		}
		staging := filepath.Join(filepath.Clean(root), "tmp")
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if filepath.Clean(path) == staging {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(d.Name(), ".parquet") {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk recordings %s: %w", root, err)
		}
	}
	if given == 0 {
		return nil, fmt.Errorf("no recording roots given")
	}
	sort.Strings(out)
	return out, nil
}

func escapeSQLString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
