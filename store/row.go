// Package store records sessions tick by tick into zstd-compressed parquet
// files for later analysis.
package store

import (
	"github.com/brensch/snek3d/game"
	"github.com/brensch/snek3d/rules"
)

// SchemaVersion is written to the parquet key/value metadata.
const SchemaVersion = "tick_row_v1"

// TickRow is one recorded tick.
//
// Bodies are stored head first as parallel X/Z columns, growth markers
// alongside. Entities are split by kind so no tagging column is needed.
type TickRow struct {
	GameID    string `parquet:"game_id,dict"`
	Turn      int32  `parquet:"turn"`
	Round     int32  `parquet:"round"`
	Width     int32  `parquet:"width"`
	Height    int32  `parquet:"height"`
	Direction string `parquet:"direction,dict"`

	BodyX  []int32 `parquet:"body_x"`
	BodyZ  []int32 `parquet:"body_z"`
	Growth []bool  `parquet:"growth"`

	CandyX    []int32 `parquet:"candy_x"`
	CandyZ    []int32 `parquet:"candy_z"`
	ObstacleX []int32 `parquet:"obstacle_x"`
	ObstacleZ []int32 `parquet:"obstacle_z"`

	Ate     bool   `parquet:"ate"`
	Grew    bool   `parquet:"grew"`
	Wrapped bool   `parquet:"wrapped"`
	Died    bool   `parquet:"died"`
	Cause   string `parquet:"cause,dict"`
	Eaten   int32  `parquet:"eaten"`
	Deaths  int32  `parquet:"deaths"`

	Source string `parquet:"source,dict"`
}

// NewTickRow flattens one outcome and the snapshot taken right after it.
func NewTickRow(gameID, source string, out rules.Outcome, snap *game.Snapshot) TickRow {
	row := TickRow{
		GameID:    gameID,
		Turn:      int32(out.Turn),
		Round:     int32(out.Round),
		Width:     int32(snap.Width),
		Height:    int32(snap.Height),
		Direction: out.Tick.Direction.String(),
		Growth:    append([]bool(nil), snap.Growth...),
		Ate:       out.Ate,
		Grew:      out.Tick.Grew,
		Wrapped:   out.Tick.Wrapped,
		Died:      out.Died,
		Cause:     out.Cause.String(),
		Eaten:     int32(snap.Eaten),
		Deaths:    int32(snap.Deaths),
		Source:    source,
	}
	row.BodyX, row.BodyZ = splitPoints(snap.Body)
	row.CandyX, row.CandyZ = splitPoints(snap.Candies)
	row.ObstacleX, row.ObstacleZ = splitPoints(snap.Obstacles)
	return row
}

// Snapshot rebuilds the board the row was recorded from.
func (r TickRow) Snapshot() *game.Snapshot {
	dir, _ := game.ParseDirection(r.Direction)
	return &game.Snapshot{
		Width:     int(r.Width),
		Height:    int(r.Height),
		Turn:      int(r.Turn),
		Round:     int(r.Round),
		Direction: dir,
		Body:      joinPoints(r.BodyX, r.BodyZ),
		Growth:    append([]bool(nil), r.Growth...),
		Candies:   joinPoints(r.CandyX, r.CandyZ),
		Obstacles: joinPoints(r.ObstacleX, r.ObstacleZ),
		Deaths:    int(r.Deaths),
		Eaten:     int(r.Eaten),
	}
}

func splitPoints(ps []game.Point) (xs, zs []int32) {
	xs = make([]int32, len(ps))
	zs = make([]int32, len(ps))
	for i, p := range ps {
		xs[i] = int32(p.X)
		zs[i] = int32(p.Z)
	}
	return xs, zs
}

func joinPoints(xs, zs []int32) []game.Point {
	n := min(len(xs), len(zs))
	out := make([]game.Point, n)
	for i := range n {
		out[i] = game.Point{X: int(xs[i]), Z: int(zs[i])}
	}
	return out
}
