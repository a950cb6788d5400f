package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/brensch/snek3d/game"
	"github.com/brensch/snek3d/rules"
)

// Recorder streams the ticks of one game into a parquet file under
// outDir/tmp and moves it into outDir on Finalize.
type Recorder struct {
	gameID  string
	source  string
	tmpPath string
	outPath string

	file   *os.File
	writer *parquet.GenericWriter[TickRow]

	rows int
}

// NewRecorder opens a recording for a freshly generated game id.
func NewRecorder(outDir, source string) (*Recorder, error) {
	if outDir == "" {
		return nil, fmt.Errorf("outDir is required")
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		absOut = outDir
	}
	tmpDir := filepath.Join(absOut, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("create tmp dir: %w", err)
	}

	gameID := uuid.NewString()
	name := "game_" + gameID + ".parquet"
	tmpPath := filepath.Join(tmpDir, name)

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open tmp parquet: %w", err)
	}
	w := parquet.NewGenericWriter[TickRow](
		f,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
	)
	w.SetKeyValueMetadata("schema", SchemaVersion)
	w.SetKeyValueMetadata("game_id", gameID)

	return &Recorder{
		gameID:  gameID,
		source:  source,
		tmpPath: tmpPath,
		outPath: filepath.Join(absOut, name),
		file:    f,
		writer:  w,
	}, nil
}

func (r *Recorder) GameID() string  { return r.gameID }
func (r *Recorder) OutPath() string { return r.outPath }
func (r *Recorder) Rows() int       { return r.rows }

// Record appends one tick. snap must be taken after the step that produced out.
func (r *Recorder) Record(out rules.Outcome, snap *game.Snapshot) error {
	if r.writer == nil {
		return fmt.Errorf("recorder is closed")
	}
	if _, err := r.writer.Write([]TickRow{NewTickRow(r.gameID, r.source, out, snap)}); err != nil {
		return fmt.Errorf("write tick %d: %w", out.Turn, err)
	}
	r.rows++
	return nil
}

// Finalize flushes the file and renames it into place. A recording with no
// rows is discarded and reported with an empty path. Calling Finalize twice
// is a no-op.
func (r *Recorder) Finalize() (string, int, error) {
	if r.writer == nil && r.file == nil {
		return "", 0, nil
	}

	var closeErr, fileErr error
	if r.writer != nil {
		closeErr = r.writer.Close()
		r.writer = nil
	}
	if r.file != nil {
		_ = r.file.Sync()
		fileErr = r.file.Close()
		r.file = nil
	}
	if closeErr != nil {
		return "", 0, fmt.Errorf("close parquet writer: %w", closeErr)
	}
	if fileErr != nil {
		return "", 0, fmt.Errorf("close parquet file: %w", fileErr)
	}

	if r.rows == 0 {
		_ = os.Remove(r.tmpPath)
		return "", 0, nil
	}
	if err := os.Rename(r.tmpPath, r.outPath); err != nil {
		return "", 0, fmt.Errorf("rename parquet: %w", err)
	}
	return r.outPath, r.rows, nil
}
