package inference

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/brensch/snek3d/game"
)

const (
	DefaultBatchSize    = 32
	DefaultBatchTimeout = 1 * time.Millisecond
)

type OnnxClientConfig struct {
	Width        int
	Height       int
	BatchSize    int
	BatchTimeout time.Duration
	Logger       *slog.Logger
}

func (c *OnnxClientConfig) defaults() {
	if c.Width <= 0 {
		c.Width = 10
	}
	if c.Height <= 0 {
		c.Height = 10
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.BatchTimeout <= 0 {
		c.BatchTimeout = DefaultBatchTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

type inferenceRequest struct {
	input    *[]float32
	respChan chan inferenceResponse
}

type inferenceResponse struct {
	policy []float32
	value  float32
	err    error
}

// RuntimeStats summarises the batches a client has run.
type RuntimeStats struct {
	TotalBatches  int64
	TotalItems    int64
	TotalRunNanos int64
	LastBatchSize int64
	QueueLen      int
	AvgBatchSize  float64
	AvgRunMs      float64
}

// OnnxClient batches Predict calls onto one ONNX Runtime session. The
// model takes "input" [B, Channels, H, W] and yields "policy" [B, 4] and
// "value" [B, 1].
type OnnxClient struct {
	session      *ort.DynamicAdvancedSession
	run          func(requests []inferenceRequest, batchInput []float32)
	destroy      func() error
	requestsChan chan inferenceRequest
	done         chan struct{}
	loopDone     chan struct{}
	closeOnce    sync.Once
	cfg          OnnxClientConfig

	batches   atomic.Int64
	items     atomic.Int64
	runNanos  atomic.Int64
	lastBatch atomic.Int64
}

var ortInitOnce sync.Once
var ortInitErr error

func NewOnnxClient(modelPath string, cfg OnnxClientConfig) (*OnnxClient, error) {
	cfg.defaults()

	if runtime.GOOS == "linux" {
		if p := os.Getenv("ORT_SHARED_LIBRARY_PATH"); p != "" {
			ort.SetSharedLibraryPath(p)
		} else if cwd, err := os.Getwd(); err == nil {
			for _, name := range []string{"libonnxruntime.so", "libonnxruntime.so.1"} {
				abs := filepath.Join(cwd, name)
				if _, err := os.Stat(abs); err == nil {
					ort.SetSharedLibraryPath(abs)
					break
				}
			}
		}
	}

	ortInitOnce.Do(func() {
		ortInitErr = ort.InitializeEnvironment()
	})
	if ortInitErr != nil {
		return nil, fmt.Errorf("failed to init ort: %w", ortInitErr)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, err
	}
	defer options.Destroy()
	// One game per process; keep the runtime from spawning a thread pool.
	options.SetIntraOpNumThreads(1)
	options.SetInterOpNumThreads(1)

	session, err := ort.NewDynamicAdvancedSession(modelPath, []string{"input"}, []string{"policy", "value"}, options)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	cfg.Logger.Info("onnx model loaded", slog.String("path", modelPath), slog.Int("width", cfg.Width), slog.Int("height", cfg.Height))

	c := &OnnxClient{session: session}
	c.start(cfg, c.runBatch, session.Destroy)
	return c, nil
}

// start wires the batching loop to a batch runner and the func that frees
// whatever the runner uses.
func (c *OnnxClient) start(cfg OnnxClientConfig, run func([]inferenceRequest, []float32), destroy func() error) {
	c.cfg = cfg
	c.run = run
	c.destroy = destroy
	c.requestsChan = make(chan inferenceRequest, cfg.BatchSize*2)
	c.done = make(chan struct{})
	c.loopDone = make(chan struct{})
	go c.batchLoop()
}

func (c *OnnxClient) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		// A batch may still be running on the session.
		<-c.loopDone
		err = c.destroy()
	})
	return err
}

func (c *OnnxClient) Predict(ctx context.Context, snap *game.Snapshot) ([]float32, float32, error) {
	if snap.Width != c.cfg.Width || snap.Height != c.cfg.Height {
		return nil, 0, fmt.Errorf("board %dx%d does not match model %dx%d", snap.Width, snap.Height, c.cfg.Width, c.cfg.Height)
	}
	buf := getBuffer(InputSize(c.cfg.Width, c.cfg.Height))
	EncodeInto(*buf, snap)

	respChan := make(chan inferenceResponse, 1)
	select {
	case c.requestsChan <- inferenceRequest{input: buf, respChan: respChan}:
	case <-c.done:
		putBuffer(buf)
		return nil, 0, fmt.Errorf("onnx client closed")
	case <-ctx.Done():
		putBuffer(buf)
		return nil, 0, ctx.Err()
	}

	select {
	case resp := <-respChan:
		return resp.policy, resp.value, resp.err
	case <-c.done:
		return nil, 0, fmt.Errorf("onnx client closed")
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	}
}

func (c *OnnxClient) Stats() RuntimeStats {
	st := RuntimeStats{
		TotalBatches:  c.batches.Load(),
		TotalItems:    c.items.Load(),
		TotalRunNanos: c.runNanos.Load(),
		LastBatchSize: c.lastBatch.Load(),
		QueueLen:      len(c.requestsChan),
	}
	if st.TotalBatches > 0 {
		st.AvgBatchSize = float64(st.TotalItems) / float64(st.TotalBatches)
		st.AvgRunMs = float64(st.TotalRunNanos) / 1e6 / float64(st.TotalBatches)
	}
	return st
}

func (c *OnnxClient) batchLoop() {
	defer close(c.loopDone)
	size := InputSize(c.cfg.Width, c.cfg.Height)
	batchInput := make([]float32, 0, c.cfg.BatchSize*size)
	requests := make([]inferenceRequest, 0, c.cfg.BatchSize)

	ticker := time.NewTicker(c.cfg.BatchTimeout)
	defer ticker.Stop()

	flush := func() {
		if len(requests) == 0 {
			return
		}
		c.run(requests, batchInput)
		requests = requests[:0]
		batchInput = batchInput[:0]
	}

	for {
		select {
		case <-c.done:
			for _, req := range requests {
				req.respChan <- inferenceResponse{err: fmt.Errorf("onnx client closed")}
			}
			return
		case req := <-c.requestsChan:
			requests = append(requests, req)
			batchInput = append(batchInput, (*req.input)...)
			putBuffer(req.input)
			if len(requests) >= c.cfg.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func (c *OnnxClient) runBatch(requests []inferenceRequest, batchInput []float32) {
	n := int64(len(requests))
	start := time.Now()

	inputTensor, err := ort.NewTensor(ort.NewShape(n, Channels, int64(c.cfg.Height), int64(c.cfg.Width)), batchInput)
	if err != nil {
		c.failBatch(requests, err)
		return
	}
	defer inputTensor.Destroy()

	policyTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(n, int64(PolicySize)))
	if err != nil {
		c.failBatch(requests, err)
		return
	}
	defer policyTensor.Destroy()

	valueTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(n, 1))
	if err != nil {
		c.failBatch(requests, err)
		return
	}
	defer valueTensor.Destroy()

	if err := c.session.Run([]ort.Value{inputTensor}, []ort.Value{policyTensor, valueTensor}); err != nil {
		c.failBatch(requests, err)
		return
	}

	c.batches.Add(1)
	c.items.Add(n)
	c.runNanos.Add(time.Since(start).Nanoseconds())
	c.lastBatch.Store(n)

	policyData := policyTensor.GetData()
	valueData := valueTensor.GetData()
	for i, req := range requests {
		policy := make([]float32, PolicySize)
		copy(policy, policyData[i*PolicySize:(i+1)*PolicySize])
		req.respChan <- inferenceResponse{policy: policy, value: valueData[i]}
	}
}

func (c *OnnxClient) failBatch(requests []inferenceRequest, err error) {
	c.cfg.Logger.Warn("onnx batch failed", slog.Int("size", len(requests)), slog.Any("error", err))
	for _, req := range requests {
		req.respChan <- inferenceResponse{err: err}
	}
}
