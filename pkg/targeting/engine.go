package targeting

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"gocv.io/x/gocv"

	"github.com/avosky/go-targeting/internal/log"
	"github.com/avosky/go-targeting/pkg/depth"
	"github.com/avosky/go-targeting/pkg/detect"
	"github.com/avosky/go-targeting/pkg/overlay"
)

// State is the engine lifecycle state. Transitions only move forward:
// Active → Draining → Stopped.
type State int32

const (
	// StateActive is the normal operating state.
	StateActive State = iota
	// StateDraining means shutdown was requested; an in-flight cycle
	// may finish but nothing more is emitted.
	StateDraining
	// StateStopped is terminal; frames are no longer processed.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Cycle is the result of running estimation over one color frame.
type Cycle struct {
	Seq     uint64
	Width   int
	Height  int
	Targets []Localization
}

// Engine re-runs target estimation on every color frame using the
// depth matrix and detection set currently held. Updates on the input
// side are whole-value replacements and never block a cycle; a cycle
// never waits for fresher input.
type Engine struct {
	geom     Geometry
	renderer *overlay.Renderer

	depthHolder *depth.Holder
	detections  *detect.Holder

	// Optional stage run on the frame before annotations are drawn.
	// Must return a new Mat the engine will close.
	preprocess func(gocv.Mat) gocv.Mat

	state  atomic.Int32
	seq    atomic.Uint64
	procMu sync.Mutex

	onCycle     func(Cycle)
	onAnnotated func(jpeg []byte)

	lastMu sync.RWMutex
	last   Cycle

	logger *slog.Logger
}

// NewEngine creates an engine with the given geometry.
func NewEngine(geom Geometry) (*Engine, error) {
	if err := geom.Validate(); err != nil {
		return nil, fmt.Errorf("invalid geometry: %w", err)
	}
	return &Engine{
		geom:        geom,
		renderer:    overlay.NewRenderer(),
		depthHolder: depth.NewHolder(),
		detections:  detect.NewHolder(),
		logger:      log.Component("engine"),
	}, nil
}

// Geometry returns the engine's fixed camera geometry.
func (e *Engine) Geometry() Geometry { return e.geom }

// OnCycle sets the callback invoked once per driving frame with the
// cycle's localization records (possibly zero of them).
func (e *Engine) OnCycle(cb func(Cycle)) { e.onCycle = cb }

// OnAnnotated sets the callback invoked once per driving frame with
// the composited JPEG.
func (e *Engine) OnAnnotated(cb func(jpeg []byte)) { e.onAnnotated = cb }

// SetPreprocess installs an optional frame preprocessing stage,
// e.g. auto contrast enhancement.
func (e *Engine) SetPreprocess(fn func(gocv.Mat) gocv.Mat) { e.preprocess = fn }

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// UpdateDepth replaces the held depth matrix.
// Input updates are accepted in every state; only emission is gated.
func (e *Engine) UpdateDepth(m *depth.Matrix) {
	e.depthHolder.Set(m)
}

// UpdateDepthFloats builds and stores a depth matrix from a raw
// row-major float32 buffer in meters.
func (e *Engine) UpdateDepthFloats(buf []float32, width, height int) error {
	m, err := depth.FromFloats(buf, width, height)
	if err != nil {
		return err
	}
	e.depthHolder.Set(m)
	return nil
}

// UpdateBoxes replaces the held detection set.
func (e *Engine) UpdateBoxes(boxes []detect.Box) {
	e.detections.SetBoxes(boxes)
}

// UpdateObjectCount records a detector object-count observation;
// zero clears the held detection set.
func (e *Engine) UpdateObjectCount(n int) {
	e.detections.ObjectCount(n)
}

// LastCycle returns the most recently completed cycle.
func (e *Engine) LastCycle() Cycle {
	e.lastMu.RLock()
	defer e.lastMu.RUnlock()
	return e.last
}

// Shutdown gates further emission, waits for any in-flight cycle to
// finish, then stops processing entirely. Safe to call once; later
// calls are no-ops.
func (e *Engine) Shutdown() {
	if !e.state.CompareAndSwap(int32(StateActive), int32(StateDraining)) {
		return
	}
	e.logger.Info("shutdown requested, draining")
	e.procMu.Lock()
	e.state.Store(int32(StateStopped))
	e.procMu.Unlock()
	e.logger.Info("engine stopped")
}

// ProcessFrameJPEG runs one estimation cycle for a color frame.
// An unparseable frame drops the cycle with an error and emits nothing.
func (e *Engine) ProcessFrameJPEG(jpegData []byte) error {
	e.procMu.Lock()
	defer e.procMu.Unlock()

	if e.State() == StateStopped {
		return nil
	}

	img, err := gocv.IMDecode(jpegData, gocv.IMReadColor)
	if err != nil {
		return fmt.Errorf("decode frame: %w", err)
	}
	defer img.Close()
	if img.Empty() {
		return fmt.Errorf("decode frame: empty image")
	}

	e.runCycle(img, jpegData)
	return nil
}

// runCycle does the per-frame work. img is the decoded frame;
// origJPEG is passed through untouched when there is nothing to draw.
func (e *Engine) runCycle(img gocv.Mat, origJPEG []byte) {
	width, height := img.Cols(), img.Rows()
	seq := e.seq.Add(1)

	set := e.detections.Current()
	if set.Empty() {
		e.finishCycle(Cycle{Seq: seq, Width: width, Height: height}, origJPEG)
		return
	}

	m := e.depthHolder.Current()
	if m != nil && !m.Matches(width, height) {
		// Dimension mismatch: ranges resolve invalid, bearings still computed
		e.logger.Debug("depth dimensions mismatch frame",
			"depth_w", m.Width(), "depth_h", m.Height(), "frame_w", width, "frame_h", height)
		m = nil
	}

	targets := make([]Localization, 0, len(set.Boxes))
	anns := make([]overlay.Annotation, 0, len(set.Boxes))
	for _, box := range set.Boxes {
		loc := Localize(m, box, width, height, e.geom)
		targets = append(targets, loc)

		cx, cy := box.Center()
		anns = append(anns, overlay.Annotation{
			Label:        loc.Label,
			Shrunk:       box.Shrink(e.geom.BoxReductionPct),
			CenterX:      cx,
			CenterY:      cy,
			RangeM:       loc.Range.Meters,
			RangeValid:   loc.Range.Valid,
			AzimuthDeg:   loc.AzimuthDeg,
			ElevationDeg: loc.ElevationDeg,
		})
	}

	src := img
	if e.preprocess != nil {
		enhanced := e.preprocess(img)
		defer enhanced.Close()
		src = enhanced
	}

	annotated := e.renderer.Render(src, anns)
	defer annotated.Close()

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, annotated)
	if err != nil {
		// Targets are still emitted; only the image is lost this cycle
		e.logger.Error("encode annotated frame", "error", err)
		e.finishCycle(Cycle{Seq: seq, Width: width, Height: height, Targets: targets}, nil)
		return
	}
	defer buf.Close()

	jpeg := make([]byte, len(buf.GetBytes()))
	copy(jpeg, buf.GetBytes())
	e.finishCycle(Cycle{Seq: seq, Width: width, Height: height, Targets: targets}, jpeg)
}

// finishCycle records the cycle and emits outputs unless shutdown has
// begun. The enabled check sits directly before each emission, so a
// cycle in flight when shutdown starts completes silently.
func (e *Engine) finishCycle(c Cycle, jpeg []byte) {
	e.lastMu.Lock()
	e.last = c
	e.lastMu.Unlock()

	if e.State() != StateActive {
		return
	}
	// Image first so OnCycle observers can pair records with the
	// frame they came from
	if e.onAnnotated != nil && jpeg != nil {
		e.onAnnotated(jpeg)
	}
	if e.onCycle != nil {
		e.onCycle(c)
	}
}
