// Package snapshot saves annotated frames and their localization
// records when targets first appear, for post-mission review.
package snapshot

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avosky/go-targeting/internal/log"
	"github.com/avosky/go-targeting/pkg/protocol"
	"github.com/avosky/go-targeting/pkg/targeting"
)

// DefaultCooldown is the minimum spacing between saved events.
const DefaultCooldown = 5 * time.Second

const filePrefix = "snapshot_event"

// Record is the JSON sidecar written next to each saved image.
type Record struct {
	Seq     uint64                `json:"seq"`
	Time    time.Time             `json:"time"`
	Width   int                   `json:"width"`
	Height  int                   `json:"height"`
	Targets []protocol.TargetData `json:"targets"`
}

// Saver watches cycles and captures the annotated frame when a cycle
// transitions from no targets to some targets. Saving is fire-and-forget;
// failures are logged and never affect the engine.
type Saver struct {
	dir      string
	cooldown time.Duration

	mu         sync.Mutex
	hadTargets bool
	lastSave   time.Time

	logger *slog.Logger
}

// NewSaver creates a saver writing under dir, creating it if needed.
func NewSaver(dir string, cooldown time.Duration) (*Saver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Saver{
		dir:      dir,
		cooldown: cooldown,
		logger:   log.Component("snapshot"),
	}, nil
}

// Observe feeds one completed cycle and its annotated JPEG to the saver.
// jpeg may be nil when the cycle produced no image.
func (s *Saver) Observe(c targeting.Cycle, jpeg []byte) {
	s.mu.Lock()
	trigger := len(c.Targets) > 0 && !s.hadTargets &&
		time.Since(s.lastSave) > s.cooldown
	s.hadTargets = len(c.Targets) > 0
	if trigger {
		s.lastSave = time.Now()
	}
	s.mu.Unlock()

	if !trigger || jpeg == nil {
		return
	}

	s.save(c, jpeg)
}

func (s *Saver) save(c targeting.Cycle, jpeg []byte) {
	base := fmt.Sprintf("%s_%s_%s", filePrefix, timestamp(), uuid.NewString()[:8])

	imgPath := filepath.Join(s.dir, base+".jpg")
	if err := os.WriteFile(imgPath, jpeg, 0o644); err != nil {
		s.logger.Error("save snapshot image", "path", imgPath, "error", err)
		return
	}

	rec := Record{
		Seq:     c.Seq,
		Time:    time.Now().UTC(),
		Width:   c.Width,
		Height:  c.Height,
		Targets: make([]protocol.TargetData, 0, len(c.Targets)),
	}
	for _, t := range c.Targets {
		rec.Targets = append(rec.Targets, protocol.TargetData{
			Label:        t.Label,
			RangeM:       t.Range.Sentinel(),
			AzimuthDeg:   t.AzimuthDeg,
			ElevationDeg: t.ElevationDeg,
			Seq:          c.Seq,
		})
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		s.logger.Error("encode snapshot record", "error", err)
		return
	}
	recPath := filepath.Join(s.dir, base+".json")
	if err := os.WriteFile(recPath, data, 0o644); err != nil {
		s.logger.Error("save snapshot record", "path", recPath, "error", err)
		return
	}

	s.logger.Info("saved snapshot", "image", imgPath, "targets", len(c.Targets))
}

// timestamp formats UTC time to millisecond precision, filename-safe.
func timestamp() string {
	return strings.ReplaceAll(time.Now().UTC().Format("20060102-150405.000"), ".", "")
}
