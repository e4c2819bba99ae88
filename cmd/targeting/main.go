// targeting: 3D target localization service
// Fuses detection boxes with registered depth frames to produce
// range/bearing records and annotated imagery.
package main

import (
	"flag"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/avosky/go-targeting/internal/config"
	"github.com/avosky/go-targeting/internal/log"
	"github.com/avosky/go-targeting/pkg/enhance"
	"github.com/avosky/go-targeting/pkg/ingest"
	"github.com/avosky/go-targeting/pkg/protocol"
	"github.com/avosky/go-targeting/pkg/snapshot"
	"github.com/avosky/go-targeting/pkg/targeting"
	"github.com/avosky/go-targeting/pkg/web"
)

var version = "1.0.0"

func main() {
	port := flag.String("port", config.Port(), "HTTP server port")
	flag.Parse()

	log.Init(config.LogLevel())
	logger := log.Component("main")
	logger.Info("targeting service starting", "version", version, "port", *port)

	geom := targeting.GeometryFromEnv()
	engine, err := targeting.NewEngine(geom)
	if err != nil {
		logger.Error("engine init failed", "error", err)
		os.Exit(1)
	}
	logger.Info("camera geometry",
		"fov_horz_deg", geom.FOVHorizDeg,
		"fov_vert_deg", geom.FOVVertDeg,
		"box_reduction_pct", geom.BoxReductionPct,
		"depth_window_m", geom.DepthWindowM,
		"min_valid_samples", geom.MinValidSamples)

	if config.EnhanceEnabled() {
		enhancer := enhance.New()
		engine.SetPreprocess(enhancer.Apply)
		logger.Info("frame enhancement enabled", "sensitivity", enhancer.Sensitivity)
	}

	var saver *snapshot.Saver
	if config.SnapshotsEnabled() {
		saver, err = snapshot.NewSaver(config.DataDir(), snapshot.DefaultCooldown)
		if err != nil {
			logger.Error("snapshot saver init failed", "error", err)
			os.Exit(1)
		}
		logger.Info("event snapshots enabled", "dir", config.DataDir())
	}

	// Dashboard + output streams
	server := web.NewServer(*port)

	// Sensor ingest on the same app
	sensors := ingest.NewHub()
	sensors.RegisterRoutes(server.App())

	var targetsEmitted atomic.Uint64

	server.GeometryFunc = engine.Geometry
	server.LastCycleFunc = engine.LastCycle
	server.StatusFunc = func() protocol.StatusData {
		stats := sensors.GetStats()
		return protocol.StatusData{
			EngineState:      engine.State().String(),
			SensorsConnected: stats.SensorCount,
			FramesReceived:   stats.FramesReceived,
			DepthReceived:    stats.DepthReceived,
			TargetsEmitted:   targetsEmitted.Load(),
			LastCycleSeq:     engine.LastCycle().Seq,
		}
	}

	// Engine outputs → dashboard streams
	var lastAnnotated []byte
	engine.OnCycle(func(c targeting.Cycle) {
		for _, t := range c.Targets {
			targetsEmitted.Add(1)
			server.BroadcastTarget(protocol.TargetData{
				Label:        t.Label,
				RangeM:       t.Range.Sentinel(),
				AzimuthDeg:   t.AzimuthDeg,
				ElevationDeg: t.ElevationDeg,
				FrameWidth:   c.Width,
				FrameHeight:  c.Height,
				Seq:          c.Seq,
			})
		}
		if saver != nil {
			saver.Observe(c, lastAnnotated)
		}
	})
	engine.OnAnnotated(func(jpeg []byte) {
		lastAnnotated = jpeg
		server.BroadcastAnnotated(jpeg)
	})

	// Sensor inputs → engine state
	sensors.OnDepth(func(sensorID string, d *protocol.DepthData) {
		buf, err := d.Floats()
		if err != nil {
			logger.Debug("bad depth payload", "sensor", sensorID, "error", err)
			return
		}
		if err := engine.UpdateDepthFloats(buf, d.Width, d.Height); err != nil {
			logger.Debug("depth frame rejected", "sensor", sensorID, "error", err)
		}
	})
	sensors.OnBoxes(func(sensorID string, b *protocol.BoxesData) {
		engine.UpdateBoxes(b.Boxes)
	})
	sensors.OnObjectCount(func(sensorID string, count int) {
		engine.UpdateObjectCount(count)
	})
	sensors.OnFrame(func(sensorID string, f *protocol.FrameData) {
		jpeg, err := f.Bytes()
		if err != nil {
			logger.Debug("bad frame payload", "sensor", sensorID, "error", err)
			return
		}
		if err := engine.ProcessFrameJPEG(jpeg); err != nil {
			// Garbled frame: drop this cycle, keep running
			logger.Warn("frame dropped", "sensor", sensorID, "error", err)
		}
	})

	server.StartAsync()
	logger.Info("ready",
		"sensor_ws", "ws://localhost:"+*port+"/ws/sensor",
		"targets_ws", "ws://localhost:"+*port+"/ws/targets")

	// Run until signalled, then drain the engine before exiting
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	engine.Shutdown()
	if err := server.Shutdown(); err != nil {
		logger.Error("web shutdown error", "error", err)
	}
}
