// simulate: synthetic sensor publisher for exercising the targeting
// service without hardware. Publishes a moving target over the three
// input streams (color frame, depth frame, detection boxes) plus
// periodic object-count events.
package main

import (
	"flag"
	"image"
	"image/color"
	"math"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"gocv.io/x/gocv"

	"github.com/avosky/go-targeting/internal/log"
	"github.com/avosky/go-targeting/pkg/detect"
	"github.com/avosky/go-targeting/pkg/protocol"
)

var (
	addr   = flag.String("addr", "localhost:8090", "targeting service address")
	fps    = flag.Float64("fps", 10, "frame rate")
	width  = flag.Int("width", 640, "frame width")
	height = flag.Int("height", 480, "frame height")
)

func main() {
	flag.Parse()
	log.Init("info")
	logger := log.Component("simulate")

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws/sensor/simulator"}
	logger.Info("connecting", "url", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		logger.Error("dial failed", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	// Drain pongs and any other service messages
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(float64(time.Second) / *fps))
	defer ticker.Stop()

	logger.Info("publishing", "fps", *fps, "size", *width)

	var frameID uint64
	start := time.Now()
	for {
		select {
		case <-sigChan:
			logger.Info("stopping")
			return
		case <-ticker.C:
			t := time.Since(start).Seconds()
			frameID++

			box := targetBox(t, *width, *height)
			rangeM := 2.0 + math.Sin(t/3)

			// Every ~10s the detector loses the target for a moment
			lost := math.Mod(t, 10) > 9

			if err := publish(conn, box, rangeM, lost, frameID, *width, *height); err != nil {
				logger.Error("publish failed", "error", err)
				return
			}
		}
	}
}

// targetBox sweeps a 100x100 box horizontally across the frame.
func targetBox(t float64, w, h int) detect.Box {
	cx := w/2 + int(float64(w)/3*math.Sin(t/2))
	cy := h / 2
	return detect.Box{
		Label: "person",
		XMin:  cx - 50,
		YMin:  cy - 50,
		XMax:  cx + 50,
		YMax:  cy + 50,
	}
}

func publish(conn *websocket.Conn, box detect.Box, rangeM float64, lost bool, frameID uint64, w, h int) error {
	if lost {
		msg, err := protocol.NewObjectCountMessage(0)
		if err != nil {
			return err
		}
		if err := send(conn, msg); err != nil {
			return err
		}
	} else {
		msg, err := protocol.NewBoxesMessage([]detect.Box{box})
		if err != nil {
			return err
		}
		if err := send(conn, msg); err != nil {
			return err
		}
	}

	msg, err := protocol.NewDepthMessage(depthField(box, rangeM, w, h), w, h)
	if err != nil {
		return err
	}
	if err := send(conn, msg); err != nil {
		return err
	}

	jpeg, err := renderFrame(box, w, h)
	if err != nil {
		return err
	}
	msg, err = protocol.NewFrameMessage(jpeg, w, h, frameID)
	if err != nil {
		return err
	}
	return send(conn, msg)
}

// depthField builds a 10m background with the target patch at rangeM.
// A few NaN holes imitate stereo dropout.
func depthField(box detect.Box, rangeM float64, w, h int) []float32 {
	buf := make([]float32, w*h)
	for i := range buf {
		buf[i] = 10.0
	}
	for y := box.YMin; y < box.YMax; y++ {
		if y < 0 || y >= h {
			continue
		}
		for x := box.XMin; x < box.XMax; x++ {
			if x < 0 || x >= w {
				continue
			}
			if (x+y)%97 == 0 {
				buf[y*w+x] = float32(math.NaN())
				continue
			}
			buf[y*w+x] = float32(rangeM)
		}
	}
	return buf
}

// renderFrame draws the target as a filled rectangle on a dark frame.
func renderFrame(box detect.Box, w, h int) ([]byte, error) {
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(40, 40, 40, 0), h, w, gocv.MatTypeCV8UC3)
	defer img.Close()

	gocv.Rectangle(&img, image.Rect(box.XMin, box.YMin, box.XMax, box.YMax),
		color.RGBA{R: 180, G: 120, B: 60}, -1)

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		return nil, err
	}
	defer buf.Close()

	jpeg := make([]byte, len(buf.GetBytes()))
	copy(jpeg, buf.GetBytes())
	return jpeg, nil
}

func send(conn *websocket.Conn, msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}
