package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avosky/go-targeting/internal/log"
	"github.com/avosky/go-targeting/pkg/targeting"
)

func TestMain(m *testing.M) {
	log.Init("error")
	os.Exit(m.Run())
}

func cycleWith(targets int) targeting.Cycle {
	c := targeting.Cycle{Seq: 1, Width: 640, Height: 480}
	for i := 0; i < targets; i++ {
		c.Targets = append(c.Targets, targeting.Localization{
			Label:        "person",
			Range:        targeting.Range{Meters: 2.0, Valid: true},
			AzimuthDeg:   5,
			ElevationDeg: -3,
		})
	}
	return c
}

func savedFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestSaverTriggersOnTargetAppearance(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSaver(dir, time.Millisecond)
	require.NoError(t, err)

	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xD9}
	s.Observe(cycleWith(1), jpeg)

	files := savedFiles(t, dir)
	require.Len(t, files, 2)

	var imgName, recName string
	for _, name := range files {
		require.True(t, strings.HasPrefix(name, "snapshot_event_"))
		switch filepath.Ext(name) {
		case ".jpg":
			imgName = name
		case ".json":
			recName = name
		}
	}
	require.NotEmpty(t, imgName)
	require.NotEmpty(t, recName)

	img, err := os.ReadFile(filepath.Join(dir, imgName))
	require.NoError(t, err)
	require.Equal(t, jpeg, img)

	raw, err := os.ReadFile(filepath.Join(dir, recName))
	require.NoError(t, err)
	var rec Record
	require.NoError(t, json.Unmarshal(raw, &rec))
	require.Equal(t, uint64(1), rec.Seq)
	require.Equal(t, 640, rec.Width)
	require.Len(t, rec.Targets, 1)
	require.Equal(t, "person", rec.Targets[0].Label)
	require.Equal(t, 2.0, rec.Targets[0].RangeM)
}

func TestSaverOnlyFiresOnTransition(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSaver(dir, time.Millisecond)
	require.NoError(t, err)

	jpeg := []byte{0xFF, 0xD8}

	// Targets persisting across cycles save once
	s.Observe(cycleWith(1), jpeg)
	time.Sleep(2 * time.Millisecond)
	s.Observe(cycleWith(2), jpeg)
	require.Len(t, savedFiles(t, dir), 2)

	// Targets vanish, then reappear: a new event
	s.Observe(cycleWith(0), jpeg)
	time.Sleep(2 * time.Millisecond)
	s.Observe(cycleWith(1), jpeg)
	require.Len(t, savedFiles(t, dir), 4)
}

func TestSaverCooldownSuppresses(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSaver(dir, time.Hour)
	require.NoError(t, err)

	jpeg := []byte{0xFF, 0xD8}
	s.Observe(cycleWith(1), jpeg)
	require.Len(t, savedFiles(t, dir), 2)

	// A fresh transition inside the cooldown window saves nothing
	s.Observe(cycleWith(0), jpeg)
	s.Observe(cycleWith(1), jpeg)
	require.Len(t, savedFiles(t, dir), 2)
}

func TestSaverSkipsNilImage(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSaver(dir, time.Millisecond)
	require.NoError(t, err)

	s.Observe(cycleWith(1), nil)
	require.Empty(t, savedFiles(t, dir))
}

func TestSaverInvalidRangeUsesSentinel(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSaver(dir, time.Millisecond)
	require.NoError(t, err)

	c := targeting.Cycle{Seq: 9, Width: 640, Height: 480, Targets: []targeting.Localization{
		{Label: "person", Range: targeting.Range{}, AzimuthDeg: 1, ElevationDeg: 2},
	}}
	s.Observe(c, []byte{0xFF})

	files := savedFiles(t, dir)
	require.Len(t, files, 2)
	for _, name := range files {
		if filepath.Ext(name) != ".json" {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		var rec Record
		require.NoError(t, json.Unmarshal(raw, &rec))
		require.Equal(t, targeting.SentinelRange, rec.Targets[0].RangeM)
	}
}
