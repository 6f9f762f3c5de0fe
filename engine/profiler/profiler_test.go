package profiler

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestTickLogsAtInterval(t *testing.T) {
	now := time.Unix(0, 0)
	var buf bytes.Buffer
	p := NewProfiler(
		WithLogger(zerolog.New(&buf)),
		WithInterval(time.Second),
		WithClock(func() time.Time { return now }),
	)

	p.RecordCamera(FrameStats{Commands: 10, DrawCalls: 3, Acquires: 2, DroppedLights: 1})
	p.RecordCamera(FrameStats{Skipped: true})
	assert.False(t, p.Tick())
	assert.Equal(t, Totals{Frames: 1, Cameras: 2, Skipped: 1, Commands: 10, DrawCalls: 3, Acquires: 2, DroppedLights: 1}, p.Totals())
	assert.Zero(t, buf.Len())

	now = now.Add(2 * time.Second)
	assert.True(t, p.Tick())
	assert.Contains(t, buf.String(), `"draw_calls":3`)
	assert.Contains(t, buf.String(), `"skipped":1`)
	assert.Equal(t, Totals{}, p.Totals())
}

func TestResetStartsNewInterval(t *testing.T) {
	now := time.Unix(0, 0)
	var buf bytes.Buffer
	p := NewProfiler(WithLogger(zerolog.New(&buf)), WithClock(func() time.Time { return now }))

	p.RecordCamera(FrameStats{Commands: 4})
	now = now.Add(5 * time.Second)
	p.Reset()
	assert.Equal(t, Totals{}, p.Totals())

	now = now.Add(500 * time.Millisecond)
	assert.False(t, p.Tick())
	assert.Zero(t, buf.Len())
}
