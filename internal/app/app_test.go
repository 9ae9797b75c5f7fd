package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/ayusman/performative/internal/capture"
	"github.com/ayusman/performative/internal/config"
	"github.com/ayusman/performative/internal/detector"
	"github.com/ayusman/performative/internal/gesture"
	"github.com/ayusman/performative/internal/holding"
	"github.com/ayusman/performative/internal/playback"
	"github.com/ayusman/performative/internal/server"
)

const track = "spotify:track:2mWfVxEo4xZYDaz0v7hYrN"

type fakeDisplay struct {
	mu       sync.Mutex
	renders  int
	holding  []bool
	displays []holding.Display
	quitAt   int
	closed   bool
}

func (d *fakeDisplay) Render(frame gocv.Mat, isHolding bool, display holding.Display) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.renders++
	d.holding = append(d.holding, isHolding)
	d.displays = append(d.displays, display)
	return d.quitAt > 0 && d.renders >= d.quitAt
}

func (d *fakeDisplay) QuitKey() string { return "q" }

func (d *fakeDisplay) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
}

type recordingStatus struct {
	updates []bool
}

func (r *recordingStatus) SetHolding(holding bool) {
	r.updates = append(r.updates, holding)
}

// clock advances by step on every call.
func clock(start time.Time, step time.Duration) func() time.Time {
	now := start.Add(-step)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func newTrigger(t *testing.T, client *playback.FakeClient) *playback.Trigger {
	t.Helper()
	if client.DeviceList == nil {
		client.DeviceList = []playback.Device{{ID: "laptop", Name: "Laptop", IsActive: true}}
	}
	return playback.New(context.Background(), client, playback.Options{TrackURI: track})
}

func stepAt(a *App, frame *gocv.Mat, t0 time.Time, offsets ...time.Duration) []Result {
	results := make([]Result, len(offsets))
	for i, off := range offsets {
		results[i] = a.Step(context.Background(), frame, t0.Add(off))
	}
	return results
}

func TestStep_ConfirmFiresOnce(t *testing.T) {
	det := detector.NewMockDetector()
	det.SetHands([]detector.HandLandmarks{detector.CupGripLandmarks()})
	client := &playback.FakeClient{}
	a := New(Config{Detector: det, Trigger: newTrigger(t, client)})

	frame := gocv.NewMat()
	defer frame.Close()
	t0 := time.Now()

	results := stepAt(a, &frame, t0,
		0, 100*time.Millisecond, 250*time.Millisecond, 400*time.Millisecond, 2*time.Second)

	assert.Equal(t, holding.Pending, results[0].State.Status)
	assert.Equal(t, holding.Pending, results[1].State.Status)
	assert.True(t, results[2].Transition.Confirmed)
	assert.True(t, results[2].Fired)
	assert.False(t, results[3].Fired)
	assert.False(t, results[4].Fired)

	a.Trigger().Wait()
	assert.Equal(t, 1, client.StartCalls())
	assert.Equal(t, "laptop", client.LastDevice())
}

func TestStep_FlickerNeverConfirms(t *testing.T) {
	det := detector.NewMockDetector()
	client := &playback.FakeClient{}
	a := New(Config{Detector: det, Trigger: newTrigger(t, client)})

	frame := gocv.NewMat()
	defer frame.Close()
	t0 := time.Now()

	grip := []detector.HandLandmarks{detector.CupGripLandmarks()}
	for i := 0; i < 20; i++ {
		if i%2 == 0 {
			det.SetHands(grip)
		} else {
			det.SetHands(nil)
		}
		res := a.Step(context.Background(), &frame, t0.Add(time.Duration(i)*150*time.Millisecond))
		require.False(t, res.Transition.Confirmed, "frame %d", i)
	}

	a.Trigger().Wait()
	assert.Zero(t, client.StartCalls())
}

func TestStep_ReleaseAndRehold(t *testing.T) {
	det := detector.NewMockDetector()
	client := &playback.FakeClient{}
	a := New(Config{Detector: det, Trigger: newTrigger(t, client)})

	frame := gocv.NewMat()
	defer frame.Close()
	t0 := time.Now()

	det.SetHands([]detector.HandLandmarks{detector.CupGripLandmarks()})
	stepAt(a, &frame, t0, 0, 300*time.Millisecond)
	require.True(t, a.Machine().IsHolding())
	a.Trigger().Wait()

	det.SetHands([]detector.HandLandmarks{detector.OpenPalmLandmarks()})
	res := a.Step(context.Background(), &frame, t0.Add(400*time.Millisecond))
	assert.True(t, res.Transition.Released)
	assert.Equal(t, holding.NotHolding, res.State.Status)

	det.SetHands([]detector.HandLandmarks{detector.CupGripLandmarks()})
	results := stepAt(a, &frame, t0, 500*time.Millisecond, 800*time.Millisecond)
	assert.True(t, results[1].Fired)

	a.Trigger().Wait()
	// The second hold finds the track already playing.
	assert.Equal(t, 1, client.StartCalls())
	assert.Equal(t, 2, client.CurrentCalls())
}

func TestStep_DisplayDelay(t *testing.T) {
	det := detector.NewMockDetector()
	det.SetHands(detector.TwoHandGrip())
	a := New(Config{Detector: det})

	frame := gocv.NewMat()
	defer frame.Close()
	t0 := time.Now()

	results := stepAt(a, &frame, t0,
		0, 300*time.Millisecond, 900*time.Millisecond, 1300*time.Millisecond)

	assert.True(t, results[1].Transition.Confirmed)
	assert.Equal(t, holding.FullCamera, results[1].Display)
	assert.Equal(t, holding.FullCamera, results[2].Display)
	assert.Equal(t, holding.PictureInPicture, results[3].Display)
	assert.Equal(t, gesture.ReasonTwoHandGrip, results[3].Reason)
}

func TestStep_DetectorErrorIsNoHands(t *testing.T) {
	det := detector.NewMockDetector()
	det.SetHands([]detector.HandLandmarks{detector.CupGripLandmarks()})
	a := New(Config{Detector: det})

	frame := gocv.NewMat()
	defer frame.Close()
	t0 := time.Now()

	stepAt(a, &frame, t0, 0, 300*time.Millisecond)
	require.True(t, a.Machine().IsHolding())

	det.SetError(errors.New("landmark service crashed"))
	res := a.Step(context.Background(), &frame, t0.Add(350*time.Millisecond))

	assert.Empty(t, res.Hands)
	assert.False(t, res.Signal)
	assert.True(t, res.Transition.Released)
}

func TestStep_MusicDisabled(t *testing.T) {
	det := detector.NewMockDetector()
	det.SetHands([]detector.HandLandmarks{detector.CupGripLandmarks()})
	client := &playback.FakeClient{}
	a := New(Config{Detector: det, Trigger: newTrigger(t, client)})
	a.SetEnabled(false)

	frame := gocv.NewMat()
	defer frame.Close()

	results := stepAt(a, &frame, time.Now(), 0, 300*time.Millisecond)
	assert.True(t, results[1].Transition.Confirmed)
	assert.False(t, results[1].Fired)

	a.Trigger().Wait()
	assert.Zero(t, client.CurrentCalls())
}

func TestStep_PlaybackUnavailable(t *testing.T) {
	det := detector.NewMockDetector()
	det.SetHands([]detector.HandLandmarks{detector.CupGripLandmarks()})
	client := &playback.FakeClient{DeviceList: []playback.Device{}}
	a := New(Config{Detector: det, Trigger: playback.New(context.Background(), client, playback.Options{TrackURI: track})})

	frame := gocv.NewMat()
	defer frame.Close()

	results := stepAt(a, &frame, time.Now(), 0, 300*time.Millisecond)
	assert.True(t, results[1].Transition.Confirmed)
	assert.Equal(t, holding.Holding, results[1].State.Status)

	a.Trigger().Wait()
	assert.Zero(t, client.CurrentCalls())
	assert.Zero(t, client.StartCalls())
}

func TestApply(t *testing.T) {
	det := detector.NewMockDetector()
	det.SetHands([]detector.HandLandmarks{detector.OpenPalmLandmarks()})
	a := New(Config{Detector: det})

	frame := gocv.NewMat()
	defer frame.Close()

	res := a.Step(context.Background(), &frame, time.Now())
	assert.False(t, res.Signal)

	dc := config.Default().Detection
	dc.Mode = string(gesture.ModeRelaxed)
	dc.HoldThreshold = config.Duration{Duration: 50 * time.Millisecond}
	require.NoError(t, a.Apply(dc))

	res = a.Step(context.Background(), &frame, time.Now())
	assert.True(t, res.Signal)
	assert.Equal(t, 50*time.Millisecond, a.Machine().HoldThreshold())

	dc.Mode = "psychic"
	assert.Error(t, a.Apply(dc))
	assert.Equal(t, gesture.ModeRelaxed, a.Classifier().Config().Mode)
}

func TestClassifierConfig_Defaults(t *testing.T) {
	cc, err := ClassifierConfig(config.Default().Detection)
	require.NoError(t, err)
	assert.Equal(t, gesture.DefaultConfig(), cc)
}

func TestRun_UntilCameraFails(t *testing.T) {
	cam := frameCamera(t, 6, false)

	det := detector.NewMockDetector()
	det.SetHands([]detector.HandLandmarks{detector.CupGripLandmarks()})
	client := &playback.FakeClient{}
	display := &fakeDisplay{}
	status := &recordingStatus{}
	hub := server.NewHub()

	a := New(Config{
		Camera:   cam,
		Detector: det,
		Trigger:  newTrigger(t, client),
		Display:  display,
		Hub:      hub,
		Status:   status,
		Now:      clock(time.Now(), 300*time.Millisecond),
	})

	err := a.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, capture.ErrNoMoreFrames)

	assert.Equal(t, 6, display.renders)
	assert.Equal(t, []bool{false, true, true, true, true, true}, display.holding)
	// 300ms frames: confirmed on the second, face cam on the sixth.
	assert.Equal(t, holding.FullCamera, display.displays[4])
	assert.Equal(t, holding.PictureInPicture, display.displays[5])
	assert.True(t, display.closed)
	assert.False(t, cam.IsOpen())

	assert.Equal(t, []bool{true}, status.updates)
	assert.Equal(t, 1, client.StartCalls())

	snap := hub.Latest()
	assert.Equal(t, "holding", snap.Status)
	assert.Equal(t, 1, snap.Hands)
	assert.True(t, snap.PlaybackReady)
	assert.Equal(t, "Laptop", snap.Device)
}

func TestRun_QuitKey(t *testing.T) {
	display := &fakeDisplay{quitAt: 3}
	a := New(Config{
		Camera:   frameCamera(t, 1, true),
		Detector: detector.NewMockDetector(),
		Display:  display,
	})

	require.NoError(t, a.Run(context.Background()))
	assert.Equal(t, 3, display.renders)
	assert.True(t, display.closed)
}

func TestRun_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cam := frameCamera(t, 1, true)
	a := New(Config{Camera: cam, Detector: detector.NewMockDetector()})

	require.NoError(t, a.Run(ctx))
	assert.False(t, cam.IsOpen())
}

func TestRun_AppliesReload(t *testing.T) {
	det := detector.NewMockDetector()
	det.SetHands([]detector.HandLandmarks{detector.OpenPalmLandmarks()})

	reload := make(chan config.DetectionConfig, 1)
	dc := config.Default().Detection
	dc.Mode = string(gesture.ModeRelaxed)
	reload <- dc
	close(reload)

	display := &fakeDisplay{quitAt: 4}
	a := New(Config{
		Camera:   frameCamera(t, 1, true),
		Detector: det,
		Display:  display,
		Reload:   reload,
		Now:      clock(time.Now(), 300*time.Millisecond),
	})

	require.NoError(t, a.Run(context.Background()))
	// Relaxed mode counts the open palm, so the hold is confirmed.
	assert.Equal(t, []bool{false, true, true, true}, display.holding)
}

func TestRun_OpenFails(t *testing.T) {
	a := New(Config{Camera: failingCamera{frameCamera(t, 1, false)}, Detector: detector.NewMockDetector()})
	err := a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open camera")
}

func frameCamera(t *testing.T, n int, loop bool) *capture.MockCamera {
	t.Helper()
	frames := make([]*gocv.Mat, n)
	for i := range frames {
		m := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
		frames[i] = &m
	}
	cam := capture.NewMockCamera(frames, loop)
	t.Cleanup(cam.CloseFrames)
	return cam
}

type failingCamera struct{ *capture.MockCamera }

func (failingCamera) Open() error { return errors.New("no device") }
