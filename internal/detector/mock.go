package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Shifted returns a copy of h with every landmark moved by (dx, dy).
func Shifted(h HandLandmarks, dx, dy float64) HandLandmarks {
	out := h
	for i := range out.Points {
		out.Points[i].X += dx
		out.Points[i].Y += dy
	}
	return out
}

// CupGripLandmarks returns a preset hand wrapped around a cup: index and
// middle fingers curled down to their knuckles, thumb opposed to the index
// tip, wrist near the center of the frame.
func CupGripLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.93,
	}

	landmarks.Points[Wrist] = Point{X: 0.50, Y: 0.75}

	landmarks.Points[ThumbCMC] = Point{X: 0.46, Y: 0.71}
	landmarks.Points[ThumbMCP] = Point{X: 0.43, Y: 0.67}
	landmarks.Points[ThumbIP] = Point{X: 0.42, Y: 0.62}
	landmarks.Points[ThumbTip] = Point{X: 0.42, Y: 0.58}

	// Fingers wrap forward, tips end just below their knuckles.
	landmarks.Points[IndexMCP] = Point{X: 0.47, Y: 0.60}
	landmarks.Points[IndexPIP] = Point{X: 0.44, Y: 0.57}
	landmarks.Points[IndexDIP] = Point{X: 0.44, Y: 0.60}
	landmarks.Points[IndexTip] = Point{X: 0.45, Y: 0.62}

	landmarks.Points[MiddleMCP] = Point{X: 0.50, Y: 0.58}
	landmarks.Points[MiddlePIP] = Point{X: 0.48, Y: 0.55}
	landmarks.Points[MiddleDIP] = Point{X: 0.47, Y: 0.58}
	landmarks.Points[MiddleTip] = Point{X: 0.48, Y: 0.60}

	landmarks.Points[RingMCP] = Point{X: 0.53, Y: 0.60}
	landmarks.Points[RingPIP] = Point{X: 0.52, Y: 0.57}
	landmarks.Points[RingDIP] = Point{X: 0.51, Y: 0.60}
	landmarks.Points[RingTip] = Point{X: 0.51, Y: 0.62}

	landmarks.Points[PinkyMCP] = Point{X: 0.56, Y: 0.63}
	landmarks.Points[PinkyPIP] = Point{X: 0.55, Y: 0.61}
	landmarks.Points[PinkyDIP] = Point{X: 0.54, Y: 0.63}
	landmarks.Points[PinkyTip] = Point{X: 0.54, Y: 0.65}

	return landmarks
}

// OpenPalmLandmarks returns a preset HandLandmarks representing an open palm gesture.
// All fingers are extended upward, far above their knuckles.
func OpenPalmLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point{X: 0.5, Y: 0.8}

	landmarks.Points[ThumbCMC] = Point{X: 0.55, Y: 0.75}
	landmarks.Points[ThumbMCP] = Point{X: 0.62, Y: 0.70}
	landmarks.Points[ThumbIP] = Point{X: 0.68, Y: 0.65}
	landmarks.Points[ThumbTip] = Point{X: 0.73, Y: 0.60}

	landmarks.Points[IndexMCP] = Point{X: 0.55, Y: 0.68}
	landmarks.Points[IndexPIP] = Point{X: 0.57, Y: 0.55}
	landmarks.Points[IndexDIP] = Point{X: 0.58, Y: 0.45}
	landmarks.Points[IndexTip] = Point{X: 0.58, Y: 0.35}

	landmarks.Points[MiddleMCP] = Point{X: 0.50, Y: 0.66}
	landmarks.Points[MiddlePIP] = Point{X: 0.50, Y: 0.52}
	landmarks.Points[MiddleDIP] = Point{X: 0.50, Y: 0.40}
	landmarks.Points[MiddleTip] = Point{X: 0.50, Y: 0.28}

	landmarks.Points[RingMCP] = Point{X: 0.45, Y: 0.68}
	landmarks.Points[RingPIP] = Point{X: 0.43, Y: 0.55}
	landmarks.Points[RingDIP] = Point{X: 0.42, Y: 0.45}
	landmarks.Points[RingTip] = Point{X: 0.42, Y: 0.35}

	landmarks.Points[PinkyMCP] = Point{X: 0.40, Y: 0.70}
	landmarks.Points[PinkyPIP] = Point{X: 0.37, Y: 0.60}
	landmarks.Points[PinkyDIP] = Point{X: 0.35, Y: 0.50}
	landmarks.Points[PinkyTip] = Point{X: 0.34, Y: 0.42}

	return landmarks
}

// TwoHandGrip returns two hands cupped around an object at the frame center.
func TwoHandGrip() []HandLandmarks {
	left := Shifted(CupGripLandmarks(), -0.1, 0)
	left.Handedness = "Left"
	right := Shifted(CupGripLandmarks(), 0.1, 0)
	return []HandLandmarks{left, right}
}
