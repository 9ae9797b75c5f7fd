package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/performative/internal/detector"
)

// handAt returns a hand whose 21 landmarks all sit at (x, y), so its
// centroid is exactly (x, y).
func handAt(x, y float64) detector.HandLandmarks {
	var h detector.HandLandmarks
	for i := range h.Points {
		h.Points[i] = detector.Point{X: x, Y: y}
	}
	return h
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "", want: ModeGeometric},
		{in: "geometric", want: ModeGeometric},
		{in: "relaxed", want: ModeRelaxed},
		{in: "strict", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegion_Contains(t *testing.T) {
	r := DefaultConfig().Region

	tests := []struct {
		name string
		p    detector.Point
		want bool
	}{
		{name: "center", p: detector.Point{X: 0.5, Y: 0.5}, want: true},
		{name: "left edge is exclusive", p: detector.Point{X: 0.1, Y: 0.5}, want: false},
		{name: "right edge is exclusive", p: detector.Point{X: 0.9, Y: 0.5}, want: false},
		{name: "top edge is exclusive", p: detector.Point{X: 0.5, Y: 0.1}, want: false},
		{name: "bottom edge is exclusive", p: detector.Point{X: 0.5, Y: 0.95}, want: false},
		{name: "just inside bottom", p: detector.Point{X: 0.5, Y: 0.94}, want: true},
		{name: "outside", p: detector.Point{X: 0.05, Y: 0.99}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Contains(tt.p))
		})
	}
}

func TestClassifier_NoHands(t *testing.T) {
	for _, mode := range []Mode{ModeGeometric, ModeRelaxed} {
		cfg := DefaultConfig()
		cfg.Mode = mode
		c := NewClassifier(cfg)

		holding, reason := c.Explain(nil)
		assert.False(t, holding, "mode %s", mode)
		assert.Equal(t, ReasonNoHands, reason)
	}
}

func TestClassifier_RelaxedMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = ModeRelaxed
	c := NewClassifier(cfg)

	// An open palm in a corner would fail every geometric rule.
	corner := detector.Shifted(detector.OpenPalmLandmarks(), 0.45, 0.15)
	holding, reason := c.Explain([]detector.HandLandmarks{corner})

	assert.True(t, holding)
	assert.Equal(t, ReasonAnyHand, reason)
}

func TestClassifier_SingleHand(t *testing.T) {
	c := NewClassifier(DefaultConfig())

	t.Run("cup grip holds", func(t *testing.T) {
		holding, reason := c.Explain([]detector.HandLandmarks{detector.CupGripLandmarks()})
		assert.True(t, holding)
		assert.Equal(t, ReasonOneHandGrip, reason)
	})

	t.Run("open palm does not hold", func(t *testing.T) {
		holding, reason := c.Explain([]detector.HandLandmarks{detector.OpenPalmLandmarks()})
		assert.False(t, holding)
		assert.Equal(t, ReasonOneHandOpen, reason)
	})

	t.Run("single hand never uses the two-hand rule", func(t *testing.T) {
		// A lone hand with its centroid dead center but fingers extended.
		h := handAt(0.5, 0.5)
		h.Points[detector.IndexTip].Y = 0.2
		holding, reason := c.Explain([]detector.HandLandmarks{h})
		assert.False(t, holding)
		assert.Equal(t, ReasonOneHandOpen, reason)
	})
}

func TestSingleHandHolding(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name   string
		mutate func(h *detector.HandLandmarks)
		want   bool
	}{
		{
			name:   "grip",
			mutate: func(h *detector.HandLandmarks) {},
			want:   true,
		},
		{
			name: "index tip exactly at slack boundary counts as curled",
			mutate: func(h *detector.HandLandmarks) {
				h.Points[detector.IndexTip].Y = h.Points[detector.IndexMCP].Y - cfg.CurlSlack
			},
			want: true,
		},
		{
			name: "index extended",
			mutate: func(h *detector.HandLandmarks) {
				h.Points[detector.IndexTip].Y = h.Points[detector.IndexMCP].Y - 0.2
			},
			want: false,
		},
		{
			name: "middle extended",
			mutate: func(h *detector.HandLandmarks) {
				h.Points[detector.MiddleTip].Y = h.Points[detector.MiddleMCP].Y - 0.2
			},
			want: false,
		},
		{
			name: "thumb far from index",
			mutate: func(h *detector.HandLandmarks) {
				h.Points[detector.ThumbTip] = detector.Point{
					X: h.Points[detector.IndexTip].X + 0.3,
					Y: h.Points[detector.IndexTip].Y,
				}
			},
			want: false,
		},
		{
			name: "wrist at frame edge",
			mutate: func(h *detector.HandLandmarks) {
				h.Points[detector.Wrist].X = 0.05
			},
			want: false,
		},
		{
			name: "wrist below region",
			mutate: func(h *detector.HandLandmarks) {
				h.Points[detector.Wrist].Y = 0.97
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := detector.CupGripLandmarks()
			tt.mutate(&h)
			assert.Equal(t, tt.want, SingleHandHolding(&h, cfg))
		})
	}
}

func TestClassifier_TwoHands(t *testing.T) {
	c := NewClassifier(DefaultConfig())

	tests := []struct {
		name       string
		hands      []detector.HandLandmarks
		want       bool
		wantReason Reason
	}{
		{
			name:       "preset grip",
			hands:      detector.TwoHandGrip(),
			want:       true,
			wantReason: ReasonTwoHandGrip,
		},
		{
			name:       "close together at center",
			hands:      []detector.HandLandmarks{handAt(0.4, 0.5), handAt(0.6, 0.5)},
			want:       true,
			wantReason: ReasonTwoHandGrip,
		},
		{
			name:       "far apart",
			hands:      []detector.HandLandmarks{handAt(0.2, 0.5), handAt(0.8, 0.5)},
			want:       false,
			wantReason: ReasonHandsApart,
		},
		{
			name:       "close but midpoint off center",
			hands:      []detector.HandLandmarks{handAt(0.02, 0.5), handAt(0.12, 0.5)},
			want:       false,
			wantReason: ReasonOffCenter,
		},
		{
			name:       "close but near the bottom edge",
			hands:      []detector.HandLandmarks{handAt(0.5, 0.96), handAt(0.6, 0.96)},
			want:       false,
			wantReason: ReasonOffCenter,
		},
		{
			name:       "third hand ignored",
			hands:      []detector.HandLandmarks{handAt(0.4, 0.5), handAt(0.6, 0.5), handAt(0.99, 0.99)},
			want:       true,
			wantReason: ReasonTwoHandGrip,
		},
		{
			name: "two open palms close together still hold",
			hands: []detector.HandLandmarks{
				detector.Shifted(detector.OpenPalmLandmarks(), -0.1, 0),
				detector.Shifted(detector.OpenPalmLandmarks(), 0.1, 0),
			},
			want:       true,
			wantReason: ReasonTwoHandGrip,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			holding, reason := c.Explain(tt.hands)
			assert.Equal(t, tt.want, holding)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

func TestTwoHandHolding_DistanceBoundIsPositionIndependent(t *testing.T) {
	cfg := DefaultConfig()

	a := handAt(0.25, 0.5)
	b := handAt(0.75, 0.5)
	assert.False(t, TwoHandHolding(&a, &b, cfg), "distance exactly at the bound")

	// Sweep centroid pairs beyond the max distance across the frame; none
	// of them may classify as holding.
	for x := 0.0; x <= 1.0; x += 0.05 {
		for y := 0.0; y <= 1.0; y += 0.05 {
			for _, d := range []float64{0.501, 0.51, 0.75} {
				a := handAt(x, y)
				b := handAt(x+d, y)
				assert.False(t, TwoHandHolding(&a, &b, cfg), "x=%.2f y=%.2f d=%.2f", x, y, d)

				c := handAt(x, y+d)
				assert.False(t, TwoHandHolding(&a, &c, cfg), "vertical x=%.2f y=%.2f d=%.2f", x, y, d)
			}
		}
	}
}

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier(Config{})
	assert.Equal(t, ModeGeometric, c.Config().Mode, "empty mode defaults to geometric")

	c = NewClassifier(DefaultConfig())
	assert.True(t, c.Classify(detector.TwoHandGrip()))
	assert.False(t, c.Classify([]detector.HandLandmarks{}))
}
