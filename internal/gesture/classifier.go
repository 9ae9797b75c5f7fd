// Package gesture classifies detected hand landmarks as "holding something"
// or not. The rules are hand-tuned geometric heuristics over normalized
// coordinates; they are stateless and look at a single frame only.
package gesture

import (
	"fmt"

	"github.com/ayusman/performative/internal/detector"
)

// Mode selects how a frame is classified.
type Mode string

const (
	// ModeGeometric applies the single-hand and two-hand grip rules.
	ModeGeometric Mode = "geometric"
	// ModeRelaxed treats any detected hand as holding.
	ModeRelaxed Mode = "relaxed"
)

// ParseMode converts a config string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeGeometric:
		return ModeGeometric, nil
	case ModeRelaxed:
		return ModeRelaxed, nil
	default:
		return "", fmt.Errorf("invalid classifier mode: %s (must be geometric or relaxed)", s)
	}
}

// Region is an open rectangle in normalized frame coordinates.
type Region struct {
	MinX float64
	MaxX float64
	MinY float64
	MaxY float64
}

// Contains reports whether p lies strictly inside the region.
func (r Region) Contains(p detector.Point) bool {
	return r.MinX < p.X && p.X < r.MaxX && r.MinY < p.Y && p.Y < r.MaxY
}

// Config holds the classifier thresholds.
type Config struct {
	// TwoHandMaxDistance is the centroid distance below which two hands
	// count as gripping one object.
	TwoHandMaxDistance float64
	// Region is where the hands (or the wrist) must be.
	Region Region
	// CurlSlack is how far above its knuckle a fingertip may sit and still
	// count as curled.
	CurlSlack float64
	// ThumbIndexMaxDistance bounds the thumb-tip to index-tip gap.
	ThumbIndexMaxDistance float64
	Mode                  Mode
}

// DefaultConfig returns the tuned default thresholds.
func DefaultConfig() Config {
	return Config{
		TwoHandMaxDistance:    0.5,
		Region:                Region{MinX: 0.1, MaxX: 0.9, MinY: 0.1, MaxY: 0.95},
		CurlSlack:             0.08,
		ThumbIndexMaxDistance: 0.3,
		Mode:                  ModeGeometric,
	}
}

// Reason names the rule that decided a classification.
type Reason string

const (
	ReasonNoHands     Reason = "no hands"
	ReasonAnyHand     Reason = "hand present"
	ReasonOneHandGrip Reason = "one-hand grip"
	ReasonOneHandOpen Reason = "one hand, no grip"
	ReasonTwoHandGrip Reason = "two-hand grip"
	ReasonHandsApart  Reason = "hands apart"
	ReasonOffCenter   Reason = "off center"
)

// Classifier applies the holding rules to one frame of detections.
type Classifier struct {
	config Config
}

// NewClassifier creates a Classifier with the given thresholds.
func NewClassifier(config Config) *Classifier {
	if config.Mode == "" {
		config.Mode = ModeGeometric
	}
	return &Classifier{config: config}
}

// Config returns the active thresholds.
func (c *Classifier) Config() Config {
	return c.config
}

// Classify returns true if the hands in the current frame look like they
// are holding something.
func (c *Classifier) Classify(hands []detector.HandLandmarks) bool {
	holding, _ := c.Explain(hands)
	return holding
}

// Explain classifies the frame and reports which rule decided it.
//
// Zero hands is never holding. In relaxed mode any hand is holding. In
// geometric mode one hand uses the single-hand grip rule and two or more
// hands use the two-hand rule on the first two detections.
func (c *Classifier) Explain(hands []detector.HandLandmarks) (bool, Reason) {
	switch {
	case len(hands) == 0:
		return false, ReasonNoHands
	case c.config.Mode == ModeRelaxed:
		return true, ReasonAnyHand
	case len(hands) == 1:
		if SingleHandHolding(&hands[0], c.config) {
			return true, ReasonOneHandGrip
		}
		return false, ReasonOneHandOpen
	default:
		return twoHand(&hands[0], &hands[1], c.config)
	}
}

// TwoHandHolding reports whether two hands are close together near the
// center of the frame, as if gripping one object between them.
func TwoHandHolding(a, b *detector.HandLandmarks, config Config) bool {
	holding, _ := twoHand(a, b, config)
	return holding
}

func twoHand(a, b *detector.HandLandmarks, config Config) (bool, Reason) {
	ca := a.Centroid()
	cb := b.Centroid()

	if detector.Distance(ca, cb) >= config.TwoHandMaxDistance {
		return false, ReasonHandsApart
	}
	if !config.Region.Contains(detector.Midpoint(ca, cb)) {
		return false, ReasonOffCenter
	}
	return true, ReasonTwoHandGrip
}

// SingleHandHolding reports whether one hand is curled around something:
// index and middle tips at or below their knuckles (minus slack), thumb close
// to the index tip, and the wrist inside the center region.
func SingleHandHolding(h *detector.HandLandmarks, config Config) bool {
	p := h.Points

	indexCurled := p[detector.IndexTip].Y >= p[detector.IndexMCP].Y-config.CurlSlack
	middleCurled := p[detector.MiddleTip].Y >= p[detector.MiddleMCP].Y-config.CurlSlack
	if !indexCurled || !middleCurled {
		return false
	}

	if detector.Distance(p[detector.ThumbTip], p[detector.IndexTip]) >= config.ThumbIndexMaxDistance {
		return false
	}

	return config.Region.Contains(p[detector.Wrist])
}
