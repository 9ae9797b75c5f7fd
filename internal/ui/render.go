// Package ui renders the status panel and camera views and manages the
// OpenCV windows that show them.
package ui

import (
	"image"
	"image/color"
	"strings"

	"gocv.io/x/gocv"

	"github.com/ayusman/performative/internal/detector"
)

// Window names.
const (
	StatusWindow  = "Status"
	CameraWindow  = "Camera Feed"
	FaceCamWindow = "Face Cam"
)

// Panel text.
const (
	HoldingText    = "PERFORMATIVE"
	NotHoldingText = "NOT\nPERFORMATIVE"
	FaceCamLabel   = "performative"
)

var (
	matchaText      = color.RGBA{R: 100, G: 200, B: 100, A: 255}
	matchaBackdrop  = color.RGBA{R: 30, G: 50, B: 40, A: 255}
	redText         = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	redBackdrop     = color.RGBA{R: 40, G: 20, B: 20, A: 255}
	outline         = color.RGBA{A: 255}
	footerText      = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	skeletonLine    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	landmarkDot     = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	statusFont      = gocv.FontHersheySimplex
	statusScale     = 5.0
	statusThickness = 12
	lineSpacing     = 30
)

// fill returns a rows x cols BGR image of c.
func fill(rows, cols int, c color.RGBA) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(
		gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), 0),
		rows, cols, gocv.MatTypeCV8UC3,
	)
}

// StatusPanel renders the full status window. The caller closes the Mat.
func StatusPanel(holding bool, width, height int) gocv.Mat {
	text, fg, bg := NotHoldingText, redText, redBackdrop
	if holding {
		text, fg, bg = HoldingText, matchaText, matchaBackdrop
	}

	canvas := fill(height, width, bg)
	drawCentered(&canvas, strings.Split(text, "\n"), fg)
	return canvas
}

// drawCentered writes lines centered as a block, each with a black outline.
func drawCentered(canvas *gocv.Mat, lines []string, c color.RGBA) {
	sizes := make([]image.Point, len(lines))
	total := 0
	for i, line := range lines {
		sizes[i] = gocv.GetTextSize(line, statusFont, statusScale, statusThickness)
		total += sizes[i].Y
	}
	total += (len(lines) - 1) * lineSpacing

	y := (canvas.Rows()-total)/2 + sizes[0].Y
	for i, line := range lines {
		org := image.Pt((canvas.Cols()-sizes[i].X)/2, y)
		gocv.PutText(canvas, line, org, statusFont, statusScale, outline, statusThickness+8)
		gocv.PutText(canvas, line, org, statusFont, statusScale, c, statusThickness)
		if i < len(lines)-1 {
			y += sizes[i].Y + lineSpacing
		}
	}
}

// FaceCam renders the small labelled picture-in-picture view of frame.
// The caller closes the Mat.
func FaceCam(frame gocv.Mat, width, height int) gocv.Mat {
	small := gocv.NewMat()
	gocv.Resize(frame, &small, image.Pt(width, height), 0, 0, gocv.InterpolationLinear)

	// Blend a banner across the top.
	overlay := small.Clone()
	defer overlay.Close()
	gocv.Rectangle(&overlay, image.Rect(0, 0, width, 60), matchaBackdrop, -1)
	gocv.AddWeighted(overlay, 0.7, small, 0.3, 0, &small)

	const scale, thickness = 1.2, 3
	size := gocv.GetTextSize(FaceCamLabel, statusFont, scale, thickness)
	org := image.Pt((width-size.X)/2, 40)
	gocv.PutText(&small, FaceCamLabel, org, statusFont, scale, outline, thickness+2)
	gocv.PutText(&small, FaceCamLabel, org, statusFont, scale, matchaText, thickness)

	return small
}

// DrawHands draws each hand's landmark skeleton onto frame.
func DrawHands(frame *gocv.Mat, hands []detector.HandLandmarks) {
	w, h := float64(frame.Cols()), float64(frame.Rows())
	px := func(p detector.Point) image.Point {
		return image.Pt(int(p.X*w), int(p.Y*h))
	}

	for i := range hands {
		pts := &hands[i].Points
		for _, c := range detector.Connections {
			gocv.Line(frame, px(pts[c[0]]), px(pts[c[1]]), skeletonLine, 2)
		}
		for _, p := range pts {
			gocv.Circle(frame, px(p), 4, landmarkDot, -1)
		}
	}
}

// DrawFooter writes the quit instruction along the bottom of frame.
func DrawFooter(frame *gocv.Mat, quitKey string) {
	text := "Press '" + quitKey + "' to quit"
	gocv.PutText(frame, text, image.Pt(10, frame.Rows()-20), statusFont, 0.6, footerText, 1)
}
