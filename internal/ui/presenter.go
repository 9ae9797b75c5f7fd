package ui

import (
	"log/slog"

	"gocv.io/x/gocv"
	"golang.org/x/time/rate"

	"github.com/ayusman/performative/internal/holding"
)

// Face Cam window position.
const (
	FaceCamX = 100
	FaceCamY = 100
)

// Options sizes the windows.
type Options struct {
	StatusWidth   int
	StatusHeight  int
	FaceCamWidth  int
	FaceCamHeight int
	// RaiseEvery throttles Face Cam raise hints to one per this many frames.
	RaiseEvery int
	QuitKey    string
	Hint       Hint
}

// Presenter owns the OpenCV windows. It must be used from the goroutine
// that created it.
type Presenter struct {
	opts    Options
	hint    Hint
	windows map[string]*gocv.Window
	raise   rate.Sometimes
}

// NewPresenter opens the Status window.
func NewPresenter(opts Options) *Presenter {
	if opts.StatusWidth <= 0 || opts.StatusHeight <= 0 {
		opts.StatusWidth, opts.StatusHeight = 1200, 800
	}
	if opts.FaceCamWidth <= 0 || opts.FaceCamHeight <= 0 {
		opts.FaceCamWidth, opts.FaceCamHeight = 400, 300
	}
	if opts.RaiseEvery <= 0 {
		opts.RaiseEvery = 10
	}
	if opts.QuitKey == "" {
		opts.QuitKey = "q"
	}
	hint := opts.Hint
	if hint == nil {
		hint = NoopHint{}
	}

	p := &Presenter{
		opts:    opts,
		hint:    hint,
		windows: make(map[string]*gocv.Window),
		raise:   rate.Sometimes{Every: opts.RaiseEvery},
	}
	w := p.open(StatusWindow)
	w.ResizeWindow(opts.StatusWidth, opts.StatusHeight)
	return p
}

// QuitKey returns the key that ends the run.
func (p *Presenter) QuitKey() string {
	return p.opts.QuitKey
}

// Hint returns the desktop hint in use.
func (p *Presenter) Hint() Hint {
	return p.hint
}

func (p *Presenter) open(name string) *gocv.Window {
	if w, ok := p.windows[name]; ok {
		return w
	}
	w := gocv.NewWindow(name)
	p.windows[name] = w
	return w
}

func (p *Presenter) close(name string) {
	if w, ok := p.windows[name]; ok {
		w.Close()
		delete(p.windows, name)
	}
}

// Render shows one frame: the status panel, then either the full camera
// feed or the face cam. frame should already carry the hand overlay. It
// reports whether the quit key was pressed.
func (p *Presenter) Render(frame gocv.Mat, isHolding bool, display holding.Display) bool {
	status := StatusPanel(isHolding, p.opts.StatusWidth, p.opts.StatusHeight)
	p.windows[StatusWindow].IMShow(status)
	status.Close()

	if display == holding.PictureInPicture {
		p.showFaceCam(frame)
		p.close(CameraWindow)
	} else {
		p.open(CameraWindow).IMShow(frame)
		p.close(FaceCamWindow)
	}

	key := p.windows[StatusWindow].WaitKey(1)
	return key >= 0 && byte(key&0xFF) == p.opts.QuitKey[0]
}

func (p *Presenter) showFaceCam(frame gocv.Mat) {
	_, existed := p.windows[FaceCamWindow]
	w := p.open(FaceCamWindow)
	if !existed {
		w.ResizeWindow(p.opts.FaceCamWidth, p.opts.FaceCamHeight)
		slog.Info("ui: face cam shown")
	}

	face := FaceCam(frame, p.opts.FaceCamWidth, p.opts.FaceCamHeight)
	w.IMShow(face)
	face.Close()
	w.MoveWindow(FaceCamX, FaceCamY)

	p.raise.Do(func() {
		if err := p.hint.Raise(FaceCamWindow); err != nil {
			slog.Debug("ui: raise hint failed", "err", err)
		}
	})
}

// Close destroys every window.
func (p *Presenter) Close() {
	for name := range p.windows {
		p.close(name)
	}
}
