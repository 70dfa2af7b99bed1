package display

import (
	"fmt"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog"

	"thermalview/internal/camera"
	"thermalview/internal/frame"
	"thermalview/internal/pacer"
	"thermalview/internal/processing"
	"thermalview/internal/storage"
	"thermalview/internal/surface"
)

// Options wires the viewer's collaborators. Pacer, Bridge, Source and
// Palette are required; Storage and Stream are optional.
type Options struct {
	Pacer   *pacer.Pacer
	Bridge  *surface.Bridge
	Source  camera.Source
	Palette *processing.Palette
	Storage *storage.Handler
	Stream  Publisher
	Log     zerolog.Logger

	Overlay bool
	MinTemp float64
	MaxTemp float64
}

// Viewer is the ebiten game driving the live thermal view. The capture
// goroutine and the render loop share only the pacer, which carries its own
// lock; everything else is confined to one side.
type Viewer struct {
	opts Options

	// palette is swapped at runtime from the render side and read from the
	// capture side.
	paletteMu sync.Mutex
	palette   *processing.Palette

	// Render-side only: the surface cached for the currently shown frame.
	cur     *surface.ManagedSurface
	curSeq  uint64
	haveCur bool

	done     chan struct{}
	captured sync.WaitGroup
}

// NewViewer creates the viewer around its collaborators.
func NewViewer(opts Options) *Viewer {
	return &Viewer{
		opts:    opts,
		palette: opts.Palette,
		done:    make(chan struct{}),
	}
}

// Run starts the capture goroutine and the window loop. It must be called
// from the main goroutine and blocks until the window closes.
func (v *Viewer) Run() error {
	v.captured.Add(1)
	go v.captureLoop()

	ebiten.SetWindowSize(800, 600)
	ebiten.SetWindowTitle("P2 Pro Thermal")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	err := ebiten.RunGame(v)

	close(v.done)
	v.opts.Source.Close()
	v.captured.Wait()
	if v.cur != nil {
		v.cur.Release()
	}
	return err
}

// captureLoop reads the source at its own pace and runs every frame through
// the pacer. Grayscale sensor output is palette-expanded before admission so
// accepted frames are always drawable.
func (v *Viewer) captureLoop() {
	defer v.captured.Done()
	for {
		select {
		case <-v.done:
			return
		default:
		}

		ok, f := v.opts.Source.Read()
		if !ok {
			// Source has nothing right now; back off instead of spinning.
			time.Sleep(50 * time.Millisecond)
			continue
		}
		if err := f.Validate(); err != nil {
			v.opts.Log.Warn().Err(err).Msg("malformed frame from source, skipped")
			continue
		}
		if f.Format == frame.Gray8 {
			colored, err := v.currentPalette().Apply(f)
			if err != nil {
				v.opts.Log.Warn().Err(err).Msg("palette expansion failed, frame skipped")
				continue
			}
			f = colored
		}

		accepted, _ := v.opts.Pacer.Accept(f)
		if accepted != nil && v.opts.Stream != nil {
			v.opts.Stream.Publish(accepted)
		}
	}
}

// --- ebiten.Game interface ---

func (v *Viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyS) || inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		v.snapshot()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		v.cyclePalette()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		v.opts.Pacer.Clear()
	}
	return nil
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	latest := v.opts.Pacer.Latest()
	if latest != nil && (!v.haveCur || latest.Seq != v.curSeq) {
		s, err := v.opts.Bridge.Wrap(latest)
		if err != nil {
			v.opts.Log.Warn().Err(err).Msg("frame rejected by bridge")
		} else {
			if v.cur != nil {
				v.cur.Release()
			}
			v.cur = s
			v.curSeq = latest.Seq
			v.haveCur = true
		}
	}
	if v.cur == nil {
		return
	}

	bounds := screen.Bounds()
	canvas := newEbitenCanvas(screen)
	v.opts.Bridge.Blit(canvas, v.cur, float64(bounds.Dx()), float64(bounds.Dy()))

	if v.opts.Overlay {
		v.drawOverlay(screen)
	}
}

func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// --- helpers ---

func (v *Viewer) drawOverlay(screen *ebiten.Image) {
	m := v.opts.Pacer.Metrics()
	text := fmt.Sprintf("%s | %.1f fps | %.1f ms | dropped %d | buffer %d%%",
		v.currentPalette().Name(), m.FPS, m.FrameTime*1000, m.DroppedFrames,
		int(m.BufferUsage*100))
	if v.opts.MaxTemp > v.opts.MinTemp {
		text += fmt.Sprintf(" | %.0f-%.0f C", v.opts.MinTemp, v.opts.MaxTemp)
	}
	ebitenutil.DebugPrintAt(screen, text, 8, 8)
}

// snapshot persists the newest accepted frame off the render thread.
func (v *Viewer) snapshot() {
	if v.opts.Storage == nil {
		return
	}
	latest := v.opts.Pacer.Latest()
	if latest == nil {
		return
	}
	go func() {
		if _, err := v.opts.Storage.SaveCapture(latest); err != nil {
			v.opts.Log.Error().Err(err).Msg("capture failed")
		}
	}()
}

func (v *Viewer) cyclePalette() {
	names := processing.Names()
	current := v.currentPalette().Name()
	for i, name := range names {
		if name == current {
			next, err := processing.Lookup(names[(i+1)%len(names)])
			if err != nil {
				return
			}
			v.paletteMu.Lock()
			v.palette = next
			v.paletteMu.Unlock()
			v.opts.Log.Info().Str("palette", next.Name()).Msg("palette switched")
			return
		}
	}
}

func (v *Viewer) currentPalette() *processing.Palette {
	v.paletteMu.Lock()
	defer v.paletteMu.Unlock()
	return v.palette
}
