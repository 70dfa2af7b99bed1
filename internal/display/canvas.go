package display

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"

	"thermalview/internal/surface"
)

// affine is a 2D transform in row-major form: x' = a*x + b*y + tx.
type affine struct {
	a, b, c, d, tx, ty float64
}

var identity = affine{a: 1, d: 1}

// mul composes m with op so op applies first, matching the save/translate/
// scale/paint contract where later calls transform user space.
func (m affine) mul(op affine) affine {
	return affine{
		a:  m.a*op.a + m.b*op.c,
		b:  m.a*op.b + m.b*op.d,
		c:  m.c*op.a + m.d*op.c,
		d:  m.c*op.b + m.d*op.d,
		tx: m.a*op.tx + m.b*op.ty + m.tx,
		ty: m.c*op.tx + m.d*op.ty + m.ty,
	}
}

// ebitenCanvas adapts an ebiten target image to the surface.Canvas drawing
// contract. It belongs to a single Draw call and must not outlive it.
type ebitenCanvas struct {
	target *ebiten.Image

	cur   affine
	stack []affine

	src        *surface.ManagedSurface
	srcX, srcY float64
	haveSource bool
}

func newEbitenCanvas(target *ebiten.Image) *ebitenCanvas {
	return &ebitenCanvas{target: target, cur: identity}
}

func (c *ebitenCanvas) Save() {
	c.stack = append(c.stack, c.cur)
}

func (c *ebitenCanvas) Restore() {
	if n := len(c.stack); n > 0 {
		c.cur = c.stack[n-1]
		c.stack = c.stack[:n-1]
	}
}

func (c *ebitenCanvas) Translate(x, y float64) {
	c.cur = c.cur.mul(affine{a: 1, d: 1, tx: x, ty: y})
}

func (c *ebitenCanvas) Scale(sx, sy float64) {
	c.cur = c.cur.mul(affine{a: sx, d: sy})
}

func (c *ebitenCanvas) SetSource(s *surface.ManagedSurface, x, y float64) {
	c.src = s
	c.srcX, c.srcY = x, y
	c.haveSource = true
}

// Paint draws the current source through the accumulated transform. It
// reports a failure instead of drawing when the source handle is gone, so
// the caller can restore state and skip the frame.
func (c *ebitenCanvas) Paint() error {
	if !c.haveSource || c.src == nil {
		return nil
	}
	handle := c.src.Handle()
	if handle == nil {
		return errors.New("display: surface released before paint")
	}

	m := c.cur.mul(affine{a: 1, d: 1, tx: c.srcX, ty: c.srcY})
	op := &ebiten.DrawImageOptions{}
	op.GeoM.SetElement(0, 0, m.a)
	op.GeoM.SetElement(0, 1, m.b)
	op.GeoM.SetElement(0, 2, m.tx)
	op.GeoM.SetElement(1, 0, m.c)
	op.GeoM.SetElement(1, 1, m.d)
	op.GeoM.SetElement(1, 2, m.ty)
	op.Filter = ebiten.FilterLinear
	c.target.DrawImage(handle, op)
	return nil
}
