package display

import (
	"math"
	"testing"
)

func apply(m affine, x, y float64) (float64, float64) {
	return m.a*x + m.b*y + m.tx, m.c*x + m.d*y + m.ty
}

// TestTransformOrder verifies translate-then-scale composes the way the blit
// contract expects: the scale applies to user space, the translate to the
// result.
func TestTransformOrder(t *testing.T) {
	c := newEbitenCanvas(nil)
	c.Translate(10, 20)
	c.Scale(2, 2)

	x, y := apply(c.cur, 1, 1)
	if x != 12 || y != 22 {
		t.Errorf("point (1,1) -> (%v,%v), want (12,22)", x, y)
	}
	// The origin lands exactly on the translation offset.
	x, y = apply(c.cur, 0, 0)
	if x != 10 || y != 20 {
		t.Errorf("origin -> (%v,%v), want (10,20)", x, y)
	}
}

// TestSaveRestore verifies Restore rewinds to the matching Save.
func TestSaveRestore(t *testing.T) {
	c := newEbitenCanvas(nil)
	c.Translate(5, 5)
	c.Save()
	c.Scale(3, 3)
	c.Restore()

	x, y := apply(c.cur, 1, 0)
	if x != 6 || y != 5 {
		t.Errorf("point (1,0) -> (%v,%v), want (6,5) after restore", x, y)
	}
}

func TestRestoreWithoutSaveIsNoop(t *testing.T) {
	c := newEbitenCanvas(nil)
	c.Scale(2, 2)
	c.Restore()
	if c.cur.a != 2 {
		t.Errorf("Restore without Save altered the transform: %+v", c.cur)
	}
}

func TestScaleAccumulates(t *testing.T) {
	c := newEbitenCanvas(nil)
	c.Scale(2, 2)
	c.Scale(0.5, 0.5)
	x, y := apply(c.cur, 7, 9)
	if math.Abs(x-7) > 1e-12 || math.Abs(y-9) > 1e-12 {
		t.Errorf("double scale not inverse: (%v,%v)", x, y)
	}
}
