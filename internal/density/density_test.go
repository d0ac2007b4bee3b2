package density

import (
	"testing"

	"github.com/golang/geo/r2"
)

func TestBin(t *testing.T) {
	pts := []r2.Point{
		{X: -100, Y: -100},
		{X: -99, Y: -51},
		{X: 100, Y: 100}, // upper edge lands in the last cell
		{X: 0, Y: 0},
		{X: 101, Y: 0}, // outside
	}
	g := Bin(pts, 4, 100)
	if g.Total != 4 || g.Outside != 1 {
		t.Fatalf("total=%d outside=%d, want 4/1", g.Total, g.Outside)
	}
	if g.At(0, 0) != 2 {
		t.Errorf("cell (0,0): want 2, got %d", g.At(0, 0))
	}
	if g.At(3, 3) != 1 {
		t.Errorf("cell (3,3): want 1, got %d", g.At(3, 3))
	}
	if g.At(2, 2) != 1 {
		t.Errorf("cell (2,2): want 1, got %d", g.At(2, 2))
	}
	if g.At(-1, 0) != 0 || g.At(4, 0) != 0 {
		t.Error("out of range cells should read as zero")
	}
}

func TestBin_Defaults(t *testing.T) {
	g := Bin(nil, 0, 0)
	if g.Bins != DefaultBins || g.Extent != DefaultExtent {
		t.Errorf("defaults not applied: bins=%d extent=%v", g.Bins, g.Extent)
	}
}

func TestTop(t *testing.T) {
	pts := []r2.Point{{X: 10, Y: 10}, {X: 11, Y: 11}, {X: 12, Y: 12}, {X: -90, Y: -90}, {X: 90, Y: -90}}
	g := Bin(pts, 2, 100)
	top := g.Top(2)
	if len(top) != 2 {
		t.Fatalf("want 2 cells, got %d", len(top))
	}
	if top[0].Count != 3 || top[0].I != 1 || top[0].J != 1 {
		t.Errorf("densest cell: %+v", top[0])
	}
	// (0,0) precedes (1,0) on equal counts.
	if top[1].I != 0 || top[1].J != 0 {
		t.Errorf("second cell: want (0,0), got (%d,%d)", top[1].I, top[1].J)
	}
	b := top[0].Bounds
	if b.X.Lo != 0 || b.X.Hi != 100 || b.Y.Lo != 0 || b.Y.Hi != 100 {
		t.Errorf("bounds: %v", b)
	}
	if len(g.Top(-1)) != 3 {
		t.Error("negative n should return every non-empty cell")
	}
}
