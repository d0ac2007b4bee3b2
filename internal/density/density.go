// Package density bins event coordinates into a square grid over the map.
package density

import (
	"sort"

	"github.com/golang/geo/r2"
)

// Defaults match the map's playable range.
const (
	DefaultBins   = 250
	DefaultExtent = 70000.0
)

// Grid holds per-cell counts over [-Extent, Extent] on both axes.
// Cell (i, j) covers column i along x and row j along y.
type Grid struct {
	Bins    int
	Extent  float64
	Counts  []int // row-major: Counts[j*Bins+i]
	Total   int   // points binned
	Outside int   // points beyond the extent
}

// Cell is one non-empty grid cell.
type Cell struct {
	I, J   int
	Bounds r2.Rect
	Count  int
}

// Bin counts points into a bins x bins grid. Points on the upper edge go to
// the last cell; points beyond the extent are counted in Outside.
func Bin(points []r2.Point, bins int, extent float64) *Grid {
	if bins <= 0 {
		bins = DefaultBins
	}
	if extent <= 0 {
		extent = DefaultExtent
	}
	g := &Grid{Bins: bins, Extent: extent, Counts: make([]int, bins*bins)}
	area := r2.RectFromPoints(r2.Point{X: -extent, Y: -extent}, r2.Point{X: extent, Y: extent})
	size := 2 * extent / float64(bins)
	for _, p := range points {
		if !area.ContainsPoint(p) {
			g.Outside++
			continue
		}
		i := min(int((p.X+extent)/size), bins-1)
		j := min(int((p.Y+extent)/size), bins-1)
		g.Counts[j*bins+i]++
		g.Total++
	}
	return g
}

// At returns the count of cell (i, j).
func (g *Grid) At(i, j int) int {
	if i < 0 || j < 0 || i >= g.Bins || j >= g.Bins {
		return 0
	}
	return g.Counts[j*g.Bins+i]
}

// CellBounds returns the world-space rectangle covered by cell (i, j).
func (g *Grid) CellBounds(i, j int) r2.Rect {
	size := 2 * g.Extent / float64(g.Bins)
	lo := r2.Point{X: -g.Extent + float64(i)*size, Y: -g.Extent + float64(j)*size}
	return r2.RectFromPoints(lo, lo.Add(r2.Point{X: size, Y: size}))
}

// Top returns up to n non-empty cells, densest first. Equal counts are
// ordered by row, then column.
func (g *Grid) Top(n int) []Cell {
	var cells []Cell
	for idx, c := range g.Counts {
		if c == 0 {
			continue
		}
		i, j := idx%g.Bins, idx/g.Bins
		cells = append(cells, Cell{I: i, J: j, Bounds: g.CellBounds(i, j), Count: c})
	}
	sort.SliceStable(cells, func(a, b int) bool { return cells[a].Count > cells[b].Count })
	if n >= 0 && len(cells) > n {
		cells = cells[:n]
	}
	return cells
}
