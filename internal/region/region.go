// Package region holds the ordered set of named POI polygons and classifies
// map coordinates against it.
package region

import (
	"github.com/golang/geo/r2"

	"github.com/pable/go-poi-metrics/internal/model"
)

// MinVertices is the smallest boundary that can enclose any point.
const MinVertices = 3

// Region is a named POI polygon.
type Region struct {
	Name     string
	Label    string
	Boundary []r2.Point
	bounds   r2.Rect
}

// Vertices returns the boundary as model vertices.
func (r Region) Vertices() []model.Vertex {
	out := make([]model.Vertex, len(r.Boundary))
	for i, p := range r.Boundary {
		out[i] = model.Vertex{X: p.X, Y: p.Y}
	}
	return out
}

// Contains reports whether (x, y) lies inside the region.
func (r Region) Contains(x, y float64) bool {
	p := r2.Point{X: x, Y: y}
	if !r.bounds.ContainsPoint(p) {
		return false
	}
	return Contains(r.Boundary, p)
}

// Contains applies the even-odd rule: a horizontal ray from p crosses the
// boundary an odd number of times iff p is inside. Boundaries with fewer than
// MinVertices vertices contain nothing.
func Contains(boundary []r2.Point, p r2.Point) bool {
	if len(boundary) < MinVertices {
		return false
	}
	inside := false
	j := len(boundary) - 1
	for i := 0; i < len(boundary); i++ {
		a, b := boundary[i], boundary[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
		j = i
	}
	return inside
}

// Set is an ordered, immutable collection of regions. Order decides which
// region owns a point that lies inside several overlapping polygons.
type Set struct {
	regions []Region
	byName  map[string]int
}

// NewSet builds a Set from definitions in order. Definitions with fewer than
// MinVertices vertices, repeats of an already accepted name, and definitions
// named model.Unclassified are skipped and returned in dropped.
func NewSet(defs []model.RegionDef) (set *Set, dropped []string) {
	set = &Set{byName: make(map[string]int, len(defs))}
	for _, d := range defs {
		if len(d.Boundary) < MinVertices || d.Name == model.Unclassified {
			dropped = append(dropped, d.Name)
			continue
		}
		if _, dup := set.byName[d.Name]; dup {
			dropped = append(dropped, d.Name)
			continue
		}
		pts := make([]r2.Point, len(d.Boundary))
		for i, v := range d.Boundary {
			pts[i] = r2.Point{X: v.X, Y: v.Y}
		}
		set.byName[d.Name] = len(set.regions)
		set.regions = append(set.regions, Region{
			Name:     d.Name,
			Label:    d.Label,
			Boundary: pts,
			bounds:   r2.RectFromPoints(pts...),
		})
	}
	return set, dropped
}

// Classify returns the name of the first region in set order that contains
// (x, y), or model.Unclassified.
func (s *Set) Classify(x, y float64) string {
	for _, r := range s.regions {
		if r.Contains(x, y) {
			return r.Name
		}
	}
	return model.Unclassified
}

// Len returns the number of regions in the set.
func (s *Set) Len() int { return len(s.regions) }

// Regions returns the regions in set order.
func (s *Set) Regions() []Region {
	out := make([]Region, len(s.regions))
	copy(out, s.regions)
	return out
}

// Lookup returns the region with the given name.
func (s *Set) Lookup(name string) (Region, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Region{}, false
	}
	return s.regions[i], true
}

// Label returns the display label for a region name, or "" if unknown.
func (s *Set) Label(name string) string {
	r, _ := s.Lookup(name)
	return r.Label
}

// Centroid returns the area centroid of a polygon. Polygons with zero area
// fall back to the vertex mean.
func Centroid(boundary []r2.Point) r2.Point {
	if len(boundary) == 0 {
		return r2.Point{}
	}
	var area2, cx, cy float64
	for i := range boundary {
		a := boundary[i]
		b := boundary[(i+1)%len(boundary)]
		cross := a.Cross(b)
		area2 += cross
		cx += (a.X + b.X) * cross
		cy += (a.Y + b.Y) * cross
	}
	if area2 == 0 {
		var sum r2.Point
		for _, p := range boundary {
			sum = sum.Add(p)
		}
		n := float64(len(boundary))
		return r2.Point{X: sum.X / n, Y: sum.Y / n}
	}
	return r2.Point{X: cx / (3 * area2), Y: cy / (3 * area2)}
}
