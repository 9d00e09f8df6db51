package spatial

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Point represents a 2D position in the local planar projection (meters).
type Point struct {
	X float64
	Y float64
}

// Centroid calculates the centroid of a set of points.
func Centroid(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}

	var sumX, sumY float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
	}

	return Point{
		X: sumX / float64(len(points)),
		Y: sumY / float64(len(points)),
	}
}

// BoundingBox calculates the bounding box of a set of points.
// Returns (minX, minY, maxX, maxY).
func BoundingBox(points []Point) (float64, float64, float64, float64) {
	if len(points) == 0 {
		return 0, 0, 0, 0
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y

	for _, p := range points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	return minX, minY, maxX, maxY
}

// Polygon is a simple closed ring of vertices in counter-clockwise order.
// The closing vertex is implicit (last connects back to first).
type Polygon []Point

// Area returns the polygon area via the shoelace formula.
func (pg Polygon) Area() float64 {
	if len(pg) < 3 {
		return 0
	}

	var sum float64
	for i, p := range pg {
		q := pg[(i+1)%len(pg)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(sum) / 2
}

// Contains reports whether the point lies inside the polygon (ray casting;
// boundary points may go either way).
func (pg Polygon) Contains(pt Point) bool {
	inside := false
	n := len(pg)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := pg[i], pg[j]
		if (a.Y > pt.Y) != (b.Y > pt.Y) &&
			pt.X < (b.X-a.X)*(pt.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// WKT renders the polygon as a well-known-text ring.
func (pg Polygon) WKT() string {
	var b strings.Builder
	b.WriteString("POLYGON ((")
	writeRing(&b, pg)
	b.WriteString("))")
	return b.String()
}

// MultiPolygon is a collection of disjoint polygons forming one geometry.
type MultiPolygon []Polygon

// Area returns the summed area of the member polygons.
func (mp MultiPolygon) Area() float64 {
	var total float64
	for _, pg := range mp {
		total += pg.Area()
	}
	return total
}

// Contains reports whether any member polygon contains the point.
func (mp MultiPolygon) Contains(pt Point) bool {
	for _, pg := range mp {
		if pg.Contains(pt) {
			return true
		}
	}
	return false
}

// WKT renders the geometry as well-known text.
func (mp MultiPolygon) WKT() string {
	if len(mp) == 0 {
		return "MULTIPOLYGON EMPTY"
	}

	var b strings.Builder
	b.WriteString("MULTIPOLYGON (")
	for i, pg := range mp {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("((")
		writeRing(&b, pg)
		b.WriteString("))")
	}
	b.WriteString(")")
	return b.String()
}

func writeRing(b *strings.Builder, pg Polygon) {
	for _, p := range pg {
		fmt.Fprintf(b, "%g %g, ", p.X, p.Y)
	}
	// Close the ring.
	if len(pg) > 0 {
		fmt.Fprintf(b, "%g %g", pg[0].X, pg[0].Y)
	}
}

// circleSegments controls how finely buffer disks are discretized.
const circleSegments = 32

// BufferUnion dissolves disk buffers of the given radius around each point
// into one geometry. Disks that overlap (centers at most 2*radius apart)
// are merged into a single outline, approximated by the convex hull of
// their discretized circles; non-overlapping groups stay separate polygons.
func BufferUnion(points []Point, radius float64) MultiPolygon {
	if len(points) == 0 || radius <= 0 {
		return nil
	}

	groups := overlapGroups(points, 2*radius)

	mp := make(MultiPolygon, 0, len(groups))
	for _, group := range groups {
		var verts []Point
		for _, c := range group {
			verts = append(verts, circleVertices(c, radius)...)
		}
		mp = append(mp, convexHull(verts))
	}

	// Order polygons by their lower-left corner so the geometry is stable
	// regardless of input order.
	sort.Slice(mp, func(i, j int) bool {
		xi, yi, _, _ := BoundingBox(mp[i])
		xj, yj, _, _ := BoundingBox(mp[j])
		if xi != xj {
			return xi < xj
		}
		return yi < yj
	})
	return mp
}

// overlapGroups partitions points into connected components under the
// distance threshold.
func overlapGroups(points []Point, threshold float64) [][]Point {
	parent := make([]int, len(points))
	for i := range parent {
		parent[i] = i
	}

	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}

	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			if Distance(points[i].X, points[i].Y, points[j].X, points[j].Y) <= threshold {
				ri, rj := find(i), find(j)
				if ri != rj {
					parent[rj] = ri
				}
			}
		}
	}

	grouped := make(map[int][]Point)
	var order []int
	for i, p := range points {
		root := find(i)
		if _, seen := grouped[root]; !seen {
			order = append(order, root)
		}
		grouped[root] = append(grouped[root], p)
	}

	out := make([][]Point, 0, len(order))
	for _, root := range order {
		out = append(out, grouped[root])
	}
	return out
}

func circleVertices(center Point, radius float64) []Point {
	verts := make([]Point, circleSegments)
	for i := range verts {
		theta := 2 * math.Pi * float64(i) / circleSegments
		verts[i] = Point{
			X: center.X + radius*math.Cos(theta),
			Y: center.Y + radius*math.Sin(theta),
		}
	}
	return verts
}

// convexHull computes the convex hull (Andrew monotone chain), returning
// vertices in counter-clockwise order.
func convexHull(points []Point) Polygon {
	if len(points) < 3 {
		return Polygon(points)
	}

	pts := make([]Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	cross := func(o, a, b Point) float64 {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	var lower []Point
	for _, p := range pts {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	var upper []Point
	for i := len(pts) - 1; i >= 0; i-- {
		p := pts[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	return Polygon(append(lower[:len(lower)-1], upper[:len(upper)-1]...))
}
