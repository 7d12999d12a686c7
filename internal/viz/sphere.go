package viz

import (
	"math"

	"github.com/san-kum/blochsim/internal/physics"
)

const (
	SphereRings     = 10
	SphereMeridians = 10
	SphereSegments  = 32
)

type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Length() float64      { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// World coordinates put w on the vertical axis and v toward the viewer.
func FromBloch(r physics.Vector) Vec3 {
	return Vec3{X: r.U, Y: r.W, Z: r.V}
}

// Camera looks at the origin from Distance along +Z after rotating the
// scene by Yaw about the vertical axis and Pitch about the horizontal one.
type Camera struct {
	Yaw, Pitch float64
	Distance   float64
	Zoom       float64
}

func NewCamera() *Camera {
	return &Camera{Yaw: -0.6, Pitch: 0.35, Distance: 6, Zoom: 1}
}

func (c *Camera) Rotate(dYaw, dPitch float64) {
	c.Yaw += dYaw
	c.Pitch = math.Max(-math.Pi/2, math.Min(math.Pi/2, c.Pitch+dPitch))
}

func (c *Camera) ZoomIn()  { c.Zoom = math.Min(4, c.Zoom*1.2) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(0.25, c.Zoom/1.2) }

func (c *Camera) rotate(p Vec3) Vec3 {
	cy, sy := math.Cos(c.Yaw), math.Sin(c.Yaw)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cp, sp := math.Cos(c.Pitch), math.Sin(c.Pitch)
	p.Y, p.Z = p.Y*cp-p.Z*sp, p.Y*sp+p.Z*cp
	return p
}

// Project maps p to dot coordinates on a sw x sh surface. depth is positive
// toward the viewer.
func (c *Camera) Project(p Vec3, sw, sh int) (x, y int, depth float64) {
	r := c.rotate(p)
	scale := c.Distance / (c.Distance - r.Z)
	unit := math.Min(float64(sw), float64(sh)) * 0.4 * c.Zoom
	x = int(math.Round(r.X*scale*unit)) + sw/2
	y = int(math.Round(-r.Y*scale*unit)) + sh/2
	return x, y, r.Z
}

type Edge struct {
	Start, End Vec3
}

type Wireframe struct{ Edges []Edge }

func (w *Wireframe) AddEdge(s, e Vec3) { w.Edges = append(w.Edges, Edge{s, e}) }

// SphereWireframe builds a unit sphere from latitude rings and pole-to-pole
// meridians, each split into segments edges.
func SphereWireframe(rings, meridians, segments int) *Wireframe {
	w := &Wireframe{Edges: make([]Edge, 0, (rings+meridians)*segments)}
	point := func(theta, phi float64) Vec3 {
		return Vec3{
			X: math.Sin(theta) * math.Cos(phi),
			Y: math.Cos(theta),
			Z: math.Sin(theta) * math.Sin(phi),
		}
	}

	for i := 1; i <= rings; i++ {
		theta := math.Pi * float64(i) / float64(rings+1)
		for s := 0; s < segments; s++ {
			phi0 := 2 * math.Pi * float64(s) / float64(segments)
			phi1 := 2 * math.Pi * float64(s+1) / float64(segments)
			w.AddEdge(point(theta, phi0), point(theta, phi1))
		}
	}
	for j := 0; j < meridians; j++ {
		phi := 2 * math.Pi * float64(j) / float64(meridians)
		for s := 0; s < segments; s++ {
			theta0 := math.Pi * float64(s) / float64(segments)
			theta1 := math.Pi * float64(s+1) / float64(segments)
			w.AddEdge(point(theta0, phi), point(theta1, phi))
		}
	}
	return w
}

// Scene is the static sphere plus axes; the Bloch vector is drawn on top
// each frame.
type Scene struct {
	Sphere *Wireframe
	Axes   *Wireframe
}

func NewScene() *Scene {
	axes := &Wireframe{}
	axes.AddEdge(Vec3{X: -1.2}, Vec3{X: 1.2})
	axes.AddEdge(Vec3{Y: -1.2}, Vec3{Y: 1.2})
	axes.AddEdge(Vec3{Z: -1.2}, Vec3{Z: 1.2})
	return &Scene{
		Sphere: SphereWireframe(SphereRings, SphereMeridians, SphereSegments),
		Axes:   axes,
	}
}

// Render draws the scene, the trail of past vector tips and the vector.
// Sphere edges on the far side are sparser. A non-finite or runaway
// vector is not drawn.
func (s *Scene) Render(c *Canvas, cam *Camera, r physics.Vector, trail []Vec3) {
	c.Clear()
	sw, sh := c.DotWidth(), c.DotHeight()

	for _, e := range s.Sphere.Edges {
		x0, y0, d0 := cam.Project(e.Start, sw, sh)
		x1, y1, d1 := cam.Project(e.End, sw, sh)
		if d0+d1 < 0 {
			c.DrawDashedLine(x0, y0, x1, y1, 3)
		} else {
			c.DrawDashedLine(x0, y0, x1, y1, 2)
		}
	}
	for _, e := range s.Axes.Edges {
		x0, y0, _ := cam.Project(e.Start, sw, sh)
		x1, y1, _ := cam.Project(e.End, sw, sh)
		c.DrawDashedLine(x0, y0, x1, y1, 4)
	}

	for _, p := range trail {
		x, y, _ := cam.Project(p, sw, sh)
		c.Set(x, y)
	}

	tip := FromBloch(r)
	if l := tip.Length(); math.IsNaN(l) || l > 2 {
		return
	}
	ox, oy, _ := cam.Project(Vec3{}, sw, sh)
	tx, ty, _ := cam.Project(tip, sw, sh)
	c.DrawLine(ox, oy, tx, ty)
	c.Blob(tx, ty, 1)
}
