// Package camera provides the perspective camera that looks at the orb.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/nebula/config"
)

// MaxPixelRatio caps the device pixel ratio used for the framebuffer.
const MaxPixelRatio = 2

// Camera looks at the origin from a fixed distance and elevation. The orb
// itself is rotated by the model orientation, so the eye never moves.
type Camera struct {
	// Projection parameters
	FovY, Near, Far float32

	// Eye placement
	Distance  float32
	Elevation float32 // radians above the xz plane

	// Viewport in framebuffer pixels (logical size times pixel ratio)
	ViewportW, ViewportH float32
	PixelRatio           float32

	// Model orientation in radians
	Yaw, Pitch, Roll float32

	defaults config.CameraConfig
}

// New creates a camera for a logical viewport of w×h at the given pixel ratio.
func New(cfg config.CameraConfig, w, h int, pixelRatio float32) *Camera {
	c := &Camera{defaults: cfg}
	c.Reset()
	c.Resize(w, h, pixelRatio)
	return c
}

// Reset restores the configured projection and clears the orientation.
func (c *Camera) Reset() {
	c.FovY = c.defaults.FovY * math.Pi / 180
	c.Near = c.defaults.Near
	c.Far = c.defaults.Far
	c.Distance = c.defaults.Distance
	c.Elevation = c.defaults.Elevation * math.Pi / 180
	c.Yaw, c.Pitch, c.Roll = 0, 0, 0
}

// Resize updates the viewport. Only the projection aspect changes.
func (c *Camera) Resize(w, h int, pixelRatio float32) {
	if !(pixelRatio > 0) {
		pixelRatio = 1
	}
	if pixelRatio > MaxPixelRatio {
		pixelRatio = MaxPixelRatio
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	c.PixelRatio = pixelRatio
	c.ViewportW = float32(w) * pixelRatio
	c.ViewportH = float32(h) * pixelRatio
}

// Aspect returns the viewport aspect ratio.
func (c *Camera) Aspect() float32 {
	return c.ViewportW / c.ViewportH
}

// SetOrientation sets the model rotation.
func (c *Camera) SetOrientation(yaw, pitch, roll float32) {
	c.Yaw, c.Pitch, c.Roll = yaw, pitch, roll
}

// Eye returns the eye position in world space.
func (c *Camera) Eye() mgl32.Vec3 {
	s, co := math.Sincos(float64(c.Elevation))
	return mgl32.Vec3{0, c.Distance * float32(s), c.Distance * float32(co)}
}

// Model returns the orb's rotation matrix.
func (c *Camera) Model() mgl32.Mat4 {
	return mgl32.HomogRotate3DY(c.Yaw).
		Mul4(mgl32.HomogRotate3DX(c.Pitch)).
		Mul4(mgl32.HomogRotate3DZ(c.Roll))
}

// View returns the world-to-eye matrix.
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye(), mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
}

// ModelView returns View·Model.
func (c *Camera) ModelView() mgl32.Mat4 {
	return c.View().Mul4(c.Model())
}

// Projection returns the perspective matrix for the current aspect.
func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(c.FovY, c.Aspect(), c.Near, c.Far)
}

// Project maps a model-space point to framebuffer pixels. It returns the
// view-space depth (positive in front of the eye) and whether the point is
// in front of the near plane.
func (c *Camera) Project(p mgl32.Vec3) (sx, sy, depth float32, ok bool) {
	return ProjectWith(c.ModelView(), c.Projection(), c.ViewportW, c.ViewportH, p)
}

// ProjectWith is Project with precomputed matrices, for hot loops.
func ProjectWith(modelView, proj mgl32.Mat4, w, h float32, p mgl32.Vec3) (sx, sy, depth float32, ok bool) {
	view := modelView.Mul4x1(p.Vec4(1))
	depth = -view[2]
	if depth <= 0 {
		return 0, 0, depth, false
	}
	clip := proj.Mul4x1(view)
	if clip[3] == 0 {
		return 0, 0, depth, false
	}
	ndcX := clip[0] / clip[3]
	ndcY := clip[1] / clip[3]
	sx = (ndcX*0.5 + 0.5) * w
	sy = (1 - (ndcY*0.5 + 0.5)) * h
	return sx, sy, depth, true
}
