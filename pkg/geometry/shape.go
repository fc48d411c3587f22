package geometry

import "github.com/df07/go-ppm-raytracer/pkg/core"

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	Point     core.Vec3 // Point of intersection
	Normal    core.Vec3 // Unit normal, always facing against the incoming ray
	T         float64   // Parameter t along the ray
	FrontFace bool      // Whether the ray hit the outward-facing side
}

// NewHitRecord builds a hit record, orienting the outward normal against the ray
func NewHitRecord(ray core.Ray, point, outwardNormal core.Vec3, t float64) *HitRecord {
	h := &HitRecord{Point: point, T: t}
	h.SetFaceNormal(ray, outwardNormal)
	return h
}

// SetFaceNormal sets the normal vector and determines front/back face
func (h *HitRecord) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction().Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}

// Shape is anything a ray can be intersected with.
//
// Hit returns the closest intersection with tMin <= t < tMax, or nil when
// there is none. An error is only returned for degenerate geometry.
type Shape interface {
	Hit(ray core.Ray, tMin, tMax float64) (*HitRecord, error)
}
