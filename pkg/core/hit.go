package core

// NoMaterial marks a hit or primitive without a material
const NoMaterial = -1

// NoPrimitive marks a hit that was not resolved through a scene
const NoPrimitive = -1

// Hit records a ray-surface intersection. Intersection functions return it
// together with a bool; a Hit returned alongside false carries no data.
type Hit struct {
	T          float64 // Ray parameter at the intersection
	Point      Vec3    // World-space intersection point
	Normal     Vec3    // Unit normal, always facing against the incoming ray
	MaterialID int     // Index into the scene material table
	Primitive  int     // Index of the primitive in the scene
}

// SetFaceNormal orients the normal so that it opposes the ray direction
func (h *Hit) SetFaceNormal(ray Ray, outwardNormal Vec3) {
	if ray.Direction.Dot(outwardNormal) > 0 {
		h.Normal = outwardNormal.Negate()
		return
	}
	h.Normal = outwardNormal
}
