package geom

// AABB is an axis-aligned bounding box stored as min/max corners.
type AABB struct {
	Min Vec3 `json:"min"`
	Max Vec3 `json:"max"`
}

// NewAABB builds a box centered on pos from half extents.
func NewAABB(pos, half Vec3) AABB {
	return AABB{Min: pos.Sub(half), Max: pos.Add(half)}
}

func (b AABB) Center() Vec3 {
	return Vec3{
		X: (b.Min.X + b.Max.X) / 2,
		Y: (b.Min.Y + b.Max.Y) / 2,
		Z: (b.Min.Z + b.Max.Z) / 2,
	}
}

func (b AABB) HalfExtents() Vec3 {
	return Vec3{
		X: (b.Max.X - b.Min.X) / 2,
		Y: (b.Max.Y - b.Min.Y) / 2,
		Z: (b.Max.Z - b.Min.Z) / 2,
	}
}

// Inflated scales the box about its center.
func (b AABB) Inflated(factor float64) AABB {
	if factor <= 0 {
		factor = 1
	}
	center := b.Center()
	half := b.HalfExtents().Scale(factor)
	return AABB{Min: center.Sub(half), Max: center.Add(half)}
}

// Translated returns the box shifted by delta.
func (b AABB) Translated(delta Vec3) AABB {
	return AABB{Min: b.Min.Add(delta), Max: b.Max.Add(delta)}
}

// Overlaps reports whether two boxes intersect on every axis.
func (b AABB) Overlaps(o AABB) bool {
	return b.Min.X < o.Max.X && b.Max.X > o.Min.X &&
		b.Min.Y < o.Max.Y && b.Max.Y > o.Min.Y &&
		b.Min.Z < o.Max.Z && b.Max.Z > o.Min.Z
}

// OverlapsPadded checks intersection with extra padding on each side.
func (b AABB) OverlapsPadded(o AABB, padding float64) bool {
	return b.Min.X-padding < o.Max.X+padding && b.Max.X+padding > o.Min.X-padding &&
		b.Min.Y-padding < o.Max.Y+padding && b.Max.Y+padding > o.Min.Y-padding &&
		b.Min.Z-padding < o.Max.Z+padding && b.Max.Z+padding > o.Min.Z-padding
}

// PenetrationDepths returns per-axis overlap between two intersecting boxes.
// Values are zero or negative for separated axes.
func (b AABB) PenetrationDepths(o AABB) Vec3 {
	bc, oc := b.Center(), o.Center()
	bh, oh := b.HalfExtents(), o.HalfExtents()
	return Vec3{
		X: bh.X + oh.X - abs(bc.X-oc.X),
		Y: bh.Y + oh.Y - abs(bc.Y-oc.Y),
		Z: bh.Z + oh.Z - abs(bc.Z-oc.Z),
	}
}

// IntersectsRayDown reports whether a ray cast straight down from origin
// within maxDist hits the top surface, and at what height.
func (b AABB) IntersectsRayDown(origin Vec3, maxDist float64) (float64, bool) {
	if origin.X < b.Min.X || origin.X > b.Max.X || origin.Z < b.Min.Z || origin.Z > b.Max.Z {
		return 0, false
	}
	top := b.Max.Y
	if top > origin.Y {
		// Ray starts inside or below the box; the top surface is not
		// reachable travelling downward.
		return 0, false
	}
	if origin.Y-top > maxDist {
		return 0, false
	}
	return top, true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
