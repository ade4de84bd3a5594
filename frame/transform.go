package frame

import (
	"math"

	"github.com/teranos/provgraph/internal/util"
	"github.com/teranos/provgraph/types"
)

// Vec3 is a point in some frame.
type Vec3 [3]float64

// Box is an axis-aligned bounding box.
type Box struct {
	Min Vec3 `json:"min"`
	Max Vec3 `json:"max"`
}

// Transform is a 4x4 homogeneous transform, row-major.
type Transform [4][4]float64

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// FromSpatialFrame returns the transform taking points of the child frame to
// its parent: p_parent = R*p_child + t with R = Rz(alpha)*Ry(beta)*Rx(gamma).
func FromSpatialFrame(f types.FrameTransform) Transform {
	sa, ca := math.Sincos(f.Rotation[0])
	sb, cb := math.Sincos(f.Rotation[1])
	sg, cg := math.Sincos(f.Rotation[2])
	t := f.Translation
	return Transform{
		{ca * cb, ca*sb*sg - sa*cg, ca*sb*cg + sa*sg, t[0]},
		{sa * cb, sa*sb*sg + ca*cg, sa*sb*cg - ca*sg, t[1]},
		{-sb, cb * sg, cb * cg, t[2]},
		{0, 0, 0, 1},
	}
}

// Mul returns m*o: o is applied first.
func (m Transform) Mul(o Transform) Transform {
	var out Transform
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m[i][k] * o[k][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

// Inverse inverts a rigid transform: the rotation is transposed and the
// translation becomes -R^T*t.
func (m Transform) Inverse() Transform {
	out := Identity()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[j][i]
		}
	}
	for i := 0; i < 3; i++ {
		var sum float64
		for k := 0; k < 3; k++ {
			sum += out[i][k] * m[k][3]
		}
		out[i][3] = -sum
	}
	return out
}

// ApplyPoint maps p through m.
func (m Transform) ApplyPoint(p Vec3) Vec3 {
	var out Vec3
	for i := 0; i < 3; i++ {
		out[i] = m[i][0]*p[0] + m[i][1]*p[1] + m[i][2]*p[2] + m[i][3]
	}
	return out
}

// ApplyBox maps the eight corners of b and returns their bounding box.
func (m Transform) ApplyBox(b Box) Box {
	out := Box{
		Min: Vec3{math.Inf(1), math.Inf(1), math.Inf(1)},
		Max: Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
	}
	for corner := 0; corner < 8; corner++ {
		var c Vec3
		for axis := 0; axis < 3; axis++ {
			if corner&(1<<axis) == 0 {
				c[axis] = b.Min[axis]
			} else {
				c[axis] = b.Max[axis]
			}
		}
		p := m.ApplyPoint(c)
		for axis := 0; axis < 3; axis++ {
			out.Min[axis] = math.Min(out.Min[axis], p[axis])
			out.Max[axis] = math.Max(out.Max[axis], p[axis])
		}
	}
	return out
}

// ApproxEqual compares two transforms element-wise.
func (m Transform) ApproxEqual(o Transform, tol float64) bool {
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if !util.ApproxEqual(m[i][j], o[i][j], tol) {
				return false
			}
		}
	}
	return true
}

// Clean snaps near-zero entries to zero.
func (m Transform) Clean(tol float64) Transform {
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			m[i][j] = util.CleanZero(m[i][j], tol)
		}
	}
	return m
}

// ApproxEqual compares two boxes corner-wise.
func (b Box) ApproxEqual(o Box, tol float64) bool {
	for axis := 0; axis < 3; axis++ {
		if !util.ApproxEqual(b.Min[axis], o.Min[axis], tol) || !util.ApproxEqual(b.Max[axis], o.Max[axis], tol) {
			return false
		}
	}
	return true
}
