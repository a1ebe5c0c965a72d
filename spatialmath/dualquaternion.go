// Package spatialmath defines the rigid transforms used to integrate a tube's backbone.
package spatialmath

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/dualquat"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/ctr/utils"
)

// DualQuaternion is a rigid transform: a unit rotation quaternion in Real and half the translation,
// post-multiplied by the rotation, in Dual.
type DualQuaternion struct {
	dualquat.Number
}

// NewZeroPose returns the identity transform.
// Since the real part of a dual quaternion should be a unit quaternion, not all zeroes, this should be
// used instead of &DualQuaternion{}.
func NewZeroPose() *DualQuaternion {
	return &DualQuaternion{dualquat.Number{
		Real: quat.Number{Real: 1},
		Dual: quat.Number{},
	}}
}

// NewPose returns the transform that rotates by rotation and then translates by point.
func NewPose(point r3.Vector, rotation quat.Number) *DualQuaternion {
	q := &DualQuaternion{dualquat.Number{Real: rotation}}
	q.SetTranslation(point)
	return q
}

// NewPoseFromPoint returns a pure translation.
func NewPoseFromPoint(point r3.Vector) *DualQuaternion {
	return NewPose(point, quat.Number{Real: 1})
}

// NewPoseFromAxisAngle returns a pure rotation.
func NewPoseFromAxisAngle(aa *R4AA) *DualQuaternion {
	return NewPose(r3.Vector{}, aa.ToQuat())
}

// SetTranslation correctly sets the translation quaternion against the rotation.
func (q *DualQuaternion) SetTranslation(pt r3.Vector) {
	q.Dual = quat.Mul(quat.Number{Imag: pt.X / 2, Jmag: pt.Y / 2, Kmag: pt.Z / 2}, q.Real)
}

// Point returns the translation of the transform.
func (q *DualQuaternion) Point() r3.Vector {
	t := quat.Scale(2, quat.Mul(q.Dual, quat.Conj(q.Real)))
	return r3.Vector{X: t.Imag, Y: t.Jmag, Z: t.Kmag}
}

// Orientation returns the rotation quaternion.
func (q *DualQuaternion) Orientation() quat.Number {
	return q.Real
}

// Rotate applies only the rotation of q to v.
func (q *DualQuaternion) Rotate(v r3.Vector) r3.Vector {
	rotated := quat.Mul(quat.Mul(q.Real, quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}), quat.Conj(q.Real))
	return r3.Vector{X: rotated.Imag, Y: rotated.Jmag, Z: rotated.Kmag}
}

// Transform maps a point expressed in q's frame into the parent frame.
func (q *DualQuaternion) Transform(v r3.Vector) r3.Vector {
	return q.Rotate(v).Add(q.Point())
}

// Axes returns the transformed X and Z unit axes.
func (q *DualQuaternion) Axes() (x, z r3.Vector) {
	return q.Rotate(r3.Vector{X: 1}), q.Rotate(r3.Vector{Z: 1})
}

// Compose returns a followed by b, with b expressed in a's frame.
func Compose(a, b *DualQuaternion) *DualQuaternion {
	result := &DualQuaternion{dualquat.Mul(a.Number, b.Number)}
	// keep the rotation unit length as long chains accumulate rounding
	if n := quat.Abs(result.Real); n != 1 && n != 0 {
		result.Real = quat.Scale(1/n, result.Real)
		result.Dual = quat.Scale(1/n, result.Dual)
	}
	return result
}

// Clone returns a DualQuaternion object identical to this one.
func (q *DualQuaternion) Clone() *DualQuaternion {
	// No need for deep copies here, dualquats are primitives all the way down
	return &DualQuaternion{q.Number}
}

// R3VectorAlmostEqual compares two r3.Vector objects and returns if the all elementwise differences are less than epsilon.
func R3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	return utils.Float64AlmostEqual(a.X, b.X, epsilon) &&
		utils.Float64AlmostEqual(a.Y, b.Y, epsilon) &&
		utils.Float64AlmostEqual(a.Z, b.Z, epsilon)
}

// PoseAlmostEqual reports whether two transforms move points to within epsilon of each other and
// rotate to within epsilon radians.
func PoseAlmostEqual(a, b *DualQuaternion, epsilon float64) bool {
	between := quat.Mul(b.Real, quat.Conj(a.Real))
	aa := QuatToR4AA(between)
	return R3VectorAlmostEqual(a.Point(), b.Point(), epsilon) &&
		utils.Float64AlmostEqual(utils.WrapAngle(aa.Theta), 0, epsilon)
}
