// Package backbone integrates arc sequences into backbone poses under the constant-curvature model.
//
// Each arc is a rotation about the local z (tube) axis by the arc's relative rotation, followed by
// a circular bend in the rotated x-z plane. A straight arc is a translation along z.
package backbone

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/ctr/kinematics"
	"go.viam.com/ctr/spatialmath"
	"go.viam.com/ctr/utils"
)

// Integrator is the reference kinematics.ChainIntegrator.
type Integrator struct {
	// SamplesPerArc is the number of intermediate poses emitted inside every arc, in addition to
	// the pose at the arc's end.
	SamplesPerArc int
}

// NewIntegrator returns an integrator emitting samples intermediate poses per arc.
func NewIntegrator(samples int) *Integrator {
	if samples < 0 {
		samples = 0
	}
	return &Integrator{SamplesPerArc: samples}
}

// ArcTransform returns the transform from an arc's start frame to the frame a distance s along it.
func ArcTransform(curvature, rotation, s float64) *spatialmath.DualQuaternion {
	turn := spatialmath.NewPoseFromAxisAngle(&spatialmath.R4AA{Theta: rotation, RZ: 1})
	return spatialmath.Compose(turn, bend(curvature, s))
}

func bend(k, s float64) *spatialmath.DualQuaternion {
	if k == 0 {
		return spatialmath.NewPoseFromPoint(r3.Vector{Z: s})
	}
	theta := k * s
	pt := r3.Vector{X: (1 - math.Cos(theta)) / k, Z: math.Sin(theta) / k}
	return spatialmath.NewPose(pt, (&spatialmath.R4AA{Theta: theta, RY: 1}).ToQuat())
}

// Integrate implements kinematics.ChainIntegrator. The returned chain holds SamplesPerArc+1 poses
// per arc, expressed in the base frame.
func (in *Integrator) Integrate(arcs []kinematics.Arc) ([]*spatialmath.DualQuaternion, error) {
	steps := in.SamplesPerArc + 1
	chain := make([]*spatialmath.DualQuaternion, 0, len(arcs)*steps)
	current := spatialmath.NewZeroPose()
	for i, arc := range arcs {
		if !utils.IsFinite(arc.Curvature) || !utils.IsFinite(arc.Rotation) || !utils.IsFinite(arc.Length) {
			return nil, errors.Errorf("arc %d is not finite: %+v", i, arc)
		}
		if arc.Length < 0 {
			return nil, errors.Errorf("arc %d has negative length %v", i, arc.Length)
		}
		for m := 1; m < steps; m++ {
			s := arc.Length * float64(m) / float64(steps)
			chain = append(chain, spatialmath.Compose(current, ArcTransform(arc.Curvature, arc.Rotation, s)))
		}
		current = spatialmath.Compose(current, ArcTransform(arc.Curvature, arc.Rotation, arc.Length))
		chain = append(chain, current)
	}
	return chain, nil
}

// Tip returns the position of the last pose of chain, or the origin for an empty chain.
func Tip(chain []*spatialmath.DualQuaternion) r3.Vector {
	if len(chain) == 0 {
		return r3.Vector{}
	}
	return chain[len(chain)-1].Point()
}
