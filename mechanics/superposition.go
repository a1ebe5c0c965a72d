// Package mechanics implements the beam mechanics of a concentric-tube robot: elastic superposition
// of the tubes' pre-curvatures over each overlap segment, and the torsional equilibrium of tubes
// whose straight shafts twist under the coupling torque of their curved sections.
package mechanics

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/ctr/segmentation"
	"go.viam.com/ctr/tube"
)

// Curvature is the equivalent curvature of one overlap segment: the magnitude and bend-plane angle
// the shared centerline takes when every tube present in the segment is superposed.
type Curvature struct {
	Magnitude float64
	Angle     float64
	// Degenerate is set when no tube occupies the segment, so no stiffness resists bending. Such a
	// segment is a straight, zero-curvature gap.
	Degenerate bool
}

// Vector returns the curvature as a vector in the bend plane, (k cos(phi), k sin(phi), 0).
func (c Curvature) Vector() r3.Vector {
	return r3.Vector{X: c.Magnitude * math.Cos(c.Angle), Y: c.Magnitude * math.Sin(c.Angle)}
}

// Superpose combines the tubes of one segment into a single equivalent curvature. Curved tubes
// contribute bending stiffness and curvature; straight tubes contribute stiffness only:
//
//	k = sum_curved(EI * kappa * (cos theta, sin theta)) / sum_present(EI)
//
// thetas are the bend-plane rotations actually delivered to each tube.
func Superpose(tubes []*tube.Tube, thetas []float64, statuses []tube.Status) (Curvature, error) {
	if len(thetas) != len(tubes) || len(statuses) != len(tubes) {
		return Curvature{}, errors.Wrapf(tube.ErrInvalidConfiguration,
			"superposition needs one angle and status per tube: %d tubes, %d angles, %d statuses",
			len(tubes), len(thetas), len(statuses))
	}

	var moment r3.Vector
	var stiffness float64
	for i, t := range tubes {
		switch statuses[i] {
		case tube.Curved:
			m := t.BendingStiffness()
			stiffness += m
			dir := r3.Vector{X: math.Cos(thetas[i]), Y: math.Sin(thetas[i])}
			moment = moment.Add(dir.Mul(m * t.Precurvature()))
		case tube.Straight:
			stiffness += t.BendingStiffness()
		case tube.Absent:
		default:
			return Curvature{}, segmentation.NewContractViolationError("tube %d has unknown status code %d", i, int(statuses[i]))
		}
	}

	// Nothing resists bending here, so the quotient is undefined; call it a straight gap.
	if stiffness == 0 {
		return Curvature{Degenerate: true}, nil
	}

	k := moment.Mul(1 / stiffness)
	return Curvature{
		Magnitude: math.Hypot(k.X, k.Y),
		Angle:     math.Atan2(k.Y, k.X),
	}, nil
}

// SuperposeSegments runs Superpose over every segment of res with the same delivered rotations.
func SuperposeSegments(tubes []*tube.Tube, thetas []float64, res *segmentation.Result) ([]Curvature, error) {
	curvatures := make([]Curvature, res.NumSegments())
	for j, row := range res.Status {
		c, err := Superpose(tubes, thetas, row)
		if err != nil {
			return nil, errors.Wrapf(err, "segment %d", j)
		}
		curvatures[j] = c
	}
	return curvatures, nil
}
