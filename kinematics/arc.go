package kinematics

import (
	"github.com/pkg/errors"

	"go.viam.com/ctr/mechanics"
	"go.viam.com/ctr/segmentation"
	"go.viam.com/ctr/tube"
)

// Arc is one constant-curvature piece of a tube's backbone. Rotation is the change in bend-plane
// angle relative to the previous arc of the same tube, applied about the tube axis before bending.
type Arc struct {
	Curvature float64 `json:"curvature"`
	Rotation  float64 `json:"rotation"`
	Length    float64 `json:"length"`
}

// BuildArcs converts segment lengths, equivalent curvatures and a status matrix indexed
// [segment][tube] into per-tube arc sequences indexed [tube][segment].
//
// Each tube keeps a running absolute bend-plane angle starting at 0. An arc's rotation is the
// segment's angle minus that running angle. Arcs of absent tubes and of zero-length segments carry
// zero curvature and zero length, but their rotation is still tracked so later arcs stay relative
// to the right frame.
func BuildArcs(lengths []float64, curvatures []mechanics.Curvature, statuses [][]tube.Status) ([][]Arc, error) {
	m := len(lengths)
	if len(curvatures) != m || len(statuses) != m {
		return nil, segmentation.NewContractViolationError(
			"got %d lengths, %d curvatures and %d status rows", m, len(curvatures), len(statuses))
	}
	if m == 0 {
		return [][]Arc{}, nil
	}
	n := len(statuses[0])
	arcs := make([][]Arc, n)
	for i := range arcs {
		arcs[i] = make([]Arc, m)
	}
	running := make([]float64, n)
	for j := 0; j < m; j++ {
		if len(statuses[j]) != n {
			return nil, errors.Wrapf(ErrContractViolation, "segment %d has %d status codes, expected %d", j, len(statuses[j]), n)
		}
		phi := curvatures[j].Angle
		for i := 0; i < n; i++ {
			arc := Arc{Rotation: phi - running[i]}
			running[i] = phi
			if statuses[j][i].Present() && lengths[j] > 0 {
				arc.Curvature = curvatures[j].Magnitude
				arc.Length = lengths[j]
			}
			arcs[i][j] = arc
		}
	}
	return arcs, nil
}

// ArcLength returns the summed length of arcs.
func ArcLength(arcs []Arc) float64 {
	var total float64
	for _, a := range arcs {
		total += a.Length
	}
	return total
}
