package kinematics

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"

	"go.viam.com/ctr/mechanics"
	"go.viam.com/ctr/segmentation"
	"go.viam.com/ctr/spatialmath"
	"go.viam.com/ctr/tube"
	"go.viam.com/ctr/utils"
)

// Shape is the result of one forward kinematics call. A Robot keeps its own copy and hands out
// copies, so callers may modify the shapes they receive.
type Shape struct {
	Joints   []JointValue
	Mode     ComplianceMode
	Segments *segmentation.Result
	// Curvatures holds the equivalent curvature of each segment.
	Curvatures []mechanics.Curvature
	// DeliveredRotations are the angles of the curved sections; equal to the commanded base
	// rotations in Rigid mode.
	DeliveredRotations []float64
	// Arcs is indexed [tube][segment].
	Arcs [][]Arc
	// Chains is indexed [tube][pose] and is only set when an integrator was configured.
	Chains            [][]*spatialmath.DualQuaternion
	TorsionIterations int
}

// Clone returns a deep copy of s.
func (s *Shape) Clone() *Shape {
	out := *s
	out.Joints = append([]JointValue(nil), s.Joints...)
	out.Curvatures = append([]mechanics.Curvature(nil), s.Curvatures...)
	out.DeliveredRotations = append([]float64(nil), s.DeliveredRotations...)
	if s.Segments != nil {
		seg := &segmentation.Result{
			Lengths: append([]float64(nil), s.Segments.Lengths...),
			Status:  make([][]tube.Status, len(s.Segments.Status)),
		}
		for j, row := range s.Segments.Status {
			seg.Status[j] = append([]tube.Status(nil), row...)
		}
		out.Segments = seg
	}
	if s.Arcs != nil {
		out.Arcs = make([][]Arc, len(s.Arcs))
		for i, arcs := range s.Arcs {
			out.Arcs[i] = append([]Arc(nil), arcs...)
		}
	}
	if s.Chains != nil {
		out.Chains = make([][]*spatialmath.DualQuaternion, len(s.Chains))
		for i, chain := range s.Chains {
			out.Chains[i] = make([]*spatialmath.DualQuaternion, len(chain))
			for k, pose := range chain {
				out.Chains[i][k] = pose.Clone()
			}
		}
	}
	return &out
}

// NumTubes returns the number of tubes the shape was computed for.
func (s *Shape) NumTubes() int {
	return len(s.Arcs)
}

// TubeArcs returns the arcs of tube i.
func (s *Shape) TubeArcs(i int) ([]Arc, error) {
	if i < 0 || i >= len(s.Arcs) {
		return nil, errors.Errorf("tube index %d out of range [0, %d)", i, len(s.Arcs))
	}
	return s.Arcs[i], nil
}

// Tip returns the last pose of tube i's chain, or false when no chain was integrated.
func (s *Shape) Tip(i int) (*spatialmath.DualQuaternion, bool) {
	if i < 0 || i >= len(s.Chains) || len(s.Chains[i]) == 0 {
		return nil, false
	}
	chain := s.Chains[i]
	return chain[len(chain)-1], true
}

// String prints out a table of every segment, with its length, equivalent curvature and the state
// of each tube over it.
func (s *Shape) String() string {
	t := table.NewWriter()
	header := table.Row{"#", "Length", "Curvature", "Angle (deg)"}
	for i := range s.Arcs {
		header = append(header, fmt.Sprintf("Tube %d", i))
	}
	t.AppendHeader(header)
	for j, length := range s.Segments.Lengths {
		c := s.Curvatures[j]
		row := table.Row{
			fmt.Sprintf("%d", j),
			fmt.Sprintf("%.3f", length),
			fmt.Sprintf("%.5f", c.Magnitude),
			fmt.Sprintf("%.2f", utils.RadToDeg(c.Angle)),
		}
		for i := range s.Arcs {
			row = append(row, fmt.Sprintf("%s rot:%.2f", s.Segments.Status[j][i], utils.RadToDeg(s.Arcs[i][j].Rotation)))
		}
		t.AppendRow(row)
	}
	return t.Render()
}
