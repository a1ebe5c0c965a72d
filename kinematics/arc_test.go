package kinematics

import (
	"errors"
	"testing"

	"go.viam.com/test"

	"go.viam.com/ctr/mechanics"
	"go.viam.com/ctr/tube"
)

func TestBuildArcs(t *testing.T) {
	lengths := []float64{10, 0, 5, 5}
	curvatures := []mechanics.Curvature{
		{Magnitude: 0.1, Angle: 0.5},
		{Magnitude: 0.2, Angle: 1.0},
		{Magnitude: 0.3, Angle: 1.5},
		{Magnitude: 0.4, Angle: 0.2},
	}
	statuses := [][]tube.Status{
		{tube.Straight, tube.Straight},
		{tube.Curved, tube.Curved},
		{tube.Curved, tube.Absent},
		{tube.Curved, tube.Absent},
	}
	arcs, err := BuildArcs(lengths, curvatures, statuses)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(arcs), test.ShouldEqual, 2)

	inner := arcs[0]
	test.That(t, len(inner), test.ShouldEqual, 4)
	test.That(t, inner[0], test.ShouldResemble, Arc{Curvature: 0.1, Rotation: 0.5, Length: 10})
	// zero-length segment still advances the running angle
	test.That(t, inner[1], test.ShouldResemble, Arc{Curvature: 0, Rotation: 0.5, Length: 0})
	test.That(t, inner[2], test.ShouldResemble, Arc{Curvature: 0.3, Rotation: 0.5, Length: 5})
	test.That(t, inner[3].Rotation, test.ShouldAlmostEqual, -1.3)
	test.That(t, inner[3].Curvature, test.ShouldEqual, 0.4)

	outer := arcs[1]
	for _, a := range outer[2:] {
		test.That(t, a.Curvature, test.ShouldEqual, 0.0)
		test.That(t, a.Length, test.ShouldEqual, 0.0)
	}
	test.That(t, outer[2].Rotation, test.ShouldEqual, 0.5)
	test.That(t, outer[3].Rotation, test.ShouldAlmostEqual, -1.3)

	// relative rotations add up to the last segment's angle
	for _, tubeArcs := range arcs {
		var sum float64
		for _, a := range tubeArcs {
			sum += a.Rotation
		}
		test.That(t, sum, test.ShouldAlmostEqual, 0.2)
	}
	test.That(t, ArcLength(inner), test.ShouldEqual, 20.0)
	test.That(t, ArcLength(outer), test.ShouldEqual, 10.0)
}

func TestBuildArcsMismatch(t *testing.T) {
	_, err := BuildArcs([]float64{1, 2}, []mechanics.Curvature{{}}, [][]tube.Status{{tube.Curved}, {tube.Curved}})
	test.That(t, errors.Is(err, ErrContractViolation), test.ShouldBeTrue)

	_, err = BuildArcs(
		[]float64{1, 2},
		[]mechanics.Curvature{{}, {}},
		[][]tube.Status{{tube.Curved, tube.Curved}, {tube.Curved}},
	)
	test.That(t, errors.Is(err, ErrContractViolation), test.ShouldBeTrue)

	arcs, err := BuildArcs(nil, nil, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, arcs, test.ShouldBeEmpty)
}
