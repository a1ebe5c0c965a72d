package mechanics

import (
	"errors"
	"math"
	"testing"

	"go.viam.com/test"

	"go.viam.com/ctr/segmentation"
	"go.viam.com/ctr/tube"
)

func newTube(t *testing.T, cfg tube.Config) *tube.Tube {
	t.Helper()
	if cfg.YoungsModulus == 0 {
		cfg.YoungsModulus = 58000
	}
	if cfg.PoissonRatio == 0 && cfg.ShearModulus == 0 {
		cfg.PoissonRatio = 0.33
	}
	tb, err := tube.New(cfg)
	test.That(t, err, test.ShouldBeNil)
	return tb
}

func innerTube(t *testing.T) *tube.Tube {
	return newTube(t, tube.Config{
		Name: "inner", OuterDiameter: 1, InnerDiameter: 0.8, Precurvature: 0.02,
		StraightLength: 100, CurvedLength: 50,
	})
}

func outerTube(t *testing.T) *tube.Tube {
	return newTube(t, tube.Config{
		Name: "outer", OuterDiameter: 1.6, InnerDiameter: 1.2, Precurvature: 0.01,
		StraightLength: 60, CurvedLength: 30,
	})
}

func TestSuperposeSingleTube(t *testing.T) {
	inner := innerTube(t)
	for _, theta := range []float64{0, 0.3, -1.2, 2.9} {
		c, err := Superpose([]*tube.Tube{inner}, []float64{theta}, []tube.Status{tube.Curved})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, c.Degenerate, test.ShouldBeFalse)
		test.That(t, c.Magnitude, test.ShouldAlmostEqual, inner.Precurvature())
		test.That(t, c.Angle, test.ShouldAlmostEqual, theta)

		shifted, err := Superpose([]*tube.Tube{inner}, []float64{theta + 4*math.Pi}, []tube.Status{tube.Curved})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, shifted.Magnitude, test.ShouldAlmostEqual, c.Magnitude)
		test.That(t, shifted.Angle, test.ShouldAlmostEqual, c.Angle, 1e-9)
	}

	c, err := Superpose([]*tube.Tube{inner}, []float64{1}, []tube.Status{tube.Straight})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.Magnitude, test.ShouldEqual, 0.0)
	test.That(t, c.Degenerate, test.ShouldBeFalse)
}

func TestSuperposeEqualAndAlignedAverages(t *testing.T) {
	a := innerTube(t)
	b := innerTube(t)
	c, err := Superpose([]*tube.Tube{a, b}, []float64{0.7, 0.7}, []tube.Status{tube.Curved, tube.Curved})
	test.That(t, err, test.ShouldBeNil)
	// a weighted average, not the sum of the two curvatures
	test.That(t, c.Magnitude, test.ShouldAlmostEqual, a.Precurvature())
	test.That(t, c.Angle, test.ShouldAlmostEqual, 0.7)

	// opposed tubes of equal stiffness cancel out
	c, err = Superpose([]*tube.Tube{a, b}, []float64{0, math.Pi}, []tube.Status{tube.Curved, tube.Curved})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.Magnitude, test.ShouldAlmostEqual, 0, 1e-12)
}

func TestSuperposeStraightTubeStiffens(t *testing.T) {
	inner, outer := innerTube(t), outerTube(t)
	c, err := Superpose([]*tube.Tube{inner, outer}, []float64{0, 0}, []tube.Status{tube.Curved, tube.Straight})
	test.That(t, err, test.ShouldBeNil)
	expected := inner.BendingStiffness() * inner.Precurvature() / (inner.BendingStiffness() + outer.BendingStiffness())
	test.That(t, c.Magnitude, test.ShouldAlmostEqual, expected)
	test.That(t, c.Vector().X, test.ShouldAlmostEqual, expected)
	test.That(t, c.Vector().Y, test.ShouldAlmostEqual, 0)
}

func TestSuperposePermutationInvariant(t *testing.T) {
	inner, outer := innerTube(t), outerTube(t)
	third := newTube(t, tube.Config{
		Name: "third", OuterDiameter: 2.2, InnerDiameter: 1.8, Precurvature: 0.005,
		StraightLength: 40, CurvedLength: 20,
	})
	tubes := []*tube.Tube{inner, outer, third}
	thetas := []float64{0.2, 1.9, -2.4}
	statuses := []tube.Status{tube.Curved, tube.Curved, tube.Straight}
	c, err := Superpose(tubes, thetas, statuses)
	test.That(t, err, test.ShouldBeNil)

	for _, perm := range [][]int{{0, 2, 1}, {1, 0, 2}, {2, 1, 0}, {1, 2, 0}} {
		pt := make([]*tube.Tube, 3)
		pth := make([]float64, 3)
		ps := make([]tube.Status, 3)
		for i, p := range perm {
			pt[i], pth[i], ps[i] = tubes[p], thetas[p], statuses[p]
		}
		pc, err := Superpose(pt, pth, ps)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, pc.Magnitude, test.ShouldAlmostEqual, c.Magnitude, 1e-12)
		test.That(t, pc.Angle, test.ShouldAlmostEqual, c.Angle, 1e-12)
	}
}

func TestSuperposeDegenerateSegment(t *testing.T) {
	inner, outer := innerTube(t), outerTube(t)
	c, err := Superpose([]*tube.Tube{inner, outer}, []float64{1, 2}, []tube.Status{tube.Absent, tube.Absent})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.Degenerate, test.ShouldBeTrue)
	test.That(t, c.Magnitude, test.ShouldEqual, 0.0)
	test.That(t, c.Angle, test.ShouldEqual, 0.0)
	test.That(t, math.IsNaN(c.Magnitude), test.ShouldBeFalse)
}

func TestSuperposeBadInput(t *testing.T) {
	inner := innerTube(t)
	_, err := Superpose([]*tube.Tube{inner}, []float64{1, 2}, []tube.Status{tube.Curved})
	test.That(t, errors.Is(err, tube.ErrInvalidConfiguration), test.ShouldBeTrue)

	_, err = Superpose([]*tube.Tube{inner}, []float64{1}, []tube.Status{tube.Status(9)})
	test.That(t, errors.Is(err, segmentation.ErrContractViolation), test.ShouldBeTrue)
}

func TestSuperposeSegments(t *testing.T) {
	inner, outer := innerTube(t), outerTube(t)
	tubes := []*tube.Tube{inner, outer}
	res, err := segmentation.Sweep{}.Segment(tubes, []float64{40, 0})
	test.That(t, err, test.ShouldBeNil)
	curvatures, err := SuperposeSegments(tubes, []float64{0, 0}, res)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(curvatures), test.ShouldEqual, 4)

	// [0,60] straight, [60,60] and [60,90] both curved, [90,110] inner alone
	test.That(t, res.Lengths, test.ShouldResemble, []float64{60, 0, 30, 20})
	test.That(t, curvatures[0].Magnitude, test.ShouldAlmostEqual, 0)
	both := (inner.BendingStiffness()*inner.Precurvature() + outer.BendingStiffness()*outer.Precurvature()) /
		(inner.BendingStiffness() + outer.BendingStiffness())
	test.That(t, curvatures[1].Magnitude, test.ShouldAlmostEqual, both)
	test.That(t, curvatures[2].Magnitude, test.ShouldAlmostEqual, both)
	test.That(t, curvatures[3].Magnitude, test.ShouldAlmostEqual, inner.Precurvature())

	// equal tips leave a trailing zero-length segment nobody occupies
	res, err = segmentation.Sweep{}.Segment(tubes, []float64{60, 0})
	test.That(t, err, test.ShouldBeNil)
	curvatures, err = SuperposeSegments(tubes, []float64{0, 0}, res)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Lengths[3], test.ShouldEqual, 0.0)
	test.That(t, curvatures[3].Degenerate, test.ShouldBeTrue)
}
