package segmentation

import (
	"errors"
	"testing"

	"go.viam.com/test"

	"go.viam.com/ctr/tube"
)

func makeTubes(t *testing.T) []*tube.Tube {
	t.Helper()
	inner, err := tube.New(tube.Config{
		Name: "inner", OuterDiameter: 1, InnerDiameter: 0.8, Precurvature: 0.02,
		StraightLength: 100, CurvedLength: 50, YoungsModulus: 58000,
	})
	test.That(t, err, test.ShouldBeNil)
	outer, err := tube.New(tube.Config{
		Name: "outer", OuterDiameter: 1.6, InnerDiameter: 1.2, Precurvature: 0.01,
		StraightLength: 60, CurvedLength: 30, YoungsModulus: 58000,
	})
	test.That(t, err, test.ShouldBeNil)
	return []*tube.Tube{inner, outer}
}

func TestSweepFullyInserted(t *testing.T) {
	tubes := makeTubes(t)
	res, err := Sweep{}.Segment(tubes, []float64{0, 0})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, Validate(res, 2), test.ShouldBeNil)

	test.That(t, res.NumSegments(), test.ShouldEqual, 4)
	test.That(t, res.Lengths, test.ShouldResemble, []float64{60, 30, 10, 50})
	test.That(t, res.TotalLength(), test.ShouldAlmostEqual, tubes[0].Length())
	test.That(t, res.Column(0), test.ShouldResemble,
		[]tube.Status{tube.Straight, tube.Straight, tube.Straight, tube.Curved})
	test.That(t, res.Column(1), test.ShouldResemble,
		[]tube.Status{tube.Straight, tube.Curved, tube.Absent, tube.Absent})
}

func TestSweepCoincidentBreakpoints(t *testing.T) {
	tubes := makeTubes(t)
	// inner curved start and outer tip both land at 80
	res, err := Sweep{}.Segment(tubes, []float64{20, 10})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, Validate(res, 2), test.ShouldBeNil)
	test.That(t, res.Lengths, test.ShouldResemble, []float64{50, 30, 0, 50})
	test.That(t, res.Column(0), test.ShouldResemble,
		[]tube.Status{tube.Straight, tube.Straight, tube.Curved, tube.Curved})
	test.That(t, res.Column(1), test.ShouldResemble,
		[]tube.Status{tube.Straight, tube.Curved, tube.Absent, tube.Absent})
}

func TestSweepRetractedPastStraightSection(t *testing.T) {
	tubes := makeTubes(t)
	res, err := Sweep{}.Segment(tubes, []float64{0, 70})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, Validate(res, 2), test.ShouldBeNil)
	test.That(t, res.Lengths, test.ShouldResemble, []float64{0, 20, 80, 50})
	test.That(t, res.Column(1), test.ShouldResemble,
		[]tube.Status{tube.Curved, tube.Curved, tube.Absent, tube.Absent})
	test.That(t, res.Column(0), test.ShouldResemble,
		[]tube.Status{tube.Straight, tube.Straight, tube.Straight, tube.Curved})
}

func TestSweepBadInput(t *testing.T) {
	tubes := makeTubes(t)
	_, err := Sweep{}.Segment(tubes, []float64{0})
	test.That(t, errors.Is(err, tube.ErrInvalidConfiguration), test.ShouldBeTrue)
}

func TestValidateRejectsContractViolations(t *testing.T) {
	good := func() *Result {
		return &Result{
			Lengths: []float64{10, 5},
			Status:  [][]tube.Status{{tube.Straight}, {tube.Curved}},
		}
	}
	test.That(t, Validate(good(), 1), test.ShouldBeNil)

	for name, mutate := range map[string]func(*Result){
		"wrong segment count": func(r *Result) { r.Lengths = r.Lengths[:1] },
		"wrong row count":     func(r *Result) { r.Status = r.Status[:1] },
		"negative length":     func(r *Result) { r.Lengths[1] = -1 },
		"ragged row":          func(r *Result) { r.Status[0] = []tube.Status{tube.Straight, tube.Straight} },
		"unknown code":        func(r *Result) { r.Status[0][0] = tube.Status(7) },
		"curved then straight": func(r *Result) {
			r.Status = [][]tube.Status{{tube.Curved}, {tube.Straight}}
		},
		"reappears after tip": func(r *Result) {
			r.Status = [][]tube.Status{{tube.Absent}, {tube.Curved}}
		},
	} {
		t.Run(name, func(t *testing.T) {
			r := good()
			mutate(r)
			err := Validate(r, 1)
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, errors.Is(err, ErrContractViolation), test.ShouldBeTrue)
		})
	}

	test.That(t, errors.Is(Validate(nil, 1), ErrContractViolation), test.ShouldBeTrue)
}
