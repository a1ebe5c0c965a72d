package kinematics

import (
	"errors"
	"testing"

	"go.viam.com/test"

	"go.viam.com/ctr/logging"
	"go.viam.com/ctr/segmentation"
	"go.viam.com/ctr/tube"
)

// fakeSegmenter runs the sweep and then lets the test corrupt its result.
type fakeSegmenter struct {
	calls  int
	mutate func(res *segmentation.Result)
}

func (f *fakeSegmenter) Segment(tubes []*tube.Tube, translations []float64) (*segmentation.Result, error) {
	f.calls++
	res, err := segmentation.Sweep{}.Segment(tubes, translations)
	if err != nil {
		return nil, err
	}
	if f.mutate != nil {
		f.mutate(res)
	}
	return res, nil
}

// With joints(60, 0, 30, 0, 0, 0) the inner tube is curved over the last two segments and the
// outer tube is absent from them.
var badSegmentations = []struct {
	name   string
	mutate func(res *segmentation.Result)
}{
	{"curved then straight", func(res *segmentation.Result) { res.Status[5][0] = tube.Straight }},
	{"reappears after absent", func(res *segmentation.Result) { res.Status[5][2] = tube.Curved }},
	{"missing row", func(res *segmentation.Result) {
		res.Lengths = res.Lengths[:5]
		res.Status = res.Status[:5]
	}},
}

func TestForwardKinematicsRejectsBadSegmenter(t *testing.T) {
	tubes := threeTubes(t)
	in := joints(60, 0, 30, 0, 0, 0)

	fake := &fakeSegmenter{}
	_, err := ForwardKinematics(tubes, in, Rigid, Config{Segmenter: fake})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fake.calls, test.ShouldEqual, 1)

	for _, tc := range badSegmentations {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeSegmenter{mutate: tc.mutate}
			for _, mode := range []ComplianceMode{Rigid, TorsionallyCompliant} {
				shape, err := ForwardKinematics(tubes, in, mode, Config{Segmenter: fake})
				test.That(t, errors.Is(err, ErrContractViolation), test.ShouldBeTrue)
				test.That(t, shape, test.ShouldBeNil)
			}
			test.That(t, fake.calls, test.ShouldEqual, 2)
		})
	}
}

func TestRobotRejectsBadSegmenter(t *testing.T) {
	fake := &fakeSegmenter{}
	r, err := NewRobot("ctr", threeTubes(t), logging.NewTestLogger(t), WithSegmenter(fake))
	test.That(t, err, test.ShouldBeNil)

	in := joints(60, 0, 30, 0, 0, 0)
	good, err := r.FwKine(in, Rigid)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fake.calls, test.ShouldEqual, 1)

	for _, tc := range badSegmentations {
		t.Run(tc.name, func(t *testing.T) {
			fake.mutate = tc.mutate
			_, err := r.FwKine(joints(50, 0, 20, 0, 0, 0), Rigid)
			test.That(t, errors.Is(err, ErrContractViolation), test.ShouldBeTrue)
			test.That(t, r.CurrentInputs(), test.ShouldResemble, in)
			test.That(t, r.CurrentShape(), test.ShouldResemble, good)
		})
	}
}
