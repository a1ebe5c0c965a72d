// Package segmentation splits the shared backbone of a concentric-tube robot into overlap segments,
// the intervals over which the set of curved, straight and absent tubes does not change.
//
// For n tubes there are always exactly 2n segments, ordered from the robot base to the tip. Two
// coincident breakpoints produce a zero-length segment; consumers must tolerate those.
package segmentation

import (
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/ctr/tube"
	"go.viam.com/ctr/utils"
)

// Result is the output of a Segmenter.
type Result struct {
	// Lengths holds the 2n segment lengths, base to tip.
	Lengths []float64
	// Status is indexed [segment][tube].
	Status [][]tube.Status
}

// NumSegments returns the number of segments, including zero-length ones.
func (r *Result) NumSegments() int {
	return len(r.Lengths)
}

// Column returns the status of one tube over every segment.
func (r *Result) Column(tubeIdx int) []tube.Status {
	col := make([]tube.Status, len(r.Status))
	for j, row := range r.Status {
		col[j] = row[tubeIdx]
	}
	return col
}

// TotalLength returns the backbone length spanned by the most-extended tube.
func (r *Result) TotalLength() float64 {
	return floats.Sum(r.Lengths)
}

// Segmenter turns per-tube translations into overlap segments.
type Segmenter interface {
	Segment(tubes []*tube.Tube, translations []float64) (*Result, error)
}

// Sweep is the default Segmenter. It sweeps over every tube's curved-section start and tip, measured
// from the reference plane, and treats each gap between consecutive events as one segment.
//
// A translation is the depth of a tube's base behind the reference plane, so tube i exposes
// [0, Ls+Lc-t] of backbone with its curved section starting at Ls-t. Events behind the reference
// plane are clamped to it.
type Sweep struct{}

// Segment implements Segmenter.
func (Sweep) Segment(tubes []*tube.Tube, translations []float64) (*Result, error) {
	if len(tubes) != len(translations) {
		return nil, errors.Wrapf(tube.ErrInvalidConfiguration,
			"got %d translations for %d tubes", len(translations), len(tubes))
	}
	n := len(tubes)
	curvedStarts := make([]float64, n)
	tips := make([]float64, n)
	bounds := make([]float64, 0, 2*n+1)
	for i, t := range tubes {
		if !utils.IsFinite(translations[i]) {
			return nil, errors.Wrapf(tube.ErrInvalidConfiguration, "translation %d is not finite", i)
		}
		curvedStarts[i] = clampToReference(t.StraightLength() - translations[i])
		tips[i] = clampToReference(t.Length() - translations[i])
		bounds = append(bounds, curvedStarts[i], tips[i])
	}
	sort.Float64s(bounds)
	bounds = append([]float64{0}, bounds...)

	res := &Result{
		Lengths: make([]float64, 2*n),
		Status:  make([][]tube.Status, 2*n),
	}
	for j := range res.Lengths {
		start := bounds[j]
		res.Lengths[j] = bounds[j+1] - start
		row := make([]tube.Status, n)
		for i := range tubes {
			switch {
			case start >= tips[i]:
				row[i] = tube.Absent
			case start >= curvedStarts[i]:
				row[i] = tube.Curved
			default:
				row[i] = tube.Straight
			}
		}
		res.Status[j] = row
	}
	return res, nil
}

func clampToReference(pos float64) float64 {
	if pos < 0 {
		return 0
	}
	return pos
}

// statusRank orders statuses the way they must appear from base to tip along one tube.
func statusRank(s tube.Status) int {
	switch s {
	case tube.Straight:
		return 0
	case tube.Curved:
		return 1
	default:
		return 2
	}
}

// Validate checks that res honors the segmentation contract for numTubes tubes: 2n finite,
// non-negative lengths, a 2n x n matrix of known codes, and along every tube a run of straight
// segments, then curved ones, then absent ones.
func Validate(res *Result, numTubes int) error {
	if res == nil {
		return errors.Wrap(ErrContractViolation, "nil segmentation result")
	}
	want := 2 * numTubes
	if len(res.Lengths) != want {
		return NewContractViolationError("got %d segment lengths, expected %d", len(res.Lengths), want)
	}
	if len(res.Status) != want {
		return NewContractViolationError("got %d status rows, expected %d", len(res.Status), want)
	}
	for j, l := range res.Lengths {
		if !utils.IsFinite(l) || l < 0 {
			return NewContractViolationError("segment %d has length %v", j, l)
		}
		if len(res.Status[j]) != numTubes {
			return NewContractViolationError("segment %d has %d status codes, expected %d", j, len(res.Status[j]), numTubes)
		}
	}
	for i := 0; i < numTubes; i++ {
		prev := 0
		for j, row := range res.Status {
			if !row[i].Valid() {
				return NewContractViolationError("segment %d tube %d has unknown status code %d", j, i, int(row[i]))
			}
			rank := statusRank(row[i])
			if rank < prev {
				return NewContractViolationError("tube %d is %s in segment %d after being %s", i, row[i], j, res.Status[j-1][i])
			}
			prev = rank
		}
	}
	return nil
}
