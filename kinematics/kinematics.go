// Package kinematics computes the shape of a concentric-tube robot from its joint values: the tubes
// are segmented into overlap regions, each region's equivalent curvature is found by elastic
// superposition, and the result is expressed as a sequence of arcs per tube.
package kinematics

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/ctr/logging"
	"go.viam.com/ctr/mechanics"
	"go.viam.com/ctr/segmentation"
	"go.viam.com/ctr/spatialmath"
	"go.viam.com/ctr/tube"
	"go.viam.com/ctr/utils"
)

// ComplianceMode selects how base rotations reach the curved sections.
type ComplianceMode int

const (
	// Rigid delivers the commanded base rotation to the curved section unchanged.
	Rigid ComplianceMode = iota
	// TorsionallyCompliant lets the straight shafts twist and solves for torsional equilibrium.
	TorsionallyCompliant
)

func (m ComplianceMode) String() string {
	switch m {
	case Rigid:
		return "rigid"
	case TorsionallyCompliant:
		return "torsionally_compliant"
	default:
		return fmt.Sprintf("ComplianceMode(%d)", int(m))
	}
}

// ParseComplianceMode parses a compliance mode name. The empty string is Rigid.
func ParseComplianceMode(s string) (ComplianceMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rigid":
		return Rigid, nil
	case "torsionally_compliant", "compliant":
		return TorsionallyCompliant, nil
	default:
		return Rigid, errors.Wrapf(ErrInvalidConfiguration, "unknown compliance mode %q", s)
	}
}

// JointValue is the actuation of one tube: how far its base sits behind the reference plane, and
// the angle its base is rotated to, in radians.
type JointValue struct {
	Translation float64 `json:"translation"`
	Rotation    float64 `json:"rotation"`
}

// ChainIntegrator turns one tube's arcs into backbone poses, base to tip.
type ChainIntegrator interface {
	Integrate(arcs []Arc) ([]*spatialmath.DualQuaternion, error)
}

// Config holds the collaborators used by ForwardKinematics. Zero fields take defaults: the sweep
// segmenter, no integrator, the default torsion budget and a blank logger.
type Config struct {
	Segmenter  segmentation.Segmenter
	Integrator ChainIntegrator
	Torsion    mechanics.TorsionOptions
	Logger     logging.Logger
}

func (cfg Config) withDefaults() Config {
	if cfg.Segmenter == nil {
		cfg.Segmenter = segmentation.Sweep{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewBlankLogger("kinematics")
	}
	return cfg
}

// ValidateJoints checks a joint configuration against the tubes it actuates. Every bad value is
// reported, not only the first.
func ValidateJoints(tubes []*tube.Tube, joints []JointValue) error {
	if len(joints) != len(tubes) {
		return NewIncorrectJointCountError(len(joints), len(tubes))
	}
	var errs []error
	for i, j := range joints {
		if !utils.IsFinite(j.Translation) || !utils.IsFinite(j.Rotation) {
			errs = append(errs, errors.Wrapf(ErrInvalidConfiguration, "joint %d is not finite: %+v", i, j))
			continue
		}
		if limit := tubes[i].Length(); j.Translation < 0 || j.Translation > limit {
			errs = append(errs, NewJointOutOfRangeError(i, j.Translation, limit))
		}
	}
	return multierr.Combine(errs...)
}

// ForwardKinematics computes the shape of the robot built from tubes, ordered innermost first, at
// the given joint values. It holds no state; concurrent calls are safe as long as the configured
// collaborators are.
func ForwardKinematics(tubes []*tube.Tube, joints []JointValue, mode ComplianceMode, cfg Config) (*Shape, error) {
	cfg = cfg.withDefaults()
	if len(tubes) == 0 {
		return nil, errors.Wrap(ErrInvalidConfiguration, "robot has no tubes")
	}
	if err := ValidateJoints(tubes, joints); err != nil {
		return nil, err
	}

	n := len(tubes)
	translations := make([]float64, n)
	commanded := make([]float64, n)
	for i, j := range joints {
		translations[i] = j.Translation
		commanded[i] = j.Rotation
	}

	seg, err := cfg.Segmenter.Segment(tubes, translations)
	if err != nil {
		return nil, errors.Wrap(err, "segmentation failed")
	}
	if err := segmentation.Validate(seg, n); err != nil {
		return nil, err
	}

	shape := &Shape{
		Joints:   append([]JointValue(nil), joints...),
		Mode:     mode,
		Segments: seg,
	}
	switch mode {
	case Rigid:
		shape.DeliveredRotations = commanded
	case TorsionallyCompliant:
		solver := mechanics.NewTorsionSolver(cfg.Torsion, cfg.Logger.Sublogger("torsion"))
		sol, err := solver.Solve(tubes, commanded, seg)
		if err != nil {
			return nil, err
		}
		shape.DeliveredRotations = sol.Angles
		shape.TorsionIterations = sol.Iterations
	default:
		return nil, errors.Wrapf(ErrInvalidConfiguration, "unknown compliance mode %d", int(mode))
	}

	shape.Curvatures, err = mechanics.SuperposeSegments(tubes, shape.DeliveredRotations, seg)
	if err != nil {
		return nil, err
	}
	shape.Arcs, err = BuildArcs(seg.Lengths, shape.Curvatures, seg.Status)
	if err != nil {
		return nil, err
	}

	if cfg.Integrator != nil {
		shape.Chains = make([][]*spatialmath.DualQuaternion, n)
		for i, arcs := range shape.Arcs {
			chain, err := cfg.Integrator.Integrate(arcs)
			if err != nil {
				return nil, errors.Wrapf(err, "integrating tube %d (%q)", i, tubes[i].Name())
			}
			shape.Chains[i] = chain
		}
	}

	cfg.Logger.Debugw("forward kinematics",
		"mode", mode.String(),
		"tubes", n,
		"length", seg.TotalLength(),
		"torsion_iterations", shape.TorsionIterations,
	)
	return shape, nil
}
