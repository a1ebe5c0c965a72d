package kinematics

import (
	"sync"

	"github.com/pkg/errors"

	"go.viam.com/ctr/logging"
	"go.viam.com/ctr/mechanics"
	"go.viam.com/ctr/segmentation"
	"go.viam.com/ctr/tube"
)

// Robot is a set of tubes together with the last joint values it was driven to and the shape
// computed for them. It is safe for concurrent use.
type Robot struct {
	name        string
	tubes       []*tube.Tube
	cfg         Config
	defaultMode ComplianceMode
	logger      logging.Logger

	mu     sync.RWMutex
	joints []JointValue
	shape  *Shape
}

// Option configures a Robot.
type Option func(*robotOptions)

type robotOptions struct {
	cfg            Config
	mode           ComplianceMode
	strictOrdering bool
}

// WithSegmenter replaces the default sweep segmenter.
func WithSegmenter(s segmentation.Segmenter) Option {
	return func(o *robotOptions) { o.cfg.Segmenter = s }
}

// WithIntegrator sets the integrator used to turn arcs into backbone poses.
func WithIntegrator(i ChainIntegrator) Option {
	return func(o *robotOptions) { o.cfg.Integrator = i }
}

// WithTorsionOptions sets the torsion solve budget.
func WithTorsionOptions(opts mechanics.TorsionOptions) Option {
	return func(o *robotOptions) { o.cfg.Torsion = opts }
}

// WithDefaultMode sets the mode used by FwKineDefault.
func WithDefaultMode(mode ComplianceMode) Option {
	return func(o *robotOptions) { o.mode = mode }
}

// WithStrictOrdering makes NewRobot reject tubes that do not nest.
func WithStrictOrdering() Option {
	return func(o *robotOptions) { o.strictOrdering = true }
}

// NewRobot returns a robot built from tubes ordered innermost first.
func NewRobot(name string, tubes []*tube.Tube, logger logging.Logger, opts ...Option) (*Robot, error) {
	if len(tubes) == 0 {
		return nil, errors.Wrap(ErrInvalidConfiguration, "robot has no tubes")
	}
	if logger == nil {
		logger = logging.NewBlankLogger(name)
	}
	var o robotOptions
	for _, opt := range opts {
		opt(&o)
	}
	if err := tube.ValidateOrdering(tubes); err != nil {
		if o.strictOrdering {
			return nil, err
		}
		logger.Warnw("tubes do not nest; results assume the given indexing", "error", err)
	}
	o.cfg.Logger = logger
	return &Robot{
		name:        name,
		tubes:       append([]*tube.Tube(nil), tubes...),
		cfg:         o.cfg.withDefaults(),
		defaultMode: o.mode,
		logger:      logger,
	}, nil
}

// NewRobotFromConfig builds the tubes described by cfg and returns a robot using them.
func NewRobotFromConfig(cfg *tube.RobotConfig, logger logging.Logger, opts ...Option) (*Robot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tubes, err := cfg.ParseTubes()
	if err != nil {
		return nil, err
	}
	mode, err := ParseComplianceMode(cfg.Compliance)
	if err != nil {
		return nil, err
	}
	fromCfg := []Option{WithDefaultMode(mode)}
	if cfg.Torsion != nil {
		fromCfg = append(fromCfg, WithTorsionOptions(mechanics.TorsionOptions{
			MaxIterations: cfg.Torsion.MaxIterations,
			Tolerance:     cfg.Torsion.Tolerance,
		}))
	}
	if cfg.StrictOrdering {
		fromCfg = append(fromCfg, WithStrictOrdering())
	}
	return NewRobot(cfg.Name, tubes, logger, append(fromCfg, opts...)...)
}

// Name returns the robot's name.
func (r *Robot) Name() string {
	return r.name
}

// Tubes returns the robot's tubes, innermost first.
func (r *Robot) Tubes() []*tube.Tube {
	return append([]*tube.Tube(nil), r.tubes...)
}

// DefaultMode returns the compliance mode used by FwKineDefault.
func (r *Robot) DefaultMode() ComplianceMode {
	return r.defaultMode
}

// FwKine computes the shape at joints and, on success, records a copy of both as the robot's
// current state. A failed call leaves the current state unchanged.
func (r *Robot) FwKine(joints []JointValue, mode ComplianceMode) (*Shape, error) {
	shape, err := ForwardKinematics(r.tubes, joints, mode, r.cfg)
	if err != nil {
		r.logger.Debugw("forward kinematics failed", "error", err)
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cached := shape.Clone()
	r.joints = cached.Joints
	r.shape = cached
	return shape, nil
}

// FwKineDefault is FwKine in the robot's default mode.
func (r *Robot) FwKineDefault(joints []JointValue) (*Shape, error) {
	return r.FwKine(joints, r.defaultMode)
}

// CurrentInputs returns the joint values of the last successful FwKine call, or nil.
func (r *Robot) CurrentInputs() []JointValue {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.joints == nil {
		return nil
	}
	return append([]JointValue(nil), r.joints...)
}

// CurrentShape returns a copy of the shape of the last successful FwKine call, or nil.
func (r *Robot) CurrentShape() *Shape {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.shape == nil {
		return nil
	}
	return r.shape.Clone()
}
