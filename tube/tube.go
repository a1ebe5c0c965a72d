// Package tube defines the static properties of the pre-curved tubes that make up a concentric-tube
// robot, and the JSON configuration used to describe a robot's tube set.
//
// Units are left to the caller but must be consistent: with lengths in millimeters and moduli in
// N/mm^2 (MPa), bending stiffness comes out in N*mm^2 and torque in N*mm.
package tube

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/ctr/utils"
)

// Status is the state of a tube over one overlap segment of the backbone.
type Status int

// Status codes stored in a segmentation status matrix.
const (
	Absent   Status = -1
	Straight Status = 0
	Curved   Status = 1
)

func (s Status) String() string {
	switch s {
	case Absent:
		return "absent"
	case Straight:
		return "straight"
	case Curved:
		return "curved"
	default:
		return "unknown"
	}
}

// Present reports whether the tube occupies the segment, i.e. it is straight or curved there.
func (s Status) Present() bool {
	return s == Straight || s == Curved
}

// Valid reports whether s is one of the three defined status codes.
func (s Status) Valid() bool {
	return s == Absent || s.Present()
}

// Config holds the physical description of one tube.
type Config struct {
	Name           string  `json:"name,omitempty"`
	OuterDiameter  float64 `json:"outer_diameter_mm"`
	InnerDiameter  float64 `json:"inner_diameter_mm"`
	Precurvature   float64 `json:"precurvature"`
	StraightLength float64 `json:"straight_length_mm"`
	CurvedLength   float64 `json:"curved_length_mm"`
	YoungsModulus  float64 `json:"youngs_modulus"`
	// ShearModulus takes precedence over PoissonRatio when both are set.
	ShearModulus float64 `json:"shear_modulus,omitempty"`
	PoissonRatio float64 `json:"poisson_ratio,omitempty"`
}

// Tube is an immutable pre-curved tube. Construct one with New.
type Tube struct {
	name           string
	outerDiameter  float64
	innerDiameter  float64
	precurvature   float64
	straightLength float64
	curvedLength   float64
	youngsModulus  float64
	shearModulus   float64
	secondMoment   float64
}

// New validates cfg and returns the tube it describes.
func New(cfg Config) (*Tube, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	shear := cfg.ShearModulus
	if shear == 0 && cfg.PoissonRatio != 0 {
		shear = cfg.YoungsModulus / (2 * (1 + cfg.PoissonRatio))
	}
	return &Tube{
		name:           cfg.Name,
		outerDiameter:  cfg.OuterDiameter,
		innerDiameter:  cfg.InnerDiameter,
		precurvature:   cfg.Precurvature,
		straightLength: cfg.StraightLength,
		curvedLength:   cfg.CurvedLength,
		youngsModulus:  cfg.YoungsModulus,
		shearModulus:   shear,
		secondMoment:   math.Pi * (math.Pow(cfg.OuterDiameter, 4) - math.Pow(cfg.InnerDiameter, 4)) / 64,
	}, nil
}

// Validate checks that every property is finite and physically meaningful.
func (cfg Config) Validate() error {
	var errs []error
	check := func(field string, v float64) {
		switch {
		case !utils.IsFinite(v):
			errs = append(errs, NewInvalidPropertyError(cfg.Name, field, v, "must be finite"))
		case v < 0:
			errs = append(errs, NewInvalidPropertyError(cfg.Name, field, v, "must be non-negative"))
		}
	}
	check("outer_diameter_mm", cfg.OuterDiameter)
	check("inner_diameter_mm", cfg.InnerDiameter)
	check("precurvature", cfg.Precurvature)
	check("straight_length_mm", cfg.StraightLength)
	check("curved_length_mm", cfg.CurvedLength)
	check("youngs_modulus", cfg.YoungsModulus)
	check("shear_modulus", cfg.ShearModulus)
	if !utils.IsFinite(cfg.PoissonRatio) || cfg.PoissonRatio < 0 || cfg.PoissonRatio >= 0.5 {
		errs = append(errs, NewInvalidPropertyError(cfg.Name, "poisson_ratio", cfg.PoissonRatio, "must be in [0, 0.5)"))
	}
	if cfg.OuterDiameter <= cfg.InnerDiameter {
		errs = append(errs, errors.Wrapf(ErrInvalidConfiguration,
			"tube %q outer diameter %v must exceed inner diameter %v", cfg.Name, cfg.OuterDiameter, cfg.InnerDiameter))
	}
	return multierr.Combine(errs...)
}

// Name returns the tube's name, which may be empty.
func (t *Tube) Name() string {
	return t.name
}

// OuterDiameter returns the tube's outer diameter.
func (t *Tube) OuterDiameter() float64 {
	return t.outerDiameter
}

// InnerDiameter returns the tube's inner diameter.
func (t *Tube) InnerDiameter() float64 {
	return t.innerDiameter
}

// Precurvature returns the curvature the curved section takes when unconstrained, in rad/length.
func (t *Tube) Precurvature() float64 {
	return t.precurvature
}

// StraightLength returns the length of the straight shaft.
func (t *Tube) StraightLength() float64 {
	return t.straightLength
}

// CurvedLength returns the length of the pre-curved tip section.
func (t *Tube) CurvedLength() float64 {
	return t.curvedLength
}

// Length returns the total tube length, straight plus curved.
func (t *Tube) Length() float64 {
	return t.straightLength + t.curvedLength
}

// YoungsModulus returns E.
func (t *Tube) YoungsModulus() float64 {
	return t.youngsModulus
}

// ShearModulus returns G, zero when it was neither given nor derivable.
func (t *Tube) ShearModulus() float64 {
	return t.shearModulus
}

// SecondMomentOfArea returns I = pi(OD^4 - ID^4)/64.
func (t *Tube) SecondMomentOfArea() float64 {
	return t.secondMoment
}

// PolarMomentOfArea returns J, which is 2I for an annulus.
func (t *Tube) PolarMomentOfArea() float64 {
	return 2 * t.secondMoment
}

// BendingStiffness returns E*I.
func (t *Tube) BendingStiffness() float64 {
	return t.youngsModulus * t.secondMoment
}

// TorsionalStiffness returns G*J/Ls, the torque per radian of twist along the straight shaft.
// A tube with no straight shaft cannot twist and reports +Inf.
func (t *Tube) TorsionalStiffness() float64 {
	if t.straightLength == 0 {
		return math.Inf(1)
	}
	return t.shearModulus * t.PolarMomentOfArea() / t.straightLength
}

// ValidateOrdering checks that tubes are ordered innermost first: outer diameters strictly increase
// and every tube fits inside the bore of the next one.
func ValidateOrdering(tubes []*Tube) error {
	var errs []error
	for i := 1; i < len(tubes); i++ {
		inner, outer := tubes[i-1], tubes[i]
		if inner.OuterDiameter() >= outer.OuterDiameter() {
			errs = append(errs, errors.Wrapf(ErrInvalidConfiguration,
				"tube %d outer diameter %v is not smaller than tube %d outer diameter %v",
				i-1, inner.OuterDiameter(), i, outer.OuterDiameter()))
			continue
		}
		if inner.OuterDiameter() > outer.InnerDiameter() {
			errs = append(errs, errors.Wrapf(ErrInvalidConfiguration,
				"tube %d outer diameter %v does not fit inside tube %d inner diameter %v",
				i-1, inner.OuterDiameter(), i, outer.InnerDiameter()))
		}
	}
	return multierr.Combine(errs...)
}
