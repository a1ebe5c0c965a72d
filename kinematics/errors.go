package kinematics

import (
	"github.com/pkg/errors"

	"go.viam.com/ctr/mechanics"
	"go.viam.com/ctr/segmentation"
	"go.viam.com/ctr/tube"
)

// Re-exported so callers of the driver can test errors without importing every package.
var (
	ErrInvalidConfiguration   = tube.ErrInvalidConfiguration
	ErrContractViolation      = segmentation.ErrContractViolation
	ErrTorsionSolveDivergence = mechanics.ErrTorsionSolveDivergence
)

// NewIncorrectJointCountError returns an error for a joint configuration of the wrong length.
func NewIncorrectJointCountError(actual, expected int) error {
	return errors.Wrapf(ErrInvalidConfiguration, "number of joint values (%d) does not match number of tubes (%d)", actual, expected)
}

// NewJointOutOfRangeError returns an error for a translation outside [0, Ls+Lc].
func NewJointOutOfRangeError(idx int, translation, limit float64) error {
	return errors.Wrapf(ErrInvalidConfiguration, "joint %d translation %v is outside [0, %v]", idx, translation, limit)
}
