package segmentation

import "github.com/pkg/errors"

// ErrContractViolation marks a segmentation result that breaks the segmentation contract. It is an
// internal-consistency fault and is never recovered from locally.
var ErrContractViolation = errors.New("segmentation contract violation")

// NewContractViolationError returns an ErrContractViolation carrying the formatted detail.
func NewContractViolationError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrContractViolation, format, args...)
}
