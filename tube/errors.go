package tube

import "github.com/pkg/errors"

// ErrInvalidConfiguration is the root of every error caused by bad tube properties or bad joint
// values. Test for it with errors.Is.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ErrNoRobotInformation is used when a robot config has no content.
var ErrNoRobotInformation = errors.New("no robot information")

// NewInvalidPropertyError returns an error for a tube property that is out of range.
func NewInvalidPropertyError(tubeName, field string, value float64, reason string) error {
	return errors.Wrapf(ErrInvalidConfiguration, "tube %q %s %v %s", tubeName, field, value, reason)
}
