package mechanics

import "github.com/pkg/errors"

// ErrTorsionSolveDivergence is returned when the torsional equilibrium solve does not meet its
// tolerance within its iteration budget.
var ErrTorsionSolveDivergence = errors.New("torsion solve did not converge")

// NewTorsionSolveDivergenceError returns an ErrTorsionSolveDivergence describing where the solve stopped.
func NewTorsionSolveDivergenceError(iterations int, residual, tolerance float64) error {
	return errors.Wrapf(ErrTorsionSolveDivergence,
		"residual torque %g exceeds tolerance %g after %d iterations", residual, tolerance, iterations)
}
