package mechanics

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/ctr/logging"
	"go.viam.com/ctr/segmentation"
	"go.viam.com/ctr/tube"
)

const (
	defaultTorsionMaxIterations = 50
	defaultTorsionTolerance     = 1e-9
	maxStepHalvings             = 30
)

// TorsionOptions bounds the torsional equilibrium solve. Zero fields take the defaults.
type TorsionOptions struct {
	// MaxIterations is the number of Newton steps allowed before the solve is declared divergent.
	MaxIterations int
	// Tolerance is the largest residual torque accepted as equilibrium, relative to the largest
	// stiffness in the system (see TorsionSolution.Tolerance), so the result does not depend on units.
	Tolerance float64
}

// NewDefaultTorsionOptions returns the default solve budget.
func NewDefaultTorsionOptions() TorsionOptions {
	return TorsionOptions{
		MaxIterations: defaultTorsionMaxIterations,
		Tolerance:     defaultTorsionTolerance,
	}
}

func (opts TorsionOptions) withDefaults() TorsionOptions {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = defaultTorsionMaxIterations
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = defaultTorsionTolerance
	}
	return opts
}

// TorsionSolution holds the delivered rotation of each tube's curved section.
type TorsionSolution struct {
	Angles     []float64
	Iterations int
	// Residual is the largest remaining torque imbalance.
	Residual float64
	// Tolerance is the absolute torque tolerance the solve ran with: TorsionOptions.Tolerance times
	// max(1, max_i c_i, max_ij K_ij) over the finite stiffnesses.
	Tolerance float64
}

// TorsionSolver finds the rotations delivered to the curved sections when the straight shafts
// twist elastically. Each tube i is a torsion spring c_i = G_i*J_i/Ls_i between its commanded base
// angle alpha_i and its curved section at angle psi_i, and every pair of tubes curved over the
// same segment is coupled through the bending energy of the superposed centerline. Equilibrium is
//
//	c_i*(psi_i - alpha_i) + sum_j K_ij*sin(psi_i - psi_j) = 0
//
// which is solved by damped Newton iteration seeded at psi = alpha.
type TorsionSolver struct {
	opts   TorsionOptions
	logger logging.Logger
}

// NewTorsionSolver returns a solver with the given budget.
func NewTorsionSolver(opts TorsionOptions, logger logging.Logger) *TorsionSolver {
	if logger == nil {
		logger = logging.NewBlankLogger("torsion")
	}
	return &TorsionSolver{opts: opts.withDefaults(), logger: logger}
}

// Options returns the budget the solver runs with.
func (s *TorsionSolver) Options() TorsionOptions {
	return s.opts
}

// CouplingMatrix returns the symmetric matrix of pairwise bending-coupling constants. For every
// segment s where tubes i and j are both curved,
//
//	K_ij += L_s * EI_i * EI_j * kappa_i * kappa_j / sum_present(EI)
//
// The diagonal is zero.
func CouplingMatrix(tubes []*tube.Tube, res *segmentation.Result) *mat.SymDense {
	n := len(tubes)
	coupling := mat.NewSymDense(n, nil)
	for j, row := range res.Status {
		length := res.Lengths[j]
		if length == 0 {
			continue
		}
		var stiffness float64
		for i, t := range tubes {
			if row[i].Present() {
				stiffness += t.BendingStiffness()
			}
		}
		if stiffness == 0 {
			continue
		}
		for a := 0; a < n; a++ {
			if row[a] != tube.Curved {
				continue
			}
			for b := a + 1; b < n; b++ {
				if row[b] != tube.Curved {
					continue
				}
				ta, tb := tubes[a], tubes[b]
				k := length * ta.BendingStiffness() * tb.BendingStiffness() * ta.Precurvature() * tb.Precurvature() / stiffness
				coupling.SetSym(a, b, coupling.At(a, b)+k)
			}
		}
	}
	return coupling
}

// torsionSystem is the residual and Jacobian of the torsional equilibrium equations. Tubes without
// a straight shaft cannot twist; their equation degenerates to psi_i = alpha_i.
type torsionSystem struct {
	commanded []float64
	stiffness []float64
	rigid     []bool
	coupling  *mat.SymDense
}

// torqueScale is the largest finite spring or coupling constant, at least 1.
func (sys *torsionSystem) torqueScale() float64 {
	scale := 1.0
	for i, c := range sys.stiffness {
		if !sys.rigid[i] {
			scale = math.Max(scale, c)
		}
	}
	n := len(sys.stiffness)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			scale = math.Max(scale, sys.coupling.At(i, j))
		}
	}
	return scale
}

func (sys *torsionSystem) residual(psi []float64) []float64 {
	n := len(psi)
	res := make([]float64, n)
	for i := 0; i < n; i++ {
		if sys.rigid[i] {
			res[i] = psi[i] - sys.commanded[i]
			continue
		}
		torque := sys.stiffness[i] * (psi[i] - sys.commanded[i])
		for j := 0; j < n; j++ {
			if j != i {
				torque += sys.coupling.At(i, j) * math.Sin(psi[i]-psi[j])
			}
		}
		res[i] = torque
	}
	return res
}

func (sys *torsionSystem) jacobian(psi []float64) *mat.Dense {
	n := len(psi)
	jac := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		if sys.rigid[i] {
			jac.Set(i, i, 1)
			continue
		}
		diag := sys.stiffness[i]
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			d := sys.coupling.At(i, j) * math.Cos(psi[i]-psi[j])
			diag += d
			jac.Set(i, j, -d)
		}
		jac.Set(i, i, diag)
	}
	return jac
}

// newtonStep solves J*dx = -F.
func (sys *torsionSystem) newtonStep(psi, residual []float64) ([]float64, error) {
	rhs := make([]float64, len(residual))
	floats.ScaleTo(rhs, -1, residual)
	var dx mat.VecDense
	if err := dx.SolveVec(sys.jacobian(psi), mat.NewVecDense(len(rhs), rhs)); err != nil {
		return nil, err
	}
	return dx.RawVector().Data, nil
}

// lineSearch halves the Newton step until the residual shrinks. After maxStepHalvings it accepts
// the smallest step; the iteration budget catches a solve that makes no progress.
func (sys *torsionSystem) lineSearch(psi, step []float64, norm float64) ([]float64, []float64, float64) {
	scale := 1.0
	for halvings := 0; ; halvings++ {
		trial := floats.AddScaledTo(make([]float64, len(psi)), psi, scale, step)
		residual := sys.residual(trial)
		trialNorm := floats.Norm(residual, math.Inf(1))
		if trialNorm < norm || halvings == maxStepHalvings {
			return trial, residual, trialNorm
		}
		scale /= 2
	}
}

// Solve returns the delivered rotations for the commanded base rotations and the current
// segmentation. It fails with ErrTorsionSolveDivergence rather than return an unconverged estimate.
func (s *TorsionSolver) Solve(tubes []*tube.Tube, commanded []float64, res *segmentation.Result) (*TorsionSolution, error) {
	n := len(tubes)
	if len(commanded) != n {
		return nil, errors.Wrapf(tube.ErrInvalidConfiguration, "got %d rotations for %d tubes", len(commanded), n)
	}
	sys := &torsionSystem{
		commanded: commanded,
		stiffness: make([]float64, n),
		rigid:     make([]bool, n),
		coupling:  CouplingMatrix(tubes, res),
	}
	for i, t := range tubes {
		c := t.TorsionalStiffness()
		switch {
		case math.IsInf(c, 1):
			sys.rigid[i] = true
		case c <= 0:
			return nil, errors.Wrapf(tube.ErrInvalidConfiguration,
				"tube %d (%q) has no torsional stiffness; set its shear modulus or poisson ratio", i, t.Name())
		}
		sys.stiffness[i] = c
	}
	tolerance := s.opts.Tolerance * sys.torqueScale()

	psi := append([]float64(nil), commanded...)
	residual := sys.residual(psi)
	norm := floats.Norm(residual, math.Inf(1))
	for iter := 0; ; iter++ {
		if norm <= tolerance {
			s.logger.Debugw("torsion solve converged", "iterations", iter, "residual", norm)
			return &TorsionSolution{Angles: psi, Iterations: iter, Residual: norm, Tolerance: tolerance}, nil
		}
		if iter >= s.opts.MaxIterations {
			s.logger.Warnw("torsion solve diverged", "iterations", iter, "residual", norm, "tolerance", tolerance)
			return nil, NewTorsionSolveDivergenceError(iter, norm, tolerance)
		}
		step, err := sys.newtonStep(psi, residual)
		if err != nil {
			s.logger.Warnw("torsion jacobian is singular", "iteration", iter, "error", err)
			return nil, errors.Wrapf(ErrTorsionSolveDivergence, "singular jacobian at iteration %d: %v", iter, err)
		}
		psi, residual, norm = sys.lineSearch(psi, step, norm)
		s.logger.Debugw("torsion step", "iteration", iter+1, "residual", norm)
	}
}
