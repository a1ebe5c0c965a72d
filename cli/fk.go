package cli

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/ctr/backbone"
	"go.viam.com/ctr/kinematics"
	"go.viam.com/ctr/tube"
	"go.viam.com/ctr/utils"
)

// ForwardKinematicsAction is the corresponding Action for 'fk'.
func ForwardKinematicsAction(c *cli.Context) error {
	cfg, err := tube.ParseRobotConfigFile(c.Path(flagConfig))
	if err != nil {
		return err
	}
	robot, err := kinematics.NewRobotFromConfig(cfg, logger.Sublogger("kinematics"),
		kinematics.WithIntegrator(backbone.NewIntegrator(c.Int(flagSamples))))
	if err != nil {
		return err
	}

	joints, err := parseJoints(len(robot.Tubes()), c.Float64Slice(flagTranslations), c.Float64Slice(flagRotations), c.Bool(flagDegrees))
	if err != nil {
		return err
	}
	mode := robot.DefaultMode()
	if c.IsSet(flagMode) {
		if mode, err = kinematics.ParseComplianceMode(c.String(flagMode)); err != nil {
			return err
		}
	}

	shape, err := robot.FwKine(joints, mode)
	if err != nil {
		return err
	}
	printf(c.App.Writer, "robot %q, %s", robot.Name(), mode)
	if mode == kinematics.TorsionallyCompliant {
		printf(c.App.Writer, "torsion solve took %d iterations", shape.TorsionIterations)
	}
	printf(c.App.Writer, "%s", shape.String())
	printf(c.App.Writer, "%s", tipTable(robot.Tubes(), shape))
	return nil
}

// ValidateAction is the corresponding Action for 'validate'.
func ValidateAction(c *cli.Context) error {
	cfg, err := tube.ParseRobotConfigFile(c.Path(flagConfig))
	if err != nil {
		return err
	}
	robot, err := kinematics.NewRobotFromConfig(cfg, logger.Sublogger("kinematics"))
	if err != nil {
		return err
	}
	printf(c.App.Writer, "robot %q is valid: %d tubes, %s by default", robot.Name(), len(robot.Tubes()), robot.DefaultMode())
	return nil
}

// parseJoints pairs translations and rotations into joint values. An omitted list means all zeroes.
func parseJoints(n int, translations, rotations []float64, degrees bool) ([]kinematics.JointValue, error) {
	if len(translations) == 0 {
		translations = make([]float64, n)
	}
	if len(rotations) == 0 {
		rotations = make([]float64, n)
	}
	if len(translations) != n || len(rotations) != n {
		return nil, errors.Errorf("robot has %d tubes but got %d translations and %d rotations", n, len(translations), len(rotations))
	}
	joints := make([]kinematics.JointValue, n)
	for i := range joints {
		rot := rotations[i]
		if degrees {
			rot = utils.DegToRad(rot)
		}
		joints[i] = kinematics.JointValue{Translation: translations[i], Rotation: rot}
	}
	return joints, nil
}

func tipTable(tubes []*tube.Tube, shape *kinematics.Shape) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Tube", "Delivered (deg)", "Tip", "Direction"})
	for i, tb := range tubes {
		row := table.Row{tb.Name(), fmt.Sprintf("%.2f", utils.RadToDeg(shape.DeliveredRotations[i]))}
		if tip, ok := shape.Tip(i); ok {
			pt := tip.Point()
			_, z := tip.Axes()
			row = append(row,
				fmt.Sprintf("X:%.3f, Y:%.3f, Z:%.3f", pt.X, pt.Y, pt.Z),
				fmt.Sprintf("X:%.3f, Y:%.3f, Z:%.3f", z.X, z.Y, z.Z))
		} else {
			row = append(row, "", "")
		}
		t.AppendRow(row)
	}
	return t.Render()
}

func printf(w io.Writer, format string, a ...interface{}) {
	if w == nil {
		return
	}
	// no need to check errors
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}
