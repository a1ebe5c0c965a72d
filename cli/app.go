// Package cli contains the ctr command line commands.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"

	"go.viam.com/ctr/logging"
)

// Flags.
const (
	flagConfig       = "config"
	flagDebug        = "debug"
	flagTranslations = "translation"
	flagRotations    = "rotation"
	flagDegrees      = "degrees"
	flagMode         = "mode"
	flagSamples      = "samples"
)

var logger = logging.NewBlankLogger("ctr")

var app = &cli.App{
	Name:            "ctr",
	Usage:           "compute the shape of a concentric-tube robot",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    flagDebug,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
	},
	Before: func(c *cli.Context) error {
		if c.Bool(flagDebug) {
			logger = logging.NewDebugLogger("ctr")
		} else {
			logger = logging.NewLogger("ctr")
		}
		logging.ReplaceGlobal(logger)
		return nil
	},
	Commands: []*cli.Command{
		{
			Name:      "fk",
			Usage:     "run forward kinematics and print the arcs and tip of every tube",
			UsageText: "ctr fk --config <FILE> --translation t0,t1,... --rotation r0,r1,... [other options]",
			Flags: []cli.Flag{
				&cli.PathFlag{
					Name:     flagConfig,
					Aliases:  []string{"c"},
					Required: true,
					Usage:    "load the robot from `FILE`",
				},
				&cli.Float64SliceFlag{
					Name:    flagTranslations,
					Aliases: []string{"t"},
					Usage:   "depth of each tube's base behind the reference plane, innermost first; defaults to 0",
				},
				&cli.Float64SliceFlag{
					Name:    flagRotations,
					Aliases: []string{"r"},
					Usage:   "base rotation of each tube, innermost first; defaults to 0",
				},
				&cli.BoolFlag{
					Name:  flagDegrees,
					Usage: "read rotations in degrees instead of radians",
				},
				&cli.StringFlag{
					Name:  flagMode,
					Usage: "rigid or torsionally_compliant; defaults to the config's compliance",
				},
				&cli.IntFlag{
					Name:  flagSamples,
					Value: 0,
					Usage: "intermediate backbone samples per arc",
				},
			},
			Action: ForwardKinematicsAction,
		},
		{
			Name:  "validate",
			Usage: "check a robot config without computing anything",
			Flags: []cli.Flag{
				&cli.PathFlag{
					Name:     flagConfig,
					Aliases:  []string{"c"},
					Required: true,
					Usage:    "load the robot from `FILE`",
				},
			},
			Action: ValidateAction,
		},
	},
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}
