// Package app assembles the command-line interface.
package app

import (
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/sati/internal/config"
)

// disableStyling disables all styling provided by pterm.
func disableStyling() {
	pterm.DisableColor()
	pterm.DisableStyling()
	pterm.Debug.Prefix.Text = ""
	pterm.Info.Prefix.Text = ""
	pterm.Success.Prefix.Text = ""
	pterm.Warning.Prefix.Text = ""
	pterm.Error.Prefix.Text = ""
	pterm.Fatal.Prefix.Text = ""
}

// Get retrieves the sati app instance.
func Get() *cli.App {
	satiApp := &cli.App{
		Name: "sati",
		Usage: `
		Sati is a Vipassana meditation timer for the command-line. It sequences
		chanting, guidance, and gong recordings around a period of silent
		meditation, timed to the minute.`,
		UsageText:            "[COMMAND] [OPTIONS]",
		Version:              config.Version,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:   "timeline",
				Usage:  "Preview the session timeline without starting playback",
				Action: timelineAction,
				Flags: []cli.Flag{
					jsonFlag,
					m3u8Flag,
					durationFlag,
					timingFlag,
					pauseFlag,
					gongFlag,
					noGongFlag,
					disableFlag,
					techniqueFlag,
					seedFlag,
					soundsDirFlag,
				},
			},
			{
				Name:   "history",
				Usage:  "Review past meditation sessions",
				Action: historyAction,
				Flags: []cli.Flag{
					sinceFlag,
					jsonFlag,
				},
			},
			{
				Name:   "sounds",
				Usage:  "List the audio files available for sessions",
				Action: soundsAction,
				Flags: []cli.Flag{
					soundsDirFlag,
				},
			},
			{
				Name:   "configure",
				Usage:  "Adjust session settings interactively",
				Action: configureAction,
			},
			{
				Name:   "edit-config",
				Usage:  "Edit the configuration file",
				Action: editConfigAction,
			},
		},
		Flags: []cli.Flag{
			durationFlag,
			timingFlag,
			pauseFlag,
			gongFlag,
			noGongFlag,
			disableFlag,
			techniqueFlag,
			seedFlag,
			soundsDirFlag,
			sessionCmdFlag,
			disableNotificationFlag,
			noColorFlag,
		},
		Action: defaultAction,
		Before: beforeAction,
	}

	return satiApp
}
