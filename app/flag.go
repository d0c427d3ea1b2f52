package app

import "github.com/urfave/cli/v2"

var (
	durationFlag = &cli.UintFlag{
		Name:    "duration",
		Aliases: []string{"d"},
		Usage:   "Session duration in minutes (default: 60)",
	}

	timingFlag = &cli.StringFlag{
		Name:  "timing",
		Usage: "Interpret --duration as 'total' session time or 'silent' meditation time",
	}

	pauseFlag = &cli.UintFlag{
		Name:  "pause",
		Usage: "Pause between audio clips in seconds (default: 1)",
	}

	gongFlag = &cli.StringFlag{
		Name:  "gong",
		Usage: "Gong sound to open and close the session: g1, g2, or none",
	}

	noGongFlag = &cli.BoolFlag{
		Name:  "no-gong",
		Usage: "Disable the opening and closing gong",
	}

	disableFlag = &cli.StringFlag{
		Name:  "disable",
		Usage: "Skip comma-delimited segments for this session (e.g. 'metta,closing_chant')",
	}

	techniqueFlag = &cli.StringFlag{
		Name:    "technique",
		Aliases: []string{"t"},
		Usage:   "Meditation technique for the reminder segment: anapana or vipassana",
	}

	seedFlag = &cli.Int64Flag{
		Name:  "seed",
		Usage: "Seed for random audio selection. Identical seeds reproduce identical timelines",
	}

	soundsDirFlag = &cli.StringFlag{
		Name:  "sounds-dir",
		Usage: "Directory containing the session audio files",
	}

	sessionCmdFlag = &cli.StringFlag{
		Name:    "session-cmd",
		Aliases: []string{"cmd"},
		Usage:   "Execute an arbitrary command after the session completes",
	}

	disableNotificationFlag = &cli.BoolFlag{
		Name:    "disable-notification",
		Aliases: []string{"n"},
		Usage:   "Disable the system notification that appears after a session is completed",
	}

	noColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable coloured output",
	}

	sinceFlag = &cli.StringFlag{
		Name:  "since",
		Usage: "List sessions started after this time (e.g. '3 days ago'). Defaults to the past 7 days",
	}

	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Print the output in JSON format",
	}

	m3u8Flag = &cli.StringFlag{
		Name:  "m3u8",
		Usage: "Write the timeline's audio sequence to an m3u8 playlist file",
	}
)
