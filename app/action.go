package app

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/sati/internal/audio"
	"github.com/ayoisaiah/sati/internal/config"
	"github.com/ayoisaiah/sati/internal/playback"
	"github.com/ayoisaiah/sati/internal/timeline"
	"github.com/ayoisaiah/sati/internal/timeutil"
	"github.com/ayoisaiah/sati/internal/ui"
	"github.com/ayoisaiah/sati/store"
	"github.com/ayoisaiah/sati/tui"
)

const (
	envNoColor     = "NO_COLOR"
	envSatiNoColor = "SATI_NO_COLOR"
)

const defaultHistoryDays = 7

// firstNonEmptyString returns its first non-empty argument, or "" if all
// arguments are empty.
func firstNonEmptyString(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}

	return ""
}

// loadConfig builds the session configuration from the config file, then
// applies command-line overrides.
func loadConfig(ctx *cli.Context) (*config.Snapshot, error) {
	snap, err := config.New(
		config.WithViperConfig(config.ConfigFilePath()),
		config.WithCLIConfig(ctx),
	)
	if err != nil {
		return nil, err
	}

	ui.DarkTheme = snap.Prefs.DarkTheme

	return snap, nil
}

// soundsDir returns the configured audio directory, falling back to the
// default data location.
func soundsDir(snap *config.Snapshot) string {
	return firstNonEmptyString(snap.Prefs.SoundsDir, config.SoundsDirPath())
}

// ensureSeed pins an explicit seed when none was given, so the previewed
// timeline and the plan the playback machine builds resolve random
// segments identically.
func ensureSeed(snap *config.Snapshot) {
	if snap.Prefs.Seed == 0 {
		snap.Prefs.Seed = time.Now().UnixNano()
	}
}

// defaultAction starts a meditation session.
func defaultAction(ctx *cli.Context) error {
	snap, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	lib, err := audio.NewLibrary(soundsDir(snap))
	if err != nil {
		return err
	}

	ensureSeed(snap)

	_, durations := timeline.Build(
		snap,
		lib,
		timeline.NewRand(snap.Prefs.Seed),
	)

	if durations.AudioOverflow {
		pterm.Warning.Printfln(
			"audio and pauses exceed the configured %d minutes, no time is left for silent meditation",
			snap.Prefs.TotalDurationMinutes,
		)
	}

	player, err := audio.NewBeepPlayer()
	if err != nil {
		return err
	}

	machine := playback.New(
		snap,
		lib,
		lib,
		player,
		playback.NewTickerCountdown(),
	)

	defer machine.Cleanup()

	db, err := store.NewClient(config.DBFilePath())
	if err != nil {
		return err
	}

	defer func() {
		_ = db.Close()
	}()

	slog.Info(
		"starting session",
		slog.Int("total_sec", durations.TotalSec),
		slog.Int("silent_sec", durations.SilentSec),
	)

	return tui.New(machine, db, snap, durations).Run()
}

// timelineAction prints the session timeline without starting playback.
func timelineAction(ctx *cli.Context) error {
	snap, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	lib, err := audio.NewLibrary(soundsDir(snap))
	if err != nil {
		return err
	}

	items, durations := timeline.Build(
		snap,
		lib,
		timeline.NewRand(snap.Prefs.Seed),
	)

	if path := ctx.String("m3u8"); path != "" {
		b, err := timeline.ExportM3U8(items)
		if err != nil {
			return err
		}

		return os.WriteFile(path, b, 0o644)
	}

	summary := timeline.Summarize(items)

	if ctx.Bool("json") {
		b, err := json.Marshal(struct {
			Items   []timeline.Item  `json:"items"`
			Summary timeline.Summary `json:"summary"`
		}{items, summary})
		if err != nil {
			return err
		}

		pterm.Println(string(b))

		return nil
	}

	if durations.AudioOverflow {
		pterm.Warning.Printfln(
			"audio and pauses exceed the configured %d minutes, no time is left for silent meditation",
			snap.Prefs.TotalDurationMinutes,
		)
	}

	fmt.Print(timeline.Describe(items, summary))

	return nil
}

// historyAction prints a table of past sessions.
func historyAction(ctx *cli.Context) error {
	start := time.Now().AddDate(0, 0, -defaultHistoryDays)

	if since := ctx.String("since"); since != "" {
		var err error

		start, err = timeutil.FromStr(since)
		if err != nil {
			return err
		}
	}

	db, err := store.NewClient(config.DBFilePath())
	if err != nil {
		return err
	}

	defer func() {
		_ = db.Close()
	}()

	sessions, err := db.GetSessions(timeutil.RoundToStart(start), time.Now())
	if err != nil {
		return err
	}

	if ctx.Bool("json") {
		b, err := json.Marshal(sessions)
		if err != nil {
			return err
		}

		pterm.Println(string(b))

		return nil
	}

	tableBody := make([][]string, len(sessions))

	for i := range sessions {
		sess := sessions[i]

		status := ui.Green("completed")
		if !sess.Completed {
			status = ui.Yellow("interrupted")
		}

		tableBody[i] = []string{
			sess.StartTime.Format("Jan 02, 2006 03:04:05 PM"),
			timeutil.FormatSecs(sess.Durations.TotalSec),
			timeutil.FormatSecs(sess.Durations.SilentSec),
			fmt.Sprintf("%d", len(sess.Sequence)),
			status,
		}
	}

	tableBody = append([][]string{
		{
			"STARTED",
			"LENGTH",
			"SILENT",
			"CLIPS",
			"STATUS",
		},
	}, tableBody...)

	ui.PrintTable(tableBody, os.Stdout)

	return nil
}

// soundsAction lists the audio files available for sessions.
func soundsAction(ctx *cli.Context) error {
	snap, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	lib, err := audio.NewLibrary(soundsDir(snap))
	if err != nil {
		return err
	}

	clips := lib.Clips()
	if len(clips) == 0 {
		pterm.Info.Printfln(
			"no audio files found in %s",
			soundsDir(snap),
		)

		return nil
	}

	tableBody := make([][]string, len(clips))

	for i, clip := range clips {
		tableBody[i] = []string{
			clip.ID,
			clip.Name,
			timeutil.FormatSecs(clip.DurationSec),
		}
	}

	tableBody = append([][]string{
		{"ID", "TITLE", "LENGTH"},
	}, tableBody...)

	ui.PrintTable(tableBody, os.Stdout)

	return nil
}

// editConfigAction opens the config file in the user's default text editor.
func editConfigAction(_ *cli.Context) error {
	defaultEditor := "nano"

	if runtime.GOOS == "windows" {
		defaultEditor = "C:\\Windows\\system32\\notepad.exe"
	}

	editor := firstNonEmptyString(
		os.Getenv("VISUAL"),
		os.Getenv("EDITOR"),
		defaultEditor,
	)

	cmd := exec.Command(editor, config.ConfigFilePath())

	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout

	return cmd.Run()
}

func beforeAction(ctx *cli.Context) error {
	// Override the default help template
	cli.AppHelpTemplate = helpText()

	pterm.Error.MessageStyle = pterm.NewStyle(pterm.FgRed)
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "ERROR",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}

	// Disable colour output if NO_COLOR is set
	if _, exists := os.LookupEnv(envNoColor); exists {
		disableStyling()
	}

	// Disable colour output if SATI_NO_COLOR is set
	if _, exists := os.LookupEnv(envSatiNoColor); exists {
		disableStyling()
	}

	if ctx.Bool("no-color") {
		disableStyling()
	}

	return nil
}
