// Package config is responsible for assembling the session configuration
// from the config file and command-line arguments.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/pterm/pterm"

	"github.com/ayoisaiah/sati/internal/session"
)

type (
	// SegmentConfig describes one configurable segment of a session.
	SegmentConfig struct {
		Type             session.SegmentType   `json:"type"`
		Enabled          bool                  `json:"enabled"`
		DurationSec      int                   `json:"duration_sec"`
		SelectedAudioIDs []string              `json:"selected_audio_ids"`
		Random           bool                  `json:"random"`
		Technique        session.TechniqueType `json:"technique,omitempty"`
	}

	// Preferences holds the session-wide settings.
	Preferences struct {
		TimingPreference     session.TimingPreference `json:"timing_preference"`
		TotalDurationMinutes int                      `json:"total_duration_minutes"`
		GongEnabled          bool                     `json:"gong_enabled"`
		GongPreference       session.GongPreference   `json:"gong_preference"`
		PauseDurationSec     int                      `json:"pause_duration_sec"`
		Notify               bool                     `json:"notify"`
		SessionCmd           string                   `json:"session_cmd"`
		SoundsDir            string                   `json:"sounds_dir"`
		DarkTheme            bool                     `json:"dark_theme"`
		Seed                 int64                    `json:"-"`
	}

	// Snapshot is the read-only configuration a session is built from. It
	// is captured once at session start; later preference changes do not
	// affect a running session.
	Snapshot struct {
		Segments map[session.SegmentType]SegmentConfig `json:"segments"`
		Prefs    Preferences                           `json:"preferences"`
	}

	// Option is a function that modifies a Snapshot.
	Option func(*Snapshot) error
)

const Version = "v0.3.1"

const (
	defaultTotalMinutes = 60
	defaultPauseSeconds = 1
)

var (
	appDir         = "sati"
	configFileName = "config.yml"
	dbFileName     = "sati.db"
	logFileName    = "sati.log"
	soundsDirName  = "sounds"

	configFilePath string
	dbFilePath     string
	logFilePath    string
	soundsDirPath  string
)

func Dir() string {
	return appDir
}

func ConfigFilePath() string {
	return configFilePath
}

func DBFilePath() string {
	return dbFilePath
}

func LogFilePath() string {
	return logFilePath
}

func SoundsDirPath() string {
	return soundsDirPath
}

// InitializePaths resolves the XDG file locations used by the application.
// It must be called once at program startup.
func InitializePaths() {
	satiEnv := strings.TrimSpace(os.Getenv("SATI_ENV"))
	if satiEnv != "" {
		configFileName = fmt.Sprintf("config_%s.yml", satiEnv)
		dbFileName = fmt.Sprintf("sati_%s.db", satiEnv)
		logFileName = fmt.Sprintf("sati_%s.log", satiEnv)
	}

	var err error

	configFilePath, err = xdg.ConfigFile(filepath.Join(appDir, configFileName))
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	dataDir, err := xdg.DataFile(appDir)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	dbFilePath = filepath.Join(dataDir, dbFileName)
	logFilePath = filepath.Join(dataDir, "log", logFileName)
	soundsDirPath = filepath.Join(dataDir, soundsDirName)
}

// Segment returns the configuration for the given segment type, or a
// disabled zero value when it was never configured.
func (s *Snapshot) Segment(t session.SegmentType) SegmentConfig {
	if s.Segments == nil {
		return SegmentConfig{Type: t}
	}

	seg, ok := s.Segments[t]
	if !ok {
		return SegmentConfig{Type: t}
	}

	return seg
}

// GongClipID maps the gong preference to the catalog id of the clip that
// should play, or "" when the gong is off.
func (s *Snapshot) GongClipID() string {
	if !s.Prefs.GongEnabled ||
		s.Prefs.GongPreference == session.GongNone ||
		s.Prefs.GongPreference == "" {
		return ""
	}

	return "gong_" + string(s.Prefs.GongPreference)
}

// New creates a Snapshot with default values and applies options in order.
func New(opts ...Option) (*Snapshot, error) {
	snap := defaultSnapshot()

	for _, opt := range opts {
		if err := opt(snap); err != nil {
			return nil, errConfigOption.Wrap(err)
		}
	}

	snap.Normalize()

	return snap, nil
}

// defaultSnapshot returns the built-in configuration used before the config
// file or command-line flags are applied.
func defaultSnapshot() *Snapshot {
	segments := make(map[session.SegmentType]SegmentConfig)

	for _, t := range session.BeforeSilentOrder {
		segments[t] = SegmentConfig{Type: t}
	}

	for _, t := range session.AfterSilentOrder {
		segments[t] = SegmentConfig{Type: t}
	}

	segments[session.TechniqueReminder] = SegmentConfig{
		Type:      session.TechniqueReminder,
		Technique: session.Anapana,
	}

	segments[session.Silent] = SegmentConfig{
		Type:    session.Silent,
		Enabled: true,
	}

	return &Snapshot{
		Segments: segments,
		Prefs: Preferences{
			TimingPreference:     session.TimingTotal,
			TotalDurationMinutes: defaultTotalMinutes,
			GongEnabled:          true,
			GongPreference:       session.GongOne,
			PauseDurationSec:     defaultPauseSeconds,
			Notify:               true,
			DarkTheme:            true,
		},
	}
}
