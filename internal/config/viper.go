package config

import (
	"errors"
	"os"

	"github.com/spf13/viper"

	"github.com/ayoisaiah/sati/internal/session"
)

// viperKeys defines the mapping between config keys and their Viper
// counterparts.
const (
	keySessionDuration = "session.duration_mins"
	keySessionTiming   = "session.timing"
	keySessionPause    = "session.pause_secs"
	keyGongEnabled     = "gong.enabled"
	keyGongSound       = "gong.sound"
	keyNotifyEnabled   = "notifications.enabled"
	keySessionCmd      = "settings.cmd"
	keySoundsDir       = "settings.sounds_dir"
	keyDarkTheme       = "display.dark_theme"
)

// segment subkeys, nested under "segments.<type>".
const (
	subkeyEnabled   = "enabled"
	subkeyAudio     = "audio"
	subkeyRandom    = "random"
	subkeyDuration  = "duration_secs"
	subkeyTechnique = "technique"
)

// WithViperConfig returns an Option that loads configuration from the YAML
// file at configPath, writing the defaults first if the file is absent.
func WithViperConfig(configPath string) Option {
	return func(s *Snapshot) error {
		v := viper.New()

		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		setViperDefaults(v, s)

		err := v.ReadInConfig()
		if err == nil {
			return loadViperConfig(v, s)
		}

		if !errors.Is(err, os.ErrNotExist) {
			return errReadConfig.Wrap(err)
		}

		if err := v.WriteConfig(); err != nil {
			return errWriteConfig.Wrap(err)
		}

		return loadViperConfig(v, s)
	}
}

func segmentKey(t session.SegmentType, subkey string) string {
	return "segments." + string(t) + "." + subkey
}

// setViperDefaults seeds Viper with the snapshot's current values so that a
// freshly written config file reflects the built-in defaults.
func setViperDefaults(v *viper.Viper, s *Snapshot) {
	v.SetDefault(keySessionDuration, s.Prefs.TotalDurationMinutes)
	v.SetDefault(keySessionTiming, string(s.Prefs.TimingPreference))
	v.SetDefault(keySessionPause, s.Prefs.PauseDurationSec)
	v.SetDefault(keyGongEnabled, s.Prefs.GongEnabled)
	v.SetDefault(keyGongSound, string(s.Prefs.GongPreference))
	v.SetDefault(keyNotifyEnabled, s.Prefs.Notify)
	v.SetDefault(keySessionCmd, s.Prefs.SessionCmd)
	v.SetDefault(keySoundsDir, s.Prefs.SoundsDir)
	v.SetDefault(keyDarkTheme, s.Prefs.DarkTheme)

	for t, seg := range s.Segments {
		if t == session.Silent {
			continue
		}

		v.SetDefault(segmentKey(t, subkeyEnabled), seg.Enabled)
		v.SetDefault(segmentKey(t, subkeyAudio), seg.SelectedAudioIDs)
		v.SetDefault(segmentKey(t, subkeyRandom), seg.Random)
		v.SetDefault(segmentKey(t, subkeyDuration), seg.DurationSec)

		if t == session.TechniqueReminder {
			v.SetDefault(segmentKey(t, subkeyTechnique), string(seg.Technique))
		}
	}
}

// Save writes the snapshot back to the YAML file at configPath. Used by
// the interactive configuration flow.
func Save(s *Snapshot, configPath string) error {
	if err := s.Validate(); err != nil {
		return err
	}

	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.Set(keySessionDuration, s.Prefs.TotalDurationMinutes)
	v.Set(keySessionTiming, string(s.Prefs.TimingPreference))
	v.Set(keySessionPause, s.Prefs.PauseDurationSec)
	v.Set(keyGongEnabled, s.Prefs.GongEnabled)
	v.Set(keyGongSound, string(s.Prefs.GongPreference))
	v.Set(keyNotifyEnabled, s.Prefs.Notify)
	v.Set(keySessionCmd, s.Prefs.SessionCmd)
	v.Set(keySoundsDir, s.Prefs.SoundsDir)
	v.Set(keyDarkTheme, s.Prefs.DarkTheme)

	for t, seg := range s.Segments {
		if t == session.Silent {
			continue
		}

		v.Set(segmentKey(t, subkeyEnabled), seg.Enabled)
		v.Set(segmentKey(t, subkeyAudio), seg.SelectedAudioIDs)
		v.Set(segmentKey(t, subkeyRandom), seg.Random)
		v.Set(segmentKey(t, subkeyDuration), seg.DurationSec)

		if t == session.TechniqueReminder {
			v.Set(segmentKey(t, subkeyTechnique), string(seg.Technique))
		}
	}

	if err := v.WriteConfig(); err != nil {
		return errWriteConfig.Wrap(err)
	}

	return nil
}

// loadViperConfig loads configuration from Viper into the Snapshot.
func loadViperConfig(v *viper.Viper, s *Snapshot) error {
	s.Prefs.TotalDurationMinutes = v.GetInt(keySessionDuration)
	s.Prefs.TimingPreference = session.TimingPreference(
		v.GetString(keySessionTiming),
	)
	s.Prefs.PauseDurationSec = v.GetInt(keySessionPause)
	s.Prefs.GongEnabled = v.GetBool(keyGongEnabled)
	s.Prefs.GongPreference = session.GongPreference(v.GetString(keyGongSound))
	s.Prefs.Notify = v.GetBool(keyNotifyEnabled)
	s.Prefs.SessionCmd = v.GetString(keySessionCmd)
	s.Prefs.SoundsDir = v.GetString(keySoundsDir)
	s.Prefs.DarkTheme = v.GetBool(keyDarkTheme)

	for t := range s.Segments {
		if t == session.Silent {
			continue
		}

		seg := s.Segments[t]
		seg.Enabled = v.GetBool(segmentKey(t, subkeyEnabled))
		seg.SelectedAudioIDs = v.GetStringSlice(segmentKey(t, subkeyAudio))
		seg.Random = v.GetBool(segmentKey(t, subkeyRandom))
		seg.DurationSec = v.GetInt(segmentKey(t, subkeyDuration))

		if t == session.TechniqueReminder {
			seg.Technique = session.TechniqueType(
				v.GetString(segmentKey(t, subkeyTechnique)),
			)
		}

		s.Segments[t] = seg
	}

	return s.Validate()
}
