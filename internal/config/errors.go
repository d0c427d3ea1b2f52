package config

import "github.com/ayoisaiah/sati/internal/apperr"

var (
	errConfigOption = &apperr.Error{
		Message: "config option error",
	}

	errReadConfig = &apperr.Error{
		Message: "reading config file failed",
	}

	errWriteConfig = &apperr.Error{
		Message: "writing default config failed",
	}

	errInvalidTimingPreference = &apperr.Error{
		Message: "timing preference must be 'total' or 'silent', got %q",
	}

	errInvalidGongPreference = &apperr.Error{
		Message: "gong preference must be 'none', 'g1', or 'g2', got %q",
	}

	errInvalidTechnique = &apperr.Error{
		Message: "technique must be 'anapana' or 'vipassana', got %q",
	}

	errInvalidDuration = &apperr.Error{
		Message: "session duration must be between %d and %d minutes, got %d",
	}

	errInvalidPause = &apperr.Error{
		Message: "pause duration must be a positive number of seconds, got %d",
	}

	errUnknownSegment = &apperr.Error{
		Message: "unknown segment: %s",
	}
)
