package timeline

import "github.com/ayoisaiah/sati/internal/apperr"

var errNothingToExport = &apperr.Error{
	Message: "the timeline contains no exportable audio entries",
}
