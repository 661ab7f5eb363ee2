package render

import (
	"context"
	"slices"

	"github.com/matzehuels/waterfall/pkg/errors"
	"github.com/matzehuels/waterfall/pkg/snapshot"
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// Formats lists the supported output formats.
var Formats = []string{FormatSVG, FormatJSON, FormatPNG, FormatPDF}

// PNGScale is the scale factor used for PNG output.
const PNGScale = 2.0

// ValidateFormat reports whether format is supported.
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, format) {
		return errors.New(errors.ErrCodeUnsupported, "unknown format %q (want one of %v)", format, Formats)
	}
	return nil
}

// Render produces the snapshot in the given format. SVG options also apply
// to PNG and PDF output.
func Render(ctx context.Context, s *snapshot.Snapshot, format string, opts ...SVGOption) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	switch format {
	case FormatJSON:
		return RenderJSON(s)
	case FormatPNG:
		return ToPNG(ctx, RenderSVG(s, opts...), PNGScale)
	case FormatPDF:
		return ToPDF(ctx, RenderSVG(s, opts...))
	default:
		return RenderSVG(s, opts...), nil
	}
}
