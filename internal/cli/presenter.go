// # Naming Conventions
//
//   - Display* functions write formatted output to an [io.Writer].
//     They handle presentation logic and colorization.
//   - Print* functions write informational banners that quiet and JSON
//     modes suppress.

package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/agbru/lasercalc/internal/config"
	"github.com/agbru/lasercalc/internal/format"
	"github.com/agbru/lasercalc/internal/orchestration"
	"github.com/agbru/lasercalc/internal/params"
	"github.com/agbru/lasercalc/internal/report"
	"github.com/agbru/lasercalc/internal/selection"
	"github.com/agbru/lasercalc/internal/ui"
)

// PrintExecutionConfig displays the drawing, the service and the machine
// parameters the estimate will be computed with.
func PrintExecutionConfig(cfg config.AppConfig, file selection.SourceFile, out io.Writer) {
	theme := ui.GetCurrentTheme()
	fmt.Fprintf(out, "--- Estimation Request ---\n")
	fmt.Fprintf(out, "Drawing %s (%d bytes, %s) on %s with a timeout of %s.\n",
		colorize(theme.Primary, file.Name), file.Size(), file.MediaType,
		colorize(theme.Secondary, cfg.URL), colorize(theme.Warning, cfg.Timeout.String()))
	for _, spec := range params.Specs() {
		fmt.Fprintf(out, "  %s %s %s\n",
			padRight(spec.Label, 24), cfg.Params.FormValue(spec.Field), colorize(theme.Secondary, spec.Unit))
	}
	fmt.Fprintln(out)
}

// DisplayReport prints the per-operation breakdown followed by the totals.
// Every figure is shown as the service returned it.
func DisplayReport(out io.Writer, r report.Report) {
	theme := ui.GetCurrentTheme()
	fmt.Fprintf(out, "\n--- Estimated Machining Time ---\n")
	fmt.Fprintf(out, "%s%s%s\n",
		colorize(theme.Bold, padRight("Operation", tableLabelWidth)),
		colorize(theme.Bold, padRight("Time", tableTimeWidth)),
		colorize(theme.Bold, "Distance / Area"))
	for _, row := range r.Rows() {
		fmt.Fprintf(out, "%s%s%s\n",
			colorize(theme.LayerColor(row.Label), padRight(row.Label, tableLabelWidth)),
			padRight(format.FormatSeconds(row.Seconds), tableTimeWidth),
			rowMeasure(row))
	}
	fmt.Fprintf(out, "\nTotal time:        %s\n", colorize(theme.Bold+theme.Primary, r.FormattedTime))
	if r.EstimatedTotalSeconds != nil {
		fmt.Fprintf(out, "Total seconds:     %s\n", format.FormatSeconds(*r.EstimatedTotalSeconds))
	}
	fmt.Fprintf(out, "Burned distance:   %s\n", format.FormatMillimetres(r.TotalDistanceBurnedMM))
	fmt.Fprintf(out, "Transit distance:  %s\n", format.FormatMillimetres(r.TotalDistanceTransitMM))
}

func rowMeasure(row report.Row) string {
	if row.Label == "Raster" {
		return format.FormatArea(row.Area)
	}
	return format.FormatMillimetres(row.Distance)
}

// DisplayQuietResult prints only the formatted total, for scripts.
func DisplayQuietResult(out io.Writer, r report.Report) {
	fmt.Fprintln(out, r.FormattedTime)
}

// DisplayJSON prints the session snapshot as indented JSON. The drawing's
// payload is never included.
func DisplayJSON(out io.Writer, s orchestration.Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// DisplayError prints a failure message in the error color.
func DisplayError(out io.Writer, msg string) {
	theme := ui.GetCurrentTheme()
	fmt.Fprintf(out, "%s %s\n", colorize(theme.Error, "✗"), msg)
}

// DisplayHealth reports that the service answered its health check.
func DisplayHealth(out io.Writer, baseURL string) {
	theme := ui.GetCurrentTheme()
	fmt.Fprintf(out, "%s Estimation service at %s is reachable\n", colorize(theme.Success, "✓"), baseURL)
}
