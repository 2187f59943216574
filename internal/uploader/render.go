package uploader

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	errorBanner = color.New(color.FgWhite, color.BgRed, color.Bold)
	heading     = color.New(color.Bold)
	faint       = color.New(color.Faint)
)

// Render writes v the way the terminal client shows it: the selected file and
// preview, an error banner when there is one, and the analysis result.
func Render(w io.Writer, v View) error {
	if v.FileName != "" {
		if _, err := faint.Fprintf(w, "Selected: %s (preview: %s)\n", v.FileName, v.Preview); err != nil {
			return err
		}
	}
	if v.State == Submitting {
		if _, err := fmt.Fprintln(w, "Processing..."); err != nil {
			return err
		}
	}
	if v.Error != "" {
		if _, err := errorBanner.Fprintf(w, " Error: %s ", v.Error); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	if v.Response != "" {
		if _, err := heading.Fprintln(w, "Analysis Results"); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s\n", v.Response); err != nil {
			return err
		}
	}
	return nil
}
