package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"github.com/ssargent/binscript/pkg/archive"
	"github.com/ssargent/binscript/pkg/langdef"
)

// reportError prints err to w. Parse errors get their full chain, in
// colour when w is a terminal.
func reportError(w io.Writer, err error) {
	var pe *langdef.ParseError
	if errors.As(err, &pe) {
		// context wrapped around the parse error, e.g. "capture 2v9...: "
		if prefix, ok := strings.CutSuffix(err.Error(), ": "+pe.Error()); ok {
			fmt.Fprintf(w, "%s:\n", prefix)
		}
		pe.Report(w, isTerminal(w))
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// outputCaptures displays capture metadata as a table or JSON
func outputCaptures(w io.Writer, infos []archive.Info, format string) error {
	if format == "json" {
		return outputCapturesJSON(w, infos)
	}
	return outputCapturesTable(w, infos)
}

func outputCapturesTable(w io.Writer, infos []archive.Info) error {
	if len(infos) == 0 {
		_, err := fmt.Fprintln(w, "No captures found")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tNAME\tSIZE\tCREATED\n")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", info.ID, info.Name, info.Size, info.Created.Format(time.RFC3339))
	}
	return tw.Flush()
}

func outputCapturesJSON(w io.Writer, infos []archive.Info) error {
	type captureJSON struct {
		ID      string    `json:"id"`
		Name    string    `json:"name"`
		Size    int       `json:"size"`
		Created time.Time `json:"created"`
	}

	out := make([]captureJSON, 0, len(infos))
	for _, info := range infos {
		out = append(out, captureJSON{ID: info.ID.String(), Name: info.Name, Size: info.Size, Created: info.Created})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
