package view

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
)

// Render writes v as plain text. now anchors the relative timestamps.
func Render(w io.Writer, v View, now time.Time) error {
	if v.Loading {
		_, err := fmt.Fprintln(w, v.LoadingText)
		return err
	}

	if v.Error != "" {
		if _, err := fmt.Fprintf(w, "Error: %s\n", v.Error); err != nil {
			return err
		}
	}

	if v.Empty {
		_, err := fmt.Fprintf(w, "%s\n%s\n", v.EmptyMessage, v.EmptyHint)
		return err
	}

	if len(v.Rows) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tAMOUNT\tCARD\tZIP\tCREATED")
	for _, r := range v.Rows {
		fmt.Fprintf(tw, "%s...\t%s\t%s\t%s\t%s\t%s\t%s (%s)\n",
			r.ShortID, r.Name, r.Status, r.Amount, r.Card, r.ZipCode,
			r.Created, humanize.RelTime(r.CreatedAt, now, "ago", "from now"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if v.ShowPagination {
		if _, err := fmt.Fprintf(w, "\n%s\n%s\n", v.RangeLabel, pageStrip(v)); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "\n%s\n", v.Summary)
	return err
}

// pageStrip renders the page control, e.g. "< Previous 1 ... 4 [5] 6 ... 10 Next >".
func pageStrip(v View) string {
	parts := make([]string, 0, len(v.Pages)+2)
	if v.HasPrevious {
		parts = append(parts, "< Previous")
	}
	for _, p := range v.Pages {
		if !p.Ellipsis && p.Number == v.State.CurrentPage {
			parts = append(parts, "["+strconv.Itoa(p.Number)+"]")
			continue
		}
		parts = append(parts, p.String())
	}
	if v.HasNext {
		parts = append(parts, "Next >")
	}
	return strings.Join(parts, " ")
}
