// Package export renders stored segments as console tables or CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/hupe1980/sawt/model"
)

// FormatTimestamp renders seconds as MM:SS.cc.
func FormatTimestamp(seconds float64) string {
	mins := int(seconds / 60)
	secs := seconds - float64(mins)*60

	return fmt.Sprintf("%02d:%05.2f", mins, secs)
}

// WriteTable renders segments as an aligned console table.
func WriteTable(w io.Writer, videoID string, segments []model.StoredSegment) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "#\tVideo\tStart\tEnd\tText")

	for i, seg := range segments {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			i+1,
			videoID,
			FormatTimestamp(seg.Start),
			FormatTimestamp(seg.End),
			seg.Text,
		)
	}

	return tw.Flush()
}

// WriteCSV writes segments as CSV with a start,end,text header.
func WriteCSV(w io.Writer, segments []model.StoredSegment) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"start", "end", "text"}); err != nil {
		return err
	}

	for _, seg := range segments {
		record := []string{
			FormatTimestamp(seg.Start),
			FormatTimestamp(seg.End),
			seg.Text,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}

// WriteCSVFile writes segments as CSV to a file.
func WriteCSVFile(path string, segments []model.StoredSegment) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := WriteCSV(f, segments); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

// WriteSearchResults renders search results as an aligned console
// table, closest match first.
func WriteSearchResults(w io.Writer, results []model.SearchResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "Score\tVideo\tStart\tEnd\tText")

	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			strconv.FormatFloat(1-float64(r.Distance), 'f', 4, 64),
			r.VideoID,
			FormatTimestamp(r.Start),
			FormatTimestamp(r.End),
			r.Text,
		)
	}

	return tw.Flush()
}
