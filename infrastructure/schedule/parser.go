package schedule

import (
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTableID is the id of the results table on the schedule page.
const DefaultTableID = "schedule"

// ParseTable extracts the table with the given id from an HTML document.
//
// Headers come from the last header row of thead. Body rows open with a
// rank cell rendered as th rather than td, so the first header is dropped
// to line the headers up with the td cells. Rows without td cells, such as
// repeated header rows, are skipped.
func ParseTable(r io.Reader, tableID string) (*Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	table := doc.Find("table#" + tableID).First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: table %q not found", ErrMalformedTable, tableID)
	}

	headers := table.Find("thead tr").Last().Find("th").Map(func(_ int, s *goquery.Selection) string {
		return CleanCell(s.Text())
	})
	if len(headers) < 2 {
		return nil, fmt.Errorf("%w: table %q has %d headers", ErrMalformedTable, tableID, len(headers))
	}
	headers = headers[1:]

	var rows [][]string
	var rowErr error
	table.Find("tbody tr").EachWithBreak(func(i int, tr *goquery.Selection) bool {
		cells := tr.Find("td").Map(func(_ int, s *goquery.Selection) string {
			return s.Text()
		})
		if len(cells) == 0 {
			return true
		}
		if len(cells) != len(headers) {
			rowErr = fmt.Errorf("%w: row %d has %d cells, want %d", ErrMalformedTable, i, len(cells), len(headers))
			return false
		}
		rows = append(rows, cells)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	return &Table{Headers: headers, Rows: rows}, nil
}
