package cleaner

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/pagewalk/models"
)

// TableLayout tells ParseTable where headers, rows and cells live.
type TableLayout struct {
	HeadersFrom     string
	RowSelector     string
	CellSelector    string
	HeaderSelectors string
	ManualHeaders   []string
}

// Table is a parsed table: one map per non-empty row, keyed by header.
type Table struct {
	Headers []string
	Rows    []map[string]string
}

// ParseTable parses the outer HTML of a single table element.
//
// Cells beyond the number of headers are dropped and rows without any
// matched cell are skipped.
func ParseTable(tableHTML string, layout TableLayout) (*Table, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(tableHTML))
	if err != nil {
		return nil, fmt.Errorf("parse table: %w", err)
	}
	table := doc.Find("body > *").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("parse table: empty fragment")
	}

	headers := tableHeaders(table, layout)

	rows := []map[string]string{}
	table.Find(layout.RowSelector).Each(func(_ int, row *goquery.Selection) {
		data := make(map[string]string)
		row.Find(layout.CellSelector).Each(func(i int, cell *goquery.Selection) {
			if i < len(headers) {
				data[headers[i]] = strings.TrimSpace(cell.Text())
			}
		})
		if len(data) > 0 {
			rows = append(rows, data)
		}
	})

	return &Table{Headers: headers, Rows: rows}, nil
}

func tableHeaders(table *goquery.Selection, layout TableLayout) []string {
	switch layout.HeadersFrom {
	case models.HeadersFromFirstRow:
		headerRow := table.Find("thead tr").First()
		if headerRow.Length() == 0 {
			headerRow = table.Find("tr").First()
		}
		return texts(headerRow.Find("th, td"))
	case models.HeadersFromCustomSelectors:
		return texts(table.Find(layout.HeaderSelectors))
	case models.HeadersFromManual:
		return append([]string(nil), layout.ManualHeaders...)
	default:
		n := table.Find(layout.RowSelector).First().Find(layout.CellSelector).Length()
		headers := make([]string, n)
		for i := range headers {
			headers[i] = fmt.Sprintf("column%d", i+1)
		}
		return headers
	}
}

func texts(s *goquery.Selection) []string {
	out := make([]string, 0, s.Length())
	s.Each(func(_ int, el *goquery.Selection) {
		out = append(out, strings.TrimSpace(el.Text()))
	})
	return out
}
