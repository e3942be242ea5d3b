package cleaner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/pagewalk/models"
)

const pricesTable = `<table id="prices">
  <thead><tr><th>Name</th><th> Price </th></tr></thead>
  <tbody>
    <tr><td>Apple</td><td>1.00</td><td>extra</td></tr>
    <tr><td> Pear </td><td>2.50</td></tr>
    <tr></tr>
  </tbody>
</table>`

func layout(from string) TableLayout {
	return TableLayout{
		HeadersFrom:     from,
		RowSelector:     "tbody tr",
		CellSelector:    "td",
		HeaderSelectors: "th, thead td",
	}
}

func TestParseTable_FirstRow(t *testing.T) {
	tbl, err := ParseTable(pricesTable, layout(models.HeadersFromFirstRow))
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Price"}, tbl.Headers)
	assert.Equal(t, []map[string]string{
		{"Name": "Apple", "Price": "1.00"},
		{"Name": "Pear", "Price": "2.50"},
	}, tbl.Rows)
}

func TestParseTable_FirstRowWithoutThead(t *testing.T) {
	html := `<table><tr><th>A</th><th>B</th></tr><tr><td>1</td><td>2</td></tr></table>`
	tbl, err := ParseTable(html, layout(models.HeadersFromFirstRow))
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, tbl.Headers)
	assert.Equal(t, []map[string]string{{"A": "1", "B": "2"}}, tbl.Rows)
}

func TestParseTable_CustomSelectors(t *testing.T) {
	l := layout(models.HeadersFromCustomSelectors)
	l.HeaderSelectors = "thead th:first-child"
	tbl, err := ParseTable(pricesTable, l)
	require.NoError(t, err)

	assert.Equal(t, []string{"Name"}, tbl.Headers)
	assert.Equal(t, []map[string]string{{"Name": "Apple"}, {"Name": "Pear"}}, tbl.Rows)
}

func TestParseTable_Manual(t *testing.T) {
	l := layout(models.HeadersFromManual)
	l.ManualHeaders = []string{"fruit", "cost", "note"}
	tbl, err := ParseTable(pricesTable, l)
	require.NoError(t, err)

	assert.Equal(t, []string{"fruit", "cost", "note"}, tbl.Headers)
	assert.Equal(t, map[string]string{"fruit": "Apple", "cost": "1.00", "note": "extra"}, tbl.Rows[0])
	assert.Equal(t, map[string]string{"fruit": "Pear", "cost": "2.50"}, tbl.Rows[1])
}

func TestParseTable_Generated(t *testing.T) {
	tbl, err := ParseTable(pricesTable, layout(models.HeadersFromGenerated))
	require.NoError(t, err)

	assert.Equal(t, []string{"column1", "column2", "column3"}, tbl.Headers)
	assert.Len(t, tbl.Rows, 2)
	assert.Equal(t, "extra", tbl.Rows[0]["column3"])
}

func TestParseTable_Empty(t *testing.T) {
	_, err := ParseTable("", layout(models.HeadersFromFirstRow))
	assert.Error(t, err)
}
