package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-salesmart/internal/olap"
	"github.com/pgEdge/pgedge-salesmart/internal/report"
	"github.com/pgEdge/pgedge-salesmart/internal/transform"
)

func TestCommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"seed", "etl", "query", "queries", "serve", "status", "version"} {
		require.True(t, names[want], want)
	}
}

func TestParseFilters(t *testing.T) {
	f, err := parseFilters(nil)
	require.NoError(t, err)
	require.Nil(t, f)

	f, err = parseFilters([]string{"continent=Asia, Europe", "gender=female", "continent=Africa", "city="})
	require.NoError(t, err)
	require.Equal(t, olap.Filter{
		"continent": {"Asia", "Europe", "Africa"},
		"gender":    {"female"},
	}, f)

	for _, bad := range []string{"continent", "=Asia"} {
		_, err := parseFilters([]string{bad})
		require.ErrorIs(t, err, olap.ErrInvalidFilter, bad)
	}
}

func TestCell(t *testing.T) {
	require.Equal(t, "", cell(nil))
	require.Equal(t, "12.50", cell(json.Number("12.50")))
	require.Equal(t, "3", cell(int64(3)))
	require.Equal(t, "true", cell(true))
}

func sampleTable() *report.Table {
	return &report.Table{
		Query:   "yearly_sales",
		Columns: []string{"year", "total_sales"},
		Rows:    [][]any{{2021, json.Number("1050.00")}},
	}
}

func TestPrintReportTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printReportTable(&buf, sampleTable(), formatTable))
	out := buf.String()
	require.Contains(t, out, "total_sales")
	require.Contains(t, out, "1050.00")
	require.Contains(t, out, "(1 rows)")
}

func TestPrintReportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printReportTable(&buf, sampleTable(), formatJSON))
	require.JSONEq(t, `{"query":"yearly_sales","columns":["year","total_sales"],"rows":[[2021,1050.00]]}`, buf.String())
}

func TestPrintReportUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	require.Error(t, printReportTable(&buf, sampleTable(), "xml"))
}

func TestPrintRunReport(t *testing.T) {
	rep := &transform.Report{Tables: []transform.TableReport{
		{Table: "dim_user", Input: 3, Output: 3},
		{Table: "fact_sales", Input: 5, Output: 4, Rejections: []transform.Rejection{
			{Table: "fact_sales", Row: 2, Reason: "negative quantity"},
		}},
	}}

	var buf bytes.Buffer
	printRunReport(&buf, rep)
	out := buf.String()
	require.Contains(t, out, "dim_user")
	require.Contains(t, out, "fact_sales")
	require.Contains(t, out, "negative quantity")
}

func TestJoinOrDash(t *testing.T) {
	require.Equal(t, "-", joinOrDash(nil))
	require.Equal(t, "year, city", joinOrDash([]string{"year", "city"}))
}
