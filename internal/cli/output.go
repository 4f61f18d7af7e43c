package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/pgEdge/pgedge-salesmart/internal/report"
	"github.com/pgEdge/pgedge-salesmart/internal/transform"
)

// Output formats for query results.
const (
	formatTable = "table"
	formatJSON  = "json"
)

func renderTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)
	table.SetHeader(header)
	table.AppendBulk(rows)
	table.Render()
}

// cell renders one report cell for terminal output.
func cell(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func printReportTable(w io.Writer, t *report.Table, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(t)
	case formatTable, "":
		rows := make([][]string, 0, len(t.Rows))
		for _, r := range t.Rows {
			row := make([]string, len(r))
			for i, v := range r {
				row[i] = cell(v)
			}
			rows = append(rows, row)
		}
		renderTable(w, t.Columns, rows)
		fmt.Fprintf(w, "(%d rows)\n", len(t.Rows))
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

func printRunReport(w io.Writer, rep *transform.Report) {
	rows := make([][]string, 0, len(rep.Tables))
	for _, t := range rep.Tables {
		rows = append(rows, []string{
			t.Table,
			fmt.Sprint(t.Input),
			fmt.Sprint(t.Output),
			fmt.Sprint(len(t.Rejections)),
		})
	}
	renderTable(w, []string{"Table", "Input", "Output", "Rejected"}, rows)

	for _, t := range rep.Tables {
		for _, rej := range t.Rejections {
			fmt.Fprintf(w, "  rejected %s\n", rej)
		}
	}
	fmt.Fprintf(w, "Transform took %s\n", rep.Elapsed)
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}
