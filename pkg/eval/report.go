package eval

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// WriteReport renders one row per evaluated model for side-by-side
// comparison.
func WriteReport(w io.Writer, summaries []*Summary) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)
	table.SetHeader([]string{
		"Model",
		"Syntax\n(avg /100)",
		"Resources\n(%)",
		"Passed",
	})

	for _, s := range summaries {
		table.Append([]string{
			s.Model,
			fmt.Sprintf("%.1f", s.AverageSyntaxScore),
			fmt.Sprintf("%.1f", s.ResourceRate),
			fmt.Sprintf("%d/%d", s.Passed, s.TestCount),
		})
	}

	table.Render()
}

// WriteDetails renders the per-prompt breakdown of a single run.
func WriteDetails(w io.Writer, summary *Summary) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)
	table.SetHeader([]string{"Prompt", "Score", "Words", "Resources"})

	for _, r := range summary.Results {
		hasRes := "no"
		if r.HasResource {
			hasRes = "yes"
		}
		table.Append([]string{
			r.Prompt,
			fmt.Sprintf("%d", r.SyntaxScore),
			fmt.Sprintf("%d", r.WordCount),
			hasRes,
		})
	}

	table.Render()
}
