package export

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"labscope/app"
)

// ReportMarkdown renders a derived view as a markdown summary: the numeric
// summary, the grouped statistics table and the histogram table. Meant for
// copy-out and for HTML rendering via ReportHTML.
func ReportMarkdown(view app.DerivedView) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s catalog summary\n\n", view.Resource)
	fmt.Fprintf(&b, "%d of %d records match the active filter.\n\n", view.FilteredCount, view.TotalCount)
	if view.FetchError != "" {
		fmt.Fprintf(&b, "> Data may be stale: %s\n\n", view.FetchError)
	}

	if view.Aggregation == nil {
		b.WriteString("No records match. Adjust the filters to see statistics.\n")
		return []byte(b.String())
	}

	sum := view.Aggregation.Summary
	b.WriteString("## Price summary\n\n")
	fmt.Fprintf(&b, "| Average | Minimum | Maximum | Priced records |\n")
	fmt.Fprintf(&b, "|---:|---:|---:|---:|\n")
	fmt.Fprintf(&b, "| %.0f | %.0f | %.0f | %d |\n\n", sum.Avg, sum.Min, sum.Max, sum.NumericCount)

	if len(view.Aggregation.Groups) > 0 {
		b.WriteString("## By group\n\n")
		b.WriteString("| Group | Count | Average price |\n|---|---:|---:|\n")
		for _, g := range view.Aggregation.Groups {
			key := g.Key
			if key == "" {
				key = "(unspecified)"
			}
			fmt.Fprintf(&b, "| %s | %d | %.0f |\n", key, g.Count, g.Avg)
		}
		b.WriteString("\n")
	}

	if len(view.Aggregation.Histogram) > 0 {
		b.WriteString("## Price distribution\n\n")
		b.WriteString("| Bucket | Count |\n|---:|---:|\n")
		for _, bucket := range view.Aggregation.Histogram {
			fmt.Fprintf(&b, "| %.0f+ | %d |\n", bucket.Lower, bucket.Count)
		}
		b.WriteString("\n")
	}

	if view.Distribution != nil {
		d := view.Distribution
		b.WriteString("## Shape\n\n")
		fmt.Fprintf(&b, "Median %.0f, std dev %.1f, IQR %.0f to %.0f, skewness %.2f.\n",
			d.Median, d.StdDev, d.Q25, d.Q75, d.Skewness)
	}

	return []byte(b.String())
}

// ReportHTML renders the markdown report to an HTML fragment for the
// presentation layer
func ReportHTML(view app.DerivedView) []byte {
	md := ReportMarkdown(view)
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	return markdown.ToHTML(md, p, renderer)
}
