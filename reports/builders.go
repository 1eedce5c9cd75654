package reports

import (
	"strconv"

	"github.com/zefrenchwan/docfilters.git/filters"
	"github.com/zefrenchwan/docfilters.git/mutations"
	"github.com/zefrenchwan/docfilters.git/nodes"
	"github.com/zefrenchwan/docfilters.git/predicates"
)

// FromElements returns one row per element: id, category, name, then the columns parameters.
// A missing parameter is an empty value.
func FromElements(doc nodes.Document, elements []nodes.Element, format Format, filename string, columns ...string) Report {
	header := append([]string{"Element Id", "Category", "Name"}, columns...)
	report := NewReport(format, filename, header...)
	resolvers := predicates.DefaultResolvers()

	for _, element := range elements {
		categoryName := ""
		if doc != nil {
			if category, found := doc.Category(element.Category); found {
				categoryName = category.Name
			}
		}

		row := []string{formatId(element.Id), categoryName, element.Name}
		for _, column := range columns {
			if parameter, found := predicates.Resolve(resolvers, element, column); found && parameter.HasValue {
				row = append(row, parameter.Value.String())
			} else {
				row = append(row, "")
			}
		}

		report.AddRow(row...)
	}

	return report
}

// FromSummary returns one row per outcome of a mutation run
func FromSummary(summary mutations.Summary, format Format, filename string) Report {
	report := NewReport(format, filename, "Element Id", "Status", "Detail")
	if summary.Err != nil {
		report.EmptyMessage = "Mutation not applied: " + summary.Err.Error()
		return report
	}

	report.EmptyMessage = "No element to mutate."
	for _, outcome := range summary.Outcomes {
		report.AddRow(formatId(outcome.Element), outcome.Status.String(), outcome.Detail)
	}

	return report
}

// FromSweep returns one row per unused filter.
// Names maps filter ids to names, missing names are empty.
func FromSweep(result filters.SweepResult, names map[nodes.ElementId]string, format Format, filename string) Report {
	report := NewReport(format, filename, "Filter Id", "Filter Name")
	report.EmptyMessage = "No unused filter found."
	for _, id := range result.Unused {
		report.AddRow(formatId(id), names[id])
	}

	return report
}

// formatId returns the id as a decimal string
func formatId(id nodes.ElementId) string {
	return strconv.FormatInt(int64(id), 10)
}
