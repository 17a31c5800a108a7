package printers

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/macromouse/pkg/macro"
	"tableflip.dev/macromouse/pkg/store"
	"tableflip.dev/macromouse/pkg/sync"
)

type PrettyPrint struct {
	ShowID bool
}

func (pp *PrettyPrint) NewLine() {
	fmt.Println("")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Println(title)
}

// Macros renders query results, most used first, as the store returned
// them.
func (pp *PrettyPrint) Macros(views ...store.MacroView) {
	if len(views) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Print(" none\n\n")
		return
	}
	table := uitable.New()
	table.MaxColWidth = 60
	if pp.ShowID {
		table.AddRow("ID", "CATEGORY", "NAME", "USES", "CONTENT")
	} else {
		table.AddRow("CATEGORY", "NAME", "USES", "CONTENT")
	}
	for _, v := range views {
		preview := firstLine(v.Content)
		if pp.ShowID {
			table.AddRow(v.ID, v.Category, v.Name, v.Uses, preview)
		} else {
			table.AddRow(v.Category, v.Name, v.Uses, preview)
		}
	}
	fmt.Println(table)
	fmt.Println("")
}

// Categories renders the display-ordered category list.
func (pp *PrettyPrint) Categories(cats []*macro.Category) {
	table := uitable.New()
	table.MaxColWidth = 48
	if pp.ShowID {
		table.AddRow("ID", "NAME", "HIDDEN", "DESCRIPTION")
	} else {
		table.AddRow("NAME", "HIDDEN", "DESCRIPTION")
	}
	for _, cat := range cats {
		hidden := ""
		if cat.Hidden {
			hidden = "hidden"
		}
		if pp.ShowID {
			table.AddRow(cat.ID, cat.Name, hidden, cat.Description)
		} else {
			table.AddRow(cat.Name, hidden, cat.Description)
		}
	}
	fmt.Println(table)
	fmt.Println("")
}

// Copied confirms a clipboard write.
func (pp *PrettyPrint) Copied(name string) {
	g := color.New(color.FgGreen)
	_, _ = g.Printf("Copied %q to clipboard.\n", name)
}

// SyncReport renders one row per file with a colored outcome.
func (pp *PrettyPrint) SyncReport(results []sync.Result) {
	table := uitable.New()
	table.MaxColWidth = 60
	table.AddRow("FILE", "RESULT", "DETAIL")
	for _, r := range results {
		detail := r.Detail
		if r.Err != nil {
			detail = fmt.Sprintf("%s: %v", r.Detail, r.Err)
		}
		table.AddRow(r.File, stateLabel(r.State), detail)
	}
	fmt.Println(table)
	fmt.Println(sync.Summarize(results))
}

func stateLabel(s sync.State) string {
	switch s {
	case sync.StateUploaded:
		return color.New(color.FgGreen).Sprint("uploaded")
	case sync.StateDownloaded:
		return color.New(color.FgBlue).Sprint("downloaded")
	case sync.StateInSync:
		return color.New(color.FgGreen).Sprint("in sync")
	case sync.StateSkipped:
		return color.New(color.Faint).Sprint("skipped")
	default:
		return color.New(color.FgRed).Sprint("failed")
	}
}

// Paths renders resolved file locations.
func (pp *PrettyPrint) Paths(rows [][2]string) {
	table := uitable.New()
	table.MaxColWidth = 80
	table.AddRow("FILE", "PATH")
	for _, row := range rows {
		table.AddRow(row[0], row[1])
	}
	fmt.Println(table)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}
