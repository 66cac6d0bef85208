// Package report renders a comparison result as plain text for the kiosk
// display and the operator log.
package report

import (
	"fmt"
	"strings"

	"github.com/lithammer/dedent"

	"github.com/avialab/toolkiosk/internal/reconcile"
)

var header = strings.TrimSpace(dedent.Dedent(`
	Сверка инструментов
	-------------------
	Выдано:    %d
	Возвращено: %d
`))

// Format renders the report. A fully returned kit is one line of summary;
// discrepancies get a section each.
func Format(result reconcile.ComparisonResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, header, result.Summary.TotalIssued, result.Summary.TotalReturned)
	b.WriteString("\n")

	if result.AllReturned && len(result.ExtraTools) == 0 {
		b.WriteString("\nВсе инструменты возвращены.\n")
		return b.String()
	}

	if len(result.MissingTools) > 0 {
		fmt.Fprintf(&b, "\nНедостающие инструменты (%d):\n", len(result.MissingTools))
		for _, t := range result.MissingTools {
			fmt.Fprintf(&b, "  - %s — %d шт.\n", t.Name, t.MissingQuantity)
		}
	}

	if len(result.ExtraTools) > 0 {
		fmt.Fprintf(&b, "\nЛишние инструменты (%d):\n", len(result.ExtraTools))
		for _, t := range result.ExtraTools {
			fmt.Fprintf(&b, "  - %s — %d шт.\n", t.Name, t.Quantity)
		}
	}

	for _, d := range result.Discrepancies {
		if d.Type == "unexpected" {
			fmt.Fprintf(&b, "\nВнимание: %s не входит в выданный комплект.\n", d.Name)
		}
	}

	return b.String()
}
