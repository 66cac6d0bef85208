package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avialab/toolkiosk/internal/reconcile"
	"github.com/avialab/toolkiosk/internal/toolkit"
)

func TestFormatFullReturn(t *testing.T) {
	issued := reconcile.IssuedFromKit(toolkit.Standard)
	returned := make([]reconcile.ReturnedTool, 0, len(issued))
	for _, it := range issued {
		returned = append(returned, reconcile.ReturnedTool{ToolID: it.ToolID, Name: it.Name, Quantity: 1})
	}

	out := Format(reconcile.Compare(issued, returned))

	assert.Contains(t, out, "Выдано:    11")
	assert.Contains(t, out, "Все инструменты возвращены.")
	assert.NotContains(t, out, "Недостающие")
}

func TestFormatMissingAndExtra(t *testing.T) {
	issued := reconcile.IssuedFromKit(toolkit.Standard)
	returned := []reconcile.ReturnedTool{
		{ToolID: 1, Name: "Отвертка «-»", Quantity: 1},
		{ToolID: 0, Name: "Молоток", Quantity: 1},
	}

	out := Format(reconcile.Compare(issued, returned))

	assert.Contains(t, out, "Недостающие инструменты (10):")
	assert.Contains(t, out, "Бокорезы — 1 шт.")
	assert.Contains(t, out, "Лишние инструменты (1):")
	assert.Contains(t, out, "Молоток — 1 шт.")
	assert.Contains(t, out, "Молоток не входит в выданный комплект.")
}
