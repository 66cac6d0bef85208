package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avialab/toolkiosk/internal/toolkit"
)

func returnedFromIssued(issued []IssuedTool) []ReturnedTool {
	returned := make([]ReturnedTool, 0, len(issued))
	for _, it := range issued {
		returned = append(returned, ReturnedTool{
			ToolID:       it.ToolID,
			Name:         it.Name,
			SerialNumber: it.SerialNumber,
			Quantity:     it.Quantity,
		})
	}
	return returned
}

func TestCompareFullReturn(t *testing.T) {
	issued := IssuedFromKit(toolkit.Standard)
	result := Compare(issued, returnedFromIssued(issued))

	assert.True(t, result.AllReturned)
	assert.Empty(t, result.MissingTools)
	assert.Empty(t, result.ExtraTools)
	assert.Empty(t, result.Discrepancies)
	assert.Equal(t, Summary{
		TotalIssued:   toolkit.Size,
		TotalReturned: toolkit.Size,
	}, result.Summary)
}

func TestCompareReducedQuantityIsMissing(t *testing.T) {
	issued := []IssuedTool{
		{ToolID: 1, Name: "Отвертка «-»", Quantity: 3},
		{ToolID: 2, Name: "Отвертка «+»", Quantity: 1},
	}
	returned := []ReturnedTool{
		{ToolID: 1, Name: "Отвертка «-»", Quantity: 1},
		{ToolID: 2, Name: "Отвертка «+»", Quantity: 1},
	}

	result := Compare(issued, returned)

	assert.False(t, result.AllReturned)
	require.Len(t, result.MissingTools, 1)
	assert.Equal(t, 1, result.MissingTools[0].ToolID)
	assert.Equal(t, 2, result.MissingTools[0].MissingQuantity)
	assert.Empty(t, result.ExtraTools)
}

func TestCompareUnissuedToolIsExtra(t *testing.T) {
	issued := []IssuedTool{
		{ToolID: 1, Name: "Отвертка «-»", Quantity: 1},
	}
	returned := []ReturnedTool{
		{ToolID: 1, Name: "Отвертка «-»", Quantity: 1},
		{ToolID: 99, Name: "Молоток", Quantity: 2},
	}

	result := Compare(issued, returned)

	// Extra tools do not prevent a full return.
	assert.True(t, result.AllReturned)
	assert.Empty(t, result.MissingTools)
	require.Len(t, result.ExtraTools, 1)
	assert.Equal(t, 99, result.ExtraTools[0].ToolID)
	assert.Equal(t, 2, result.ExtraTools[0].Quantity)

	require.Len(t, result.Discrepancies, 1)
	assert.Equal(t, "unexpected", result.Discrepancies[0].Type)
	assert.Equal(t, 0, result.Discrepancies[0].IssuedQty)
	assert.Equal(t, 2, result.Discrepancies[0].ReturnedQty)
	assert.Equal(t, 2, result.Discrepancies[0].Difference)
}

func TestCompareExcessQuantity(t *testing.T) {
	issued := []IssuedTool{
		{ToolID: 6, Name: "Пассатижи", Quantity: 1},
	}
	returned := []ReturnedTool{
		{ToolID: 6, Name: "Пассатижи", Quantity: 1},
		{ToolID: 6, Name: "Пассатижи", Quantity: 2},
	}

	result := Compare(issued, returned)

	assert.True(t, result.AllReturned)
	require.Len(t, result.ExtraTools, 1)
	assert.Equal(t, 2, result.ExtraTools[0].Quantity)
	require.Len(t, result.Discrepancies, 1)
	assert.Equal(t, "excess", result.Discrepancies[0].Type)
	assert.Equal(t, 1, result.Discrepancies[0].IssuedQty)
	assert.Equal(t, 3, result.Discrepancies[0].ReturnedQty)
	assert.Equal(t, 2, result.Discrepancies[0].Difference)
}

func TestCompareStandardKitWithOneMissing(t *testing.T) {
	issued := IssuedFromKit(toolkit.Standard)
	returned := make([]ReturnedTool, 0, 10)
	for id := 1; id <= 10; id++ {
		kit, ok := toolkit.ByID(id)
		require.True(t, ok)
		returned = append(returned, ReturnedTool{
			ToolID:   id,
			Name:     kit.Name,
			Quantity: 1,
		})
	}

	result := Compare(issued, returned)

	assert.False(t, result.AllReturned)
	require.Len(t, result.MissingTools, 1)
	assert.Equal(t, 11, result.MissingTools[0].ToolID)
	assert.Equal(t, "Бокорезы", result.MissingTools[0].Name)
	assert.Equal(t, 1, result.MissingTools[0].MissingQuantity)
	assert.Empty(t, result.ExtraTools)
	assert.Equal(t, Summary{
		TotalIssued:   11,
		TotalReturned: 10,
		MissingCount:  1,
		ExtraCount:    0,
	}, result.Summary)
}

func TestCompareEmptyInputs(t *testing.T) {
	result := Compare(nil, nil)

	assert.True(t, result.AllReturned)
	assert.Empty(t, result.MissingTools)
	assert.Empty(t, result.ExtraTools)
	assert.Equal(t, Summary{}, result.Summary)
}

func TestCompareEmptyReturnedAllMissing(t *testing.T) {
	issued := IssuedFromKit(toolkit.Standard)
	result := Compare(issued, nil)

	assert.False(t, result.AllReturned)
	assert.Len(t, result.MissingTools, toolkit.Size)
	assert.Equal(t, toolkit.Size, result.Summary.MissingCount)
	assert.Equal(t, 0, result.Summary.TotalReturned)
}

func TestCompareNegativeQuantitiesTreatedAsZero(t *testing.T) {
	issued := []IssuedTool{
		{ToolID: 1, Name: "Отвертка «-»", Quantity: 1},
	}
	returned := []ReturnedTool{
		{ToolID: 1, Name: "Отвертка «-»", Quantity: -5},
	}

	result := Compare(issued, returned)

	assert.False(t, result.AllReturned)
	require.Len(t, result.MissingTools, 1)
	assert.Equal(t, 1, result.MissingTools[0].MissingQuantity)
	assert.Equal(t, 0, result.Summary.TotalReturned)
}

func TestCompareZeroNetQuantityAppearsNowhere(t *testing.T) {
	// A tool added and then removed aggregates to zero quantity; it must
	// not show up as missing or extra.
	returned := []ReturnedTool{
		{ToolID: 99, Name: "Молоток", Quantity: 0},
	}

	result := Compare(nil, returned)

	assert.True(t, result.AllReturned)
	assert.Empty(t, result.MissingTools)
	assert.Empty(t, result.ExtraTools)
}

func TestCompareNonCanonicalToolsKeyedByName(t *testing.T) {
	// Two manual entries with the same name and no canonical id sum into
	// one extra entry; distinct names stay separate.
	returned := []ReturnedTool{
		{ToolID: 0, Name: "Молоток", Quantity: 1},
		{ToolID: 0, Name: "Молоток", Quantity: 1},
		{ToolID: 0, Name: "Зубило", Quantity: 1},
	}

	result := Compare(nil, returned)

	require.Len(t, result.ExtraTools, 2)
	assert.Equal(t, "Молоток", result.ExtraTools[0].Name)
	assert.Equal(t, 2, result.ExtraTools[0].Quantity)
	assert.Equal(t, "Зубило", result.ExtraTools[1].Name)
	assert.Equal(t, 1, result.ExtraTools[1].Quantity)
	assert.Equal(t, 2, result.Summary.ExtraCount)
}

func TestCompareDuplicateDetectionsSum(t *testing.T) {
	issued := []IssuedTool{
		{ToolID: 2, Name: "Отвертка «+»", Quantity: 2},
	}
	returned := []ReturnedTool{
		{ToolID: 2, Name: "Отвертка «+»", Quantity: 1},
		{ToolID: 2, Name: "Отвертка «+»", Quantity: 1},
	}

	result := Compare(issued, returned)

	assert.True(t, result.AllReturned)
	assert.Empty(t, result.MissingTools)
	assert.Empty(t, result.ExtraTools)
}
