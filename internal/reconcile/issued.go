package reconcile

import "github.com/avialab/toolkiosk/internal/toolkit"

// IssuedFromKit converts the canonical toolkit into the issued list the
// engine expects, one of each tool.
func IssuedFromKit(kit []toolkit.Tool) []IssuedTool {
	issued := make([]IssuedTool, 0, len(kit))
	for _, t := range kit {
		issued = append(issued, IssuedTool{
			ToolID:       t.ID,
			Name:         t.Name,
			SerialNumber: t.SerialNumber,
			Quantity:     1,
		})
	}
	return issued
}
