package session

// aggregate computes the global detected-tool list: the concatenation, in
// upload order, of every attached image's detections, followed by manual
// entries, minus tools the operator removed from the review list. Duplicate
// detections of the same tool stay separate entries; quantities sum, nothing
// is deduplicated.
func aggregate(images []imageEntry, manual []DetectedTool, removed map[string]struct{}) []DetectedTool {
	tools := make([]DetectedTool, 0)
	for _, img := range images {
		if img.result == nil {
			continue
		}
		for _, t := range img.result.Tools {
			if _, ok := removed[t.ID]; ok {
				continue
			}
			tools = append(tools, t)
		}
	}
	for _, t := range manual {
		if _, ok := removed[t.ID]; ok {
			continue
		}
		tools = append(tools, t)
	}
	return tools
}

// totalQuantity sums quantities over an aggregated list. This is the "tools
// found" figure downstream.
func totalQuantity(tools []DetectedTool) int {
	total := 0
	for _, t := range tools {
		if t.Quantity > 0 {
			total += t.Quantity
		}
	}
	return total
}
