// Package reconcile compares the set of returned tools against the issued
// toolkit and reports what is missing and what is extra. The comparison is a
// pure function over final quantities: callers aggregate detections first,
// the engine never sees individual add/remove events.
package reconcile

// IssuedTool is one entry of the issued toolkit.
type IssuedTool struct {
	ToolID       int    `json:"tool_id"`
	Name         string `json:"name"`
	SerialNumber string `json:"serial_number"`
	Quantity     int    `json:"quantity"`
}

// ReturnedTool is one entry of the aggregated returned-tool list. ToolID is
// the canonical toolkit id when the detection maps to a kit tool; tools that
// do not map to the kit carry ToolID 0 and are identified by Name alone.
type ReturnedTool struct {
	ToolID       int    `json:"tool_id"`
	Name         string `json:"name"`
	SerialNumber string `json:"serial_number"`
	Quantity     int    `json:"quantity"`
}

// MissingTool is an issued tool that was not fully returned.
type MissingTool struct {
	ToolID          int    `json:"tool_id"`
	Name            string `json:"name"`
	SerialNumber    string `json:"serial_number"`
	Quantity        int    `json:"quantity"`
	MissingQuantity int    `json:"missing_quantity"`
}

// ExtraTool is a returned tool (or surplus quantity of one) that was never
// issued.
type ExtraTool struct {
	ToolID       int    `json:"tool_id"`
	Name         string `json:"name"`
	SerialNumber string `json:"serial_number"`
	Quantity     int    `json:"quantity"`
}

// Discrepancy classifies a non-matching returned tool: "excess" when more
// came back than went out, "unexpected" when the tool was never issued.
type Discrepancy struct {
	ToolID      int    `json:"tool_id"`
	Name        string `json:"name"`
	IssuedQty   int    `json:"issued_qty"`
	ReturnedQty int    `json:"returned_qty"`
	Difference  int    `json:"difference"`
	Type        string `json:"type"`
}

// Summary holds the headline counts shown on the kiosk result screen.
type Summary struct {
	TotalIssued   int `json:"total_issued"`
	TotalReturned int `json:"total_returned"`
	MissingCount  int `json:"missing_count"`
	ExtraCount    int `json:"extra_count"`
}

// ComparisonResult is the full discrepancy report.
type ComparisonResult struct {
	IssuedTools   []IssuedTool   `json:"issued_tools"`
	ReturnedTools []ReturnedTool `json:"returned_tools"`
	MissingTools  []MissingTool  `json:"missing_tools"`
	ExtraTools    []ExtraTool    `json:"extra_tools"`
	AllReturned   bool           `json:"all_returned"`
	Summary       Summary        `json:"comparison_summary"`
	Discrepancies []Discrepancy  `json:"discrepancies"`
}

// key identifies a tool across both lists. Canonical tools are keyed by
// toolkit id; tools outside the kit are keyed by name so that a session-local
// identifier can never collide with a canonical one.
type key struct {
	id   int
	name string
}

func keyOf(id int, name string) key {
	if id > 0 {
		return key{id: id}
	}
	return key{name: name}
}

// clampQty treats negative quantities as zero. Malformed input must never
// make the engine fail.
func clampQty(q int) int {
	if q < 0 {
		return 0
	}
	return q
}

// Compare builds the discrepancy report between issued and returned tools.
// It always terminates with a well-formed result: empty inputs yield
// all_returned == true and zero counts. Extra tools do not prevent
// all_returned; only missing ones do.
func Compare(issued []IssuedTool, returned []ReturnedTool) ComparisonResult {
	type entry struct {
		tool      ReturnedTool
		issued    IssuedTool
		hasIssued bool
		issuedQty int
		retQty    int
	}

	// Issued quantities and order, keyed by tool id.
	order := make([]key, 0, len(issued))
	byKey := make(map[key]*entry)
	for _, it := range issued {
		k := keyOf(it.ToolID, it.Name)
		e, ok := byKey[k]
		if !ok {
			e = &entry{issued: it, hasIssued: true}
			byKey[k] = e
			order = append(order, k)
		}
		e.hasIssued = true
		if e.issued.Name == "" {
			e.issued = it
		}
		e.issuedQty += clampQty(it.Quantity)
	}

	// Returned quantities, summing duplicate detections of the same tool.
	for _, rt := range returned {
		k := keyOf(rt.ToolID, rt.Name)
		e, ok := byKey[k]
		if !ok {
			e = &entry{}
			byKey[k] = e
			order = append(order, k)
		}
		if e.tool.Name == "" {
			e.tool = rt
		}
		e.retQty += clampQty(rt.Quantity)
	}

	result := ComparisonResult{
		IssuedTools:   issued,
		ReturnedTools: returned,
		MissingTools:  []MissingTool{},
		ExtraTools:    []ExtraTool{},
		AllReturned:   true,
		Discrepancies: []Discrepancy{},
	}

	for _, it := range issued {
		result.Summary.TotalIssued += clampQty(it.Quantity)
	}
	for _, rt := range returned {
		result.Summary.TotalReturned += clampQty(rt.Quantity)
	}

	for _, k := range order {
		e := byKey[k]
		name := e.issued.Name
		serial := e.issued.SerialNumber
		id := e.issued.ToolID
		if !e.hasIssued {
			name = e.tool.Name
			serial = e.tool.SerialNumber
			id = e.tool.ToolID
		}

		switch {
		case e.retQty < e.issuedQty:
			result.MissingTools = append(result.MissingTools, MissingTool{
				ToolID:          id,
				Name:            name,
				SerialNumber:    serial,
				Quantity:        e.issuedQty,
				MissingQuantity: e.issuedQty - e.retQty,
			})
		case e.retQty > e.issuedQty:
			// A tool with zero net returned quantity and no issued
			// counterpart never reaches this branch.
			result.ExtraTools = append(result.ExtraTools, ExtraTool{
				ToolID:       id,
				Name:         name,
				SerialNumber: serial,
				Quantity:     e.retQty - e.issuedQty,
			})
			kind := "excess"
			if !e.hasIssued {
				kind = "unexpected"
			}
			result.Discrepancies = append(result.Discrepancies, Discrepancy{
				ToolID:      id,
				Name:        name,
				IssuedQty:   e.issuedQty,
				ReturnedQty: e.retQty,
				Difference:  e.retQty - e.issuedQty,
				Type:        kind,
			})
		}
	}

	result.Summary.MissingCount = len(result.MissingTools)
	result.Summary.ExtraCount = len(result.ExtraTools)
	result.AllReturned = result.Summary.MissingCount == 0

	return result
}
