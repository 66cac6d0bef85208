// Package toolkit defines the canonical issued toolkit: the fixed set of
// hand tools handed out at the start of a work session. Everything else in
// the system compares against this kit.
package toolkit

// Tool is a single physical tool type in the canonical kit.
type Tool struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	SerialNumber string `json:"serial_number"`
	Category     string `json:"category"`
}

// Standard is the standard kit issued at every station. The order is the
// display order on the kiosk. Do not mutate.
var Standard = []Tool{
	{ID: 1, Name: "Отвертка «-»", SerialNumber: "SN001", Category: "hand_tools"},
	{ID: 2, Name: "Отвертка «+»", SerialNumber: "SN002", Category: "hand_tools"},
	{ID: 3, Name: "Отвертка на смещенный крест", SerialNumber: "SN003", Category: "hand_tools"},
	{ID: 4, Name: "Коловорот", SerialNumber: "SN004", Category: "hand_tools"},
	{ID: 5, Name: "Пассатижи контровочные", SerialNumber: "SN005", Category: "hand_tools"},
	{ID: 6, Name: "Пассатижи", SerialNumber: "SN006", Category: "hand_tools"},
	{ID: 7, Name: "Шэрница", SerialNumber: "SN007", Category: "hand_tools"},
	{ID: 8, Name: "Разводной ключ", SerialNumber: "SN008", Category: "hand_tools"},
	{ID: 9, Name: "Открывашка для банок с маслом", SerialNumber: "SN009", Category: "hand_tools"},
	{ID: 10, Name: "Ключ рожковый/накидной 3⁄4", SerialNumber: "SN010", Category: "hand_tools"},
	{ID: 11, Name: "Бокорезы", SerialNumber: "SN011", Category: "hand_tools"},
}

// Size is the number of tools in a complete kit. A scan that finds a
// different total is flagged for manual verification.
var Size = len(Standard)

// ByID returns the canonical tool with the given id, or false if the id is
// not part of the standard kit.
func ByID(id int) (Tool, bool) {
	for _, t := range Standard {
		if t.ID == id {
			return t, true
		}
	}
	return Tool{}, false
}

// ByName returns the canonical tool with the given exact name. Manually
// entered tools are resolved against the kit this way.
func ByName(name string) (Tool, bool) {
	for _, t := range Standard {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}
