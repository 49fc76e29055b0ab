package dto

// AvailabilityQuery captures GET /availability parameters.
type AvailabilityQuery struct {
	Date    string `query:"date"`
	MenuID  string `query:"menu_id"`
	StaffID string `query:"staff_id"`
}

// SlotResponse is one candidate start time.
type SlotResponse struct {
	Time      string  `json:"time"`
	Available bool    `json:"available"`
	StaffID   *string `json:"staff_id,omitempty"`
}

// AvailabilityResponse lists the slots of a day for one menu.
type AvailabilityResponse struct {
	Date            string         `json:"date"`
	MenuID          string         `json:"menu_id"`
	StaffID         *string        `json:"staff_id"`
	DurationMinutes int            `json:"duration_minutes"`
	StaffSelection  bool           `json:"staff_selection_enabled"`
	Slots           []SlotResponse `json:"slots"`
}
