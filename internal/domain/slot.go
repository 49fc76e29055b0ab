package domain

// Slot is one candidate start time of a day. StaffID is set only when the
// slot was resolved without a staff filter; it names the staff member that
// would likely be assigned and may differ from the one bound at commit.
type Slot struct {
	Time      string
	Available bool
	StaffID   *string
}
