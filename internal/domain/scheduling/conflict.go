package scheduling

// CheckConflict rejects a slot the subject already holds a scheduled
// appointment for. Canceled and completed rows never block. Other subjects'
// rows are ignored: uniqueness is per subject, not per physical slot.
func CheckConflict(subjectID int64, s Slot, existing []*Appointment) error {
	for _, a := range existing {
		if a.SubjectID != subjectID {
			continue
		}
		if a.Occupies(s) {
			return &Violation{Kind: DuplicateSlot, Field: FieldSlot}
		}
	}
	return nil
}
