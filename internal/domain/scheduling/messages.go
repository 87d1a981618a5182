package scheduling

type violationDetail struct {
	Kind    ViolationKind `json:"kind"`
	Field   string        `json:"field,omitempty"`
	Message string        `json:"message"`
}

var messages = map[ViolationKind]string{
	WeekendNotAllowed:        "Appointments can only be booked Monday through Friday.",
	OutsideBusinessHours:     "Appointments must start between 08:00 and 17:59.",
	PastDate:                 "The appointment date cannot be in the past.",
	PastDateTime:             "The appointment time has already passed.",
	DuplicateSlot:            "You already have an appointment at this date and time.",
	CancellationWindowClosed: "Appointments can only be canceled up to the day before.",
	AlreadyFinalized:         "This appointment is already canceled or completed.",
}

var malformedMessages = map[string]string{
	FieldDate: "Date must use the YYYY-MM-DD format.",
	FieldTime: "Time must use the HH:mm format.",
}

// Message returns the English text shown for v.
func Message(v *Violation) string {
	if v.Kind == MalformedInput {
		if m, ok := malformedMessages[v.Field]; ok {
			return m
		}
		return "The request is malformed."
	}
	if m, ok := messages[v.Kind]; ok {
		return m
	}
	return string(v.Kind)
}

func describe(vs Violations) []violationDetail {
	out := make([]violationDetail, len(vs))
	for i, v := range vs {
		out[i] = violationDetail{Kind: v.Kind, Field: v.Field, Message: Message(v)}
	}
	return out
}
