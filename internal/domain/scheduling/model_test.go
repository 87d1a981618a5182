package scheduling

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"scheduled", StatusScheduled, false},
		{"canceled", StatusCanceled, false},
		{"cancelled", StatusCanceled, false},
		{" Completed ", StatusCompleted, false},
		{"CANCELLED", StatusCanceled, false},
		{"booked", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseStatus(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStatus(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	if StatusScheduled.IsTerminal() {
		t.Error("scheduled should not be terminal")
	}
	if !StatusCanceled.IsTerminal() || !StatusCompleted.IsTerminal() {
		t.Error("canceled and completed should be terminal")
	}
}

func TestAppointment_JSON(t *testing.T) {
	notes := "first visit"
	a := &Appointment{
		ID:        uuid.MustParse("7f1c2b9e-4a35-4d7e-9a51-0f6c7d8e9a10"),
		SubjectID: 42,
		Date:      CalendarDate{2025, 1, 16},
		Time:      TimeOfDay{9, 0},
		Status:    StatusScheduled,
		Notes:     &notes,
		CreatedAt: time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
	}
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	for _, want := range []string{
		`"id":"7f1c2b9e-4a35-4d7e-9a51-0f6c7d8e9a10"`,
		`"subject_id":42`,
		`"date":"2025-01-16"`,
		`"time":"09:00"`,
		`"status":"scheduled"`,
		`"notes":"first visit"`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %s in %s", want, s)
		}
	}

	var back Appointment
	if err := json.Unmarshal([]byte(`{"status":"cancelled","date":"2025-01-16","time":"09:00"}`), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Status != StatusCanceled {
		t.Errorf("expected canceled, got %s", back.Status)
	}
}

func TestAppointment_Occupies(t *testing.T) {
	s := Slot{Date: CalendarDate{2025, 1, 16}, Time: TimeOfDay{9, 0}}
	a := &Appointment{Date: s.Date, Time: s.Time, Status: StatusScheduled}
	if !a.Occupies(s) {
		t.Error("scheduled appointment should occupy its slot")
	}
	if a.Occupies(Slot{Date: s.Date, Time: TimeOfDay{9, 30}}) {
		t.Error("appointment should not occupy another time")
	}
	a.Status = StatusCanceled
	if a.Occupies(s) {
		t.Error("canceled appointment should free its slot")
	}
}
