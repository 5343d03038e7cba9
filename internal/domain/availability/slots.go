package availability

import (
	"github.com/clinicdesk/clinicdesk/internal/domain/directory"
	"github.com/clinicdesk/clinicdesk/internal/domain/workinghours"
)

// Slot is one candidate booking window, times in HH:MM on the requested
// date. AvailableRooms is populated only when room annotation is asked for.
type Slot struct {
	StartTime      string              `json:"start_time"`
	EndTime        string              `json:"end_time"`
	AvailableRooms []directory.RoomRef `json:"available_rooms,omitempty"`
}

// GenerateSlots walks each open interval with a cursor, emitting
// [cursor, cursor+duration) while it fits, then advancing by
// duration+buffer. Intervals shorter than the duration yield no slots.
// Output is deterministic and sorted because intervals are ordered and
// non-overlapping.
func GenerateSlots(intervals []workinghours.TimeInterval, durationMinutes, bufferMinutes int) []Slot {
	slots := []Slot{}
	if durationMinutes <= 0 {
		return slots
	}
	for _, ti := range intervals {
		cursor := workinghours.MinuteOfDay(ti.Start)
		end := workinghours.MinuteOfDay(ti.End)
		for cursor+durationMinutes <= end {
			slots = append(slots, Slot{
				StartTime: workinghours.FormatMinute(cursor),
				EndTime:   workinghours.FormatMinute(cursor + durationMinutes),
			})
			cursor += durationMinutes + bufferMinutes
		}
	}
	return slots
}
