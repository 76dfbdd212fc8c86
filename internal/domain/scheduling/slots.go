package scheduling

import (
	"time"

	"github.com/google/uuid"

	"github.com/docbook/docbook/internal/domain/availability"
)

// ExpandSlots turns a doctor's recurring windows into concrete dated
// slots for [from, to] inclusive, excluding any slot that intersects a
// non-cancelled appointment. Pure function of its inputs: no storage
// access, safe to re-run. Result is ordered by date then start time.
func ExpandSlots(doctorID uuid.UUID, windows []*availability.Window, appts []*Appointment, from, to time.Time) []TimeSlot {
	byWeekday := make(map[time.Weekday][]*availability.Window)
	for _, w := range windows {
		byWeekday[w.Weekday] = append(byWeekday[w.Weekday], w)
	}

	booked := make(map[string][]*Appointment)
	for _, a := range appts {
		if a.Status == StatusCancelled {
			continue
		}
		key := a.Date.Format("2006-01-02")
		booked[key] = append(booked[key], a)
	}

	slots := []TimeSlot{}
	for day := truncateDay(from); !day.After(truncateDay(to)); day = day.AddDate(0, 0, 1) {
		dateKey := day.Format("2006-01-02")
		for _, w := range byWeekday[day.Weekday()] {
			// Partition rounds down to whole slots; a window shorter
			// than one slot duration yields nothing.
			for start := w.StartMinute; start+w.SlotMinutes <= w.EndMinute; start += w.SlotMinutes {
				end := start + w.SlotMinutes
				if slotTaken(booked[dateKey], start, end) {
					continue
				}
				slots = append(slots, TimeSlot{
					DoctorID:    doctorID,
					Date:        dateKey,
					Start:       availability.FormatClock(start),
					End:         availability.FormatClock(end),
					StartMinute: start,
					EndMinute:   end,
				})
			}
		}
	}
	return slots
}

func slotTaken(appts []*Appointment, start, end int) bool {
	for _, a := range appts {
		if Overlaps(start, end, a.StartMinute, a.EndMinute) {
			return true
		}
	}
	return false
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
