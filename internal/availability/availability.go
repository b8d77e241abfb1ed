// Package availability computes which service slots are still free on a day.
package availability

import "github.com/harentsoaR/doctors-portal-api/internal/models"

// Calculate returns a copy of services whose slots exclude every slot already
// taken by a booking for the same treatment. The bookings are expected to be
// those of a single date. Neither input is modified, and the relative order of
// the remaining slots follows the source list. A service without slots stays
// without slots.
func Calculate(services []models.Service, bookings []models.Booking) []models.Service {
	booked := make(map[string]map[string]struct{})
	for _, b := range bookings {
		slots, ok := booked[b.Treatment]
		if !ok {
			slots = make(map[string]struct{})
			booked[b.Treatment] = slots
		}
		slots[b.Slot] = struct{}{}
	}

	out := make([]models.Service, len(services))
	for i, svc := range services {
		out[i] = svc
		out[i].Slots = remaining(svc.Slots, booked[svc.Name])
	}
	return out
}

// ForDate is Calculate restricted to the bookings made for date.
func ForDate(date string, services []models.Service, bookings []models.Booking) []models.Service {
	sameDay := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Date == date {
			sameDay = append(sameDay, b)
		}
	}
	return Calculate(services, sameDay)
}

func remaining(slots []string, booked map[string]struct{}) []string {
	if slots == nil {
		return nil
	}
	free := make([]string, 0, len(slots))
	for _, slot := range slots {
		if _, taken := booked[slot]; !taken {
			free = append(free, slot)
		}
	}
	return free
}
