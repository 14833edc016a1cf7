package seed

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/brgy-sanroque/tanod-patrol/backend/internal/domain"
	"github.com/brgy-sanroque/tanod-patrol/backend/internal/repository"
	"github.com/brgy-sanroque/tanod-patrol/backend/internal/utils"
)

// demoZones are the puroks of the demo barangay. The polygons are rough
// rectangles around the poblacion of San Roque; good enough for map demos.
var demoZones = []struct {
	Legend string
	Color  string
	Center [2]float64
}{
	{"Zone 1 - Poblacion", "#ef4444", [2]float64{14.6091, 121.0223}},
	{"Zone 2 - Riverside", "#3b82f6", [2]float64{14.6132, 121.0268}},
	{"Zone 3 - Bukid", "#22c55e", [2]float64{14.6054, 121.0301}},
	{"Zone 4 - Palengke", "#f59e0b", [2]float64{14.6118, 121.0187}},
	{"Zone 5 - Kanto", "#8b5cf6", [2]float64{14.6075, 121.0152}},
}

// SeedDemoData fills an empty database with a small demo barangay: five
// patrol zones, a pool of tanods, and a week of schedules with zones already
// assigned. Safe to rerun only against a wiped database.
func SeedDemoData(r *repository.Repository, tanodPassword string, tanodCount int) {
	tanodIDs := make([]int64, 0, tanodCount)
	for range tanodCount {
		tanod, err := utils.GenerateRandomTanod(tanodPassword)
		if err != nil {
			slog.Error("failed to generate tanod", "error", err)
			return
		}
		if err := r.CreateUser(tanod); err != nil {
			slog.Error("failed to insert tanod", "username", tanod.Username, "error", err)
			return
		}
		tanodIDs = append(tanodIDs, tanod.ID)
	}
	slog.Info("seeded tanods", "count", len(tanodIDs))

	areaIDs := make([]int64, 0, len(demoZones))
	for _, zone := range demoZones {
		area := utils.GenerateRandomPatrolArea(zone.Legend, zone.Center[0], zone.Center[1])
		area.Color = zone.Color
		if err := r.CreatePatrolArea(area); err != nil {
			slog.Error("failed to insert patrol area", "legend", zone.Legend, "error", err)
			return
		}
		areaIDs = append(areaIDs, area.ID)
	}
	slog.Info("seeded patrol areas", "count", len(areaIDs))

	// two shifts per zone per night for the coming week
	shiftStarts := []int{20, 2} // 8pm-2am and 2am-8am
	startOfWeek := time.Now().Truncate(24 * time.Hour).Add(24 * time.Hour)

	count := 0
	for day := range 7 {
		for zoneIdx, areaID := range areaIDs {
			for shiftIdx, hour := range shiftStarts {
				dayOffset := day
				if hour < 12 && shiftIdx > 0 {
					// the 2am shift belongs to the following calendar day
					dayOffset++
				}
				start := startOfWeek.AddDate(0, 0, dayOffset).Add(time.Duration(hour) * time.Hour)

				members := pickTanods(tanodIDs, 2)
				s := &domain.Schedule{
					Unit:      domain.Units[zoneIdx%len(domain.Units)],
					StartTime: start,
					EndTime:   start.Add(6 * time.Hour),
				}
				for _, tanodID := range members {
					s.Executions = append(s.Executions, domain.Execution{TanodID: tanodID})
				}

				if err := r.CreateSchedule(s); err != nil {
					slog.Error("failed to insert schedule", "error", err)
					return
				}
				if err := r.AssignPatrolArea(s, areaID); err != nil {
					slog.Error("failed to assign patrol area", "scheduleID", s.ID, "error", err)
					return
				}
				count++
			}
		}
	}
	slog.Info("seeded schedules", "count", count)
}

func pickTanods(ids []int64, n int) []int64 {
	shuffled := make([]int64, len(ids))
	copy(shuffled, ids)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
