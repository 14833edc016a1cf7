package utils

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/brgy-sanroque/tanod-patrol/backend/internal/domain"
)

var commonSurnames = []string{
	"Santos", "Reyes", "Cruz", "Bautista", "Ocampo", "Garcia", "Mendoza",
	"Torres", "Tomas", "Andrada", "Castillo", "Flores", "Villanueva",
	"Ramos", "De Leon", "Aquino", "Navarro", "Salazar", "Mercado", "Aguilar",
}

var commonGivenNames = []string{
	"Jose", "Juan", "Maria", "Antonio", "Pedro", "Manuel", "Francisco",
	"Ricardo", "Eduardo", "Rodel", "Marites", "Liza", "Andres", "Carlo",
	"Dante", "Efren", "Gloria", "Hector", "Imelda", "Joel", "Katrina",
	"Lorenzo", "Nilo", "Ofelia", "Paulo", "Ramon", "Teresa", "Virgilio",
}

func GenerateRandomFilipinoName() (givenName, surname string) {
	return commonGivenNames[rand.Intn(len(commonGivenNames))],
		commonSurnames[rand.Intn(len(commonSurnames))]
}

var digits = "0123456789"

func GenerateUsernameFromName(givenName, surname string) string {
	username := strings.ToLower(givenName[:1] + strings.ReplaceAll(surname, " ", ""))

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomTanod(password string) (*domain.User, error) {
	givenName, surname := GenerateRandomFilipinoName()
	username := GenerateUsernameFromName(givenName, surname)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:      username,
		PasswordHash:  string(passwordHash),
		FullName:      givenName + " " + surname,
		Email:         username + "@brgy-sanroque.ph",
		ContactNumber: GenerateRandomContactNumber(),
		Role:          domain.RoleTanod,
	}

	return user, nil
}

func GenerateRandomContactNumber() string {
	number := "09"
	for i := 0; i < 9; i++ {
		number += string(digits[rand.Intn(len(digits))])
	}
	return number
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

var areaColors = []string{"#FF0000", "#00A65A", "#0073B7", "#F39C12", "#605CA8", "#00C0EF"}

// GenerateRandomPatrolArea builds a rough polygon of n vertices around a
// center point, good enough for demo maps.
func GenerateRandomPatrolArea(legend string, centerLat, centerLng float64) *domain.PatrolArea {
	n := rand.Intn(4) + 4 // 4~7 vertices
	radius := 0.002 + rand.Float64()*0.003

	coordinates := make([]domain.Coordinate, 0, n)
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		jitter := 0.7 + rand.Float64()*0.6
		coordinates = append(coordinates, domain.Coordinate{
			Lat: centerLat + radius*jitter*math.Sin(angle),
			Lng: centerLng + radius*jitter*math.Cos(angle),
		})
	}

	return &domain.PatrolArea{
		Legend:      legend,
		Color:       areaColors[rand.Intn(len(areaColors))],
		Coordinates: coordinates,
	}
}

// GenerateRandomSchedule builds a schedule within the next week, 2 to 6 hours
// long, on the hour.
func GenerateRandomSchedule(tanodIDs []int64) *domain.Schedule {
	start := time.Now().
		Add(time.Duration(rand.Intn(7*24)) * time.Hour).
		Truncate(time.Hour)
	end := start.Add(time.Duration(rand.Intn(5)+2) * time.Hour)

	// 1~3 tanods per shift
	count := rand.Intn(3) + 1
	if count > len(tanodIDs) {
		count = len(tanodIDs)
	}
	picked := rand.Perm(len(tanodIDs))[:count]

	executions := make([]domain.Execution, 0, count)
	for _, idx := range picked {
		executions = append(executions, domain.Execution{
			TanodID: tanodIDs[idx],
			Status:  domain.ExecutionNotStarted,
		})
	}

	return &domain.Schedule{
		Unit:       domain.Units[rand.Intn(len(domain.Units))],
		StartTime:  start,
		EndTime:    end,
		Executions: executions,
	}
}

func GenerateRandomID(letterLength int, digitLength int) string {
	alpha := letters[:52]
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = alpha[rand.Intn(len(alpha))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

func GenerateRandomLegend() string {
	return fmt.Sprintf("Zone %s", GenerateRandomID(1, 2))
}
