package calendar

import (
	"fmt"
	"time"

	"github.com/bizmate/bizmate/pkg/business"
)

// VacationTitle is the generic title of every vacation marker.
const VacationTitle = "Vacation"

const vacationDateLayout = "2006-01-02"

// ExpandVacations converts every company's vacation ranges into one all-day
// marker event per calendar day, start to end inclusive. Markers are pinned to
// a 07:00-08:00 display slot - a rendering convenience, not a real time range.
// Ids are deterministic functions of (company, vacation, day) so repeated
// expansion is idempotent and nothing needs to be stored.
func ExpandVacations(companies []business.Company) []Event {
	var events []Event

	for _, company := range companies {
		for _, vac := range company.Vacations {
			if vac.StartDate == "" || vac.EndDate == "" {
				continue
			}
			start, err := time.ParseInLocation(vacationDateLayout, vac.StartDate, time.Local)
			if err != nil {
				continue
			}
			end, err := time.ParseInLocation(vacationDateLayout, vac.EndDate, time.Local)
			if err != nil {
				continue
			}

			for day := start; !day.After(end); day = AddDays(day, 1) {
				employee := vac.EmployeeName
				if employee == "" {
					employee = "Not specified"
				}
				events = append(events, Event{
					UID:       VacationMarkerId(company.Id, vac.Id, day),
					Title:     VacationTitle,
					StartTime: time.Date(day.Year(), day.Month(), day.Day(), 7, 0, 0, 0, day.Location()),
					EndTime:   time.Date(day.Year(), day.Month(), day.Day(), 8, 0, 0, 0, day.Location()),
					Description: fmt.Sprintf("Employee: %s\nPeriod: %s - %s\nCompany: %s",
						employee, vac.StartDate, vac.EndDate, company.Name),
					Source: SourceVacation,
				})
			}
		}
	}

	return events
}

// VacationMarkerId builds the deterministic id of a single vacation day marker.
func VacationMarkerId(companyId, vacationId string, day time.Time) string {
	return fmt.Sprintf("vac-%s-%s-%s", companyId, vacationId, day.Format(vacationDateLayout))
}

// IsVacationMarker reports whether uid identifies a derived vacation entry.
func IsVacationMarker(uid string) bool {
	return len(uid) > 4 && uid[:4] == "vac-"
}
