package models

import (
	"sync"
	"time"
)

// Fenêtre avant le début de l'événement pendant laquelle les fiches de
// contrôle manquantes sont générées
const RegisteredInfoBackfillWindow = time.Hour

var (
	scheduleMu       sync.RWMutex
	scheduleLocation = loadParisLocation()
)

func loadParisLocation() *time.Location {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		return time.FixedZone("CET", 1*3600)
	}
	return paris
}

// SetScheduleLocation définit le fuseau horaire des dates et heures d'événements
func SetScheduleLocation(loc *time.Location) {
	if loc == nil {
		return
	}
	scheduleMu.Lock()
	scheduleLocation = loc
	scheduleMu.Unlock()
}

// ScheduleLocation retourne le fuseau horaire des événements
func ScheduleLocation() *time.Location {
	scheduleMu.RLock()
	defer scheduleMu.RUnlock()
	return scheduleLocation
}

// combine assemble une date et une heure "HH:MM". Sans heure valide, la
// date vaut fin de journée si endOfDay, début de journée sinon.
func combine(day time.Time, clock string, endOfDay bool) time.Time {
	loc := ScheduleLocation()
	d := day.In(loc)

	if clock != "" {
		if t, err := time.Parse("15:04", clock); err == nil {
			return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, loc)
		}
	}

	if endOfDay {
		return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, loc)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}

// StartDateTime retourne la date et l'heure de début
func (e *Event) StartDateTime() time.Time {
	return combine(e.Date, e.StartTime, false)
}

// EndDateTime retourne la date et l'heure de fin. Sans date de fin, le début
// de l'événement fait foi.
func (e *Event) EndDateTime() time.Time {
	if e.EndDate != nil && !e.EndDate.IsZero() {
		return combine(*e.EndDate, e.EndTime, true)
	}
	return combine(e.Date, e.StartTime, true)
}

// EffectiveStatus calcule le statut à l'instant now sans modifier l'événement
func (e *Event) EffectiveStatus(now time.Time) EventStatus {
	if e.Status == StatusActive && now.After(e.EndDateTime()) {
		return StatusPast
	}
	return e.Status
}

// Sweep passe à "past" les événements actifs terminés et retourne ceux qui ont changé.
// Les événements annulés ou déjà passés ne sont jamais modifiés.
func Sweep(events []*Event, now time.Time) []*Event {
	changed := make([]*Event, 0)
	for _, e := range events {
		if e.Status != StatusActive {
			continue
		}
		if e.EffectiveStatus(now) == StatusPast {
			e.Status = StatusPast
			e.UpdatedAt = now
			changed = append(changed, e)
		}
	}
	return changed
}

// StartsWithin indique si l'événement commence dans la fenêtre donnée (ou a déjà commencé)
func (e *Event) StartsWithin(now time.Time, window time.Duration) bool {
	return !now.Before(e.StartDateTime().Add(-window))
}
