package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RegisterOutcome est le résultat d'une demande d'inscription acceptée
type RegisterOutcome string

const (
	OutcomeRegistered RegisterOutcome = "registered"
	OutcomePending    RegisterOutcome = "pending"
	OutcomeWaitlisted RegisterOutcome = "waitlisted"
)

// ApproveOutcome est le résultat d'une validation par l'organisateur
type ApproveOutcome string

const (
	OutcomeApprovedAttendee   ApproveOutcome = "approved"
	OutcomeApprovedWaitlisted ApproveOutcome = "approved_waitlisted"
)

// DeregisterResult décrit l'effet d'une désinscription
type DeregisterResult struct {
	WasAttendee bool
	Promoted    *primitive.ObjectID // utilisateur sorti de la liste d'attente
}

// IsFull indique si la capacité est atteinte (une capacité nulle est illimitée)
func (e *Event) IsFull() bool {
	return e.MaxAttendees > 0 && e.AttendeeCount() >= e.MaxAttendees
}

// admitAttendee fait passer une entrée à l'état participant avec une fiche de contrôle neuve
func (e *Event) admitAttendee(r *Registration, now time.Time) {
	r.State = StateAttendee
	r.RegistrationID = NewRegistrationID(e.OrganizerID, r.UserID, e.ID)
	r.Marked = false
	r.CheckedInAt = nil
	r.UpdatedAt = now
}

// Register décide du sort d'une demande d'inscription et applique la mutation
func (e *Event) Register(userID primitive.ObjectID, now time.Time) (RegisterOutcome, error) {
	if e.EffectiveStatus(now) != StatusActive {
		return "", ErrEventNotAvailable
	}
	if e.FindRegistration(userID) != nil {
		return "", ErrAlreadyInProcess
	}

	entry := Registration{UserID: userID, CreatedAt: now, UpdatedAt: now}

	// La validation passe avant la capacité, qui est vérifiée à l'approbation
	if e.RequireApproval {
		entry.State = StatePending
		e.Registrations = append(e.Registrations, entry)
		return OutcomePending, nil
	}

	if !e.IsFull() {
		e.admitAttendee(&entry, now)
		e.Registrations = append(e.Registrations, entry)
		return OutcomeRegistered, nil
	}

	if e.EnableWaitlist {
		entry.State = StateWaitlist
		e.Registrations = append(e.Registrations, entry)
		return OutcomeWaitlisted, nil
	}

	return "", ErrEventFull
}

// Deregister retire l'utilisateur de l'événement. Si une place de participant
// se libère, la tête de la liste d'attente est promue sans validation.
func (e *Event) Deregister(userID primitive.ObjectID, now time.Time) (DeregisterResult, error) {
	var result DeregisterResult

	idx := -1
	for i := range e.Registrations {
		if e.Registrations[i].UserID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return result, ErrNotRegistered
	}

	result.WasAttendee = e.Registrations[idx].State == StateAttendee
	e.Registrations = append(e.Registrations[:idx], e.Registrations[idx+1:]...)

	if result.WasAttendee {
		if promoted := e.promoteWaitlist(now); len(promoted) > 0 {
			result.Promoted = &promoted[0]
		}
	}

	return result, nil
}

// promoteWaitlist admet la tête de la liste d'attente tant qu'il reste des places
func (e *Event) promoteWaitlist(now time.Time) []primitive.ObjectID {
	var promoted []primitive.ObjectID
	for i := range e.Registrations {
		if e.IsFull() {
			break
		}
		if e.Registrations[i].State == StateWaitlist {
			e.admitAttendee(&e.Registrations[i], now)
			promoted = append(promoted, e.Registrations[i].UserID)
		}
	}
	return promoted
}

// pendingEntry vérifie l'organisateur et retrouve la demande en attente
func (e *Event) pendingEntry(organizerID, userID primitive.ObjectID) (*Registration, error) {
	if e.OrganizerID != organizerID {
		return nil, ErrUnauthorized
	}
	r := e.FindRegistration(userID)
	if r == nil || r.State != StatePending {
		return nil, ErrNotInPendingList
	}
	return r, nil
}

// Approve valide une demande en attente. Si l'événement est complet sans
// liste d'attente, la demande reste en attente.
func (e *Event) Approve(organizerID, userID primitive.ObjectID, now time.Time) (ApproveOutcome, error) {
	r, err := e.pendingEntry(organizerID, userID)
	if err != nil {
		return "", err
	}

	full := e.IsFull()
	if full && !e.EnableWaitlist {
		return "", ErrEventFull
	}

	// Retirer puis remettre en fin de liste pour conserver l'ordre FIFO de la liste d'attente
	entry := *r
	e.removeUser(userID)

	if full {
		entry.State = StateWaitlist
		entry.UpdatedAt = now
		e.Registrations = append(e.Registrations, entry)
		return OutcomeApprovedWaitlisted, nil
	}

	e.admitAttendee(&entry, now)
	e.Registrations = append(e.Registrations, entry)
	return OutcomeApprovedAttendee, nil
}

// Reject refuse une demande en attente
func (e *Event) Reject(organizerID, userID primitive.ObjectID) error {
	if _, err := e.pendingEntry(organizerID, userID); err != nil {
		return err
	}
	e.removeUser(userID)
	return nil
}

func (e *Event) removeUser(userID primitive.ObjectID) {
	kept := e.Registrations[:0]
	for _, r := range e.Registrations {
		if r.UserID != userID {
			kept = append(kept, r)
		}
	}
	e.Registrations = kept
}

// Cancel annule un événement actif (état terminal)
func (e *Event) Cancel(organizerID primitive.ObjectID, now time.Time) error {
	if e.OrganizerID != organizerID {
		return ErrUnauthorized
	}
	if e.EffectiveStatus(now) != StatusActive {
		return ErrEventNotAvailable
	}
	e.Status = StatusCancelled
	e.UpdatedAt = now
	return nil
}

// FillRegisteredInfoIfNeeded génère les fiches de contrôle manquantes quand
// l'événement commence dans moins d'une heure. Retourne le nombre de fiches créées.
func (e *Event) FillRegisteredInfoIfNeeded(now time.Time) int {
	if !e.StartsWithin(now, RegisteredInfoBackfillWindow) {
		return 0
	}

	filled := 0
	for i := range e.Registrations {
		r := &e.Registrations[i]
		if r.State == StateAttendee && r.RegistrationID == "" {
			r.RegistrationID = NewRegistrationID(e.OrganizerID, r.UserID, e.ID)
			r.Marked = false
			r.UpdatedAt = now
			filled++
		}
	}
	return filled
}

// Verify valide un QR code de contrôle d'accès, une seule fois
func (e *Event) Verify(organizerID primitive.ObjectID, registrationID string, now time.Time) (*Registration, error) {
	if e.OrganizerID != organizerID {
		return nil, ErrUnauthorized
	}

	key, err := ParseRegistrationID(registrationID)
	if err != nil {
		return nil, ErrInvalidRegistrationID
	}
	if key.EventID != e.ID {
		return nil, ErrRegistrationNotFound
	}

	for i := range e.Registrations {
		r := &e.Registrations[i]
		if r.State != StateAttendee || r.RegistrationID != registrationID {
			continue
		}
		if r.Marked {
			return nil, ErrAlreadyMarked
		}
		r.Marked = true
		r.CheckedInAt = &now
		r.UpdatedAt = now
		return r, nil
	}

	return nil, ErrRegistrationNotFound
}
