package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventStatus est le statut du cycle de vie d'un événement
type EventStatus string

const (
	StatusActive    EventStatus = "active"
	StatusCancelled EventStatus = "cancelled"
	StatusPast      EventStatus = "past"
)

// RegistrationState est l'état d'un utilisateur dans un événement
type RegistrationState string

const (
	StateAttendee RegistrationState = "attendee"
	StatePending  RegistrationState = "pending"
	StateWaitlist RegistrationState = "waitlist"
)

// Registration est l'unique entrée d'un utilisateur pour un événement.
// L'ordre de la liste est l'ordre d'arrivée, la liste d'attente est donc FIFO.
type Registration struct {
	UserID         primitive.ObjectID `json:"user_id" bson:"user_id"`
	State          RegistrationState  `json:"state" bson:"state"`
	RegistrationID string             `json:"registration_id,omitempty" bson:"registration_id,omitempty"` // vide pour les entrées historiques
	Marked         bool               `json:"marked" bson:"marked"`
	CheckedInAt    *time.Time         `json:"checked_in_at,omitempty" bson:"checked_in_at,omitempty"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}

// RegisteredInfo est la fiche de contrôle d'accès d'un participant
type RegisteredInfo struct {
	User           primitive.ObjectID `json:"user"`
	RegistrationID string             `json:"registration_id"`
	Marked         bool               `json:"marked"`
}

// Event représente un événement dans le système
type Event struct {
	ID                   primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OrganizerID          primitive.ObjectID `json:"organizer_id" bson:"organizer_id"`
	Title                string             `json:"title" bson:"title"`
	Description          string             `json:"description" bson:"description"`
	Category             string             `json:"category,omitempty" bson:"category,omitempty"`
	Tags                 []string           `json:"tags,omitempty" bson:"tags,omitempty"`
	Date                 time.Time          `json:"date" bson:"date"`
	EndDate              *time.Time         `json:"end_date,omitempty" bson:"end_date,omitempty"`
	StartTime            string             `json:"start_time,omitempty" bson:"start_time,omitempty"` // "HH:MM"
	EndTime              string             `json:"end_time,omitempty" bson:"end_time,omitempty"`     // "HH:MM"
	EventType            string             `json:"event_type,omitempty" bson:"event_type,omitempty"` // "in-person", "online", "hybrid"
	VenueName            string             `json:"venue_name,omitempty" bson:"venue_name,omitempty"`
	Address              string             `json:"address,omitempty" bson:"address,omitempty"`
	City                 string             `json:"city,omitempty" bson:"city,omitempty"`
	MapLink              string             `json:"map_link,omitempty" bson:"map_link,omitempty"`
	OnlineLink           string             `json:"online_link,omitempty" bson:"online_link,omitempty"`
	ContactEmail         string             `json:"contact_email,omitempty" bson:"contact_email,omitempty"`
	ContactPhone         string             `json:"contact_phone,omitempty" bson:"contact_phone,omitempty"`
	Website              string             `json:"website,omitempty" bson:"website,omitempty"`
	PosterImage          string             `json:"poster_image,omitempty" bson:"poster_image,omitempty"`
	LogoImage            string             `json:"logo_image,omitempty" bson:"logo_image,omitempty"`
	PromoVideo           string             `json:"promo_video,omitempty" bson:"promo_video,omitempty"`
	MaxAttendees         int                `json:"max_attendees" bson:"max_attendees"` // 0 = illimité
	RegistrationDeadline *time.Time         `json:"registration_deadline,omitempty" bson:"registration_deadline,omitempty"`
	RequireApproval      bool               `json:"require_approval" bson:"require_approval"`
	EnableWaitlist       bool               `json:"enable_waitlist" bson:"enable_waitlist"`
	Status               EventStatus        `json:"status" bson:"status"`
	Registrations        []Registration     `json:"-" bson:"registrations"`
	Version              int64              `json:"version" bson:"version"`
	CreatedAt            time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreateEventRequest représente la requête de création d'événement
type CreateEventRequest struct {
	Title                string        `json:"title" validate:"required,max=200"`
	Description          string        `json:"description" validate:"max=5000"`
	Category             string        `json:"category"`
	Tags                 []string      `json:"tags"`
	Date                 FlexibleTime  `json:"date"`
	EndDate              *FlexibleTime `json:"end_date,omitempty"`
	StartTime            string        `json:"start_time" validate:"omitempty,datetime=15:04"`
	EndTime              string        `json:"end_time" validate:"omitempty,datetime=15:04"`
	EventType            string        `json:"event_type" validate:"omitempty,oneof=in-person online hybrid"`
	VenueName            string        `json:"venue_name"`
	Address              string        `json:"address"`
	City                 string        `json:"city"`
	MapLink              string        `json:"map_link" validate:"omitempty,url"`
	OnlineLink           string        `json:"online_link" validate:"omitempty,url"`
	ContactEmail         string        `json:"contact_email" validate:"omitempty,email"`
	ContactPhone         string        `json:"contact_phone"`
	Website              string        `json:"website" validate:"omitempty,url"`
	PosterImage          string        `json:"poster_image"`
	LogoImage            string        `json:"logo_image"`
	PromoVideo           string        `json:"promo_video"`
	MaxAttendees         int           `json:"max_attendees" validate:"gte=0"`
	RegistrationDeadline *FlexibleTime `json:"registration_deadline,omitempty"`
	RequireApproval      bool          `json:"require_approval"`
	EnableWaitlist       bool          `json:"enable_waitlist"`
}

// UpdateEventRequest représente la requête de modification d'événement.
// Les champs absents ne sont pas modifiés. Le statut n'est pas modifiable ici.
type UpdateEventRequest struct {
	Title                *string       `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description          *string       `json:"description,omitempty"`
	Category             *string       `json:"category,omitempty"`
	Tags                 []string      `json:"tags,omitempty"`
	Date                 *FlexibleTime `json:"date,omitempty"`
	EndDate              *FlexibleTime `json:"end_date,omitempty"`
	StartTime            *string       `json:"start_time,omitempty" validate:"omitempty,datetime=15:04"`
	EndTime              *string       `json:"end_time,omitempty" validate:"omitempty,datetime=15:04"`
	VenueName            *string       `json:"venue_name,omitempty"`
	Address              *string       `json:"address,omitempty"`
	City                 *string       `json:"city,omitempty"`
	OnlineLink           *string       `json:"online_link,omitempty"`
	MaxAttendees         *int          `json:"max_attendees,omitempty" validate:"omitempty,gte=0"`
	RegistrationDeadline *FlexibleTime `json:"registration_deadline,omitempty"`
	RequireApproval      *bool         `json:"require_approval,omitempty"`
	EnableWaitlist       *bool         `json:"enable_waitlist,omitempty"`
}

// NewEventFromRequest construit un événement actif et vide pour un organisateur
func NewEventFromRequest(req *CreateEventRequest, organizerID primitive.ObjectID) *Event {
	event := &Event{
		OrganizerID:     organizerID,
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		Tags:            req.Tags,
		Date:            req.Date.Time,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		EventType:       req.EventType,
		VenueName:       req.VenueName,
		Address:         req.Address,
		City:            req.City,
		MapLink:         req.MapLink,
		OnlineLink:      req.OnlineLink,
		ContactEmail:    req.ContactEmail,
		ContactPhone:    req.ContactPhone,
		Website:         req.Website,
		PosterImage:     req.PosterImage,
		LogoImage:       req.LogoImage,
		PromoVideo:      req.PromoVideo,
		MaxAttendees:    req.MaxAttendees,
		RequireApproval: req.RequireApproval,
		EnableWaitlist:  req.EnableWaitlist,
		Status:          StatusActive,
		Registrations:   []Registration{},
	}
	if req.EndDate != nil && !req.EndDate.IsZero() {
		t := req.EndDate.Time
		event.EndDate = &t
	}
	if req.RegistrationDeadline != nil && !req.RegistrationDeadline.IsZero() {
		t := req.RegistrationDeadline.Time
		event.RegistrationDeadline = &t
	}
	return event
}

// ApplyUpdate applique une modification partielle et retourne les utilisateurs
// promus depuis la liste d'attente. La capacité ne peut pas descendre sous le
// nombre de participants confirmés.
func (e *Event) ApplyUpdate(req *UpdateEventRequest, now time.Time) ([]primitive.ObjectID, error) {
	if req.MaxAttendees != nil && *req.MaxAttendees > 0 && *req.MaxAttendees < e.AttendeeCount() {
		return nil, ErrCapacityBelowAttendees
	}
	if req.Title != nil {
		e.Title = *req.Title
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.Category != nil {
		e.Category = *req.Category
	}
	if req.Tags != nil {
		e.Tags = req.Tags
	}
	if req.Date != nil && !req.Date.IsZero() {
		e.Date = req.Date.Time
	}
	if req.EndDate != nil {
		if req.EndDate.IsZero() {
			e.EndDate = nil
		} else {
			t := req.EndDate.Time
			e.EndDate = &t
		}
	}
	if req.StartTime != nil {
		e.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		e.EndTime = *req.EndTime
	}
	if req.VenueName != nil {
		e.VenueName = *req.VenueName
	}
	if req.Address != nil {
		e.Address = *req.Address
	}
	if req.City != nil {
		e.City = *req.City
	}
	if req.OnlineLink != nil {
		e.OnlineLink = *req.OnlineLink
	}
	if req.MaxAttendees != nil {
		e.MaxAttendees = *req.MaxAttendees
	}
	if req.RegistrationDeadline != nil {
		if req.RegistrationDeadline.IsZero() {
			e.RegistrationDeadline = nil
		} else {
			t := req.RegistrationDeadline.Time
			e.RegistrationDeadline = &t
		}
	}
	if req.RequireApproval != nil {
		e.RequireApproval = *req.RequireApproval
	}
	if req.EnableWaitlist != nil {
		e.EnableWaitlist = *req.EnableWaitlist
	}
	return e.promoteWaitlist(now), nil
}

// usersInState retourne les utilisateurs d'un état, dans l'ordre d'arrivée
func (e *Event) usersInState(state RegistrationState) []primitive.ObjectID {
	users := make([]primitive.ObjectID, 0)
	for _, r := range e.Registrations {
		if r.State == state {
			users = append(users, r.UserID)
		}
	}
	return users
}

// Attendees retourne les participants confirmés
func (e *Event) Attendees() []primitive.ObjectID { return e.usersInState(StateAttendee) }

// PendingApprovals retourne les demandes en attente de validation
func (e *Event) PendingApprovals() []primitive.ObjectID { return e.usersInState(StatePending) }

// Waitlist retourne la liste d'attente (tête en premier)
func (e *Event) Waitlist() []primitive.ObjectID { return e.usersInState(StateWaitlist) }

// RegisteredInfo retourne les fiches de contrôle des participants qui en possèdent une
func (e *Event) RegisteredInfo() []RegisteredInfo {
	infos := make([]RegisteredInfo, 0)
	for _, r := range e.Registrations {
		if r.State == StateAttendee && r.RegistrationID != "" {
			infos = append(infos, RegisteredInfo{
				User:           r.UserID,
				RegistrationID: r.RegistrationID,
				Marked:         r.Marked,
			})
		}
	}
	return infos
}

// AttendeeCount compte les participants confirmés
func (e *Event) AttendeeCount() int {
	count := 0
	for _, r := range e.Registrations {
		if r.State == StateAttendee {
			count++
		}
	}
	return count
}

// FindRegistration retourne l'entrée d'un utilisateur, ou nil
func (e *Event) FindRegistration(userID primitive.ObjectID) *Registration {
	for i := range e.Registrations {
		if e.Registrations[i].UserID == userID {
			return &e.Registrations[i]
		}
	}
	return nil
}

// WithoutCheckInCodes retourne une copie sans identifiants d'inscription, pour
// les lectures publiques: un identifiant suffit à valider une entrée
func (e Event) WithoutCheckInCodes() Event {
	regs := make([]Registration, len(e.Registrations))
	for i, r := range e.Registrations {
		r.RegistrationID = ""
		regs[i] = r
	}
	e.Registrations = regs
	return e
}

// MarshalJSON expose les vues historiques (attendees, pending_approvals, waitlist,
// registered_info) calculées à partir des inscriptions
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event

	return json.Marshal(&struct {
		Alias
		Attendees        []primitive.ObjectID `json:"attendees"`
		AttendeesCount   int                  `json:"attendees_count"`
		PendingApprovals []primitive.ObjectID `json:"pending_approvals"`
		Waitlist         []primitive.ObjectID `json:"waitlist"`
		RegisteredInfo   []RegisteredInfo     `json:"registered_info"`
	}{
		Alias:            Alias(e),
		Attendees:        e.Attendees(),
		AttendeesCount:   e.AttendeeCount(),
		PendingApprovals: e.PendingApprovals(),
		Waitlist:         e.Waitlist(),
		RegisteredInfo:   e.RegisteredInfo(),
	})
}

// UserRegistration associe un événement à l'état d'inscription d'un utilisateur
type UserRegistration struct {
	Event          Event             `json:"event"`
	State          RegistrationState `json:"state"`
	RegistrationID string            `json:"registration_id,omitempty"`
	Marked         bool              `json:"marked"`
}
