package models

import "time"

const (
	RoleClient       = "client"
	RoleProfessional = "professional"
	RoleHealthCoach  = "healthcoach"

	AppointmentStatusConfirmed = "confirmed"
	AppointmentStatusCancelled = "cancelled"

	SessionTypeConsultation = "consultation"
	SessionTypeFollowUp     = "followup"
	SessionTypeTraining     = "training"

	BookedByClient       = "client"
	BookedByProfessional = "professional"
)

type Profile struct {
	ID           string `bson:"_id,omitempty" json:"id"`
	Role         string `bson:"role" json:"role"`
	FullName     string `bson:"fullName" json:"fullName"`
	Email        string `bson:"email" json:"email"`
	PasswordHash string `bson:"passwordHash" json:"-"`
	Specialty    string `bson:"specialty,omitempty" json:"specialty,omitempty"`
	Bio          string `bson:"bio,omitempty" json:"bio,omitempty"`
	HourlyRate   int    `bson:"hourlyRate,omitempty" json:"hourlyRate,omitempty"`
	// DisplayTimezone is informational. Slot math always runs in the
	// deployment's pinned scheduling timezone, never in this one.
	DisplayTimezone   string    `bson:"displayTimezone,omitempty" json:"displayTimezone,omitempty"`
	CalendarDelegated bool      `bson:"calendarDelegated" json:"calendarDelegated"`
	CreatedAt         time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time `bson:"updatedAt" json:"updatedAt"`
}

type AvailabilityWindow struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	ProfessionalID string    `bson:"professionalId" json:"professionalId"`
	DayOfWeek      int       `bson:"dayOfWeek" json:"dayOfWeek"`
	StartHour      int       `bson:"startHour" json:"startHour"`
	EndHour        int       `bson:"endHour" json:"endHour"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
}

type Appointment struct {
	ID              string    `bson:"_id,omitempty" json:"id"`
	ProfessionalID  string    `bson:"professionalId" json:"professionalId"`
	ClientID        string    `bson:"clientId" json:"clientId"`
	StartTime       time.Time `bson:"startTime" json:"startTime"`
	EndTime         time.Time `bson:"endTime" json:"endTime"`
	DurationMinutes int       `bson:"durationMinutes" json:"durationMinutes"`
	Status          string    `bson:"status" json:"status"`
	Price           int       `bson:"price" json:"price"`
	IsFirstConsult  bool      `bson:"isFirstConsult" json:"isFirstConsult"`
	MeetingLink     string    `bson:"meetingLink,omitempty" json:"meetingLink,omitempty"`
	SessionType     string    `bson:"sessionType" json:"sessionType"`
	SessionNotes    string    `bson:"sessionNotes,omitempty" json:"sessionNotes,omitempty"`
	BookedBy        string    `bson:"bookedBy" json:"bookedBy"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt" json:"updatedAt"`
}
