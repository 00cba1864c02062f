package leads

import "time"

const (
	StatusNew      = "new"
	StatusAssigned = "assigned"
	StatusClosed   = "closed"

	SourceWebsite  = "website"
	SourceWhatsApp = "whatsapp"
	SourceManual   = "manual"
)

var validStatuses = map[string]struct{}{
	StatusNew:      {},
	StatusAssigned: {},
	StatusClosed:   {},
}

var validSources = map[string]struct{}{
	SourceWebsite:  {},
	SourceWhatsApp: {},
	SourceManual:   {},
}

func IsValidStatus(value string) bool {
	_, ok := validStatuses[value]
	return ok
}

func IsValidSource(value string) bool {
	_, ok := validSources[value]
	return ok
}

// Lead is a prospective client who asked for coaching but has no account
// yet. A health coach triages leads and assigns them to a professional.
type Lead struct {
	ID                     string    `bson:"_id,omitempty" json:"id"`
	FullName               string    `bson:"fullName" json:"fullName"`
	Phone                  string    `bson:"phone" json:"phone"`
	Email                  string    `bson:"email,omitempty" json:"email,omitempty"`
	Goal                   string    `bson:"goal" json:"goal"`
	Notes                  string    `bson:"notes,omitempty" json:"notes,omitempty"`
	Status                 string    `bson:"status" json:"status"`
	Source                 string    `bson:"source" json:"source"`
	AssignedProfessionalID string    `bson:"assignedProfessionalId,omitempty" json:"assignedProfessionalId,omitempty"`
	CreatedAt              time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt              time.Time `bson:"updatedAt" json:"updatedAt"`
}

type CreateRequest struct {
	FullName string `json:"fullName" validate:"required,max=120"`
	Phone    string `json:"phone" validate:"required,phone"`
	Email    string `json:"email" validate:"omitempty,email"`
	Goal     string `json:"goal" validate:"required,max=500"`
	Notes    string `json:"notes" validate:"omitempty,max=2000"`
	Source   string `json:"source" validate:"omitempty,oneof=website whatsapp manual"`
}

type AssignRequest struct {
	ProfessionalID string `json:"professionalId" validate:"required"`
}

type ListFilter struct {
	Status                 string
	Source                 string
	AssignedProfessionalID string
}
