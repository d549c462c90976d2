package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Lead types.
const (
	LeadTypePatient   = "patient"
	LeadTypeTherapist = "therapist"
)

// Lead statuses touched by this service. Matching and confirmation workflows
// move leads through further states.
const (
	LeadStatusNew = "new"
)

// Lead is a person record created from an intake form submission.
type Lead struct {
	ID              string            `gorm:"primaryKey;type:uuid" json:"id"`
	Type            string            `gorm:"index" json:"type"`
	Name            string            `json:"name"`
	Email           string            `gorm:"index" json:"email"`
	Phone           string            `json:"phone"`
	Message         string            `json:"message"`
	ConsentGiven    bool              `json:"consent_given"`
	CampaignSource  string            `json:"campaign_source"`
	CampaignVariant string            `json:"campaign_variant"`
	LandingPage     string            `json:"landing_page"`
	Status          string            `gorm:"index" json:"status"`
	IsTest          bool              `json:"is_test"`
	Metadata        datatypes.JSONMap `json:"metadata"`
	NurtureSentAt   *time.Time        `json:"nurture_sent_at"`
	ConfirmedAt     *time.Time        `json:"confirmed_at"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// TableName overrides the default table name
func (Lead) TableName() string {
	return "leads"
}
