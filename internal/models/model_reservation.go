package models

import "time"

type ReservationStatus int

const (
	ReservationStatusPending  ReservationStatus = 0
	ReservationStatusAccepted ReservationStatus = 1
	ReservationStatusPaid     ReservationStatus = 2
)

// Reservation is the tutoring-session booking this subsystem collects payment
// for. The payment core only moves its status forward (accepted -> paid) and
// appends to the notes audit trail; everything else belongs to the scheduling
// side of the marketplace.
type Reservation struct {
	ID     string            `gorm:"column:id;primary_key;type:uuid" json:"id"`
	Status ReservationStatus `gorm:"column:status;type:int;not null;default:0" json:"status"`
	// Notes is a free-text audit trail; paid transitions append one line per
	// external reference.
	Notes string `gorm:"column:notes;type:text" json:"notes"`

	ParticipantEmail string `gorm:"column:participant_email;type:varchar(255)" json:"participant_email"`
	ParticipantName  string `gorm:"column:participant_name;type:varchar(255)" json:"participant_name"`
	TutorID          string `gorm:"column:tutor_id;type:varchar(64);index" json:"tutor_id"`

	Subject     string    `gorm:"column:subject;type:varchar(255)" json:"subject"`
	StartAt     time.Time `gorm:"column:start_at" json:"start_at"`
	DurationMin int       `gorm:"column:duration_min;type:int" json:"duration_min"`
	// PricePerHourMinor overrides the configured marketplace rate when the
	// tutor has a custom one; zero means use the configured default.
	PricePerHourMinor int64 `gorm:"column:price_per_hour_minor;type:bigint;default:0" json:"price_per_hour_minor"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Reservation) TableName() string {
	return "reservation"
}

func (r *Reservation) IsPayable() bool {
	return r != nil && r.Status == ReservationStatusAccepted
}

// PricePerHour returns the reservation's hourly rate, falling back to the
// marketplace default when none is set.
func (r *Reservation) PricePerHour(defaultMinor int64) int64 {
	if r != nil && r.PricePerHourMinor > 0 {
		return r.PricePerHourMinor
	}
	return defaultMinor
}
