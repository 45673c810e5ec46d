package models

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// DaySchedule is either {closed:true} or an {open,close} pair in HH:MM local time.
type DaySchedule struct {
	Closed bool   `json:"closed,omitempty"`
	Open   string `json:"open,omitempty"`
	Close  string `json:"close,omitempty"`
}

// OperatingHours maps time.Weekday (0=Sunday..6=Saturday) to a DaySchedule.
type OperatingHours map[time.Weekday]DaySchedule

// Store is a tenant venue: its own timezone, operating hours and quota settings.
type Store struct {
	ID   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name string    `gorm:"size:150;not null" json:"name"`
	Slug string    `gorm:"size:150;uniqueIndex;not null" json:"slug"`

	Timezone string `gorm:"size:64;not null" json:"timezone"`

	OperatingHoursJSON string `gorm:"column:operating_hours;type:jsonb;not null;default:'{}'" json:"-"`

	Phone   string `gorm:"size:30" json:"phone"`
	Address string `gorm:"size:255" json:"address"`

	MaxDailyBookings      *int `json:"max_daily_bookings"`
	MaxConcurrentBookings *int `json:"max_concurrent_bookings"`
	BufferTimeMinutes     int  `gorm:"default:15" json:"buffer_time_minutes"`
	MaxAdvanceBookingDays int  `gorm:"default:90" json:"max_advance_booking_days"`
	CancellationDeadlineH int  `gorm:"column:cancellation_deadline_hours;default:24" json:"cancellation_deadline_hours"`

	AllowOnlineBooking bool `gorm:"default:true" json:"allow_online_booking"`
	RequireApproval    bool `gorm:"default:false" json:"require_approval"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QuotaSettingsPatch is the shallow-merge PUT contract of §6: absent keys preserve
// prior values, an explicit null clears the key.
//
// encoding/json can't tell "key absent" from "key present with null" through a
// plain **int field — it collapses both to a nil outer pointer once it sees the
// null token. UnmarshalJSON below inspects the raw key set instead, so the three
// states (absent / null / value) map onto (nil / non-nil-pointing-to-nil / value).
type QuotaSettingsPatch struct {
	MaxDailyBookings      **int
	MaxConcurrentBookings **int
	BufferTimeMinutes     *int
}

func (p *QuotaSettingsPatch) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if msg, present := raw["maxDailyBookings"]; present {
		var v *int
		if err := json.Unmarshal(msg, &v); err != nil {
			return err
		}
		p.MaxDailyBookings = &v
	}
	if msg, present := raw["maxConcurrentBookings"]; present {
		var v *int
		if err := json.Unmarshal(msg, &v); err != nil {
			return err
		}
		p.MaxConcurrentBookings = &v
	}
	if msg, present := raw["bufferTimeMinutes"]; present {
		if string(msg) == "null" {
			return errors.New("bufferTimeMinutes cannot be null")
		}
		var v int
		if err := json.Unmarshal(msg, &v); err != nil {
			return err
		}
		p.BufferTimeMinutes = &v
	}
	return nil
}

// ApplyQuotaPatch performs the merge contract from §6 in place.
func (s *Store) ApplyQuotaPatch(p QuotaSettingsPatch) {
	if p.MaxDailyBookings != nil {
		s.MaxDailyBookings = *p.MaxDailyBookings
	}
	if p.MaxConcurrentBookings != nil {
		s.MaxConcurrentBookings = *p.MaxConcurrentBookings
	}
	if p.BufferTimeMinutes != nil {
		s.BufferTimeMinutes = *p.BufferTimeMinutes
	}
}

// GetOperatingHours decodes the stored operating-hours JSON blob.
func (s *Store) GetOperatingHours() OperatingHours {
	oh := OperatingHours{}
	if s.OperatingHoursJSON == "" {
		return oh
	}
	_ = json.Unmarshal([]byte(s.OperatingHoursJSON), &oh)
	return oh
}

// SetOperatingHours encodes and stores the operating-hours blob.
func (s *Store) SetOperatingHours(oh OperatingHours) error {
	b, err := json.Marshal(oh)
	if err != nil {
		return err
	}
	s.OperatingHoursJSON = string(b)
	return nil
}
