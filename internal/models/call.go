package models

import (
	"time"
)

type CallStatus string

const (
	CallStatusSuccessful CallStatus = "successful"
	CallStatusMissed     CallStatus = "missed"
	CallStatusDeclined   CallStatus = "declined"
)

// Valid reports whether s is one of the known call statuses.
func (s CallStatus) Valid() bool {
	switch s {
	case CallStatusSuccessful, CallStatusMissed, CallStatusDeclined:
		return true
	}
	return false
}

// Billable reports whether a call with this status costs money.
// Missed and declined calls are pure records with no balance effect.
func (s CallStatus) Billable() bool {
	return s == CallStatusSuccessful
}

// Call is an immutable record of one phone call between two users.
// Duration is stored in whole seconds and is only present for statuses
// that imply the conversation actually happened.
type Call struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	CallerID  uint       `gorm:"index;not null" json:"caller_id"`
	Caller    *User      `gorm:"foreignKey:CallerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	CalleeID  uint       `gorm:"index;not null" json:"callee_id"`
	Callee    *User      `gorm:"foreignKey:CalleeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Duration  *int64     `json:"duration,omitempty"` // seconds
	Status    CallStatus `gorm:"not null" json:"status"`
	Reference string     `gorm:"not null" json:"reference"`
	CreatedAt time.Time  `json:"created"`
}

// CreateCallInput is the payload accepted by the call endpoint.
type CreateCallInput struct {
	CallerID uint       `json:"caller_id"`
	CalleeID uint       `json:"callee_id"`
	Duration *int64     `json:"duration"` // seconds
	Status   CallStatus `json:"status"`
}
