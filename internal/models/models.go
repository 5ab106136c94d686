// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

// Package models defines the domain records exchanged with the Laravel
// backend. The backend owns the lifecycle of every entity; identifiers are
// opaque strings and ordering is whatever the backend returns.
package models

import "time"

// Role is the closed set of account roles known to the backend.
type Role string

const (
	RolePilgrim   Role = "pilgrim"
	RoleVolunteer Role = "volunteer"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePilgrim, RoleVolunteer, RoleAdmin:
		return true
	}
	return false
}

// User is the authenticated account as reported by the backend's
// current-user endpoint.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      Role      `json:"role"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// PilgrimStatus is the registration state machine owned by the backend.
// The only transitions the UI issues are pending->confirmed and
// pending/confirmed->cancelled.
type PilgrimStatus string

const (
	PilgrimPending   PilgrimStatus = "pending"
	PilgrimConfirmed PilgrimStatus = "confirmed"
	PilgrimCancelled PilgrimStatus = "cancelled"
)

// Pilgrim is a pilgrim registration record.
type Pilgrim struct {
	ID               string        `json:"id"`
	FirstName        string        `json:"firstName"`
	LastName         string        `json:"lastName"`
	Email            string        `json:"email"`
	Phone            string        `json:"phone"`
	City             string        `json:"city"`
	Country          string        `json:"country"`
	Accommodation    string        `json:"accommodation"`
	SpecialNeeds     string        `json:"specialNeeds,omitempty"`
	Status           PilgrimStatus `json:"status"`
	RegistrationDate time.Time     `json:"registrationDate"`
}

// ScheduleType tags a schedule entry.
type ScheduleType string

const (
	SchedulePrayer   ScheduleType = "prayer"
	ScheduleCeremony ScheduleType = "ceremony"
	ScheduleEvent    ScheduleType = "event"
)

// Schedule is a single entry of the Magal program (a prayer time, a
// ceremony, or a community event).
type Schedule struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Date        string       `json:"date"`
	StartTime   string       `json:"startTime"`
	EndTime     string       `json:"endTime"`
	Location    string       `json:"location"`
	Type        ScheduleType `json:"type"`
}

// NotificationType is the urgency class of an announcement.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
	NotificationUrgent  NotificationType = "urgent"
)

// Notification is a public announcement. IsRead is server-authoritative:
// the value comes from the backend and is passed through untouched.
type Notification struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	IsRead    bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
}

// POICategory is the closed set of point-of-interest categories.
type POICategory string

const (
	POIMosque     POICategory = "mosque"
	POIHealth     POICategory = "health"
	POIFood       POICategory = "food"
	POILodging    POICategory = "lodging"
	POITransport  POICategory = "transport"
	POIInfoCenter POICategory = "info"
)

// PointOfInterest is a mapped location useful to pilgrims during the Magal.
type PointOfInterest struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Address      string      `json:"address"`
	Latitude     float64     `json:"latitude"`
	Longitude    float64     `json:"longitude"`
	Category     POICategory `json:"category"`
	IsOpen       bool        `json:"isOpen"`
	OpeningHours string      `json:"openingHours,omitempty"`
	Phone        string      `json:"phone,omitempty"`
}

// AdminMetrics is the read-only aggregate the backend serves for the
// dashboard. Counts are computed server-side; nothing is derived locally.
type AdminMetrics struct {
	Pilgrims struct {
		Total     int `json:"total"`
		Confirmed int `json:"confirmed"`
		Pending   int `json:"pending"`
		Cancelled int `json:"cancelled"`
	} `json:"pilgrims"`
	Events struct {
		Total  int `json:"total"`
		Active int `json:"active"`
	} `json:"events"`
	Notifications struct {
		Total int `json:"total"`
	} `json:"notifications"`
	Users struct {
		Total     int `json:"total"`
		Active    int `json:"active"`
		Inactive  int `json:"inactive"`
		Suspended int `json:"suspended"`
	} `json:"users"`
	GeneratedAt time.Time `json:"generatedAt"`
}
