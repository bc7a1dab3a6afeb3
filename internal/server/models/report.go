// Package models defines the server-side records persisted in PostgreSQL.
package models

import "time"

// Triage statuses a report moves through after intake.
const (
	StatusPending    = "Pendiente"
	StatusInProgress = "En Proceso"
	StatusResolved   = "Resuelto"
)

// Report is a server-confirmed incident report. ID is assigned on insert and
// is the record's canonical identity. IdempotencyKey is the client-generated
// key that makes re-submission of the same capture a no-op.
type Report struct {
	ID             string
	IdempotencyKey string
	Municipio      string
	Comunidad      string
	Lat            float64
	Lng            float64
	NeedType       string
	Description    string
	EvidenceBase64 string
	EvidenceKey    string
	Status         string
	ReportedBy     string
	Timestamp      time.Time
	CreatedAt      time.Time
}

// Person is a server-confirmed community contact.
type Person struct {
	ID             string
	IdempotencyKey string
	Name           string
	Role           string
	Phone          string
	Community      string
	Timestamp      time.Time
	CreatedAt      time.Time
}
