// Package models defines the agent-side data models held in the local
// durable store and synchronized with the server.
package models

import "time"

// SyncState describes where a locally captured record stands relative to the
// server. It is stored as an integer so the local store can index on it.
type SyncState int

const (
	// SyncStatePending marks a record accepted locally but not yet confirmed
	// by the server.
	SyncStatePending SyncState = 0
	// SyncStateSynced marks a record whose existence and identifier are
	// confirmed by the server. The transition from pending is monotonic: the
	// sync engine never reverts a synced record.
	SyncStateSynced SyncState = 1
	// SyncStateRejected marks a record the server refused permanently
	// (validation failure). It is excluded from retries and flagged for
	// manual review.
	SyncStateRejected SyncState = 2
)

// NeedType classifies the reported need.
type NeedType string

const (
	NeedTypeWater       NeedType = "Agua Potable"
	NeedTypeElectricity NeedType = "Luz Eléctrica"
	NeedTypeDrainage    NeedType = "Drenaje"
	NeedTypeHealth      NeedType = "Salud"
	NeedTypeEducation   NeedType = "Educación"
	NeedTypeSecurity    NeedType = "Seguridad"
	NeedTypeOther       NeedType = "Otro"
)

// Location is a geotag captured with a report.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Report is a citizen-incident report captured in the field.
//
// LocalKey is assigned by the local store, never transmitted, and kept even
// after the server id is known so it stays a stable display key. RemoteID is
// empty until the server accepts the record; once set, the server owns the
// record's canonical identity. IdempotencyKey is generated at capture time and
// sent with every submission attempt so a retry after a lost success response
// cannot create a duplicate on the server.
type Report struct {
	LocalKey       int64
	RemoteID       string
	SyncState      SyncState
	LastError      string
	IdempotencyKey string
	CapturedAt     time.Time

	Municipality   string
	Community      string
	Location       Location
	NeedType       NeedType
	Description    string
	EvidenceBase64 string
	Author         string
}

// Pending reports whether the record still awaits server confirmation.
func (r *Report) Pending() bool { return r.SyncState == SyncStatePending }

// Synced reports whether the server has confirmed the record.
func (r *Report) Synced() bool { return r.SyncState == SyncStateSynced }

// Person is a community contact captured in the field. It gets the same
// bookkeeping and sync treatment as Report.
type Person struct {
	LocalKey       int64
	RemoteID       string
	SyncState      SyncState
	LastError      string
	IdempotencyKey string
	CapturedAt     time.Time

	Name      string
	Role      string
	Phone     string
	Community string
}

func (p *Person) Pending() bool { return p.SyncState == SyncStatePending }

func (p *Person) Synced() bool { return p.SyncState == SyncStateSynced }
