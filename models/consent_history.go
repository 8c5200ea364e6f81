package models

import (
	"time"
)

// ConsentHistoryRecordType discriminates what kind of record an amendment
// history row refers to. RecordId is a ConsentId, AuthorizationId or
// MappingId depending on this type; it is not a true relational key.
type ConsentHistoryRecordType string

const (
	HistoryRecordTypeConsentData  ConsentHistoryRecordType = "consent_basic_data"
	HistoryRecordTypeAttributes   ConsentHistoryRecordType = "consent_attributes"
	HistoryRecordTypeAuthResource ConsentHistoryRecordType = "consent_auth_resource"
	HistoryRecordTypeMapping      ConsentHistoryRecordType = "consent_mapping"
)

// ConsentHistoryEntry is one append-only row of the amendment history table:
// one changed record within one amendment. Several entries share a HistoryId
// when a single amendment touches multiple records.
type ConsentHistoryEntry struct {
	HistoryId         string
	RecordId          string
	RecordType        ConsentHistoryRecordType
	ChangedAttributes string // old->new diff, opaque JSON
	Reason            string
	EffectiveAt       time.Time
}

// ConsentHistoryResource groups every entry of one amendment. A caller
// reconstructs a point-in-time snapshot by replaying diffs backward from the
// current state, most recent amendment first.
type ConsentHistoryResource struct {
	ConsentId   string
	HistoryId   string
	Reason      string
	EffectiveAt time.Time

	BasicData     string            // diff of the consent row itself, empty if untouched
	Attributes    string            // diff of the attribute side-table, empty if untouched
	AuthResources map[string]string // authorization id -> diff
	Mappings      map[string]string // mapping id -> diff
}

// ConsentAmendment describes everything one amendment changed. The usecase
// fans it out into one history entry per changed record, all sharing one
// generated history id.
type ConsentAmendment struct {
	Reason      string
	EffectiveAt time.Time

	BasicData     string
	Attributes    string
	AuthResources map[string]string
	Mappings      map[string]string
}
