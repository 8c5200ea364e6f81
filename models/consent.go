package models

import (
	"time"

	"github.com/guregu/null/v5"
)

// Consent is the authoritative record of a time-bounded authorization a
// customer grants to a third party. Rows are created once by the store and
// mutated only through status/receipt/validity updates; the only physical
// delete is the cascading purge.
type Consent struct {
	Id                 string
	OrgId              string
	ClientId           string
	ConsentType        string
	Receipt            string
	CurrentStatus      string
	Frequency          int
	ValidityTime       null.Int // epoch seconds; invalid means open-ended
	RecurringIndicator bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// AuthorizationResource is one authorization attempt/grant tied to a consent.
// UserId stays null until a user completes the authorization.
type AuthorizationResource struct {
	Id         string
	ConsentId  string
	AuthType   string
	UserId     null.String
	AuthStatus string
	UpdatedAt  time.Time

	// Mappings is populated on detailed reads only, ordered by mapping id.
	Mappings []ConsentMappingResource
}

// ConsentMappingResource is one granted permission unit, e.g. one account
// crossed with one data category. Resource is an opaque payload owned by the
// API caller.
type ConsentMappingResource struct {
	Id              string
	AuthorizationId string
	Resource        string
	Permission      string
	MappingStatus   string
}

// ConsentAttribute is one (key, value) pair of the extensible side-table.
// Keys are unique per consent.
type ConsentAttribute struct {
	ConsentId string
	Key       string
	Value     string
}

// ConsentFile is an opaque large payload attached to a consent, at most one
// per consent.
type ConsentFile struct {
	ConsentId   string
	FileContent string
}

// ConsentStatusAuditRecord is append-only: exactly one record is written for
// every status transition, in the same unit of work as the transition itself.
type ConsentStatusAuditRecord struct {
	AuditId        string
	ConsentId      string
	PreviousStatus null.String
	CurrentStatus  string
	Reason         null.String
	ActionBy       null.String
	ActionTime     time.Time
}

// DetailedConsentResource is a read-time aggregate, never persisted as such.
type DetailedConsentResource struct {
	Consent
	Attributes             map[string]string
	AuthorizationResources []AuthorizationResource
}

// ConsentWithAttributes pairs the consent row with its attribute side-table,
// without the authorization tree of DetailedConsentResource.
type ConsentWithAttributes struct {
	Consent
	Attributes map[string]string
}

// ConsentSearchFilters are independent optional filter sets. An empty set
// matches everything; non-empty sets are OR within the set, AND across sets.
type ConsentSearchFilters struct {
	ConsentIds      []string
	ClientIds       []string
	ConsentTypes    []string
	ConsentStatuses []string
	UserIds         []string
	FromTime        *time.Time
	ToTime          *time.Time
	Limit           *int
	Offset          *int
}

// AuthorizationSearchFilters filter authorization resources by their consent
// and/or the user that completed them. Both are optional.
type AuthorizationSearchFilters struct {
	ConsentId string
	UserId    string
}

// ConsentStatusAuditSearchFilters narrow the audit trail the same way
// ConsentSearchFilters narrow consents: empty sets match everything.
type ConsentStatusAuditSearchFilters struct {
	ConsentIds []string
	Statuses   []string
	ActionBy   string
	FromTime   *time.Time
	ToTime     *time.Time
	Limit      *int
	Offset     *int
}

type ConsentStatusUpdate struct {
	ConsentId string
	Status    string
	Reason    string
	ActionBy  string
}
