package services

// ReviewKind tags the three review-item tables so the claimer and reaper
// can work the combined queue while decisions dispatch per kind.
type ReviewKind string

const (
	KindEvidence            ReviewKind = "evidence"
	KindCompanyRequest      ReviewKind = "company_request"
	KindLeaderTenureRequest ReviewKind = "leader_tenure_request"
)

// ItemRef identifies one review item across the kind tables.
type ItemRef struct {
	Kind ReviewKind `json:"kind"`
	ID   int        `json:"id"`
}

type kindTable struct {
	table    string
	idColumn string
}

var kindTables = map[ReviewKind]kindTable{
	KindEvidence:            {table: "evidence", idColumn: "evidence_id"},
	KindCompanyRequest:      {table: "company_requests", idColumn: "request_id"},
	KindLeaderTenureRequest: {table: "leader_tenure_requests", idColumn: "request_id"},
}

// reviewKinds fixes the order the kind tables appear in UNION queries.
var reviewKinds = []ReviewKind{KindEvidence, KindCompanyRequest, KindLeaderTenureRequest}

// ParseKind maps a route parameter onto a known review kind.
func ParseKind(raw string) (ReviewKind, bool) {
	kind := ReviewKind(raw)
	_, ok := kindTables[kind]
	return kind, ok
}
