package domain

import "strings"

// EventRecord is the typed projection of one incident as stored in the
// search index. Timestamps stay in their indexed string form.
type EventRecord struct {
	EventID        int64  `json:"event_id"`
	Type           string `json:"type"`
	Classification string `json:"classification"`
	Description    string `json:"description"`
	StartDatetime  string `json:"start_datetime,omitempty"`
	EndDatetime    string `json:"end_datetime,omitempty"`
}

// SearchHit is one ranked result from the search engine.
type SearchHit struct {
	Event      EventRecord
	Score      float64
	Highlights []string
}

// ContextFragment is one record's contribution to the answer context: its
// provenance plus an ordered, deduplicated list of short text fragments.
// A record with zero fragments never becomes a ContextFragment.
type ContextFragment struct {
	EventID        int64
	Type           string
	Classification string
	Start          string
	End            string
	Fragments      []string
}

// StatRow is one (label, count) pair from a grouped aggregate query.
type StatRow struct {
	Label string
	Count int
}

// TypeCount is one (type, classification, count) group row.
type TypeCount struct {
	Type           string
	Classification string
	Count          int
}

// OrgUnitRef, PersonRef, RiskRef, MeasureRef and EmployeeRef mirror the
// related rows joined into the search document at indexing time.
type OrgUnitRef struct {
	UnitID     int64  `json:"unit_id"`
	Name       string `json:"name"`
	Location   string `json:"location"`
	Identifier string `json:"identifier"`
}

type PersonRef struct {
	PersonID   int64  `json:"person_id"`
	Name       string `json:"name"`
	FamilyName string `json:"family_name"`
	Matricule  string `json:"matricule"`
}

type RiskRef struct {
	RiskID      int64  `json:"risk_id"`
	Name        string `json:"name"`
	Gravity     string `json:"gravity"`
	Probability string `json:"probability"`
}

type MeasureRef struct {
	MeasureID          int64   `json:"measure_id"`
	Name               string  `json:"name"`
	Description        string  `json:"description"`
	Cost               float64 `json:"cost"`
	ImplementationDate string  `json:"implementation_date,omitempty"`
	OwnerName          string  `json:"owner_name"`
}

type EmployeeRef struct {
	PersonID        int64  `json:"person_id"`
	Name            string `json:"name"`
	FamilyName      string `json:"family_name"`
	Matricule       string `json:"matricule"`
	InvolvementType string `json:"involvement_type"`
}

// EventDocument is the enriched search document built from the relational
// store during reindexing.
type EventDocument struct {
	EventRecord

	OrganizationalUnit OrgUnitRef    `json:"organizational_unit"`
	DeclaredBy         PersonRef     `json:"declared_by"`
	Risks              []RiskRef     `json:"risks"`
	CorrectiveMeasures []MeasureRef  `json:"corrective_measures"`
	InvolvedEmployees  []EmployeeRef `json:"involved_employees"`

	FullText string `json:"full_text_search"`
}

// BuildFullText concatenates every searchable text of the document into the
// aggregate relevance field.
func (d *EventDocument) BuildFullText() string {
	parts := []string{
		d.Description,
		d.Type,
		d.Classification,
		d.OrganizationalUnit.Name,
		d.OrganizationalUnit.Location,
		d.DeclaredBy.Name,
		d.DeclaredBy.FamilyName,
	}
	for _, r := range d.Risks {
		parts = append(parts, r.Name)
	}
	for _, m := range d.CorrectiveMeasures {
		parts = append(parts, m.Name, m.Description)
	}
	for _, e := range d.InvolvedEmployees {
		parts = append(parts, e.Name, e.FamilyName)
	}

	kept := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
