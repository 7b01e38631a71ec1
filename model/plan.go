package model

import (
	"time"

	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/catalog"
)

// Operation is one row of the quality plan.
// At most one of Interne and Tierce carries the "X" marker.
type Operation struct {
	Op          string `json:"op"`
	Description string `json:"description"`
	Interne     string `json:"interne"`
	Tierce      string `json:"tierce"`
	Document    string `json:"document"`
	Criteria    string `json:"criteria"`
	Signature   string `json:"signature"`
	Record      string `json:"record"`
	Comment     string `json:"comment"`
}

// Operations is the fixed 01, 05, 13, 17 sequence of a quality plan
type Operations [4]Operation

// Plan sources
const (
	SourceImport = "import"
	SourceManual = "manual"
)

// QualityPlan is a generated plan kept in memory until its document is downloaded
type QualityPlan struct {
	ID         string           `json:"id"`
	Owner      string           `json:"owner"`
	Source     string           `json:"source"` // import, manual
	WorkOrder  WorkOrder        `json:"work_order"`
	Operations Operations       `json:"operations"`
	Material   catalog.Material `json:"material"`
	QCPRef     string           `json:"qcp_ref"`
	Unmatched  []string         `json:"unmatched_fields,omitempty"`
	Archived   string           `json:"archived_object,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}
