// Package render turns a generated plan into the FO-24-PRO document.
package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/catalog"
	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/model"
)

// ErrRender wraps every failure to produce an artifact
var ErrRender = errors.New("render quality plan")

// CriteriaLimit is the number of characters of acceptance criteria printed per row
const CriteriaLimit = 150

// Form metadata printed in the header block
const (
	CompanyName  = "Global metallic products industries (GMPI)"
	FormCode     = "FO-24-PRO"
	RevisionIdx  = "4"
	RevisionDate = "10/12/2014"
	Title        = "OPERATIONS DE FABRICATION ET DE CONTROLE"
)

// Document is everything the renderer prints
type Document struct {
	Operations model.Operations
	WorkOrder  model.WorkOrder
	QCPRef     string
	Material   catalog.Material
	PreparedBy string
	ApprovedBy string
}

// Artifact is a rendered file on local disk
type Artifact struct {
	Path        string
	Name        string
	ContentType string
	Size        int64
}

// Renderer produces one artifact per document
type Renderer interface {
	Render(ctx context.Context, doc Document) (*Artifact, error)
}

// TruncateCriteria cuts s to CriteriaLimit characters
func TruncateCriteria(s string) string {
	r := []rune(s)
	if len(r) <= CriteriaLimit {
		return s
	}
	return string(r[:CriteriaLimit])
}

// ArtifactName follows QP_<wo_no>_<timestamp>.<ext>
func ArtifactName(woNo string, t time.Time, ext string) string {
	safe := strings.NewReplacer("/", "_", `\`, "_").Replace(woNo)
	return fmt.Sprintf("QP_%s_%s.%s", safe, t.Format("20060102_150405"), ext)
}
