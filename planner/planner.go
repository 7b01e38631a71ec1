// Package planner assembles the fixed four-step operation sequence of a
// quality plan from a work order and the reference catalog.
package planner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/catalog"
	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/extract"
	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/model"
)

// ErrIncompleteMaterial is returned when the identified catalog material
// lacks a value one of the templates needs.
var ErrIncompleteMaterial = errors.New("incomplete catalog material")

// DefaultNDT is quoted when no catalog entry covers the identified standards
const DefaultNDT = "MPI, PT"

// Kind is one of the four operation types of a plan
type Kind int

const (
	ReceivingInspection Kind = iota
	DimensionalInspection
	NonDestructiveTesting
	FinalControl
)

// Sequence is the order operations appear in every plan
var Sequence = [len(model.Operations{})]Kind{
	ReceivingInspection,
	DimensionalInspection,
	NonDestructiveTesting,
	FinalControl,
}

// Code is the two-digit sequence id of the operation
func (k Kind) Code() string {
	switch k {
	case ReceivingInspection:
		return "01"
	case DimensionalInspection:
		return "05"
	case NonDestructiveTesting:
		return "13"
	case FinalControl:
		return "17"
	}
	return ""
}

func (k Kind) String() string {
	switch k {
	case ReceivingInspection:
		return "receiving_inspection"
	case DimensionalInspection:
		return "dimensional_inspection"
	case NonDestructiveTesting:
		return "ndt"
	case FinalControl:
		return "final_control"
	}
	return "unknown"
}

// inputs are the values every template is filled from
type inputs struct {
	material  catalog.Material
	standards []string
	psl       string
	ndt       []string
}

func (in inputs) standardsText() string {
	return strings.Join(in.standards, ", ")
}

type template func(in inputs) (model.Operation, error)

var templates = map[Kind]template{
	ReceivingInspection:   receivingInspection,
	DimensionalInspection: dimensionalInspection,
	NonDestructiveTesting: nonDestructiveTesting,
	FinalControl:          finalControl,
}

// need fails with ErrIncompleteMaterial naming every key m lacks
func need(m catalog.Material, keys ...string) error {
	if missing := m.Missing(keys...); len(missing) > 0 {
		return fmt.Errorf("%w: %v lacks %s", ErrIncompleteMaterial, m.Grades, strings.Join(missing, ", "))
	}
	return nil
}

func receivingInspection(in inputs) (model.Operation, error) {
	if err := need(in.material, catalog.KeyChemicalComposition); err != nil {
		return model.Operation{}, err
	}
	return model.Operation{
		Op:          ReceivingInspection.Code(),
		Description: "Receiving Material check",
		Interne:     "X",
		Document:    "FO-02-PRO",
		Criteria:    fmt.Sprintf("Chemical composition: %s. Certificat EN 10204 Type 3.1.", in.material.ChemicalComposition),
		Record:      "Manifest",
	}, nil
}

func dimensionalInspection(in inputs) (model.Operation, error) {
	return model.Operation{
		Op:          DimensionalInspection.Code(),
		Description: "Visual & Dimensional Inspection after cutting",
		Interne:     "X",
		Document:    "FO-51-PRO",
		Criteria:    fmt.Sprintf("Dimensions per drawing, tolerances per %s PSL%s.", in.standardsText(), in.psl),
		Record:      "FO-51-PRO",
	}, nil
}

func nonDestructiveTesting(in inputs) (model.Operation, error) {
	ndt := DefaultNDT
	if len(in.ndt) > 0 {
		ndt = strings.Join(in.ndt, ", ")
	}
	return model.Operation{
		Op:          NonDestructiveTesting.Code(),
		Description: "NDT",
		Tierce:      "X",
		Document:    "PR-13-PRO",
		Criteria:    fmt.Sprintf("Per %s PSL%s : %s", in.standardsText(), in.psl, ndt),
		Signature:   "Gaith Elleuch",
		Record:      "NDT Report",
	}, nil
}

func finalControl(in inputs) (model.Operation, error) {
	if err := need(in.material, catalog.KeyUTSMin, catalog.KeyYSMin, catalog.KeyElongationMin); err != nil {
		return model.Operation{}, err
	}
	mech := in.material.MechanicalProperties
	return model.Operation{
		Op:          FinalControl.Code(),
		Description: "Final control",
		Interne:     "X",
		Document:    "FO-19-PRO",
		Criteria: fmt.Sprintf("UTS ≥ %sMPa, YS ≥ %sMPa, Elongation ≥ %s%%. Marquage complet.",
			number(mech.UTSMinMPa), number(mech.YSMinMPa), number(mech.ElongationMin)),
		Signature: "Kais Hmidet, Ahmed Drira",
		Record:    "FO-19-PRO",
		Comment:   "Received/Finished",
	}, nil
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Planner generates operation sequences against one catalog
type Planner struct {
	catalog *catalog.Catalog
}

func New(cat *catalog.Catalog) *Planner {
	return &Planner{catalog: cat}
}

// Plan is the planner output together with the identification details
type Plan struct {
	Operations      model.Operations
	Material        catalog.Material
	MaterialMatched bool
	Standards       extract.StandardsResult
	PSL             extract.Field
}

// GenerateOperations returns the four operations of wo and the material
// they were built against. Input never causes an error; only a catalog
// material missing template data does.
func (p *Planner) GenerateOperations(wo model.WorkOrder) (model.Operations, catalog.Material, error) {
	plan, err := p.Plan(wo)
	if err != nil {
		return model.Operations{}, catalog.Material{}, err
	}
	return plan.Operations, plan.Material, nil
}

// Plan is GenerateOperations with the identification results kept
func (p *Planner) Plan(wo model.WorkOrder) (*Plan, error) {
	material, matched := p.catalog.IdentifyMaterial(wo.Grade)
	standards := extract.Standards(wo.RawText)
	psl := extract.PSL(wo.RawText)

	in := inputs{
		material:  material,
		standards: standards.Values,
		psl:       psl.Value,
		ndt:       p.catalog.NDTDescriptions(standards.Values),
	}

	plan := &Plan{
		Material:        material,
		MaterialMatched: matched,
		Standards:       standards,
		PSL:             psl,
	}
	for i, kind := range Sequence {
		op, err := templates[kind](in)
		if err != nil {
			return nil, fmt.Errorf("operation %s: %w", kind.Code(), err)
		}
		plan.Operations[i] = op
	}
	return plan, nil
}

// QCPRef formats the quality control plan reference for a work order
func QCPRef(woNo string, t time.Time) string {
	return fmt.Sprintf("QCP-%s-%s", woNo, t.Format("20060102"))
}
