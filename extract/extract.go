// Package extract derives work-order fields from free-form text.
//
// Every rule is best effort: a missing label never fails, it resolves to an
// empty value or a documented default. Each result says whether the rule
// actually matched so callers can tell a default from a real value.
package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/model"
)

// Field is the result of one extraction rule
type Field struct {
	Value   string `json:"value"`
	Matched bool   `json:"matched"`
}

// StandardsResult is the result of the standards rule
type StandardsResult struct {
	Values  []string `json:"values"`
	Matched bool     `json:"matched"`
}

// Default values for rules that do not resolve to an empty string
const (
	DefaultPSL      = "1"
	DefaultStandard = "API 6A"
)

// KnownStandards in canonical order
var KnownStandards = []string{"API 6A", "API 5CT", "API 7-1"}

var (
	customerRe = regexp.MustCompile(`(?i)CUSTOMER[:\s]*([\p{L}\p{N}_]+)`)
	orderRe    = regexp.MustCompile(`(?i)ORDER[:\s]*N?[O°]?[:\s]*([A-Z0-9-]+)`)
	woRe       = regexp.MustCompile(`(?i)\bWO[:\s]*([A-Z0-9-]+)`)
	productRe  = regexp.MustCompile(`(ADAPTER|FLANGE|CONNECTOR)[^.]*`)
	gradeRe    = regexp.MustCompile(`(?i)GRADE[:\s]*([A-Z0-9\s-]+)`)
	pslRe      = regexp.MustCompile(`(?i)PSL[-\s]*(\d)`)
)

func submatch(re *regexp.Regexp, text string) Field {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return Field{}
	}
	return Field{Value: m[1], Matched: true}
}

// Customer is the word following a CUSTOMER label
func Customer(text string) Field {
	return submatch(customerRe, text)
}

// OrderNo follows an ORDER, ORDER NO or ORDER N° label
func OrderNo(text string) Field {
	return submatch(orderRe, text)
}

// WONo follows a WO label
func WONo(text string) Field {
	return submatch(woRe, text)
}

// Product runs from the first ADAPTER, FLANGE or CONNECTOR keyword up to the next "."
func Product(text string) Field {
	m := productRe.FindString(text)
	if m == "" {
		return Field{}
	}
	return Field{Value: strings.TrimRightFunc(m, isSpace), Matched: true}
}

// Grade follows a GRADE label
func Grade(text string) Field {
	f := submatch(gradeRe, text)
	f.Value = strings.TrimSpace(f.Value)
	return f
}

// PSL is the digit after a PSL label, "1" when absent
func PSL(text string) Field {
	f := submatch(pslRe, text)
	if !f.Matched {
		f.Value = DefaultPSL
	}
	return f
}

// Standards lists the known standards present in text, ["API 6A"] when none are
func Standards(text string) StandardsResult {
	upper := strings.ToUpper(text)
	var found []string
	for _, std := range KnownStandards {
		if strings.Contains(upper, std) {
			found = append(found, std)
		}
	}
	if len(found) == 0 {
		return StandardsResult{Values: []string{DefaultStandard}}
	}
	return StandardsResult{Values: found, Matched: true}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// Result holds every extracted field of one imported document
type Result struct {
	RawText   string          `json:"raw_text"`
	Customer  Field           `json:"customer"`
	OrderNo   Field           `json:"order_no"`
	WONo      Field           `json:"wo_no"`
	Product   Field           `json:"product"`
	Grade     Field           `json:"grade"`
	PSL       Field           `json:"psl"`
	Standards StandardsResult `json:"standards"`
	Date      string          `json:"date"`
}

// ParseWorkOrder uppercases content and runs every rule over it
func ParseWorkOrder(content string, now time.Time) Result {
	text := strings.ToUpper(content)
	return Result{
		RawText:   text,
		Customer:  Customer(text),
		OrderNo:   OrderNo(text),
		WONo:      WONo(text),
		Product:   Product(text),
		Grade:     Grade(text),
		PSL:       PSL(text),
		Standards: Standards(text),
		Date:      now.Format(model.DateLayout),
	}
}

// WorkOrder returns the work-order record of r
func (r Result) WorkOrder() model.WorkOrder {
	return model.WorkOrder{
		RawText:  r.RawText,
		Customer: r.Customer.Value,
		OrderNo:  r.OrderNo.Value,
		WONo:     r.WONo.Value,
		Product:  r.Product.Value,
		Grade:    r.Grade.Value,
		Date:     r.Date,
	}
}

// Unmatched names the fields that fell back to an empty value or default
func (r Result) Unmatched() []string {
	var out []string
	fields := []struct {
		name string
		ok   bool
	}{
		{"customer", r.Customer.Matched},
		{"order_no", r.OrderNo.Matched},
		{"wo_no", r.WONo.Matched},
		{"product", r.Product.Matched},
		{"grade", r.Grade.Matched},
		{"psl", r.PSL.Matched},
		{"standards", r.Standards.Matched},
	}
	for _, f := range fields {
		if !f.ok {
			out = append(out, f.name)
		}
	}
	return out
}
