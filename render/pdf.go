package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

const (
	lineHeight = 4.0
	cellPad    = 1.0
	fontFamily = "Helvetica"
)

// Operation table columns, mm. Sum is the A4 width minus 10 mm margins.
var (
	opWidths  = []float64{10, 32, 12, 12, 24, 44, 22, 18, 16}
	opHeaders = [2][]string{
		{"", "Manufacture and Cheking Operations", "Interne", "Tierce Parties", "Documents Applicable", "Critère d'acceptance", "Emargement", "Records", "Commentaire"},
		{"", "", "In-House", "Third Party", "Applicable Specification", "Acceptance criteria", "Signature", "", ""},
	}
)

// PDFRenderer writes A4 PDF documents into OutputDir
type PDFRenderer struct {
	OutputDir string
	Now       func() time.Time
}

func NewPDFRenderer(outputDir string) *PDFRenderer {
	return &PDFRenderer{OutputDir: outputDir, Now: time.Now}
}

func (r *PDFRenderer) Render(ctx context.Context, doc Document) (*Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	if err := os.MkdirAll(r.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create output dir: %v", ErrRender, err)
	}

	name := ArtifactName(doc.WorkOrder.WONo, r.Now(), "pdf")
	path := filepath.Join(r.OutputDir, name)

	pdf := build(doc)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return nil, fmt.Errorf("%w: write %s: %v", ErrRender, path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %v", ErrRender, path, err)
	}
	return &Artifact{
		Path:        path,
		Name:        name,
		ContentType: "application/pdf",
		Size:        info.Size(),
	}, nil
}

type page struct {
	*fpdf.Fpdf
	enc *encoding.Encoder
}

// text converts s to the Windows-1252 bytes the core fonts expect
func (p *page) text(s string) string {
	s = strings.ReplaceAll(s, "≥", ">=")
	out, err := p.enc.String(s)
	if err != nil {
		return s
	}
	return out
}

// widen maps each encoded byte to the rune of the same value. SplitText
// indexes the core font widths by rune.
func widen(s string) string {
	r := make([]rune, len(s))
	for i := 0; i < len(s); i++ {
		r[i] = rune(s[i])
	}
	return string(r)
}

// narrow reverses widen
func narrow(s string) string {
	b := make([]byte, 0, len(s))
	for _, r := range s {
		b = append(b, byte(r))
	}
	return string(b)
}

type cell struct {
	text  string
	width float64
	align string
	fill  bool
}

// row prints cells side by side, wrapping text. A row that would cross the
// bottom margin starts a new page; a row taller than the space left on a
// fresh page is split line by line across pages. onBreak redraws headers
// on each new page.
func (p *page) row(cells []cell, minHeight float64, onBreak func()) {
	split := make([][]string, len(cells))
	lines := 1
	for i, c := range cells {
		split[i] = p.SplitText(widen(p.text(c.text)), c.width-2*cellPad)
		lines = max(lines, len(split[i]))
	}

	_, pageH := p.GetPageSize()
	_, _, _, bottom := p.GetMargins()
	limit := pageH - bottom

	if p.GetY()+max(float64(lines)*lineHeight, minHeight) > limit {
		p.breakPage(onBreak)
	}
	for {
		fit := int((limit - p.GetY()) / lineHeight)
		if fit >= lines {
			p.draw(cells, split, max(float64(lines)*lineHeight, minHeight))
			return
		}
		fit = max(fit, 1)
		chunk := make([][]string, len(split))
		for i := range split {
			n := min(fit, len(split[i]))
			chunk[i], split[i] = split[i][:n], split[i][n:]
		}
		p.draw(cells, chunk, float64(fit)*lineHeight)
		lines -= fit
		p.breakPage(onBreak)
	}
}

func (p *page) breakPage(onBreak func()) {
	p.AddPage()
	if onBreak != nil {
		onBreak()
	}
}

// draw prints pre-split cell lines in boxes of height h
func (p *page) draw(cells []cell, lines [][]string, h float64) {
	x, y := p.GetXY()
	for i, c := range cells {
		style := "D"
		if c.fill {
			style = "FD"
		}
		p.Rect(x, y, c.width, h, style)
		p.SetXY(x+cellPad, y)
		align := c.align
		if align == "" {
			align = "L"
		}
		p.MultiCell(c.width-2*cellPad, lineHeight, narrow(strings.Join(lines[i], "\n")), "", align, false)
		x += c.width
	}
	p.SetXY(p.leftMargin(), y+h)
}

func (p *page) leftMargin() float64 {
	left, _, _, _ := p.GetMargins()
	return left
}

// newPage sets up an A4 portrait document with 10 mm margins. Page breaks
// are handled by row.
func newPage() *page {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(false, 10)
	pdf.AliasNbPages("{nb}")
	return &page{Fpdf: pdf, enc: encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())}
}

func build(doc Document) *fpdf.Fpdf {
	p := newPage()
	pdf := p.Fpdf
	pdf.SetTitle(p.text("Quality Plan "+doc.QCPRef), false)
	pdf.SetCreator(FormCode, false)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-8)
		pdf.SetFont(fontFamily, "", 7)
		pdf.CellFormat(0, 4, p.text(fmt.Sprintf("%s - %s - %d/{nb}", FormCode, doc.QCPRef, pdf.PageNo())), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	p.header(doc)
	pdf.Ln(3)
	p.operations(doc)
	pdf.Ln(6)
	p.signatures(doc)
	return pdf
}

func (p *page) header(doc Document) {
	full := 190.0
	p.SetFont(fontFamily, "B", 16)
	p.CellFormat(full, 8, p.text(CompanyName), "", 1, "C", false, 0, "")

	p.SetFont(fontFamily, "B", 9)
	for _, line := range []string{
		"Cod : " + FormCode,
		"Indice de rév : " + RevisionIdx,
		"Quality Plan",
		"Date de rév : " + RevisionDate,
		"N° de page : 1/{nb}",
	} {
		p.CellFormat(full, 5, p.text(line), "", 1, "C", false, 0, "")
	}
	p.Ln(2)

	wo := doc.WorkOrder
	half := full / 2
	p.row([]cell{
		{text: "Date : " + wo.Date, width: half},
		{text: "Commande N°: " + wo.OrderNo, width: half},
	}, 6, nil)
	p.row([]cell{
		{text: "Quality Control Plan Ref : " + doc.QCPRef, width: half},
		{text: "Note :", width: half},
	}, 6, nil)
	p.row([]cell{{text: "N° WO : " + wo.WONo, width: full}}, 6, nil)
	p.row([]cell{{text: "Customer : " + wo.Customer, width: full}}, 6, nil)
	p.row([]cell{{text: "In Brief Job : " + wo.Product, width: full}}, 6, nil)
}

func (p *page) columnHeader() {
	p.SetFont(fontFamily, "B", 7)
	p.SetFillColor(128, 128, 128)
	p.SetTextColor(245, 245, 245)
	p.CellFormat(sum(opWidths), 7, p.text(Title), "1", 1, "C", true, 0, "")
	p.SetTextColor(0, 0, 0)

	for _, labels := range opHeaders {
		cells := make([]cell, len(labels))
		for i, l := range labels {
			cells[i] = cell{text: l, width: opWidths[i], align: "C"}
		}
		p.row(cells, 5, nil)
	}
}

func (p *page) operations(doc Document) {
	p.columnHeader()

	onBreak := func() {
		p.columnHeader()
		p.SetFont(fontFamily, "", 7)
	}
	p.SetFont(fontFamily, "", 7)
	for _, op := range doc.Operations {
		values := []string{
			op.Op, op.Description, op.Interne, op.Tierce, op.Document,
			TruncateCriteria(op.Criteria), op.Signature, op.Record, op.Comment,
		}
		cells := make([]cell, len(values))
		for i, v := range values {
			cells[i] = cell{text: v, width: opWidths[i]}
			if i == 2 || i == 3 {
				cells[i].align = "C"
			}
		}
		p.row(cells, 6, onBreak)
	}

	p.SetFont(fontFamily, "B", 7)
	marker := make([]cell, len(opWidths))
	for i, w := range opWidths {
		marker[i] = cell{width: w, align: "C"}
	}
	marker[len(marker)-2].text = "Yes"
	marker[len(marker)-1].text = "No"
	p.row(marker, 5, onBreak)
}

func (p *page) signatures(doc Document) {
	p.SetFont(fontFamily, "B", 9)
	p.row([]cell{
		{text: "Rédigé par", width: 95, align: "C"},
		{text: "Approuvé par", width: 95, align: "C"},
	}, 6, nil)
	p.SetFont(fontFamily, "", 8)
	p.row([]cell{
		{text: doc.PreparedBy, width: 95, align: "C"},
		{text: doc.ApprovedBy, width: 95, align: "C"},
	}, 18, nil)
}

func sum(v []float64) float64 {
	var total float64
	for _, x := range v {
		total += x
	}
	return total
}
