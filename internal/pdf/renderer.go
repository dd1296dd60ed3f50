package pdf

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/medicare/pharmacy-api/internal/config"
	"github.com/medicare/pharmacy-api/internal/model"
)

// Renderer produces printable A4 prescription documents.
type Renderer struct {
	clinic config.ClinicConfig
}

func NewRenderer(clinic config.ClinicConfig) *Renderer {
	return &Renderer{clinic: clinic}
}

// Render lays out the finalized prescription: clinic header, patient block,
// numbered medicine table, doctor signature footer.
func (r *Renderer) Render(doc *model.PrescriptionDocument) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, r.clinic.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(0, 6, r.clinic.Motto, "", 1, "C", false, 0, "")
	pdf.Ln(4)
	pdf.SetLineWidth(0.5)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(6)

	p := doc.Prescription

	pdf.SetFont("Helvetica", "", 10)
	patientName := ""
	if doc.Patient.PII != nil {
		patientName = doc.Patient.PII.FullName
	}
	r.labeled(pdf, "Patient", fmt.Sprintf("%s (%s)", patientName, doc.Patient.PatientCode))
	r.labeled(pdf, "Age band", doc.Patient.AgeBand)
	r.labeled(pdf, "Date", p.IssuedOn.Format("2 January 2006"))
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Diagnosis", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 6, p.Diagnosis, "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Rx", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for i, item := range p.Items {
		name := ""
		if item.Medicine != nil {
			name = fmt.Sprintf("%s %s %s", item.Medicine.Name, item.Medicine.Strength, item.Medicine.Form)
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 6, fmt.Sprintf("%d. %s", i+1, name), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		line := fmt.Sprintf("    %s, %s, for %s", item.Dosage, item.Frequency, item.Duration)
		if item.Remarks != nil && *item.Remarks != "" {
			line += " - " + *item.Remarks
		}
		pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
		pdf.Ln(1)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Recommendation", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 6, p.Recommendation, "", "L", false)

	if p.Notes != nil && *p.Notes != "" {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 7, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 6, *p.Notes, "", "L", false)
	}

	pdf.SetY(-40)
	pdf.Line(130, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, doc.DoctorName, "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, doc.DoctorEmail, "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render prescription pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) labeled(pdf *fpdf.Fpdf, label, value string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(30, 6, label+":", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, value, "", 1, "L", false, 0, "")
}
