package services

import (
	"bytes"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/omerfarooq187/hostel-management/apperr"
	"github.com/omerfarooq187/hostel-management/models"
)

// ReceiptService renders a fee as a narrow thermal-printer style PDF slip.
// It only consumes data; callers resolve the fee and its student first.
type ReceiptService struct {
	hostelName string
	now        func() time.Time
}

func NewReceiptService(hostelName string, now func() time.Time) *ReceiptService {
	if now == nil {
		now = time.Now
	}
	return &ReceiptService{hostelName: hostelName, now: now}
}

// Render produces the receipt PDF for a fee. fee.Student (with its User)
// must be loaded.
func (s *ReceiptService) Render(fee *models.Fee) ([]byte, error) {
	if fee.Student == nil || fee.Student.User == nil {
		return nil, apperr.Internal(nil, "fee is missing student data")
	}

	// 80mm x 150mm slip
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "mm",
		Size:    gofpdf.SizeType{Wd: 80, Ht: 150},
	})
	pdf.SetMargins(7, 5, 7)
	pdf.AddPage()

	divider := func() {
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 4, "--------------------------------", "", 1, "C", false, 0, "")
	}
	line := func(text string) {
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 4.5, text, "", 1, "L", false, 0, "")
	}
	section := func(text string) {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(0, 5, text, "", 1, "L", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 6, s.hostelName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(0, 5, "FEE RECEIPT", "", 1, "C", false, 0, "")
	divider()

	section("Student")
	line("Name: " + fee.Student.User.Name)
	line("Roll: " + fee.Student.RollNo)
	divider()

	section("Fee")
	line("Month: " + fee.Month)
	line("Amount: Rs " + fee.Amount.StringFixed(2))
	line("Due: " + fee.DueDate.Format("2006-01-02"))
	line("Status: " + fee.Status)
	line("Mode: CASH")
	divider()

	line("Issued on: " + s.now().Format("2006-01-02"))

	if fee.Status == models.FeePaid {
		// translucent diagonal stamp across the body
		pdf.SetFont("Helvetica", "B", 28)
		pdf.SetTextColor(190, 190, 190)
		pdf.TransformBegin()
		pdf.TransformRotate(30, 40, 80)
		pdf.Text(18, 84, "PAID")
		pdf.TransformEnd()
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(0, 4, "Official receipt. No signature required.", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, apperr.Internal(err, "pdf generation failed")
	}
	return buf.Bytes(), nil
}
