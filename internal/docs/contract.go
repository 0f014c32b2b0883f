package docs

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"

	"pujcovna/internal/domain"
	"pujcovna/internal/rental"
)

// ContractFilename is the download name used by the HTTP handler.
func ContractFilename(r domain.Reservation) string {
	return fmt.Sprintf("contract-%s.pdf", r.ID)
}

// BuildContract renders the rental contract for a reservation as a PDF.
func BuildContract(r domain.Reservation, currency string) ([]byte, error) {
	period, err := rental.ParseDateRange(r.StartDate, r.EndDate)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Rental contract "+r.ID, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "RENTAL CONTRACT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "Reservation : "+r.ID)
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Period      : %s - %s (%d days)", period.StartString(), period.EndString(), period.Days()))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Delivery    : "+string(r.DeliveryMethod))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Customer")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 11)
	for _, line := range []string{
		r.CustomerName,
		r.CustomerEmail,
		r.CustomerPhone,
		strings.TrimSpace(strings.Join(nonEmpty(r.Street, r.Zip+" "+r.City), ", ")),
	} {
		if strings.TrimSpace(line) == "" {
			continue
		}
		pdf.Cell(0, 6, tr(line))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(90, 7, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 7, "Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 7, "Unit", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 7, "Total", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, it := range r.Items {
		pdf.CellFormat(90, 6, tr(it.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprint(it.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, domain.FormatMoney(it.UnitPrice, currency), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, domain.FormatMoney(it.TotalPrice, currency), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Total rent : "+domain.FormatMoney(r.TotalPrice, currency))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Deposit    : "+domain.FormatMoney(r.DepositTotal, currency))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "The customer takes over the listed equipment in working order and returns it "+
		"by the last day of the rental period. The deposit is refunded after the equipment has been checked.", "", "", false)
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(85, 6, "Lender", "T", 0, "C", false, 0, "")
	pdf.CellFormat(10, 6, "", "", 0, "", false, 0, "")
	pdf.CellFormat(85, 6, "Customer", "T", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func nonEmpty(parts ...string) []string {
	out := parts[:0]
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
