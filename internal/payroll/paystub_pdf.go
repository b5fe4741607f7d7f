package payroll

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// buildPaystubPDF renders one paystub page per record. batchNo comes from the
// company counter so every export run is traceable on the printed stub.
func buildPaystubPDF(period *PayrollPeriod, rows []RecordExportRow, batchNo int64, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Paystubs %s", period.PeriodName), false)

	for i, row := range rows {
		pdf.AddPage()

		pdf.SetFont("Arial", "B", 16)
		pdf.CellFormat(0, 10, "Paystub", "", 1, "C", false, 0, "")

		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, fmt.Sprintf("Paystub No: PS-%06d-%03d", batchNo, i+1), "", 1, "C", false, 0, "")
		pdf.CellFormat(0, 6, fmt.Sprintf("Period: %s (%s to %s)",
			period.PeriodName,
			period.StartDate.Format("2006-01-02"),
			period.EndDate.Format("2006-01-02"),
		), "", 1, "C", false, 0, "")
		pdf.Ln(4)

		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 7, "Employee", "B", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		writeKV(pdf, "Name", row.FullName)
		writeKV(pdf, "Employee No", row.EmployeeNumber)
		writeKV(pdf, "Department", row.DepartmentName)
		pdf.Ln(3)

		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 7, "Hours", "B", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		writeKV(pdf, "Worked", fmt.Sprintf("%.2f", row.TotalWorkedHours))
		writeKV(pdf, "Regular", fmt.Sprintf("%.2f", row.TotalRegularHours))
		writeKV(pdf, "Overtime", fmt.Sprintf("%.2f", row.TotalOvertimeHours))
		writeKV(pdf, "Late", fmt.Sprintf("%.2f", row.TotalLateHours))
		writeKV(pdf, "Paid leave", fmt.Sprintf("%.2f", row.PaidLeaveHours))
		pdf.Ln(3)

		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 7, "Pay", "B", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		writeKV(pdf, "Base salary", formatMoney(row.BaseSalary))
		writeKV(pdf, "Hourly rate", formatMoney(row.HourlyRate))
		writeKV(pdf, "Gross pay", formatMoney(row.GrossPay))
		writeKV(pdf, "Benefits", formatMoney(row.TotalBenefits))
		writeKV(pdf, "Deductions", formatMoney(row.TotalDeductions))
		writeKV(pdf, "Late deductions", formatMoney(row.LateDeductions))

		pdf.SetFont("Arial", "B", 10)
		writeKV(pdf, "Net pay", formatMoney(row.NetPay))
		pdf.Ln(4)

		pdf.SetFont("Arial", "", 8)
		pdf.CellFormat(0, 5, fmt.Sprintf("Status: %s / approval: %s", row.Status, row.ApprovalStatus), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 5, fmt.Sprintf("Generated at %s", generatedAt.UTC().Format(time.RFC3339)), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeKV(pdf *gofpdf.Fpdf, key, value string) {
	pdf.CellFormat(50, 6, key, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, value, "", 1, "L", false, 0, "")
}

func formatMoney(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
