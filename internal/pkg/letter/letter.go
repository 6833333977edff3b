// Package letter renders the approved leave letter as a PDF.
package letter

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const dateLayout = "02 January 2006"

type Data struct {
	RequestID    string
	EmployeeName string
	NIP          string
	Position     string
	LeaveType    string
	StartDate    time.Time
	EndDate      time.Time
	WorkingDays  int
	Reason       string
	Address      string

	LeaveYear           int
	UsedN2Year          int
	UsedCarryOverDays   int
	UsedCurrentYearDays int

	SupervisorName        string
	SupervisorSignedAt    *time.Time
	AuthorizedOfficerName string
	ApprovedAt            *time.Time
}

// Render writes the letter for d to w.
func Render(w io.Writer, d Data) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Surat Izin Cuti "+d.RequestID, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "SURAT IZIN CUTI", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "No. "+d.RequestID, "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 12)
	row := func(label, value string) {
		pdf.CellFormat(55, 8, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 8, ": "+value, "", 1, "L", false, 0, "")
	}
	row("Nama", d.EmployeeName)
	row("NIP", d.NIP)
	if d.Position != "" {
		row("Jabatan", d.Position)
	}
	row("Jenis Cuti", d.LeaveType)
	row("Tanggal", fmt.Sprintf("%s s/d %s", d.StartDate.Format(dateLayout), d.EndDate.Format(dateLayout)))
	row("Lama", fmt.Sprintf("%d hari kerja", d.WorkingDays))
	if d.Address != "" {
		row("Alamat selama cuti", d.Address)
	}
	pdf.Ln(2)
	pdf.MultiCell(0, 7, "Alasan: "+d.Reason, "", "L", false)

	if d.UsedN2Year+d.UsedCarryOverDays+d.UsedCurrentYearDays > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, "Pemakaian Saldo Cuti Tahunan", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 12)
		row(fmt.Sprintf("Tahun %d", d.LeaveYear-2), fmt.Sprintf("%d hari", d.UsedN2Year))
		row(fmt.Sprintf("Tahun %d", d.LeaveYear-1), fmt.Sprintf("%d hari", d.UsedCarryOverDays))
		row(fmt.Sprintf("Tahun %d", d.LeaveYear), fmt.Sprintf("%d hari", d.UsedCurrentYearDays))
	}

	pdf.Ln(12)
	signature := func(title, name string, at *time.Time) {
		pdf.CellFormat(0, 7, title, "", 1, "L", false, 0, "")
		signed := "-"
		if at != nil {
			signed = at.Format(dateLayout)
		}
		pdf.CellFormat(0, 7, fmt.Sprintf("%s (disetujui %s)", name, signed), "", 1, "L", false, 0, "")
		pdf.Ln(4)
	}
	signature("Atasan Langsung", d.SupervisorName, d.SupervisorSignedAt)
	signature("Pejabat Berwenang", d.AuthorizedOfficerName, d.ApprovedAt)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render leave letter: %w", err)
	}
	return nil
}
