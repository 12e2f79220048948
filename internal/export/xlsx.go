// Package export renders a finished task's leads as an XLSX workbook for
// download.
package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leadgen-cli/internal/model"
)

var leadHeader = []string{
	"Company Name",
	"Company Number",
	"Person Name",
	"Role",
	"Email",
	"Accounting Reference Date",
	"Search Performed On",
}

// Workbook builds an in-memory workbook with one row per lead.
func Workbook(task *model.Task) (*xlsx.File, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	if err != nil {
		return nil, eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range leadHeader {
		header.AddCell().SetString(h)
	}

	for _, lead := range task.Results {
		row := sheet.AddRow()
		row.AddCell().SetString(lead.CompanyName)
		row.AddCell().SetString(lead.CompanyNumber)
		row.AddCell().SetString(lead.PersonName)
		row.AddCell().SetString(lead.PersonRole)
		row.AddCell().SetString(lead.Email)
		row.AddCell().SetString(lead.YearEnd)
		row.AddCell().SetString(lead.EvaluatedAt.Format("2006-01-02 15:04:05"))
	}

	return f, nil
}

// Write builds the workbook for a task and writes it to w.
func Write(w io.Writer, task *model.Task) error {
	f, err := Workbook(task)
	if err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write workbook")
	}
	return nil
}
