package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leadgen-cli/internal/model"
)

func TestWorkbook_HeaderAndRows(t *testing.T) {
	task := &model.Task{
		ID: "task-1",
		Results: []model.Lead{
			{
				CompanyName:   "ACME LIMITED",
				CompanyNumber: "01234567",
				PersonName:    "SMITH, Jane",
				PersonRole:    "director",
				Email:         "jane@acme.co.uk",
				YearEnd:       "31/3",
				EvaluatedAt:   time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
			},
			{
				CompanyName:   "BETA LTD",
				CompanyNumber: "07654321",
				PersonName:    "DOE, John",
				PersonRole:    "ceo",
				Email:         "john@beta.co.uk",
				YearEnd:       "N/A",
			},
		},
	}

	f, err := Workbook(task)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)

	sheet := f.Sheets[0]
	assert.Equal(t, "Leads", sheet.Name)
	require.Len(t, sheet.Rows, 3)

	assert.Equal(t, "Company Name", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "Email", sheet.Rows[0].Cells[4].String())

	assert.Equal(t, "ACME LIMITED", sheet.Rows[1].Cells[0].String())
	assert.Equal(t, "jane@acme.co.uk", sheet.Rows[1].Cells[4].String())
	assert.Equal(t, "31/3", sheet.Rows[1].Cells[5].String())
	assert.Equal(t, "2026-08-30 12:00:00", sheet.Rows[1].Cells[6].String())

	assert.Equal(t, "N/A", sheet.Rows[2].Cells[5].String())
}

func TestWorkbook_NoLeads(t *testing.T) {
	f, err := Workbook(&model.Task{ID: "task-2"})
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	assert.Len(t, f.Sheets[0].Rows, 1, "header only")
}

func TestWrite_ProducesReadableFile(t *testing.T) {
	task := &model.Task{
		ID: "task-3",
		Results: []model.Lead{
			{CompanyName: "ACME LIMITED", Email: "jane@acme.co.uk"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, task))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	require.Len(t, f.Sheets[0].Rows, 2)
	assert.Equal(t, "ACME LIMITED", f.Sheets[0].Rows[1].Cells[0].String())
}
