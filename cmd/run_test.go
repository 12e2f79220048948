package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/leadgen-cli/internal/model"
)

func resetRunFlags() {
	runSICCodes = nil
	runPhone = ""
	runLocation = ""
	runYearEndMonth = 0
	runYearEndStart = ""
	runYearEndEnd = ""
}

func TestBuildCriteria_MonthMode(t *testing.T) {
	resetRunFlags()
	runSICCodes = []string{"62020"}
	runYearEndMonth = 3

	c := buildCriteria()
	assert.Equal(t, model.YearEndModeMonth, c.YearEndMode)
	assert.Equal(t, 3, c.YearEndMonth)
}

func TestBuildCriteria_RangeTakesPrecedence(t *testing.T) {
	resetRunFlags()
	runSICCodes = []string{"62020"}
	runYearEndMonth = 3
	runYearEndStart = "2025-03-01"
	runYearEndEnd = "2025-04-15"

	c := buildCriteria()
	assert.Equal(t, model.YearEndModeRange, c.YearEndMode)
	assert.Equal(t, "2025-03-01", c.YearEndStart)
	assert.Equal(t, "2025-04-15", c.YearEndEnd)
	assert.Zero(t, c.YearEndMonth)
}

func TestBuildCriteria_NoYearEndFilter(t *testing.T) {
	resetRunFlags()
	runSICCodes = []string{"62020"}
	runPhone = "+447700900000"

	c := buildCriteria()
	assert.Equal(t, model.YearEndModeNone, c.YearEndMode)
	assert.Equal(t, "+447700900000", c.Phone)
}
