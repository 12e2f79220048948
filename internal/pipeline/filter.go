package pipeline

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/pkg/registry"
)

const dateLayout = "2006-01-02"

// EvaluateProfile applies the hard filters to a company profile in order:
// operating status, financial-year-end, location. The first failing filter
// rejects the profile; the returned reason names it. Revenue and employee
// bounds on the criteria are carried into the candidate snapshot but never
// enforced — the registry profile does not expose those fields.
func EvaluateProfile(profile *registry.CompanyProfile, criteria model.Criteria, now time.Time) (*model.CompanyCandidate, string) {
	if profile.CompanyStatus != "active" {
		return nil, fmt.Sprintf("status %q is not active", profile.CompanyStatus)
	}

	day, month := yearEndOf(profile)

	if criteria.YearEndMode != model.YearEndModeNone && day > 0 && month > 0 {
		switch criteria.YearEndMode {
		case model.YearEndModeMonth:
			if criteria.YearEndMonth > 0 && month != criteria.YearEndMonth {
				return nil, fmt.Sprintf("year-end month %d does not match %d", month, criteria.YearEndMonth)
			}
		case model.YearEndModeRange:
			start, errS := time.Parse(dateLayout, criteria.YearEndStart)
			end, errE := time.Parse(dateLayout, criteria.YearEndEnd)
			if errS == nil && errE == nil && !yearEndInRange(day, month, start, end) {
				return nil, fmt.Sprintf("year-end %d/%d outside %s..%s", day, month, criteria.YearEndStart, criteria.YearEndEnd)
			}
		}
	}

	if loc := strings.TrimSpace(criteria.Location); loc != "" {
		if !addressContains(profile.RegisteredOfficeAddress, loc) {
			return nil, fmt.Sprintf("address does not mention %q", loc)
		}
	}

	return &model.CompanyCandidate{
		CompanyNumber: profile.CompanyNumber,
		CompanyName:   profile.CompanyName,
		CompanyStatus: profile.CompanyStatus,
		YearEndDay:    day,
		YearEndMonth:  month,
		Address: model.Address{
			AddressLine1: profile.RegisteredOfficeAddress.AddressLine1,
			AddressLine2: profile.RegisteredOfficeAddress.AddressLine2,
			Locality:     profile.RegisteredOfficeAddress.Locality,
			Region:       profile.RegisteredOfficeAddress.Region,
			PostalCode:   profile.RegisteredOfficeAddress.PostalCode,
			Country:      profile.RegisteredOfficeAddress.Country,
		},
		Website:     profile.Links.Website,
		EvaluatedAt: now,
		Criteria:    criteria,
	}, ""
}

// yearEndInRange reconstructs the company's day/month year end for every
// calendar year from start.year-1 through end.year+1 and reports whether any
// reconstruction lands inside [start, end]. The widened year window catches
// year ends sitting just across a year boundary from the range. Day/month
// combinations that do not exist in a candidate year (29 February outside a
// leap year) are skipped; the remaining years are still checked.
func yearEndInRange(day, month int, start, end time.Time) bool {
	if end.Before(start) {
		start, end = end, start
	}
	for year := start.Year() - 1; year <= end.Year()+1; year++ {
		d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if d.Day() != day || d.Month() != time.Month(month) {
			continue // normalized away: invalid combination for this year
		}
		if !d.Before(start) && !d.After(end) {
			return true
		}
	}
	return false
}

// addressContains reports whether needle appears case-insensitively anywhere
// in the joined address fields.
func addressContains(addr registry.Address, needle string) bool {
	joined := strings.Join([]string{
		addr.AddressLine1,
		addr.AddressLine2,
		addr.Locality,
		addr.Region,
		addr.PostalCode,
		addr.Country,
	}, " ")
	return strings.Contains(strings.ToLower(joined), strings.ToLower(needle))
}

// yearEndOf parses the profile's accounting reference date; the wire format
// carries day and month as strings.
func yearEndOf(profile *registry.CompanyProfile) (day, month int) {
	ard := profile.AccountingReferenceDate
	if ard == nil {
		return 0, 0
	}
	day, _ = strconv.Atoi(ard.Day)
	month, _ = strconv.Atoi(ard.Month)
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, 0
	}
	return day, month
}

// formatYearEnd renders a day/month year end the way the results page shows
// it.
func formatYearEnd(day, month int) string {
	if day == 0 || month == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d/%d", day, month)
}
