package pipeline

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/domainname"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/pkg/emailfinder"
	"github.com/sells-group/leadgen-cli/pkg/registry"
)

// targetRoles is the decision-maker vocabulary, matched case-insensitively
// as substrings of the officer's role string.
var targetRoles = []string{
	"director",
	"ceo",
	"chief executive officer",
	"owner",
	"founder",
	"cfo",
	"chief financial officer",
}

// IsDecisionMaker reports whether an officer should be pursued for an email
// address. Resigned officers never qualify, whatever their role says.
func IsDecisionMaker(o registry.Officer) bool {
	if o.Resigned() {
		return false
	}
	role := strings.ToLower(o.OfficerRole)
	for _, kw := range targetRoles {
		if strings.Contains(role, kw) {
			return true
		}
	}
	return false
}

// leadStage resolves decision-maker emails for the qualified candidates and
// appends each lead to the task's results as it is found, so a later failure
// still leaves the partial list on the record. Returns the number of leads
// appended.
func (p *Pipeline) leadStage(ctx context.Context, log *zap.Logger, taskID string, qualified []model.CompanyCandidate) int {
	count := 0

	for _, cand := range qualified {
		clog := log.With(
			zap.String("company_number", cand.CompanyNumber),
			zap.String("company_name", cand.CompanyName),
		)

		officers, err := p.registry.Officers(ctx, cand.CompanyNumber)
		if err != nil {
			clog.Warn("pipeline: officer fetch failed, skipping company", zap.Error(err))
			continue
		}

		for _, officer := range officers.Items {
			if officer.Name == "" || !IsDecisionMaker(officer) {
				continue
			}

			domain, _ := domainname.Derive(cand.CompanyName, cand.Website)
			req := emailfinder.FindRequest{FullName: officer.Name}
			if domain != "" {
				req.Domain = domain
			} else {
				req.CompanyName = cand.CompanyName
			}

			if waitErr := p.emailLimiter.Wait(ctx); waitErr != nil {
				clog.Warn("pipeline: email pacing interrupted", zap.Error(waitErr))
				return count
			}

			result, err := p.emails.Find(ctx, req)
			switch {
			case errors.Is(err, emailfinder.ErrNotFound):
				clog.Info("pipeline: no email for officer",
					zap.String("officer", officer.Name))
				continue
			case err != nil:
				clog.Warn("pipeline: email lookup failed, skipping officer",
					zap.String("officer", officer.Name), zap.Error(err))
				continue
			}

			if result.Email == "" || !p.validEmailStatus(result.Status) {
				clog.Warn("pipeline: email response not usable",
					zap.String("officer", officer.Name),
					zap.String("status", result.Status))
				continue
			}

			lead := model.Lead{
				CompanyName:   cand.CompanyName,
				CompanyNumber: cand.CompanyNumber,
				PersonName:    officer.Name,
				PersonRole:    strings.ToLower(officer.OfficerRole),
				Email:         result.Email,
				YearEnd:       formatYearEnd(cand.YearEndDay, cand.YearEndMonth),
				EvaluatedAt:   cand.EvaluatedAt,
				Criteria:      cand.Criteria,
			}
			if updErr := p.store.Update(taskID, func(t *model.Task) {
				t.Results = append(t.Results, lead)
			}); updErr != nil {
				clog.Warn("pipeline: failed to record lead", zap.Error(updErr))
				continue
			}
			count++

			clog.Info("pipeline: lead resolved",
				zap.String("officer", officer.Name),
				zap.String("email", result.Email))
		}
	}

	return count
}

// validEmailStatus checks the provider status against the configured accept
// set, case-insensitively.
func (p *Pipeline) validEmailStatus(status string) bool {
	for _, s := range p.cfg.EmailFinder.ValidStatuses {
		if strings.EqualFold(status, s) {
			return true
		}
	}
	return false
}
