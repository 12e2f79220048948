package model

import (
	"time"
)

// TaskStatus represents the current state of a lead-generation task.
type TaskStatus string

const (
	TaskStatusPending       TaskStatus = "pending"
	TaskStatusSearching     TaskStatus = "searching"
	TaskStatusNoResults     TaskStatus = "no_results"
	TaskStatusFilteringDone TaskStatus = "filtering_done"
	TaskStatusNoEmails      TaskStatus = "no_emails"
	TaskStatusLeadsFound    TaskStatus = "leads_found"
	TaskStatusFailed        TaskStatus = "failed"
)

// Terminal returns true if no further pipeline stage runs from this status.
func (s TaskStatus) Terminal() bool {
	switch s {
	case TaskStatusNoResults, TaskStatusNoEmails, TaskStatusLeadsFound, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// NotificationStatus represents the outcome of the SMS notification step.
type NotificationStatus string

const (
	NotificationSent          NotificationStatus = "sent"
	NotificationFailedToSend  NotificationStatus = "failed_to_send"
	NotificationNotConfigured NotificationStatus = "not_configured"
	NotificationSkipped       NotificationStatus = "skipped"
)

// YearEndMode selects how the financial-year-end filter is applied.
type YearEndMode string

const (
	YearEndModeNone  YearEndMode = ""
	YearEndModeMonth YearEndMode = "month"
	YearEndModeRange YearEndMode = "range"
)

// Criteria holds the user-submitted search parameters for a task.
//
// MinRevenue/MaxRevenue and MinEmployees/MaxEmployees are accepted and carried
// on the record but never used for filtering: the registry profile does not
// reliably expose those fields. That is a documented limitation, not a bug.
type Criteria struct {
	SICCodes     []string    `json:"sicCodesArray" validate:"omitempty,dive,required"`
	YearEndMode  YearEndMode `json:"budgetEndDateSearchType,omitempty" validate:"omitempty,oneof=month range"`
	YearEndMonth int         `json:"budgetEndMonth,omitempty" validate:"omitempty,min=1,max=12"`
	YearEndStart string      `json:"budgetEndStartDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	YearEndEnd   string      `json:"budgetEndEndDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Location     string      `json:"location,omitempty"`
	MinRevenue   *float64    `json:"minRevenue,omitempty"`
	MaxRevenue   *float64    `json:"maxRevenue,omitempty"`
	MinEmployees *int        `json:"minEmployees,omitempty"`
	MaxEmployees *int        `json:"maxEmployees,omitempty"`
	Phone        string      `json:"phoneNumber" validate:"required"`
}

// Address holds the registered-office address of a company profile.
type Address struct {
	AddressLine1 string `json:"address_line_1,omitempty"`
	AddressLine2 string `json:"address_line_2,omitempty"`
	Locality     string `json:"locality,omitempty"`
	Region       string `json:"region,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	Country      string `json:"country,omitempty"`
}

// CompanyCandidate is a company profile that passed every hard filter,
// annotated with the criteria snapshot it was evaluated against.
type CompanyCandidate struct {
	CompanyNumber string    `json:"company_number"`
	CompanyName   string    `json:"company_name"`
	CompanyStatus string    `json:"company_status"`
	YearEndDay    int       `json:"year_end_day,omitempty"`
	YearEndMonth  int       `json:"year_end_month,omitempty"`
	Address       Address   `json:"registered_office_address"`
	Website       string    `json:"website,omitempty"`
	EvaluatedAt   time.Time `json:"evaluated_at"`
	Criteria      Criteria  `json:"original_search_criteria"`
}

// Lead is a resolved (person, email, company) triple. Immutable once appended
// to a task's results.
type Lead struct {
	CompanyName   string    `json:"company_name"`
	CompanyNumber string    `json:"company_number"`
	PersonName    string    `json:"person_name"`
	PersonRole    string    `json:"person_role"`
	Email         string    `json:"email"`
	YearEnd       string    `json:"accounting_reference_date"`
	EvaluatedAt   time.Time `json:"search_performed_on"`
	Criteria      Criteria  `json:"original_search_criteria"`
}

// Notification records the outcome of the SMS step for a task.
type Notification struct {
	Status NotificationStatus `json:"status,omitempty"`
	SID    string             `json:"sid,omitempty"`
	Error  string             `json:"error,omitempty"`
}

// Task is the record tracked through the pipeline. Once created it is
// mutated only by the pipeline worker that owns it; readers get copies.
type Task struct {
	ID           string             `json:"task_id"`
	Status       TaskStatus         `json:"status"`
	Criteria     Criteria           `json:"criteria"`
	Phone        string             `json:"phone_number"`
	Candidates   []CompanyCandidate `json:"candidates,omitempty"`
	Results      []Lead             `json:"results"`
	Error        string             `json:"error,omitempty"`
	Notification Notification       `json:"notification"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// Clone returns a copy of the task with its own slices, safe to hand to
// readers while the owning worker keeps writing.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	cp := *t
	if t.Candidates != nil {
		cp.Candidates = make([]CompanyCandidate, len(t.Candidates))
		copy(cp.Candidates, t.Candidates)
	}
	if t.Results != nil {
		cp.Results = make([]Lead, len(t.Results))
		copy(cp.Results, t.Results)
	}
	return &cp
}
