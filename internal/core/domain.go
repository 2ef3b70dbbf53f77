package core

import (
	"errors"
	"strings"
)

const (
	DonationGeneral  DonationType = "general"
	DonationFriday   DonationType = "friday"
	DonationEid      DonationType = "eid"
	DonationSadaqah  DonationType = "sadaqah"
	DonationProject  DonationType = "project"
	DonationAtyat    DonationType = "atyat"
	CategoryUtility  Category     = "Utilities"
	CategoryUpkeep   Category     = "Maintenance"
	CategorySalaries Category     = "Salaries"
	CategoryProjects Category     = "Projects"
	StatusRunning    Status       = "Running"
	StatusCompleted  Status       = "Completed"
	StatusOnHold     Status       = "On Hold"
)

type (
	DonationType string
	Category     string
	Status       string

	Donor struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Number  string `json:"number"`
		Address string `json:"address"`
	}

	Donation struct {
		ID           string       `json:"id"`
		DonorID      string       `json:"donorId,omitempty"`
		DonorName    string       `json:"donor"`
		Date         Date         `json:"date"`
		Amount       Amount       `json:"amount"`
		Type         DonationType `json:"type"`
		ProjectID    string       `json:"projectId,omitempty"`
		ProjectName  string       `json:"project,omitempty"`
		ReceiptImage string       `json:"receiptImage,omitempty"`
		Anonymous    bool         `json:"isAnonymous"`
	}

	Expense struct {
		ID            string   `json:"id"`
		Date          Date     `json:"date"`
		Category      Category `json:"category"`
		Amount        Amount   `json:"amount"`
		Notes         string   `json:"notes"`
		UtilityType   string   `json:"utilityType,omitempty"`
		StaffMemberID string   `json:"staffMember,omitempty"`
		ProjectID     string   `json:"project,omitempty"`
		ReceiptFile   string   `json:"receiptFile,omitempty"`
	}

	Project struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Budget    Amount `json:"budget"`
		StartDate Date   `json:"startDate"`
		EndDate   Date   `json:"endDate"`
		Status    Status `json:"status"`
	}

	StaffMember struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Number string `json:"number"`
		Salary Amount `json:"salary"`
	}
)

var (
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid donation type")
	ErrInvalidCategory  = errors.New("invalid expense category")
	ErrInvalidStatus    = errors.New("invalid project status")
	ErrMissingDonor     = errors.New("donation requires a donor")
	ErrMissingUtility   = errors.New("utilities expense requires a utility type")
	ErrMissingStaff     = errors.New("salaries expense requires a staff member")
	ErrMissingProject   = errors.New("projects expense requires a project")
	ErrProjectDateOrder = errors.New("project end date must not be before start date")
)

var donationLabels = map[DonationType]string{
	DonationGeneral: "General",
	DonationFriday:  "Friday Collection",
	DonationEid:     "Eid Collection",
	DonationSadaqah: "Sadaqah",
	DonationProject: "Project Specific",
	DonationAtyat:   "Atyat",
}

// UtilityTypes lists the accepted values for Expense.UtilityType.
var UtilityTypes = []string{"K-Electric", "Water", "Gas"}

// Label returns the display label, or the raw value when the type is unknown.
func (t DonationType) Label() string {
	if l, ok := donationLabels[t]; ok {
		return l
	}
	return string(t)
}

func (t DonationType) Valid() bool {
	_, ok := donationLabels[t]
	return ok
}

func (c Category) Valid() bool {
	switch c {
	case CategoryUtility, CategoryUpkeep, CategorySalaries, CategoryProjects:
		return true
	}
	return false
}

func (s Status) Valid() bool {
	switch s {
	case StatusRunning, StatusCompleted, StatusOnHold:
		return true
	}
	return false
}

func (d Donor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// DisplayDonor is the name shown in listings and reports.
func (d Donation) DisplayDonor() string {
	if d.Anonymous {
		return "Anonymous"
	}
	if d.DonorName != "" {
		return d.DonorName
	}
	return d.DonorID
}

// DisplayProject falls back to "-" like the donations table did.
func (d Donation) DisplayProject() string {
	if d.ProjectName != "" {
		return d.ProjectName
	}
	return "-"
}

func (d Donation) Validate() error {
	if !d.Date.Valid() {
		return ErrInvalidDate
	}
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	if !d.Type.Valid() {
		return ErrInvalidType
	}
	if !d.Anonymous && strings.TrimSpace(d.DonorID) == "" && strings.TrimSpace(d.DonorName) == "" {
		return ErrMissingDonor
	}
	return nil
}

func (e Expense) Validate() error {
	if !e.Date.Valid() {
		return ErrInvalidDate
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	switch e.Category {
	case CategoryUtility:
		if !validUtility(e.UtilityType) {
			return ErrMissingUtility
		}
	case CategorySalaries:
		if strings.TrimSpace(e.StaffMemberID) == "" {
			return ErrMissingStaff
		}
	case CategoryProjects:
		if strings.TrimSpace(e.ProjectID) == "" {
			return ErrMissingProject
		}
	case CategoryUpkeep:
	default:
		return ErrInvalidCategory
	}
	return nil
}

// PrefillSalary sets the amount of a salaries expense from the staff member's
// salary when no amount was entered.
func (e *Expense) PrefillSalary(staff []StaffMember) {
	if e.Category != CategorySalaries || e.Amount.Value() > 0 {
		return
	}
	for _, s := range staff {
		if s.ID == e.StaffMemberID {
			e.Amount = s.Salary
			return
		}
	}
}

func (p Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if !p.StartDate.Valid() {
		return ErrInvalidDate
	}
	if p.EndDate.Valid() && p.EndDate.Before(p.StartDate.Time) {
		return ErrProjectDateOrder
	}
	if !p.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

func (s StaffMember) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func validUtility(u string) bool {
	for _, v := range UtilityTypes {
		if v == u {
			return true
		}
	}
	return false
}

// RangeDate is the date a report range applies to. Donors have none.
func (Donor) RangeDate() (Date, bool) { return Date{}, false }

func (d Donation) RangeDate() (Date, bool) { return d.Date, true }

func (e Expense) RangeDate() (Date, bool) { return e.Date, true }

// RangeDate of a project is its start date.
func (p Project) RangeDate() (Date, bool) { return p.StartDate, true }

// Value is the coerced amount used by aggregations.
func (d Donation) Value() float64 { return d.Amount.Value() }

func (e Expense) Value() float64 { return e.Amount.Value() }

// Value of a project is its budget.
func (p Project) Value() float64 { return p.Budget.Value() }
