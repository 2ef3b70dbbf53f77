// Package graphql reads and writes records through the remote GraphQL API.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"masjid/internal/core"
)

// ErrGraphQL matches errors reported in a response's errors array.
var ErrGraphQL = errors.New("graphql error")

// ResponseError carries the messages of a GraphQL errors array.
type ResponseError struct {
	Messages []string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s: %s", ErrGraphQL, strings.Join(e.Messages, "; "))
}

func (e *ResponseError) Is(target error) bool { return target == ErrGraphQL }

type Client struct {
	endpoint string
	http     *http.Client
}

// New returns a client for endpoint. A nil httpClient gets a 15s timeout.
func New(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{endpoint: endpoint, http: httpClient}
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// do posts one operation and decodes its data into out.
func (c *Client) do(ctx context.Context, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(request{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", c.endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("graphql endpoint returned %s", resp.Status)
	}

	var r response
	if err := json.Unmarshal(raw, &r); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(r.Errors) > 0 {
		msgs := make([]string, len(r.Errors))
		for i, e := range r.Errors {
			msgs[i] = e.Message
		}
		return &ResponseError{Messages: msgs}
	}
	if err := json.Unmarshal(r.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

// Wire shapes of the remote schema. Donations and expenses embed their
// related records instead of ids.
type (
	ref struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	wireDonation struct {
		ID           string      `json:"id"`
		Donor        *ref        `json:"donor"`
		Date         core.Date   `json:"date"`
		Amount       core.Amount `json:"amount"`
		Type         string      `json:"type"`
		Project      *ref        `json:"project"`
		ReceiptImage string      `json:"receiptImage"`
		IsAnonymous  bool        `json:"isAnonymous"`
	}

	wireExpense struct {
		ID          string      `json:"id"`
		Date        core.Date   `json:"date"`
		Category    string      `json:"category"`
		Amount      core.Amount `json:"amount"`
		Notes       string      `json:"notes"`
		UtilityType string      `json:"utilityType"`
		StaffMember *ref        `json:"staffMember"`
		Project     *ref        `json:"project"`
		ReceiptFile string      `json:"receiptFile"`
	}
)

func (w wireDonation) record() core.Donation {
	d := core.Donation{
		ID:           w.ID,
		Date:         w.Date,
		Amount:       w.Amount,
		Type:         core.DonationType(w.Type),
		ReceiptImage: w.ReceiptImage,
		Anonymous:    w.IsAnonymous,
	}
	if w.Donor != nil {
		d.DonorID, d.DonorName = w.Donor.ID, w.Donor.Name
	}
	if w.Project != nil {
		d.ProjectID, d.ProjectName = w.Project.ID, w.Project.Name
	}
	return d
}

func (w wireExpense) record() core.Expense {
	e := core.Expense{
		ID:          w.ID,
		Date:        w.Date,
		Category:    core.Category(w.Category),
		Amount:      w.Amount,
		Notes:       w.Notes,
		UtilityType: w.UtilityType,
		ReceiptFile: w.ReceiptFile,
	}
	if w.StaffMember != nil {
		e.StaffMemberID = w.StaffMember.ID
	}
	if w.Project != nil {
		e.ProjectID = w.Project.ID
	}
	return e
}

const (
	donorFields    = `id name number address`
	projectFields  = `id name budget startDate endDate status`
	staffFields    = `id name number salary`
	donationFields = `id donor { ` + donorFields + ` } date amount type project { ` + projectFields + ` } receiptImage isAnonymous`
	expenseFields  = `id date category amount notes utilityType staffMember { ` + staffFields + ` } project { ` + projectFields + ` } receiptFile`
)

// ListDonors returns donors sorted by name.
func (c *Client) ListDonors(ctx context.Context) ([]core.Donor, error) {
	var out struct {
		Donors []core.Donor `json:"donors"`
	}
	if err := c.do(ctx, `query { donors { `+donorFields+` } }`, nil, &out); err != nil {
		return nil, err
	}
	sort.SliceStable(out.Donors, func(i, j int) bool {
		return strings.ToLower(out.Donors[i].Name) < strings.ToLower(out.Donors[j].Name)
	})
	return out.Donors, nil
}

func (c *Client) ListDonations(ctx context.Context) ([]core.Donation, error) {
	var out struct {
		Donations []wireDonation `json:"donations"`
	}
	if err := c.do(ctx, `query { donations { `+donationFields+` } }`, nil, &out); err != nil {
		return nil, err
	}
	res := make([]core.Donation, len(out.Donations))
	for i, w := range out.Donations {
		res[i] = w.record()
	}
	return res, nil
}

func (c *Client) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	var out struct {
		Expenses []wireExpense `json:"expenses"`
	}
	if err := c.do(ctx, `query { expenses { `+expenseFields+` } }`, nil, &out); err != nil {
		return nil, err
	}
	res := make([]core.Expense, len(out.Expenses))
	for i, w := range out.Expenses {
		res[i] = w.record()
	}
	return res, nil
}

func (c *Client) ListProjects(ctx context.Context) ([]core.Project, error) {
	var out struct {
		Projects []core.Project `json:"projects"`
	}
	if err := c.do(ctx, `query { projects { `+projectFields+` } }`, nil, &out); err != nil {
		return nil, err
	}
	return out.Projects, nil
}

func (c *Client) ListStaff(ctx context.Context) ([]core.StaffMember, error) {
	var out struct {
		Staff []core.StaffMember `json:"staffMembers"`
	}
	if err := c.do(ctx, `query { staffMembers { `+staffFields+` } }`, nil, &out); err != nil {
		return nil, err
	}
	return out.Staff, nil
}

func (c *Client) AddDonor(ctx context.Context, d core.Donor) (core.Donor, error) {
	if err := d.Validate(); err != nil {
		return core.Donor{}, err
	}
	var out struct {
		Donor core.Donor `json:"addDonor"`
	}
	err := c.do(ctx, `mutation AddDonor($name: String!, $number: String, $address: String) {
  addDonor(name: $name, number: $number, address: $address) { `+donorFields+` }
}`, map[string]any{"name": d.Name, "number": d.Number, "address": d.Address}, &out)
	if err != nil {
		return core.Donor{}, err
	}
	return out.Donor, nil
}

func (c *Client) AddDonation(ctx context.Context, d core.Donation) (core.Donation, error) {
	if err := d.Validate(); err != nil {
		return core.Donation{}, err
	}
	var out struct {
		Donation wireDonation `json:"addDonation"`
	}
	err := c.do(ctx, `mutation AddDonation($donorId: String, $date: String!, $amount: Float!, $type: String!, $projectId: String, $receiptImage: String, $isAnonymous: Boolean) {
  addDonation(donorId: $donorId, date: $date, amount: $amount, type: $type, projectId: $projectId, receiptImage: $receiptImage, isAnonymous: $isAnonymous) { `+donationFields+` }
}`, map[string]any{
		"donorId":      d.DonorID,
		"date":         d.Date.Stored(),
		"amount":       d.Amount.Value(),
		"type":         string(d.Type),
		"projectId":    d.ProjectID,
		"receiptImage": d.ReceiptImage,
		"isAnonymous":  d.Anonymous,
	}, &out)
	if err != nil {
		return core.Donation{}, err
	}
	return out.Donation.record(), nil
}

func (c *Client) AddExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	var out struct {
		Expense wireExpense `json:"addExpense"`
	}
	err := c.do(ctx, `mutation AddExpense($date: String!, $category: String!, $amount: Float!, $notes: String, $utilityType: String, $staffMember: String, $projectId: String, $receiptFile: String) {
  addExpense(date: $date, category: $category, amount: $amount, notes: $notes, utilityType: $utilityType, staffMember: $staffMember, projectId: $projectId, receiptFile: $receiptFile) { `+expenseFields+` }
}`, map[string]any{
		"date":        e.Date.Stored(),
		"category":    string(e.Category),
		"amount":      e.Amount.Value(),
		"notes":       e.Notes,
		"utilityType": e.UtilityType,
		"staffMember": e.StaffMemberID,
		"projectId":   e.ProjectID,
		"receiptFile": e.ReceiptFile,
	}, &out)
	if err != nil {
		return core.Expense{}, err
	}
	return out.Expense.record(), nil
}

func (c *Client) AddProject(ctx context.Context, p core.Project) (core.Project, error) {
	if err := p.Validate(); err != nil {
		return core.Project{}, err
	}
	var out struct {
		Project core.Project `json:"addProject"`
	}
	err := c.do(ctx, `mutation AddProject($name: String!, $budget: Float!, $startDate: String!, $endDate: String, $status: String!) {
  addProject(name: $name, budget: $budget, startDate: $startDate, endDate: $endDate, status: $status) { `+projectFields+` }
}`, map[string]any{
		"name":      p.Name,
		"budget":    p.Budget.Value(),
		"startDate": p.StartDate.ISO(),
		"endDate":   p.EndDate.ISO(),
		"status":    string(p.Status),
	}, &out)
	if err != nil {
		return core.Project{}, err
	}
	return out.Project, nil
}

func (c *Client) AddStaffMember(ctx context.Context, s core.StaffMember) (core.StaffMember, error) {
	if err := s.Validate(); err != nil {
		return core.StaffMember{}, err
	}
	var out struct {
		Staff core.StaffMember `json:"addStaffMember"`
	}
	err := c.do(ctx, `mutation AddStaffMember($name: String!, $number: String, $salary: Float!) {
  addStaffMember(name: $name, number: $number, salary: $salary) { `+staffFields+` }
}`, map[string]any{"name": s.Name, "number": s.Number, "salary": s.Salary.Value()}, &out)
	if err != nil {
		return core.StaffMember{}, err
	}
	return out.Staff, nil
}
