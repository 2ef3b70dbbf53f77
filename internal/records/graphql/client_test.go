package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"masjid/internal/core"
	"masjid/internal/records"
)

var _ records.Store = (*Client)(nil)

type captured struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

func newServer(t *testing.T, reply string, got *captured) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected request %s %s", r.Method, r.Header.Get("Content-Type"))
		}
		if got != nil {
			if err := json.NewDecoder(r.Body).Decode(got); err != nil {
				t.Errorf("decode body: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestListDonationsFlattensRelations(t *testing.T) {
	reply := `{"data":{"donations":[
		{"id":"1","donor":{"id":"d1","name":"Aisha"},"date":"1686787200000","amount":500,"type":"friday","project":null,"isAnonymous":false},
		{"id":"2","donor":{"id":"d2","name":"Bilal"},"date":"15/06/23","amount":"250","type":"project","project":{"id":"p1","name":"Well"},"isAnonymous":true}
	]}}`
	var got captured
	c := New(newServer(t, reply, &got).URL, nil)

	ds, err := c.ListDonations(context.Background())
	if err != nil {
		t.Fatalf("ListDonations: %v", err)
	}
	if !strings.Contains(got.Query, "donations") || !strings.Contains(got.Query, "donor { id name") {
		t.Fatalf("query = %q", got.Query)
	}
	if len(ds) != 2 {
		t.Fatalf("len = %d", len(ds))
	}
	if ds[0].DonorName != "Aisha" || ds[0].Date.ISO() != "2023-06-15" || ds[0].DisplayProject() != "-" {
		t.Fatalf("first = %+v", ds[0])
	}
	if ds[1].ProjectName != "Well" || ds[1].Amount.Value() != 250 || ds[1].DisplayDonor() != "Anonymous" {
		t.Fatalf("second = %+v", ds[1])
	}
}

func TestListDonorsSortedByName(t *testing.T) {
	reply := `{"data":{"donors":[{"id":"1","name":"zaid"},{"id":"2","name":"Ali"},{"id":"3","name":"Maryam"}]}}`
	c := New(newServer(t, reply, nil).URL, nil)
	donors, err := c.ListDonors(context.Background())
	if err != nil {
		t.Fatalf("ListDonors: %v", err)
	}
	if donors[0].Name != "Ali" || donors[1].Name != "Maryam" || donors[2].Name != "zaid" {
		t.Fatalf("order = %+v", donors)
	}
}

func TestAddExpenseUsesVariables(t *testing.T) {
	reply := `{"data":{"addExpense":{"id":"e1","date":"02/03/23","category":"Salaries","amount":30000,"notes":"Imam \"March\"","staffMember":{"id":"s1","name":"Imam"},"project":null}}}`
	var got captured
	c := New(newServer(t, reply, &got).URL, nil)

	e, err := c.AddExpense(context.Background(), core.Expense{
		Date: core.NewDate(2023, 3, 2), Category: core.CategorySalaries, Amount: 30000,
		Notes: `Imam "March"`, StaffMemberID: "s1",
	})
	if err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	if e.ID != "e1" || e.StaffMemberID != "s1" {
		t.Fatalf("expense = %+v", e)
	}
	if strings.Contains(got.Query, "March") {
		t.Fatal("values must travel as variables, not inside the query")
	}
	if got.Variables["date"] != "02/03/23" || got.Variables["notes"] != `Imam "March"` || got.Variables["amount"] != float64(30000) {
		t.Fatalf("variables = %v", got.Variables)
	}
}

func TestAddValidatesBeforeSending(t *testing.T) {
	c := New("http://127.0.0.1:0", nil)
	if _, err := c.AddDonor(context.Background(), core.Donor{}); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("err = %v", err)
	}
}

func TestGraphQLErrors(t *testing.T) {
	reply := `{"data":null,"errors":[{"message":"not authorised"},{"message":"try later"}]}`
	c := New(newServer(t, reply, nil).URL, nil)
	_, err := c.ListProjects(context.Background())
	var re *ResponseError
	if !errors.As(err, &re) || len(re.Messages) != 2 || !errors.Is(err, ErrGraphQL) {
		t.Fatalf("err = %v", err)
	}
}

func TestHTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()
	if _, err := New(srv.URL, nil).ListStaff(context.Background()); err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("err = %v", err)
	}
}
