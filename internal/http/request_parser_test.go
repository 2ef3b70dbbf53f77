package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"masjid/internal/core"
	"masjid/internal/report"
)

func TestRequestBodyParser_JSON(t *testing.T) {
	body := `{"kind": "donations", "name": "test", "amount": 42.5, "anonymous": true}`
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !parser.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}

	tests := map[string]string{
		"kind":      "donations",
		"name":      "test",
		"amount":    "42.5",
		"anonymous": "true",
		"missing":   "",
	}
	for key, want := range tests {
		if got := parser.Get(key); got != want {
			t.Errorf("Get(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	body := "kind=expenses&name=form+test&value=100"
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if parser.IsJSON() {
		t.Error("Expected IsJSON() to be false for form data")
	}
	if name := parser.Get("name"); name != "form test" {
		t.Errorf("Get('name') = %q, want 'form test'", name)
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(""))

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if val := parser.Get("nonexistent"); val != "" {
		t.Errorf("Get('nonexistent') = %q, want empty string", val)
	}
}

func TestRequestBodyParser_BadJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"kind":`))
	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err == nil {
		t.Fatal("expected parse error")
	}
	// Parse is memoized.
	if err := parser.Parse(); err == nil {
		t.Fatal("expected the same error on the second call")
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  plain  ", "plain"},
		{"a\x00b\x07c", "abc"},
		{"line1\nline2\tx", "line1\nline2\tx"},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseReportRequest(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		target      string
		contentType string
		body        string
		want        report.Request
	}{
		{
			name:   "query string",
			method: http.MethodGet,
			target: "/api/reports?kind=donations&start=2023-01-01&end=2023-12-31&format=pdf",
			want:   report.Request{Kind: "donations", Start: "2023-01-01", End: "2023-12-31", Format: "pdf"},
		},
		{
			name:        "form body",
			method:      http.MethodPost,
			target:      "/api/reports",
			contentType: "application/x-www-form-urlencoded",
			body:        "kind=expenses&start=2023-01-01&end=2023-06-30&format=pdf",
			want:        report.Request{Kind: "expenses", Start: "2023-01-01", End: "2023-06-30", Format: "pdf"},
		},
		{
			name:        "json body overrides query",
			method:      http.MethodPost,
			target:      "/api/reports?kind=donors&format=excel",
			contentType: "application/json",
			body:        `{"kind":"accounts","start":"2023-01-01","end":"2023-12-31"}`,
			want:        report.Request{Kind: "accounts", Start: "2023-01-01", End: "2023-12-31", Format: "excel"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			} else {
				req = httptest.NewRequest(tt.method, tt.target, nil)
			}
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			got, err := ParseReportRequest(req)
			if err != nil {
				t.Fatalf("ParseReportRequest: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseReportRequest_MalformedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/reports", strings.NewReader(`{"kind"`))
	if _, err := ParseReportRequest(req); !errors.Is(err, errBadBody) {
		t.Errorf("expected errBadBody, got %v", err)
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"name":"Ahmed","number":"0300"}`, false},
		{"unknown field", `{"name":"Ahmed","email":"x"}`, true},
		{"empty", ``, true},
		{"trailing object", `{"name":"A"}{"name":"B"}`, true},
		{"not an object", `[1,2]`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/donors", strings.NewReader(tt.body))
			var d core.Donor
			err := decodeJSON(req, &d)
			if tt.wantErr {
				if !errors.Is(err, errBadBody) {
					t.Errorf("expected errBadBody, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.Name != "Ahmed" || d.Number != "0300" {
				t.Errorf("decoded %+v", d)
			}
		})
	}
}
