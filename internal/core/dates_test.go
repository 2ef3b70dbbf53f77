package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseStoredDate(t *testing.T) {
	cases := []struct {
		in      string
		y, m, d int
		ok      bool
	}{
		{"21/06/23", 2023, 6, 21, true},
		{"01/01/23", 2023, 1, 1, true},
		{"1/3/23", 2023, 3, 1, true},
		{"29/02/24", 2024, 2, 29, true},
		{"29/02/23", 0, 0, 0, false},
		{"32/13/23", 0, 0, 0, false},
		{"00/01/23", 0, 0, 0, false},
		{"21-06-23", 0, 0, 0, false},
		{"21/06", 0, 0, 0, false},
		{"aa/06/23", 0, 0, 0, false},
		{"21/06/2023", 0, 0, 0, false},
		{"+1/06/23", 0, 0, 0, false},
		{"", 0, 0, 0, false},
	}
	for _, tc := range cases {
		got, err := ParseStoredDate(tc.in)
		if !tc.ok {
			if err == nil {
				t.Fatalf("%q expected error, got %v", tc.in, got)
			}
			if !errors.Is(err, ErrDateFormat) {
				t.Fatalf("%q expected ErrDateFormat, got %v", tc.in, err)
			}
			var dfe *DateFormatError
			if !errors.As(err, &dfe) || dfe.Value != tc.in {
				t.Fatalf("%q expected *DateFormatError carrying the input, got %v", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q unexpected error: %v", tc.in, err)
		}
		if got.Year() != tc.y || int(got.Month()) != tc.m || got.Day() != tc.d {
			t.Fatalf("%q parsed to %v", tc.in, got.Time)
		}
	}
}

func TestStoredDateRoundTripsThroughDisplay(t *testing.T) {
	cases := map[string]string{
		"21/06/23": "21st June, 2023",
		"01/01/23": "1st January, 2023",
		"02/02/24": "2nd February, 2024",
		"03/03/25": "3rd March, 2025",
		"11/11/22": "11th November, 2022",
		"12/12/22": "12th December, 2022",
		"13/07/22": "13th July, 2022",
		"22/08/23": "22nd August, 2023",
		"31/12/99": "31st December, 2099",
	}
	for in, want := range cases {
		d, err := ParseStoredDate(in)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if got := FormatDisplay(d); got != want {
			t.Errorf("FormatDisplay(%q) = %q, want %q", in, got, want)
		}
		if got := d.Stored(); got != in {
			t.Errorf("Stored() = %q, want %q", got, in)
		}
	}
}

func TestOrdinal(t *testing.T) {
	days := []int{1, 2, 3, 4, 11, 12, 13, 21, 22, 23, 24}
	want := []string{"st", "nd", "rd", "th", "th", "th", "th", "st", "nd", "rd", "th"}
	for i, d := range days {
		if got := Ordinal(d); got != want[i] {
			t.Errorf("Ordinal(%d) = %q, want %q", d, got, want[i])
		}
	}
	for d := 1; d <= 31; d++ {
		if d >= 11 && d <= 19 && Ordinal(d) != "th" {
			t.Errorf("Ordinal(%d) = %q, want th", d, Ordinal(d))
		}
	}
	if Ordinal(30) != "th" || Ordinal(31) != "st" {
		t.Errorf("unexpected suffixes for 30/31: %s %s", Ordinal(30), Ordinal(31))
	}
}

func TestFormatLongDate(t *testing.T) {
	if got := FormatLongDate(NewDate(2023, 6, 21)); got != "June 21, 2023" {
		t.Fatalf("got %q", got)
	}
	if got := FormatLongDate(NewDate(2024, 1, 1)); got != "January 1, 2024" {
		t.Fatalf("got %q", got)
	}
}

func TestParseInputDate(t *testing.T) {
	now := time.Date(2024, 3, 9, 17, 45, 0, 0, time.UTC)

	d, err := ParseInputDate("2023-01-31", StartBound, now)
	if err != nil || d.ISO() != "2023-01-31" {
		t.Fatalf("got %v, %v", d, err)
	}

	start, err := ParseInputDate("", StartBound, now)
	if err != nil || start.Year() != 1970 || start.Month() != time.January || start.Day() != 1 {
		t.Fatalf("empty start should be the epoch, got %v (%v)", start.Time, err)
	}

	end, err := ParseInputDate("  ", EndBound, now)
	if err != nil || end.ISO() != "2024-03-09" {
		t.Fatalf("empty end should be today, got %v (%v)", end.Time, err)
	}
	if end.Hour() != 0 {
		t.Fatalf("end sentinel must be truncated to the day, got %v", end.Time)
	}

	if _, err := ParseInputDate("09/03/24", StartBound, now); !errors.Is(err, ErrDateFormat) {
		t.Fatalf("expected ErrDateFormat for stored layout, got %v", err)
	}
}

func TestParseAnyDate(t *testing.T) {
	cases := map[string]string{
		"15/06/23":      "2023-06-15",
		"2023-06-15":    "2023-06-15",
		"1686787200000": "2023-06-15",
	}
	for in, want := range cases {
		d, err := ParseAnyDate(in)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if d.ISO() != want {
			t.Errorf("ParseAnyDate(%q) = %s, want %s", in, d.ISO(), want)
		}
	}
	if _, err := ParseAnyDate("yesterday"); err == nil {
		t.Fatal("expected error")
	}
}

func TestDateJSON(t *testing.T) {
	var rec struct {
		A Date `json:"a"`
		B Date `json:"b"`
		C Date `json:"c"`
		D Date `json:"d"`
	}
	in := `{"a":"01/03/23","b":"2023-03-02","c":1686787200000,"d":"32/13/23"}`
	if err := json.Unmarshal([]byte(in), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.A.ISO() != "2023-03-01" || rec.B.ISO() != "2023-03-02" || rec.C.ISO() != "2023-06-15" {
		t.Fatalf("unexpected dates: %s %s %s", rec.A.ISO(), rec.B.ISO(), rec.C.ISO())
	}
	if rec.D.Valid() || rec.D.Raw != "32/13/23" {
		t.Fatalf("malformed date should decode invalid and keep raw, got %+v", rec.D)
	}

	out, err := json.Marshal(rec.B)
	if err != nil || string(out) != `"02/03/23"` {
		t.Fatalf("marshal = %s, %v", out, err)
	}
	out, _ = json.Marshal(rec.D)
	if string(out) != `"32/13/23"` {
		t.Fatalf("invalid date should marshal its raw text, got %s", out)
	}
}
