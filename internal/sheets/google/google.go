package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"masjid/internal/core"
	applog "masjid/internal/log"
	"masjid/internal/records"
	ports "masjid/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// ErrUnknownKind is returned for a kind with no ledger tab.
var ErrUnknownKind = errors.New("no sheet tab for record kind")

// DefaultTabs names the tab each record kind is appended to.
var DefaultTabs = map[records.Kind]string{
	records.KindDonors:    "Donors",
	records.KindDonations: "Donations",
	records.KindExpenses:  "Expenses",
	records.KindProjects:  "Projects",
	records.KindStaff:     "Staff",
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	tabs          map[records.Kind]string
	logger        *applog.Logger
}

// Ensure interface conformance
var _ ports.RecordAppender = (*Client)(nil)

// New creates a Sheets client for spreadsheetID. credentials is a service
// account key; it may be nil when opts already carry an HTTP client.
func New(ctx context.Context, spreadsheetID string, credentials []byte, logger *applog.Logger, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentSheets)

	if len(credentials) > 0 {
		opts = append([]goption.ClientOption{
			goption.WithCredentialsJSON(credentials),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}, opts...)
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	logger.InfoContext(ctx, "Google Sheets service created", "spreadsheet_id", spreadsheetID)

	tabs := make(map[records.Kind]string, len(DefaultTabs))
	for k, v := range DefaultTabs {
		tabs[k] = v
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, tabs: tabs, logger: logger}, nil
}

// LoadCredentials resolves service account credentials from inline JSON,
// then a key file, then GOOGLE_APPLICATION_CREDENTIALS.
func LoadCredentials(inline, file string) ([]byte, error) {
	inline = strings.TrimSpace(inline)
	file = strings.TrimSpace(file)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
}

// AppendRecord appends record as a new row on the tab for kind.
func (c *Client) AppendRecord(ctx context.Context, kind records.Kind, record any) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	tab, ok := c.tabs[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	row, err := rowFor(record)
	if err != nil {
		return "", err
	}

	vr := &gsheet.ValueRange{Values: [][]interface{}{row}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, tab+"!A:A", vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append %s row: %w", kind, err)
	}

	ref := tab
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	c.logger.DebugContext(ctx, "Appended ledger row",
		applog.FieldRecordKind, string(kind),
		applog.FieldOperation, applog.OpAppend,
		"range", ref)
	return ref, nil
}

// rowFor flattens a core record into ledger cells.
func rowFor(record any) ([]interface{}, error) {
	switch r := record.(type) {
	case core.Donor:
		return []interface{}{r.ID, r.Name, r.Number, r.Address}, nil
	case core.Donation:
		return []interface{}{
			r.ID, r.Date.Stored(), r.DisplayDonor(), r.Amount.Value(),
			r.Type.Label(), r.DisplayProject(), r.Anonymous,
		}, nil
	case core.Expense:
		return []interface{}{
			r.ID, r.Date.Stored(), string(r.Category), r.Amount.Value(),
			r.Notes, r.UtilityType, r.StaffMemberID, r.ProjectID,
		}, nil
	case core.Project:
		return []interface{}{
			r.ID, r.Name, r.Budget.Value(), r.StartDate.ISO(), r.EndDate.ISO(), string(r.Status),
		}, nil
	case core.StaffMember:
		return []interface{}{r.ID, r.Name, r.Number, r.Salary.Value()}, nil
	}
	return nil, fmt.Errorf("unsupported record type %T", record)
}
