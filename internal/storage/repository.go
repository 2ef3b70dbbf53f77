package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"masjid/internal/core"
	"masjid/internal/records"

	_ "modernc.org/sqlite"
)

// Sync states of a stored record.
const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncError   = "error"
)

var tables = map[records.Kind]string{
	records.KindDonors:    "donors",
	records.KindDonations: "donations",
	records.KindExpenses:  "expenses",
	records.KindProjects:  "projects",
	records.KindStaff:     "staff_members",
}

type SQLiteRepository struct {
	db   *sql.DB
	path string
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, path: dbPath}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the connection for readiness probes.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) ListDonors(ctx context.Context) ([]core.Donor, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, number, address FROM donors ORDER BY name, created_at`)
	if err != nil {
		return nil, fmt.Errorf("query donors: %w", err)
	}
	defer rows.Close()

	var out []core.Donor
	for rows.Next() {
		var d core.Donor
		if err := rows.Scan(&d.ID, &d.Name, &d.Number, &d.Address); err != nil {
			return nil, fmt.Errorf("scan donor: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListDonations(ctx context.Context) ([]core.Donation, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+donationCols+` FROM donations ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query donations: %w", err)
	}
	defer rows.Close()

	var out []core.Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+expenseCols+` FROM expenses ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListProjects(ctx context.Context) ([]core.Project, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+projectCols+` FROM projects ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var out []core.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListStaff(ctx context.Context) ([]core.StaffMember, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, number, salary FROM staff_members ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query staff: %w", err)
	}
	defer rows.Close()

	var out []core.StaffMember
	for rows.Next() {
		var s core.StaffMember
		var salary float64
		if err := rows.Scan(&s.ID, &s.Name, &s.Number, &salary); err != nil {
			return nil, fmt.Errorf("scan staff member: %w", err)
		}
		s.Salary = core.Amount(salary)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) AddDonor(ctx context.Context, d core.Donor) (core.Donor, error) {
	if err := d.Validate(); err != nil {
		return core.Donor{}, err
	}
	d.ID = newID(d.ID)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO donors (id, name, number, address) VALUES (?, ?, ?, ?)`,
		d.ID, d.Name, d.Number, d.Address)
	if err != nil {
		return core.Donor{}, fmt.Errorf("insert donor: %w", err)
	}
	return d, nil
}

func (r *SQLiteRepository) AddDonation(ctx context.Context, d core.Donation) (core.Donation, error) {
	if err := d.Validate(); err != nil {
		return core.Donation{}, err
	}
	d.ID = newID(d.ID)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO donations (id, donor_id, donor_name, date, amount, type, project_id, project_name, receipt_image, anonymous)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.DonorID, d.DonorName, d.Date.ISO(), d.Amount.Value(), string(d.Type),
		d.ProjectID, d.ProjectName, d.ReceiptImage, d.Anonymous)
	if err != nil {
		return core.Donation{}, fmt.Errorf("insert donation: %w", err)
	}
	return d, nil
}

func (r *SQLiteRepository) AddExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	e.ID = newID(e.ID)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, date, category, amount, notes, utility_type, staff_id, project_id, receipt_file)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Date.ISO(), string(e.Category), e.Amount.Value(), e.Notes,
		e.UtilityType, e.StaffMemberID, e.ProjectID, e.ReceiptFile)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) AddProject(ctx context.Context, p core.Project) (core.Project, error) {
	if err := p.Validate(); err != nil {
		return core.Project{}, err
	}
	p.ID = newID(p.ID)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, budget, start_date, end_date, status) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Budget.Value(), p.StartDate.ISO(), p.EndDate.ISO(), string(p.Status))
	if err != nil {
		return core.Project{}, fmt.Errorf("insert project: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) AddStaffMember(ctx context.Context, s core.StaffMember) (core.StaffMember, error) {
	if err := s.Validate(); err != nil {
		return core.StaffMember{}, err
	}
	s.ID = newID(s.ID)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO staff_members (id, name, number, salary) VALUES (?, ?, ?, ?)`,
		s.ID, s.Name, s.Number, s.Salary.Value())
	if err != nil {
		return core.StaffMember{}, fmt.Errorf("insert staff member: %w", err)
	}
	return s, nil
}

// Get loads one record of kind by id. The result is a core record value.
func (r *SQLiteRepository) Get(ctx context.Context, kind records.Kind, id string) (any, error) {
	var (
		row = func(cols, table string) *sql.Row {
			return r.db.QueryRowContext(ctx, `SELECT `+cols+` FROM `+table+` WHERE id = ?`, id)
		}
		v   any
		err error
	)
	switch kind {
	case records.KindDonors:
		var d core.Donor
		err = row("id, name, number, address", "donors").Scan(&d.ID, &d.Name, &d.Number, &d.Address)
		v = d
	case records.KindDonations:
		v, err = scanDonation(row(donationCols, "donations"))
	case records.KindExpenses:
		v, err = scanExpense(row(expenseCols, "expenses"))
	case records.KindProjects:
		v, err = scanProject(row(projectCols, "projects"))
	case records.KindStaff:
		var s core.StaffMember
		var salary float64
		err = row("id, name, number, salary", "staff_members").Scan(&s.ID, &s.Name, &s.Number, &salary)
		s.Salary = core.Amount(salary)
		v = s
	default:
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %s: %w", kind, id, records.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", kind, id, err)
	}
	return v, nil
}

// PendingSync returns ids of records of kind not yet mirrored, oldest first.
func (r *SQLiteRepository) PendingSync(ctx context.Context, kind records.Kind, limit int) ([]string, error) {
	table, ok := tables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM `+table+` WHERE sync_status = ? ORDER BY created_at LIMIT ?`, SyncPending, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending %s: %w", kind, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan pending id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SyncStatus reports the sync state of one record.
func (r *SQLiteRepository) SyncStatus(ctx context.Context, kind records.Kind, id string) (string, error) {
	table, ok := tables[kind]
	if !ok {
		return "", fmt.Errorf("unknown record kind %q", kind)
	}
	var status string
	err := r.db.QueryRowContext(ctx, `SELECT sync_status FROM `+table+` WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s %s: %w", kind, id, records.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("sync status %s %s: %w", kind, id, err)
	}
	return status, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, kind records.Kind, id string) error {
	return r.setSyncStatus(ctx, kind, id, SyncDone)
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, kind records.Kind, id string) error {
	return r.setSyncStatus(ctx, kind, id, SyncError)
}

func (r *SQLiteRepository) setSyncStatus(ctx context.Context, kind records.Kind, id, status string) error {
	table, ok := tables[kind]
	if !ok {
		return fmt.Errorf("unknown record kind %q", kind)
	}
	res, err := r.db.ExecContext(ctx, `UPDATE `+table+` SET sync_status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("mark %s %s %s: %w", kind, id, status, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, records.ErrNotFound)
	}
	return nil
}

const (
	donationCols = `id, donor_id, donor_name, date, amount, type, project_id, project_name, receipt_image, anonymous`
	expenseCols  = `id, date, category, amount, notes, utility_type, staff_id, project_id, receipt_file`
	projectCols  = `id, name, budget, start_date, end_date, status`
)

type scanner interface {
	Scan(dest ...any) error
}

func scanDonation(s scanner) (core.Donation, error) {
	var (
		d      core.Donation
		date   string
		amount float64
		typ    string
	)
	err := s.Scan(&d.ID, &d.DonorID, &d.DonorName, &date, &amount, &typ,
		&d.ProjectID, &d.ProjectName, &d.ReceiptImage, &d.Anonymous)
	if err != nil {
		return core.Donation{}, err
	}
	d.Date = storedDate(date)
	d.Amount = core.Amount(amount)
	d.Type = core.DonationType(typ)
	return d, nil
}

func scanExpense(s scanner) (core.Expense, error) {
	var (
		e        core.Expense
		date     string
		amount   float64
		category string
	)
	err := s.Scan(&e.ID, &date, &category, &amount, &e.Notes,
		&e.UtilityType, &e.StaffMemberID, &e.ProjectID, &e.ReceiptFile)
	if err != nil {
		return core.Expense{}, err
	}
	e.Date = storedDate(date)
	e.Amount = core.Amount(amount)
	e.Category = core.Category(category)
	return e, nil
}

func scanProject(s scanner) (core.Project, error) {
	var (
		p          core.Project
		budget     float64
		start, end string
		status     string
	)
	if err := s.Scan(&p.ID, &p.Name, &budget, &start, &end, &status); err != nil {
		return core.Project{}, err
	}
	p.Budget = core.Amount(budget)
	p.StartDate = storedDate(start)
	p.EndDate = storedDate(end)
	p.Status = core.Status(status)
	return p, nil
}

// storedDate parses a date column. Values that fail to parse keep their raw
// text and are skipped by report filters.
func storedDate(s string) core.Date {
	if s == "" {
		return core.Date{}
	}
	d, err := core.ParseAnyDate(s)
	if err != nil {
		return core.Date{Raw: s}
	}
	return d
}

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}
