package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mkuznetsova/dobrobot/internal/db"
	"github.com/mkuznetsova/dobrobot/internal/domain"
)

// SQLiteOrganizationRepo implements OrganizationRepo using a SQLite database.
type SQLiteOrganizationRepo struct {
	db db.DBTX
}

// NewSQLiteOrganizationRepo creates a new SQLiteOrganizationRepo.
func NewSQLiteOrganizationRepo(conn db.DBTX) *SQLiteOrganizationRepo {
	return &SQLiteOrganizationRepo{db: conn}
}

const organizationColumns = `id, user_id, name, description, activities, contact, is_active, created_at, updated_at`

func (r *SQLiteOrganizationRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations
		WHERE user_id = ? AND is_active = 1`
	row := r.db.QueryRowContext(ctx, query, userID)
	return r.scanOrganization(row)
}

func (r *SQLiteOrganizationRepo) Create(ctx context.Context, o *domain.Organization) error {
	query := `INSERT INTO organizations (` + organizationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		o.ID,
		o.UserID,
		o.Name,
		o.Description,
		o.Activities,
		o.Contact,
		boolToInt(o.IsActive),
		o.CreatedAt.Format(time.RFC3339),
		o.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting organization: %w", err)
	}
	return nil
}

func (r *SQLiteOrganizationRepo) Update(ctx context.Context, o *domain.Organization) error {
	query := `UPDATE organizations
		SET name = ?, description = ?, activities = ?, contact = ?, updated_at = ?
		WHERE user_id = ? AND is_active = 1`
	res, err := r.db.ExecContext(ctx, query,
		o.Name,
		o.Description,
		o.Activities,
		o.Contact,
		o.UpdatedAt.Format(time.RFC3339),
		o.UserID,
	)
	if err != nil {
		return fmt.Errorf("updating organization: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking updated rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("organization for user %d: %w", o.UserID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteOrganizationRepo) SoftDelete(ctx context.Context, userID int64) (bool, error) {
	query := `UPDATE organizations SET is_active = 0, updated_at = ?
		WHERE user_id = ? AND is_active = 1`
	res, err := r.db.ExecContext(ctx, query, time.Now().UTC().Format(time.RFC3339), userID)
	if err != nil {
		return false, fmt.Errorf("soft-deleting organization: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking deleted rows: %w", err)
	}
	return affected > 0, nil
}

func (r *SQLiteOrganizationRepo) Exists(ctx context.Context, userID int64) (bool, error) {
	query := `SELECT COUNT(*) FROM organizations WHERE user_id = ? AND is_active = 1`
	var count int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return false, fmt.Errorf("checking organization existence: %w", err)
	}
	return count > 0, nil
}

// scanOrganization scans a single organization from a *sql.Row.
func (r *SQLiteOrganizationRepo) scanOrganization(row *sql.Row) (*domain.Organization, error) {
	var o domain.Organization
	var isActive int
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&o.ID, &o.UserID, &o.Name, &o.Description, &o.Activities, &o.Contact,
		&isActive, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("organization: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning organization: %w", err)
	}

	o.IsActive = intToBool(isActive)
	if o.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if o.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &o, nil
}
