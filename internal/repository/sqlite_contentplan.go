package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mkuznetsova/dobrobot/internal/db"
	"github.com/mkuznetsova/dobrobot/internal/domain"
)

// SQLiteContentPlanRepo implements ContentPlanRepo using a SQLite database.
// It accepts a db.DBTX so services can compose it into transactions.
type SQLiteContentPlanRepo struct {
	db db.DBTX
}

// NewSQLiteContentPlanRepo creates a new SQLiteContentPlanRepo.
func NewSQLiteContentPlanRepo(conn db.DBTX) *SQLiteContentPlanRepo {
	return &SQLiteContentPlanRepo{db: conn}
}

const planColumns = `id, user_id, plan_name, period, frequency, topics, details, plan_data, is_active, created_at, updated_at`

const itemColumns = `id, content_plan_id, publication_date, content_title, content_text, status, notification_sent, notification_sent_at, created_at, updated_at`

func (r *SQLiteContentPlanRepo) CreatePlan(ctx context.Context, p *domain.ContentPlan) error {
	planData, err := json.Marshal(p.PlanData)
	if err != nil {
		return fmt.Errorf("marshaling plan data: %w", err)
	}
	query := `INSERT INTO content_plans (` + planColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		p.ID,
		p.UserID,
		p.PlanName,
		p.Period,
		p.Frequency,
		p.Topics,
		p.Details,
		string(planData),
		boolToInt(p.IsActive),
		p.CreatedAt.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting content plan: %w", err)
	}
	return nil
}

func (r *SQLiteContentPlanRepo) BulkCreateItems(ctx context.Context, planID string, items []*domain.ContentPlanItem) error {
	query := `INSERT INTO content_plan_items (` + itemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, item := range items {
		_, err := r.db.ExecContext(ctx, query,
			item.ID,
			planID,
			item.PublicationDate.Format(time.RFC3339),
			item.ContentTitle,
			item.ContentText,
			string(item.Status),
			boolToInt(item.NotificationSent),
			nullableTimeToString(item.NotificationSentAt),
			item.CreatedAt.Format(time.RFC3339),
			item.UpdatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("inserting plan item %q: %w", item.ContentTitle, err)
		}
	}
	return nil
}

func (r *SQLiteContentPlanRepo) GetByID(ctx context.Context, planID string, userID int64) (*domain.ContentPlan, error) {
	query := `SELECT ` + planColumns + ` FROM content_plans WHERE id = ? AND user_id = ?`
	row := r.db.QueryRowContext(ctx, query, planID, userID)

	plan, err := r.scanPlan(row)
	if err != nil {
		return nil, err
	}
	plan.Items, err = r.ListItems(ctx, planID)
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// GetPlanByID loads a plan without the ownership check and without items.
// The notification path uses it to resolve an item's owner and active flag.
func (r *SQLiteContentPlanRepo) GetPlanByID(ctx context.Context, planID string) (*domain.ContentPlan, error) {
	query := `SELECT ` + planColumns + ` FROM content_plans WHERE id = ?`
	return r.scanPlan(r.db.QueryRowContext(ctx, query, planID))
}

func (r *SQLiteContentPlanRepo) ListForUser(ctx context.Context, userID int64, activeOnly bool) ([]*domain.ContentPlan, error) {
	query := `SELECT ` + planColumns + ` FROM content_plans WHERE user_id = ?`
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing content plans: %w", err)
	}
	defer rows.Close()

	var plans []*domain.ContentPlan
	for rows.Next() {
		plan, err := r.scanPlanRow(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating content plans: %w", err)
	}
	return plans, nil
}

func (r *SQLiteContentPlanRepo) ListItems(ctx context.Context, planID string) ([]*domain.ContentPlanItem, error) {
	query := `SELECT ` + itemColumns + ` FROM content_plan_items
		WHERE content_plan_id = ? ORDER BY publication_date ASC`
	rows, err := r.db.QueryContext(ctx, query, planID)
	if err != nil {
		return nil, fmt.Errorf("listing plan items: %w", err)
	}
	defer rows.Close()
	return r.scanItems(rows)
}

func (r *SQLiteContentPlanRepo) GetItemByID(ctx context.Context, itemID string) (*domain.ContentPlanItem, error) {
	query := `SELECT ` + itemColumns + ` FROM content_plan_items WHERE id = ?`
	rows, err := r.db.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("loading plan item: %w", err)
	}
	defer rows.Close()

	items, err := r.scanItems(rows)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("plan item %s: %w", itemID, ErrNotFound)
	}
	return items[0], nil
}

func (r *SQLiteContentPlanRepo) SetActive(ctx context.Context, planID string, userID int64, active bool) (bool, error) {
	query := `UPDATE content_plans SET is_active = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`
	res, err := r.db.ExecContext(ctx, query,
		boolToInt(active), time.Now().UTC().Format(time.RFC3339), planID, userID)
	if err != nil {
		return false, fmt.Errorf("setting plan active flag: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking updated rows: %w", err)
	}
	return affected > 0, nil
}

func (r *SQLiteContentPlanRepo) UpdateItemStatus(ctx context.Context, itemID string, status domain.PublicationStatus) (bool, error) {
	query := `UPDATE content_plan_items SET status = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		string(status), time.Now().UTC().Format(time.RFC3339), itemID)
	if err != nil {
		return false, fmt.Errorf("updating item status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking updated rows: %w", err)
	}
	return affected > 0, nil
}

func (r *SQLiteContentPlanRepo) MarkItemNotified(ctx context.Context, itemID string) (bool, error) {
	// The notification_sent = 0 guard makes a second call a no-op,
	// so notification_sent_at is written at most once.
	now := time.Now().UTC().Format(time.RFC3339)
	query := `UPDATE content_plan_items
		SET notification_sent = 1, notification_sent_at = ?, updated_at = ?
		WHERE id = ? AND notification_sent = 0`
	res, err := r.db.ExecContext(ctx, query, now, now, itemID)
	if err != nil {
		return false, fmt.Errorf("marking item notified: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking updated rows: %w", err)
	}
	if affected > 0 {
		return true, nil
	}

	// Distinguish "already notified" (success) from "no such item".
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM content_plan_items WHERE id = ?`, itemID).Scan(&count); err != nil {
		return false, fmt.Errorf("checking item existence: %w", err)
	}
	return count > 0, nil
}

func (r *SQLiteContentPlanRepo) ListPendingNotifications(ctx context.Context, now time.Time, lookahead time.Duration) ([]*domain.ContentPlanItem, error) {
	windowEnd := now.Add(lookahead)
	query := `SELECT i.id, i.content_plan_id, i.publication_date, i.content_title, i.content_text,
			i.status, i.notification_sent, i.notification_sent_at, i.created_at, i.updated_at
		FROM content_plan_items i
		JOIN content_plans p ON i.content_plan_id = p.id
		WHERE i.status = 'scheduled'
		  AND i.notification_sent = 0
		  AND p.is_active = 1
		  AND i.publication_date >= ?
		  AND i.publication_date <= ?
		ORDER BY i.publication_date ASC`
	rows, err := r.db.QueryContext(ctx, query,
		now.UTC().Format(time.RFC3339), windowEnd.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("listing pending notifications: %w", err)
	}
	defer rows.Close()
	return r.scanItems(rows)
}

// scanPlan scans a single plan from a *sql.Row.
func (r *SQLiteContentPlanRepo) scanPlan(row *sql.Row) (*domain.ContentPlan, error) {
	var p domain.ContentPlan
	var planDataStr string
	var isActive int
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&p.ID, &p.UserID, &p.PlanName, &p.Period, &p.Frequency, &p.Topics, &p.Details,
		&planDataStr, &isActive, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("content plan: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning content plan: %w", err)
	}
	return r.populatePlan(&p, planDataStr, isActive, createdAtStr, updatedAtStr)
}

// scanPlanRow scans a plan from *sql.Rows while iterating a list query.
func (r *SQLiteContentPlanRepo) scanPlanRow(rows *sql.Rows) (*domain.ContentPlan, error) {
	var p domain.ContentPlan
	var planDataStr string
	var isActive int
	var createdAtStr, updatedAtStr string

	err := rows.Scan(
		&p.ID, &p.UserID, &p.PlanName, &p.Period, &p.Frequency, &p.Topics, &p.Details,
		&planDataStr, &isActive, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning content plan row: %w", err)
	}
	return r.populatePlan(&p, planDataStr, isActive, createdAtStr, updatedAtStr)
}

func (r *SQLiteContentPlanRepo) populatePlan(p *domain.ContentPlan, planDataStr string, isActive int, createdAtStr, updatedAtStr string) (*domain.ContentPlan, error) {
	if planDataStr != "" {
		if err := json.Unmarshal([]byte(planDataStr), &p.PlanData); err != nil {
			return nil, fmt.Errorf("unmarshaling plan data: %w", err)
		}
	}
	p.IsActive = intToBool(isActive)

	var err error
	if p.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return p, nil
}

// scanItems scans plan items from *sql.Rows.
func (r *SQLiteContentPlanRepo) scanItems(rows *sql.Rows) ([]*domain.ContentPlanItem, error) {
	var items []*domain.ContentPlanItem
	for rows.Next() {
		var item domain.ContentPlanItem
		var pubDateStr, statusStr, createdAtStr, updatedAtStr string
		var notificationSent int
		var notifiedAt sql.NullString

		err := rows.Scan(
			&item.ID, &item.ContentPlanID, &pubDateStr, &item.ContentTitle, &item.ContentText,
			&statusStr, &notificationSent, &notifiedAt, &createdAtStr, &updatedAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning plan item row: %w", err)
		}

		item.Status = domain.PublicationStatus(statusStr)
		item.NotificationSent = intToBool(notificationSent)
		item.NotificationSentAt = parseNullableTime(notifiedAt)
		if item.PublicationDate, err = time.Parse(time.RFC3339, pubDateStr); err != nil {
			return nil, fmt.Errorf("parsing publication_date: %w", err)
		}
		if item.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		if item.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
			return nil, fmt.Errorf("parsing updated_at: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating plan items: %w", err)
	}
	return items, nil
}
