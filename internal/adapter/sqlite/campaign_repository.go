package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/solward/donatiq/internal/domain"
)

// CampaignRepository implements domain.CampaignRepository using SQLite.
//
// Date columns hold RFC3339 strings and are scanned back as strings:
// the reconciler's normalizer absorbs them, so the repository never
// needs to parse a campaign's date window itself. Status and
// fingerprint writes are column-level on purpose; see
// domain.CampaignRepository.
type CampaignRepository struct {
	db *sql.DB
}

// Compile-time check: CampaignRepository implements domain.CampaignRepository.
var _ domain.CampaignRepository = (*CampaignRepository)(nil)

const campaignColumns = `id, name, slug, status, goal, raised, currency, gift_aid_enabled,
	start_date, end_date,
	auto_completed_goal, auto_completed_at, auto_paused_end_date, auto_paused_end_date_at,
	created_at, updated_at`

func (r *CampaignRepository) Create(ctx context.Context, c domain.Campaign) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO campaigns (`+campaignColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Slug, string(c.Status), c.Goal, c.Raised, c.Currency, c.GiftAidEnabled,
		dateColumn(c.StartDate), dateColumn(c.EndDate),
		c.AutoCompletedGoal, timeColumn(c.AutoCompletedAt), nullable(c.AutoPausedEndDate), timeColumn(c.AutoPausedEndDateAt),
		c.CreatedAt.Format(timeFormat), c.UpdatedAt.Format(timeFormat),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.SlugConflictError{Slug: c.Slug}
		}
		return fmt.Errorf("inserting campaign: %w", err)
	}
	return nil
}

func (r *CampaignRepository) GetByID(ctx context.Context, id string) (domain.Campaign, error) {
	return r.scanCampaign(r.db.QueryRowContext(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE id = ?`, id,
	))
}

func (r *CampaignRepository) GetBySlug(ctx context.Context, slug string) (domain.Campaign, error) {
	return r.scanCampaign(r.db.QueryRowContext(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE slug = ?`, slug,
	))
}

func (r *CampaignRepository) List(ctx context.Context, filter domain.CampaignFilter) ([]domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns`
	var args []any

	if filter.Status != nil {
		query += ` WHERE status = ?`
		args = append(args, string(*filter.Status))
	}

	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []domain.Campaign
	for rows.Next() {
		c, err := scanCampaignRow(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}

	return campaigns, rows.Err()
}

// ApplyStatusUpdate merges a proposed status update into the stored
// record. Only the status column plus the fields the update actually
// carries are touched; raised and every other column stay untouched so
// a concurrent donation write cannot be clobbered.
func (r *CampaignRepository) ApplyStatusUpdate(ctx context.Context, id string, update domain.StatusUpdate) error {
	set := []string{"status = ?", "updated_at = ?"}
	args := []any{string(update.Status), time.Now().UTC().Format(timeFormat)}

	if update.AutoCompletedGoal != nil {
		set = append(set, "auto_completed_goal = ?")
		args = append(args, *update.AutoCompletedGoal)
	}
	if update.AutoCompletedAt != nil {
		set = append(set, "auto_completed_at = ?")
		args = append(args, update.AutoCompletedAt.UTC().Format(timeFormat))
	}
	if update.AutoPausedEndDate != nil {
		set = append(set, "auto_paused_end_date = ?")
		args = append(args, *update.AutoPausedEndDate)
	}
	if update.AutoPausedEndDateAt != nil {
		set = append(set, "auto_paused_end_date_at = ?")
		args = append(args, update.AutoPausedEndDateAt.UTC().Format(timeFormat))
	}

	args = append(args, id)

	result, err := r.db.ExecContext(ctx,
		`UPDATE campaigns SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("applying status update: %w", err)
	}
	return requireRow(result)
}

// AddToRaised atomically increments the raised amount in place.
func (r *CampaignRepository) AddToRaised(ctx context.Context, id string, amount float64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE campaigns SET raised = raised + ?, updated_at = ? WHERE id = ?`,
		amount, time.Now().UTC().Format(timeFormat), id,
	)
	if err != nil {
		return fmt.Errorf("incrementing raised: %w", err)
	}
	return requireRow(result)
}

func (r *CampaignRepository) SetGoal(ctx context.Context, id string, goal float64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE campaigns SET goal = ?, updated_at = ? WHERE id = ?`,
		goal, time.Now().UTC().Format(timeFormat), id,
	)
	if err != nil {
		return fmt.Errorf("updating goal: %w", err)
	}
	return requireRow(result)
}

func (r *CampaignRepository) SetEndDate(ctx context.Context, id string, endDate *string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE campaigns SET end_date = ?, updated_at = ? WHERE id = ?`,
		endDate, time.Now().UTC().Format(timeFormat), id,
	)
	if err != nil {
		return fmt.Errorf("updating end date: %w", err)
	}
	return requireRow(result)
}

type campaignScanner interface {
	Scan(dest ...any) error
}

func (r *CampaignRepository) scanCampaign(row *sql.Row) (domain.Campaign, error) {
	c, err := scanCampaignRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Campaign{}, domain.ErrCampaignNotFound
	}
	return c, err
}

func scanCampaignRow(row campaignScanner) (domain.Campaign, error) {
	var c domain.Campaign
	var status string
	var startDate, endDate, autoPausedEndDate, autoCompletedAt, autoPausedAt sql.NullString
	var autoCompletedGoal sql.NullFloat64
	var createdAt, updatedAt string

	err := row.Scan(&c.ID, &c.Name, &c.Slug, &status, &c.Goal, &c.Raised, &c.Currency, &c.GiftAidEnabled,
		&startDate, &endDate,
		&autoCompletedGoal, &autoCompletedAt, &autoPausedEndDate, &autoPausedAt,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Campaign{}, err
		}
		return domain.Campaign{}, fmt.Errorf("scanning campaign: %w", err)
	}

	c.Status = domain.Status(status)
	if startDate.Valid {
		c.StartDate = startDate.String
	}
	if endDate.Valid {
		c.EndDate = endDate.String
	}
	if autoCompletedGoal.Valid {
		goal := autoCompletedGoal.Float64
		c.AutoCompletedGoal = &goal
	}
	if t, ok := parseStoredTime(autoCompletedAt); ok {
		c.AutoCompletedAt = &t
	}
	if autoPausedEndDate.Valid {
		c.AutoPausedEndDate = autoPausedEndDate.String
	}
	if t, ok := parseStoredTime(autoPausedAt); ok {
		c.AutoPausedEndDateAt = &t
	}
	c.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	c.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)

	return c, nil
}

// dateColumn normalizes a DateLike value for storage; unparseable
// values are stored as NULL rather than propagated.
func dateColumn(v any) *string {
	key, ok := domain.InstantKey(v)
	if !ok {
		return nil
	}
	return &key
}

func timeColumn(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(timeFormat)
	return &s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func parseStoredTime(ns sql.NullString) (time.Time, bool) {
	if !ns.Valid {
		return time.Time{}, false
	}
	t, err := time.Parse(timeFormat, ns.String)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrCampaignNotFound
	}
	return nil
}
