package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/solward/donatiq/internal/domain"
)

// KioskRepository implements domain.KioskRepository using SQLite.
type KioskRepository struct {
	db *sql.DB
}

var _ domain.KioskRepository = (*KioskRepository)(nil)

func (r *KioskRepository) Create(ctx context.Context, k domain.Kiosk) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO kiosks (id, name, location, status, campaign_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		k.ID, k.Name, k.Location, string(k.Status), nullable(k.CampaignID),
		k.CreatedAt.Format(timeFormat), k.UpdatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting kiosk: %w", err)
	}
	return nil
}

func (r *KioskRepository) GetByID(ctx context.Context, id string) (domain.Kiosk, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, location, status, campaign_id, created_at, updated_at
		 FROM kiosks WHERE id = ?`, id,
	)
	k, err := scanKiosk(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Kiosk{}, domain.ErrKioskNotFound
	}
	return k, err
}

func (r *KioskRepository) List(ctx context.Context) ([]domain.Kiosk, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, location, status, campaign_id, created_at, updated_at
		 FROM kiosks ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing kiosks: %w", err)
	}
	defer rows.Close()

	var kiosks []domain.Kiosk
	for rows.Next() {
		k, err := scanKiosk(rows)
		if err != nil {
			return nil, err
		}
		kiosks = append(kiosks, k)
	}

	return kiosks, rows.Err()
}

func (r *KioskRepository) Update(ctx context.Context, k domain.Kiosk) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE kiosks SET name = ?, location = ?, status = ?, campaign_id = ?, updated_at = ?
		 WHERE id = ?`,
		k.Name, k.Location, string(k.Status), nullable(k.CampaignID),
		time.Now().UTC().Format(timeFormat), k.ID,
	)
	if err != nil {
		return fmt.Errorf("updating kiosk: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrKioskNotFound
	}
	return nil
}

func scanKiosk(row campaignScanner) (domain.Kiosk, error) {
	var k domain.Kiosk
	var status string
	var campaignID sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&k.ID, &k.Name, &k.Location, &status, &campaignID, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Kiosk{}, err
		}
		return domain.Kiosk{}, fmt.Errorf("scanning kiosk: %w", err)
	}

	k.Status = domain.KioskStatus(status)
	k.CampaignID = campaignID.String
	k.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	k.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)

	return k, nil
}
