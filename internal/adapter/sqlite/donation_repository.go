package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/solward/donatiq/internal/domain"
)

// DonationRepository implements domain.DonationRepository using SQLite.
type DonationRepository struct {
	db *sql.DB
}

var _ domain.DonationRepository = (*DonationRepository)(nil)

func (r *DonationRepository) Create(ctx context.Context, d domain.Donation) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO donations (id, campaign_id, kiosk_id, amount, gift_aid, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.CampaignID, nullable(d.KioskID), d.Amount, d.GiftAid, d.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting donation: %w", err)
	}
	return nil
}

func (r *DonationRepository) ListByCampaign(ctx context.Context, campaignID string) ([]domain.Donation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, campaign_id, kiosk_id, amount, gift_aid, created_at
		 FROM donations WHERE campaign_id = ? ORDER BY created_at DESC`,
		campaignID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing donations: %w", err)
	}
	defer rows.Close()

	var donations []domain.Donation
	for rows.Next() {
		var d domain.Donation
		var kioskID sql.NullString
		var createdAt string
		if err := rows.Scan(&d.ID, &d.CampaignID, &kioskID, &d.Amount, &d.GiftAid, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning donation: %w", err)
		}
		d.KioskID = kioskID.String
		d.CreatedAt, _ = time.Parse(timeFormat, createdAt)
		donations = append(donations, d)
	}

	return donations, rows.Err()
}
