package sql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateOutstandingToken records an issued refresh token.
func (r *GormRepository) CreateOutstandingToken(ctx context.Context, token *entity.DbOutstandingToken) error {
	if err := r.ready(); err != nil {
		return err
	}
	if token == nil || strings.TrimSpace(token.JTI) == "" {
		return fmt.Errorf("token id is empty")
	}
	return r.db.WithContext(ctx).Create(token).Error
}

// BlacklistToken marks a refresh token as revoked. Blacklisting the same jti
// twice is not an error.
func (r *GormRepository) BlacklistToken(ctx context.Context, token *entity.DbBlacklistedToken) error {
	if err := r.ready(); err != nil {
		return err
	}
	if token == nil || strings.TrimSpace(token.JTI) == "" {
		return fmt.Errorf("token id is empty")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "jti"}}, DoNothing: true}).
		Create(token).Error
}

// IsTokenBlacklisted reports whether jti has been revoked.
func (r *GormRepository) IsTokenBlacklisted(ctx context.Context, jti string) (bool, error) {
	if err := r.ready(); err != nil {
		return false, err
	}
	return r.exists(r.db.WithContext(ctx), &entity.DbBlacklistedToken{}, "jti", jti)
}

// PurgeExpiredTokens drops outstanding and blacklisted rows that expired before the cutoff.
func (r *GormRepository) PurgeExpiredTokens(ctx context.Context, before time.Time) (int64, error) {
	if err := r.ready(); err != nil {
		return 0, err
	}
	var purged int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("expires_at < ?", before).Delete(&entity.DbBlacklistedToken{})
		if res.Error != nil {
			return res.Error
		}
		purged += res.RowsAffected

		res = tx.Where("expires_at < ?", before).Delete(&entity.DbOutstandingToken{})
		if res.Error != nil {
			return res.Error
		}
		purged += res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return purged, nil
}
