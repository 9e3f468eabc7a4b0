package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
)

// SelectionLookup reports whether a user already has a checkout draft.
type SelectionLookup struct {
	Found     bool
	Selection *models.CheckoutSelection
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) FindByUser(ctx context.Context, userID uuid.UUID) (SelectionLookup, error) {
	var sel models.CheckoutSelection
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&sel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SelectionLookup{}, nil
		}
		return SelectionLookup{}, err
	}
	return SelectionLookup{Found: true, Selection: &sel}, nil
}

func (r *Repository) Save(ctx context.Context, sel *models.CheckoutSelection) error {
	return r.db.WithContext(ctx).Save(sel).Error
}

// PruneStale removes drafts untouched since cutoff whose owner has nothing in
// the cart.
func (r *Repository) PruneStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("updated_at < ?", cutoff).
		Where("NOT EXISTS (SELECT 1 FROM cart_items ci WHERE ci.user_id = checkout_selections.user_id)").
		Delete(&models.CheckoutSelection{})
	return res.RowsAffected, res.Error
}
