package bookings

import (
	"context"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
)

// Filter narrows a booking listing. Zero values are ignored.
type Filter struct {
	Status      enums.BookingStatus
	ServiceType enums.ServiceType
	Date        *time.Time
	FromDate    *time.Time
	UserID      *uuid.UUID
	Email       string
	Phone       string
	Term        string
	TypeKeyword string
}

type sortOrder int

const (
	newestFirst sortOrder = iota
	// bySchedule orders by appointment slot instead of creation time.
	bySchedule
)

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

func (r *Repository) Create(ctx context.Context, booking *models.ServiceBooking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ServiceBooking, error) {
	var booking models.ServiceBooking
	if err := r.db.WithContext(ctx).First(&booking, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *Repository) FindForUpdate(ctx context.Context, id uuid.UUID) (*models.ServiceBooking, error) {
	var booking models.ServiceBooking
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		First(&booking, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *Repository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	updates["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&models.ServiceBooking{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.ServiceBooking{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

// List runs the filter as a single predicate built with squirrel.
func (r *Repository) List(ctx context.Context, f Filter, order sortOrder) ([]models.ServiceBooking, error) {
	where, args, err := f.predicate().ToSql()
	if err != nil {
		return nil, err
	}
	q := r.db.WithContext(ctx).Model(&models.ServiceBooking{})
	if where != "" {
		q = q.Where(where, args...)
	}
	switch order {
	case bySchedule:
		q = q.Order("preferred_date ASC").Order("preferred_time ASC")
	default:
		q = q.Order("created_at DESC").Order("id DESC")
	}
	var rows []models.ServiceBooking
	err = q.Find(&rows).Error
	return rows, err
}

func (f Filter) predicate() squirrel.And {
	conds := squirrel.And{}
	if f.Status != "" {
		conds = append(conds, squirrel.Eq{"status": f.Status})
	}
	if f.ServiceType != "" {
		conds = append(conds, squirrel.Eq{"service_type": f.ServiceType})
	}
	if f.Date != nil {
		conds = append(conds, squirrel.Eq{"preferred_date": *f.Date})
	}
	if f.FromDate != nil {
		conds = append(conds, squirrel.GtOrEq{"preferred_date": *f.FromDate})
	}
	if f.UserID != nil {
		conds = append(conds, squirrel.Eq{"user_id": *f.UserID})
	}
	if email := strings.TrimSpace(f.Email); email != "" {
		conds = append(conds, squirrel.Eq{"LOWER(email)": strings.ToLower(email)})
	}
	if phone := strings.TrimSpace(f.Phone); phone != "" {
		conds = append(conds, squirrel.Eq{"phone": phone})
	}
	if term := strings.TrimSpace(f.Term); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		conds = append(conds, squirrel.Or{
			squirrel.Like{"LOWER(owner_name)": pattern},
			squirrel.Like{"LOWER(pet_name)": pattern},
			squirrel.Like{"LOWER(phone)": pattern},
		})
	}
	if kw := strings.TrimSpace(f.TypeKeyword); kw != "" {
		conds = append(conds, squirrel.Like{"LOWER(service_type || ' ' || service_name)": "%" + strings.ToLower(kw) + "%"})
	}
	return conds
}

type statusCount struct {
	Status enums.BookingStatus
	Count  int64
}

func (r *Repository) CountByStatus(ctx context.Context) ([]statusCount, error) {
	query := db.QB.
		Select("status", "COUNT(*) AS count").
		From("service_bookings").
		GroupBy("status")
	var rows []statusCount
	err := db.ScanSQL(ctx, r.db, query, &rows)
	return rows, err
}

func (r *Repository) CountByServiceType(ctx context.Context, serviceType enums.ServiceType) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ServiceBooking{}).
		Where("service_type = ?", serviceType).
		Count(&count).Error
	return count, err
}
