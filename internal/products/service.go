package products

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	pkgerrors "github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/errors"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/logger"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/pagination"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/storage"
)

// Service covers the public catalog and its admin maintenance.
type Service interface {
	List(ctx context.Context, input ListInput) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*DTO, error)
	Stock(ctx context.Context, id uuid.UUID) (*StockInfo, error)
	Categories(ctx context.Context) ([]CategorySummary, error)
	Create(ctx context.Context, input Input) (*DTO, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*DTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateVariantStock(ctx context.Context, id uuid.UUID, variantID string, stock int) (*DTO, error)
	UploadImage(ctx context.Context, id uuid.UUID, upload ImageUpload) (*DTO, error)
}

// ImageUpload is a product image received from a multipart form.
type ImageUpload struct {
	ContentType string
	Size        int64
	Body        io.Reader
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type imageStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (*storage.Object, error)
	Delete(ctx context.Context, key string) error
}

type ServiceParams struct {
	DB     txRunner
	Repo   *Repository
	Images imageStore
	Logger *logger.Logger
}

type service struct {
	db     txRunner
	repo   *Repository
	images imageStore
	logg   *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("product repository is required")
	}
	return &service{
		db:     params.DB,
		repo:   params.Repo,
		images: params.Images,
		logg:   params.Logger,
	}, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	if input.Filters.Type != nil && !input.Filters.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product type")
	}
	if _, err := pagination.ParseCursor(input.Pagination.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, next, err := s.repo.Search(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search products")
	}
	out := make([]DTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return &ListResult{Products: out, NextCursor: next}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*DTO, error) {
	product, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(product)
	return &dto, nil
}

func (s *service) Stock(ctx context.Context, id uuid.UUID) (*StockInfo, error) {
	product, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	info := stockInfoFor(product)
	return &info, nil
}

func (s *service) Categories(ctx context.Context) ([]CategorySummary, error) {
	out, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, input Input) (*DTO, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	product := &models.Product{}
	input.apply(product)

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
		}
		if err := repo.ReplaceAttributes(ctx, product.ID, normalizeAttributes(input.Attributes)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save product attributes")
		}
		loaded, err := repo.FindByID(ctx, product.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload product")
		}
		product = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := FromModel(product)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input Input) (*DTO, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	var product *models.Product
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}
		input.apply(existing)
		if err := repo.Update(ctx, existing); err != nil {
			return mapWriteError(err, "update product")
		}
		if err := repo.ReplaceAttributes(ctx, existing.ID, normalizeAttributes(input.Attributes)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save product attributes")
		}
		product, err = repo.FindByID(ctx, existing.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload product")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := FromModel(product)
	return &dto, nil
}

// Delete deactivates the product and removes it from carts and wishlists.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.load(ctx, repo, id); err != nil {
			return err
		}
		if err := repo.DetachFromShoppers(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "detach product")
		}
		if err := repo.Deactivate(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivate product")
		}
		return nil
	})
}

// UpdateVariantStock sets one variant's stock and resyncs the scalar stock.
func (s *service) UpdateVariantStock(ctx context.Context, id uuid.UUID, variantID string, stock int) (*DTO, error) {
	if stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must be zero or greater")
	}
	var product *models.Product
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		locked, err := repo.FindForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}
		if !locked.HasVariants() {
			return pkgerrors.New(pkgerrors.CodeValidation, "product has no variants")
		}
		variant, ok := locked.Variant(variantID)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		variant.Stock = stock
		locked.SyncStock()
		if err := repo.SaveStock(ctx, locked); err != nil {
			return mapWriteError(err, "save variant stock")
		}
		product = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := FromModel(product)
	return &dto, nil
}

func (s *service) UploadImage(ctx context.Context, id uuid.UUID, upload ImageUpload) (*DTO, error) {
	if s.images == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "image storage unavailable")
	}
	contentType, err := storage.NormalizeImageContentType(upload.ContentType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	product, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	obj, err := s.images.Put(ctx, storage.ProductImageKey(product.ID, contentType), contentType, upload.Body, upload.Size)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload product image")
	}
	if err := s.repo.SetImage(ctx, product.ID, obj.URL, obj.Key); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save product image")
	}
	if product.ImageKey != nil && *product.ImageKey != obj.Key {
		if err := s.images.Delete(ctx, *product.ImageKey); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "image_key", *product.ImageKey), "failed to delete replaced product image")
		}
	}

	product.ImageURL = &obj.URL
	product.ImageKey = &obj.Key
	dto := FromModel(product)
	return &dto, nil
}

func (s *service) load(ctx context.Context, repo *Repository, id uuid.UUID) (*models.Product, error) {
	product, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return product, nil
}

func mapWriteError(err error, msg string) error {
	if errors.Is(err, ErrVersionConflict) {
		return pkgerrors.New(pkgerrors.CodeConflict, "product was modified concurrently, retry")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}

func validateInput(input Input) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !input.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "type must be Dog, Cat, Pharmacy or Outlet")
	}
	if input.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be zero or greater")
	}
	if input.OriginalPrice != nil && input.OriginalPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "originalPrice must be zero or greater")
	}
	if input.StockQuantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stockQuantity must be zero or greater")
	}
	if err := input.Metadata.Validate(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	return validateAttributes(input.Attributes)
}

func validateAttributes(attrs map[string]string) error {
	if len(attrs) > maxAttributes {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d attributes are allowed", maxAttributes))
	}
	for k, v := range attrs {
		key := strings.TrimSpace(k)
		if key == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "attribute keys must not be blank")
		}
		if utf8.RuneCountInString(key) > maxAttributeKeyLen {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("attribute key %q exceeds %d characters", key, maxAttributeKeyLen))
		}
		if utf8.RuneCountInString(v) > maxAttributeValLen {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("attribute %q value exceeds %d characters", key, maxAttributeValLen))
		}
	}
	return nil
}

func normalizeAttributes(attrs map[string]string) map[string]string {
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[strings.TrimSpace(k)] = v
	}
	return out
}

func (in Input) apply(p *models.Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.ShortDescription = in.ShortDescription
	p.Price = in.Price
	p.OriginalPrice = nullDecimal(in.OriginalPrice)
	p.Category = strings.TrimSpace(in.Category)
	if p.Category == "" {
		p.Category = defaultCategoryName
	}
	p.Subcategory = in.Subcategory
	p.Brand = in.Brand
	p.Type = in.Type
	p.PetType = in.PetType
	p.Weight = nullDecimal(in.Weight)
	p.WeightUnit = in.WeightUnit
	if in.ImageURL != nil {
		p.ImageURL = in.ImageURL
	}
	p.Metadata = in.Metadata
	p.StockQuantity = in.StockQuantity
	p.IsActive = in.IsActive == nil || *in.IsActive

	if p.HasVariants() {
		p.SyncStock()
		return
	}
	p.InStock = p.StockQuantity > 0
	if in.InStock != nil && !*in.InStock {
		p.InStock = false
	}
}

func nullDecimal(v *decimal.Decimal) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *v, Valid: true}
}
