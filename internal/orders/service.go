package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/address"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/cart"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/checkout"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/products"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/users"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
	pkgerrors "github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/errors"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/logger"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/outbox"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/outbox/payloads"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userResolver interface {
	Resolve(ctx context.Context, email string) (*models.User, error)
}

type orderMetrics interface {
	ObserveOrderPlaced(paymentMethod string, total decimal.Decimal)
	ObserveCheckoutFailure(code string)
}

// Service places and administers orders.
type Service interface {
	PlaceOrder(ctx context.Context, email string) (*OrderDTO, error)
	PlaceOrderForOnlinePayment(ctx context.Context, email string, receipt *GatewayReceipt) (*OrderDTO, error)
	ListUserOrders(ctx context.Context, email string) ([]OrderDTO, error)
	GetOrder(ctx context.Context, email string, id uuid.UUID) (*OrderDTO, error)
	ListAll(ctx context.Context, params pagination.Params) (*OrderList, error)
	ListByStatus(ctx context.Context, status string) ([]OrderDTO, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*OrderDTO, error)
	Statistics(ctx context.Context) (*Statistics, error)
}

type ServiceParams struct {
	DB         txRunner
	Repo       *Repository
	Cart       *cart.Repository
	Selections *checkout.Repository
	Addresses  *address.Repository
	Products   *products.Repository
	UserRepo   *users.Repository
	Users      userResolver
	Outbox     outbox.Emitter
	Fees       checkout.Fees
	Metrics    orderMetrics
	Logger     *logger.Logger
}

type service struct {
	db         txRunner
	repo       *Repository
	cart       *cart.Repository
	selections *checkout.Repository
	addresses  *address.Repository
	products   *products.Repository
	userRepo   *users.Repository
	users      userResolver
	outbox     outbox.Emitter
	fees       checkout.Fees
	metrics    orderMetrics
	logg       *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.DB == nil:
		return nil, fmt.Errorf("tx runner required")
	case params.Repo == nil:
		return nil, fmt.Errorf("orders repository required")
	case params.Cart == nil:
		return nil, fmt.Errorf("cart repository required")
	case params.Selections == nil:
		return nil, fmt.Errorf("checkout repository required")
	case params.Addresses == nil:
		return nil, fmt.Errorf("address repository required")
	case params.Products == nil:
		return nil, fmt.Errorf("products repository required")
	case params.UserRepo == nil || params.Users == nil:
		return nil, fmt.Errorf("user store required")
	case params.Outbox == nil:
		return nil, fmt.Errorf("outbox emitter required")
	}
	fees := params.Fees
	if fees.Standard.IsZero() && fees.Express.IsZero() {
		fees = checkout.DefaultFees
	}
	return &service{
		db:         params.DB,
		repo:       params.Repo,
		cart:       params.Cart,
		selections: params.Selections,
		addresses:  params.Addresses,
		products:   params.Products,
		userRepo:   params.UserRepo,
		users:      params.Users,
		outbox:     params.Outbox,
		fees:       fees,
		metrics:    params.Metrics,
		logg:       params.Logger,
	}, nil
}

// PlaceOrder converts the user's cart into an order in one transaction:
// stock is re-validated and decremented under row locks, the shipping
// address is snapshotted, the cart is cleared and an order.placed event is
// queued.
func (s *service) PlaceOrder(ctx context.Context, email string) (*OrderDTO, error) {
	user, err := s.users.Resolve(ctx, email)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		items, err := s.cart.WithTx(tx).ListByUser(ctx, user.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
		}
		if len(items) == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "Cart is empty")
		}

		locked, err := s.lockAndValidate(ctx, tx, items)
		if err != nil {
			return err
		}

		sel, addr, err := s.selectionAndAddress(ctx, tx, user.ID)
		if err != nil {
			return err
		}

		totals := checkout.ComputeTotals(items, sel.DeliveryOption, s.fees)
		order = &models.Order{
			UserID:         user.ID,
			Shipping:       models.SnapshotFrom(addr),
			DeliveryOption: sel.DeliveryOption,
			PaymentMethod:  sel.PaymentMethod,
			Status:         enums.OrderStatusPending,
			PaymentStatus:  enums.PaymentStatusUnpaid,
			Subtotal:       totals.Subtotal,
			ShippingFee:    totals.ShippingFee,
			Total:          totals.Total,
			Items:          buildItems(items, locked),
		}
		return s.persistPlacement(ctx, tx, user, order, locked, nil)
	})
	if err != nil {
		s.observeFailure(err)
		return nil, err
	}

	s.observePlaced(ctx, order)
	dto := FromModel(order)
	return &dto, nil
}

// PlaceOrderForOnlinePayment records an order for a verified gateway payment.
// Totals come from the checkout selection; cart lines, when present, become
// the order items.
func (s *service) PlaceOrderForOnlinePayment(ctx context.Context, email string, receipt *GatewayReceipt) (*OrderDTO, error) {
	user, err := s.users.Resolve(ctx, email)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		sel, addr, err := s.selectionAndAddress(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		totals, ok := checkout.CachedTotals(sel)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "Order totals not found in checkout selection")
		}

		items, err := s.cart.WithTx(tx).ListByUser(ctx, user.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
		}
		locked := map[uuid.UUID]*models.Product{}
		for _, item := range items {
			if _, ok := locked[item.ProductID]; ok {
				continue
			}
			product, err := s.products.WithTx(tx).FindForUpdate(ctx, item.ProductID)
			if err != nil {
				return mapProductError(err)
			}
			locked[item.ProductID] = product
		}

		order = &models.Order{
			UserID:         user.ID,
			Shipping:       models.SnapshotFrom(addr),
			DeliveryOption: sel.DeliveryOption,
			PaymentMethod:  sel.PaymentMethod,
			Status:         enums.OrderStatusPending,
			PaymentStatus:  enums.PaymentStatusUnpaid,
			Subtotal:       totals.Subtotal,
			ShippingFee:    totals.ShippingFee,
			Total:          totals.Total,
			Items:          buildItems(items, locked),
		}
		if receipt != nil {
			order.RazorpayOrderID = &receipt.RazorpayOrderID
			order.RazorpayPaymentID = &receipt.RazorpayPaymentID
			order.PaymentStatus = enums.PaymentStatusPaid
			order.Status = enums.OrderStatusPaid
		}
		return s.persistPlacement(ctx, tx, user, order, locked, receipt)
	})
	if err != nil {
		s.observeFailure(err)
		return nil, err
	}

	s.observePlaced(ctx, order)
	dto := FromModel(order)
	return &dto, nil
}

// lockAndValidate re-reads every product in the cart under a row lock and
// checks the requested quantities against current stock.
func (s *service) lockAndValidate(ctx context.Context, tx *gorm.DB, items []models.CartItem) (map[uuid.UUID]*models.Product, error) {
	repo := s.products.WithTx(tx)
	locked := make(map[uuid.UUID]*models.Product, len(items))
	for _, item := range items {
		product, ok := locked[item.ProductID]
		if !ok {
			var err error
			product, err = repo.FindForUpdate(ctx, item.ProductID)
			if err != nil {
				return nil, mapProductError(err)
			}
			locked[item.ProductID] = product
		}
		if err := checkStock(product, item); err != nil {
			return nil, err
		}
	}
	return locked, nil
}

func checkStock(product *models.Product, item models.CartItem) error {
	if item.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "Invalid quantity for product: "+product.Name)
	}
	if !product.InStock {
		return insufficientStock(product, "marked as out of stock", 0)
	}
	available := product.StockQuantity
	info := "main stock"
	if variant := item.Variant(); variant != "" && product.HasVariants() {
		v, ok := product.Variant(variant)
		if !ok {
			return insufficientStock(product, "variant not found", 0)
		}
		available = v.Stock
		info = "variant stock"
	}
	if available < item.Quantity {
		return insufficientStock(product, fmt.Sprintf("%s: %d", info, available), available)
	}
	return nil
}

func insufficientStock(product *models.Product, info string, available int) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("Insufficient stock for product: %s (%s)", product.Name, info)).
		WithDetails(map[string]any{"productId": product.ID, "available": available})
}

func (s *service) selectionAndAddress(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*models.CheckoutSelection, *models.Address, error) {
	lookup, err := s.selections.WithTx(tx).FindByUser(ctx, userID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load checkout selection")
	}
	if !lookup.Found {
		return nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "No checkout selection found")
	}
	sel := lookup.Selection
	if sel.AddressID == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "No address selected. Please select a delivery address.")
	}
	addr, err := s.addresses.WithTx(tx).FindByID(ctx, *sel.AddressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "Selected address not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load address")
	}
	if !addr.OwnedBy(userID) {
		return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "Address does not belong to user")
	}
	return sel, addr, nil
}

func buildItems(items []models.CartItem, products map[uuid.UUID]*models.Product) []models.OrderItem {
	out := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		name := ""
		if p := products[item.ProductID]; p != nil {
			name = p.Name
		}
		out = append(out, models.OrderItem{
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			ProductName: name,
			Quantity:    item.Quantity,
			Price:       item.PriceAtAdd,
		})
	}
	return out
}

// persistPlacement decrements stock, writes the order, clears the cart, bumps
// the user's order counter and queues the placement events.
func (s *service) persistPlacement(ctx context.Context, tx *gorm.DB, user *models.User, order *models.Order, locked map[uuid.UUID]*models.Product, receipt *GatewayReceipt) error {
	for _, item := range order.Items {
		product := locked[item.ProductID]
		if product == nil {
			continue
		}
		variant := ""
		if item.VariantID != nil {
			variant = *item.VariantID
		}
		product.DecrementStock(variant, item.Quantity)
	}

	productRepo := s.products.WithTx(tx)
	for _, product := range locked {
		if err := productRepo.SaveStock(ctx, product); err != nil {
			if errors.Is(err, products.ErrVersionConflict) {
				return pkgerrors.New(pkgerrors.CodeConflict, "product stock changed during checkout, please retry").
					WithDetails(map[string]any{"productId": product.ID})
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product stock")
		}
	}

	if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
	}
	if err := s.cart.WithTx(tx).DeleteByUser(ctx, user.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	if err := s.userRepo.WithTx(tx).IncrementTotalOrders(ctx, user.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "increment order count")
	}

	actor := &outbox.ActorRef{UserID: user.ID, Email: user.Email, Role: user.Role.String()}
	placed := outbox.DomainEvent{
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actor,
		Data: payloads.OrderPlacedEvent{
			OrderID:       order.ID,
			UserID:        user.ID,
			Email:         user.Email,
			PaymentMethod: order.PaymentMethod,
			ItemCount:     len(order.Items),
			Total:         order.Total,
		},
	}
	if err := s.outbox.Emit(ctx, tx, placed); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queue order event")
	}
	if receipt == nil {
		return nil
	}
	paid := outbox.DomainEvent{
		EventType:     enums.EventOrderPaid,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actor,
		Data: payloads.OrderPaidEvent{
			OrderID:           order.ID,
			UserID:            user.ID,
			RazorpayOrderID:   receipt.RazorpayOrderID,
			RazorpayPaymentID: receipt.RazorpayPaymentID,
			Total:             order.Total,
		},
	}
	if err := s.outbox.Emit(ctx, tx, paid); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queue payment event")
	}
	return nil
}

func (s *service) ListUserOrders(ctx context.Context, email string) ([]OrderDTO, error) {
	user, err := s.users.Resolve(ctx, email)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return fromModels(rows), nil
}

// GetOrder returns an order to its owner or to an admin.
func (s *service) GetOrder(ctx context.Context, email string, id uuid.UUID) (*OrderDTO, error) {
	user, err := s.users.Resolve(ctx, email)
	if err != nil {
		return nil, err
	}
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != user.ID && !user.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another user")
	}
	dto := FromModel(order)
	return &dto, nil
}

func (s *service) ListAll(ctx context.Context, params pagination.Params) (*OrderList, error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, next, err := s.repo.ListPage(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return &OrderList{Orders: fromModels(rows), NextCursor: next}, nil
}

func (s *service) ListByStatus(ctx context.Context, status string) ([]OrderDTO, error) {
	parsed, err := enums.ParseOrderStatus(status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status")
	}
	rows, err := s.repo.ListByStatus(ctx, parsed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return fromModels(rows), nil
}

// UpdateStatus applies an admin status change and queues
// order.status_changed in the same transaction.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*OrderDTO, error) {
	next, err := enums.ParseAdminOrderStatus(status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	var order *models.Order
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}
		previous := current.Status
		if err := repo.UpdateFields(ctx, id, map[string]any{"status": next}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
		}
		current.Status = next
		order = current

		if previous == next {
			return nil
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   id,
			Data: payloads.OrderStatusChangedEvent{
				OrderID:        id,
				UserID:         current.UserID,
				PreviousStatus: previous,
				Status:         next,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithField(s.logg.WithOrderID(ctx, id.String()), "status", next)
		s.logg.Info(logCtx, "order.status_changed")
	}
	dto := FromModel(order)
	return &dto, nil
}

func (s *service) Statistics(ctx context.Context) (*Statistics, error) {
	stats, err := s.repo.Statistics(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "order statistics")
	}
	return stats, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return order, nil
}

func (s *service) observePlaced(ctx context.Context, order *models.Order) {
	if s.metrics != nil {
		s.metrics.ObserveOrderPlaced(order.PaymentMethod.String(), order.Total)
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(s.logg.WithOrderID(ctx, order.ID.String()), map[string]any{
			"user_id":        order.UserID.String(),
			"payment_method": order.PaymentMethod,
			"items":          len(order.Items),
			"total":          order.Total.StringFixed(2),
		})
		s.logg.Info(logCtx, "order.placed")
	}
}

func (s *service) observeFailure(err error) {
	if s.metrics == nil {
		return
	}
	code := string(pkgerrors.CodeInternal)
	if typed := pkgerrors.As(err); typed != nil {
		code = string(typed.Code())
	}
	s.metrics.ObserveCheckoutFailure(code)
}

func mapProductError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "product in cart no longer exists")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
}
