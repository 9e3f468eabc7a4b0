package models

// All lists every persisted model, used by sqlite-backed tests and the
// local sqlite mode to build the schema with AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Address{},
		&Product{},
		&ProductAttribute{},
		&CartItem{},
		&CheckoutSelection{},
		&Order{},
		&OrderItem{},
		&Review{},
		&WishlistItem{},
		&Coupon{},
		&ServiceBooking{},
		&OutboxEvent{},
		&OutboxDLQ{},
	}
}
