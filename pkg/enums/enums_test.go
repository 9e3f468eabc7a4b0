package enums

import "testing"

func TestParseAdminOrderStatus(t *testing.T) {
	cases := map[string]OrderStatus{
		"pending":    OrderStatusPending,
		"SHIPPED":    OrderStatusShipped,
		" Delivered": OrderStatusDelivered,
		"cancelled":  OrderStatusCancelled,
	}
	for raw, want := range cases {
		got, err := ParseAdminOrderStatus(raw)
		if err != nil {
			t.Fatalf("ParseAdminOrderStatus(%q) error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseAdminOrderStatus(%q) = %s, want %s", raw, got, want)
		}
	}
	if _, err := ParseAdminOrderStatus("paid"); err == nil {
		t.Fatal("paid must not be settable by admins")
	}
	if _, err := ParseAdminOrderStatus("lost"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestCheckoutEnums(t *testing.T) {
	if d, err := ParseDeliveryOption("Express"); err != nil || d != DeliveryExpress {
		t.Fatalf("unexpected delivery parse %v %v", d, err)
	}
	if _, err := ParseDeliveryOption("overnight"); err == nil {
		t.Fatal("expected invalid delivery option")
	}
	for _, raw := range []string{"cod", "card", "upi", "wallet", "online"} {
		if _, err := ParsePaymentMethod(raw); err != nil {
			t.Fatalf("payment method %q rejected: %v", raw, err)
		}
	}
	if _, err := ParsePaymentMethod("bitcoin"); err == nil {
		t.Fatal("expected invalid payment method")
	}
}

func TestBookingStatusParsing(t *testing.T) {
	if s, err := ParseBookingStatus("confirmed"); err != nil || s != BookingStatusConfirmed {
		t.Fatalf("unexpected booking status %v %v", s, err)
	}
	if len(AllBookingStatuses()) != 5 {
		t.Fatal("expected five booking statuses")
	}
}

func TestBookingStatusTransitions(t *testing.T) {
	allowed := [][2]BookingStatus{
		{BookingStatusPending, BookingStatusConfirmed},
		{BookingStatusPending, BookingStatusCancelled},
		{BookingStatusConfirmed, BookingStatusInProgress},
		{BookingStatusInProgress, BookingStatusCompleted},
		{BookingStatusCompleted, BookingStatusCompleted},
	}
	for _, pair := range allowed {
		if !pair[0].CanTransitionTo(pair[1]) {
			t.Fatalf("expected %s -> %s to be allowed", pair[0], pair[1])
		}
	}
	denied := [][2]BookingStatus{
		{BookingStatusPending, BookingStatusCompleted},
		{BookingStatusCompleted, BookingStatusPending},
		{BookingStatusCancelled, BookingStatusConfirmed},
	}
	for _, pair := range denied {
		if pair[0].CanTransitionTo(pair[1]) {
			t.Fatalf("expected %s -> %s to be rejected", pair[0], pair[1])
		}
	}
}
