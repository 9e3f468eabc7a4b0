package enums

import (
	"fmt"
	"strings"
)

// BookingStatus follows a service appointment through its lifecycle.
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "PENDING"
	BookingStatusConfirmed  BookingStatus = "CONFIRMED"
	BookingStatusInProgress BookingStatus = "IN_PROGRESS"
	BookingStatusCompleted  BookingStatus = "COMPLETED"
	BookingStatusCancelled  BookingStatus = "CANCELLED"
)

var validBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusInProgress,
	BookingStatusCompleted,
	BookingStatusCancelled,
}

// AllBookingStatuses lists statuses in lifecycle order.
func AllBookingStatuses() []BookingStatus {
	out := make([]BookingStatus, len(validBookingStatuses))
	copy(out, validBookingStatuses)
	return out
}

func (s BookingStatus) String() string {
	return string(s)
}

func (s BookingStatus) IsValid() bool {
	for _, candidate := range validBookingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseBookingStatus is case-insensitive.
func ParseBookingStatus(value string) (BookingStatus, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validBookingStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking status %q", value)
}

// ServiceType identifies the booked service line.
type ServiceType string

const (
	ServiceTypeCatGrooming ServiceType = "cat-grooming"
	ServiceTypeDogGrooming ServiceType = "dog-grooming"
	ServiceTypePetWalking  ServiceType = "pet-walking"
)

var validServiceTypes = []ServiceType{
	ServiceTypeCatGrooming,
	ServiceTypeDogGrooming,
	ServiceTypePetWalking,
}

func (s ServiceType) String() string {
	return string(s)
}

func (s ServiceType) IsValid() bool {
	for _, candidate := range validServiceTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseServiceType(value string) (ServiceType, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validServiceTypes {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid service type %q", value)
}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:    {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed:  {BookingStatusInProgress, BookingStatusCancelled},
	BookingStatusInProgress: {BookingStatusCompleted, BookingStatusCancelled},
}

// CanTransitionTo reports whether an appointment may move from s to next.
// Completed and cancelled bookings are final; staying in place is always allowed.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if s == next {
		return true
	}
	for _, candidate := range bookingTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}
