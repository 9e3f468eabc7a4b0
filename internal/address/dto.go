package address

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
)

// Input is the create/update payload for an address book entry.
type Input struct {
	Name        string            `json:"name" validate:"required"`
	Phone       string            `json:"phone" validate:"required"`
	Street      string            `json:"street" validate:"required"`
	City        string            `json:"city" validate:"required"`
	State       string            `json:"state" validate:"required"`
	Pincode     string            `json:"pincode" validate:"required,len=6,numeric"`
	Landmark    *string           `json:"landmark,omitempty"`
	AddressType enums.AddressType `json:"addressType,omitempty"`
	IsDefault   bool              `json:"isDefault"`
}

type DTO struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Phone       string            `json:"phone"`
	Street      string            `json:"street"`
	City        string            `json:"city"`
	State       string            `json:"state"`
	Pincode     string            `json:"pincode"`
	Landmark    *string           `json:"landmark,omitempty"`
	AddressType enums.AddressType `json:"addressType"`
	IsDefault   bool              `json:"isDefault"`
	CreatedAt   time.Time         `json:"createdAt"`
}

func FromModel(a *models.Address) DTO {
	return DTO{
		ID:          a.ID,
		Name:        a.Name,
		Phone:       a.Phone,
		Street:      a.Street,
		City:        a.City,
		State:       a.State,
		Pincode:     a.Pincode,
		Landmark:    a.Landmark,
		AddressType: a.AddressType,
		IsDefault:   a.IsDefault,
		CreatedAt:   a.CreatedAt,
	}
}

func (in Input) apply(a *models.Address) {
	a.Name = strings.TrimSpace(in.Name)
	a.Phone = strings.TrimSpace(in.Phone)
	a.Street = strings.TrimSpace(in.Street)
	a.City = strings.TrimSpace(in.City)
	a.State = strings.TrimSpace(in.State)
	a.Pincode = strings.TrimSpace(in.Pincode)
	a.Landmark = in.Landmark
	a.AddressType = in.AddressType
	if a.AddressType == "" {
		a.AddressType = enums.AddressTypeHome
	}
	a.IsDefault = in.IsDefault
}
