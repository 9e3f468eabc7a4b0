package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print row counts for the seeded tables",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		e, closeFn, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		counts, err := tableCounts(ctx, e.db.DB())
		if err != nil {
			return err
		}
		for _, c := range counts {
			fmt.Fprintf(cmd.OutOrStdout(), "%-10s %d\n", c.name, c.rows)
		}
		return nil
	},
}

type tableCount struct {
	name string
	rows int64
}

func tableCounts(ctx context.Context, conn *gorm.DB) ([]tableCount, error) {
	queries := []struct {
		name  string
		query *gorm.DB
	}{
		{"admins", conn.WithContext(ctx).Model(&models.User{}).Where("role = ?", enums.UserRoleAdmin)},
		{"customers", conn.WithContext(ctx).Model(&models.User{}).Where("role = ?", enums.UserRoleCustomer)},
		{"products", conn.WithContext(ctx).Model(&models.Product{}).Where("is_active = ?", true)},
		{"orders", conn.WithContext(ctx).Model(&models.Order{})},
		{"bookings", conn.WithContext(ctx).Model(&models.ServiceBooking{})},
	}
	out := make([]tableCount, 0, len(queries))
	for _, q := range queries {
		var n int64
		if err := q.query.Count(&n).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", q.name, err)
		}
		out = append(out, tableCount{name: q.name, rows: n})
	}
	return out, nil
}
