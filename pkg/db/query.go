package db

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"gorm.io/gorm"
)

// QB builds dynamic SQL with ? placeholders; GORM rebinds them for the
// active dialect when the statement is executed through Raw.
var QB = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// ScanSQL renders the builder and scans the result rows into dest.
func ScanSQL(ctx context.Context, conn *gorm.DB, query squirrel.Sqlizer, dest any) error {
	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return conn.WithContext(ctx).Raw(sql, args...).Scan(dest).Error
}
