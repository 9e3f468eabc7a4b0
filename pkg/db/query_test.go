package db

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQBUsesQuestionPlaceholders(t *testing.T) {
	sql, args, err := QB.Select("id").From("products").
		Where(squirrel.Eq{"category": "Dog Food"}).
		Where(squirrel.Like{"LOWER(name)": "%kibble%"}).
		ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM products WHERE category = ? AND LOWER(name) LIKE ?", sql)
	assert.Equal(t, []any{"Dog Food", "%kibble%"}, args)
}
