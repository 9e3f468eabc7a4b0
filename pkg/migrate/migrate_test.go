package migrate

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundledSchemaIsValid(t *testing.T) {
	require.NoError(t, Validate(Bundled()))
	require.NoError(t, ValidateDir("migrations"))
}

func TestBundledSchemaCreatesCoreTables(t *testing.T) {
	files, err := fs.Glob(Bundled(), "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	var all strings.Builder
	for _, f := range files {
		b, err := fs.ReadFile(Bundled(), f)
		require.NoError(t, err)
		all.Write(b)
	}
	content := all.String()

	for _, table := range []string{
		"users", "addresses", "products", "product_attributes", "cart_items",
		"checkout_selections", "orders", "order_items", "reviews", "wishlist_items",
		"coupons", "service_bookings", "outbox_events", "outbox_dlq",
	} {
		assert.Contains(t, content, "CREATE TABLE IF NOT EXISTS "+table+" (", "missing table %s", table)
	}
	assert.Contains(t, content, "CHECK (total = subtotal + shipping_fee)")
	assert.Contains(t, content, "checkout_selections_user_key")
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC)

	first, err := createAt(dir, "Add Grooming Notes!", now)
	require.NoError(t, err)
	assert.Equal(t, "20250304103000_add_grooming_notes.sql", filepath.Base(first))

	// Same second: the version is bumped past the existing file.
	second, err := createAt(dir, "index bookings by pet", now)
	require.NoError(t, err)
	assert.Equal(t, "20250304103001_index_bookings_by_pet.sql", filepath.Base(second))

	body, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Contains(t, string(body), "-- undo index_bookings_by_pet")
	require.NoError(t, ValidateDir(dir))

	_, err = createAt(dir, "!!!", now)
	assert.Error(t, err)
	_, err = createAt("", "x", now)
	assert.Error(t, err)
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Add Booking Notes!":     "add_booking_notes",
		"  pets__and--owners  ":  "pets_and_owners",
		"v2 coupons":             "v2_coupons",
		"कूपन":                   "",
		"orders: add tracking #": "orders_add_tracking",
	}
	for in, want := range cases {
		assert.Equal(t, want, slugify(in), in)
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	good := "-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose StatementEnd\n-- +goose Down\nSELECT 1;\n"
	fsys := fstest.MapFS{
		"001_init.sql":                         {Data: []byte(good)},
		"20250101090000_create_pets.sql":       {Data: []byte(good)},
		"20250101090000_create_pets_again.sql": {Data: []byte(good)},
		"20250101090100_no_down.sql":           {Data: []byte("-- +goose Up\nSELECT 1;\n")},
		"20250101090200_reversed.sql":          {Data: []byte("-- +goose Down\nSELECT 1;\n-- +goose Up\nSELECT 1;\n")},
		"20250101090300_open_statement.sql":    {Data: []byte("-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\n")},
		"README.md":                            {Data: []byte("not a migration")},
		"20250101090400_ok.sql":                {Data: []byte(good)},
	}

	err := Validate(fsys)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "001_init.sql: name must be")
	assert.Contains(t, msg, "already used by")
	assert.Contains(t, msg, "20250101090100_no_down.sql: missing -- +goose Down")
	assert.Contains(t, msg, "20250101090200_reversed.sql: Down section comes before Up")
	assert.Contains(t, msg, "20250101090300_open_statement.sql: unterminated StatementBegin")
	assert.NotContains(t, msg, "README.md")
	assert.NotContains(t, msg, "20250101090400_ok.sql")
}

func TestRunnerRequiresDB(t *testing.T) {
	_, err := NewRunner(nil, "", nil)
	assert.Error(t, err)
}
