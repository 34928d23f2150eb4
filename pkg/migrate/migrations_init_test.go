package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/miguelgarza/comanda-backend/pkg/migrate"
)

func TestInitMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_init.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no init migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE reservations",
		"CONSTRAINT reservations_window_check CHECK (end_time > start_time)",
		"CHECK (party_size >= 1)",
		"idx_reservations_table_window",
		"CONSTRAINT idx_products_branch_sku UNIQUE (branch_id, sku)",
		"DROP TABLE reservations",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("shipped migrations must validate: %v", err)
	}
}
