package postgres

import (
	"strings"
	"testing"
)

func TestDSNFromEnv(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_USER", "fallwatch")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "fallwatch")
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_SSLMODE", "")

	dsn := DSNFromEnv()
	for _, part := range []string{"host=db.internal", "port=5432", "user=fallwatch", "dbname=fallwatch", "sslmode=disable"} {
		if !strings.Contains(dsn, part) {
			t.Errorf("expected %q in %q", part, dsn)
		}
	}

	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_SSLMODE", "require")
	dsn = DSNFromEnv()
	if !strings.Contains(dsn, "port=6543") || !strings.Contains(dsn, "sslmode=require") {
		t.Errorf("expected overrides in %q", dsn)
	}
}
