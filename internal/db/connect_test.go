package db

import (
	"context"
	"testing"
)

func TestOpenSQLiteEnsuresSchema(t *testing.T) {
	ctx := context.Background()
	dbh, err := Open(ctx, DriverSQLite, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer dbh.Close()
	dbh.SetMaxOpenConns(1)

	// The event log must accept appends and hand back its cursor column.
	if _, err := dbh.ExecContext(ctx,
		`INSERT INTO event_log (org_id, typ, key, data, created_at)
		 VALUES ('acme', 'AttemptStarted', 'att-1', '{}', 1700000000)`); err != nil {
		t.Fatalf("event_log insert: %v", err)
	}
	var off int64
	if err := dbh.QueryRowContext(ctx,
		`SELECT event_offset FROM event_log WHERE key='att-1'`).Scan(&off); err != nil {
		t.Fatalf("event_log select: %v", err)
	}
	if off != 1 {
		t.Fatalf("event_offset = %d, want 1", off)
	}

	for _, table := range []string{"quizzes", "quiz_attempts", "users"} {
		var n int
		if err := dbh.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), Driver("oracle"), ""); err == nil {
		t.Fatal("expected an error for an unsupported driver")
	}
}
