package testutil

import (
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/yamdb/backend/internal/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TestDatabase is a migrated in-memory SQLite database.
type TestDatabase struct {
	DB  *gorm.DB
	DSN string
}

// SetupTestDatabase creates a private in-memory SQLite database with the full
// schema. Each call gets its own database, so suites never share rows.
func SetupTestDatabase(t *testing.T) *TestDatabase {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())

	db, err := database.Open(sqlite.Open(dsn))
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return &TestDatabase{DB: db, DSN: dsn}
}

// Teardown closes the connection, which drops the in-memory database.
func (td *TestDatabase) Teardown(t *testing.T) {
	if err := database.Close(td.DB); err != nil {
		t.Logf("Warning: Failed to close database: %v", err)
	}
}

// NewTestRedis starts a miniredis server and a client connected to it. Both
// are shut down when the test ends.
func NewTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	server := miniredis.RunT(t)

	opts, err := redis.ParseURL("redis://" + server.Addr())
	if err != nil {
		t.Fatalf("Failed to parse miniredis address: %v", err)
	}
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	return server, client
}

// tablesByDependency lists tables children first; SQLite has no
// TRUNCATE ... CASCADE.
var tablesByDependency = []string{"comments", "reviews", "title_genres", "titles", "genres", "categories", "users"}

// CleanDatabase empties every table between tests.
func CleanDatabase(t *testing.T, db *gorm.DB) {
	for _, table := range tablesByDependency {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			t.Logf("Warning: Failed to clean table %s: %v", table, err)
		}
	}
}
