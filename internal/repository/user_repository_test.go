package repository

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/go-sql-driver/mysql"

	"github.com/Advaitgaur004/Urban-ride-server/internal/model"
)

// setupTestDB connects to the MySQL instance named by
// URBANRIDE_TEST_DSN, applies the schema and truncates all tables.
// Tests are skipped when the variable is unset.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("URBANRIDE_TEST_DSN")
	if dsn == "" {
		t.Skip("URBANRIDE_TEST_DSN not set; skipping database tests")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile(filepath.Join("..", "..", "migrations", "001_init.sql"))
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	for _, stmt := range strings.Split(string(schema), ";") {
		var lines []string
		for _, line := range strings.Split(stmt, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "--") {
				continue
			}
			lines = append(lines, line)
		}
		stmt = strings.TrimSpace(strings.Join(lines, "\n"))
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	if _, err := db.Exec("SET FOREIGN_KEY_CHECKS=0"); err != nil {
		t.Fatalf("disable fk checks: %v", err)
	}
	for _, table := range []string{"slot_participants", "ride_slots", "vehicle_queue", "vehicles", "refresh_tokens", "users"} {
		if _, err := db.Exec("TRUNCATE TABLE " + table); err != nil {
			t.Fatalf("truncate %s: %v", table, err)
		}
	}
	if _, err := db.Exec("SET FOREIGN_KEY_CHECKS=1"); err != nil {
		t.Fatalf("enable fk checks: %v", err)
	}
	return db
}

func TestUserUpdateProfile(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()

	id, err := repo.Create(ctx, CreateInput{
		Username: "profile-user",
		Email:    "profile@example.com",
		Phone:    "9000000001",
		Password: "pw",
		Role:     model.RoleCustomer,
	}, 4)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	phone := "9111111111"
	college := "IITJ"
	image := "https://cdn.example.com/u/1.png"
	if err := repo.UpdateProfile(ctx, id, &phone, &college, nil, &image); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	u, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if u.Phone != phone {
		t.Errorf("phone = %q, want %q", u.Phone, phone)
	}
	if u.College == nil || *u.College != college {
		t.Errorf("college = %v, want %q", u.College, college)
	}
	if u.Address != nil {
		t.Errorf("address = %v, want untouched nil", u.Address)
	}
	if u.ImageURL == nil || *u.ImageURL != image {
		t.Errorf("image_url = %v, want %q", u.ImageURL, image)
	}

	// No fields is a no-op, not an error.
	if err := repo.UpdateProfile(ctx, id, nil, nil, nil, nil); err != nil {
		t.Errorf("empty update error = %v, want nil", err)
	}
	// Unknown user surfaces sql.ErrNoRows for the handler's 404.
	if err := repo.UpdateProfile(ctx, 999999, &phone, nil, nil, nil); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("missing user error = %v, want sql.ErrNoRows", err)
	}
}

func TestUserCreateDuplicates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()

	in := CreateInput{
		Username: "dup-user",
		Email:    "dup@example.com",
		Phone:    "9000000002",
		Password: "pw",
		Role:     model.RoleCustomer,
	}
	if _, err := repo.Create(ctx, in, 4); err != nil {
		t.Fatalf("Create: %v", err)
	}

	same := in
	same.Username = "dup-user-2"
	if _, err := repo.Create(ctx, same, 4); !errors.Is(err, ErrEmailExists) {
		t.Errorf("duplicate email error = %v, want ErrEmailExists", err)
	}
	same = in
	same.Email = "dup2@example.com"
	if _, err := repo.Create(ctx, same, 4); !errors.Is(err, ErrUsernameExists) {
		t.Errorf("duplicate username error = %v, want ErrUsernameExists", err)
	}
}
