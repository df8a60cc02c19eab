package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestPGUserStoreFindByEmailNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("select id, email, password_hash, created_at from users where email=").
		WithArgs("nobody@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at"}))

	store := NewPGStore(db)
	if _, err := store.Users(context.Background()).FindByEmail(context.Background(), "nobody@x.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGUserStoreCreateDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("insert into users").
		WithArgs("u1", "a@x.com", "hash", sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	store := NewPGStore(db)
	u := &User{ID: "u1", Email: "a@x.com", PasswordHash: "hash", CreatedAt: time.Now()}
	if err := store.Users(context.Background()).Create(context.Background(), u); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGKeyStoreFindByHash(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	created := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "key_hash", "key_prefix", "owner_id", "name", "created_at", "expires_at", "revoked", "last_used_at"}).
		AddRow("k1", "hash-1", "sk_abcdefg...", "u1", "ci-key", created, nil, false, nil)
	mock.ExpectQuery("select .* from api_keys where key_hash=").
		WithArgs("hash-1").
		WillReturnRows(rows)

	store := NewPGStore(db)
	key, err := store.APIKeys(context.Background()).FindByHash(context.Background(), "hash-1")
	if err != nil {
		t.Fatalf("FindByHash: %v", err)
	}
	if key.ID != "k1" || key.OwnerID != "u1" || key.Revoked {
		t.Fatalf("unexpected key: %+v", key)
	}
	if key.ExpiresAt != nil || key.LastUsedAt != nil {
		t.Fatalf("expected nil optional timestamps: %+v", key)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGKeyStoreUpdateUnknown(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	revoked := true
	mock.ExpectQuery("update api_keys").
		WithArgs("missing", true, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	store := NewPGStore(db)
	if _, err := store.APIKeys(context.Background()).Update(context.Background(), "missing", APIKeyPatch{Revoked: &revoked}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
