package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Users(ctx context.Context) UserStore     { return &pgUserStore{db: s.db} }
func (s *PGStore) APIKeys(ctx context.Context) APIKeyStore { return &pgKeyStore{db: s.db} }

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// User store ---------------------------------------------------------------
type pgUserStore struct{ db *sql.DB }

func (s *pgUserStore) Create(ctx context.Context, u *User) error {
	_, err := s.db.ExecContext(ctx,
		`insert into users(id, email, password_hash, created_at) values($1,$2,$3,$4)`,
		u.ID, u.Email, u.PasswordHash, u.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	return err
}

func (s *pgUserStore) Find(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, email, password_hash, created_at from users where id=$1`, id)
	return scanUser(row)
}

func (s *pgUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, email, password_hash, created_at from users where email=$1`, email)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// API key store ------------------------------------------------------------
type pgKeyStore struct{ db *sql.DB }

const apiKeyColumns = `id, key_hash, key_prefix, owner_id, name, created_at, expires_at, revoked, last_used_at`

func (s *pgKeyStore) Create(ctx context.Context, k *APIKey) error {
	_, err := s.db.ExecContext(ctx,
		`insert into api_keys(`+apiKeyColumns+`) values($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		k.ID, k.KeyHash, k.KeyPrefix, k.OwnerID, k.Name, k.CreatedAt, k.ExpiresAt, k.Revoked, k.LastUsedAt,
	)
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	return err
}

func (s *pgKeyStore) FindByHash(ctx context.Context, hash string) (*APIKey, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+apiKeyColumns+` from api_keys where key_hash=$1`, hash)
	var k APIKey
	if err := scanAPIKey(row.Scan, &k); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &k, nil
}

func (s *pgKeyStore) ListByOwner(ctx context.Context, ownerID string) ([]*APIKey, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+apiKeyColumns+` from api_keys where owner_id=$1 order by created_at desc`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []*APIKey
	for rows.Next() {
		var k APIKey
		if err := scanAPIKey(rows.Scan, &k); err != nil {
			return nil, err
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *pgKeyStore) Update(ctx context.Context, id string, patch APIKeyPatch) (*APIKey, error) {
	// revoked is monotonic: once true it stays true regardless of patch.
	row := s.db.QueryRowContext(ctx,
		`update api_keys
		 set revoked = revoked or coalesce($2, revoked),
		     last_used_at = coalesce($3, last_used_at)
		 where id=$1
		 returning `+apiKeyColumns,
		id, patch.Revoked, patch.LastUsedAt,
	)
	var k APIKey
	if err := scanAPIKey(row.Scan, &k); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &k, nil
}

func scanAPIKey(scan func(...any) error, k *APIKey) error {
	var expiresAt, lastUsedAt sql.NullTime
	if err := scan(&k.ID, &k.KeyHash, &k.KeyPrefix, &k.OwnerID, &k.Name, &k.CreatedAt, &expiresAt, &k.Revoked, &lastUsedAt); err != nil {
		return err
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		k.ExpiresAt = &t
	}
	if lastUsedAt.Valid {
		t := lastUsedAt.Time
		k.LastUsedAt = &t
	}
	return nil
}
