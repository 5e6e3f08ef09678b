package store

import (
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/sereniteo/crm/internal/model"
)

const magicLinkTTL = 15 * time.Minute

type MagicLinkStore struct {
	db *sql.DB
}

func NewMagicLinkStore(db *sql.DB) *MagicLinkStore {
	return &MagicLinkStore{db: db}
}

func scanMagicLink(scanner interface{ Scan(...any) error }) (*model.MagicLinkToken, error) {
	var ml model.MagicLinkToken
	var usedAt sql.NullTime

	err := scanner.Scan(&ml.ID, &ml.Email, &ml.TokenHash, &ml.ExpiresAt, &usedAt, &ml.CreatedAt)
	if err != nil {
		return nil, err
	}
	if usedAt.Valid {
		ml.UsedAt = &usedAt.Time
	}
	return &ml, nil
}

const magicLinkCols = `id, email, token_hash, expires_at, used_at, created_at`

// HashToken returns the hex SHA-256 digest stored in place of a raw token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Create issues a new magic link for the given email: a 32-byte random raw
// token with a 15-minute expiry. Only the hash is persisted; the raw token is
// returned exactly once for embedding in the login link.
func (s *MagicLinkStore) Create(email string) (*model.MagicLinkToken, string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}
	rawToken := hex.EncodeToString(tokenBytes)
	expiresAt := time.Now().UTC().Add(magicLinkTTL)

	result, err := s.db.Exec(
		`INSERT INTO magic_link_tokens (email, token_hash, expires_at) VALUES (?, ?, ?)`,
		email, HashToken(rawToken), expiresAt,
	)
	if err != nil {
		return nil, "", fmt.Errorf("insert magic link token: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, "", fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+magicLinkCols+` FROM magic_link_tokens WHERE id = ?`, id)
	ml, err := scanMagicLink(row)
	if err != nil {
		return nil, "", fmt.Errorf("read magic link token: %w", err)
	}
	return ml, rawToken, nil
}

// Consume marks the token matching the raw value as used and returns it.
// The consumption is a single conditional UPDATE, so two concurrent verify
// attempts with the same token cannot both succeed. Returns nil if the token
// is unknown, already consumed, or expired.
func (s *MagicLinkStore) Consume(rawToken string) (*model.MagicLinkToken, error) {
	hash := HashToken(rawToken)

	result, err := s.db.Exec(
		`UPDATE magic_link_tokens SET used_at = datetime('now')
		 WHERE token_hash = ? AND used_at IS NULL AND expires_at > datetime('now')`,
		hash,
	)
	if err != nil {
		return nil, fmt.Errorf("consume magic link token: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, nil
	}

	row := s.db.QueryRow(`SELECT `+magicLinkCols+` FROM magic_link_tokens WHERE token_hash = ?`, hash)
	ml, err := scanMagicLink(row)
	if err != nil {
		return nil, fmt.Errorf("read consumed token: %w", err)
	}
	return ml, nil
}

// CountByEmail returns the number of token rows ever issued for an email.
func (s *MagicLinkStore) CountByEmail(email string) (int64, error) {
	var n int64
	err := s.db.QueryRow(`SELECT COUNT(*) FROM magic_link_tokens WHERE email = ?`, email).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count magic link tokens: %w", err)
	}
	return n, nil
}

// DeleteOlderThan sweeps token rows created more than the given number of
// days ago, consumed or not. Younger consumed rows stay as an audit trail.
func (s *MagicLinkStore) DeleteOlderThan(days int) (int64, error) {
	result, err := s.db.Exec(
		`DELETE FROM magic_link_tokens WHERE created_at <= datetime('now', ?)`,
		fmt.Sprintf("-%d days", days),
	)
	if err != nil {
		return 0, fmt.Errorf("delete old magic link tokens: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}
