package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/oriontask/internal/client/models"
	"github.com/dmitrijs2005/oriontask/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/oriontask/internal/common"
	"github.com/dmitrijs2005/oriontask/internal/cryptox"
	"github.com/dmitrijs2005/oriontask/internal/dbx"
	"github.com/dmitrijs2005/oriontask/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

const vaultSaltSize = 16

// CredentialStore keeps the auth token sealed in the metadata table next to
// a plain JSON summary of the logged-in user. It satisfies
// client.Credentials.
type CredentialStore struct {
	db     *sql.DB
	secret []byte
	log    logging.Logger
	now    func() time.Time

	mu  sync.Mutex
	key []byte
}

// NewCredentialStore binds the vault to db. secret is the per-installation
// key material the sealing key is derived from.
func NewCredentialStore(db *sql.DB, secret []byte, log logging.Logger) *CredentialStore {
	return &CredentialStore{
		db:     db,
		secret: append([]byte(nil), secret...),
		log:    log,
		now:    time.Now,
	}
}

func (c *CredentialStore) repo() metadata.Repository {
	return metadata.NewSQLiteRepository(c.db)
}

// sealingKey derives the AES key once per process. The salt is created on
// first use and stored under vault_salt.
func (c *CredentialStore) sealingKey(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.key != nil {
		return c.key, nil
	}

	repo := c.repo()
	salt, err := repo.Get(ctx, metadata.KeyVaultSalt)
	if err != nil {
		return nil, err
	}
	if salt == nil {
		salt = common.GenerateRandByteArray(vaultSaltSize)
		if err := repo.Set(ctx, metadata.KeyVaultSalt, salt); err != nil {
			return nil, err
		}
	}

	c.key = cryptox.DeriveKey(c.secret, salt)
	return c.key, nil
}

// Save stores the token and the user summary from a successful login or
// signup in one transaction.
func (c *CredentialStore) Save(ctx context.Context, auth models.AuthResponse) error {
	key, err := c.sealingKey(ctx)
	if err != nil {
		return fmt.Errorf("vault key: %w", err)
	}

	sealed, err := cryptox.Seal([]byte(auth.Token), key)
	if err != nil {
		return fmt.Errorf("seal token: %w", err)
	}

	summary, err := json.Marshal(auth.Summary())
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	return dbx.WithTx(ctx, c.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, metadata.KeyAuthToken, sealed); err != nil {
			return err
		}
		return repo.Set(ctx, metadata.KeyAuthUser, summary)
	})
}

// Token returns the stored bearer token, or "" when there is none. A token
// that no longer opens under the current key is treated as absent.
func (c *CredentialStore) Token(ctx context.Context) (string, error) {
	sealed, err := c.repo().Get(ctx, metadata.KeyAuthToken)
	if err != nil {
		return "", err
	}
	if sealed == nil {
		return "", nil
	}

	key, err := c.sealingKey(ctx)
	if err != nil {
		return "", fmt.Errorf("vault key: %w", err)
	}

	plain, err := cryptox.Open(sealed, key)
	if err != nil {
		c.log.Warn(ctx, "stored token cannot be opened, ignoring it", "error", err)
		return "", nil
	}
	return string(plain), nil
}

// User returns the cached summary of the logged-in user, or nil.
func (c *CredentialStore) User(ctx context.Context) (*models.UserSummary, error) {
	raw, err := c.repo().Get(ctx, metadata.KeyAuthUser)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var u models.UserSummary
	if err := json.Unmarshal(raw, &u); err != nil {
		c.log.Warn(ctx, "cached user is unreadable, ignoring it", "error", err)
		return nil, nil
	}
	return &u, nil
}

// Clear removes the token, the cached user and the durable user id.
func (c *CredentialStore) Clear(ctx context.Context) error {
	return c.repo().Delete(ctx, metadata.KeyAuthToken, metadata.KeyAuthUser, metadata.KeyUserID)
}

// IsAuthenticated reports whether a token is stored and, when it is a JWT
// with an exp claim, whether it is still valid. The signature is not
// checked here.
func (c *CredentialStore) IsAuthenticated(ctx context.Context) (bool, error) {
	token, err := c.Token(ctx)
	if err != nil {
		return false, err
	}
	if token == "" {
		return false, nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		// opaque token
		return true, nil
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true, nil
	}
	return c.now().Before(exp.Time), nil
}
