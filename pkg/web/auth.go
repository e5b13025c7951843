package web

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"
)

// UserIDHeader identifies the caller when no JWT secret is configured.
const UserIDHeader = "X-User-ID"

type identityKey struct{}

var (
	errMissingIdentity = errors.New("authentication required")
	errInvalidToken    = errors.New("invalid bearer token")
)

// Identity is the authenticated caller of a request. A non-empty TenantID binds the caller's drafts to
// that tenant.
type Identity struct {
	UserID   string
	TenantID string
}

// Claims are the JWT claims the API understands. The subject is the user ID.
type Claims struct {
	TenantID string `json:"tenant_id,omitempty"`
	jwt.RegisteredClaims
}

// Authenticate resolves the caller of every request. With a secret it requires an HS256 bearer token;
// without one it trusts the X-User-ID header.
func Authenticate(secret string) fiber.Handler {
	key := []byte(secret)

	return func(c fiber.Ctx) error {
		var (
			identity *Identity
			err      error
		)

		if len(key) == 0 {
			identity, err = headerIdentity(c)
		} else {
			identity, err = tokenIdentity(c, key)
		}

		if err != nil {
			return unauthorized(c, err.Error())
		}

		c.Locals(identityKey{}, identity)

		return c.Next()
	}
}

// CurrentIdentity returns the identity stored by Authenticate.
func CurrentIdentity(c fiber.Ctx) *Identity {
	identity, ok := c.Locals(identityKey{}).(*Identity)
	if !ok {
		return &Identity{}
	}

	return identity
}

func currentUserID(c fiber.Ctx) string {
	return CurrentIdentity(c).UserID
}

func headerIdentity(c fiber.Ctx) (*Identity, error) {
	userID := strings.TrimSpace(c.Get(UserIDHeader))
	if userID == "" {
		return nil, errMissingIdentity
	}

	return &Identity{UserID: userID}, nil
}

func tokenIdentity(c fiber.Ctx, key []byte) (*Identity, error) {
	header := c.Get(fiber.HeaderAuthorization)

	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || raw == "" {
		return nil, errMissingIdentity
	}

	claims := &Claims{}

	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidToken, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", errInvalidToken)
	}

	return &Identity{UserID: claims.Subject, TenantID: claims.TenantID}, nil
}

// SignToken issues an HS256 token for identity that expires after ttl.
func SignToken(secret string, identity Identity, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		TenantID: identity.TenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}
