package authn

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cuongbtq/hirenest-be/internal/api/domain"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const principalKey = "principal"

// Claims carried by bearer tokens
type Claims struct {
	UserID string `json:"id,omitempty"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 bearer tokens issued by the auth service
type Verifier struct {
	secret []byte
	issuer string
	logger *slog.Logger
}

func NewVerifier(secret, issuer string, logger *slog.Logger) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		issuer: issuer,
		logger: logger,
	}
}

// Verify parses a token and returns the principal it names
func (v *Verifier) Verify(tokenString string) (domain.Principal, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return domain.Principal{}, domain.Unauthorized("invalid token")
	}
	if !token.Valid {
		return domain.Principal{}, domain.Unauthorized("invalid token")
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}

	principal := domain.Principal{ID: userID, Role: domain.Role(claims.Role)}
	if principal.ID == "" || !principal.Role.Valid() {
		return domain.Principal{}, domain.Unauthorized("token carries no valid principal")
	}

	return principal, nil
}

// Sign issues a token for p. The api-service never calls it; it exists for
// local tooling and tests.
func (v *Verifier) Sign(p domain.Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: p.ID,
		Role:   string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// TokenFromRequest returns the bearer token of r, falling back to the token
// query parameter browsers use for websocket upgrades
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

// PrincipalFromRequest verifies the token carried by r, if any
func (v *Verifier) PrincipalFromRequest(r *http.Request) (domain.Principal, error) {
	token := TokenFromRequest(r)
	if token == "" {
		return domain.Principal{}, domain.Unauthorized("missing bearer token")
	}
	return v.Verify(token)
}

// Middleware rejects requests without a valid bearer token
func (v *Verifier) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := v.PrincipalFromRequest(c.Request)
		if err != nil {
			v.logger.Debug("Authentication failed",
				slog.String("path", c.Request.URL.Path),
				slog.Any("error", err),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// OptionalMiddleware attaches the principal when a valid token is present
// and lets anonymous requests through
func (v *Verifier) OptionalMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := v.PrincipalFromRequest(c.Request)
		if err == nil {
			c.Set(principalKey, principal)
		} else if TokenFromRequest(c.Request) != "" {
			v.logger.Debug("Ignoring invalid optional token",
				slog.String("path", c.Request.URL.Path),
			)
		}
		c.Next()
	}
}

// RequireRole rejects authenticated principals whose role is not listed
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		for _, role := range roles {
			if principal.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}

// PrincipalFrom returns the principal set by Middleware
func PrincipalFrom(c *gin.Context) (domain.Principal, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return domain.Principal{}, false
	}
	principal, ok := value.(domain.Principal)
	return principal, ok
}

// WithPrincipal stores p on the context the way Middleware does
func WithPrincipal(c *gin.Context, p domain.Principal) {
	c.Set(principalKey, p)
}
