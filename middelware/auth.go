package middelware

import (
	"fieldfuze-dispatch/models"
	"fieldfuze-dispatch/utils/logger"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Context keys populated by AuthMiddleware.
const (
	ClaimsKey = "jwt_claims"
	UserIDKey = "user_id"
	OrgIDKey  = "org_id"
)

// JWTManager handles JWT token operations
type JWTManager struct {
	Config *models.Config
	Logger logger.Logger
	now    func() time.Time
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(cfg *models.Config, log logger.Logger) *JWTManager {
	return &JWTManager{
		Config: cfg,
		Logger: log,
		now:    time.Now,
	}
}

// GenerateToken signs a dispatcher token for the given identity.
func (j *JWTManager) GenerateToken(claims models.JWTClaims) (string, error) {
	if claims.UserID == "" {
		return "", fmt.Errorf("user id is required")
	}
	if claims.OrgID == "" {
		return "", fmt.Errorf("organization id is required")
	}

	now := j.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Subject:   claims.UserID,
		Issuer:    j.Config.AppName,
		Audience:  jwt.ClaimStrings{j.Config.AppName},
		ExpiresAt: jwt.NewNumericDate(now.Add(j.Config.JWTExpiresIn)),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(j.Config.JWTSecret))
	if err != nil {
		j.Logger.Errorf("Failed to sign JWT token: %v", err)
		return "", err
	}

	j.Logger.Debugf("JWT token generated for user: %s", claims.UserID)
	return tokenString, nil
}

// ValidateToken validates a JWT token and returns the claims
func (j *JWTManager) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Reject anything but HS256 to prevent algorithm confusion
		if method, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		} else if method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("invalid signing algorithm: %v", method.Alg())
		}

		if alg, ok := token.Header["alg"].(string); !ok || alg != "HS256" {
			return nil, fmt.Errorf("invalid algorithm in header")
		}

		return []byte(j.Config.JWTSecret), nil
	}, jwt.WithTimeFunc(j.now))

	if err != nil {
		j.Logger.Errorf("Failed to parse JWT token: %v", err)
		return nil, err
	}

	if !token.Valid {
		j.Logger.Error("Invalid JWT token")
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok {
		j.Logger.Error("Failed to extract JWT claims")
		return nil, fmt.Errorf("invalid claims")
	}

	if claims.UserID == "" {
		return nil, fmt.Errorf("token has no user id")
	}

	return claims, nil
}

// AuthMiddleware validates the bearer token and stores the session claims
func (j *JWTManager) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			j.Logger.Error("Missing Authorization header")
			abortUnauthorized(c, "Missing Authorization header", "Authorization header is required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			j.Logger.Error("Invalid Authorization header format")
			abortUnauthorized(c, "Invalid Authorization header format", "Expected: Bearer <token>")
			return
		}

		claims, err := j.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token", err.Error())
			return
		}

		if claims.OrgID == "" {
			j.Logger.Errorf("Token for user %s carries no organization", claims.UserID)
			c.JSON(http.StatusForbidden, models.APIResponse{
				Status:  "error",
				Code:    http.StatusForbidden,
				Message: "Token is not scoped to an organization",
				Error: &models.APIError{
					Type:    "AuthorizationError",
					Details: "organization_id claim is required",
				},
			})
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(OrgIDKey, claims.OrgID)
		c.Set(ClaimsKey, claims)

		j.Logger.Debugf("User authenticated: %s", claims.UserID)
		c.Next()
	}
}

// GetClaims returns the session claims stored by AuthMiddleware, or nil.
func GetClaims(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(ClaimsKey)
	if !exists {
		return nil
	}
	claims, _ := value.(*models.JWTClaims)
	return claims
}

func abortUnauthorized(c *gin.Context, message, details string) {
	c.JSON(http.StatusUnauthorized, models.APIResponse{
		Status:  "error",
		Code:    http.StatusUnauthorized,
		Message: message,
		Error: &models.APIError{
			Type:    "AuthenticationError",
			Details: details,
		},
	})
	c.Abort()
}
