package middleware

import (
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/internal/policy"
	"bitwise74/conference-api/pkg/response"
	"bitwise74/conference-api/pkg/security"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jellydator/ttlcache/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const principalKey = "principal"

type AuthOpts struct {
	Secret []byte
	DB     *gorm.DB
	// Principals caches the role and verification state per user ID. Handlers
	// changing either must evict the entry.
	Principals *ttlcache.Cache
}

type cachedPrincipal struct {
	policy.Principal
	Verified bool
}

func tokenFrom(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if t, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(t)
		}
	}

	t, _ := c.Cookie("auth_token")
	return t
}

// NewAuthMiddleware authenticates the caller with a bearer token or the
// auth_token cookie and stores the principal in the context. The role is
// read from the database, not from the token, so role changes apply at once.
func NewAuthMiddleware(o AuthOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetString("requestID")

		tokenStr := tokenFrom(c)
		if tokenStr == "" {
			response.Abort(c, http.StatusUnauthorized, "Missing authorization token")
			return
		}

		claims, err := security.ParseToken(o.Secret, tokenStr)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "Authorization token invalid")

			zap.L().Debug("Failed to parse token", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		p, err := loadPrincipal(o, claims.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.Abort(c, http.StatusUnauthorized, "User not found")
				return
			}

			response.Abort(c, http.StatusInternalServerError, "Internal server error")

			zap.L().Error("Failed to load user", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		if !p.Verified {
			response.Abort(c, http.StatusUnauthorized, "Please verify your account before using the service")
			return
		}

		c.Set(principalKey, p.Principal)
		c.Set("userID", p.UserID)
		c.Set("role", p.Role)
		c.Next()
	}
}

func loadPrincipal(o AuthOpts, userID string) (*cachedPrincipal, error) {
	if o.Principals != nil {
		if v, err := o.Principals.Get(userID); err == nil {
			if p, ok := v.(*cachedPrincipal); ok {
				return p, nil
			}
		}
	}

	var user model.User

	err := o.DB.
		Select("id", "role", "verified").
		Where("id = ?", userID).
		First(&user).
		Error
	if err != nil {
		return nil, err
	}

	p := &cachedPrincipal{
		Principal: policy.Principal{UserID: user.ID, Role: user.Role},
		Verified:  user.Verified,
	}

	if o.Principals != nil {
		if err := o.Principals.Set(userID, p); err != nil {
			zap.L().Warn("Failed to cache principal", zap.Error(err))
		}
	}

	return p, nil
}

// GetPrincipal returns the caller set by the auth middleware
func GetPrincipal(c *gin.Context) policy.Principal {
	p, _ := c.Get(principalKey)
	principal, _ := p.(policy.Principal)

	return principal
}

// EvictPrincipal drops the cached state of a user after their role or
// account changed
func EvictPrincipal(cache *ttlcache.Cache, userID string) {
	if cache == nil {
		return
	}

	if err := cache.Remove(userID); err != nil && !errors.Is(err, ttlcache.ErrNotFound) {
		zap.L().Warn("Failed to evict principal", zap.String("userID", userID), zap.Error(err))
	}
}
