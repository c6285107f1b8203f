package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/BruksfildServices01/barbershop-booking/internal/config"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/policy"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

const (
	ContextUserID       = "userID"
	ContextBarbershopID = "barbershopID"
	ContextUserRole     = "userRole"
)

const tokenTTL = 24 * time.Hour

// IssueToken signs an HS256 token carrying the user's id, barbershop and
// role. barbershopId is 0 for accounts not bound to a barbershop.
func IssueToken(secret string, user *models.User, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":          user.ID,
		"barbershopId": user.ShopID(),
		"role":         user.Role,
		"exp":          now.Add(tokenTTL).Unix(),
		"iat":          now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error_code": "missing_authorization_header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error_code": "invalid_authorization_header"})
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenMalformed
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error_code": "invalid_token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error_code": "invalid_token_claims"})
			return
		}

		userID, ok1 := claims["sub"].(float64)
		barbershopID, ok2 := claims["barbershopId"].(float64)
		roleClaim, _ := claims["role"].(string)
		role, ok3 := policy.ParseRole(roleClaim)
		if !ok1 || !ok2 || !ok3 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error_code": "invalid_token_payload"})
			return
		}

		c.Set(ContextUserID, uint(userID))
		c.Set(ContextBarbershopID, uint(barbershopID))
		c.Set(ContextUserRole, role)

		c.Next()
	}
}

// RequireRoles rejects actors whose role is not listed. It must run after
// AuthMiddleware.
func RequireRoles(roles ...policy.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFrom(c)
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error_code": "forbidden"})
	}
}

// ActorFrom reads the authenticated caller. It returns the zero Actor on
// unauthenticated routes.
func ActorFrom(c *gin.Context) policy.Actor {
	return policy.Actor{
		UserID:       c.GetUint(ContextUserID),
		BarbershopID: c.GetUint(ContextBarbershopID),
		Role:         roleFrom(c),
	}
}

func roleFrom(c *gin.Context) policy.Role {
	if v, ok := c.Get(ContextUserRole); ok {
		if r, ok := v.(policy.Role); ok {
			return r
		}
	}
	return ""
}
