package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/axleworks/weighbridge-backend/internal/pkg/logger"
	"github.com/axleworks/weighbridge-backend/internal/requestdata"
)

// Permission claims the API groups check for.
const (
	PermOperate   = "weigh.operate"
	PermSync      = "weigh.sync"
	PermConfigure = "weigh.configure"
)

type tenantClaims struct {
	TenantID    string   `json:"tenant_id"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

type AuthMiddleware struct {
	log       *logger.Logger
	secretKey string
}

func NewAuthMiddleware(log *logger.Logger, secretKey string) *AuthMiddleware {
	middlewareLogger := log.With("Middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLogger, secretKey: secretKey}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}
		rd, err := am.parseToken(tokenString)
		if err != nil {
			am.log.Debug("Token rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		ctx := requestdata.WithRequestData(c.Request.Context(), rd)
		c.Request = c.Request.WithContext(ctx)
		if rd.TenantID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// RequirePermission guards a route group with a single permission claim.
// It must run after RequireAuth.
func (am *AuthMiddleware) RequirePermission(perm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := requestdata.GetRequestData(c.Request.Context())
		if !rd.HasPermission(perm) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": fmt.Sprintf("missing permission %q", perm)})
			return
		}
		c.Next()
	}
}

func (am *AuthMiddleware) parseToken(tokenString string) (*requestdata.RequestData, error) {
	parsedToken, err := jwt.ParseWithClaims(tokenString, &tenantClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(am.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("Failed to parse token: %w", err)
	}
	claims, ok := parsedToken.Claims.(*tenantClaims)
	if !ok || !parsedToken.Valid {
		return nil, fmt.Errorf("Invalid or expired JWT token")
	}
	tenantID, err := uuid.Parse(claims.TenantID)
	if err != nil {
		return nil, fmt.Errorf("Invalid tenant id in token: %w", err)
	}
	return &requestdata.RequestData{
		TokenString: tokenString,
		TenantID:    tenantID,
		Subject:     claims.Subject,
		Permissions: claims.Permissions,
	}, nil
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	return ""
}
