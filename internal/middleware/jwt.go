package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"bus_tracker/internal/transit"
)

const actorKey = "actor"

// Claims is the payload of an identity token.
type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager signs and verifies HS256 identity tokens.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (m *JWTManager) GenerateToken(userID uint, role transit.Role) (string, error) {
	now := m.now()
	claims := Claims{
		UserID: userID,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken verifies the token and returns the actor it identifies.
func (m *JWTManager) ValidateToken(tokenStr string) (transit.Actor, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		return transit.Actor{}, err
	}
	if !token.Valid {
		return transit.Actor{}, errors.New("invalid token")
	}
	role, err := transit.ParseRole(claims.Role)
	if err != nil {
		return transit.Actor{}, err
	}
	if claims.UserID == 0 {
		return transit.Actor{}, errors.New("token has no user")
	}
	return transit.Actor{ID: claims.UserID, Role: role}, nil
}

// authenticate stores the actor from the bearer token, aborting with 401
// when it is missing or invalid.
func authenticate(c *gin.Context, m *JWTManager) bool {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
		return false
	}

	actor, err := m.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return false
	}

	// Store the actor in context for downstream handlers
	c.Set(actorKey, actor)
	c.Set("user_id", actor.ID)
	c.Set("role", actor.Role.String())
	return true
}

// RequireAuth ensures a valid JWT is present
func RequireAuth(m *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, m) {
			return
		}
		c.Next()
	}
}

// RequireCapability ensures the JWT is valid and the actor's role grants the capability.
func RequireCapability(m *JWTManager, want transit.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, m) {
			return
		}
		actor, _ := ActorFrom(c)
		if !actor.Role.Can(want) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}
		c.Next()
	}
}

// ActorFrom returns the authenticated actor stored by RequireAuth.
func ActorFrom(c *gin.Context) (transit.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return transit.Actor{}, false
	}
	actor, ok := v.(transit.Actor)
	return actor, ok
}
