package auth

import (
	"time"

	"github.com/google/wire"

	"linkup/config"
	"linkup/pkg/jwt"
)

func ProvideJWT(cfg *config.Config) *jwt.JWT {
	return jwt.NewJWT(cfg.JWTSecret, 24*time.Hour)
}

func ProvideMiddleware(tokens *jwt.JWT) *Middleware {
	return NewMiddleware(tokens)
}

var Set = wire.NewSet(ProvideJWT, ProvideMiddleware)
