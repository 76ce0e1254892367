package common

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/dormire/storefront/internal/constants"
	inErrors "github.com/dormire/storefront/internal/errors"
	"github.com/dormire/storefront/internal/log"
)

// VerifyToken checks the bearer token forwarded by the storefront client.
// Token issuance belongs to the external auth provider; only verification
// happens here.
func VerifyToken(c context.Context, token string, secretKey string) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "common VerifyToken").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "parsing claims").Logger()
	claims := &jwt.RegisteredClaims{}
	jwtToken, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(secretKey), nil
		},
		jwt.WithAudience(constants.AUDIENCE_CUSTOMER),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		err = fmt.Errorf("failed parsing with claims with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger = logger.With().Any(log.KeyToken, jwtToken.Claims).Logger()
	logger.Info().Msg("parsed claims")

	if !jwtToken.Valid {
		logger.Error().Err(inErrors.ErrTokenInvalid).Msg(inErrors.ErrTokenInvalid.Error())
		return inErrors.ErrTokenInvalid
	}

	return nil
}
