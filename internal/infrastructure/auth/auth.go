package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"jan-server/services/report-api/internal/config"
	"jan-server/services/report-api/internal/domain"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// Validator turns bearer tokens into principals, validating JWTs using JWKS.
type Validator struct {
	cfg     *config.Config
	log     zerolog.Logger
	keyfunc jwt.Keyfunc
	jwks    *keyfunc.JWKS
}

// NewValidator initializes JWKS fetching when auth is enabled.
func NewValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Validator, error) {
	if !cfg.AuthEnabled {
		return &Validator{cfg: cfg, log: log}, nil
	}

	options := keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			log.Error().Err(err).Msg("jwks refresh error")
		},
	}

	jwks, err := keyfunc.Get(cfg.AuthJWKSURL, options)
	if err != nil {
		return nil, fmt.Errorf("fetch jwks: %w", err)
	}

	return &Validator{
		cfg:     cfg,
		log:     log,
		keyfunc: jwks.Keyfunc,
		jwks:    jwks,
	}, nil
}

// NewStaticValidator validates tokens with a fixed key function.
func NewStaticValidator(cfg *config.Config, log zerolog.Logger, kf jwt.Keyfunc) *Validator {
	return &Validator{cfg: cfg, log: log, keyfunc: kf}
}

// Enabled reports whether tokens are required.
func (v *Validator) Enabled() bool {
	return v != nil && v.cfg.AuthEnabled
}

// Anonymous is the principal used when auth is disabled.
func (v *Validator) Anonymous() domain.Principal {
	var caps []string
	if v != nil {
		caps = append(caps, v.cfg.AuthDefaultCapabilities...)
	}
	return domain.Principal{
		ID:           "anonymous",
		AuthMethod:   domain.AuthMethodAnonymous,
		Capabilities: caps,
	}
}

// Authenticate validates the Authorization header and returns its principal.
func (v *Validator) Authenticate(header string) (domain.Principal, error) {
	tokenString := bearerToken(header)
	if tokenString == "" {
		return domain.Principal{}, ErrMissingToken
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.keyfunc,
		jwt.WithAudience(v.cfg.AuthAudience),
		jwt.WithIssuer(v.cfg.AuthIssuer),
		jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
	)
	if err != nil || !token.Valid {
		v.log.Debug().Err(err).Msg("token rejected")
		return domain.Principal{}, ErrInvalidToken
	}

	subject, _ := claims.GetSubject()
	issuer, _ := claims.GetIssuer()
	return domain.Principal{
		ID:           subject,
		AuthMethod:   domain.AuthMethodJWT,
		Subject:      subject,
		Issuer:       issuer,
		Username:     stringClaim(claims, "preferred_username"),
		Email:        stringClaim(claims, "email"),
		Capabilities: capabilities(claims),
	}, nil
}

// Close stops background JWKS refreshes.
func (v *Validator) Close() {
	if v != nil && v.jwks != nil {
		v.jwks.EndBackground()
	}
}

// capabilities merges the "permissions" array and the space separated "scope" claim.
func capabilities(claims jwt.MapClaims) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(c string) {
		c = strings.TrimSpace(c)
		if c == "" {
			return
		}
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}

	switch perms := claims["permissions"].(type) {
	case []any:
		for _, p := range perms {
			if s, ok := p.(string); ok {
				add(s)
			}
		}
	case string:
		for _, p := range strings.Split(perms, ",") {
			add(p)
		}
	}
	for _, s := range strings.Fields(stringClaim(claims, "scope")) {
		add(s)
	}
	return out
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if s, ok := claims[key].(string); ok {
		return s
	}
	return ""
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
