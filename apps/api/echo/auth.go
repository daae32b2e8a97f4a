package echoapi

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/serafinsanchez/googleclassroom-portal/core"
	"github.com/serafinsanchez/googleclassroom-portal/core/account"
)

const (
	sessionCookie    = "sid"
	oauthStateCookie = "oauth_state"
	oauthStateMaxAge = 10 * time.Minute

	contextTokenKey   = "sessionToken"
	contextAccountKey = "account"
)

// Claims represents the authorization claims transmitted via the session JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Email        string `json:"email,omitempty"`
	Name         string `json:"name,omitempty"`
}

// NewAccountClaims returns the session claims of acc.
// origIat is the issue time of the first token of the session, when refreshing one.
func NewAccountClaims(conf *core.Config, acc account.Account, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   acc.ID,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Email:        acc.Email,
		Name:         acc.Name,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
		TokenLookup:   "cookie:" + sessionCookie,
		ErrorHandler: func(err error) error {
			return errUnauthorized
		},
	}
}

// parseSessionCookie returns the claims of the request's session cookie, if it holds a valid token.
func parseSessionCookie(ctx echo.Context, conf *core.Config) (*Claims, bool) {
	cookie, err := ctx.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != middleware.AlgorithmHS256 {
			return nil, errors.Errorf("unexpected jwt signing method=%v", t.Header["alg"])
		}
		return []byte(conf.SecretKey), nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}
	return claims, true
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextAccount(ctx echo.Context) (account.Account, error) {
	if acc, ok := ctx.Get(contextAccountKey).(account.Account); ok {
		return acc, nil
	}
	return account.Account{}, errUnauthorized
}

// accountMiddleware loads the account of the session. Sessions of revoked accounts are rejected.
func accountMiddleware(svc *account.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			acc, err := svc.Get(claims.Subject)
			if err != nil {
				if errors.Is(err, account.ErrNotFound) {
					return errUnauthorized
				}
				return errors.Wrap(err, "getting session account")
			}
			ctx.Set(contextAccountKey, acc)
			return next(ctx)
		}
	}
}

type authApi struct {
	conf     *core.Config
	svc      *account.Service
	identity IdentityProvider
}

func registerAuthAPI(e *echo.Echo, api *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	a := authApi{
		conf:     deps.Conf,
		svc:      deps.AccountSvc,
		identity: deps.Identity,
	}

	e.GET("/auth/google", a.login)
	e.GET("/auth/google/callback", a.callback)

	ag := api.Group("/auth")
	ag.GET("/status", a.status)
	ag.POST("/logout", a.logout)
	ag.POST("/token-refresh", a.refreshToken, jwt, accountMiddleware(a.svc))
}

func (a *authApi) cookie(name, value string, maxAge time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.conf.Server.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	switch {
	case maxAge > 0:
		c.MaxAge = int(maxAge.Seconds())
		c.Expires = time.Now().Add(maxAge)
	case maxAge < 0:
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
	}
	return c
}

func (a *authApi) setSession(ctx echo.Context, claims *Claims) error {
	token, err := GenerateToken(a.conf, claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	ctx.SetCookie(a.cookie(sessionCookie, token, a.conf.Server.JWTRefreshExpirationDelta))
	return nil
}

// Handlers

func (a *authApi) login(ctx echo.Context) error {
	state := uuid.NewString()
	ctx.SetCookie(a.cookie(oauthStateCookie, state, oauthStateMaxAge))
	return ctx.Redirect(http.StatusTemporaryRedirect, a.identity.AuthCodeURL(state))
}

func (a *authApi) callback(ctx echo.Context) error {
	if reason := ctx.QueryParam("error"); reason != "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "google sign in failed: "+reason)
	}
	state, err := ctx.Cookie(oauthStateCookie)
	if err != nil || state.Value == "" || state.Value != ctx.QueryParam("state") {
		return errInvalidOAuthState
	}
	ctx.SetCookie(a.cookie(oauthStateCookie, "", -1))

	code := ctx.QueryParam("code")
	if code == "" {
		return errAuthenticationFailed
	}

	profile, tok, err := a.identity.Exchange(ctx.Request().Context(), code)
	if err != nil {
		return errors.Wrap(err, "exchanging authorization code")
	}
	acc, err := a.svc.Login(profile, tok)
	if err != nil {
		return errors.Wrap(err, "logging in")
	}

	if err = a.setSession(ctx, NewAccountClaims(a.conf, acc)); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusFound, a.conf.FrontendBaseURL)
}

// status reports whether the session would be accepted by the /api routes: a valid token of a stored account.
func (a *authApi) status(ctx echo.Context) error {
	claims, ok := parseSessionCookie(ctx, a.conf)
	if ok {
		if _, err := a.svc.Get(claims.Subject); err != nil {
			if !errors.Is(err, account.ErrNotFound) {
				return errors.Wrap(err, "getting session account")
			}
			ok = false
		}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"isAuthenticated": ok})
}

func (a *authApi) logout(ctx echo.Context) error {
	ctx.SetCookie(a.cookie(sessionCookie, "", -1))
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
}

func (a *authApi) refreshToken(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	acc, err := getContextAccount(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(a.conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return errRefreshExpired
	}

	newClaims := NewAccountClaims(a.conf, acc, claims.OrigIssuedAt)
	if err = a.setSession(ctx, newClaims); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"expiresAt": newClaims.ExpiresAt})
}
