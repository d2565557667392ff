package identity

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/bytedance/sonic"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/taskdeck/taskdeck/internal/config"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
)

// Profile is the identity the provider vouches for. All fields are declared
// up front; unknown provider attributes are dropped at this boundary.
type Profile struct {
	Sub           string
	Username      string
	Name          string
	Email         string
	EmailVerified bool
	Role          string
	Permissions   string
}

// Authenticator drives the OIDC code flow against the Cognito hosted UI and
// verifies the tokens it hands back.
type Authenticator struct {
	*oidc.Provider
	oauth2.Config

	stateSecret  string
	issuer       string
	jwksProvider *jwks.CachingProvider
	domain       string
	appURL       string
	httpClient   *http.Client
}

func New(ctx context.Context, conf *config.Config) (*Authenticator, error) {
	if conf.COGNITO_DOMAIN == "" || conf.COGNITO_CLIENT_ID == "" {
		return nil, errors.New("identity: cognito domain and client id are required")
	}

	issuer := fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", conf.COGNITO_REGION, conf.COGNITO_USER_POOL_ID)

	httpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   10 * time.Second,
	}

	provider, err := oidc.NewProvider(oidc.ClientContext(ctx, httpClient), issuer)
	if err != nil {
		return nil, err
	}

	issuerURL, err := url.Parse(issuer + "/")
	if err != nil {
		return nil, err
	}

	return &Authenticator{
		Provider: provider,
		Config: oauth2.Config{
			ClientID:     conf.COGNITO_CLIENT_ID,
			ClientSecret: conf.COGNITO_CLIENT_SECRET,
			RedirectURL:  conf.APP_URL + "/api/auth/callback",
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email", "aws.cognito.signin.user.admin"},
		},
		stateSecret:  conf.STATE_SECRET,
		issuer:       issuer,
		jwksProvider: jwks.NewCachingProvider(issuerURL, 5*time.Minute),
		domain:       conf.COGNITO_DOMAIN,
		appURL:       conf.APP_URL,
		httpClient:   httpClient,
	}, nil
}

// idTokenClaims are the Cognito claims we care about beyond the registered
// set.
type idTokenClaims struct {
	Username      string `json:"cognito:username"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Role          string `json:"custom:role"`
}

func (c *idTokenClaims) Validate(ctx context.Context) error {
	return nil
}

// VerifyIDToken checks the ID token inside an *oauth2.Token against the
// issuer JWKS and returns the identity it asserts.
func (a *Authenticator) VerifyIDToken(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, errors.New("no id_token field in oauth2 token")
	}

	jwtValidator, err := validator.New(
		a.jwksProvider.KeyFunc,
		validator.RS256,
		a.issuer,
		[]string{a.ClientID},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &idTokenClaims{}
		}),
	)
	if err != nil {
		return nil, err
	}

	payload, err := jwtValidator.ValidateToken(ctx, rawIDToken)
	if err != nil {
		return nil, err
	}

	claims, ok := payload.(*validator.ValidatedClaims)
	if !ok {
		return nil, errors.New("unexpected claims payload")
	}

	custom, ok := claims.CustomClaims.(*idTokenClaims)
	if !ok {
		return nil, errors.New("unexpected custom claims payload")
	}

	role := custom.Role
	if role == "" {
		role = "user"
	}

	return &Profile{
		Sub:           claims.RegisteredClaims.Subject,
		Username:      custom.Username,
		Name:          custom.Name,
		Email:         custom.Email,
		EmailVerified: custom.EmailVerified,
		Role:          role,
		Permissions:   AccessTokenScope(token.AccessToken),
	}, nil
}

// userInfoClaims match the Cognito /oauth2/userInfo response, which reports
// email_verified as the string "true"/"false".
type userInfoClaims struct {
	Sub           string `json:"sub"`
	Username      string `json:"username"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Role          string `json:"custom:role"`
}

// FetchUserInfo asks the provider's userinfo endpoint for the profile behind
// the access token. This is the authoritative profile source on login; the
// ID token claims are a fallback.
func (a *Authenticator) FetchUserInfo(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	info, err := a.UserInfo(oidc.ClientContext(ctx, a.httpClient), oauth2.StaticTokenSource(token))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}

	var claims userInfoClaims
	if err := info.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to decode user info claims: %w", err)
	}

	role := claims.Role
	if role == "" {
		role = "user"
	}

	return &Profile{
		Sub:           claims.Sub,
		Username:      claims.Username,
		Name:          claims.Name,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified == "true",
		Role:          role,
		Permissions:   AccessTokenScope(token.AccessToken),
	}, nil
}

// AccessTokenScope pulls the scope claim out of a Cognito access token. The
// token's authenticity is already established by the code exchange, so a
// claims-only parse is enough here.
func AccessTokenScope(accessToken string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return ""
	}

	scope, _ := claims["scope"].(string)
	return scope
}

// LogoutURL is the provider's federated end-session endpoint. Visiting it
// clears the hosted-UI session and bounces back to our GET logout handler.
func (a *Authenticator) LogoutURL() string {
	return fmt.Sprintf("https://%s/logout?client_id=%s&logout_uri=%s",
		a.domain, a.ClientID, url.QueryEscape(a.appURL+"/api/auth/logout"))
}

type OAuthState struct {
	CSRF      string `json:"csrf"`
	Redirect  string `json:"redirect"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

func (a *Authenticator) GetSignedState(state OAuthState) (string, error) {
	payload, err := sonic.Marshal(state)
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, []byte(a.stateSecret))
	mac.Write(payload)
	sig := mac.Sum(nil)

	combined := append(payload, sig...)
	return base64.StdEncoding.EncodeToString(combined), nil
}

func (a *Authenticator) VerifySignedState(encodedState string) (*OAuthState, error) {
	raw, err := base64.StdEncoding.DecodeString(encodedState)
	if err != nil {
		return nil, errors.New("invalid base64")
	}

	if len(raw) < sha256.Size {
		return nil, errors.New("state too short")
	}

	payload := raw[:len(raw)-sha256.Size]
	sig := raw[len(raw)-sha256.Size:]

	mac := hmac.New(sha256.New, []byte(a.stateSecret))
	mac.Write(payload)
	expectedSig := mac.Sum(nil)
	if !hmac.Equal(sig, expectedSig) {
		return nil, errors.New("invalid state signature")
	}

	var state OAuthState
	if err := sonic.Unmarshal(payload, &state); err != nil {
		return nil, errors.New("invalid state payload")
	}

	if time.Now().Unix() > state.ExpiresAt {
		return nil, errors.New("state expired")
	}

	return &state, nil
}
