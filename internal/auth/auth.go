package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	config "github.com/kevin-vien/web-mobile-tranning/configs"
	"github.com/kevin-vien/web-mobile-tranning/internal/models"
	"github.com/kevin-vien/web-mobile-tranning/internal/repository"
)

const sessionOIDCState = "oidc_state"

type UserUpserter interface {
	UpsertOIDC(ctx context.Context, p repository.OIDCProfile) (*models.User, error)
}

type idTokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)
}

// OIDC signs users in through an external OpenID Connect provider and maps
// them onto local accounts.
type OIDC struct {
	verifier     idTokenVerifier
	oauth2Config *oauth2.Config
	users        UserUpserter
	tokens       *Tokens
}

func NewOIDC(ctx context.Context, cfg config.OIDCConfig, users UserUpserter, tokens *Tokens) (*OIDC, error) {
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("OIDC provider init error: %w", err)
	}

	return &OIDC{
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email", "phone"},
		},
		users:  users,
		tokens: tokens,
	}, nil
}

// GET /auth/oidc/login
func (o *OIDC) Login(c *gin.Context) {
	state := uuid.NewString()

	sess := sessions.Default(c)
	sess.Set(sessionOIDCState, state)
	if err := sess.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session_error", "message": "failed to store login state"})
		return
	}

	c.Redirect(http.StatusFound, o.oauth2Config.AuthCodeURL(state))
}

// GET /auth/oidc/callback
func (o *OIDC) Callback(c *gin.Context) {
	sess := sessions.Default(c)
	expected, _ := sess.Get(sessionOIDCState).(string)
	sess.Delete(sessionOIDCState)
	_ = sess.Save()

	if expected == "" || c.Query("state") != expected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_state", "message": "state mismatch"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "code missing"})
		return
	}

	ctx := c.Request.Context()
	oauth2Token, err := o.oauth2Config.Exchange(ctx, code)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "token exchange failed"})
		return
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "no id_token in token response"})
		return
	}

	o.finish(c, rawIDToken)
}

func (o *OIDC) finish(c *gin.Context, rawIDToken string) {
	ctx := c.Request.Context()

	idToken, err := o.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "token verification failed"})
		return
	}

	var claims struct {
		Sub   string `json:"sub"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone_number"`
	}
	if err := idToken.Claims(&claims); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "claims parse error"})
		return
	}

	user, err := o.users.UpsertOIDC(ctx, repository.OIDCProfile{
		Subject: claims.Sub,
		Name:    claims.Name,
		Email:   claims.Email,
		Phone:   claims.Phone,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "cannot link account"})
		return
	}

	token, err := o.tokens.Issue(*user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to issue token"})
		return
	}
	if err := StartSession(c, *user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session_error", "message": "failed to start session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "logged in", "token": token, "user": user})
}
