// internal/application/usecase/auth_usecase.go
package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	cartdom "luminaire/internal/domain/cart"
	custdom "luminaire/internal/domain/customer"
)

var (
	ErrAuthInvalidArgument = errors.New("auth_usecase: invalid argument")
	ErrLoginTimeout        = errors.New("auth_usecase: login took too long")
)

// DefaultLoginTimeout bounds the commerce login call so the user is never
// left blocked on a hanging backend.
const DefaultLoginTimeout = 6 * time.Second

// LoginResult is the commerce backend's login response.
type LoginResult struct {
	Errors  bool   `json:"errors"`
	Message string `json:"message"`
}

// LoginClient performs the commerce form login. Implemented by the
// commerce adapter.
type LoginClient interface {
	Login(ctx context.Context, form map[string]string) (LoginResult, error)
}

// AuthUsecase exposes the authentication display state and the bounded
// login flow.
type AuthUsecase struct {
	cache   cartdom.SectionCache
	client  LoginClient
	drift   *DriftUsecase
	timeout time.Duration
}

func NewAuthUsecase(cache cartdom.SectionCache, client LoginClient, drift *DriftUsecase) (*AuthUsecase, error) {
	if cache == nil {
		return nil, ErrAuthInvalidArgument
	}
	return &AuthUsecase{
		cache:   cache,
		client:  client,
		drift:   drift,
		timeout: DefaultLoginTimeout,
	}, nil
}

// SetLoginTimeout overrides the default login deadline.
func (uc *AuthUsecase) SetLoginTimeout(d time.Duration) {
	if d > 0 {
		uc.timeout = d
	}
}

// Identity derives the customer display identity from the cached customer
// section. Unreadable or malformed sections read as anonymous.
func (uc *AuthUsecase) Identity(ctx context.Context) custdom.SessionIdentity {
	raw, err := uc.cache.ReadSection(ctx, cartdom.SectionCustomer)
	if err != nil {
		return custdom.Section{}.Identity()
	}
	section, err := custdom.DecodeSection(raw)
	if err != nil {
		return custdom.Section{}.Identity()
	}
	return section.Identity()
}

// IsLoggedIn reports the login display state from the cached customer
// section.
func (uc *AuthUsecase) IsLoggedIn(ctx context.Context) bool {
	return uc.Identity(ctx).LoggedIn
}

// Login performs the commerce form login with a hard timeout, then forces
// a drift resolution so the cached session reflects the new identity.
// A timeout is a hard failure.
func (uc *AuthUsecase) Login(ctx context.Context, formFields map[string]string) (LoginResult, error) {
	if uc.client == nil {
		return LoginResult{}, ErrAuthInvalidArgument
	}
	if len(formFields) == 0 {
		return LoginResult{}, ErrAuthInvalidArgument
	}

	form := make(map[string]string, len(formFields)+2)
	for k, v := range formFields {
		form[k] = v
	}
	form["captcha_form_id"] = "user_login"
	form["context"] = "checkout"

	timeout := uc.timeout
	if timeout <= 0 {
		timeout = DefaultLoginTimeout
	}
	loginCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := uc.client.Login(loginCtx, form)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return LoginResult{}, ErrLoginTimeout
		}
		return LoginResult{}, err
	}

	if uc.drift != nil {
		if derr := uc.drift.ResolveDrift(ctx, DriftOptions{Force: true, WaitForCart: true}); derr != nil {
			log.Printf("[auth_usecase] post-login drift resolution failed: %v", derr)
		}
	}
	return result, nil
}
