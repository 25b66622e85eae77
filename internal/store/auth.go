package store

import (
	"context"
	"log/slog"

	"storefront/internal/api"
	domainerrors "storefront/internal/domain/errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/fx"
)

// Credentials is the sign-in form payload.
type Credentials struct {
	Mail     string `json:"mail" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Registration is the sign-up form payload.
type Registration struct {
	Mail                 string `json:"mail" validate:"required,email"`
	Phone                string `json:"phone" validate:"required"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// PasswordReset is the reset-confirmation form payload.
type PasswordReset struct {
	Mail                 string `json:"mail" validate:"required,email"`
	ResetCode            string `json:"reset_code" validate:"required"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// LoginResult reports how a credential submission ended: either a completed
// sign-in or a pending second factor.
type LoginResult struct {
	TwoFactorRequired bool
	Token             string
}

// AuthStoreParams holds dependencies for AuthStore, injected by Fx.
type AuthStoreParams struct {
	fx.In

	Client  *api.Client
	Session *SessionStore
	Logger  *slog.Logger
}

// AuthStore orchestrates login, registration, two-factor verification,
// password reset and account activation. On success it installs the token
// into the API client and loads the session; on logout it unconditionally
// tears both down.
type AuthStore struct {
	status tracker

	client   *api.Client
	session  *SessionStore
	validate *validator.Validate
	logger   *slog.Logger
}

// NewAuthStore is the constructor for AuthStore.
func NewAuthStore(params AuthStoreParams) *AuthStore {
	return &AuthStore{
		client:   params.Client,
		session:  params.Session,
		validate: validator.New(),
		logger:   params.Logger,
	}
}

// Loading reports whether an auth operation is in progress.
func (s *AuthStore) Loading() bool { return s.status.Loading() }

// Err returns the displayable message of the last failed action.
func (s *AuthStore) Err() string { return s.status.Err() }

// Message returns the last success message from the API.
func (s *AuthStore) Message() string { return s.status.Message() }

// ClearAuthStatus clears the error and message fields.
func (s *AuthStore) ClearAuthStatus() { s.status.ClearStatus() }

// loginResponse is the payload the sign-in endpoints return.
type loginResponse struct {
	Data struct {
		Token                string `json:"token"`
		SecondFactorRequired bool   `json:"second_factor_required"`
	} `json:"data"`
}

// Login posts credentials. A second-factor signal is surfaced without
// installing a token; otherwise the returned token is installed and the
// session loaded before Login returns.
func (s *AuthStore) Login(ctx context.Context, credentials Credentials) (*LoginResult, error) {
	if err := s.checkInput(credentials); err != nil {
		return nil, err
	}

	path, err := s.client.Endpoint("login")
	if err != nil {
		return nil, err
	}

	var result *LoginResult
	err = s.status.call(func() (string, error) {
		var res loginResponse
		message, err := s.client.Post(ctx, path, credentials, &res)
		if err != nil {
			return message, err
		}

		result, err = s.completeSignIn(ctx, &res)

		return message, err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// VerifyTwoFactor completes a pending sign-in; a success is handled
// identically to a direct login.
func (s *AuthStore) VerifyTwoFactor(ctx context.Context, mail, code string) (*LoginResult, error) {
	path, err := s.client.Endpoint("verify2fa")
	if err != nil {
		return nil, err
	}

	body := map[string]string{"mail": mail, "second_factor_code": code}

	var result *LoginResult
	err = s.status.call(func() (string, error) {
		var res loginResponse
		message, err := s.client.Post(ctx, path, body, &res)
		if err != nil {
			return message, err
		}

		result, err = s.completeSignIn(ctx, &res)

		return message, err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ResendTwoFactor asks the server to re-issue the pending second factor code.
func (s *AuthStore) ResendTwoFactor(ctx context.Context, mail string) error {
	path, err := s.client.Endpoint("resend2fa")
	if err != nil {
		return err
	}

	return s.status.call(func() (string, error) {
		return s.client.Post(ctx, path, map[string]string{"mail": mail}, nil)
	})
}

// completeSignIn installs the token and loads the identity; the token
// assignment always precedes the dependent fetch.
func (s *AuthStore) completeSignIn(ctx context.Context, res *loginResponse) (*LoginResult, error) {
	if res.Data.SecondFactorRequired {
		s.logger.Info("Second factor required to complete sign-in")

		return &LoginResult{TwoFactorRequired: true}, nil
	}
	if res.Data.Token == "" {
		return nil, domainerrors.ErrMissingToken
	}

	s.client.SetToken(res.Data.Token)
	if err := s.session.FetchCurrentUser(ctx); err != nil {
		return nil, err
	}

	return &LoginResult{Token: res.Data.Token}, nil
}

// Register submits a sign-up. It never auto-authenticates.
func (s *AuthStore) Register(ctx context.Context, registration Registration) error {
	if err := s.checkInput(registration); err != nil {
		return err
	}

	path, err := s.client.Endpoint("users")
	if err != nil {
		return err
	}

	return s.status.call(func() (string, error) {
		return s.client.Post(ctx, path, map[string]any{"user": registration}, nil)
	})
}

// ActivateAccount activates an account with the emailed code.
func (s *AuthStore) ActivateAccount(ctx context.Context, mail, activationCode string) error {
	path, err := s.client.Endpoint("activate")
	if err != nil {
		return err
	}

	body := map[string]string{"mail": mail, "activation_code": activationCode}

	return s.status.call(func() (string, error) {
		return s.client.Patch(ctx, path, body, nil)
	})
}

// RequestPasswordReset asks for a reset code to be mailed out.
func (s *AuthStore) RequestPasswordReset(ctx context.Context, mail string) error {
	path, err := s.client.Endpoint("passwordReset")
	if err != nil {
		return err
	}

	return s.status.call(func() (string, error) {
		return s.client.Post(ctx, path, map[string]string{"mail": mail}, nil)
	})
}

// ConfirmPasswordReset sets a new password using the reset code.
func (s *AuthStore) ConfirmPasswordReset(ctx context.Context, reset PasswordReset) error {
	if err := s.checkInput(reset); err != nil {
		return err
	}

	path, err := s.client.Endpoint("passwordReset")
	if err != nil {
		return err
	}

	return s.status.call(func() (string, error) {
		return s.client.Patch(ctx, path, reset, nil)
	})
}

// Logout is best-effort: it notifies the server but unconditionally clears
// the local token and session state. Ending the session never fails from the
// caller's perspective.
func (s *AuthStore) Logout(ctx context.Context) {
	if path, err := s.client.Endpoint("logout"); err == nil {
		if _, err := s.client.Post(ctx, path, nil, nil); err != nil {
			s.logger.Debug("Logout request failed, clearing session anyway", slog.Any("error", err))
		}
	}

	s.client.ClearToken()
	s.session.ClearCurrentUser()
	s.status.setMessage("Successfully logged out.")
}

// checkInput runs the form-schema validation; failures populate the error
// field and never issue a request.
func (s *AuthStore) checkInput(input any) error {
	if err := s.validate.Struct(input); err != nil {
		s.status.mu.Lock()
		s.status.err = domainerrors.ErrValidationFailed.Message()
		s.status.mu.Unlock()

		return domainerrors.ErrValidationFailed.WrapMessage(err.Error())
	}

	return nil
}
