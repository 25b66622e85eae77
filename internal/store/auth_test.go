package store

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthStore_Login_Success(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{"token":"tok-123"},"message":"Welcome back"}`)
	})
	mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{"data":{"user":{"id":7,"mail":"a@b.com","role":"user","active":true,"verified":true}}}`)
	})

	fx := newTestStores(t, mux)

	result, err := fx.auth.Login(context.Background(), Credentials{Mail: "a@b.com", Password: "correct"})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.TwoFactorRequired)

	// Token installed and identity loaded immediately after resolution.
	assert.Equal(t, "tok-123", fx.client.Token())
	require.NotNil(t, fx.session.CurrentUser())
	assert.Equal(t, "a@b.com", fx.session.CurrentUser().Mail)
	assert.False(t, fx.auth.Loading())
}

func TestAuthStore_Login_InvalidCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"errors":["Invalid credentials"]}`)
	})

	fx := newTestStores(t, mux)

	_, err := fx.auth.Login(context.Background(), Credentials{Mail: "a@b.com", Password: "wrong"})
	require.Error(t, err)

	assert.Equal(t, "Invalid credentials", fx.auth.Err())
	assert.Nil(t, fx.session.CurrentUser())
	assert.Empty(t, fx.client.Token())
}

func TestAuthStore_Login_TwoFactorPending(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{"second_factor_required":true}}`)
	})

	fx := newTestStores(t, mux)

	result, err := fx.auth.Login(context.Background(), Credentials{Mail: "a@b.com", Password: "correct"})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.TwoFactorRequired)

	// The pending flow must not install a token or load the session.
	assert.Empty(t, fx.client.Token())
	assert.Nil(t, fx.session.CurrentUser())
}

func TestAuthStore_VerifyTwoFactor_CompletesLikeLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/verify_2fa", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{"token":"tok-2fa"}}`)
	})
	mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{"user":{"id":7,"mail":"a@b.com"}}}`)
	})

	fx := newTestStores(t, mux)

	result, err := fx.auth.VerifyTwoFactor(context.Background(), "a@b.com", "12345678")
	require.NoError(t, err)
	assert.False(t, result.TwoFactorRequired)
	assert.Equal(t, "tok-2fa", fx.client.Token())
	require.NotNil(t, fx.session.CurrentUser())
}

func TestAuthStore_Login_MissingToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{},"message":"ok"}`)
	})

	fx := newTestStores(t, mux)

	_, err := fx.auth.Login(context.Background(), Credentials{Mail: "a@b.com", Password: "correct"})
	require.Error(t, err)
	assert.Empty(t, fx.client.Token())
}

func TestAuthStore_Login_ValidationFailureIssuesNoRequest(t *testing.T) {
	requests := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		writeJSON(w, http.StatusOK, `{}`)
	})

	fx := newTestStores(t, handler)

	_, err := fx.auth.Login(context.Background(), Credentials{Mail: "not-an-email", Password: ""})
	require.Error(t, err)
	assert.Zero(t, requests)
	assert.NotEmpty(t, fx.auth.Err())
}

func TestAuthStore_Logout_AlwaysClearsLocalState(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server success",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, `{"message":"bye"}`)
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusInternalServerError, `{"errors":"boom"}`)
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newTestStores(t, tc.handler)
			fx.client.SetToken("tok-123")

			fx.auth.Logout(context.Background())

			assert.Empty(t, fx.client.Token())
			assert.Nil(t, fx.session.CurrentUser())
			assert.Equal(t, "Successfully logged out.", fx.auth.Message())
		})
	}
}

func TestAuthStore_Register_DoesNotAuthenticate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, `{"message":"Check your inbox to activate your account"}`)
	})

	fx := newTestStores(t, mux)

	err := fx.auth.Register(context.Background(), Registration{
		Mail:                 "new@b.com",
		Phone:                "123456789",
		Password:             "Password1!",
		PasswordConfirmation: "Password1!",
	})
	require.NoError(t, err)
	assert.Equal(t, "Check your inbox to activate your account", fx.auth.Message())
	assert.Empty(t, fx.client.Token())
	assert.Nil(t, fx.session.CurrentUser())
}

func TestAuthStore_PasswordResetFlow(t *testing.T) {
	var requested, confirmed bool
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/password/reset", func(w http.ResponseWriter, r *http.Request) {
		requested = true
		writeJSON(w, http.StatusOK, `{"message":"Reset code sent"}`)
	})
	mux.HandleFunc("PATCH /auth/password/reset", func(w http.ResponseWriter, r *http.Request) {
		confirmed = true
		writeJSON(w, http.StatusOK, `{"message":"Password changed"}`)
	})

	fx := newTestStores(t, mux)
	ctx := context.Background()

	require.NoError(t, fx.auth.RequestPasswordReset(ctx, "a@b.com"))
	assert.True(t, requested)
	assert.Equal(t, "Reset code sent", fx.auth.Message())

	require.NoError(t, fx.auth.ConfirmPasswordReset(ctx, PasswordReset{
		Mail:                 "a@b.com",
		ResetCode:            "r-code",
		Password:             "Password1!",
		PasswordConfirmation: "Password1!",
	}))
	assert.True(t, confirmed)
	assert.Equal(t, "Password changed", fx.auth.Message())
}

func TestAuthStore_ActivateAccount(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /auth/activate", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"message":"Account activated"}`)
	})

	fx := newTestStores(t, mux)

	require.NoError(t, fx.auth.ActivateAccount(context.Background(), "a@b.com", "act-code"))
	assert.Equal(t, "Account activated", fx.auth.Message())
}

func TestAuthStore_ClearAuthStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"errors":"Invalid credentials"}`)
	})

	fx := newTestStores(t, mux)

	_, err := fx.auth.Login(context.Background(), Credentials{Mail: "a@b.com", Password: "wrong"})
	require.Error(t, err)
	require.NotEmpty(t, fx.auth.Err())

	fx.auth.ClearAuthStatus()
	assert.Empty(t, fx.auth.Err())
	assert.Empty(t, fx.auth.Message())
}
