package store

import (
	"context"
	"net/http"
	"testing"

	"storefront/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_FetchCurrentUser_ReplacesWholesale(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{"user":{"id":7,"mail":"a@b.com","phone":"123","role":"user","active":true,"verified":true,"user_details":{"id":1,"first_name":"Ann","last_name":"Bee"}}}}`)
	})

	fx := newTestStores(t, mux)

	require.NoError(t, fx.session.FetchCurrentUser(context.Background()))

	user := fx.session.CurrentUser()
	require.NotNil(t, user)
	assert.Equal(t, int64(7), user.ID)
	require.NotNil(t, user.Detail)
	assert.Equal(t, "Ann", user.Detail.FirstName)
}

func TestSessionStore_PersistenceRoundTrip(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{"user":{"id":7,"mail":"a@b.com","phone":"123","role":"entrepreneur","active":true,"verified":true,"location":{"id":2,"country":"PL","city":"Warsaw","street":"Main 1","postal_code":"00-001"},"entrepreneur_details":{"id":3,"company_name":"ACME","tax_id":"999"}}}}`)
	})

	fx := newTestStores(t, mux)
	require.NoError(t, fx.session.FetchCurrentUser(context.Background()))
	persisted := fx.session.CurrentUser()

	// A fresh store over the same storage restores the identity verbatim,
	// without any request to the server.
	restored := NewSessionStore(SessionStoreParams{Client: fx.client, Storage: fx.storage, Logger: newTestLogger()})
	require.NoError(t, restored.Restore())
	assert.Equal(t, persisted, restored.CurrentUser())
}

func TestSessionStore_Restore_NoPersistedSession(t *testing.T) {
	fx := newTestStores(t, http.NewServeMux())

	require.NoError(t, fx.session.Restore())
	assert.Nil(t, fx.session.CurrentUser())
}

func TestSessionStore_FetchUsers_WithPagination(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		writeJSON(w, http.StatusOK, `{"data":{"users":[{"id":1,"mail":"x@y.com"},{"id":2,"mail":"z@y.com"}],"meta":{"current_page":2,"total_pages":5,"total_count":42}}}`)
	})

	fx := newTestStores(t, mux)

	require.NoError(t, fx.session.FetchUsers(context.Background(), 2))
	assert.Len(t, fx.session.Users(), 2)
	require.NotNil(t, fx.session.Pagination())
	assert.Equal(t, 2, fx.session.Pagination().CurrentPage)
	assert.Equal(t, 42, fx.session.Pagination().TotalCount)
}

func TestSessionStore_FetchUserActions(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/7/actions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{"actions":[{"id":1,"user_id":7,"action_type":"sign_in"}],"meta":{"current_page":1,"total_pages":1,"total_count":1}}}`)
	})

	fx := newTestStores(t, mux)

	require.NoError(t, fx.session.FetchUserActions(context.Background(), 7, 1))
	require.Len(t, fx.session.Actions(), 1)
	assert.Equal(t, "sign_in", fx.session.Actions()[0].ActionType)
}

func TestSessionStore_UpdateUserDetails_MergesSubObjectOnly(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{"user":{"id":7,"mail":"a@b.com","phone":"123","role":"user","active":true,"verified":true,"location":{"id":2,"country":"PL","city":"Warsaw","street":"Main 1","postal_code":"00-001"}}}}`)
	})
	mux.HandleFunc("PATCH /users/7/update_details", func(w http.ResponseWriter, r *http.Request) {
		// Partial response: only id and the changed detail record.
		writeJSON(w, http.StatusOK, `{"data":{"user":{"id":7,"user_details":{"id":9,"first_name":"New","last_name":"Name"}}},"message":"Details updated"}`)
	})

	fx := newTestStores(t, mux)
	ctx := context.Background()
	require.NoError(t, fx.session.FetchCurrentUser(ctx))

	require.NoError(t, fx.session.UpdateUserDetails(ctx, 7, map[string]any{"first_name": "New"}))

	user := fx.session.CurrentUser()
	require.NotNil(t, user)
	// The detail record was replaced, everything else untouched.
	require.NotNil(t, user.Detail)
	assert.Equal(t, "New", user.Detail.FirstName)
	assert.Equal(t, "a@b.com", user.Mail)
	assert.Equal(t, "123", user.Phone)
	assert.True(t, user.Active)
	require.NotNil(t, user.Location)
	assert.Equal(t, "Warsaw", user.Location.City)
}

func TestSessionStore_UpdateUserRole_PatchesCurrentSelectedAndList(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{"users":[{"id":7,"mail":"a@b.com","role":"user"},{"id":8,"mail":"c@d.com","role":"user"}],"meta":{"current_page":1,"total_pages":1,"total_count":2}}}`)
	})
	mux.HandleFunc("GET /users/7", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{"user":{"id":7,"mail":"a@b.com","role":"user"}}}`)
	})
	mux.HandleFunc("PATCH /users/7/role", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{"user":{"id":7,"role":"admin"}},"message":"Role updated"}`)
	})

	fx := newTestStores(t, mux)
	ctx := context.Background()
	require.NoError(t, fx.session.FetchUsers(ctx, 1))
	require.NoError(t, fx.session.FetchUser(ctx, 7))

	require.NoError(t, fx.session.UpdateUserRole(ctx, 7, "admin"))

	require.NotNil(t, fx.session.SelectedUser())
	assert.Equal(t, "admin", fx.session.SelectedUser().Role)
	// Untouched fields survive the merge.
	assert.Equal(t, "a@b.com", fx.session.SelectedUser().Mail)

	users := fx.session.Users()
	require.Len(t, users, 2)
	assert.Equal(t, "admin", users[0].Role)
	assert.Equal(t, "user", users[1].Role)
}

func TestSessionStore_DeleteUser_FiltersListLocally(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{"users":[{"id":7},{"id":8},{"id":9}],"meta":{"current_page":1,"total_pages":1,"total_count":3}}}`)
	})
	mux.HandleFunc("DELETE /users/8", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"message":"User removed"}`)
	})

	fx := newTestStores(t, mux)
	ctx := context.Background()
	require.NoError(t, fx.session.FetchUsers(ctx, 1))

	require.NoError(t, fx.session.DeleteUser(ctx, 8))

	ids := make([]int64, 0, 2)
	for _, u := range fx.session.Users() {
		ids = append(ids, u.ID)
	}
	assert.Equal(t, []int64{7, 9}, ids)
}

func TestSessionStore_ClearCurrentUser_LeavesTokenAlone(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{"user":{"id":7,"mail":"a@b.com"}}}`)
	})

	fx := newTestStores(t, mux)
	fx.client.SetToken("tok-123")
	require.NoError(t, fx.session.FetchCurrentUser(context.Background()))

	fx.session.ClearCurrentUser()

	assert.Nil(t, fx.session.CurrentUser())
	// Clearing the session is not the session store's cue to drop the token.
	assert.Equal(t, "tok-123", fx.client.Token())

	loaded, err := fx.storage.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSessionStore_FetchUsers_APIErrorStored(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, `{"errors":"Admins only"}`)
	})

	fx := newTestStores(t, mux)

	err := fx.session.FetchUsers(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, "Admins only", fx.session.Err())
	assert.Empty(t, fx.session.Users())
}

func TestMergeUser_IgnoresAbsentFields(t *testing.T) {
	role := "admin"
	dst := &entity.User{ID: 7, Mail: "a@b.com", Phone: "123", Role: "user", Active: true}

	mergeUser(dst, &UserPatch{ID: 7, Role: &role})

	assert.Equal(t, "admin", dst.Role)
	assert.Equal(t, "a@b.com", dst.Mail)
	assert.Equal(t, "123", dst.Phone)
	assert.True(t, dst.Active)
}
