package store

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"storefront/internal/api"
	"storefront/internal/domain/entity"
	"storefront/internal/storage"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// UserPatch is the partial user shape mutation responses return. Pointer
// fields distinguish "absent" from "zero" so partial responses are merged
// per sub-object instead of blindly overwriting the in-memory identity.
type UserPatch struct {
	ID                 int64                      `json:"id"`
	Mail               *string                    `json:"mail,omitempty"`
	Phone              *string                    `json:"phone,omitempty"`
	Role               *string                    `json:"role,omitempty"`
	Active             *bool                      `json:"active,omitempty"`
	Verified           *bool                      `json:"verified,omitempty"`
	UpdatedAt          *string                    `json:"updated_at,omitempty"`
	Detail             *entity.UserDetail         `json:"user_details,omitempty"`
	Location           *entity.Location           `json:"location,omitempty"`
	EntrepreneurDetail *entity.EntrepreneurDetail `json:"entrepreneur_details,omitempty"`
}

// SessionStoreParams holds dependencies for SessionStore, injected by Fx.
type SessionStoreParams struct {
	fx.In

	Client  *api.Client
	Storage *storage.SessionStorage
	Logger  *slog.Logger
}

// SessionStore holds the authenticated identity plus the admin-facing user
// lists. The current identity is the only field written to durable storage.
type SessionStore struct {
	status tracker

	client  *api.Client
	storage *storage.SessionStorage
	logger  *slog.Logger

	currentUser       *entity.User
	selectedUser      *entity.User
	users             []entity.User
	pagination        *entity.Pagination
	actions           []entity.UserAction
	actionsPagination *entity.Pagination
}

// NewSessionStore is the constructor for SessionStore.
func NewSessionStore(params SessionStoreParams) *SessionStore {
	return &SessionStore{
		client:  params.Client,
		storage: params.Storage,
		logger:  params.Logger,
	}
}

// Loading reports whether a session operation is in flight.
func (s *SessionStore) Loading() bool { return s.status.Loading() }

// Err returns the displayable message of the last failed operation.
func (s *SessionStore) Err() string { return s.status.Err() }

// Message returns the last success message from the API.
func (s *SessionStore) Message() string { return s.status.Message() }

// CurrentUser returns the authenticated identity, or nil.
func (s *SessionStore) CurrentUser() *entity.User {
	s.status.mu.RLock()
	defer s.status.mu.RUnlock()

	return s.currentUser
}

// SelectedUser returns the admin-selected user, or nil.
func (s *SessionStore) SelectedUser() *entity.User {
	s.status.mu.RLock()
	defer s.status.mu.RUnlock()

	return s.selectedUser
}

// Users returns the admin-facing user list.
func (s *SessionStore) Users() []entity.User {
	s.status.mu.RLock()
	defer s.status.mu.RUnlock()

	return s.users
}

// Pagination returns the user list metadata.
func (s *SessionStore) Pagination() *entity.Pagination {
	s.status.mu.RLock()
	defer s.status.mu.RUnlock()

	return s.pagination
}

// Actions returns the loaded user action history.
func (s *SessionStore) Actions() []entity.UserAction {
	s.status.mu.RLock()
	defer s.status.mu.RUnlock()

	return s.actions
}

// Restore loads the persisted identity from storage, verbatim, without
// revalidating the token against the server.
func (s *SessionStore) Restore() error {
	user, err := s.storage.Load()
	if err != nil {
		return errors.Wrap(err, "failed to restore session")
	}

	s.status.mu.Lock()
	s.currentUser = user
	s.status.mu.Unlock()

	if user != nil {
		s.logger.Info("Restored persisted session", slog.Int64("user_id", user.ID))
	}

	return nil
}

// FetchCurrentUser loads the identity for the active token, replaces session
// state wholesale and persists it.
func (s *SessionStore) FetchCurrentUser(ctx context.Context) error {
	path, err := s.client.Endpoint("me")
	if err != nil {
		return err
	}

	return s.status.call(func() (string, error) {
		var res struct {
			Data struct {
				User entity.User `json:"user"`
			} `json:"data"`
		}
		message, err := s.client.Get(ctx, path, nil, &res)
		if err != nil {
			return message, err
		}

		s.status.mu.Lock()
		s.currentUser = &res.Data.User
		s.status.mu.Unlock()

		if err := s.storage.Save(&res.Data.User); err != nil {
			s.logger.Warn("Failed to persist session", slog.Any("error", err))
		}

		return message, nil
	})
}

// FetchUsers loads a page of the admin-facing user list.
func (s *SessionStore) FetchUsers(ctx context.Context, page int) error {
	path, err := s.client.Endpoint("users")
	if err != nil {
		return err
	}

	return s.status.call(func() (string, error) {
		var res struct {
			Data struct {
				Users []entity.User      `json:"users"`
				Meta  *entity.Pagination `json:"meta"`
			} `json:"data"`
		}
		message, err := s.client.Get(ctx, path, pageQuery(page), &res)
		if err != nil {
			return message, err
		}

		s.status.mu.Lock()
		s.users = res.Data.Users
		s.pagination = res.Data.Meta
		s.status.mu.Unlock()

		return message, nil
	})
}

// FetchUser loads a single user into the selected slot.
func (s *SessionStore) FetchUser(ctx context.Context, userID int64) error {
	path, err := s.userPath(userID, "")
	if err != nil {
		return err
	}

	return s.status.call(func() (string, error) {
		var res struct {
			Data struct {
				User entity.User `json:"user"`
			} `json:"data"`
		}
		message, err := s.client.Get(ctx, path, nil, &res)
		if err != nil {
			return message, err
		}

		s.status.mu.Lock()
		s.selectedUser = &res.Data.User
		s.status.mu.Unlock()

		return message, nil
	})
}

// FetchUserActions loads a page of a user's action history.
func (s *SessionStore) FetchUserActions(ctx context.Context, userID int64, page int) error {
	path, err := s.userPath(userID, "/actions")
	if err != nil {
		return err
	}

	return s.status.call(func() (string, error) {
		var res struct {
			Data struct {
				Actions []entity.UserAction `json:"actions"`
				Meta    *entity.Pagination  `json:"meta"`
			} `json:"data"`
		}
		message, err := s.client.Get(ctx, path, pageQuery(page), &res)
		if err != nil {
			return message, err
		}

		s.status.mu.Lock()
		s.actions = res.Data.Actions
		s.actionsPagination = res.Data.Meta
		s.status.mu.Unlock()

		return message, nil
	})
}

// CreateUser creates a user (admin) and selects the created record.
func (s *SessionStore) CreateUser(ctx context.Context, user map[string]any) error {
	path, err := s.client.Endpoint("users")
	if err != nil {
		return err
	}

	return s.status.call(func() (string, error) {
		var res struct {
			Data struct {
				User entity.User `json:"user"`
			} `json:"data"`
		}
		message, err := s.client.Post(ctx, path, map[string]any{"user": user}, &res)
		if err != nil {
			return message, err
		}

		s.status.mu.Lock()
		s.selectedUser = &res.Data.User
		s.status.mu.Unlock()

		return message, nil
	})
}

// UpdateUser updates core user fields and merges the partial response.
func (s *SessionStore) UpdateUser(ctx context.Context, userID int64, updates map[string]any) error {
	return s.patchUser(ctx, userID, "", map[string]any{"user": updates})
}

// UpdateUserDetails updates the personal detail record.
func (s *SessionStore) UpdateUserDetails(ctx context.Context, userID int64, details map[string]any) error {
	return s.patchUser(ctx, userID, "/update_details", map[string]any{"user_details": details})
}

// UpdateUserLocation updates the location record.
func (s *SessionStore) UpdateUserLocation(ctx context.Context, userID int64, location map[string]any) error {
	return s.patchUser(ctx, userID, "/location", map[string]any{"location": location})
}

// UpdateEntrepreneurDetails updates the business detail record.
func (s *SessionStore) UpdateEntrepreneurDetails(ctx context.Context, userID int64, details map[string]any) error {
	return s.patchUser(ctx, userID, "/entrepreneur_details", map[string]any{"entrepreneur_details": details})
}

// UpdateUserRole changes a user's role (admin).
func (s *SessionStore) UpdateUserRole(ctx context.Context, userID int64, role string) error {
	return s.patchUser(ctx, userID, "/role", map[string]any{"role": role})
}

// patchUser issues the mutation and merges the returned partial user into
// whichever in-memory identity matches the returned id.
func (s *SessionStore) patchUser(ctx context.Context, userID int64, suffix string, body map[string]any) error {
	path, err := s.userPath(userID, suffix)
	if err != nil {
		return err
	}

	return s.status.call(func() (string, error) {
		var res struct {
			Data struct {
				User *UserPatch `json:"user"`
			} `json:"data"`
		}
		message, err := s.client.Patch(ctx, path, body, &res)
		if err != nil {
			return message, err
		}

		if res.Data.User != nil {
			s.applyPatch(res.Data.User)
		}

		return message, nil
	})
}

// applyPatch shallow-merges the patch into the current identity, the
// selected user and the matching list entry, each sub-object independently.
func (s *SessionStore) applyPatch(patch *UserPatch) {
	s.status.mu.Lock()

	var persist *entity.User
	if s.currentUser != nil && s.currentUser.ID == patch.ID {
		mergeUser(s.currentUser, patch)
		persisted := *s.currentUser
		persist = &persisted
	}
	if s.selectedUser != nil && s.selectedUser.ID == patch.ID {
		mergeUser(s.selectedUser, patch)
	}
	for i := range s.users {
		if s.users[i].ID == patch.ID {
			mergeUser(&s.users[i], patch)

			break
		}
	}
	s.status.mu.Unlock()

	if persist != nil {
		if err := s.storage.Save(persist); err != nil {
			s.logger.Warn("Failed to persist session", slog.Any("error", err))
		}
	}
}

// mergeUser applies the patch: scalar core fields individually, nested
// records wholesale, and only the parts the response actually carried.
func mergeUser(dst *entity.User, patch *UserPatch) {
	if patch.Mail != nil {
		dst.Mail = *patch.Mail
	}
	if patch.Phone != nil {
		dst.Phone = *patch.Phone
	}
	if patch.Role != nil {
		dst.Role = *patch.Role
	}
	if patch.Active != nil {
		dst.Active = *patch.Active
	}
	if patch.Verified != nil {
		dst.Verified = *patch.Verified
	}
	if patch.UpdatedAt != nil {
		dst.UpdatedAt = *patch.UpdatedAt
	}
	if patch.Detail != nil {
		dst.Detail = patch.Detail
	}
	if patch.Location != nil {
		dst.Location = patch.Location
	}
	if patch.EntrepreneurDetail != nil {
		dst.EntrepreneurDetail = patch.EntrepreneurDetail
	}
}

// DeleteUser deletes a user and filters the admin list locally. Pagination
// metadata is allowed to go stale until the next explicit fetch.
func (s *SessionStore) DeleteUser(ctx context.Context, userID int64) error {
	path, err := s.userPath(userID, "")
	if err != nil {
		return err
	}

	return s.status.call(func() (string, error) {
		message, err := s.client.Delete(ctx, path, nil, nil)
		if err != nil {
			return message, err
		}

		s.status.mu.Lock()
		filtered := s.users[:0]
		for _, u := range s.users {
			if u.ID != userID {
				filtered = append(filtered, u)
			}
		}
		s.users = filtered
		if s.selectedUser != nil && s.selectedUser.ID == userID {
			s.selectedUser = nil
		}
		s.status.mu.Unlock()

		return message, nil
	})
}

// ClearCurrentUser resets session state and the persisted identity. It does
// not touch the API client's token; that is the auth controller's job.
func (s *SessionStore) ClearCurrentUser() {
	s.status.mu.Lock()
	s.currentUser = nil
	s.status.mu.Unlock()

	if err := s.storage.Clear(); err != nil {
		s.logger.Warn("Failed to clear persisted session", slog.Any("error", err))
	}
}

// ClearStatus resets the error and message fields.
func (s *SessionStore) ClearStatus() { s.status.ClearStatus() }

func (s *SessionStore) userPath(userID int64, suffix string) (string, error) {
	base, err := s.client.Endpoint("users")
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%d%s", base, userID, suffix), nil
}

func pageQuery(page int) url.Values {
	if page < 1 {
		page = 1
	}

	return url.Values{"page": []string{strconv.Itoa(page)}}
}
