package session

import (
	"context"
	"strings"

	"github.com/yukikurage/teamtask/internal/client"
	"github.com/yukikurage/teamtask/internal/logger"
	"go.uber.org/zap"
)

const mePopulate = "populate=role,teams"

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Username    string `json:"username" validate:"required,min=3,max=50"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	UserType    string `json:"userType" validate:"omitempty,oneof=individual corporate"`
	CompanyName string `json:"companyName,omitempty" validate:"max=255"`
}

// ProfileInput carries the profile fields to change. Nil fields are kept.
type ProfileInput struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6"`
}

type loginInput struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// Manager runs the session lifecycle against the API.
type Manager struct {
	api     *client.Client
	holder  *Holder
	storage Storage
	log     *zap.Logger
}

// NewManager wires the manager to holder. The holder's 401 teardown also
// clears storage.
func NewManager(api *client.Client, holder *Holder, storage Storage, log *zap.Logger) *Manager {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	m := &Manager{
		api:     api,
		holder:  holder,
		storage: storage,
		log:     logger.OrNop(log).Named("session"),
	}
	holder.setExpireHook(m.clearStorage)
	return m
}

func (m *Manager) Holder() *Holder {
	return m.holder
}

// Restore loads persisted auth and validates it against the server.
// Any failure leaves the session signed out.
func (m *Manager) Restore(ctx context.Context) error {
	auth, err := m.storage.Load()
	if err != nil {
		m.log.Warn("failed to load session", zap.Error(err))
		m.clearStorage()
		return nil
	}
	if auth.Token == "" {
		return nil
	}

	m.holder.update(func(s *State) {
		s.Status = StatusAuthenticating
		s.Error = ""
	})

	var me client.User
	if err := m.api.Get(ctx, client.PathMe, &me, client.WithToken(auth.Token), client.WithRawQuery(mePopulate)); err != nil {
		m.log.Debug("stored session rejected", zap.Error(err))
		m.holder.update(func(s *State) {
			*s = State{Status: StatusUnauthenticated}
		})
		m.clearStorage()
		return nil
	}

	m.commit(auth.Token, &me)
	return nil
}

// Login signs in by username or email.
func (m *Manager) Login(ctx context.Context, identifier, password string) error {
	in := loginInput{Identifier: strings.TrimSpace(identifier), Password: password}
	if err := client.ValidateInput(in); err != nil {
		m.fail(err)
		return err
	}

	m.holder.update(func(s *State) {
		s.Status = StatusAuthenticating
		s.Error = ""
	})

	var resp client.AuthResponse
	if err := m.api.Post(ctx, client.PathLogin, in, &resp, client.WithToken("")); err != nil {
		m.fail(err)
		return err
	}

	var me client.User
	if err := m.api.Get(ctx, client.PathMe, &me, client.WithToken(resp.JWT), client.WithRawQuery(mePopulate)); err != nil {
		m.fail(err)
		return err
	}

	m.commit(resp.JWT, &me)
	return nil
}

// Register creates an account and signs in as it. Corporate accounts with a
// company name get a team named after the company on the server.
func (m *Manager) Register(ctx context.Context, in RegisterInput) error {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	if in.UserType == "" {
		in.UserType = "individual"
	}
	if err := client.ValidateInput(in); err != nil {
		m.fail(err)
		return err
	}

	m.holder.update(func(s *State) {
		s.Status = StatusAuthenticating
		s.Error = ""
	})

	var resp client.AuthResponse
	if err := m.api.Post(ctx, client.PathRegister, in, &resp, client.WithToken("")); err != nil {
		m.fail(err)
		return err
	}

	m.commit(resp.JWT, &resp.User)
	return nil
}

// Logout clears the session. Removing the notification token is best effort.
func (m *Manager) Logout(ctx context.Context) {
	token := m.holder.Token()
	m.holder.update(func(s *State) {
		*s = State{Status: StatusUnauthenticated}
	})
	m.clearStorage()

	if token == "" {
		return
	}
	if err := m.api.Delete(ctx, client.PathNotificationTokens, nil, nil, client.WithToken(token)); err != nil {
		m.log.Debug("notification token cleanup failed", zap.Error(err))
	}
}

// UpdateProfile updates the user and merges the result into the session.
func (m *Manager) UpdateProfile(ctx context.Context, userID uint64, in ProfileInput) (*client.User, error) {
	if err := client.ValidateInput(in); err != nil {
		return nil, err
	}

	var updated client.User
	if err := m.api.Put(ctx, client.Item(client.PathUsers, userID), in, &updated); err != nil {
		return nil, err
	}

	var auth Auth
	m.holder.update(func(s *State) {
		if s.User == nil || s.User.ID != updated.ID {
			return
		}
		merged := *s.User
		merged.Username = updated.Username
		merged.Email = updated.Email
		merged.Role = updated.Role
		merged.UpdatedAt = updated.UpdatedAt
		if updated.Teams != nil {
			merged.Teams = updated.Teams
		}
		s.User = &merged
		auth = Auth{Token: s.Token, User: &merged}
	})
	if auth.Token != "" {
		m.persist(auth)
	}
	return &updated, nil
}

// ClearError drops the stored error text.
func (m *Manager) ClearError() {
	m.holder.update(func(s *State) {
		s.Error = ""
	})
}

func (m *Manager) commit(token string, user *client.User) {
	m.holder.update(func(s *State) {
		*s = State{Token: token, User: user, Status: StatusAuthenticated}
	})
	m.persist(Auth{Token: token, User: user})
}

// fail marks the attempt as failed. The previous token is left in place.
func (m *Manager) fail(err error) {
	m.holder.update(func(s *State) {
		s.Status = StatusUnauthenticated
		s.Error = client.Message(err)
	})
}

func (m *Manager) persist(auth Auth) {
	if err := m.storage.Save(auth); err != nil {
		m.log.Warn("failed to persist session", zap.Error(err))
	}
}

func (m *Manager) clearStorage() {
	if err := m.storage.Clear(); err != nil {
		m.log.Warn("failed to clear session", zap.Error(err))
	}
}
