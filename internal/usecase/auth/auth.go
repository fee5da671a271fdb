package auth

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
)

const CodeInvalidCredentials = "invalid_credentials"

var errInvalidCredentials = httperr.BusinessError{
	Kind:    httperr.KindValidation,
	Code:    CodeInvalidCredentials,
	Message: "Invalid username or password.",
}

type Deps struct {
	Users  user.Repository
	Audit  audit.Recorder
	Clock  timezone.Clock
	Log    *zap.Logger
	Secret string
	TTL    time.Duration
}

type Result struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type Login struct {
	deps Deps
}

func NewLogin(deps Deps) *Login {
	if deps.Audit == nil {
		deps.Audit = audit.Nop{}
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.TTL == 0 {
		deps.TTL = 24 * time.Hour
	}
	return &Login{deps: deps}
}

// Execute checks the password and issues a signed token whose sub claim is
// the actor id for every later mutation.
func (uc *Login) Execute(ctx context.Context, username, password string) (*Result, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return nil, errInvalidCredentials
	}

	u, err := uc.deps.Users.GetUserByUsername(ctx, username)
	if err != nil {
		if httperr.IsKind(err, httperr.KindNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}
	if !user.AccessLevel(u.AccessLevel).Valid() {
		return nil, httperr.ErrValidation("invalid_access_level", "Account has no usable access level.")
	}

	now := uc.deps.Clock.Now()
	token, err := uc.generateToken(u, now)
	if err != nil {
		return nil, httperr.ErrStorage(err)
	}

	if err := uc.deps.Users.TouchLastLogin(ctx, u.ID, now); err != nil {
		uc.deps.Log.Warn("last login not saved", zap.Uint("user_id", u.ID), zap.Error(err))
	} else {
		u.LastLogin = &now
	}

	uc.deps.Audit.Record(audit.Event{
		ActorID:  u.ID,
		Action:   audit.ActionLogin,
		Table:    audit.TableUsers,
		RecordID: u.ID,
	})
	uc.deps.Log.Info("user logged in",
		zap.Uint("user_id", u.ID),
		zap.String("access_level", u.AccessLevel),
	)
	return &Result{User: u, Token: token}, nil
}

func (uc *Login) generateToken(u *models.User, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":          u.ID,
		"access_level": u.AccessLevel,
		"exp":          now.Add(uc.deps.TTL).Unix(),
		"iat":          now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(uc.deps.Secret))
}

// EnsureAdmin creates the bootstrap admin account when it does not exist.
// It reports whether a user was created.
func EnsureAdmin(ctx context.Context, users user.Repository, username, password string) (bool, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return false, nil
	}

	_, err := users.GetUserByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !httperr.IsKind(err, httperr.KindNotFound) {
		return false, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, httperr.ErrStorage(err)
	}

	u := &models.User{
		Username:     username,
		Name:         "Administrator",
		PasswordHash: string(hashed),
		AccessLevel:  string(user.AccessAdmin),
	}
	if err := users.CreateUser(ctx, u); err != nil {
		return false, err
	}
	return true, nil
}
