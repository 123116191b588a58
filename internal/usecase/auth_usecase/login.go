package auth

import (
	"context"
	"errors"
	"strings"

	"rewards/internal/domain/model"
	"rewards/internal/repository"
)

// 未登録とパスワード違いは区別しない
var ErrInvalidCredentials = errors.New("invalid credentials")

type LoginInput struct {
	Email    string
	Password string
}

type AccessToken struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"` // 秒
	TokenVersion int    `json:"token_version"`
}

type LoginOutput struct {
	User  model.User  `json:"user"`
	Token AccessToken `json:"token"`
}

type LoginUsecase struct {
	users    repository.UserRepository
	verifier PasswordVerifier
	issuer   AccessTokenIssuer
	clock    Clock
}

func NewLoginUsecase(users repository.UserRepository, verifier PasswordVerifier, issuer AccessTokenIssuer, clock Clock) *LoginUsecase {
	return &LoginUsecase{users: users, verifier: verifier, issuer: issuer, clock: clock}
}

func (u *LoginUsecase) Execute(ctx context.Context, in LoginInput) (LoginOutput, error) {
	user, err := u.authenticate(ctx, strings.TrimSpace(in.Email), in.Password)
	if err != nil {
		return LoginOutput{}, err
	}

	now := u.clock.Now()
	signed, exp, err := u.issuer.Issue(user.ID, user.Role, user.TokenVersion, now)
	if err != nil {
		return LoginOutput{}, err
	}

	return LoginOutput{
		User: *user,
		Token: AccessToken{
			AccessToken:  signed,
			ExpiresIn:    int(exp.Sub(now).Seconds()),
			TokenVersion: user.TokenVersion,
		},
	}, nil
}

func (u *LoginUsecase) authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := u.users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrInvalidCredentials
	case err != nil:
		return nil, err
	case !u.verifier.Verify(password, user.PasswordHash):
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
