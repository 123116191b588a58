package auth

import (
	"context"
	"errors"
	"strings"

	"rewards/internal/domain/model"
	"rewards/internal/repository"
)

// 会員登録の入力
// ドライバーの自己登録ではRole=DRIVER固定、管理者は任意のロール
type RegisterUserInput struct {
	FirstName  string
	LastName   string
	Email      string
	Password   string
	Role       model.Role
	EmployerID *int64
}

type RegisterUserOutput struct {
	User model.User `json:"user"`
}

var (
	// 入力が不正
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrWeakPassword       = errors.New("weak password")
	ErrInvalidName        = errors.New("invalid name")
	ErrInvalidRole        = errors.New("invalid role")
	//マネージャー以外に所属スポンサーは付けない
	ErrInvalidEmployer = errors.New("invalid employer")

	// 競合
	ErrEmailAlreadyExists = errors.New("email already exists")
)

const minPasswordLength = 12

type RegisterUserUsecase struct {
	userRepo    repository.UserRepository
	sponsorRepo repository.SponsorRepository
	hasher      PasswordHasher
}

// DI
func NewRegisterUserUsecase(
	userRepo repository.UserRepository,
	sponsorRepo repository.SponsorRepository,
	hasher PasswordHasher,
) *RegisterUserUsecase {
	return &RegisterUserUsecase{
		userRepo:    userRepo,
		sponsorRepo: sponsorRepo,
		hasher:      hasher,
	}
}

// 会員登録実行
func (u *RegisterUserUsecase) Execute(ctx context.Context, in RegisterUserInput) (RegisterUserOutput, error) {
	var out RegisterUserOutput

	first := strings.TrimSpace(in.FirstName)
	last := strings.TrimSpace(in.LastName)
	if first == "" || last == "" || len(first) > 20 || len(last) > 20 {
		return out, ErrInvalidName
	}
	email, ok := normalizeEmail(in.Email)
	if !ok {
		return out, ErrInvalidEmailFormat
	}
	if err := checkPassword(in.Password); err != nil {
		return out, err
	}
	if !in.Role.Valid() {
		return out, ErrInvalidRole
	}

	//所属スポンサーはマネージャーのみ（存在確認もする）
	if in.EmployerID != nil {
		if in.Role != model.RoleStoreManager {
			return out, ErrInvalidEmployer
		}
		if _, err := u.sponsorRepo.FindByID(ctx, *in.EmployerID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return out, ErrInvalidEmployer
			}
			return out, err
		}
	}

	// email重複チェック
	existing, err := u.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return out, ErrEmailAlreadyExists
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return out, err
	}

	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return out, err
	}

	user := &model.User{
		Role:         in.Role,
		FirstName:    first,
		LastName:     last,
		Email:        email,
		PasswordHash: hashed,
		EmployerID:   in.EmployerID,
		IssueAlert:   true,
		OrderAlert:   true,
		PointsAlert:  true,
	}

	if err := u.userRepo.Create(ctx, user); err != nil {
		//同時登録は一意制約で弾かれる
		if errors.Is(err, repository.ErrDuplicate) {
			return out, ErrEmailAlreadyExists
		}
		return out, err
	}

	out.User = *user
	return out, nil
}
