package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode"

	"rewards/internal/domain/model"
	"rewards/internal/domain/policy"
	repo "rewards/internal/repository"
)

type SponsorUsecase struct {
	tx     repo.TransactionManager
	repos  repo.TxRepos
	logger *slog.Logger
}

func NewSponsorUsecase(tx repo.TransactionManager, repos repo.TxRepos, logger *slog.Logger) *SponsorUsecase {
	return &SponsorUsecase{tx: tx, repos: repos, logger: logger}
}

// スポンサー作成。カタログ（Rules型、point_value=1）も同時に作る
func (u *SponsorUsecase) Create(ctx context.Context, name string) (model.Sponsor, error) {
	name, ok := sponsorName(name)
	if !ok {
		return model.Sponsor{}, validationError("name")
	}

	var out model.Sponsor
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		sponsor := model.Sponsor{Name: name}
		if err := r.Sponsors().Create(ctx, &sponsor); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return NewHTTPError(ErrConflict.Status, "sponsor already exists")
			}
			return internalError(err, "create sponsor")
		}
		catalog := model.Catalog{
			SponsorID:   sponsor.ID,
			CatalogType: model.CatalogTypeRules,
			PointValue:  model.DefaultPointValue,
		}
		if err := r.Catalogs().Create(ctx, &catalog); err != nil {
			return internalError(err, "create catalog")
		}
		out = sponsor
		return nil
	})
	if err != nil {
		return model.Sponsor{}, err
	}
	return out, nil
}

// 管理者か、そのスポンサーのマネージャー
func (u *SponsorUsecase) Rename(ctx context.Context, actorID, sponsorID int64, name string) (model.Sponsor, error) {
	name, ok := sponsorName(name)
	if !ok {
		return model.Sponsor{}, validationError("name")
	}
	actor, err := loadActor(ctx, u.repos.Users(), actorID)
	if err != nil {
		return model.Sponsor{}, err
	}
	if !policy.CanManageSponsor(actor, sponsorID) {
		return model.Sponsor{}, ErrAccessDenied
	}

	if err := u.repos.Sponsors().Rename(ctx, sponsorID, name); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return model.Sponsor{}, NewHTTPError(ErrConflict.Status, "sponsor already exists")
		}
		return model.Sponsor{}, repoError(err, "rename sponsor")
	}
	s, err := u.repos.Sponsors().FindByID(ctx, sponsorID)
	if err != nil {
		return model.Sponsor{}, repoError(err, "find sponsor")
	}
	return *s, nil
}

// 名前はメール件名にも入るので制御文字（改行など）は不可
func sponsorName(raw string) (string, bool) {
	name := strings.TrimSpace(raw)
	if name == "" || len(name) > 40 || strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return "", false
	}
	return name, true
}

func (u *SponsorUsecase) List(ctx context.Context) ([]model.Sponsor, error) {
	list, err := u.repos.Sponsors().List(ctx)
	if err != nil {
		return nil, internalError(err, "list sponsors")
	}
	return list, nil
}
