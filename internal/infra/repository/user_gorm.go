package repository

import (
	"context"

	"rewards/internal/domain/model"
	domainrepo "rewards/internal/repository"

	"gorm.io/gorm"
)

type UserGormRepository struct {
	db *gorm.DB
}

func NewUserGormRepository(db *gorm.DB) *UserGormRepository {
	return &UserGormRepository{db: db}
}

var _ domainrepo.UserRepository = (*UserGormRepository)(nil)

func (r *UserGormRepository) Create(ctx context.Context, user *model.User) error {
	return mapErr(r.db.WithContext(ctx).Create(user).Error)
}

func (r *UserGormRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.takeOne(ctx, "email = ?", email)
}

func (r *UserGormRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	return r.takeOne(ctx, "id = ?", id)
}

func (r *UserGormRepository) takeOne(ctx context.Context, cond string, arg any) (*model.User, error) {
	u := &model.User{}
	if err := r.db.WithContext(ctx).Where(cond, arg).Take(u).Error; err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

// 全カラム上書き（bool falseもそのまま書く）
func (r *UserGormRepository) Update(ctx context.Context, user *model.User) error {
	return mapErr(r.db.WithContext(ctx).Save(user).Error)
}

// スポンサー所属の店舗マネージャー一覧
func (r *UserGormRepository) ListByEmployer(ctx context.Context, sponsorID int64) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where(&model.User{EmployerID: &sponsorID, Role: model.RoleStoreManager}).
		Order("id").
		Find(&users).Error
	return users, err
}

func (r *UserGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.User{}, id)
	switch {
	case res.Error != nil:
		return res.Error
	case res.RowsAffected == 0:
		return domainrepo.ErrNotFound
	}
	return nil
}
