package repository

import (
	"context"

	"rewards/internal/domain/model"
	repo "rewards/internal/repository"

	"gorm.io/gorm"
)

type supportTicketGormRepository struct {
	db *gorm.DB
}

func NewSupportTicketGormRepository(db *gorm.DB) repo.SupportTicketRepository {
	return &supportTicketGormRepository{db: db}
}

func (r *supportTicketGormRepository) Create(ctx context.Context, ticket *model.SupportTicket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *supportTicketGormRepository) FindByID(ctx context.Context, ticketID int64) (model.SupportTicket, error) {
	var t model.SupportTicket
	err := r.db.WithContext(ctx).Take(&t, ticketID).Error
	return t, mapErr(err)
}

func (r *supportTicketGormRepository) List(ctx context.Context, userID *int64, limit, offset int) ([]model.SupportTicket, error) {
	q := r.db.WithContext(ctx).Model(&model.SupportTicket{})
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}

	list := []model.SupportTicket{}
	if err := q.Scopes(newestFirst, paginate(limit, offset)).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *supportTicketGormRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.SupportTicket{}).Error
}
