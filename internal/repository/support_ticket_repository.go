package repository

import (
	"context"

	"rewards/internal/domain/model"
)

type SupportTicketRepository interface {
	Create(ctx context.Context, ticket *model.SupportTicket) error
	FindByID(ctx context.Context, ticketID int64) (model.SupportTicket, error)
	//userID=nilなら全件
	List(ctx context.Context, userID *int64, limit, offset int) ([]model.SupportTicket, error)
	DeleteByUserID(ctx context.Context, userID int64) error
}
