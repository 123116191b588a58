package usecase

import (
	"context"
	"log/slog"
	"strings"

	"rewards/internal/domain/model"
	"rewards/internal/domain/policy"
	repo "rewards/internal/repository"
)

// サポートチケット
type TicketUsecase struct {
	repos  repo.TxRepos
	logger *slog.Logger
}

func NewTicketUsecase(repos repo.TxRepos, logger *slog.Logger) *TicketUsecase {
	return &TicketUsecase{repos: repos, logger: logger}
}

func (u *TicketUsecase) Create(ctx context.Context, actorID int64, title, description string) (model.SupportTicket, error) {
	actor, err := loadActor(ctx, u.repos.Users(), actorID)
	if err != nil {
		return model.SupportTicket{}, err
	}
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" || len(title) > 100 {
		return model.SupportTicket{}, validationError("title")
	}
	if description == "" {
		return model.SupportTicket{}, validationError("description")
	}

	t := model.SupportTicket{UserID: actor.ID, Title: title, Description: description}
	if err := u.repos.Tickets().Create(ctx, &t); err != nil {
		return model.SupportTicket{}, internalError(err, "create ticket")
	}
	return t, nil
}

func (u *TicketUsecase) Get(ctx context.Context, actorID, ticketID int64) (model.SupportTicket, error) {
	actor, err := loadActor(ctx, u.repos.Users(), actorID)
	if err != nil {
		return model.SupportTicket{}, err
	}
	t, err := u.repos.Tickets().FindByID(ctx, ticketID)
	if err != nil {
		return model.SupportTicket{}, repoError(err, "find ticket")
	}
	if !policy.CanViewTicket(actor, t) {
		return model.SupportTicket{}, ErrAccessDenied
	}
	return t, nil
}

// 管理者は全件、それ以外は自分のチケット
func (u *TicketUsecase) List(ctx context.Context, actorID int64, limit, offset int) ([]model.SupportTicket, error) {
	actor, err := loadActor(ctx, u.repos.Users(), actorID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var userID *int64
	if actor.Role != model.RoleAdmin {
		userID = &actor.ID
	}
	list, err := u.repos.Tickets().List(ctx, userID, limit, offset)
	if err != nil {
		return nil, internalError(err, "list tickets")
	}
	return list, nil
}
