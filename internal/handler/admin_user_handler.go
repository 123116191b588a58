package handler

import (
	"net/http"

	"rewards/internal/config"
	"rewards/internal/domain/model"
	"rewards/internal/middleware"
	"rewards/internal/repository"
	"rewards/internal/usecase"
	auth "rewards/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

type AdminUserHandler struct {
	registerUC *auth.RegisterUserUsecase
	uc         *usecase.AdminUsecase
}

func NewAdminUserHandler(registerUC *auth.RegisterUserUsecase, uc *usecase.AdminUsecase) *AdminUserHandler {
	return &AdminUserHandler{registerUC: registerUC, uc: uc}
}

type createUserRequest struct {
	FirstName  string `json:"first_name" validate:"required,max=20"`
	LastName   string `json:"last_name" validate:"required,max=20"`
	Email      string `json:"email" validate:"required,max=120"`
	Password   string `json:"password" validate:"required"`
	Role       string `json:"role" validate:"required,role"`
	EmployerID *int64 `json:"employer_id" validate:"omitempty,gt=0"`
}

func (h *AdminUserHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	// /admin 配下は全部「JWT必須 + token_version一致 + ADMIN限定」
	admin := e.Group("/admin", append(authed(cfg, userRepo), middleware.AdminRoleGuard())...)

	admin.POST("/users", h.createUser)
	admin.DELETE("/users/:id", h.removeUser)
}

func (h *AdminUserHandler) createUser(c echo.Context) error {
	var req createUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	out, err := h.registerUC.Execute(c.Request().Context(), auth.RegisterUserInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Password:   req.Password,
		Role:       model.Role(req.Role),
		EmployerID: req.EmployerID,
	})
	if err != nil {
		return writeRegisterError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *AdminUserHandler) removeUser(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	userID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid user_id")
	}

	if err := h.uc.RemoveUser(c.Request().Context(), actorID, userID); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "user removed"})
}
