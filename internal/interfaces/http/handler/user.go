package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	appidentity "github.com/swas/backend/internal/application/identity"
	"github.com/swas/backend/internal/domain/identity"
	"github.com/swas/backend/internal/interfaces/http/middleware"
)

// UserService is the part of appidentity.UserService the handler needs
type UserService interface {
	List(ctx context.Context, actor appidentity.Actor, branchID string) ([]appidentity.UserDTO, error)
	Create(ctx context.Context, actor appidentity.Actor, input appidentity.CreateUserInput) (*appidentity.UserDTO, error)
	Delete(ctx context.Context, actor appidentity.Actor, userID string) error
}

// CreateUserRequest represents the body for creating an account
type CreateUserRequest struct {
	UserID   string `json:"user_id" binding:"required,min=3,max=100"`
	BranchID string `json:"branch_id" binding:"required,max=32"`
	Position string `json:"position" binding:"required,oneof=superadmin admin staff"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// UserHandler handles account management
type UserHandler struct {
	BaseHandler
	userService UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func identityActor(c *gin.Context) appidentity.Actor {
	return appidentity.Actor{UserID: middleware.GetUserID(c), Scope: middleware.GetScope(c)}
}

// List godoc
// @ID           listUsers
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        branch_id query string false "Branch filter"
// @Success      200 {object} APIResponse[[]appidentity.UserDTO]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context(), identityActor(c), c.Query("branch_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessList(&h.BaseHandler, c, users)
}

// Create godoc
// @ID           createUser
// @Summary      Create user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body CreateUserRequest true "New account"
// @Success      201 {object} APIResponse[appidentity.UserDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.userService.Create(c.Request.Context(), identityActor(c), appidentity.CreateUserInput{
		UserID:   req.UserID,
		BranchID: req.BranchID,
		Position: identity.Position(req.Position),
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}

// Delete godoc
// @ID           deleteUser
// @Summary      Delete user
// @Description  Remove an account and revoke its tokens. Callers cannot delete themselves.
// @Tags         users
// @Param        id path string true "User ID"
// @Success      204
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.userService.Delete(c.Request.Context(), identityActor(c), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
