package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/swas/backend/internal/application/branch"
	"github.com/swas/backend/internal/domain/shared"
	"github.com/swas/backend/internal/interfaces/http/middleware"
)

// BranchService is the part of branch.BranchService the handler needs
type BranchService interface {
	List(ctx context.Context) ([]branch.BranchResponse, error)
	Get(ctx context.Context, branchID string) (*branch.BranchResponse, error)
	Create(ctx context.Context, scope shared.Scope, req branch.CreateBranchRequest) (*branch.BranchResponse, error)
	Update(ctx context.Context, scope shared.Scope, branchID string, req branch.UpdateBranchRequest) (*branch.BranchResponse, error)
}

// BranchHandler handles branch endpoints
type BranchHandler struct {
	BaseHandler
	branchService BranchService
}

// NewBranchHandler creates a new BranchHandler
func NewBranchHandler(branchService BranchService) *BranchHandler {
	return &BranchHandler{branchService: branchService}
}

// List godoc
// @ID           listBranches
// @Summary      List branches
// @Description  All branches and hubs ordered by branch number
// @Tags         branches
// @Produce      json
// @Success      200 {object} APIResponse[[]branch.BranchResponse]
// @Security     BearerAuth
// @Router       /branches [get]
func (h *BranchHandler) List(c *gin.Context) {
	branches, err := h.branchService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessList(&h.BaseHandler, c, branches)
}

// Get godoc
// @ID           getBranch
// @Summary      Get branch
// @Tags         branches
// @Produce      json
// @Param        id path string true "Branch ID"
// @Success      200 {object} APIResponse[branch.BranchResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /branches/{id} [get]
func (h *BranchHandler) Get(c *gin.Context) {
	b, err := h.branchService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, b)
}

// Create godoc
// @ID           createBranch
// @Summary      Create branch
// @Description  Register a branch or hub. The id is derived from code, type and region when omitted.
// @Tags         branches
// @Accept       json
// @Produce      json
// @Param        request body branch.CreateBranchRequest true "Branch"
// @Success      201 {object} APIResponse[branch.BranchResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /branches [post]
func (h *BranchHandler) Create(c *gin.Context) {
	var req branch.CreateBranchRequest
	if !h.BindJSON(c, &req) {
		return
	}
	b, err := h.branchService.Create(c.Request.Context(), middleware.GetScope(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, b)
}

// Update godoc
// @ID           updateBranch
// @Summary      Update branch
// @Tags         branches
// @Accept       json
// @Produce      json
// @Param        id path string true "Branch ID"
// @Param        request body branch.UpdateBranchRequest true "Branch changes"
// @Success      200 {object} APIResponse[branch.BranchResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /branches/{id} [put]
func (h *BranchHandler) Update(c *gin.Context) {
	var req branch.UpdateBranchRequest
	if !h.BindJSON(c, &req) {
		return
	}
	b, err := h.branchService.Update(c.Request.Context(), middleware.GetScope(c), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, b)
}
