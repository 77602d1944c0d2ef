package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/careerflow/assessment-backend/internal/response"
	"github.com/careerflow/assessment-backend/internal/service"
)

// UserAdminHandler handles admin-facing user management.
type UserAdminHandler struct {
	userService *service.UserService
	authService *service.AuthService
}

// NewUserAdminHandler creates a new UserAdminHandler.
func NewUserAdminHandler(userService *service.UserService, authService *service.AuthService) *UserAdminHandler {
	return &UserAdminHandler{userService: userService, authService: authService}
}

// ListUsers godoc
// GET /api/v1/admin/users
// Lists registered users with pagination.
func (h *UserAdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	users, pagination, err := h.userService.List(c.Request.Context(), page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"users": users}, pagination)
}

// ResetUserSession godoc
// POST /api/v1/admin/users/:id/reset-session
// Clears a user's active login, allowing them to sign in on a new device.
func (h *UserAdminHandler) ResetUserSession(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.authService.ResetUserSession(c.Request.Context(), userID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "user session reset successfully"})
}

// DeleteUser godoc
// DELETE /api/v1/admin/users/:id
// Deletes a user; their sessions, answers and progress cascade.
func (h *UserAdminHandler) DeleteUser(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.userService.Delete(c.Request.Context(), userID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "user deleted successfully"})
}
