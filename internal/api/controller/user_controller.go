package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ctchen222/tictactoe-ai/internal/api/models"
	"ctchen222/tictactoe-ai/internal/api/response"
	"ctchen222/tictactoe-ai/internal/api/service"
)

// UserController handles user-related HTTP requests.
type UserController struct {
	userService service.UserService
}

func NewUserController(userService service.UserService) *UserController {
	return &UserController{
		userService: userService,
	}
}

func (uc *UserController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	token, err := uc.userService.Register(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.CreatedResponse(c, token)
}

func (uc *UserController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	token, err := uc.userService.Login(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.SuccessResponse(c, token)
}

// GuestLogin hands out a token for an anonymous player.
func (uc *UserController) GuestLogin(c *gin.Context) {
	token, err := uc.userService.GuestLogin(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	response.SuccessResponse(c, token)
}
