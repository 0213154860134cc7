package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type UserHandler struct {
	auth     *service.AuthService
	users    *service.UserService
	follows  *service.FollowService
	pageSize int
}

func NewUserHandler(auth *service.AuthService, users *service.UserService, follows *service.FollowService, pageSize int) *UserHandler {
	return &UserHandler{auth: auth, users: users, follows: follows, pageSize: pageSize}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup, auth, optional gin.HandlerFunc) {
	users := router.Group("/users")
	{
		users.POST("", h.Register)
		users.GET("", optional, h.ListUsers)
		users.GET("/me", auth, h.Me)
		users.POST("/set_password", auth, h.SetPassword)
		users.PUT("/me/avatar", auth, h.SetAvatar)
		users.DELETE("/me/avatar", auth, h.DeleteAvatar)
		users.GET("/subscriptions", auth, h.Subscriptions)
		users.GET("/followers", auth, h.Followers)
		users.GET("/:id", optional, h.GetUser)
		users.POST("/:id/subscribe", auth, h.Subscribe)
		users.DELETE("/:id/subscribe", auth, h.Unsubscribe)
	}
}

func userDetail(d *service.UserDetail) types.User {
	return toUser(&d.User, d.IsSubscribed)
}

func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err.Error())
		return
	}
	user, err := h.auth.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUser(user, false))
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page, ok := pageParams(c, h.pageSize)
	if !ok {
		return
	}
	result, err := h.users.List(c.Request.Context(), middleware.Actor(c), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPage(c, page, result, userDetail))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	detail, err := h.users.Get(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userDetail(detail))
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	detail, err := h.users.Get(c.Request.Context(), &userID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userDetail(detail))
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	var req types.SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err.Error())
		return
	}
	if err := h.auth.SetPassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) SetAvatar(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	var req types.AvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "avatar", err.Error())
		return
	}
	url, err := h.users.SetAvatar(c.Request.Context(), userID, req.Avatar)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatar": url})
}

func (h *UserHandler) DeleteAvatar(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	if err := h.users.DeleteAvatar(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscriptions lists the users the caller follows with up to
// recipes_limit of each one's newest recipes.
func (h *UserHandler) Subscriptions(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	page, ok := pageParams(c, h.pageSize)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "recipes_limit")
	if !ok {
		return
	}
	result, err := h.follows.Subscriptions(c.Request.Context(), userID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPage(c, page, result, toSubscription))
}

func (h *UserHandler) Followers(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	page, ok := pageParams(c, h.pageSize)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	result, err := h.follows.ListFollowers(ctx, userID, page)
	if err != nil {
		respondError(c, err)
		return
	}
	details, err := h.users.Decorate(ctx, &userID, result.Results)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPage(c, page, service.Paged[service.UserDetail]{Count: result.Count, Results: details}, userDetail))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	id, ok := pathID(c)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "recipes_limit")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.follows.Follow(ctx, userID, id); err != nil {
		respondError(c, err)
		return
	}
	sub, err := h.follows.Subscription(ctx, id, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSubscription(sub))
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.follows.Unfollow(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
