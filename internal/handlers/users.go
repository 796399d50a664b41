package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"bookstore/internal/config"
	"bookstore/internal/metrics"
	"bookstore/internal/middlewares"
	"bookstore/internal/services"
)

// UserHandler 聚合用户服务的依赖并注册全部账号路由。
type UserHandler struct {
	cfg      config.Config
	userSvc  *services.UserService
	tokenSvc *services.TokenService
	logSvc   *services.LogService
	rdb      *redis.Client
}

// NewUser 构造用户服务的 HTTP 处理器。rdb 仅用于登录限流，可以为 nil（测试）。
func NewUser(cfg config.Config, us *services.UserService, ts *services.TokenService, ls *services.LogService, rdb *redis.Client) *UserHandler {
	return &UserHandler{cfg: cfg, userSvc: us, tokenSvc: ts, logSvc: ls, rdb: rdb}
}

// RegisterRoutes 在 Gin 路由上挂载用户服务的全部端点。
func (h *UserHandler) RegisterRoutes(r *gin.Engine) {
	r.POST("/users/register", h.register)
	if h.rdb != nil && h.cfg.Limits.LoginPerMinute > 0 {
		window := h.cfg.Limits.Window
		if window <= 0 {
			window = time.Minute
		}
		r.POST("/users/login", middlewares.RateLimit(h.rdb, "login", h.cfg.Limits.LoginPerMinute, window,
			func(c *gin.Context) string { return c.ClientIP() }), h.login)
	} else {
		r.POST("/users/login", h.login)
	}
	r.GET("/users", h.listUsers)
	r.GET("/users/:id", h.getUser)
	r.PUT("/users/:id", h.updateUser)
	r.DELETE("/users/:id", h.deleteUser)

	// 运维端点
	r.GET("/metrics", metrics.Exposer())
	r.GET("/healthz", h.healthz)
}

// @Summary      健康检查
// @Tags         ops
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /healthz [get]
func (h *UserHandler) healthz(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) }

// @Summary      注册账号
// @Description  口令在任何存储写入前经 bcrypt 哈希；重复的用户名/邮箱由数据库唯一约束拒绝
// @Tags         users
// @Accept       json
// @Produce      json
// @Success      201 {object} map[string]string
// @Failure      400 {object} map[string]string
// @Failure      500 {object} map[string]string
// @Router       /users/register [post]
func (h *UserHandler) register(c *gin.Context) {
	var req struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
		Password *string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == nil || req.Email == nil || req.Password == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username, email and password are required"})
		return
	}
	u, err := h.userSvc.Register(c, *req.Username, *req.Email, *req.Password)
	if err != nil {
		// 重复账号等存储层错误不单独分类，统一按服务器错误返回
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	metrics.UsersRegistered.Inc()
	h.logSvc.Write(c, "INFO", "USER_REGISTERED", h.logSvc.IDPtr(u.ID), "user registered", c.ClientIP(), requestID(c))
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

// @Summary      登录
// @Description  未注册邮箱与口令不匹配返回同一个 401，避免泄露邮箱是否存在
// @Tags         users
// @Accept       json
// @Produce      json
// @Success      200 {object} map[string]string "message + token"
// @Failure      401 {object} map[string]string
// @Failure      500 {object} map[string]string
// @Router       /users/login [post]
func (h *UserHandler) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = c.ShouldBindJSON(&req)
	u, err := h.userSvc.FindByEmail(c, req.Email)
	if err != nil || !h.userSvc.CheckPassword(u, req.Password) {
		metrics.LoginFailures.Inc()
		h.logSvc.Write(c, "WARN", "USER_LOGIN_FAILED", nil, "bad credentials", c.ClientIP(), requestID(c))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	tok, err := h.tokenSvc.Issue(c, u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	h.logSvc.Write(c, "INFO", "USER_LOGIN", h.logSvc.IDPtr(u.ID), "login success", c.ClientIP(), requestID(c))
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "token": tok})
}

// @Summary      用户列表
// @Description  返回全部用户；password_hash 永不出现在响应体中
// @Tags         users
// @Produce      json
// @Success      200 {array} storage.User
// @Failure      500 {object} map[string]string
// @Router       /users [get]
func (h *UserHandler) listUsers(c *gin.Context) {
	users, err := h.userSvc.List(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// @Summary      按 id 查询用户
// @Tags         users
// @Produce      json
// @Param        id path int true "用户 id"
// @Success      200 {object} storage.User
// @Failure      404 {object} map[string]string
// @Router       /users/{id} [get]
func (h *UserHandler) getUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}
	u, err := h.userSvc.FindByID(c, id)
	if err != nil {
		if err == services.ErrUserNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, u)
}

// @Summary      部分更新用户
// @Description  只更新请求中出现的字段（email/password）；两者都缺席返回 400
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id path int true "用户 id"
// @Success      200 {object} map[string]string
// @Failure      400 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Router       /users/{id} [put]
func (h *UserHandler) updateUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}
	var req struct {
		Email    *string `json:"email"`
		Password *string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || (req.Email == nil && req.Password == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email or password is required"})
		return
	}
	if err := h.userSvc.UpdateFields(c, id, req.Email, req.Password); err != nil {
		if err == services.ErrUserNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully"})
}

// @Summary      删除用户
// @Description  由删除语句自身的影响行数区分 404，无需先行读取
// @Tags         users
// @Produce      json
// @Param        id path int true "用户 id"
// @Success      200 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Router       /users/{id} [delete]
func (h *UserHandler) deleteUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}
	if err := h.userSvc.Delete(c, id); err != nil {
		if err == services.ErrUserNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
