package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"bookstore/internal/config"
	"bookstore/internal/handlers"
	"bookstore/internal/metrics"
	"bookstore/internal/middlewares"
	"bookstore/internal/services"
	"bookstore/internal/storage"
)

// main 为用户服务入口：加载配置、初始化日志/存储/服务、注册路由并启动 HTTP 服务。
func main() {
	// 配置结构化日志格式
	log.SetFormatter(&log.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)

	// 加载配置（以配置文件为主，配合内置默认值）
	cfg := config.Load()
	// 生产环境基线检查：禁止无密码数据库进入生产。
	if cfg.Env == "prod" && cfg.MySQL.Password == "" {
		log.Fatal("insecure mysql password in prod; configure mysql.password in config.yaml")
	}
	log.WithFields(log.Fields{
		"env":        cfg.Env,
		"http_addr":  cfg.User.HTTPAddr,
		"mysql_dsn":  cfg.MySQL.DSNMasked(),
		"redis_addr": cfg.Redis.Addr,
	}).Info("configuration loaded")

	// 初始化存储（MySQL + Redis）
	db, err := storage.InitMySQL(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to connect mysql")
	}
	defer storage.CloseMySQL(db)

	rdb, err := storage.InitRedis(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to connect redis")
	}
	defer func() { _ = rdb.Close() }()

	// 初始化核心服务
	userSvc := services.NewUserService(db)
	tokenSvc := services.NewTokenService(rdb, cfg.Session.TokenTTL)
	logSvc := services.NewLogService(db)

	// HTTP 路由与中间件
	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middlewares.RequestID())
	router.Use(middlewares.RequestLogger())
	router.Use(middlewares.CORS(cfg.CORS))
	router.Use(metrics.Handler())

	// 装载 HTTP 处理器
	h := handlers.NewUser(cfg, userSvc, tokenSvc, logSvc, rdb)
	h.RegisterRoutes(router)

	srv := &http.Server{Addr: cfg.User.HTTPAddr, Handler: router}
	go func() {
		log.WithField("addr", cfg.User.HTTPAddr).Info("starting user http server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("listen")
		}
	}()

	// 优雅退出
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server shutdown")
	} else {
		log.Info("server stopped")
	}
}
