package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"BlockMatch/config"
	"BlockMatch/internal/engine"
	"BlockMatch/internal/history"
	"BlockMatch/internal/matchmaker"
	"BlockMatch/internal/middleware"
	"BlockMatch/internal/storage"
	"BlockMatch/internal/utils"
	"BlockMatch/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	config.Load()
	utils.Init()

	//-------------------------------------------------------
	// 1. 初始化 Redis
	//-------------------------------------------------------
	if err := storage.InitRedis(
		context.Background(),
		config.C.Redis.Addr,
		config.C.Redis.Password,
		config.C.Redis.DB,
	); err != nil {
		utils.Error.Fatalf("Redis init failed: %v", err)
	}

	//-------------------------------------------------------
	// 2. 初始化 Gin + CORS
	//-------------------------------------------------------
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	//-------------------------------------------------------
	// 3. 初始化 Hub（必须最先启动）
	//-------------------------------------------------------
	hub := websocket.NewHub()
	go hub.Run()

	//-------------------------------------------------------
	// 4. 初始化匹配引擎（单写 actor）
	//-------------------------------------------------------
	modes := make(map[string]engine.Mode, len(config.C.Match.Modes))
	for name, m := range config.C.Match.Modes {
		modes[name] = engine.Mode{Hosts: m.Hosts, Joins: m.Joins}
	}
	eng, err := engine.New(engine.Config{
		Modes:           modes,
		QueueCapacity:   config.C.Match.QueueCapacity,
		CommandBuffer:   config.C.Match.CommandBuffer,
		SweepInterval:   config.C.Match.SweepInterval,
		DefaultDeadline: config.C.Match.DefaultDeadline,
	})
	if err != nil {
		utils.Error.Fatalf("engine config invalid: %v", err)
	}
	if err := eng.Start(); err != nil {
		utils.Error.Fatalf("engine start failed: %v", err)
	}

	//-------------------------------------------------------
	// 5. 匹配服务（成局落 Redis + 广播；可选 Postgres 归档）
	//-------------------------------------------------------
	store := history.NewRedisStore(storage.Rdb)
	svc := matchmaker.NewService(eng, store, hub, config.C.Match.MatchTTL)

	if dsn := config.C.Database.DSN; dsn != "" {
		if err := storage.InitPostgres(context.Background(), dsn); err != nil {
			utils.Error.Fatalf("Postgres init failed: %v", err)
		}
		svc.WithArchive(history.NewArchive(storage.DB))
	}

	// WebSocket 上行（cancel）转给匹配服务
	hub.OnIncoming = svc.HandleIncoming

	//-------------------------------------------------------
	// 6. 路由（JWT 保护）
	//-------------------------------------------------------
	secret := ([]byte)(config.C.JWT.Secret)
	auth := r.Group("/", middleware.JwtAuthMiddleware(secret))
	{
		auth.GET("/ws", websocket.ServeWS(hub))

		mh := matchmaker.NewHandler(svc)
		auth.POST("/match/join", mh.Join)
		auth.POST("/match/cancel", mh.Cancel)
		auth.GET("/match/stats", mh.Stats)
	}

	//-------------------------------------------------------
	// 7. 启动服务器 + 优雅退出
	//-------------------------------------------------------
	srv := &http.Server{Addr: config.C.Server.Port, Handler: r}
	go func() {
		utils.Print.Info("Server running", "addr", config.C.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Error.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// 先关引擎：排空在途操作，所有等待中的玩家收到 closed
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := eng.Close(ctx); err != nil {
		utils.Error.Printf("engine close: %v", err)
	}
	hub.Close()
	_ = srv.Shutdown(ctx)
	utils.Print.Info("Server stopped")
}
