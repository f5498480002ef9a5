package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/wfunc/rpg-game/internal/api"
	"github.com/wfunc/rpg-game/internal/config"
	"github.com/wfunc/rpg-game/internal/database"
	"github.com/wfunc/rpg-game/internal/errors"
	"github.com/wfunc/rpg-game/internal/logger"
	"github.com/wfunc/rpg-game/internal/service"
	"go.uber.org/zap"
)

// 版本信息
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// 服务器实例
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	router      *api.Router
	httpServer  *http.Server
	stopCleanup func()
}

func main() {
	// 命令行参数
	var (
		configPath  = flag.String("config", "", "配置文件路径")
		showVersion = flag.Bool("version", false, "显示版本信息")
		showHelp    = flag.Bool("help", false, "显示帮助信息")
	)

	flag.Parse()

	// 显示版本信息
	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	// 显示帮助信息
	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	// 加载配置
	if err := config.Init(*configPath); err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Get()

	// 初始化日志系统
	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Printf("初始化日志失败: %v\n", err)
		os.Exit(1)
	}

	// 创建服务器实例
	server := NewServer(cfg)

	// 启动服务器
	if err := server.Start(); err != nil {
		logger.Fatal("服务器启动失败", zap.Error(err))
	}

	// 等待退出信号
	server.WaitForShutdown()

	// 优雅关闭
	if err := server.Shutdown(); err != nil {
		logger.Error("服务器关闭失败", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("服务器已安全关闭")
}

// NewServer 创建服务器实例
func NewServer(cfg *config.Config) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger.GetLogger(),
	}
}

// Start 启动服务器
func (s *Server) Start() error {
	s.logger.Info("正在启动RPG游戏服务器...",
		zap.String("version", Version),
		zap.String("mode", s.cfg.Server.Mode),
	)

	// 初始化数据库
	if err := s.initDatabase(); err != nil {
		return err
	}

	// 初始化路由和服务
	s.router = api.NewRouter(database.GetDB(), serviceConfig(s.cfg), s.logger)

	// 启动聊天中心
	go s.router.GetHub().Run()

	// 启动战斗会话回收
	s.stopCleanup = s.router.GetServices().Registry.StartCleanupLoop(
		s.cfg.Game.Combat.CleanupInterval,
		s.cfg.Game.Combat.SessionTimeout,
	)

	// 启动HTTP服务
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router.GetEngine(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("HTTP服务器异常退出", zap.Error(err))
		}
	}()

	// 监听配置变化
	config.Watch(func(newCfg *config.Config) {
		s.logger.Info("配置已更新，正在重新加载...")
		s.cfg = newCfg
	})

	s.logger.Info("服务器启动成功", zap.String("http", addr))
	return nil
}

// initDatabase 初始化数据库
func (s *Server) initDatabase() error {
	s.logger.Info("初始化数据库...")

	if err := database.Init(&s.cfg.Database); err != nil {
		return errors.Wrap(err, errors.ErrDatabaseConnect, "初始化数据库连接失败")
	}

	if s.cfg.Database.AutoMigrate {
		s.logger.Info("执行数据库自动迁移...")
		if err := database.AutoMigrate(); err != nil {
			return errors.Wrap(err, errors.ErrDatabaseConnect, "数据库迁移失败")
		}
	}

	if !database.IsConnected() {
		return errors.New(errors.ErrDatabaseConnect, "数据库连接检查失败")
	}

	s.logger.Info("数据库初始化完成")
	return nil
}

// WaitForShutdown 等待关闭信号
func (s *Server) WaitForShutdown() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)

	sig := <-sigCh
	s.logger.Info("收到退出信号", zap.String("signal", sig.String()))
}

// Shutdown 优雅关闭服务器
func (s *Server) Shutdown() error {
	s.logger.Info("正在优雅关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	// 停止接收新请求
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("关闭超时，强制退出", zap.Error(err))
			return errors.Wrap(err, errors.ErrTimeout, "HTTP服务器关闭超时")
		}
	}

	// 停止战斗会话回收
	if s.stopCleanup != nil {
		s.stopCleanup()
	}

	// 关闭聊天中心
	if s.router != nil {
		s.router.GetHub().Stop()
	}

	// 关闭数据库连接
	if err := database.Close(); err != nil {
		s.logger.Error("关闭数据库失败", zap.Error(err))
	}

	// 同步日志
	if err := logger.Sync(); err != nil {
		fmt.Printf("同步日志失败: %v\n", err)
	}

	return nil
}

// serviceConfig 把全局配置映射到业务层配置
func serviceConfig(cfg *config.Config) *service.Config {
	sc := service.DefaultConfig()

	if cfg.Security.JWT.Secret != "" {
		sc.JWTSecret = cfg.Security.JWT.Secret
	}
	if cfg.Security.JWT.ExpireHours > 0 {
		sc.AccessTokenExpiry = time.Duration(cfg.Security.JWT.ExpireHours) * time.Hour
	}
	if cfg.Security.JWT.RefreshHours > 0 {
		sc.RefreshTokenExpiry = time.Duration(cfg.Security.JWT.RefreshHours) * time.Hour
	}

	if cfg.Game.Character.MaxPerUser > 0 {
		sc.MaxCharactersPerUser = cfg.Game.Character.MaxPerUser
	}
	if cfg.Game.Character.StartingGold > 0 {
		sc.StartingGold = cfg.Game.Character.StartingGold
	}
	if cfg.Game.Character.InventoryCapacity > 0 {
		sc.InventoryCapacity = cfg.Game.Character.InventoryCapacity
	}

	if cfg.Game.Combat.MaxSessions > 0 {
		sc.MaxCombatSessions = cfg.Game.Combat.MaxSessions
	}
	if cfg.Game.Combat.SessionTimeout > 0 {
		sc.CombatSessionTimeout = cfg.Game.Combat.SessionTimeout
	}

	return sc
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Printf("RPG游戏服务器\n")
	fmt.Printf("版本: %s\n", Version)
	fmt.Printf("构建时间: %s\n", BuildTime)
	fmt.Printf("Git提交: %s\n", GitCommit)
	fmt.Printf("Go版本: %s\n", runtime.Version())
	fmt.Printf("操作系统: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

// printHelp 打印帮助信息
func printHelp() {
	fmt.Println("RPG游戏服务器")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  rpg-game-server [选项]")
	fmt.Println()
	fmt.Println("选项:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("环境变量:")
	fmt.Println("  RPG_GAME_SERVER_PORT   服务端口")
	fmt.Println("  RPG_GAME_DATABASE_DSN  数据库连接串")
	fmt.Println()
	fmt.Println("示例:")
	fmt.Println("  rpg-game-server -config=/path/to/config.yaml")
	fmt.Println("  rpg-game-server -version")
}
