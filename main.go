package main

import (
	"fmt"
	"os"

	"whodunnit-be/internal/api/http"
	"whodunnit-be/internal/config"
	"whodunnit-be/internal/logger"
	"whodunnit-be/internal/service"
	"whodunnit-be/internal/service/game"
	"whodunnit-be/internal/service/narration"
	"whodunnit-be/internal/state"

	"go.uber.org/zap"
)

func main() {
	// 加载配置
	cfg := config.InitConfig()

	// 初始化日志器
	logger.InitLogger(cfg.LogLevel, cfg.LogFormat)
	defer zap.L().Sync()

	// 加载角色表与主题
	catalog, err := loadCatalog(cfg.CatalogFile)
	if err != nil {
		zap.L().Fatal("加载角色表失败", zap.String("file", cfg.CatalogFile), zap.Error(err))
	}

	themes, err := narration.NewRegistry(cfg.DefaultTheme)
	if err != nil {
		zap.L().Fatal("加载主题失败", zap.Error(err))
	}

	sessionSvc := service.NewSessionService(service.SessionConfig{
		Catalog:         catalog,
		Themes:          themes,
		TTL:             cfg.SessionTTL,
		CleanupInterval: cfg.CleanupInterval,
		DevTools:        cfg.DevTools,
	})
	defer sessionSvc.Close()

	// 组装应用状态
	appState := state.NewAppState(
		cfg,
		sessionSvc,
		themes,
	)

	zap.S().Infof("服务启动于 %s:%d，开发工具：%v", cfg.Host, cfg.Port, cfg.DevTools)

	// 启动服务器
	if err := http.RunServer(appState); err != nil {
		zap.L().Error("服务器退出", zap.Error(err))
	}
}

func loadCatalog(path string) (*game.Catalog, error) {
	if path == "" {
		return game.DefaultCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取角色表文件失败: %w", err)
	}

	return game.LoadCatalog(data)
}
