package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"swim-admin/internal/api/handler"
	"swim-admin/internal/api/router"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP 服务",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		a.logger.Info("应用启动中...",
			zap.Int("port", a.cfg.Server.Port),
			zap.String("log_level", a.cfg.Log.Level),
			zap.Bool("demo_mode", a.store.IsDemoMode()),
		)

		h := handler.NewHandler(a.svc)
		engine := router.Setup(a.cfg, h, a.jwt, a.rdb, a.store, a.logger)

		srv := &http.Server{
			Addr:         fmt.Sprintf(":%d", a.cfg.Server.Port),
			Handler:      engine,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			a.logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		// 监听系统信号，优雅关闭
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-quit:
			a.logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))
		case err := <-errCh:
			return fmt.Errorf("HTTP 服务器异常: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			a.logger.Error("服务器关闭异常", zap.Error(err))
		}
		a.logger.Info("服务器已关闭")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
