package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	https_server "ChatDesk/api/http"
	"ChatDesk/internal/app"
	"ChatDesk/internal/config"
	"ChatDesk/pkg/zlog"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP / WebSocket 服务",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()
			return serve(ctx, config.GetConfig())
		},
	}
}

func serve(ctx context.Context, conf *config.Config) error {
	a, err := app.New(ctx, conf)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port)
	srv := &http.Server{Addr: addr, Handler: https_server.NewEngine(a)}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("服务器正在启动", zap.String("addr", addr), zap.Bool("tls", conf.MainConfig.EnableTLS))
		var err error
		if conf.MainConfig.EnableTLS {
			err = srv.ListenAndServeTLS(conf.MainConfig.CertFile, conf.MainConfig.KeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("服务器启动失败: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zlog.Info("正在关闭服务器...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("shutdown failed", zap.Error(err))
	}
	zlog.Info("服务器已关闭")
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
