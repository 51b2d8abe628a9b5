package app

import (
	"context"
	"errors"
	"net/http"

	"gitlab.com/nevasik7/alerting/logger"

	"github.com/ReqCrypto/sol-meme-scanner/internal/scheduler"
)

type HTTPServer interface {
	Start() error
	Shutdown(ctx context.Context) error
}

type App struct {
	log     logger.Logger
	httpSrv HTTPServer
	loop    *scheduler.Loop

	loopCancel context.CancelFunc
}

func NewApp(log logger.Logger, httpSrv HTTPServer, loop *scheduler.Loop) *App {
	return &App{log: log, httpSrv: httpSrv, loop: loop}
}

func (a *App) Start() error {
	a.log.Debug("App starting...")

	go func() {
		if err := a.httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Fatalf("Start HTTP server is error=%v", err)
		}
	}()

	loopCtx, cancel := context.WithCancel(context.Background())
	a.loopCancel = cancel
	go a.loop.Run(loopCtx)

	a.log.Info("App started")
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	a.log.Debug("App stopping...")

	if a.loopCancel != nil {
		a.loopCancel()
	}
	a.loop.Wait() // never tear the sink down under an in-flight cycle

	if err := a.httpSrv.Shutdown(ctx); err != nil {
		return err
	}

	a.log.Info("App stopped")
	return nil
}
