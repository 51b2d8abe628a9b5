package http

import (
	"context"
	"net/http"

	"gitlab.com/nevasik7/alerting/logger"

	"github.com/ReqCrypto/sol-meme-scanner/internal/config"
)

type Server struct {
	log logger.Logger
	srv *http.Server
}

type ServerDeps struct {
	Logger logger.Logger
	Cfg    *config.HTTPConfig
	Router http.Handler
}

func NewServer(d *ServerDeps) *Server {
	return &Server{
		log: d.Logger,
		srv: &http.Server{
			Addr:         d.Cfg.Addr,
			Handler:      d.Router,
			ReadTimeout:  d.Cfg.ReadTimeout,
			WriteTimeout: d.Cfg.WriteTimeout,
			IdleTimeout:  d.Cfg.IdleTimeout,
		},
	}
}

func (s *Server) Start() error {
	s.log.Infof("HTTP server listening on %s", s.srv.Addr)
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
