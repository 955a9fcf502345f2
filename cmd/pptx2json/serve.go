package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/VantageDataChat/pptxjson"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the conversion HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), a.cfg)
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().Int("max-upload-mb", 100, "largest accepted upload in MB")
	mustBind(a.v, cmd.Flags(), map[string]string{
		"serve.addr":          "addr",
		"serve.max_upload_mb": "max-upload-mb",
	})
	return cmd
}

// server handles conversion requests.
type server struct {
	opts      *pptxjson.Options
	maxUpload int64
	log       *slog.Logger
}

func runServer(ctx context.Context, cfg *Config) error {
	opts := cfg.options()
	reg := prometheus.NewRegistry()
	metrics, err := pptxjson.NewMetrics("pptxjson", reg)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}
	opts.Metrics = metrics

	s := &server{opts: opts, maxUpload: int64(cfg.Serve.MaxUploadMB) << 20, log: opts.Logger}
	httpServer := &http.Server{
		Addr:              cfg.Serve.Addr,
		Handler:           s.routes(reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", cfg.Serve.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info("shutting down")
	return httpServer.Shutdown(shutdownCtx)
}

func (s *server) routes(reg *prometheus.Registry) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type"}
	engine.Use(cors.New(corsConfig))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": pptxjson.Version})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	engine.POST("/v1/convert", s.handleConvert)
	return engine
}

// handleConvert converts the multipart "file" upload. The render_mode and
// layout_elements query parameters override the server defaults.
func (s *server) handleConvert(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)

	opts := *s.opts
	if raw := c.Query("render_mode"); raw != "" {
		mode, err := pptxjson.ParseRenderMode(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		opts.RenderMode = mode
	}
	switch c.Query("layout_elements") {
	case "true", "1":
		opts.LayoutElements = true
	case "false", "0":
		opts.LayoutElements = false
	}

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing multipart field \"file\""})
		return
	}
	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	pres, err := pptxjson.Convert(c.Request.Context(), f, header.Size, &opts)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, pres)
}

func (s *server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
