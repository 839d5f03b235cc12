package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Server serves finished report folders over HTTP so lab scientists can
// review a run in the browser.
type Server struct {
	reportDir string
	router    *gin.Engine
	server    *http.Server
	logger    *logrus.Logger
}

// NewServer creates a new report viewer rooted at reportDir.
func NewServer(reportDir string, logger *logrus.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		reportDir: reportDir,
		router:    router,
		logger:    logger,
	}

	router.GET("/", s.listRuns)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.StaticFS("/runs", http.Dir(reportDir))

	return s
}

// Start runs the server until the context is cancelled.
func (s *Server) Start(ctx context.Context, host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	s.logger.WithField("addr", addr).Info("Report viewer listening")

	select {
	case err := <-errCh:
		return fmt.Errorf("report viewer failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

// listRuns renders a plain index of run folders and their report pages.
func (s *Server) listRuns(c *gin.Context) {
	entries, err := os.ReadDir(s.reportDir)
	if err != nil {
		c.String(http.StatusInternalServerError, "cannot read report directory: %v", err)
		return
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><body><h1>Reconciliation runs</h1><ul>")

	var runs []string
	for _, entry := range entries {
		if entry.IsDir() {
			runs = append(runs, entry.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(runs)))

	for _, run := range runs {
		b.WriteString(fmt.Sprintf("<li>%s<ul>", run))
		pages, _ := filepath.Glob(filepath.Join(s.reportDir, run, "*.html"))
		for _, page := range pages {
			name := filepath.Base(page)
			b.WriteString(fmt.Sprintf(`<li><a href="/runs/%s/%s">%s</a></li>`, run, name, name))
		}
		b.WriteString("</ul></li>")
	}
	b.WriteString("</ul></body></html>")

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(b.String()))
}
