// Package preview serves built artifacts locally under the public base path.
package preview

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// Directory on disk holding the built artifacts
	Dir string
	// URL prefix the artifacts are mounted under, normalized as "/" or "/a/b"
	Base string
	// Origins allowed to fetch artifacts cross origin
	CORSOrigins []string
}

// NewHandler mounts Dir at Base. Requests outside Base get a 404.
func NewHandler(cfg Config) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead},
	})

	return RequestLogger()(c.Handler(mount(cfg.Base, http.FileServer(http.Dir(cfg.Dir)))))
}

// mount serves files under base. The base is matched as a literal prefix,
// never as a ServeMux pattern, so spaces and braces in it are plain text.
func mount(base string, files http.Handler) http.Handler {
	base = strings.TrimSuffix(base, "/")
	if base == "" {
		return files
	}

	stripped := http.StripPrefix(base, files)
	location := (&url.URL{Path: base + "/"}).EscapedPath()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == base:
			http.Redirect(w, r, location, http.StatusMovedPermanently)
		case strings.HasPrefix(r.URL.Path, base+"/"):
			stripped.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// Run serves until ctx is cancelled.
func Run(ctx context.Context, addr string, handler http.Handler) error {
	srv := configureHTTPServer(addr, handler)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Preview server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("preview server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown preview server: %w", err)
	}

	return nil
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}
