package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"
	"golang.org/x/net/netutil"

	"todolists/handlers"
	"todolists/services/lists"
	"todolists/services/sessions"
	"todolists/services/users"
	"todolists/utils"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(*configPath)
			if err != nil {
				return err
			}
			defer e.Close()

			if addr == "" {
				addr = e.settings.Server.Addr()
			}

			handler, purger, err := buildServer(e)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:         addr,
				Handler:      handler,
				ReadTimeout:  e.settings.Server.ReadTimeout(),
				WriteTimeout: e.settings.Server.WriteTimeout(),
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", addr, err)
			}
			if limit := e.settings.Server.MaxConnections; limit > 0 {
				ln = netutil.LimitListener(ln, limit)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return run(ctx, srv, ln, purger, e.settings.Sessions.PurgeInterval())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.host/server.port)")
	return cmd
}

func buildServer(e *env) (http.Handler, *sessions.Manager, error) {
	s := e.settings

	tmplFS, err := handlers.TemplateFS(s.Server.TemplateDir)
	if err != nil {
		return nil, nil, err
	}
	render, err := handlers.NewRenderer(tmplFS)
	if err != nil {
		return nil, nil, err
	}

	sessionMgr := sessions.NewManager(e.db.Sessions, s.Sessions.SessionTTL())
	auth := handlers.NewSessionAuth(sessionMgr, s.Sessions.CookieName, s.Sessions.SecureCookie)
	userSvc := users.NewService(e.db.Users)
	listSvc := lists.NewService(e.db.Lists, userSvc, s.ListPolicy())

	r := utils.NewRouter(e.db.Ping)
	handlers.Register(r,
		handlers.NewListsHandler(listSvc, auth, render),
		handlers.NewAuthHandler(userSvc, auth, render),
		handlers.NewAPIHandler(listSvc, auth),
	)
	return r, sessionMgr, nil
}

// run serves until ctx is cancelled, then shuts the server down and waits
// for the purge loop to exit.
func run(ctx context.Context, srv *http.Server, ln net.Listener, purger *sessions.Manager, purgeEvery time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var serveErr error
	var wg conc.WaitGroup
	wg.Go(func() {
		log.Printf("[server] listening on %s", ln.Addr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("http server: %w", err)
		}
		cancel()
	})
	wg.Go(func() {
		purger.RunPurger(ctx, purgeEvery)
	})

	<-ctx.Done()
	log.Printf("[server] shutting down")
	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[server] shutdown: %v", err)
	}

	wg.Wait()
	return serveErr
}
