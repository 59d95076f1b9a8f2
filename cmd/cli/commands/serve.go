package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bookclub/roster-admin/pkg/auth"
	"github.com/bookclub/roster-admin/pkg/httpapi"
)

const sessionIssuer = "roster-admin"

// ServeCmd creates the serve command
func ServeCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the roster HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			migrate, _ := cmd.Flags().GetBool("migrate")
			if migrate {
				if err := app.Database.RunMigrations(app.Ctx); err != nil {
					return err
				}
			}

			oauthCfg, err := app.OAuthClient()
			if err != nil {
				return err
			}
			web := oauthCfg.Web
			if web == nil {
				return fmt.Errorf("oauth client config has no web section")
			}
			if len(web.RedirectURIs) == 0 {
				return fmt.Errorf("oauth web client has no redirect URIs")
			}

			if app.Env == "prod" {
				gin.SetMode(gin.ReleaseMode)
			}

			redisClient := auth.NewRedisClient(app.Cfg.RedisAddr)
			defer redisClient.Close()
			sessionStore := auth.NewRedisStore(redisClient)
			if !sessionStore.Healthy(app.Ctx) {
				app.Logger.Warn("Redis is not reachable yet", zap.String("addr", app.Cfg.RedisAddr))
			}

			sessions := auth.NewManager(sessionStore, app.Cfg.SessionSecret, sessionIssuer, app.Cfg.SessionTTL)
			google := auth.NewGoogle(web.ClientID, web.ClientSecret, web.RedirectURIs[0])

			handler := httpapi.New(app.Database, sessions, google, httpapi.NewMetrics(), app.Logger, httpapi.Config{
				PublicBaseURL:   app.Cfg.PublicBaseURL,
				DefaultPageSize: app.Cfg.DefaultPageSize,
				SecureCookies:   strings.HasPrefix(app.Cfg.PublicBaseURL, "https://"),
			})
			handler.AddHealthCheck("database", func(ctx context.Context) bool {
				return app.Database.Ping(ctx) == nil
			})
			handler.AddHealthCheck("redis", sessionStore.Healthy)

			ctx, stop := signal.NotifyContext(app.Ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := httpapi.NewServer(app.Cfg.HTTPAddr, handler.Routes())
			return httpapi.Serve(ctx, srv, app.Logger)
		},
	}

	cmd.Flags().Bool("migrate", false, "Apply pending migrations before serving")
	return cmd
}
