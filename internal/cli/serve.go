package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"calunga-catalog/internal/app"
	"calunga-catalog/internal/gateway"
)

type serveOptions struct {
	ListenAddr string
	StaticDir  string
}

func newServeCommand() *cobra.Command {
	opts := serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the catalog gateway server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&opts.ListenAddr, "listen", ":8080", "Listen address")
	cmd.Flags().StringVar(&opts.StaticDir, "static-dir", "dist", "Static asset directory")
	_ = viper.BindPFlag("listen_addr", cmd.Flags().Lookup("listen"))
	_ = viper.BindPFlag("static_dir", cmd.Flags().Lookup("static-dir"))
	return cmd
}

func runServe(ctx context.Context) error {
	settings, err := loadSettings()
	if err != nil {
		log.Error().Msg(errorMessage(err))
		return err
	}
	service, err := app.NewService(settings)
	if err != nil {
		log.Error().Msg(errorMessage(err))
		return err
	}
	server, err := gateway.NewServer(settings, service)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return server.ListenAndServe(ctx)
}
