package main

import (
	"context"
	"log/slog"
	"os"

	"campus/config"
	"campus/internal/delivery"
	"campus/internal/delivery/link"
	"campus/internal/infra/api"
	logs "campus/internal/infra/log"
	"campus/internal/infra/navigation"
	"campus/internal/infra/oauth/apple"
	"campus/internal/infra/oauth/google"
	"campus/internal/infra/vault"
	"campus/internal/usecase"
	"campus/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		fx.Invoke(
			rehydrateSession,
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			vault.New,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			api.NewClient,
			navigation.New,
			fx.Annotate(
				google.NewAuthService,
				fx.ResultTags(`name:"google"`),
			),
			fx.Annotate(
				apple.NewAuthService,
				fx.ResultTags(`name:"apple"`),
			),
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewSessionService,
			impl.NewLoginRedirectService,
			impl.NewLinkService,
			impl.NewGuardService,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				link.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

// rehydrateSession settles the session before any delivery starts serving,
// so the first gating decision never observes a half-restored session.
func rehydrateSession(ctx context.Context, sessions usecase.SessionUsecase) error {
	return sessions.Init(ctx)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
