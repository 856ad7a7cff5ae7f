package main

import (
	"context"
	"log/slog"
	"os"

	"cleanops/config"
	"cleanops/internal/delivery"
	apihttp "cleanops/internal/delivery/http"
	"cleanops/internal/delivery/http/router/handler"
	logs "cleanops/internal/infra/log"
	"cleanops/internal/infra/persistence"
	"cleanops/internal/infra/pubsub"
	"cleanops/internal/usecase/impl"

	"go.uber.org/fx"

	_ "time/tzdata"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		persistence.Module,
		pubsub.Module,
		impl.Module,
		injectHandler(),
		injectDelivery(),
		fx.Invoke(
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

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewPayrollHandler,
			handler.NewScheduleHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				apihttp.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))

				if shutdownErr := params.Shutdown(); shutdownErr != nil {
					slog.Error("Failed to shutdown gracefully", slog.Any("error", shutdownErr))
					os.Exit(1)
				}
			}
		}()
	}
}
