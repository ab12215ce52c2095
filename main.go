package main

import (
	"bitwise74/conference-api/app"
	"bitwise74/conference-api/config"
	"bitwise74/conference-api/internal/service"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	err := config.Setup()
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.NewRouter(ctx)
	if err != nil {
		panic(err)
	}

	sched, err := service.NewScheduler(a.Deps.DB, a.Deps.Outbox, service.SchedulerOpts{
		ReminderSpec: viper.GetString("review.reminder_cron"),
	})
	if err != nil {
		panic(err)
	}
	sched.Start()

	go a.Deps.Outbox.Run(ctx, time.Duration(viper.GetInt("outbox.poll_seconds"))*time.Second)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", viper.GetInt("host.port")),
		Handler:           a.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zap.L().Info("Server starting", zap.String("addr", srv.Addr))

		var err error
		if viper.GetBool("host.ssl.enabled") {
			err = srv.ListenAndServeTLS(
				viper.GetString("host.ssl.certificate_path"),
				viper.GetString("host.ssl.certificate_key_path"),
			)
		} else {
			err = srv.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Error("Server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zap.L().Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("Failed to shut down server", zap.Error(err))
	}

	service.StopScheduler(shutdownCtx, sched)

	if err := a.Close(shutdownCtx); err != nil {
		zap.L().Error("Failed to close resources", zap.Error(err))
	}

	zap.L().Sync()
}
