package signals

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

const shutdownTimeout = 30 * time.Second

// GoOnExitSignal calls the given callback when the process receives an
// interrupt or terminate signal. A second signal, or a shutdown which exceeds
// the timeout, exits immediately.
func GoOnExitSignal(logger zerolog.Logger, onInterrupt func()) {
	go func() {
		sigCh := make(chan os.Signal, 1)
		// SIGKILL cannot be trapped.
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("starting graceful shutdown")

		done := make(chan struct{})
		go func() {
			defer close(done)
			onInterrupt()
		}()

		timer := time.NewTimer(shutdownTimeout)
		defer timer.Stop()

		select {
		case <-done:
			logger.Info().Msg("graceful shutdown completed")
		case sig := <-sigCh:
			logger.Warn().Str("signal", sig.String()).Msg("second signal during shutdown, exiting immediately")
			os.Exit(130)
		case <-timer.C:
			logger.Warn().Dur("timeout", shutdownTimeout).Msg("graceful shutdown timed out, exiting immediately")
			os.Exit(1)
		}
	}()
}
