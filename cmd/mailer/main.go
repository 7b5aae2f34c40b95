package main

import (
	"context"
	"forgotpassword/internal/app/consumers"
	"forgotpassword/internal/app/deps"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	deps, shutdownDeps := deps.InitMailerDeps()
	defer shutdownDeps()

	done, shutdownConsumers := consumers.InitConsumers(deps)
	defer shutdownConsumers()

	stopCh, closeCh := createChannel()
	defer closeCh()

	select {
	case <-stopCh:
		deps.Logger.Info(context.Background(), "Stopping mailer.")
	case <-done:
		deps.Logger.Warning(context.Background(), "Delivery stream has ended, stopping mailer.")
	}
}

func createChannel() (chan os.Signal, func()) {
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	return stopCh, func() {
		close(stopCh)
	}
}
