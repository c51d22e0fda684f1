// Package services restarts the system services that cache preference
// state, so applied defaults take effect without a logout.
package services

import (
	"os/exec"

	"github.com/machlit/cutler/pkg/logging"
)

// restartList is the fixed set of services worth kicking after a batch
// of preference writes.
var restartList = []string{
	"SystemUIServer",
	"Dock",
	"Finder",
	"ControlCenter",
	"NotificationCenter",
}

// killFunc is the test seam for process termination.
type killFunc func(service string) error

func killall(service string) error {
	return exec.Command("killall", service).Run()
}

// Restart kicks every service on the fixed list. Failures are logged
// and aggregated into a single warning; they are never fatal, since a
// service that is not running has nothing to restart.
func Restart() {
	restartWith(killall)
}

func restartWith(kill killFunc) {
	logger := logging.GetLogger("services")

	failed := 0
	for _, svc := range restartList {
		if err := kill(svc); err != nil {
			logger.Debug().Err(err).Str("service", svc).Msg("Restart failed")
			failed++
			continue
		}
		logger.Info().Str("service", svc).Msg("Service restarted")
	}

	if failed > 0 {
		logger.Warn().Int("failed", failed).Msg("Some services could not be restarted")
	}
}
