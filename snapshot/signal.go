package snapshot

import (
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// InstallSignalHandler arranges for the tracker's current best to be
// flushed when the process is interrupted. After saving, cleanup runs so
// the caller can shut down in-flight work (cancel contexts, reap worker
// subprocesses), then exit is invoked with the conventional 128+signal
// code. The returned function uninstalls the handler.
func InstallSignalHandler(t *Tracker, logger *slog.Logger, cleanup func(), exit func(code int)) func() {
	if logger == nil {
		logger = slog.Default()
	}
	if cleanup == nil {
		cleanup = func() {}
	}
	if exit == nil {
		exit = os.Exit
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, unix.SIGINT, unix.SIGTERM, unix.SIGQUIT)

	go func() {
		sig, ok := <-ch
		if !ok {
			return
		}
		num := 0
		if s, isUnix := sig.(unix.Signal); isUnix {
			num = int(s)
		}
		if t.EmergencySave(ReasonSignal, num) {
			logger.Info("emergency snapshot saved on signal", "signal", sig.String())
		} else {
			logger.Info("no best snapshot to save on signal", "signal", sig.String())
		}
		cleanup()
		exit(128 + num)
	}()

	return func() {
		signal.Stop(ch)
		close(ch)
	}
}
