package automaxprocs

import (
	"fmt"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ordbridge/pkg/logger"
	"github.com/gaze-network/ordbridge/pkg/logger/slogx"
	"go.uber.org/automaxprocs/maxprocs"
)

// Init sets GOMAXPROCS to match the Linux container CPU quota (if any). It is
// a no-op on non-Linux systems and in environments without a quota.
func Init() error {
	setMaxProcLogger := func(format string, v ...any) {
		logger.Debug(fmt.Sprintf(format, v...),
			slogx.String("package", "automaxprocs"),
			slogx.Int("maxprocs", Current()),
		)
	}
	if _, err := maxprocs.Set(maxprocs.Logger(setMaxProcLogger), maxprocs.Min(1)); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// Current returns the current value of GOMAXPROCS.
func Current() int {
	return runtime.GOMAXPROCS(0)
}
