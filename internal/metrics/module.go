package metrics

import (
	"go.uber.org/fx"
)

// Module is an Fx module that provides the Prometheus Recorder.
var Module = fx.Options(
	fx.Provide(NewRecorder),
)
