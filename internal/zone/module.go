package zone

import (
	"go.uber.org/fx"
)

// Module is an Fx module that provides the zone Store.
var Module = fx.Options(
	fx.Provide(NewStore),
)
