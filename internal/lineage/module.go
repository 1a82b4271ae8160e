package lineage

import (
	"go.uber.org/fx"
)

// Module is an Fx module that provides the lineage Store.
var Module = fx.Options(
	fx.Provide(NewStore),
)
