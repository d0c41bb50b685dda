package statistics

import "go.uber.org/fx"

// Module exposes payment statistics via Fx.
var Module = fx.Options(
	fx.Provide(New),
)
