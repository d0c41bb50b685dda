package notification

import "go.uber.org/fx"

// Module exposes the in-app notification service via Fx.
var Module = fx.Options(
	fx.Provide(New),
)
