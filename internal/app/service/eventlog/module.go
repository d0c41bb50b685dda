package eventlog

import "go.uber.org/fx"

// Module exposes the webhook event log via Fx.
var Module = fx.Options(
	fx.Provide(New),
)
