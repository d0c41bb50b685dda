package payment

import "go.uber.org/fx"

// Module exposes the payment orchestrator via Fx. The concrete Gateway is
// selected by provider in the app module.
var Module = fx.Options(
	fx.Provide(NewService),
)
