package prescription

import (
	"github.com/klinikita/billing/internal/prescription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("prescription.service",
	fx.Provide(service.NewService),
)
