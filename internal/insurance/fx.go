package insurance

import (
	"github.com/klinikita/billing/internal/insurance/service"
	"go.uber.org/fx"
)

var Module = fx.Module("insurance.service",
	fx.Provide(service.NewService),
)
