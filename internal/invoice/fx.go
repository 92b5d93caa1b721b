package invoice

import (
	"github.com/klinikita/billing/internal/invoice/service"
	"github.com/klinikita/billing/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(pdf.NewProvider),
	fx.Provide(service.NewService),
)
