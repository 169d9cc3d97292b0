package providers

import (
	"github.com/facturio/facturio/internal/providers/email"
	"github.com/facturio/facturio/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	pdf.Module,
)
