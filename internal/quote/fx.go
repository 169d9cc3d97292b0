package quote

import (
	"github.com/facturio/facturio/internal/quote/service"
	"go.uber.org/fx"
)

var Module = fx.Module("quote",
	fx.Provide(service.New),
)
