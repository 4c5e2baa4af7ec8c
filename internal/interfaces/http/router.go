package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Validation  *ledger.ValidationUseCase
	Projections *ledger.ProjectionUseCase
	Procurement *ledger.ProcurementUseCase
	Documents   *ledger.DocumentUseCase
	Skus        *ledger.SkuUseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/ledger", AuthMiddleware(deps.JWTSecret))

	ledgerHandler := NewLedgerHandler(deps.Validation, deps.Projections, deps.Procurement)
	api.Post("/validate", ledgerHandler.Validate)
	api.Get("/availability", ledgerHandler.Availability)
	api.Get("/forecast/:sku_id", ledgerHandler.Forecast)
	api.Get("/summary", ledgerHandler.Summary)
	api.Get("/alerts", ledgerHandler.Alerts)
	api.Post("/procurements", ledgerHandler.ReceiveProcurement)

	skuHandler := NewSkuHandler(deps.Skus)
	api.Post("/skus", skuHandler.Create)
	api.Get("/skus", skuHandler.List)
	api.Put("/skus/:id", skuHandler.Update)
	api.Get("/skus/:id/detail", ledgerHandler.Detail)

	docHandler := NewDocumentHandler(deps.Documents)
	api.Get("/statuses/:type", docHandler.Statuses)
	api.Post("/documents", docHandler.Create)
	api.Get("/documents/:type/:id", docHandler.Get)
	api.Put("/documents/:type/:id", docHandler.Update)
	api.Patch("/documents/:type/:id/status", docHandler.ChangeStatus)
}
