package echo

import e "github.com/labstack/echo/v4"

func RegisterRoutes(server *e.Echo, importHandler *ImportHandler, jobHandler *JobHandler) {
	imports := server.Group("/api/v1/outreach/imports")
	imports.POST("", importHandler.StartImport)
	imports.GET("/:id", jobHandler.GetJob)
	imports.POST("/:id/advance", importHandler.Advance)
	imports.GET("/:id/items", jobHandler.ListItems)
}
