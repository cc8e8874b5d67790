package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// pathParam copia el parámetro de ruta: fiber reutiliza el buffer de la petición y los ids
// terminan guardados en reservas y eventos.
func pathParam(c *fiber.Ctx, name string) string {
	return utils.CopyString(c.Params(name))
}

func queryParam(c *fiber.Ctx, name string) string {
	return utils.CopyString(c.Query(name))
}
