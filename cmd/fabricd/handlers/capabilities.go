package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aiverse/datafabric/pkg/mcop/cards"
)

// CapabilitiesHandler serves the registry capability cards, optionally
// filtered by the "domain" query parameter.
func CapabilitiesHandler(provider *cards.Provider) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, provider.Cards(c.QueryParam("domain")))
	}
}
