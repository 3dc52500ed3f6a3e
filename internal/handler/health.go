package handler // declare the package name; contains HTTP handlers

import (
    "net/http"          // net/http provides status codes and response helpers

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health is the liveness endpoint behind GET /healthz.  Load balancers
// and monitors probe it to verify the reservation service is up; it
// returns a plain text "ok" with an HTTP 200 status code and touches no
// dependency, so a degraded database or Redis does not fail the probe.
func Health(c echo.Context) error { // Health handler signature accepts an echo context and returns an error
    return c.String(http.StatusOK, "ok") // write "ok" with a 200 OK status; String writes plain text
}
