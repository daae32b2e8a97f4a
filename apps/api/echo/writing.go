package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/serafinsanchez/googleclassroom-portal/core/writing"
)

type writingApi struct {
	svc *writing.Service
}

func registerWritingAPI(g *echo.Group, authed []echo.MiddlewareFunc, deps *Deps) {
	api := writingApi{svc: deps.WritingSvc}

	g.POST("/analyze-writing", api.analyze, authed...)
}

// Handlers

func (api *writingApi) analyze(ctx echo.Context) error {
	var data writing.AnalyzeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AnalyzeRequest")
	}
	analysis, err := api.svc.Analyze(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "analyzing writing")
	}
	return ctx.JSON(http.StatusOK, analysis)
}
