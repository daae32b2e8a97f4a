package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/serafinsanchez/googleclassroom-portal/core/drive"
)

type driveApi struct {
	svc     *drive.Service
	clients ClientFactory
}

func registerDriveAPI(g *echo.Group, authed []echo.MiddlewareFunc, deps *Deps) {
	api := driveApi{
		svc:     deps.DriveSvc,
		clients: deps.Clients,
	}

	dg := g.Group("/drive", authed...)
	dg.GET("/files/:fileId/content", api.fileContent)
}

// Handlers

func (api *driveApi) fileContent(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	src, err := api.clients.Drive(ctx.Request().Context(), acc)
	if err != nil {
		return errors.Wrap(err, "creating drive client")
	}
	content, err := api.svc.GetFileContent(ctx.Request().Context(), src, strings.TrimSpace(ctx.Param("fileId")))
	if err != nil {
		return errors.Wrap(err, "getting file content")
	}
	return ctx.JSON(http.StatusOK, content)
}
