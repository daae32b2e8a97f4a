package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// resourcePath holds the Classroom identifiers of a request path.
type resourcePath struct {
	CourseID     string
	CourseWorkID string
	SubmissionID string
}

func (p *resourcePath) Bind(ctx echo.Context) {
	p.CourseID = strings.TrimSpace(ctx.Param("courseId"))
	p.CourseWorkID = strings.TrimSpace(ctx.Param("courseWorkId"))
	p.SubmissionID = strings.TrimSpace(ctx.Param("submissionId"))
}

var includeParam = "include"

// Include lists the optional parts a listing should embed, eg. ?include=courseWork.
type Include struct {
	Parts map[string]bool
}

func (inc *Include) Bind(ctx echo.Context) {
	inc.Parts = make(map[string]bool)
	val := ctx.QueryParam(includeParam)
	if val == "" {
		return
	}
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			inc.Parts[part] = true
		}
	}
}

func (inc Include) Has(part string) bool {
	return inc.Parts[part]
}
