package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/serafinsanchez/googleclassroom-portal/core/classroom"
)

type classroomApi struct {
	svc     *classroom.Service
	clients ClientFactory
}

func registerClassroomAPI(g *echo.Group, authed []echo.MiddlewareFunc, deps *Deps) {
	api := classroomApi{
		svc:     deps.ClassroomSvc,
		clients: deps.Clients,
	}

	cg := g.Group("/courses", authed...)
	cg.GET("", api.listCourses)

	// course endpoints
	dg := cg.Group("/:courseId")
	dg.GET("/students", api.listStudents)
	dg.GET("/work", api.listCourseWork)
	dg.GET("/calendar", api.calendar)
	dg.GET("/materials", api.materials)
	dg.GET("/topics", api.listTopics)
	dg.POST("/announcements", api.createAnnouncement)
	dg.POST("/teachers", api.inviteTeacher)

	// course work endpoints
	wg := dg.Group("/coursework/:courseWorkId")
	wg.GET("", api.retrieveCourseWork)
	wg.GET("/submissions", api.listSubmissions)
	wg.GET("/submissions/:submissionId/attachments", api.attachments)
	wg.POST("/submissions/:submissionId/grade", api.grade)
}

// client returns a Classroom client acting on behalf of the session account.
func (api *classroomApi) client(ctx echo.Context) (classroom.Client, resourcePath, error) {
	var path resourcePath
	path.Bind(ctx)

	acc, err := getContextAccount(ctx)
	if err != nil {
		return nil, path, err
	}
	client, err := api.clients.Classroom(ctx.Request().Context(), acc)
	if err != nil {
		return nil, path, errors.Wrap(err, "creating classroom client")
	}
	return client, path, nil
}

// Handlers

func (api *classroomApi) listCourses(ctx echo.Context) error {
	client, _, err := api.client(ctx)
	if err != nil {
		return err
	}
	var inc Include
	inc.Bind(ctx)

	if inc.Has("courseWork") {
		courses, err := api.svc.ListCoursesWithWork(ctx.Request().Context(), client)
		if err != nil {
			return errors.Wrap(err, "listing courses")
		}
		return ctx.JSON(http.StatusOK, courses)
	}
	courses, err := api.svc.ListCourses(ctx.Request().Context(), client)
	if err != nil {
		return errors.Wrap(err, "listing courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *classroomApi) listStudents(ctx echo.Context) error {
	client, path, err := api.client(ctx)
	if err != nil {
		return err
	}
	students, err := api.svc.ListStudents(ctx.Request().Context(), client, path.CourseID)
	if err != nil {
		return errors.Wrap(err, "listing students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *classroomApi) listCourseWork(ctx echo.Context) error {
	client, path, err := api.client(ctx)
	if err != nil {
		return err
	}
	work, err := api.svc.ListCourseWork(ctx.Request().Context(), client, path.CourseID)
	if err != nil {
		return errors.Wrap(err, "listing course work")
	}
	return ctx.JSON(http.StatusOK, work)
}

func (api *classroomApi) calendar(ctx echo.Context) error {
	client, path, err := api.client(ctx)
	if err != nil {
		return err
	}
	items, err := api.svc.CourseCalendar(ctx.Request().Context(), client, path.CourseID)
	if err != nil {
		return errors.Wrap(err, "building calendar")
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *classroomApi) materials(ctx echo.Context) error {
	client, path, err := api.client(ctx)
	if err != nil {
		return err
	}
	materials, err := api.svc.CourseMaterials(ctx.Request().Context(), client, path.CourseID)
	if err != nil {
		return errors.Wrap(err, "listing materials")
	}
	return ctx.JSON(http.StatusOK, materials)
}

func (api *classroomApi) listTopics(ctx echo.Context) error {
	client, path, err := api.client(ctx)
	if err != nil {
		return err
	}
	topics, err := api.svc.ListTopics(ctx.Request().Context(), client, path.CourseID)
	if err != nil {
		return errors.Wrap(err, "listing topics")
	}
	return ctx.JSON(http.StatusOK, topics)
}

func (api *classroomApi) createAnnouncement(ctx echo.Context) error {
	var data classroom.NewAnnouncement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}
	client, path, err := api.client(ctx)
	if err != nil {
		return err
	}
	ann, err := api.svc.CreateAnnouncement(ctx.Request().Context(), client, path.CourseID, data)
	if err != nil {
		return errors.Wrap(err, "creating announcement")
	}
	return ctx.JSON(http.StatusCreated, ann)
}

func (api *classroomApi) inviteTeacher(ctx echo.Context) error {
	var data classroom.TeacherInvite
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TeacherInvite")
	}
	client, path, err := api.client(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.InviteTeacher(ctx.Request().Context(), client, path.CourseID, data); err != nil {
		return errors.Wrap(err, "inviting teacher")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *classroomApi) retrieveCourseWork(ctx echo.Context) error {
	client, path, err := api.client(ctx)
	if err != nil {
		return err
	}
	cw, err := api.svc.GetCourseWork(ctx.Request().Context(), client, path.CourseID, path.CourseWorkID)
	if err != nil {
		return errors.Wrap(err, "getting course work")
	}
	return ctx.JSON(http.StatusOK, cw)
}

func (api *classroomApi) listSubmissions(ctx echo.Context) error {
	client, path, err := api.client(ctx)
	if err != nil {
		return err
	}
	subs, err := api.svc.ListSubmissions(ctx.Request().Context(), client, path.CourseID, path.CourseWorkID)
	if err != nil {
		return errors.Wrap(err, "listing submissions")
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *classroomApi) attachments(ctx echo.Context) error {
	client, path, err := api.client(ctx)
	if err != nil {
		return err
	}
	atts, err := api.svc.GetSubmissionAttachments(
		ctx.Request().Context(), client, path.CourseID, path.CourseWorkID, path.SubmissionID,
	)
	if err != nil {
		return errors.Wrap(err, "getting attachments")
	}
	return ctx.JSON(http.StatusOK, atts)
}

func (api *classroomApi) grade(ctx echo.Context) error {
	var data classroom.GradeSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeSubmission")
	}
	client, path, err := api.client(ctx)
	if err != nil {
		return err
	}
	sub, err := api.svc.GradeSubmission(
		ctx.Request().Context(), client, path.CourseID, path.CourseWorkID, path.SubmissionID, data,
	)
	if err != nil {
		return errors.Wrap(err, "grading submission")
	}
	return ctx.JSON(http.StatusOK, sub)
}
