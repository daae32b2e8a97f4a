package googlesvc

import (
	"context"
	"time"

	pkgerrors "github.com/pkg/errors"
	classroomapi "google.golang.org/api/classroom/v1"
	"google.golang.org/api/option"

	"github.com/serafinsanchez/googleclassroom-portal/core"
	"github.com/serafinsanchez/googleclassroom-portal/core/classroom"
)

// ClassroomClient is a classroom.Client over the Classroom REST API.
type ClassroomClient struct {
	svc *classroomapi.Service
}

var _ classroom.Client = (*ClassroomClient)(nil)

func NewClassroomClient(ctx context.Context, opts ...option.ClientOption) (*ClassroomClient, error) {
	svc, err := classroomapi.NewService(ctx, opts...)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "creating classroom service")
	}
	return &ClassroomClient{svc: svc}, nil
}

func (c *ClassroomClient) ListCourses(ctx context.Context, states []string, opts classroom.ListOptions) (classroom.Page[classroom.Course], error) {
	call := c.svc.Courses.List().CourseStates(states...).PageToken(opts.PageToken).Context(ctx)
	if opts.PageSize > 0 {
		call.PageSize(opts.PageSize)
	}
	resp, err := call.Do()
	if err != nil {
		return classroom.Page[classroom.Course]{}, core.NewUpstreamError("listing courses", err)
	}

	page := classroom.Page[classroom.Course]{Items: make([]classroom.Course, 0, len(resp.Courses)), NextPageToken: resp.NextPageToken}
	for _, course := range resp.Courses {
		page.Items = append(page.Items, toCourse(course))
	}
	return page, nil
}

func (c *ClassroomClient) ListStudents(ctx context.Context, courseID string, opts classroom.ListOptions) (classroom.Page[classroom.Student], error) {
	call := c.svc.Courses.Students.List(courseID).PageToken(opts.PageToken).Context(ctx)
	if opts.PageSize > 0 {
		call.PageSize(opts.PageSize)
	}
	resp, err := call.Do()
	if err != nil {
		return classroom.Page[classroom.Student]{}, core.NewUpstreamError("listing students of course "+courseID, err)
	}

	page := classroom.Page[classroom.Student]{Items: make([]classroom.Student, 0, len(resp.Students)), NextPageToken: resp.NextPageToken}
	for _, s := range resp.Students {
		student := classroom.Student{ID: s.UserId, CourseID: s.CourseId}
		if s.Profile != nil {
			p := toUserProfile(s.Profile)
			student.Name, student.Email, student.PhotoURL = p.Name, p.Email, p.PhotoURL
		}
		page.Items = append(page.Items, student)
	}
	return page, nil
}

func (c *ClassroomClient) ListCourseWork(ctx context.Context, courseID string, opts classroom.ListOptions) (classroom.Page[classroom.CourseWork], error) {
	call := c.svc.Courses.CourseWork.List(courseID).OrderBy("updateTime desc").PageToken(opts.PageToken).Context(ctx)
	if opts.PageSize > 0 {
		call.PageSize(opts.PageSize)
	}
	resp, err := call.Do()
	if err != nil {
		return classroom.Page[classroom.CourseWork]{}, core.NewUpstreamError("listing course work of course "+courseID, err)
	}

	page := classroom.Page[classroom.CourseWork]{Items: make([]classroom.CourseWork, 0, len(resp.CourseWork)), NextPageToken: resp.NextPageToken}
	for _, cw := range resp.CourseWork {
		page.Items = append(page.Items, toCourseWork(cw))
	}
	return page, nil
}

func (c *ClassroomClient) ListSubmissions(
	ctx context.Context,
	courseID, courseWorkID string,
	states []classroom.SubmissionState,
	opts classroom.ListOptions,
) (classroom.Page[classroom.Submission], error) {
	call := c.svc.Courses.CourseWork.StudentSubmissions.List(courseID, courseWorkID).PageToken(opts.PageToken).Context(ctx)
	if len(states) > 0 {
		s := make([]string, 0, len(states))
		for _, state := range states {
			s = append(s, string(state))
		}
		call.States(s...)
	}
	if opts.PageSize > 0 {
		call.PageSize(opts.PageSize)
	}
	resp, err := call.Do()
	if err != nil {
		return classroom.Page[classroom.Submission]{}, core.NewUpstreamError("listing submissions of course work "+courseWorkID, err)
	}

	page := classroom.Page[classroom.Submission]{
		Items:         make([]classroom.Submission, 0, len(resp.StudentSubmissions)),
		NextPageToken: resp.NextPageToken,
	}
	for _, sub := range resp.StudentSubmissions {
		page.Items = append(page.Items, toSubmission(sub))
	}
	return page, nil
}

func (c *ClassroomClient) ListTopics(ctx context.Context, courseID string, opts classroom.ListOptions) (classroom.Page[classroom.Topic], error) {
	call := c.svc.Courses.Topics.List(courseID).PageToken(opts.PageToken).Context(ctx)
	if opts.PageSize > 0 {
		call.PageSize(opts.PageSize)
	}
	resp, err := call.Do()
	if err != nil {
		return classroom.Page[classroom.Topic]{}, core.NewUpstreamError("listing topics of course "+courseID, err)
	}

	page := classroom.Page[classroom.Topic]{Items: make([]classroom.Topic, 0, len(resp.Topic)), NextPageToken: resp.NextPageToken}
	for _, t := range resp.Topic {
		page.Items = append(page.Items, classroom.Topic{ID: t.TopicId, Name: t.Name, UpdateTime: parseTime(t.UpdateTime)})
	}
	return page, nil
}

func (c *ClassroomClient) GetCourseWork(ctx context.Context, courseID, courseWorkID string) (classroom.CourseWork, error) {
	cw, err := c.svc.Courses.CourseWork.Get(courseID, courseWorkID).Context(ctx).Do()
	if err != nil {
		return classroom.CourseWork{}, core.NewUpstreamError("getting course work "+courseWorkID, err)
	}
	return toCourseWork(cw), nil
}

func (c *ClassroomClient) GetSubmission(ctx context.Context, courseID, courseWorkID, submissionID string) (classroom.Submission, error) {
	sub, err := c.svc.Courses.CourseWork.StudentSubmissions.Get(courseID, courseWorkID, submissionID).Context(ctx).Do()
	if err != nil {
		return classroom.Submission{}, core.NewUpstreamError("getting submission "+submissionID, err)
	}
	return toSubmission(sub), nil
}

func (c *ClassroomClient) GetUserProfile(ctx context.Context, userID string) (classroom.UserProfile, error) {
	p, err := c.svc.UserProfiles.Get(userID).Context(ctx).Do()
	if err != nil {
		return classroom.UserProfile{}, core.NewUpstreamError("getting profile of user "+userID, err)
	}
	return toUserProfile(p), nil
}

func (c *ClassroomClient) PatchSubmissionGrade(ctx context.Context, courseID, courseWorkID, submissionID string, grade int64) (classroom.Submission, error) {
	patch := &classroomapi.StudentSubmission{
		AssignedGrade:   float64(grade),
		ForceSendFields: []string{"AssignedGrade"}, // send zero grades too
	}
	sub, err := c.svc.Courses.CourseWork.StudentSubmissions.
		Patch(courseID, courseWorkID, submissionID, patch).
		UpdateMask("assignedGrade").
		Context(ctx).
		Do()
	if err != nil {
		return classroom.Submission{}, core.NewUpstreamError("patching grade of submission "+submissionID, err)
	}
	graded := toSubmission(sub)
	g := float64(grade)
	graded.AssignedGrade = &g
	return graded, nil
}

func (c *ClassroomClient) ReturnSubmission(ctx context.Context, courseID, courseWorkID, submissionID string) error {
	_, err := c.svc.Courses.CourseWork.StudentSubmissions.
		Return(courseID, courseWorkID, submissionID, &classroomapi.ReturnStudentSubmissionRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return core.NewUpstreamError("returning submission "+submissionID, err)
	}
	return nil
}

func (c *ClassroomClient) CreateAnnouncement(ctx context.Context, courseID string, na classroom.NewAnnouncement) (classroom.Announcement, error) {
	ann := &classroomapi.Announcement{Text: na.Text, State: "PUBLISHED"}
	for _, link := range na.Links {
		ann.Materials = append(ann.Materials, &classroomapi.Material{Link: &classroomapi.Link{Url: link}})
	}
	created, err := c.svc.Courses.Announcements.Create(courseID, ann).Context(ctx).Do()
	if err != nil {
		return classroom.Announcement{}, core.NewUpstreamError("creating announcement in course "+courseID, err)
	}
	return classroom.Announcement{
		ID:            created.Id,
		CourseID:      created.CourseId,
		Text:          created.Text,
		State:         created.State,
		AlternateLink: created.AlternateLink,
		Materials:     toMaterials(created.Materials),
		CreationTime:  parseTime(created.CreationTime),
	}, nil
}

func (c *ClassroomClient) AddTeacher(ctx context.Context, courseID, userID string) error {
	_, err := c.svc.Courses.Teachers.Create(courseID, &classroomapi.Teacher{UserId: userID}).Context(ctx).Do()
	if err != nil {
		return core.NewUpstreamError("adding teacher to course "+courseID, err)
	}
	return nil
}

func toCourse(c *classroomapi.Course) classroom.Course {
	return classroom.Course{
		ID:                 c.Id,
		Name:               c.Name,
		Section:            c.Section,
		DescriptionHeading: c.DescriptionHeading,
		Room:               c.Room,
		EnrollmentCode:     c.EnrollmentCode,
		CourseState:        c.CourseState,
		AlternateLink:      c.AlternateLink,
	}
}

func toCourseWork(cw *classroomapi.CourseWork) classroom.CourseWork {
	work := classroom.CourseWork{
		ID:            cw.Id,
		CourseID:      cw.CourseId,
		Title:         cw.Title,
		Description:   cw.Description,
		WorkType:      cw.WorkType,
		State:         cw.State,
		AlternateLink: cw.AlternateLink,
		Materials:     toMaterials(cw.Materials),
		CreationTime:  parseTime(cw.CreationTime),
		UpdateTime:    parseTime(cw.UpdateTime),
	}
	if cw.MaxPoints > 0 {
		points := cw.MaxPoints
		work.MaxPoints = &points
	}
	if cw.DueDate != nil {
		work.DueDate = &classroom.Date{Year: cw.DueDate.Year, Month: cw.DueDate.Month, Day: cw.DueDate.Day}
	}
	if cw.DueTime != nil {
		work.DueTime = &classroom.TimeOfDay{Hours: cw.DueTime.Hours, Minutes: cw.DueTime.Minutes}
	}
	return work
}

// toSubmission converts an API submission. The API omits zero grades, so a zero grade reads as no grade.
func toSubmission(s *classroomapi.StudentSubmission) classroom.Submission {
	sub := classroom.Submission{
		ID:            s.Id,
		CourseID:      s.CourseId,
		CourseWorkID:  s.CourseWorkId,
		UserID:        s.UserId,
		State:         classroom.SubmissionState(s.State),
		Late:          s.Late,
		AlternateLink: s.AlternateLink,
		CreationTime:  parseTime(s.CreationTime),
		UpdateTime:    parseTime(s.UpdateTime),
	}
	if s.AssignedGrade != 0 {
		g := s.AssignedGrade
		sub.AssignedGrade = &g
	}
	if s.DraftGrade != 0 {
		g := s.DraftGrade
		sub.DraftGrade = &g
	}
	if s.AssignmentSubmission != nil {
		for _, at := range s.AssignmentSubmission.Attachments {
			if m, ok := toAttachment(at); ok {
				sub.Attachments = append(sub.Attachments, m)
			}
		}
	}
	return sub
}

func toUserProfile(p *classroomapi.UserProfile) classroom.UserProfile {
	profile := classroom.UserProfile{ID: p.Id, Email: p.EmailAddress, PhotoURL: p.PhotoUrl}
	if p.Name != nil {
		profile.Name = p.Name.FullName
	}
	return profile
}

func toMaterials(materials []*classroomapi.Material) []classroom.Material {
	if len(materials) == 0 {
		return nil
	}
	list := make([]classroom.Material, 0, len(materials))
	for _, m := range materials {
		switch {
		case m.DriveFile != nil && m.DriveFile.DriveFile != nil:
			f := m.DriveFile.DriveFile
			list = append(list, classroom.Material{Type: "driveFile", ID: f.Id, Title: f.Title, URL: f.AlternateLink, ThumbnailURL: f.ThumbnailUrl})
		case m.Link != nil:
			list = append(list, classroom.Material{Type: "link", Title: m.Link.Title, URL: m.Link.Url, ThumbnailURL: m.Link.ThumbnailUrl})
		case m.YoutubeVideo != nil:
			v := m.YoutubeVideo
			list = append(list, classroom.Material{Type: "youtubeVideo", ID: v.Id, Title: v.Title, URL: v.AlternateLink, ThumbnailURL: v.ThumbnailUrl})
		case m.Form != nil:
			list = append(list, classroom.Material{Type: "form", Title: m.Form.Title, URL: m.Form.FormUrl, ThumbnailURL: m.Form.ThumbnailUrl})
		}
	}
	return list
}

func toAttachment(at *classroomapi.Attachment) (classroom.Attachment, bool) {
	switch {
	case at.DriveFile != nil:
		f := at.DriveFile
		return classroom.Attachment{Type: "driveFile", ID: f.Id, Title: f.Title, URL: f.AlternateLink, ThumbnailURL: f.ThumbnailUrl}, true
	case at.Link != nil:
		return classroom.Attachment{Type: "link", Title: at.Link.Title, URL: at.Link.Url, ThumbnailURL: at.Link.ThumbnailUrl}, true
	case at.YouTubeVideo != nil:
		v := at.YouTubeVideo
		return classroom.Attachment{Type: "youtubeVideo", ID: v.Id, Title: v.Title, URL: v.AlternateLink, ThumbnailURL: v.ThumbnailUrl}, true
	case at.Form != nil:
		return classroom.Attachment{Type: "form", Title: at.Form.Title, URL: at.Form.FormUrl, ThumbnailURL: at.Form.ThumbnailUrl}, true
	}
	return classroom.Attachment{}, false
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
