package classroom

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/serafinsanchez/googleclassroom-portal/core"
)

type Options struct {
	// MaxConcurrency caps the upstream calls issued in parallel by one aggregation; <= 0 means no cap.
	MaxConcurrency int
	PageSize       int64
}

// Service aggregates Classroom data into dashboard shapes.
// It holds no caller state: every method receives the Client to run against.
type Service struct {
	opts     Options
	logger   core.Logger
	validate *validator.Validate
	mailSvc  core.EmailService
}

func NewService(opts Options, logger core.Logger, validate *validator.Validate, mailSvc core.EmailService) *Service {
	return &Service{
		opts:     opts,
		logger:   logger,
		validate: validate,
		mailSvc:  mailSvc,
	}
}

func (svc *Service) listOpts(token string) ListOptions {
	return ListOptions{PageToken: token, PageSize: svc.opts.PageSize}
}

// ListCourses returns the caller's active courses, each with its number of students.
// A course whose roster cannot be read gets a zero count.
func (svc *Service) ListCourses(ctx context.Context, client Client) ([]Course, error) {
	courses, err := CollectAll(ctx, func(ctx context.Context, token string) (Page[Course], error) {
		return client.ListCourses(ctx, activeCourseStates, svc.listOpts(token))
	})
	if err != nil {
		return nil, errors.Wrap(err, "listing courses")
	}

	return mapOrdered(ctx, svc.opts.MaxConcurrency, courses, func(ctx context.Context, course Course) Course {
		count, err := svc.countStudents(ctx, client, course.ID)
		if err != nil {
			svc.logger.Warn(fmt.Sprintf("counting students of course %s: %v", course.ID, err), err)
			count = 0
		}
		course.StudentCount = count
		return course
	}), nil
}

// ListCoursesWithWork is ListCourses with the course work of every course merged on.
// A course whose work cannot be listed gets none.
// Work listings, then submission statistics, run as flat fan-outs so the concurrency cap holds overall.
func (svc *Service) ListCoursesWithWork(ctx context.Context, client Client) ([]CourseWithWork, error) {
	courses, err := svc.ListCourses(ctx, client)
	if err != nil {
		return nil, err
	}

	works := mapOrdered(ctx, svc.opts.MaxConcurrency, courses, func(ctx context.Context, course Course) []CourseWork {
		work, err := svc.collectCourseWork(ctx, client, course.ID)
		if err != nil {
			svc.logger.Warn(fmt.Sprintf("listing course work of course %s: %v", course.ID, err), err)
			return []CourseWork{}
		}
		return work
	})

	type workRef struct{ course, item int }
	refs := make([]workRef, 0)
	for i, work := range works {
		for j := range work {
			refs = append(refs, workRef{course: i, item: j})
		}
	}
	stats := mapOrdered(ctx, svc.opts.MaxConcurrency, refs, func(ctx context.Context, ref workRef) SubmissionStats {
		return svc.workStats(ctx, client, courses[ref.course].ID, works[ref.course][ref.item].ID)
	})
	for k, ref := range refs {
		s := stats[k]
		works[ref.course][ref.item].SubmissionStats = &s
	}

	result := make([]CourseWithWork, len(courses))
	for i, course := range courses {
		result[i] = CourseWithWork{Course: course, CourseWork: works[i]}
	}
	return result, nil
}

func (svc *Service) countStudents(ctx context.Context, client Client, courseID string) (int, error) {
	return CountAll(ctx, func(ctx context.Context, token string) (Page[Student], error) {
		return client.ListStudents(ctx, courseID, svc.listOpts(token))
	})
}

// ListStudents returns the whole roster of a course.
func (svc *Service) ListStudents(ctx context.Context, client Client, courseID string) ([]Student, error) {
	students, err := CollectAll(ctx, func(ctx context.Context, token string) (Page[Student], error) {
		return client.ListStudents(ctx, courseID, svc.listOpts(token))
	})
	return students, errors.Wrap(err, "listing students")
}

func (svc *Service) collectCourseWork(ctx context.Context, client Client, courseID string) ([]CourseWork, error) {
	work, err := CollectAll(ctx, func(ctx context.Context, token string) (Page[CourseWork], error) {
		return client.ListCourseWork(ctx, courseID, svc.listOpts(token))
	})
	return work, errors.Wrap(err, "listing course work")
}

func (svc *Service) submissionStats(ctx context.Context, client Client, courseID, courseWorkID string) (SubmissionStats, error) {
	subs, err := CollectAll(ctx, func(ctx context.Context, token string) (Page[Submission], error) {
		return client.ListSubmissions(ctx, courseID, courseWorkID, nil, svc.listOpts(token))
	})
	if err != nil {
		return SubmissionStats{}, err
	}
	return NewSubmissionStats(subs), nil
}

// ListCourseWork returns the course's work, most recently updated first, with submission statistics.
// An item whose submissions cannot be read gets zero statistics.
func (svc *Service) ListCourseWork(ctx context.Context, client Client, courseID string) ([]CourseWork, error) {
	work, err := svc.collectCourseWork(ctx, client, courseID)
	if err != nil {
		return nil, err
	}

	return mapOrdered(ctx, svc.opts.MaxConcurrency, work, func(ctx context.Context, cw CourseWork) CourseWork {
		stats := svc.workStats(ctx, client, courseID, cw.ID)
		cw.SubmissionStats = &stats
		return cw
	}), nil
}

// workStats is submissionStats for listings: a failure is logged and gives zero statistics.
func (svc *Service) workStats(ctx context.Context, client Client, courseID, courseWorkID string) SubmissionStats {
	stats, err := svc.submissionStats(ctx, client, courseID, courseWorkID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("reading submission stats of course work %s/%s: %v", courseID, courseWorkID, err), err)
		return SubmissionStats{}
	}
	return stats
}

// GetCourseWork returns a course-work item with its submission statistics.
func (svc *Service) GetCourseWork(ctx context.Context, client Client, courseID, courseWorkID string) (CourseWork, error) {
	cw, err := client.GetCourseWork(ctx, courseID, courseWorkID)
	if err != nil {
		return CourseWork{}, errors.Wrap(err, "getting course work")
	}
	stats, err := svc.submissionStats(ctx, client, courseID, courseWorkID)
	if err != nil {
		return CourseWork{}, errors.Wrap(err, "listing submission states")
	}
	cw.SubmissionStats = &stats
	return cw, nil
}

// ListSubmissions returns the submissions of a course-work item, each with its student's profile.
// A submission whose profile cannot be read is returned without one.
func (svc *Service) ListSubmissions(ctx context.Context, client Client, courseID, courseWorkID string) ([]Submission, error) {
	subs, err := CollectAll(ctx, func(ctx context.Context, token string) (Page[Submission], error) {
		return client.ListSubmissions(ctx, courseID, courseWorkID, detailedSubmissionStates, svc.listOpts(token))
	})
	if err != nil {
		return nil, errors.Wrap(err, "listing submissions")
	}
	if len(subs) == 0 {
		return subs, nil
	}

	return mapOrdered(ctx, svc.opts.MaxConcurrency, subs, func(ctx context.Context, sub Submission) Submission {
		profile, err := client.GetUserProfile(ctx, sub.UserID)
		if err != nil {
			svc.logger.Warn(fmt.Sprintf("getting profile of user %s (submission %s): %v", sub.UserID, sub.ID, err), err)
			return sub
		}
		sub.Student = profile.StudentProfile()
		return sub
	}), nil
}

// GetSubmissionAttachments returns the files and links attached to a submission.
func (svc *Service) GetSubmissionAttachments(ctx context.Context, client Client, courseID, courseWorkID, submissionID string) ([]Attachment, error) {
	sub, err := client.GetSubmission(ctx, courseID, courseWorkID, submissionID)
	if err != nil {
		return nil, errors.Wrap(err, "getting submission")
	}
	if sub.Attachments == nil {
		return []Attachment{}, nil
	}
	return sub.Attachments, nil
}

// CourseCalendar returns the course's work as calendar items.
func (svc *Service) CourseCalendar(ctx context.Context, client Client, courseID string) ([]CalendarItem, error) {
	work, err := svc.ListCourseWork(ctx, client, courseID)
	if err != nil {
		return nil, err
	}
	items := make([]CalendarItem, 0, len(work))
	for _, cw := range work {
		items = append(items, CalendarItem{
			ID:              cw.ID,
			Title:           cw.Title,
			DueDate:         cw.DueDate,
			DueTime:         cw.DueTime,
			Type:            cw.WorkType,
			MaxPoints:       cw.MaxPoints,
			SubmissionStats: cw.SubmissionStats,
		})
	}
	return items, nil
}

// CourseMaterials returns the materials of every course-work item of the course.
func (svc *Service) CourseMaterials(ctx context.Context, client Client, courseID string) ([]CourseMaterial, error) {
	work, err := svc.collectCourseWork(ctx, client, courseID)
	if err != nil {
		return nil, err
	}
	materials := make([]CourseMaterial, 0)
	for _, cw := range work {
		for _, m := range cw.Materials {
			materials = append(materials, CourseMaterial{Material: m, FromAssignment: cw.Title})
		}
	}
	return materials, nil
}

func (svc *Service) ListTopics(ctx context.Context, client Client, courseID string) ([]Topic, error) {
	topics, err := CollectAll(ctx, func(ctx context.Context, token string) (Page[Topic], error) {
		return client.ListTopics(ctx, courseID, svc.listOpts(token))
	})
	return topics, errors.Wrap(err, "listing topics")
}

// InviteTeacher adds the user with the given email as a teacher of the course.
func (svc *Service) InviteTeacher(ctx context.Context, client Client, courseID string, ti TeacherInvite) error {
	if err := ti.Validate(svc.validate); err != nil {
		return err
	}
	return errors.Wrap(client.AddTeacher(ctx, courseID, ti.Email), "inviting teacher")
}

// CreateAnnouncement publishes an announcement in the course.
func (svc *Service) CreateAnnouncement(ctx context.Context, client Client, courseID string, na NewAnnouncement) (Announcement, error) {
	if err := na.Validate(svc.validate); err != nil {
		return Announcement{}, err
	}
	ann, err := client.CreateAnnouncement(ctx, courseID, na)
	return ann, errors.Wrap(err, "creating announcement")
}
