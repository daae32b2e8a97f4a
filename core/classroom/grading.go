package classroom

import (
	"context"
	"fmt"
	"net/mail"
	"strconv"

	"github.com/pkg/errors"

	"github.com/serafinsanchez/googleclassroom-portal/core"
)

const gradeFeedbackTemplate = "grade_feedback"

// GradeSubmission assigns a grade to a submission and returns it to the student.
//
// The grade is validated before any upstream call. The grade write and the return are two separate
// upstream calls: if the return fails after the grade was written, a *PartialGradeError is returned and
// the submission stays graded but not returned. Nothing is retried or rolled back.
func (svc *Service) GradeSubmission(
	ctx context.Context,
	client Client,
	courseID, courseWorkID, submissionID string,
	gs GradeSubmission,
) (Submission, error) {
	if err := gs.Validate(svc.validate); err != nil {
		return Submission{}, err
	}
	grade := gs.Value()

	current, err := client.GetSubmission(ctx, courseID, courseWorkID, submissionID)
	if err != nil {
		return Submission{}, errors.Wrap(err, "getting submission")
	}
	svc.logger.Debug(fmt.Sprintf(
		"grading submission %s/%s/%s: state=%s currentGrade=%s newGrade=%d",
		courseID, courseWorkID, submissionID, current.State, formatGrade(current.AssignedGrade), grade,
	))

	graded, err := client.PatchSubmissionGrade(ctx, courseID, courseWorkID, submissionID, grade)
	if err != nil {
		return Submission{}, errors.Wrap(err, "patching grade")
	}

	if err = client.ReturnSubmission(ctx, courseID, courseWorkID, submissionID); err != nil {
		svc.logger.Error(fmt.Sprintf("submission %s graded but not returned: %v", submissionID, err), err)
		return Submission{}, &PartialGradeError{Submission: graded, Err: err}
	}
	graded.State = StateReturned

	if gs.Feedback != "" && svc.mailSvc != nil {
		svc.sendFeedback(ctx, client, courseID, courseWorkID, graded, gs.Feedback)
	}
	return graded, nil
}

type feedbackData struct {
	StudentName     string
	CourseWorkTitle string
	Grade           string
	MaxPoints       string
	Feedback        string
	Link            string
}

// sendFeedback emails the grading feedback to the student. Failures are logged only:
// the submission has already been graded and returned.
func (svc *Service) sendFeedback(ctx context.Context, client Client, courseID, courseWorkID string, sub Submission, feedback string) {
	profile, err := client.GetUserProfile(ctx, sub.UserID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("getting profile of user %s for feedback: %v", sub.UserID, err), err)
		return
	}
	if profile.Email == "" {
		svc.logger.Warn(fmt.Sprintf("no email address for user %s, feedback not sent", sub.UserID))
		return
	}

	data := feedbackData{
		StudentName:     profile.Name,
		CourseWorkTitle: "your work",
		Grade:           formatGrade(sub.AssignedGrade),
		Feedback:        feedback,
		Link:            sub.AlternateLink,
	}
	if cw, err := client.GetCourseWork(ctx, courseID, courseWorkID); err == nil {
		data.CourseWorkTitle = cw.Title
		data.MaxPoints = formatGrade(cw.MaxPoints)
		if data.Link == "" {
			data.Link = cw.AlternateLink
		}
	} else {
		svc.logger.Warn(fmt.Sprintf("getting course work %s/%s for feedback: %v", courseID, courseWorkID, err), err)
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: profile.Name, Address: profile.Email}},
		Subject:      "Feedback on " + data.CourseWorkTitle,
		TemplateName: gradeFeedbackTemplate,
		TemplateData: data,
	})
}

func formatGrade(g *float64) string {
	if g == nil {
		return ""
	}
	return strconv.FormatFloat(*g, 'f', -1, 64)
}
