package classroom_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serafinsanchez/googleclassroom-portal/core/classroom"
	"github.com/serafinsanchez/googleclassroom-portal/core/classroom/classroomtest"
)

func gradingFixture() fixture {
	f := newFixture(10)
	points := 100.0
	f.client.CourseWork["A"] = []classroom.CourseWork{{ID: "w1", CourseID: "A", Title: "Essay", MaxPoints: &points}}
	f.client.Submissions[classroomtest.SubmissionsKey("A", "w1")] = []classroom.Submission{
		{ID: "s1", CourseID: "A", CourseWorkID: "w1", UserID: "u1", State: classroom.StateTurnedIn},
	}
	f.client.Profiles["u1"] = classroom.UserProfile{ID: "u1", Name: "Ada", Email: "ada@school.test"}
	return f
}

func TestService_GradeSubmission_InvalidGrade(t *testing.T) {
	tests := []struct {
		name  string
		grade json.Number
	}{
		{name: "missing", grade: ""},
		{name: "decimal", grade: "87.5"},
		{name: "negative", grade: "-1"},
		{name: "not a number", grade: "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := gradingFixture()
			_, err := f.svc.GradeSubmission(context.Background(), f.client, "A", "w1", "s1", classroom.GradeSubmission{Grade: tt.grade})

			var verrs validator.ValidationErrors
			assert.True(t, errors.As(err, &verrs), "want validation errors, got %v", err)
			assert.Zero(t, f.client.TotalCalls())
		})
	}
}

func TestService_GradeSubmission(t *testing.T) {
	f := gradingFixture()

	sub, err := f.svc.GradeSubmission(context.Background(), f.client, "A", "w1", "s1", classroom.GradeSubmission{Grade: "90"})
	require.NoError(t, err)
	assert.Equal(t, "s1", sub.ID)
	assert.Equal(t, classroom.StateReturned, sub.State)
	require.NotNil(t, sub.AssignedGrade)
	assert.Equal(t, 90.0, *sub.AssignedGrade)

	assert.Equal(t, 1, f.client.Calls(classroomtest.OpGetSubmission))
	assert.Equal(t, 1, f.client.Calls(classroomtest.OpPatchSubmissionGrade))
	assert.Equal(t, 1, f.client.Calls(classroomtest.OpReturnSubmission))
	assert.Empty(t, f.mailer.Messages())
}

func TestService_GradeSubmission_ZeroGrade(t *testing.T) {
	f := gradingFixture()

	sub, err := f.svc.GradeSubmission(context.Background(), f.client, "A", "w1", "s1", classroom.GradeSubmission{Grade: "0"})
	require.NoError(t, err)
	require.NotNil(t, sub.AssignedGrade)
	assert.Zero(t, *sub.AssignedGrade)
}

func TestService_GradeSubmission_ReturnFailure(t *testing.T) {
	f := gradingFixture()
	f.client.Errors[classroomtest.OpReturnSubmission] = errUpstream

	_, err := f.svc.GradeSubmission(
		context.Background(), f.client, "A", "w1", "s1",
		classroom.GradeSubmission{Grade: "75", Feedback: "Well done"},
	)
	var partial *classroom.PartialGradeError
	require.True(t, errors.As(err, &partial), "want *PartialGradeError, got %v", err)
	assert.ErrorIs(t, err, errUpstream)
	require.NotNil(t, partial.Submission.AssignedGrade)
	assert.Equal(t, 75.0, *partial.Submission.AssignedGrade)
	assert.Equal(t, classroom.StateTurnedIn, partial.Submission.State)

	// graded upstream, not returned, no feedback sent
	stored, _ := f.client.GetSubmission(context.Background(), "A", "w1", "s1")
	assert.Equal(t, classroom.StateTurnedIn, stored.State)
	assert.Equal(t, 75.0, *stored.AssignedGrade)
	assert.Empty(t, f.mailer.Messages())
	assert.Len(t, f.logger.Entries("error"), 1)
}

func TestService_GradeSubmission_PatchFailure(t *testing.T) {
	f := gradingFixture()
	f.client.Errors[classroomtest.OpPatchSubmissionGrade] = errUpstream

	_, err := f.svc.GradeSubmission(context.Background(), f.client, "A", "w1", "s1", classroom.GradeSubmission{Grade: "75"})
	assert.ErrorIs(t, err, errUpstream)
	var partial *classroom.PartialGradeError
	assert.False(t, errors.As(err, &partial))
	assert.Zero(t, f.client.Calls(classroomtest.OpReturnSubmission))
}

func TestService_GradeSubmission_UnknownSubmission(t *testing.T) {
	f := gradingFixture()

	_, err := f.svc.GradeSubmission(context.Background(), f.client, "A", "w1", "nope", classroom.GradeSubmission{Grade: "75"})
	assert.Error(t, err)
	assert.Zero(t, f.client.Calls(classroomtest.OpPatchSubmissionGrade))
}

func TestService_GradeSubmission_Feedback(t *testing.T) {
	f := gradingFixture()

	_, err := f.svc.GradeSubmission(
		context.Background(), f.client, "A", "w1", "s1",
		classroom.GradeSubmission{Grade: "88", Feedback: "Great structure"},
	)
	require.NoError(t, err)

	msgs := f.mailer.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "ada@school.test", msgs[0].To[0].Address)
	assert.Equal(t, "Feedback on Essay", msgs[0].Subject)
	assert.Equal(t, "grade_feedback", msgs[0].TemplateName)
}

func TestService_GradeSubmission_FeedbackWithoutProfile(t *testing.T) {
	f := gradingFixture()
	f.client.Errors[classroomtest.OpGetUserProfile] = errUpstream

	sub, err := f.svc.GradeSubmission(
		context.Background(), f.client, "A", "w1", "s1",
		classroom.GradeSubmission{Grade: "88", Feedback: "Great structure"},
	)
	require.NoError(t, err)
	assert.Equal(t, classroom.StateReturned, sub.State)
	assert.Empty(t, f.mailer.Messages())
	assert.NotEmpty(t, f.logger.Entries("warn"))
}
