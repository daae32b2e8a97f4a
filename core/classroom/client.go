package classroom

import "context"

// Page is one page of a cursor-based listing.
// An empty NextPageToken means it is the last page.
type Page[T any] struct {
	Items         []T
	NextPageToken string
}

type ListOptions struct {
	PageToken string
	PageSize  int64 // 0 lets the upstream pick
}

// Client is the authenticated Classroom API capability the aggregators run against.
// Implementations are bound to a single caller's credentials; token refresh is their concern.
type Client interface {
	ListCourses(ctx context.Context, states []string, opts ListOptions) (Page[Course], error)
	ListStudents(ctx context.Context, courseID string, opts ListOptions) (Page[Student], error)
	// ListCourseWork lists the course's work, most recently updated first.
	ListCourseWork(ctx context.Context, courseID string, opts ListOptions) (Page[CourseWork], error)
	// ListSubmissions lists submissions in any of the given states; no states means all of them.
	ListSubmissions(ctx context.Context, courseID, courseWorkID string, states []SubmissionState, opts ListOptions) (Page[Submission], error)
	ListTopics(ctx context.Context, courseID string, opts ListOptions) (Page[Topic], error)

	GetCourseWork(ctx context.Context, courseID, courseWorkID string) (CourseWork, error)
	GetSubmission(ctx context.Context, courseID, courseWorkID, submissionID string) (Submission, error)
	GetUserProfile(ctx context.Context, userID string) (UserProfile, error)

	// PatchSubmissionGrade updates the assignedGrade field only.
	PatchSubmissionGrade(ctx context.Context, courseID, courseWorkID, submissionID string, grade int64) (Submission, error)
	ReturnSubmission(ctx context.Context, courseID, courseWorkID, submissionID string) error
	CreateAnnouncement(ctx context.Context, courseID string, na NewAnnouncement) (Announcement, error)
	// AddTeacher adds userID (an email or a user ID) to the teachers of the course.
	AddTeacher(ctx context.Context, courseID, userID string) error
}
