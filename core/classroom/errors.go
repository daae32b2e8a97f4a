package classroom

import "fmt"

// PartialGradeError is returned by Service.GradeSubmission when the grade was written but the
// submission could not be returned afterwards. Nothing is rolled back: Submission holds the graded,
// not returned, upstream state.
type PartialGradeError struct {
	Submission Submission
	Err        error
}

func (err *PartialGradeError) Error() string {
	return fmt.Sprintf("submission %s graded but not returned: %v", err.Submission.ID, err.Err)
}

func (err *PartialGradeError) Unwrap() error { return err.Err }
