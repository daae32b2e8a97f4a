package classroom

import (
	"encoding/json"
	"strconv"
	"time"
)

// Work types
const (
	WorkTypeAssignment             = "ASSIGNMENT"
	WorkTypeShortAnswerQuestion    = "SHORT_ANSWER_QUESTION"
	WorkTypeMultipleChoiceQuestion = "MULTIPLE_CHOICE_QUESTION"
	WorkTypeMaterial               = "MATERIAL"
)

// SubmissionState is the lifecycle state of a Submission.
type SubmissionState string

const (
	StateNew                SubmissionState = "NEW"
	StateCreated            SubmissionState = "CREATED"
	StateTurnedIn           SubmissionState = "TURNED_IN"
	StateReturned           SubmissionState = "RETURNED"
	StateReclaimedByStudent SubmissionState = "RECLAIMED_BY_STUDENT"
)

// TurnedIn reports whether the student handed the work in (whether or not it has been returned since).
func (s SubmissionState) TurnedIn() bool {
	return s == StateTurnedIn || s == StateReturned
}

var (
	// detailedSubmissionStates are the states listed on the submissions page.
	detailedSubmissionStates = []SubmissionState{StateTurnedIn, StateReturned, StateNew, StateCreated}

	activeCourseStates = []string{"ACTIVE"}
)

type Course struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name"`
	Section            string       `json:"section,omitempty"`
	DescriptionHeading string       `json:"descriptionHeading,omitempty"`
	Room               string       `json:"room,omitempty"`
	EnrollmentCode     string       `json:"enrollmentCode,omitempty"`
	CourseState        string       `json:"courseState,omitempty"`
	AlternateLink      string       `json:"alternateLink,omitempty"`
	StudentCount       int          `json:"studentCount"`
}

// CourseWithWork is a course listed along with its work. CourseWork is never nil.
type CourseWithWork struct {
	Course
	CourseWork []CourseWork `json:"courseWork"`
}

// Date is a calendar date in the course's time zone.
type Date struct {
	Year  int64 `json:"year"`
	Month int64 `json:"month"`
	Day   int64 `json:"day"`
}

type TimeOfDay struct {
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
}

// Material is a resource attached to a course-work item or announcement.
type Material struct {
	Type         string `json:"type"` // driveFile | link | youtubeVideo | form
	ID           string `json:"id,omitempty"`
	Title        string `json:"title,omitempty"`
	URL          string `json:"url,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// Attachment is a file or link a student attached to a Submission.
type Attachment = Material

type SubmissionStats struct {
	StudentCount     int `json:"studentCount"`
	TurnedInStudents int `json:"turnedInStudents"`
}

// NewSubmissionStats counts the submissions visible for a course-work item and those handed in.
func NewSubmissionStats(subs []Submission) SubmissionStats {
	stats := SubmissionStats{StudentCount: len(subs)}
	for _, sub := range subs {
		if sub.State.TurnedIn() {
			stats.TurnedInStudents++
		}
	}
	return stats
}

type CourseWork struct {
	ID              string           `json:"id"`
	CourseID        string           `json:"courseId"`
	Title           string           `json:"title"`
	Description     string           `json:"description,omitempty"`
	WorkType        string           `json:"workType"`
	State           string           `json:"state,omitempty"`
	MaxPoints       *float64         `json:"maxPoints,omitempty"`
	DueDate         *Date            `json:"dueDate,omitempty"`
	DueTime         *TimeOfDay       `json:"dueTime,omitempty"`
	AlternateLink   string           `json:"alternateLink,omitempty"`
	Materials       []Material       `json:"materials,omitempty"`
	CreationTime    time.Time        `json:"creationTime"`
	UpdateTime      time.Time        `json:"updateTime"`
	SubmissionStats *SubmissionStats `json:"submissionStats,omitempty"`
}

type Student struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	PhotoURL string `json:"photoUrl,omitempty"`
	CourseID string `json:"courseId"`
}

// StudentProfile is the identity merged onto a Submission.
type StudentProfile struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	PhotoURL string `json:"photoUrl,omitempty"`
}

// UserProfile is a Classroom user as returned by a profile lookup.
type UserProfile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	PhotoURL string `json:"photoUrl,omitempty"`
}

func (p UserProfile) StudentProfile() *StudentProfile {
	return &StudentProfile{Name: p.Name, Email: p.Email, PhotoURL: p.PhotoURL}
}

type Submission struct {
	ID            string          `json:"id"`
	CourseID      string          `json:"courseId"`
	CourseWorkID  string          `json:"courseWorkId"`
	UserID        string          `json:"userId"`
	State         SubmissionState `json:"state"`
	Late          bool            `json:"late"`
	AssignedGrade *float64        `json:"assignedGrade,omitempty"`
	DraftGrade    *float64        `json:"draftGrade,omitempty"`
	AlternateLink string          `json:"alternateLink,omitempty"`
	CreationTime  time.Time       `json:"creationTime"`
	UpdateTime    time.Time       `json:"updateTime"`
	Attachments   []Attachment    `json:"attachments,omitempty"`
	Student       *StudentProfile `json:"student,omitempty"`
}

type Topic struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	UpdateTime time.Time `json:"updateTime"`
}

type Announcement struct {
	ID            string     `json:"id"`
	CourseID      string     `json:"courseId"`
	Text          string     `json:"text"`
	State         string     `json:"state"`
	AlternateLink string     `json:"alternateLink,omitempty"`
	Materials     []Material `json:"materials,omitempty"`
	CreationTime  time.Time  `json:"creationTime"`
}

// NewAnnouncement contains the information needed to publish an Announcement.
type NewAnnouncement struct {
	Text  string   `json:"text" validate:"required,notblank,max=30000"`
	Links []string `json:"links" validate:"omitempty,max=20,dive,url"`
}

// TeacherInvite names the user to invite as a co-teacher of a course.
type TeacherInvite struct {
	Email string `json:"email" validate:"required,email"`
}

// CalendarItem is a course-work item as shown on the course calendar.
type CalendarItem struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	DueDate         *Date            `json:"dueDate,omitempty"`
	DueTime         *TimeOfDay       `json:"dueTime,omitempty"`
	Type            string           `json:"type"`
	MaxPoints       *float64         `json:"maxPoints,omitempty"`
	SubmissionStats *SubmissionStats `json:"submissionStats,omitempty"`
}

// CourseMaterial is a Material together with the title of the course-work item it comes from.
type CourseMaterial struct {
	Material
	FromAssignment string `json:"fromAssignment"`
}

// GradeSubmission is the grade command payload.
// Grade accepts a JSON number or a numeric string, but must hold a non-negative integer.
type GradeSubmission struct {
	Grade    json.Number `json:"grade" validate:"required,intgrade"`
	Feedback string      `json:"feedback" validate:"max=10000"`
}

// Value returns the validated grade.
func (gs GradeSubmission) Value() int64 {
	v, _ := strconv.ParseInt(string(gs.Grade), 10, 64)
	return v
}
