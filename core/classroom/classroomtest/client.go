// Package classroomtest provides an in-memory classroom.Client for tests.
package classroomtest

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/serafinsanchez/googleclassroom-portal/core/classroom"
)

// Operation names, used as keys (optionally followed by ":" and a resource ID) in Client.Errors and Client.Delays.
const (
	OpListCourses          = "ListCourses"
	OpListStudents         = "ListStudents"
	OpListCourseWork       = "ListCourseWork"
	OpListSubmissions      = "ListSubmissions"
	OpListTopics           = "ListTopics"
	OpGetCourseWork        = "GetCourseWork"
	OpGetSubmission        = "GetSubmission"
	OpGetUserProfile       = "GetUserProfile"
	OpPatchSubmissionGrade = "PatchSubmissionGrade"
	OpReturnSubmission     = "ReturnSubmission"
	OpCreateAnnouncement   = "CreateAnnouncement"
	OpAddTeacher           = "AddTeacher"
)

// Client serves canned data page by page and records the calls it receives.
type Client struct {
	Courses     []classroom.Course
	Students    map[string][]classroom.Student    // by course ID
	CourseWork  map[string][]classroom.CourseWork // by course ID
	Submissions map[string][]classroom.Submission // by SubmissionsKey
	Profiles    map[string]classroom.UserProfile  // by user ID
	Topics      map[string][]classroom.Topic      // by course ID

	// PageSize is used when the caller does not ask for one.
	PageSize int64
	// Errors makes an operation fail: keys are "Op" or "Op:resourceID".
	Errors map[string]error
	// Delays slows an operation down: keys are "Op" or "Op:resourceID".
	Delays map[string]time.Duration

	mu            sync.Mutex
	calls         map[string]int
	inFlight      int
	maxInFlight   int
	Announcements []classroom.Announcement
	Teachers      map[string][]string // by course ID
}

var _ classroom.Client = (*Client)(nil)

func New() *Client {
	return &Client{
		Students:    make(map[string][]classroom.Student),
		CourseWork:  make(map[string][]classroom.CourseWork),
		Submissions: make(map[string][]classroom.Submission),
		Profiles:    make(map[string]classroom.UserProfile),
		Topics:      make(map[string][]classroom.Topic),
		Teachers:    make(map[string][]string),
		PageSize:    2,
		Errors:      make(map[string]error),
		Delays:      make(map[string]time.Duration),
		calls:       make(map[string]int),
	}
}

func SubmissionsKey(courseID, courseWorkID string) string {
	return courseID + "/" + courseWorkID
}

// Calls returns how many times op was called.
func (c *Client) Calls(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[op]
}

// TotalCalls returns the number of calls received, all operations included.
func (c *Client) TotalCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int
	for _, n := range c.calls {
		total += n
	}
	return total
}

// MaxInFlight returns the highest number of calls that were running at the same time.
func (c *Client) MaxInFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxInFlight
}

// enter records a call and applies the configured delay and error.
func (c *Client) enter(ctx context.Context, op, id string) (func(), error) {
	c.mu.Lock()
	c.calls[op]++
	c.inFlight++
	if c.inFlight > c.maxInFlight {
		c.maxInFlight = c.inFlight
	}
	delay, ok := c.Delays[op+":"+id]
	if !ok {
		delay = c.Delays[op]
	}
	err, ok := c.Errors[op+":"+id]
	if !ok {
		err = c.Errors[op]
	}
	c.mu.Unlock()

	leave := func() {
		c.mu.Lock()
		c.inFlight--
		c.mu.Unlock()
	}

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			leave()
			return nil, ctx.Err()
		}
	}
	if err != nil {
		leave()
		return nil, err
	}
	return leave, nil
}

func paginate[T any](items []T, opts classroom.ListOptions, defaultSize int64) (classroom.Page[T], error) {
	size := opts.PageSize
	if size <= 0 {
		size = defaultSize
	}
	if size <= 0 {
		size = int64(len(items)) + 1
	}
	start := 0
	if opts.PageToken != "" {
		var err error
		if start, err = strconv.Atoi(opts.PageToken); err != nil || start < 0 || start > len(items) {
			return classroom.Page[T]{}, fmt.Errorf("invalid page token %q", opts.PageToken)
		}
	}
	end := start + int(size)
	if end > len(items) {
		end = len(items)
	}
	page := classroom.Page[T]{Items: append([]T(nil), items[start:end]...)}
	if end < len(items) {
		page.NextPageToken = strconv.Itoa(end)
	}
	return page, nil
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s not found", kind, id)
}

func (c *Client) ListCourses(ctx context.Context, states []string, opts classroom.ListOptions) (classroom.Page[classroom.Course], error) {
	leave, err := c.enter(ctx, OpListCourses, "")
	if err != nil {
		return classroom.Page[classroom.Course]{}, err
	}
	defer leave()

	courses := make([]classroom.Course, 0, len(c.Courses))
	for _, course := range c.Courses {
		if len(states) == 0 || course.CourseState == "" || contains(states, course.CourseState) {
			courses = append(courses, course)
		}
	}
	return paginate(courses, opts, c.PageSize)
}

func (c *Client) ListStudents(ctx context.Context, courseID string, opts classroom.ListOptions) (classroom.Page[classroom.Student], error) {
	leave, err := c.enter(ctx, OpListStudents, courseID)
	if err != nil {
		return classroom.Page[classroom.Student]{}, err
	}
	defer leave()
	return paginate(c.Students[courseID], opts, c.PageSize)
}

func (c *Client) ListCourseWork(ctx context.Context, courseID string, opts classroom.ListOptions) (classroom.Page[classroom.CourseWork], error) {
	leave, err := c.enter(ctx, OpListCourseWork, courseID)
	if err != nil {
		return classroom.Page[classroom.CourseWork]{}, err
	}
	defer leave()
	return paginate(c.CourseWork[courseID], opts, c.PageSize)
}

func (c *Client) ListSubmissions(
	ctx context.Context,
	courseID, courseWorkID string,
	states []classroom.SubmissionState,
	opts classroom.ListOptions,
) (classroom.Page[classroom.Submission], error) {
	leave, err := c.enter(ctx, OpListSubmissions, courseWorkID)
	if err != nil {
		return classroom.Page[classroom.Submission]{}, err
	}
	defer leave()

	subs := make([]classroom.Submission, 0)
	for _, sub := range c.Submissions[SubmissionsKey(courseID, courseWorkID)] {
		if len(states) == 0 || containsState(states, sub.State) {
			subs = append(subs, sub)
		}
	}
	return paginate(subs, opts, c.PageSize)
}

func (c *Client) ListTopics(ctx context.Context, courseID string, opts classroom.ListOptions) (classroom.Page[classroom.Topic], error) {
	leave, err := c.enter(ctx, OpListTopics, courseID)
	if err != nil {
		return classroom.Page[classroom.Topic]{}, err
	}
	defer leave()
	return paginate(c.Topics[courseID], opts, c.PageSize)
}

func (c *Client) GetCourseWork(ctx context.Context, courseID, courseWorkID string) (classroom.CourseWork, error) {
	leave, err := c.enter(ctx, OpGetCourseWork, courseWorkID)
	if err != nil {
		return classroom.CourseWork{}, err
	}
	defer leave()

	for _, cw := range c.CourseWork[courseID] {
		if cw.ID == courseWorkID {
			return cw, nil
		}
	}
	return classroom.CourseWork{}, notFound("course work", courseWorkID)
}

func (c *Client) findSubmission(courseID, courseWorkID, submissionID string) (int, error) {
	for i, sub := range c.Submissions[SubmissionsKey(courseID, courseWorkID)] {
		if sub.ID == submissionID {
			return i, nil
		}
	}
	return -1, notFound("submission", submissionID)
}

func (c *Client) GetSubmission(ctx context.Context, courseID, courseWorkID, submissionID string) (classroom.Submission, error) {
	leave, err := c.enter(ctx, OpGetSubmission, submissionID)
	if err != nil {
		return classroom.Submission{}, err
	}
	defer leave()

	c.mu.Lock()
	defer c.mu.Unlock()
	i, err := c.findSubmission(courseID, courseWorkID, submissionID)
	if err != nil {
		return classroom.Submission{}, err
	}
	return c.Submissions[SubmissionsKey(courseID, courseWorkID)][i], nil
}

func (c *Client) GetUserProfile(ctx context.Context, userID string) (classroom.UserProfile, error) {
	leave, err := c.enter(ctx, OpGetUserProfile, userID)
	if err != nil {
		return classroom.UserProfile{}, err
	}
	defer leave()

	if p, ok := c.Profiles[userID]; ok {
		return p, nil
	}
	return classroom.UserProfile{}, notFound("user", userID)
}

func (c *Client) PatchSubmissionGrade(ctx context.Context, courseID, courseWorkID, submissionID string, grade int64) (classroom.Submission, error) {
	leave, err := c.enter(ctx, OpPatchSubmissionGrade, submissionID)
	if err != nil {
		return classroom.Submission{}, err
	}
	defer leave()

	c.mu.Lock()
	defer c.mu.Unlock()
	i, err := c.findSubmission(courseID, courseWorkID, submissionID)
	if err != nil {
		return classroom.Submission{}, err
	}
	g := float64(grade)
	subs := c.Submissions[SubmissionsKey(courseID, courseWorkID)]
	subs[i].AssignedGrade = &g
	return subs[i], nil
}

func (c *Client) ReturnSubmission(ctx context.Context, courseID, courseWorkID, submissionID string) error {
	leave, err := c.enter(ctx, OpReturnSubmission, submissionID)
	if err != nil {
		return err
	}
	defer leave()

	c.mu.Lock()
	defer c.mu.Unlock()
	i, err := c.findSubmission(courseID, courseWorkID, submissionID)
	if err != nil {
		return err
	}
	c.Submissions[SubmissionsKey(courseID, courseWorkID)][i].State = classroom.StateReturned
	return nil
}

func (c *Client) CreateAnnouncement(ctx context.Context, courseID string, na classroom.NewAnnouncement) (classroom.Announcement, error) {
	leave, err := c.enter(ctx, OpCreateAnnouncement, courseID)
	if err != nil {
		return classroom.Announcement{}, err
	}
	defer leave()

	c.mu.Lock()
	defer c.mu.Unlock()
	ann := classroom.Announcement{
		ID:       "ann" + strconv.Itoa(len(c.Announcements)+1),
		CourseID: courseID,
		Text:     na.Text,
		State:    "PUBLISHED",
	}
	for _, link := range na.Links {
		ann.Materials = append(ann.Materials, classroom.Material{Type: "link", URL: link})
	}
	c.Announcements = append(c.Announcements, ann)
	return ann, nil
}

func (c *Client) AddTeacher(ctx context.Context, courseID, userID string) error {
	leave, err := c.enter(ctx, OpAddTeacher, courseID)
	if err != nil {
		return err
	}
	defer leave()

	c.mu.Lock()
	defer c.mu.Unlock()
	if contains(c.Teachers[courseID], userID) {
		return fmt.Errorf("user %s already teaches course %s", userID, courseID)
	}
	c.Teachers[courseID] = append(c.Teachers[courseID], userID)
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsState(list []classroom.SubmissionState, s classroom.SubmissionState) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
