// dashboard_test.go
package main

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_adminDashboardStats_countsAndPopularOrdering(t *testing.T) {
	gdb := newTestDB(t)
	instructor := createUser(t, gdb, "i@lms.test", RoleInstructor)

	// four courses with active-enrollment counts 5, 2, 2, 8
	counts := []int{5, 2, 2, 8}
	courseIDs := make([]uint, len(counts))
	for i, n := range counts {
		course := createCourse(t, gdb, instructor.ID, fmt.Sprintf("Course %d", i+1))
		courseIDs[i] = course.ID
		for j := 0; j < n; j++ {
			student := createUser(t, gdb, fmt.Sprintf("s%d-%d@lms.test", i, j), RoleStudent)
			enrollActive(t, gdb, course.ID, student.ID)
		}
	}

	// one inactive enrollment must not count anywhere
	dropout := createUser(t, gdb, "dropout@lms.test", RoleStudent)
	e := enrollActive(t, gdb, courseIDs[1], dropout.ID)
	require.NoError(t, gdb.Model(&e).Update("is_active", false).Error)

	stats, err := adminDashboardStats(gdb)
	require.NoError(t, err)

	assert.EqualValues(t, 19, stats.TotalUsers) // instructor + 17 students + dropout
	assert.EqualValues(t, 4, stats.TotalCourses)
	assert.EqualValues(t, 17, stats.TotalEnrollments)
	assert.EqualValues(t, 0, stats.TotalQuizzes)

	// ordering [8,5,2,2]; the tied courses come in id order
	require.Len(t, stats.PopularCourses, 4)
	assert.Equal(t, courseIDs[3], stats.PopularCourses[0].ID)
	assert.Equal(t, courseIDs[0], stats.PopularCourses[1].ID)
	assert.Equal(t, courseIDs[1], stats.PopularCourses[2].ID)
	assert.Equal(t, courseIDs[2], stats.PopularCourses[3].ID)

	assert.Len(t, stats.RecentCourses, 4)
	assert.Len(t, stats.RecentUsers, 5)
}

func Test_instructorDashboardStats(t *testing.T) {
	gdb := newTestDB(t)
	instructor := createUser(t, gdb, "i@lms.test", RoleInstructor)
	rival := createUser(t, gdb, "rival@lms.test", RoleInstructor)

	c1 := createCourse(t, gdb, instructor.ID, "Mine A")
	c2 := createCourse(t, gdb, instructor.ID, "Mine B")
	other := createCourse(t, gdb, rival.ID, "Not mine")

	s1 := createUser(t, gdb, "s1@lms.test", RoleStudent)
	s2 := createUser(t, gdb, "s2@lms.test", RoleStudent)

	// s1 takes both of the instructor's courses: counted once
	enrollActive(t, gdb, c1.ID, s1.ID)
	enrollActive(t, gdb, c2.ID, s1.ID)
	enrollActive(t, gdb, c1.ID, s2.ID)
	enrollActive(t, gdb, other.ID, s2.ID)

	stats, err := instructorDashboardStats(gdb, instructor.ID)
	require.NoError(t, err)

	assert.EqualValues(t, 2, stats.MyCourses)
	assert.EqualValues(t, 2, stats.TotalStudents, "distinct students across own courses")

	require.Len(t, stats.Courses, 2)
	assert.Equal(t, c1.ID, stats.Courses[0].Course.ID)
	assert.EqualValues(t, 2, stats.Courses[0].ActiveEnrollments)
	assert.Equal(t, c2.ID, stats.Courses[1].Course.ID)
	assert.EqualValues(t, 1, stats.Courses[1].ActiveEnrollments)
}

func Test_studentDashboardStats(t *testing.T) {
	gdb := newTestDB(t)
	instructor := createUser(t, gdb, "i@lms.test", RoleInstructor)
	student := createUser(t, gdb, "s@lms.test", RoleStudent)

	c1 := createCourse(t, gdb, instructor.ID, "Course A")
	c2 := createCourse(t, gdb, instructor.ID, "Course B")
	l1 := createLesson(t, gdb, c1.ID, 1)
	createLesson(t, gdb, c1.ID, 2)
	createLesson(t, gdb, c2.ID, 1)

	e1 := enrollActive(t, gdb, c1.ID, student.ID)
	enrollActive(t, gdb, c2.ID, student.ID)
	require.NoError(t, markLessonComplete(gdb, e1.ID, l1.ID))

	quiz := createQuiz(t, gdb, c1.ID, 5)
	q := createQuestion(t, gdb, quiz.ID, 1, "A")
	for i := 0; i < 3; i++ {
		start, err := startQuizAttempt(gdb, quiz.ID, student.ID)
		require.NoError(t, err)
		_, err = submitQuizAttempt(gdb, start.Attempt.ID, student.ID, map[uint]string{q.ID: "A"})
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond) // distinct completion times for the ordering
	}

	stats, err := studentDashboardStats(gdb, student.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.EnrolledCourses)
	assert.EqualValues(t, 1, stats.CompletedLessons)
	assert.EqualValues(t, 3, stats.TotalLessons)
	assert.Len(t, stats.Enrollments, 2)

	require.Len(t, stats.RecentAttempts, 3)
	for i := 1; i < len(stats.RecentAttempts); i++ {
		prev := stats.RecentAttempts[i-1].CompletedAt
		cur := stats.RecentAttempts[i].CompletedAt
		require.NotNil(t, prev)
		require.NotNil(t, cur)
		assert.False(t, prev.Before(*cur), "attempts must come most recent first")
	}
}

func Test_studentDashboardStats_abandonedAttemptsLast(t *testing.T) {
	gdb := newTestDB(t)
	instructor := createUser(t, gdb, "i@lms.test", RoleInstructor)
	student := createUser(t, gdb, "s@lms.test", RoleStudent)

	course := createCourse(t, gdb, instructor.ID, "Course A")
	enrollActive(t, gdb, course.ID, student.ID)
	quiz := createQuiz(t, gdb, course.ID, 5)
	q := createQuestion(t, gdb, quiz.ID, 1, "A")

	// first attempt is started and never submitted, the next two complete
	_, err := startQuizAttempt(gdb, quiz.ID, student.ID)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		start, err := startQuizAttempt(gdb, quiz.ID, student.ID)
		require.NoError(t, err)
		_, err = submitQuizAttempt(gdb, start.Attempt.ID, student.ID, map[uint]string{q.ID: "A"})
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	stats, err := studentDashboardStats(gdb, student.ID)
	require.NoError(t, err)

	require.Len(t, stats.RecentAttempts, 3)
	assert.NotNil(t, stats.RecentAttempts[0].CompletedAt)
	assert.NotNil(t, stats.RecentAttempts[1].CompletedAt)
	assert.Nil(t, stats.RecentAttempts[2].CompletedAt, "abandoned attempt must sort after completed ones")
}
