// dashboard.go
package main

import (
	"gorm.io/gorm"
)

// ---------- Admin ----------

type adminDashboard struct {
	TotalUsers       int64
	TotalCourses     int64
	TotalEnrollments int64
	TotalQuizzes     int64
	RecentCourses    []Course
	PopularCourses   []Course
	RecentUsers      []User
}

func adminDashboardStats(gdb *gorm.DB) (*adminDashboard, error) {
	stats := &adminDashboard{}

	if err := gdb.Model(&User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := gdb.Model(&Course{}).Count(&stats.TotalCourses).Error; err != nil {
		return nil, err
	}
	if err := gdb.Model(&Enrollment{}).Where("is_active = ?", true).
		Count(&stats.TotalEnrollments).Error; err != nil {
		return nil, err
	}
	if err := gdb.Model(&Quiz{}).Count(&stats.TotalQuizzes).Error; err != nil {
		return nil, err
	}

	if err := gdb.Preload("Instructor").
		Order("created_at DESC").
		Limit(5).
		Find(&stats.RecentCourses).Error; err != nil {
		return nil, err
	}

	// active-enrollment count descending, id ascending as the tie-break
	if err := gdb.Model(&Course{}).
		Select("courses.*").
		Joins("LEFT JOIN enrollments ON enrollments.course_id = courses.id AND enrollments.is_active = ?", true).
		Group("courses.id").
		Order("COUNT(enrollments.id) DESC, courses.id ASC").
		Limit(5).
		Preload("Instructor").
		Find(&stats.PopularCourses).Error; err != nil {
		return nil, err
	}

	if err := gdb.Order("created_at DESC").
		Limit(5).
		Find(&stats.RecentUsers).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

// ---------- Instructor ----------

type instructorCourse struct {
	Course            Course
	ActiveEnrollments int64
}

type instructorDashboard struct {
	MyCourses     int64
	TotalStudents int64
	Courses       []instructorCourse
}

func instructorDashboardStats(gdb *gorm.DB, instructorID uint) (*instructorDashboard, error) {
	stats := &instructorDashboard{}

	if err := gdb.Model(&Course{}).
		Where("instructor_id = ?", instructorID).
		Count(&stats.MyCourses).Error; err != nil {
		return nil, err
	}

	if err := gdb.Model(&Enrollment{}).
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("courses.instructor_id = ? AND enrollments.is_active = ?", instructorID, true).
		Distinct("enrollments.student_id").
		Count(&stats.TotalStudents).Error; err != nil {
		return nil, err
	}

	var courses []Course
	if err := gdb.Where("instructor_id = ?", instructorID).
		Order("id ASC").
		Find(&courses).Error; err != nil {
		return nil, err
	}

	// second pass: enrollment counts per course, assembled in memory
	counts := make(map[uint]int64, len(courses))
	if len(courses) > 0 {
		ids := make([]uint, 0, len(courses))
		for _, c := range courses {
			ids = append(ids, c.ID)
		}
		rows := []struct {
			CourseID uint
			N        int64
		}{}
		if err := gdb.Model(&Enrollment{}).
			Select("course_id, COUNT(*) AS n").
			Where("course_id IN ? AND is_active = ?", ids, true).
			Group("course_id").
			Scan(&rows).Error; err != nil {
			return nil, err
		}
		for _, r := range rows {
			counts[r.CourseID] = r.N
		}
	}

	for _, c := range courses {
		stats.Courses = append(stats.Courses, instructorCourse{
			Course:            c,
			ActiveEnrollments: counts[c.ID],
		})
	}
	return stats, nil
}

// ---------- Student ----------

type studentDashboard struct {
	EnrolledCourses  int
	CompletedLessons int64
	TotalLessons     int64
	RecentAttempts   []QuizAttempt
	Enrollments      []Enrollment
}

func studentDashboardStats(gdb *gorm.DB, studentID uint) (*studentDashboard, error) {
	stats := &studentDashboard{}

	var enrollments []Enrollment
	if err := gdb.Preload("Course").
		Where("student_id = ? AND is_active = ?", studentID, true).
		Find(&enrollments).Error; err != nil {
		return nil, err
	}
	stats.Enrollments = enrollments
	stats.EnrolledCourses = len(enrollments)

	if len(enrollments) > 0 {
		enrollmentIDs := make([]uint, 0, len(enrollments))
		courseIDs := make([]uint, 0, len(enrollments))
		for _, e := range enrollments {
			enrollmentIDs = append(enrollmentIDs, e.ID)
			courseIDs = append(courseIDs, e.CourseID)
		}

		if err := gdb.Model(&LessonProgress{}).
			Where("enrollment_id IN ?", enrollmentIDs).
			Count(&stats.CompletedLessons).Error; err != nil {
			return nil, err
		}
		if err := gdb.Model(&Lesson{}).
			Where("course_id IN ?", courseIDs).
			Count(&stats.TotalLessons).Error; err != nil {
			return nil, err
		}
	}

	// completed_at is NULL for abandoned attempts; postgres would sort
	// those first under a plain DESC, so pin them to the end explicitly.
	if err := gdb.Preload("Quiz.Course").
		Where("student_id = ?", studentID).
		Order("completed_at DESC NULLS LAST").
		Limit(10).
		Find(&stats.RecentAttempts).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
