// enrollment.go
package main

import (
	"time"

	"gorm.io/gorm"
)

// enrollStudent creates (or reactivates) the single enrollment row for the
// (course, student) pair. The bool result is true when the student was
// already actively enrolled and nothing changed.
func enrollStudent(gdb *gorm.DB, courseID, studentID uint) (*Enrollment, bool, error) {
	var enrollment Enrollment
	err := gdb.Where("course_id = ? AND student_id = ?", courseID, studentID).
		First(&enrollment).Error

	switch {
	case err == nil:
		if enrollment.IsActive {
			return &enrollment, true, nil
		}
		// re-enrollment after unenroll reactivates the existing row
		enrollment.IsActive = true
		enrollment.EnrolledAt = time.Now().UTC()
		if err := gdb.Save(&enrollment).Error; err != nil {
			return nil, false, err
		}
		return &enrollment, false, nil

	case err == gorm.ErrRecordNotFound:
		enrollment = Enrollment{
			CourseID:   courseID,
			StudentID:  studentID,
			IsActive:   true,
			EnrolledAt: time.Now().UTC(),
		}
		if err := gdb.Create(&enrollment).Error; err != nil {
			if isUniqueViolation(err) {
				// lost a concurrent enroll; the winner's row is the answer
				if ferr := gdb.Where("course_id = ? AND student_id = ?", courseID, studentID).
					First(&enrollment).Error; ferr != nil {
					return nil, false, ferr
				}
				return &enrollment, true, nil
			}
			return nil, false, err
		}
		return &enrollment, false, nil

	default:
		return nil, false, err
	}
}

// unenrollStudent soft-deletes the enrollment. Lesson progress is kept.
// Missing enrollment is a silent no-op.
func unenrollStudent(gdb *gorm.DB, courseID, studentID uint) error {
	var enrollment Enrollment
	err := gdb.Where("course_id = ? AND student_id = ?", courseID, studentID).
		First(&enrollment).Error
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	enrollment.IsActive = false
	return gdb.Save(&enrollment).Error
}

// isEnrolled reports whether an active enrollment row exists.
func isEnrolled(gdb *gorm.DB, courseID, studentID uint) (bool, error) {
	var count int64
	err := gdb.Model(&Enrollment{}).
		Where("course_id = ? AND student_id = ? AND is_active = ?", courseID, studentID, true).
		Count(&count).Error
	return count > 0, err
}

// activeEnrollment fetches the active enrollment row, or errNotFound.
func activeEnrollment(gdb *gorm.DB, courseID, studentID uint) (*Enrollment, error) {
	var enrollment Enrollment
	err := gdb.Where("course_id = ? AND student_id = ? AND is_active = ?", courseID, studentID, true).
		First(&enrollment).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errNotFound
	}
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}
