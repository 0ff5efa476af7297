package progress

import (
	courseModels "lms/models/course"

	"gorm.io/gorm"
)

// SectionInfo is the structural data completeSection needs
type SectionInfo struct {
	ID              uint
	OrderIndex      int
	RequiredLessons []uint
}

// StructureProvider is read-only access to a course's authoritative
// structure. Derived progress figures are always recomputed from it, never
// cached on the progress document.
type StructureProvider interface {
	TotalLessons(courseID uint) (int, error)
	LessonIDSet(courseID uint) (map[uint]bool, error)
	SectionIDSet(courseID uint) (map[uint]bool, error)
	Section(courseID, sectionID uint) (*SectionInfo, error)
}

// EnrollmentStore is the limited read/write surface this engine has over the
// externally-owned enrollment record: progress and status only.
type EnrollmentStore interface {
	Get(userID, courseID uint) (*courseModels.Enrollment, error)
	SetProgress(enrollmentID uint, progress int, status string) error
}

// CourseStructure reads structure from the course tables
type CourseStructure struct {
	db *gorm.DB
}

// NewCourseStructure builds the gorm-backed structure provider
func NewCourseStructure(db *gorm.DB) *CourseStructure {
	return &CourseStructure{db: db}
}

func (p *CourseStructure) TotalLessons(courseID uint) (int, error) {
	var count int64
	err := p.db.Model(&courseModels.Lesson{}).
		Where("course_id = ? AND is_deleted = false", courseID).
		Count(&count).Error
	return int(count), err
}

func (p *CourseStructure) LessonIDSet(courseID uint) (map[uint]bool, error) {
	var ids []uint
	err := p.db.Model(&courseModels.Lesson{}).
		Where("course_id = ? AND is_deleted = false", courseID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (p *CourseStructure) SectionIDSet(courseID uint) (map[uint]bool, error) {
	var ids []uint
	err := p.db.Model(&courseModels.Section{}).
		Where("course_id = ? AND is_deleted = false", courseID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (p *CourseStructure) Section(courseID, sectionID uint) (*SectionInfo, error) {
	var section courseModels.Section
	err := p.db.Preload("Lessons", "is_deleted = false").
		Where("id = ? AND course_id = ? AND is_deleted = false", sectionID, courseID).
		First(&section).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrSectionNotFound
		}
		return nil, err
	}

	required := []uint(section.RequiredLessons)
	if len(required) == 0 {
		// No explicit subset declared: every lesson in the section is required
		for _, lesson := range section.Lessons {
			required = append(required, lesson.ID)
		}
	}

	return &SectionInfo{
		ID:              section.ID,
		OrderIndex:      section.OrderIndex,
		RequiredLessons: required,
	}, nil
}

// Enrollments is the gorm-backed enrollment store
type Enrollments struct {
	db *gorm.DB
}

// NewEnrollments builds the gorm-backed enrollment store
func NewEnrollments(db *gorm.DB) *Enrollments {
	return &Enrollments{db: db}
}

func (e *Enrollments) Get(userID, courseID uint) (*courseModels.Enrollment, error) {
	var enrollment courseModels.Enrollment
	err := e.db.Where("user_id = ? AND course_id = ? AND is_deleted = false", userID, courseID).
		First(&enrollment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}
	return &enrollment, nil
}

func (e *Enrollments) SetProgress(enrollmentID uint, progress int, status string) error {
	updates := map[string]interface{}{"progress": progress, "status": status}
	if status == courseModels.EnrollmentCompleted {
		updates["completed_at"] = gorm.Expr("CURRENT_TIMESTAMP")
	}
	return e.db.Model(&courseModels.Enrollment{}).
		Where("id = ?", enrollmentID).
		Updates(updates).Error
}
