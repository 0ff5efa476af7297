package course

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LessonType enum values
const (
	LessonTypeVideo      = "VIDEO"
	LessonTypeText       = "TEXT"
	LessonTypeQuiz       = "QUIZ"
	LessonTypeAssignment = "ASSIGNMENT"
)

// Section is an ordered grouping of lessons within a course
type Section struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	Title       string `json:"title"`
	Description string `json:"description" gorm:"type:text"`
	OrderIndex  int    `json:"order_index" gorm:"default:0"`

	// Lesson IDs that must be completed before the section counts as done.
	// Empty means every lesson in the section is required.
	RequiredLessons datatypes.JSONSlice[uint] `json:"required_lessons"`

	IsDeleted bool `gorm:"default:false"`

	// Relations
	Lessons []Lesson `gorm:"foreignKey:SectionID" json:"lessons,omitempty"`
}

func (Section) TableName() string {
	return "sections"
}

// Lesson is a single unit of content inside a section
type Lesson struct {
	gorm.Model
	SectionID       uint   `json:"section_id" gorm:"index;not null"`
	CourseID        uint   `json:"course_id" gorm:"index;not null"`
	Title           string `json:"title"`
	Type            string `json:"type" gorm:"default:'TEXT';type:varchar(20)"` // VIDEO, TEXT, QUIZ, ASSIGNMENT
	TextContent     string `json:"text_content" gorm:"type:text"`
	VideoURL        string `json:"video_url"`
	DurationMinutes int    `json:"duration_minutes" gorm:"default:0"`
	OrderIndex      int    `json:"order_index" gorm:"default:0"`

	// Accessibility features counted by validation scoring
	HasCaptions bool   `json:"has_captions" gorm:"default:false"`
	Transcript  string `json:"transcript" gorm:"type:text"`

	IsDeleted bool `gorm:"default:false"`
}

func (Lesson) TableName() string {
	return "lessons"
}

// Quiz is a scored assessment attached to a section. Grading happens on the
// client; the backend aggregates submitted attempts.
type Quiz struct {
	gorm.Model
	CourseID       uint   `json:"course_id" gorm:"index;not null"`
	SectionID      uint   `json:"section_id" gorm:"index;not null"`
	Title          string `json:"title"`
	MaxScore       int    `json:"max_score" gorm:"default:100"`
	PassPercentage int    `json:"pass_percentage" gorm:"default:70"`
	IsDeleted      bool   `gorm:"default:false"`
}

func (Quiz) TableName() string {
	return "quizzes"
}
