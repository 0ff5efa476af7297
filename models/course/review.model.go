package course

import "gorm.io/gorm"

// CourseReview is a learner's rating and comment for a published course
type CourseReview struct {
	gorm.Model
	UserID    uint   `json:"user_id" gorm:"index:idx_review_user_course,unique;not null"`
	CourseID  uint   `json:"course_id" gorm:"index:idx_review_user_course,unique;not null"`
	Rating    int    `json:"rating" gorm:"not null"` // 1-5
	Comment   string `json:"comment" gorm:"type:text"`
	IsDeleted bool   `gorm:"default:false"`
}

func (CourseReview) TableName() string {
	return "course_reviews"
}
