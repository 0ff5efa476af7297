package workflow

import (
	"testing"

	courseModels "lms/models/course"

	"github.com/stretchr/testify/assert"
)

func fullCourse() *courseModels.Course {
	return &courseModels.Course{
		Title:       "Practical SQL for Analysts",
		Description: "Queries, joins, window functions and performance basics for day-to-day work.",
		Category:    "data",
		Level:       courseModels.LevelBeginner,
		Sections: []courseModels.Section{
			{
				Title: "Getting started",
				Lessons: []courseModels.Lesson{
					{Title: "Setup", Type: courseModels.LessonTypeVideo, HasCaptions: true},
					{Title: "First query", Type: courseModels.LessonTypeText},
					{Title: "Quiz 1", Type: courseModels.LessonTypeQuiz},
				},
			},
		},
	}
}

func TestValidateFullCourseScoresHundred(t *testing.T) {
	result := Validate(fullCourse())
	assert.True(t, result.IsValid)
	assert.Equal(t, 100, result.Score)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidateIsDeterministic(t *testing.T) {
	c := fullCourse()
	first := Validate(c)
	second := Validate(c)
	assert.Equal(t, first, second)
}

func TestValidatePenalties(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*courseModels.Course)
		wantScore int
		wantValid bool
	}{
		{
			name:      "short title",
			mutate:    func(c *courseModels.Course) { c.Title = "SQL" },
			wantScore: 80,
			wantValid: false,
		},
		{
			name:      "short description",
			mutate:    func(c *courseModels.Course) { c.Description = "Queries." },
			wantScore: 85,
			wantValid: false,
		},
		{
			name:      "missing category",
			mutate:    func(c *courseModels.Course) { c.Category = "" },
			wantScore: 90,
			wantValid: false,
		},
		{
			name:      "missing level",
			mutate:    func(c *courseModels.Course) { c.Level = "" },
			wantScore: 90,
			wantValid: false,
		},
		{
			name: "no video lesson",
			mutate: func(c *courseModels.Course) {
				c.Sections[0].Lessons[0].Type = courseModels.LessonTypeText
				c.Sections[0].Lessons[0].HasCaptions = false
				c.Sections[0].Lessons[0].Transcript = "full transcript available here"
			},
			wantScore: 90,
			wantValid: true, // warning only
		},
		{
			name: "no quiz or assignment",
			mutate: func(c *courseModels.Course) {
				c.Sections[0].Lessons[2].Type = courseModels.LessonTypeText
			},
			wantScore: 90,
			wantValid: true,
		},
		{
			name: "no accessibility features",
			mutate: func(c *courseModels.Course) {
				c.Sections[0].Lessons[0].HasCaptions = false
			},
			wantScore: 95,
			wantValid: true,
		},
		{
			name: "fewer than three lessons",
			mutate: func(c *courseModels.Course) {
				c.Sections[0].Lessons = c.Sections[0].Lessons[:2]
			},
			wantScore: 85, // -5 few lessons, -10 no assessment left
			wantValid: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := fullCourse()
			tc.mutate(c)
			result := Validate(c)
			assert.Equal(t, tc.wantScore, result.Score)
			assert.Equal(t, tc.wantValid, result.IsValid)
		})
	}
}

func TestValidateEmptyCourseFloorsAtZero(t *testing.T) {
	result := Validate(&courseModels.Course{})
	assert.False(t, result.IsValid)
	// 100 - 20 - 15 - 10 - 10 - 25 - 5 - 10 - 10 - 5 floors at 0
	assert.Equal(t, 0, result.Score)
	assert.Len(t, result.Errors, 5)
	assert.Len(t, result.Warnings, 4)
}

func TestValidateDeletedContentIgnored(t *testing.T) {
	c := fullCourse()
	c.Sections[0].IsDeleted = true
	result := Validate(c)
	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "Course has no sections!")
}
