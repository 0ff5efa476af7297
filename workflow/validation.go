package workflow

import (
	courseModels "lms/models/course"
)

// Validation penalty weights. The score starts at 100 and is floored at 0.
const (
	penaltyMissingTitle       = 20
	penaltyMissingDescription = 15
	penaltyMissingCategory    = 10
	penaltyMissingLevel       = 10
	penaltyNoSections         = 25
	penaltyFewLessons         = 5
	penaltyNoVideo            = 10
	penaltyNoAssessment       = 10
	penaltyNoAccessibility    = 5

	minTitleLength       = 5
	minDescriptionLength = 20
	minLessonCount       = 3
)

// Validate scores a course's readiness for submission. It is a pure function
// of the course structure: the same course always produces the same result.
// Warnings reduce the score but never block validity; IsValid is true iff
// the errors list is empty.
func Validate(c *courseModels.Course) courseModels.ValidationResult {
	result := courseModels.ValidationResult{
		Errors:   []string{},
		Warnings: []string{},
	}
	score := 100

	if len(c.Title) < minTitleLength {
		result.Errors = append(result.Errors, "Title is missing or too short!")
		score -= penaltyMissingTitle
	}
	if len(c.Description) < minDescriptionLength {
		result.Errors = append(result.Errors, "Description is missing or too short!")
		score -= penaltyMissingDescription
	}
	if c.Category == "" {
		result.Errors = append(result.Errors, "Category is required!")
		score -= penaltyMissingCategory
	}
	if c.Level == "" {
		result.Errors = append(result.Errors, "Level is required!")
		score -= penaltyMissingLevel
	}

	sections := activeSections(c)
	if len(sections) == 0 {
		result.Errors = append(result.Errors, "Course has no sections!")
		score -= penaltyNoSections
	}

	totalLessons := 0
	hasVideo := false
	hasAssessment := false
	hasAccessibility := false
	for _, section := range sections {
		for _, lesson := range section.Lessons {
			if lesson.IsDeleted {
				continue
			}
			totalLessons++
			switch lesson.Type {
			case courseModels.LessonTypeVideo:
				hasVideo = true
			case courseModels.LessonTypeQuiz, courseModels.LessonTypeAssignment:
				hasAssessment = true
			}
			if lesson.HasCaptions || lesson.Transcript != "" {
				hasAccessibility = true
			}
		}
	}

	if totalLessons < minLessonCount {
		result.Warnings = append(result.Warnings, "Course has fewer than 3 lessons.")
		score -= penaltyFewLessons
	}
	if !hasVideo {
		result.Warnings = append(result.Warnings, "Course has no video lessons.")
		score -= penaltyNoVideo
	}
	if !hasAssessment {
		result.Warnings = append(result.Warnings, "Course has no quiz or assignment.")
		score -= penaltyNoAssessment
	}
	if !hasAccessibility {
		result.Warnings = append(result.Warnings, "Course has no accessibility features (captions or transcripts).")
		score -= penaltyNoAccessibility
	}

	if score < 0 {
		score = 0
	}
	result.Score = score
	result.IsValid = len(result.Errors) == 0
	return result
}

func activeSections(c *courseModels.Course) []courseModels.Section {
	sections := make([]courseModels.Section, 0, len(c.Sections))
	for _, s := range c.Sections {
		if !s.IsDeleted {
			sections = append(sections, s)
		}
	}
	return sections
}
