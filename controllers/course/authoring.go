package controllers

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/utils"
	"lms/workflow"

	"github.com/gofiber/fiber/v2"
)

// editableStatuses are the states in which course structure may change
var editableStatuses = []string{courseModels.StatusDraft, courseModels.StatusRejected}

// loadEditableCourse fetches a course the actor may restructure. Content
// edits are limited to draft and rejected states so published material
// stays frozen.
func loadEditableCourse(c *fiber.Ctx, courseID uint) (*courseModels.Course, error) {
	user, err := currentUser(c)
	if err != nil {
		return nil, unauthorized(c)
	}

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if course.AuthorID != user.ID && !user.IsAdmin() {
		return nil, forbidden(c)
	}

	editable := false
	for _, status := range editableStatuses {
		if course.Status == status {
			editable = true
			break
		}
	}
	if !editable {
		return nil, middleware.JsonResponse(c, fiber.StatusConflict, false, "Course content can only be edited in draft!", nil)
	}

	return &course, nil
}

// CreateCourse creates a new draft course owned by the caller
func CreateCourse(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	input, ok := c.Locals("validatedCourse").(*workflow.CourseInput)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	course, err := Lifecycle.Create(*input, user)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

// UpdateCourse updates draft course metadata. Only provided fields change.
func UpdateCourse(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	course, ferr := loadEditableCourse(c, courseID)
	if course == nil {
		return ferr
	}

	reqData, ok := c.Locals("validatedCourseUpdate").(*workflow.CourseInput)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Title != "" {
		course.Title = reqData.Title
	}
	if reqData.Description != "" {
		course.Description = reqData.Description
	}
	if reqData.Category != "" {
		course.Category = reqData.Category
	}
	if reqData.Level != "" {
		course.Level = reqData.Level
	}
	if reqData.ThumbnailURL != "" {
		course.ThumbnailURL = reqData.ThumbnailURL
	}

	if err := database.Database.Db.Save(course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

// DeleteCourse soft deletes a draft course
func DeleteCourse(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	course, ferr := loadEditableCourse(c, courseID)
	if course == nil {
		return ferr
	}

	course.IsDeleted = true
	if err := database.Database.Db.Save(course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully!", nil)
}

// GetMyCourses lists the caller's courses in every state
func GetMyCourses(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	reqData, ok := c.Locals("validatedList").(*struct {
		Page  *int `json:"page"`
		Limit *int `json:"limit"`
	})

	page := 1
	limit := 10
	if ok && reqData.Page != nil && *reqData.Page > 0 {
		page = *reqData.Page
	}
	if ok && reqData.Limit != nil && *reqData.Limit > 0 {
		limit = *reqData.Limit
	}
	offset := (page - 1) * limit

	var courses []courseModels.Course
	var total int64

	db := database.Database.Db.Model(&courseModels.Course{}).
		Where("author_id = ? AND is_deleted = ?", user.ID, false)
	db.Count(&total)

	if err := db.Offset(offset).Limit(limit).Order("created_at desc").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses": courses,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// AddSection appends a section to a draft course
func AddSection(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	course, ferr := loadEditableCourse(c, courseID)
	if course == nil {
		return ferr
	}

	reqData, ok := c.Locals("validatedSection").(*struct {
		Title           string `json:"title"`
		Description     string `json:"description"`
		OrderIndex      int    `json:"order_index"`
		RequiredLessons []uint `json:"required_lessons"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	section := courseModels.Section{
		CourseID:        course.ID,
		Title:           reqData.Title,
		Description:     reqData.Description,
		OrderIndex:      reqData.OrderIndex,
		RequiredLessons: reqData.RequiredLessons,
	}

	if err := database.Database.Db.Create(&section).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create section!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Section created successfully!", section)
}

// UpdateSection edits a section of a draft course
func UpdateSection(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)
	sectionID := c.Locals("sectionID").(uint)

	course, ferr := loadEditableCourse(c, courseID)
	if course == nil {
		return ferr
	}

	var section courseModels.Section
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", sectionID, course.ID, false).First(&section).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Section not found!", nil)
	}

	reqData, ok := c.Locals("validatedSection").(*struct {
		Title           string `json:"title"`
		Description     string `json:"description"`
		OrderIndex      int    `json:"order_index"`
		RequiredLessons []uint `json:"required_lessons"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Title != "" {
		section.Title = reqData.Title
	}
	if reqData.Description != "" {
		section.Description = reqData.Description
	}
	if reqData.OrderIndex > 0 {
		section.OrderIndex = reqData.OrderIndex
	}
	if reqData.RequiredLessons != nil {
		section.RequiredLessons = reqData.RequiredLessons
	}

	if err := database.Database.Db.Save(&section).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update section!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Section updated successfully!", section)
}

// DeleteSection soft deletes a section and its lessons
func DeleteSection(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)
	sectionID := c.Locals("sectionID").(uint)

	course, ferr := loadEditableCourse(c, courseID)
	if course == nil {
		return ferr
	}

	var section courseModels.Section
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", sectionID, course.ID, false).First(&section).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Section not found!", nil)
	}

	section.IsDeleted = true
	if err := database.Database.Db.Save(&section).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete section!", nil)
	}
	database.Database.Db.Model(&courseModels.Lesson{}).
		Where("section_id = ?", section.ID).Update("is_deleted", true)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Section deleted successfully!", nil)
}

// AddLesson appends a lesson to a section of a draft course
func AddLesson(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)
	sectionID := c.Locals("sectionID").(uint)

	course, ferr := loadEditableCourse(c, courseID)
	if course == nil {
		return ferr
	}

	var section courseModels.Section
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", sectionID, course.ID, false).First(&section).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Section not found!", nil)
	}

	reqData, ok := c.Locals("validatedLesson").(*struct {
		Title           string `json:"title"`
		Type            string `json:"type"`
		TextContent     string `json:"text_content"`
		VideoURL        string `json:"video_url"`
		DurationMinutes int    `json:"duration_minutes"`
		OrderIndex      int    `json:"order_index"`
		HasCaptions     bool   `json:"has_captions"`
		Transcript      string `json:"transcript"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	lesson := courseModels.Lesson{
		SectionID:       section.ID,
		CourseID:        course.ID,
		Title:           reqData.Title,
		Type:            reqData.Type,
		TextContent:     reqData.TextContent,
		VideoURL:        reqData.VideoURL,
		DurationMinutes: reqData.DurationMinutes,
		OrderIndex:      reqData.OrderIndex,
		HasCaptions:     reqData.HasCaptions,
		Transcript:      reqData.Transcript,
	}

	if err := database.Database.Db.Create(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully!", lesson)
}

// UpdateLesson edits a lesson of a draft course
func UpdateLesson(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)
	lessonID := c.Locals("lessonID").(uint)

	course, ferr := loadEditableCourse(c, courseID)
	if course == nil {
		return ferr
	}

	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", lessonID, course.ID, false).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	reqData, ok := c.Locals("validatedLesson").(*struct {
		Title           string `json:"title"`
		Type            string `json:"type"`
		TextContent     string `json:"text_content"`
		VideoURL        string `json:"video_url"`
		DurationMinutes int    `json:"duration_minutes"`
		OrderIndex      int    `json:"order_index"`
		HasCaptions     bool   `json:"has_captions"`
		Transcript      string `json:"transcript"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Title != "" {
		lesson.Title = reqData.Title
	}
	if reqData.Type != "" {
		lesson.Type = reqData.Type
	}
	if reqData.TextContent != "" {
		lesson.TextContent = reqData.TextContent
	}
	if reqData.VideoURL != "" {
		lesson.VideoURL = reqData.VideoURL
	}
	if reqData.DurationMinutes > 0 {
		lesson.DurationMinutes = reqData.DurationMinutes
	}
	if reqData.OrderIndex > 0 {
		lesson.OrderIndex = reqData.OrderIndex
	}
	lesson.HasCaptions = reqData.HasCaptions
	if reqData.Transcript != "" {
		lesson.Transcript = reqData.Transcript
	}

	if err := database.Database.Db.Save(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson updated successfully!", lesson)
}

// DeleteLesson soft deletes a lesson from a draft course
func DeleteLesson(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)
	lessonID := c.Locals("lessonID").(uint)

	course, ferr := loadEditableCourse(c, courseID)
	if course == nil {
		return ferr
	}

	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", lessonID, course.ID, false).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	lesson.IsDeleted = true
	if err := database.Database.Db.Save(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson deleted successfully!", nil)
}

// AddQuiz attaches a quiz to a section of a draft course
func AddQuiz(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)
	sectionID := c.Locals("sectionID").(uint)

	course, ferr := loadEditableCourse(c, courseID)
	if course == nil {
		return ferr
	}

	var section courseModels.Section
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", sectionID, course.ID, false).First(&section).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Section not found!", nil)
	}

	reqData, ok := c.Locals("validatedQuiz").(*struct {
		Title          string `json:"title"`
		MaxScore       int    `json:"max_score"`
		PassPercentage int    `json:"pass_percentage"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	quiz := courseModels.Quiz{
		CourseID:       course.ID,
		SectionID:      section.ID,
		Title:          reqData.Title,
		MaxScore:       reqData.MaxScore,
		PassPercentage: reqData.PassPercentage,
	}
	if quiz.MaxScore <= 0 {
		quiz.MaxScore = 100
	}
	if quiz.PassPercentage <= 0 {
		quiz.PassPercentage = 70
	}

	if err := database.Database.Db.Create(&quiz).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create quiz!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz created successfully!", quiz)
}

// UploadCourseThumbnail stores an uploaded image and points the course at it
func UploadCourseThumbnail(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	course, ferr := loadEditableCourse(c, courseID)
	if course == nil {
		return ferr
	}

	file, err := c.FormFile("thumbnail")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Thumbnail file is required!", nil)
	}

	if file.Size > 5*1024*1024 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Thumbnail must be smaller than 5MB!", nil)
	}

	savedPath, err := utils.SaveUploadedFile(file, "./public/thumbnails")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to store thumbnail!", nil)
	}

	course.ThumbnailURL = utils.GetFileURL(savedPath)
	if err := database.Database.Db.Save(course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Thumbnail uploaded successfully!", fiber.Map{
		"thumbnail_url": course.ThumbnailURL,
	})
}
