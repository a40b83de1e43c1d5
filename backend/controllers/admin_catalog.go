package controllers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"courseplan/backend/models"
	"courseplan/backend/storage"
	"courseplan/backend/utils"
)

func (ac *AdminController) addCourse(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.FormValue("course_name"))
	if name == "" {
		return utils.BadRequest(c, "Course name cannot be blank")
	}

	var count int64
	ac.DB.Model(&models.Course{}).Where("name = ?", name).Count(&count)
	if count > 0 {
		return utils.BadRequest(c, "A course with this name already exists")
	}

	course := models.Course{Name: name}
	if err := ac.DB.Create(&course).Error; err != nil {
		return utils.InternalServerError(c, "Could not create course")
	}

	return c.JSON(fiber.Map{
		"message": "Course added",
		"course":  course,
	})
}

func (ac *AdminController) addTopic(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.FormValue("topic_name"))
	courseID, err := strconv.Atoi(c.FormValue("course_id"))
	if name == "" || err != nil {
		return utils.BadRequest(c, "Topic name and course selection cannot be blank")
	}

	var course models.Course
	if err := ac.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var count int64
	ac.DB.Model(&models.Topic{}).Where("course_id = ? AND name = ?", course.ID, name).Count(&count)
	if count > 0 {
		return utils.BadRequest(c, "This course already has a topic with this name")
	}

	topic := models.Topic{Name: name, CourseID: course.ID}
	if err := ac.DB.Create(&topic).Error; err != nil {
		return utils.InternalServerError(c, "Could not create topic")
	}

	return c.JSON(fiber.Map{
		"message": "Topic added",
		"topic":   topic,
	})
}

func (ac *AdminController) addSubTopic(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.FormValue("subtopic_name"))
	topicID, err := strconv.Atoi(c.FormValue("topic_id"))
	if name == "" || err != nil {
		return utils.BadRequest(c, "Sub-topic name and topic selection cannot be blank")
	}

	var topic models.Topic
	if err := ac.DB.First(&topic, topicID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Topic not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var count int64
	ac.DB.Model(&models.SubTopic{}).Where("topic_id = ? AND name = ?", topic.ID, name).Count(&count)
	if count > 0 {
		return utils.BadRequest(c, "This topic already has a sub-topic with this name")
	}

	subTopic := models.SubTopic{
		Name:      name,
		TopicID:   topic.ID,
		VideoLink: strings.TrimSpace(c.FormValue("video_link")),
		Notes:     strings.TrimSpace(c.FormValue("notes")),
	}
	if err := ac.DB.Create(&subTopic).Error; err != nil {
		return utils.InternalServerError(c, "Could not create sub-topic")
	}

	return c.JSON(fiber.Map{
		"message":  "Sub-topic added",
		"subtopic": subTopic,
	})
}

func (ac *AdminController) addAnnouncement(c *fiber.Ctx) error {
	title := strings.TrimSpace(c.FormValue("title"))
	content := strings.TrimSpace(c.FormValue("content"))
	if title == "" || content == "" {
		return utils.BadRequest(c, "Announcement title and content cannot be blank")
	}

	announcement := models.Announcement{
		Title:    title,
		Content:  content,
		IsActive: true,
	}
	if err := ac.DB.Create(&announcement).Error; err != nil {
		return utils.InternalServerError(c, "Could not create announcement")
	}

	return c.JSON(fiber.Map{
		"message":      "Announcement added",
		"announcement": announcement,
	})
}

func (ac *AdminController) uploadMaterial(c *fiber.Ctx) error {
	subTopicID, err := strconv.Atoi(c.FormValue("subtopic_id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid sub-topic id")
	}

	var subTopic models.SubTopic
	if err := ac.DB.First(&subTopic, subTopicID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Sub-topic not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.BadRequest(c, "No file in request")
	}
	if !storage.Allowed(file.Filename) {
		return utils.BadRequest(c, "This file type is not allowed")
	}

	storedName := storage.StoredName(file.Filename)
	if err := c.SaveFile(file, ac.Store.Path(storedName)); err != nil {
		return utils.InternalServerError(c, "Could not store file")
	}

	material := models.Material{
		SubTopicID:   subTopic.ID,
		StoredName:   storedName,
		OriginalName: file.Filename,
	}
	if err := ac.DB.Create(&material).Error; err != nil {
		// Keep storage consistent with the database.
		ac.Store.Remove(storedName)
		return utils.InternalServerError(c, "Could not save material")
	}

	return c.JSON(fiber.Map{
		"message":  "Material uploaded",
		"material": material,
	})
}

func (ac *AdminController) GetCourse(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course id")
	}

	var course models.Course
	if err := ac.DB.Preload("Topics.SubTopics").First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{"course": course})
}

func (ac *AdminController) EditCourse(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course id")
	}

	var input struct {
		Name string `json:"name" form:"name"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse request body")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return utils.BadRequest(c, "Course name cannot be blank")
	}

	var course models.Course
	if err := ac.DB.First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var count int64
	ac.DB.Model(&models.Course{}).Where("name = ? AND id <> ?", name, course.ID).Count(&count)
	if count > 0 {
		return utils.BadRequest(c, "A course with this name already exists")
	}

	course.Name = name
	if err := ac.DB.Save(&course).Error; err != nil {
		return utils.InternalServerError(c, "Could not update course")
	}

	return c.JSON(fiber.Map{
		"message": "Course updated",
		"course":  course,
	})
}

func (ac *AdminController) GetTopic(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid topic id")
	}

	var topic models.Topic
	if err := ac.DB.Preload("SubTopics").First(&topic, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Topic not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{"topic": topic})
}

func (ac *AdminController) EditTopic(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid topic id")
	}

	var input struct {
		Name string `json:"name" form:"name"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse request body")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return utils.BadRequest(c, "Topic name cannot be blank")
	}

	var topic models.Topic
	if err := ac.DB.First(&topic, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Topic not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var count int64
	ac.DB.Model(&models.Topic{}).
		Where("course_id = ? AND name = ? AND id <> ?", topic.CourseID, name, topic.ID).
		Count(&count)
	if count > 0 {
		return utils.BadRequest(c, "This course already has a topic with this name")
	}

	topic.Name = name
	if err := ac.DB.Save(&topic).Error; err != nil {
		return utils.InternalServerError(c, "Could not update topic")
	}

	return c.JSON(fiber.Map{
		"message": "Topic updated",
		"topic":   topic,
	})
}

func (ac *AdminController) GetSubTopic(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid sub-topic id")
	}

	var subTopic models.SubTopic
	if err := ac.DB.Preload("Materials").Preload("Quiz.Questions.Answers").First(&subTopic, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Sub-topic not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{"subtopic": subTopic})
}

func (ac *AdminController) EditSubTopic(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid sub-topic id")
	}

	var input struct {
		Name      string `json:"name" form:"name"`
		VideoLink string `json:"video_link" form:"video_link"`
		Notes     string `json:"notes" form:"notes"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse request body")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return utils.BadRequest(c, "Sub-topic name cannot be blank")
	}

	var subTopic models.SubTopic
	if err := ac.DB.First(&subTopic, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Sub-topic not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var count int64
	ac.DB.Model(&models.SubTopic{}).
		Where("topic_id = ? AND name = ? AND id <> ?", subTopic.TopicID, name, subTopic.ID).
		Count(&count)
	if count > 0 {
		return utils.BadRequest(c, "This topic already has a sub-topic with this name")
	}

	subTopic.Name = name
	subTopic.VideoLink = strings.TrimSpace(input.VideoLink)
	subTopic.Notes = strings.TrimSpace(input.Notes)
	if err := ac.DB.Save(&subTopic).Error; err != nil {
		return utils.InternalServerError(c, "Could not update sub-topic")
	}

	return c.JSON(fiber.Map{
		"message":  "Sub-topic updated",
		"subtopic": subTopic,
	})
}

func (ac *AdminController) GetAnnouncement(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid announcement id")
	}

	var announcement models.Announcement
	if err := ac.DB.First(&announcement, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Announcement not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{"announcement": announcement})
}

func (ac *AdminController) EditAnnouncement(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid announcement id")
	}

	var input struct {
		Title    string `json:"title" form:"title"`
		Content  string `json:"content" form:"content"`
		IsActive *bool  `json:"is_active" form:"is_active"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse request body")
	}

	var announcement models.Announcement
	if err := ac.DB.First(&announcement, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Announcement not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if title := strings.TrimSpace(input.Title); title != "" {
		announcement.Title = title
	}
	if content := strings.TrimSpace(input.Content); content != "" {
		announcement.Content = content
	}
	if input.IsActive != nil {
		announcement.IsActive = *input.IsActive
	}

	if err := ac.DB.Save(&announcement).Error; err != nil {
		return utils.InternalServerError(c, "Could not update announcement")
	}

	return c.JSON(fiber.Map{
		"message":      "Announcement updated",
		"announcement": announcement,
	})
}
