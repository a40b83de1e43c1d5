package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"courseplan/backend/config"
	"courseplan/backend/middleware"
	"courseplan/backend/models"
	"courseplan/backend/storage"
	"courseplan/backend/utils"
)

type AdminController struct {
	DB    *gorm.DB
	Cfg   *config.Config
	Store *storage.Store
}

func NewAdminController(db *gorm.DB, cfg *config.Config, store *storage.Store) *AdminController {
	return &AdminController{DB: db, Cfg: cfg, Store: store}
}

// Panel serves the admin dashboard. A delete_type/id query pair turns
// the request into a delete action instead.
func (ac *AdminController) Panel(c *fiber.Ctx) error {
	if deleteType := c.Query("delete_type"); deleteType != "" {
		id, err := strconv.Atoi(c.Query("id"))
		if err != nil {
			return utils.BadRequest(c, "Invalid id")
		}
		return ac.handleDelete(c, deleteType, uint(id))
	}

	now := time.Now()

	var totalUsers int64
	ac.DB.Model(&models.User{}).Count(&totalUsers)

	var activeUsers int64
	ac.DB.Model(&models.User{}).Where("expire_date > ?", now).Count(&activeUsers)

	var courseCount, topicCount, subTopicCount, announcementCount int64
	ac.DB.Model(&models.Course{}).Count(&courseCount)
	ac.DB.Model(&models.Topic{}).Count(&topicCount)
	ac.DB.Model(&models.SubTopic{}).Count(&subTopicCount)
	ac.DB.Model(&models.Announcement{}).Count(&announcementCount)

	// Completed sub-topic events per course, for the dashboard chart.
	type courseCompletion struct {
		Name      string
		Completed int64
	}
	var completions []courseCompletion
	ac.DB.Model(&models.Progress{}).
		Select("courses.name AS name, COUNT(progresses.id) AS completed").
		Joins("JOIN sub_topics ON sub_topics.id = progresses.sub_topic_id").
		Joins("JOIN topics ON topics.id = sub_topics.topic_id").
		Joins("JOIN courses ON courses.id = topics.course_id").
		Group("courses.name").
		Order("completed DESC").
		Scan(&completions)

	labels := make([]string, 0, len(completions))
	values := make([]int64, 0, len(completions))
	for _, row := range completions {
		labels = append(labels, row.Name)
		values = append(values, row.Completed)
	}

	var users []models.User
	ac.DB.Order("username").Find(&users)
	userList := make([]fiber.Map, 0, len(users))
	for _, u := range users {
		userList = append(userList, fiber.Map{
			"id":             u.ID,
			"username":       u.Username,
			"is_admin":       u.IsAdmin,
			"expire_date":    u.ExpireDate,
			"remaining_days": u.RemainingDays(now),
		})
	}

	var courses []models.Course
	ac.DB.Preload("Topics.SubTopics").Order("name").Find(&courses)

	var announcements []models.Announcement
	ac.DB.Order("created_at DESC").Find(&announcements)

	sess := middleware.SessionFromCtx(c)

	return c.JSON(fiber.Map{
		"is_main_admin": sess.IsPrimaryAdmin(),
		"stats": fiber.Map{
			"total_users":   totalUsers,
			"active_users":  activeUsers,
			"courses":       courseCount,
			"topics":        topicCount,
			"subtopics":     subTopicCount,
			"announcements": announcementCount,
		},
		"chart": fiber.Map{
			"labels": labels,
			"values": values,
		},
		"users":         userList,
		"courses":       courses,
		"announcements": announcements,
	})
}

// Action dispatches an admin mutation by its action field. Simple adds
// arrive as form fields, quiz creation as a JSON body.
func (ac *AdminController) Action(c *fiber.Ctx) error {
	action := c.FormValue("action")
	if action == "" {
		var probe struct {
			Action string `json:"action"`
		}
		if err := c.BodyParser(&probe); err == nil {
			action = probe.Action
		}
	}

	switch action {
	case "add_user":
		return ac.addUser(c)
	case "add_course":
		return ac.addCourse(c)
	case "add_topic":
		return ac.addTopic(c)
	case "add_subtopic":
		return ac.addSubTopic(c)
	case "add_announcement":
		return ac.addAnnouncement(c)
	case "upload_material":
		return ac.uploadMaterial(c)
	case "add_quiz":
		return ac.addQuiz(c)
	default:
		return utils.BadRequest(c, "Unknown action")
	}
}

func (ac *AdminController) handleDelete(c *fiber.Ctx, deleteType string, id uint) error {
	sess := middleware.SessionFromCtx(c)

	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		switch deleteType {
		case "course":
			return deleteCourse(tx, ac.Store, id)
		case "topic":
			return deleteTopic(tx, ac.Store, id)
		case "subtopic":
			return deleteSubTopic(tx, ac.Store, id)
		case "material":
			return deleteMaterial(tx, ac.Store, id)
		case "quiz":
			return deleteQuiz(tx, id)
		case "announcement":
			return deleteAnnouncement(tx, id)
		case "user":
			if !sess.IsPrimaryAdmin() {
				return errForbidden
			}
			return deleteUser(tx, id)
		default:
			return errUnknownKind
		}
	})

	switch {
	case err == nil:
		return c.JSON(fiber.Map{"message": deleteType + " deleted"})
	case errors.Is(err, errUnknownKind):
		return utils.BadRequest(c, "Unknown delete type")
	case errors.Is(err, errForbidden):
		return utils.Forbidden(c, "Only the primary admin can delete users")
	case errors.Is(err, errProtectedAdmin):
		return utils.Forbidden(c, "The primary admin user cannot be deleted")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return utils.NotFound(c, deleteType+" not found")
	default:
		return utils.InternalServerError(c, err.Error())
	}
}
