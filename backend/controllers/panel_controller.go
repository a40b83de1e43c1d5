package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"courseplan/backend/config"
	"courseplan/backend/middleware"
	"courseplan/backend/models"
	"courseplan/backend/storage"
	"courseplan/backend/utils"
)

type PanelController struct {
	DB    *gorm.DB
	Cfg   *config.Config
	Store *storage.Store
}

func NewPanelController(db *gorm.DB, cfg *config.Config, store *storage.Store) *PanelController {
	return &PanelController{DB: db, Cfg: cfg, Store: store}
}

// Panel serves the user dashboard: the course hierarchy, the caller's
// completion state, and active announcements. ders_id and konu_id
// query parameters select a course and a topic.
func (pc *PanelController) Panel(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)

	var user models.User
	if err := pc.DB.First(&user, sess.UserID).Error; err != nil {
		return c.Redirect("/", fiber.StatusFound)
	}

	var courses []models.Course
	pc.DB.Order("name").Find(&courses)

	resp := fiber.Map{
		"courses":        courses,
		"remaining_days": user.RemainingDays(time.Now()),
	}

	var announcements []models.Announcement
	pc.DB.Where("is_active = ?", true).Order("created_at DESC").Find(&announcements)
	resp["announcements"] = announcements

	if courseID := c.QueryInt("ders_id"); courseID > 0 {
		var course models.Course
		if err := pc.DB.Preload("Topics").First(&course, courseID).Error; err == nil {
			topics := make([]fiber.Map, 0, len(course.Topics))
			for _, topic := range course.Topics {
				topics = append(topics, fiber.Map{
					"id":         topic.ID,
					"name":       topic.Name,
					"percentage": completionPercentage(pc.DB, sess.UserID, topic.ID),
				})
			}
			resp["selected_course"] = fiber.Map{
				"id":     course.ID,
				"name":   course.Name,
				"topics": topics,
			}
		}
	}

	if topicID := c.QueryInt("konu_id"); topicID > 0 {
		var topic models.Topic
		err := pc.DB.Preload("SubTopics.Materials").Preload("SubTopics.Quiz.Questions.Answers").
			First(&topic, topicID).Error
		if err == nil {
			resp["selected_topic"] = fiber.Map{
				"id":         topic.ID,
				"name":       topic.Name,
				"percentage": completionPercentage(pc.DB, sess.UserID, topic.ID),
				"subtopics":  pc.subTopicViews(sess.UserID, topic.SubTopics),
			}
		}
	}

	return c.JSON(resp)
}

func (pc *PanelController) subTopicViews(userID uint, subTopics []models.SubTopic) []fiber.Map {
	views := make([]fiber.Map, 0, len(subTopics))
	for _, st := range subTopics {
		var completed int64
		pc.DB.Model(&models.Progress{}).
			Where("user_id = ? AND sub_topic_id = ?", userID, st.ID).
			Count(&completed)

		view := fiber.Map{
			"id":         st.ID,
			"name":       st.Name,
			"video_link": st.VideoLink,
			"notes":      st.Notes,
			"materials":  st.Materials,
			"completed":  completed > 0,
			"comments":   pc.commentThread(st.ID),
		}

		if st.Quiz != nil {
			questions := make([]fiber.Map, 0, len(st.Quiz.Questions))
			for _, q := range st.Quiz.Questions {
				answers := make([]fiber.Map, 0, len(q.Answers))
				for _, a := range q.Answers {
					// The correct flag stays server-side.
					answers = append(answers, fiber.Map{"id": a.ID, "text": a.Text})
				}
				questions = append(questions, fiber.Map{
					"id":      q.ID,
					"text":    q.Text,
					"answers": answers,
				})
			}

			quizView := fiber.Map{
				"id":        st.Quiz.ID,
				"title":     st.Quiz.Title,
				"questions": questions,
			}

			var attempt models.QuizAttempt
			if err := pc.DB.Where("user_id = ? AND quiz_id = ?", userID, st.Quiz.ID).
				First(&attempt).Error; err == nil {
				quizView["attempt"] = fiber.Map{
					"score":        attempt.Score,
					"submitted_at": attempt.UpdatedAt,
				}
			}

			view["quiz"] = quizView
		}

		views = append(views, view)
	}
	return views
}

// commentThread returns the sub-topic's top-level comments with their
// replies grouped beneath them.
func (pc *PanelController) commentThread(subTopicID uint) []models.Comment {
	var comments []models.Comment
	pc.DB.Preload("Replies").
		Where("sub_topic_id = ? AND parent_id IS NULL", subTopicID).
		Order("created_at").
		Find(&comments)
	return comments
}

// Download serves a material file, gated by non-expired access.
func (pc *PanelController) Download(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)

	var user models.User
	if err := pc.DB.First(&user, sess.UserID).Error; err != nil {
		return c.Redirect("/", fiber.StatusFound)
	}
	if user.AccessExpired(time.Now()) {
		return c.Redirect("/?warning=access_expired", fiber.StatusFound)
	}

	filename := c.Params("filename")

	var material models.Material
	if err := pc.DB.Where("stored_name = ?", filename).First(&material).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "File not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.Download(pc.Store.Path(material.StoredName), material.OriginalName)
}
