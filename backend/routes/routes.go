package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"courseplan/backend/config"
	"courseplan/backend/controllers"
	"courseplan/backend/middleware"
	"courseplan/backend/storage"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, store *storage.Store) {
	authController := controllers.NewAuthController(db, cfg)
	app.Get("/", authController.LoginPage)
	app.Post("/", authController.Login)
	app.Get("/logout", authController.Logout)

	authRequired := middleware.AuthRequired(cfg)
	adminRequired := middleware.AdminRequired()
	primaryAdminRequired := middleware.PrimaryAdminRequired()

	// Admin routes
	adminController := controllers.NewAdminController(db, cfg, store)
	admin := app.Group("/admin", authRequired, adminRequired)
	admin.Get("/", adminController.Panel)
	admin.Post("/", adminController.Action)
	admin.Get("/edit_course/:id", adminController.GetCourse)
	admin.Post("/edit_course/:id", adminController.EditCourse)
	admin.Get("/edit_topic/:id", adminController.GetTopic)
	admin.Post("/edit_topic/:id", adminController.EditTopic)
	admin.Get("/edit_subtopic/:id", adminController.GetSubTopic)
	admin.Post("/edit_subtopic/:id", adminController.EditSubTopic)
	admin.Get("/edit_announcement/:id", adminController.GetAnnouncement)
	admin.Post("/edit_announcement/:id", adminController.EditAnnouncement)
	admin.Get("/edit_user/:id", primaryAdminRequired, adminController.GetUser)
	admin.Post("/edit_user/:id", primaryAdminRequired, adminController.EditUser)

	// User routes
	panelController := controllers.NewPanelController(db, cfg, store)
	app.Get("/panel", authRequired, panelController.Panel)
	app.Get("/download/:filename", authRequired, panelController.Download)

	progressController := controllers.NewProgressController(db, cfg)
	app.Post("/mark_completed", authRequired, progressController.MarkCompleted)

	quizController := controllers.NewQuizController(db, cfg)
	app.Post("/submit_quiz", authRequired, quizController.SubmitQuiz)
	app.Post("/delete_quiz_attempt", authRequired, quizController.DeleteQuizAttempt)

	commentController := controllers.NewCommentController(db, cfg)
	app.Post("/add_comment", authRequired, commentController.AddComment)
	app.Post("/delete_comment", authRequired, commentController.DeleteComment)

	profileController := controllers.NewProfileController(db, cfg)
	app.Get("/profile", authRequired, profileController.GetProfile)
	app.Post("/profile", authRequired, profileController.ChangePassword)

	aiController := controllers.NewAIController(cfg)
	app.Post("/ask_ai", authRequired, aiController.AskAI)
}
