package routes

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shiv90154/Lms-sub002/backend/config"
	"github.com/shiv90154/Lms-sub002/backend/controllers"
	"github.com/shiv90154/Lms-sub002/backend/middleware"
	"github.com/shiv90154/Lms-sub002/backend/repository"
	"github.com/shiv90154/Lms-sub002/backend/services/exam"
	"github.com/shiv90154/Lms-sub002/backend/services/mailer"
	"github.com/shiv90154/Lms-sub002/backend/services/payment"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, logger *zap.Logger) {
	examSvc := exam.NewService(repository.NewTestRepo(db), repository.NewAttemptRepo(db))
	gateway := payment.NewGateway(cfg)
	mail := mailer.New(cfg, logger)

	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(db, cfg)

	// Auth
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// User profile
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	// Mock tests
	testsController := controllers.NewTestsController(db, cfg, examSvc)
	tests := app.Group("/api/tests", authMiddleware)
	tests.Get("/", testsController.GetAvailableTests)
	tests.Get("/attempts", testsController.GetMyAttempts)
	tests.Get("/:id", testsController.GetTestDetails)
	tests.Post("/:id/start", testsController.StartAttempt)
	tests.Get("/:id/leaderboard", testsController.GetLeaderboard)
	tests.Put("/attempts/:attemptId/progress", testsController.SaveProgress)
	tests.Post("/attempts/:attemptId/submit", testsController.SubmitAttempt)
	tests.Get("/attempts/:attemptId/result", testsController.GetAttemptResult)
	tests.Get("/attempts/:attemptId/answer-key", testsController.GetAnswerKey)

	// Courses
	coursesController := controllers.NewCoursesController(db, cfg)
	courses := app.Group("/api/courses", authMiddleware)
	courses.Get("/", coursesController.GetAvailableCourses)
	courses.Get("/my", coursesController.GetMyCourses)
	courses.Get("/:id", coursesController.GetCourseDetails)
	courses.Post("/:id/enroll", coursesController.Enroll)
	courses.Post("/:id/progress", coursesController.UpdateProgress)

	// Books store
	storeController := controllers.NewStoreController(db, cfg, gateway, mail, logger)
	app.Get("/api/books", storeController.GetBooks)
	app.Get("/api/books/:id", storeController.GetBook)
	cart := app.Group("/api/cart", authMiddleware)
	cart.Get("/", storeController.GetCart)
	cart.Post("/", storeController.AddToCart)
	cart.Put("/:itemId", storeController.UpdateCartItem)
	cart.Delete("/", storeController.ClearCart)
	cart.Delete("/:itemId", storeController.RemoveFromCart)
	orders := app.Group("/api/orders", authMiddleware)
	orders.Get("/", storeController.GetMyOrders)
	orders.Post("/checkout", storeController.Checkout)
	orders.Post("/verify-payment", storeController.VerifyPayment)

	// Study materials
	materialsController := controllers.NewMaterialsController(db, cfg)
	app.Get("/api/materials", authMiddleware, materialsController.GetMaterials)

	// Current affairs and blog (public reads)
	contentController := controllers.NewContentController(db, cfg)
	app.Get("/api/current-affairs", contentController.GetCurrentAffairs)
	app.Get("/api/blog", contentController.GetBlogPosts)
	app.Get("/api/blog/:slug", contentController.GetBlogPostBySlug)
	app.Post("/api/blog/:id/comments", authMiddleware, contentController.AddBlogComment)

	// Enrollment leads (public capture, admin management)
	leadsController := controllers.NewLeadsController(db, cfg, mail, logger)
	app.Post("/api/leads", leadsController.CreateLead)

	// Admin
	admin := app.Group("/api/admin", adminMiddleware)
	admin.Post("/tests", testsController.CreateTest)
	admin.Put("/tests/:id", testsController.UpdateTest)
	admin.Post("/tests/:id/sections", testsController.AddSection)
	admin.Post("/sections/:sectionId/questions", testsController.AddQuestion)
	admin.Post("/courses", coursesController.CreateCourse)
	admin.Put("/courses/:id", coursesController.UpdateCourse)
	admin.Post("/courses/:id/lessons", coursesController.AddLesson)
	admin.Post("/books", storeController.CreateBook)
	admin.Put("/books/:id", storeController.UpdateBook)
	admin.Get("/orders", storeController.GetAllOrders)
	admin.Post("/materials", materialsController.CreateMaterial)
	admin.Put("/materials/:id", materialsController.UpdateMaterial)
	admin.Delete("/materials/:id", materialsController.DeleteMaterial)
	admin.Post("/materials/:id/grant", materialsController.GrantAccess)
	admin.Post("/current-affairs", contentController.CreateCurrentAffair)
	admin.Put("/current-affairs/:id", contentController.UpdateCurrentAffair)
	admin.Delete("/current-affairs/:id", contentController.DeleteCurrentAffair)
	admin.Post("/blog", contentController.CreateBlogPost)
	admin.Put("/blog/:id", contentController.UpdateBlogPost)
	admin.Delete("/blog/:id", contentController.DeleteBlogPost)
	admin.Get("/leads", leadsController.GetLeads)
	admin.Put("/leads/:id", leadsController.UpdateLeadStatus)
}
