package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brightpath/academy-backend/api/controllers"
	"github.com/brightpath/academy-backend/api/middleware"
	"github.com/brightpath/academy-backend/internal/auth"
	"github.com/brightpath/academy-backend/internal/bonuses"
	"github.com/brightpath/academy-backend/internal/challenges"
	"github.com/brightpath/academy-backend/internal/courses"
	"github.com/brightpath/academy-backend/internal/economy"
	"github.com/brightpath/academy-backend/internal/events"
	"github.com/brightpath/academy-backend/internal/levels"
	"github.com/brightpath/academy-backend/internal/mentoring"
	"github.com/brightpath/academy-backend/internal/notifications"
	"github.com/brightpath/academy-backend/internal/quizzes"
	"github.com/brightpath/academy-backend/internal/subscription"
	"github.com/brightpath/academy-backend/internal/users"
	"github.com/brightpath/academy-backend/pkg/config"
	"github.com/brightpath/academy-backend/pkg/logger"
	"github.com/brightpath/academy-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config *config.Config
	Logger *logger.Logger

	DBPing    func(ctx context.Context) error
	RedisPing func(ctx context.Context) error
	Redis     *redis.Client

	AuthService         auth.Service
	UserRepo            users.Repository
	SubscriptionService subscription.Service
	NotificationService notifications.Service
	EconomyService      economy.Service
	CourseService       courses.Service
	QuizService         quizzes.Service
	ChallengeService    challenges.Service
	EventService        events.Service
	BonusService        bonuses.Service
	MentoringService    mentoring.Service
	LevelRepo           levels.Repository
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DBPing, deps.RedisPing, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.With(
			middleware.AuthRateLimit(registerPolicy, deps.Redis, logg),
			middleware.Idempotency(deps.Redis, logg),
		).Post("/register", controllers.AuthRegister(deps.AuthService, logg))
	})

	// Certificate verification is public so third parties can check codes.
	r.Get("/api/v1/certificates/{code}", controllers.VerifyCertificate(deps.CourseService, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(
			middleware.Auth(cfg.JWT, logg),
			middleware.Idempotency(deps.Redis, logg),
		)

		r.Route("/me", func(r chi.Router) {
			r.Get("/", controllers.GetProfile(deps.UserRepo, deps.SubscriptionService, logg))
			r.Get("/certificates", controllers.ListCertificates(deps.CourseService, logg))

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.ListNotifications(deps.NotificationService, logg))
				r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.NotificationService, logg))
				r.Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.NotificationService, logg))
				r.Delete("/{notificationId}", controllers.DeleteNotification(deps.NotificationService, logg))
			})
		})

		r.Route("/shop", func(r chi.Router) {
			r.Get("/", controllers.ListShop(deps.EconomyService, logg))
			r.Post("/{artifactId}/purchase", controllers.PurchaseArtifact(deps.EconomyService, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", controllers.ListInventory(deps.EconomyService, logg))
			r.Post("/{artifactId}/consume", controllers.ConsumeArtifact(deps.EconomyService, logg))
		})

		r.Route("/economy", func(r chi.Router) {
			r.Post("/daily-claim", controllers.ClaimDailyReward(deps.EconomyService, logg))
			r.Get("/ledger", controllers.ListXPLedger(deps.EconomyService, logg))
		})

		r.Route("/courses", func(r chi.Router) {
			r.Get("/", controllers.ListCourses(deps.CourseService, logg))
			r.Get("/{courseId}", controllers.GetCourse(deps.CourseService, logg))
			r.Post("/{courseId}/lessons/{lessonId}/complete", controllers.CompleteLesson(deps.CourseService, logg))
		})

		r.Route("/quizzes", func(r chi.Router) {
			r.Get("/", controllers.ListQuizzes(deps.QuizService, logg))
			r.Post("/{quizId}/attempts", controllers.SubmitQuizAttempt(deps.QuizService, logg))
		})

		r.Route("/challenges", func(r chi.Router) {
			r.Get("/", controllers.ListChallenges(deps.ChallengeService, logg))
			r.Post("/{challengeId}/progress", controllers.RecordChallengeAction(deps.ChallengeService, logg))
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", controllers.ListEvents(deps.EventService, logg))
			r.Post("/{eventId}/register", controllers.RegisterForEvent(deps.EventService, logg))
		})

		r.Route("/bonuses", func(r chi.Router) {
			r.Get("/", controllers.ListBonusTasks(deps.BonusService, logg))
			r.Post("/{taskId}/submit", controllers.SubmitBonus(deps.BonusService, logg))
			r.Post("/{taskId}/claim", controllers.ClaimBonus(deps.BonusService, logg))
		})

		r.Route("/mentoring", func(r chi.Router) {
			r.Get("/mentors", controllers.ListMentors(deps.MentoringService, logg))
			r.Get("/bookings", controllers.ListBookings(deps.MentoringService, logg))
			r.Post("/bookings", controllers.BookSession(deps.MentoringService, logg))
			r.Post("/bookings/{bookingId}/cancel", controllers.CancelBooking(deps.MentoringService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(
			middleware.Auth(cfg.JWT, logg),
			middleware.RequireAdmin(logg),
		)

		r.Route("/artifacts", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateArtifact(deps.EconomyService, logg))
			r.Put("/{artifactId}", controllers.AdminUpdateArtifact(deps.EconomyService, logg))
			r.Delete("/{artifactId}", controllers.AdminDeleteArtifact(deps.EconomyService, logg))
		})

		r.Route("/events", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateEvent(deps.EventService, logg))
			r.Get("/{eventId}/registrations", controllers.AdminListEventRegistrations(deps.EventService, logg))
		})
		r.Route("/registrations", func(r chi.Router) {
			r.Post("/{registrationId}/approve", controllers.AdminApproveEventRegistration(deps.EventService, logg))
			r.Post("/{registrationId}/reject", controllers.AdminRejectEventRegistration(deps.EventService, logg))
		})

		r.Route("/bonuses", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateBonusTask(deps.BonusService, logg))
			r.Get("/submissions/pending", controllers.AdminListPendingBonusSubmissions(deps.BonusService, logg))
			r.Post("/submissions/{submissionId}/approve", controllers.AdminApproveBonusSubmission(deps.BonusService, logg))
		})

		r.Route("/mentoring", func(r chi.Router) {
			r.Post("/mentors", controllers.AdminCreateMentor(deps.MentoringService, logg))
			r.Post("/bookings/{bookingId}/confirm", controllers.AdminConfirmBooking(deps.MentoringService, logg))
			r.Post("/bookings/{bookingId}/reject", controllers.AdminRejectBooking(deps.MentoringService, logg))
		})

		r.Route("/levels", func(r chi.Router) {
			r.Get("/", controllers.AdminGetLevelTable(deps.LevelRepo, logg))
			r.Put("/", controllers.AdminReplaceLevelTable(deps.LevelRepo, logg))
		})
	})

	return r
}
