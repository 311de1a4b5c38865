package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/teacher-journal-api/internal/middleware"
)

// Handlers groups every HTTP handler mounted by RegisterRoutes.
type Handlers struct {
	Journal     *JournalHandler
	Classes     *ClassHandler
	Students    *StudentHandler
	Analytics   *AnalyticsHandler
	Reports     *ReportHandler
	Reminders   *ReminderHandler
	Notes       *NoteHandler
	LessonPlans *LessonPlanHandler
	Forum       *ForumHandler
	Chat        *ChatHandler
	Events      *EventsHandler
	Metrics     *MetricsHandler
}

// RegisterRoutes mounts the API under prefix. Reads without identity return empty data; writes require a teacher.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, auth middleware.TokenValidator, auditLog *zap.Logger) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix, middleware.WithResponseMeta(), middleware.OptionalJWT(auth))
	api.GET("/export/:token", h.Reports.DownloadExport)
	api.GET("/system/metrics", h.Analytics.SystemMetrics)

	api.GET("/classes", h.Classes.List)
	api.GET("/classes/:id/students", h.Students.List)
	api.GET("/reminders", h.Reminders.List)
	api.GET("/reminders/badge", h.Reminders.Badge)
	api.GET("/notes", h.Notes.List)
	api.GET("/lesson-plans", h.LessonPlans.List)
	api.GET("/forum/posts", h.Forum.ListPosts)
	api.GET("/forum/posts/:id", h.Forum.Thread)

	secured := api.Group("", middleware.RequireTeacher())
	secured.GET("/events", h.Events.Stream)

	journal := secured.Group("/journal")
	journal.POST("/select", h.Journal.Select)
	journal.GET("/day", h.Journal.Day)
	journal.POST("/status", h.Journal.ApplyStatus)
	journal.POST("/status/all", h.Journal.ApplyStatusToAll)
	journal.DELETE("/events/:eventId", h.Journal.RemoveEvent)
	journal.PUT("/note", h.Journal.SetNote)
	journal.PUT("/note/all", h.Journal.SetNoteForAll)
	journal.POST("/commit", middleware.Audit(auditLog, "commit", "journal"), h.Journal.Commit)
	journal.POST("/cancel", h.Journal.Cancel)

	classes := secured.Group("/classes")
	classes.POST("", middleware.Audit(auditLog, "create", "class"), h.Classes.Create)
	classes.GET("/:id", h.Classes.Get)
	classes.PUT("/:id", middleware.Audit(auditLog, "update", "class"), h.Classes.Update)
	classes.DELETE("/:id", middleware.Audit(auditLog, "delete", "class"), h.Classes.Delete)
	classes.GET("/:id/summary", h.Analytics.ClassSummary)
	classes.GET("/:id/report", h.Reports.Download)
	classes.GET("/:id/narrative", h.Reports.Narrative)
	classes.POST("/:id/students", middleware.Audit(auditLog, "create", "student"), h.Students.Create)
	classes.POST("/:id/students/import", middleware.Audit(auditLog, "import", "student"), h.Students.ImportFile)
	classes.POST("/:id/students/import/text", middleware.Audit(auditLog, "import", "student"), h.Students.ImportText)
	classes.PUT("/:id/students/:studentId", middleware.Audit(auditLog, "update", "student"), h.Students.Update)
	classes.DELETE("/:id/students/:studentId", middleware.Audit(auditLog, "delete", "student"), h.Students.Delete)
	classes.GET("/:id/students/:studentId/summary", h.Analytics.StudentSummary)
	classes.GET("/:id/students/:studentId/report", h.Reports.Download)
	classes.GET("/:id/students/:studentId/narrative", h.Reports.Narrative)

	reports := secured.Group("/reports")
	reports.POST("/generate", h.Reports.GenerateReport)
	reports.GET("/status/:id", h.Reports.ReportStatus)

	reminders := secured.Group("/reminders")
	reminders.POST("", h.Reminders.Create)
	reminders.PUT("/:id", h.Reminders.Update)
	reminders.PATCH("/:id/toggle", h.Reminders.Toggle)
	reminders.DELETE("/:id", h.Reminders.Delete)

	notes := secured.Group("/notes")
	notes.POST("", h.Notes.Create)
	notes.POST("/transcript", h.Notes.FromTranscript)
	notes.GET("/:id", h.Notes.Get)
	notes.PUT("/:id", h.Notes.Update)
	notes.PATCH("/:id/pin", h.Notes.TogglePin)
	notes.DELETE("/:id", middleware.Audit(auditLog, "delete", "note"), h.Notes.Delete)

	plans := secured.Group("/lesson-plans")
	plans.POST("", h.LessonPlans.Create)
	plans.POST("/suggest-description", h.LessonPlans.SuggestDescription)
	plans.GET("/:id", h.LessonPlans.Get)
	plans.PUT("/:id", h.LessonPlans.Update)
	plans.DELETE("/:id", h.LessonPlans.Delete)

	forum := secured.Group("/forum/posts")
	forum.POST("", h.Forum.CreatePost)
	forum.DELETE("/:id", middleware.Audit(auditLog, "delete", "forum_post"), h.Forum.DeletePost)
	forum.POST("/:id/replies", h.Forum.Reply)
	forum.POST("/:id/ai-answer", h.Forum.AIAnswer)

	secured.POST("/chat", h.Chat.Reply)
}
