package web

import "github.com/gofiber/fiber/v3"

// Register mounts every resource group on router. Static segments are registered before parameters.
func Register(router fiber.Router, h *APIHandlers) {
	categories := router.Group("/categories")
	categories.Get("/", h.ListCategories)
	categories.Post("/", h.CreateCategory)
	categories.Get("/select-list", h.CategorySelectList)
	categories.Get("/:id", h.GetCategory)
	categories.Put("/:id", h.UpdateCategory)
	categories.Delete("/:id", h.DeleteCategory)

	templates := router.Group("/templates")
	templates.Get("/", h.ListTemplates)
	templates.Post("/", h.CreateTemplate)
	templates.Get("/code/generate", h.GenerateTemplateCode)
	templates.Get("/code/exists", h.TemplateCodeExists)
	templates.Get("/by-code/:code", h.GetTemplateByCode)
	templates.Get("/:id", h.GetTemplate)
	templates.Patch("/:id", h.UpdateTemplate)
	templates.Delete("/:id", h.DeleteTemplate)
	templates.Put("/:id/structure", h.UpdateTemplateStructure)
	templates.Post("/:id/publish", h.PublishTemplate)
	templates.Post("/:id/archive", h.ArchiveTemplate)
	templates.Post("/:id/versions", h.CreateTemplateVersion)
	templates.Get("/:id/progress", h.TemplateProgress)
	templates.Get("/:id/coverage", h.TemplateCoverage)
	templates.Get("/:id/timing", h.TemplateTiming)
	templates.Get("/:id/assignments", h.TemplateAssignments)
	templates.Get("/:id/submission-rules", h.TemplateRules)
	templates.Get("/:id/scores", h.TemplateScores)
	templates.Post("/:id/sections/:sectionId/items/:itemId/options", h.ApplyOptionTemplate)

	optionTemplates := router.Group("/option-templates")
	optionTemplates.Get("/", h.SearchOptionTemplates)
	optionTemplates.Post("/", h.CreateOptionTemplate)
	optionTemplates.Get("/active", h.ActiveOptionTemplates)
	optionTemplates.Get("/categories", h.OptionTemplateCategories)
	optionTemplates.Get("/select-list", h.OptionTemplateSelectList)
	optionTemplates.Get("/code/exists", h.OptionTemplateCodeExists)
	optionTemplates.Get("/by-code/:code", h.GetOptionTemplateByCode)
	optionTemplates.Get("/:id", h.GetOptionTemplate)
	optionTemplates.Put("/:id", h.UpdateOptionTemplate)
	optionTemplates.Delete("/:id", h.DeleteOptionTemplate)

	assignments := router.Group("/assignments")
	assignments.Get("/", h.ListAssignments)
	assignments.Post("/", h.CreateAssignment)
	assignments.Get("/me", h.MyAssignments)
	assignments.Get("/me/pending", h.MyPendingAssignments)
	assignments.Get("/statistics", h.AssignmentStatistics)
	assignments.Post("/bulk/extend", h.BulkExtendAssignments)
	assignments.Post("/bulk/cancel", h.BulkCancelAssignments)
	assignments.Get("/:id", h.GetAssignment)
	assignments.Patch("/:id", h.UpdateAssignment)
	assignments.Delete("/:id", h.DeleteAssignment)
	assignments.Get("/:id/validate", h.ValidateAssignment)
	assignments.Post("/:id/cancel", h.CancelAssignment)
	assignments.Post("/:id/extend", h.ExtendAssignment)
	assignments.Post("/:id/suspend", h.SuspendAssignment)
	assignments.Post("/:id/reactivate", h.ReactivateAssignment)

	workflows := router.Group("/workflows")
	workflows.Get("/", h.ListWorkflows)
	workflows.Post("/", h.CreateWorkflow)
	workflows.Get("/actions", h.ListWorkflowActions)
	workflows.Get("/:id", h.GetWorkflow)
	workflows.Patch("/:id", h.UpdateWorkflow)
	workflows.Delete("/:id", h.DeleteWorkflow)
	workflows.Get("/:id/validate", h.ValidateWorkflow)
	workflows.Post("/:id/clone", h.CloneWorkflow)
	workflows.Post("/:id/steps", h.AddWorkflowStep)
	workflows.Put("/:id/steps/order", h.ReorderWorkflowSteps)
	workflows.Patch("/:id/steps/:stepId", h.UpdateWorkflowStep)
	workflows.Delete("/:id/steps/:stepId", h.DeleteWorkflowStep)

	rules := router.Group("/submission-rules")
	rules.Get("/", h.ListSubmissionRules)
	rules.Post("/", h.CreateSubmissionRule)
	rules.Post("/preview", h.PreviewSubmissionRule)
	rules.Get("/reminders", h.RuleReminders)
	rules.Get("/:id", h.GetSubmissionRule)
	rules.Put("/:id", h.UpdateSubmissionRule)
	rules.Delete("/:id", h.DeleteSubmissionRule)
	rules.Post("/:id/toggle", h.ToggleSubmissionRule)

	submissions := router.Group("/submissions")
	submissions.Get("/", h.ListSubmissions)
	submissions.Post("/draft", h.SaveDraft)
	submissions.Get("/:id", h.GetSubmission)
	submissions.Delete("/:id", h.DeleteDraft)
	submissions.Post("/:id/submit", h.SubmitSubmission)
	submissions.Get("/:id/responses", h.SubmissionResponses)
	submissions.Get("/:id/validate", h.ValidateSubmission)
	submissions.Get("/:id/scores", h.SubmissionScores)
	submissions.Get("/:id/workflow", h.SubmissionWorkflow)
	submissions.Post("/:id/workflow/steps/:progressId/complete", h.CompleteStep)
	submissions.Post("/:id/workflow/steps/:progressId/reject", h.RejectStep)
	submissions.Post("/:id/workflow/steps/:progressId/delegate", h.DelegateStep)

	pending := router.Group("/workflow/pending")
	pending.Get("/", h.PendingActions)
	pending.Get("/count", h.PendingActionCount)

	statistics := router.Group("/statistics")
	statistics.Get("/dashboard", h.StatisticsDashboard)
	statistics.Get("/summary", h.StatisticsSummary)
	statistics.Get("/on-time", h.StatisticsOnTime)
	statistics.Get("/completion-time", h.StatisticsCompletionTime)
	statistics.Get("/trends", h.StatisticsTrends)
	statistics.Get("/tenants", h.StatisticsTenants)
	statistics.Get("/users", h.StatisticsUsers)
	statistics.Get("/recent", h.StatisticsRecent)
	statistics.Get("/export.csv", h.ExportSubmissions)

	directory := router.Group("/directory")
	directory.Get("/users", h.ListUsers)
	directory.Post("/users", h.SaveUser)
	directory.Get("/users/:id", h.GetUser)
	directory.Get("/tenants", h.ListTenants)
	directory.Post("/tenants", h.SaveTenant)
	directory.Get("/tenants/:id", h.GetTenant)
}
