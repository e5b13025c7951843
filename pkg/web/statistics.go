package web

import (
	"bytes"

	"github.com/dukex/formreport/pkg/services"
	"github.com/gofiber/fiber/v3"
)

func parseStatisticsFilter(c fiber.Ctx) (services.StatisticsFilter, error) {
	filter := services.StatisticsFilter{
		TemplateID: c.Query("template_id"),
		TenantID:   c.Query("tenant_id"),
	}

	var err error

	filter.From, err = queryTime(c, "from")
	if err != nil {
		return filter, err
	}

	filter.To, err = queryTime(c, "to")

	return filter, err
}

func (h *APIHandlers) StatisticsDashboard(c fiber.Ctx) error {
	filter, err := parseStatisticsFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	dashboard, err := h.services.Statistics.Dashboard(c.Context(), filter)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(dashboard)
}

func (h *APIHandlers) StatisticsSummary(c fiber.Ctx) error {
	filter, err := parseStatisticsFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	summary, err := h.services.Statistics.Summary(c.Context(), filter)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(summary)
}

func (h *APIHandlers) StatisticsOnTime(c fiber.Ctx) error {
	filter, err := parseStatisticsFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	onTime, err := h.services.Statistics.OnTime(c.Context(), filter)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(onTime)
}

func (h *APIHandlers) StatisticsCompletionTime(c fiber.Ctx) error {
	filter, err := parseStatisticsFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	hours, err := h.services.Statistics.AverageCompletionHours(c.Context(), filter)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"average_completion_hours": hours})
}

// StatisticsTrends buckets submissions by "period": Daily (default), Weekly, Monthly or Quarterly.
func (h *APIHandlers) StatisticsTrends(c fiber.Ctx) error {
	filter, err := parseStatisticsFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	period := services.TrendPeriod(c.Query("period", string(services.TrendDaily)))

	trends, err := h.services.Statistics.Trends(c.Context(), filter, period)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(trends)
}

func (h *APIHandlers) StatisticsTenants(c fiber.Ctx) error {
	filter, err := parseStatisticsFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	tenants, err := h.services.Statistics.TenantComparison(c.Context(), filter)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(tenants)
}

func (h *APIHandlers) StatisticsUsers(c fiber.Ctx) error {
	filter, err := parseStatisticsFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	users, err := h.services.Statistics.UserRates(c.Context(), filter)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(users)
}

func (h *APIHandlers) StatisticsRecent(c fiber.Ctx) error {
	filter, err := parseStatisticsFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	recent, err := h.services.Statistics.RecentSubmissions(c.Context(), filter)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(recent)
}

func (h *APIHandlers) ExportSubmissions(c fiber.Ctx) error {
	filter, err := parseStatisticsFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var buf bytes.Buffer

	err = h.services.Statistics.ExportCSV(c.Context(), filter, &buf)
	if err != nil {
		return handleServiceError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="submissions.csv"`)

	return c.Send(buf.Bytes())
}
