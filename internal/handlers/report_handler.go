package handlers

import (
	"context"
	"insurance-service/internal/services"
	"insurance-service/internal/utils"
	"net/http"
	"reflect"
	"sort"
	"strconv"

	"github.com/gofiber/fiber/v3"
)

type ReportRunner interface {
	Run(ctx context.Context, n int) (any, error)
}

type ReportHandler struct {
	reports ReportRunner
}

func NewReportHandler(reports ReportRunner) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func (h *ReportHandler) Register(app *fiber.App) {
	reportGroup := app.Group("insurance/public/api/v1/reports")
	reportGroup.Get("/", h.ListReports)      // GET /reports
	reportGroup.Get("/:number", h.RunReport) // GET /reports/:number
}

type reportEntry struct {
	Number int    `json:"numero"`
	Name   string `json:"nombre"`
}

func (h *ReportHandler) ListReports(c fiber.Ctx) error {
	entries := make([]reportEntry, 0, len(services.ReportNames))
	for n, name := range services.ReportNames {
		entries = append(entries, reportEntry{Number: n, Name: name})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Number < entries[j].Number })
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(entries))
}

func (h *ReportHandler) RunReport(c fiber.Ctx) error {
	n, err := strconv.Atoi(c.Params("number"))
	if err != nil {
		return badRequest(c, "report number must be an integer")
	}

	rows, err := h.reports.Run(c.Context(), n)
	if err != nil {
		return respondError(c, "run report", err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateListResponse(rows, rowCount(rows)))
}

func rowCount(rows any) int {
	v := reflect.ValueOf(rows)
	if v.Kind() == reflect.Slice {
		return v.Len()
	}
	return 0
}
