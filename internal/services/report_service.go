package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/SAP-F-2025/training-service/internal/expiry"
	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet     = "Summary"
	enrollmentsSheet = "Enrollments"
	timeLayout       = "2006-01-02 15:04"
)

type reportService struct {
	repo   repositories.Repository
	logger *slog.Logger
	clock  Clock
}

func NewReportService(repo repositories.Repository, logger *slog.Logger, clock Clock) ReportService {
	if clock == nil {
		clock = SystemClock
	}
	return &reportService{
		repo:   repo,
		logger: logger,
		clock:  clock,
	}
}

// CompletionRate is completed/total as a whole percentage, rounded half up.
func CompletionRate(completed, total int) int {
	if total == 0 {
		return 0
	}
	return (200*completed + total) / (2 * total)
}

// IsOverdue reports whether an enrollment needs attention: past its due
// date without completion, or completed and since expired.
func IsOverdue(enrollment *models.Enrollment, now time.Time) bool {
	if enrollment.IsExpiredAt(now) {
		return true
	}
	if enrollment.Status == models.EnrollmentCompleted {
		return false
	}
	return enrollment.DueAt != nil && now.After(*enrollment.DueAt)
}

type statsCounter struct {
	total, completed, inProgress, notStarted, expired, overdue, expiringSoon int
}

func (c *statsCounter) add(e *models.Enrollment, now time.Time) {
	c.total++
	switch derivedStatus(e, now) {
	case models.EnrollmentCompleted:
		c.completed++
		if expiry.Within(e.ExpiresAt, now, expiry.WarningDays) {
			c.expiringSoon++
		}
	case models.EnrollmentExpired:
		c.expired++
	case models.EnrollmentInProgress:
		c.inProgress++
	case models.EnrollmentNotStarted:
		c.notStarted++
	}
	if IsOverdue(e, now) {
		c.overdue++
	}
}

func (s *reportService) OrgStats(ctx context.Context, orgID string) (*OrgStats, error) {
	stats, _, _, err := s.collect(ctx, orgID)
	return stats, err
}

func (s *reportService) collect(ctx context.Context, orgID string) (*OrgStats, []*models.Enrollment, map[string]*models.TrainingModule, error) {
	enrollments, err := s.repo.Enrollment().ListByOrg(ctx, nil, orgID)
	if err != nil {
		return nil, nil, nil, persistenceError("list org enrollments", err)
	}

	moduleIDs := make([]string, 0)
	seen := make(map[string]bool)
	for _, e := range enrollments {
		if !seen[e.ModuleID] {
			seen[e.ModuleID] = true
			moduleIDs = append(moduleIDs, e.ModuleID)
		}
	}
	sort.Strings(moduleIDs)
	modules, err := s.repo.Module().GetByIDs(ctx, nil, moduleIDs)
	if err != nil {
		return nil, nil, nil, persistenceError("get modules", err)
	}

	now := s.clock().UTC()
	var org statsCounter
	perModule := make(map[string]*statsCounter, len(moduleIDs))
	for _, e := range enrollments {
		org.add(e, now)
		c, ok := perModule[e.ModuleID]
		if !ok {
			c = &statsCounter{}
			perModule[e.ModuleID] = c
		}
		c.add(e, now)
	}

	stats := &OrgStats{
		OrgID:          orgID,
		GeneratedAt:    now,
		TotalEnrolled:  org.total,
		Completed:      org.completed,
		InProgress:     org.inProgress,
		NotStarted:     org.notStarted,
		Expired:        org.expired,
		Overdue:        org.overdue,
		ExpiringSoon:   org.expiringSoon,
		CompletionRate: CompletionRate(org.completed, org.total),
		Modules:        make([]ModuleStats, 0, len(moduleIDs)),
	}
	for _, id := range moduleIDs {
		c := perModule[id]
		title := id
		if m, ok := modules[id]; ok {
			title = m.Title
		}
		stats.Modules = append(stats.Modules, ModuleStats{
			ModuleID:       id,
			ModuleTitle:    title,
			TotalEnrolled:  c.total,
			Completed:      c.completed,
			Overdue:        c.overdue,
			ExpiringSoon:   c.expiringSoon,
			CompletionRate: CompletionRate(c.completed, c.total),
		})
	}

	return stats, enrollments, modules, nil
}

// ExportXLSX writes a workbook with a summary sheet and one row per enrollment.
func (s *reportService) ExportXLSX(ctx context.Context, orgID string, w io.Writer) error {
	s.logger.Info("Exporting training report", "org_id", orgID)

	stats, enrollments, modules, err := s.collect(ctx, orgID)
	if err != nil {
		return err
	}
	users := s.lookupUsers(ctx, enrollments)

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to name summary sheet: %w", err)
	}
	if _, err := f.NewSheet(enrollmentsSheet); err != nil {
		return fmt.Errorf("failed to create enrollments sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	if err := writeSummary(f, stats, bold); err != nil {
		return err
	}
	if err := writeEnrollments(f, enrollments, modules, users, stats.GeneratedAt, bold); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// lookupUsers resolves names for the export. The directory is optional; rows
// fall back to user ids when it is unavailable.
func (s *reportService) lookupUsers(ctx context.Context, enrollments []*models.Enrollment) map[string]*models.User {
	out := make(map[string]*models.User)
	if s.repo.User() == nil || len(enrollments) == 0 {
		return out
	}

	ids := make([]string, 0, len(enrollments))
	seen := make(map[string]bool)
	for _, e := range enrollments {
		if !seen[e.UserID] {
			seen[e.UserID] = true
			ids = append(ids, e.UserID)
		}
	}

	users, err := s.repo.User().GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("User directory unavailable for export", "error", err)
		return out
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out
}

func writeSummary(f *excelize.File, stats *OrgStats, bold int) error {
	rows := [][]interface{}{
		{"Organization", stats.OrgID},
		{"Generated At", stats.GeneratedAt.Format(timeLayout)},
		{"Total Enrolled", stats.TotalEnrolled},
		{"Completed", stats.Completed},
		{"In Progress", stats.InProgress},
		{"Not Started", stats.NotStarted},
		{"Expired", stats.Expired},
		{"Overdue", stats.Overdue},
		{"Expiring Soon", stats.ExpiringSoon},
		{"Completion Rate (%)", stats.CompletionRate},
		{},
		{"Module", "Enrolled", "Completed", "Overdue", "Expiring Soon", "Completion Rate (%)"},
	}
	for _, m := range stats.Modules {
		rows = append(rows, []interface{}{m.ModuleTitle, m.TotalEnrolled, m.Completed, m.Overdue, m.ExpiringSoon, m.CompletionRate})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	moduleHeader := len(rows) - len(stats.Modules)
	if err := f.SetCellStyle(summarySheet, "A1", fmt.Sprintf("A%d", moduleHeader-2), bold); err != nil {
		return err
	}
	return f.SetCellStyle(summarySheet, fmt.Sprintf("A%d", moduleHeader), fmt.Sprintf("F%d", moduleHeader), bold)
}

var enrollmentHeader = []interface{}{
	"Enrollment ID", "User ID", "Name", "Email", "Module ID", "Module", "Cycle",
	"Status", "Progress", "Started At", "Completed At", "Expires At",
	"Days Remaining", "Urgency", "Due At", "Overdue",
}

func writeEnrollments(f *excelize.File, enrollments []*models.Enrollment, modules map[string]*models.TrainingModule, users map[string]*models.User, now time.Time, bold int) error {
	if err := f.SetSheetRow(enrollmentsSheet, "A1", &enrollmentHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetCellStyle(enrollmentsSheet, "A1", "P1", bold); err != nil {
		return err
	}

	for i, e := range enrollments {
		resp := newEnrollmentResponse(e, modules[e.ModuleID], now)

		var name, email string
		if u, ok := users[e.UserID]; ok {
			name, email = u.FullName, u.Email
		}
		days := ""
		if resp.DaysRemaining != nil {
			days = fmt.Sprintf("%d", *resp.DaysRemaining)
		}

		row := []interface{}{
			e.ID, e.UserID, name, email, e.ModuleID, resp.ModuleTitle, e.Cycle,
			string(resp.DerivedStatus), e.Progress, formatTime(e.StartedAt), formatTime(e.CompletedAt), formatTime(e.ExpiresAt),
			days, string(resp.Urgency), formatTime(e.DueAt), IsOverdue(e, now),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(enrollmentsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write enrollment row: %w", err)
		}
	}
	return nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(timeLayout)
}
