package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/sirupsen/logrus"

	"pms/internal/domain"
	"pms/internal/domain/models"
	"pms/internal/repositories"
)

// ReportService renders a project summary PDF for members and owners.
type ReportService struct {
	Projects repositories.ProjectRepository
	Tasks    repositories.TaskRepository
	Project  ProjectService
	Log      *logrus.Logger
}

func (s ReportService) ProjectReport(ctx context.Context, principal domain.Principal, projectID int64) ([]byte, string, error) {
	project, err := s.Project.Get(ctx, principal, projectID)
	if err != nil {
		return nil, "", err
	}

	members, err := s.Projects.ListMembers(ctx, projectID)
	if err != nil {
		return nil, "", err
	}
	taskCounts, err := s.Tasks.StatusCounts(ctx, principal, projectID)
	if err != nil {
		return nil, "", err
	}

	s.Log.WithFields(logrus.Fields{"project_id": projectID, "by": principal.ID}).Info("project report generated")
	return buildProjectReportPDF(project, members, taskCounts)
}

func buildProjectReportPDF(project models.Project, members []models.ProjectMember, taskCounts map[string]int64) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Project Report", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "PROJECT REPORT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Project    : %s", project.Name),
		fmt.Sprintf("Status     : %s", project.Status),
		fmt.Sprintf("Visibility : %s", project.Visibility),
		fmt.Sprintf("Created    : %s", project.CreatedAt.Format("2006-01-02")),
		fmt.Sprintf("Members    : %d", len(members)),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Tasks by status")
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 12)

	var total int64
	for _, status := range []string{
		models.TaskStatusTodo, models.TaskStatusInProgress, models.TaskStatusReview, models.TaskStatusDone,
	} {
		n := taskCounts[status]
		total += n
		pdf.Cell(0, 7, fmt.Sprintf("%-12s : %d", status, n))
		pdf.Ln(7)
	}
	pdf.Cell(0, 7, fmt.Sprintf("%-12s : %d", "total", total))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, fmt.Sprintf("Generated %s", time.Now().Format(time.RFC1123)), "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", domain.QueryError{Op: "render report", Err: err}
	}
	filename := fmt.Sprintf("project-%d-report.pdf", project.ID)
	return buf.Bytes(), filename, nil
}
