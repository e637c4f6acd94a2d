package testdb

import (
	"testing"

	"site-report-backend/internal/domain/project"
	"site-report-backend/internal/domain/report"
	"site-report-backend/internal/domain/user"

	"gorm.io/gorm"
)

func SeedUser(t testing.TB, db *gorm.DB, email string, approver bool) *user.User {
	t.Helper()
	u := &user.User{FullName: email, Email: email, IsApprover: approver, AgendaColor: "#0d6efd"}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return u
}

func SeedProject(t testing.TB, db *gorm.DB, name string, start int) *project.Project {
	t.Helper()
	p := &project.Project{Name: name, Address: "Rua A, 1", ResponsibleCompany: "Construtora X", StartingNumber: start}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed project %s: %v", name, err)
	}
	return p
}

// SeedReport inserts a draft numbered n in the project.
func SeedReport(t testing.TB, db *gorm.DB, projectID, authorID uint64, n int) *report.Report {
	t.Helper()
	num := n
	r := &report.Report{
		ProjectID:     projectID,
		ProjectNumber: &num,
		Number:        report.PublicNumber(n),
		Title:         "Visita técnica",
		AuthorID:      authorID,
		Content:       "Concretagem da laje do 2º pavimento.",
		Status:        report.StatusDraft,
	}
	if err := db.Create(r).Error; err != nil {
		t.Fatalf("seed report: %v", err)
	}
	return r
}
