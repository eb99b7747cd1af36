package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/clubselect/clubselect-api/internal/models"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestDeriveStatusWaiting(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	project := &models.Project{
		Timezone:        "UTC",
		SubmissionStart: timePtr(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)),
	}

	result := DeriveStatus(now, project, false, nil)
	assert.Equal(t, models.ProjectStatusWaiting, result.Status)
	assert.Equal(t, "Opens on Mar 10, 2026 9:00 AM", result.Message)
}

func TestDeriveStatusClosed(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	project := &models.Project{
		Timezone:      "UTC",
		SubmissionEnd: timePtr(time.Date(2026, 3, 20, 17, 0, 0, 0, time.UTC)),
	}

	result := DeriveStatus(now, project, false, nil)
	assert.Equal(t, models.ProjectStatusClosed, result.Status)
	assert.Equal(t, "Closed on Mar 20, 2026", result.Message)
}

func TestDeriveStatusOpenWithDeadline(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	project := &models.Project{
		Timezone:        "UTC",
		SubmissionStart: timePtr(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)),
		SubmissionEnd:   timePtr(time.Date(2026, 3, 20, 17, 0, 0, 0, time.UTC)),
	}

	result := DeriveStatus(now, project, false, nil)
	assert.Equal(t, models.ProjectStatusOpen, result.Status)
	assert.Equal(t, "Open until Mar 20, 2026 5:00 PM", result.Message)
}

func TestDeriveStatusOpenUnbounded(t *testing.T) {
	project := &models.Project{Timezone: "UTC"}

	result := DeriveStatus(time.Now(), project, false, nil)
	assert.Equal(t, models.ProjectStatusOpen, result.Status)
	assert.Equal(t, "Open for enrollment", result.Message)
}

func TestDeriveStatusSubmittedOverridesWindow(t *testing.T) {
	// The window already closed, but a submission takes precedence.
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	project := &models.Project{
		Timezone:      "UTC",
		SubmissionEnd: timePtr(time.Date(2026, 3, 20, 17, 0, 0, 0, time.UTC)),
	}
	submittedAt := time.Date(2026, 3, 18, 14, 30, 0, 0, time.UTC)

	result := DeriveStatus(now, project, true, &submittedAt)
	assert.Equal(t, models.ProjectStatusOpen, result.Status)
	assert.Equal(t, "Submitted on Mar 18, 2026 2:30 PM", result.Message)
}

func TestDeriveStatusLocalizesToProjectTimezone(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	project := &models.Project{
		Timezone:        "Asia/Tokyo",
		SubmissionStart: timePtr(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)),
	}

	result := DeriveStatus(now, project, false, nil)
	// 00:00 UTC is 09:00 in Tokyo.
	assert.Equal(t, "Opens on Mar 10, 2026 9:00 AM", result.Message)
}

func TestDeriveStatusInvalidTimezoneFallsBackToUTC(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	project := &models.Project{
		Timezone:        "Not/AZone",
		SubmissionStart: timePtr(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)),
	}

	result := DeriveStatus(now, project, false, nil)
	assert.Equal(t, models.ProjectStatusWaiting, result.Status)
	assert.Equal(t, "Opens on Mar 10, 2026 9:00 AM", result.Message)
}
