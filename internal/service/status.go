package service

import (
	"fmt"
	"time"

	"github.com/clubselect/clubselect-api/internal/models"
)

const (
	dateTimeLayout = "Jan 2, 2006 3:04 PM"
	dateLayout     = "Jan 2, 2006"
)

// StatusResult is the derived submission-window state for display.
type StatusResult struct {
	Status  models.ProjectStatus
	Message string
}

// DeriveStatus computes the display status for a project's submission
// window. A submission always wins: the wire status stays "open" but the
// message reports the submission time, so every caller renders the same
// terminal state. Times in messages are localized to the project
// timezone; an unknown timezone falls back to UTC.
//
// This is the single implementation behind both the student project
// detail view and the embed widget. Do not fork the branching.
func DeriveStatus(now time.Time, project *models.Project, hasSubmitted bool, submittedAt *time.Time) StatusResult {
	loc, err := time.LoadLocation(project.Timezone)
	if err != nil {
		loc = time.UTC
	}

	if hasSubmitted {
		message := "Submitted"
		if submittedAt != nil {
			message = fmt.Sprintf("Submitted on %s", submittedAt.In(loc).Format(dateTimeLayout))
		}
		return StatusResult{Status: models.ProjectStatusOpen, Message: message}
	}

	if project.SubmissionStart != nil && now.Before(*project.SubmissionStart) {
		return StatusResult{
			Status:  models.ProjectStatusWaiting,
			Message: fmt.Sprintf("Opens on %s", project.SubmissionStart.In(loc).Format(dateTimeLayout)),
		}
	}

	if project.SubmissionEnd != nil && now.After(*project.SubmissionEnd) {
		return StatusResult{
			Status:  models.ProjectStatusClosed,
			Message: fmt.Sprintf("Closed on %s", project.SubmissionEnd.In(loc).Format(dateLayout)),
		}
	}

	if project.SubmissionEnd != nil {
		return StatusResult{
			Status:  models.ProjectStatusOpen,
			Message: fmt.Sprintf("Open until %s", project.SubmissionEnd.In(loc).Format(dateTimeLayout)),
		}
	}

	return StatusResult{Status: models.ProjectStatusOpen, Message: "Open for enrollment"}
}
