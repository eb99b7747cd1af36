package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/clubselect/clubselect-api/internal/dto"
	"github.com/clubselect/clubselect-api/internal/models"
	appErrors "github.com/clubselect/clubselect-api/pkg/errors"
	"github.com/clubselect/clubselect-api/pkg/export"
)

type definitionProjectRepo interface {
	FindByID(ctx context.Context, id string) (*models.Project, error)
	Create(ctx context.Context, project *models.Project) error
}

type definitionSectionRepo interface {
	ListByProject(ctx context.Context, projectID string) ([]models.TimeSection, error)
	Create(ctx context.Context, section *models.TimeSection) error
}

type definitionTagRepo interface {
	ListByProject(ctx context.Context, projectID string) ([]models.Tag, error)
	Create(ctx context.Context, tag *models.Tag) error
}

type definitionCourseRepo interface {
	ListByProject(ctx context.Context, projectID string) ([]models.Course, error)
	ListTagsByCourse(ctx context.Context, courseID string) ([]models.Tag, error)
	ListOccurrences(ctx context.Context, courseID string) ([]models.OccurrenceDetail, error)
	Create(ctx context.Context, course *models.Course, occurrences []models.Occurrence, tagIDs []string) error
}

// DefinitionService imports and exports whole projects as YAML
// definitions. A definition carries structure only; rosters,
// enrollments, and submissions never travel with it.
type DefinitionService struct {
	projects definitionProjectRepo
	sections definitionSectionRepo
	tags     definitionTagRepo
	courses  definitionCourseRepo
	logger   *zap.Logger
}

// NewDefinitionService constructs a DefinitionService instance.
func NewDefinitionService(projects definitionProjectRepo, sections definitionSectionRepo, tags definitionTagRepo, courses definitionCourseRepo, logger *zap.Logger) *DefinitionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefinitionService{projects: projects, sections: sections, tags: tags, courses: courses, logger: logger}
}

// Import creates a new project from a YAML definition. Courses bind to
// tags by name and to sections by label; an unknown reference aborts
// the import before the referencing course is written.
func (s *DefinitionService) Import(ctx context.Context, raw []byte) (*models.Project, error) {
	var def dto.ProjectDefinition
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid yaml definition")
	}
	if def.Name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "definition name is required")
	}
	if def.Timezone == "" {
		def.Timezone = "UTC"
	}

	project := &models.Project{
		ID:              uuid.NewString(),
		Name:            def.Name,
		Description:     def.Description,
		Timezone:        def.Timezone,
		SubmissionStart: def.SubmissionStart,
		SubmissionEnd:   def.SubmissionEnd,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create project")
	}

	sectionsByLabel := make(map[string]string, len(def.TimeSections))
	for _, sd := range def.TimeSections {
		section := &models.TimeSection{
			ID:        uuid.NewString(),
			ProjectID: project.ID,
			Label:     sd.Label,
			StartTime: sd.StartTime,
			EndTime:   sd.EndTime,
			Order:     sd.Order,
		}
		if err := s.sections.Create(ctx, section); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create time section")
		}
		sectionsByLabel[sd.Label] = section.ID
	}

	tagsByName := make(map[string]string, len(def.Tags))
	for _, td := range def.Tags {
		tag := &models.Tag{
			ID:          uuid.NewString(),
			ProjectID:   project.ID,
			Name:        td.Name,
			Color:       td.Color,
			MinRequired: td.MinRequired,
			MaxAllowed:  td.MaxAllowed,
		}
		if err := s.tags.Create(ctx, tag); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create tag")
		}
		tagsByName[td.Name] = tag.ID
	}

	for _, cd := range def.Courses {
		course := &models.Course{
			ID:          uuid.NewString(),
			ProjectID:   project.ID,
			Name:        cd.Name,
			Description: cd.Description,
			Capacity:    cd.Capacity,
		}
		tagIDs := make([]string, 0, len(cd.Tags))
		for _, name := range cd.Tags {
			id, ok := tagsByName[name]
			if !ok {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("course %q references unknown tag %q", cd.Name, name))
			}
			tagIDs = append(tagIDs, id)
		}
		occurrences := make([]models.Occurrence, 0, len(cd.Occurrences))
		for _, od := range cd.Occurrences {
			sectionID, ok := sectionsByLabel[od.Section]
			if !ok {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("course %q references unknown section %q", cd.Name, od.Section))
			}
			occurrences = append(occurrences, models.Occurrence{
				ID:        uuid.NewString(),
				CourseID:  course.ID,
				DayOfWeek: od.DayOfWeek,
				SectionID: sectionID,
			})
		}
		if err := s.courses.Create(ctx, course, occurrences, tagIDs); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
		}
	}

	s.logger.Info("project imported",
		zap.String("project_id", project.ID),
		zap.Int("courses", len(def.Courses)),
	)
	return project, nil
}

// Export renders a project as a YAML definition file.
func (s *DefinitionService) Export(ctx context.Context, projectID string) (*dto.ExportFile, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch project")
	}

	def := dto.ProjectDefinition{
		Name:            project.Name,
		Description:     project.Description,
		Timezone:        project.Timezone,
		SubmissionStart: project.SubmissionStart,
		SubmissionEnd:   project.SubmissionEnd,
	}

	sections, err := s.sections.ListByProject(ctx, projectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list time sections")
	}
	sectionLabels := make(map[string]string, len(sections))
	for _, sec := range sections {
		sectionLabels[sec.ID] = sec.Label
		def.TimeSections = append(def.TimeSections, dto.SectionDefinition{
			Label:     sec.Label,
			StartTime: sec.StartTime,
			EndTime:   sec.EndTime,
			Order:     sec.Order,
		})
	}

	tags, err := s.tags.ListByProject(ctx, projectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tags")
	}
	for _, tag := range tags {
		def.Tags = append(def.Tags, dto.TagDefinition{
			Name:        tag.Name,
			Color:       tag.Color,
			MinRequired: tag.MinRequired,
			MaxAllowed:  tag.MaxAllowed,
		})
	}

	courses, err := s.courses.ListByProject(ctx, projectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	for _, course := range courses {
		cd := dto.CourseDefinition{
			Name:        course.Name,
			Description: course.Description,
			Capacity:    course.Capacity,
		}
		courseTags, err := s.courses.ListTagsByCourse(ctx, course.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list course tags")
		}
		for _, tag := range courseTags {
			cd.Tags = append(cd.Tags, tag.Name)
		}
		occurrences, err := s.courses.ListOccurrences(ctx, course.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list occurrences")
		}
		for _, occ := range occurrences {
			cd.Occurrences = append(cd.Occurrences, dto.OccurrenceDefinition{
				DayOfWeek: occ.DayOfWeek,
				Section:   sectionLabels[occ.SectionID],
			})
		}
		def.Courses = append(def.Courses, cd)
	}

	content, err := yaml.Marshal(def)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to marshal definition")
	}
	return &dto.ExportFile{
		Filename:    export.Filename(project.Name, "yaml"),
		ContentType: "application/yaml",
		Content:     content,
	}, nil
}
