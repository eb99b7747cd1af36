package dto

import "time"

// ProjectDefinition is the YAML import/export shape of a project.
// Rosters, enrollments, and submissions are deliberately excluded: the
// definition describes the campaign, not its state. Courses reference
// tags by name and occurrences reference sections by label so a
// definition round-trips between installations.
type ProjectDefinition struct {
	Name            string               `yaml:"name"`
	Description     *string              `yaml:"description,omitempty"`
	Timezone        string               `yaml:"timezone"`
	SubmissionStart *time.Time           `yaml:"submissionStart,omitempty"`
	SubmissionEnd   *time.Time           `yaml:"submissionEnd,omitempty"`
	TimeSections    []SectionDefinition  `yaml:"timeSections,omitempty"`
	Tags            []TagDefinition      `yaml:"tags,omitempty"`
	Courses         []CourseDefinition   `yaml:"courses,omitempty"`
}

// SectionDefinition is a time section in a project definition.
type SectionDefinition struct {
	Label     string `yaml:"label"`
	StartTime string `yaml:"startTime"`
	EndTime   string `yaml:"endTime"`
	Order     int    `yaml:"order"`
}

// TagDefinition is a tag in a project definition.
type TagDefinition struct {
	Name        string  `yaml:"name"`
	Color       *string `yaml:"color,omitempty"`
	MinRequired int     `yaml:"minRequired"`
	MaxAllowed  *int    `yaml:"maxAllowed,omitempty"`
}

// CourseDefinition is a course in a project definition.
type CourseDefinition struct {
	Name        string                 `yaml:"name"`
	Description *string                `yaml:"description,omitempty"`
	Capacity    *int                   `yaml:"capacity,omitempty"`
	Tags        []string               `yaml:"tags,omitempty"`
	Occurrences []OccurrenceDefinition `yaml:"occurrences,omitempty"`
}

// OccurrenceDefinition is a scheduled meeting in a project definition.
type OccurrenceDefinition struct {
	DayOfWeek int    `yaml:"dayOfWeek"`
	Section   string `yaml:"section"`
}
