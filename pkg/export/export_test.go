package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	data := Dataset{
		Headers: []string{"Student", "Submitted At"},
		Rows: [][]string{
			{"alice", "2026-03-01T10:00:00Z"},
			{"bob", "2026-03-02T11:30:00Z"},
		},
	}
	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Student,Submitted At", lines[0])
	assert.Contains(t, lines[1], "alice")
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	data := Dataset{
		Headers: []string{"Student", "Submitted At"},
		Rows:    [][]string{{"alice", "2026-03-01"}},
	}
	out, err := NewPDFExporter().Render(data, "Spring Clubs Submissions")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "spring-clubs-2026-export.csv", Filename("Spring Clubs 2026", "csv"))
	assert.Equal(t, "project-export.yml", Filename("!!!", "yml"))
}
