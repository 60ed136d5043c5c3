package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title: "Group Report Acme",
		Sections: []Section{
			{Name: "summary", Rows: []Row{
				{Item: "groupName", Value: "Acme"},
				{Item: "completionRate", Value: "50%"},
			}},
			{Name: "members", Rows: []Row{
				{Item: "Kim", Value: "internal"},
			}},
		},
	}
}

func TestCSVExporterRendersSections(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	content := string(out)
	lines := strings.Split(strings.TrimSpace(content), "\n")
	assert.Equal(t, "section,item,value", lines[0])
	assert.Contains(t, content, "summary,groupName,Acme")
	assert.Contains(t, content, "members,Kim,internal")
	assert.Len(t, lines, 4)
}

func TestCSVExporterRequiresSections(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{Title: "empty"})
	require.Error(t, err)
}

func TestPDFExporterRendersDocument(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}

func TestPDFExporterRequiresSections(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{})
	require.Error(t, err)
}
