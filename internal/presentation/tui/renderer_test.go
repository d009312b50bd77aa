package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot() domain.Snapshot {
	return domain.Snapshot{
		ActiveView:  "home",
		CurrentPath: "/a?x=1|2",
		LastKey:     2,
		Entries: []domain.Entry{
			{Key: 1, Location: domain.Location{Path: "/", ViewName: "home"}},
			{Key: 2, Location: domain.Location{Path: "/a?x=1|2", ViewName: "home"}},
			{Key: 3, Location: domain.Location{Path: "/b", ViewName: "home"}, IsBacked: true},
		},
	}
}

func TestHistoryMarkdown(t *testing.T) {
	md := HistoryMarkdown(snapshot())

	assert.Contains(t, md, `**/a?x=1\|2** in view **home**`)
	assert.Contains(t, md, "| → | 2 | /a?x=1\\|2 | home |  |")
	assert.Contains(t, md, "|  | 3 | /b | home | yes |")
	assert.Equal(t, 5, strings.Count(md, "\n|"), "header, separator and one row per entry")
}

func TestSnapshotRenderer(t *testing.T) {
	out, err := NewSnapshotRenderer()(snapshot())
	require.NoError(t, err)
	assert.Contains(t, out, "/b")
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|___/|_|")
	assert.Equal(t, "committed", Status(&buf, "committed"), "no colours outside a terminal")
}
