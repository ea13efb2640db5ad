package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/seatmap-editor/internal/editor"
	"github.com/iliyamo/seatmap-editor/internal/model"
)

const venue = `{
  "s1": {"section_name": "Stalls", "rows": {"A": {"seats": {
    "1": {"number": "A1", "status": "uav"},
    "2": {"number": "A2", "status": "uav"},
    "3": {"number": "A3", "status": "av"},
    "4": {"number": "A4", "status": "uav", "notes": "Not for sale"}
  }}}}
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func loadOutput(t *testing.T, path string) *model.Document {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc, err := model.LoadDocument(data)
	require.NoError(t, err)
	return doc
}

func status(doc *model.Document, seat string) string {
	return doc.Sections["s1"].Rows["A"].Seats[seat].Status
}

func TestApplyWritesOutputFile(t *testing.T) {
	in := writeFile(t, "venue.json", venue)
	out := filepath.Join(t.TempDir(), "out.json")
	resultPath := filepath.Join(t.TempDir(), "result.json")

	_, stderr, err := run(t, "apply", in, "-o", out, "--ranges", "Stalls A1-A2 A4", "--price", "55", "--result", resultPath)
	require.NoError(t, err)

	doc := loadOutput(t, out)
	assert.Equal(t, "av", status(doc, "1"))
	assert.Equal(t, "av", status(doc, "2"))
	assert.Equal(t, "uav", status(doc, "3"))
	assert.Equal(t, "uav", status(doc, "4"))
	assert.Equal(t, "55", doc.Sections["s1"].Rows["A"].Seats["1"].PriceText())
	assert.Contains(t, stderr, "mode=availability requested=3 matched=3 missing=0")
	assert.FileExists(t, resultPath)
}

func TestApplyToStdoutWithoutLimit(t *testing.T) {
	in := writeFile(t, "venue.json", venue)
	stdout, _, err := run(t, "apply", in, "--ranges", "Stalls A1", "--no-limit")
	require.NoError(t, err)

	doc, err := model.LoadDocument([]byte(stdout))
	require.NoError(t, err)
	assert.Equal(t, "av", status(doc, "1"))
	assert.Equal(t, "av", status(doc, "3"), "seats outside the range are untouched")
}

func TestApplyTiers(t *testing.T) {
	in := writeFile(t, "venue.json", venue)
	tiers := writeFile(t, "tiers.yaml", "tiers:\n  - ranges: Stalls A1-A2\n    price: 80\n")
	out := filepath.Join(t.TempDir(), "out.json")

	_, stderr, err := run(t, "apply", in, "-o", out, "--tiers", tiers, "--tier", "Stalls A2-A3=60")
	require.NoError(t, err)

	seats := loadOutput(t, out).Sections["s1"].Rows["A"].Seats
	assert.Equal(t, "80", seats["1"].PriceText())
	assert.Equal(t, "80", seats["2"].PriceText(), "first tier keeps overlapping seats")
	assert.Equal(t, "60", seats["3"].PriceText())
	assert.Contains(t, stderr, "mode=multi_tier")
	assert.Contains(t, stderr, "overlapping tier seats: 1")
}

func TestApplyRejectsBadInput(t *testing.T) {
	bad := writeFile(t, "bad.json", "[1, 2]")
	_, _, err := run(t, "apply", bad, "--ranges", "Stalls A1")
	assert.ErrorIs(t, err, model.ErrMalformedDocument)

	in := writeFile(t, "venue.json", venue)
	_, _, err = run(t, "apply", in)
	assert.ErrorIs(t, err, editor.ErrNoRanges)

	_, _, err = run(t, "apply", in, "--tier", "no price here")
	assert.Error(t, err)
}

func TestParseCommand(t *testing.T) {
	in := writeFile(t, "venue.json", venue)
	stdout, _, err := run(t, "parse", in, "--ranges", "Stalls A2-A5, Foyer 1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Stalls A2-A5 -> 4 seat(s): Stalls A2, Stalls A3, Stalls A4, Stalls A5")
	assert.Contains(t, stdout, "missing: Stalls A5")
	assert.Contains(t, stdout, `unparsed: "Foyer 1"`)
}

func TestSummaryCommandWritesWorkbook(t *testing.T) {
	in := writeFile(t, "venue.json", venue)
	xlsx := filepath.Join(t.TempDir(), "summary.xlsx")

	stdout, _, err := run(t, "summary", in, "--xlsx", xlsx)
	require.NoError(t, err)
	assert.Contains(t, stdout, "SECTION")
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"Stalls", "A", "4", "1", "3", "1"}, strings.Fields(lines[1]))
	assert.FileExists(t, xlsx)
}

func TestNormalizeCommand(t *testing.T) {
	stdout, _, err := run(t, "normalize", "Seat A-12", "Standing")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"Seat", "A-12", "a-12", "a", "12"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"Standing", "standing", "-", "-"}, strings.Fields(lines[2]))
}

func TestTokenCommand(t *testing.T) {
	stdout, _, err := run(t, "token", "--sub", "op-3", "--role", "owner", "--secret", "cli-secret")
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(strings.TrimSpace(stdout), claims, func(*jwt.Token) (interface{}, error) {
		return []byte("cli-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "op-3", claims["sub"])
	assert.Equal(t, "OWNER", claims["role"])

	_, _, err = run(t, "token", "--role", "owner", "--secret", "x")
	assert.Error(t, err, "--sub is required")
}
