package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestCreateAndListReports(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateReport(ctx, Report{
		Type:      "hazard",
		Label:     "Pothole",
		Latitude:  1.3521,
		Longitude: 103.8198,
		Details:   "deep one",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 1, created.Confirmations)
	assert.Equal(t, 0, created.Denials)
	assert.NotZero(t, created.Timestamp)

	reports, err := s.ListReports(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, created.ID, reports[0].ID)
	assert.Equal(t, "Pothole", reports[0].Label)
}

func TestConfirmAndDenyReport(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateReport(ctx, Report{Type: "hazard", Label: "Flooding", Latitude: 1, Longitude: 103})
	require.NoError(t, err)

	after, err := s.ConfirmReport(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, after.Confirmations)

	after, err = s.DenyReport(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, after.Denials)
	assert.Equal(t, 2, after.Confirmations)
}

func TestConfirmReport_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.ConfirmReport(context.Background(), "missing-id")
	assert.Error(t, err)
}

func TestAccessibilitySubmissions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateAccessibility(ctx, AccessibilitySubmission{
		LocationName: "Clarke Quay",
		Latitude:     1.2906,
		Longitude:    103.8465,
		IssueType:    "no_ramp",
		Description:  "stairs only",
	})
	require.NoError(t, err)
	assert.Positive(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	subs, err := s.ListAccessibility(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "no_ramp", subs[0].IssueType)
	assert.Equal(t, "Clarke Quay", subs[0].LocationName)
}

func TestListReports_Empty(t *testing.T) {
	s := newTestStore(t)
	reports, err := s.ListReports(context.Background())
	require.NoError(t, err)
	assert.Empty(t, reports)
}
