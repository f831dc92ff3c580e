package contentschedule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashram-web/satsang-server/app/models"
	"github.com/ashram-web/satsang-server/internal/pkg/testutil"
)

func TestCreateContent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := NewServiceFromDB(db)
	ctx := context.Background()

	plan := testutil.TestPlan(t, db)

	item, err := svc.CreateContent(ctx, ContentInput{
		Slug:      "hanuman-chalisa",
		Title:     "Hanuman Chalisa",
		Type:      models.ContentTypeBhajan,
		PlanID:    plan.ID,
		ObjectKey: "audio/hanuman-chalisa.mp3",
	})
	require.NoError(t, err)
	assert.Equal(t, "hi", item.Locale)

	loaded, err := svc.GetContent(ctx, "hanuman-chalisa", "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hanuman Chalisa", loaded.Title)

	// Locale variants of one slug coexist.
	_, err = svc.CreateContent(ctx, ContentInput{
		Slug:      "hanuman-chalisa",
		Locale:    "en",
		Title:     "Hanuman Chalisa (English)",
		Type:      models.ContentTypeBhajan,
		PlanID:    plan.ID,
		ObjectKey: "audio/hanuman-chalisa-en.mp3",
	})
	require.NoError(t, err)
}

func TestCreateContentValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := NewServiceFromDB(db)
	ctx := context.Background()

	plan := testutil.TestPlan(t, db)

	_, err := svc.CreateContent(ctx, ContentInput{Title: "No Slug", Type: models.ContentTypeBhajan, PlanID: plan.ID, ObjectKey: "a.mp3"})
	assert.ErrorIs(t, err, ErrInvalidContent)

	_, err = svc.CreateContent(ctx, ContentInput{Slug: "x", Title: "Bad Type", Type: "podcast", PlanID: plan.ID, ObjectKey: "a.mp3"})
	assert.ErrorIs(t, err, ErrInvalidContent)

	_, err = svc.CreateContent(ctx, ContentInput{Slug: "x", Title: "No Plan", Type: models.ContentTypeBhajan, PlanID: "missing", ObjectKey: "a.mp3"})
	assert.ErrorIs(t, err, ErrInvalidContent)
}

func TestUpdateContent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := NewServiceFromDB(db)
	ctx := context.Background()

	plan := testutil.TestPlan(t, db)
	item := testutil.TestContent(t, db, plan.ID, testutil.WithSlug("morning-aarti"))

	updated, err := svc.UpdateContent(ctx, item.Slug, item.Locale, ContentInput{
		Title:     "Morning Aarti (remastered)",
		Type:      models.ContentTypeBhajan,
		PlanID:    plan.ID,
		ObjectKey: "audio/morning-aarti-v2.mp3",
	})
	require.NoError(t, err)
	assert.Equal(t, "Morning Aarti (remastered)", updated.Title)
	assert.Equal(t, "audio/morning-aarti-v2.mp3", updated.ObjectKey)

	_, err = svc.UpdateContent(ctx, "missing", "hi", ContentInput{Title: "X", Type: models.ContentTypeBhajan, PlanID: plan.ID, ObjectKey: "x"})
	assert.ErrorIs(t, err, ErrContentNotFound)
}

func TestDeleteContentStripsScheduleRefs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := NewServiceFromDB(db)
	ctx := context.Background()

	plan := testutil.TestPlan(t, db)
	keep := testutil.TestContent(t, db, plan.ID, testutil.WithSlug("keep-me"))
	gone := testutil.TestContent(t, db, plan.ID, testutil.WithSlug("delete-me"))

	_, err := svc.AssignToMonth(ctx, plan.ID, 2026, 4, []string{keep.Slug, gone.Slug})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteContent(ctx, gone.Slug))

	_, err = svc.GetContent(ctx, gone.Slug, "hi")
	assert.ErrorIs(t, err, ErrContentNotFound)

	entries, err := svc.ListMonthsForPlan(ctx, plan.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.StringList{"keep-me"}, entries[0].ContentRefs)

	assert.ErrorIs(t, svc.DeleteContent(ctx, "never-existed"), ErrContentNotFound)
}

func TestAssignToMonth(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := NewServiceFromDB(db)
	ctx := context.Background()

	plan := testutil.TestPlan(t, db)
	a := testutil.TestContent(t, db, plan.ID, testutil.WithSlug("bhajan-a"))
	b := testutil.TestContent(t, db, plan.ID, testutil.WithSlug("bhajan-b"))

	entry, err := svc.AssignToMonth(ctx, plan.ID, 2026, 4, []string{a.Slug, b.Slug, a.Slug})
	require.NoError(t, err)
	assert.Equal(t, models.StringList{"bhajan-a", "bhajan-b"}, entry.ContentRefs)
	assert.False(t, entry.IsPublished)

	// Reassignment before publish may replace the list wholesale.
	entry, err = svc.AssignToMonth(ctx, plan.ID, 2026, 4, []string{b.Slug})
	require.NoError(t, err)
	assert.Equal(t, models.StringList{"bhajan-b"}, entry.ContentRefs)
}

func TestAssignToMonthValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := NewServiceFromDB(db)
	ctx := context.Background()

	plan := testutil.TestPlan(t, db)
	item := testutil.TestContent(t, db, plan.ID)

	_, err := svc.AssignToMonth(ctx, plan.ID, 2026, 13, []string{item.Slug})
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	_, err = svc.AssignToMonth(ctx, plan.ID, 1999, 4, []string{item.Slug})
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	_, err = svc.AssignToMonth(ctx, "missing-plan", 2026, 4, []string{item.Slug})
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	_, err = svc.AssignToMonth(ctx, plan.ID, 2026, 4, nil)
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	_, err = svc.AssignToMonth(ctx, plan.ID, 2026, 4, []string{item.Slug, "ghost-slug"})
	assert.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestPublishedMonthNeverLosesContent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := NewServiceFromDB(db)
	ctx := context.Background()

	plan := testutil.TestPlan(t, db)
	a := testutil.TestContent(t, db, plan.ID, testutil.WithSlug("bhajan-a"))
	b := testutil.TestContent(t, db, plan.ID, testutil.WithSlug("bhajan-b"))
	c := testutil.TestContent(t, db, plan.ID, testutil.WithSlug("bhajan-c"))

	_, err := svc.AssignToMonth(ctx, plan.ID, 2026, 4, []string{a.Slug, b.Slug})
	require.NoError(t, err)
	_, err = svc.PublishMonth(ctx, plan.ID, 2026, 4)
	require.NoError(t, err)

	// Dropping an already-released item is refused.
	_, err = svc.AssignToMonth(ctx, plan.ID, 2026, 4, []string{a.Slug})
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	// Adding on top of a published month is fine.
	entry, err := svc.AssignToMonth(ctx, plan.ID, 2026, 4, []string{a.Slug, b.Slug, c.Slug})
	require.NoError(t, err)
	assert.Equal(t, models.StringList{"bhajan-a", "bhajan-b", "bhajan-c"}, entry.ContentRefs)
	assert.True(t, entry.IsPublished)
}

func TestPublishMonthIsOneWayAndIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := NewServiceFromDB(db)
	ctx := context.Background()

	plan := testutil.TestPlan(t, db)
	item := testutil.TestContent(t, db, plan.ID)

	_, err := svc.PublishMonth(ctx, plan.ID, 2026, 4)
	assert.ErrorIs(t, err, ErrScheduleNotFound)

	_, err = svc.AssignToMonth(ctx, plan.ID, 2026, 4, []string{item.Slug})
	require.NoError(t, err)

	entry, err := svc.PublishMonth(ctx, plan.ID, 2026, 4)
	require.NoError(t, err)
	assert.True(t, entry.IsPublished)
	require.NotNil(t, entry.PublishedAt)
	firstPublish := *entry.PublishedAt

	// Re-publishing keeps the original timestamp.
	entry, err = svc.PublishMonth(ctx, plan.ID, 2026, 4)
	require.NoError(t, err)
	assert.True(t, entry.IsPublished)
	assert.Equal(t, firstPublish.Unix(), entry.PublishedAt.Unix())
}

func TestScheduleEntryForContent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := NewServiceFromDB(db)
	ctx := context.Background()

	plan := testutil.TestPlan(t, db)
	scheduled := testutil.TestContent(t, db, plan.ID, testutil.WithSlug("scheduled"))
	planWide := testutil.TestContent(t, db, plan.ID, testutil.WithSlug("plan-wide"))

	_, err := svc.AssignToMonth(ctx, plan.ID, 2026, 4, []string{scheduled.Slug})
	require.NoError(t, err)

	entry, err := svc.ScheduleEntryForContent(ctx, plan.ID, scheduled.Slug)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, 4, entry.Month)

	entry, err = svc.ScheduleEntryForContent(ctx, plan.ID, planWide.Slug)
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestListContentByPlanRejectsUnknownType(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := NewServiceFromDB(db)

	_, err := svc.ListContentByPlan(context.Background(), "any", "podcast", "hi")
	assert.ErrorIs(t, err, ErrInvalidContent)
}
