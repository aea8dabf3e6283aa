package service_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"citypulse/api/internal/models"
	"citypulse/api/internal/service"
)

func newIssueService(issues *memoryIssueStore, store *fakeMediaStore) *service.IssueService {
	return service.NewIssueService(issues, store, testConfig(), zerolog.Nop())
}

func validSubmit() service.SubmitInput {
	return service.SubmitInput{
		UserID:      "user-1",
		Category:    "roads",
		Description: "Deep pothole near the bus stop",
		Location:    "Corner of 5th and Main",
	}
}

func TestSubmitDefaultsPriorityAndStatus(t *testing.T) {
	issues := newMemoryIssueStore()
	svc := newIssueService(issues, newFakeMediaStore())

	issue, err := svc.Submit(context.Background(), validSubmit())
	require.NoError(t, err)

	require.Equal(t, models.PriorityMedium, issue.Priority)
	require.Equal(t, models.StatusReported, issue.Status)
	require.Equal(t, "user-1", issue.ReportedBy)
	require.Equal(t, 1, issues.count())
}

func TestSubmitInvalidCategory(t *testing.T) {
	issues := newMemoryIssueStore()
	svc := newIssueService(issues, newFakeMediaStore())

	input := validSubmit()
	input.Category = "weather"

	var vErr *service.ValidationError
	_, err := svc.Submit(context.Background(), input)
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "category", vErr.Field)
	require.Equal(t, 0, issues.count(), "no record persisted")
}

func TestSubmitInvalidPriority(t *testing.T) {
	svc := newIssueService(newMemoryIssueStore(), newFakeMediaStore())

	input := validSubmit()
	input.Priority = "urgent"

	var vErr *service.ValidationError
	_, err := svc.Submit(context.Background(), input)
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "priority", vErr.Field)
}

func TestSubmitTooManyFiles(t *testing.T) {
	svc := newIssueService(newMemoryIssueStore(), newFakeMediaStore())

	input := validSubmit()
	for i := 0; i < 6; i++ {
		input.Files = append(input.Files, service.MediaFile{
			Name: "photo.jpg",
			Data: jpegBytes(100 + i),
		})
	}

	var vErr *service.ValidationError
	_, err := svc.Submit(context.Background(), input)
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "media", vErr.Field)
}

func TestSubmitRejectsUnknownFileType(t *testing.T) {
	svc := newIssueService(newMemoryIssueStore(), newFakeMediaStore())

	input := validSubmit()
	input.Files = []service.MediaFile{{Name: "evil.exe", Data: []byte("MZ\x00\x00 definitely not a photo")}}

	var vErr *service.ValidationError
	_, err := svc.Submit(context.Background(), input)
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "media", vErr.Field)
}

func TestSubmitUploadsMediaConcurrently(t *testing.T) {
	issues := newMemoryIssueStore()
	store := newFakeMediaStore()
	svc := newIssueService(issues, store)

	input := validSubmit()
	input.Files = []service.MediaFile{
		{Name: "one.jpg", Data: jpegBytes(100)},
		{Name: "two.png", Data: pngBytes(200)},
		{Name: "three.jpg", Data: jpegBytes(300)},
	}

	issue, err := svc.Submit(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, issue.MediaURLs, 3)
	for _, url := range issue.MediaURLs {
		require.Contains(t, url, "issue-media/")
	}
	require.Equal(t, 3, store.stored())
	require.Equal(t, 1, issues.count())
}

func TestSubmitAllOrNothingOnUploadFailure(t *testing.T) {
	issues := newMemoryIssueStore()
	store := newFakeMediaStore()
	store.failSizes[200] = true // the middle file is rejected by storage
	svc := newIssueService(issues, store)

	input := validSubmit()
	input.Files = []service.MediaFile{
		{Name: "one.jpg", Data: jpegBytes(100)},
		{Name: "two.png", Data: pngBytes(200)},
		{Name: "three.jpg", Data: jpegBytes(300)},
	}

	_, err := svc.Submit(context.Background(), input)
	require.Error(t, err)

	require.Equal(t, 0, issues.count(), "no issue persisted")
	require.Equal(t, 0, store.stored(), "successful sibling uploads were retracted")
}

func TestSubmitRetractsMediaWhenPersistFails(t *testing.T) {
	issues := newMemoryIssueStore()
	issues.createErr = context.DeadlineExceeded
	store := newFakeMediaStore()
	svc := newIssueService(issues, store)

	input := validSubmit()
	input.Files = []service.MediaFile{{Name: "one.jpg", Data: jpegBytes(100)}}

	_, err := svc.Submit(context.Background(), input)
	require.Error(t, err)
	require.Equal(t, 0, store.stored())
	require.Equal(t, 1, store.removedCount())
}

func TestUpdateStatusTransitions(t *testing.T) {
	issues := newMemoryIssueStore()
	svc := newIssueService(issues, newFakeMediaStore())
	ctx := context.Background()

	issue, err := svc.Submit(ctx, validSubmit())
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(ctx, issue.ID, models.StatusInProgress))
	require.NoError(t, svc.UpdateStatus(ctx, issue.ID, models.StatusResolved))

	// Resolved is terminal.
	var vErr *service.ValidationError
	err = svc.UpdateStatus(ctx, issue.ID, models.StatusInProgress)
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "status", vErr.Field)
}

func TestUpdateStatusUnknownIssue(t *testing.T) {
	svc := newIssueService(newMemoryIssueStore(), newFakeMediaStore())

	err := svc.UpdateStatus(context.Background(), "missing", models.StatusInProgress)
	require.Error(t, err)
}

func TestListByReporter(t *testing.T) {
	issues := newMemoryIssueStore()
	svc := newIssueService(issues, newFakeMediaStore())
	ctx := context.Background()

	_, err := svc.Submit(ctx, validSubmit())
	require.NoError(t, err)

	other := validSubmit()
	other.UserID = "user-2"
	_, err = svc.Submit(ctx, other)
	require.NoError(t, err)

	mine, err := svc.ListByReporter(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, "user-1", mine[0].ReportedBy)
}
