package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"citypulse/api/internal/config"
	"citypulse/api/internal/ids"
	"citypulse/api/internal/media/sniffer"
	"citypulse/api/internal/models"
	"citypulse/api/internal/storage"
)

// IssueService validates and persists citizen reports. Media uploads fan out
// concurrently; the submission is all-or-nothing, so any single upload
// failure aborts the whole report.
type IssueService struct {
	issues IssueStore
	store  MediaStore
	cfg    *config.AppConfig
	log    zerolog.Logger
}

func NewIssueService(issues IssueStore, store MediaStore, cfg *config.AppConfig, log zerolog.Logger) *IssueService {
	return &IssueService{
		issues: issues,
		store:  store,
		cfg:    cfg,
		log:    log,
	}
}

type MediaFile struct {
	Name string
	Data []byte
}

type SubmitInput struct {
	UserID       string
	Category     string
	Description  string
	Location     string
	Priority     string
	ContactName  string
	ContactPhone string
	Files        []MediaFile
}

func (s *IssueService) Submit(ctx context.Context, input SubmitInput) (models.Issue, error) {
	category := models.IssueCategory(input.Category)
	if !models.ValidIssueCategory(category) {
		return models.Issue{}, invalidField("category", fmt.Sprintf("unknown category %q", input.Category))
	}

	priority := models.PriorityMedium
	if input.Priority != "" {
		priority = models.IssuePriority(input.Priority)
		if !models.ValidIssuePriority(priority) {
			return models.Issue{}, invalidField("priority", fmt.Sprintf("unknown priority %q", input.Priority))
		}
	}

	if input.Description == "" {
		return models.Issue{}, invalidField("description", "required")
	}
	if input.Location == "" {
		return models.Issue{}, invalidField("location", "required")
	}
	if len(input.Files) > s.cfg.Upload.MaxMediaFiles {
		return models.Issue{}, invalidField("media", fmt.Sprintf("at most %d files allowed", s.cfg.Upload.MaxMediaFiles))
	}
	for _, f := range input.Files {
		if int64(len(f.Data)) > s.cfg.Upload.MaxFileBytes {
			return models.Issue{}, invalidField("media", fmt.Sprintf("file %s exceeds size limit", f.Name))
		}
		if _, err := sniffer.DetectHead(head(f.Data)); err != nil {
			return models.Issue{}, invalidField("media", fmt.Sprintf("file %s is not a supported image or video", f.Name))
		}
	}

	mediaURLs, err := s.uploadAll(ctx, input.Files)
	if err != nil {
		return models.Issue{}, err
	}

	issue := models.Issue{
		ID:           ids.New(),
		Category:     category,
		Description:  input.Description,
		Location:     input.Location,
		Priority:     priority,
		MediaURLs:    mediaURLs,
		ReportedBy:   input.UserID,
		ContactName:  input.ContactName,
		ContactPhone: input.ContactPhone,
		Status:       models.StatusReported,
	}

	if err := s.issues.Create(ctx, issue); err != nil {
		s.removeUploaded(mediaURLs)
		return models.Issue{}, fmt.Errorf("persist issue: %w", err)
	}

	return issue, nil
}

// uploadAll runs one goroutine per file and joins on all of them. The first
// failure cancels the group context; anything that did land is retracted
// before the error surfaces, so a failed submission leaves no remote objects
// behind.
func (s *IssueService) uploadAll(ctx context.Context, files []MediaFile) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}

	urls := make([]string, len(files))
	keys := make([]string, len(files))
	done := make([]bool, len(files))

	g, gctx := errgroup.WithContext(ctx)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			detected, err := sniffer.DetectHead(head(file.Data))
			if err != nil {
				return fmt.Errorf("detect type of %s: %w", file.Name, err)
			}

			key := storage.ObjectKey(ids.New(), string(detected.Type))
			url, err := s.store.Put(gctx, s.store.MediaBucket(), key, bytes.NewReader(file.Data), int64(len(file.Data)), detected.MIME)
			if err != nil {
				return fmt.Errorf("upload %s: %w", file.Name, err)
			}

			urls[i] = url
			keys[i] = key
			done[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for i, ok := range done {
			if !ok {
				continue
			}
			if rmErr := s.store.Remove(context.WithoutCancel(ctx), s.store.MediaBucket(), keys[i]); rmErr != nil {
				s.log.Warn().Err(rmErr).Str("object_key", keys[i]).Msg("orphan media cleanup failed")
			}
		}
		return nil, err
	}

	return urls, nil
}

func (s *IssueService) removeUploaded(urls []string) {
	for _, url := range urls {
		key, ok := storage.KeyFromURL(url, s.store.MediaBucket())
		if !ok {
			continue
		}
		if err := s.store.Remove(context.Background(), s.store.MediaBucket(), key); err != nil {
			s.log.Warn().Err(err).Str("object_key", key).Msg("orphan media cleanup failed")
		}
	}
}

func (s *IssueService) GetByID(ctx context.Context, id string) (models.Issue, error) {
	return s.issues.GetByID(ctx, id)
}

func (s *IssueService) ListByReporter(ctx context.Context, userID string) ([]models.Issue, error) {
	return s.issues.ListByReporter(ctx, userID)
}

// UpdateStatus moves an issue through the operator workflow. Transitions only
// go forward.
func (s *IssueService) UpdateStatus(ctx context.Context, id string, status models.IssueStatus) error {
	issue, err := s.issues.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !models.ValidStatusTransition(issue.Status, status) {
		return invalidField("status", fmt.Sprintf("cannot move from %s to %s", issue.Status, status))
	}

	return s.issues.UpdateStatus(ctx, id, status)
}
