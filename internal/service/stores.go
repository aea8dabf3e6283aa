package service

import (
	"context"
	"io"

	"citypulse/api/internal/models"
)

// UserStore is the credential store contract. *repository.UserRepository
// satisfies it.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	SetRefreshTokenHash(ctx context.Context, userID string, hash []byte) error
	RotateRefreshTokenHash(ctx context.Context, userID string, prev []byte, next []byte) error
	ClearRefreshToken(ctx context.Context, userID string) error
}

// IssueStore is satisfied by *repository.IssueRepository.
type IssueStore interface {
	Create(ctx context.Context, issue models.Issue) error
	GetByID(ctx context.Context, id string) (models.Issue, error)
	ListByReporter(ctx context.Context, userID string) ([]models.Issue, error)
	UpdateStatus(ctx context.Context, id string, status models.IssueStatus) error
}

// MediaStore is satisfied by *storage.ObjectStore.
type MediaStore interface {
	Put(ctx context.Context, bucket string, objectKey string, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, bucket string, objectKey string) error
	AvatarBucket() string
	MediaBucket() string
}
