package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dom/vidtube/internal/domain"
	"github.com/dom/vidtube/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	videoRepo   repository.VideoRepository
	events      EventPublisher
}

func NewCommentService(commentRepo repository.CommentRepository, videoRepo repository.VideoRepository, events EventPublisher) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		videoRepo:   videoRepo,
		events:      events,
	}
}

type CommentPage struct {
	Comments []*domain.Comment `json:"comments"`
	PageInfo
}

// List returns a video's comments newest first.
func (s *CommentService) List(ctx context.Context, videoID uuid.UUID, p Page) (*CommentPage, error) {
	if _, err := s.video(ctx, videoID); err != nil {
		return nil, err
	}
	page := p.normalize()
	comments, total, err := s.commentRepo.ListByVideo(ctx, videoID, page.Limit, page.offset())
	if err != nil {
		return nil, err
	}
	return &CommentPage{Comments: comments, PageInfo: newPageInfo(page, total)}, nil
}

func (s *CommentService) Add(ctx context.Context, userID, videoID uuid.UUID, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrMissingFields
	}
	if _, err := s.video(ctx, videoID); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		ID:        uuid.New(),
		Content:   content,
		VideoID:   videoID,
		OwnerID:   userID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	s.events.Publish(videoID, domain.EventCommentAdded, comment)
	return comment, nil
}

func (s *CommentService) Update(ctx context.Context, userID, commentID uuid.UUID, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrMissingFields
	}
	comment, err := s.owned(ctx, userID, commentID)
	if err != nil {
		return nil, err
	}

	comment.Content = content
	comment.UpdatedAt = time.Now()
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, userID, commentID uuid.UUID) error {
	comment, err := s.owned(ctx, userID, commentID)
	if err != nil {
		return err
	}
	if err := s.commentRepo.Delete(ctx, comment.ID); err != nil {
		return err
	}
	s.events.Publish(comment.VideoID, domain.EventCommentDeleted, map[string]any{"commentId": comment.ID})
	return nil
}

func (s *CommentService) video(ctx context.Context, videoID uuid.UUID) (*domain.Video, error) {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrVideoNotFound
		}
		return nil, err
	}
	return video, nil
}

func (s *CommentService) owned(ctx context.Context, userID, commentID uuid.UUID) (*domain.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCommentNotFound
		}
		return nil, err
	}
	if comment.OwnerID != userID {
		return nil, domain.ErrNotOwner
	}
	return comment, nil
}
