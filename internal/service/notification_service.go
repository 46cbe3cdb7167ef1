package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"go.uber.org/zap"

	"github.com/wikimasters/wikimasters/internal/repository"
)

// ContactSource resolves an article's author contact details
type ContactSource interface {
	GetAuthorContact(ctx context.Context, articleID string) (*repository.AuthorContact, error)
}

// EmailSender makes a single email delivery attempt
type EmailSender interface {
	Send(ctx context.Context, to, subject, html string) error
}

var celebrationTmpl = template.Must(template.New("celebration").Parse(`
<h1>Congrats, {{.Name}}!</h1>
<p>Your article <strong>{{.ArticleTitle}}</strong> just reached {{.Views}} views.</p>
<p>You're an amazing author!</p>
<p><a href="{{.ArticleURL}}">Read it again</a></p>
`))

// NotificationService sends milestone celebration emails. Every failure
// path logs and returns; nothing here ever propagates an error back to
// the view-counting request.
type NotificationService struct {
	contacts ContactSource
	sender   EmailSender
	baseURL  string
	// overrideTo, when set, redirects every celebration to one inbox
	// instead of the author's address (useful without a verified domain).
	overrideTo string
	logger     *zap.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	contacts ContactSource,
	sender EmailSender,
	baseURL string,
	overrideTo string,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		contacts:   contacts,
		sender:     sender,
		baseURL:    baseURL,
		overrideTo: overrideTo,
		logger:     logger,
	}
}

// SendCelebration looks up the article's author and makes exactly one
// send attempt. Missing article, author name, or address aborts with a
// log line.
func (s *NotificationService) SendCelebration(ctx context.Context, articleID string, views int64) {
	contact, err := s.contacts.GetAuthorContact(ctx, articleID)
	if err != nil {
		s.logger.Error("Celebration aborted, contact lookup failed",
			zap.String("article_id", articleID),
			zap.Error(err))
		return
	}
	if contact == nil {
		s.logger.Warn("Celebration aborted, article not found",
			zap.String("article_id", articleID))
		return
	}
	if !contact.Name.Valid || contact.Name.String == "" {
		s.logger.Warn("Celebration aborted, author name not found",
			zap.String("article_id", articleID),
			zap.String("author_id", contact.AuthorID))
		return
	}

	to := s.overrideTo
	if to == "" {
		if !contact.Email.Valid || contact.Email.String == "" {
			s.logger.Warn("Celebration aborted, author email not found",
				zap.String("article_id", articleID),
				zap.String("author_id", contact.AuthorID))
			return
		}
		to = contact.Email.String
	}

	subject := fmt.Sprintf("✨ You article got %d views! ✨", views)

	var body bytes.Buffer
	err = celebrationTmpl.Execute(&body, struct {
		Name         string
		ArticleTitle string
		Views        int64
		ArticleURL   string
	}{
		Name:         contact.Name.String,
		ArticleTitle: contact.ArticleTitle,
		Views:        views,
		ArticleURL:   fmt.Sprintf("%s/wiki/%s", s.baseURL, articleID),
	})
	if err != nil {
		s.logger.Error("Celebration aborted, template render failed", zap.Error(err))
		return
	}

	if err := s.sender.Send(ctx, to, subject, body.String()); err != nil {
		s.logger.Warn("Celebration email not delivered",
			zap.String("article_id", articleID),
			zap.String("author_id", contact.AuthorID),
			zap.Int64("views", views))
		return
	}

	s.logger.Info("Celebration email sent",
		zap.String("article_id", articleID),
		zap.String("author_id", contact.AuthorID),
		zap.Int64("views", views))
}
