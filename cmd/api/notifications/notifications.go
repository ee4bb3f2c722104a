package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/library-tracker/cmd/api/book"
	"github.com/rs/zerolog"
)

const (
	TopicBookCreated  = "New_book_created"
	TopicBookFinished = "Book_finished"
)

type Ntfy struct {
	baseURL string
	enabled bool
	client  *http.Client
	log     zerolog.Logger
}

func NewNtfy(enableNotifications bool, notificationsBaseURL string, client *http.Client, logger zerolog.Logger) *Ntfy {
	return &Ntfy{
		baseURL: strings.TrimRight(notificationsBaseURL, "/"),
		enabled: enableNotifications,
		client:  client,
		log:     logger.With().Str("component", "notifications").Logger(),
	}
}

func (ntf *Ntfy) BookCreated(ctx context.Context, b book.Book) error {
	return ntf.publish(ctx, TopicBookCreated, fmt.Sprintf("New book created:\nTitle: %s\nAuthor: %s", b.Title, b.Author))
}

func (ntf *Ntfy) BookFinished(ctx context.Context, b book.Book) error {
	msg := fmt.Sprintf("Book finished:\nTitle: %s\nAuthor: %s", b.Title, b.Author)
	if b.Pages != nil {
		msg += fmt.Sprintf("\nPages: %d", *b.Pages)
	}
	return ntf.publish(ctx, TopicBookFinished, msg)
}

/* Posts msg to the topic. Nothing is sent when notifications are disabled. */
func (ntf *Ntfy) publish(ctx context.Context, topic, msg string) error {
	if !ntf.enabled {
		return nil
	}

	topicURL := ntf.baseURL + "/" + topic
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, topicURL, strings.NewReader(msg))
	if err != nil {
		return fmt.Errorf("building message to topic (%s): %w", topicURL, err)
	}

	resp, err := ntf.client.Do(req)
	if err != nil {
		return fmt.Errorf("delivering message to topic (%s): %w", topicURL, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("delivering message to topic (%s): unexpected status %d", topicURL, resp.StatusCode)
	}

	ntf.log.Debug().Str("topic", topic).Msg("notification delivered")
	return nil
}
