// Package webhook provides the Telegram update intake bounded context:
// the webhook endpoint, its secret-token middleware and the glue between
// transport and the conversation state machine.
package webhook

import (
	"context"
	"net/http"
	"strings"

	"scanrate_backend/internal/conversation"
	"scanrate_backend/internal/telegram"
	"scanrate_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// Dialogue is the conversation surface driven by inbound updates.
type Dialogue interface {
	HandleStart(ctx context.Context, userID int64) []conversation.Reply
	HandleCancel(ctx context.Context, userID int64) []conversation.Reply
	Handle(ctx context.Context, userID int64, in conversation.Input) []conversation.Reply
}

// Messenger is the outbound Telegram surface the handler needs.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string, markup telegram.ReplyMarkup) error
	FilePath(ctx context.Context, fileID string) (string, error)
	DownloadFile(ctx context.Context, filePath string) ([]byte, error)
}

// Recognizer turns a photo into candidate text fragments.
type Recognizer interface {
	Enabled() bool
	RecognizeText(ctx context.Context, image []byte) ([]string, error)
}

// Handler handles Telegram webhook HTTP requests.
type Handler struct {
	dialogue   Dialogue
	messenger  Messenger
	recognizer Recognizer
	log        *logger.Logger
}

// NewHandler creates a new webhook handler.
func NewHandler(dialogue Dialogue, messenger Messenger, recognizer Recognizer, log *logger.Logger) *Handler {
	return &Handler{
		dialogue:   dialogue,
		messenger:  messenger,
		recognizer: recognizer,
		log:        log,
	}
}

// HandleUpdate processes one inbound Telegram update.
// POST /api/v1/telegram/updates
//
// The response is always 200: Telegram retries non-2xx deliveries, and a
// poison update would otherwise be redelivered forever. Failures are
// handled inside the dialogue and reported to the user directly.
func (h *Handler) HandleUpdate(c *gin.Context) {
	ctx := c.Request.Context()
	log := h.log.WithContext(ctx)

	var update telegram.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		log.Warn("undecodable update", "error", err)
		c.Status(http.StatusOK)
		return
	}

	msg := update.Message
	if msg == nil || msg.From == nil || msg.From.IsBot {
		c.Status(http.StatusOK)
		return
	}

	userID := msg.From.ID
	chatID := msg.Chat.ID

	replies := h.dispatch(ctx, userID, msg)
	for _, reply := range replies {
		if err := h.messenger.SendMessage(ctx, chatID, reply.Text, reply.Markup); err != nil {
			log.WithUserID(userID).Error("send reply", "error", err)
			break
		}
	}

	c.Status(http.StatusOK)
}

func (h *Handler) dispatch(ctx context.Context, userID int64, msg *telegram.Message) []conversation.Reply {
	switch strings.TrimSpace(msg.Text) {
	case "/start":
		return h.dialogue.HandleStart(ctx, userID)
	case "/cancel":
		return h.dialogue.HandleCancel(ctx, userID)
	}

	if fileID := msg.LargestPhoto(); fileID != "" {
		if !h.recognizer.Enabled() {
			return h.dialogue.Handle(ctx, userID, conversation.Input{
				Kind: conversation.InputPhotoUnsupported,
			})
		}
		return h.dialogue.Handle(ctx, userID, conversation.Input{
			Kind:      conversation.InputFragments,
			Fragments: h.recognize(ctx, userID, fileID),
		})
	}

	return h.dialogue.Handle(ctx, userID, conversation.Input{
		Kind: conversation.InputText,
		Text: msg.Text,
	})
}

// recognize downloads the photo and runs text recognition. Every failure
// collapses to "no fragments", which the dialogue answers with a retry
// prompt; the user cannot tell a download error from an unreadable photo
// and does not need to.
func (h *Handler) recognize(ctx context.Context, userID int64, fileID string) []string {
	path, err := h.messenger.FilePath(ctx, fileID)
	if err != nil {
		h.log.WithUserID(userID).Error("resolve photo path", "error", err)
		return nil
	}
	image, err := h.messenger.DownloadFile(ctx, path)
	if err != nil {
		h.log.WithUserID(userID).Error("download photo", "error", err)
		return nil
	}
	fragments, err := h.recognizer.RecognizeText(ctx, image)
	if err != nil {
		h.log.WithUserID(userID).Error("recognize photo", "error", err)
		return nil
	}
	return fragments
}
