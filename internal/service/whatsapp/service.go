package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/quociou/pibao/internal/config"
	"github.com/quociou/pibao/internal/domain/models"
	"github.com/quociou/pibao/internal/service/commands"
	"github.com/quociou/pibao/internal/service/journal"
	client "github.com/quociou/pibao/pkg/clients/whatsapp"
)

const (
	sendTimeout = 10 * time.Second
	seenLimit   = 512
)

// MessagingService describes the operations the HTTP layer and scheduler can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// MetaWhatsAppService turns chat messages into journal commands and replies
// through the WhatsApp Cloud API.
type MetaWhatsAppService struct {
	cfg        config.WhatsAppConfig
	client     client.Client
	dispatcher commands.Dispatcher
	logger     *zap.Logger

	mu       sync.Mutex
	seen     map[string]struct{}
	seenList []string
}

// NewMetaWhatsAppService wires a new service instance.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, c client.Client, dispatcher commands.Dispatcher, logger *zap.Logger) *MetaWhatsAppService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetaWhatsAppService{
		cfg:        cfg,
		client:     c,
		dispatcher: dispatcher,
		logger:     logger,
		seen:       make(map[string]struct{}),
	}
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}
	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}
	if verifyToken != s.cfg.VerifyToken {
		return "", errors.New("invalid verify token")
	}
	return challenge, nil
}

// HandleWebhook processes every inbound message of payload and returns the first failure.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	var firstErr error

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if err := s.handleInboundMessage(ctx, msg); err != nil {
					s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
					if firstErr == nil {
						firstErr = err
					}
				}
			}
		}
	}

	return firstErr
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	if s.cfg.OwnerID != "" && msg.From != s.cfg.OwnerID {
		s.logger.Warn("ignoring message from unknown sender", zap.String("from", msg.From))
		return nil
	}
	if msg.ID != "" && !s.markSeen(msg.ID) {
		s.logger.Debug("duplicate delivery ignored", zap.String("message_id", msg.ID))
		return nil
	}

	text := strings.TrimSpace(msg.Body())
	if text == "" {
		s.logger.Debug("skipping message without text", zap.String("type", msg.Type))
		return nil
	}

	cmd := models.ParseCommand(text)
	s.logger.Info("parsed inbound command",
		zap.String("from", msg.From),
		zap.String("command", string(cmd.Type)),
		zap.Strings("args", cmd.Args))

	reply, cmdErr := s.dispatcher.HandleCommand(ctx, cmd, msg.From)
	if cmdErr != nil {
		reply = replyForError(cmdErr)
	}

	if err := s.send(ctx, msg.From, reply, false); err != nil {
		return err
	}
	if cmdErr != nil && !isUserError(cmdErr) {
		return cmdErr
	}
	return nil
}

// SendOutbound pushes a notification to req.To.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	return s.send(ctx, req.To, req.Message, req.PreviewURL)
}

func (s *MetaWhatsAppService) send(ctx context.Context, to, body string, preview bool) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	resp, err := s.client.SendTextMessage(ctx, client.SendTextMessageRequest{To: to, Body: body, PreviewURL: preview})
	if err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	s.logger.Debug("message sent", zap.String("to", to), zap.String("message_id", resp.MessageID()))
	return nil
}

// markSeen records id and reports whether it was new.
func (s *MetaWhatsAppService) markSeen(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[id]; ok {
		return false
	}
	s.seen[id] = struct{}{}
	s.seenList = append(s.seenList, id)
	if len(s.seenList) > seenLimit {
		delete(s.seen, s.seenList[0])
		s.seenList = s.seenList[1:]
	}
	return true
}

func isUserError(err error) bool {
	return errors.Is(err, commands.ErrInvalidArguments) ||
		errors.Is(err, commands.ErrUnsupportedCommand) ||
		errors.Is(err, commands.ErrUnknownFood) ||
		errors.Is(err, commands.ErrNoPendingBowl) ||
		errors.Is(err, journal.ErrInvalidRecord) ||
		errors.Is(err, journal.ErrInvalidDate)
}

func replyForError(err error) string {
	switch {
	case errors.Is(err, commands.ErrUnsupportedCommand):
		return "Unknown command.\n" + commands.HelpText
	case errors.Is(err, commands.ErrInvalidArguments):
		return "Could not read that command.\n" + commands.HelpText
	case errors.Is(err, commands.ErrUnknownFood):
		return fmt.Sprintf("%v. Check the food list in the app.", err)
	case errors.Is(err, commands.ErrNoPendingBowl):
		return "No bowl is waiting for a leftover today. Log one with /bowl first."
	case errors.Is(err, journal.ErrInvalidRecord):
		return fmt.Sprintf("Not saved: %v", err)
	}
	return "Something went wrong while saving. Please try again later."
}
