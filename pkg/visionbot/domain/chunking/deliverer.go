package chunking

import (
	"errors"

	"go.uber.org/zap"

	"kgeyst.com/visionbot/pkg/common"
	"kgeyst.com/visionbot/pkg/visionbot/domain"
)

// Deliverer sends text of arbitrary length through a domain.Messenger, one message per chunk.
type Deliverer struct {
	messenger      domain.Messenger
	messageLimit   int
	codeBlockLimit int
	logger         *zap.SugaredLogger
}

func NewDeliverer(messenger domain.Messenger, config *common.Config, logger *zap.SugaredLogger) *Deliverer {
	return &Deliverer{
		messenger:      messenger,
		messageLimit:   config.GetIntOrDefault(domain.ConfigKeyMessageLimit, domain.DefaultMessageLimit),
		codeBlockLimit: config.GetIntOrDefault(domain.ConfigKeyCodeBlockLimit, domain.DefaultCodeBlockLimit),
		logger:         logger,
	}
}

// Send posts `text` split into as many messages as needed. The attachment (if any) goes with the first one.
// Returns the ID of the last message sent.
func (d *Deliverer) Send(where, text string, attachment *domain.Attachment) (string, error) {
	var lastID string
	for index, chunk := range SplitText(text, d.messageLimit) {
		message := domain.OutboundMessage{Text: chunk}
		if index == 0 {
			message.Attachment = attachment
		}
		id, err := d.messenger.Send(where, message)
		if err != nil {
			return lastID, err
		}
		lastID = id
	}
	return lastID, nil
}

// Replace changes the contents of a previously sent message (usually a "processing..." placeholder). If the new
// text doesn't fit into one message, or there's an attachment, which can't be added by editing, the old message is
// deleted and the new contents are sent anew.
func (d *Deliverer) Replace(where, messageID, text string, attachment *domain.Attachment) (string, error) {
	if attachment == nil && len([]rune(text)) <= d.messageLimit {
		err := d.messenger.Edit(where, messageID, text)
		if err == nil {
			return messageID, nil
		}
		d.logger.Warnw("failed to edit a message, sending anew", "where", where, "messageID", messageID, "error", err)
	} else if err := d.messenger.Delete(where, messageID); err != nil {
		var permissionErr *domain.DeliveryPermissionError
		if !errors.As(err, &permissionErr) {
			return "", err
		}
		d.logger.Infow("not permitted to delete the placeholder", "where", where, "messageID", messageID)
	}
	return d.Send(where, text, attachment)
}

// SendCodeBlock posts `content` as one or more fenced code blocks.
func (d *Deliverer) SendCodeBlock(where, content, language string) (string, error) {
	var lastID string
	for _, block := range SplitCodeBlock(content, language, d.codeBlockLimit) {
		id, err := d.messenger.Send(where, domain.OutboundMessage{Text: block})
		if err != nil {
			return lastID, err
		}
		lastID = id
	}
	return lastID, nil
}
