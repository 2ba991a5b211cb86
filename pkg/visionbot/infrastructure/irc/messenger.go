package irc

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/whyrusleeping/hellabot"

	"kgeyst.com/visionbot/pkg/visionbot/domain"
	"kgeyst.com/visionbot/pkg/visionbot/domain/chunking"
	"kgeyst.com/visionbot/pkg/visionbot/infrastructure/filesystem"
)

// maxLineLength keeps PRIVMSG lines (together with the prefix the server adds) under the 512-byte IRC limit.
const maxLineLength = 400

var errCantDelete = errors.New("IRC doesn't support deleting messages")

// Sender the part of *hbot.Bot the messenger needs.
type Sender interface {
	Msg(who, text string)
}

var _ Sender = &hbot.Bot{}

// Messenger posts to IRC channels. IRC has no notion of message IDs, edits or files, so edits are sent as new
// messages, deletions aren't permitted, and attachments are saved to disk and posted as links.
type Messenger struct {
	sender      Sender
	attachments *filesystem.AttachmentStore
}

var _ domain.Messenger = &Messenger{}

func NewMessenger(sender Sender, attachments *filesystem.AttachmentStore) *Messenger {
	return &Messenger{
		sender:      sender,
		attachments: attachments,
	}
}

func (m *Messenger) Send(where string, message domain.OutboundMessage) (string, error) {
	text := message.Text
	if message.Attachment != nil {
		location, err := m.attachments.Save(message.Attachment)
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text + "\n" + location)
	}
	m.sendLines(where, text)
	return uuid.NewString(), nil
}

func (m *Messenger) Edit(where, messageID, text string) error {
	m.sendLines(where, text)
	return nil
}

func (m *Messenger) Delete(where, messageID string) error {
	return &domain.DeliveryPermissionError{Action: "delete messages", Err: errCantDelete}
}

// sendLines IRC messages can't contain line breaks, so every line goes as a separate message.
func (m *Messenger) sendLines(where, text string) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r ")
		if line == "" {
			continue
		}
		for _, chunk := range chunking.SplitText(line, maxLineLength) {
			m.sender.Msg(where, chunk)
		}
	}
}
