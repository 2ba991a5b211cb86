package console

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"kgeyst.com/visionbot/pkg/visionbot/domain"
	"kgeyst.com/visionbot/pkg/visionbot/infrastructure/filesystem"
)

// Messenger prints messages to the terminal. Attachments are saved to the temp directory and their paths are printed
// instead.
type Messenger struct {
	mutex       sync.Mutex
	out         io.Writer
	attachments *filesystem.AttachmentStore
	lastID      int
}

var _ domain.Messenger = &Messenger{}

func NewMessenger(out io.Writer, attachments *filesystem.AttachmentStore) *Messenger {
	return &Messenger{
		out:         out,
		attachments: attachments,
	}
}

func (m *Messenger) Send(where string, message domain.OutboundMessage) (string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if _, err := fmt.Fprintln(m.out, message.Text); err != nil {
		return "", err
	}
	if message.Attachment != nil {
		location, err := m.attachments.Save(message.Attachment)
		if err != nil {
			return "", err
		}
		if _, err := fmt.Fprintf(m.out, "[attachment: %s]\n", location); err != nil {
			return "", err
		}
	}
	m.lastID++
	return strconv.Itoa(m.lastID), nil
}

// Edit a terminal can't change what's already printed, so the new text is printed below.
func (m *Messenger) Edit(where, messageID, text string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	_, err := fmt.Fprintln(m.out, text)
	return err
}

func (m *Messenger) Delete(where, messageID string) error {
	return nil
}
