package domain

// Attachment a file attached to an outbound message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type OutboundMessage struct {
	Text       string
	Attachment *Attachment
}

// Messenger delivers messages to a conversation. Implemented by chat frontends.
type Messenger interface {
	// Send posts a message and returns its ID.
	Send(where string, message OutboundMessage) (string, error)
	// Edit replaces the text of a previously sent message.
	Edit(where, messageID, text string) error
	// Delete removes a message. Returns *DeliveryPermissionError if the bot isn't allowed to.
	Delete(where, messageID string) error
}

// IncomingAttachment a file attached to a chat message.
type IncomingAttachment struct {
	// Origin where the file can be downloaded from; used as the cache key.
	Origin      ImageOrigin
	Filename    string
	ContentType string
	// Data the file's content, if the transport has already downloaded it.
	Data []byte
}

// IncomingMessage a chat message as seen by the router.
type IncomingMessage struct {
	ID string
	// Who the author.
	Who string
	// Where the conversation (channel, thread, room etc.)
	Where       string
	Text        string
	Attachments []IncomingAttachment
}

// RenderedResponse what's delivered back to the user for a command.
type RenderedResponse struct {
	Summary string
	// Raw the endpoint's JSON body, if any.
	Raw []byte
	// Annotated a copy of the image with detections/points drawn over it, if any.
	Annotated *Attachment
}
