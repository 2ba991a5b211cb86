// Package router turns chat messages into commands for the vision service: it parses the command prefix, tracks the
// last image of every conversation and reports every outcome back to the conversation as text.
package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"kgeyst.com/visionbot/pkg/common"
	"kgeyst.com/visionbot/pkg/visionbot/domain"
	"kgeyst.com/visionbot/pkg/visionbot/domain/chunking"
	"kgeyst.com/visionbot/pkg/visionbot/domain/vision"
)

const (
	commandHelp   = "help"
	commandStats  = "stats"
	commandForget = "forget"
)

type imageSearch int

const (
	noImage imageSearch = iota
	imageFound
	// attachments are present but none of them is an image
	notAnImage
)

type Router struct {
	vision         *vision.Service
	conversations  domain.ConversationStore
	messenger      domain.Messenger
	deliverer      *chunking.Deliverer
	urlFinder      domain.URLFinder
	urlResolver    domain.ImageURLResolver
	prefix         string
	showRaw        bool
	announceTitles bool
	deleteSource   bool
	resolvePages   bool
	logger         *zap.SugaredLogger
	now            func() time.Time
}

func NewRouter(
	visionService *vision.Service,
	conversations domain.ConversationStore,
	messenger domain.Messenger,
	urlFinder domain.URLFinder,
	urlResolver domain.ImageURLResolver,
	config *common.Config,
	logger *zap.SugaredLogger,
) *Router {
	return &Router{
		vision:         visionService,
		conversations:  conversations,
		messenger:      messenger,
		deliverer:      chunking.NewDeliverer(messenger, config, logger),
		urlFinder:      urlFinder,
		urlResolver:    urlResolver,
		prefix:         config.GetStringOrDefault(domain.ConfigKeyCommandPrefix, domain.DefaultCommandPrefix),
		showRaw:        config.GetBoolOrDefault(domain.ConfigKeyShowRawResponse, false),
		announceTitles: config.GetBoolOrDefault(domain.ConfigKeyAnnounceImageTitles, false),
		deleteSource:   config.GetBoolOrDefault(domain.ConfigKeyDeleteSourceMessages, false),
		resolvePages:   config.GetBoolOrDefault(domain.ConfigKeyResolvePageImages, false) && urlResolver != nil,
		logger:         logger,
		now:            time.Now,
	}
}

// HandleMessage processes a single chat message. User-facing problems (no image, invalid commands, inference failures)
// are reported to the conversation; the returned error is only about failing to deliver messages or to access the
// conversation store.
func (r *Router) HandleMessage(ctx context.Context, message domain.IncomingMessage) error {
	arguments, isCommand := r.parseCommand(message.Text)
	ref, search := r.findImage(ctx, message, isCommand)
	if search == notAnImage {
		if !isCommand {
			return nil
		}
		return r.send(message.Where, notAnImageMessage)
	}
	if !isCommand {
		if search == imageFound {
			return r.receiveImage(ctx, message.Where, ref)
		}
		return nil
	}
	err := r.handleCommand(ctx, message, arguments, ref)
	if err != nil {
		return err
	}
	if r.deleteSource && message.ID != "" {
		return r.deleteSourceMessage(message)
	}
	return nil
}

func (r *Router) handleCommand(ctx context.Context, message domain.IncomingMessage, arguments string, ref *domain.ImageRef) error {
	name, parameter, _ := strings.Cut(arguments, " ")
	name = strings.ToLower(name)
	parameter = cleanParameter(parameter)
	switch name {
	case "":
		if ref == nil {
			return r.send(message.Where, helpMessage(r.prefix))
		}
		if err := r.send(message.Where, helpMessage(r.prefix)); err != nil {
			return err
		}
		return r.receiveImage(ctx, message.Where, ref)
	case commandHelp:
		return r.send(message.Where, helpMessage(r.prefix))
	case commandStats:
		return r.send(message.Where, statsMessage(r.vision.CacheStats()))
	case commandForget:
		if err := r.conversations.Forget(ctx, message.Where); err != nil {
			return err
		}
		return r.send(message.Where, forgotImageMessage)
	}
	operation, ok := domain.ParseOperation(name)
	if !ok {
		if ref == nil {
			return r.send(message.Where, helpMessage(r.prefix))
		}
		return r.receiveImage(ctx, message.Where, ref)
	}
	if ref != nil {
		if err := r.remember(ctx, message.Where, ref); err != nil {
			return err
		}
	}
	command, err := domain.NewCommand(operation, parameter)
	if err != nil {
		return r.send(message.Where, userMessageFor(err))
	}
	if ref == nil {
		ref, err = r.recall(ctx, message.Where)
		if err != nil {
			return err
		}
		if ref == nil {
			return r.send(message.Where, uploadImageMessage)
		}
	}
	return r.analyze(ctx, message.Where, command, *ref)
}

// receiveImage primes the cache with a new image and invites the user to ask something about it.
func (r *Router) receiveImage(ctx context.Context, where string, ref *domain.ImageRef) error {
	if err := r.remember(ctx, where, ref); err != nil {
		return err
	}
	placeholderID, err := r.deliverer.Send(where, processingMessage, nil)
	if err != nil {
		return err
	}
	prepared, err := r.vision.Prepare(ctx, *ref)
	if err != nil {
		r.logger.Warnw("failed to prepare an image", "where", where, "origin", ref.Origin, "error", err)
		_, err = r.deliverer.Replace(where, placeholderID, userMessageFor(err), nil)
		return err
	}
	title := ""
	if r.announceTitles {
		title = r.vision.ImageTitle(ctx, prepared)
	}
	_, err = r.deliverer.Replace(where, placeholderID, imageReceived(title), nil)
	return err
}

func (r *Router) analyze(ctx context.Context, where string, command domain.Command, ref domain.ImageRef) error {
	placeholderID, err := r.deliverer.Send(where, processingMessage, nil)
	if err != nil {
		return err
	}
	response, err := r.vision.Analyze(ctx, command, ref)
	if err != nil {
		r.logger.Warnw("failed to analyze an image",
			"where", where,
			"operation", command.Operation,
			"origin", ref.Origin,
			"error", err,
		)
		_, err = r.deliverer.Replace(where, placeholderID, userMessageFor(err), nil)
		return err
	}
	if _, err := r.deliverer.Replace(where, placeholderID, response.Summary, response.Annotated); err != nil {
		return err
	}
	if r.showRaw && len(response.Raw) > 0 {
		if err := r.send(where, rawResponseHeader); err != nil {
			return err
		}
		_, err = r.deliverer.SendCodeBlock(where, prettyJSON(response.Raw), "json")
		return err
	}
	return nil
}

func (r *Router) deleteSourceMessage(message domain.IncomingMessage) error {
	err := r.messenger.Delete(message.Where, message.ID)
	if err == nil {
		return nil
	}
	var permissionErr *domain.DeliveryPermissionError
	if errors.As(err, &permissionErr) {
		return r.send(message.Where, deletePermissionMessage)
	}
	r.logger.Warnw("failed to delete the source message", "where", message.Where, "messageID", message.ID, "error", err)
	return nil
}

// parseCommand returns everything after the command prefix, if the message is a command.
func (r *Router) parseCommand(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == r.prefix {
		return "", true
	}
	arguments, ok := strings.CutPrefix(text, r.prefix+" ")
	if !ok {
		return "", false
	}
	return strings.TrimSpace(arguments), true
}

// findImage looks for an image in the attachments first, then among the links in the text. Links to web pages are only
// resolved for commands, so that ordinary chatter with links doesn't make the bot download pages.
func (r *Router) findImage(ctx context.Context, message domain.IncomingMessage, isCommand bool) (*domain.ImageRef, imageSearch) {
	if len(message.Attachments) > 0 {
		for _, attachment := range message.Attachments {
			if isImageAttachment(attachment) {
				return &domain.ImageRef{Origin: attachment.Origin, Filename: attachment.Filename, Data: attachment.Data}, imageFound
			}
		}
		return nil, notAnImage
	}
	if r.urlFinder == nil {
		return nil, noImage
	}
	urls := r.urlFinder.FindURLs(message.Text)
	for _, url := range urls {
		if common.IsImageFormat(url) {
			return refFromURL(url), imageFound
		}
	}
	if !isCommand || !r.resolvePages {
		return nil, noImage
	}
	for _, url := range urls {
		imageURL, err := r.urlResolver.ResolveImageURL(ctx, url)
		if err != nil {
			r.logger.Debugw("no image behind the link", "url", url, "error", err)
			continue
		}
		return refFromURL(imageURL), imageFound
	}
	return nil, noImage
}

func (r *Router) remember(ctx context.Context, where string, ref *domain.ImageRef) error {
	return r.conversations.Remember(ctx, where, domain.ImageRecord{
		Origin:      ref.Origin,
		Filename:    ref.Filename,
		SubmittedAt: r.now(),
	})
}

func (r *Router) recall(ctx context.Context, where string) (*domain.ImageRef, error) {
	record, err := r.conversations.Recall(ctx, where)
	if err != nil || record == nil {
		return nil, err
	}
	return &domain.ImageRef{Origin: record.Origin, Filename: record.Filename}, nil
}

func (r *Router) send(where, text string) error {
	_, err := r.deliverer.Send(where, text, nil)
	return err
}

func isImageAttachment(attachment domain.IncomingAttachment) bool {
	if attachment.ContentType != "" {
		return common.IsImageContentType(attachment.ContentType)
	}
	return common.IsImageFormat(attachment.Filename) || common.IsImageFormat(string(attachment.Origin))
}

func refFromURL(url string) *domain.ImageRef {
	filename := path.Base(strings.SplitN(url, "?", 2)[0])
	return &domain.ImageRef{Origin: domain.ImageOrigin(url), Filename: filename}
}

// cleanParameter users often quote multi-word objects: `!moondream detect "red car"`.
func cleanParameter(parameter string) string {
	parameter = strings.TrimSpace(parameter)
	parameter = common.RemoveDoubleQuotesIfAny(parameter)
	parameter = common.RemoveSingleQuotesIfAny(parameter)
	return strings.TrimSpace(parameter)
}

func userMessageFor(err error) string {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}
	if errors.Is(err, domain.ErrNoImage) {
		return uploadImageMessage
	}
	var decodeErr *domain.DecodeError
	if errors.As(err, &decodeErr) {
		return "Error: the image could not be read (" + decodeErr.Err.Error() + ")"
	}
	return "Error: " + err.Error()
}

func prettyJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
