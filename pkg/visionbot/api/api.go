package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kgeyst.com/visionbot/pkg/common"
	"kgeyst.com/visionbot/pkg/visionbot/domain"
	"kgeyst.com/visionbot/pkg/visionbot/domain/router"
	"kgeyst.com/visionbot/pkg/visionbot/domain/vision"
	"kgeyst.com/visionbot/pkg/visionbot/infrastructure/console"
	"kgeyst.com/visionbot/pkg/visionbot/infrastructure/filesystem"
	"kgeyst.com/visionbot/pkg/visionbot/infrastructure/inmemory"
	"kgeyst.com/visionbot/pkg/visionbot/infrastructure/irc"
	"kgeyst.com/visionbot/pkg/visionbot/infrastructure/logging"
	"kgeyst.com/visionbot/pkg/visionbot/infrastructure/lrucache"
	"kgeyst.com/visionbot/pkg/visionbot/infrastructure/moondream"
	"kgeyst.com/visionbot/pkg/visionbot/infrastructure/redis"
	"kgeyst.com/visionbot/pkg/visionbot/infrastructure/web"
)

// See domain/config.go
const (
	ConfigKeyLogPath     = domain.ConfigKeyLogPath
	ConfigKeyDebug       = domain.ConfigKeyDebug
	ConfigKeyMetricsAddr = domain.ConfigKeyMetricsAddr

	ConfigKeyCommandPrefix = domain.ConfigKeyCommandPrefix
	DefaultCommandPrefix   = domain.DefaultCommandPrefix
)

const (
	conversationStoreInMemory = "inmemory"
	conversationStoreRedis    = "redis"

	// downloadTimeout caps a single HTTP request made to fetch an image or a web page.
	downloadTimeout = 30 * time.Second

	// inferenceRequestTimeout caps a single attempt; see also domain.ConfigKeyInferenceTimeout.
	inferenceRequestTimeout = 2 * time.Minute
)

type (
	IncomingMessage    = domain.IncomingMessage
	IncomingAttachment = domain.IncomingAttachment
	Messenger          = domain.Messenger
	OutboundMessage    = domain.OutboundMessage
	Attachment         = domain.Attachment
	CacheStats         = domain.CacheStats
	ImageOrigin        = domain.ImageOrigin
)

// API is the entrypoint to the bot. It shouldn't contain any logic of its own; it glues all the components together
// and provides a public interface for router.Router. It can be used with any chat transport which can implement
// Messenger: IRC, the console etc.
type API interface {
	// HandleMessage processes a message posted to a conversation (`message.Where`). Commands, images and links to
	// images are recognized; everything else is ignored. Replies go through the Messenger passed to NewAPI.
	HandleMessage(ctx context.Context, message IncomingMessage) error
	// Stats returns the statistics of the image cache.
	Stats() CacheStats
	// ClearCache empties the image cache; the statistics are kept.
	ClearCache()
	// Stop releases the resources (connections etc.) Must be called once the API isn't needed anymore.
	Stop()
}

type api struct {
	router  *router.Router
	vision  *vision.Service
	logger  *zap.SugaredLogger
	closers []func() error
}

// NewAPI wires everything together. Replies to users are sent with `messenger`.
func NewAPI(config *common.Config, messenger Messenger, logger *zap.SugaredLogger) (API, error) {
	httpClient := &http.Client{Timeout: downloadTimeout}
	inferenceClient := &http.Client{Timeout: inferenceRequestTimeout}
	cache, err := lrucache.NewImageCache(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create the image cache: %w", err)
	}
	visionModel := logging.NewVisionModelDecorator(
		moondream.NewClient(config, inferenceClient, logger),
		logger,
	)
	fetcher := NewOriginFetcher(
		web.NewImageFetcher(config, httpClient, logger),
		filesystem.NewImageReader(config),
	)
	visionService := vision.NewService(cache, visionModel, fetcher, config, logger)
	result := &api{
		vision: visionService,
		logger: logger,
	}
	conversations, err := result.newConversationStore(config)
	if err != nil {
		return nil, err
	}
	var urlResolver domain.ImageURLResolver
	if config.GetBoolOrDefault(domain.ConfigKeyResolvePageImages, false) {
		urlResolver = web.NewImageURLResolver(httpClient)
	}
	result.router = router.NewRouter(
		visionService,
		conversations,
		messenger,
		web.NewURLFinder(),
		urlResolver,
		config,
		logger,
	)
	return result, nil
}

func (a *api) newConversationStore(config *common.Config) (domain.ConversationStore, error) {
	kind := config.GetStringOrDefault(domain.ConfigKeyConversationStore, conversationStoreInMemory)
	switch kind {
	case conversationStoreInMemory:
		return inmemory.NewConversationStore(config), nil
	case conversationStoreRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client, err := redis.NewClient(ctx, config)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return redis.NewConversationStore(client, config), nil
	default:
		return nil, fmt.Errorf("unknown conversation store %q (expected %q or %q)", kind, conversationStoreInMemory, conversationStoreRedis)
	}
}

func (a *api) HandleMessage(ctx context.Context, message IncomingMessage) error {
	requestID := uuid.NewString()
	logger := a.logger.With("requestID", requestID, "where", message.Where, "who", message.Who)
	logger.Debugw("message received", "text", message.Text, "attachments", len(message.Attachments))
	start := time.Now()
	err := a.router.HandleMessage(ctx, message)
	if err != nil {
		logger.Errorw("failed to handle a message", "error", err)
		return err
	}
	logger.Debugw("message handled", "tookMs", time.Since(start).Milliseconds())
	return nil
}

func (a *api) Stats() CacheStats {
	return a.vision.CacheStats()
}

func (a *api) ClearCache() {
	a.vision.ClearCache()
}

func (a *api) Stop() {
	for _, closer := range a.closers {
		if err := closer(); err != nil {
			a.logger.Warnw("failed to release a resource", "error", err)
		}
	}
	a.closers = nil
	_ = a.logger.Sync()
}

// NewOriginFetcher fetches http(s) origins from the web and everything else from the local file system.
func NewOriginFetcher(webFetcher, fileFetcher domain.ImageFetcher) domain.ImageFetcher {
	return domain.ImageFetcherFunc(func(ctx context.Context, origin domain.ImageOrigin) ([]byte, error) {
		lower := strings.ToLower(string(origin))
		if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
			return webFetcher.Fetch(ctx, origin)
		}
		if !filepath.IsAbs(string(origin)) {
			return nil, fmt.Errorf("unsupported image origin %q", origin)
		}
		return fileFetcher.Fetch(ctx, origin)
	})
}

// NewIRCMessenger sends replies with `sender` (normally a *hbot.Bot). IRC can't carry files, so annotated images are
// saved to the temp directory and announced as links.
func NewIRCMessenger(sender irc.Sender, config *common.Config) Messenger {
	return irc.NewMessenger(sender, newAttachmentStore(config))
}

// NewConsoleMessenger prints replies to `out`.
func NewConsoleMessenger(out io.Writer, config *common.Config) Messenger {
	return console.NewMessenger(out, newAttachmentStore(config))
}

func newAttachmentStore(config *common.Config) *filesystem.AttachmentStore {
	return filesystem.NewAttachmentStore(filesystem.NewTempFilePathProvider(config), config)
}
