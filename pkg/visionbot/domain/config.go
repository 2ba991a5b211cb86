package domain

// A list of built-in config keys supported by the bot's core (frontend-specific keys live next to the frontends).

const (
	// ConfigKeyAPIBaseURL the base URL of the remote vision endpoint; operations are appended as path segments
	ConfigKeyAPIBaseURL = "apiBaseURL"
	// ConfigKeyAPIKey the key sent with every inference request (falls back to the MOONDREAM_API_KEY variable)
	ConfigKeyAPIKey = "apiKey"
	// ConfigKeyAPIKeyHeader the name of the header which carries the API key
	ConfigKeyAPIKeyHeader = "apiKeyHeader"
	// ConfigKeyCommandPrefix the prefix which turns a chat message into a command, e.g. "!moondream caption"
	ConfigKeyCommandPrefix = "commandPrefix"
	// ConfigKeyImageCacheSize how many encoded images are kept in memory before the least recently used one is evicted
	ConfigKeyImageCacheSize = "imageCacheSize"
	// ConfigKeyJPEGQuality the quality of the JPEG sent to the inference endpoint
	ConfigKeyJPEGQuality = "jpegQuality"
	// ConfigKeyInferenceAttempts the total number of attempts per inference request
	ConfigKeyInferenceAttempts = "inferenceAttempts"
	// ConfigKeyInferenceRetryDelay the delay between inference attempts, in milliseconds (0 retries immediately)
	ConfigKeyInferenceRetryDelay = "inferenceRetryDelay"
	// ConfigKeyInferenceTimeout caps a whole inference call including retries, in milliseconds (0 means no timeout)
	ConfigKeyInferenceTimeout = "inferenceTimeout"
	// ConfigKeyInferenceRatePerMinute limits how many requests per minute are sent to the endpoint (0 means no limit)
	ConfigKeyInferenceRatePerMinute = "inferenceRatePerMinute"
	// ConfigKeyMessageLimit the maximum size of a plain-text message accepted by the chat transport
	ConfigKeyMessageLimit = "messageLimit"
	// ConfigKeyCodeBlockLimit the maximum size of a message which contains a fenced code block
	ConfigKeyCodeBlockLimit = "codeBlockLimit"
	// ConfigKeyShowRawResponse whether the raw JSON returned by the endpoint is posted after the summary
	ConfigKeyShowRawResponse = "showRawResponse"
	// ConfigKeyAnnounceImageTitles whether a short generated title is posted when a new image arrives
	ConfigKeyAnnounceImageTitles = "announceImageTitles"
	// ConfigKeyDeleteSourceMessages whether the user's command message is deleted once it's been processed
	ConfigKeyDeleteSourceMessages = "deleteSourceMessages"
	// ConfigKeyResolvePageImages whether links to HTML pages are resolved to the page's preview image
	ConfigKeyResolvePageImages = "resolvePageImages"
	// ConfigKeyMaxImageBytes the maximum size of a downloaded image
	ConfigKeyMaxImageBytes = "maxImageBytes"
	// ConfigKeyMaxImagePixels images with more pixels (width*height) are rejected before decoding
	ConfigKeyMaxImagePixels = "maxImagePixels"
	// ConfigKeyConversationStore where the last image of every conversation is remembered: "inmemory" or "redis"
	ConfigKeyConversationStore = "conversationStore"
	// ConfigKeyRedisAddr host:port of the Redis server (only for the "redis" conversation store)
	ConfigKeyRedisAddr = "redisAddr"
	// ConfigKeyConversationTTL how long a remembered image stays valid, in milliseconds (0 means forever)
	ConfigKeyConversationTTL = "conversationTTL"
	// ConfigKeyTempDirectory where annotated images are written for transports which can't upload files
	ConfigKeyTempDirectory = "tempDirectory"
	// ConfigKeyAttachmentBaseURL if set, attachments are announced as this URL + file name instead of a local path
	ConfigKeyAttachmentBaseURL = "attachmentBaseURL"
	// ConfigKeyLogPath file path where to save the logs
	ConfigKeyLogPath = "logPath"
	// ConfigKeyDebug switches logging to the human-readable development format
	ConfigKeyDebug = "debug"
	// ConfigKeyMetricsAddr the address to serve Prometheus metrics on (empty disables the endpoint)
	ConfigKeyMetricsAddr = "metricsAddr"
)

const (
	DefaultAPIBaseURL     = "https://api.moondream.ai/v1"
	DefaultAPIKeyHeader   = "X-Moondream-Auth"
	DefaultCommandPrefix  = "!moondream"
	DefaultImageCacheSize = 200
	DefaultJPEGQuality    = 90
	DefaultAttempts       = 3
	// DefaultMessageLimit is kept slightly under the usual 2000 character limit of chat platforms.
	DefaultMessageLimit   = 1900
	DefaultCodeBlockLimit = 1800
	DefaultMaxImageBytes  = 20 << 20
	DefaultMaxImagePixels = 50_000_000
)
