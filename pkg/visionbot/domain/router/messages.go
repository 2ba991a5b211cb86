package router

import (
	"fmt"
	"strings"

	"kgeyst.com/visionbot/pkg/visionbot/domain"
)

// TODO internationalize
const (
	processingMessage       = "Processing your image..."
	imageReceivedMessage    = "Image received! What would you like to know about it?"
	uploadImageMessage      = "Please upload an image along with your command."
	notAnImageMessage       = "The attachment does not appear to be an image."
	forgotImageMessage      = "Forgot the last image of this conversation."
	deletePermissionMessage = "Note: I don't have permission to delete messages. Please grant 'Manage Messages' permission for a cleaner experience."
	rawResponseHeader       = "Raw API Response:"
)

func helpMessage(prefix string) string {
	var sb strings.Builder
	sb.WriteString("Moondream Vision AI\n\n")
	sb.WriteString("I can analyze images using a vision API. Upload an image (or post a link to it) and use one of these commands:\n\n")
	sb.WriteString(fmt.Sprintf("`%s caption` - generate a description of your image (aliases: c, cap, describe)\n", prefix))
	sb.WriteString(fmt.Sprintf("`%s query [your question]` - ask any question about your image (aliases: q, ask)\n", prefix))
	sb.WriteString(fmt.Sprintf("`%s detect [object]` - detect specific objects in your image (aliases: d, find)\n", prefix))
	sb.WriteString(fmt.Sprintf("`%s point [object]` - point to specific objects in your image (alias: p)\n", prefix))
	sb.WriteString(fmt.Sprintf("`%s stats` - show image cache statistics\n", prefix))
	sb.WriteString(fmt.Sprintf("`%s forget` - forget the last image of this conversation\n\n", prefix))
	sb.WriteString("Commands without an image apply to the last image of the conversation. Upload a new image at any time to analyze it!")
	return sb.String()
}

func statsMessage(stats domain.CacheStats) string {
	return fmt.Sprintf(
		"Image cache: %d/%d images, %d hits, %d misses, hit ratio %.1f%%",
		stats.Size, stats.MaxSize, stats.Hits, stats.Misses, stats.HitRatio*100,
	)
}

func imageReceived(title string) string {
	if title == "" {
		return imageReceivedMessage
	}
	return fmt.Sprintf("\"%s\"\n%s", title, imageReceivedMessage)
}
