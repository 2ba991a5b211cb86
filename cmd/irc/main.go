package main

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/whyrusleeping/hellabot"
	"go.uber.org/zap"

	"kgeyst.com/visionbot/pkg/common"
	"kgeyst.com/visionbot/pkg/visionbot/api"
)

func main() {
	err := mainImpl()
	if err != nil {
		panic(err)
	}
}

func mainImpl() error {
	config, err := common.LoadConfig("config.yaml")
	if err != nil {
		return err
	}
	logger, err := common.NewLogger(config.GetString(api.ConfigKeyLogPath), config.GetBoolOrDefault(api.ConfigKeyDebug, false))
	if err != nil {
		return err
	}
	agentName := config.GetStringOrDefault("agentName", "Moondream")
	roomName := config.GetStringOrDefault("roomName", "JohnRoom")
	serverName := config.GetStringOrDefault("serverName", "irc.euirc.net:6667")
	ircBot, err := hbot.NewBot(serverName, agentName)
	if err != nil {
		return err
	}
	visionBot, err := api.NewAPI(config, api.NewIRCMessenger(ircBot, config), logger)
	if err != nil {
		return err
	}
	defer visionBot.Stop()
	jobQueue := common.NewJobQueue(logger)
	defer jobQueue.Stop()
	serveMetrics(config.GetString(api.ConfigKeyMetricsAddr), logger)
	var trigger = hbot.Trigger{
		Condition: func(b *hbot.Bot, m *hbot.Message) bool {
			return m.Command == "PRIVMSG"
		},
		Action: func(b *hbot.Bot, m *hbot.Message) bool {
			content := strings.TrimSpace(m.Content)
			if content == "" {
				return false
			}
			// Replies to private messages go back to the sender.
			where := m.From
			if strings.HasPrefix(m.To, "#") {
				where = m.To
			}
			message := api.IncomingMessage{
				Who:   m.From,
				Where: where,
				Text:  content,
			}
			jobQueue.Enqueue(func() error {
				return visionBot.HandleMessage(context.Background(), message)
			})
			return false
		},
	}
	ircBot.AddTrigger(trigger)
	ircBot.Channels = []string{"#" + roomName}
	logger.Infow("connecting", "server", serverName, "room", roomName, "nick", agentName)
	ircBot.Run()
	return nil
}

func serveMetrics(addr string, logger *zap.SugaredLogger) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		err := http.ListenAndServe(addr, mux)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorw("metrics endpoint stopped", "addr", addr, "error", err)
		}
	}()
}
