package main

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

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
	logger, err := common.NewLogger(config.GetStringOrDefault(api.ConfigKeyLogPath, "visionbot.log"), config.GetBoolOrDefault(api.ConfigKeyDebug, false))
	if err != nil {
		return err
	}
	commandPrefix := config.GetStringOrDefault(api.ConfigKeyCommandPrefix, api.DefaultCommandPrefix)
	userName := config.GetStringOrDefault("userName", "John")
	roomName := config.GetStringOrDefault("roomName", "JohnRoom")
	visionBot, err := api.NewAPI(config, api.NewConsoleMessenger(os.Stdout, config), logger)
	if err != nil {
		return err
	}
	defer visionBot.Stop()
	rl, err := readline.New("> ")
	if err != nil {
		return err
	}
	defer func() {
		_ = rl.Close()
	}()
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		message := api.IncomingMessage{Who: userName, Where: roomName, Text: line}
		if strings.HasPrefix(line, ":") {
			line = line[1:]
			if line == "clear" {
				visionBot.ClearCache()
				fmt.Println("The image cache is empty now.")
				continue
			}
			message, err = uploadMessage(message, line, commandPrefix)
			if err != nil {
				fmt.Println(err)
				continue
			}
		}
		err = visionBot.HandleMessage(context.Background(), message)
		if err != nil {
			fmt.Println(err)
		}
	}
	return nil
}

// uploadMessage emulates an upload: ":cat.png caption" attaches the local file cat.png (or a URL) and runs the command
// which follows it; the command prefix is optional.
func uploadMessage(message api.IncomingMessage, line, commandPrefix string) (api.IncomingMessage, error) {
	source, command, _ := strings.Cut(line, " ")
	source = common.RemoveDoubleQuotesIfAny(source)
	lower := strings.ToLower(source)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		absPath, err := filepath.Abs(source)
		if err != nil {
			return message, err
		}
		if _, err := os.Stat(absPath); err != nil {
			return message, err
		}
		source = absPath
	}
	filename := path.Base(strings.SplitN(source, "?", 2)[0])
	message.Text = withCommandPrefix(strings.TrimSpace(command), commandPrefix)
	message.Attachments = []api.IncomingAttachment{
		{
			Origin:      api.ImageOrigin(source),
			Filename:    filename,
			ContentType: mime.TypeByExtension(path.Ext(filename)),
		},
	}
	return message, nil
}

func withCommandPrefix(command, commandPrefix string) string {
	if command == "" || command == commandPrefix || strings.HasPrefix(command, commandPrefix+" ") {
		return command
	}
	return commandPrefix + " " + command
}
