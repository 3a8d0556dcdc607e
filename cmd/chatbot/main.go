// Command chatbot is a minimal demonstration of the twitchirc client: it
// joins whatever channels are passed on the command line and logs every
// chat message it receives until interrupted.
package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"twitchirc"
	"twitchirc/login"
	"twitchirc/message"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: chatbot <channel>[,<channel>...]")
	}
	channels := strings.Split(os.Args[1], ",")

	creds := login.Anonymous()
	if token := os.Getenv("TWITCH_OAUTH_TOKEN"); token != "" {
		creds = login.NewStatic(os.Getenv("TWITCH_LOGIN"), &token)
	}

	client := twitchirc.Connect(creds, twitchirc.WithTracingIdentifier("chatbot"))
	defer client.Close()

	if err := client.SetWantedChannels(channels); err != nil {
		log.Fatalf("set wanted channels: %v", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	events := client.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			handleEvent(client, ev)
		case <-sig:
			return
		}
	}
}

func handleEvent(client *twitchirc.Client, ev twitchirc.Event) {
	if ev.Kind == twitchirc.KindChannelJoinFailed {
		log.Printf("join failed for #%s: %v", ev.Channel, ev.Reason)
		return
	}

	switch m := ev.Message.(type) {
	case *message.Privmsg:
		log.Printf("#%s <%s> %s", m.ChannelLogin, m.SenderLogin, m.Text)
		if strings.EqualFold(strings.TrimSpace(m.Text), "!ping") {
			if err := client.SayInReplyToMessage(m, "pong"); err != nil {
				log.Printf("reply failed: %v", err)
			}
		}
	case *message.Notice:
		log.Printf("NOTICE #%s [%s] %s", m.ChannelLogin, m.MessageID, m.Text)
	}
}
