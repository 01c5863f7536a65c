// Viewer is a read-only terminal inspector for the store: conversation
// lists, message history, notification feeds and user presence, rendered
// as tables. It opens the database with the lock guard bypassed so it can
// run next to a live relay process.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"connectrix/aggregator"
	"connectrix/domain"
	"connectrix/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

type Config struct {
	BadgerFilepath string `envconfig:"BADGER_FILEPATH" required:"true"`
	// VIEWER_COLOURS enables colorized output for better readability
	Colours bool `envconfig:"VIEWER_COLOURS" default:"true"`
	Limit   int  `envconfig:"VIEWER_LIMIT" default:"20"`
}

func main() {
	_ = godotenv.Load()
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	view := flag.String("view", "chats", "What to display: chats | messages | notifications | users")
	userID := flag.String("user", "", "User id for chats / notifications views")
	chatID := flag.String("chat", "", "Conversation id for the messages view")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(cfg.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	slogger := logs.GetLoggerFromString("error")

	switch *view {
	case "chats":
		requireArg(*userID, "-user")
		renderChats(cfg, repositories.NewChatRepository(db, slogger), *userID)
	case "messages":
		requireArg(*chatID, "-chat")
		renderMessages(cfg, repositories.NewChatRepository(db, slogger), *chatID)
	case "notifications":
		requireArg(*userID, "-user")
		renderNotifications(cfg, repositories.NewNotificationRepository(db, slogger), *userID)
	case "users":
		renderUsers(cfg, db)
	default:
		log.Fatalf("Unknown view %q", *view)
	}
}

func requireArg(value, name string) {
	if value == "" {
		log.Fatalf("The %s flag is required for this view", name)
	}
}

func renderChats(cfg Config, chats repositories.IChatRepository, userID string) {
	conversations, err := chats.ListConversations(userID)
	if err != nil {
		log.Fatalf("Listing conversations failed: %v", err)
	}

	table := newTable(cfg, "ID", "Peer", "Last Message", "Read", "Updated")
	for _, conv := range conversations {
		last, sender := "-", "-"
		if conv.LastMessage != nil {
			last = truncate(conv.LastMessage.Text, 48)
			sender = shorten(conv.LastMessage.SenderID)
		}
		table.Append([]string{
			shorten(conv.ID),
			shorten(conv.OtherParticipant(userID)),
			fmt.Sprintf("%s: %s", sender, last),
			readMark(cfg, conv.ReadBy[userID]),
			conv.UpdatedAt.Format("02 Jan 15:04:05"),
		})
	}
	table.Render()
}

func renderMessages(cfg Config, chats repositories.IChatRepository, chatID string) {
	messages, err := chats.GetMessages(chatID, cfg.Limit)
	if err != nil {
		log.Fatalf("Listing messages failed: %v", err)
	}

	table := newTable(cfg, "Time", "Sender", "Body", "Kind", "Read")
	for _, msg := range messages {
		table.Append([]string{
			msg.SentAt.Format("02 Jan 15:04:05"),
			shorten(msg.SenderID),
			truncate(msg.Body, 64),
			string(msg.Kind),
			readMark(cfg, msg.Read),
		})
	}
	table.Render()
}

func renderNotifications(cfg Config, notifications repositories.INotificationRepository, userID string) {
	list, err := notifications.ListForRecipient(userID, cfg.Limit)
	if err != nil {
		log.Fatalf("Listing notifications failed: %v", err)
	}

	table := newTable(cfg, "Time", "Type", "Title", "Read", "Opens")
	for _, n := range list {
		route := aggregator.RouteFor(n)
		opens := string(route.Destination)
		if route.TargetID != "" {
			opens += " -> " + shorten(route.TargetID)
		}
		table.Append([]string{
			n.CreatedAt.Format("02 Jan 15:04:05"),
			string(n.Type),
			truncate(n.Title, 32),
			readMark(cfg, n.Read),
			opens,
		})
	}
	table.Render()
	fmt.Printf("\nUnread (badge): %d\n", repositories.UnreadCount(list))
}

// renderUsers scans the user prefix directly: the repository exposes no
// list operation because the relay never needs one.
func renderUsers(cfg Config, db *badger.DB) {
	table := newTable(cfg, "ID", "Name", "Email", "Role", "Presence", "Last Seen")
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("user:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var user domain.User
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &user)
			})
			if err != nil {
				fmt.Printf("Skipping key %s: %v\n", it.Item().Key(), err)
				continue
			}

			presence := "offline"
			if user.Online {
				presence = "online"
			}
			lastSeen := "-"
			if !user.LastSeen.IsZero() {
				lastSeen = user.LastSeen.Format("02 Jan 15:04:05")
			}
			table.Append([]string{
				shorten(user.ID), user.Name, user.Email, string(user.Role),
				presenceMark(cfg, presence), lastSeen,
			})
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Scanning users failed: %v", err)
	}
	table.Render()
}

func newTable(cfg Config, headers ...string) *tablewriter.Table {
	if cfg.Colours {
		for i, h := range headers {
			headers[i] = color.New(color.BgBlack, color.FgGreen).Render(h)
		}
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func readMark(cfg Config, read bool) string {
	if read {
		if cfg.Colours {
			return color.FgGreen.Render("read")
		}
		return "read"
	}
	if cfg.Colours {
		return color.FgRed.Render("unread")
	}
	return "unread"
}

func presenceMark(cfg Config, presence string) string {
	if !cfg.Colours {
		return presence
	}
	if presence == "online" {
		return color.FgGreen.Render(presence)
	}
	return color.FgGray.Render(presence)
}

func truncate(text string, max int) string {
	text = strings.ReplaceAll(text, "\n", " ")
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max-3]) + "..."
}

func shorten(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
