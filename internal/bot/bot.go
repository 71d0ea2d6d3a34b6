package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"cardeals/internal/cache"
	"cardeals/internal/database"
	"cardeals/internal/kafka"
	"cardeals/internal/scraper"
)

type Bot struct {
	kafka.IgnoreEvents

	api      *tgbotapi.BotAPI
	db       *database.DB
	cache    *cache.RedisCache
	scraper  scraper.Scraper
	producer *kafka.Producer
	log      logrus.FieldLogger

	// defaultChat receives notifications that carry no chat of their own.
	defaultChat int64
}

type Options struct {
	Cache       *cache.RedisCache
	Scraper     scraper.Scraper
	Producer    *kafka.Producer
	DefaultChat int64
}

func NewBot(token string, db *database.DB, opts Options, log logrus.FieldLogger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}

	api.Debug = false
	log = log.WithField("component", "bot")
	log.Infof("Bot is authorized as: @%s", api.Self.UserName)

	return &Bot{
		api:         api,
		db:          db,
		cache:       opts.Cache,
		scraper:     opts.Scraper,
		producer:    opts.Producer,
		log:         log,
		defaultChat: opts.DefaultChat,
	}, nil
}

// Start polls for updates until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := b.api.GetUpdatesChan(updateConfig)
	b.log.Info("Bot is started! Waiting for messages...")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.handleMessage(ctx, update.Message)
			}
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From == nil {
		return
	}
	user, err := b.db.CreateOrUpdateUser(
		message.From.ID,
		message.From.UserName,
		message.From.FirstName,
	)
	if err != nil {
		b.log.WithError(err).Error("Error saving user")
		b.sendMessage(message.Chat.ID, "Server error. Try later")
		return
	}

	b.log.Debugf("Message from: %s (@%s) - %s", user.FirstName, user.Username, message.Text)

	if !message.IsCommand() {
		b.sendMessage(message.Chat.ID, "💬 I only understand commands. Try /help 🤖")
		return
	}

	args := strings.Fields(message.CommandArguments())
	switch message.Command() {
	case "start":
		b.sendMessage(message.Chat.ID, welcomeText)
	case "help":
		b.sendMessage(message.Chat.ID, helpText)
	case "searches", "list":
		b.handleList(message.Chat.ID, user)
	case "add":
		b.handleAdd(ctx, message.Chat.ID, user, args)
	case "toggle":
		b.handleToggle(message.Chat.ID, user, args)
	case "delete":
		b.handleDelete(message.Chat.ID, user, args)
	case "find":
		b.handleFind(ctx, message.Chat.ID, user, args)
	default:
		b.sendMessage(message.Chat.ID, "❓ Unknown command: "+message.Command()+"\n\nUse /help to see what I can do.")
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		b.log.WithError(err).Warn("Error sending message")
	}
}

const welcomeText = `👋 Hi! I watch mobile.bg for new car listings.

🔍 What I do:
• Keep your saved searches
• Check them for new listings on a schedule
• Send you the new ones

/help - all commands

Let's go! 🚀`

const helpText = `📚 Commands:

/start - start talking to the bot
/help - show this help
/searches - list your saved searches
/add <brand> [model] [max price EUR] - save a search
/toggle <number> - pause or resume a search
/delete <number> - delete a search
/find <number> - run a search now`

func (b *Bot) handleList(chatID int64, user *database.User) {
	searches, err := b.db.GetUserSearches(user.ID)
	if err != nil {
		b.log.WithError(err).Error("Error loading searches")
		b.sendMessage(chatID, "❌ Could not load your searches")
		return
	}
	b.sendMessage(chatID, FormatSearches(searches))
}

func (b *Bot) handleAdd(ctx context.Context, chatID int64, user *database.User, args []string) {
	params, err := ParseAddArgs(args)
	if err != nil {
		b.sendMessage(chatID, "❌ "+err.Error()+"\n\nUsage: /add Mercedes GLC 70000")
		return
	}

	search, err := b.db.CreateSearch(&user.ID, "", params, 5)
	if err != nil {
		b.log.WithError(err).Error("Error creating search")
		b.sendMessage(chatID, "❌ Could not save the search. Try again.")
		return
	}

	if b.producer != nil {
		err := b.producer.PublishSearchCreated(ctx, kafka.SearchCreatedEvent{
			ChatID:    user.TelegramID,
			SearchID:  search.ID,
			Name:      search.Name,
			Params:    search.Params(),
			MaxPages:  search.MaxPages,
			CreatedAt: search.CreatedAt,
		})
		if err != nil {
			b.log.WithError(err).Warn("Publishing search_created failed")
		}
	}

	b.sendMessage(chatID, fmt.Sprintf("✅ Search saved: %s\n\n🟢 It is active and will be checked on the next run.", search.Name))
}

func (b *Bot) userSearch(chatID int64, user *database.User, args []string) (*database.SavedSearch, bool) {
	searches, err := b.db.GetUserSearches(user.ID)
	if err != nil {
		b.sendMessage(chatID, "❌ Could not load your searches")
		return nil, false
	}
	search, err := pick(args, searches)
	if err != nil {
		b.sendMessage(chatID, "❌ "+err.Error())
		return nil, false
	}
	return search, true
}

func (b *Bot) handleToggle(chatID int64, user *database.User, args []string) {
	search, ok := b.userSearch(chatID, user, args)
	if !ok {
		return
	}
	if err := b.db.ToggleSearch(search.ID); err != nil {
		b.sendMessage(chatID, "❌ Could not update the search")
		return
	}
	state := "paused 🔴"
	if !search.IsActive {
		state = "active 🟢"
	}
	b.sendMessage(chatID, fmt.Sprintf("%s is now %s", search.Name, state))
}

func (b *Bot) handleDelete(chatID int64, user *database.User, args []string) {
	search, ok := b.userSearch(chatID, user, args)
	if !ok {
		return
	}
	if err := b.db.DeleteSearch(search.ID); err != nil {
		b.sendMessage(chatID, "❌ Could not delete the search")
		return
	}
	b.sendMessage(chatID, fmt.Sprintf("🗑 Deleted %s", search.Name))
}

func (b *Bot) handleFind(ctx context.Context, chatID int64, user *database.User, args []string) {
	search, ok := b.userSearch(chatID, user, args)
	if !ok {
		return
	}
	params := search.Params()
	searchURL := scraper.BuildSearchURL(params)

	if b.cache != nil {
		if cached, found := b.cache.GetCachedResults(ctx, searchURL); found {
			b.sendMessage(chatID, "⚡ Cached results:")
			b.sendMessage(chatID, FormatListings(search.Name, cached))
			return
		}
		if !b.cache.CanScrape(ctx, searchURL) {
			b.sendMessage(chatID, "⏰ Wait a bit before running this search again")
			return
		}
	}
	if b.scraper == nil {
		b.sendMessage(chatID, "❌ Searching is not available right now")
		return
	}

	b.sendMessage(chatID, "🔍 Searching mobile.bg...")
	result, err := b.scraper.Crawl(ctx, params, search.MaxPages)
	if err != nil {
		b.log.WithError(err).Errorf("Error crawling search %d", search.ID)
		b.sendMessage(chatID, "❌ Search on mobile.bg failed")
		return
	}

	if b.cache != nil {
		if err := b.cache.CacheResults(ctx, searchURL, result.Records); err != nil {
			b.log.WithError(err).Warn("Caching results failed")
		}
	}
	b.sendMessage(chatID, FormatListings(search.Name, result.Records))
}

// HandleNewListings notifies the chat that owns the search, or the default
// chat and then every subscriber when no chat is known.
func (b *Bot) HandleNewListings(event kafka.NewListingsEvent) error {
	if len(event.Listings) == 0 {
		return nil
	}
	text := "🆕 " + FormatListings(event.SearchName, event.Listings)

	switch {
	case event.ChatID != 0:
		b.sendMessage(event.ChatID, text)
	case b.defaultChat != 0:
		b.sendMessage(b.defaultChat, text)
	default:
		users, err := b.db.GetSubscribers()
		if err != nil {
			return fmt.Errorf("load subscribers: %w", err)
		}
		for _, u := range users {
			b.sendMessage(u.TelegramID, text)
		}
	}

	b.log.Infof("Notified about %d new listings for search %d", len(event.Listings), event.SearchID)
	return nil
}
