// Package bot runs the Telegram front end: commands, free-text questions
// routed to retrieval, and document uploads that land in the knowledge base.
package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"kbbot/internal/extract"
	"kbbot/internal/logger"
	"kbbot/internal/rag"
	"kbbot/internal/sanitize"
)

// Telegram caps bot downloads at 20 MB.
const maxDocumentSize = 20 << 20

// Bot is the long-polling Telegram front end.
type Bot struct {
	api     *tgbotapi.BotAPI
	rag     *rag.Service
	docsDir string
	client  *http.Client
}

// New connects to the Telegram API. docsDir is where uploaded documents are
// persisted so reindexing runs pick them up.
func New(token string, svc *rag.Service, docsDir string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return &Bot{
		api:     api,
		rag:     svc,
		docsDir: docsDir,
		client:  &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// Run polls for updates until ctx is cancelled. Handler failures are reported
// to the chat and logged; they never stop the loop.
func (b *Bot) Run(ctx context.Context) error {
	logger.Info("BOT", fmt.Sprintf("Authorized as @%s", b.api.Self.UserName))

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	var err error
	switch {
	case msg.IsCommand():
		err = b.handleCommand(ctx, msg)
	case msg.Document != nil:
		err = b.handleDocument(ctx, msg)
	case strings.TrimSpace(msg.Text) != "":
		err = b.handleQuestion(ctx, msg)
	default:
		return
	}
	if err != nil {
		logger.Error("BOT", fmt.Sprintf("chat %d: %v", msg.Chat.ID, err))
		b.reply(msg, errorText)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		b.reply(msg, startText)
	case "help":
		b.reply(msg, helpText)
	case "status":
		docs, chunks := b.rag.Counts()
		b.reply(msg, statusText(docs, chunks))
	case "add":
		b.reply(msg, addText)
	default:
		b.reply(msg, unknownCommandText)
	}
	return nil
}

func (b *Bot) handleQuestion(ctx context.Context, msg *tgbotapi.Message) error {
	answer, err := b.rag.Ask(ctx, msg.Text)
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}
	b.reply(msg, answerText(answer))
	return nil
}

func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) error {
	doc := msg.Document
	if !acceptsDocument(doc.FileName) {
		b.reply(msg, unsupportedFileText)
		return nil
	}
	if doc.FileSize > maxDocumentSize {
		b.reply(msg, tooLargeText)
		return nil
	}

	b.reply(msg, receivedText(doc.FileName))

	raw, err := b.download(ctx, doc.FileID)
	if err != nil {
		return fmt.Errorf("download %s: %w", doc.FileName, err)
	}

	source, text, err := b.prepare(doc.FileName, raw)
	if err != nil {
		return fmt.Errorf("prepare %s: %w", doc.FileName, err)
	}
	if strings.TrimSpace(text) == "" {
		b.reply(msg, emptyDocumentText)
		return nil
	}

	if err := os.MkdirAll(b.docsDir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(b.docsDir, source), []byte(text), 0o644); err != nil {
		return fmt.Errorf("save %s: %w", source, err)
	}

	n, err := b.rag.IndexText(ctx, source, text)
	if err != nil {
		return fmt.Errorf("index %s: %w", source, err)
	}
	logger.Success("BOT", fmt.Sprintf("Indexed %s: %d chunks", source, n))
	b.reply(msg, indexedText(source, n))
	return nil
}

// prepare turns an uploaded file into cleaned Markdown and its storage name.
// PDFs go through text extraction first; everything else is treated as
// Markdown and only sanitized.
func (b *Bot) prepare(fileName string, raw []byte) (source, text string, err error) {
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	if strings.EqualFold(filepath.Ext(fileName), ".pdf") {
		tmp, err := os.CreateTemp("", "upload-*.pdf")
		if err != nil {
			return "", "", err
		}
		defer os.Remove(tmp.Name())
		if _, err := tmp.Write(raw); err != nil {
			tmp.Close()
			return "", "", err
		}
		tmp.Close()

		md, err := extract.ConvertFile(tmp.Name())
		if err != nil {
			return "", "", err
		}
		return base + ".md", sanitize.CleanContent(md), nil
	}
	return base + ".md", sanitize.CleanContent(string(raw)), nil
}

func (b *Bot) download(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download: status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	if _, err := b.api.Send(out); err != nil {
		logger.Error("BOT", fmt.Sprintf("send to chat %d: %v", msg.Chat.ID, err))
	}
}

// acceptsDocument reports whether an uploaded file type can be indexed.
func acceptsDocument(fileName string) bool {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".md", ".markdown", ".txt", ".pdf":
		return true
	}
	return false
}
