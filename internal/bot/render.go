package bot

import (
	"fmt"
	"strings"

	"kbbot/internal/rag"
)

const (
	startText = "Привет! Я бот базы знаний.\n\n" +
		"Задайте вопрос обычным сообщением, и я найду ответ в загруженных документах.\n" +
		"Команда /help покажет, что я умею."

	helpText = "Что я умею:\n\n" +
		"/status — сколько документов и фрагментов в базе\n" +
		"/add — как добавить документ\n\n" +
		"Просто напишите вопрос, и я поищу ответ в базе знаний.\n" +
		"Можно прислать файл (.md, .txt или .pdf) — я добавлю его в базу."

	addText = "Пришлите файл документом (скрепка → Файл). " +
		"Поддерживаются .md, .txt и .pdf. После загрузки документ сразу доступен для поиска."

	unknownCommandText  = "Не знаю такой команды. /help покажет список."
	unsupportedFileText = "Такой формат не поддерживается. Пришлите .md, .txt или .pdf."
	tooLargeText        = "Файл слишком большой: Telegram позволяет ботам скачивать до 20 МБ."
	emptyDocumentText   = "Не удалось извлечь текст из документа, он не был добавлен."
	notFoundText        = "В базе знаний ничего не нашлось по этому вопросу. Попробуйте переформулировать или добавьте документы через /add."
	errorText           = "Что-то пошло не так, попробуйте ещё раз."
)

func statusText(documents, chunks int) string {
	if documents == 0 {
		return "База знаний пуста. Добавьте документы через /add."
	}
	return fmt.Sprintf("В базе знаний: документов — %d, фрагментов — %d.", documents, chunks)
}

func receivedText(fileName string) string {
	return fmt.Sprintf("Получил %s, обрабатываю…", fileName)
}

func indexedText(source string, chunks int) string {
	return fmt.Sprintf("Документ %s добавлен в базу: %d фрагментов.", source, chunks)
}

// answerText renders an answer with its source attribution.
func answerText(a rag.Answer) string {
	if !a.Found {
		return notFoundText
	}
	var b strings.Builder
	b.WriteString(a.Text)

	seen := make(map[string]struct{}, len(a.Sources))
	var sources []string
	for _, r := range a.Sources {
		label := r.Chunk.Source
		if r.Chunk.Page > 0 {
			label = fmt.Sprintf("%s, стр. %d", r.Chunk.Source, r.Chunk.Page)
		}
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		sources = append(sources, label)
	}
	if len(sources) > 0 {
		b.WriteString("\n\nИсточники: ")
		b.WriteString(strings.Join(sources, "; "))
	}
	return b.String()
}
