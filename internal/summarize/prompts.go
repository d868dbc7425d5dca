package summarize

import (
	"fmt"
	"strings"
)

const (
	maxSummaryInput     = 15000
	maxChatSummaryInput = 12000
	maxChatContext      = 8000
	chatHistoryWindow   = 6
	minArticleChars     = 50
	minQuestionChars    = 3
)

const systemPrompt = "You help readers understand web articles. Answer only from the article text you are given."

// summaryUnavailable stands in for the chat context summary when the model
// could not produce one.
const summaryUnavailable = "Summary unavailable due to processing error."

func summaryPrompt(kind Kind, text string) string {
	switch kind {
	case Detailed:
		return "Please provide a comprehensive and detailed summary of this article. Cover all the key points, important details, and main arguments. Organize the information clearly:\n\n" + text
	case Bullets:
		return "Please summarize this article in 5-7 clear bullet points. Start each point with '• ' and make each point concise but informative:\n\n" + text
	default:
		return "Please provide a brief, clear summary of this article in 2-3 sentences. Focus on the main points and key information:\n\n" + text
	}
}

func chatSummaryPrompt(text string, limit int) string {
	return "Please provide a concise summary of this article that will be used as context for answering questions. " +
		"Focus on the main topics, key points, and important details. Keep it informative but concise:\n\n" +
		truncateRunes(text, limit)
}

func chatPrompt(s *Session, question string) string {
	var history strings.Builder
	msgs := s.Messages
	if len(msgs) > chatHistoryWindow {
		msgs = msgs[len(msgs)-chatHistoryWindow:]
	}
	for _, m := range msgs {
		if m.Role == RoleUser {
			history.WriteString("User: ")
		} else {
			history.WriteString("Assistant: ")
		}
		history.WriteString(m.Content)
		history.WriteString("\n")
	}

	var sb strings.Builder
	sb.WriteString("You are an AI assistant helping users understand and discuss an article. Use the article content below to answer questions accurately and helpfully.")
	sb.WriteString("\n\nARTICLE SUMMARY:\n")
	sb.WriteString(s.Summary)
	sb.WriteString("\n\nFULL ARTICLE CONTENT:\n")
	sb.WriteString(truncateRunes(s.ArticleText, maxChatContext))
	sb.WriteString("...")
	sb.WriteString("\n\nCONVERSATION HISTORY:\n")
	sb.WriteString(history.String())
	sb.WriteString(fmt.Sprintf("\nUSER'S CURRENT QUESTION: %s", question))
	sb.WriteString("\n\nPlease provide a helpful, accurate, and conversational response based on the article content. ")
	sb.WriteString("If the question cannot be answered from the article, politely explain that the information is not available in the provided text. ")
	sb.WriteString("Keep your response focused and relevant to the article content.")
	return sb.String()
}

func withLanguage(prompt, hint string) string {
	if strings.TrimSpace(hint) == "" {
		return prompt
	}
	return prompt + "\n\nWrite in language: " + hint
}

// truncateRunes returns s cut to n characters. It never splits a rune.
func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
