package handler

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"tango/internal/session"
)

// Telegram rejects messages longer than 4096 characters
const maxMessageLen = 4000

const (
	msgInternalError  = "Something went wrong. Please try again later."
	msgAskPassword    = "Hi! This bot is private. Send the password to continue:"
	msgWrongPassword  = "Wrong password."
	msgSectionsHidden = "The word list and the editor are hidden during the test. End the test to see them."
	msgEmptyList      = "The list is empty. Send words, one per line, to add them."
)

var noticeIcons = map[session.NoticeLevel]string{
	session.NoticeInfo:    "ℹ️",
	session.NoticeSuccess: "✅",
	session.NoticeWarning: "⚠️",
	session.NoticeError:   "❌",
}

// renderView turns the controller's view into a chat message
func renderView(v session.View) string {
	var b strings.Builder

	for _, n := range v.Notices {
		fmt.Fprintf(&b, "%s %s\n", noticeIcons[n.Level], n.Text)
	}
	if v.Revealed != "" {
		fmt.Fprintf(&b, "👀 Answer: %s\n", v.Revealed)
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}

	switch {
	case v.Quiz != nil:
		b.WriteString(renderQuiz(*v.Quiz))
		if v.Score != "" {
			b.WriteString("\n" + v.Score)
		}
	case v.Completed:
		fmt.Fprintf(&b, "🏁 Final score. %s", v.Score)
	default:
		fmt.Fprintf(&b, "📚 Words: %d", v.WordCount)
		if v.Score != "" {
			b.WriteString("\n" + v.Score)
		}
	}

	return truncate(b.String())
}

func renderQuiz(q session.QuizView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📝 Question %d / %d (%s)\n", q.Index+1, q.Total, q.Direction)
	fmt.Fprintf(&b, "%s\n\n", progressBar(q.Progress))
	fmt.Fprintf(&b, "%s: %s", q.PromptLabel, q.Prompt)
	if !q.Answered {
		fmt.Fprintf(&b, "\nType the %s word.", q.AnswerLabel)
	}
	return b.String()
}

// progressBar draws a ten-cell bar for a fraction in [0, 1]
func progressBar(fraction float64) string {
	const cells = 10
	filled := int(fraction*cells + 0.5)
	if filled < 0 {
		filled = 0
	}
	if filled > cells {
		filled = cells
	}
	return strings.Repeat("▰", filled) + strings.Repeat("▱", cells-filled)
}

// renderPairs lists the current pairs, or explains why they are not shown
func renderPairs(v session.View) string {
	if v.SectionsHidden {
		return msgSectionsHidden
	}
	if len(v.Pairs) == 0 {
		return msgEmptyList
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 Current pairs (%d):\n\n", len(v.Pairs))
	for i, p := range v.Pairs {
		translation := p.Translation
		if translation == "" {
			translation = "…"
		}
		fmt.Fprintf(&b, "%d. %s — %s\n", i+1, p.Native, translation)
	}
	return truncate(b.String())
}

// snapshotsHeader titles one snapshot list page
func snapshotsHeader(page, totalPages int) string {
	if totalPages > 1 {
		return fmt.Sprintf("🗂 Saved lists (page %d of %d):", page, totalPages)
	}
	return "🗂 Saved lists:"
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxMessageLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxMessageLen]) + "\n…"
}
