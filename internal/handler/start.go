package handler

import (
	"strings"

	"tango/internal/session"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const helpText = `📚 Tango

Send words, one per line, to add them to the list.

/translate fills in the translations
/list shows the current pairs
/edit lets you correct the pairs
/test [ja|en] starts a test in the given direction
/next, /reveal, /restart and /end drive the test
/reset discards the test results
/clear empties the list
/save sends the list as a file and keeps a snapshot
/load [id] loads the latest or the given snapshot
/snapshots lists saved snapshots

You can also upload a tango_data.txt file to load it.`

// handleStart handles /start command
func (h *Handler) handleStart(c tele.Context) error {
	userID := c.Sender().ID

	h.logger.Info("User started bot",
		zap.Int64("user_id", userID),
		zap.String("username", c.Sender().Username),
	)

	authorized, err := h.authService.Admit(h.ctx, userID)
	if err != nil {
		h.logger.Error("Failed to check authorization", zap.Error(err))
		return c.Send(msgInternalError)
	}

	h.ResetState(userID)
	if !authorized {
		return c.Send(msgAskPassword)
	}

	return h.handleMenu(c)
}

// handleHelp lists the commands
func (h *Handler) handleHelp(c tele.Context) error {
	return c.Send(helpText)
}

// handleMenu shows the current session with the matching keyboard
func (h *Handler) handleMenu(c tele.Context) error {
	return h.dispatch(c, session.Action{Kind: session.ActionView})
}

// handleCancel leaves any waiting input mode
func (h *Handler) handleCancel(c tele.Context) error {
	h.ResetState(c.Sender().ID)
	return h.handleMenu(c)
}

// dispatch runs one session action and shows the resulting view
func (h *Handler) dispatch(c tele.Context, a session.Action) error {
	v, err := h.controller.Dispatch(h.ctx, a)
	if err != nil {
		h.logger.Error("Failed to dispatch action",
			zap.String("action", string(a.Kind)),
			zap.Int64("user_id", c.Sender().ID),
			zap.Error(err),
		)
		return h.show(c, msgInternalError, mainMenuMarkup())
	}
	return h.show(c, renderView(v), markupFor(v))
}

// show edits the message behind a callback, or sends a new one for commands
// and text
func (h *Handler) show(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	if c.Callback() == nil {
		return c.Send(text, markup)
	}

	if err := c.Edit(text, markup); err != nil {
		if handleErr := h.handleEditError(err, c, c.Sender().ID); handleErr == nil {
			return nil // Message was already modified, just acknowledged
		}
		return c.Send(text, markup)
	}
	return c.Respond()
}

// commandPayload returns everything after the command word, keeping line
// breaks so multi-line arguments survive
func commandPayload(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return text
	}
	i := strings.IndexAny(text, " \t\r\n")
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(text[i:])
}
