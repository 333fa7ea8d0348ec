package handler

import (
	"strings"

	"tango/internal/domain"
	"tango/internal/editor"
	"tango/internal/session"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleText handles all text messages based on state
func (h *Handler) handleText(c tele.Context) error {
	userID := c.Sender().ID
	text := strings.TrimSpace(c.Text())

	if strings.HasPrefix(text, "/") {
		return c.Send("Unknown command. See /help.")
	}

	authorized, err := h.authService.Admit(h.ctx, userID)
	if err != nil {
		h.logger.Error("Failed to check authorization", zap.Error(err))
		return c.Send(msgInternalError)
	}

	if !authorized {
		return h.handlePassword(c, userID, text)
	}

	state := h.GetState(userID)

	switch state.State {
	case domain.StateWaitingEdit:
		h.ResetState(userID)
		return h.dispatch(c, session.Action{
			Kind: session.ActionSaveEdits,
			Rows: editor.ParseTable(text),
		})

	case domain.StateWaitingWords:
		h.ResetState(userID)
		return h.dispatch(c, session.Action{Kind: session.ActionAddWords, Text: text})

	default:
		// While a test runs, text is an answer; otherwise it adds words
		v, err := h.controller.Dispatch(h.ctx, session.Action{Kind: session.ActionView})
		if err != nil {
			h.logger.Error("Failed to get view", zap.Error(err))
			return c.Send(msgInternalError)
		}
		if v.Quiz != nil {
			return h.dispatch(c, session.Action{Kind: session.ActionSubmitAnswer, Text: text})
		}
		return h.dispatch(c, session.Action{Kind: session.ActionAddWords, Text: text})
	}
}

// handlePassword checks the password sent by an unauthorized user
func (h *Handler) handlePassword(c tele.Context, userID int64, text string) error {
	unlocked, err := h.authService.Unlock(h.ctx, userID, text)
	if err != nil {
		h.logger.Error("Failed to authorize user", zap.Error(err))
		return c.Send(msgInternalError)
	}
	if !unlocked {
		return c.Send(msgWrongPassword)
	}

	h.ResetState(userID)
	if err := c.Send("✅ Access granted!"); err != nil {
		return err
	}
	return h.handleMenu(c)
}
