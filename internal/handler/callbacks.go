package handler

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"tango/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	pagePrefix     = "page_"
	snapshotPrefix = "snap_"
)

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// handleEditError handles errors from c.Edit() - if message is not modified, just acknowledge callback
// Otherwise, acknowledge callback and return error so caller can send new message
func (h *Handler) handleEditError(err error, c tele.Context, userID int64) error {
	if err == nil {
		return nil
	}

	// Another callback already put the same content there
	if strings.Contains(err.Error(), "message is not modified") {
		h.logger.Debug("Message already modified by another callback, acknowledging",
			zap.Int64("user_id", userID),
			zap.String("callback_id", c.Callback().ID),
		)
		if ackErr := c.Respond(); ackErr != nil {
			h.logger.Warn("Failed to acknowledge callback", zap.Error(ackErr))
		}
		return nil
	}

	h.logger.Warn("Failed to edit message, sending new",
		zap.Error(err),
		zap.Int64("user_id", userID),
		zap.String("callback_id", c.Callback().ID),
	)
	// Always acknowledge callback before sending new message
	if ackErr := c.Respond(); ackErr != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(ackErr))
	}
	return err
}

// handleCallback handles callback queries that no static button claimed
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}

	// Clean data from all non-printable characters
	data := cleanCallbackData(callback.Data)
	h.logger.Debug("Processing callback",
		zap.String("data", data),
		zap.String("unique", callback.Unique),
		zap.Int64("user_id", c.Sender().ID),
	)

	buttons := h.buttonHandlers()
	if fn, ok := buttons[callback.Unique]; ok {
		return fn(c)
	}
	// Buttons whose Unique did not come through
	if fn, ok := buttons[data]; ok && callback.Unique == "" {
		return fn(c)
	}

	switch {
	case strings.HasPrefix(data, pagePrefix):
		return h.handlePagination(c, data)
	case strings.HasPrefix(data, snapshotPrefix):
		return h.handleSnapshotSelection(c, data)
	}

	h.logger.Warn("Unhandled callback",
		zap.String("data", data),
		zap.String("unique", callback.Unique),
	)
	return c.Respond()
}

// handleSnapshots shows the first page of saved snapshots
func (h *Handler) handleSnapshots(c tele.Context) error {
	return h.showSnapshotPage(c, 1)
}

// handlePagination handles page navigation
func (h *Handler) handlePagination(c tele.Context, data string) error {
	page, err := strconv.Atoi(strings.TrimPrefix(data, pagePrefix))
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Invalid page"})
	}
	return h.showSnapshotPage(c, page)
}

func (h *Handler) showSnapshotPage(c tele.Context, page int) error {
	infos, totalPages, err := h.snapshotService.List(h.ctx, page)
	if err != nil {
		h.logger.Error("Failed to list snapshots", zap.Error(err))
		if c.Callback() != nil {
			return c.Respond(&tele.CallbackResponse{Text: "Failed to load snapshots"})
		}
		return c.Send(msgInternalError)
	}

	if len(infos) == 0 {
		if c.Callback() != nil {
			return c.Respond(&tele.CallbackResponse{
				Text:      "No saved snapshots yet",
				ShowAlert: true,
			})
		}
		return c.Send("No saved snapshots yet. Use /save to store the list.")
	}

	if page < 1 {
		page = 1
	}
	return h.show(c, snapshotsHeader(page, totalPages), snapshotPageMarkup(infos, page, totalPages))
}

// snapshotPageMarkup lists one page of snapshots with navigation
func snapshotPageMarkup(infos []domain.SnapshotInfo, page, totalPages int) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(infos)+2)

	for _, info := range infos {
		btn := markup.Data(info.DisplayString(), snapshotPrefix+info.ID.String())
		rows = append(rows, markup.Row(btn))
	}

	if totalPages > 1 {
		navRow := tele.Row{}
		if page > 1 {
			navRow = append(navRow, markup.Data("⬅️", fmt.Sprintf("%s%d", pagePrefix, page-1)))
		}
		if page < totalPages {
			navRow = append(navRow, markup.Data("➡️", fmt.Sprintf("%s%d", pagePrefix, page+1)))
		}
		if len(navRow) > 0 {
			rows = append(rows, navRow)
		}
	}

	rows = append(rows, markup.Row(btnMainMenu))
	markup.Inline(rows...)
	return markup
}

// handleSnapshotSelection loads the chosen snapshot into the session
func (h *Handler) handleSnapshotSelection(c tele.Context, data string) error {
	snapshot, err := h.snapshotService.Get(h.ctx, strings.TrimPrefix(data, snapshotPrefix))
	if err != nil {
		return h.snapshotError(c, err)
	}
	return h.loadSnapshot(c, snapshot)
}
