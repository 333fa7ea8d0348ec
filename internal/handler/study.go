package handler

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"tango/internal/domain"
	"tango/internal/editor"
	"tango/internal/service"
	"tango/internal/session"
	"tango/internal/tangofile"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Uploaded word lists larger than this are rejected
const maxUploadSize = 1 << 20

// payload returns the command argument; callbacks never carry one
func payload(c tele.Context) string {
	if c.Callback() != nil {
		return ""
	}
	return commandPayload(c.Text())
}

// handleAdd adds the words after the command, or waits for them
func (h *Handler) handleAdd(c tele.Context) error {
	words := payload(c)
	if words == "" {
		h.SetState(c.Sender().ID, &domain.StateData{State: domain.StateWaitingWords})
		return c.Send("Send the words, one per line.", cancelMarkup())
	}
	return h.dispatch(c, session.Action{Kind: session.ActionAddWords, Text: words})
}

func (h *Handler) handleClear(c tele.Context) error {
	h.ResetState(c.Sender().ID)
	return h.dispatch(c, session.Action{Kind: session.ActionClearList})
}

// handleTranslate fills in translations for the whole list
func (h *Handler) handleTranslate(c tele.Context) error {
	if err := c.Notify(tele.Typing); err != nil {
		h.logger.Debug("Failed to send typing action", zap.Error(err))
	}
	return h.dispatch(c, session.Action{Kind: session.ActionTranslate})
}

// handleList shows the current pairs unless a test hides them
func (h *Handler) handleList(c tele.Context) error {
	v, err := h.controller.Dispatch(h.ctx, session.Action{Kind: session.ActionView})
	if err != nil {
		h.logger.Error("Failed to get view", zap.Error(err))
		return h.show(c, msgInternalError, mainMenuMarkup())
	}
	return h.show(c, renderPairs(v), markupFor(v))
}

// handleEdit sends the pairs as an editable table and waits for it to come back
func (h *Handler) handleEdit(c tele.Context) error {
	userID := c.Sender().ID

	v, err := h.controller.Dispatch(h.ctx, session.Action{Kind: session.ActionView})
	if err != nil {
		h.logger.Error("Failed to get view", zap.Error(err))
		return h.show(c, msgInternalError, mainMenuMarkup())
	}
	if v.SectionsHidden || len(v.Pairs) == 0 {
		return h.show(c, renderPairs(v), markupFor(v))
	}

	table := editor.FormatTable(editor.Rows(v.Pairs))
	if utf8.RuneCountInString(table) > maxMessageLen {
		return h.show(c, "The list is too long to edit in chat. Use /save, edit the file and upload it.", markupFor(v))
	}

	h.SetState(userID, &domain.StateData{State: domain.StateWaitingEdit})
	if c.Callback() != nil {
		if err := c.Respond(); err != nil {
			h.logger.Warn("Failed to acknowledge callback", zap.Error(err))
		}
	}
	if err := c.Send(fmt.Sprintf(
		"✏️ Copy the table below, edit it and send it back.\nOne pair per line as \"word %s translation\". Delete a line to drop the pair.",
		editor.Separator,
	), cancelMarkup()); err != nil {
		return err
	}
	return c.Send(table)
}

// handleTest starts a test; the argument picks the direction
func (h *Handler) handleTest(c tele.Context) error {
	direction, err := domain.ParseDirection(strings.ToLower(payload(c)))
	if err != nil {
		return c.Send("Unknown direction. Use /test ja or /test en.")
	}
	return h.startTest(c, direction)
}

func (h *Handler) startTest(c tele.Context, direction domain.Direction) error {
	h.ResetState(c.Sender().ID)
	return h.dispatch(c, session.Action{Kind: session.ActionStartTest, Direction: direction})
}

func (h *Handler) handleEnd(c tele.Context) error {
	return h.dispatch(c, session.Action{Kind: session.ActionEndTest})
}

func (h *Handler) handleReset(c tele.Context) error {
	return h.dispatch(c, session.Action{Kind: session.ActionResetResults})
}

func (h *Handler) handleNext(c tele.Context) error {
	return h.dispatch(c, session.Action{Kind: session.ActionAdvance})
}

func (h *Handler) handleReveal(c tele.Context) error {
	return h.dispatch(c, session.Action{Kind: session.ActionRevealAnswer})
}

func (h *Handler) handleRestart(c tele.Context) error {
	return h.dispatch(c, session.Action{Kind: session.ActionRestartQuiz})
}

// handleSave sends the list as a file and stores it as a snapshot. The
// argument, if any, names the snapshot.
func (h *Handler) handleSave(c tele.Context) error {
	v, err := h.controller.Dispatch(h.ctx, session.Action{Kind: session.ActionSave})
	if err != nil {
		h.logger.Error("Failed to export word list", zap.Error(err))
		return h.show(c, msgInternalError, mainMenuMarkup())
	}

	caption := h.storeSnapshot(payload(c), v)

	if c.Callback() != nil {
		if err := c.Respond(); err != nil {
			h.logger.Warn("Failed to acknowledge callback", zap.Error(err))
		}
	}

	doc := &tele.Document{
		File:     tele.FromReader(strings.NewReader(v.Exported)),
		FileName: tangofile.FileName,
		Caption:  caption,
		MIME:     "text/plain",
	}
	return c.Send(doc, markupFor(v))
}

// storeSnapshot saves the export unless it would not load back as shown and
// returns the caption for the exported file
func (h *Handler) storeSnapshot(name string, v session.View) string {
	if len(v.Unaligned) > 0 {
		return fmt.Sprintf("💾 Word list exported but not stored as a snapshot. Missing entries for: %s. Use /edit to fill them in.",
			strings.Join(v.Unaligned, ", "))
	}

	info, err := h.snapshotService.Save(h.ctx, name, v.Exported)
	if err != nil {
		h.logger.Error("Failed to save snapshot", zap.Error(err))
		return "💾 Word list exported, but the snapshot could not be stored."
	}
	return fmt.Sprintf("💾 Saved as snapshot %s (%d words).", info.ShortID(), info.WordCount)
}

// handleLoad loads the snapshot named by the argument, or the latest one
func (h *Handler) handleLoad(c tele.Context) error {
	id := payload(c)

	var (
		snapshot *domain.Snapshot
		err      error
	)
	if id == "" {
		snapshot, err = h.snapshotService.Latest(h.ctx)
	} else {
		snapshot, err = h.snapshotService.Get(h.ctx, id)
	}
	if err != nil {
		return h.snapshotError(c, err)
	}

	return h.loadSnapshot(c, snapshot)
}

func (h *Handler) loadSnapshot(c tele.Context, snapshot *domain.Snapshot) error {
	h.logger.Info("Loading snapshot",
		zap.String("id", snapshot.ID.String()),
		zap.Int64("user_id", c.Sender().ID),
	)
	h.ResetState(c.Sender().ID)
	return h.dispatch(c, session.Action{Kind: session.ActionLoad, Text: snapshot.Content})
}

func (h *Handler) snapshotError(c tele.Context, err error) error {
	if errors.Is(err, service.ErrSnapshotNotFound) {
		return h.show(c, "No saved snapshot found.", mainMenuMarkup())
	}
	if errors.Is(err, service.ErrInvalidSnapshotID) {
		return h.show(c, "Invalid snapshot id. Pick one from /snapshots.", mainMenuMarkup())
	}
	h.logger.Error("Failed to get snapshot", zap.Error(err))
	return h.show(c, msgInternalError, mainMenuMarkup())
}

// handleDocument loads an uploaded word list file
func (h *Handler) handleDocument(c tele.Context) error {
	doc := c.Message().Document
	if doc == nil {
		return nil
	}
	if doc.FileSize > maxUploadSize {
		return c.Send("The file is too large.")
	}

	reader, err := c.Bot().File(&doc.File)
	if err != nil {
		h.logger.Error("Failed to download document", zap.Error(err))
		return c.Send(msgInternalError)
	}
	defer reader.Close()

	content, err := io.ReadAll(io.LimitReader(reader, maxUploadSize))
	if err != nil {
		h.logger.Error("Failed to read document", zap.Error(err))
		return c.Send(msgInternalError)
	}

	h.logger.Info("Word list uploaded",
		zap.String("file_name", doc.FileName),
		zap.Int64("user_id", c.Sender().ID),
	)
	h.ResetState(c.Sender().ID)
	return h.dispatch(c, session.Action{Kind: session.ActionLoad, Text: string(content)})
}
