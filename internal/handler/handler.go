package handler

import (
	"context"
	"sync"

	"tango/internal/domain"
	"tango/internal/middleware"
	"tango/internal/service"
	"tango/internal/session"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Handler manages all bot interactions
type Handler struct {
	bot             *tele.Bot
	ctx             context.Context
	authService     *service.AuthService
	snapshotService *service.SnapshotService
	controller      *session.Controller
	logger          *zap.Logger

	// Chat input modes (in-memory state machine)
	states   map[int64]*domain.StateData
	stateMux sync.RWMutex
}

// NewHandler creates a new handler instance. ctx bounds every session and
// database call made on behalf of a chat update.
func NewHandler(
	ctx context.Context,
	bot *tele.Bot,
	authService *service.AuthService,
	snapshotService *service.SnapshotService,
	controller *session.Controller,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		bot:             bot,
		ctx:             ctx,
		authService:     authService,
		snapshotService: snapshotService,
		controller:      controller,
		logger:          logger,
		states:          make(map[int64]*domain.StateData),
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	// Open to everyone, both handle the password themselves
	h.bot.Handle("/start", h.handleStart)
	h.bot.Handle(tele.OnText, h.handleText)

	g := h.bot.Group()
	g.Use(middleware.AuthMiddleware(h.ctx, h.authService, h.logger))

	g.Handle("/help", h.handleHelp)
	g.Handle("/add", h.handleAdd)
	g.Handle("/clear", h.handleClear)
	g.Handle("/translate", h.handleTranslate)
	g.Handle("/list", h.handleList)
	g.Handle("/edit", h.handleEdit)
	g.Handle("/test", h.handleTest)
	g.Handle("/end", h.handleEnd)
	g.Handle("/reset", h.handleReset)
	g.Handle("/next", h.handleNext)
	g.Handle("/reveal", h.handleReveal)
	g.Handle("/restart", h.handleRestart)
	g.Handle("/save", h.handleSave)
	g.Handle("/load", h.handleLoad)
	g.Handle("/snapshots", h.handleSnapshots)
	g.Handle(tele.OnDocument, h.handleDocument)

	// Inline buttons
	for unique, fn := range h.buttonHandlers() {
		g.Handle("\f"+unique, fn)
	}

	// Generic callback handler for dynamic data
	g.Handle(tele.OnCallback, h.handleCallback)
}

// buttonHandlers maps every static button to its handler
func (h *Handler) buttonHandlers() map[string]tele.HandlerFunc {
	return map[string]tele.HandlerFunc{
		btnTranslate.Unique: h.handleTranslate,
		btnList.Unique:      h.handleList,
		btnEdit.Unique:      h.handleEdit,
		btnTestNative.Unique: func(c tele.Context) error {
			return h.startTest(c, domain.NativeToTarget)
		},
		btnTestTarget.Unique: func(c tele.Context) error {
			return h.startTest(c, domain.TargetToNative)
		},
		btnSave.Unique:      h.handleSave,
		btnSnapshots.Unique: h.handleSnapshots,
		btnClear.Unique:     h.handleClear,
		btnReveal.Unique:    h.handleReveal,
		btnNext.Unique:      h.handleNext,
		btnRestart.Unique:   h.handleRestart,
		btnEnd.Unique:       h.handleEnd,
		btnCancel.Unique:    h.handleCancel,
		btnMainMenu.Unique:  h.handleMenu,
	}
}

// GetState returns user's current state
func (h *Handler) GetState(userID int64) *domain.StateData {
	h.stateMux.RLock()
	defer h.stateMux.RUnlock()

	state, exists := h.states[userID]
	if !exists {
		return &domain.StateData{State: domain.StateIdle}
	}
	return state
}

// SetState sets user's state
func (h *Handler) SetState(userID int64, state *domain.StateData) {
	h.stateMux.Lock()
	defer h.stateMux.Unlock()
	h.states[userID] = state
}

// ResetState resets user to idle state
func (h *Handler) ResetState(userID int64) {
	h.SetState(userID, &domain.StateData{State: domain.StateIdle})
}

// Inline keyboard buttons
var (
	btnTranslate = tele.Btn{
		Unique: "translate",
		Text:   "🌐 Translate",
	}
	btnList = tele.Btn{
		Unique: "list",
		Text:   "📋 Pairs",
	}
	btnEdit = tele.Btn{
		Unique: "edit",
		Text:   "✏️ Edit",
	}
	btnTestNative = tele.Btn{
		Unique: "test_native",
		Text:   "📝 Test ja→en",
	}
	btnTestTarget = tele.Btn{
		Unique: "test_target",
		Text:   "📝 Test en→ja",
	}
	btnSave = tele.Btn{
		Unique: "save",
		Text:   "💾 Save",
	}
	btnSnapshots = tele.Btn{
		Unique: "snapshots",
		Text:   "🗂 Snapshots",
	}
	btnClear = tele.Btn{
		Unique: "clear",
		Text:   "🗑 Clear",
	}
	btnReveal = tele.Btn{
		Unique: "reveal",
		Text:   "👀 Show answer",
	}
	btnNext = tele.Btn{
		Unique: "next",
		Text:   "➡️ Next",
	}
	btnRestart = tele.Btn{
		Unique: "restart",
		Text:   "⏮ First question",
	}
	btnEnd = tele.Btn{
		Unique: "end",
		Text:   "⏹ End test",
	}
	btnCancel = tele.Btn{
		Unique: "cancel",
		Text:   "❌ Cancel",
	}
	btnMainMenu = tele.Btn{
		Unique: "main_menu",
		Text:   "🏠 Main menu",
	}
)

// mainMenuMarkup returns the keyboard shown while no test is running
func mainMenuMarkup() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(btnTranslate, btnList, btnEdit),
		menu.Row(btnTestNative, btnTestTarget),
		menu.Row(btnSave, btnSnapshots, btnClear),
	)
	return menu
}

// quizMarkup returns the keyboard shown while a test is running
func quizMarkup(answered bool) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	if answered {
		menu.Inline(
			menu.Row(btnNext),
			menu.Row(btnRestart, btnEnd),
		)
		return menu
	}
	menu.Inline(
		menu.Row(btnReveal, btnNext),
		menu.Row(btnRestart, btnEnd),
	)
	return menu
}

// cancelMarkup offers a way out of a waiting input mode
func cancelMarkup() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(menu.Row(btnCancel))
	return menu
}

// markupFor picks the keyboard matching the view
func markupFor(v session.View) *tele.ReplyMarkup {
	if v.Quiz != nil {
		return quizMarkup(v.Quiz.Answered)
	}
	return mainMenuMarkup()
}
