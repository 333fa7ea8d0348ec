package session

import (
	"tango/internal/domain"
	"tango/internal/quiz"
)

// ActionKind names one user action
type ActionKind string

const (
	ActionView         ActionKind = "view"
	ActionAddWords     ActionKind = "add_words"
	ActionClearList    ActionKind = "clear_list"
	ActionTranslate    ActionKind = "translate"
	ActionSaveEdits    ActionKind = "save_edits"
	ActionStartTest    ActionKind = "start_test"
	ActionEndTest      ActionKind = "end_test"
	ActionResetResults ActionKind = "reset_results"
	ActionSubmitAnswer ActionKind = "submit_answer"
	ActionRevealAnswer ActionKind = "reveal_answer"
	ActionAdvance      ActionKind = "advance"
	ActionRestartQuiz  ActionKind = "restart_quiz"
	ActionLoad         ActionKind = "load"
	ActionSave         ActionKind = "save"
)

// Action is one user request. Only the fields its kind needs are read:
// Text for AddWords, SubmitAnswer and Load, Rows for SaveEdits and
// Direction for StartTest.
type Action struct {
	Kind      ActionKind
	Text      string
	Rows      []domain.EditableRow
	Direction domain.Direction
}

// NoticeLevel is the severity of a user-visible message
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a message produced by an action
type Notice struct {
	Level NoticeLevel `json:"level"`
	Text  string      `json:"text"`
}

// QuizView is the running quiz as shown to the user
type QuizView struct {
	Index       int     `json:"index"`
	Total       int     `json:"total"`
	Progress    float64 `json:"progress"`
	Direction   string  `json:"direction"`
	PromptLabel string  `json:"prompt_label"`
	AnswerLabel string  `json:"answer_label"`
	Prompt      string  `json:"prompt"`
	Answered    bool    `json:"answered"`
}

// View is everything a surface needs to render after an action
type View struct {
	SectionsHidden bool          `json:"sections_hidden"`
	WordCount      int           `json:"word_count"`
	Pairs          []domain.Pair `json:"pairs"`
	Quiz           *QuizView     `json:"quiz,omitempty"`
	Score          string        `json:"score,omitempty"`
	Correct        int           `json:"correct"`
	LastResult     *quiz.Result  `json:"last_result,omitempty"`
	Revealed       string        `json:"revealed,omitempty"`
	Completed      bool          `json:"completed"`
	Exported       string        `json:"exported,omitempty"`
	Unaligned      []string      `json:"unaligned,omitempty"`
	Notices        []Notice      `json:"notices,omitempty"`
}
