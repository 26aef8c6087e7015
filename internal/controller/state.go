package controller

import (
	"github.com/discordtext/backend/internal/message"
	"github.com/discordtext/backend/internal/videos"
)

// Button identifies an action button with transient feedback.
type Button int

const (
	SaveButton Button = iota
	CopyButton
)

func (b Button) String() string {
	switch b {
	case SaveButton:
		return "save"
	case CopyButton:
		return "copy"
	default:
		return "unknown"
	}
}

// ButtonState is what a button shows and whether it accepts clicks.
type ButtonState struct {
	Label   string
	Enabled bool
}

const (
	SaveLabel   = "サムネイルを保存"
	SavingLabel = "保存中..."
	SavedLabel  = "保存完了"
	CopyLabel   = "コピー"
	CopiedLabel = "コピー完了"
)

// User-facing messages.
const (
	MsgMissingURL       = "URLを入力してください"
	MsgMissingAPIKey    = "API Keyを入力してください"
	MsgFetchFailed      = "エラーが発生しました"
	MsgSaveFailedPrefix = "保存に失敗しました: "
	MsgSaveError        = "保存エラーが発生しました"
)

// State is the whole client state. Record is nil until a fetch succeeds and is
// replaced, never modified, by later fetches. Message is always
// Render(Record, Style), or empty without a record.
type State struct {
	Record  *videos.Record
	Style   message.Style
	Message string
	Save    ButtonState
	Copy    ButtonState

	// latestFetch is the sequence number of the most recently issued fetch.
	latestFetch uint64
}

func initialState() State {
	return State{
		Style: message.DefaultStyle,
		Save:  ButtonState{Label: SaveLabel, Enabled: true},
		Copy:  ButtonState{Label: CopyLabel, Enabled: true},
	}
}

func (s State) render() string {
	if s.Record == nil {
		return ""
	}
	return message.Render(s.Record.Title, s.Record.FormattedDate, s.Record.SourceURL, s.Style)
}

func (s State) button(b Button) ButtonState {
	if b == SaveButton {
		return s.Save
	}
	return s.Copy
}

func (s *State) setButton(b Button, bs ButtonState) {
	if b == SaveButton {
		s.Save = bs
		return
	}
	s.Copy = bs
}

func defaultButton(b Button) ButtonState {
	if b == SaveButton {
		return ButtonState{Label: SaveLabel, Enabled: true}
	}
	return ButtonState{Label: CopyLabel, Enabled: true}
}
