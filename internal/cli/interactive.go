package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/discordtext/backend/internal/message"
)

const (
	actionFetch = "動画を取得"
	actionStyle = "スタイルを変更"
	actionCopy  = "コピー"
	actionSave  = "サムネイルを保存"
	actionQuit  = "終了"
)

// Interactive is a menu-driven front end over a Session.
type Interactive struct {
	Session *Session
	// APIKey prefills the key prompt, usually with the last key used.
	APIKey string
}

// Run shows the menu until the user quits, ctx ends, or input is closed.
func (i *Interactive) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		menu := promptui.Select{
			Label: "操作を選択",
			Items: i.actions(),
		}
		_, action, err := menu.Run()
		if err != nil {
			return quitErr(err)
		}

		switch action {
		case actionFetch:
			err = i.fetch(ctx)
		case actionStyle:
			err = i.chooseStyle(ctx)
		case actionCopy:
			err = i.Session.Copy(ctx)
		case actionSave:
			_, err = i.Session.Save(ctx)
		case actionQuit:
			return nil
		}
		if err != nil {
			return quitErr(err)
		}
	}
}

func (i *Interactive) actions() []string {
	if !i.Session.HasResult() {
		return []string{actionFetch, actionStyle, actionQuit}
	}
	return []string{actionFetch, actionStyle, actionCopy, actionSave, actionQuit}
}

func (i *Interactive) fetch(ctx context.Context) error {
	urlPrompt := promptui.Prompt{Label: "YouTube URL"}
	url, err := urlPrompt.Run()
	if err != nil {
		return err
	}

	keyPrompt := promptui.Prompt{
		Label:   "API Key",
		Default: i.APIKey,
		Mask:    '*',
	}
	apiKey, err := keyPrompt.Run()
	if err != nil {
		return err
	}
	if strings.TrimSpace(apiKey) != "" {
		i.APIKey = strings.TrimSpace(apiKey)
	}

	_, err = i.Session.Fetch(ctx, url, apiKey)
	return err
}

func (i *Interactive) chooseStyle(ctx context.Context) error {
	items := make([]string, len(message.Styles))
	for n, s := range message.Styles {
		items[n] = string(s)
	}

	stylePrompt := promptui.Select{
		Label: "スタイル",
		Items: items,
	}
	idx, _, err := stylePrompt.Run()
	if err != nil {
		return err
	}
	return i.Session.Select(ctx, message.Styles[idx])
}

func quitErr(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, context.Canceled) {
		return nil
	}
	return fmt.Errorf("interactive: %w", err)
}
