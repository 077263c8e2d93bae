// cmd/register/prompt.go
//
// Terminal prompts behind an interface so the flow can be tested without a
// real terminal.
package main

import (
	"context"
	"errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted is returned when the user presses Ctrl-C at a prompt.
var ErrAborted = errors.New("aborted")

// Prompter asks one question at a time.
type Prompter interface {
	Input(ctx context.Context, msg, def string) (string, error)
	Password(ctx context.Context, msg string) (string, error)
	Confirm(ctx context.Context, msg string, def bool) (bool, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Input(ctx context.Context, msg, def string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	if err := survey.AskOne(&survey.Input{Message: msg, Default: def}, &out); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (surveyPrompter) Password(ctx context.Context, msg string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	if err := survey.AskOne(&survey.Password{Message: msg}, &out); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (surveyPrompter) Confirm(ctx context.Context, msg string, def bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var out bool
	if err := survey.AskOne(&survey.Confirm{Message: msg, Default: def}, &out); err != nil {
		return false, translateSurveyErr(err)
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}
