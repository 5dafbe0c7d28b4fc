// Package prompt abstracts interactive terminal input behind a capability
// interface so decision logic stays testable without a terminal.
package prompt

import (
	"strings"

	"github.com/AlecAivazis/survey/v2"
)

// Prompter is the interactive-input capability injected into components that
// need user confirmation or data entry.
type Prompter interface {
	// Confirm asks a yes/no question and blocks until answered.
	Confirm(message string) (bool, error)
	// Input asks for a free-form line of text.
	Input(message string) (string, error)
	// Password asks for a secret without echoing it.
	Password(message string) (string, error)
	// Select asks the user to pick one of the options.
	Select(message string, options []string) (string, error)
}

// Survey is the production Prompter backed by the terminal.
type Survey struct{}

// Confirm implements Prompter.
func (Survey) Confirm(message string) (bool, error) {
	var answer bool
	err := survey.AskOne(&survey.Confirm{Message: message}, &answer)
	return answer, err
}

// Input implements Prompter.
func (Survey) Input(message string) (string, error) {
	var answer string
	err := survey.AskOne(&survey.Input{Message: message}, &answer)
	return strings.TrimSpace(answer), err
}

// Password implements Prompter.
func (Survey) Password(message string) (string, error) {
	var answer string
	err := survey.AskOne(&survey.Password{Message: message}, &answer)
	return strings.TrimSpace(answer), err
}

// Select implements Prompter.
func (Survey) Select(message string, options []string) (string, error) {
	var answer string
	err := survey.AskOne(&survey.Select{Message: message, Options: options}, &answer)
	return answer, err
}

// RequestNameEmail asks the user for their full name and email. Used when
// the git identity configuration is empty.
func RequestNameEmail(p Prompter) (string, string, error) {
	name, err := p.Input("Enter your full name:")
	if err != nil {
		return "", "", err
	}
	email, err := p.Input("Enter your email:")
	if err != nil {
		return "", "", err
	}
	return name, email, nil
}

// RequestDescription asks for a project description, repeating until a
// non-empty answer is given.
func RequestDescription(p Prompter) (string, error) {
	for {
		description, err := p.Input("Project description")
		if err != nil {
			return "", err
		}
		if description != "" {
			return description, nil
		}
	}
}
