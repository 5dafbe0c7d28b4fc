package testutil

import "fmt"

// FakePrompter answers prompts from scripted queues and records every
// message it was asked. An exhausted queue fails the interaction, which
// surfaces as an error in the code under test rather than a hang.
type FakePrompter struct {
	ConfirmAnswers  []bool
	InputAnswers    []string
	PasswordAnswers []string
	SelectAnswers   []string

	ConfirmMessages []string
	InputMessages   []string
	SelectOptions   [][]string
}

// Confirm implements prompt.Prompter.
func (f *FakePrompter) Confirm(message string) (bool, error) {
	f.ConfirmMessages = append(f.ConfirmMessages, message)
	if len(f.ConfirmAnswers) == 0 {
		return false, fmt.Errorf("unexpected confirm prompt: %s", message)
	}
	answer := f.ConfirmAnswers[0]
	f.ConfirmAnswers = f.ConfirmAnswers[1:]
	return answer, nil
}

// Input implements prompt.Prompter.
func (f *FakePrompter) Input(message string) (string, error) {
	f.InputMessages = append(f.InputMessages, message)
	if len(f.InputAnswers) == 0 {
		return "", fmt.Errorf("unexpected input prompt: %s", message)
	}
	answer := f.InputAnswers[0]
	f.InputAnswers = f.InputAnswers[1:]
	return answer, nil
}

// Password implements prompt.Prompter.
func (f *FakePrompter) Password(message string) (string, error) {
	if len(f.PasswordAnswers) == 0 {
		return "", fmt.Errorf("unexpected password prompt: %s", message)
	}
	answer := f.PasswordAnswers[0]
	f.PasswordAnswers = f.PasswordAnswers[1:]
	return answer, nil
}

// Select implements prompt.Prompter.
func (f *FakePrompter) Select(message string, options []string) (string, error) {
	f.SelectOptions = append(f.SelectOptions, options)
	if len(f.SelectAnswers) == 0 {
		return "", fmt.Errorf("unexpected select prompt: %s", message)
	}
	answer := f.SelectAnswers[0]
	f.SelectAnswers = f.SelectAnswers[1:]
	return answer, nil
}
