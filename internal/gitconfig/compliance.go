// Package gitconfig reconciles a project's git safety files against the
// template's recommended baseline.
//
// The compliance decision is a pure function over line sets; the repair
// action is effectful and gated by a caller-supplied confirmation.
package gitconfig

import (
	"bufio"
	"os"
	"strings"
)

// The two tracked safety files, compared line-set-wise against the
// template's copies.
const (
	IgnoreFileName     = ".gitignore"
	AttributesFileName = ".gitattributes"
)

// LinesCompliant reports whether local covers every line required by the
// template. Extra local lines are fine; missing lines are not. Order and
// duplicates are irrelevant (set semantics).
func LinesCompliant(local, template []string) bool {
	have := make(map[string]struct{}, len(local))
	for _, line := range local {
		have[line] = struct{}{}
	}

	for _, line := range template {
		if _, ok := have[line]; !ok {
			return false
		}
	}

	return true
}

// FileCompliant compares the file at localPath against the template copy at
// templatePath. A missing local file fails immediately; a missing template
// copy means there is nothing to require.
func FileCompliant(localPath, templatePath string) (bool, error) {
	local, err := readLines(localPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	template, err := readLines(templatePath)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}

	return LinesCompliant(local, template), nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}

	return lines, scanner.Err()
}
