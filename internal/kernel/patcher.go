package kernel

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nordstat/prosjekt/internal/errs"
)

// WrapperScriptName is the login-shell wrapper written next to the kernel
// descriptor. The kernel launching through it picks up the user's .bashrc
// customizations.
const WrapperScriptName = "python.sh"

// interpreterPattern matches the interpreter entry in a kernel's launch
// arguments, including an already-installed wrapper.
var interpreterPattern = regexp.MustCompile(`^.*(?:/python3|/python|/python\.sh)$`)

// AttachLoginShell rewrites the named kernel's launch descriptor to start
// the interpreter through a login-shell wrapper. Every filesystem
// precondition is validated, in order, before anything is mutated. Patching
// an already-patched kernel is a no-op success.
func (r *Registry) AttachLoginShell(projectName string, out io.Writer) error {
	kernels, err := r.All()
	if err != nil {
		return err
	}

	spec, ok := kernels[projectName]
	if !ok {
		return errs.NewPrecondition("kernel-missing",
			fmt.Sprintf("Could not mount .bashrc, %q kernel was not found.", projectName))
	}

	if _, err := os.Stat(spec.ResourceDir); err != nil {
		return errs.NewPrecondition("kernel-resource-dir-missing",
			fmt.Sprintf("Could not mount .bashrc, path %q does not exist.", spec.ResourceDir))
	}

	descriptorPath := filepath.Join(spec.ResourceDir, descriptorFileName)
	if _, err := os.Stat(descriptorPath); err != nil {
		return errs.NewPrecondition("kernel-descriptor-missing",
			fmt.Sprintf("Could not mount .bashrc, file %q does not exist.", descriptorPath))
	}

	d, err := readDescriptor(descriptorPath)
	if err != nil {
		return errs.NewIO("kernel-descriptor-read",
			fmt.Sprintf("Could not read the kernel descriptor %q.", descriptorPath), err)
	}

	interpreter := interpreterEntry(d.argv())
	if interpreter == "" {
		return errs.NewPrecondition("kernel-interpreter-missing",
			fmt.Sprintf("Could not mount .bashrc, cannot find python executable path in %s.", descriptorPath))
	}

	if strings.HasSuffix(interpreter, "/"+WrapperScriptName) {
		// Already patched. Re-running is not an error.
		fmt.Fprintln(out, "⚠ .bashrc should already be mounted in your kernel; if in doubt do a 'clean' followed by a 'build'")
		return nil
	}

	wrapperPath := filepath.Join(spec.ResourceDir, WrapperScriptName)
	d["argv"] = []interface{}{
		wrapperPath, "-m", "ipykernel_launcher", "-f", "{connection_file}",
	}

	if err := d.write(descriptorPath); err != nil {
		return errs.NewIO("kernel-descriptor-write",
			fmt.Sprintf("Could not rewrite the kernel descriptor %q.", descriptorPath), err)
	}

	if err := writeWrapperScript(wrapperPath, interpreter); err != nil {
		return errs.NewIO("kernel-wrapper-write",
			fmt.Sprintf("Could not write the wrapper script %q.", wrapperPath), err)
	}

	return nil
}

// interpreterEntry returns the first launch argument that looks like the
// interpreter, or "".
func interpreterEntry(argv []string) string {
	for _, entry := range argv {
		if interpreterPattern.MatchString(entry) {
			return entry
		}
	}
	return ""
}

// writeWrapperScript writes the login-shell wrapper. The kernel may be
// launched by a different service account, so the script is readable and
// executable for everyone.
func writeWrapperScript(path, interpreter string) error {
	content := strings.Join([]string{
		"#!/usr/bin/env bash",
		"source $HOME/.bashrc",
		"exec " + interpreter + " $@",
		"",
	}, "\n")

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return err
	}

	return os.Chmod(path, 0o555)
}
