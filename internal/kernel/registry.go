// Package kernel manages Jupyter kernel registrations for project virtual
// environments.
package kernel

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nordstat/prosjekt/internal/errs"
	"github.com/nordstat/prosjekt/internal/executor"
)

// Spec describes one installed kernel.
type Spec struct {
	// ResourceDir is the directory holding the kernel's descriptor and
	// assets.
	ResourceDir string
	// Argv is the launch argument vector from the descriptor.
	Argv []string
}

// descriptorFileName is the kernel launch descriptor inside a resource
// directory.
const descriptorFileName = "kernel.json"

// Registry is the explicit handle to the per-user kernel registry. It is
// constructed once per invocation and passed to the components that need it.
type Registry struct {
	dataDir string
	runner  executor.Runner
}

// NewRegistry returns a Registry rooted at the per-user Jupyter data
// directory, honoring JUPYTER_DATA_DIR.
func NewRegistry(runner executor.Runner) (*Registry, error) {
	if dir := os.Getenv("JUPYTER_DATA_DIR"); dir != "" {
		return &Registry{dataDir: dir, runner: runner}, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolving home directory: %w", err)
	}

	return &Registry{
		dataDir: filepath.Join(home, ".local", "share", "jupyter"),
		runner:  runner,
	}, nil
}

// newRegistryAt is the test constructor.
func newRegistryAt(dataDir string, runner executor.Runner) *Registry {
	return &Registry{dataDir: dataDir, runner: runner}
}

// kernelsDir is where kernel resource directories live.
func (r *Registry) kernelsDir() string {
	return filepath.Join(r.dataDir, "kernels")
}

// All lists installed kernels by name.
func (r *Registry) All() (map[string]Spec, error) {
	entries, err := os.ReadDir(r.kernelsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Spec{}, nil
		}
		return nil, errs.NewIO("kernel-list", "An error occurred while looking for installed kernels.", err)
	}

	specs := make(map[string]Spec, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		resourceDir := filepath.Join(r.kernelsDir(), entry.Name())
		spec := Spec{ResourceDir: resourceDir}

		if descriptor, err := readDescriptor(filepath.Join(resourceDir, descriptorFileName)); err == nil {
			spec.Argv = descriptor.argv()
		}

		specs[entry.Name()] = spec
	}

	return specs, nil
}

// Remove deletes a kernel registration by name.
func (r *Registry) Remove(ctx context.Context, name string) error {
	_, err := r.runner.Run(ctx, executor.Command{
		Argv:           []string{"jupyter", "kernelspec", "remove", "-f", name},
		Label:          "kernelspec-remove",
		SuccessMessage: fmt.Sprintf("Deleted Jupyter kernel %s.", name),
		FailureMessage: "Error: Something went wrong while removing the jupyter kernel.",
	})
	return err
}

// descriptor is the kernel launch descriptor. Fields other than argv are
// preserved verbatim across a rewrite.
type descriptor map[string]interface{}

func readDescriptor(path string) (descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var d descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}

	return d, nil
}

func (d descriptor) argv() []string {
	raw, ok := d["argv"].([]interface{})
	if !ok {
		return nil
	}

	argv := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil
		}
		argv = append(argv, s)
	}

	return argv
}

func (d descriptor) write(path string) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
