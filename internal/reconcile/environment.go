package reconcile

import (
	"fmt"

	"github.com/blackwell-systems/envtrack/internal/envio"
	"github.com/blackwell-systems/envtrack/internal/history"
)

// Environment is a tracked environment: its name, its local directory and
// the loaded action log. History is nil when no log exists yet.
type Environment struct {
	Name    string
	IO      envio.EnvIO
	History *history.History
}

// LoadEnvironment opens the environment's local directory under root and
// reads its action log if present.
func LoadEnvironment(root, name string) (*Environment, error) {
	io := envio.New(envio.EnvDir(root, name))
	h, err := io.ReadHistory()
	if err != nil {
		return nil, err
	}
	return &Environment{Name: name, IO: io, History: h}, nil
}

// MustHistory returns the loaded log or an actionable error when the
// environment has never been tracked.
func (env *Environment) MustHistory() (*history.History, error) {
	if env.History == nil {
		return nil, fmt.Errorf("environment %s is not tracked; run 'envtrack create' or 'envtrack infer' first", env.Name)
	}
	return env.History, nil
}
