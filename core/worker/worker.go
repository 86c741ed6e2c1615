package worker

import "context"

// Worker is a long running module process started by the run command.
type Worker interface {
	// Run blocks until ctx is done or Shutdown is called.
	Run(ctx context.Context) error
	Shutdown() error
}
