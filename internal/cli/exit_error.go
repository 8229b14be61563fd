package cli

import "fmt"

// ExitError signals a specific exit code without forcing os.Exit inside
// RunE handlers. main unwraps it and exits with Code, which is how run
// and up forward the launched process's exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}
