package hooks

import "fmt"

var (
	// ErrHookTypeEmpty is returned when a hook is registered without a type.
	ErrHookTypeEmpty = fmt.Errorf("hook type cannot be empty")
	// ErrUnsupportedHookEvent is returned for hook types outside HookTypes.
	ErrUnsupportedHookEvent = fmt.Errorf("unsupported hook event")
)
