package hooks

import "context"

// HookType represents the point in the install pipeline a hook runs at.
type HookType string

// Supported hook types.
const (
	// PostResolve runs after requirements were collected and before any download starts.
	PostResolve HookType = "post-resolve"
	// PostDownload runs once every download task reached a terminal state.
	PostDownload HookType = "post-download"
)

// HookTypes lists the supported hook types in pipeline order.
func HookTypes() []HookType {
	return []HookType{PostResolve, PostDownload}
}

// Hook represents a hook script with its type and content.
type Hook struct {
	Type    HookType
	Content string
}

// HookContext contains the variables exposed to a hook script.
type HookContext struct {
	VersionID string
	RootDir   string
	Vars      map[string]interface{}
}

// PostResolveContext builds the context for a post-resolve hook.
func PostResolveContext(versionID, rootDir string, requirements int) HookContext {
	return HookContext{
		VersionID: versionID,
		RootDir:   rootDir,
		Vars:      map[string]interface{}{"requirements": requirements},
	}
}

// PostDownloadContext builds the context for a post-download hook.
func PostDownloadContext(versionID, rootDir string, completed, failed int) HookContext {
	return HookContext{
		VersionID: versionID,
		RootDir:   rootDir,
		Vars: map[string]interface{}{
			"completed": completed,
			"failed":    failed,
		},
	}
}

// HookManager defines the interface for managing hooks.
type HookManager interface {
	// Execute runs the hook of the given type, if any.
	Execute(ctx context.Context, hookType HookType, hookCtx HookContext) error

	AddHook(hook Hook) error
	RemoveHook(hookType HookType) error
	HasHook(hookType HookType) bool
}
