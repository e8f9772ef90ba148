package hooks

import (
	"context"
	"fmt"
	"sync"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/glorpus-work/blockfetch/pkg/errors"
)

// TengoExecutor compiles and runs Tengo hook scripts.
type TengoExecutor struct {
	scripts map[HookType]string
	mutex   sync.RWMutex
}

// NewTengoExecutor creates a new Tengo script executor.
func NewTengoExecutor() *TengoExecutor {
	return &TengoExecutor{
		scripts: make(map[HookType]string),
	}
}

// Execute runs the script registered for hookType. A missing script is a no-op.
// The script aborts the pipeline by assigning a non-empty string or an error value to err.
func (e *TengoExecutor) Execute(ctx context.Context, hookType HookType, hookCtx HookContext) error {
	e.mutex.RLock()
	script, exists := e.scripts[hookType]
	e.mutex.RUnlock()
	if !exists {
		return nil
	}

	scriptInstance := tengo.NewScript([]byte(script))
	scriptInstance.SetImports(stdlib.GetModuleMap("fmt", "os", "strings", "text", "times"))

	vars := map[string]interface{}{
		"versionId": hookCtx.VersionID,
		"rootDir":   hookCtx.RootDir,
	}
	for k, v := range hookCtx.Vars {
		vars[k] = v
	}
	for k, v := range vars {
		if err := scriptInstance.Add(k, v); err != nil {
			return fmt.Errorf("failed to add variable '%s' to script: %w", k, err)
		}
	}
	// Declared up front so scripts assign err instead of shadowing it.
	if err := scriptInstance.Add("err", ""); err != nil {
		return fmt.Errorf("failed to add variable 'err' to script: %w", err)
	}

	compiled, err := scriptInstance.RunContext(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", hookType, errors.ErrHookExecution, err)
	}

	errVar := compiled.Get("err")
	if errObj, ok := errVar.Object().(*tengo.Error); ok {
		msg, _ := tengo.ToString(errObj.Value)
		return fmt.Errorf("%s: %w: %s", hookType, errors.ErrHookScript, msg)
	}
	if msg, ok := errVar.Value().(string); ok && msg != "" {
		return fmt.Errorf("%s: %w: %s", hookType, errors.ErrHookScript, msg)
	}

	return nil
}

// AddScript adds or replaces the script for hookType.
func (e *TengoExecutor) AddScript(hookType HookType, script string) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.scripts[hookType] = script
}

// RemoveScript removes the script for hookType.
func (e *TengoExecutor) RemoveScript(hookType HookType) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	delete(e.scripts, hookType)
}

// HasScript reports whether a script is registered for hookType.
func (e *TengoExecutor) HasScript(hookType HookType) bool {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	_, exists := e.scripts[hookType]
	return exists
}
