package types

// ActionResult is the outcome of one handler invocation. Handlers never
// panic or return bare errors across their boundary; every code path
// produces one of these.
type ActionResult struct {
	// Success indicates whether the action completed successfully
	Success bool

	// Files lists the paths the action touched, in the VFS's normalized form
	Files []string

	// Message provides additional information about the result
	Message string

	// Error contains the failure when Success is false
	Error error

	// Skipped indicates the action was skipped (falsy condition or
	// skip conflict strategy) rather than executed
	Skipped bool
}

// Failure builds a failed ActionResult carrying err.
func Failure(err error) ActionResult {
	return ActionResult{Success: false, Error: err}
}

// Successf builds a successful ActionResult for the given files.
func Successf(message string, files ...string) ActionResult {
	return ActionResult{Success: true, Message: message, Files: files}
}

// ExecutionResult aggregates the ActionResults of one blueprint run.
type ExecutionResult struct {
	// Blueprint is the name of the module the blueprint belongs to
	Blueprint string

	// Success is true iff no handler reported failure
	Success bool

	// Results holds the per-action outcomes in execution order
	Results []ActionResult

	// Files is the deduplicated, ordered list of touched file paths
	Files []string

	// Errors collects the failure messages of failed actions
	Errors []string
}

// Record appends one action result, folding it into the aggregate state.
func (r *ExecutionResult) Record(res ActionResult) {
	r.Results = append(r.Results, res)
	if !res.Success {
		r.Success = false
		if res.Error != nil {
			r.Errors = append(r.Errors, res.Error.Error())
		}
		return
	}
	for _, f := range res.Files {
		if !containsString(r.Files, f) {
			r.Files = append(r.Files, f)
		}
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
