package types

// ActionType identifies the kind of an action. Actions form a closed tagged
// union: the type tag selects the handler, and only that handler interprets
// the kind-specific fields.
type ActionType string

const (
	ActionCreateFile      ActionType = "CREATE_FILE"
	ActionEnhanceFile     ActionType = "ENHANCE_FILE"
	ActionAddDependency   ActionType = "ADD_DEPENDENCY"
	ActionInstallPackages ActionType = "INSTALL_PACKAGES"
	ActionAddScript       ActionType = "ADD_SCRIPT"
	ActionAddEnvVar       ActionType = "ADD_ENV_VAR"
	ActionRunCommand      ActionType = "RUN_COMMAND"
	ActionAppendFile      ActionType = "APPEND_FILE"
	ActionPrependFile     ActionType = "PREPEND_FILE"
	ActionDeleteFile      ActionType = "DELETE_FILE"
)

// KnownActionTypes lists every action kind the engine ships a handler for.
var KnownActionTypes = []ActionType{
	ActionCreateFile,
	ActionEnhanceFile,
	ActionAddDependency,
	ActionInstallPackages,
	ActionAddScript,
	ActionAddEnvVar,
	ActionRunCommand,
	ActionAppendFile,
	ActionPrependFile,
	ActionDeleteFile,
}

// ConflictStrategy governs CREATE_FILE behavior when the target path
// already has content.
type ConflictStrategy string

const (
	ConflictSkip    ConflictStrategy = "skip"
	ConflictReplace ConflictStrategy = "replace"
	ConflictMerge   ConflictStrategy = "merge"
	ConflictError   ConflictStrategy = "error"
)

// ConflictResolution is attached to CREATE_FILE actions.
type ConflictResolution struct {
	Strategy ConflictStrategy `mapstructure:"strategy" yaml:"strategy"`
	Priority int              `mapstructure:"priority" yaml:"priority"`
}

// MergeInstructions tells CREATE_FILE which modifier to delegate to when the
// conflict strategy is "merge". CREATE_FILE never merges itself; it
// synthesizes an ENHANCE_FILE action from these fields.
type MergeInstructions struct {
	Modifier string                 `mapstructure:"modifier" yaml:"modifier"`
	Params   map[string]interface{} `mapstructure:"params" yaml:"params"`
	Strategy string                 `mapstructure:"strategy" yaml:"strategy"`
}

// Action is one declarative step of a blueprint. Which fields are meaningful
// depends on Type; fields that don't apply are left at their zero value.
type Action struct {
	Type ActionType `mapstructure:"type" yaml:"type"`

	// Condition is a template expression evaluated against the context.
	// Absent means always run; a falsy result skips the action without error.
	Condition string `mapstructure:"condition" yaml:"condition"`

	// Context is a per-action override merged shallowly over the global
	// execution context (array values replace, never merge).
	Context map[string]interface{} `mapstructure:"context" yaml:"context"`

	// ForEach is a dot-path into the context yielding an array. The action
	// fans out into one concrete action per element, with {{item}} (and
	// {{item.field}} for object elements) substituted in every string field.
	ForEach string `mapstructure:"forEach" yaml:"forEach"`

	// Path addresses the target file. PathKey is a symbolic alternative
	// resolved externally to one or more concrete paths.
	Path    string `mapstructure:"path" yaml:"path"`
	PathKey string `mapstructure:"pathKey" yaml:"pathKey"`

	// Content and Template are mutually exclusive content sources for
	// CREATE_FILE. Template names a template inside Module.
	Content  string `mapstructure:"content" yaml:"content"`
	Template string `mapstructure:"template" yaml:"template"`
	Module   string `mapstructure:"module" yaml:"module"`

	ConflictResolution *ConflictResolution `mapstructure:"conflictResolution" yaml:"conflictResolution"`
	MergeInstructions  *MergeInstructions  `mapstructure:"mergeInstructions" yaml:"mergeInstructions"`

	// Modifier and Params drive ENHANCE_FILE. Fallback selects behavior when
	// the target is missing: "create" (default) or "error".
	Modifier string                 `mapstructure:"modifier" yaml:"modifier"`
	Params   map[string]interface{} `mapstructure:"params" yaml:"params"`
	Fallback string                 `mapstructure:"fallback" yaml:"fallback"`

	// Packages and IsDev drive ADD_DEPENDENCY and INSTALL_PACKAGES.
	Packages []string `mapstructure:"packages" yaml:"packages"`
	IsDev    bool     `mapstructure:"isDev" yaml:"isDev"`

	// Name and Command drive ADD_SCRIPT; Command plus Args also drive
	// RUN_COMMAND. WorkingDir overrides the project root for RUN_COMMAND.
	Name       string   `mapstructure:"name" yaml:"name"`
	Command    string   `mapstructure:"command" yaml:"command"`
	Args       []string `mapstructure:"args" yaml:"args"`
	WorkingDir string   `mapstructure:"workingDir" yaml:"workingDir"`

	// Key and Value drive ADD_ENV_VAR.
	Key   string `mapstructure:"key" yaml:"key"`
	Value string `mapstructure:"value" yaml:"value"`
}

// Strategy returns the effective conflict strategy for a CREATE_FILE action.
// The zero value (no resolution block) behaves like "error", matching the
// default branch of the conflict policy.
func (a Action) Strategy() ConflictStrategy {
	if a.ConflictResolution == nil || a.ConflictResolution.Strategy == "" {
		return ConflictError
	}
	return a.ConflictResolution.Strategy
}
