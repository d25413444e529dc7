package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/harrisonrobin/asanalink/pkg/model"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Input names, as declared by the action and set by the runner.
const (
	InputAsanaPAT      = "asana-pat"
	InputAction        = "action"
	InputTriggerPhrase = "trigger-phrase"
	InputGitHubToken   = "github-token"
	InputLinkRequired  = "link-required"
	InputCommentID     = "comment-id"
	InputText          = "text"
	InputIsPinned      = "is-pinned"
	InputIsComplete    = "is-complete"
	InputTargets       = "targets"
)

// Action names.
const (
	ActionAssertLink    = "assert-link"
	ActionAddComment    = "add-comment"
	ActionRemoveComment = "remove-comment"
	ActionCompleteTask  = "complete-task"
	ActionMoveSection   = "move-section"
	ActionUpdateStatus  = "update-status"
)

var (
	// ErrMissingInput is returned when a required input is empty.
	ErrMissingInput = errors.New("input required and not supplied")
	// ErrInvalidTargets is returned when the targets input cannot be used.
	ErrInvalidTargets = errors.New("invalid targets")
)

var inputs = []struct {
	name  string
	usage string
}{
	{InputAsanaPAT, "Asana personal access token"},
	{InputAction, "action to run: assert-link, add-comment, remove-comment, complete-task, move-section, update-status"},
	{InputTriggerPhrase, "text that must precede the Asana task URL"},
	{InputGitHubToken, "GitHub token used to post the commit status (assert-link)"},
	{InputLinkRequired, `"true" if the pull request must link an Asana task (assert-link)`},
	{InputCommentID, "marker used to find the comment again (add-comment, remove-comment)"},
	{InputText, "comment text (add-comment)"},
	{InputIsPinned, `"true" to pin the comment (add-comment)`},
	{InputIsComplete, `"true" to mark tasks complete, anything else marks them incomplete (complete-task)`},
	{InputTargets, `JSON array of {"project","section"} or {"status"} objects (move-section, update-status)`},
}

// Config holds the inputs of one invocation.
type Config struct {
	AsanaPAT      string
	Action        string
	TriggerPhrase string
	GitHubToken   string
	LinkRequired  bool
	CommentID     string
	Text          string
	IsPinned      bool
	IsComplete    bool
	Targets       []model.Target
}

// EnvKey returns the environment variable the runner uses for an input.
func EnvKey(input string) string {
	return "INPUT_" + strings.ToUpper(strings.ReplaceAll(input, " ", "_"))
}

// Bind registers every input with v. Each input is read from its INPUT_*
// variable and, when flags is non-nil, from a flag of the same name, which
// takes precedence.
func Bind(v *viper.Viper, flags *pflag.FlagSet) error {
	for _, in := range inputs {
		if err := v.BindEnv(in.name, EnvKey(in.name)); err != nil {
			return fmt.Errorf("failed to bind %s: %w", in.name, err)
		}
		if flags == nil {
			continue
		}
		if flags.Lookup(in.name) == nil {
			flags.String(in.name, "", in.usage)
		}
		if err := v.BindPFlag(in.name, flags.Lookup(in.name)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", in.name, err)
		}
	}
	return nil
}

// Load reads and validates the inputs bound to v.
func Load(v *viper.Viper) (*Config, error) {
	get := func(name string) string { return strings.TrimSpace(v.GetString(name)) }

	cfg := &Config{
		AsanaPAT:      get(InputAsanaPAT),
		Action:        get(InputAction),
		TriggerPhrase: get(InputTriggerPhrase),
		GitHubToken:   get(InputGitHubToken),
		LinkRequired:  get(InputLinkRequired) == "true",
		CommentID:     get(InputCommentID),
		Text:          get(InputText),
		IsPinned:      get(InputIsPinned) == "true",
		IsComplete:    get(InputIsComplete) == "true",
	}

	required := []string{InputAsanaPAT, InputAction}
	switch cfg.Action {
	case ActionAssertLink:
		required = append(required, InputGitHubToken, InputLinkRequired)
	case ActionAddComment:
		required = append(required, InputText)
	case ActionRemoveComment:
		required = append(required, InputCommentID)
	case ActionMoveSection, ActionUpdateStatus:
		required = append(required, InputTargets)
	}
	for _, name := range required {
		if get(name) == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingInput, name)
		}
	}

	if raw := get(InputTargets); raw != "" {
		targets, err := ParseTargets(raw)
		if err != nil {
			return nil, err
		}
		cfg.Targets = targets
	}

	if err := cfg.validateTargets(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseTargets decodes the targets input.
func ParseTargets(raw string) ([]model.Target, error) {
	var targets []model.Target
	if err := json.Unmarshal([]byte(raw), &targets); err != nil {
		return nil, fmt.Errorf("%w: failed to decode %s: %v", ErrInvalidTargets, InputTargets, err)
	}
	return targets, nil
}

func (c *Config) validateTargets() error {
	switch c.Action {
	case ActionMoveSection:
		if len(c.Targets) == 0 {
			return fmt.Errorf("%w: %s needs at least one target", ErrInvalidTargets, c.Action)
		}
		for i, t := range c.Targets {
			if t.Project == "" || t.Section == "" {
				return fmt.Errorf("%w: target %d needs both project and section", ErrInvalidTargets, i)
			}
		}
	case ActionUpdateStatus:
		if len(c.Targets) == 0 || c.Targets[0].Status == "" {
			return fmt.Errorf("%w: %s needs a status in the first target", ErrInvalidTargets, c.Action)
		}
	}
	return nil
}
