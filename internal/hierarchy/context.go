package hierarchy

import (
	"fmt"
	"strings"
)

// Level identifies a depth in the context hierarchy.
type Level int

const (
	Studio Level = iota
	Project
	Category
	Entity
)

// levelNames maps Level values to display names.
var levelNames = [...]string{"studio", "project", "category", "entity"}

// String returns the display name of the level.
func (l Level) String() string {
	if l < Studio || l > Entity {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

// Context is a hierarchy key. Empty string means the field is unset.
// The zero Context addresses the studio level.
type Context struct {
	Project  string
	Category string
	Entity   string
}

// InvalidContextError reports a malformed hierarchy key: a field set
// while an earlier one is empty, or too many parts given.
type InvalidContextError struct {
	Message string
}

func (e *InvalidContextError) Error() string {
	return "invalid context: " + e.Message
}

// ParseContext builds a Context from positional parts, padding missing
// trailing levels. More than three parts is an error.
func ParseContext(parts ...string) (Context, error) {
	if len(parts) > 3 {
		return Context{}, &InvalidContextError{
			Message: fmt.Sprintf("at most 3 levels allowed (project category entity), got %d", len(parts)),
		}
	}
	padded := make([]string, 3)
	copy(padded, parts)
	c := Context{Project: padded[0], Category: padded[1], Entity: padded[2]}
	if err := c.Validate(); err != nil {
		return Context{}, err
	}
	return c, nil
}

// Validate checks the left-to-right fill invariant.
func (c Context) Validate() error {
	if c.Category != "" && c.Project == "" {
		return &InvalidContextError{Message: "category set without project"}
	}
	if c.Entity != "" && c.Category == "" {
		return &InvalidContextError{Message: "entity set without category"}
	}
	return nil
}

// Level returns the depth of the most specific set field.
func (c Context) Level() Level {
	switch {
	case c.Entity != "":
		return Entity
	case c.Category != "":
		return Category
	case c.Project != "":
		return Project
	default:
		return Studio
	}
}

// Ancestors returns the context itself plus every prefix obtained by
// clearing trailing fields, most specific first, ending at the studio
// context. The studio context returns just itself.
func (c Context) Ancestors() []Context {
	out := make([]Context, 0, 4)
	out = append(out, c)
	if c.Entity != "" {
		out = append(out, Context{Project: c.Project, Category: c.Category})
	}
	if c.Category != "" {
		out = append(out, Context{Project: c.Project})
	}
	if c.Project != "" {
		out = append(out, Context{})
	}
	return out
}

// String renders the context for display and change-log rows.
func (c Context) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{c.Project, c.Category, c.Entity} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "studio"
	}
	return strings.Join(parts, ",")
}

// Scope narrows which assignments apply. Empty fields are unscoped.
type Scope struct {
	Step     string
	Software string
}

// IsZero reports whether no filter is set.
func (s Scope) IsZero() bool {
	return s.Step == "" && s.Software == ""
}

// String renders the scope for display, e.g. "[step: lighting] (software: maya)".
func (s Scope) String() string {
	step, software := s.Step, s.Software
	if step == "" {
		step = "all"
	}
	if software == "" {
		software = "any"
	}
	return fmt.Sprintf("[step: %s] (software: %s)", step, software)
}
