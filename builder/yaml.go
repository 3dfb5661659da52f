package builder

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/comalice/scxmlgo/internal/document"
	"github.com/comalice/scxmlgo/internal/validator"
)

// YamlMachineSpec is the top-level shape of a YAML chart definition,
// grounded on comalice-maelstrom's registry/statechart YamlMachineSpec: a
// named, versioned machine with a dot-notation state hierarchy. The
// LLM/tool-dispatch action forms that package layers on top of it are
// out of scope here (no hosted agent runtime to dispatch into); Action
// is instead one of this package's own executable-content mini-grammar
// strings, documented on YamlTransition.
type YamlMachineSpec struct {
	Name        string      `yaml:"name"`
	Version     string      `yaml:"version"`
	Description string      `yaml:"description,omitempty"`
	Machine     YamlMachine `yaml:"machine"`
}

// YamlMachine is the machine's root: its id (used as the top-level compound
// state and the qualifying prefix for every nested id), its initial child,
// and its state tree.
type YamlMachine struct {
	ID      string               `yaml:"id"`
	Initial string               `yaml:"initial"`
	States  map[string]YamlState `yaml:"states"`
}

// YamlState is one node of the hierarchy; recursive via States for
// compound/parallel nesting.
type YamlState struct {
	Description string                    `yaml:"description,omitempty"`
	Initial     string                    `yaml:"initial,omitempty"`
	IsParallel  bool                      `yaml:"parallel,omitempty"`
	IsFinal     bool                      `yaml:"final,omitempty"`
	Data        map[string]string         `yaml:"data,omitempty"`  // id -> expr
	OnEntry     []string                  `yaml:"onentry,omitempty"`
	OnExit      []string                  `yaml:"onexit,omitempty"`
	On          map[string]YamlTransition `yaml:"on,omitempty"`
	States      map[string]YamlState      `yaml:"states,omitempty"`
}

// YamlTransition is one outbound edge. Action entries use the mini-grammar
// parseActionString documents: "raise:name", "log:expr", or "loc=expr".
type YamlTransition struct {
	Target  string   `yaml:"target"`
	Cond    string   `yaml:"cond,omitempty"`
	Actions []string `yaml:"actions,omitempty"`
}

// ParseSpec unmarshals YAML bytes into a YamlMachineSpec.
func ParseSpec(data []byte) (*YamlMachineSpec, error) {
	var spec YamlMachineSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("builder: yaml unmarshal: %w", err)
	}
	return &spec, nil
}

// FromYAML parses data as a YamlMachineSpec and builds a document.Document
// from it, following the same dot-notation flattening
// (declareRecursive/configureRecursive) comalice-maelstrom uses to turn a
// YAML hierarchy into qualified state ids.
func FromYAML(data []byte) (*document.Document, *validator.Result, error) {
	spec, err := ParseSpec(data)
	if err != nil {
		return nil, nil, err
	}
	return spec.Build()
}

// Build turns the spec into a document.Document. It returns an error rather
// than panicking if the initial state or any transition target cannot be
// resolved to a declared id — mirroring
// YamlMachineSpec.ToAugmentedMachine's up-front initial-state check.
func (s *YamlMachineSpec) Build() (*document.Document, *validator.Result, error) {
	if _, ok := s.Machine.States[s.Machine.Initial]; s.Machine.Initial != "" && !ok {
		return nil, nil, fmt.Errorf("builder: initial state %q not found", s.Machine.Initial)
	}

	root := s.Machine.ID
	children := buildChildren(s.Machine.States, root)
	initial := root
	if s.Machine.Initial != "" {
		initial = root + "." + s.Machine.Initial
	} else if len(children) > 0 {
		initial = children[0].id
	}

	top := Compound(root, initial, children)
	doc, res, err := Build(s.Name, root, nil, top)
	if err != nil {
		return doc, res, err
	}
	return doc, res, nil
}

func buildChildren(states map[string]YamlState, prefix string) []*Node {
	nodes := make([]*Node, 0, len(states))
	for id, st := range states {
		nodes = append(nodes, buildNode(prefix+"."+id, st))
	}
	return nodes
}

func buildNode(fullpath string, st YamlState) *Node {
	var opts []Option
	for id, expr := range st.Data {
		opts = append(opts, Data(id, expr))
	}
	for _, a := range st.OnEntry {
		opts = append(opts, OnEntry(parseActionString(a)))
	}
	for _, a := range st.OnExit {
		opts = append(opts, OnExit(parseActionString(a)))
	}
	for event, tr := range st.On {
		target := resolveTarget(tr.Target, fullpath)
		var topts []TransOption
		if tr.Cond != "" {
			topts = append(topts, Cond(tr.Cond))
		}
		if len(tr.Actions) > 0 {
			acts := make([]document.Action, 0, len(tr.Actions))
			for _, a := range tr.Actions {
				acts = append(acts, parseActionString(a))
			}
			topts = append(topts, Actions(acts...))
		}
		opts = append(opts, On(event, []string{target}, topts...))
	}

	switch {
	case st.IsFinal:
		return Final(fullpath, opts...)
	case st.IsParallel:
		return Parallel(fullpath, buildChildren(st.States, fullpath), opts...)
	case len(st.States) > 0:
		childInitial := st.Initial
		if childInitial == "" {
			for id := range st.States {
				childInitial = id
				break
			}
		}
		return Compound(fullpath, fullpath+"."+childInitial, buildChildren(st.States, fullpath), opts...)
	default:
		return Atomic(fullpath, opts...)
	}
}

// resolveTarget qualifies a bare target id the way comalice-maelstrom's
// configureRecursive does: a bare one is treated as a sibling of the
// transition's source, and a dotted target is taken as a full path and
// returned unchanged.
func resolveTarget(target, sourceFullpath string) string {
	if strings.Contains(target, ".") {
		return target
	}
	parent := sourceFullpath
	if i := strings.LastIndex(sourceFullpath, "."); i >= 0 {
		parent = sourceFullpath[:i]
	}
	return parent + "." + target
}

// parseActionString turns one of the mini-grammar forms (raise:name,
// log:expr, loc=expr) into an executable Action. An unrecognized string
// becomes a log action so malformed YAML is visible at runtime rather than
// silently dropped.
func parseActionString(s string) document.Action {
	if rest, ok := strings.CutPrefix(s, "raise:"); ok {
		return document.RaiseAction{Event: strings.TrimSpace(rest)}
	}
	if rest, ok := strings.CutPrefix(s, "log:"); ok {
		return document.LogAction{Expr: strings.TrimSpace(rest)}
	}
	if loc, expr, ok := strings.Cut(s, "="); ok {
		return document.AssignAction{Location: strings.TrimSpace(loc), Expr: strings.TrimSpace(expr)}
	}
	return document.LogAction{Label: "builder", Expr: fmt.Sprintf("%q", s)}
}
