// Package rules compiles declarative rule definitions into implicators.
//
// Each "when" template is a condition: the implicator is cancelled unless it
// renders "true". The "set" templates form the producer, one per output
// type. Templates see the declared inputs by type name and the entity id as
// .ID. Referencing any other type is an undeclared read, which makes the rule
// not applicable.
package rules

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"text/template"
	"text/template/parse"

	"github.com/aretw0/implicate/internal/config"
	"github.com/aretw0/implicate/internal/runtime"
	"github.com/aretw0/implicate/pkg/domain"
)

// ErrInvalidRule is returned by Compile for definitions that cannot be registered.
var ErrInvalidRule = errors.New("invalid rule")

// Registrar is the registration half of a registry.
type Registrar interface {
	Imply(inputTypes, outputTypes []string, fns ...domain.RuleFunc) (*runtime.Implicator, error)
}

// Compiled is a rule definition turned into rule functions.
type Compiled struct {
	Def       config.RuleDef
	Functions []domain.RuleFunc
}

// Funcs are the helpers available inside rule templates.
var Funcs = template.FuncMap{
	"ext": func(path string) string {
		return strings.TrimPrefix(filepath.Ext(path), ".")
	},
	"base":  filepath.Base,
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
	"trim":  strings.TrimSpace,
}

// Compile parses every template of defs.
func Compile(defs []config.RuleDef) ([]Compiled, error) {
	compiled := make([]Compiled, 0, len(defs))
	for i, def := range defs {
		c, err := compileOne(def)
		if err != nil {
			name := def.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return nil, fmt.Errorf("rule %s: %w", name, err)
		}
		compiled = append(compiled, c)
	}
	return compiled, nil
}

// Register compiles defs and registers them in order.
func Register(reg Registrar, defs []config.RuleDef) ([]*runtime.Implicator, error) {
	compiled, err := Compile(defs)
	if err != nil {
		return nil, err
	}

	imps := make([]*runtime.Implicator, 0, len(compiled))
	for _, c := range compiled {
		imp, err := reg.Imply(c.Def.Inputs, c.Def.Outputs, c.Functions...)
		if err != nil {
			return nil, err
		}
		imps = append(imps, imp)
	}
	return imps, nil
}

func compileOne(def config.RuleDef) (Compiled, error) {
	if len(def.Outputs) == 0 {
		return Compiled{}, fmt.Errorf("%w: no outputs", ErrInvalidRule)
	}
	if len(def.Set) == 0 {
		return Compiled{}, fmt.Errorf("%w: no set templates", ErrInvalidRule)
	}
	for typ := range def.Set {
		if !slices.Contains(def.Outputs, typ) {
			return Compiled{}, fmt.Errorf("%w: set %q is not a declared output", ErrInvalidRule, typ)
		}
	}

	var fns []domain.RuleFunc
	for i, src := range def.When {
		tmpl, err := parseTemplate(fmt.Sprintf("when[%d]", i), src)
		if err != nil {
			return Compiled{}, err
		}
		fns = append(fns, condition(tmpl, def.Inputs))
	}

	// Producer writes in declared output order
	var setters []setter
	for _, typ := range def.Outputs {
		src, ok := def.Set[typ]
		if !ok {
			continue
		}
		tmpl, err := parseTemplate("set."+typ, src)
		if err != nil {
			return Compiled{}, err
		}
		setters = append(setters, setter{typ: typ, tmpl: tmpl})
	}
	fns = append(fns, producer(setters, def.Inputs))

	return Compiled{Def: def, Functions: fns}, nil
}

type setter struct {
	typ  string
	tmpl *ruleTemplate
}

// ruleTemplate is a parsed template and the data keys it reads from the root.
type ruleTemplate struct {
	*template.Template
	refs []string
}

func parseTemplate(name, src string) (*ruleTemplate, error) {
	tmpl, err := template.New(name).Funcs(Funcs).Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRule, name, err)
	}
	return &ruleTemplate{Template: tmpl, refs: rootFields(tmpl.Tree.Root)}, nil
}

// rootFields lists the fields read from the template's root data, in order
// of appearance: .Name where dot is the root, and $.Name anywhere.
func rootFields(root *parse.ListNode) []string {
	var names []string
	add := func(name string) {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}

	var walk func(node parse.Node, atRoot bool)
	walkList := func(list *parse.ListNode, atRoot bool) {
		if list == nil {
			return
		}
		for _, n := range list.Nodes {
			walk(n, atRoot)
		}
	}
	walkPipe := func(pipe *parse.PipeNode, atRoot bool) {
		if pipe == nil {
			return
		}
		for _, cmd := range pipe.Cmds {
			walk(cmd, atRoot)
		}
	}
	walk = func(node parse.Node, atRoot bool) {
		switch n := node.(type) {
		case *parse.ActionNode:
			walkPipe(n.Pipe, atRoot)
		case *parse.PipeNode:
			walkPipe(n, atRoot)
		case *parse.CommandNode:
			for _, arg := range n.Args {
				walk(arg, atRoot)
			}
		case *parse.ChainNode:
			walk(n.Node, atRoot)
		case *parse.FieldNode:
			if atRoot {
				add(n.Ident[0])
			}
		case *parse.VariableNode:
			if n.Ident[0] == "$" && len(n.Ident) > 1 {
				add(n.Ident[1])
			}
		case *parse.IfNode:
			walkPipe(n.Pipe, atRoot)
			walkList(n.List, atRoot)
			walkList(n.ElseList, atRoot)
		case *parse.RangeNode:
			walkPipe(n.Pipe, atRoot)
			walkList(n.List, false)
			walkList(n.ElseList, atRoot)
		case *parse.WithNode:
			walkPipe(n.Pipe, atRoot)
			walkList(n.List, false)
			walkList(n.ElseList, atRoot)
		case *parse.TemplateNode:
			walkPipe(n.Pipe, atRoot)
		}
	}
	walkList(root, true)
	return names
}

func condition(tmpl *ruleTemplate, inputs []string) domain.RuleFunc {
	return func(ctx context.Context, s domain.Scope) error {
		out, err := render(tmpl, s, inputs)
		if err != nil {
			return err
		}
		if strings.TrimSpace(out) != "true" {
			s.Cancel()
		}
		return nil
	}
}

func producer(setters []setter, inputs []string) domain.RuleFunc {
	return func(ctx context.Context, s domain.Scope) error {
		for _, st := range setters {
			out, err := render(st.tmpl, s, inputs)
			if err != nil {
				return err
			}
			s.Put(st.typ, out)
		}
		return nil
	}
}

func render(tmpl *ruleTemplate, s domain.Scope, inputs []string) (string, error) {
	data := map[string]any{"ID": s.ID()}
	for _, typ := range inputs {
		v, err := s.Get(typ)
		if err != nil {
			return "", err
		}
		data[typ] = v
	}
	// Undeclared references go through the scope so they disqualify the rule
	for _, ref := range tmpl.refs {
		if _, ok := data[ref]; ok {
			continue
		}
		if _, err := s.Get(ref); err != nil {
			return "", err
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
