package workspace

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrUnknownScript is returned for alias names the project doesn't declare.
var ErrUnknownScript = eris.New("unknown script")

// Script is a named command alias from [tool.rye.scripts] or [tool.omuws.scripts].
type Script struct {
	Name string
	// Line is a shell command line. Either Line, Args or Chain is set.
	Line string
	Args []string
	// Chain lists other scripts that are run in order.
	Chain   []string
	Env     map[string]string
	EnvFile string
}

func (s *Script) String() string {
	switch {
	case len(s.Chain) > 0:
		return "chain: " + strings.Join(s.Chain, ", ")
	case len(s.Args) > 0:
		return strings.Join(s.Args, " ")
	default:
		return s.Line
	}
}

func toStringSlice(value interface{}, field string) ([]string, error) {
	items, ok := value.([]interface{})
	if !ok {
		return nil, eris.Errorf("expected %s to be an array but found %T", field, value)
	}

	result := make([]string, 0, len(items))
	for _, item := range items {
		str, ok := item.(string)
		if !ok {
			return nil, eris.Errorf("expected all items in %s to be strings but found %T", field, item)
		}
		result = append(result, str)
	}

	return result, nil
}

// callArgs turns a "module:function" reference into a python invocation.
func callArgs(ref string) []string {
	module, fn, found := strings.Cut(ref, ":")
	if !found {
		return []string{"python", "-m", module}
	}

	if !strings.Contains(fn, "(") {
		fn += "()"
	}

	return []string{"python", "-c", fmt.Sprintf("import sys, %s; sys.exit(%s.%s)", module, module, fn)}
}

func parseScript(name string, raw interface{}) (*Script, error) {
	script := &Script{Name: name, Env: map[string]string{}}

	switch value := raw.(type) {
	case string:
		script.Line = value
	case []interface{}:
		args, err := toStringSlice(value, name)
		if err != nil {
			return nil, err
		}
		script.Args = args
	case map[string]interface{}:
		for key, item := range value {
			var err error

			switch key {
			case "cmd":
				switch cmd := item.(type) {
				case string:
					script.Line = cmd
				default:
					script.Args, err = toStringSlice(cmd, name+".cmd")
				}
			case "chain":
				script.Chain, err = toStringSlice(item, name+".chain")
			case "call":
				ref, ok := item.(string)
				if !ok {
					return nil, eris.Errorf("%s.call must be a string", name)
				}
				script.Args = callArgs(ref)
			case "env-file":
				path, ok := item.(string)
				if !ok {
					return nil, eris.Errorf("%s.env-file must be a string", name)
				}
				script.EnvFile = path
			case "env":
				env, ok := item.(map[string]interface{})
				if !ok {
					return nil, eris.Errorf("%s.env must be a table", name)
				}
				for envKey, envValue := range env {
					script.Env[envKey] = fmt.Sprint(envValue)
				}
			default:
				return nil, eris.Errorf("unexpected key %s in script %s", key, name)
			}

			if err != nil {
				return nil, err
			}
		}
	default:
		return nil, eris.Errorf("script %s has unsupported type %T", name, raw)
	}

	if script.Line == "" && len(script.Args) == 0 && len(script.Chain) == 0 {
		return nil, eris.Errorf("script %s doesn't define a command", name)
	}

	return script, nil
}

// parseScripts merges the given script tables. Later tables override earlier ones.
func parseScripts(tables ...map[string]interface{}) (map[string]*Script, error) {
	result := map[string]*Script{}
	for _, table := range tables {
		for name, raw := range table {
			script, err := parseScript(name, raw)
			if err != nil {
				return nil, err
			}
			result[name] = script
		}
	}

	return result, nil
}

// Script looks up a script alias by name.
func (p *Project) Script(name string) (*Script, error) {
	script, ok := p.scripts[name]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownScript, "%s (available: %s)", name, strings.Join(p.ScriptNames(), ", "))
	}

	return script, nil
}

// ScriptNames returns the declared aliases in lexical order.
func (p *Project) ScriptNames() []string {
	names := make([]string, 0, len(p.scripts))
	for name := range p.scripts {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
