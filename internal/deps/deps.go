package deps

import (
	"os/exec"
	"sort"
	"strings"
)

// Tool is an external renderer assetvault shells out to.
type Tool struct {
	Name    string
	Command string
	// Renders lists the thumbnail kinds that need the tool.
	Renders []string
}

// Status reports whether a tool can be run.
type Status struct {
	Tool
	Path  string
	Found bool
	// Problem explains why Found is false.
	Problem string
}

// Resolve looks up every tool on PATH, or as given when the command is a
// path. Results keep the order of tools.
func Resolve(tools []Tool) []Status {
	out := make([]Status, 0, len(tools))
	for _, tool := range tools {
		tool.Command = strings.TrimSpace(tool.Command)
		st := Status{Tool: tool}
		switch path, err := lookup(tool.Command); {
		case tool.Command == "":
			st.Problem = "no command configured"
		case err != nil:
			st.Problem = tool.Command + " not found or not executable"
		default:
			st.Path = path
			st.Found = true
		}
		out = append(out, st)
	}
	return out
}

func lookup(command string) (string, error) {
	if command == "" {
		return "", exec.ErrNotFound
	}
	return exec.LookPath(command)
}

// MissingKinds returns the sorted thumbnail kinds that cannot be rendered
// because none of the tools serving them were found.
func MissingKinds(statuses []Status) []string {
	served := make(map[string]bool)
	for _, st := range statuses {
		for _, kind := range st.Renders {
			served[kind] = served[kind] || st.Found
		}
	}
	var missing []string
	for kind, ok := range served {
		if !ok {
			missing = append(missing, kind)
		}
	}
	sort.Strings(missing)
	return missing
}
