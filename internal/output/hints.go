package output

import (
	"fmt"
	"strings"
)

// CommandHints maps command names to related commands users might want to run next
var CommandHints = map[string][]string{
	"news":            {"results", "schedule"},
	"results":         {"medals", "schedule --status finalizado"},
	"schedule":        {"results", "medals"},
	"medals":          {"results"},
	"login":           {"whoami", "admin dashboard"},
	"logout":          {"login"},
	"whoami":          {"admin dashboard", "logout"},
	"admin dashboard": {"admin list <kind>", "admin create <kind>"},
	"admin list":      {"admin edit <kind> <id>", "admin delete <kind> <id>"},
	"admin create":    {"admin list <kind>"},
	"admin edit":      {"admin list <kind>"},
	"admin delete":    {"admin list <kind>"},
	"admin fields":    {"admin create <kind>"},
	"config":          {"login", "admin settings"},
}

// PrintHints prints "See also" hints for a command. No-op in quiet mode or if command has no hints.
func (p *Printer) PrintHints(command string) {
	if p.quiet {
		return
	}
	hints, ok := CommandHints[command]
	if !ok || len(hints) == 0 {
		return
	}

	cmds := make([]string, len(hints))
	for i, h := range hints {
		cmds[i] = "jifmactl " + h
	}
	fmt.Fprintf(p.out, "\nSee also: %s\n", strings.Join(cmds, ", "))
}
