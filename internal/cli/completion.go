package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/agbru/lasercalc/internal/params"
)

// FlagCompletion describes a CLI flag for shell completion generation.
// All shell completion functions generate from flagRegistry.
type FlagCompletion struct {
	Long      string   // long flag name without "--" (e.g., "help")
	Short     string   // short flag without "-" (e.g., "h")
	Help      string   // description text
	Values    []string // suggested completion values (nil = boolean/no suggestions)
	ValueName string   // label for the value in zsh (e.g., "number", "duration")
	IsFile    bool     // true if the flag takes a file path
}

// staticFlags lists every flag that is not a machine parameter.
var staticFlags = []FlagCompletion{
	{Long: "help", Short: "h", Help: "Show help message"},
	{Long: "version", Short: "V", Help: "Show version information"},
	{Long: "file", Short: "f", Help: "SVG drawing to estimate", IsFile: true, ValueName: "file"},
	{Long: "url", Help: "Root URL of the estimation service", ValueName: "url"},
	{Long: "timeout", Help: "Maximum time for one request", Values: []string{"10s", "30s", "1m", "5m"}, ValueName: "duration"},
	{Long: "json", Help: "Print the report as JSON"},
	{Long: "quiet", Short: "q", Help: "Print only the total time"},
	{Long: "tui", Help: "Start the interactive dashboard"},
	{Long: "check", Help: "Check that the service is reachable"},
	{Long: "log-level", Help: "Log level", Values: []string{"debug", "info", "warn", "error"}, ValueName: "level"},
	{Long: "log-file", Help: "File receiving logs in TUI mode", IsFile: true, ValueName: "file"},
	{Long: "metrics-addr", Help: "Address for the local status endpoint", ValueName: "address"},
	{Long: "no-color", Help: "Disable colored output"},
	{Long: "env-file", Help: "Dotenv file with LASERCALC_* settings", IsFile: true, ValueName: "file"},
	{Long: "completion", Help: "Generate completion script", Values: []string{"bash", "zsh", "fish"}, ValueName: "shell"},
}

// flagRegistry returns the static flags followed by one flag per machine
// parameter, in the order the dashboard lists them.
func flagRegistry() []FlagCompletion {
	flags := append([]FlagCompletion(nil), staticFlags...)
	for _, spec := range params.Specs() {
		flags = append(flags, FlagCompletion{
			Long:      spec.Field.FlagName(),
			Help:      fmt.Sprintf("%s (%s)", spec.Label, spec.Unit),
			ValueName: "number",
		})
	}
	return flags
}

// GenerateCompletion writes a completion script for shell ("bash", "zsh" or
// "fish") to out.
func GenerateCompletion(out io.Writer, program, shell string) error {
	switch shell {
	case "bash":
		return generateBashCompletion(out, program)
	case "zsh":
		return generateZshCompletion(out, program)
	case "fish":
		return generateFishCompletion(out, program)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish)", shell)
	}
}

// generateBashCompletion generates a Bash completion script.
func generateBashCompletion(out io.Writer, program string) error {
	flags := flagRegistry()
	var opts []string
	for _, f := range flags {
		if f.Long != "" {
			opts = append(opts, "--"+f.Long)
		}
		if f.Short != "" {
			opts = append(opts, "-"+f.Short)
		}
	}

	var caseBody strings.Builder
	writeCase := func(patterns []string, body string) {
		caseBody.WriteString("        ")
		caseBody.WriteString(strings.Join(patterns, "|"))
		caseBody.WriteString(")\n            ")
		caseBody.WriteString(body)
		caseBody.WriteString("\n            return 0\n            ;;\n")
	}

	var filePatterns []string
	for _, f := range flags {
		if !f.IsFile {
			continue
		}
		filePatterns = append(filePatterns, "--"+f.Long)
		if f.Short != "" {
			filePatterns = append(filePatterns, "-"+f.Short)
		}
	}
	writeCase(filePatterns, `COMPREPLY=( $(compgen -f -- "${cur}") )`)
	for _, f := range flags {
		if len(f.Values) > 0 {
			writeCase([]string{"--" + f.Long},
				fmt.Sprintf(`COMPREPLY=( $(compgen -W "%s" -- "${cur}") )`, strings.Join(f.Values, " ")))
		}
	}

	fn := "_" + shellIdent(program) + "_completions"
	script := fmt.Sprintf(`# Bash completion script for %[1]s
# Add this to your ~/.bashrc or ~/.bash_completion

%[2]s() {
    local cur prev opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    opts="%[3]s"

    case "${prev}" in
%[4]s    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
        return 0
    fi
    COMPREPLY=( $(compgen -f -X '!*.svg' -- "${cur}") )
}

complete -o plusdirs -F %[2]s %[1]s
`, program, fn, strings.Join(opts, " "), caseBody.String())

	if _, err := fmt.Fprint(out, script); err != nil {
		return fmt.Errorf("completion bash generation failed: %w", err)
	}
	return nil
}

// generateZshCompletion generates a Zsh completion script.
func generateZshCompletion(out io.Writer, program string) error {
	var args []string
	for _, f := range flagRegistry() {
		args = append(args, zshArgEntry(f))
	}
	args = append(args, "        '*:drawing:_files -g \"*.svg\"'")

	fn := "_" + shellIdent(program)
	script := fmt.Sprintf(`#compdef %[1]s

# Zsh completion script for %[1]s
# Add this to your ~/.zshrc or place in $fpath

%[2]s() {
    _arguments -s \
%[3]s
}

%[2]s "$@"
`, program, fn, strings.Join(args, " \\\n"))

	if _, err := fmt.Fprint(out, script); err != nil {
		return fmt.Errorf("completion zsh generation failed: %w", err)
	}
	return nil
}

// zshArgEntry formats a single FlagCompletion as a zsh _arguments entry.
func zshArgEntry(f FlagCompletion) string {
	valueSuffix := ""
	switch {
	case f.IsFile:
		valueSuffix = fmt.Sprintf(":%s:_files", f.ValueName)
	case len(f.Values) > 0:
		valueSuffix = fmt.Sprintf(":%s:(%s)", f.ValueName, strings.Join(f.Values, " "))
	case f.ValueName != "":
		valueSuffix = fmt.Sprintf(":%s:", f.ValueName)
	}

	if f.Short != "" {
		return fmt.Sprintf("        '(-%s --%s)'{-%s,--%s}'[%s]%s'",
			f.Short, f.Long, f.Short, f.Long, f.Help, valueSuffix)
	}
	return fmt.Sprintf("        '--%s[%s]%s'", f.Long, f.Help, valueSuffix)
}

// generateFishCompletion generates a Fish completion script.
func generateFishCompletion(out io.Writer, program string) error {
	lines := []string{
		"# Fish completion script for " + program,
		fmt.Sprintf("# Add this to ~/.config/fish/completions/%s.fish", program),
		"",
		"# Drawings",
		fmt.Sprintf("complete -c %s -k -xa '(__fish_complete_suffix .svg)'", program),
		"",
		"# Options",
	}
	for _, f := range flagRegistry() {
		lines = append(lines, fishCompleteLine(program, f))
	}
	lines = append(lines, "")

	if _, err := fmt.Fprint(out, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("completion fish generation failed: %w", err)
	}
	return nil
}

// fishCompleteLine formats a single FlagCompletion as a fish complete command.
func fishCompleteLine(program string, f FlagCompletion) string {
	parts := []string{"complete -c " + program}
	if f.Short != "" {
		parts = append(parts, "-s "+f.Short)
	}
	parts = append(parts, "-l "+f.Long)
	parts = append(parts, fmt.Sprintf("-d '%s'", f.Help))

	switch {
	case f.IsFile:
		parts = append(parts, "-rF")
	case len(f.Values) > 0:
		parts = append(parts, fmt.Sprintf("-xa '%s'", strings.Join(f.Values, " ")))
	case f.ValueName != "":
		parts = append(parts, "-x")
	}
	return strings.Join(parts, " ")
}

// shellIdent turns a program name into a valid shell function name.
func shellIdent(program string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, program)
}
