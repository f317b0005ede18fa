// Package shell provides the in-process POSIX shell behind the console
// prompt, with a policy hook that refuses commands the console cannot host.
package shell

import "strings"

// BlockFunc returns true if the given command args should be blocked.
type BlockFunc func(args []string) bool

// CommandsBlocker returns a BlockFunc that blocks exact command name matches.
func CommandsBlocker(cmds []string) BlockFunc {
	blocked := make(map[string]struct{}, len(cmds))
	for _, c := range cmds {
		blocked[c] = struct{}{}
	}
	return func(args []string) bool {
		if len(args) == 0 {
			return false
		}
		_, ok := blocked[args[0]]
		return ok
	}
}

// ArgumentsBlocker returns a BlockFunc that blocks a command when specific
// subcommand args and/or flags are present.
//
// For example, ArgumentsBlocker("npm", []string{"install"}, []string{"-g"})
// blocks "npm install -g <pkg>" but allows "npm install <pkg>".
func ArgumentsBlocker(cmd string, subArgs, flags []string) BlockFunc {
	return func(args []string) bool {
		if len(args) == 0 || args[0] != cmd {
			return false
		}
		posArgs, posFlags := splitArgsFlags(args[1:])
		if !prefixMatch(posArgs, subArgs) {
			return false
		}
		if len(flags) > 0 && !flagsPresent(posFlags, flags) {
			return false
		}
		return true
	}
}

// splitArgsFlags separates positional arguments from flags (anything
// starting with '-').
func splitArgsFlags(args []string) (positional, flags []string) {
	for _, a := range args {
		if strings.HasPrefix(a, "-") {
			flags = append(flags, a)
		} else {
			positional = append(positional, a)
		}
	}
	return
}

// prefixMatch returns true if haystack starts with all elements of needle.
func prefixMatch(haystack, needle []string) bool {
	if len(haystack) < len(needle) {
		return false
	}
	for i, n := range needle {
		if haystack[i] != n {
			return false
		}
	}
	return true
}

// flagsPresent returns true if all required flags appear in the actual flags.
func flagsPresent(actual, required []string) bool {
	have := make(map[string]struct{}, len(actual))
	for _, f := range actual {
		have[f] = struct{}{}
	}
	for _, r := range required {
		if _, ok := have[r]; !ok {
			return false
		}
	}
	return true
}

// TerminalCommands need a terminal the console does not provide: full
// screen programs, pagers, and tools that prompt for a password on the
// tty. Without stdin they would hang or draw escape codes into the
// scrollback.
var TerminalCommands = []string{
	// Editors and pagers
	"vi", "vim", "nvim", "nano", "emacs", "micro", "hx",
	"less", "more", "most", "man",
	// Full-screen monitors
	"top", "htop", "btop", "watch", "tmux", "screen",
	// Password prompts on the tty
	"doas", "su", "sudo", "passwd", "ssh", "sftp", "telnet",
}

// REPLCommands are interpreters that only need a terminal when started
// without arguments.
var REPLCommands = []string{
	"bash", "sh", "zsh", "fish", "dash", "ksh",
	"python", "python3", "node", "irb", "ghci", "lua", "sqlite3",
}

// BareCommandBlocker returns a BlockFunc that blocks the given commands
// only when they are run with no arguments at all.
func BareCommandBlocker(cmds []string) BlockFunc {
	inner := CommandsBlocker(cmds)
	return func(args []string) bool {
		return len(args) == 1 && inner(args)
	}
}

// DefaultBlockFuncs returns the standard set of block functions.
func DefaultBlockFuncs() []BlockFunc {
	return []BlockFunc{
		CommandsBlocker(TerminalCommands),
		BareCommandBlocker(REPLCommands),
		// Subcommands that open an editor or pager.
		ArgumentsBlocker("git", []string{"rebase"}, []string{"-i"}),
		ArgumentsBlocker("git", []string{"add"}, []string{"-p"}),
		ArgumentsBlocker("crontab", nil, []string{"-e"}),
	}
}

// BlockFuncs returns the default block functions plus extra command names,
// typically from configuration.
func BlockFuncs(extra []string) []BlockFunc {
	funcs := DefaultBlockFuncs()
	if len(extra) > 0 {
		funcs = append(funcs, CommandsBlocker(extra))
	}
	return funcs
}
