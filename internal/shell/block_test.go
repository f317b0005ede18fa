package shell

import "testing"

func TestCommandsBlocker(t *testing.T) {
	blocker := CommandsBlocker([]string{"curl", "wget", "sudo"})

	tests := []struct {
		args    []string
		blocked bool
	}{
		{[]string{"curl", "http://example.com"}, true},
		{[]string{"wget", "-q", "http://example.com"}, true},
		{[]string{"sudo", "rm", "-rf", "/"}, true},
		{[]string{"ls", "-la"}, false},
		{[]string{"go", "build"}, false},
		{[]string{}, false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := blocker(tt.args); got != tt.blocked {
			t.Errorf("CommandsBlocker(%v) = %v, want %v", tt.args, got, tt.blocked)
		}
	}
}

func TestArgumentsBlocker(t *testing.T) {
	tests := []struct {
		name    string
		cmd     string
		sub     []string
		flags   []string
		args    []string
		blocked bool
	}{
		{"npm install -g", "npm", []string{"install"}, []string{"-g"}, []string{"npm", "install", "-g", "typescript"}, true},
		{"npm install local", "npm", []string{"install"}, []string{"-g"}, []string{"npm", "install", "lodash"}, false},
		{"npm run", "npm", []string{"install"}, []string{"-g"}, []string{"npm", "run", "test"}, false},
		{"different cmd", "npm", []string{"install"}, []string{"-g"}, []string{"yarn", "install", "-g"}, false},
		{"no flags required", "pip", []string{"install"}, nil, []string{"pip", "install", "requests"}, true},
		{"go test -exec", "go", []string{"test"}, []string{"-exec"}, []string{"go", "test", "-exec", "echo", "./..."}, true},
		{"go test normal", "go", []string{"test"}, []string{"-exec"}, []string{"go", "test", "-v", "./..."}, false},
		{"empty args", "npm", []string{"install"}, []string{"-g"}, []string{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocker := ArgumentsBlocker(tt.cmd, tt.sub, tt.flags)
			if got := blocker(tt.args); got != tt.blocked {
				t.Errorf("ArgumentsBlocker(%q, %v, %v)(%v) = %v, want %v",
					tt.cmd, tt.sub, tt.flags, tt.args, got, tt.blocked)
			}
		})
	}
}

func TestBareCommandBlocker(t *testing.T) {
	blocker := BareCommandBlocker([]string{"python3"})
	tests := []struct {
		args    []string
		blocked bool
	}{
		{[]string{"python3"}, true},
		{[]string{"python3", "script.py"}, false},
		{[]string{"python3", "-c", "print(1)"}, false},
		{[]string{"ls"}, false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := blocker(tt.args); got != tt.blocked {
			t.Errorf("BareCommandBlocker(%v) = %v, want %v", tt.args, got, tt.blocked)
		}
	}
}

func blockedBy(blockers []BlockFunc, args []string) bool {
	for _, bf := range blockers {
		if bf(args) {
			return true
		}
	}
	return false
}

func TestDefaultBlockFuncs(t *testing.T) {
	blockers := DefaultBlockFuncs()

	mustBlock := [][]string{
		{"vim", "main.go"},
		{"less", "README.md"},
		{"top"},
		{"sudo", "ls"},
		{"ssh", "user@host"},
		{"bash"},
		{"python3"},
		{"git", "rebase", "-i", "HEAD~3"},
		{"git", "add", "-p"},
		{"crontab", "-e"},
	}
	mustAllow := [][]string{
		{"ls", "-la"},
		{"go", "build", "./..."},
		{"make", "build"},
		{"git", "status"},
		{"git", "commit", "-m", "msg"},
		{"git", "rebase", "main"},
		{"bash", "-c", "echo hi"},
		{"python3", "script.py"},
		{"crontab", "-l"},
	}

	for _, args := range mustBlock {
		if !blockedBy(blockers, args) {
			t.Errorf("expected %v to be blocked", args)
		}
	}
	for _, args := range mustAllow {
		if blockedBy(blockers, args) {
			t.Errorf("expected %v to be allowed", args)
		}
	}
}

func TestBlockFuncsExtra(t *testing.T) {
	blockers := BlockFuncs([]string{"rm"})
	if !blockedBy(blockers, []string{"rm", "-rf", "x"}) {
		t.Error("configured command not blocked")
	}
	if !blockedBy(blockers, []string{"vim"}) {
		t.Error("defaults dropped when extras are given")
	}
	if len(BlockFuncs(nil)) != len(DefaultBlockFuncs()) {
		t.Error("nil extras added a blocker")
	}
}
