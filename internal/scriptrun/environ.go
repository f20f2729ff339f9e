// Package scriptrun builds a deterministic environment vector and executes
// an action or hook script against it, reporting the child's exit/signal
// status. Built on the pattern of constructing an explicit env slice and
// running it through os/exec rather than hand-rolled fork/exec, adapted to
// scanbd's specific environment-construction order.
package scriptrun

import (
	"log/slog"
	"os"
	"os/user"
)

const defaultPath = "/usr/sbin:/usr/bin:/sbin:/bin"

// EnvPair is one additional environment variable contributed by a matching
// Function, appended in binding order after the fixed variables below.
type EnvPair struct {
	Key   string
	Value string
}

// BuildEnviron constructs the script environment vector in a fixed order:
// PATH, PWD, USER, HOME, then device name, action name, then one pair per
// Function.
func BuildEnviron(deviceVarName, deviceName, actionVarName, actionName string, functionVars []EnvPair, logger *slog.Logger) []string {
	if logger == nil {
		logger = slog.Default()
	}

	env := make([]string, 0, 4+2+len(functionVars))
	env = append(env, "PATH="+pathOrDefault())
	env = append(env, "PWD="+pwdOrDefault(logger))
	env = append(env, "USER="+userOrDefault(logger))
	env = append(env, "HOME="+homeOrDefault(logger))
	env = append(env, deviceVarName+"="+deviceName)
	env = append(env, actionVarName+"="+actionName)
	for _, p := range functionVars {
		env = append(env, p.Key+"="+p.Value)
	}
	return env
}

func pathOrDefault() string {
	if p := os.Getenv("PATH"); p != "" {
		return p
	}
	return defaultPath
}

func pwdOrDefault(logger *slog.Logger) string {
	if p := os.Getenv("PWD"); p != "" {
		return p
	}
	wd, err := os.Getwd()
	if err != nil {
		logger.Warn("scriptrun: PWD unobtainable", "error", err.Error())
		return ""
	}
	return wd
}

func userOrDefault(logger *slog.Logger) string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	u, err := user.Current()
	if err != nil {
		logger.Warn("scriptrun: USER unobtainable", "error", err.Error())
		return ""
	}
	return u.Username
}

func homeOrDefault(logger *slog.Logger) string {
	if h := os.Getenv("HOME"); h != "" {
		return h
	}
	u, err := user.Current()
	if err != nil {
		logger.Warn("scriptrun: HOME unobtainable", "error", err.Error())
		return ""
	}
	return u.HomeDir
}

// Exists reports whether path names an existing file. Callers log a
// warning and skip exec when it does not.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
