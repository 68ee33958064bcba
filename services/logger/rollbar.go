package logsvc

import (
	"log"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/tuition/core"
)

type RollbarLogger struct {
	std       *log.Logger
	component string
}

var _ core.Logger = (*RollbarLogger)(nil)

// NewRollbarLogger logs to std and reports to rollbar. Reporting is off until Enable(true).
func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(false)
	return &RollbarLogger{
		std:       std,
		component: strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(std.Prefix()), ":")),
	}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// expected fmt: msg | error, map[string]interface{}, *http.Request
// The component (logger prefix) is merged into the first custom data map.
func (l RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	var extrasSet bool
	newArgs := make([]interface{}, 0, len(args)+2)
	newArgs = append(newArgs, msg)
	for _, arg := range args {
		if extras, ok := arg.(map[string]interface{}); ok && !extrasSet {
			merged := make(map[string]interface{}, len(extras)+1)
			for k, v := range extras {
				merged[k] = v
			}
			merged["component"] = l.component
			arg = merged
			extrasSet = true
		}
		newArgs = append(newArgs, arg)
	}
	if !extrasSet && l.component != "" {
		newArgs = append(newArgs, map[string]interface{}{"component": l.component})
	}
	return newArgs
}

func (l RollbarLogger) print(msg string, args []interface{}) {
	l.std.Println(msg)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rollbar.Debug(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rollbar.Info(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rollbar.Critical(l.prepare(msg, args)...)
	l.print(msg, args)
	l.std.Fatal(msg)
}
