// helpdesk/utils/color/color.go
package color

import (
	"github.com/fatih/color"
)

var (
	promptColor  = color.New(color.FgCyan, color.Bold)
	infoColor    = color.New(color.FgGreen)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	agentColor   = color.New(color.FgHiYellow, color.Bold)
	sessionColor = color.New(color.FgHiBlack)
	successColor = color.New(color.FgGreen, color.Bold)
)

// SetEnabled overrides terminal detection, e.g. for NO_COLOR or piped output.
func SetEnabled(on bool) {
	color.NoColor = !on
}

func Prompt(s string) string {
	return promptColor.Sprint(s)
}

func Info(s string) string {
	return infoColor.Sprint(s)
}

// Warning is used for messages the customer would see as an error reply.
func Warning(s string) string {
	return warningColor.Sprint(s)
}

func Error(s string) string {
	return errorColor.Sprint(s)
}

// Agent prefixes the support agent's reply.
func Agent(reply string) string {
	return agentColor.Sprint("agent> ") + reply
}

func Session(id string) string {
	return sessionColor.Sprint("session " + id)
}

func Success(s string) string {
	return successColor.Sprint(s)
}
