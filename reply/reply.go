// Package reply generates the bot's answer to a user utterance. The stock
// generator is a deterministic template; a real dialogue engine plugs in as
// any Func.
package reply

import (
	"fmt"
	"strings"
)

// Func maps a user utterance to reply text. Implementations must be total:
// any input, including empty, yields a reply without failing.
type Func func(input string) string

// DefaultFormat is the stock echo-style transform.
const DefaultFormat = "You said: %s"

// Template builds a generator that formats the trimmed input into format
// (one %s verb).
func Template(format string) Func {
	return func(input string) string {
		return fmt.Sprintf(format, strings.TrimSpace(input))
	}
}

// Echo is the default generator.
var Echo = Template(DefaultFormat)
