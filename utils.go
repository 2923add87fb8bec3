/* utils.go
 * Utility functions used by main.go
 */

package main

import (
	"fmt"
	"strings"
)

// runMode selects the front ends started by main
type runMode struct {
	Web bool
	Bot bool
}

// parseMode converts the -mode flag into the front ends to start
// Preconditions: Receives web, bot or all (case insensitive)
// Postconditions: Returns the run mode or an error if the string is not a known mode
func parseMode(str string) (runMode, error) {
	str = strings.TrimSpace(str)
	str = strings.ToLower(str)

	switch str {
	case "web":
		return runMode{Web: true}, nil
	case "bot":
		return runMode{Bot: true}, nil
	case "all", "":
		return runMode{Web: true, Bot: true}, nil
	}
	return runMode{}, fmt.Errorf("invalid mode %q, expected web, bot or all", str)
}
