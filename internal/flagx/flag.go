// Package flagx contains helpers for components that each parse their own
// subset of the command line: filtering os.Args down to known flags and
// resolving the shared -c/-config flag.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs returns only the arguments belonging to the allowed flags,
// keeping both "-f value" and "-f=value" forms. Components use it so their
// flag sets do not trip over flags owned by other components.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		// "-f=value" form
		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		// "-f value" form
		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}
	return filtered
}

// JsonConfigFlags parses only the -c/-config flags from os.Args and returns
// the configured JSON config file path, or "" if none was given.
func JsonConfigFlags() string {
	args := FilterArgs(os.Args[1:], []string{"-c", "-config"})

	fs := flag.NewFlagSet("jsonconfig", flag.ContinueOnError)
	short := fs.String("c", "", "path to json config file")
	long := fs.String("config", "", "path to json config file")
	if err := fs.Parse(args); err != nil {
		return ""
	}
	if *long != "" {
		return *long
	}
	return *short
}
