// Package flagx lets several config layers share one command line: each
// layer filters out the flags it owns before parsing them.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// FilterArgs keeps only the allowed flags (and their values) from args.
// Both "-f value" and "-f=value" forms are understood; a token starting
// with "-" is never consumed as a value.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

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

// ConfigFiles extracts the JSON config path (-c / -config) and the dotenv
// path (-env-file) from args. Missing flags yield empty strings.
func ConfigFiles(args []string) (jsonFile, envFile string) {
	filtered := FilterArgs(args, []string{"-c", "-config", "-env-file"})

	fs := flag.NewFlagSet("config-files", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&jsonFile, "config", "", "Path to JSON config file")
	fs.StringVar(&jsonFile, "c", "", "Path to JSON config file (short)")
	fs.StringVar(&envFile, "env-file", "", "Path to .env file")
	_ = fs.Parse(filtered)

	return jsonFile, envFile
}
