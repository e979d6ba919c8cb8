package cli

// valueFlags take their value from the following argument.
var valueFlags = map[string]bool{
	"-m":       true,
	"--model":  true,
	"--vault":  true,
	"--config": true,
	"--state":  true,
	"--format": true,
	"--level":  true,
	"--file":   true,
}

// NormalizeArgs drops a trailing value flag that has no value, so the setting keeps its
// configured default instead of failing to parse.
func NormalizeArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	if valueFlags[args[len(args)-1]] {
		return args[:len(args)-1]
	}
	return args
}
