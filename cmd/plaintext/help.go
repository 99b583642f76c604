// ABOUTME: Help display for the plaintext CLI with grouped flags, examples, and environment status.
// ABOUTME: Provides printHelp for usage output and envStatus for PLAINTEXT_* variable detection.
package main

import (
	"fmt"
	"io"
	"os"
)

// printHelp writes a formatted help message to w, including usage patterns,
// grouped flags, examples, and environment status.
func printHelp(w io.Writer, ver string) {
	fmt.Fprintf(w, "plaintext %s: a small persistent text workspace\n", ver)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  plaintext                           Open the terminal UI")
	fmt.Fprintln(w, "  plaintext -server [-bind addr]      Start the web UI")
	fmt.Fprintln(w, "  plaintext export [-o file]          Write the workspace as YAML")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -store <backend>      sqlite, memory, redis, minio (default: sqlite)")
	fmt.Fprintln(w, "  -seed <dir>           Seed an empty workspace from the files in dir")
	fmt.Fprintln(w, "  -env <file>           .env file to load (default: .env)")
	fmt.Fprintln(w, "  -style <name>         Glamour style for markdown previews (default: dark)")
	fmt.Fprintln(w, "  -server               Start the web UI")
	fmt.Fprintln(w, "  -bind <addr>          Web listen address (default: 127.0.0.1:7780)")
	fmt.Fprintln(w, "  -version              Print version and exit")
	fmt.Fprintln(w, "  -help                 Show this help")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Terminal UI keys:")
	fmt.Fprintln(w, "  up/down, enter        Move and open a file")
	fmt.Fprintln(w, "  tab, esc              Switch focus, close the file")
	fmt.Fprintln(w, "  ctrl+p                Toggle the markdown preview")
	fmt.Fprintln(w, "  ctrl+s                Save now")
	fmt.Fprintln(w, "  q, ctrl+c             Quit")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  plaintext -store memory")
	fmt.Fprintln(w, "  plaintext -seed ./notes")
	fmt.Fprintln(w, "  plaintext -server -bind 0.0.0.0:8080")
	fmt.Fprintln(w, "  plaintext export -o workspace.yaml")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment:")
	for _, key := range []string{
		"PLAINTEXT_HOME",
		"PLAINTEXT_STORE",
		"PLAINTEXT_BIND",
		"PLAINTEXT_REDIS_ADDR",
		"PLAINTEXT_MINIO_ENDPOINT",
	} {
		fmt.Fprintf(w, "  %-25s %s\n", key, envStatus(key))
	}
}

// envStatus returns "[set]" if the named environment variable is non-empty,
// or "[not set]" otherwise.
func envStatus(key string) string {
	if os.Getenv(key) != "" {
		return "[set]"
	}
	return "[not set]"
}
