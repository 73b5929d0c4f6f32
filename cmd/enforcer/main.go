package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	enforcer "github.com/robhayesmba/openapi-enforcer"
	"github.com/robhayesmba/openapi-enforcer/cmd/enforcer/commands"
	"github.com/robhayesmba/openapi-enforcer/internal/mcpserver"
)

var commandNames = []string{"validate", "request", "random", "mcp", "version", "help"}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "version", "--version":
		fmt.Println(enforcer.BuildInfo())
		return
	case "help", "-h", "--help":
		printUsage()
		return
	case "validate":
		err = commands.HandleValidate(args)
	case "request":
		err = commands.HandleRequest(args)
	case "random":
		err = commands.HandleRandom(args)
	case "mcp":
		err = runMCP()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		if s := suggestCommand(command); s != "" {
			fmt.Fprintf(os.Stderr, "Did you mean: %s?\n", s)
		}
		fmt.Fprintln(os.Stderr)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		var exit *commands.ExitError
		if errors.As(err, &exit) {
			os.Exit(exit.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runMCP serves MCP over stdio until the client disconnects or the process
// is interrupted.
func runMCP() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return mcpserver.Run(ctx)
}

// suggestCommand returns the known command closest to input, or "" when none
// is within an edit distance of 2.
func suggestCommand(input string) string {
	best, bestDist := "", 3
	for _, name := range commandNames {
		if d := levenshtein(input, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func printUsage() {
	fmt.Println(`openapi-enforcer - OpenAPI document validation and request decoding

Usage:
  openapi-enforcer <command> [options]

Commands:
  validate    Validate an OpenAPI 2.0 or 3.0 document
  request     Decode the parameters of a request against a document
  random      Generate values that satisfy a schema of a document
  mcp         Serve the tools over the Model Context Protocol (stdio)
  version     Show version information
  help        Show this help message

Examples:
  openapi-enforcer validate openapi.yaml
  openapi-enforcer validate https://example.com/api/openapi.yaml
  openapi-enforcer request openapi.yaml '/v1/pets/12?fields=id,name'
  openapi-enforcer random --seed 42 openapi.yaml Pet

Run 'openapi-enforcer <command> --help' for more information on a command.`)
}
