package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/randalmurphal/devexport/config"
	dxerrors "github.com/randalmurphal/devexport/errors"
)

const configUsage = `Usage:
  devexport config get [key]
  devexport config set [--local] <key> <value>
  devexport config unset [--local] <key>`

func runConfig(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, configUsage)
		return dxerrors.ExitUsage
	}

	fs := flag.NewFlagSet("devexport config "+args[0], flag.ContinueOnError)
	fs.SetOutput(stderr)
	local := fs.Bool("local", false, "use .devexport.yaml in the git root instead of the global config")
	if err := fs.Parse(args[1:]); err != nil {
		return dxerrors.ExitUsage
	}
	rest := fs.Args()

	resolver := config.NewResolver()
	switch args[0] {
	case "get":
		resolved := resolver.Resolve(nil)
		if len(rest) == 1 {
			if _, ok := config.Lookup(rest[0]); !ok {
				fmt.Fprintf(stderr, "devexport: unknown config key %q\n", rest[0])
				return dxerrors.ExitUsage
			}
			value, src := resolved.GetWithSource(rest[0])
			fmt.Fprintf(stdout, "%s\t(%s)\n", value, origin(resolver, src))
			return dxerrors.ExitOK
		}
		for _, k := range config.Keys() {
			value, src := resolved.GetWithSource(k.Name)
			fmt.Fprintf(stdout, "%-24s %-44s (%s)\n", k.Name, value, origin(resolver, src))
		}
		return dxerrors.ExitOK

	case "set":
		if len(rest) != 2 {
			fmt.Fprintln(stderr, configUsage)
			return dxerrors.ExitUsage
		}
		path, err := resolver.Set(*local, rest[0], rest[1])
		if err != nil {
			fmt.Fprintln(stderr, "devexport:", err)
			return dxerrors.ExitUsage
		}
		fmt.Fprintf(stdout, "%s = %s (%s)\n", rest[0], rest[1], path)
		return dxerrors.ExitOK

	case "unset":
		if len(rest) != 1 {
			fmt.Fprintln(stderr, configUsage)
			return dxerrors.ExitUsage
		}
		if err := resolver.Unset(*local, rest[0]); err != nil {
			fmt.Fprintln(stderr, "devexport:", err)
			return dxerrors.ExitInternal
		}
		return dxerrors.ExitOK
	}

	fmt.Fprintln(stderr, configUsage)
	return dxerrors.ExitUsage
}

// origin names the file a value was read from when it came from one.
func origin(r *config.Resolver, src config.Source) string {
	switch src {
	case config.SourceGlobal:
		return string(src) + ": " + r.GlobalPath()
	case config.SourceLocal:
		return string(src) + ": " + r.LocalPath()
	}
	return string(src)
}
