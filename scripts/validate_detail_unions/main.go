// Command validate_detail_unions enforces that exported structs in the public
// domain package carry care detail payloads through the typed CareDetails
// union rather than untyped any fields. Untyped payload fields defeat the
// tagged-union encoding and let unvalidated JSON through the API surface.
package main

import (
	"flag"
	"fmt"
	"go/types"
	"os"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := flag.NewFlagSet("validate_detail_unions", flag.ContinueOnError)
	flags.SetOutput(os.Stderr)
	roots := flags.String("roots", "plantcore/pkg/domain", "comma-separated package patterns to scan")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedTypes | packages.NeedTypesInfo}
	pkgs, err := packages.Load(cfg, strings.Split(*roots, ",")...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load packages: %v\n", err)
		return 1
	}
	if packages.PrintErrors(pkgs) > 0 {
		return 1
	}

	var violations []string
	for _, pkg := range pkgs {
		violations = append(violations, scan(pkg)...)
	}
	if len(violations) > 0 {
		sort.Strings(violations)
		fmt.Fprintf(os.Stderr, "found %d untyped detail fields:\n", len(violations))
		for _, v := range violations {
			fmt.Fprintf(os.Stderr, "  %s\n", v)
		}
		return 1
	}
	return 0
}

// scan reports exported struct fields whose type is the empty interface.
// Fields typed as a named non-empty interface (the CareDetails union) pass.
func scan(pkg *packages.Package) []string {
	var out []string
	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		obj := scope.Lookup(name)
		if !obj.Exported() {
			continue
		}
		named, ok := obj.Type().(*types.Named)
		if !ok {
			continue
		}
		st, ok := named.Underlying().(*types.Struct)
		if !ok {
			continue
		}
		for i := 0; i < st.NumFields(); i++ {
			field := st.Field(i)
			if !field.Exported() {
				continue
			}
			iface, ok := field.Type().Underlying().(*types.Interface)
			if !ok || iface.NumMethods() > 0 {
				continue
			}
			pos := pkg.Fset.Position(field.Pos())
			out = append(out, fmt.Sprintf("%s:%d %s.%s", pos.Filename, pos.Line, name, field.Name()))
		}
	}
	return out
}
