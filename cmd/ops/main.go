package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/MostafaAmin07/super-productivity/internal/ops"
	"github.com/MostafaAmin07/super-productivity/internal/persistence"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "export":
		if err := cmdExport(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "export failed:", err)
			os.Exit(1)
		}
	case "import":
		if err := cmdImport(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "import failed:", err)
			os.Exit(1)
		}
	default:
		printUsage()
		os.Exit(2)
	}
}

func cmdExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	dsn := fs.String("dsn", "super_productivity.db", "sqlite database path")
	out := fs.String("out", "state-export", "output directory for JSON files")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := persistence.NewSQLStore(*dsn)
	if err != nil {
		return err
	}
	written, err := ops.ExportState(store, *out)
	if err != nil {
		return err
	}
	for _, path := range written {
		fmt.Println(path)
	}
	return nil
}

func cmdImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	dsn := fs.String("dsn", "super_productivity.db", "sqlite database path")
	in := fs.String("in", "state-export", "directory holding JSON state files")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := persistence.NewSQLStore(*dsn)
	if err != nil {
		return err
	}
	imported, err := ops.ImportState(store, *in)
	if err != nil {
		return err
	}
	for _, kind := range imported {
		fmt.Println("imported", kind)
	}
	return nil
}

func printUsage() {
	fmt.Println("usage:")
	fmt.Println("  sp-ops export --dsn super_productivity.db --out state-export")
	fmt.Println("  sp-ops import --dsn super_productivity.db --in state-export")
}
