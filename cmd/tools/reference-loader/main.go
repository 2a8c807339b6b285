// cmd/tools/reference-loader/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"medadmit-workers/internal/common/config"
	"medadmit-workers/internal/common/database"
	"medadmit-workers/internal/reference"
	"medadmit-workers/pkg/registry"
)

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)

	validatePath := validateCmd.String("path", "", "Path to school registry file (embedded dataset when empty)")
	listPath := listCmd.String("path", "", "Path to school registry file (embedded dataset when empty)")
	importPath := importCmd.String("path", "", "Path to school registry file (embedded dataset when empty)")
	exportPath := exportCmd.String("out", "configs/schools.json", "Destination registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		provider, err := load(*validatePath)
		if err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Registry validation passed: %d schools, version %s\n", provider.Len(), provider.Version())

	case "list":
		listCmd.Parse(os.Args[2:])
		provider, err := load(*listPath)
		if err != nil {
			fmt.Printf("Error loading registry: %v\n", err)
			os.Exit(1)
		}
		list(provider)

	case "import":
		importCmd.Parse(os.Args[2:])
		if err := importSchools(*importPath); err != nil {
			fmt.Printf("Error importing schools: %v\n", err)
			os.Exit(1)
		}

	case "export":
		exportCmd.Parse(os.Args[2:])
		if err := exportSchools(*exportPath); err != nil {
			fmt.Printf("Error exporting schools: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Exported schools to %s\n", *exportPath)

	case "help":
		fallthrough
	default:
		help()
	}
}

func load(path string) (*reference.StaticProvider, error) {
	if path == "" {
		return reference.LoadEmbedded()
	}
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return reference.FromRegistry(reg)
}

func list(provider *reference.StaticProvider) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATE\tPUBLIC\tGPA\tMCAT\tACCEPT\tIN-STATE")
	for _, s := range provider.GetAllSchools() {
		fmt.Fprintf(w, "%s\t%s\t%t\t%.2f\t%.0f\t%.3f\t%.2f\n",
			s.ID, s.State, s.IsPublic, s.GPAMedian, s.MCATMedian, s.AcceptanceRate, s.InStatePreference)
	}
	w.Flush()
}

func connect(ctx context.Context) (*database.PostgresClient, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return nil, err
	}
	if err := pg.Ping(ctx); err != nil {
		pg.Close()
		return nil, err
	}
	return pg, nil
}

func importSchools(path string) error {
	provider, err := load(path)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pg, err := connect(ctx)
	if err != nil {
		return err
	}
	defer pg.Close()

	if err := reference.EnsureSchema(ctx, pg.GetDB()); err != nil {
		return err
	}
	if err := reference.UpsertSchools(ctx, pg.GetDB(), provider.Version(), provider.GetAllSchools()); err != nil {
		return err
	}
	fmt.Printf("Imported %d schools (version %s)\n", provider.Len(), provider.Version())
	return nil
}

func exportSchools(path string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pg, err := connect(ctx)
	if err != nil {
		return err
	}
	defer pg.Close()

	provider, err := reference.LoadFromPostgres(ctx, pg.GetDB())
	if err != nil {
		return err
	}

	reg := &registry.SchoolRegistry{
		Version:     provider.Version(),
		LastUpdated: time.Now().Format(time.RFC3339),
		Source:      "postgres",
	}
	for _, rec := range provider.GetAllSchools() {
		reg.Schools = append(reg.Schools, reference.EntryFromRecord(rec))
	}
	return registry.SaveRegistry(reg, path)
}

func help() {
	fmt.Println("Usage: reference-loader <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  validate   Validate a school registry file")
	fmt.Println("  list       Print the schools in a registry")
	fmt.Println("  import     Upsert a registry into PostgreSQL")
	fmt.Println("  export     Write the PostgreSQL reference set to a registry file")
	fmt.Println("  help       Show this help message")
}
