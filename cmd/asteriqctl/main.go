// Command asteriqctl exercises the binding-schema pipeline and the
// export/import codec from the command line, without the GUI shell: diff
// two default-profile XML dumps, export an ExportProfile to simulator
// rebind XML, or import one back into structured bindings.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mazzeestudio/asteriq/internal/bindingio"
	"github.com/mazzeestudio/asteriq/internal/bindingschema"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "schema-diff":
		err = runSchemaDiff(os.Args[2:])
	case "export":
		err = runExport(os.Args[2:])
	case "import":
		err = runImport(os.Args[2:])
	case "locate-installs":
		err = runLocateInstalls(os.Args[2:])
	case "load-schema":
		err = runLoadSchema(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "asteriqctl:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  asteriqctl schema-diff <old.xml> <new.xml>
  asteriqctl export <profile.json> <out.xml>
  asteriqctl import <in.xml> [out.json]
  asteriqctl locate-installs <launcherRoot>
  asteriqctl load-schema <launcherRoot> <environment> <cacheDir>`)
}

func loadSchema(path string) (bindingschema.Schema, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return bindingschema.Schema{}, fmt.Errorf("read %s: %w", path, err)
	}
	xmlData, err := bindingschema.ToStandardXML(raw)
	if err != nil {
		return bindingschema.Schema{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return bindingschema.Parse(xmlData)
}

func runSchemaDiff(args []string) error {
	if len(args) != 2 {
		usage()
		return fmt.Errorf("schema-diff requires exactly two files")
	}
	oldSchema, err := loadSchema(args[0])
	if err != nil {
		return err
	}
	newSchema, err := loadSchema(args[1])
	if err != nil {
		return err
	}

	report := bindingschema.Diff(oldSchema, newSchema)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func runExport(args []string) error {
	if len(args) != 2 {
		usage()
		return fmt.Errorf("export requires a profile.json and an output path")
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	var profile bindingio.ExportProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}

	xmlData, err := bindingio.Export(profile)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return os.WriteFile(args[1], xmlData, 0o644)
}

func runImport(args []string) error {
	if len(args) < 1 {
		usage()
		return fmt.Errorf("import requires an input XML file")
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	result := bindingio.Import(raw)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if len(args) == 2 {
		return os.WriteFile(args[1], out, 0o644)
	}
	_, err = os.Stdout.Write(append(out, '\n'))
	return err
}

func runLocateInstalls(args []string) error {
	if len(args) != 1 {
		usage()
		return fmt.Errorf("locate-installs requires a launcher root path")
	}
	installs := bindingschema.LocateInstallations(args[0])
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(installs)
}

// runLoadSchema exercises the full cache-then-archive-then-parse pipeline
// (internal/bindingschema.Load) against a real launcher install, rather
// than a loose XML file.
func runLoadSchema(args []string) error {
	if len(args) != 3 {
		usage()
		return fmt.Errorf("load-schema requires a launcher root, an environment name, and a cache directory")
	}
	launcherRoot, environment, cacheDir := args[0], args[1], args[2]

	var inst *bindingschema.Installation
	for _, candidate := range bindingschema.LocateInstallations(launcherRoot) {
		if candidate.Environment == environment {
			c := candidate
			inst = &c
			break
		}
	}
	if inst == nil {
		return fmt.Errorf("no %s install found under %s", environment, launcherRoot)
	}

	cache, err := bindingschema.NewCache(cacheDir)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}

	schema, err := bindingschema.Load(*inst, cache)
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(schema)
}
