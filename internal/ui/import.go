package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/javiermolinar/clashmap/internal/source"
)

// importer is implemented by stores that accept bulk loads.
type importer interface {
	Import(ctx context.Context, set source.Set) (int, error)
}

func (a *App) importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import schedule records from a YAML or JSON file",
		Long: `Import personal, department, project and company schedules from a file.

The file holds one list per source under the keys personal, department,
project and company. Records with the same id replace the stored ones.
Records without an id get a generated one.

Example:
  clashmap import ~/schedules.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}
			imp, ok := a.store.(importer)
			if !ok {
				return errors.New("the configured store does not support import")
			}

			path, err := resolvePath(args[0])
			if err != nil {
				return err
			}
			set, err := readSet(path)
			if err != nil {
				return err
			}
			assigned := assignIDs(&set)

			count, err := imp.Import(cmd.Context(), set)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s from %s\n", pluralize(count, "record"), path)
			if assigned > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), formatMuted(fmt.Sprintf("  %s had no id and got a generated one", pluralize(assigned, "record"))))
			}
			return nil
		},
	}

	return cmd
}

// readSet decodes a schedule file. The format follows the extension; files
// without a known extension are read as YAML.
func readSet(path string) (source.Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return source.Set{}, fmt.Errorf("file does not exist: %s", path)
		}
		return source.Set{}, fmt.Errorf("reading %s: %w", path, err)
	}

	var set source.Set
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&set); err != nil {
			return source.Set{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&set); err != nil && !errors.Is(err, io.EOF) {
			return source.Set{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	return set, nil
}

// assignIDs gives every record without an id a random one and returns how
// many were assigned.
func assignIDs(set *source.Set) int {
	n := 0
	next := func(id *string) {
		if strings.TrimSpace(*id) == "" {
			*id = uuid.NewString()
			n++
		}
	}
	for i := range set.Personal {
		next(&set.Personal[i].ID)
	}
	for i := range set.Department {
		next(&set.Department[i].ID)
	}
	for i := range set.Project {
		next(&set.Project[i].ID)
	}
	for i := range set.Company {
		next(&set.Company[i].ScheduleID)
	}
	return n
}

func resolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	return absPath, nil
}

// ensureDir creates the parent directory of path.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return nil
}
