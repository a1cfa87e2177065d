package commands

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

//go:embed all:templates
var templateFS embed.FS

// copyTemplate copies an embedded template directory to the target path.
// Placeholder files are skipped and "gitignore" becomes ".gitignore".
func copyTemplate(templateName, targetDir string, force bool) error {
	root := path.Join("templates", templateName)

	return fs.WalkDir(templateFS, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath := strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
		if relPath == "" {
			return nil
		}

		targetPath := filepath.Join(targetDir, filepath.FromSlash(renameSpecialFiles(relPath)))

		if d.IsDir() {
			return os.MkdirAll(targetPath, 0750)
		}
		if isPlaceholder(relPath) {
			return nil
		}

		if !force {
			if _, err := os.Stat(targetPath); err == nil {
				return nil // Skip existing files
			}
		}

		content, err := templateFS.ReadFile(p)
		if err != nil {
			return err
		}

		return os.WriteFile(targetPath, content, 0600)
	})
}

// renameSpecialFiles handles files that need renaming (e.g., dotfiles).
func renameSpecialFiles(p string) string {
	switch path.Base(p) {
	case "gitignore":
		return path.Join(path.Dir(p), ".gitignore")
	default:
		return p
	}
}

// isPlaceholder reports whether p only exists to keep an empty directory
// in the embedded tree.
func isPlaceholder(p string) bool {
	return path.Base(p) == ".keep"
}

// listTemplateFiles returns all files in a template for display purposes.
func listTemplateFiles(templateName string) ([]string, error) {
	var files []string
	root := path.Join("templates", templateName)

	err := fs.WalkDir(templateFS, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath := strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
		switch {
		case relPath == "":
		case d.IsDir():
			if empty, _ := isEmptyTemplateDir(p); empty {
				files = append(files, relPath+"/")
			}
		case !isPlaceholder(relPath):
			files = append(files, renameSpecialFiles(relPath))
		}
		return nil
	})

	return files, err
}

func isEmptyTemplateDir(dir string) (bool, error) {
	entries, err := templateFS.ReadDir(dir)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.IsDir() || !isPlaceholder(e.Name()) {
			return false, nil
		}
	}
	return true, nil
}

// groupTemplateFiles groups files by category for display.
func groupTemplateFiles(files []string) map[string][]string {
	groups := map[string][]string{
		"config": {},
		"corpus": {},
	}

	for _, f := range files {
		if strings.HasPrefix(f, "data/") {
			groups["corpus"] = append(groups["corpus"], f)
			continue
		}
		groups["config"] = append(groups["config"], f)
	}

	return groups
}
