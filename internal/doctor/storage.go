package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rileyhilliard/pulse/internal/dashboard"
)

// StorageDirCheck verifies the dashboard storage directory is writable.
type StorageDirCheck struct {
	Dir string
}

func (c *StorageDirCheck) Name() string     { return "storage_dir" }
func (c *StorageDirCheck) Category() string { return CategoryStorage }

func (c *StorageDirCheck) Run(context.Context) CheckResult {
	info, err := os.Stat(c.Dir)
	if os.IsNotExist(err) {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("Storage directory %s doesn't exist yet", c.Dir),
			Suggestion: "It is created on the first save, or run 'pulse doctor --fix'",
			Fixable:    true,
		}
	}
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Cannot access storage directory: %v", err),
			Suggestion: "Check permissions, or point storage.dir somewhere else",
		}
	}
	if !info.IsDir() {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("storage.dir %s is a file", c.Dir),
			Suggestion: "Point storage.dir at a directory",
		}
	}

	probe, err := os.CreateTemp(c.Dir, ".pulse-doctor-*")
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Storage directory %s isn't writable", c.Dir),
			Suggestion: "Dashboard changes won't be saved; fix permissions or change storage.dir",
		}
	}
	probe.Close()
	os.Remove(probe.Name())

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Storage directory: %s", c.Dir),
	}
}

// Fix creates the directory.
func (c *StorageDirCheck) Fix() error {
	return os.MkdirAll(c.Dir, 0755)
}

// DashboardDocCheck parses the saved dashboard the same way the store
// does and reports widgets that would be dropped on load.
type DashboardDocCheck struct {
	Dir string
}

func (c *DashboardDocCheck) Name() string     { return "dashboard_document" }
func (c *DashboardDocCheck) Category() string { return CategoryStorage }

func (c *DashboardDocCheck) Run(context.Context) CheckResult {
	blobs := dashboard.NewFileBlobStore(c.Dir)
	data, err := blobs.Load()
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Cannot read %s: %v", filepath.Base(blobs.Path()), err),
			Suggestion: "Check permissions on " + blobs.Path(),
		}
	}
	if data == nil {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "No saved dashboard; the default layout will be used",
		}
	}

	doc, err := dashboard.DecodeConfig(data)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("Saved dashboard is unreadable (%v); the default layout will be used", err),
			Suggestion: "The next change overwrites it. Move " + blobs.Path() + " aside to keep a copy",
		}
	}

	var invalid []string
	for _, err := range doc.Rejected {
		invalid = append(invalid, err.Error())
	}
	for _, w := range doc.Widgets {
		if w.Validate() != nil {
			invalid = append(invalid, w.ID)
		}
	}
	if len(invalid) > 0 {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("%d saved widget%s will be dropped on load: %v", len(invalid), pluralize(len(invalid)), invalid),
			Suggestion: "Re-add them with 'pulse widget add'",
		}
	}

	n := len(doc.Widgets)
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Saved dashboard: %d widget%s", n, pluralize(n)),
	}
}

func (c *DashboardDocCheck) Fix() error {
	return nil
}

// NewStorageChecks creates the storage checks for dir.
func NewStorageChecks(dir string) []Check {
	return []Check{
		&StorageDirCheck{Dir: dir},
		&DashboardDocCheck{Dir: dir},
	}
}
