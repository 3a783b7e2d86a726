// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	v1 "github.com/OCAP2/armory/internal/storage/memory/export/v1"
	"github.com/OCAP2/armory/pkg/core"
)

const (
	jsonExt = ".json"
	gzExt   = ".json.gz"
)

// fileBase turns a campaign name into a file name stem.
func fileBase(name string) string {
	r := strings.NewReplacer(" ", "_", ":", "_", "/", "_", "\\", "_")
	return r.Replace(name)
}

// exportJSON writes the campaign to <outputDir>/<name>.json(.gz).
func (b *Backend) exportJSON(c *core.Campaign) error {
	ext := jsonExt
	if b.cfg.CompressOutput {
		ext = gzExt
	}
	outputPath := filepath.Join(b.cfg.OutputDir, fileBase(c.Name)+ext)

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := WriteFile(outputPath, c); err != nil {
		return err
	}
	b.lastExportPath = outputPath
	return nil
}

// importJSON reads an exported campaign, compressed or not.
func (b *Backend) importJSON(name string) (*core.Campaign, error) {
	base := filepath.Join(b.cfg.OutputDir, fileBase(name))
	for _, path := range []string{base + gzExt, base + jsonExt} {
		c, err := ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		return c, err
	}
	return nil, fmt.Errorf("%w: %s", core.ErrCampaignNotFound, name)
}

// exportedNames lists campaign files in the output directory. The name
// comes from the file content, since file names are sanitized.
func (b *Backend) exportedNames() ([]string, error) {
	entries, err := os.ReadDir(b.cfg.OutputDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read output directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !(strings.HasSuffix(e.Name(), gzExt) || strings.HasSuffix(e.Name(), jsonExt)) {
			continue
		}
		c, err := ReadFile(filepath.Join(b.cfg.OutputDir, e.Name()))
		if err != nil {
			continue
		}
		names = append(names, c.Name)
	}
	return names, nil
}

// WriteFile encodes a campaign as a v1 export to path, gzipped when the path
// ends in .gz.
func WriteFile(path string, c *core.Campaign) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	var w io.Writer = f
	if strings.HasSuffix(path, ".gz") {
		gzWriter := gzip.NewWriter(f)
		defer gzWriter.Close()
		w = gzWriter
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v1.Build(c, time.Now()))
}

// ReadFile decodes a campaign file written by WriteFile. Gzip is detected
// from the content, not the name.
func ReadFile(path string) (*core.Campaign, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	magic := make([]byte, 2)
	if n, _ := io.ReadFull(f, magic); n == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	} else if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	c, err := v1.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return c, nil
}
