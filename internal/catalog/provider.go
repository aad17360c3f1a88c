package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	tphttp "github.com/ssephillip/newsleak/internal/http"
)

// ErrCatalogUnavailable is returned when the catalog cannot be read or
// decoded. It aborts the run before any worker starts.
var ErrCatalogUnavailable = errors.New("catalog: unavailable")

// Provider loads a catalog.
type Provider interface {
	Load(ctx context.Context) (Catalog, error)
}

// FileProvider reads records from a local JSON or YAML file.
type FileProvider struct {
	Path    string
	Formats []string
}

// Load implements Provider.
func (p *FileProvider) Load(ctx context.Context) (Catalog, error) {
	f, err := os.Open(p.Path)
	if err != nil {
		return Catalog{}, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	defer f.Close()

	records, err := decodeRecords(p.Path, f)
	if err != nil {
		return Catalog{}, fmt.Errorf("%w: %s: %w", ErrCatalogUnavailable, p.Path, err)
	}
	return Build(records, p.Formats), nil
}

// HTTPProvider reads records from a remote JSON or YAML document.
type HTTPProvider struct {
	URL     string
	Formats []string
	Client  *tphttp.Client
}

// Load implements Provider.
func (p *HTTPProvider) Load(ctx context.Context) (Catalog, error) {
	client := p.Client
	if client == nil {
		client = tphttp.NewClient(tphttp.DefaultOptions())
	}

	resp, err := client.Get(ctx, p.URL)
	if err != nil {
		return Catalog{}, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	name := p.URL
	if u, err := url.Parse(p.URL); err == nil {
		name = u.Path
	}
	if strings.Contains(resp.ContentType, "yaml") {
		name = "catalog.yaml"
	}

	records, err := decodeRecords(name, resp.Body)
	if err != nil {
		return Catalog{}, fmt.Errorf("%w: %s: %w", ErrCatalogUnavailable, p.URL, err)
	}
	return Build(records, p.Formats), nil
}

// NewProvider returns an HTTPProvider for http(s) sources and a
// FileProvider otherwise.
func NewProvider(source string, formats []string, client *tphttp.Client) Provider {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return &HTTPProvider{URL: source, Formats: formats, Client: client}
	}
	return &FileProvider{Path: source, Formats: formats}
}

// decodeRecords decodes a record list, choosing YAML or JSON by the
// extension of name.
func decodeRecords(name string, r io.Reader) ([]Record, error) {
	var records []Record
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(r).Decode(&records); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		if err := json.NewDecoder(r).Decode(&records); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	}
	return records, nil
}
