package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/studiowebux/fxdash/internal/activity"
	"github.com/studiowebux/fxdash/internal/api"
	"github.com/studiowebux/fxdash/internal/types"
)

// ListProviders prints the providers matching search
func (a *App) ListProviders(params api.SearchParams, opts OutputOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}
	if err := a.RequireSession(); err != nil {
		return err
	}

	ctx, cancel := a.Context()
	defer cancel()

	rows, err := a.Providers.Search(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to list providers: %w", err)
	}

	if opts.Format == "" || opts.Format == FormatText {
		if opts.PerPage == 0 {
			opts.PerPage = a.Settings.ItemsPerPage
		}
		return renderRows(a.Out, rows, providerColumns(), opts)
	}
	return formatOutput(ctx, a.Out, rows, opts)
}

// GetProvider prints one provider
func (a *App) GetProvider(id string, opts OutputOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}
	if err := a.RequireSession(); err != nil {
		return err
	}

	ctx, cancel := a.Context()
	defer cancel()

	p, err := a.Providers.Get(ctx, id)
	if err != nil {
		if api.IsNotFound(err) {
			return fmt.Errorf("provider %s not found", id)
		}
		return fmt.Errorf("failed to get provider: %w", err)
	}

	if opts.Format == "" || opts.Format == FormatText {
		printFields(a, [][2]string{
			{"ID", p.ID},
			{"Name", p.Name},
			{"API URL", p.APIURL},
			{"API Key", maskKey(p.APIKey)},
			{"Status", string(p.Status)},
			{"Description", p.Description},
			{"Rate limit", fmt.Sprintf("%d", p.RateLimit)},
			{"Timeout", fmt.Sprintf("%ds", p.Timeout)},
			{"Last Sync", orNever(p.LastSync)},
			{"Requests", fmt.Sprintf("%d", p.RequestCount)},
		})
		return nil
	}
	return formatOutput(ctx, a.Out, p, opts)
}

// LoadProviderFile reads a provider definition from YAML (JSON is valid YAML)
func LoadProviderFile(path string) (types.Provider, error) {
	p := types.NewProvider()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("failed to read provider file: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to parse provider file: %w", err)
	}
	return p, nil
}

// SaveProvider creates p, or updates provider id when id is set
func (a *App) SaveProvider(id string, p types.Provider) (*types.Provider, error) {
	if err := a.RequireSession(); err != nil {
		return nil, err
	}

	ctx, cancel := a.Context()
	defer cancel()

	if id == "" {
		saved, err := a.Providers.Create(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("failed to create provider: %w", err)
		}
		a.record(ctx, activity.KindProviderCreate, saved.Name, "")
		fmt.Fprintf(a.Out, "Created provider %s (%s)\n", saved.Name, saved.ID)
		return saved, nil
	}

	saved, err := a.Providers.Update(ctx, id, p)
	if err != nil {
		return nil, fmt.Errorf("failed to update provider: %w", err)
	}
	a.record(ctx, activity.KindProviderUpdate, saved.Name, "")
	fmt.Fprintf(a.Out, "Updated provider %s (%s)\n", saved.Name, saved.ID)
	return saved, nil
}

// DeleteProvider removes provider id after confirmation unless yes is set
func (a *App) DeleteProvider(p Prompter, id string, yes bool) error {
	return a.deleteResource(p, "provider", id, yes)
}

func printFields(a *App, fields [][2]string) {
	width := 0
	for _, f := range fields {
		width = max(width, len(f[0]))
	}
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		fmt.Fprintf(a.Out, "%-*s  %s\n", width, f[0]+":", f[1])
	}
}
